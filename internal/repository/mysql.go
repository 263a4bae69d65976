package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// MySQLStore implements Store on a MySQL database.  Update runs fn in a READ
// COMMITTED transaction; resource rows are taken with SELECT ... FOR UPDATE
// so writers on the same space or table queue behind each other while the
// conflict check and the write happen.
type MySQLStore struct {
	db  *sqlx.DB
	log *zap.Logger
}

// NewMySQLStore wraps db.
func NewMySQLStore(db *sqlx.DB, log *zap.Logger) *MySQLStore {
	return &MySQLStore{db: db, log: log.Named("repo")}
}

// DB exposes the underlying handle for health checks.
func (s *MySQLStore) DB() *sqlx.DB { return s.db }

func (s *MySQLStore) View(ctx context.Context, fn func(tx Tx) error) error {
	return fn(mysqlTx{q: s.db})
}

func (s *MySQLStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.log.Warn("rollback failed", zap.Error(rbErr))
			}
		}
	}()
	if err := fn(mysqlTx{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(translate(err), "commit tx")
	}
	committed = true
	return nil
}

type mysqlTx struct {
	q queryer
}

func (t mysqlTx) Resources() Resources                 { return resourceRepo{q: t.q} }
func (t mysqlTx) SpaceReservations() SpaceReservations { return spaceReservationRepo{q: t.q} }
func (t mysqlTx) TableReservations() TableReservations { return tableReservationRepo{q: t.q} }
