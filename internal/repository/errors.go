// Package repository defines the storage ports used by the reservation
// engine and their MySQL implementation.  Storage failures that carry
// domain meaning are translated to the errs sentinels here so higher
// layers never inspect driver errors: a missing row becomes
// errs.ErrNotFound and a duplicate key becomes errs.ErrConflict.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/tenant-booking/internal/errs"
)

const (
	mysqlDuplicateEntry  = 1062
	mysqlForeignKeyChild = 1452
)

// translate maps driver errors onto the shared error kinds.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errs.ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry:
			return errs.ErrConflict
		case mysqlForeignKeyChild:
			return errs.ErrNotFound
		}
	}
	return err
}

// expectOne turns a zero-row UPDATE/DELETE into errs.ErrNotFound.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
