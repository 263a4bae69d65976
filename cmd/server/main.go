package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/tenant-booking/internal/config"
	"github.com/iliyamo/tenant-booking/internal/database"
	"github.com/iliyamo/tenant-booking/internal/handler"
	"github.com/iliyamo/tenant-booking/internal/logger"
	"github.com/iliyamo/tenant-booking/internal/middleware"
	"github.com/iliyamo/tenant-booking/internal/queue"
	"github.com/iliyamo/tenant-booking/internal/repository"
	"github.com/iliyamo/tenant-booking/internal/repository/memory"
	"github.com/iliyamo/tenant-booking/internal/router"
	"github.com/iliyamo/tenant-booking/internal/service"
	"github.com/iliyamo/tenant-booking/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load() // .env is optional outside local development

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(cfg.LogLevel, "tenant-booking")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, lg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, health, closeStore, err := openStore(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer closeStore()

	pub, err := openPublisher(cfg, lg)
	if err != nil {
		return err
	}
	defer func() { _ = pub.Close() }()

	clock := service.SystemClock{}
	spaces := service.NewSpaceReservationService(store, clock, pub, lg)
	tables := service.NewTableReservationService(store, clock, pub, lg)

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		lg.Warn("redis unreachable: local rate limiting, response cache disabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		defer func() { _ = rdb.Close() }()
	}

	e := router.New(lg)
	router.RegisterRoutes(e, health)
	router.RegisterReservations(e,
		handler.NewSpaceReservationHandler(spaces, lg),
		handler.NewTableReservationHandler(tables, lg),
		cfg.JWTSecret,
		middleware.NewTokenBucket(cfg.RateLimit, rdb, lg),
		middleware.NewRedisCache(cfg.Cache, rdb),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lg.Info("listening", zap.String("addr", ":"+cfg.Port), zap.String("env", cfg.Env),
			zap.String("storage", cfg.StorageDriver), zap.String("broker", cfg.Broker.Kind))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	})

	expirer := worker.NewExpirer(spaces, tables, cfg.Expiry.Interval, cfg.Expiry.Batch, lg)
	g.Go(func() error { return expirer.Run(gctx) })

	if cfg.Broker.Kind == config.BrokerRabbitMQ && cfg.Broker.AuditEnabled {
		audit, err := logger.NewFile(cfg.Broker.AuditLogPath)
		if err != nil {
			return err
		}
		defer func() { _ = audit.Sync() }()
		consumer := queue.NewAuditConsumer(cfg.Broker.RabbitMQURL, cfg.Broker.Topic, lg, audit)
		g.Go(func() error { return consumer.Run(gctx) })
	}

	return g.Wait()
}

// openStore returns the configured storage backend and its health check.
func openStore(ctx context.Context, cfg config.Config, lg *zap.Logger) (repository.Store, echo.HandlerFunc, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		store := memory.New()
		if cfg.SeedFile != "" {
			if err := store.LoadFile(cfg.SeedFile); err != nil {
				return nil, nil, nil, err
			}
		}
		return store, handler.Health(nil), func() {}, nil
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.DB.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
	}
	return repository.NewMySQLStore(db, lg), handler.Health(db), func() { _ = db.Close() }, nil
}

// openPublisher returns the configured event publisher.
func openPublisher(cfg config.Config, lg *zap.Logger) (queue.Publisher, error) {
	switch cfg.Broker.Kind {
	case config.BrokerRabbitMQ:
		return queue.NewAMQPPublisher(cfg.Broker.RabbitMQURL, cfg.Broker.Topic, lg), nil
	case config.BrokerKafka:
		producer, err := queue.NewKafkaProducer(cfg.Broker.KafkaBrokers, queue.PublishTimeout)
		if err != nil {
			return nil, err
		}
		return queue.NewKafkaPublisher(producer, cfg.Broker.Topic), nil
	}
	return queue.Nop{}, nil
}
