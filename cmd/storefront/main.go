package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	cartapp "github.com/dmehra2102/storefront/internal/cart/application"
	carthttp "github.com/dmehra2102/storefront/internal/cart/infrastructure/http"
	cartmem "github.com/dmehra2102/storefront/internal/cart/infrastructure/memory"
	cartredis "github.com/dmehra2102/storefront/internal/cart/infrastructure/redis"
	"github.com/dmehra2102/storefront/internal/checkout/application"
	"github.com/dmehra2102/storefront/internal/checkout/domain"
	checkoutevents "github.com/dmehra2102/storefront/internal/checkout/infrastructure/events"
	checkouthttp "github.com/dmehra2102/storefront/internal/checkout/infrastructure/http"
	checkoutpg "github.com/dmehra2102/storefront/internal/checkout/infrastructure/postgres"
	checkoutredis "github.com/dmehra2102/storefront/internal/checkout/infrastructure/redis"
	"github.com/dmehra2102/storefront/pkg/config"
	"github.com/dmehra2102/storefront/pkg/httpx"
	"github.com/dmehra2102/storefront/pkg/idempotency"
	"github.com/dmehra2102/storefront/pkg/logging"
	"github.com/dmehra2102/storefront/pkg/outbox"
	"github.com/dmehra2102/storefront/pkg/shutdown"
	"github.com/dmehra2102/storefront/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.App.LogLevel, cfg.App.LogFile)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, cfg.App.Name, cfg.Tracing.Endpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	// Store settings
	var (
		settings application.SettingsProvider = application.StaticSettings(defaultSettings(cfg, log))
		pool     *pgxpool.Pool
	)
	if cfg.Postgres.DSN != "" {
		pool, err = pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			log.Error("pg connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		settings = checkoutpg.NewSettingsRepository(log, pool)
	}

	// Session carts and submission guard
	var (
		cartRepo cartapp.Repository
		guard    application.SubmissionGuard
	)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error("redis ping failed", "err", err)
			os.Exit(1)
		}
		cartRepo = cartredis.NewRepository(log, rdb, cfg.Session.TTL)
		guard = idempotency.NewStore(rdb, cfg.Idempotency.TTL)
		settings = checkoutredis.NewSettingsCache(log, rdb, settings, cfg.Redis.CacheTTL)
	} else {
		mem := cartmem.NewRepository(log, cfg.Session.TTL)
		go mem.Run(ctx, cfg.Session.SweepInterval)
		cartRepo = mem
		guard = idempotency.NewMemoryStore(cfg.Idempotency.TTL)
	}

	// Order events
	var orders application.OrderPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		writer := outbox.NewKafkaWriter(cfg.Kafka.Brokers)
		defer writer.Close()

		store, err := newOutboxStore(ctx, cfg, log, pool)
		if err != nil {
			log.Error("outbox init failed", "err", err)
			os.Exit(1)
		}
		dispatch := outbox.NewDispatcher(log, writer, cfg.Kafka.Topic)
		relay := outbox.NewRelay(log, store, dispatch, cfg.App.Name+"-relay").
			Tune(cfg.Outbox.BatchSize, cfg.Outbox.Interval)
		orders = checkoutevents.NewPublisher(store, cfg.App.Name)

		go func() {
			if err := relay.Run(ctx); err != nil {
				log.Error("relay stopped with error", "err", err)
			}
		}()
	}

	carts := cartapp.NewService(log, cartRepo)
	checkout := application.NewService(log, settings, guard, orders)

	// HTTP server
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, httpx.Logging(log), httpx.Metrics)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", promhttp.Handler())
	r.Group(func(r chi.Router) {
		r.Use(carthttp.Session(carts, cfg.Session.TTL))
		r.Mount("/cart", carthttp.NewHandler(log).Routes())
		r.Mount("/checkout", checkouthttp.NewHandler(log, checkout, checkouthttp.Paths{
			Menu:         cfg.Store.MenuPath,
			Confirmation: cfg.Store.ConfirmPath,
		}).Routes())
	})

	srv := &http.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("http listening", "addr", cfg.App.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("storefront shutdown complete")
}

type outboxStore interface {
	outbox.Store
	checkoutevents.Appender
}

// newOutboxStore keeps order events in Postgres when a database is configured
// and in process memory otherwise.
func newOutboxStore(ctx context.Context, cfg config.Config, log *slog.Logger, pool *pgxpool.Pool) (outboxStore, error) {
	if pool == nil {
		log.Warn("no database configured, order events are kept in memory")
		return outbox.NewMemoryStore(cfg.Outbox.MaxRetries), nil
	}
	store := outbox.NewPostgresStore(log, pool, cfg.Outbox.MaxRetries)
	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func defaultSettings(cfg config.Config, log *slog.Logger) domain.Settings {
	st := domain.DefaultSettings()
	if fee, err := decimal.NewFromString(cfg.Store.DeliveryFee); err == nil {
		st.DeliveryFee = fee
	} else {
		log.Warn("invalid store.delivery_fee, using 0", "value", cfg.Store.DeliveryFee)
	}
	if cfg.Store.WhatsAppNumber != "" {
		st.WhatsAppNumber = cfg.Store.WhatsAppNumber
	}
	return st
}
