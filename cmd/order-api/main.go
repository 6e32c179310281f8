package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-shop-orders/internal/config"
	"github.com/ariefcatur/go-shop-orders/internal/httpx"
	kafkax "github.com/ariefcatur/go-shop-orders/internal/kafka"
	"github.com/ariefcatur/go-shop-orders/internal/logx"
	"github.com/ariefcatur/go-shop-orders/internal/orders"
	"github.com/ariefcatur/go-shop-orders/internal/postgres"
	"github.com/ariefcatur/go-shop-orders/internal/productclient"
	"github.com/ariefcatur/go-shop-orders/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logx.New(cfg.ServiceName, cfg.LogLevel, cfg.LogFile)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Store: Postgres kalau ada DSN, selain itu in-memory
	var store orders.Store
	if cfg.PostgresDSN != "" {
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal("db connect", zap.Error(err))
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatal("db migrate", zap.Error(err))
		}
		store = &orders.PgStore{DB: db}
	} else {
		log.Warn("POSTGRES_DSN empty, orders kept in memory")
		store = orders.NewMemoryStore()
	}

	// Redis: cache + idempotency
	var idem httpx.Idempotency
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		store = &orders.CachedStore{Store: store, Cache: redisx.NewOrderCache(rdb, redisx.TTLOrderCache), Log: log}
		// lock cukup untuk satu create: tiga panggilan ledger + store
		idem = redisx.NewIdempotencyStore(rdb, redisx.TTLIdempotency, 5*cfg.ProductServiceTimeout)
	}

	// Kafka producer
	var events orders.EventSink = orders.NopSink
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, cfg.OrderEventsTopic, 1024, log)
		prod.Start()
		events = &orders.KafkaEvents{Producer: prod, ServiceName: cfg.ServiceName}
	}

	coord := &orders.Coordinator{
		Store:    store,
		Products: productclient.New(cfg.ProductServiceURL, cfg.ProductServiceTimeout),
		Events:   events,
		Log:      log,
	}
	rec := &orders.Reconciler{
		Coordinator: coord,
		MaxAge:      cfg.PendingMaxAge,
		Interval:    cfg.ReconcileInterval,
		Log:         log,
	}

	router := httpx.NewRouter(log)
	oh := &httpx.OrdersHandler{Orders: coord, Idempotency: idem, Log: log, Service: cfg.ServiceName}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr),
			zap.String("product_service", cfg.ProductServiceURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return rec.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	err := g.Wait()
	if prod != nil {
		prod.Close()      // tutup inbox -> flush & close writer
		prod.WaitClosed() // drain
	}
	if err != nil {
		log.Error("order-api exited", zap.Error(err))
		os.Exit(1)
	}
}
