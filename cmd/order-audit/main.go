package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-shop-orders/internal/audit"
	"github.com/ariefcatur/go-shop-orders/internal/config"
	kafkax "github.com/ariefcatur/go-shop-orders/internal/kafka"
	"github.com/ariefcatur/go-shop-orders/internal/logx"
	"github.com/ariefcatur/go-shop-orders/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadFor("order-audit", ":8083")
	log := logx.New(cfg.ServiceName, cfg.LogLevel, cfg.LogFile)
	defer log.Sync()

	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := &audit.Service{Log: log, ServiceName: cfg.AuditGroup}
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		svc.Redis = rdb
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.AuditGroup, cfg.OrderEventsTopic, cfg.AuditWorkers, log)
	log.Info("audit consumer started", zap.String("group", cfg.AuditGroup),
		zap.String("topic", cfg.OrderEventsTopic), zap.Int("workers", cfg.AuditWorkers))
	if err := cons.Start(ctx, svc.HandleEvent); err != nil {
		log.Error("consumer exit", zap.Error(err))
		os.Exit(1)
	}
	log.Info("audit consumer stopped")
}
