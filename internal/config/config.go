package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr     string
	PostgresDSN  string // kosong -> in-memory storage
	RedisAddr    string // kosong -> tanpa cache & idempotency
	KafkaBrokers []string
	ServiceName  string

	LogLevel string
	LogFile  string

	ProductServiceURL     string
	ProductServiceTimeout time.Duration

	OrderEventsTopic  string
	ReconcileInterval time.Duration // 0 = reconciler off
	PendingMaxAge     time.Duration

	AuditGroup   string
	AuditWorkers int
}

// Load reads the order-api defaults.
func Load() Config { return LoadFor("order-api", ":8081") }

// LoadFor lets each binary under cmd/ pick its own service name and listen
// address; HTTP_ADDR and SERVICE_NAME still win when set.
func LoadFor(service, addr string) Config {
	return Config{
		HTTPAddr:     getenv("HTTP_ADDR", addr),
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		ServiceName:  getenv("SERVICE_NAME", service),

		LogLevel: getenv("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		ProductServiceURL:     strings.TrimRight(getenv("PRODUCT_SERVICE_URL", "http://product-api:8082"), "/"),
		ProductServiceTimeout: getduration("PRODUCT_SERVICE_TIMEOUT", 3*time.Second),

		OrderEventsTopic:  getenv("ORDER_EVENTS_TOPIC", "order.events"),
		ReconcileInterval: getduration("RECONCILE_INTERVAL", 0),
		PendingMaxAge:     getduration("PENDING_MAX_AGE", 15*time.Minute),

		AuditGroup:   getenv("AUDIT_GROUP", "order-audit"),
		AuditWorkers: getint("AUDIT_WORKERS", 4),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def
	}
	return d
}

func getint(k string, def int) int {
	i, err := strconv.Atoi(os.Getenv(k))
	if err != nil || i <= 0 {
		return def
	}
	return i
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
