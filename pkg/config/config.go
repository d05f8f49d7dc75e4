package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix = "STOREFRONT_"
	// FileEnv names an optional YAML file layered over the defaults.
	FileEnv = "STOREFRONT_CONFIG"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout     time.Duration `koanf:"read_timeout"`
		WriteTimeout    time.Duration `koanf:"write_timeout"`
		IdleTimeout     time.Duration `koanf:"idle_timeout"`
		ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	} `koanf:"http"`

	Session struct {
		TTL           time.Duration `koanf:"ttl"`
		SweepInterval time.Duration `koanf:"sweep_interval"`
	} `koanf:"session"`

	Store struct {
		DeliveryFee    string `koanf:"delivery_fee"`
		WhatsAppNumber string `koanf:"whatsapp_number"`
		MenuPath       string `koanf:"menu_path"`
		ConfirmPath    string `koanf:"confirm_path"`
	} `koanf:"store"`

	Postgres struct {
		DSN string `koanf:"dsn"`
	} `koanf:"postgres"`

	Redis struct {
		Addr     string        `koanf:"addr"`
		Password string        `koanf:"password"`
		DB       int           `koanf:"db"`
		CacheTTL time.Duration `koanf:"cache_ttl"`
	} `koanf:"redis"`

	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`

	Kafka struct {
		Brokers []string `koanf:"brokers"`
		Topic   string   `koanf:"topic"`
	} `koanf:"kafka"`

	Outbox struct {
		Interval   time.Duration `koanf:"interval"`
		BatchSize  int           `koanf:"batch_size"`
		MaxRetries int           `koanf:"max_retries"`
	} `koanf:"outbox"`

	Tracing struct {
		Endpoint string `koanf:"endpoint"`
	} `koanf:"tracing"`
}

func defaults() map[string]any {
	return map[string]any{
		"app.name":               "storefront",
		"app.http_addr":          ":8080",
		"app.log_level":          "info",
		"http.read_timeout":      "10s",
		"http.write_timeout":     "10s",
		"http.idle_timeout":      "60s",
		"http.shutdown_timeout":  "10s",
		"session.ttl":            "2h",
		"session.sweep_interval": "5m",
		"store.delivery_fee":     "0",
		"store.whatsapp_number":  "5521979917408",
		"store.menu_path":        "/cardapio",
		"store.confirm_path":     "/pedido-enviado",
		"redis.cache_ttl":        "1m",
		"idempotency.ttl":        "10m",
		"kafka.topic":            "storefront.orders",
		"outbox.interval":        "1s",
		"outbox.batch_size":      50,
		"outbox.max_retries":     5,
	}
}

// Load layers defaults, the optional file named by STOREFRONT_CONFIG and
// STOREFRONT_* environment variables, nested with __
// (e.g. STOREFRONT_REDIS__ADDR).
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKey maps STOREFRONT_KAFKA__BROKERS to kafka.brokers. List values are
// comma separated.
func envKey(key, value string) (string, any) {
	if key == FileEnv {
		return "", nil
	}
	key = strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, EnvPrefix), "__", "."))
	if _, ok := listKeys[key]; ok {
		return key, splitList(value)
	}
	return key, value
}

var listKeys = map[string]struct{}{"kafka.brokers": {}}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return errors.New("app.http_addr required")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	if c.Outbox.BatchSize <= 0 {
		return errors.New("outbox.batch_size must be positive")
	}
	return nil
}
