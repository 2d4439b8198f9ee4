// Package config loads service settings from an optional YAML file and the
// environment. Environment variables win over file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"BizRecords/internal/recordstore"
)

const (
	EnvFile     = "BIZREC_CONFIG"
	DefaultFile = "bizrec.yaml"
)

type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	Store StoreConfig `yaml:"store"`

	Metrics MetricsConfig `yaml:"metrics"`

	// InvoiceRateLimit is the number of invoices one client IP may request
	// per minute. Zero disables the limit.
	InvoiceRateLimit int `yaml:"invoice_rate_limit"`
}

type StoreConfig struct {
	Driver        string `yaml:"driver"`
	DataDir       string `yaml:"data_dir"`
	DatabaseURL   string `yaml:"database_url"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
}

func Default() Config {
	return Config{
		Port:     "8080",
		LogLevel: "info",
		Store: StoreConfig{
			Driver:        recordstore.DriverFile,
			DataDir:       "data",
			MongoDatabase: "bizrecords",
		},
		Metrics:          MetricsConfig{Enabled: true},
		InvoiceRateLimit: 30,
	}
}

// Load reads the file named by BIZREC_CONFIG (or bizrec.yaml) and applies
// environment overrides. A missing file is not an error.
func Load() (Config, error) {
	path := getenv(EnvFile, DefaultFile)
	cfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile returns Default overlaid by the YAML at path.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("PORT", &c.Port)
	str("LOG_LEVEL", &c.LogLevel)
	str("STORE_DRIVER", &c.Store.Driver)
	str("DATA_DIR", &c.Store.DataDir)
	str("DATABASE_URL", &c.Store.DatabaseURL)
	str("MONGO_URI", &c.Store.MongoURI)
	str("MONGO_DATABASE", &c.Store.MongoDatabase)
	str("METRICS_TOKEN", &c.Metrics.Token)

	if v, ok := lookup("METRICS_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("METRICS_ENABLED: %w", err)
		}
		c.Metrics.Enabled = b
	}
	if v, ok := lookup("INVOICE_RATE_LIMIT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("INVOICE_RATE_LIMIT: %w", err)
		}
		c.InvoiceRateLimit = n
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.InvoiceRateLimit < 0 {
		errs = append(errs, errors.New("invoice_rate_limit must be >= 0"))
	}
	switch c.Store.Driver {
	case recordstore.DriverFile:
		if c.Store.DataDir == "" {
			errs = append(errs, errors.New("store.data_dir is required for the file driver"))
		}
	case recordstore.DriverMemory:
	case recordstore.DriverPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case recordstore.DriverMongo:
		if c.Store.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", recordstore.ErrUnknownDriver, c.Store.Driver))
	}
	return errors.Join(errs...)
}

// StoreOptions maps the store section onto recordstore.Options.
func (c Config) StoreOptions() recordstore.Options {
	return recordstore.Options{
		Driver:        c.Store.Driver,
		DataDir:       c.Store.DataDir,
		PostgresDSN:   c.Store.DatabaseURL,
		MongoURI:      c.Store.MongoURI,
		MongoDatabase: c.Store.MongoDatabase,
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
