package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds every application setting.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type LedgerConfig struct {
	Tables  []int   `mapstructure:"tables"`
	TaxRate float64 `mapstructure:"tax_rate"`
}

// TaxRateDecimal returns the configured rate as an exact decimal.
func (l LedgerConfig) TaxRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(l.TaxRate)
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"` // memory | file | postgres | sqlite
	Path   string `mapstructure:"path"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RabbitMQConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	VHost    string `mapstructure:"vhost"`
	UseTLS   bool   `mapstructure:"use_tls"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
	Prefetch int    `mapstructure:"prefetch"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("log.level", "info")
	v.SetDefault("ledger.tables", []int{1, 2, 3, 4, 5, 6, 7, 8})
	v.SetDefault("ledger.tax_rate", 0.08)
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", "data")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("rabbitmq.enabled", false)
	v.SetDefault("rabbitmq.host", "localhost")
	v.SetDefault("rabbitmq.port", 5672)
	v.SetDefault("rabbitmq.vhost", "/")
	v.SetDefault("rabbitmq.exchange", "tables_topic")
	v.SetDefault("rabbitmq.queue", "tickets.q")
	v.SetDefault("rabbitmq.prefetch", 1)
}

// Load reads the YAML file at path (optional when missing) with POS_* env
// overrides. A .env file in the working directory is loaded first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. POS_SERVER_PORT=9000
	v.SetEnvPrefix("POS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.Ledger.TaxRate < 0 {
		return fmt.Errorf("invalid config: ledger.tax_rate must not be negative, got %v", c.Ledger.TaxRate)
	}
	for _, n := range c.Ledger.Tables {
		if n <= 0 {
			return fmt.Errorf("invalid config: table numbers must be positive, got %d", n)
		}
	}
	switch c.Storage.Driver {
	case "memory", "file", "sqlite":
	case "postgres":
		if c.Database.Host == "" {
			return errors.New("invalid config: database.host is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.RabbitMQ.Enabled && c.RabbitMQ.Host == "" {
		return errors.New("invalid config: rabbitmq.host is required when rabbitmq is enabled")
	}
	return nil
}
