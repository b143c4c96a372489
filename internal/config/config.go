package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the client and the dev backend.
// Values are read from app.env in the given directory and can be
// overridden by environment variables of the same name.
type Config struct {
	APIBaseURL      string        `mapstructure:"API_BASE_URL"`
	StorageDriver   string        `mapstructure:"STORAGE_DRIVER"`
	StoragePath     string        `mapstructure:"STORAGE_PATH"`
	DBSource        string        `mapstructure:"DB_SOURCE"`
	ServerAddress   string        `mapstructure:"SERVER_ADDRESS"`
	GeoIPCityDB     string        `mapstructure:"GEOIP_CITY_DB"`
	GeoIPASNDB      string        `mapstructure:"GEOIP_ASN_DB"`
	DevUserEmail    string        `mapstructure:"DEV_USER_EMAIL"`
	DevUserPassword string        `mapstructure:"DEV_USER_PASSWORD"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	HistoryLimit    int           `mapstructure:"HISTORY_LIMIT"`
}

// Storage drivers understood by the client.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var defaults = map[string]any{
	"API_BASE_URL":      "http://localhost:8000",
	"STORAGE_DRIVER":    DriverFile,
	"STORAGE_PATH":      "geoclient-state.json",
	"DB_SOURCE":         "",
	"SERVER_ADDRESS":    "0.0.0.0:8000",
	"GEOIP_CITY_DB":     "data/GeoLite2-City.mmdb",
	"GEOIP_ASN_DB":      "",
	"DEV_USER_EMAIL":    "admin@example.com",
	"DEV_USER_PASSWORD": "",
	"REQUEST_TIMEOUT":   "10s",
	"LOG_LEVEL":         "info",
	"HISTORY_LIMIT":     50,
}

// LoadConfig reads configuration from file or environment variables.
// A missing app.env is not an error; defaults and the environment apply.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var config Config
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("config: failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: failed to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return config, err
	}

	return config, nil
}

func (c Config) validate() error {
	switch c.StorageDriver {
	case DriverFile, DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.DBSource == "" {
			return fmt.Errorf("config: DB_SOURCE is required for storage driver %q", c.StorageDriver)
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.StorageDriver)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("config: HISTORY_LIMIT must be positive, got %d", c.HistoryLimit)
	}
	return nil
}
