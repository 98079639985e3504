// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported DB_DRIVER values.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	// DBDriver selects the bun dialect: postgres, mysql or sqlite.
	DBDriver string

	// PostgreSQL – either set DatabaseURL directly, or the individual fields.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	MySQLDSN   string
	SQLitePath string

	// JWT signing secret (required).
	JWTSecret string

	// Server
	Debug      bool
	Port       string
	TLSDomains []string

	// Capture autosave retry policy.
	AutosaveAttempts int
	AutosaveBackoff  time.Duration

	// DefaultDiscards is applied to newly created regattas.
	DefaultDiscards int
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	cfg := FromViper(newViper())
	if err := cfg.Validate(); err != nil {
		log.Fatal("config: ", err)
	}
	return cfg
}

// LoadDB is Load for command line tools that only talk to the database.
func LoadDB() *Config {
	cfg := FromViper(newViper())
	if err := cfg.ValidateDB(); err != nil {
		log.Fatal("config: ", err)
	}
	return cfg
}

// FromViper builds a Config from v after applying defaults.
func FromViper(v *viper.Viper) *Config {
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_USER", "regatta")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "regatta")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "regatta.db")
	v.SetDefault("PORT", ":9000")
	v.SetDefault("TLS_DOMAINS", "")
	v.SetDefault("DEBUG", false)
	v.SetDefault("AUTOSAVE_ATTEMPTS", 3)
	v.SetDefault("AUTOSAVE_BACKOFF", "100ms")
	v.SetDefault("DEFAULT_DISCARDS", 0)

	return &Config{
		DBDriver:         strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DatabaseURL:      v.GetString("DATABASE_URL"),
		DBUser:           v.GetString("DB_USER"),
		DBPass:           v.GetString("DB_PASS"),
		DBHost:           v.GetString("DB_HOST"),
		DBPort:           v.GetString("DB_PORT"),
		DBName:           v.GetString("DB_NAME"),
		DBSSLMode:        v.GetString("DB_SSLMODE"),
		MySQLDSN:         v.GetString("MYSQL_DSN"),
		SQLitePath:       v.GetString("SQLITE_PATH"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		Debug:            v.GetBool("DEBUG"),
		Port:             v.GetString("PORT"),
		TLSDomains:       splitTrimmed(v.GetString("TLS_DOMAINS")),
		AutosaveAttempts: v.GetInt("AUTOSAVE_ATTEMPTS"),
		AutosaveBackoff:  v.GetDuration("AUTOSAVE_BACKOFF"),
		DefaultDiscards:  v.GetInt("DEFAULT_DISCARDS"),
	}
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// JWTKey returns the JWT signing key as a byte slice.
func (c *Config) JWTKey() []byte {
	return []byte(c.JWTSecret)
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	if err := c.ValidateDB(); err != nil {
		return err
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if c.AutosaveAttempts < 1 {
		return fmt.Errorf("AUTOSAVE_ATTEMPTS must be at least 1")
	}
	if c.DefaultDiscards < 0 {
		return fmt.Errorf("DEFAULT_DISCARDS must not be negative")
	}
	return nil
}

// ValidateDB checks the database settings only.
func (c *Config) ValidateDB() error {
	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" && c.DBPass == "" {
			return fmt.Errorf("DATABASE_URL or DB_PASS must be set")
		}
	case DriverMySQL:
		if c.MySQLDSN == "" {
			return fmt.Errorf("MYSQL_DSN must be set for the mysql driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH must be set for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
