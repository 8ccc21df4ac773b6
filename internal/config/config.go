// Package config loads runtime settings from a .env file, GYMSCORE_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "GYMSCORE"

// Config holds all application settings
type Config struct {
	Port          int      `envconfig:"PORT" default:"8081"`
	DatabaseURL   string   `envconfig:"DATABASE_URL" default:"gymscore.db"`
	SecretKey     string   `envconfig:"SECRET_KEY"`
	Debug         bool     `envconfig:"DEBUG" default:"false"`
	LogLevel      string   `envconfig:"LOG_LEVEL" default:"info"`
	LogFile       string   `envconfig:"LOG_FILE"`
	LogMaxSizeMB  int      `envconfig:"LOG_MAX_SIZE" default:"10"`
	LogMaxBackups int      `envconfig:"LOG_MAX_BACKUPS" default:"3"`
	LogMaxAgeDays int      `envconfig:"LOG_MAX_AGE" default:"28"`
	AdminUser     string   `envconfig:"ADMIN_USER" default:"admin"`
	AdminPassword string   `envconfig:"ADMIN_PASSWORD"`
	BaseURL       string   `envconfig:"BASE_URL"`
	CORSOrigins   []string `envconfig:"CORS_ORIGINS"`

	OpenBrowser     bool `ignored:"true"`
	ShowVersion     bool `ignored:"true"`
	SecretGenerated bool `ignored:"true"`
}

// Load reads configuration. envFiles are optional dotenv files; missing files
// are ignored. args are command-line arguments without the program name.
func Load(args []string, envFiles ...string) (*Config, error) {
	// Missing .env is normal outside local development
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.applyFlags(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.SecretKey == "" {
		cfg.SecretKey = generateSecret()
		cfg.SecretGenerated = true
	}

	return &cfg, nil
}

// applyFlags overrides fields with any flags explicitly set in args
func (c *Config) applyFlags(args []string) error {
	fs := flag.NewFlagSet("gymscore", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	port := fs.Int("port", c.Port, "HTTP server port")
	db := fs.String("db", c.DatabaseURL, "SQLite path or postgres:// URL")
	secret := fs.String("secret", c.SecretKey, "session signing key")
	logLevel := fs.String("loglevel", c.LogLevel, "log level (debug, info, warn, error)")
	logFile := fs.String("logfile", c.LogFile, "rotating log file path")
	adminUser := fs.String("adminuser", c.AdminUser, "bootstrap admin username")
	adminPw := fs.String("adminpw", c.AdminPassword, "bootstrap admin password")
	baseURL := fs.String("baseurl", c.BaseURL, "public base URL used in QR codes")
	debug := fs.Bool("debug", c.Debug, "enable debug mode")
	open := fs.Bool("open", false, "open the live board in a browser on start")
	version := fs.Bool("version", false, "show version and exit")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}

	c.Port = *port
	c.DatabaseURL = *db
	c.SecretKey = *secret
	c.LogLevel = *logLevel
	c.LogFile = *logFile
	c.AdminUser = *adminUser
	c.AdminPassword = *adminPw
	c.BaseURL = *baseURL
	c.Debug = *debug
	c.OpenBrowser = *open
	c.ShowVersion = *version
	return nil
}

// Validate checks field ranges
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("database URL must not be empty")
	}
	if strings.TrimSpace(c.AdminUser) == "" {
		return fmt.Errorf("admin user must not be empty")
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// EffectiveLogLevel forces debug logging when Debug is set
func (c *Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}

func generateSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
