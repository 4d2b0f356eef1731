package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Simplici0/atelier/internal/blob"
)

const (
	defaultDBPath      = "./dev.db"
	defaultPort        = "8080"
	defaultEnv         = "development"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultTermsDays   = 30
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env              string
	DSN              string
	Port             string
	SessionSecret    string
	OpenAIAPIKey     string
	OpenAIModel      string
	RatesFile        string
	InvoiceTermsDays int
	Blob             blob.Config
}

// IsDev reports whether the server runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == defaultEnv
}

// Load reads environment variables and returns a populated Config. A .env
// file in the working directory is loaded first if present; it never
// overrides variables already set.
func Load(logger *slog.Logger) (Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := LoadEnv(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Env:           envOr("APP_ENV", defaultEnv),
		DSN:           DatabaseDSN(),
		Port:          envOr("PORT", defaultPort),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   envOr("OPENAI_MODEL", defaultOpenAIModel),
		RatesFile:     os.Getenv("RATES_FILE"),
		Blob:          BlobConfig(),
	}

	terms, err := intEnv("INVOICE_TERMS_DAYS", defaultTermsDays)
	if err != nil {
		return Config{}, err
	}
	cfg.InvoiceTermsDays = terms

	if cfg.SessionSecret == "" {
		if !cfg.IsDev() {
			return Config{}, errors.New("SESSION_SECRET is required outside development")
		}
		logger.Warn("SESSION_SECRET is not set; API requests are not authenticated")
	}
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set; advisory insights will fail")
	}

	return cfg, nil
}

// LoadEnv loads .env from the working directory if it exists.
func LoadEnv() error {
	return loadDotEnv(".env")
}

// BlobConfig reads the BLOB_* variables. The memory driver is the default.
func BlobConfig() blob.Config {
	return blob.Config{
		Driver: blob.Driver(envOr("BLOB_DRIVER", string(blob.DriverMemory))),
		S3: blob.S3Config{
			Bucket:          os.Getenv("BLOB_S3_BUCKET"),
			Region:          os.Getenv("BLOB_S3_REGION"),
			Endpoint:        os.Getenv("BLOB_S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("BLOB_S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("BLOB_S3_SECRET_ACCESS_KEY"),
			PathStyle:       os.Getenv("BLOB_S3_PATH_STYLE") == "true",
		},
	}
}

// DatabaseDSN returns DB_DSN, falling back to the sqlite-only DB_PATH.
func DatabaseDSN() string {
	if dsn := envOr("DB_DSN", ""); dsn != "" {
		return dsn
	}
	return envOr("DB_PATH", defaultDBPath)
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, raw)
	}
	return n, nil
}
