package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	Parse    ParseConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Language         string
	TessdataDir      string
	PageSegMode      int
	ArtifactCacheDir string
	PreprocessWidth  int
}

// ParseConfig holds parsing-related configuration
type ParseConfig struct {
	VATIDPattern string
	Country      string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			DSN:             getEnv("DB_URL", "file:scontrini.db?_pragma=foreign_keys(1)"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			MaxUploadBytes:  getEnvAsInt64("MAX_UPLOAD_BYTES", 20<<20),
		},
		OCR: OCRConfig{
			Language:         getEnv("OCR_LANGUAGE", "ita"),
			TessdataDir:      getEnv("TESSDATA_PREFIX", ""),
			PageSegMode:      getEnvAsInt("OCR_PSM", 6),
			ArtifactCacheDir: getEnv("ARTIFACT_CACHE_DIR", "./tmp"),
			PreprocessWidth:  getEnvAsInt("OCR_PREPROCESS_WIDTH", 1600),
		},
		Parse: ParseConfig{
			VATIDPattern: getEnv("PARSE_VAT_PATTERN", ""),
			Country:      getEnv("PARSE_COUNTRY", "IT"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Database.Driver != "sqlite" && c.Database.Driver != "pgx" {
		return NewAppError("CONFIG_ERROR", "DB_DRIVER must be sqlite or pgx", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.OCR.Language == "" {
		return NewAppError("CONFIG_ERROR", "OCR_LANGUAGE is required", ErrInvalidInput)
	}
	return nil
}
