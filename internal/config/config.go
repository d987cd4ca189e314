package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	PredictorGRPC    = "grpc"
	PredictorUniform = "uniform"

	StorageLocal = "local"
	StorageS3    = "s3"
)

type Config struct {
	Port string

	MappingsPath string
	MetadataPath string

	PredictorBackend string
	PredictorAddr    string

	StorageBackend string
	StaticDir      string
	S3Bucket       string
	S3Region       string
	S3BaseURL      string

	RedisURL string

	MaxConcurrentGenerations int
	SampleRate               int

	LogLevel string
	LogFile  string
}

// Load reads configuration from the environment. A .env file in the working
// directory, when present, fills in variables that are not already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                     getEnv("PORT", "5000"),
		MappingsPath:             getEnv("MAPPINGS_PATH", "models/note_mappings.json"),
		MetadataPath:             getEnv("METADATA_PATH", "models/model_metadata.json"),
		PredictorBackend:         strings.ToLower(getEnv("PREDICTOR_BACKEND", PredictorGRPC)),
		PredictorAddr:            getEnv("PREDICTOR_ADDR", "localhost:50061"),
		StorageBackend:           strings.ToLower(getEnv("STORAGE_BACKEND", StorageLocal)),
		StaticDir:                getEnv("STATIC_DIR", "static"),
		S3Bucket:                 getEnv("S3_BUCKET", ""),
		S3Region:                 getEnv("S3_REGION", "us-east-1"),
		S3BaseURL:                getEnv("S3_BASE_URL", ""),
		RedisURL:                 getEnv("REDIS_URL", ""),
		MaxConcurrentGenerations: getEnvInt("MAX_CONCURRENT_GENERATIONS", 4),
		SampleRate:               getEnvInt("SAMPLE_RATE", 22050),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		LogFile:                  getEnv("LOG_FILE", ""),
	}
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.PredictorBackend {
	case PredictorGRPC:
		if c.PredictorAddr == "" {
			return fmt.Errorf("PREDICTOR_ADDR is required for the %s predictor", PredictorGRPC)
		}
	case PredictorUniform:
	default:
		return fmt.Errorf("unknown PREDICTOR_BACKEND %q", c.PredictorBackend)
	}

	switch c.StorageBackend {
	case StorageLocal:
		if c.StaticDir == "" {
			return fmt.Errorf("STATIC_DIR is required for local storage")
		}
	case StorageS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for s3 storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.MaxConcurrentGenerations <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_GENERATIONS must be positive, got %d", c.MaxConcurrentGenerations)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("SAMPLE_RATE must be positive, got %d", c.SampleRate)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
