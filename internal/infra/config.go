package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string
	WebURL string

	// Storage backend: "local" or "s3".
	StorageMode string
	OutputDir   string
	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Region    string

	// Generation backend: "openai" or "replicate".
	ImageProvider     string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	ReplicateAPIToken string
	ReplicateBaseURL  string
	ReplicateModel    string

	MaxFileSizeMB   int
	RateLimitMax    int
	RateLimitWindow time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// MaxFileBytes converts the configured upload cap to bytes.
func (c *Config) MaxFileBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. Provider and storage credentials are only required
// for the backend actually selected.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "3001"),
		WebURL: getEnv("WEB_URL", "http://localhost:5173"),

		StorageMode: getEnv("STORAGE_MODE", "local"),
		OutputDir:   getEnv("OUTPUT_DIR", "/data/outputs"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Region:    os.Getenv("S3_REGION"),

		ImageProvider:     getEnv("IMAGE_PROVIDER", "openai"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		ReplicateAPIToken: os.Getenv("REPLICATE_API_TOKEN"),
		ReplicateBaseURL:  os.Getenv("REPLICATE_BASE_URL"),
		ReplicateModel:    os.Getenv("REPLICATE_MODEL"),

		MaxFileSizeMB:   getEnvInt("MAX_FILE_SIZE_MB", 10),
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX_REQUESTS", 10),
		RateLimitWindow: time.Millisecond * time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MS", 900000)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	switch cfg.StorageMode {
	case "local":
	case "s3":
		if cfg.S3Endpoint == "" || cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_ENDPOINT and S3_BUCKET are required when STORAGE_MODE=s3")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_MODE %q", cfg.StorageMode)
	}

	switch cfg.ImageProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when IMAGE_PROVIDER=openai")
		}
	case "replicate":
		if cfg.ReplicateAPIToken == "" {
			return nil, fmt.Errorf("REPLICATE_API_TOKEN is required when IMAGE_PROVIDER=replicate")
		}
	default:
		return nil, fmt.Errorf("unknown IMAGE_PROVIDER %q", cfg.ImageProvider)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
