package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "3001" {
		t.Fatalf("unexpected port: %s", cfg.Port)
	}
	if cfg.StorageMode != "local" {
		t.Fatalf("unexpected storage mode: %s", cfg.StorageMode)
	}
	if cfg.ImageProvider != "openai" {
		t.Fatalf("unexpected image provider: %s", cfg.ImageProvider)
	}
	if cfg.MaxFileBytes() != 10*1024*1024 {
		t.Fatalf("unexpected max file bytes: %d", cfg.MaxFileBytes())
	}
	if cfg.RateLimitWindow != 15*time.Minute {
		t.Fatalf("unexpected rate limit window: %s", cfg.RateLimitWindow)
	}
}

func TestLoadConfigRequiresProviderCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("IMAGE_PROVIDER", "openai")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected missing OPENAI_API_KEY to fail")
	}

	t.Setenv("IMAGE_PROVIDER", "replicate")
	t.Setenv("REPLICATE_API_TOKEN", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected missing REPLICATE_API_TOKEN to fail")
	}
}

func TestLoadConfigS3RequiresEndpointAndBucket(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("STORAGE_MODE", "s3")
	t.Setenv("S3_ENDPOINT", "")
	t.Setenv("S3_BUCKET", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected s3 mode without endpoint/bucket to fail")
	}

	t.Setenv("S3_ENDPOINT", "https://minio.local")
	t.Setenv("S3_BUCKET", "outputs")
	if _, err := LoadConfig(); err != nil {
		t.Fatalf("expected s3 mode with endpoint/bucket to load, got %v", err)
	}
}
