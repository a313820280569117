package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iboss21/Rapper-Toon-Sheet/internal/generation"
	"github.com/iboss21/Rapper-Toon-Sheet/internal/http/handlers"
	httpapi "github.com/iboss21/Rapper-Toon-Sheet/internal/http/httpapi"
	"github.com/iboss21/Rapper-Toon-Sheet/internal/infra"
	imageprov "github.com/iboss21/Rapper-Toon-Sheet/internal/providers/image"
	"github.com/iboss21/Rapper-Toon-Sheet/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Storage backend
	var artifacts storage.Store
	outputsDir := ""
	switch cfg.StorageMode {
	case "s3":
		s3store, err := storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Region:    cfg.S3Region,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init s3 storage")
		}
		artifacts = s3store
		logger.Info().Str("bucket", cfg.S3Bucket).Msg("using s3 storage provider")
	default:
		fileStore, err := storage.NewFileStore(cfg.OutputDir, "/outputs")
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init local storage")
		}
		artifacts = fileStore
		outputsDir = fileStore.BasePath()
		logger.Info().Str("output_dir", outputsDir).Msg("using local storage provider")
	}

	// Generation backend
	var generator imageprov.Generator
	switch cfg.ImageProvider {
	case "replicate":
		generator = imageprov.NewReplicate(imageprov.ReplicateOptions{
			APIToken: cfg.ReplicateAPIToken,
			BaseURL:  cfg.ReplicateBaseURL,
			Model:    cfg.ReplicateModel,
		})
		logger.Info().Msg("using replicate image generation provider")
	default:
		generator = imageprov.NewOpenAI(imageprov.OpenAIOptions{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
		})
		logger.Info().Msg("using openai image generation provider")
	}

	service := generation.NewService(generation.NewMemoryStore(), generator, artifacts, logger)
	app := handlers.NewApp(service, logger, cfg.MaxFileBytes())

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  []string{cfg.WebURL},
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
		OutputsDir:      outputsDir,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
