package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/RenatoCabral2022/melodygen/internal/audio"
	"github.com/RenatoCabral2022/melodygen/internal/cache"
	"github.com/RenatoCabral2022/melodygen/internal/composer"
	"github.com/RenatoCabral2022/melodygen/internal/config"
	"github.com/RenatoCabral2022/melodygen/internal/generator"
	"github.com/RenatoCabral2022/melodygen/internal/handler"
	"github.com/RenatoCabral2022/melodygen/internal/inference"
	"github.com/RenatoCabral2022/melodygen/internal/logger"
	"github.com/RenatoCabral2022/melodygen/internal/storage"
	"github.com/RenatoCabral2022/melodygen/internal/vocab"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFile)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	v, err := vocab.Load(cfg.MappingsPath, cfg.MetadataPath)
	if err != nil {
		log.Fatal("failed to load vocabulary", zap.String("mappings", cfg.MappingsPath), zap.Error(err))
	}
	log.Info("vocabulary loaded",
		zap.Int("size", v.Size()),
		zap.Int("sequence_length", v.SequenceLength()),
		zap.String("fingerprint", v.Fingerprint()),
	)

	predictor, predictorCloser, err := inference.Open(cfg.PredictorBackend, cfg.PredictorAddr, v.Size())
	if err != nil {
		log.Fatal("failed to create predictor", zap.Error(err))
	}
	defer predictorCloser.Close()

	ctx := context.Background()

	var (
		store     storage.Store
		staticDir string
	)
	switch cfg.StorageBackend {
	case config.StorageS3:
		store, err = storage.NewS3Store(ctx, cfg.S3Region, cfg.S3Bucket, "generated", cfg.S3BaseURL)
	default:
		store, err = storage.NewLocalStore(cfg.StaticDir, "/static")
		staticDir = cfg.StaticDir
	}
	if err != nil {
		log.Fatal("failed to create artifact store", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}

	var seqCache cache.Cache = cache.NopCache{}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, cache.DefaultTTL)
		if err != nil {
			// seeded caching is an optimisation; run without it
			log.Warn("redis unavailable, sequence cache disabled", zap.Error(err))
		} else {
			seqCache = rc
			defer rc.Close()
		}
	}

	c := composer.New(
		generator.New(predictor, v, log),
		v,
		audio.NewSynthesizer(cfg.SampleRate),
		store,
		composer.WithCache(seqCache),
		composer.WithLogger(log),
		composer.WithMaxConcurrent(cfg.MaxConcurrentGenerations),
	)
	h := handler.NewHandlers(c, store, v, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.NewRouter(h, log, staticDir),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("melodygen listening",
			zap.String("addr", srv.Addr),
			zap.String("predictor", cfg.PredictorBackend),
			zap.String("storage", cfg.StorageBackend),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}
