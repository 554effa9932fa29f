package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/madhava-poojari/learnsphere/internal/catalog"
	"github.com/madhava-poojari/learnsphere/internal/config"
	"github.com/madhava-poojari/learnsphere/internal/payment"
	"github.com/madhava-poojari/learnsphere/internal/server"
	"github.com/madhava-poojari/learnsphere/internal/service"
	"github.com/madhava-poojari/learnsphere/internal/store"
	"github.com/madhava-poojari/learnsphere/internal/utils"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	repo, err := store.Open(cfg)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	seed, err := store.LoadSeed(cfg.SeedFile)
	if err != nil {
		slog.Error("failed to load seed", "error", err)
		os.Exit(1)
	}
	if err := seed.Apply(initCtx, repo); err != nil {
		slog.Error("failed to apply seed", "error", err)
		os.Exit(1)
	}

	var receipts utils.ReceiptStorage
	switch cfg.ReceiptStorage {
	case config.ReceiptsR2:
		receipts = utils.NewR2Storage(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, cfg.R2Endpoint, cfg.R2BucketName, cfg.R2PresignTTL)
	default:
		receipts = utils.NewFileStorage(cfg.UploadDir, cfg.UploadBaseURL)
	}

	var cache catalog.ResultCache = catalog.NewMemoryCache(256)
	if cfg.RedisAddress != "" {
		client, err := catalog.NewRedisClient(initCtx, cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			slog.Warn("redis unavailable, using in-process catalog cache", "error", err)
		} else {
			defer client.Close()
			cache = catalog.NewRedisCache(client)
		}
	}

	secret := cfg.GatewaySecret
	if secret == "" {
		secret = utils.RandomToken()
		slog.Warn("GATEWAY_SECRET not set, checkout links will not survive a restart")
	}
	gateway := payment.NewSignedGateway(secret, cfg.PublicBaseURL, cfg.GatewaySessionTTL)

	svc := service.New(repo, catalog.NewService(repo, cache, cfg.CatalogCacheTTL), gateway, receipts, cfg.MaxReceiptBytes)
	httpServer := server.NewServer(cfg, repo, svc).NewHTTPServer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr, "store", cfg.StoreDriver, "receipts", cfg.ReceiptStorage)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
