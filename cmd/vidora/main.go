package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/vidora/vidora/pkg/api"
	"github.com/vidora/vidora/pkg/auth"
	"github.com/vidora/vidora/pkg/config"
	"github.com/vidora/vidora/pkg/media"
	"github.com/vidora/vidora/pkg/middleware"
	"github.com/vidora/vidora/pkg/observability"
	"github.com/vidora/vidora/pkg/session"
	"github.com/vidora/vidora/pkg/storage"
	"github.com/vidora/vidora/pkg/storage/postgres"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	accessLogger := logrus.New()
	accessLogger.SetFormatter(&logrus.JSONFormatter{})

	directory, err := buildDirectory(cfg)
	if err != nil {
		logger.WithError(err).Error("failed to initialize storage")
		os.Exit(1)
	}
	defer directory.Close()

	uploader, staticRoot, err := buildUploader(cfg)
	if err != nil {
		logger.WithError(err).Error("failed to initialize media storage")
		os.Exit(1)
	}

	issuer := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  []byte(cfg.Auth.AccessTokenSecret),
		AccessExpiry:  cfg.Auth.AccessTokenExpiry,
		RefreshSecret: []byte(cfg.Auth.RefreshTokenSecret),
		RefreshExpiry: cfg.Auth.RefreshTokenExpiry,
	})
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	sessions := session.NewManager(directory, hasher, issuer, logger)
	gate := middleware.NewAuthGate(issuer, directory, logger)

	server := api.NewServer(api.Options{
		Sessions:      sessions,
		Gate:          gate,
		Uploader:      uploader,
		Health:        observability.NewHealthChecker(directory),
		Logger:        logger,
		AccessLogger:  accessLogger,
		CORSOrigins:   cfg.Server.CORSOrigins,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
		SecureCookies: cfg.Server.SecureCookies,
		StaticRoot:    staticRoot,
	})

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.WithFields(map[string]interface{}{
			"addr":    addr,
			"storage": cfg.Storage.Type,
			"media":   cfg.Storage.MediaType,
		}).Info("server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("server failed")
			os.Exit(1)
		}
	}()

	// Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("shutdown failed")
	}
	logger.Info("server stopped")
}

// buildDirectory selects the account store from configuration, optionally
// wrapping it in the redis cache.
func buildDirectory(cfg *config.Config) (storage.Directory, error) {
	var directory storage.Directory
	switch cfg.Storage.Type {
	case "postgres":
		pg, err := postgres.NewDirectory(cfg.Storage)
		if err != nil {
			return nil, err
		}
		directory = pg
	default:
		directory = storage.NewMemoryDirectory()
	}

	if cfg.Storage.CacheEnabled {
		cached, err := postgres.NewCachedDirectory(directory, cfg.Storage)
		if err != nil {
			return nil, err
		}
		directory = cached
	}
	return directory, nil
}

// buildUploader selects the media backend. The returned static root is empty
// unless local files need serving.
func buildUploader(cfg *config.Config) (media.Uploader, string, error) {
	if cfg.Storage.MediaType == "s3" {
		uploader, err := media.NewS3Uploader(cfg.Storage)
		return uploader, "", err
	}

	uploader, err := media.NewFilesystemUploader(cfg.Storage)
	if err != nil {
		return nil, "", err
	}
	return uploader, uploader.Root(), nil
}
