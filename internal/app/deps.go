package app

import (
	"context"
	"fmt"
	"time"

	"github.com/starshout/backend/internal/assets"
	"github.com/starshout/backend/internal/auth"
	"github.com/starshout/backend/internal/config"
	"github.com/starshout/backend/internal/db"
	"github.com/starshout/backend/internal/handlers"
	"github.com/starshout/backend/internal/lifecycle"
	"github.com/starshout/backend/internal/middleware"
	"github.com/starshout/backend/internal/repositories"
	"github.com/starshout/backend/internal/storage"
)

const rateLimiterEntryTTL = 10 * time.Minute

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	blobs, err := buildBlobStorage(ctx, cfg)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	users := repositories.NewPostgresUserRepository(pool)
	requests := repositories.NewPostgresRequestRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	sessionStore := repositories.NewPostgresSessionStore(pool)

	return handlers.Dependencies{
		Users:    users,
		Sessions: auth.NewManager([]byte(cfg.SessionSecret), cfg.AccessTTL, cfg.RefreshTTL, sessionStore),
		Requests: lifecycle.NewService(requests, users),
		Assets:   assets.NewService(videos, requests, blobs, cfg.MaxUploadBytes),

		AuthLimiter:   middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow, cfg.AuthRateLimit, rateLimiterEntryTTL),
		UploadLimiter: middleware.NewIPRateLimiter(cfg.UploadRateLimit, cfg.UploadRateWindow, cfg.UploadRateLimit, rateLimiterEntryTTL),

		AutoVerifyCelebrities: cfg.AutoVerifyCelebrities,
		MaxUploadBytes:        cfg.MaxUploadBytes,
	}, nil
}

func buildBlobStorage(ctx context.Context, cfg config.Config) (storage.Blob, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendS3:
		blobs, err := storage.NewS3Storage(ctx, storage.ObjectStoreConfig{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("configure s3 storage: %w", err)
		}
		return blobs, nil
	case config.StorageBackendDisk:
		blobs, err := storage.NewDiskStorage(cfg.UploadDir)
		if err != nil {
			return nil, fmt.Errorf("configure disk storage: %w", err)
		}
		return blobs, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
