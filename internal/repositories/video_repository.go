package repositories

import (
	"context"
	"time"

	"github.com/starshout/backend/internal/models"
)

// VideoRepository exposes data access for uploaded videos.
type VideoRepository interface {
	// Create stores a standalone (share-token) video record.
	Create(ctx context.Context, video models.Video) error
	// CreateCompletingRequest inserts the video and advances its request
	// from accepted to completed in one transaction, gated on the uploader
	// being the request's celebrity. It reports false when the request
	// predicate matches no row; nothing is written in that case.
	CreateCompletingRequest(ctx context.Context, video models.Video, at time.Time) (bool, error)
	FindByID(ctx context.Context, id string) (models.Video, error)
	FindByShareToken(ctx context.Context, token string) (models.Video, error)
	// IncrementViews bumps the view counter. Best effort; callers may
	// ignore failures.
	IncrementViews(ctx context.Context, id string) error
}
