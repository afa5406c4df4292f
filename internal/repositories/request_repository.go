package repositories

import (
	"context"
	"time"

	"github.com/starshout/backend/internal/models"
)

// RequestRepository exposes data access for video requests. The Mark*
// methods are conditional writes: they report false (with a nil error) when
// the id/celebrity/status predicate matches no row, which is how the
// lifecycle service distinguishes guard failures from store failures.
type RequestRepository interface {
	Create(ctx context.Context, request models.VideoRequest) error
	FindByID(ctx context.Context, id string) (models.VideoRequest, error)
	ListForRequester(ctx context.Context, requesterID string) ([]models.VideoRequest, error)
	ListForCelebrity(ctx context.Context, celebrityID string) ([]models.VideoRequest, error)
	MarkAccepted(ctx context.Context, requestID, celebrityID string, at time.Time) (bool, error)
	MarkRejected(ctx context.Context, requestID, celebrityID, reason string, at time.Time) (bool, error)
}
