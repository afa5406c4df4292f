package handlers

import (
	"context"
	"io"

	"github.com/starshout/backend/internal/assets"
	"github.com/starshout/backend/internal/auth"
	"github.com/starshout/backend/internal/lifecycle"
	"github.com/starshout/backend/internal/models"
)

// UserStore captures the persistence operations required by the auth and
// directory handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	ListVerifiedCelebrities(ctx context.Context) ([]models.User, error)
}

// SessionManager issues, refreshes, and verifies authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string, isCelebrity bool) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Verify(token string) (auth.Claims, error)
	Revoke(ctx context.Context, refreshToken string)
}

// RequestService drives the video request lifecycle on behalf of handlers.
type RequestService interface {
	Create(ctx context.Context, actor models.Actor, input lifecycle.CreateInput) (models.VideoRequest, error)
	Accept(ctx context.Context, actor models.Actor, requestID string) (models.VideoRequest, error)
	Reject(ctx context.Context, actor models.Actor, requestID, reason string) (models.VideoRequest, error)
	Get(ctx context.Context, actor models.Actor, requestID string) (models.VideoRequest, error)
	ListOutgoing(ctx context.Context, actor models.Actor) ([]models.VideoRequest, error)
	ListIncoming(ctx context.Context, actor models.Actor) ([]models.VideoRequest, error)
}

// AssetService handles uploads and viewing authorization for videos.
type AssetService interface {
	UploadForRequest(ctx context.Context, actor models.Actor, requestID string, upload assets.Upload) (models.Video, error)
	UploadStandalone(ctx context.Context, actor models.Actor, upload assets.Upload) (models.Video, error)
	ResolveByToken(ctx context.Context, token string) (models.Video, error)
	ResolveForActor(ctx context.Context, actor models.Actor, videoID string) (models.Video, error)
	Open(ctx context.Context, video models.Video) (io.ReadCloser, error)
	CountView(ctx context.Context, videoID string)
}
