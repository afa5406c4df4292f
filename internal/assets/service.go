// Package assets binds uploaded video files to requests or to standalone
// share tokens and enforces viewing authorization. Uploads are validated
// against an extension allow-list and a size ceiling, stored under generated
// names, and cleaned up whenever the record step fails after the blob write.
package assets

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starshout/backend/internal/lifecycle"
	"github.com/starshout/backend/internal/logging"
	"github.com/starshout/backend/internal/models"
	"github.com/starshout/backend/internal/repositories"
	"github.com/starshout/backend/internal/storage"
)

// DefaultMaxUploadBytes bounds uploads when no ceiling is configured.
const DefaultMaxUploadBytes = 200 << 20 // 200 MiB

var allowedExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".avi":  {},
	".mkv":  {},
	".webm": {},
	".wmv":  {},
	".flv":  {},
}

// VideoStore captures the persistence operations the asset component needs.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	CreateCompletingRequest(ctx context.Context, video models.Video, at time.Time) (bool, error)
	FindByID(ctx context.Context, id string) (models.Video, error)
	FindByShareToken(ctx context.Context, token string) (models.Video, error)
	IncrementViews(ctx context.Context, id string) error
}

// RequestReader resolves requests for authorization checks.
type RequestReader interface {
	FindByID(ctx context.Context, id string) (models.VideoRequest, error)
}

// Service implements upload, binding, and viewing authorization for videos.
type Service struct {
	videos   VideoStore
	requests RequestReader
	blobs    storage.Blob
	maxBytes int64
	nowFunc  func() time.Time
}

// NewService constructs the asset service. maxBytes <= 0 applies the default
// ceiling.
func NewService(videos VideoStore, requests RequestReader, blobs storage.Blob, maxBytes int64) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Service{
		videos:   videos,
		requests: requests,
		blobs:    blobs,
		maxBytes: maxBytes,
	}
}

// WithNowFunc overrides the time source. Intended for tests.
func (s *Service) WithNowFunc(now func() time.Time) *Service {
	s.nowFunc = now
	return s
}

// Upload carries an incoming video file.
type Upload struct {
	Content  io.Reader
	Size     int64
	Filename string
	MimeType string
}

// UploadForRequest stores the file and atomically links it to the request,
// advancing the request from accepted to completed. The actor must be the
// request's celebrity. If the record step fails after the blob is written,
// the blob is deleted and ErrStorage is returned.
func (s *Service) UploadForRequest(ctx context.Context, actor models.Actor, requestID string, upload Upload) (models.Video, error) {
	ctx, span := logging.StartSpan(ctx, "assets.upload_for_request")
	defer span.End()

	ext, err := s.validate(upload)
	if err != nil {
		return models.Video{}, err
	}

	// Early read so obvious misses fail before any bytes are written. The
	// conditional write below remains the authority under concurrency.
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return models.Video{}, err
	}
	if request.CelebrityID != actor.ID {
		return models.Video{}, ErrUnauthorized
	}
	if request.Status != models.RequestStatusAccepted {
		return models.Video{}, lifecycle.ErrInvalidTransition
	}

	video := models.Video{
		ID:               uuid.NewString(),
		RequestID:        requestID,
		UploaderID:       actor.ID,
		StorageName:      generateStorageName(ext),
		OriginalFilename: upload.Filename,
		MimeType:         upload.MimeType,
		SizeBytes:        upload.Size,
		CreatedAt:        s.now(),
	}

	if _, err := s.blobs.Save(ctx, video.StorageName, io.LimitReader(upload.Content, s.maxBytes)); err != nil {
		return models.Video{}, fmt.Errorf("%w: %s", ErrStorage, err)
	}

	linked, err := s.videos.CreateCompletingRequest(ctx, video, video.CreatedAt)
	if err != nil {
		s.discardBlob(ctx, video.StorageName)
		return models.Video{}, fmt.Errorf("%w: %s", ErrStorage, err)
	}
	if !linked {
		s.discardBlob(ctx, video.StorageName)
		return models.Video{}, s.classifyLinkFailure(ctx, actor, requestID)
	}

	logging.FromContext(ctx).Info("request video uploaded",
		"requestId", requestID, "videoId", video.ID, "sizeBytes", video.SizeBytes)

	return video, nil
}

// UploadStandalone stores a file retrievable only through its share token.
func (s *Service) UploadStandalone(ctx context.Context, actor models.Actor, upload Upload) (models.Video, error) {
	ctx, span := logging.StartSpan(ctx, "assets.upload_standalone")
	defer span.End()

	ext, err := s.validate(upload)
	if err != nil {
		return models.Video{}, err
	}

	token, err := generateShareToken()
	if err != nil {
		return models.Video{}, err
	}

	video := models.Video{
		ID:               uuid.NewString(),
		UploaderID:       actor.ID,
		StorageName:      generateStorageName(ext),
		OriginalFilename: upload.Filename,
		MimeType:         upload.MimeType,
		SizeBytes:        upload.Size,
		ShareToken:       token,
		CreatedAt:        s.now(),
	}

	if _, err := s.blobs.Save(ctx, video.StorageName, io.LimitReader(upload.Content, s.maxBytes)); err != nil {
		return models.Video{}, fmt.Errorf("%w: %s", ErrStorage, err)
	}

	if err := s.videos.Create(ctx, video); err != nil {
		s.discardBlob(ctx, video.StorageName)
		return models.Video{}, fmt.Errorf("%w: %s", ErrStorage, err)
	}

	logging.FromContext(ctx).Info("standalone video uploaded",
		"videoId", video.ID, "sizeBytes", video.SizeBytes)

	return video, nil
}

// ResolveByToken grants access purely by token possession. Unknown tokens
// and missing underlying files both surface as not-found.
func (s *Service) ResolveByToken(ctx context.Context, token string) (models.Video, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Video{}, repositories.ErrNotFound
	}

	video, err := s.videos.FindByShareToken(ctx, token)
	if err != nil {
		return models.Video{}, err
	}

	return s.ensureStored(ctx, video)
}

// ResolveForActor returns the video when the actor is its uploader or a
// party (requester or celebrity) of its linked request.
func (s *Service) ResolveForActor(ctx context.Context, actor models.Actor, videoID string) (models.Video, error) {
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return models.Video{}, err
	}

	if video.UploaderID != actor.ID {
		if video.RequestID == "" {
			return models.Video{}, ErrUnauthorized
		}
		request, err := s.requests.FindByID(ctx, video.RequestID)
		if err != nil {
			return models.Video{}, err
		}
		if request.RequesterID != actor.ID && request.CelebrityID != actor.ID {
			return models.Video{}, ErrUnauthorized
		}
	}

	return s.ensureStored(ctx, video)
}

// Open streams the stored file for a previously resolved video.
func (s *Service) Open(ctx context.Context, video models.Video) (io.ReadCloser, error) {
	rc, err := s.blobs.Open(ctx, video.StorageName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %s", ErrStorage, err)
	}
	return rc, nil
}

// CountView bumps the view counter. Best effort: failures are logged and
// never surfaced, and concurrent streams may lose increments.
func (s *Service) CountView(ctx context.Context, videoID string) {
	if err := s.videos.IncrementViews(ctx, videoID); err != nil {
		logging.FromContext(ctx).Warn("increment view count", "videoId", videoID, "error", err)
	}
}

func (s *Service) validate(upload Upload) (string, error) {
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", ErrUnsupportedMediaType
	}
	if upload.Size > s.maxBytes {
		return "", ErrPayloadTooLarge
	}
	return ext, nil
}

// ensureStored distinguishes storage/record inconsistencies from
// authorization failures.
func (s *Service) ensureStored(ctx context.Context, video models.Video) (models.Video, error) {
	ok, err := s.blobs.Exists(ctx, video.StorageName)
	if err != nil {
		return models.Video{}, fmt.Errorf("%w: %s", ErrStorage, err)
	}
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *Service) classifyLinkFailure(ctx context.Context, actor models.Actor, requestID string) error {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.CelebrityID != actor.ID {
		return ErrUnauthorized
	}
	return lifecycle.ErrInvalidTransition
}

// discardBlob removes an orphaned upload. It runs on a detached context so
// cleanup still happens when the request context is already canceled.
func (s *Service) discardBlob(ctx context.Context, name string) {
	cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.blobs.Delete(cleanupCtx, name); err != nil {
		logging.FromContext(ctx).Error("discard orphaned blob", "name", name, "error", err)
	}
}

func (s *Service) now() time.Time {
	if s.nowFunc != nil {
		return s.nowFunc().UTC()
	}
	return time.Now().UTC()
}

// generateStorageName produces a collision-resistant stored name that never
// derives from the client-supplied filename.
func generateStorageName(ext string) string {
	return uuid.NewString() + ext
}

// generateShareToken returns 256 bits of URL-safe entropy.
func generateShareToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
