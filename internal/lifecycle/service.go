// Package lifecycle implements the video request state machine:
// pending → accepted → completed, with rejection possible from pending or
// accepted. Rejected and completed are terminal. Every transition is gated
// on the acting celebrity and performed as a conditional store update, so
// concurrent attempts on the same request resolve to exactly one winner.
package lifecycle

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starshout/backend/internal/logging"
	"github.com/starshout/backend/internal/models"
	"github.com/starshout/backend/internal/repositories"
)

// RequestStore captures the persistence operations the state machine needs.
type RequestStore interface {
	Create(ctx context.Context, request models.VideoRequest) error
	FindByID(ctx context.Context, id string) (models.VideoRequest, error)
	ListForRequester(ctx context.Context, requesterID string) ([]models.VideoRequest, error)
	ListForCelebrity(ctx context.Context, celebrityID string) ([]models.VideoRequest, error)
	MarkAccepted(ctx context.Context, requestID, celebrityID string, at time.Time) (bool, error)
	MarkRejected(ctx context.Context, requestID, celebrityID, reason string, at time.Time) (bool, error)
}

// UserDirectory resolves the target celebrity at request creation.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// Service governs video request transitions and their authorization rules.
type Service struct {
	requests RequestStore
	users    UserDirectory
	nowFunc  func() time.Time
}

// NewService constructs the lifecycle service.
func NewService(requests RequestStore, users UserDirectory) *Service {
	return &Service{requests: requests, users: users}
}

// WithNowFunc overrides the time source. Intended for tests.
func (s *Service) WithNowFunc(now func() time.Time) *Service {
	s.nowFunc = now
	return s
}

// CreateInput carries the fan-supplied fields for a new request.
type CreateInput struct {
	CelebrityID   string
	RecipientName string
	Occasion      string
	Message       string
}

// Create opens a new pending request from the actor to the target celebrity.
func (s *Service) Create(ctx context.Context, actor models.Actor, input CreateInput) (models.VideoRequest, error) {
	ctx, span := logging.StartSpan(ctx, "lifecycle.create")
	defer span.End()

	input.CelebrityID = strings.TrimSpace(input.CelebrityID)
	input.RecipientName = strings.TrimSpace(input.RecipientName)
	input.Occasion = strings.TrimSpace(input.Occasion)
	input.Message = strings.TrimSpace(input.Message)

	switch {
	case input.CelebrityID == "":
		return models.VideoRequest{}, ValidationError{Field: "celebrity_id", Reason: "must not be empty"}
	case input.RecipientName == "":
		return models.VideoRequest{}, ValidationError{Field: "recipient_name", Reason: "must not be empty"}
	case input.Occasion == "":
		return models.VideoRequest{}, ValidationError{Field: "occasion", Reason: "must not be empty"}
	case input.Message == "":
		return models.VideoRequest{}, ValidationError{Field: "message", Reason: "must not be empty"}
	}

	if input.CelebrityID == actor.ID {
		return models.VideoRequest{}, ValidationError{Field: "celebrity_id", Reason: "cannot request a video from yourself"}
	}

	celebrity, err := s.users.FindByID(ctx, input.CelebrityID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.VideoRequest{}, repositories.ErrNotFound
		}
		return models.VideoRequest{}, err
	}

	if !celebrity.IsCelebrity || !celebrity.CelebrityVerified {
		return models.VideoRequest{}, ValidationError{Field: "celebrity_id", Reason: "target does not accept video requests"}
	}

	request := models.VideoRequest{
		ID:            uuid.NewString(),
		RequesterID:   actor.ID,
		CelebrityID:   input.CelebrityID,
		RecipientName: input.RecipientName,
		Occasion:      input.Occasion,
		Message:       input.Message,
		Status:        models.RequestStatusPending,
		CreatedAt:     s.now(),
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return models.VideoRequest{}, err
	}

	logging.FromContext(ctx).Info("video request created",
		"requestId", request.ID, "celebrityId", request.CelebrityID)

	return request, nil
}

// Accept moves a pending request to accepted on behalf of its celebrity.
func (s *Service) Accept(ctx context.Context, actor models.Actor, requestID string) (models.VideoRequest, error) {
	ctx, span := logging.StartSpan(ctx, "lifecycle.accept")
	defer span.End()

	moved, err := s.requests.MarkAccepted(ctx, requestID, actor.ID, s.now())
	if err != nil {
		return models.VideoRequest{}, err
	}
	if !moved {
		return models.VideoRequest{}, s.classifyGuardFailure(ctx, actor, requestID)
	}

	return s.requests.FindByID(ctx, requestID)
}

// Reject moves a pending or accepted request to rejected, recording the reason.
func (s *Service) Reject(ctx context.Context, actor models.Actor, requestID, reason string) (models.VideoRequest, error) {
	ctx, span := logging.StartSpan(ctx, "lifecycle.reject")
	defer span.End()

	moved, err := s.requests.MarkRejected(ctx, requestID, actor.ID, strings.TrimSpace(reason), s.now())
	if err != nil {
		return models.VideoRequest{}, err
	}
	if !moved {
		return models.VideoRequest{}, s.classifyGuardFailure(ctx, actor, requestID)
	}

	return s.requests.FindByID(ctx, requestID)
}

// Get returns a request visible to its requester or celebrity.
func (s *Service) Get(ctx context.Context, actor models.Actor, requestID string) (models.VideoRequest, error) {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return models.VideoRequest{}, err
	}

	if request.RequesterID != actor.ID && request.CelebrityID != actor.ID {
		return models.VideoRequest{}, ErrUnauthorized
	}

	return request, nil
}

// ListOutgoing returns the actor's own requests, newest first.
func (s *Service) ListOutgoing(ctx context.Context, actor models.Actor) ([]models.VideoRequest, error) {
	return s.requests.ListForRequester(ctx, actor.ID)
}

// ListIncoming returns requests targeting the acting celebrity, newest first.
func (s *Service) ListIncoming(ctx context.Context, actor models.Actor) ([]models.VideoRequest, error) {
	if !actor.IsCelebrity {
		return nil, ErrUnauthorized
	}
	return s.requests.ListForCelebrity(ctx, actor.ID)
}

// classifyGuardFailure names the reason a conditional transition touched no
// rows. The conditional write is the atomicity guarantee; this re-read only
// picks the error kind reported to the caller.
func (s *Service) classifyGuardFailure(ctx context.Context, actor models.Actor, requestID string) error {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return repositories.ErrNotFound
		}
		return err
	}

	if request.CelebrityID != actor.ID {
		return ErrUnauthorized
	}

	return ErrInvalidTransition
}

func (s *Service) now() time.Time {
	if s.nowFunc != nil {
		return s.nowFunc().UTC()
	}
	return time.Now().UTC()
}
