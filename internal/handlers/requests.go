package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/starshout/backend/internal/lifecycle"
	"github.com/starshout/backend/internal/logging"
	"github.com/starshout/backend/internal/models"
)

// RequestHandler exposes the video request lifecycle over HTTP.
type RequestHandler struct {
	Requests RequestService
	Sessions SessionManager
}

type createRequestPayload struct {
	CelebrityID   string `json:"celebrityId"`
	RecipientName string `json:"recipientName"`
	Occasion      string `json:"occasion"`
	Message       string `json:"message"`
}

type rejectPayload struct {
	Reason string `json:"reason"`
}

type requestResponse struct {
	ID              string     `json:"id"`
	RequesterID     string     `json:"requesterId"`
	CelebrityID     string     `json:"celebrityId"`
	RecipientName   string     `json:"recipientName"`
	Occasion        string     `json:"occasion"`
	Message         string     `json:"message"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	VideoID         string     `json:"videoId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	AcceptedAt      *time.Time `json:"acceptedAt,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

func toRequestResponse(request models.VideoRequest) requestResponse {
	return requestResponse{
		ID:              request.ID,
		RequesterID:     request.RequesterID,
		CelebrityID:     request.CelebrityID,
		RecipientName:   request.RecipientName,
		Occasion:        request.Occasion,
		Message:         request.Message,
		Status:          request.Status,
		RejectionReason: request.RejectionReason,
		VideoID:         request.VideoID,
		CreatedAt:       request.CreatedAt,
		AcceptedAt:      request.AcceptedAt,
		RejectedAt:      request.RejectedAt,
		CompletedAt:     request.CompletedAt,
	}
}

func toRequestResponses(requests []models.VideoRequest) []requestResponse {
	out := make([]requestResponse, 0, len(requests))
	for _, request := range requests {
		out = append(out, toRequestResponse(request))
	}
	return out
}

// Create handles POST /api/v1/requests.
func (h RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := actorFromRequest(h.Sessions, r)
	if err != nil {
		respondUnauthenticated(w, r)
		return
	}

	var payload createRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logging.FromContext(ctx).Warn("invalid request payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	request, err := h.Requests.Create(ctx, actor, lifecycle.CreateInput{
		CelebrityID:   payload.CelebrityID,
		RecipientName: payload.RecipientName,
		Occasion:      payload.Occasion,
		Message:       payload.Message,
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, toRequestResponse(request))
}

// Outgoing handles GET /api/v1/requests/outgoing.
func (h RequestHandler) Outgoing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := actorFromRequest(h.Sessions, r)
	if err != nil {
		respondUnauthenticated(w, r)
		return
	}

	requests, err := h.Requests.ListOutgoing(ctx, actor)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toRequestResponses(requests))
}

// Incoming handles GET /api/v1/requests/incoming.
func (h RequestHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := actorFromRequest(h.Sessions, r)
	if err != nil {
		respondUnauthenticated(w, r)
		return
	}

	requests, err := h.Requests.ListIncoming(ctx, actor)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toRequestResponses(requests))
}

// Get handles GET /api/v1/requests/{id}.
func (h RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := actorFromRequest(h.Sessions, r)
	if err != nil {
		respondUnauthenticated(w, r)
		return
	}

	request, err := h.Requests.Get(ctx, actor, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toRequestResponse(request))
}

// Accept handles POST /api/v1/requests/{id}/accept.
func (h RequestHandler) Accept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := actorFromRequest(h.Sessions, r)
	if err != nil {
		respondUnauthenticated(w, r)
		return
	}

	request, err := h.Requests.Accept(ctx, actor, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toRequestResponse(request))
}

// Reject handles POST /api/v1/requests/{id}/reject.
func (h RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := actorFromRequest(h.Sessions, r)
	if err != nil {
		respondUnauthenticated(w, r)
		return
	}

	var payload rejectPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	request, err := h.Requests.Reject(ctx, actor, r.PathValue("id"), payload.Reason)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toRequestResponse(request))
}
