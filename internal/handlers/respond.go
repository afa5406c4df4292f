package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/starshout/backend/internal/assets"
	"github.com/starshout/backend/internal/lifecycle"
	"github.com/starshout/backend/internal/logging"
	"github.com/starshout/backend/internal/repositories"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// respondError translates core error kinds into HTTP statuses. Validation
// messages are surfaced verbatim; everything else gets a fixed message so
// internals never leak.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	var verr lifecycle.ValidationError

	switch {
	case errors.As(err, &verr):
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": verr.Error()})
	case errors.Is(err, repositories.ErrNotFound):
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, lifecycle.ErrUnauthorized), errors.Is(err, assets.ErrUnauthorized):
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "request is not in a valid state for this action"})
	case errors.Is(err, repositories.ErrConflict):
		respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "conflict"})
	case errors.Is(err, assets.ErrUnsupportedMediaType):
		respondJSON(ctx, w, http.StatusUnsupportedMediaType, map[string]string{"error": "unsupported video format"})
	case errors.Is(err, assets.ErrPayloadTooLarge):
		respondJSON(ctx, w, http.StatusRequestEntityTooLarge, map[string]string{"error": "video exceeds the upload limit"})
	case errors.Is(err, assets.ErrStorage):
		logging.FromContext(ctx).Error("storage failure", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "storage failure"})
	case errors.Is(err, repositories.ErrUnavailable):
		respondJSON(ctx, w, http.StatusBadGateway, map[string]string{"error": "service temporarily unavailable"})
	default:
		logging.FromContext(ctx).Error("unhandled core error", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
