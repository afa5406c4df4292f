package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/starshout/backend/internal/models"
)

var errNoBearerToken = errors.New("missing bearer token")

// actorFromRequest resolves the authenticated actor from the Authorization
// header. The transport owns token parsing; core components only ever see
// the resulting Actor.
func actorFromRequest(sessions SessionManager, r *http.Request) (models.Actor, error) {
	if sessions == nil {
		return models.Actor{}, errNoBearerToken
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return models.Actor{}, errNoBearerToken
	}

	claims, err := sessions.Verify(strings.TrimSpace(token))
	if err != nil {
		return models.Actor{}, err
	}

	return models.Actor{ID: claims.UserID, IsCelebrity: claims.IsCelebrity}, nil
}

func respondUnauthenticated(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="starshout"`)
	respondJSON(r.Context(), w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
}
