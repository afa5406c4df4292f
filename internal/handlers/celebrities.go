package handlers

import (
	"net/http"

	"github.com/starshout/backend/internal/models"
)

// CelebrityHandler serves the public celebrity directory.
type CelebrityHandler struct {
	Users UserStore
}

type celebrityResponse struct {
	ID            string `json:"id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Bio           string `json:"bio,omitempty"`
	PricePerVideo int64  `json:"pricePerVideo"`
	Country       string `json:"country,omitempty"`
	City          string `json:"city,omitempty"`
}

// List handles GET /api/v1/celebrities.
func (h CelebrityHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	celebrities, err := h.Users.ListVerifiedCelebrities(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	out := make([]celebrityResponse, 0, len(celebrities))
	for _, c := range celebrities {
		out = append(out, toCelebrityResponse(c))
	}

	respondJSON(ctx, w, http.StatusOK, out)
}

func toCelebrityResponse(user models.User) celebrityResponse {
	return celebrityResponse{
		ID:            user.ID,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Bio:           user.Bio,
		PricePerVideo: user.PricePerVideo,
		Country:       user.Country,
		City:          user.City,
	}
}
