package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starshout/backend/internal/auth"
	"github.com/starshout/backend/internal/identity"
	"github.com/starshout/backend/internal/models"
	"github.com/starshout/backend/internal/repositories"
)

type inMemoryUserStore struct {
	users map[string]models.User
}

func newInMemoryUserStore() *inMemoryUserStore {
	return &inMemoryUserStore{users: make(map[string]models.User)}
}

func (s *inMemoryUserStore) Create(_ context.Context, user models.User) error {
	if _, exists := s.users[user.Email]; exists {
		return repositories.ErrConflict
	}
	s.users[user.Email] = user
	return nil
}

func (s *inMemoryUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *inMemoryUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *inMemoryUserStore) ListVerifiedCelebrities(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, user := range s.users {
		if user.IsCelebrity && user.CelebrityVerified {
			out = append(out, user)
		}
	}
	return out, nil
}

// stubSessionManager hands out predictable tokens and records revocations.
type stubSessionManager struct {
	actors  map[string]models.Actor
	revoked []string
	issued  int
	fail    bool
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{actors: make(map[string]models.Actor)}
}

func (s *stubSessionManager) Issue(_ context.Context, userID string, isCelebrity bool) (models.SessionTokens, error) {
	if s.fail {
		return models.SessionTokens{}, errors.New("issue failed")
	}
	s.issued++
	access := "access-" + userID
	s.actors[access] = models.Actor{ID: userID, IsCelebrity: isCelebrity}
	return models.SessionTokens{AccessToken: access, RefreshToken: "refresh-" + userID}, nil
}

func (s *stubSessionManager) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	userID, ok := strings.CutPrefix(refreshToken, "refresh-")
	if !ok {
		return models.SessionTokens{}, errors.New("unknown refresh token")
	}
	return s.Issue(ctx, userID, false)
}

func (s *stubSessionManager) Verify(token string) (auth.Claims, error) {
	actor, ok := s.actors[token]
	if !ok {
		return auth.Claims{}, auth.ErrInvalidAccessToken
	}
	return auth.Claims{UserID: actor.ID, IsCelebrity: actor.IsCelebrity}, nil
}

func (s *stubSessionManager) Revoke(_ context.Context, refreshToken string) {
	s.revoked = append(s.revoked, refreshToken)
}

// bearerFor registers an actor with the stub and returns its header value.
func (s *stubSessionManager) bearerFor(actor models.Actor) string {
	token := "access-" + actor.ID
	s.actors[token] = actor
	return "Bearer " + token
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

func postJSON(t *testing.T, handler http.HandlerFunc, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestSignUpCreatesAccount(t *testing.T) {
	users := newInMemoryUserStore()
	sessions := newStubSessionManager()
	handler := AuthHandler{Users: users, Sessions: sessions, AutoVerifyCelebrities: true}

	rec := postJSON(t, handler.SignUp, "/api/v1/auth/signup", signUpRequest{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "Ada@Example.com",
		Password:    "Sup3rSecret",
		IsCelebrity: true,
		Bio:         "mathematician",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 got %d body %s", rec.Code, rec.Body.String())
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatal("expected session tokens in response")
	}
	if !resp.IsCelebrity {
		t.Fatal("expected celebrity flag in response")
	}

	stored, err := users.FindByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("expected stored user: %v", err)
	}
	if !stored.CelebrityVerified {
		t.Fatal("expected auto-verified celebrity")
	}
	if stored.PasswordHash == "Sup3rSecret" {
		t.Fatal("password stored in plain text")
	}
	if !identity.VerifyPassword("Sup3rSecret", stored.PasswordHash) {
		t.Fatal("stored hash does not verify the password")
	}
}

func TestSignUpValidation(t *testing.T) {
	cases := []struct {
		name string
		req  signUpRequest
		want int
	}{
		{"missing name", signUpRequest{Email: "a@example.com", Password: "Sup3rSecret"}, http.StatusBadRequest},
		{"bad email", signUpRequest{FirstName: "A", LastName: "B", Email: "not-an-email", Password: "Sup3rSecret"}, http.StatusBadRequest},
		{"weak password", signUpRequest{FirstName: "A", LastName: "B", Email: "a@example.com", Password: "short"}, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := AuthHandler{Users: newInMemoryUserStore(), Sessions: newStubSessionManager()}
			rec := postJSON(t, handler.SignUp, "/api/v1/auth/signup", tc.req)
			if rec.Code != tc.want {
				t.Fatalf("expected status %d got %d body %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	users := newInMemoryUserStore()
	handler := AuthHandler{Users: users, Sessions: newStubSessionManager()}

	req := signUpRequest{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "Sup3rSecret"}
	if rec := postJSON(t, handler.SignUp, "/api/v1/auth/signup", req); rec.Code != http.StatusCreated {
		t.Fatalf("first signup failed with %d", rec.Code)
	}

	rec := postJSON(t, handler.SignUp, "/api/v1/auth/signup", req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 got %d", rec.Code)
	}
}

func TestSignUpCelebrityNotAutoVerified(t *testing.T) {
	users := newInMemoryUserStore()
	handler := AuthHandler{Users: users, Sessions: newStubSessionManager(), AutoVerifyCelebrities: false}

	rec := postJSON(t, handler.SignUp, "/api/v1/auth/signup", signUpRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "Sup3rSecret", IsCelebrity: true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 got %d", rec.Code)
	}

	stored, err := users.FindByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("expected stored user: %v", err)
	}
	if stored.CelebrityVerified {
		t.Fatal("celebrity should not be verified at signup")
	}
}

func TestLogin(t *testing.T) {
	users := newInMemoryUserStore()
	sessions := newStubSessionManager()
	signUp := AuthHandler{Users: users, Sessions: sessions}
	if rec := postJSON(t, signUp.SignUp, "/api/v1/auth/signup", signUpRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "Sup3rSecret",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("signup failed with %d", rec.Code)
	}

	handler := AuthHandler{Users: users, Sessions: sessions}

	rec := postJSON(t, handler.Login, "/api/v1/auth/login", loginRequest{Email: "ADA@example.com", Password: "Sup3rSecret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d body %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, handler.Login, "/api/v1/auth/login", loginRequest{Email: "ada@example.com", Password: "WrongPass1"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 got %d", rec.Code)
	}

	rec = postJSON(t, handler.Login, "/api/v1/auth/login", loginRequest{Email: "ghost@example.com", Password: "Sup3rSecret"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for unknown account got %d", rec.Code)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	sessions := newStubSessionManager()
	handler := AuthHandler{Users: newInMemoryUserStore(), Sessions: sessions}

	rec := postJSON(t, handler.Refresh, "/api/v1/auth/refresh", refreshRequest{RefreshToken: "refresh-u1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	rec = postJSON(t, handler.Refresh, "/api/v1/auth/refresh", refreshRequest{RefreshToken: "bogus"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 got %d", rec.Code)
	}

	rec = postJSON(t, handler.Logout, "/api/v1/auth/logout", refreshRequest{RefreshToken: "refresh-u1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "refresh-u1" {
		t.Fatalf("expected refresh token revoked, got %v", sessions.revoked)
	}
}

func TestAuthEndpointsRateLimited(t *testing.T) {
	handler := AuthHandler{Users: newInMemoryUserStore(), Sessions: newStubSessionManager(), Limiter: denyAllLimiter{}}

	rec := postJSON(t, handler.SignUp, "/api/v1/auth/signup", signUpRequest{})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429 got %d", rec.Code)
	}

	rec = postJSON(t, handler.Login, "/api/v1/auth/login", loginRequest{})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429 got %d", rec.Code)
	}
}
