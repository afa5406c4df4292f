package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starshout/backend/internal/assets"
	"github.com/starshout/backend/internal/models"
	"github.com/starshout/backend/internal/repositories"
)

// stubAssetService serves canned videos and records views and uploads.
type stubAssetService struct {
	video   models.Video
	content string
	err     error

	lastActor     models.Actor
	lastRequestID string
	lastToken     string
	lastUpload    assets.Upload
	views         []string
}

func (s *stubAssetService) UploadForRequest(_ context.Context, actor models.Actor, requestID string, upload assets.Upload) (models.Video, error) {
	s.lastActor, s.lastRequestID, s.lastUpload = actor, requestID, upload
	return s.video, s.err
}

func (s *stubAssetService) UploadStandalone(_ context.Context, actor models.Actor, upload assets.Upload) (models.Video, error) {
	s.lastActor, s.lastUpload = actor, upload
	return s.video, s.err
}

func (s *stubAssetService) ResolveByToken(_ context.Context, token string) (models.Video, error) {
	s.lastToken = token
	return s.video, s.err
}

func (s *stubAssetService) ResolveForActor(_ context.Context, actor models.Actor, videoID string) (models.Video, error) {
	s.lastActor = actor
	if s.err != nil {
		return models.Video{}, s.err
	}
	if videoID != s.video.ID {
		return models.Video{}, repositories.ErrNotFound
	}
	return s.video, nil
}

func (s *stubAssetService) Open(_ context.Context, _ models.Video) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.content)), nil
}

func (s *stubAssetService) CountView(_ context.Context, videoID string) {
	s.views = append(s.views, videoID)
}

func newVideoMux(service AssetService, sessions SessionManager) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterRoutes(mux, Dependencies{
		Assets:   service,
		Sessions: sessions,
		Requests: &stubRequestService{},
		Users:    newInMemoryUserStore(),
	})
	return mux
}

func multipartUpload(t *testing.T, target, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("video", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadForRequestEndpoint(t *testing.T) {
	sessions := newStubSessionManager()
	bearer := sessions.bearerFor(models.Actor{ID: "celeb-1", IsCelebrity: true})

	service := &stubAssetService{video: models.Video{
		ID:               "vid-1",
		RequestID:        "req-1",
		UploaderID:       "celeb-1",
		OriginalFilename: "greeting.mp4",
		MimeType:         "video/mp4",
		SizeBytes:        11,
	}}
	mux := newVideoMux(service, sessions)

	req := multipartUpload(t, "/api/v1/requests/req-1/video", "greeting.mp4", "fake video!")
	req.Header.Set("Authorization", bearer)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 got %d body %s", rec.Code, rec.Body.String())
	}
	if service.lastRequestID != "req-1" {
		t.Fatalf("expected request id req-1 got %q", service.lastRequestID)
	}
	if service.lastUpload.Filename != "greeting.mp4" || service.lastUpload.Size != 11 {
		t.Fatalf("unexpected upload metadata: %+v", service.lastUpload)
	}

	var resp videoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "vid-1" || resp.RequestID != "req-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUploadRequiresFilePart(t *testing.T) {
	sessions := newStubSessionManager()
	bearer := sessions.bearerFor(models.Actor{ID: "celeb-1", IsCelebrity: true})
	mux := newVideoMux(&stubAssetService{}, sessions)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", bearer)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

func TestUploadErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unsupported extension", assets.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType},
		{"too large", assets.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{"not the celebrity", assets.ErrUnauthorized, http.StatusForbidden},
		{"storage failure", assets.ErrStorage, http.StatusInternalServerError},
	}

	sessions := newStubSessionManager()
	bearer := sessions.bearerFor(models.Actor{ID: "celeb-1", IsCelebrity: true})

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newVideoMux(&stubAssetService{err: tc.err}, sessions)

			req := multipartUpload(t, "/api/v1/requests/req-1/video", "clip.mp4", "data")
			req.Header.Set("Authorization", bearer)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected status %d got %d body %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestUploadStandaloneEndpoint(t *testing.T) {
	sessions := newStubSessionManager()
	bearer := sessions.bearerFor(models.Actor{ID: "celeb-1", IsCelebrity: true})

	service := &stubAssetService{video: models.Video{
		ID:         "vid-9",
		UploaderID: "celeb-1",
		ShareToken: "share-token-value",
	}}
	mux := newVideoMux(service, sessions)

	req := multipartUpload(t, "/api/v1/videos", "clip.webm", "standalone")
	req.Header.Set("Authorization", bearer)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 got %d body %s", rec.Code, rec.Body.String())
	}

	var resp videoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ShareToken != "share-token-value" {
		t.Fatalf("expected share token in response, got %+v", resp)
	}
}

func TestStreamEndpoint(t *testing.T) {
	sessions := newStubSessionManager()
	bearer := sessions.bearerFor(models.Actor{ID: "fan-1"})

	service := &stubAssetService{
		video: models.Video{
			ID:               "vid-1",
			OriginalFilename: "greeting.mp4",
			MimeType:         "video/mp4",
		},
		content: "binary video bytes",
	}
	mux := newVideoMux(service, sessions)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/vid-1/stream", nil)
	req.Header.Set("Authorization", bearer)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "video/mp4" {
		t.Fatalf("expected video/mp4 content type got %s", got)
	}
	if rec.Body.String() != "binary video bytes" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if len(service.views) != 1 || service.views[0] != "vid-1" {
		t.Fatalf("expected one counted view, got %v", service.views)
	}
}

func TestStreamRequiresAuthentication(t *testing.T) {
	mux := newVideoMux(&stubAssetService{}, newStubSessionManager())

	for _, path := range []string{"/api/v1/videos/vid-1", "/api/v1/videos/vid-1/stream"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected status 401 got %d", path, rec.Code)
		}
	}
}

func TestSharedEndpointNeedsNoSession(t *testing.T) {
	service := &stubAssetService{
		video:   models.Video{ID: "vid-1", OriginalFilename: "greeting.mp4", MimeType: "video/mp4", ShareToken: "tok"},
		content: "shared bytes",
	}
	mux := newVideoMux(service, newStubSessionManager())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shared/tok", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if service.lastToken != "tok" {
		t.Fatalf("expected token tok got %q", service.lastToken)
	}
	if rec.Body.String() != "shared bytes" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestSharedEndpointUnknownToken(t *testing.T) {
	mux := newVideoMux(&stubAssetService{err: repositories.ErrNotFound}, newStubSessionManager())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shared/missing", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 got %d", rec.Code)
	}
}
