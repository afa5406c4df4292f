package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/starshout/backend/internal/assets"
	"github.com/starshout/backend/internal/logging"
	"github.com/starshout/backend/internal/models"
)

// VideoHandler provides upload, metadata, and streaming endpoints.
type VideoHandler struct {
	Assets         AssetService
	Sessions       SessionManager
	Limiter        RateLimiter
	MaxUploadBytes int64
}

type videoResponse struct {
	ID               string    `json:"id"`
	RequestID        string    `json:"requestId,omitempty"`
	UploaderID       string    `json:"uploaderId"`
	OriginalFilename string    `json:"originalFilename"`
	MimeType         string    `json:"mimeType"`
	SizeBytes        int64     `json:"sizeBytes"`
	ShareToken       string    `json:"shareToken,omitempty"`
	ViewCount        int64     `json:"viewCount"`
	CreatedAt        time.Time `json:"createdAt"`
}

func toVideoResponse(video models.Video) videoResponse {
	return videoResponse{
		ID:               video.ID,
		RequestID:        video.RequestID,
		UploaderID:       video.UploaderID,
		OriginalFilename: video.OriginalFilename,
		MimeType:         video.MimeType,
		SizeBytes:        video.SizeBytes,
		ShareToken:       video.ShareToken,
		ViewCount:        video.ViewCount,
		CreatedAt:        video.CreatedAt,
	}
}

// uploadFromRequest extracts the multipart "video" part, bounding the body
// so oversized uploads fail during the read instead of buffering fully.
func (h VideoHandler) uploadFromRequest(w http.ResponseWriter, r *http.Request) (assets.Upload, multipart.File, bool) {
	ctx := r.Context()

	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = assets.DefaultMaxUploadBytes
	}
	// Leave headroom for the multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, limit+(1<<20))

	file, header, err := r.FormFile("video")
	if err != nil {
		logging.FromContext(ctx).Warn("missing or oversized video part", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "a video file part is required"})
		return assets.Upload{}, nil, false
	}

	return assets.Upload{
		Content:  file,
		Size:     header.Size,
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
	}, file, true
}

// UploadForRequest handles POST /api/v1/requests/{id}/video. A successful
// upload completes the request.
func (h VideoHandler) UploadForRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := actorFromRequest(h.Sessions, r)
	if err != nil {
		respondUnauthenticated(w, r)
		return
	}

	if !allowRequest(h.Limiter, r, "upload") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many uploads, slow down"})
		return
	}

	upload, file, ok := h.uploadFromRequest(w, r)
	if !ok {
		return
	}
	defer file.Close()

	video, err := h.Assets.UploadForRequest(ctx, actor, r.PathValue("id"), upload)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, toVideoResponse(video))
}

// UploadStandalone handles POST /api/v1/videos, producing a share-token video.
func (h VideoHandler) UploadStandalone(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := actorFromRequest(h.Sessions, r)
	if err != nil {
		respondUnauthenticated(w, r)
		return
	}

	if !allowRequest(h.Limiter, r, "upload") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many uploads, slow down"})
		return
	}

	upload, file, ok := h.uploadFromRequest(w, r)
	if !ok {
		return
	}
	defer file.Close()

	video, err := h.Assets.UploadStandalone(ctx, actor, upload)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, toVideoResponse(video))
}

// Get handles GET /api/v1/videos/{id}.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := actorFromRequest(h.Sessions, r)
	if err != nil {
		respondUnauthenticated(w, r)
		return
	}

	video, err := h.Assets.ResolveForActor(ctx, actor, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toVideoResponse(video))
}

// Stream handles GET /api/v1/videos/{id}/stream.
func (h VideoHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := actorFromRequest(h.Sessions, r)
	if err != nil {
		respondUnauthenticated(w, r)
		return
	}

	video, err := h.Assets.ResolveForActor(ctx, actor, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	h.stream(w, r, video)
}

// Shared handles GET /api/v1/shared/{token}. Possession of the token is the
// authorization; no session is required.
func (h VideoHandler) Shared(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, err := h.Assets.ResolveByToken(ctx, r.PathValue("token"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	h.stream(w, r, video)
}

func (h VideoHandler) stream(w http.ResponseWriter, r *http.Request, video models.Video) {
	ctx := r.Context()

	rc, err := h.Assets.Open(ctx, video)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	defer rc.Close()

	h.Assets.CountView(ctx, video.ID)

	contentType := video.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+video.OriginalFilename+`"`)

	if _, err := io.Copy(w, rc); err != nil {
		logging.FromContext(ctx).Warn("stream interrupted", "videoId", video.ID, "error", err)
	}
}
