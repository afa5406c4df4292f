package handlers

import "net/http"

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users    UserStore
	Sessions SessionManager
	Requests RequestService
	Assets   AssetService

	AuthLimiter   RateLimiter
	UploadLimiter RateLimiter

	AutoVerifyCelebrities bool
	MaxUploadBytes        int64
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{
		Users:                 deps.Users,
		Sessions:              deps.Sessions,
		Limiter:               deps.AuthLimiter,
		AutoVerifyCelebrities: deps.AutoVerifyCelebrities,
	}
	celebrities := CelebrityHandler{Users: deps.Users}
	requests := RequestHandler{Requests: deps.Requests, Sessions: deps.Sessions}
	videos := VideoHandler{
		Assets:         deps.Assets,
		Sessions:       deps.Sessions,
		Limiter:        deps.UploadLimiter,
		MaxUploadBytes: deps.MaxUploadBytes,
	}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/auth/signup", auth.SignUp)
	mux.HandleFunc("POST /api/v1/auth/login", auth.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", auth.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", auth.Logout)

	mux.HandleFunc("GET /api/v1/celebrities", celebrities.List)

	mux.HandleFunc("POST /api/v1/requests", requests.Create)
	mux.HandleFunc("GET /api/v1/requests/outgoing", requests.Outgoing)
	mux.HandleFunc("GET /api/v1/requests/incoming", requests.Incoming)
	mux.HandleFunc("GET /api/v1/requests/{id}", requests.Get)
	mux.HandleFunc("POST /api/v1/requests/{id}/accept", requests.Accept)
	mux.HandleFunc("POST /api/v1/requests/{id}/reject", requests.Reject)
	mux.HandleFunc("POST /api/v1/requests/{id}/video", videos.UploadForRequest)

	mux.HandleFunc("POST /api/v1/videos", videos.UploadStandalone)
	mux.HandleFunc("GET /api/v1/videos/{id}", videos.Get)
	mux.HandleFunc("GET /api/v1/videos/{id}/stream", videos.Stream)

	mux.HandleFunc("GET /api/v1/shared/{token}", videos.Shared)
}
