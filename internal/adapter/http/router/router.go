package router

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/adapter/http/handler"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/auth"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Deps are the collaborators of the HTTP API. Metrics and Recorder are optional.
type Deps struct {
	Backend  domain.Backend
	Tokens   *auth.TokenManager
	Metrics  *metrics.Manager
	Recorder middleware.RequestRecorder
	Logger   *logger.Logger
	// ServeMetrics mounts GET /metrics on the API router.
	ServeMetrics bool
}

// New builds the classifieds REST API.
func New(d Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics(d.Metrics, d.Recorder))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if d.Metrics != nil && d.ServeMetrics {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	SetupAdRoutes(r, handler.NewAdHandler(d.Backend, d.Logger), d.Tokens)
	SetupUserRoutes(r, handler.NewUserHandler(d.Backend, d.Logger), d.Tokens)
	SetupLookupRoutes(r, handler.NewLookupHandler(d.Backend, d.Backend, d.Logger))
	SetupAdminRoutes(r, handler.NewAdminHandler(d.Backend, d.Backend, d.Logger), d.Tokens)
	return r
}

func SetupAdRoutes(mux *chi.Mux, h *handler.AdHandler, tokens *auth.TokenManager) {
	mux.Get("/api/ads", h.HandleList)
	mux.Get("/api/ads/{id}", h.HandleGet)

	mux.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(tokens))
		r.Post("/api/ads", h.HandleCreate)
		r.Put("/api/ads/{id}", h.HandleUpdate)
		r.Delete("/api/ads/{id}", h.HandleDelete)
	})
}

func SetupUserRoutes(mux *chi.Mux, h *handler.UserHandler, tokens *auth.TokenManager) {
	mux.Post("/api/auth/login", h.HandleLogin)
	mux.Post("/api/users", h.HandleRegister)
	mux.With(middleware.OptionalJWTAuth(tokens)).Get("/api/users/{id}", h.HandleGetProfile)
	mux.With(middleware.JWTAuth(tokens)).Put("/api/users/me", h.HandleUpdateProfile)
}

func SetupLookupRoutes(mux *chi.Mux, h *handler.LookupHandler) {
	mux.Route("/api/locations", func(r chi.Router) {
		r.Get("/regions", h.HandleRegions)
		r.Get("/regions/{id}/districts", h.HandleDistricts)
		r.Get("/districts/{id}/cities", h.HandleCities)
		r.Get("/cities/{id}", h.HandleResolveCity)
	})
	mux.Get("/api/categories/tree", h.HandleCategoryTree)
}

func SetupAdminRoutes(mux *chi.Mux, h *handler.AdminHandler, tokens *auth.TokenManager) {
	mux.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.JWTAuth(tokens))
		r.Post("/categories", h.HandleCreateCategories)
		r.Get("/hits", h.HandleHits)
		r.Post("/logs", h.HandleGenerateLog)
		r.Get("/logs/archive/{date}", h.HandleDownloadArchive)
		r.Get("/logs/{taskId}", h.HandleLogStatus)
		r.Get("/logs/{taskId}/file", h.HandleDownloadLog)
	})
}
