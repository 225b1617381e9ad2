package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"certledger/internal/domain"
	"certledger/internal/platform/metrics"
	"certledger/internal/platform/middleware"
	"certledger/internal/transport/http/shared"
)

// Health reports whether a backing dependency is reachable.
type Health func() error

// RouterConfig carries everything the HTTP surface needs.
type RouterConfig struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	Auth         *AuthHandler
	Accounts     *AccountsHandler
	Certificates *CertificatesHandler
	Artifacts    *ArtifactsHandler

	JWTValidator middleware.JWTValidator
	Revocations  middleware.RevocationChecker

	// HealthChecks run on /healthz; any failure turns the response 503.
	HealthChecks map[string]Health
}

// NewRouter assembles the full route table with its middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	if cfg.Metrics != nil {
		r.Use(middleware.Latency(cfg.Metrics))
	}

	// Public surface.
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Post("/auth/login", cfg.Auth.HandleLogin)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handleHealth(cfg.HealthChecks))

	// Everything below requires a valid, unrevoked session token.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.JWTValidator, cfg.Revocations, cfg.Logger))

		r.Group(func(r chi.Router) {
			r.Use(middleware.ContentTypeJSON)
			r.Post("/auth/register", cfg.Auth.HandleRegister)
			r.Post("/auth/logout", cfg.Auth.HandleLogout)
			r.Post("/certificates", cfg.Certificates.HandleIssue)
		})

		r.Get("/accounts/{identity}", cfg.Accounts.HandleGetAccount)
		r.Get("/accounts/{identity}/role", cfg.Accounts.HandleGetRole)
		r.Get("/certificates/{id}", cfg.Certificates.HandleGetByID)
		r.Get("/certificates", cfg.Certificates.HandleGetByHolder)

		// Artifact upload is a raw body, not JSON.
		r.Post("/artifacts", cfg.Artifacts.HandleUpload)
		r.Get("/artifacts/{ref}", cfg.Artifacts.HandleFetch)

		// Teacher-only surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleTeacher, cfg.Logger))
			r.Get("/accounts", cfg.Accounts.HandleListByRole)
			r.Get("/certificates/pending", cfg.Certificates.HandleGetPending)
			r.With(middleware.ContentTypeJSON).Post("/certificates/{id}/review", cfg.Certificates.HandleReview)
		})
	})

	return r
}

func handleHealth(checks map[string]Health) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := make(map[string]string, len(checks)+1)
		for name, check := range checks {
			if err := check(); err != nil {
				status = http.StatusServiceUnavailable
				body[name] = err.Error()
				continue
			}
			body[name] = "ok"
		}
		if status == http.StatusOK {
			body["status"] = "ok"
		} else {
			body["status"] = "degraded"
		}
		shared.WriteJSON(w, status, body)
	}
}
