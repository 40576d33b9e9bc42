// Package server assembles the HTTP router from the feature handlers and the
// shared middleware.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	analysishandler "github.com/youzhaozhao/ContractClarity/internal/analysis/handler"
	contracthandler "github.com/youzhaozhao/ContractClarity/internal/contract/handler"
	identityhandler "github.com/youzhaozhao/ContractClarity/internal/identity/handler"
	"github.com/youzhaozhao/ContractClarity/internal/metrics"
	"github.com/youzhaozhao/ContractClarity/internal/server/httpx"
	"github.com/youzhaozhao/ContractClarity/internal/server/middleware"
	userhandler "github.com/youzhaozhao/ContractClarity/internal/user/handler"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *identityhandler.AuthHandler
	User     *userhandler.UserHandler
	Contract *contracthandler.ContractHandler
	Analysis *analysishandler.AnalysisHandler
}

// NewRouter wires the middleware stack and mounts the feature handlers plus
// /healthz and /metrics.
func NewRouter(h Handlers, m *metrics.Metrics, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS)
	r.Use(middleware.RequestLogger(logger))
	r.Use(m.Middleware)

	h.Auth.Mount(r)
	h.User.Mount(r)
	h.Contract.Mount(r)
	h.Analysis.Mount(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	return r
}
