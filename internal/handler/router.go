package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/routethis/assistant/internal/handler/assistant"
	"github.com/routethis/assistant/internal/handler/converse"
	diaghandler "github.com/routethis/assistant/internal/handler/diagnostic"
	middlewarePkg "github.com/routethis/assistant/internal/middleware"
	aiservice "github.com/routethis/assistant/internal/service/ai"
	diagservice "github.com/routethis/assistant/internal/service/diagnostic"
	"github.com/routethis/assistant/internal/service/oracle"
	"github.com/routethis/assistant/pkg/utils"
)

// NewRouter wires the oracle HTTP routes to the core services.
func NewRouter(diagSvc *diagservice.Service, aiSvc *aiservice.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	local := oracle.NewLocal(diagSvc, aiSvc)

	assistantHandler := assistant.New(local, aiSvc)
	diagnosticHandler := diaghandler.New(diagSvc)
	converseHandler := converse.New(diagSvc, aiSvc)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api", func(api chi.Router) {
		assistantHandler.RegisterRoutes(api)
		diagnosticHandler.RegisterRoutes(api)
		converseHandler.RegisterRoutes(api)
	})

	return r
}
