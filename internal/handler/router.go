package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/partdesk/backend/internal/handler/chat"
	searchHandler "github.com/partdesk/backend/internal/handler/search"
	"github.com/partdesk/backend/internal/handler/stream"
	wsHandler "github.com/partdesk/backend/internal/handler/ws"
	middlewarePkg "github.com/partdesk/backend/internal/middleware"
	chatService "github.com/partdesk/backend/internal/service/chat"
	"github.com/partdesk/backend/internal/service/knowledge"
	"github.com/partdesk/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatService.Service, catalog *knowledge.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	streamHandler := stream.New(chatSvc)

	r.Route("/api", func(api chi.Router) {
		chatHandler.New(chatSvc).RegisterRoutes(api)
		searchHandler.New(catalog).RegisterRoutes(api)
		wsHandler.New(chatSvc).RegisterRoutes(api)

		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			userMessage := r.URL.Query().Get("message")

			if userMessage == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			if err := streamHandler.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
				log.Printf("[stream] error handling request: %v", err)
			}
		})
	})

	return r
}
