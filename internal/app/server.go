package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/samir1maity/fixy/internal/api/handlers"
	appMiddleware "github.com/samir1maity/fixy/internal/api/middlewares"
	"github.com/samir1maity/fixy/internal/config"
	"github.com/samir1maity/fixy/internal/core"
	"github.com/samir1maity/fixy/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

// NewServer builds and wires all routes.
func NewServer(
	cfg *config.Config,
	db core.DbClient,
	websiteSvc *services.WebsiteService,
	chatSvc *services.ChatService,
	log *zap.Logger,
) *Server {
	authHandler := handlers.NewAuthHandler(services.NewUserService(db), cfg.JwtSecret)
	websiteHandler := handlers.NewWebsiteHandler(websiteSvc)
	chatHandler := handlers.NewChatHandler(chatSvc)
	analyticsHandler := handlers.NewAnalyticsHandler(services.NewAnalyticsService(db))

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Website-Secret"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// dashboard endpoints, JWT protected
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTAuth(cfg.JwtSecret))
			protected.Post("/websites", websiteHandler.Register)
			protected.Get("/websites", websiteHandler.List)
			protected.Get("/websites/{id}", websiteHandler.Get)
			protected.Post("/websites/{id}/secret", websiteHandler.RegenerateSecret)
			protected.Get("/analytics/chats", analyticsHandler.UserStats)
			protected.Get("/analytics/websites/{id}", analyticsHandler.WebsiteStats)
		})

		// widget endpoints, authenticated by per-website secret
		api.Group(func(widget chi.Router) {
			widget.Use(appMiddleware.WebsiteSecret(db))
			widget.Post("/chat", chatHandler.Query)
			widget.Get("/chat/history", chatHandler.History)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	return &Server{httpServer: httpSrv, log: log}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
