// Package server provides the HTTP API for the recommendation engine.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Asim-Shah-2004/SIH/internal/config"
	"github.com/Asim-Shah-2004/SIH/internal/interaction"
	"github.com/Asim-Shah-2004/SIH/internal/keyword"
	"github.com/Asim-Shah-2004/SIH/internal/recommend"
	"github.com/Asim-Shah-2004/SIH/internal/search"
	"github.com/Asim-Shah-2004/SIH/internal/storage"
	"github.com/Asim-Shah-2004/SIH/internal/vector"
)

// Server is the HTTP server for the recommendation API.
type Server struct {
	recommender  *recommend.Engine
	calculator   *interaction.Calculator
	searchEngine *search.Engine
	index        *vector.Manager
	keywordIndex keyword.KeywordIndex
	storage      storage.Storage
	config       *config.Config
	logger       *zap.Logger
	server       *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	recommender *recommend.Engine,
	calculator *interaction.Calculator,
	searchEngine *search.Engine,
	index *vector.Manager,
	keywordIndex keyword.KeywordIndex,
	store storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		recommender:  recommender,
		calculator:   calculator,
		searchEngine: searchEngine,
		index:        index,
		keywordIndex: keywordIndex,
		storage:      store,
		config:       cfg,
		logger:       logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/api/v1/recommendations", s.handleRecommendations)
	r.Post("/api/v1/index/rebuild", s.handleIndexRebuild)
	r.Post("/api/v1/interactions", s.handleInteractions)
	r.Get("/api/v1/users/{id}/connections", s.handleUserConnections)
	r.Get("/api/v1/posts/{id}", s.handlePostDetails)
	r.Post("/api/v1/posts", s.handleCreatePost)
	r.Post("/api/v1/posts/{id}/engagements", s.handleAddEngagement)
	r.Post("/api/v1/posts/search", s.handleSearch)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
