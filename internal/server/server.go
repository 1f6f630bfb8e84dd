// Package server provides the HTTP and websocket API for the chatbox.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/vuongthuydung/employee-support-chatbot/internal/config"
	"github.com/vuongthuydung/employee-support-chatbot/internal/ingest"
	"github.com/vuongthuydung/employee-support-chatbot/internal/query"
	"github.com/vuongthuydung/employee-support-chatbot/internal/vector"
	"github.com/vuongthuydung/employee-support-chatbot/internal/warehouse"
)

// Server is the HTTP server for the chatbox API.
type Server struct {
	ingest    *ingest.Pipeline
	query     *query.Pipeline
	warehouse *warehouse.Warehouse
	index     vector.Index
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	ingestPipeline *ingest.Pipeline,
	queryPipeline *query.Pipeline,
	wh *warehouse.Warehouse,
	index vector.Index,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		ingest:    ingestPipeline,
		query:     queryPipeline,
		warehouse: wh,
		index:     index,
		config:    cfg,
		logger:    logger,
	}
}

// Routes builds the router. The websocket endpoint sits outside the request
// timeout so long-lived connections are not cut off.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Post("/api/upload", s.handleUpload)
		r.Post("/api/ask", s.handleAsk)
		r.Get("/api/status", s.handleStatus)
		r.Get("/health", s.handleHealth)
	})
	r.Get("/api/ws", s.handleWS)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
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
