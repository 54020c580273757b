// Package server assembles the HTTP surface: routing, middleware, static
// uploads for the local storage backend, and graceful shutdown.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/dairydock/catalog-service/config"
	"github.com/dairydock/catalog-service/internal/auth"
	"github.com/dairydock/catalog-service/internal/server/httputil"
	"github.com/dairydock/catalog-service/pkg/logger"
)

// RouteMapper is implemented by every handler package.
type RouteMapper interface {
	MapRoutes(r *mux.Router)
}

type Server struct {
	cfg    *config.Config
	logger logger.ZapLogger
	http   *http.Server
}

func New(cfg *config.Config, log logger.ZapLogger, handlers ...RouteMapper) *Server {
	root := mux.NewRouter()

	root.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Local backend serves its binaries straight from disk; the s3 backend
	// serves from the bucket endpoint instead.
	if cfg.Storage.Backend == "local" {
		root.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Storage.BasePath))))
	}

	api := root.PathPrefix("/api/v1").Subrouter()
	api.Use(auth.Middleware)
	for _, h := range handlers {
		h.MapRoutes(api)
	}

	return &Server{
		cfg:    cfg,
		logger: log,
		http: &http.Server{
			Addr:         cfg.Server.HTTPPort,
			Handler:      root,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Run blocks serving requests until ListenAndServe fails.
func (s *Server) Run() error {
	s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
