// Package server sirve el dashboard HTML y la API JSON de oportunidades.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alejandrodnm/polyscan/internal/domain"
)

// Scanner es lo que el servidor necesita del pipeline (normalmente *scanner.Cached).
type Scanner interface {
	Scan(ctx context.Context, params domain.FilterParams) (domain.ScanResult, error)
}

// Pinger comprueba una dependencia externa para /api/health (p. ej. Redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config contiene la configuración del servidor HTTP.
type Config struct {
	Addr     string
	Defaults domain.FilterParams // umbrales cuando la query no los trae
}

// Server es el servidor HTTP del dashboard.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	logger     *slog.Logger
}

// New registra las rutas y devuelve el servidor listo para Start.
// cachePing puede ser nil (caché en memoria).
func New(cfg Config, scanner Scanner, cachePing Pinger, logger *slog.Logger) (*Server, error) {
	h := &handlers{
		scanner:   scanner,
		cachePing: cachePing,
		defaults:  cfg.Defaults,
		logger:    logger,
	}
	if err := h.loadTemplates(); err != nil {
		return nil, fmt.Errorf("server.New: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.dashboard)
	mux.HandleFunc("GET /api/opportunities", h.opportunities)
	mux.HandleFunc("GET /api/health", h.health)

	handler := logging(logger)(mux)

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			// Un scan sin caché puede tardar el timeout de Gamma completo.
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		handler: handler,
		logger:  logger,
	}, nil
}

// Handler devuelve el handler raíz (rutas + middleware), útil en tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start escucha hasta que el servidor se cierre con Shutdown.
func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown espera a que terminen las requests en curso dentro del deadline de ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
