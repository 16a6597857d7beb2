package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/akolanti/docvector/internal/adapter/utils"
	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/internal/handlers"
	"github.com/akolanti/docvector/internal/mcpServer"
	"github.com/akolanti/docvector/internal/middleware"
	"github.com/akolanti/docvector/internal/rag"
	"github.com/akolanti/docvector/pkg/logger_i"
)

type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          *logger_i.Logger
}

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	CloseServices    func() error
}

// NewRouter mounts every route on a fresh router. The MCP endpoint is only
// mounted when enabled in cfg.
func NewRouter(cfg *config.Config, service rag.Service) (http.Handler, error) {
	r := utils.NewRouter(middleware.New(cfg.Server).Wrap)
	h := handlers.NewHandler(service, cfg.Upload.MaxBytes)

	r.Router.Get("/", h.Root)
	r.Router.Get("/health", h.Health)
	r.Router.Post("/documents/upload", h.Upload)
	r.Router.Post("/search", h.Search)
	r.Router.Post("/embeddings", h.Embeddings)
	r.Router.Delete("/documents/{document_id}", h.DeleteDocument)
	r.Router.Get("/documents/{user_id}", h.ListDocuments)

	if cfg.MCP.Enabled {
		tools, err := mcpServer.New(service)
		if err != nil {
			return nil, err
		}
		r.Router.Handle("/mcp", tools.Handler())
	}
	return r.Router, nil
}

func CreateServer(cfg *config.Config, service rag.Service) (*Server, error) {
	router, err := NewRouter(cfg, service)
	if err != nil {
		return nil, err
	}
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Server.ListenAddr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		shutdownTimeout: cfg.Server.ShutdownTimeout,
		logger:          logger_i.NewLogger("Server"),
	}, nil
}

// ListenAndServe blocks until the server stops; a graceful shutdown is not an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("Server is listening at", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Server crashed", "error", err, "addr", s.httpServer.Addr)
		return err
	}
	return nil
}

func (s *Server) ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	s.logger.Info("Server is shutting down", "signal", state.String())

	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = config.ShutdownContextTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		s.httpServer.SetKeepAlivesEnabled(false)

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("Could not shutdown gracefully", "error", err)
		}

		//close workers and connections
		if shutdownParams.CloseServices != nil {
			if err := shutdownParams.CloseServices(); err != nil {
				s.logger.Error("Error while closing services", "error", err)
			}
		}
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Gracefully shut down")
	case <-ctx.Done():
		s.logger.Info("Force Shut down")
	}
	close(shutdownParams.StopExecution)
}
