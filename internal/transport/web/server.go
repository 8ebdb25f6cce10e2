package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/pkg/log"
)

// Server is the HTTP boundary. It owns routing and request
// validation; everything behind it already guarantees a plain string
// answer, so no pipeline error can leak through this layer.
type Server struct {
	httpServer *http.Server
	cfg        *config.ServerConfig
}

func NewServer(ctx context.Context, cfg *config.ServerConfig, h *Handlers) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(ctx))

	r.Get("/health", h.Health)
	r.Post("/api/chat", h.Chat)
	r.Post("/api/distance_calculation", h.DistanceCalculation)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		cfg: cfg,
	}
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.cfg.Addr()).Msg("starting http server")
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// requestLogger injects the base context logger into every request so
// handlers and the pipeline log through the same sink.
func requestLogger(base context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.FromCtx(base).With().
				Str("request_id", middleware.GetReqID(r.Context())).
				Logger()
			next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
		})
	}
}
