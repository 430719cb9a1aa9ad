package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/infrastructure/http/httperr"
)

// routeRegistrar is implemented by each handler group in this package.
type routeRegistrar interface {
	Register(mux *http.ServeMux)
}

// Server hosts the JSON API surface under /api.
type Server struct {
	log logger.Logger
	srv *http.Server
}

// NewServer assembles the mux from every handler group and returns a Server
// ready to Start.
func NewServer(log logger.Logger, addr string, groups ...routeRegistrar) *Server {
	mux := http.NewServeMux()

	for _, g := range groups {
		g.Register(mux)
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		httperr.WriteData(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", mux))
	root.Handle("/healthz", mux)

	return &Server{
		log: log,
		srv: &http.Server{
			Addr:              addr,
			Handler:           root,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http server stopped", slog.Any("error", err))
		}
	}()

	s.log.Info("http server started", slog.String("addr", s.srv.Addr))
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
