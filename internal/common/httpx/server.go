package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"restaurant-pos/internal/common/logger"
)

type Server struct {
	*http.Server
	log *logger.Logger
}

func New(addr string, h http.Handler, log *logger.Logger) *Server {
	return &Server{
		Server: &http.Server{
			Addr:         addr,
			Handler:      h,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		log: log,
	}
}

// Run serves until ctx is cancelled, then shuts down with a 5s grace period.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.ListenAndServe() }()
	s.log.Info("http_listening", map[string]any{"addr": s.Addr})

	select {
	case <-ctx.Done():
		ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(ctx2); err != nil {
			s.log.Error("http_shutdown", err, nil)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
