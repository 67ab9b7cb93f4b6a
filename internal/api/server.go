package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/wonny/aegis-intraday/pkg/config"
	"github.com/wonny/aegis-intraday/pkg/logger"
)

// ShutdownTimeout bounds graceful shutdown, including an in-flight scan
const ShutdownTimeout = 30 * time.Second

// Server is the HTTP API server
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

// New creates a new API server listening on cfg.Port
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      writeTimeout(cfg),
			IdleTimeout:       60 * time.Second,
		},
		logger: log.WithModule("api"),
	}
}

// writeTimeout leaves room for a synchronous POST /api/scan: one probe and
// one fetch per ticker, each bounded by the scanner timeout.
func writeTimeout(cfg *config.Config) time.Duration {
	minimum := 15 * time.Second
	if d := 2*cfg.Scanner.Timeout + 30*time.Second; d > minimum {
		return d
	}
	return minimum
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, l)
}

// Serve serves on l until ctx is done. A listener failure is returned as is.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.logger.WithField("addr", l.Addr().String()).Info("API server listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(l)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("API server stopped")
	return nil
}
