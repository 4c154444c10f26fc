// Package server provides a lightweight HTTP status server that exposes the
// state of a chat session, recent chat, event counters and viewer counts,
// plus a simple dashboard.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Guliveer/kick-watcher-go/internal/constants"
	"github.com/Guliveer/kick-watcher-go/internal/logger"
)

// StatusServer serves the dashboard and JSON API endpoints.
type StatusServer struct {
	addr    string
	log     *logger.Logger
	tracker *Tracker
	srv     *http.Server
}

// NewStatusServer creates a StatusServer bound to addr that reports what
// tracker has observed.
func NewStatusServer(addr string, tracker *Tracker, log *logger.Logger) *StatusServer {
	s := &StatusServer{
		addr:    addr,
		log:     log,
		tracker: tracker,
	}

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           withLogging(log, s.routes()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return context.Background()
		},
	}

	return s
}

// Handler returns the HTTP handler, for mounting or testing.
func (s *StatusServer) Handler() http.Handler {
	return s.srv.Handler
}

func (s *StatusServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/viewers", s.handleViewers)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/chat", s.handleChat)
	mux.Handle("GET /static/", http.FileServerFS(staticFiles))
	return mux
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It performs graceful shutdown when the context is done.
func (s *StatusServer) Run(ctx context.Context) error {
	s.log.Info("Status server starting", "addr", s.addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("status server: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.log.Info("Status server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultGracefulShutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("status server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

func withLogging(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		log.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration", time.Since(start).String(),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
