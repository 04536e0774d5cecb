package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server runs the HTTP daemon on a single listener.
type Server struct {
	handler *Handler
	logger  *zap.Logger
	httpd   *http.Server
}

// NewServer creates a server for the given bind address.
func NewServer(addr string, handler *Handler, logger *zap.Logger) *Server {
	return &Server{
		handler: handler,
		logger:  logger,
		httpd: &http.Server{
			Addr:              addr,
			Handler:           logRequests(logger, handler.Router()),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// ListenAndServe serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpd.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %q: %w", s.httpd.Addr, err)
	}

	s.logger.Info("server listening", zap.String("addr", listener.Addr().String()))

	errs := make(chan error, 1)
	go func() {
		errs <- s.httpd.Serve(listener)
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpd.Shutdown(shutdownCtx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func logRequests(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)),
		)
	})
}
