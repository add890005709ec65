// Package preview serves a published site locally through the same
// directory-index rewrite the edge applies, so clean URLs behave exactly as
// they will in production.
package preview

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitepub/internal/logfields"
	"git.home.luguber.info/inful/sitepub/internal/resolver"
	"git.home.luguber.info/inful/sitepub/internal/storage"
)

// Server serves objects from a store over HTTP with the edge rewrite applied.
type Server struct {
	store storage.ObjectStore

	// MetricsHandler, when non-nil, is mounted at /metrics (bypassing the
	// rewrite; /metrics contains a dot-free path but is not site content).
	MetricsHandler http.Handler
}

// NewServer creates a preview server over store.
func NewServer(store storage.ObjectStore) *Server {
	return &Server{store: store}
}

// Handler builds the full middleware chain: logging, panic recovery, then
// the edge rewrite in front of the object handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.MetricsHandler != nil {
		mux.Handle("/metrics", s.MetricsHandler)
	}
	mux.Handle("/", resolver.Middleware(http.HandlerFunc(s.serveObject)))
	return loggingMiddleware(panicRecoveryMiddleware(mux))
}

// ListenAndServe serves until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	slog.Info("Preview server listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// serveObject fetches the rewritten path from the store. The resolver
// middleware has already mapped clean URLs onto object keys.
func (s *Server) serveObject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	key := strings.TrimPrefix(r.URL.Path, "/")
	obj, err := s.store.Get(r.Context(), key)
	if err != nil {
		if storage.IsNotFound(err) {
			http.NotFound(w, r)
			return
		}
		slog.Error("Preview fetch failed", logfields.Key(key), logfields.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("ETag", `"`+obj.ETag+`"`)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(obj.Data)
}

// loggingMiddleware logs method, path, status and duration for every request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		slog.Info("HTTP request",
			logfields.Method(r.Method),
			logfields.Path(r.URL.Path),
			logfields.Status(wrapped.statusCode),
			slog.Duration("duration", time.Since(start)),
			logfields.RemoteAddr(r.RemoteAddr))
	})
}

// panicRecoveryMiddleware converts handler panics into 500 responses.
func panicRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("HTTP handler panic",
					slog.Any("panic", rec),
					logfields.Method(r.Method),
					logfields.Path(r.URL.Path))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter captures status codes for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
