// Package server exposes a small read-only status API over HTTP:
// liveness plus the most recent episode. It observes the watcher and
// never influences it.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tonypeng1/moomoo/internal/episode"
)

// EpisodeSource yields the latest sealed episode, nil before the
// first cycle completes.
type EpisodeSource interface {
	Latest() *episode.Episode
}

// Server serves the status API.
type Server struct {
	source EpisodeSource
	http   *http.Server
}

// New builds a server listening on addr.
func New(addr string, source EpisodeSource) *Server {
	s := &Server{source: source}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routed handler, split out for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/episodes/latest", s.handleLatest)

	return r
}

// ListenAndServe blocks until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()
	slog.Info("status server listening", "addr", s.http.Addr)

	select {
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdown)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleLatest(w http.ResponseWriter, _ *http.Request) {
	ep := s.source.Latest()
	if ep == nil {
		http.Error(w, "no episode yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ep); err != nil {
		slog.Error("failed to encode episode", "error", err)
	}
}
