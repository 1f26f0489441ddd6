// Package server exposes receipts over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ghreceipt/ghreceipt/internal/domain"
	"github.com/ghreceipt/ghreceipt/internal/receipt"
)

// Lookuper produces derived stats for a login.
type Lookuper interface {
	Lookup(ctx context.Context, login string) (*domain.DerivedStats, error)
}

// Server serves receipts in JSON, text, and SVG form.
type Server struct {
	lookuper Lookuper
	logger   zerolog.Logger
}

// New creates a Server.
func New(lookuper Lookuper, logger zerolog.Logger) *Server {
	return &Server{lookuper: lookuper, logger: logger}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/receipts/{login}", s.handleJSON)
	r.Get("/receipts/{login}.txt", s.handleText)
	r.Get("/receipts/{login}.svg", s.handleSVG)
	return r
}

// ListenAndServe blocks serving the router on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("server: listening")
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}

// lookup runs the lookup for the {login} path parameter. Every failure
// (unknown user, rate limit, network) collapses into the same flat 404.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*domain.DerivedStats, bool) {
	login := chi.URLParam(r, "login")
	stats, err := s.lookuper.Lookup(r.Context(), login)
	if err != nil {
		s.logger.Info().Err(err).Str("login", login).Msg("lookup failed")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"lookup failed"}`)
		return nil, false
	}
	return stats, true
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	stats, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode stats")
	}
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	stats, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, receipt.Text(stats))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	stats, ok := s.lookup(w, r)
	if !ok {
		return
	}
	data, err := receipt.SVG(stats)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to render svg")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s", receipt.SVGFilename(stats.Login)))
	w.Write(data)
}
