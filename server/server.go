// Package server exposes the HTTP build service the canvas editor talks
// to. The editor posts snapshot documents and gets back either the
// generated script or the full validation error list.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/Mi-Lis/MLCanvas/compiler"
	"github.com/Mi-Lis/MLCanvas/graph"
	"github.com/Mi-Lis/MLCanvas/log"
)

// Server serves build, validate, and script-download endpoints.
type Server struct {
	router *mux.Router
	parser *graph.Parser

	allowedOrigins []string
}

// Option configures the Server instance.
type Option func(*Server)

// WithAllowedOrigins restricts CORS to the given origins. By default any
// origin is allowed, which suits a locally served canvas.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithStrictSnapshots makes the server reject snapshots that carry
// unknown fields or unrecognized node types instead of treating such
// nodes as inert.
func WithStrictSnapshots() Option {
	return func(s *Server) { s.parser = graph.NewStrictParser() }
}

// New creates the build server. Behaviour can be tweaked via functional
// options.
func New(opts ...Option) *Server {
	s := &Server{
		router:         mux.NewRouter(),
		parser:         graph.NewParser(),
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}

	// The canvas runs in a browser, so pre-flight requests must pass.
	c := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Length", "Content-Type", "Content-Disposition"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s
}

// Handler returns the underlying router so callers can mount the server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/api/build", s.handleBuild).Methods(http.MethodPost)
	s.router.HandleFunc("/api/validate", s.handleValidate).Methods(http.MethodPost)
	s.router.HandleFunc("/api/script", s.handleScript).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	preflight := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
	s.router.HandleFunc("/api/build", preflight).Methods(http.MethodOptions)
	s.router.HandleFunc("/api/validate", preflight).Methods(http.MethodOptions)
	s.router.HandleFunc("/api/script", preflight).Methods(http.MethodOptions)
}

// Serve runs the server on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("build server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("build server: %w", err)
		}
		return nil
	}
}

// decodeSnapshot reads and validates the snapshot document from a
// request body.
func (s *Server) decodeSnapshot(w http.ResponseWriter, r *http.Request) (*graph.Document, bool) {
	defer r.Body.Close()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read request body: %v", err))
		return nil, false
	}
	doc, err := s.parser.Parse(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return doc, true
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decodeSnapshot(w, r)
	if !ok {
		return
	}
	result := compiler.Build(doc)
	log.Debugf("build handled: project=%q ok=%v", doc.ProjectName, result.OK)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decodeSnapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, compiler.Validate(doc.Graph()))
}

// handleScript responds with the script exactly as a "download as
// script" action persists it. A graph that fails validation gets the
// comment-only error block with a 422 status.
func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decodeSnapshot(w, r)
	if !ok {
		return
	}
	result := compiler.Build(doc)
	w.Header().Set("Content-Type", "text/x-python; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", compiler.ScriptFilename(doc.ProjectName)))
	if !result.OK {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(compiler.ErrorScript(result.Errors)))
		return
	}
	_, _ = w.Write([]byte(result.Source))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
