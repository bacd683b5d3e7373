// Package server exposes the rendered digest and the boost history over
// HTTP.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pmharris/mastodigest/internal/store"
)

// Server serves the digest output directory plus a small JSON API.
type Server struct {
	digestDir string
	store     store.Store
	port      int
}

// New creates a new HTTP server over the given digest directory. The
// store may be nil when boost history isn't wanted.
func New(digestDir string, st store.Store, port int) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		digestDir: digestDir,
		store:     st,
		port:      port,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/digest", s.handleDigest)
	mux.HandleFunc("/api/v1/boosts", s.handleBoosts)
	mux.Handle("/", http.FileServer(http.Dir(s.digestDir)))

	addr := fmt.Sprintf(":%d", s.port)
	fmt.Fprintf(os.Stderr, "mastodigest server listening on %s\n", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDigest returns the JSON sidecar written by the last digest run.
func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	path := filepath.Join(s.digestDir, "digest.json")
	data, err := os.ReadFile(path)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no digest has been generated yet"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleBoosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if s.store == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "boost history not configured"})
		return
	}

	var since time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			since = t
		}
	}

	boosts, err := s.store.ListBoosts(r.Context(), since, 100)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  boosts,
		"count": len(boosts),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
