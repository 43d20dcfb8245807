package invsrv_mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
)

// Server provides a mock implementation of the inventory-service API for
// testing.
type Server struct {
	server *httptest.Server

	mu    sync.RWMutex
	facts map[string]any // key = hostname|factKey
	hits  int
}

// NewServer creates and starts a new mock inventory server.
func NewServer() *Server {
	s := &Server{
		facts: make(map[string]any),
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		// Matches paths like /api/hosts/{hostname}/facts/{key}
		re := regexp.MustCompile(`/api/hosts/([^/]+)/facts/([^/]+)`)
		matches := re.FindStringSubmatch(r.URL.Path)

		if matches == nil || len(matches) != 3 {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}

		hostname := matches[1]
		factKey := matches[2]

		s.mu.Lock()
		s.hits++
		value, ok := s.facts[fmt.Sprintf("%s|%s", hostname, factKey)]
		s.mu.Unlock()

		if !ok {
			http.Error(w, "Fact not found", http.StatusNotFound)
			return
		}

		if err := json.NewEncoder(w).Encode(map[string]any{"value": value}); err != nil {
			http.Error(w, "JSON encoding error", http.StatusInternalServerError)
			return
		}
	})

	s.server = httptest.NewServer(handler)
	return s
}

// URL returns the URL of the mock server.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts down the mock server.
func (s *Server) Close() {
	s.server.Close()
}

// SetFact sets the value the server answers for one hostname/fact pair.
func (s *Server) SetFact(hostname, key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts[fmt.Sprintf("%s|%s", hostname, key)] = value
}

// Hits reports how many fact requests the server has answered.
func (s *Server) Hits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hits
}

// WithDefaultValues sets sensible defaults for testing.
func (s *Server) WithDefaultValues() *Server {
	s.SetFact("test-host", "asset_tag", "TST-0001")
	s.SetFact("test-host", "patch_ring", "canary")
	return s
}
