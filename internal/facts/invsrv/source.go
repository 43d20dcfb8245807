// Package invsrv provides fact sources answered by an asset-inventory
// service over HTTP, with a per-source TTL cache so repeated probe cycles
// do not hammer the service.
package invsrv

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/systune-io/systune/internal/metrics"
	"github.com/systune-io/systune/pkg/facts"
)

// Source implements facts.Source for one inventory-service fact.
type Source struct {
	baseURL     string
	hostname    string
	key         string
	httpClient  *http.Client
	cacheTTL    time.Duration
	description string

	mu          sync.RWMutex
	cachedValue any
	expiry      time.Time
}

var _ facts.Source = (*Source)(nil)

// New creates an inventory-service fact source. hostname selects which
// asset record the service answers for.
func New(key, baseURL, hostname string, cacheTTL time.Duration, description string) *Source {
	return &Source{
		baseURL:     baseURL,
		hostname:    hostname,
		key:         key,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		cacheTTL:    cacheTTL,
		description: description,
	}
}

// Describe implements facts.Source.
func (s *Source) Describe() facts.Schema {
	return facts.Schema{
		Key:         s.key,
		Description: s.description,
	}
}

// Collect implements facts.Source.
func (s *Source) Collect(ctx context.Context) (any, error) {
	timer := prometheus.NewTimer(metrics.ProbeLatency.WithLabelValues(s.key))
	defer timer.ObserveDuration()

	// Check cache first
	s.mu.RLock()
	if s.cachedValue != nil && time.Now().Before(s.expiry) {
		cached := s.cachedValue
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	url := fmt.Sprintf("%s/api/hosts/%s/facts/%s", s.baseURL, s.hostname, s.key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		metrics.ProbeErrors.WithLabelValues(s.key, "request_creation").Inc()
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.ProbeErrors.WithLabelValues(s.key, "http_error").Inc()
		return nil, fmt.Errorf("querying inventory service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			metrics.ProbeErrors.WithLabelValues(s.key, "body_close_error").Inc()
		}
	}()

	if resp.StatusCode != http.StatusOK {
		metrics.ProbeErrors.WithLabelValues(s.key, fmt.Sprintf("status_%d", resp.StatusCode)).Inc()
		return nil, fmt.Errorf("inventory service returned status %d", resp.StatusCode)
	}

	var result struct {
		Value any `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		metrics.ProbeErrors.WithLabelValues(s.key, "decode_error").Inc()
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	s.mu.Lock()
	s.cachedValue = result.Value
	s.expiry = time.Now().Add(s.cacheTTL)
	s.mu.Unlock()

	return result.Value, nil
}
