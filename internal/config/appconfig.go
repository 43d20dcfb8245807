// Package config holds the Pkl-backed application configuration.
package config

import (
	"context"

	"github.com/apple/pkl-go/pkl"
)

// AppConfig is the root configuration module.
type AppConfig struct {
	Probe       *Probe       `pkl:"probe"`
	Cache       *Cache       `pkl:"cache"`
	Restore     *Restore     `pkl:"restore"`
	Policy      *Policy      `pkl:"policy"`
	Inventory   *Inventory   `pkl:"inventory"`
	Network     *Network     `pkl:"network"`
	Maintenance *Maintenance `pkl:"maintenance"`
	Prometheus  *Prometheus  `pkl:"prometheus"`
}

// Probe configures the fact prober.
type Probe struct {
	// SourceTimeout bounds each individual source's collection.
	SourceTimeout *pkl.Duration `pkl:"sourceTimeout"`

	// MaxConcurrent caps in-flight collections; 0 means unbounded.
	MaxConcurrent int `pkl:"maxConcurrent"`
}

// Cache configures the snapshot cache.
type Cache struct {
	// TTL is how long a cached snapshot stays fresh.
	TTL *pkl.Duration `pkl:"ttl"`
}

// Restore configures emergency restore behavior.
type Restore struct {
	// Mode selects revert targets: "pre-session" or "factory".
	Mode string `pkl:"mode"`

	// Order lists action IDs in the sequence restore reverts them.
	Order []string `pkl:"order"`
}

// Policy configures the Rego gatekeeper.
type Policy struct {
	Path  string `pkl:"path"`
	Query string `pkl:"query"`
}

// Inventory configures the asset-inventory fact sources. An empty
// BaseURL disables them.
type Inventory struct {
	BaseURL  string        `pkl:"baseUrl"`
	CacheTTL *pkl.Duration `pkl:"cacheTtl"`
}

// Network configures networking actions.
type Network struct {
	// Resolvers lists the DNS resolvers the set_dns_resolver action applies.
	Resolvers []string `pkl:"resolvers"`
}

// Maintenance configures the maintenance-window fact.
type Maintenance struct {
	WindowOpen bool `pkl:"windowOpen"`
}

// Prometheus configures the metrics endpoint.
type Prometheus struct {
	ListenAddr string `pkl:"listenAddr"`
}

// LoadFromPath evaluates the Pkl module at path into an AppConfig.
func LoadFromPath(ctx context.Context, path string) (*AppConfig, error) {
	evaluator, err := pkl.NewEvaluator(ctx, pkl.PreconfiguredOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = evaluator.Close()
	}()

	var cfg AppConfig
	if err := evaluator.EvaluateModule(ctx, pkl.FileSource(path), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
