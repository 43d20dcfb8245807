// Package static provides configuration-backed fact sources: values that
// come from the loaded AppConfig rather than from querying the host.
package static

import (
	"context"

	"github.com/systune-io/systune/internal/config"
	"github.com/systune-io/systune/pkg/facts"
)

// Source implements facts.Source for configuration-backed facts.
type Source struct {
	key         string
	description string
	config      *config.AppConfig
	valueFunc   func(*config.AppConfig) any
}

var _ facts.Source = (*Source)(nil)

// NewMaintenanceWindowSource reports whether the deployment's maintenance
// window is open, under the "maintenance_window" key.
func NewMaintenanceWindowSource(cfg *config.AppConfig) *Source {
	return &Source{
		key:         "maintenance_window",
		description: "Whether the maintenance window is open",
		config:      cfg,
		valueFunc: func(cfg *config.AppConfig) any {
			return cfg.Maintenance.WindowOpen
		},
	}
}

// NewManagedResolversSource reports the managed DNS resolver list, under
// the "managed_resolvers" key.
func NewManagedResolversSource(cfg *config.AppConfig) *Source {
	return &Source{
		key:         "managed_resolvers",
		description: "Managed DNS resolver list",
		config:      cfg,
		valueFunc: func(cfg *config.AppConfig) any {
			return append([]string(nil), cfg.Network.Resolvers...)
		},
	}
}

// New creates a configuration-backed fact source with a custom value
// function.
func New(key, description string, cfg *config.AppConfig, valueFunc func(*config.AppConfig) any) *Source {
	return &Source{
		key:         key,
		description: description,
		config:      cfg,
		valueFunc:   valueFunc,
	}
}

// Describe implements facts.Source.
func (s *Source) Describe() facts.Schema {
	return facts.Schema{
		Key:         s.key,
		Description: s.description,
	}
}

// Collect implements facts.Source. Configuration facts never make external
// calls and are always fresh.
func (s *Source) Collect(ctx context.Context) (any, error) {
	return s.valueFunc(s.config), nil
}
