// Package mutate defines the OS mutation surface maintenance actions are
// built on, plus the recording fake used in tests and dry runs. Concrete
// implementations that touch a real system live outside the core.
package mutate

import "context"

// Startup modes for SetServiceStartup.
const (
	StartupAutomatic = "automatic"
	StartupManual    = "manual"
	StartupDisabled  = "disabled"
)

// Mutator is the injected OS mutation surface. Getters exist so action
// sub-steps can journal a target's prior value before changing it; every
// operation is expected to be safe to repeat with the same arguments.
type Mutator interface {
	// GetSetting reads a configuration setting, e.g. a registry value.
	GetSetting(ctx context.Context, scope, name string) (string, error)
	// SetSetting writes a configuration setting.
	SetSetting(ctx context.Context, scope, name, value string) error

	// GetServiceStartup reads a system service's startup mode.
	GetServiceStartup(ctx context.Context, service string) (string, error)
	// SetServiceStartup changes a system service's startup mode.
	SetServiceStartup(ctx context.Context, service, mode string) error

	// GetFirewallProfile reports whether a firewall profile is enabled.
	GetFirewallProfile(ctx context.Context, profile string) (bool, error)
	// SetFirewallProfile enables or disables a firewall profile.
	SetFirewallProfile(ctx context.Context, profile string, enabled bool) error

	// GetResolver returns the configured DNS resolver list.
	GetResolver(ctx context.Context) ([]string, error)
	// SetResolver replaces the DNS resolver list. An empty list restores
	// automatic (DHCP-assigned) resolution.
	SetResolver(ctx context.Context, servers []string) error

	// FlushResolverCache drops cached DNS lookups.
	FlushResolverCache(ctx context.Context) error
}
