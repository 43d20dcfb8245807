// Package catalog declares the standard maintenance actions as a static
// table over the injected mutation surface. Every apply sub-step writes an
// absolute desired state (never a delta), which is what makes re-running an
// action produce the same end state; every sub-step's undo consults the
// pre-session journal or the factory defaults table, depending on the
// configured restore mode.
package catalog

import (
	"context"
	"strings"

	"github.com/systune-io/systune/internal/guard"
	"github.com/systune-io/systune/internal/mutate"
	"github.com/systune-io/systune/pkg/action"
)

// Mode selects what "restore" means for undo sub-steps.
type Mode string

const (
	// ModePreSession restores the value each target had before this
	// session first changed it, falling back to factory defaults for
	// targets that were never journaled.
	ModePreSession Mode = "pre-session"
	// ModeFactory restores the factory defaults table unconditionally.
	ModeFactory Mode = "factory"
)

// Options configures the built catalog.
type Options struct {
	Mode Mode
	// Resolvers is the managed DNS server list applied by
	// set_dns_resolver.
	Resolvers []string
}

// factoryDefaults maps journal keys to the values "factory" restore mode
// puts back.
var factoryDefaults = map[string]string{
	"setting:privacy/telemetry_level":     "1",
	"setting:performance/visual_effects":  "default",
	"setting:performance/menu_animations": "1",
	"setting:apps/background_refresh":     "1",
	"service:telemetry":                   mutate.StartupAutomatic,
	"service:app_prefetch":                mutate.StartupAutomatic,
	"firewall:domain":                     "true",
	"firewall:private":                    "true",
	"firewall:public":                     "true",
	"resolver:":                           "", // empty list = DHCP-assigned
}

// DefaultRestoreOrder is the safe unwind order used when the configuration
// does not declare one: network first, then services, then firewall, then
// settings.
var DefaultRestoreOrder = []string{
	"set_dns_resolver",
	"disable_background_apps",
	"disable_telemetry",
	"harden_firewall",
	"trim_visual_effects",
}

// Build returns the standard maintenance action specs wired to the given
// mutator and journal.
func Build(m mutate.Mutator, journal *mutate.Journal, opts Options) []action.Spec {
	b := builder{m: m, journal: journal, mode: opts.Mode}

	return []action.Spec{
		{
			ID:          "disable_telemetry",
			Description: "Turn off usage telemetry collection and its background service",
			Preconditions: []action.Precondition{
				guard.FactTrue("is_elevated"),
			},
			Apply: []action.SubStep{
				b.setting("set_telemetry_level", "privacy", "telemetry_level", "0").do(),
				b.service("disable_telemetry_service", "telemetry", mutate.StartupDisabled).do(),
			},
			Revert: []action.SubStep{
				b.service("restore_telemetry_service", "telemetry", mutate.StartupDisabled).undo(),
				b.setting("restore_telemetry_level", "privacy", "telemetry_level", "0").undo(),
			},
		},
		{
			ID:          "set_dns_resolver",
			Description: "Point DNS resolution at the managed resolver set",
			// DNS changes additionally require an open maintenance window.
			Preconditions: []action.Precondition{
				guard.MustExpr("is_elevated and maintenance_window"),
			},
			Apply: []action.SubStep{
				b.resolver("set_resolvers", opts.Resolvers).do(),
				b.flush("flush_resolver_cache"),
			},
			Revert: []action.SubStep{
				b.resolver("restore_resolvers", opts.Resolvers).undo(),
				b.flush("flush_resolver_cache"),
			},
		},
		{
			ID:          "harden_firewall",
			Description: "Enable every firewall profile",
			Preconditions: []action.Precondition{
				guard.FactTrue("is_elevated"),
			},
			Apply: []action.SubStep{
				b.firewall("enable_domain_profile", "domain", true).do(),
				b.firewall("enable_private_profile", "private", true).do(),
				b.firewall("enable_public_profile", "public", true).do(),
			},
			Revert: []action.SubStep{
				b.firewall("restore_public_profile", "public", true).undo(),
				b.firewall("restore_private_profile", "private", true).undo(),
				b.firewall("restore_domain_profile", "domain", true).undo(),
			},
		},
		{
			ID:          "trim_visual_effects",
			Description: "Reduce desktop visual effects for responsiveness",
			Apply: []action.SubStep{
				b.setting("set_visual_effects", "performance", "visual_effects", "minimal").do(),
				b.setting("disable_menu_animations", "performance", "menu_animations", "0").do(),
			},
			Revert: []action.SubStep{
				b.setting("restore_menu_animations", "performance", "menu_animations", "0").undo(),
				b.setting("restore_visual_effects", "performance", "visual_effects", "minimal").undo(),
			},
		},
		{
			ID:          "disable_background_apps",
			Description: "Stop background app refresh and prefetch service",
			Preconditions: []action.Precondition{
				guard.FactTrue("is_elevated"),
			},
			Apply: []action.SubStep{
				b.setting("disable_background_refresh", "apps", "background_refresh", "0").do(),
				b.service("set_prefetch_manual", "app_prefetch", mutate.StartupManual).do(),
			},
			Revert: []action.SubStep{
				b.service("restore_prefetch", "app_prefetch", mutate.StartupManual).undo(),
				b.setting("restore_background_refresh", "apps", "background_refresh", "0").undo(),
			},
		},
	}
}

type builder struct {
	m       mutate.Mutator
	journal *mutate.Journal
	mode    Mode
}

// step is a sub-step with both directions populated, so apply and revert
// sequences can be declared from the same builder call.
type step struct {
	action.SubStep
}

// do returns the sub-step as declared, for apply sequences.
func (s step) do() action.SubStep {
	return s.SubStep
}

// undo returns a sub-step whose Do is the original step's Undo; revert
// sequences are declared with these.
func (s step) undo() action.SubStep {
	return action.SubStep{Name: s.Name, Do: s.Undo}
}

func (b builder) restoreValue(journalKey string) string {
	if b.mode == ModePreSession {
		if prev, ok := b.journal.Lookup(journalKey); ok {
			return prev
		}
	}
	return factoryDefaults[journalKey]
}

func (b builder) setting(name, scope, key, desired string) step {
	journalKey := "setting:" + scope + "/" + key
	return step{action.SubStep{
		Name: name,
		Do: func(ctx context.Context) error {
			if current, err := b.m.GetSetting(ctx, scope, key); err == nil {
				b.journal.RecordOnce(journalKey, current)
			}
			return b.m.SetSetting(ctx, scope, key, desired)
		},
		Undo: func(ctx context.Context) error {
			return b.m.SetSetting(ctx, scope, key, b.restoreValue(journalKey))
		},
	}}
}

func (b builder) service(name, service, desired string) step {
	journalKey := "service:" + service
	return step{action.SubStep{
		Name: name,
		Do: func(ctx context.Context) error {
			if current, err := b.m.GetServiceStartup(ctx, service); err == nil {
				b.journal.RecordOnce(journalKey, current)
			}
			return b.m.SetServiceStartup(ctx, service, desired)
		},
		Undo: func(ctx context.Context) error {
			mode := b.restoreValue(journalKey)
			if mode == "" {
				mode = mutate.StartupAutomatic
			}
			return b.m.SetServiceStartup(ctx, service, mode)
		},
	}}
}

func (b builder) firewall(name, profile string, desired bool) step {
	journalKey := "firewall:" + profile
	return step{action.SubStep{
		Name: name,
		Do: func(ctx context.Context) error {
			if current, err := b.m.GetFirewallProfile(ctx, profile); err == nil {
				b.journal.RecordOnce(journalKey, boolValue(current))
			}
			return b.m.SetFirewallProfile(ctx, profile, desired)
		},
		Undo: func(ctx context.Context) error {
			return b.m.SetFirewallProfile(ctx, profile, b.restoreValue(journalKey) == "true")
		},
	}}
}

func (b builder) resolver(name string, desired []string) step {
	const journalKey = "resolver:"
	return step{action.SubStep{
		Name: name,
		Do: func(ctx context.Context) error {
			if current, err := b.m.GetResolver(ctx); err == nil {
				b.journal.RecordOnce(journalKey, strings.Join(current, ","))
			}
			return b.m.SetResolver(ctx, desired)
		},
		Undo: func(ctx context.Context) error {
			return b.m.SetResolver(ctx, splitResolvers(b.restoreValue(journalKey)))
		},
	}}
}

func (b builder) flush(name string) action.SubStep {
	return action.SubStep{
		Name: name,
		// Flushing a cache has nothing to undo.
		Do: func(ctx context.Context) error {
			return b.m.FlushResolverCache(ctx)
		},
	}
}

func boolValue(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func splitResolvers(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}
