package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/systune-io/systune/internal/audit/stdout"
	"github.com/systune-io/systune/internal/catalog"
	"github.com/systune-io/systune/internal/config"
	"github.com/systune-io/systune/internal/facts/derive"
	"github.com/systune-io/systune/internal/facts/hostinfo"
	"github.com/systune-io/systune/internal/facts/invsrv"
	"github.com/systune-io/systune/internal/facts/static"
	"github.com/systune-io/systune/internal/gatekeeper/opa"
	"github.com/systune-io/systune/internal/mutate"
	"github.com/systune-io/systune/pkg/action"
	"github.com/systune-io/systune/pkg/config/loader"
	"github.com/systune-io/systune/pkg/facts"
)

const defaultCacheTTL = 30 * time.Second

// runtime bundles the wired components every command works against.
type runtime struct {
	cfg      *config.AppConfig
	configID string
	prober   *facts.Prober
	registry *action.Registry
	recorder *mutate.Recorder
	journal  *mutate.Journal
}

// newRuntime loads configuration and wires the prober, gatekeeper, and
// action registry. Mutations go through an in-memory recorder so every
// command is a dry run against the local state model.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, sha, err := loader.LoadFromPathWithSHA(ctx, configPath)
	if err != nil {
		return nil, err
	}

	prober := newProber(cfg)

	registryOpts := []action.RegistryOption{
		action.WithAuditLogger(stdout.New(), sha),
	}
	if cfg.Policy != nil && cfg.Policy.Path != "" {
		gate, err := opa.NewFromFile(ctx, cfg.Policy.Path, cfg.Policy.Query)
		if err != nil {
			return nil, fmt.Errorf("loading policy: %w", err)
		}
		registryOpts = append(registryOpts, action.WithGatekeeper(gate))
	}
	registry := action.NewRegistry(registryOpts...)

	recorder := mutate.NewRecorder()
	journal := mutate.NewJournal()

	mode := catalog.ModePreSession
	if cfg.Restore != nil && cfg.Restore.Mode == string(catalog.ModeFactory) {
		mode = catalog.ModeFactory
	}
	var resolvers []string
	if cfg.Network != nil {
		resolvers = cfg.Network.Resolvers
	}
	for _, spec := range catalog.Build(recorder, journal, catalog.Options{
		Mode:      mode,
		Resolvers: resolvers,
	}) {
		if err := registry.Register(spec); err != nil {
			return nil, fmt.Errorf("registering action: %w", err)
		}
	}

	return &runtime{
		cfg:      cfg,
		configID: sha,
		prober:   prober,
		registry: registry,
		recorder: recorder,
		journal:  journal,
	}, nil
}

func newProber(cfg *config.AppConfig) *facts.Prober {
	var opts []facts.Option
	if cfg.Probe != nil {
		if cfg.Probe.SourceTimeout != nil {
			opts = append(opts, facts.WithSourceTimeout(cfg.Probe.SourceTimeout.GoDuration()))
		}
		if cfg.Probe.MaxConcurrent > 0 {
			opts = append(opts, facts.WithMaxConcurrent(cfg.Probe.MaxConcurrent))
		}
	}
	prober := facts.NewProber(opts...)

	for _, src := range hostinfo.All() {
		prober.RegisterSource(src)
	}
	prober.RegisterSource(static.NewMaintenanceWindowSource(cfg))
	prober.RegisterSource(static.NewManagedResolversSource(cfg))

	if cfg.Inventory != nil && cfg.Inventory.BaseURL != "" {
		ttl := defaultCacheTTL
		if cfg.Inventory.CacheTTL != nil {
			ttl = cfg.Inventory.CacheTTL.GoDuration()
		}
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "localhost"
		}
		prober.RegisterSource(invsrv.New("asset_tag", cfg.Inventory.BaseURL, hostname, ttl,
			"Asset tag assigned by the inventory service"))
		prober.RegisterSource(invsrv.New("patch_ring", cfg.Inventory.BaseURL, hostname, ttl,
			"Patch ring the host belongs to"))
	}

	for _, d := range derive.All() {
		prober.RegisterDerived(d)
	}
	return prober
}

// cacheTTL returns the configured snapshot TTL, or a default.
func (rt *runtime) cacheTTL() time.Duration {
	if rt.cfg.Cache != nil && rt.cfg.Cache.TTL != nil {
		return rt.cfg.Cache.TTL.GoDuration()
	}
	return defaultCacheTTL
}

// restorePlan builds the emergency restore plan from the configured
// action order, falling back to the catalog default.
func (rt *runtime) restorePlan() action.RestorePlan {
	order := catalog.DefaultRestoreOrder
	if rt.cfg.Restore != nil && len(rt.cfg.Restore.Order) > 0 {
		order = rt.cfg.Restore.Order
	}
	return action.RestorePlan{
		ID:          "emergency_restore",
		Description: "Revert managed settings to their recorded values",
		Actions:     order,
	}
}
