package integration

import (
	"context"
	"testing"
	"time"

	"github.com/systune-io/systune/internal/audit/stdout"
	"github.com/systune-io/systune/internal/catalog"
	"github.com/systune-io/systune/internal/facts/derive"
	"github.com/systune-io/systune/internal/facts/invsrv"
	"github.com/systune-io/systune/internal/facts/invsrv_mock"
	"github.com/systune-io/systune/internal/facts/mock"
	"github.com/systune-io/systune/internal/gatekeeper/opa"
	"github.com/systune-io/systune/internal/mutate"
	"github.com/systune-io/systune/pkg/action"
	"github.com/systune-io/systune/pkg/facts"
)

// TestMaintenanceSession exercises the complete flow: probe facts through
// mock and HTTP-backed sources, derive classification facts, gate the
// action catalog through a Rego policy, run a batch against the recorder,
// and finally unwind everything with the emergency restore plan.
func TestMaintenanceSession(t *testing.T) {
	ctx := context.Background()

	// Start a mock inventory service
	inventory := invsrv_mock.NewServer().WithDefaultValues()
	defer inventory.Close()

	// Wire the prober: host facts come from mocks, inventory facts over
	// HTTP, classification facts derived from both.
	prober := facts.NewProber(facts.WithSourceTimeout(2 * time.Second))
	prober.RegisterSource(mock.New("system_manufacturer", "VMware, Inc.", "Hardware vendor string"))
	prober.RegisterSource(mock.New("system_model", "VMware Virtual Platform", "Hardware model string"))
	prober.RegisterSource(mock.New("euid", 0, "Effective uid of this process"))
	prober.RegisterSource(mock.New("maintenance_window", true, "Whether the maintenance window is open"))
	prober.RegisterSource(invsrv.New("patch_ring", inventory.URL(), "test-host", time.Minute, "Patch ring"))
	for _, d := range derive.All() {
		prober.RegisterDerived(d)
	}

	snap := prober.Cached(ctx, time.Minute)

	if v, ok := snap.Bool("is_elevated"); !ok || !v {
		t.Fatalf("Expected is_elevated=true, got: %v (tracked: %v)", v, ok)
	}
	if v, ok := snap.Bool("is_virtual_machine"); !ok || !v {
		t.Fatalf("Expected is_virtual_machine=true, got: %v (tracked: %v)", v, ok)
	}
	if v, ok := snap.String("patch_ring"); !ok || v != "canary" {
		t.Fatalf("Expected patch_ring=canary from the inventory service, got: %v", v)
	}

	// Build the action registry behind the policy gate
	gate, err := opa.NewFromFile(ctx, "../../policy/rego/actions.rego", "data.systune.response")
	if err != nil {
		t.Fatalf("Failed to load policy: %v", err)
	}

	recorder := mutate.NewRecorder()
	recorder.SeedSetting("privacy", "telemetry_level", "3")
	recorder.SeedResolver([]string{"10.0.0.1"})
	journal := mutate.NewJournal()

	registry := action.NewRegistry(
		action.WithGatekeeper(gate),
		action.WithAuditLogger(stdout.New(), "integration-config"),
	)
	for _, spec := range catalog.Build(recorder, journal, catalog.Options{
		Mode:      catalog.ModePreSession,
		Resolvers: []string{"1.1.1.1", "9.9.9.9"},
	}) {
		if err := registry.Register(spec); err != nil {
			t.Fatalf("Failed to register action: %v", err)
		}
	}

	// Run a batch: the resolver action must be denied by policy on a VM,
	// the others must succeed, and the batch must not stop at the denial.
	batch, err := registry.ExecuteBatch(ctx, []string{
		"disable_telemetry",
		"set_dns_resolver",
		"trim_visual_effects",
	}, snap)
	if err != nil {
		t.Fatalf("ExecuteBatch: %v", err)
	}

	byID := make(map[string]action.ActionResult, len(batch.Results))
	for _, r := range batch.Results {
		byID[r.ActionID] = r
	}

	if byID["disable_telemetry"].Status != action.StatusSuccess {
		t.Errorf("Expected disable_telemetry to succeed, got %s (%s)",
			byID["disable_telemetry"].Status, byID["disable_telemetry"].Reason)
	}
	if byID["set_dns_resolver"].Status != action.StatusSkipped {
		t.Errorf("Expected set_dns_resolver to be denied on a VM, got %s",
			byID["set_dns_resolver"].Status)
	}
	if byID["trim_visual_effects"].Status != action.StatusSuccess {
		t.Errorf("Expected trim_visual_effects to succeed, got %s (%s)",
			byID["trim_visual_effects"].Status, byID["trim_visual_effects"].Reason)
	}

	// The applied actions took effect; the denied one did not.
	if level, _ := recorder.Setting("privacy", "telemetry_level"); level != "0" {
		t.Errorf("Expected telemetry_level=0, got %s", level)
	}
	if servers := recorder.Resolvers(); len(servers) != 1 || servers[0] != "10.0.0.1" {
		t.Errorf("Expected resolvers untouched after the denial, got %v", servers)
	}

	// Emergency restore unwinds the session in the configured order.
	restore, err := registry.ExecuteRestore(ctx, action.RestorePlan{
		ID:          "emergency_restore",
		Description: "Revert managed settings to their recorded values",
		Actions:     catalog.DefaultRestoreOrder,
	})
	if err != nil {
		t.Fatalf("ExecuteRestore: %v", err)
	}
	if len(restore.Results) != len(catalog.DefaultRestoreOrder) {
		t.Fatalf("Expected %d restore results, got %d", len(catalog.DefaultRestoreOrder), len(restore.Results))
	}

	if level, _ := recorder.Setting("privacy", "telemetry_level"); level != "3" {
		t.Errorf("Expected telemetry_level restored to 3, got %s", level)
	}
}

// TestProbeDegradesGracefully verifies the end-to-end behavior when
// sources misbehave: the snapshot still materializes, failed facts carry
// their errors, and derived facts over failed inputs degrade in turn.
func TestProbeDegradesGracefully(t *testing.T) {
	ctx := context.Background()

	prober := facts.NewProber()
	prober.RegisterSource(mock.New("euid", 1000, "Effective uid of this process"))
	prober.RegisterSource(mock.New("system_manufacturer", "LENOVO", "Hardware vendor string").
		WithDelay(500 * time.Millisecond))
	prober.RegisterSource(mock.New("system_model", "20Y7003AGE", "Hardware model string"))
	for _, d := range derive.All() {
		prober.RegisterDerived(d)
	}

	start := time.Now()
	snap := prober.Probe(ctx, prober.Known(), 50*time.Millisecond)
	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Errorf("Expected the probe to return near the per-source deadline, took %v", elapsed)
	}

	manufacturer, _ := snap.Fact("system_manufacturer")
	if manufacturer.OK() {
		t.Errorf("Expected the slow source to time out")
	}

	// virtualization depends on the timed-out fact and must degrade
	virtualization, _ := snap.Fact("virtualization")
	if virtualization.OK() {
		t.Errorf("Expected virtualization to fail with a missing input")
	}

	// is_elevated depends only on euid and must still resolve
	if v, ok := snap.Bool("is_elevated"); !ok || v {
		t.Errorf("Expected is_elevated=false for uid 1000, got %v (tracked: %v)", v, ok)
	}
}
