package mutate

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Call records one mutation performed through the Recorder.
type Call struct {
	Op     string
	Target string
	Value  string
}

// Recorder implements Mutator entirely in memory, recording every mutating
// call. It backs tests and dry runs: the same action catalog runs against
// it without touching the host. Individual operations can be made to fail
// with FailOn.
type Recorder struct {
	mu        sync.Mutex
	calls     []Call
	settings  map[string]string
	services  map[string]string
	firewall  map[string]bool
	resolvers []string
	failures  map[string]error
}

var _ Mutator = (*Recorder)(nil)

// NewRecorder creates an empty Recorder with default system state: all
// firewall profiles enabled, services automatic, resolvers DHCP-assigned.
func NewRecorder() *Recorder {
	return &Recorder{
		settings: make(map[string]string),
		services: make(map[string]string),
		firewall: make(map[string]bool),
		failures: make(map[string]error),
	}
}

// SeedSetting pre-populates a setting, simulating pre-session system state.
func (r *Recorder) SeedSetting(scope, name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[scope+"/"+name] = value
}

// SeedService pre-populates a service startup mode.
func (r *Recorder) SeedService(service, mode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[service] = mode
}

// SeedResolver pre-populates the resolver list.
func (r *Recorder) SeedResolver(servers []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers = append([]string(nil), servers...)
}

// FailOn makes the named operation fail for the given target ("" matches
// any target).
func (r *Recorder) FailOn(op, target string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op+"|"+target] = err
}

// Calls returns a copy of every mutating call in execution order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallCount returns how many mutating calls matched op and target.
func (r *Recorder) CallCount(op, target string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op && c.Target == target {
			n++
		}
	}
	return n
}

func (r *Recorder) failureFor(op, target string) error {
	if err, ok := r.failures[op+"|"+target]; ok {
		return err
	}
	if err, ok := r.failures[op+"|"]; ok {
		return err
	}
	return nil
}

// GetSetting implements Mutator. Unset settings read as empty.
func (r *Recorder) GetSetting(ctx context.Context, scope, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings[scope+"/"+name], nil
}

// SetSetting implements Mutator.
func (r *Recorder) SetSetting(ctx context.Context, scope, name, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	target := scope + "/" + name
	if err := r.failureFor("set_setting", target); err != nil {
		return fmt.Errorf("set setting %s: %w", target, err)
	}
	r.calls = append(r.calls, Call{Op: "set_setting", Target: target, Value: value})
	r.settings[target] = value
	return nil
}

// GetServiceStartup implements Mutator. Unknown services read as automatic.
func (r *Recorder) GetServiceStartup(ctx context.Context, service string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mode, ok := r.services[service]; ok {
		return mode, nil
	}
	return StartupAutomatic, nil
}

// SetServiceStartup implements Mutator.
func (r *Recorder) SetServiceStartup(ctx context.Context, service, mode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failureFor("set_service_startup", service); err != nil {
		return fmt.Errorf("set service %s startup: %w", service, err)
	}
	r.calls = append(r.calls, Call{Op: "set_service_startup", Target: service, Value: mode})
	r.services[service] = mode
	return nil
}

// GetFirewallProfile implements Mutator. Unknown profiles read as enabled.
func (r *Recorder) GetFirewallProfile(ctx context.Context, profile string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if enabled, ok := r.firewall[profile]; ok {
		return enabled, nil
	}
	return true, nil
}

// SetFirewallProfile implements Mutator.
func (r *Recorder) SetFirewallProfile(ctx context.Context, profile string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failureFor("set_firewall_profile", profile); err != nil {
		return fmt.Errorf("set firewall profile %s: %w", profile, err)
	}
	r.calls = append(r.calls, Call{Op: "set_firewall_profile", Target: profile, Value: fmt.Sprintf("%t", enabled)})
	r.firewall[profile] = enabled
	return nil
}

// GetResolver implements Mutator.
func (r *Recorder) GetResolver(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.resolvers...), nil
}

// SetResolver implements Mutator.
func (r *Recorder) SetResolver(ctx context.Context, servers []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failureFor("set_resolver", ""); err != nil {
		return fmt.Errorf("set resolver: %w", err)
	}
	r.calls = append(r.calls, Call{Op: "set_resolver", Target: "", Value: strings.Join(servers, ",")})
	r.resolvers = append([]string(nil), servers...)
	return nil
}

// FlushResolverCache implements Mutator.
func (r *Recorder) FlushResolverCache(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failureFor("flush_resolver_cache", ""); err != nil {
		return fmt.Errorf("flush resolver cache: %w", err)
	}
	r.calls = append(r.calls, Call{Op: "flush_resolver_cache", Target: "", Value: ""})
	return nil
}

// Setting returns the current value of a setting and whether it was ever
// written or seeded.
func (r *Recorder) Setting(scope, name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.settings[scope+"/"+name]
	return v, ok
}

// ServiceStartup returns the recorded startup mode for a service.
func (r *Recorder) ServiceStartup(service string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.services[service]
	return v, ok
}

// FirewallProfile returns the recorded state for a firewall profile.
func (r *Recorder) FirewallProfile(profile string) (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.firewall[profile]
	return v, ok
}

// Resolvers returns the recorded resolver list.
func (r *Recorder) Resolvers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.resolvers...)
}
