// Package hostinfo provides fact sources answered by the local process:
// identity, platform, and privilege facts that never need network access.
package hostinfo

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/systune-io/systune/pkg/facts"
)

// dmiPath is the kernel's DMI export; overridable for tests.
var dmiPath = "/sys/class/dmi/id"

// source adapts a plain collect function into a facts.Source.
type source struct {
	key         string
	description string
	collect     func(ctx context.Context) (any, error)
}

func (s *source) Describe() facts.Schema {
	return facts.Schema{Key: s.key, Description: s.description}
}

func (s *source) Collect(ctx context.Context) (any, error) {
	return s.collect(ctx)
}

// Hostname reports the machine's hostname under the "hostname" key.
func Hostname() facts.Source {
	return &source{
		key:         "hostname",
		description: "Machine hostname",
		collect: func(ctx context.Context) (any, error) {
			return os.Hostname()
		},
	}
}

// OperatingSystem reports the running OS under the "os" key.
func OperatingSystem() facts.Source {
	return &source{
		key:         "os",
		description: "Operating system",
		collect: func(ctx context.Context) (any, error) {
			return runtime.GOOS, nil
		},
	}
}

// Architecture reports the CPU architecture under the "arch" key.
func Architecture() facts.Source {
	return &source{
		key:         "arch",
		description: "CPU architecture",
		collect: func(ctx context.Context) (any, error) {
			return runtime.GOARCH, nil
		},
	}
}

// CPUCount reports the logical CPU count under the "num_cpu" key.
func CPUCount() facts.Source {
	return &source{
		key:         "num_cpu",
		description: "Logical CPU count",
		collect: func(ctx context.Context) (any, error) {
			return runtime.NumCPU(), nil
		},
	}
}

// EffectiveUID reports the process's effective uid under the "euid" key.
// Platforms without POSIX uids report -1.
func EffectiveUID() facts.Source {
	return &source{
		key:         "euid",
		description: "Effective uid of this process",
		collect: func(ctx context.Context) (any, error) {
			return os.Geteuid(), nil
		},
	}
}

// readDMI returns one trimmed field from the DMI export, or "unknown"
// when the field is absent or unreadable (containers, non-x86 hosts).
func readDMI(field string) string {
	data, err := os.ReadFile(filepath.Join(dmiPath, field))
	if err != nil {
		return "unknown"
	}
	value := strings.TrimSpace(string(data))
	if value == "" {
		return "unknown"
	}
	return value
}

// SystemManufacturer reports the hardware vendor under the
// "system_manufacturer" key.
func SystemManufacturer() facts.Source {
	return &source{
		key:         "system_manufacturer",
		description: "Hardware vendor string",
		collect: func(ctx context.Context) (any, error) {
			return readDMI("sys_vendor"), nil
		},
	}
}

// SystemModel reports the hardware model under the "system_model" key.
func SystemModel() facts.Source {
	return &source{
		key:         "system_model",
		description: "Hardware model string",
		collect: func(ctx context.Context) (any, error) {
			return readDMI("product_name"), nil
		},
	}
}

// All returns every hostinfo source, for bulk registration.
func All() []facts.Source {
	return []facts.Source{
		Hostname(),
		OperatingSystem(),
		Architecture(),
		CPUCount(),
		EffectiveUID(),
		SystemManufacturer(),
		SystemModel(),
	}
}
