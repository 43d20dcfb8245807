// Package derive defines the built-in derived facts computed from raw
// snapshot values after the concurrent collection phase.
package derive

import (
	"fmt"
	"regexp"

	"github.com/systune-io/systune/pkg/facts"
)

// vendorPattern classifies a hardware vendor string. Patterns are checked
// in order; the first match wins.
type vendorPattern struct {
	pattern *regexp.Regexp
	label   string
}

var virtualizationPatterns = []vendorPattern{
	{regexp.MustCompile(`(?i)vmware`), "vmware"},
	{regexp.MustCompile(`(?i)virtualbox|innotek`), "virtualbox"},
	{regexp.MustCompile(`(?i)kvm|qemu`), "kvm"},
	{regexp.MustCompile(`(?i)xen`), "xen"},
	{regexp.MustCompile(`(?i)microsoft.*virtual|hyper-v`), "hyperv"},
	{regexp.MustCompile(`(?i)parallels`), "parallels"},
}

// classifyVendor returns the virtualization platform for a manufacturer
// and model string, or "physical" when no pattern matches.
func classifyVendor(manufacturer, model string) string {
	combined := manufacturer + " " + model
	for _, vp := range virtualizationPatterns {
		if vp.pattern.MatchString(combined) {
			return vp.label
		}
	}
	return "physical"
}

// Virtualization derives the virtualization platform from the hardware
// manufacturer and model facts.
func Virtualization() facts.Derived {
	return facts.Derived{
		Key:         "virtualization",
		Description: "Virtualization platform (vmware, kvm, ...) or \"physical\"",
		Inputs:      []string{"system_manufacturer", "system_model"},
		Compute: func(inputs map[string]any) (any, error) {
			manufacturer, ok := inputs["system_manufacturer"].(string)
			if !ok {
				return nil, fmt.Errorf("system_manufacturer is %T, want string", inputs["system_manufacturer"])
			}
			model, ok := inputs["system_model"].(string)
			if !ok {
				return nil, fmt.Errorf("system_model is %T, want string", inputs["system_model"])
			}
			return classifyVendor(manufacturer, model), nil
		},
	}
}

// IsVirtualMachine derives a boolean from the virtualization fact.
func IsVirtualMachine() facts.Derived {
	return facts.Derived{
		Key:         "is_virtual_machine",
		Description: "Whether the host runs on a virtualization platform",
		Inputs:      []string{"virtualization"},
		Compute: func(inputs map[string]any) (any, error) {
			platform, ok := inputs["virtualization"].(string)
			if !ok {
				return nil, fmt.Errorf("virtualization is %T, want string", inputs["virtualization"])
			}
			return platform != "physical", nil
		},
	}
}

// IsElevated derives whether the process has administrative rights from
// the effective user id fact.
func IsElevated() facts.Derived {
	return facts.Derived{
		Key:         "is_elevated",
		Description: "Whether the process runs with administrative rights",
		Inputs:      []string{"euid"},
		Compute: func(inputs map[string]any) (any, error) {
			switch v := inputs["euid"].(type) {
			case int:
				return v == 0, nil
			case float64:
				return v == 0, nil
			default:
				return nil, fmt.Errorf("euid is %T, want int", inputs["euid"])
			}
		},
	}
}

// All returns every built-in derived fact in dependency order.
func All() []facts.Derived {
	return []facts.Derived{
		Virtualization(),
		IsVirtualMachine(),
		IsElevated(),
	}
}
