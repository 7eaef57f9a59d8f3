package plugin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shadabshaukat/DELTAV2/pkg/config"
)

type OutputConfig = config.OutputConfig

// ProbeFactory builds a probe from the resolved run configuration. Each
// variant reads only its own backend section.
type ProbeFactory func(cfg *config.Config) (Probe, error)

// OutputFactory builds an output from one entry of the outputs list.
type OutputFactory func(cfg OutputConfig) (Output, error)

var (
	probeFactories  = make(map[string]ProbeFactory)
	outputFactories = make(map[string]OutputFactory)
)

func RegisterProbe(typ string, factory ProbeFactory) {
	probeFactories[typ] = factory
}

func NewProbe(typ string, cfg *config.Config) (Probe, error) {
	f, ok := probeFactories[typ]
	if !ok {
		return nil, NewError(KindConfig, typ, "new_probe", fmt.Errorf("unknown probe type %q, known: %s", typ, strings.Join(Probes(), ", ")))
	}
	return f(cfg)
}

// Probes lists the registered probe types in sorted order.
func Probes() []string {
	return sortedKeys(probeFactories)
}

func RegisterOutput(typ string, factory OutputFactory) {
	outputFactories[typ] = factory
}

func NewOutput(cfg OutputConfig) (Output, error) {
	f, ok := outputFactories[cfg.Type]
	if !ok {
		return nil, NewError(KindConfig, cfg.Type, "new_output", fmt.Errorf("unknown output type %q, known: %s", cfg.Type, strings.Join(Outputs(), ", ")))
	}
	return f(cfg)
}

// Outputs lists the registered output types in sorted order.
func Outputs() []string {
	return sortedKeys(outputFactories)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
