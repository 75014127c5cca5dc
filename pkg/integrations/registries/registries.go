// Package registries maps registry names to their version-listing clients.
package registries

import (
	"fmt"
	"slices"

	"github.com/matzehuels/tav/pkg/integrations"
	"github.com/matzehuels/tav/pkg/integrations/crates"
	"github.com/matzehuels/tav/pkg/integrations/goproxy"
	"github.com/matzehuels/tav/pkg/integrations/npm"
	"github.com/matzehuels/tav/pkg/integrations/pypi"
)

// Default is the registry used when none is configured.
const Default = "npm"

var constructors = map[string]func(integrations.Config) integrations.Registry{
	"npm":     func(c integrations.Config) integrations.Registry { return npm.NewClient(c) },
	"pypi":    func(c integrations.Config) integrations.Registry { return pypi.NewClient(c) },
	"crates":  func(c integrations.Config) integrations.Registry { return crates.NewClient(c) },
	"goproxy": func(c integrations.Config) integrations.Registry { return goproxy.NewClient(c) },
}

// Names returns the supported registry names, sorted.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New returns the client for the named registry. An empty name selects [Default].
func New(name string, cfg integrations.Config) (integrations.Registry, error) {
	if name == "" {
		name = Default
	}
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown registry %q (supported: %v)", name, Names())
	}
	return ctor(cfg), nil
}
