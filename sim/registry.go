// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package sim

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// UnsupportedConfiguration is the error returned when an engine is requested
// for a configuration no factory has been registered for.
var UnsupportedConfiguration = errors.New("unsupported engine configuration")

// Configuration identifies one registered simulation engine.
type Configuration struct {
	// Algorithm is the engine family: "dmrg", "tebd", or "tdvp".
	Algorithm string
	// Variant selects a member of the family, like "2" for a two-site
	// engine or "2-seq" for its sequential twin.
	Variant string
}

// String returns the engine name used in configuration files, the algorithm
// immediately followed by the variant.
func (c Configuration) String() string {
	return c.Algorithm + c.Variant
}

// ParseConfiguration splits an engine name like "tebd2-seq" into the
// algorithm prefix and the variant remainder.
func ParseConfiguration(name string) (Configuration, error) {
	split := 0
	for split < len(name) && name[split] >= 'a' && name[split] <= 'z' {
		split++
	}
	if split == 0 || split == len(name) {
		return Configuration{}, fmt.Errorf("invalid engine name %q, want an algorithm followed by a variant like %q", name, "tebd2")
	}
	return Configuration{Algorithm: name[:split], Variant: name[split:]}, nil
}

var (
	factoryMutex    sync.Mutex
	engineFactories = map[Configuration]EngineFactory{}
)

// RegisterEngineFactory makes an engine available under the given
// configuration. It is intended to be called from init functions and panics
// when a configuration is registered twice.
func RegisterEngineFactory(config Configuration, factory EngineFactory) {
	factoryMutex.Lock()
	defer factoryMutex.Unlock()
	if _, exists := engineFactories[config]; exists {
		panic(fmt.Sprintf("sim: engine configuration %s registered twice", config))
	}
	engineFactories[config] = factory
}

// GetAllRegisteredConfigurations lists the registered configurations sorted
// by name.
func GetAllRegisteredConfigurations() []Configuration {
	factoryMutex.Lock()
	defer factoryMutex.Unlock()
	configs := make([]Configuration, 0, len(engineFactories))
	for config := range engineFactories {
		configs = append(configs, config)
	}
	slices.SortFunc(configs, func(a, b Configuration) int {
		return strings.Compare(a.String(), b.String())
	})
	return configs
}

func lookupFactory(config Configuration) (EngineFactory, bool) {
	factoryMutex.Lock()
	defer factoryMutex.Unlock()
	factory, found := engineFactories[config]
	return factory, found
}
