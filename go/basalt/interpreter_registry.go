// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package basalt

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
)

// Interpreter implementations and named configurations of them register a
// factory in the init code of their package. Importing such a package makes
// its interpreters available by name.

const ErrUnknownInterpreter = ConstError("unknown interpreter")

// InterpreterFactory creates an Interpreter from an implementation specific
// configuration. A nil configuration selects the defaults of the factory.
type InterpreterFactory func(config any) (Interpreter, error)

// NewInterpreter creates an interpreter using the factory registered under
// the given name, which is not case-sensitive. At most one configuration may
// be provided; without one the factory's defaults are used.
func NewInterpreter(name string, config ...any) (Interpreter, error) {
	if len(config) > 1 {
		return nil, fmt.Errorf("invalid configuration: expected at most one, got %d", len(config))
	}
	factory := registry.lookup(name)
	if factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInterpreter, name)
	}
	var cfg any
	if len(config) == 1 {
		cfg = config[0]
	}
	return factory(cfg)
}

// GetInterpreterFactory returns the factory registered under the given name,
// or nil if there is none.
func GetInterpreterFactory(name string) InterpreterFactory {
	return registry.lookup(name)
}

// GetRegisteredInterpreterNames lists all registered names in alphabetical
// order.
func GetRegisteredInterpreterNames() []string {
	return registry.names()
}

// RegisterInterpreterFactory binds a factory to a name. Names are stored in
// lower case; registering the same name twice, an empty name, or a nil
// factory is an error.
func RegisterInterpreterFactory(name string, factory InterpreterFactory) error {
	return registry.register(name, factory)
}

var registry = interpreterRegistry{factories: map[string]InterpreterFactory{}}

type interpreterRegistry struct {
	mutex     sync.RWMutex
	factories map[string]InterpreterFactory
}

func (r *interpreterRegistry) lookup(name string) InterpreterFactory {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.factories[normalizeName(name)]
}

func (r *interpreterRegistry) names() []string {
	r.mutex.RLock()
	res := maps.Keys(r.factories)
	r.mutex.RUnlock()
	slices.Sort(res)
	return res
}

func (r *interpreterRegistry) register(name string, factory InterpreterFactory) error {
	key := normalizeName(name)
	if key == "" {
		return fmt.Errorf("cannot register interpreter without a name")
	}
	if factory == nil {
		return fmt.Errorf("cannot register nil factory for %q", key)
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, found := r.factories[key]; found {
		return fmt.Errorf("interpreter %q is already registered", key)
	}
	r.factories[key] = factory
	return nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
