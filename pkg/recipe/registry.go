// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package recipe

import (
	"sync"

	"github.com/walteh/transmute/pkg/utility"
	"gitlab.com/tozd/go/errors"
)

// Factory builds a named utility instance from a recipe's argument block.
// Implementations live in packages that supply concrete utilities (e.g.
// pkg/builtinutil), registered into a Registry by a side-effecting init().
type Factory func(name string, args map[string]any) (utility.TransformationUtility, error)

// Registry maps factory type keys to Factory constructors. Unlike the
// teacher's package-level config.parsers slice, a recipe Registry is a
// value a caller can construct and pass to Load, so a call site such as a
// test can resolve against its own catalogue. Callers that pass nil (the
// CLI does) share the process-wide default registry declared below.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under key, overwriting any existing registration —
// the last Register call for a given key wins, which lets a consumer's
// init() override a default without needing to know registration order.
func (r *Registry) Register(key string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[key] = f
}

// Get returns the factory registered under key, if any.
func (r *Registry) Get(key string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[key]
	return f, ok
}

// Build resolves a single UtilityRef against the registry. An unregistered
// factory type is a load-time error, not an engine-time one.
func (r *Registry) Build(ref UtilityRef) (utility.TransformationUtility, error) {
	f, ok := r.Get(ref.Type)
	if !ok {
		return nil, errors.Errorf("no utility factory registered for type %q (utility %q)", ref.Type, ref.Name)
	}
	u, err := f(ref.Name, ref.Args)
	if err != nil {
		return nil, errors.Errorf("building utility %q (type %q): %w", ref.Name, ref.Type, err)
	}
	return u, nil
}

// defaultRegistry is the process-wide registry that factory-providing
// packages (e.g. pkg/builtinutil) populate via init()-time Register calls,
// mirroring the teacher's package-level config.parsers list. Load falls back
// to it when called with a nil *Registry.
var defaultRegistry = NewRegistry()

// Register adds a factory under key to the default, process-wide registry.
func Register(key string, f Factory) {
	defaultRegistry.Register(key, f)
}

// DefaultRegistry returns the process-wide registry populated by init()-time
// Register calls.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
