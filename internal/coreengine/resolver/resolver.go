// Package resolver selects a usable ASR backend for a requested model name
// by walking its configured fallback chain. Fallback is never silent: every
// resolution reports whether it fell back and which models were skipped,
// so a benchmark run cannot record results under the wrong model's name.
package resolver

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"asr-benchmark-platform/internal/coreengine/modeladapters"
)

// Skip records one model that was passed over during resolution and why.
type Skip struct {
	Model  string `json:"model"`
	Reason string `json:"reason"`
}

// Resolution is the outcome of resolving a requested model name to a
// usable adapter.
type Resolution struct {
	Adapter modeladapters.ModelAdapter
	// Requested is the descriptor of the model that was asked for.
	Requested modeladapters.ModelDescriptor
	// Resolved is the descriptor of the model that will actually run.
	Resolved modeladapters.ModelDescriptor
	// FellBack is true when Resolved differs from Requested.
	FellBack bool
	// Skipped lists every model passed over before Resolved, in chain
	// order, each with its unavailability reason.
	Skipped []Skip
}

// NoAvailableModelError reports that a requested model's entire fallback
// chain was exhausted. It names every attempted model with its specific
// unavailability reason.
type NoAvailableModelError struct {
	Requested string
	Attempts  []Skip
}

func (e *NoAvailableModelError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s (%s)", a.Model, a.Reason))
	}
	return fmt.Sprintf("no available model for %q; attempted: %s", e.Requested, strings.Join(parts, ", "))
}

// Resolver holds an explicit registry of adapters keyed by model name. It
// is constructed once from configuration; there is no ambient registry
// state.
type Resolver struct {
	adapters map[string]modeladapters.ModelAdapter
}

// New builds a Resolver from the given adapters. It fails when two
// adapters share a name, when a fallback link points at an unregistered
// model, or when a fallback chain contains a cycle.
func New(adapters []modeladapters.ModelAdapter) (*Resolver, error) {
	byName := make(map[string]modeladapters.ModelAdapter, len(adapters))
	for _, adapter := range adapters {
		desc := adapter.Describe()
		if desc.Name == "" {
			return nil, fmt.Errorf("resolver: adapter with empty model name")
		}
		if _, exists := byName[desc.Name]; exists {
			return nil, fmt.Errorf("resolver: duplicate model name %q", desc.Name)
		}
		byName[desc.Name] = adapter
	}

	r := &Resolver{adapters: byName}
	for name := range byName {
		if err := r.validateChain(name); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// validateChain walks the fallback links from name, rejecting unknown
// targets and cycles.
func (r *Resolver) validateChain(name string) error {
	visited := map[string]bool{}
	current := name
	for current != "" {
		if visited[current] {
			return fmt.Errorf("resolver: fallback chain starting at %q contains a cycle through %q", name, current)
		}
		visited[current] = true

		adapter, ok := r.adapters[current]
		if !ok {
			return fmt.Errorf("resolver: fallback chain starting at %q references unregistered model %q", name, current)
		}
		current = adapter.Describe().Fallback
	}
	return nil
}

// Resolve walks the fallback chain of the requested model and returns the
// first available adapter. When the chain is exhausted it returns a
// NoAvailableModelError naming every attempt.
func (r *Resolver) Resolve(requested string) (*Resolution, error) {
	requestedAdapter, ok := r.adapters[requested]
	if !ok {
		return nil, fmt.Errorf("resolver: unknown model %q", requested)
	}

	var skipped []Skip
	current := requested
	for current != "" {
		adapter := r.adapters[current]
		desc := adapter.Describe()

		available, reason := adapter.IsAvailable()
		if available {
			res := &Resolution{
				Adapter:   adapter,
				Requested: requestedAdapter.Describe(),
				Resolved:  desc,
				FellBack:  current != requested,
				Skipped:   skipped,
			}
			if res.FellBack {
				log.Printf("resolver: model %q unavailable, falling back to %q (skipped: %d)", requested, current, len(skipped))
			}
			return res, nil
		}

		skipped = append(skipped, Skip{Model: current, Reason: reason})
		current = desc.Fallback
	}

	return nil, &NoAvailableModelError{Requested: requested, Attempts: skipped}
}

// Chain returns the configured fallback chain for a model, starting with
// the model itself. It returns nil for unknown models.
func (r *Resolver) Chain(name string) []string {
	if _, ok := r.adapters[name]; !ok {
		return nil
	}
	var chain []string
	current := name
	for current != "" {
		chain = append(chain, current)
		current = r.adapters[current].Describe().Fallback
	}
	return chain
}

// Descriptors returns every registered model's descriptor, sorted by name.
func (r *Resolver) Descriptors() []modeladapters.ModelDescriptor {
	descs := make([]modeladapters.ModelDescriptor, 0, len(r.adapters))
	for _, adapter := range r.adapters {
		descs = append(descs, adapter.Describe())
	}
	sort.Slice(descs, func(i, j int) bool { return descs[i].Name < descs[j].Name })
	return descs
}

// Adapter returns the registered adapter for a model name, without
// availability checks or fallback.
func (r *Resolver) Adapter(name string) (modeladapters.ModelAdapter, bool) {
	adapter, ok := r.adapters[name]
	return adapter, ok
}
