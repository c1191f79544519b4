package source

import (
	"fmt"

	"scholartrack/internal/ports"
)

// Registry keeps a mapping from source names to their implementations, so a
// deployment can pick its bibliographic backend by name.
type Registry struct {
	sources map[string]ports.ActivitySource
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]ports.ActivitySource{}}
}

// Register adds or replaces a source implementation.
func (r *Registry) Register(src ports.ActivitySource) {
	if r.sources == nil {
		r.sources = map[string]ports.ActivitySource{}
	}
	r.sources[src.Name()] = src
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.ActivitySource, error) {
	if src, ok := r.sources[name]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("activity source %s is not registered", name)
}
