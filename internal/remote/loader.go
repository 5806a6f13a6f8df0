// Package remote provides the pluggable loaders that turn a remote source
// configuration into raw documents, resolved by a loader-type tag.
package remote

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/timmy/docmill/internal/domain"
)

// ErrUnknownLoader is returned when no loader is registered for a tag.
// An unknown tag is a configuration error, not a transient failure.
var ErrUnknownLoader = errors.New("unknown remote loader type")

// Loader fetches documents from a named remote source configuration. The
// configuration map is opaque to the core and interpreted by each loader.
type Loader interface {
	Load(ctx context.Context, config domain.RemoteConfig) ([]domain.Document, error)
}

// Factory constructs a loader instance.
type Factory func() Loader

// Registry maps loader-type tags to loader factories. Adding a loader means
// registering a new tag, not branching on type.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a registry with the built-in loaders registered.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("url", func() Loader { return NewURLLoader() })
	r.Register("github", func() Loader { return NewGitHubLoader() })
	return r
}

// Register adds or replaces the factory for a tag.
func (r *Registry) Register(tag string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[tag] = f
}

// Create resolves a loader implementation by its tag.
func (r *Registry) Create(tag string) (Loader, error) {
	r.mu.RLock()
	f, ok := r.factories[tag]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLoader, tag)
	}
	return f(), nil
}

// Tags returns the registered loader tags.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.factories))
	for tag := range r.factories {
		tags = append(tags, tag)
	}
	return tags
}
