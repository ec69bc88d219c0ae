package provider

import (
	"errors"
	"strings"
	"sync"
)

// ErrNoClient is returned when no registered rule matches a model name and
// no default factory is set.
var ErrNoClient = errors.New("no provider client for model")

// Factory constructs a Client.
type Factory func() Client

type rule struct {
	prefix  string
	factory Factory
}

// Registry routes model names to provider client factories. Adding a
// provider is a registration, not a conditional: the first rule whose prefix
// matches the model name wins, and unmatched names fall through to the
// default factory.
type Registry struct {
	mu       sync.RWMutex
	rules    []rule
	fallback Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a prefix rule. Rules are tried in registration order.
func (r *Registry) Register(prefix string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{prefix: prefix, factory: f})
}

// SetDefault sets the factory used when no rule matches.
func (r *Registry) SetDefault(f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = f
}

// Resolve returns a client for the given model name.
func (r *Registry) Resolve(model string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rule := range r.rules {
		if strings.HasPrefix(model, rule.prefix) {
			return rule.factory(), nil
		}
	}
	if r.fallback != nil {
		return r.fallback(), nil
	}

	return nil, ErrNoClient
}
