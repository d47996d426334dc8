package exchange

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// CheckerFactory builds the checker of one exchange type for an identifier.
type CheckerFactory func(exchangeID string) *Checker

// Registry maps exchange types to their checker factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]CheckerFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]CheckerFactory)}
}

// Register adds or replaces the factory for exchangeType.
func (r *Registry) Register(exchangeType string, factory CheckerFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(exchangeType)] = factory
}

// New returns the checker registered for exchangeType, bound to exchangeID.
func (r *Registry) New(exchangeType, exchangeID string) (*Checker, error) {
	r.mu.RLock()
	factory, ok := r.factories[strings.ToLower(exchangeType)]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrUnknownExchange, "exchanges.%s: %q", exchangeID, exchangeType)
	}
	return factory(exchangeID), nil
}

// Types lists the registered exchange types in order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
