package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/xcallback/pkg/domain"
)

// ActionFunc defines the signature for an action implementation.
// It receives the cleaned parameters and must call complete once with the
// outcome, synchronously or later from another goroutine.
type ActionFunc func(ctx context.Context, params domain.Parameters, complete domain.ResultHandler)

// Func adapts a synchronous function into an ActionFunc.
func Func(fn func(ctx context.Context, params domain.Parameters) domain.Result) ActionFunc {
	return func(ctx context.Context, params domain.Parameters, complete domain.ResultHandler) {
		complete(fn(ctx, params))
	}
}

// StrategyName is the name the registry reports as a dispatch strategy.
const StrategyName = "registry"

// Registry manages the actions this process answers to.
// It implements ports.Strategy.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]ActionFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]ActionFunc),
	}
}

// Register adds an action to the registry.
// If an action with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn ActionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = fn
}

// Unregister removes an action.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.actions, name)
}

// Lookup returns the action registered under name.
func (r *Registry) Lookup(name string) (ActionFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.actions[name]
	return fn, ok
}

// Names lists the registered actions in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Name implements ports.Strategy.
func (r *Registry) Name() string { return StrategyName }

// Supports implements ports.Strategy.
func (r *Registry) Supports(action string) bool {
	_, ok := r.Lookup(action)
	return ok
}

// Perform implements ports.Strategy.
// The lock is released before the action runs, so actions may register others.
func (r *Registry) Perform(ctx context.Context, action string, params domain.Parameters, complete domain.ResultHandler) {
	fn, ok := r.Lookup(action)
	if !ok {
		complete(domain.Failure(domain.NewError(domain.CodeActionNotSupported, "action not registered: %s", action)))
		return
	}
	fn(ctx, params, complete)
}
