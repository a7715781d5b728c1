package filter

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/s0up4200/cardctl/model"
)

// Manager holds named filter presets
type Manager struct {
	compiler  Compiler
	evaluator *ConcurrentEvaluator
	filters   map[string]CompiledFilter
	mu        sync.RWMutex
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// WithEvaluator sets a custom evaluator
func WithEvaluator(evaluator *ConcurrentEvaluator) ManagerOption {
	return func(m *Manager) {
		m.evaluator = evaluator
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		filters: make(map[string]CompiledFilter),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.compiler == nil {
		m.compiler = NewExprCompiler(WithCache(100))
	}
	if m.evaluator == nil {
		m.evaluator = NewConcurrentEvaluator()
	}

	return m
}

// RegisterFilter compiles expression and stores it under name, replacing
// any previous preset. Shorthand syntax is accepted.
func (m *Manager) RegisterFilter(name, expression string) error {
	filter, err := m.compile(expression)
	if err != nil {
		return fmt.Errorf("failed to compile filter '%s': %w", name, err)
	}

	m.mu.Lock()
	m.filters[name] = filter
	m.mu.Unlock()

	return nil
}

// RegisterFilters registers all filters or none of them
func (m *Manager) RegisterFilters(filters map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(filters))

	for name, expression := range filters {
		filter, err := m.compile(expression)
		if err != nil {
			return fmt.Errorf("failed to compile filter '%s': %w", name, err)
		}
		compiled[name] = filter
	}

	m.mu.Lock()
	maps.Copy(m.filters, compiled)
	m.mu.Unlock()

	return nil
}

func (m *Manager) compile(expression string) (CompiledFilter, error) {
	if IsShorthand(expression) {
		expression = ConvertShorthand(expression)
	}
	return m.compiler.Compile(expression)
}

// UnregisterFilter removes a filter
func (m *Manager) UnregisterFilter(name string) {
	m.mu.Lock()
	delete(m.filters, name)
	m.mu.Unlock()
}

// GetFilter returns a compiled filter by name
func (m *Manager) GetFilter(name string) (CompiledFilter, bool) {
	m.mu.RLock()
	filter, exists := m.filters[name]
	m.mu.RUnlock()
	return filter, exists
}

// ListFilters returns the registered names in sorted order
func (m *Manager) ListFilters() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.filters))
}

// EvaluateFilter evaluates a single registered filter
func (m *Manager) EvaluateFilter(ctx context.Context, name string, txs []model.Transaction) ([]model.Transaction, error) {
	filter, exists := m.GetFilter(name)
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}

	return m.evaluator.Evaluate(ctx, filter, txs)
}

// EvaluateAll evaluates all registered filters
func (m *Manager) EvaluateAll(ctx context.Context, txs []model.Transaction) (map[string][]model.Transaction, error) {
	m.mu.RLock()
	filters := maps.Clone(m.filters)
	m.mu.RUnlock()

	return m.evaluator.EvaluateBatch(ctx, filters, txs)
}

// EvaluateSelected evaluates only the named filters
func (m *Manager) EvaluateSelected(ctx context.Context, names []string, txs []model.Transaction) (map[string][]model.Transaction, error) {
	m.mu.RLock()
	filters := make(map[string]CompiledFilter, len(names))
	for _, name := range names {
		filter, exists := m.filters[name]
		if !exists {
			m.mu.RUnlock()
			return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
		}
		filters[name] = filter
	}
	m.mu.RUnlock()

	return m.evaluator.EvaluateBatch(ctx, filters, txs)
}

// Close gracefully shuts down the manager
func (m *Manager) Close(ctx context.Context) error {
	return m.evaluator.Stop(ctx)
}
