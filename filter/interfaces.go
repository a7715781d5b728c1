package filter

import (
	"context"

	"github.com/s0up4200/cardctl/model"
)

// Filter decides whether a transaction matches
type Filter interface {
	Evaluate(tx model.Transaction) bool
}

// CompiledFilter is a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Run is Evaluate with the runtime error surfaced as *EvaluationError
	Run(tx model.Transaction) (bool, error)

	// Expression returns the source expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler is a Compiler that remembers what it compiled
type CachingCompiler interface {
	Compiler

	Clear()
	Size() int
}

// Evaluator evaluates a filter against a list of transactions
type Evaluator interface {
	Evaluate(ctx context.Context, filter CompiledFilter, txs []model.Transaction) ([]model.Transaction, error)
}

// BatchEvaluator evaluates several named filters at once
type BatchEvaluator interface {
	EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, txs []model.Transaction) (map[string][]model.Transaction, error)
}

// BatchResult is the outcome of one filter in a batch
type BatchResult struct {
	FilterName string
	Matches    []model.Transaction
	Error      error
}

// WorkerPool runs submitted work on a bounded set of goroutines
type WorkerPool interface {
	Submit(work func()) error
	Stop(ctx context.Context) error
}
