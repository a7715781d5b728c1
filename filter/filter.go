// Package filter selects transactions with expr expressions.
//
// Expressions see the transaction through variables such as Amount,
// Merchant and CreatedAt, and through helpers like merchant("shell"),
// declined() and daysAgo(30):
//
//	merchant("amazon") and Amount > 50 and CreatedAt > daysAgo(30)
package filter

import (
	"context"

	"github.com/s0up4200/cardctl/model"
)

var defaultCompiler = NewExprCompiler(WithCache(128))

// CompileFilter compiles expression with the shared caching compiler.
// Shorthand syntax is converted first.
func CompileFilter(expression string) (CompiledFilter, error) {
	if IsShorthand(expression) {
		expression = ConvertShorthand(expression)
	}
	return defaultCompiler.Compile(expression)
}

// Apply compiles expression and returns the matching transactions in their
// original order. Lists of DefaultBatchSize or more are evaluated
// concurrently.
func Apply(ctx context.Context, expression string, txs []model.Transaction) ([]model.Transaction, error) {
	f, err := CompileFilter(expression)
	if err != nil {
		return nil, err
	}
	if len(txs) < DefaultBatchSize {
		return evaluateSequential(f, txs), nil
	}

	e := NewConcurrentEvaluator()
	defer e.Stop(context.Background())

	return e.Evaluate(ctx, f, txs)
}
