package filter

import (
	"errors"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/file"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/cardctl/model"
)

const dateLayout = "2006-01-02"

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	custom     map[string]any
	envPool    *sync.Pool
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache keeps up to size compiled filters
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newProgramCache(size)
		}
	}
}

// WithCustomFunctions adds helper functions available to every expression
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.custom, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		custom: make(map[string]any),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.compileEnv = newEnvironment(model.Transaction{}, c.custom)
	c.envPool = &sync.Pool{
		New: func() any {
			return make(map[string]any, len(c.compileEnv))
		},
	}

	return c
}

type exprCompiler struct {
	custom     map[string]any
	compileEnv map[string]any
	cache      *programCache
	envPool    *sync.Pool
}

// Compile compiles an expression into an executable filter. Unknown
// identifiers and non-boolean expressions are rejected here rather than
// at evaluation time.
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
			Position:   -1,
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(c.compileEnv),
		expr.AsBool(),
	)
	if err != nil {
		cerr := &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Position:   -1,
			Err:        err,
		}
		var ferr *file.Error
		if errors.As(err, &ferr) {
			cerr.Reason = ferr.Message
			cerr.Position = ferr.Column
		}
		return nil, cerr
	}

	f := &exprFilter{
		expression: expression,
		program:    program,
		custom:     c.custom,
		envPool:    c.envPool,
	}

	if c.cache != nil {
		c.cache.Put(expression, f)
	}

	return f, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Len()
	}
	return 0
}

// Evaluate reports whether tx matches. A runtime error counts as no match.
func (f *exprFilter) Evaluate(tx model.Transaction) bool {
	ok, err := f.Run(tx)
	return err == nil && ok
}

func (f *exprFilter) Run(tx model.Transaction) (bool, error) {
	env := f.envPool.Get().(map[string]any)
	defer func() {
		clear(env)
		f.envPool.Put(env)
	}()
	fillEnvironment(env, tx)
	maps.Copy(env, f.custom)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{
			Expression:    f.expression,
			TransactionID: tx.TransactionID,
			Err:           err,
		}
	}

	// AsBool guarantees the type
	return result.(bool), nil
}

func (f *exprFilter) Expression() string {
	return f.expression
}

// newEnvironment builds the environment used to type-check expressions
func newEnvironment(tx model.Transaction, custom map[string]any) map[string]any {
	env := make(map[string]any, 48)
	fillEnvironment(env, tx)
	maps.Copy(env, custom)
	return env
}

func fillEnvironment(env map[string]any, tx model.Transaction) {
	addHelperFunctions(env)

	amount, currency := billing(tx)

	env["Transaction"] = tx
	env["ID"] = tx.TransactionID
	env["Description"] = tx.Description
	env["State"] = string(tx.State)
	env["Type"] = string(tx.TransactionType)
	env["Amount"] = amount
	env["Currency"] = currency
	env["CreatedAt"] = tx.CreatedAt
	env["Merchant"] = tx.MerchantName()
	env["Category"] = category(tx)
	env["International"] = tx.International
	env["Ecommerce"] = tx.Ecommerce
	env["CardPresent"] = tx.CardPresent

	env["merchant"] = func(name string) bool {
		return strings.Contains(strings.ToLower(tx.MerchantName()), strings.ToLower(name))
	}
	env["mcc"] = func(name string) bool {
		return strings.EqualFold(category(tx), name)
	}
	env["declined"] = tx.IsDeclined
	env["pending"] = tx.IsPending
	env["amountAbove"] = func(n float64) bool {
		return amount > n
	}
	env["amountBelow"] = func(n float64) bool {
		return amount < n
	}
	env["since"] = func(date string) bool {
		t, err := time.Parse(dateLayout, date)
		if err != nil {
			return false
		}
		return !tx.CreatedAt.Before(t)
	}
}

// billing returns the amount charged to the card, falling back to the
// local amount when the platform omits it
func billing(tx model.Transaction) (float64, string) {
	m := tx.BillingAmount
	if m == nil {
		m = tx.LocalAmount
	}
	if m == nil {
		return 0, ""
	}
	return m.Float(), m.Currency
}

func category(tx model.Transaction) string {
	if tx.Merchant != nil && tx.Merchant.MCC != nil {
		return tx.Merchant.MCC.Name
	}
	return ""
}

func addHelperFunctions(env map[string]any) {
	// Date helpers
	env["daysSince"] = func(t time.Time) int {
		return int(time.Since(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["monthsAgo"] = func(months int) time.Time {
		return time.Now().AddDate(0, -months, 0)
	}
	env["yearsAgo"] = func(years int) time.Time {
		return time.Now().AddDate(-years, 0, 0)
	}
	env["parseDate"] = func(s string) time.Time {
		t, _ := time.Parse(dateLayout, s)
		return t
	}
	// String helpers, case-insensitive. The case-sensitive forms are the
	// contains, startsWith and endsWith operators.
	env["containsFold"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["hasPrefix"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["hasSuffix"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	env["now"] = time.Now
}
