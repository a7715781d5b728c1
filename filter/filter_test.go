package filter

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/cardctl/model"
)

func money(amount float64, currency string) *model.Money {
	m := model.NewMoney(amount, currency)
	return &m
}

func testTransaction() model.Transaction {
	return model.Transaction{
		TransactionID:   "txn_1",
		TransactionType: model.TransactionPurchase,
		State:           model.TransactionStateComplete,
		CreatedAt:       time.Now().AddDate(0, 0, -3),
		Description:     "Shell station 42",
		BillingAmount:   money(42.5, "USD"),
		LocalAmount:     money(39.9, "EUR"),
		Merchant: &model.Merchant{
			Name: "Shell",
			MCC:  &model.MCC{Name: "gas"},
		},
		International: true,
	}
}

// generateTransactions mirrors a mixed statement: every fourth is a Shell
// purchase and every tenth is declined
func generateTransactions(count int) []model.Transaction {
	merchants := []string{"Shell", "Amazon", "Blue Bottle", "Whole Foods"}
	txs := make([]model.Transaction, count)
	for i := range count {
		tx := model.Transaction{
			TransactionID:   fmt.Sprintf("txn_%04d", i),
			TransactionType: model.TransactionPurchase,
			State:           model.TransactionStateComplete,
			CreatedAt:       time.Now().Add(-time.Duration(i) * time.Hour),
			BillingAmount:   money(float64(i%100), "USD"),
			Merchant:        &model.Merchant{Name: merchants[i%len(merchants)]},
		}
		if i%10 == 9 {
			tx.State = model.TransactionStateDeclined
		}
		txs[i] = tx
	}
	return txs
}

func TestFilterEvaluation(t *testing.T) {
	tx := testTransaction()

	tests := []struct {
		name       string
		expression string
		expected   bool
	}{
		{name: "merchant substring", expression: `merchant("shel")`, expected: true},
		{name: "merchant mismatch", expression: `merchant("amazon")`, expected: false},
		{name: "category", expression: `mcc("GAS")`, expected: true},
		{name: "category variable", expression: `Category == "gas"`, expected: true},
		{name: "billing amount", expression: `Amount > 40 and Currency == "USD"`, expected: true},
		{name: "amount helpers", expression: `amountAbove(40) and amountBelow(50)`, expected: true},
		{name: "not declined", expression: `not declined()`, expected: true},
		{name: "pending", expression: `pending()`, expected: false},
		{name: "state", expression: `State == "complete" and Type == "purchase"`, expected: true},
		{name: "recent", expression: `CreatedAt > daysAgo(7)`, expected: true},
		{name: "older than a week", expression: `CreatedAt < daysAgo(7)`, expected: false},
		{name: "since date", expression: `since("2000-01-01")`, expected: true},
		{name: "since bad date", expression: `since("soon")`, expected: false},
		{name: "prefix helper", expression: `hasPrefix(Description, "shell")`, expected: true},
		{name: "suffix helper", expression: `hasSuffix(Description, "STATION 42")`, expected: true},
		{name: "contains helper", expression: `containsFold(Description, "Station")`, expected: true},
		{name: "startsWith operator", expression: `Description startsWith "Shell"`, expected: true},
		{name: "startsWith operator is case sensitive", expression: `Description startsWith "shell"`, expected: false},
		{name: "contains operator", expression: `Description contains "station"`, expected: true},
		{name: "flags", expression: `International and not Ecommerce`, expected: true},
		{name: "whole record", expression: `Transaction.Merchant.Name == "Shell"`, expected: true},
		{name: "complex", expression: `(merchant("shell") or mcc("grocery")) and Amount >= 42.5 and daysSince(CreatedAt) < 5`, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := CompileFilter(tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f.Evaluate(tx), tt.expression)
		})
	}
}

func TestFilterEvaluation_FallsBackToLocalAmount(t *testing.T) {
	tx := testTransaction()
	tx.BillingAmount = nil

	f, err := CompileFilter(`Amount < 40 and Currency == "EUR"`)
	require.NoError(t, err)
	assert.True(t, f.Evaluate(tx))

	tx.LocalAmount = nil
	assert.False(t, f.Evaluate(tx))
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name       string
		expression string
	}{
		{name: "empty", expression: "   "},
		{name: "syntax", expression: `Amount >`},
		{name: "unknown variable", expression: `Rating > 3`},
		{name: "not boolean", expression: `Amount + 1`},
		{name: "wrong argument type", expression: `merchant(12)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileFilter(tt.expression)
			require.Error(t, err)
			var cerr *CompilationError
			require.ErrorAs(t, err, &cerr)
			assert.NotEmpty(t, cerr.Reason)
		})
	}
}

func TestRunReportsEvaluationError(t *testing.T) {
	c := NewExprCompiler(WithCustomFunctions(map[string]any{
		"flaky": func() (bool, error) { return false, errors.New("boom") },
	}))

	f, err := c.Compile(`flaky()`)
	require.NoError(t, err)

	_, err = f.Run(testTransaction())
	var eerr *EvaluationError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, "txn_1", eerr.TransactionID)
	assert.False(t, f.Evaluate(testTransaction()))
}

func TestCompilerCache(t *testing.T) {
	c := NewExprCompiler(WithCache(2))

	first, err := c.Compile(`declined()`)
	require.NoError(t, err)
	again, err := c.Compile(`  declined()  `)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, c.Size())

	_, err = c.Compile(`pending()`)
	require.NoError(t, err)
	_, err = c.Compile(`Amount > 1`)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Size())

	// declined() was the least recently used entry
	evicted, err := c.Compile(`declined()`)
	require.NoError(t, err)
	assert.NotSame(t, first, evicted)

	c.Clear()
	assert.Zero(t, c.Size())
	assert.Zero(t, NewExprCompiler().Size())
}

func TestConcurrentEvaluation(t *testing.T) {
	txs := generateTransactions(1000)

	f, err := CompileFilter(`merchant("shell") and not declined()`)
	require.NoError(t, err)

	e := NewConcurrentEvaluator(WithWorkers(4), WithBatchSize(50))
	defer e.Stop(context.Background())

	matches, err := e.Evaluate(context.Background(), f, txs)
	require.NoError(t, err)

	expected := evaluateSequential(f, txs)
	require.Len(t, matches, len(expected))
	assert.Equal(t, expected, matches, "order must match input order")
	for _, tx := range matches {
		assert.Equal(t, "Shell", tx.Merchant.Name)
		assert.False(t, tx.IsDeclined())
	}
}

func TestConcurrentEvaluation_Canceled(t *testing.T) {
	f, err := CompileFilter(`true`)
	require.NoError(t, err)

	e := NewConcurrentEvaluator(WithWorkers(2), WithBatchSize(10))
	defer e.Stop(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.Evaluate(ctx, f, generateTransactions(100))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluatorStopped(t *testing.T) {
	f, err := CompileFilter(`true`)
	require.NoError(t, err)

	e := NewConcurrentEvaluator(WithWorkers(2), WithBatchSize(10))
	require.NoError(t, e.Stop(context.Background()))
	require.NoError(t, e.Stop(context.Background()))

	_, err = e.Evaluate(context.Background(), f, generateTransactions(100))
	assert.ErrorIs(t, err, ErrPoolStopped)

	// short lists never touch the pool
	matches, err := e.Evaluate(context.Background(), f, generateTransactions(5))
	require.NoError(t, err)
	assert.Len(t, matches, 5)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		filter   string
		expected int
	}{
		{name: "short list", count: 40, filter: `declined()`, expected: 4},
		{name: "long list", count: 1000, filter: `declined()`, expected: 100},
		{name: "shorthand", count: 400, filter: `merchant:"shell" AND declined:false`, expected: 100},
		{name: "no matches", count: 200, filter: `merchant("nowhere")`, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := generateTransactions(tt.count)
			matches, err := Apply(context.Background(), tt.filter, txs)
			require.NoError(t, err)
			assert.Len(t, matches, tt.expected)
			for i := 1; i < len(matches); i++ {
				assert.Less(t, matches[i-1].TransactionID, matches[i].TransactionID)
			}
		})
	}

	_, err := Apply(context.Background(), `Amount >`, nil)
	var cerr *CompilationError
	assert.ErrorAs(t, err, &cerr)
}

func TestConvertShorthand(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`merchant:"Shell"`, `merchant("Shell")`},
		{`merchant!:"Shell"`, `not merchant("Shell")`},
		{`mcc:"gas" OR mcc:"grocery"`, `mcc("gas") or mcc("grocery")`},
		{`state:pending AND type:purchase`, `State == "pending" and Type == "purchase"`},
		{`amount:>=12.50`, `Amount >= 12.50`},
		{`before:"2024-01-31"`, `CreatedAt < parseDate("2024-01-31")`},
		{`after:"2024-01-01"`, `since("2024-01-01")`},
		{`declined:true`, `declined()`},
		{`NOT pending:false`, `not not pending()`},
		{`  `, ``},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConvertShorthand(tt.input))
		})
	}
}

func TestIsShorthand(t *testing.T) {
	assert.True(t, IsShorthand(`merchant:"x"`))
	assert.True(t, IsShorthand(`amount:>5`))
	assert.False(t, IsShorthand(`merchant("x") and Amount > 5`))
	assert.False(t, IsShorthand(`declined() ? true : false`))
}

func TestManager(t *testing.T) {
	m := NewManager(WithEvaluator(NewConcurrentEvaluator(WithWorkers(2))))
	defer m.Close(context.Background())

	require.NoError(t, m.RegisterFilters(map[string]string{
		"declined": `declined()`,
		"fuel":     `mcc:"gas" OR merchant:"shell"`,
	}))
	require.NoError(t, m.RegisterFilter("big", `Amount >= 90`))
	assert.Equal(t, []string{"big", "declined", "fuel"}, m.ListFilters())

	err := m.RegisterFilters(map[string]string{"ok": `true`, "broken": `Amount >`})
	var cerr *CompilationError
	require.ErrorAs(t, err, &cerr)
	_, registered := m.GetFilter("ok")
	assert.False(t, registered, "a failed batch registers nothing")

	txs := generateTransactions(200)
	ctx := context.Background()

	declined, err := m.EvaluateFilter(ctx, "declined", txs)
	require.NoError(t, err)
	assert.Len(t, declined, 20)

	_, err = m.EvaluateFilter(ctx, "missing", txs)
	assert.ErrorIs(t, err, ErrUnknownPreset)

	all, err := m.EvaluateAll(ctx, txs)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Len(t, all["fuel"], 50)
	assert.Len(t, all["big"], 20)

	selected, err := m.EvaluateSelected(ctx, []string{"fuel"}, txs)
	require.NoError(t, err)
	assert.Len(t, selected, 1)

	_, err = m.EvaluateSelected(ctx, []string{"fuel", "missing"}, txs)
	assert.ErrorIs(t, err, ErrUnknownPreset)

	m.UnregisterFilter("big")
	assert.Equal(t, []string{"declined", "fuel"}, m.ListFilters())
}
