package filter

import (
	"context"
	"runtime"
	"sync"

	"github.com/s0up4200/cardctl/model"
)

// DefaultBatchSize is the list length below which filters run sequentially
const DefaultBatchSize = 100

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		e.workerCount = workers
	}
}

// WithBatchSize sets the chunk size, which is also the threshold for going
// concurrent
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// ConcurrentEvaluator implements Evaluator and BatchEvaluator on a worker
// pool. Matches always come back in input order.
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
	pool        WorkerPool
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   DefaultBatchSize,
	}

	for _, opt := range opts {
		opt(e)
	}
	if e.workerCount <= 0 {
		e.workerCount = 1
	}

	e.pool = NewWorkerPool(e.workerCount)

	return e
}

// Evaluate returns the transactions matching filter
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, txs []model.Transaction) ([]model.Transaction, error) {
	if len(txs) == 0 {
		return []model.Transaction{}, nil
	}

	if len(txs) < e.batchSize {
		return evaluateSequential(filter, txs), nil
	}

	return e.evaluateConcurrent(ctx, filter, txs)
}

// EvaluateBatch runs every filter against txs. Filters that fail are left
// out of the result.
func (e *ConcurrentEvaluator) EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, txs []model.Transaction) (map[string][]model.Transaction, error) {
	results := make(map[string][]model.Transaction, len(filters))
	if len(filters) == 0 || len(txs) == 0 {
		return results, nil
	}

	resultChan := make(chan BatchResult, len(filters))

	var wg sync.WaitGroup
	for name, filter := range filters {
		wg.Add(1)

		// each filter runs sequentially inside its worker so batch jobs never
		// wait on chunks queued behind them
		err := e.pool.Submit(func() {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				resultChan <- BatchResult{FilterName: name, Error: err}
				return
			}
			resultChan <- BatchResult{
				FilterName: name,
				Matches:    evaluateSequential(filter, txs),
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for result := range resultChan {
		if result.Error != nil {
			continue
		}
		results[result.FilterName] = result.Matches
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

func evaluateSequential(filter CompiledFilter, txs []model.Transaction) []model.Transaction {
	matches := make([]model.Transaction, 0, len(txs)/4)
	for _, tx := range txs {
		if filter.Evaluate(tx) {
			matches = append(matches, tx)
		}
	}
	return matches
}

func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, txs []model.Transaction) ([]model.Transaction, error) {
	chunkSize := max(len(txs)/e.workerCount, e.batchSize)
	chunks := (len(txs) + chunkSize - 1) / chunkSize

	// one slot per chunk keeps the output in input order
	results := make([][]model.Transaction, chunks)

	var wg sync.WaitGroup
	for index := range chunks {
		start := index * chunkSize
		chunk := txs[start:min(start+chunkSize, len(txs))]

		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()

			if ctx.Err() != nil {
				return
			}
			results[index] = evaluateSequential(filter, chunk)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	matches := make([]model.Transaction, 0, total)
	for _, r := range results {
		matches = append(matches, r...)
	}

	return matches, nil
}

// Stop gracefully stops the evaluator's worker pool
func (e *ConcurrentEvaluator) Stop(ctx context.Context) error {
	return e.pool.Stop(ctx)
}
