package store

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/s0up4200/cardctl/model"
	"github.com/s0up4200/cardctl/router"
)

// DefaultRows is the page size used when a query does not set one
const DefaultRows = 20

// TransactionQuery selects a page of transactions
type TransactionQuery struct {
	Page              int
	Rows              int
	LastTransactionID string
	StartDate         time.Time
	EndDate           time.Time
	MCC               string
}

func (q TransactionQuery) rows() int {
	if q.Rows <= 0 {
		return DefaultRows
	}
	return q.Rows
}

// firstPage reports whether q asks for the unfiltered first page
func (q TransactionQuery) firstPage() bool {
	return q.Page == 0 && q.LastTransactionID == "" && q.StartDate.IsZero() && q.EndDate.IsZero() && q.MCC == ""
}

func (q TransactionQuery) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("rows", strconv.Itoa(q.rows()))
	if q.LastTransactionID != "" {
		v.Set("last_transaction_id", q.LastTransactionID)
	}
	if !q.StartDate.IsZero() {
		v.Set("start_date", q.StartDate.Format(time.DateOnly))
	}
	if !q.EndDate.IsZero() {
		v.Set("end_date", q.EndDate.Format(time.DateOnly))
	}
	if q.MCC != "" {
		v.Set("mcc", q.MCC)
	}
	return v
}

// TransactionStore pages through card transactions
type TransactionStore struct {
	b     *Backend
	first *memo[[]model.Transaction]

	mu   sync.Mutex
	keys map[string][]string
}

// NewTransactionStore creates a transaction store on b
func NewTransactionStore(b *Backend) *TransactionStore {
	return &TransactionStore{
		b:     b,
		first: newMemo[[]model.Transaction](b.ttl()),
		keys:  make(map[string][]string),
	}
}

// List returns one page of transactions. The unfiltered first page of each
// account is kept in memory.
func (s *TransactionStore) List(ctx context.Context, accountID string, q TransactionQuery) ([]model.Transaction, error) {
	if err := requireID(accountID); err != nil {
		return nil, err
	}

	if !q.firstPage() {
		txns, _, err := s.page(ctx, accountID, q)
		return txns, err
	}

	key := accountID + "/" + strconv.Itoa(q.rows())
	s.track(accountID, key)
	return s.first.get(ctx, key, false, func(ctx context.Context) ([]model.Transaction, error) {
		txns, _, err := s.page(ctx, accountID, q)
		return txns, err
	})
}

// All pages through transactions starting at q until the platform runs out
// or limit transactions were collected. A limit of zero or less means no
// limit.
func (s *TransactionStore) All(ctx context.Context, accountID string, q TransactionQuery, limit int) ([]model.Transaction, error) {
	if err := requireID(accountID); err != nil {
		return nil, err
	}

	var out []model.Transaction
	for {
		txns, list, err := s.page(ctx, accountID, q)
		if err != nil {
			return nil, err
		}
		out = append(out, txns...)

		if limit > 0 && len(out) >= limit {
			out = out[:limit]
			break
		}
		if len(txns) < q.rows() || (list.TotalCount > 0 && len(out) >= list.TotalCount) {
			break
		}

		// Cursor queries continue from the last transaction seen
		if q.LastTransactionID != "" {
			q.LastTransactionID = txns[len(txns)-1].TransactionID
		} else {
			q.Page++
		}
	}

	s.b.Logger.Debug().Str("account_id", accountID).Msgf("Retrieved %d transactions", len(out))
	return out, nil
}

func (s *TransactionStore) page(ctx context.Context, accountID string, q TransactionQuery) ([]model.Transaction, model.List, error) {
	route := router.NewRoute(router.EndpointAccountTransactions, "accountId", accountID).WithQuery(q.values())
	txns, list, err := fetchPage[model.Transaction](ctx, s.b, route)
	if err != nil {
		return nil, model.List{}, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, list, nil
}

func (s *TransactionStore) track(accountID, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.keys[accountID] {
		if k == key {
			return
		}
	}
	s.keys[accountID] = append(s.keys[accountID], key)
}

// InvalidateAccount forgets the cached first page of one account
func (s *TransactionStore) InvalidateAccount(accountID string) {
	s.mu.Lock()
	keys := s.keys[accountID]
	delete(s.keys, accountID)
	s.mu.Unlock()

	for _, k := range keys {
		s.first.delete(k)
	}
}

// Invalidate forgets every cached page
func (s *TransactionStore) Invalidate() {
	s.mu.Lock()
	s.keys = make(map[string][]string)
	s.mu.Unlock()
	s.first.clear()
}
