package store

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/cardctl/model"
	"github.com/s0up4200/cardctl/router"
)

const cardsEntry = "cards"

// CardStore manages the user's cards and their funding
type CardStore struct {
	b     *Backend
	cards *memo[[]model.Card]
	now   func() time.Time
}

// NewCardStore creates a card store on b
func NewCardStore(b *Backend) *CardStore {
	return &CardStore{
		b:     b,
		cards: newMemo[[]model.Card](b.ttl()),
		now:   time.Now,
	}
}

// CardOverview combines a card with its funding source and this month's
// spending
type CardOverview struct {
	Card          model.Card
	FundingSource model.FundingSource
	Spending      model.MonthlySpending
}

// Cards lists the user's cards. Without refresh they are served from memory,
// then from the file cache.
func (s *CardStore) Cards(ctx context.Context, refresh bool) ([]model.Card, error) {
	cards, err := s.cards.get(ctx, cardsEntry, refresh, func(ctx context.Context) ([]model.Card, error) {
		scope := s.b.cacheScope()
		var cached []model.Card
		if !refresh && s.b.loadCached(cardsEntry, &cached) {
			return cached, nil
		}

		cards, err := fetchList[model.Card](ctx, s.b, router.NewRoute(router.EndpointAccounts))
		if err != nil {
			return nil, err
		}
		s.b.storeCached(scope, cardsEntry, cards)
		return cards, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	s.b.Logger.Debug().Msgf("Retrieved %d cards", len(cards))
	return cards, nil
}

// Card fetches one card
func (s *CardStore) Card(ctx context.Context, id string) (model.Card, error) {
	if err := requireID(id); err != nil {
		return model.Card{}, err
	}

	card, err := fetch[model.Card](ctx, s.b, http.MethodGet, router.NewRoute(router.EndpointAccount, "accountId", id), nil)
	if err != nil {
		return model.Card{}, fmt.Errorf("failed to get card %s: %w", id, err)
	}
	return card, nil
}

// Details fetches the card's PAN, CVV and expiration. They are never cached.
func (s *CardStore) Details(ctx context.Context, id string) (model.CardDetails, error) {
	if err := requireID(id); err != nil {
		return model.CardDetails{}, err
	}

	details, err := fetch[model.CardDetails](ctx, s.b, http.MethodGet,
		router.NewRoute(router.EndpointAccountDetails, "accountId", id), nil)
	if err != nil {
		return model.CardDetails{}, fmt.Errorf("failed to get card details: %w", err)
	}
	return details, nil
}

// Lock disables the card
func (s *CardStore) Lock(ctx context.Context, id string) (model.Card, error) {
	return s.setState(ctx, id, router.EndpointAccountDisable, "lock")
}

// Unlock enables the card
func (s *CardStore) Unlock(ctx context.Context, id string) (model.Card, error) {
	return s.setState(ctx, id, router.EndpointAccountEnable, "unlock")
}

func (s *CardStore) setState(ctx context.Context, id string, endpoint router.Endpoint, action string) (model.Card, error) {
	if err := requireID(id); err != nil {
		return model.Card{}, err
	}

	card, err := fetch[model.Card](ctx, s.b, http.MethodPost, router.NewRoute(endpoint, "accountId", id), nil)
	if err != nil {
		return model.Card{}, fmt.Errorf("failed to %s card %s: %w", action, id, err)
	}

	s.Invalidate()
	s.b.Logger.Info().Str("account_id", id).Str("state", string(card.State)).Msgf("Successfully %sed card", action)
	return card, nil
}

// ActivatePhysical activates a physical card with the code printed on it
func (s *CardStore) ActivatePhysical(ctx context.Context, id, code string) (model.PhysicalCardActivationResult, error) {
	if err := requireID(id, code); err != nil {
		return model.PhysicalCardActivationResult{}, err
	}

	route := router.NewRoute(router.EndpointAccountActivatePhysical, "accountId", id)
	result, err := fetch[model.PhysicalCardActivationResult](ctx, s.b, http.MethodPost, route, activationPayload{Code: code})
	if err != nil {
		return model.PhysicalCardActivationResult{}, fmt.Errorf("failed to activate physical card: %w", err)
	}

	if result.Activated() {
		s.Invalidate()
	}
	return result, nil
}

// SetPIN changes the card's PIN
func (s *CardStore) SetPIN(ctx context.Context, id, pin string) (model.Card, error) {
	if err := requireID(id); err != nil {
		return model.Card{}, err
	}
	if !validPIN(pin) {
		return model.Card{}, ErrInvalidPIN
	}

	route := router.NewRoute(router.EndpointAccountPIN, "accountId", id)
	card, err := fetch[model.Card](ctx, s.b, http.MethodPost, route, pinPayload{PIN: pin})
	if err != nil {
		return model.Card{}, fmt.Errorf("failed to set PIN: %w", err)
	}
	return card, nil
}

func validPIN(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FundingSource returns the balance currently backing the card
func (s *CardStore) FundingSource(ctx context.Context, id string) (model.FundingSource, error) {
	if err := requireID(id); err != nil {
		return model.FundingSource{}, err
	}

	route := router.NewRoute(router.EndpointAccountFundingSource, "accountId", id)
	fs, err := fetch[model.FundingSource](ctx, s.b, http.MethodGet, route, nil)
	if err != nil {
		return model.FundingSource{}, fmt.Errorf("failed to get funding source: %w", err)
	}
	return fs, nil
}

// FundingSources lists the balances that can back the card
func (s *CardStore) FundingSources(ctx context.Context, id string) ([]model.FundingSource, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	sources, err := fetchList[model.FundingSource](ctx, s.b, router.NewRoute(router.EndpointAccountFundingSources, "accountId", id))
	if err != nil {
		return nil, fmt.Errorf("failed to list funding sources: %w", err)
	}
	return sources, nil
}

// SetFundingSource switches the balance backing the card
func (s *CardStore) SetFundingSource(ctx context.Context, id, fundingSourceID string) (model.FundingSource, error) {
	if err := requireID(id, fundingSourceID); err != nil {
		return model.FundingSource{}, err
	}

	route := router.NewRoute(router.EndpointAccountFundingSource, "accountId", id)
	fs, err := fetch[model.FundingSource](ctx, s.b, http.MethodPut, route, fundingSourcePayload{FundingSourceID: fundingSourceID})
	if err != nil {
		return model.FundingSource{}, fmt.Errorf("failed to set funding source: %w", err)
	}

	s.Invalidate()
	s.b.Logger.Info().Str("account_id", id).Str("funding_source_id", fs.ID).Msg("Successfully changed funding source")
	return fs, nil
}

// MonthlySpending returns the card's spending by category for a month
func (s *CardStore) MonthlySpending(ctx context.Context, id string, month time.Month, year int) (model.MonthlySpending, error) {
	if err := requireID(id); err != nil {
		return model.MonthlySpending{}, err
	}
	if month < time.January || month > time.December {
		return model.MonthlySpending{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}

	route := router.NewRoute(router.EndpointAccountMonthlySpending, "accountId", id).WithQuery(url.Values{
		"month": {strconv.Itoa(int(month))},
		"year":  {strconv.Itoa(year)},
	})
	spending, err := fetch[model.MonthlySpending](ctx, s.b, http.MethodGet, route, nil)
	if err != nil {
		return model.MonthlySpending{}, fmt.Errorf("failed to get monthly spending: %w", err)
	}
	return spending, nil
}

// Overview fetches the card, its funding source and this month's spending
// concurrently
func (s *CardStore) Overview(ctx context.Context, id string) (CardOverview, error) {
	if err := requireID(id); err != nil {
		return CardOverview{}, err
	}

	var out CardOverview
	now := s.now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(3)

	g.Go(func() error {
		card, err := s.Card(ctx, id)
		out.Card = card
		return err
	})
	g.Go(func() error {
		fs, err := s.FundingSource(ctx, id)
		out.FundingSource = fs
		return err
	})
	g.Go(func() error {
		spending, err := s.MonthlySpending(ctx, id, now.Month(), now.Year())
		out.Spending = spending
		return err
	})

	if err := g.Wait(); err != nil {
		return CardOverview{}, err
	}
	return out, nil
}

// Invalidate forgets cached cards in memory and on disk
func (s *CardStore) Invalidate() {
	s.cards.clear()
	s.b.dropCached(cardsEntry)
}
