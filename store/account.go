package store

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/s0up4200/cardctl/model"
	"github.com/s0up4200/cardctl/router"
)

// NotificationStore manages notification preferences
type NotificationStore struct {
	b     *Backend
	prefs *memo[model.NotificationPreferences]
}

// NewNotificationStore creates a notification store on b
func NewNotificationStore(b *Backend) *NotificationStore {
	return &NotificationStore{b: b, prefs: newMemo[model.NotificationPreferences](b.ttl())}
}

// Preferences returns the user's notification preferences
func (s *NotificationStore) Preferences(ctx context.Context, refresh bool) (model.NotificationPreferences, error) {
	prefs, err := s.prefs.get(ctx, "prefs", refresh, func(ctx context.Context) (model.NotificationPreferences, error) {
		return fetch[model.NotificationPreferences](ctx, s.b, http.MethodGet, router.NewRoute(router.EndpointNotificationPrefs), nil)
	})
	if err != nil {
		return model.NotificationPreferences{}, fmt.Errorf("failed to get notification preferences: %w", err)
	}
	return prefs, nil
}

// Update stores new notification preferences
func (s *NotificationStore) Update(ctx context.Context, prefs model.NotificationPreferences) (model.NotificationPreferences, error) {
	gen := s.prefs.generation()
	out, err := fetch[model.NotificationPreferences](ctx, s.b, http.MethodPut, router.NewRoute(router.EndpointNotificationPrefs), prefs)
	if err != nil {
		return model.NotificationPreferences{}, fmt.Errorf("failed to update notification preferences: %w", err)
	}
	s.prefs.set(gen, "prefs", out)
	return out, nil
}

// Invalidate forgets the cached preferences
func (s *NotificationStore) Invalidate() {
	s.prefs.clear()
}

// StatementStore serves monthly statements
type StatementStore struct {
	b      *Backend
	period *memo[model.MonthlyStatementsPeriod]
}

// NewStatementStore creates a statement store on b
func NewStatementStore(b *Backend) *StatementStore {
	return &StatementStore{b: b, period: newMemo[model.MonthlyStatementsPeriod](b.ttl())}
}

// Period returns the range of months that have statements
func (s *StatementStore) Period(ctx context.Context) (model.MonthlyStatementsPeriod, error) {
	period, err := s.period.get(ctx, "period", false, func(ctx context.Context) (model.MonthlyStatementsPeriod, error) {
		return fetch[model.MonthlyStatementsPeriod](ctx, s.b, http.MethodGet, router.NewRoute(router.EndpointStatementsPeriod), nil)
	})
	if err != nil {
		return model.MonthlyStatementsPeriod{}, fmt.Errorf("failed to get statements period: %w", err)
	}
	return period, nil
}

// Report returns the statement for a month within the period
func (s *StatementStore) Report(ctx context.Context, month, year int) (model.MonthlyStatementReport, error) {
	if month < 1 || month > 12 {
		return model.MonthlyStatementReport{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}

	period, err := s.Period(ctx)
	if err != nil {
		return model.MonthlyStatementReport{}, err
	}
	m := model.Month{Month: month, Year: year}
	if !period.Contains(m) {
		return model.MonthlyStatementReport{}, fmt.Errorf("%w: %s not in %s..%s", ErrOutOfPeriod, m, period.Start, period.End)
	}

	route := router.NewRoute(router.EndpointStatement, "month", strconv.Itoa(month), "year", strconv.Itoa(year))
	report, err := fetch[model.MonthlyStatementReport](ctx, s.b, http.MethodGet, route, nil)
	if err != nil {
		return model.MonthlyStatementReport{}, fmt.Errorf("failed to get statement %s: %w", m, err)
	}
	return report, nil
}

// Invalidate forgets the cached period
func (s *StatementStore) Invalidate() {
	s.period.clear()
}

// OfferStore requests loan offers
type OfferStore struct {
	b *Backend
}

// NewOfferStore creates an offer store on b
func NewOfferStore(b *Backend) *OfferStore {
	return &OfferStore{b: b}
}

// Request asks lenders for offers on a card product
func (s *OfferStore) Request(ctx context.Context, cardProductID string) (model.OfferRequest, error) {
	if err := requireID(cardProductID); err != nil {
		return model.OfferRequest{}, err
	}

	req, err := fetch[model.OfferRequest](ctx, s.b, http.MethodPost, router.NewRoute(router.EndpointOfferRequests),
		cardProductPayload{CardProductID: cardProductID})
	if err != nil {
		return model.OfferRequest{}, fmt.Errorf("failed to request offers: %w", err)
	}
	return req, nil
}

// Offers lists one page of the offers for a request
func (s *OfferStore) Offers(ctx context.Context, requestID string, page, rows int) ([]model.Offer, error) {
	if err := requireID(requestID); err != nil {
		return nil, err
	}
	if rows <= 0 {
		rows = DefaultRows
	}

	route := router.NewRoute(router.EndpointOffers, "offerRequestId", requestID).WithQuery(url.Values{
		"page": {strconv.Itoa(page)},
		"rows": {strconv.Itoa(rows)},
	})
	offers, err := fetchList[model.Offer](ctx, s.b, route)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return offers, nil
}
