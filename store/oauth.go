package store

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/s0up4200/cardctl/model"
	"github.com/s0up4200/cardctl/router"
)

// DefaultPollInterval is how often Wait checks an OAuth attempt
const DefaultPollInterval = 2 * time.Second

// OAuthStore connects balance stores through OAuth
type OAuthStore struct {
	b *Backend
}

// NewOAuthStore creates an OAuth store on b
func NewOAuthStore(b *Backend) *OAuthStore {
	return &OAuthStore{b: b}
}

// Start begins an OAuth attempt. The user finishes it at the returned URL.
func (s *OAuthStore) Start(ctx context.Context, balanceType string) (model.OAuthAttempt, error) {
	if err := requireID(balanceType); err != nil {
		return model.OAuthAttempt{}, err
	}

	attempt, err := fetch[model.OAuthAttempt](ctx, s.b, http.MethodPost, router.NewRoute(router.EndpointOAuth),
		balanceTypePayload{BalanceType: balanceType})
	if err != nil {
		return model.OAuthAttempt{}, fmt.Errorf("failed to start OAuth: %w", err)
	}
	return attempt, nil
}

// Attempt fetches the state of an OAuth attempt
func (s *OAuthStore) Attempt(ctx context.Context, id string) (model.OAuthAttempt, error) {
	if err := requireID(id); err != nil {
		return model.OAuthAttempt{}, err
	}

	attempt, err := fetch[model.OAuthAttempt](ctx, s.b, http.MethodGet, router.NewRoute(router.EndpointOAuthAttempt, "attemptId", id), nil)
	if err != nil {
		return model.OAuthAttempt{}, fmt.Errorf("failed to get OAuth attempt: %w", err)
	}
	return attempt, nil
}

// Wait polls an attempt until it leaves the pending state
func (s *OAuthStore) Wait(ctx context.Context, id string, interval time.Duration) (model.OAuthAttempt, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		attempt, err := s.Attempt(ctx, id)
		if err != nil {
			return model.OAuthAttempt{}, err
		}
		if attempt.Status != model.OAuthPending {
			return attempt, nil
		}

		select {
		case <-ctx.Done():
			return model.OAuthAttempt{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// UserData retrieves the user data a custodian shared through OAuth
func (s *OAuthStore) UserData(ctx context.Context, custodian model.Custodian) (model.OAuthUserData, error) {
	data, err := fetch[model.OAuthUserData](ctx, s.b, http.MethodPost, router.NewRoute(router.EndpointOAuthUserData),
		custodianPayload{Custodian: custodian})
	if err != nil {
		return model.OAuthUserData{}, fmt.Errorf("failed to retrieve OAuth user data: %w", err)
	}
	return data, nil
}
