package store

import (
	"context"
	"fmt"
	"net/http"

	"github.com/s0up4200/cardctl/model"
	"github.com/s0up4200/cardctl/router"
)

const currentUserKey = "current"

// UserStore manages the signed-in user
type UserStore struct {
	b    *Backend
	user *memo[model.User]
}

// NewUserStore creates a user store on b
func NewUserStore(b *Backend) *UserStore {
	return &UserStore{b: b, user: newMemo[model.User](b.ttl())}
}

// CreateUser signs up a new user with the given data points. The returned
// user carries the session token in UserToken.
func (s *UserStore) CreateUser(ctx context.Context, dataPoints ...model.Record) (model.User, error) {
	gen := s.user.generation()
	user, err := fetch[model.User](ctx, s.b, http.MethodPost, router.NewRoute(router.EndpointUser),
		dataPointsPayload{DataPoints: model.NewList(dataPoints...)})
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.user.set(gen, currentUserKey, user)
	s.b.Logger.Info().Str("user_id", user.UserID).Msg("Created user")
	return user, nil
}

// Login exchanges passed verifications for a session. The returned user
// carries the session token in UserToken.
func (s *UserStore) Login(ctx context.Context, verifications ...model.Verification) (model.User, error) {
	records := make([]model.Record, len(verifications))
	for i, v := range verifications {
		if err := requireID(v.VerificationID); err != nil {
			return model.User{}, fmt.Errorf("verification %d: %w", i, err)
		}
		records[i] = v
	}

	gen := s.user.generation()
	user, err := fetch[model.User](ctx, s.b, http.MethodPost, router.NewRoute(router.EndpointUserLogin),
		verificationsPayload{Verifications: model.NewList(records...)})
	if err != nil {
		return model.User{}, fmt.Errorf("failed to log in: %w", err)
	}

	s.user.set(gen, currentUserKey, user)
	s.b.Logger.Info().Str("user_id", user.UserID).Msg("Logged in")
	return user, nil
}

// CurrentUser returns the signed-in user, from memory unless refresh is set
func (s *UserStore) CurrentUser(ctx context.Context, refresh bool) (model.User, error) {
	user, err := s.user.get(ctx, currentUserKey, refresh, func(ctx context.Context) (model.User, error) {
		return fetch[model.User](ctx, s.b, http.MethodGet, router.NewRoute(router.EndpointUserInfo), nil)
	})
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return user, nil
}

// UpdateUserData replaces the given data points on the user
func (s *UserStore) UpdateUserData(ctx context.Context, dataPoints ...model.Record) (model.User, error) {
	gen := s.user.generation()
	user, err := fetch[model.User](ctx, s.b, http.MethodPut, router.NewRoute(router.EndpointUser),
		dataPointsPayload{DataPoints: model.NewList(dataPoints...)})
	if err != nil {
		return model.User{}, fmt.Errorf("failed to update user data: %w", err)
	}

	s.user.set(gen, currentUserKey, user)
	s.b.Logger.Info().Int("data_points", len(dataPoints)).Msg("Updated user data")
	return user, nil
}

// Logout invalidates the session on the platform
func (s *UserStore) Logout(ctx context.Context) error {
	if err := s.b.exec(ctx, http.MethodPost, router.NewRoute(router.EndpointUserLogout), nil); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	s.Invalidate()
	return nil
}

// Invalidate forgets the cached user
func (s *UserStore) Invalidate() {
	s.user.clear()
}
