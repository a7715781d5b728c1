package store

import (
	"context"
	"fmt"
	"net/http"

	"github.com/s0up4200/cardctl/model"
	"github.com/s0up4200/cardctl/router"
)

// VerificationStore runs one-time-secret checks of data points
type VerificationStore struct {
	b *Backend
}

// NewVerificationStore creates a verification store on b
func NewVerificationStore(b *Backend) *VerificationStore {
	return &VerificationStore{b: b}
}

// StartPhone sends a secret to the phone number
func (s *VerificationStore) StartPhone(ctx context.Context, phone model.PhoneNumber) (model.Verification, error) {
	return s.start(ctx, phone)
}

// StartEmail sends a secret to the email address
func (s *VerificationStore) StartEmail(ctx context.Context, email model.Email) (model.Verification, error) {
	return s.start(ctx, email)
}

// StartBirthDate starts a birth date check, used as a second factor
func (s *VerificationStore) StartBirthDate(ctx context.Context, date model.BirthDate) (model.Verification, error) {
	return s.start(ctx, date)
}

func (s *VerificationStore) start(ctx context.Context, dp model.Record) (model.Verification, error) {
	v, err := fetch[model.Verification](ctx, s.b, http.MethodPost, router.NewRoute(router.EndpointVerificationStart),
		startVerificationPayload{DataPointType: dp.Kind(), DataPoint: dp})
	if err != nil {
		return model.Verification{}, fmt.Errorf("failed to start %s verification: %w", dp.Kind(), err)
	}

	s.b.Logger.Debug().Str("verification_id", v.VerificationID).Str("datapoint", dp.Kind()).Msg("Started verification")
	return v, nil
}

// Complete submits the secret for a verification. The returned verification
// reports whether it passed and carries the secret for use in Login.
func (s *VerificationStore) Complete(ctx context.Context, v model.Verification, secret string) (model.Verification, error) {
	if err := requireID(v.VerificationID); err != nil {
		return model.Verification{}, err
	}

	route := router.NewRoute(router.EndpointVerificationFinish, "verificationId", v.VerificationID)
	out, err := fetch[model.Verification](ctx, s.b, http.MethodPost, route, secretPayload{Secret: secret})
	if err != nil {
		return model.Verification{}, fmt.Errorf("failed to finish verification: %w", err)
	}
	if out.Secret == "" {
		out.Secret = secret
	}

	s.b.Logger.Debug().Str("verification_id", out.VerificationID).Str("status", string(out.Status)).Msg("Finished verification")
	return out, nil
}

// Restart sends a new secret for an existing verification
func (s *VerificationStore) Restart(ctx context.Context, v model.Verification) (model.Verification, error) {
	if err := requireID(v.VerificationID); err != nil {
		return model.Verification{}, err
	}

	route := router.NewRoute(router.EndpointVerificationRestart, "verificationId", v.VerificationID)
	out, err := fetch[model.Verification](ctx, s.b, http.MethodPost, route, nil)
	if err != nil {
		return model.Verification{}, fmt.Errorf("failed to restart verification: %w", err)
	}
	return out, nil
}

// Status fetches the current state of a verification
func (s *VerificationStore) Status(ctx context.Context, id string) (model.Verification, error) {
	if err := requireID(id); err != nil {
		return model.Verification{}, err
	}

	route := router.NewRoute(router.EndpointVerificationStatus, "verificationId", id)
	out, err := fetch[model.Verification](ctx, s.b, http.MethodGet, route, nil)
	if err != nil {
		return model.Verification{}, fmt.Errorf("failed to get verification status: %w", err)
	}
	return out, nil
}
