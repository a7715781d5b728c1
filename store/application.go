package store

import (
	"context"
	"fmt"
	"net/http"

	"github.com/s0up4200/cardctl/model"
	"github.com/s0up4200/cardctl/router"
)

// ApplicationStore drives the card application workflow
type ApplicationStore struct {
	b     *Backend
	cards *CardStore
}

// NewApplicationStore creates an application store on b. Issuing a card
// invalidates the cards held by cards, which may be nil.
func NewApplicationStore(b *Backend, cards *CardStore) *ApplicationStore {
	return &ApplicationStore{b: b, cards: cards}
}

// Apply starts an application for a card product
func (s *ApplicationStore) Apply(ctx context.Context, cardProductID string) (model.CardApplication, error) {
	if err := requireID(cardProductID); err != nil {
		return model.CardApplication{}, err
	}

	app, err := fetch[model.CardApplication](ctx, s.b, http.MethodPost, router.NewRoute(router.EndpointApplicationCreate),
		cardProductPayload{CardProductID: cardProductID})
	if err != nil {
		return model.CardApplication{}, fmt.Errorf("failed to apply for card: %w", err)
	}

	s.b.Logger.Info().
		Str("application_id", app.ID).
		Str("next_action", string(app.NextActionType())).
		Msg("Created card application")
	return app, nil
}

// Status fetches the application and the step it waits on
func (s *ApplicationStore) Status(ctx context.Context, id string) (model.CardApplication, error) {
	if err := requireID(id); err != nil {
		return model.CardApplication{}, err
	}

	route := router.NewRoute(router.EndpointApplicationStatus, "applicationId", id)
	app, err := fetch[model.CardApplication](ctx, s.b, http.MethodGet, route, nil)
	if err != nil {
		return model.CardApplication{}, fmt.Errorf("failed to get application status: %w", err)
	}
	return app, nil
}

// SetBalanceStore completes a select_balance_store step
func (s *ApplicationStore) SetBalanceStore(ctx context.Context, appID, actionID string, custodian model.Custodian) (model.CardApplication, error) {
	if err := requireID(appID, actionID); err != nil {
		return model.CardApplication{}, err
	}

	route := router.NewRoute(router.EndpointApplicationBalanceStore, "applicationId", appID)
	app, err := fetch[model.CardApplication](ctx, s.b, http.MethodPost, route,
		balanceStorePayload{ActionID: actionID, Custodian: custodian})
	if err != nil {
		return model.CardApplication{}, fmt.Errorf("failed to set balance store: %w", err)
	}
	return app, nil
}

// AcceptDisclaimer completes a show_disclaimer step
func (s *ApplicationStore) AcceptDisclaimer(ctx context.Context, workflowObjectID, actionID string) error {
	if err := requireID(workflowObjectID, actionID); err != nil {
		return err
	}

	err := s.b.exec(ctx, http.MethodPost, router.NewRoute(router.EndpointDisclaimerAccept),
		disclaimerPayload{WorkflowObjectID: workflowObjectID, ActionID: actionID})
	if err != nil {
		return fmt.Errorf("failed to accept disclaimer: %w", err)
	}
	return nil
}

// IssueCard completes an issue_card step and returns the new card
func (s *ApplicationStore) IssueCard(ctx context.Context, appID string) (model.Card, error) {
	if err := requireID(appID); err != nil {
		return model.Card{}, err
	}

	route := router.NewRoute(router.EndpointApplicationIssueCard, "applicationId", appID)
	card, err := fetch[model.Card](ctx, s.b, http.MethodPost, route, nil)
	if err != nil {
		return model.Card{}, fmt.Errorf("failed to issue card: %w", err)
	}

	if s.cards != nil {
		s.cards.Invalidate()
	}
	s.b.Logger.Info().Str("account_id", card.AccountID).Msg("Successfully issued card")
	return card, nil
}
