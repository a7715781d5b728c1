package parser

import (
	"encoding/json"

	"github.com/s0up4200/cardctl/model"
)

type decodeFunc func(p *Parser, raw []byte) (model.Record, error)

// nested names an optional field holding a record of a known kind
type nested struct {
	path string
	kind string
}

type entry struct {
	required []string
	nested   []nested
	decode   decodeFunc
}

func plain[T model.Record]() decodeFunc {
	return func(_ *Parser, raw []byte) (model.Record, error) {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func money(paths ...string) []nested {
	out := make([]nested, len(paths))
	for i, path := range paths {
		out[i] = nested{path: path, kind: model.KindMoney}
	}
	return out
}

func with(groups ...[]nested) []nested {
	var out []nested
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func defaultRegistry() map[string]entry {
	verification := []nested{{"verification", model.KindVerification}}
	fundingSource := entry{
		required: []string{"id", "state"},
		nested: with(
			money("balance", "amount_spendable", "amount_held"),
			[]nested{{"custodian", model.KindCustodian}},
		),
		decode: plain[model.FundingSource](),
	}

	return map[string]entry{
		model.KindMoney: {
			required: []string{"currency", "amount"},
			decode:   plain[model.Money](),
		},
		model.KindAddress: {
			required: []string{"street_one", "locality", "region", "postal_code", "country"},
			decode:   plain[model.Address](),
		},
		model.KindPhone: {
			required: []string{"country_code", "phone_number"},
			nested:   verification,
			decode:   plain[model.PhoneNumber](),
		},
		model.KindEmail: {
			required: []string{"email"},
			nested:   verification,
			decode:   plain[model.Email](),
		},
		model.KindName: {
			required: []string{"first_name", "last_name"},
			decode:   plain[model.PersonalName](),
		},
		model.KindBirthDate: {
			required: []string{"date"},
			nested:   verification,
			decode:   plain[model.BirthDate](),
		},
		model.KindIDDocument: {
			required: []string{"doc_type", "value", "country"},
			decode:   plain[model.IDDocument](),
		},
		model.KindUser: {
			required: []string{"user_id"},
			decode:   decodeUser,
		},
		model.KindList: {
			required: []string{"data"},
			decode:   decodeList,
		},
		model.KindVerification: {
			required: []string{"verification_id", "status"},
			decode:   plain[model.Verification](),
		},
		model.KindCard: {
			required: []string{"account_id", "card_network", "last_four", "state"},
			nested: with(
				money("spendable_today", "native_spendable_today", "total_balance", "native_total_balance"),
				[]nested{
					{"features", model.KindCardFeatures},
					{"funding_source", model.KindFundingSource},
				},
			),
			decode: plain[model.Card](),
		},
		model.KindCardDetails: {
			required: []string{"expiration", "pan", "cvv"},
			decode:   plain[model.CardDetails](),
		},
		model.KindCardFeatures: {
			nested: []nested{{"allowed_balance_types", model.KindAllowedBalanceType}},
			decode: plain[model.CardFeatures](),
		},
		model.KindFundingSource:      fundingSource,
		model.KindFundingSourceAlias: fundingSource,
		model.KindCustodian: {
			required: []string{"custodian_type"},
			decode:   plain[model.Custodian](),
		},
		model.KindTransaction: {
			required: []string{"id", "transaction_type", "state", "created_at"},
			nested: with(
				money("local_amount", "billing_amount", "hold_amount", "cashback_amount", "fee_amount", "native_balance"),
				[]nested{
					{"merchant", model.KindMerchant},
					{"store", model.KindStore},
					{"adjustments", model.KindTransactionAdjustment},
				},
			),
			decode: plain[model.Transaction](),
		},
		model.KindTransactionAdjustment: {
			required: []string{"id", "adjustment_type"},
			nested:   money("local_amount", "native_amount"),
			decode:   plain[model.TransactionAdjustment](),
		},
		model.KindMerchant: {
			required: []string{"name"},
			nested:   []nested{{"mcc", model.KindMCC}},
			decode:   plain[model.Merchant](),
		},
		model.KindMCC: {
			required: []string{"name"},
			decode:   plain[model.MCC](),
		},
		model.KindStore: {
			required: []string{"name"},
			nested:   []nested{{"address", model.KindAddress}},
			decode:   plain[model.Store](),
		},
		model.KindApplication: {
			required: []string{"id", "status", "workflow_object_id", "next_action"},
			decode:   decodeApplication,
		},
		model.KindWorkflowAction: {
			required: []string{"action_type"},
			decode:   decodeWorkflowAction,
		},
		model.KindGenericMessageConfig: {
			required: []string{"title", "content"},
			nested: []nested{
				{"content", model.KindContent},
				{"call_to_action", model.KindCallToAction},
			},
			decode: plain[model.GenericMessageConfiguration](),
		},
		model.KindDisclaimerConfig: {
			required: []string{"disclaimer"},
			nested:   []nested{{"disclaimer", model.KindContent}},
			decode:   plain[model.DisclaimerConfiguration](),
		},
		model.KindSelectBalanceStoreConfig: {
			required: []string{"allowed_balance_types"},
			nested:   []nested{{"allowed_balance_types", model.KindAllowedBalanceType}},
			decode:   plain[model.SelectBalanceStoreConfiguration](),
		},
		model.KindIssueCardConfig: {
			decode: plain[model.IssueCardConfiguration](),
		},
		model.KindContent: {
			required: []string{"format", "value"},
			decode:   plain[model.Content](),
		},
		model.KindCallToAction: {
			required: []string{"title"},
			decode:   plain[model.CallToAction](),
		},
		model.KindAllowedBalanceType: {
			required: []string{"balance_type"},
			decode:   plain[model.AllowedBalanceType](),
		},
		model.KindContextConfiguration: {
			required: []string{"team_configuration", "project_configuration"},
			nested: []nested{
				{"team_configuration", model.KindTeamConfiguration},
				{"project_configuration", model.KindProjectConfiguration},
			},
			decode: plain[model.ContextConfiguration](),
		},
		model.KindTeamConfiguration: {
			required: []string{"name"},
			decode:   plain[model.TeamConfiguration](),
		},
		model.KindProjectConfiguration: {
			required: []string{"name", "primary_auth_credential"},
			decode:   plain[model.ProjectConfiguration](),
		},
		model.KindCardProduct: {
			required: []string{"id", "name"},
			nested: []nested{
				{"cardholder_agreement", model.KindContent},
				{"privacy_policy", model.KindContent},
				{"terms_of_service", model.KindContent},
				{"faq", model.KindContent},
			},
			decode: plain[model.CardProduct](),
		},
		model.KindCardProductSummary: {
			required: []string{"id", "name"},
			decode:   plain[model.CardProductSummary](),
		},
		model.KindOAuthAttempt: {
			required: []string{"id", "status"},
			decode:   plain[model.OAuthAttempt](),
		},
		model.KindOAuthUserData: {
			required: []string{"user_data"},
			decode:   decodeOAuthUserData,
		},
		model.KindOffer: {
			required: []string{"offer_id", "lender"},
			nested: with(
				money("loan_amount", "payment_amount"),
				[]nested{
					{"lender", model.KindLender},
					{"disclaimer", model.KindContent},
				},
			),
			decode: plain[model.Offer](),
		},
		model.KindLender: {
			required: []string{"name"},
			decode:   plain[model.Lender](),
		},
		model.KindOfferRequest: {
			required: []string{"id"},
			decode:   plain[model.OfferRequest](),
		},
		model.KindNotificationPreferences: {
			required: []string{"preferences"},
			decode:   plain[model.NotificationPreferences](),
		},
		model.KindPhysicalCardActivation: {
			required: []string{"result"},
			decode:   plain[model.PhysicalCardActivationResult](),
		},
		model.KindMonthlySpending: {
			required: []string{"spending"},
			nested:   money("spending.#.spending"),
			decode:   plain[model.MonthlySpending](),
		},
		model.KindStatementsPeriod: {
			required: []string{"start", "end"},
			decode:   plain[model.MonthlyStatementsPeriod](),
		},
		model.KindStatementReport: {
			required: []string{"id", "month", "year"},
			decode:   plain[model.MonthlyStatementReport](),
		},
		model.KindError: {
			required: []string{"code"},
			decode:   plain[model.BackendError](),
		},
	}
}

func decodeList(p *Parser, raw []byte) (model.Record, error) {
	var aux struct {
		model.List
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return nil, err
	}

	list := aux.List
	list.Data = make([]model.Record, 0, len(aux.Data))
	for _, item := range aux.Data {
		rec, err := p.decodeAny(item)
		if err != nil {
			return nil, err
		}
		list.Data = append(list.Data, rec)
	}
	return list, nil
}

func decodeUserData(p *Parser, raw json.RawMessage) (model.List, error) {
	if isNull(raw) {
		return model.NewList(), nil
	}
	rec, err := p.decodeAs(model.KindList, raw)
	if err != nil {
		return model.List{}, err
	}
	return rec.(model.List), nil
}

func decodeUser(p *Parser, raw []byte) (model.Record, error) {
	var aux struct {
		model.User
		UserData json.RawMessage `json:"user_data"`
	}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return nil, err
	}

	user := aux.User
	data, err := decodeUserData(p, aux.UserData)
	if err != nil {
		return nil, err
	}
	user.UserData = data
	return user, nil
}

func decodeOAuthUserData(p *Parser, raw []byte) (model.Record, error) {
	var aux struct {
		model.OAuthUserData
		UserData json.RawMessage `json:"user_data"`
	}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return nil, err
	}

	out := aux.OAuthUserData
	data, err := decodeUserData(p, aux.UserData)
	if err != nil {
		return nil, err
	}
	out.UserData = data
	return out, nil
}

func decodeWorkflowAction(p *Parser, raw []byte) (model.Record, error) {
	var aux struct {
		model.WorkflowAction
		Configuration json.RawMessage `json:"configuration"`
	}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return nil, err
	}

	action := aux.WorkflowAction
	action.Configuration = nil
	if !isNull(aux.Configuration) {
		cfg, err := p.decodeAny(aux.Configuration)
		if err != nil {
			return nil, err
		}
		action.Configuration = cfg
	}
	return action, nil
}

func decodeApplication(p *Parser, raw []byte) (model.Record, error) {
	var aux struct {
		model.CardApplication
		NextAction json.RawMessage `json:"next_action"`
	}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return nil, err
	}

	app := aux.CardApplication
	rec, err := p.decodeAs(model.KindWorkflowAction, aux.NextAction)
	if err != nil {
		return nil, err
	}
	app.NextAction = rec.(model.WorkflowAction)
	return app, nil
}
