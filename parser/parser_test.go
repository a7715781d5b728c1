package parser

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/cardctl/model"
)

// samples holds one representative payload per registered kind
var samples = map[string]string{
	model.KindMoney:      `{"type":"money","currency":"USD","amount":10.5}`,
	model.KindAddress:    `{"type":"address","street_one":"1 Main St","locality":"Springfield","region":"IL","postal_code":"62701","country":"US"}`,
	model.KindPhone:      `{"type":"phone","country_code":"1","phone_number":"5555550100","verified":true,"verification":{"type":"verification","verification_id":"v1","status":"passed"}}`,
	model.KindEmail:      `{"type":"email","email":"jane@example.com"}`,
	model.KindName:       `{"type":"name","first_name":"Jane","last_name":"Doe"}`,
	model.KindBirthDate:  `{"type":"birthdate","date":"1990-02-01"}`,
	model.KindIDDocument: `{"type":"id_document","doc_type":"ssn","value":"123456789","country":"US"}`,
	model.KindUser: `{"type":"user","user_id":"u1","user_token":"tok","user_data":{"type":"list","data":[
		{"type":"name","first_name":"Jane","last_name":"Doe"},
		{"type":"phone","country_code":"1","phone_number":"5555550100"}]}}`,
	model.KindList:         `{"type":"list","page":0,"rows":2,"has_more":true,"total_count":9,"data":[{"type":"lender","name":"Acme"},{"type":"offer_request","id":"or1"}]}`,
	model.KindVerification: `{"type":"verification","verification_id":"v1","verification_type":"phone","status":"pending"}`,
	model.KindCard: `{"type":"card","account_id":"crd_1","card_network":"visa","last_four":"4242","state":"active",
		"spendable_today":{"type":"money","currency":"USD","amount":"100"},
		"features":{"type":"card_features","set_pin":true,"get_pin":false,"allowed_balance_types":[{"type":"allowed_balance_type","balance_type":"coinbase"}]},
		"funding_source":{"type":"custodian_wallet","id":"fs1","state":"valid","balance":{"currency":"BTC","amount":"0.5"},"custodian":{"custodian_type":"coinbase","name":"Coinbase"}}}`,
	model.KindCardDetails:  `{"type":"card_details","expiration":"2027-03","pan":"4111111111111111","cvv":"123"}`,
	model.KindCardFeatures: `{"type":"card_features","set_pin":true,"get_pin":true}`,
	model.KindFundingSource: `{"type":"custodian_wallet","id":"fs1","state":"invalid",
		"amount_spendable":{"currency":"USD","amount":"12.34"}}`,
	model.KindFundingSourceAlias: `{"type":"funding_source","id":"fs2","state":"valid"}`,
	model.KindCustodian:          `{"type":"custodian","custodian_type":"uphold","name":"Uphold","logo":"https://example.com/logo.png"}`,
	model.KindTransaction: `{"type":"transaction","id":"txn_1","transaction_type":"purchase","state":"complete","created_at":"2024-03-01T10:00:00Z",
		"description":"Coffee","local_amount":{"type":"money","currency":"USD","amount":"4.50"},
		"merchant":{"type":"merchant","name":"Blue Bottle","mcc":{"type":"mcc","name":"restaurants","icon":"food"}},
		"store":{"type":"store","name":"Blue Bottle SF","address":{"type":"address","street_one":"1 Market","locality":"SF","region":"CA","postal_code":"94105","country":"US"}},
		"adjustments":[{"type":"transaction_adjustment","id":"adj1","adjustment_type":"capture","exchange_rate":"1.0"}]}`,
	model.KindTransactionAdjustment: `{"type":"transaction_adjustment","id":"adj1","adjustment_type":"refund","native_amount":{"currency":"BTC","amount":"0.0001"},"exchange_rate":"45000.1"}`,
	model.KindMerchant:              `{"type":"merchant","id":"m1","name":"Blue Bottle"}`,
	model.KindMCC:                   `{"type":"mcc","name":"restaurants"}`,
	model.KindStore:                 `{"type":"store","name":"Corner shop","latitude":37.7,"longitude":-122.4}`,
	model.KindApplication: `{"type":"application","id":"app1","status":"created","workflow_object_id":"wf1",
		"next_action":{"type":"workflow_action","action_id":"a1","action_type":"show_disclaimer",
			"configuration":{"type":"disclaimer_configuration","disclaimer":{"type":"content","format":"markdown","value":"# Terms"}}}}`,
	model.KindWorkflowAction: `{"type":"workflow_action","action_type":"issue_card"}`,
	model.KindGenericMessageConfig: `{"type":"generic_message_configuration","title":"Welcome","content":{"type":"content","format":"plain_text","value":"Hi"},
		"call_to_action":{"type":"call_to_action","title":"Continue"}}`,
	model.KindDisclaimerConfig:         `{"type":"disclaimer_configuration","disclaimer":{"type":"content","format":"external_url","value":"https://example.com/terms"}}`,
	model.KindSelectBalanceStoreConfig: `{"type":"select_balance_store_configuration","allowed_balance_types":[{"type":"allowed_balance_type","balance_type":"coinbase","base_uri":"https://example.com/oauth"}]}`,
	model.KindIssueCardConfig:          `{"type":"issue_card_configuration","error_asset":"https://example.com/err.png"}`,
	model.KindContent:                  `{"type":"content","format":"plain_text","value":"hello"}`,
	model.KindCallToAction:             `{"type":"call_to_action","title":"Open","action_type":"open_url","external_url":"https://example.com"}`,
	model.KindAllowedBalanceType:       `{"type":"allowed_balance_type","balance_type":"uphold"}`,
	model.KindContextConfiguration: `{"type":"context_configuration",
		"team_configuration":{"type":"team_configuration","name":"Acme"},
		"project_configuration":{"type":"project_configuration","name":"Acme Card","primary_auth_credential":"phone","secondary_auth_credentials":["email"],"allowed_countries":["US"]}}`,
	model.KindTeamConfiguration:    `{"type":"team_configuration","name":"Acme","logo_url":"https://example.com/team.png"}`,
	model.KindProjectConfiguration: `{"type":"project_configuration","name":"Acme Card","primary_auth_credential":"email"}`,
	model.KindCardProduct: `{"type":"card_product","id":"cp1","name":"Acme Card","team_id":"t1",
		"cardholder_agreement":{"type":"content","format":"markdown","value":"agree"}}`,
	model.KindCardProductSummary: `{"type":"card_product_summary","id":"cp1","name":"Acme Card","countries":["US","GB"]}`,
	model.KindOAuthAttempt:       `{"type":"oauth_attempt","id":"oa1","status":"pending","url":"https://example.com/oauth"}`,
	model.KindOAuthUserData: `{"type":"oauth_user_data","result":"valid","user_data":{"type":"list","data":[
		{"type":"email","email":"jane@example.com"}]}}`,
	model.KindOffer: `{"type":"offer","offer_id":"of1","lender":{"type":"lender","name":"Acme Lending"},
		"loan_amount":{"type":"money","currency":"USD","amount":"1000"},"interest_rate":"7.5","apr":"8.1",
		"term":{"duration":12,"unit":"month"},"expiration_date":"2024-06-01T00:00:00Z"}`,
	model.KindLender:                  `{"type":"lender","name":"Acme Lending","small_image":"https://example.com/s.png"}`,
	model.KindOfferRequest:            `{"type":"offer_request","id":"or1","status":"pending"}`,
	model.KindNotificationPreferences: `{"type":"notification_preferences","preferences":[{"group_id":"payment_declined","title":"Declines","active_channels":{"push":true,"email":false}}]}`,
	model.KindPhysicalCardActivation:  `{"type":"activate_physical_card_result","result":"activated"}`,
	model.KindMonthlySpending: `{"type":"monthly_spending","prev_spending_exist":true,"next_spending_exist":false,
		"spending":[{"category_id":"food","spending":{"type":"money","currency":"USD","amount":"42.10"}}]}`,
	model.KindStatementsPeriod: `{"type":"monthly_statements_period","start":{"month":1,"year":2023},"end":{"month":3,"year":2024}}`,
	model.KindStatementReport:  `{"type":"monthly_statement_report","id":"st1","month":2,"year":2024,"download_url":"https://example.com/st1.pdf"}`,
	model.KindError:            `{"type":"error","code":90191,"message":"Invalid phone"}`,
}

func newTestParser() *Parser {
	return New(zerolog.Nop())
}

func TestParse_EveryKindHasASample(t *testing.T) {
	p := newTestParser()
	for _, kind := range p.Kinds() {
		assert.Contains(t, samples, kind)
	}
	assert.Len(t, p.Kinds(), len(samples))
}

func TestParse_RoundTrip(t *testing.T) {
	p := newTestParser()

	for kind, sample := range samples {
		t.Run(kind, func(t *testing.T) {
			rec, err := p.Parse([]byte(sample))
			require.NoError(t, err)

			expectedKind := kind
			if kind == model.KindFundingSourceAlias {
				expectedKind = model.KindFundingSource
			}
			assert.Equal(t, expectedKind, rec.Kind())

			encoded, err := json.Marshal(rec)
			require.NoError(t, err)

			again, err := p.Parse(encoded)
			require.NoError(t, err, string(encoded))
			assert.Equal(t, rec.Kind(), again.Kind())

			reencoded, err := json.Marshal(again)
			require.NoError(t, err)
			assert.JSONEq(t, string(encoded), string(reencoded))
		})
	}
}

func TestParse_Polymorphic(t *testing.T) {
	p := newTestParser()

	t.Run("user data points", func(t *testing.T) {
		user, err := Decode[model.User](p, []byte(samples[model.KindUser]))
		require.NoError(t, err)
		assert.Equal(t, "u1", user.UserID)
		require.Equal(t, 2, user.UserData.Len())

		name, ok := user.Name()
		require.True(t, ok)
		assert.Equal(t, "Jane Doe", name.String())

		phone, ok := user.Phone()
		require.True(t, ok)
		assert.Equal(t, "+15555550100", phone.String())

		_, ok = user.Email()
		assert.False(t, ok)
	})

	t.Run("application configuration", func(t *testing.T) {
		app, err := Decode[model.CardApplication](p, []byte(samples[model.KindApplication]))
		require.NoError(t, err)
		assert.Equal(t, model.ActionShowDisclaimer, app.NextActionType())

		cfg, ok := app.NextAction.Configuration.(model.DisclaimerConfiguration)
		require.True(t, ok)
		assert.Equal(t, model.ContentMarkdown, cfg.Disclaimer.Format)
	})

	t.Run("action without configuration", func(t *testing.T) {
		action, err := Decode[model.WorkflowAction](p, []byte(`{"type":"workflow_action","action_type":"issue_card","configuration":null}`))
		require.NoError(t, err)
		assert.Nil(t, action.Configuration)
	})

	t.Run("nested type may be omitted", func(t *testing.T) {
		app, err := Decode[model.CardApplication](p, []byte(`{"type":"application","id":"a","status":"created","workflow_object_id":"w",
			"next_action":{"action_type":"issue_card"}}`))
		require.NoError(t, err)
		assert.Equal(t, model.ActionIssueCard, app.NextActionType())
	})

	t.Run("typed list", func(t *testing.T) {
		data := `{"type":"list","data":[
			{"type":"transaction","id":"t1","transaction_type":"decline","state":"declined","created_at":"2024-03-01T10:00:00Z"},
			{"type":"transaction","id":"t2","transaction_type":"pending","state":"pending","created_at":"2024-03-02T10:00:00Z"}]}`
		txns, err := DecodeList[model.Transaction](p, []byte(data))
		require.NoError(t, err)
		require.Len(t, txns, 2)
		assert.True(t, txns[0].IsDeclined())
		assert.True(t, txns[1].IsPending())
	})

	t.Run("card values", func(t *testing.T) {
		card, err := Decode[model.Card](p, []byte(samples[model.KindCard]))
		require.NoError(t, err)
		assert.True(t, card.IsActive())
		require.NotNil(t, card.SpendableToday)
		assert.Equal(t, "100.00 USD", card.SpendableToday.String())
		require.NotNil(t, card.FundingSource)
		assert.Equal(t, model.FundingSourceValid, card.FundingSource.State)
		require.NotNil(t, card.FundingSource.Custodian)
		assert.Equal(t, "coinbase", card.FundingSource.Custodian.CustodianType)
	})
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		kind    string
		key     string
		wantErr error
	}{
		{
			name:    "malformed",
			data:    `{"type":"card",`,
			wantErr: ErrMalformed,
		},
		{
			name:    "not an object",
			data:    `[1,2]`,
			wantErr: ErrMalformed,
		},
		{
			name:    "missing type",
			data:    `{"account_id":"x"}`,
			key:     "type",
			wantErr: ErrMissingKey,
		},
		{
			name:    "unknown kind",
			data:    `{"type":"spaceship"}`,
			kind:    "spaceship",
			wantErr: ErrUnknownKind,
		},
		{
			name:    "missing mandatory key",
			data:    `{"type":"card","account_id":"x","card_network":"visa","state":"active"}`,
			kind:    model.KindCard,
			key:     "last_four",
			wantErr: ErrMissingKey,
		},
		{
			name:    "null mandatory key",
			data:    `{"type":"verification","verification_id":null,"status":"pending"}`,
			kind:    model.KindVerification,
			key:     "verification_id",
			wantErr: ErrMissingKey,
		},
		{
			name: "missing key in nested record",
			data: `{"type":"card","account_id":"x","card_network":"visa","last_four":"1","state":"active",
				"funding_source":{"type":"custodian_wallet","state":"valid"}}`,
			kind:    model.KindFundingSource,
			key:     "id",
			wantErr: ErrMissingKey,
		},
		{
			name:    "missing key in nested array",
			data:    `{"type":"monthly_spending","spending":[{"category_id":"food","spending":{"currency":"USD"}}]}`,
			kind:    model.KindMoney,
			key:     "amount",
			wantErr: ErrMissingKey,
		},
		{
			name:    "invalid list element",
			data:    `{"type":"list","data":[{"type":"lender"}]}`,
			kind:    model.KindLender,
			key:     "name",
			wantErr: ErrMissingKey,
		},
		{
			name: "wrong nested kind",
			data: `{"type":"application","id":"a","status":"created","workflow_object_id":"w",
				"next_action":{"type":"lender","name":"x"}}`,
			kind:    model.KindLender,
			wantErr: ErrUnexpectedKind,
		},
		{
			name:    "bad field value",
			data:    `{"type":"transaction","id":"t","transaction_type":"purchase","state":"complete","created_at":"yesterday"}`,
			kind:    model.KindTransaction,
			wantErr: ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := New(zerolog.New(&buf))

			rec, err := p.Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, rec)
			assert.ErrorIs(t, err, tt.wantErr)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.kind, pe.Kind)
			assert.Equal(t, tt.key, pe.Key)

			assert.Contains(t, buf.String(), `"level":"warn"`)
			assert.Contains(t, buf.String(), "Failed to parse response")
		})
	}
}

func TestDecode_UnexpectedKind(t *testing.T) {
	p := newTestParser()

	_, err := Decode[model.Card](p, []byte(samples[model.KindLender]))
	assert.ErrorIs(t, err, ErrUnexpectedKind)

	_, err = DecodeList[model.Card](p, []byte(samples[model.KindList]))
	assert.ErrorIs(t, err, ErrUnexpectedKind)

	records, err := DecodeList[model.Record](p, []byte(samples[model.KindList]))
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestParseError_Error(t *testing.T) {
	assert.Equal(t, `parse card: missing mandatory key "last_four"`,
		(&ParseError{Kind: "card", Key: "last_four", Err: ErrMissingKey}).Error())
	assert.Equal(t, "parse response: malformed JSON",
		(&ParseError{Err: ErrMalformed}).Error())
}
