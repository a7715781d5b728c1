// Package model contains the platform's domain records.
//
// Every record reports its wire discriminator through Kind and marshals with
// that value injected as the "type" key, so an encoded record can be fed back
// through the response parser.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is any value the platform tags with a "type" discriminator
type Record interface {
	Kind() string
}

// Wire discriminators
const (
	KindMoney                    = "money"
	KindAddress                  = "address"
	KindPhone                    = "phone"
	KindEmail                    = "email"
	KindName                     = "name"
	KindBirthDate                = "birthdate"
	KindIDDocument               = "id_document"
	KindUser                     = "user"
	KindList                     = "list"
	KindVerification             = "verification"
	KindCard                     = "card"
	KindCardDetails              = "card_details"
	KindCardFeatures             = "card_features"
	KindFundingSource            = "custodian_wallet"
	KindFundingSourceAlias       = "funding_source"
	KindCustodian                = "custodian"
	KindTransaction              = "transaction"
	KindTransactionAdjustment    = "transaction_adjustment"
	KindMerchant                 = "merchant"
	KindMCC                      = "mcc"
	KindStore                    = "store"
	KindApplication              = "application"
	KindWorkflowAction           = "workflow_action"
	KindGenericMessageConfig     = "generic_message_configuration"
	KindDisclaimerConfig         = "disclaimer_configuration"
	KindSelectBalanceStoreConfig = "select_balance_store_configuration"
	KindIssueCardConfig          = "issue_card_configuration"
	KindContent                  = "content"
	KindCallToAction             = "call_to_action"
	KindAllowedBalanceType       = "allowed_balance_type"
	KindContextConfiguration     = "context_configuration"
	KindTeamConfiguration        = "team_configuration"
	KindProjectConfiguration     = "project_configuration"
	KindCardProduct              = "card_product"
	KindCardProductSummary       = "card_product_summary"
	KindOAuthAttempt             = "oauth_attempt"
	KindOAuthUserData            = "oauth_user_data"
	KindOffer                    = "offer"
	KindLender                   = "lender"
	KindOfferRequest             = "offer_request"
	KindNotificationPreferences  = "notification_preferences"
	KindPhysicalCardActivation   = "activate_physical_card_result"
	KindMonthlySpending          = "monthly_spending"
	KindStatementsPeriod         = "monthly_statements_period"
	KindStatementReport          = "monthly_statement_report"
	KindError                    = "error"
)

// tagged marshals v and injects kind as the leading "type" key
func tagged(kind string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(data) < 2 || data[0] != '{' {
		return nil, fmt.Errorf("%s: expected a JSON object, got %q", kind, data)
	}

	out := make([]byte, 0, len(data)+len(kind)+10)
	out = append(out, `{"type":`...)
	out = strconv.AppendQuote(out, kind)
	if len(data) > 2 {
		out = append(out, ',')
	}
	return append(out, data[1:]...), nil
}
