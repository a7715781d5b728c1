package store

import "github.com/s0up4200/cardctl/model"

// Outbound request bodies

type dataPointsPayload struct {
	DataPoints model.List `json:"data_points"`
}

type verificationsPayload struct {
	Verifications model.List `json:"verifications"`
}

type startVerificationPayload struct {
	DataPointType string       `json:"datapoint_type"`
	DataPoint     model.Record `json:"datapoint"`
}

type secretPayload struct {
	Secret string `json:"secret"`
}

type cardProductPayload struct {
	CardProductID string `json:"card_product_id"`
}

type balanceStorePayload struct {
	ActionID  string          `json:"action_id"`
	Custodian model.Custodian `json:"custodian"`
}

type disclaimerPayload struct {
	WorkflowObjectID string `json:"workflow_object_id"`
	ActionID         string `json:"action_id"`
}

type activationPayload struct {
	Code string `json:"code"`
}

type pinPayload struct {
	PIN string `json:"pin"`
}

type fundingSourcePayload struct {
	FundingSourceID string `json:"funding_source_id"`
}

type balanceTypePayload struct {
	BalanceType string `json:"balance_type"`
}

type custodianPayload struct {
	Custodian model.Custodian `json:"custodian"`
}
