package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a card transaction
type TransactionType string

const (
	TransactionPurchase   TransactionType = "purchase"
	TransactionPending    TransactionType = "pending"
	TransactionDecline    TransactionType = "decline"
	TransactionRefund     TransactionType = "refund"
	TransactionReversal   TransactionType = "reversal"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionCredit     TransactionType = "credit"
	TransactionOther      TransactionType = "other"
)

// TransactionState is the settlement state of a transaction
type TransactionState string

const (
	TransactionStatePending  TransactionState = "pending"
	TransactionStateComplete TransactionState = "complete"
	TransactionStateDeclined TransactionState = "declined"
)

// Transaction is a single card movement
type Transaction struct {
	TransactionID      string                  `json:"id"`
	TransactionType    TransactionType         `json:"transaction_type"`
	State              TransactionState        `json:"state"`
	CreatedAt          time.Time               `json:"created_at"`
	Description        string                  `json:"description,omitempty"`
	LocalAmount        *Money                  `json:"local_amount,omitempty"`
	BillingAmount      *Money                  `json:"billing_amount,omitempty"`
	HoldAmount         *Money                  `json:"hold_amount,omitempty"`
	CashbackAmount     *Money                  `json:"cashback_amount,omitempty"`
	FeeAmount          *Money                  `json:"fee_amount,omitempty"`
	NativeBalance      *Money                  `json:"native_balance,omitempty"`
	Merchant           *Merchant               `json:"merchant,omitempty"`
	Store              *Store                  `json:"store,omitempty"`
	Adjustments        []TransactionAdjustment `json:"adjustments,omitempty"`
	DeclineCode        string                  `json:"decline_code,omitempty"`
	DeclineReason      string                  `json:"decline_reason,omitempty"`
	SettlementDate     *time.Time              `json:"settlement_date,omitempty"`
	FundingSourceName  string                  `json:"funding_source_name,omitempty"`
	CardPresent        bool                    `json:"card_present,omitempty"`
	Ecommerce          bool                    `json:"ecommerce,omitempty"`
	International      bool                    `json:"international,omitempty"`
	ExternalID         string                  `json:"external_id,omitempty"`
	TransactionClass   string                  `json:"transaction_class,omitempty"`
	ATMWithdrawal      bool                    `json:"atm_withdrawal,omitempty"`
}

func (Transaction) Kind() string { return KindTransaction }

func (t Transaction) MarshalJSON() ([]byte, error) {
	type plain Transaction
	return tagged(KindTransaction, plain(t))
}

// IsDeclined reports whether the transaction was declined
func (t Transaction) IsDeclined() bool {
	return t.TransactionType == TransactionDecline || t.State == TransactionStateDeclined
}

// IsPending reports whether the transaction has not settled yet
func (t Transaction) IsPending() bool {
	return t.TransactionType == TransactionPending || t.State == TransactionStatePending
}

// MerchantName returns the merchant name, falling back to the description
func (t Transaction) MerchantName() string {
	if t.Merchant != nil && t.Merchant.Name != "" {
		return t.Merchant.Name
	}
	if t.Store != nil && t.Store.Name != "" {
		return t.Store.Name
	}
	return t.Description
}

// TransactionAdjustment is a conversion or fee applied to a transaction
type TransactionAdjustment struct {
	ID                    string          `json:"id"`
	AdjustmentType        string          `json:"adjustment_type"`
	CreatedAt             *time.Time      `json:"created_at,omitempty"`
	LocalAmount           *Money          `json:"local_amount,omitempty"`
	NativeAmount          *Money          `json:"native_amount,omitempty"`
	ExchangeRate          decimal.Decimal `json:"exchange_rate"`
	FundingSourceName     string          `json:"funding_source_name,omitempty"`
	ExternalTransactionID string          `json:"external_id,omitempty"`
}

func (TransactionAdjustment) Kind() string { return KindTransactionAdjustment }

func (a TransactionAdjustment) MarshalJSON() ([]byte, error) {
	type plain TransactionAdjustment
	return tagged(KindTransactionAdjustment, plain(a))
}

// Merchant is where a transaction happened
type Merchant struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	MCC  *MCC   `json:"mcc,omitempty"`
}

func (Merchant) Kind() string { return KindMerchant }

func (m Merchant) MarshalJSON() ([]byte, error) {
	type plain Merchant
	return tagged(KindMerchant, plain(m))
}

// MCC is a merchant category
type MCC struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

func (MCC) Kind() string { return KindMCC }

func (m MCC) MarshalJSON() ([]byte, error) {
	type plain MCC
	return tagged(KindMCC, plain(m))
}

// Store is a physical merchant location
type Store struct {
	ID        string   `json:"id,omitempty"`
	Name      string   `json:"name"`
	Address   *Address `json:"address,omitempty"`
	Latitude  float64  `json:"latitude,omitempty"`
	Longitude float64  `json:"longitude,omitempty"`
}

func (Store) Kind() string { return KindStore }

func (s Store) MarshalJSON() ([]byte, error) {
	type plain Store
	return tagged(KindStore, plain(s))
}
