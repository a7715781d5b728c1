package model

import (
	"github.com/shopspring/decimal"
)

// Money is an amount in a currency
type Money struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewMoney builds a Money from a float amount
func NewMoney(amount float64, currency string) Money {
	return Money{Currency: currency, Amount: decimal.NewFromFloat(amount)}
}

func (Money) Kind() string { return KindMoney }

func (m Money) MarshalJSON() ([]byte, error) {
	type plain Money
	return tagged(KindMoney, plain(m))
}

// String formats the amount with two decimals followed by the currency
func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.Currency
}

// IsZero reports whether the amount is zero
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// Float returns the amount as a float64 for display and filtering
func (m Money) Float() float64 {
	f, _ := m.Amount.Float64()
	return f
}
