package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OfferRequest is a request for loan offers
type OfferRequest struct {
	ID        string     `json:"id"`
	Status    string     `json:"status,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func (OfferRequest) Kind() string { return KindOfferRequest }

func (o OfferRequest) MarshalJSON() ([]byte, error) {
	type plain OfferRequest
	return tagged(KindOfferRequest, plain(o))
}

// Term is the duration of a loan
type Term struct {
	Duration int    `json:"duration"`
	Unit     string `json:"unit"`
}

// Offer is a loan offer from a lender
type Offer struct {
	ID                  string          `json:"offer_id"`
	Lender              Lender          `json:"lender"`
	LoanAmount          *Money          `json:"loan_amount,omitempty"`
	PaymentAmount       *Money          `json:"payment_amount,omitempty"`
	PaymentCount        int             `json:"payment_count,omitempty"`
	InterestRate        decimal.Decimal `json:"interest_rate"`
	APR                 decimal.Decimal `json:"apr"`
	Term                *Term           `json:"term,omitempty"`
	ExpirationDate      *time.Time      `json:"expiration_date,omitempty"`
	CustomerSupportText string          `json:"customer_support_text,omitempty"`
	Disclaimer          *Content        `json:"disclaimer,omitempty"`
}

func (Offer) Kind() string { return KindOffer }

func (o Offer) MarshalJSON() ([]byte, error) {
	type plain Offer
	return tagged(KindOffer, plain(o))
}

// Lender offers loans
type Lender struct {
	Name       string `json:"name"`
	LargeImage string `json:"large_image,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
}

func (Lender) Kind() string { return KindLender }

func (l Lender) MarshalJSON() ([]byte, error) {
	type plain Lender
	return tagged(KindLender, plain(l))
}
