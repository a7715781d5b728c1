package model

// CardState is the lifecycle state of a card
type CardState string

const (
	CardActive    CardState = "active"
	CardInactive  CardState = "inactive"
	CardCancelled CardState = "cancelled"
	CardCreated   CardState = "created"
)

// Card is a financial account backed by a payment card
type Card struct {
	AccountID            string         `json:"account_id"`
	CardNetwork          string         `json:"card_network"`
	LastFour             string         `json:"last_four"`
	State                CardState      `json:"state"`
	CardBrand            string         `json:"card_brand,omitempty"`
	CardIssuer           string         `json:"card_issuer,omitempty"`
	NameOnCard           string         `json:"name_on_card,omitempty"`
	OrderedStatus        string         `json:"ordered_status,omitempty"`
	CardProductID        string         `json:"card_product_id,omitempty"`
	KYCStatus            string         `json:"kyc_status,omitempty"`
	SpendableToday       *Money         `json:"spendable_today,omitempty"`
	NativeSpendableToday *Money         `json:"native_spendable_today,omitempty"`
	TotalBalance         *Money         `json:"total_balance,omitempty"`
	NativeTotalBalance   *Money         `json:"native_total_balance,omitempty"`
	Features             *CardFeatures  `json:"features,omitempty"`
	FundingSource        *FundingSource `json:"funding_source,omitempty"`
}

func (Card) Kind() string { return KindCard }

func (c Card) MarshalJSON() ([]byte, error) {
	type plain Card
	return tagged(KindCard, plain(c))
}

// IsActive reports whether the card can be used for purchases
func (c Card) IsActive() bool {
	return c.State == CardActive
}

// CardDetails holds the sensitive card data
type CardDetails struct {
	Expiration string `json:"expiration"`
	PAN        string `json:"pan"`
	CVV        string `json:"cvv"`
}

func (CardDetails) Kind() string { return KindCardDetails }

func (d CardDetails) MarshalJSON() ([]byte, error) {
	type plain CardDetails
	return tagged(KindCardDetails, plain(d))
}

// MaskedPAN hides all but the last four digits of the PAN
func (d CardDetails) MaskedPAN() string {
	if len(d.PAN) <= 4 {
		return d.PAN
	}
	masked := make([]byte, len(d.PAN))
	for i := range masked[:len(d.PAN)-4] {
		masked[i] = '*'
	}
	copy(masked[len(d.PAN)-4:], d.PAN[len(d.PAN)-4:])
	return string(masked)
}

// CardFeatures lists what a card supports
type CardFeatures struct {
	SetPIN              bool                 `json:"set_pin"`
	GetPIN              bool                 `json:"get_pin"`
	ActivationPhone     string               `json:"activation_phone,omitempty"`
	AllowedBalanceTypes []AllowedBalanceType `json:"allowed_balance_types,omitempty"`
}

func (CardFeatures) Kind() string { return KindCardFeatures }

func (f CardFeatures) MarshalJSON() ([]byte, error) {
	type plain CardFeatures
	return tagged(KindCardFeatures, plain(f))
}

// FundingSourceState reports whether a funding source can back purchases
type FundingSourceState string

const (
	FundingSourceValid   FundingSourceState = "valid"
	FundingSourceInvalid FundingSourceState = "invalid"
)

// FundingSource is the balance backing a card
type FundingSource struct {
	ID              string             `json:"id"`
	State           FundingSourceState `json:"state"`
	Balance         *Money             `json:"balance,omitempty"`
	AmountSpendable *Money             `json:"amount_spendable,omitempty"`
	AmountHeld      *Money             `json:"amount_held,omitempty"`
	Custodian       *Custodian         `json:"custodian,omitempty"`
}

func (FundingSource) Kind() string { return KindFundingSource }

func (f FundingSource) MarshalJSON() ([]byte, error) {
	type plain FundingSource
	return tagged(KindFundingSource, plain(f))
}

// Custodian is the institution holding a funding source
type Custodian struct {
	CustodianType string `json:"custodian_type"`
	Name          string `json:"name,omitempty"`
	Logo          string `json:"logo,omitempty"`
}

func (Custodian) Kind() string { return KindCustodian }

func (c Custodian) MarshalJSON() ([]byte, error) {
	type plain Custodian
	return tagged(KindCustodian, plain(c))
}

// AllowedBalanceType is a balance store a card may be funded from
type AllowedBalanceType struct {
	BalanceType string `json:"balance_type"`
	BaseURI     string `json:"base_uri,omitempty"`
}

func (AllowedBalanceType) Kind() string { return KindAllowedBalanceType }

func (a AllowedBalanceType) MarshalJSON() ([]byte, error) {
	type plain AllowedBalanceType
	return tagged(KindAllowedBalanceType, plain(a))
}

// PhysicalCardActivationResult is the outcome of activating a physical card
type PhysicalCardActivationResult struct {
	Result       string `json:"result"`
	ErrorCode    int    `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func (PhysicalCardActivationResult) Kind() string { return KindPhysicalCardActivation }

func (r PhysicalCardActivationResult) MarshalJSON() ([]byte, error) {
	type plain PhysicalCardActivationResult
	return tagged(KindPhysicalCardActivation, plain(r))
}

// Activated reports whether the activation succeeded
func (r PhysicalCardActivationResult) Activated() bool {
	return r.Result == "activated"
}
