package model

// ContextConfiguration is the team and project setup returned by /config
type ContextConfiguration struct {
	Team    TeamConfiguration    `json:"team_configuration"`
	Project ProjectConfiguration `json:"project_configuration"`
}

func (ContextConfiguration) Kind() string { return KindContextConfiguration }

func (c ContextConfiguration) MarshalJSON() ([]byte, error) {
	type plain ContextConfiguration
	return tagged(KindContextConfiguration, plain(c))
}

// TeamConfiguration describes the team owning the program
type TeamConfiguration struct {
	Name    string `json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
}

func (TeamConfiguration) Kind() string { return KindTeamConfiguration }

func (t TeamConfiguration) MarshalJSON() ([]byte, error) {
	type plain TeamConfiguration
	return tagged(KindTeamConfiguration, plain(t))
}

// ProjectConfiguration describes the card program
type ProjectConfiguration struct {
	Name                     string   `json:"name"`
	Summary                  string   `json:"summary,omitempty"`
	Language                 string   `json:"language,omitempty"`
	SupportEmail             string   `json:"support_source_address,omitempty"`
	TrackerActive            bool     `json:"tracker_active,omitempty"`
	TrackerAccessToken       string   `json:"tracker_access_token,omitempty"`
	AllowedCountries         []string `json:"allowed_countries,omitempty"`
	PrimaryAuthCredential    string   `json:"primary_auth_credential"`
	SecondaryAuthCredentials []string `json:"secondary_auth_credentials,omitempty"`
}

func (ProjectConfiguration) Kind() string { return KindProjectConfiguration }

func (p ProjectConfiguration) MarshalJSON() ([]byte, error) {
	type plain ProjectConfiguration
	return tagged(KindProjectConfiguration, plain(p))
}

// CardProduct is a card program a user can apply for
type CardProduct struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"name"`
	TeamID                  string   `json:"team_id,omitempty"`
	Description             string   `json:"description,omitempty"`
	Website                 string   `json:"website,omitempty"`
	CardIssuer              string   `json:"card_issuer,omitempty"`
	CardholderAgreement     *Content `json:"cardholder_agreement,omitempty"`
	PrivacyPolicy           *Content `json:"privacy_policy,omitempty"`
	TermsOfService          *Content `json:"terms_of_service,omitempty"`
	FAQ                     *Content `json:"faq,omitempty"`
	WaitListBackgroundImage string   `json:"waitlist_background_image,omitempty"`
	WaitListBackgroundColor string   `json:"waitlist_background_color,omitempty"`
}

func (CardProduct) Kind() string { return KindCardProduct }

func (c CardProduct) MarshalJSON() ([]byte, error) {
	type plain CardProduct
	return tagged(KindCardProduct, plain(c))
}

// CardProductSummary is the short form of a card product used in listings
type CardProductSummary struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Countries []string `json:"countries,omitempty"`
}

func (CardProductSummary) Kind() string { return KindCardProductSummary }

func (c CardProductSummary) MarshalJSON() ([]byte, error) {
	type plain CardProductSummary
	return tagged(KindCardProductSummary, plain(c))
}
