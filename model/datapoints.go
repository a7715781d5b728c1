package model

// Address is a postal address data point
type Address struct {
	StreetOne  string `json:"street_one"`
	StreetTwo  string `json:"street_two,omitempty"`
	Locality   string `json:"locality"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Verified   bool   `json:"verified,omitempty"`
}

func (Address) Kind() string { return KindAddress }

func (a Address) MarshalJSON() ([]byte, error) {
	type plain Address
	return tagged(KindAddress, plain(a))
}

// PhoneNumber is a phone data point
type PhoneNumber struct {
	CountryCode  string        `json:"country_code"`
	PhoneNumber  string        `json:"phone_number"`
	Verified     bool          `json:"verified,omitempty"`
	Verification *Verification `json:"verification,omitempty"`
}

func (PhoneNumber) Kind() string { return KindPhone }

func (p PhoneNumber) MarshalJSON() ([]byte, error) {
	type plain PhoneNumber
	return tagged(KindPhone, plain(p))
}

// String renders the number in E.164 style
func (p PhoneNumber) String() string {
	return "+" + p.CountryCode + p.PhoneNumber
}

// Email is an email address data point
type Email struct {
	Email        string        `json:"email"`
	Verified     bool          `json:"verified,omitempty"`
	Verification *Verification `json:"verification,omitempty"`
}

func (Email) Kind() string { return KindEmail }

func (e Email) MarshalJSON() ([]byte, error) {
	type plain Email
	return tagged(KindEmail, plain(e))
}

// PersonalName is a name data point
type PersonalName struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (PersonalName) Kind() string { return KindName }

func (n PersonalName) MarshalJSON() ([]byte, error) {
	type plain PersonalName
	return tagged(KindName, plain(n))
}

// String joins first and last name
func (n PersonalName) String() string {
	if n.LastName == "" {
		return n.FirstName
	}
	return n.FirstName + " " + n.LastName
}

// BirthDate is a date of birth data point in YYYY-MM-DD form
type BirthDate struct {
	Date         string        `json:"date"`
	Verification *Verification `json:"verification,omitempty"`
}

func (BirthDate) Kind() string { return KindBirthDate }

func (b BirthDate) MarshalJSON() ([]byte, error) {
	type plain BirthDate
	return tagged(KindBirthDate, plain(b))
}

// IDDocument is an identity document data point
type IDDocument struct {
	DocType string `json:"doc_type"`
	Value   string `json:"value"`
	Country string `json:"country"`
}

func (IDDocument) Kind() string { return KindIDDocument }

func (d IDDocument) MarshalJSON() ([]byte, error) {
	type plain IDDocument
	return tagged(KindIDDocument, plain(d))
}
