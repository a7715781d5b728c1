package model

// List is the platform's generic collection envelope
type List struct {
	Data       []Record `json:"data"`
	Page       int      `json:"page,omitempty"`
	Rows       int      `json:"rows,omitempty"`
	HasMore    bool     `json:"has_more,omitempty"`
	TotalCount int      `json:"total_count,omitempty"`
}

// NewList wraps records in a list envelope
func NewList(records ...Record) List {
	if records == nil {
		records = []Record{}
	}
	return List{Data: records}
}

func (List) Kind() string { return KindList }

func (l List) MarshalJSON() ([]byte, error) {
	type plain List
	if l.Data == nil {
		l.Data = []Record{}
	}
	return tagged(KindList, plain(l))
}

// Len returns the number of records in the list
func (l List) Len() int {
	return len(l.Data)
}

// User is a platform user with its data points
type User struct {
	UserID    string `json:"user_id"`
	UserToken string `json:"user_token,omitempty"`
	UserData  List   `json:"user_data"`
}

func (User) Kind() string { return KindUser }

func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	return tagged(KindUser, plain(u))
}

// DataPoint returns the first data point of the given kind
func (u User) DataPoint(kind string) (Record, bool) {
	for _, dp := range u.UserData.Data {
		if dp.Kind() == kind {
			return dp, true
		}
	}
	return nil, false
}

// Name returns the user's name data point if present
func (u User) Name() (PersonalName, bool) {
	dp, ok := u.DataPoint(KindName)
	if !ok {
		return PersonalName{}, false
	}
	n, ok := dp.(PersonalName)
	return n, ok
}

// Phone returns the user's phone data point if present
func (u User) Phone() (PhoneNumber, bool) {
	dp, ok := u.DataPoint(KindPhone)
	if !ok {
		return PhoneNumber{}, false
	}
	p, ok := dp.(PhoneNumber)
	return p, ok
}

// Email returns the user's email data point if present
func (u User) Email() (Email, bool) {
	dp, ok := u.DataPoint(KindEmail)
	if !ok {
		return Email{}, false
	}
	e, ok := dp.(Email)
	return e, ok
}

// VerificationStatus is the lifecycle state of a verification
type VerificationStatus string

const (
	VerificationPending VerificationStatus = "pending"
	VerificationPassed  VerificationStatus = "passed"
	VerificationFailed  VerificationStatus = "failed"
	VerificationExpired VerificationStatus = "expired"
)

// Verification is a one-time-secret check of a data point
type Verification struct {
	VerificationID   string             `json:"verification_id"`
	VerificationType string             `json:"verification_type"`
	Status           VerificationStatus `json:"status"`
	Secret           string             `json:"secret,omitempty"`
}

func (Verification) Kind() string { return KindVerification }

func (v Verification) MarshalJSON() ([]byte, error) {
	type plain Verification
	return tagged(KindVerification, plain(v))
}

// IsPassed reports whether the verification succeeded
func (v Verification) IsPassed() bool {
	return v.Status == VerificationPassed
}
