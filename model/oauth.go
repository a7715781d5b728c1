package model

// OAuthStatus is the state of an OAuth attempt
type OAuthStatus string

const (
	OAuthPending OAuthStatus = "pending"
	OAuthPassed  OAuthStatus = "passed"
	OAuthFailed  OAuthStatus = "failed"
)

// OAuthAttempt is a balance store OAuth authorisation in progress
type OAuthAttempt struct {
	ID           string      `json:"id"`
	Status       OAuthStatus `json:"status"`
	URL          string      `json:"url,omitempty"`
	TokenID      string      `json:"token_id,omitempty"`
	Error        string      `json:"error,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

func (OAuthAttempt) Kind() string { return KindOAuthAttempt }

func (o OAuthAttempt) MarshalJSON() ([]byte, error) {
	type plain OAuthAttempt
	return tagged(KindOAuthAttempt, plain(o))
}

// OAuthUserData is the user data a balance store shared through OAuth
type OAuthUserData struct {
	Result   string `json:"result,omitempty"`
	UserData List   `json:"user_data"`
}

func (OAuthUserData) Kind() string { return KindOAuthUserData }

func (o OAuthUserData) MarshalJSON() ([]byte, error) {
	type plain OAuthUserData
	return tagged(KindOAuthUserData, plain(o))
}
