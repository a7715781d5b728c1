// Package router maps logical platform endpoints to URL path templates.
//
// Templates use ":name" segments as placeholders, e.g.
// "/user/accounts/:accountId/transactions". URL substitutes them from a
// Route's Params and appends its Query.
package router

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Endpoint names a logical platform endpoint
type Endpoint string

const (
	// User and session
	EndpointUser              Endpoint = "user"
	EndpointUserLogin         Endpoint = "user_login"
	EndpointUserInfo          Endpoint = "user_info"
	EndpointUserLogout        Endpoint = "user_logout"
	EndpointUserDataPoints    Endpoint = "user_data_points"
	EndpointNotificationPrefs Endpoint = "notification_preferences"

	// Verifications
	EndpointVerificationStart   Endpoint = "verification_start"
	EndpointVerificationStatus  Endpoint = "verification_status"
	EndpointVerificationFinish  Endpoint = "verification_finish"
	EndpointVerificationRestart Endpoint = "verification_restart"

	// Configuration
	EndpointContextConfig Endpoint = "context_config"
	EndpointCardProducts  Endpoint = "card_products"
	EndpointCardProduct   Endpoint = "card_product"

	// Card applications
	EndpointApplicationCreate       Endpoint = "application_create"
	EndpointApplicationStatus       Endpoint = "application_status"
	EndpointApplicationBalanceStore Endpoint = "application_balance_store"
	EndpointApplicationIssueCard    Endpoint = "application_issue_card"
	EndpointDisclaimerAccept        Endpoint = "disclaimer_accept"

	// Financial accounts
	EndpointAccounts                Endpoint = "accounts"
	EndpointAccount                 Endpoint = "account"
	EndpointAccountDetails          Endpoint = "account_details"
	EndpointAccountTransactions     Endpoint = "account_transactions"
	EndpointAccountActivatePhysical Endpoint = "account_activate_physical"
	EndpointAccountEnable           Endpoint = "account_enable"
	EndpointAccountDisable          Endpoint = "account_disable"
	EndpointAccountPIN              Endpoint = "account_pin"
	EndpointAccountFundingSource    Endpoint = "account_funding_source"
	EndpointAccountFundingSources   Endpoint = "account_funding_sources"
	EndpointAccountMonthlySpending  Endpoint = "account_monthly_spending"

	// Custodians
	EndpointOAuth         Endpoint = "oauth"
	EndpointOAuthAttempt  Endpoint = "oauth_attempt"
	EndpointOAuthUserData Endpoint = "oauth_user_data"

	// Statements
	EndpointStatementsPeriod Endpoint = "statements_period"
	EndpointStatement        Endpoint = "statement"

	// Loan offers
	EndpointOfferRequests Endpoint = "offer_requests"
	EndpointOffers        Endpoint = "offers"
)

var templates = map[Endpoint]string{
	EndpointUser:              "/user",
	EndpointUserLogin:         "/user/login",
	EndpointUserInfo:          "/user",
	EndpointUserLogout:        "/session/invalidate",
	EndpointUserDataPoints:    "/user/datapoints",
	EndpointNotificationPrefs: "/user/notifications/preferences",

	EndpointVerificationStart:   "/verifications/start",
	EndpointVerificationStatus:  "/verifications/:verificationId",
	EndpointVerificationFinish:  "/verifications/:verificationId/finish",
	EndpointVerificationRestart: "/verifications/:verificationId/restart",

	EndpointContextConfig: "/config",
	EndpointCardProducts:  "/config/cardproducts",
	EndpointCardProduct:   "/config/cardproducts/:cardProductId",

	EndpointApplicationCreate:       "/user/accounts/apply",
	EndpointApplicationStatus:       "/user/accounts/applications/:applicationId/status",
	EndpointApplicationBalanceStore: "/user/accounts/applications/:applicationId/select_balance_store",
	EndpointApplicationIssueCard:    "/user/accounts/applications/:applicationId/issue_card",
	EndpointDisclaimerAccept:        "/disclaimers/accept",

	EndpointAccounts:                "/user/accounts",
	EndpointAccount:                 "/user/accounts/:accountId",
	EndpointAccountDetails:          "/user/accounts/:accountId/details",
	EndpointAccountTransactions:     "/user/accounts/:accountId/transactions",
	EndpointAccountActivatePhysical: "/user/accounts/:accountId/activate_physical",
	EndpointAccountEnable:           "/user/accounts/:accountId/enable",
	EndpointAccountDisable:          "/user/accounts/:accountId/disable",
	EndpointAccountPIN:              "/user/accounts/:accountId/pin",
	EndpointAccountFundingSource:    "/user/accounts/:accountId/balance",
	EndpointAccountFundingSources:   "/user/accounts/:accountId/balances",
	EndpointAccountMonthlySpending:  "/user/accounts/:accountId/stats/monthly_spending",

	EndpointOAuth:         "/oauth",
	EndpointOAuthAttempt:  "/oauth/:attemptId",
	EndpointOAuthUserData: "/oauth/userdata/retrieve",

	EndpointStatementsPeriod: "/user/statements/period",
	EndpointStatement:        "/user/statements/:month/:year",

	EndpointOfferRequests: "/offer_requests",
	EndpointOffers:        "/offer_requests/:offerRequestId/offers",
}

// ErrUnknownEndpoint is returned for endpoints missing from the table
var ErrUnknownEndpoint = errors.New("unknown endpoint")

// ErrNoBaseURL is returned when URL is called without a base
var ErrNoBaseURL = errors.New("base URL is required")

// MissingParamError reports a template placeholder with no value
type MissingParamError struct {
	Endpoint Endpoint
	Param    string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("endpoint %s: missing path parameter %q", e.Endpoint, e.Param)
}

// Route is a resolved request target
type Route struct {
	Endpoint Endpoint
	Params   map[string]string
	Query    url.Values
}

// NewRoute builds a route from alternating name/value pairs
func NewRoute(endpoint Endpoint, params ...string) Route {
	r := Route{Endpoint: endpoint}
	if len(params) > 0 {
		r.Params = make(map[string]string, len(params)/2)
		for i := 0; i+1 < len(params); i += 2 {
			r.Params[params[i]] = params[i+1]
		}
	}
	return r
}

// WithQuery returns a copy of the route carrying query values
func (r Route) WithQuery(q url.Values) Route {
	r.Query = q
	return r
}

// String renders the route's path without a base, for logging
func (r Route) String() string {
	p, err := Path(r)
	if err != nil {
		return string(r.Endpoint)
	}
	return p
}

// Template returns the raw path template for an endpoint
func Template(e Endpoint) (string, bool) {
	t, ok := templates[e]
	return t, ok
}

// Endpoints lists every known endpoint, sorted by name
func Endpoints() []Endpoint {
	out := make([]Endpoint, 0, len(templates))
	for e := range templates {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Path substitutes the route's parameters into its template
func Path(r Route) (string, error) {
	tmpl, ok := templates[r.Endpoint]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownEndpoint, r.Endpoint)
	}

	segments := strings.Split(tmpl, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		name := seg[1:]
		value, ok := r.Params[name]
		if !ok || value == "" {
			return "", &MissingParamError{Endpoint: r.Endpoint, Param: name}
		}
		segments[i] = url.PathEscape(value)
	}

	return strings.Join(segments, "/"), nil
}

// URL resolves a route against a base URL. The base's own path is kept as
// a prefix, so "https://api.example.com/v1" works.
func URL(base string, r Route) (string, error) {
	if base == "" {
		return "", ErrNoBaseURL
	}

	path, err := Path(r)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	decoded, err := url.PathUnescape(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	u.RawPath = u.EscapedPath() + path
	u.Path += decoded
	if len(r.Query) > 0 {
		u.RawQuery = r.Query.Encode()
	}

	return u.String(), nil
}
