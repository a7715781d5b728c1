package network

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// ErrorCode is the flat classification of a failed platform call
type ErrorCode int

const (
	// CodeUndefined is used for successes and unrecognised failures
	CodeUndefined ErrorCode = iota
	// CodeServiceUnavailable covers server errors (500-599)
	CodeServiceUnavailable
	// CodeIncorrectParameters covers client errors (400-499)
	CodeIncorrectParameters
	// CodeInvalidSession means the session token was rejected
	CodeInvalidSession
	// CodeSDKDeprecated means the server no longer accepts this client version
	CodeSDKDeprecated
	// CodeServerMaintenance means the platform is temporarily down
	CodeServerMaintenance
	// CodeJSONError means a response body could not be decoded
	CodeJSONError
	// CodeNetworkUnreachable means no response was received
	CodeNetworkUnreachable
)

// String returns the string representation of an ErrorCode
func (c ErrorCode) String() string {
	switch c {
	case CodeServiceUnavailable:
		return "service_unavailable"
	case CodeIncorrectParameters:
		return "incorrect_parameters"
	case CodeInvalidSession:
		return "invalid_session"
	case CodeSDKDeprecated:
		return "sdk_deprecated"
	case CodeServerMaintenance:
		return "server_maintenance"
	case CodeJSONError:
		return "json_error"
	case CodeNetworkUnreachable:
		return "network_unreachable"
	default:
		return "undefined"
	}
}

// Sentinel errors, one per ErrorCode
var (
	ErrUndefined           = errors.New("undefined platform error")
	ErrServiceUnavailable  = errors.New("service unavailable")
	ErrIncorrectParameters = errors.New("incorrect parameters")
	ErrInvalidSession      = errors.New("invalid session")
	ErrSDKDeprecated       = errors.New("sdk deprecated")
	ErrServerMaintenance   = errors.New("server maintenance")
	ErrJSON                = errors.New("invalid JSON response")
	ErrNetworkUnreachable  = errors.New("network unreachable")

	// ErrQueueFull is returned alongside the original failure when the
	// pending queue is at capacity
	ErrQueueFull = errors.New("pending request queue is full")
)

// Sentinel returns the sentinel error for a code
func (c ErrorCode) Sentinel() error {
	switch c {
	case CodeServiceUnavailable:
		return ErrServiceUnavailable
	case CodeIncorrectParameters:
		return ErrIncorrectParameters
	case CodeInvalidSession:
		return ErrInvalidSession
	case CodeSDKDeprecated:
		return ErrSDKDeprecated
	case CodeServerMaintenance:
		return ErrServerMaintenance
	case CodeJSONError:
		return ErrJSON
	case CodeNetworkUnreachable:
		return ErrNetworkUnreachable
	default:
		return ErrUndefined
	}
}

// Classify maps an HTTP status to an error code. ok is false for statuses
// that are not failures.
func Classify(status int) (code ErrorCode, ok bool) {
	switch {
	case status == http.StatusUnauthorized:
		return CodeInvalidSession, true
	case status == http.StatusGone:
		return CodeSDKDeprecated, true
	case status == http.StatusServiceUnavailable:
		return CodeServerMaintenance, true
	case status >= 400 && status <= 499:
		return CodeIncorrectParameters, true
	case status >= 500 && status <= 599:
		return CodeServiceUnavailable, true
	case status >= 200 && status <= 399:
		return CodeUndefined, false
	default:
		return CodeUndefined, true
	}
}

// queueable reports whether a failure with this code is held for replay
func (c ErrorCode) queueable() bool {
	return c == CodeNetworkUnreachable || c == CodeServerMaintenance
}

// APIError is a classified platform failure
type APIError struct {
	StatusCode  int
	Code        ErrorCode
	BackendCode int
	Message     string
	Body        string
	Err         error
}

// Error implements the error interface
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code.Sentinel().Error()
	}
	if e.StatusCode == 0 {
		if e.Err != nil {
			return fmt.Sprintf("platform API error: %s: %v", e.Code, e.Err)
		}
		return fmt.Sprintf("platform API error: %s: %s", e.Code, msg)
	}
	if e.BackendCode != 0 {
		return fmt.Sprintf("platform API error: status %d (code %d): %s", e.StatusCode, e.BackendCode, msg)
	}
	return fmt.Sprintf("platform API error: status %d: %s", e.StatusCode, msg)
}

// Is matches the sentinel for the error's code
func (e *APIError) Is(target error) bool {
	return target == e.Code.Sentinel()
}

// Unwrap returns the underlying cause, if any
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the request was held for replay
func (e *APIError) IsRetryable() bool {
	return e.Code.queueable()
}

// IsUnauthorized checks if the error indicates a rejected session
func (e *APIError) IsUnauthorized() bool {
	return e.Code == CodeInvalidSession
}

// newStatusError builds an APIError from a failed response, reading the
// backend's {"type":"error","code":N,"message":"..."} body when present
func newStatusError(status int, code ErrorCode, body []byte) *APIError {
	e := &APIError{
		StatusCode: status,
		Code:       code,
		Body:       string(body),
	}
	if gjson.ValidBytes(body) {
		r := gjson.ParseBytes(body)
		e.BackendCode = int(r.Get("code").Int())
		e.Message = r.Get("message").String()
	}
	return e
}
