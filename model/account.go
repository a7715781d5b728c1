package model

import (
	"fmt"
	"time"
)

// NotificationChannels reports which channels a notification group uses
type NotificationChannels struct {
	Push  *bool `json:"push,omitempty"`
	Email *bool `json:"email,omitempty"`
	SMS   *bool `json:"sms,omitempty"`
}

// NotificationGroup is one configurable category of notifications
type NotificationGroup struct {
	GroupID        string               `json:"group_id"`
	CategoryID     string               `json:"category_id,omitempty"`
	Title          string               `json:"title,omitempty"`
	Description    string               `json:"description,omitempty"`
	ActiveChannels NotificationChannels `json:"active_channels"`
}

// NotificationPreferences are the user's notification settings
type NotificationPreferences struct {
	Preferences []NotificationGroup `json:"preferences"`
}

func (NotificationPreferences) Kind() string { return KindNotificationPreferences }

func (n NotificationPreferences) MarshalJSON() ([]byte, error) {
	type plain NotificationPreferences
	if n.Preferences == nil {
		n.Preferences = []NotificationGroup{}
	}
	return tagged(KindNotificationPreferences, plain(n))
}

// CategorySpending is the spending in one merchant category
type CategorySpending struct {
	CategoryID string `json:"category_id"`
	Spending   Money  `json:"spending"`
}

// MonthlySpending is a card's spending breakdown for one month
type MonthlySpending struct {
	PreviousSpendingExists bool               `json:"prev_spending_exist"`
	NextSpendingExists     bool               `json:"next_spending_exist"`
	Spending               []CategorySpending `json:"spending"`
}

func (MonthlySpending) Kind() string { return KindMonthlySpending }

func (m MonthlySpending) MarshalJSON() ([]byte, error) {
	type plain MonthlySpending
	if m.Spending == nil {
		m.Spending = []CategorySpending{}
	}
	return tagged(KindMonthlySpending, plain(m))
}

// Month is a calendar month
type Month struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// String renders the month as YYYY-MM
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// Before reports whether m is earlier than other
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// MonthlyStatementsPeriod is the range of months with statements
type MonthlyStatementsPeriod struct {
	Start Month `json:"start"`
	End   Month `json:"end"`
}

func (MonthlyStatementsPeriod) Kind() string { return KindStatementsPeriod }

func (p MonthlyStatementsPeriod) MarshalJSON() ([]byte, error) {
	type plain MonthlyStatementsPeriod
	return tagged(KindStatementsPeriod, plain(p))
}

// Contains reports whether month lies within the period
func (p MonthlyStatementsPeriod) Contains(month Month) bool {
	return !month.Before(p.Start) && !p.End.Before(month)
}

// MonthlyStatementReport is a downloadable statement
type MonthlyStatementReport struct {
	ID            string     `json:"id"`
	Month         int        `json:"month"`
	Year          int        `json:"year"`
	DownloadURL   string     `json:"download_url,omitempty"`
	URLExpiration *time.Time `json:"url_expiration,omitempty"`
}

func (MonthlyStatementReport) Kind() string { return KindStatementReport }

func (r MonthlyStatementReport) MarshalJSON() ([]byte, error) {
	type plain MonthlyStatementReport
	return tagged(KindStatementReport, plain(r))
}

// BackendError is the error object the platform returns in failure bodies
type BackendError struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

func (BackendError) Kind() string { return KindError }

func (e BackendError) MarshalJSON() ([]byte, error) {
	type plain BackendError
	return tagged(KindError, plain(e))
}

func (e BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error %d", e.Code)
	}
	return fmt.Sprintf("backend error %d: %s", e.Code, e.Message)
}
