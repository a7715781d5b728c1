package model

import "time"

// ApplicationStatus is the state of a card application
type ApplicationStatus string

const (
	ApplicationCreated  ApplicationStatus = "created"
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// ActionType names the step a workflow is waiting on
type ActionType string

const (
	ActionShowGenericMessage ActionType = "show_generic_message"
	ActionSelectBalanceStore ActionType = "select_balance_store"
	ActionShowDisclaimer     ActionType = "show_disclaimer"
	ActionIssueCard          ActionType = "issue_card"
	ActionCollectUserData    ActionType = "collect_user_data"
	ActionVerifyIDDocument   ActionType = "verify_id_document"
	ActionWaitList           ActionType = "waitlist"
	ActionUnknown            ActionType = "unknown"
)

// CardApplication tracks a user's request for a card
type CardApplication struct {
	ID               string            `json:"id"`
	Status           ApplicationStatus `json:"status"`
	WorkflowObjectID string            `json:"workflow_object_id"`
	ApplicationDate  *time.Time        `json:"application_date,omitempty"`
	NextAction       WorkflowAction    `json:"next_action"`
}

func (CardApplication) Kind() string { return KindApplication }

func (a CardApplication) MarshalJSON() ([]byte, error) {
	type plain CardApplication
	return tagged(KindApplication, plain(a))
}

// NextActionType returns the type of the step the application waits on
func (a CardApplication) NextActionType() ActionType {
	if a.NextAction.ActionType == "" {
		return ActionUnknown
	}
	return a.NextAction.ActionType
}

// WorkflowAction is a step of the application workflow. Configuration holds
// one of the *Configuration records, or nil for steps without one.
type WorkflowAction struct {
	ActionID      string     `json:"action_id,omitempty"`
	ActionType    ActionType `json:"action_type"`
	Status        string     `json:"status,omitempty"`
	Configuration Record     `json:"configuration,omitempty"`
}

func (WorkflowAction) Kind() string { return KindWorkflowAction }

func (w WorkflowAction) MarshalJSON() ([]byte, error) {
	type plain WorkflowAction
	return tagged(KindWorkflowAction, plain(w))
}

// Content is a piece of displayable text in a given format
type Content struct {
	Format string `json:"format"`
	Value  string `json:"value"`
}

// Content formats
const (
	ContentPlainText   = "plain_text"
	ContentMarkdown    = "markdown"
	ContentExternalURL = "external_url"
)

func (Content) Kind() string { return KindContent }

func (c Content) MarshalJSON() ([]byte, error) {
	type plain Content
	return tagged(KindContent, plain(c))
}

// CallToAction is a button shown by a workflow step
type CallToAction struct {
	Title       string `json:"title"`
	ActionType  string `json:"action_type,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`
}

func (CallToAction) Kind() string { return KindCallToAction }

func (c CallToAction) MarshalJSON() ([]byte, error) {
	type plain CallToAction
	return tagged(KindCallToAction, plain(c))
}

// GenericMessageConfiguration configures a show_generic_message step
type GenericMessageConfiguration struct {
	Title            string        `json:"title"`
	Content          Content       `json:"content"`
	Image            string        `json:"image,omitempty"`
	TrackerEventName string        `json:"tracker_event_name,omitempty"`
	CallToAction     *CallToAction `json:"call_to_action,omitempty"`
}

func (GenericMessageConfiguration) Kind() string { return KindGenericMessageConfig }

func (g GenericMessageConfiguration) MarshalJSON() ([]byte, error) {
	type plain GenericMessageConfiguration
	return tagged(KindGenericMessageConfig, plain(g))
}

// DisclaimerConfiguration configures a show_disclaimer step
type DisclaimerConfiguration struct {
	Disclaimer Content `json:"disclaimer"`
}

func (DisclaimerConfiguration) Kind() string { return KindDisclaimerConfig }

func (d DisclaimerConfiguration) MarshalJSON() ([]byte, error) {
	type plain DisclaimerConfiguration
	return tagged(KindDisclaimerConfig, plain(d))
}

// SelectBalanceStoreConfiguration configures a select_balance_store step
type SelectBalanceStoreConfiguration struct {
	AllowedBalanceTypes []AllowedBalanceType `json:"allowed_balance_types"`
	AssetURL            string               `json:"asset_url,omitempty"`
}

func (SelectBalanceStoreConfiguration) Kind() string { return KindSelectBalanceStoreConfig }

func (s SelectBalanceStoreConfiguration) MarshalJSON() ([]byte, error) {
	type plain SelectBalanceStoreConfiguration
	if s.AllowedBalanceTypes == nil {
		s.AllowedBalanceTypes = []AllowedBalanceType{}
	}
	return tagged(KindSelectBalanceStoreConfig, plain(s))
}

// IssueCardConfiguration configures an issue_card step
type IssueCardConfiguration struct {
	ErrorAsset string `json:"error_asset,omitempty"`
}

func (IssueCardConfiguration) Kind() string { return KindIssueCardConfig }

func (i IssueCardConfiguration) MarshalJSON() ([]byte, error) {
	type plain IssueCardConfiguration
	return tagged(KindIssueCardConfig, plain(i))
}
