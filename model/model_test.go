package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalInjectsType(t *testing.T) {
	data, err := json.Marshal(PersonalName{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"name","first_name":"Jane","last_name":"Doe"}`, string(data))

	data, err = json.Marshal(IssueCardConfiguration{})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"issue_card_configuration"}`, string(data))

	data, err = json.Marshal(NewList(Email{Email: "a@b.c"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"list","data":[{"type":"email","email":"a@b.c"}]}`, string(data))

	data, err = json.Marshal(List{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"list","data":[]}`, string(data))
}

func TestMoney(t *testing.T) {
	m := NewMoney(12.5, "USD")
	assert.Equal(t, "12.50 USD", m.String())
	assert.InDelta(t, 12.5, m.Float(), 0.0001)
	assert.False(t, m.IsZero())
	assert.True(t, Money{Currency: "EUR"}.IsZero())

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"money","currency":"USD","amount":"12.5"}`, string(data))
}

func TestCardHelpers(t *testing.T) {
	assert.True(t, Card{State: CardActive}.IsActive())
	assert.False(t, Card{State: CardInactive}.IsActive())

	details := CardDetails{PAN: "4111111111111111"}
	assert.Equal(t, "************1111", details.MaskedPAN())
	assert.Equal(t, "123", CardDetails{PAN: "123"}.MaskedPAN())

	assert.True(t, PhysicalCardActivationResult{Result: "activated"}.Activated())
	assert.False(t, PhysicalCardActivationResult{Result: "error"}.Activated())
}

func TestTransactionHelpers(t *testing.T) {
	tests := []struct {
		name     string
		txn      Transaction
		declined bool
		pending  bool
		merchant string
	}{
		{
			name:     "declined by type",
			txn:      Transaction{TransactionType: TransactionDecline, Description: "desc"},
			declined: true,
			merchant: "desc",
		},
		{
			name:     "declined by state",
			txn:      Transaction{State: TransactionStateDeclined, Merchant: &Merchant{Name: "Shop"}},
			declined: true,
			merchant: "Shop",
		},
		{
			name:     "pending",
			txn:      Transaction{TransactionType: TransactionPurchase, State: TransactionStatePending, Store: &Store{Name: "Kiosk"}},
			pending:  true,
			merchant: "Kiosk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.declined, tt.txn.IsDeclined())
			assert.Equal(t, tt.pending, tt.txn.IsPending())
			assert.Equal(t, tt.merchant, tt.txn.MerchantName())
		})
	}
}

func TestUserDataPoint(t *testing.T) {
	user := User{UserID: "u1", UserData: NewList(
		PersonalName{FirstName: "Jane"},
		Email{Email: "jane@example.com"},
	)}

	dp, ok := user.DataPoint(KindEmail)
	require.True(t, ok)
	assert.Equal(t, "jane@example.com", dp.(Email).Email)

	name, ok := user.Name()
	require.True(t, ok)
	assert.Equal(t, "Jane", name.String())

	_, ok = user.Phone()
	assert.False(t, ok)
}

func TestApplicationNextActionType(t *testing.T) {
	assert.Equal(t, ActionUnknown, CardApplication{}.NextActionType())
	app := CardApplication{NextAction: WorkflowAction{ActionType: ActionSelectBalanceStore}}
	assert.Equal(t, ActionSelectBalanceStore, app.NextActionType())
	assert.True(t, Verification{Status: VerificationPassed}.IsPassed())
}

func TestStatementsPeriod(t *testing.T) {
	period := MonthlyStatementsPeriod{
		Start: Month{Month: 11, Year: 2023},
		End:   Month{Month: 2, Year: 2024},
	}

	assert.True(t, period.Contains(Month{Month: 11, Year: 2023}))
	assert.True(t, period.Contains(Month{Month: 1, Year: 2024}))
	assert.True(t, period.Contains(Month{Month: 2, Year: 2024}))
	assert.False(t, period.Contains(Month{Month: 10, Year: 2023}))
	assert.False(t, period.Contains(Month{Month: 3, Year: 2024}))
	assert.Equal(t, "2024-02", period.End.String())
}

func TestBackendError(t *testing.T) {
	assert.Equal(t, "backend error 90191: Invalid phone", BackendError{Code: 90191, Message: "Invalid phone"}.Error())
	assert.Equal(t, "backend error 1", BackendError{Code: 1}.Error())
}
