package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		input     string
		wantMonth time.Month
		wantYear  int
		wantErr   bool
	}{
		{input: "2024-02", wantMonth: time.February, wantYear: 2024},
		{input: "2023-11", wantMonth: time.November, wantYear: 2023},
		{input: "2024-13", wantErr: true},
		{input: "Feb 2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			month, year, err := parseMonth(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMonth, month)
			assert.Equal(t, tt.wantYear, year)
		})
	}

	month, year, err := parseMonth("")
	require.NoError(t, err)
	assert.Equal(t, time.Now().Month(), month)
	assert.Equal(t, time.Now().Year(), year)
}

func TestParseDay(t *testing.T) {
	day, err := parseDay("2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), day)

	day, err = parseDay("")
	require.NoError(t, err)
	assert.True(t, day.IsZero())

	_, err = parseDay("31/01/2024")
	assert.Error(t, err)
}

func TestMasking(t *testing.T) {
	assert.Equal(t, "************1111", maskPAN("4111111111111111"))
	assert.Equal(t, "123", maskPAN("123"))

	assert.Equal(t, "(none)", redact(""))
	assert.Equal(t, "****", redact("short"))
	assert.Equal(t, "tok_...cdef", redact("tok_0123456789abcdef"))
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"config"}, {"user"}, {"cards"}, {"logout"}, {"kinds"}, {"statements"},
		{"transactions"}, {"version"}, {"update"},
		{"card", "details"}, {"card", "lock"}, {"card", "unlock"},
		{"card", "balance"}, {"card", "spending"}, {"card", "activate"},
		{"verify", "phone"}, {"verify", "email"}, {"verify", "finish"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
