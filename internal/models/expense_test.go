package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{name: "plain date", input: "2024-03-15", want: NewDate(2024, time.March, 15)},
		{name: "surrounding whitespace", input: " 2024-03-15 ", want: NewDate(2024, time.March, 15)},
		{name: "utc timestamp", input: "2024-03-15T23:30:00Z", want: NewDate(2024, time.March, 15)},
		{name: "offset keeps local date", input: "2024-03-15T01:00:00+05:30", want: NewDate(2024, time.March, 15)},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "yesterday", wantErr: true},
		{name: "impossible day", input: "2024-02-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %s, want %s", got, tt.want)
		})
	}
}

func TestDateDaysUntil(t *testing.T) {
	start := NewDate(2024, time.January, 5)
	assert.Equal(t, 0, start.DaysUntil(start))
	assert.Equal(t, 36, start.DaysUntil(NewDate(2024, time.February, 10)))
	// DST transitions do not matter because dates are held in UTC.
	assert.Equal(t, 365, NewDate(2023, time.March, 1).DaysUntil(NewDate(2024, time.February, 29)))
	assert.Equal(t, -36, NewDate(2024, time.February, 10).DaysUntil(start))

	// Spans longer than time.Duration can hold.
	first, err := ParseDate("0001-01-01")
	require.NoError(t, err)
	last, err := ParseDate("9999-12-31")
	require.NoError(t, err)
	assert.Equal(t, 3652058, first.DaysUntil(last))
}

func TestValidAmount(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  bool
	}{
		{"one cent", 0.01, true},
		{"regular", 42.5, true},
		{"maximum", 1e9, true},
		{"zero", 0, false},
		{"negative", -5, false},
		{"rounds to zero", 0.004, false},
		{"above maximum", 1e9 + 0.01, false},
		{"far above int64 cents", 1e17, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidAmount(tt.input))
		})
	}
	assert.Equal(t, Amount(100_000_000_000), MaxAmount)
}

func TestAmountJSON(t *testing.T) {
	var a Amount
	require.NoError(t, json.Unmarshal([]byte(`42.5`), &a))
	assert.Equal(t, Amount(4250), a)

	require.NoError(t, json.Unmarshal([]byte(`0.125`), &a))
	assert.Equal(t, Amount(13), a)

	out, err := json.Marshal(Amount(4250))
	require.NoError(t, err)
	assert.JSONEq(t, `42.5`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`"42.50"`), &a))
	assert.Equal(t, "42.50", Amount(4250).String())
}

func TestExpenseJSONShape(t *testing.T) {
	e := Expense{
		ID:          "abc",
		Amount:      AmountFromFloat(42.50),
		Category:    CategoryFood,
		Description: "lunch",
		Date:        NewDate(2024, time.March, 15),
		OwnerID:     "owner-1",
	}

	out, err := json.Marshal(e)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, 42.5, decoded["amount"])
	assert.Equal(t, "Food", decoded["category"])
	assert.Equal(t, "2024-03-15", decoded["date"])
	assert.Equal(t, "owner-1", decoded["creatorId"])
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid(), string(c))
	}
	assert.False(t, Category("food").Valid())
	assert.False(t, Category("Groceries").Valid())
	assert.Equal(t, "Food, Transport, Entertainment, Health, Utilities, Other", CategoryNames())
}

func TestUserSanitized(t *testing.T) {
	u := User{ID: "1", Email: "a@b.co", PasswordHash: "secret"}
	clean := u.Sanitized()
	assert.Empty(t, clean.PasswordHash)
	assert.Equal(t, "secret", u.PasswordHash)

	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret")
}
