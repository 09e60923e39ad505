package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/isdelr/expense-tracker-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []ExpenseEvent
	err    error
}

func (r *recorder) Notify(_ context.Context, event ExpenseEvent) error {
	r.events = append(r.events, event)
	return r.err
}

func TestMultiDeliversToAll(t *testing.T) {
	first := &recorder{}
	second := &recorder{err: errors.New("broker down")}
	third := &recorder{}

	event := NewExpenseEvent(ExpenseCreated, models.Expense{ID: "e1", OwnerID: "u1"})
	err := Multi{first, second, third, Nop{}}.Notify(context.Background(), event)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Len(t, first.events, 1)
	assert.Len(t, third.events, 1)
	assert.Equal(t, "u1", third.events[0].OwnerID)
}

func TestMultiEmpty(t *testing.T) {
	assert.NoError(t, Multi{}.Notify(context.Background(), ExpenseEvent{}))
}

func TestEventJSON(t *testing.T) {
	event := NewExpenseEvent(ExpenseDeleted, models.Expense{
		ID:       "e1",
		OwnerID:  "u1",
		Amount:   1250,
		Category: models.CategoryFood,
		Date:     models.NewDate(2024, 3, 5),
	})

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "expense.deleted", decoded["type"])
	assert.Equal(t, "u1", decoded["ownerId"])
	expense := decoded["expense"].(map[string]interface{})
	assert.Equal(t, 12.5, expense["amount"])
	assert.Equal(t, "2024-03-05", expense["date"])
}
