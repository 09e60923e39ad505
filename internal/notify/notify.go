// Package notify fans expense changes out to interested listeners.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/isdelr/expense-tracker-be/internal/models"
)

// EventType names a kind of expense change.
type EventType string

const (
	ExpenseCreated EventType = "expense.created"
	ExpenseUpdated EventType = "expense.updated"
	ExpenseDeleted EventType = "expense.deleted"
)

// ExpenseEvent describes one committed change to an owner's expenses.
// For deletions Expense holds the removed record's last state.
type ExpenseEvent struct {
	Type       EventType      `json:"type"`
	OwnerID    string         `json:"ownerId"`
	Expense    models.Expense `json:"expense"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// NewExpenseEvent stamps a change with the current time.
func NewExpenseEvent(eventType EventType, expense models.Expense) ExpenseEvent {
	return ExpenseEvent{
		Type:       eventType,
		OwnerID:    expense.OwnerID,
		Expense:    expense,
		OccurredAt: time.Now().UTC(),
	}
}

// Notifier is told about every committed expense change.
type Notifier interface {
	Notify(ctx context.Context, event ExpenseEvent) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Notify(context.Context, ExpenseEvent) error { return nil }

// Multi delivers an event to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event ExpenseEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
