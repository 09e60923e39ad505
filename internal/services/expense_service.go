package services

import (
	"context"
	"errors"
	"time"

	"github.com/isdelr/expense-tracker-be/internal/analytics"
	"github.com/isdelr/expense-tracker-be/internal/models"
	"github.com/isdelr/expense-tracker-be/internal/notify"
	"github.com/isdelr/expense-tracker-be/internal/repository"
	"github.com/rs/zerolog/log"
)

// ExpenseInput carries the client-supplied fields of an expense. A nil
// field was not sent; on update it is left unchanged.
type ExpenseInput struct {
	Amount      *float64 `json:"amount"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
}

// ExpenseServiceProvider defines the interface for expense services.
type ExpenseServiceProvider interface {
	List(ctx context.Context, ownerID string) ([]models.Expense, error)
	Create(ctx context.Context, ownerID string, input ExpenseInput) (*models.Expense, error)
	Update(ctx context.Context, ownerID, expenseID string, input ExpenseInput) (*models.Expense, error)
	Delete(ctx context.Context, ownerID, expenseID string) (*models.Expense, error)
	Summary(ctx context.Context, ownerID string, now time.Time) (analytics.Summary, error)
}

// ExpenseService provides owner-scoped expense management.
type ExpenseService struct {
	expenses repository.ExpenseRepository
	notifier notify.Notifier
}

// NewExpenseService creates a new ExpenseService. A nil notifier disables change events.
func NewExpenseService(expenses repository.ExpenseRepository, notifier notify.Notifier) *ExpenseService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &ExpenseService{expenses: expenses, notifier: notifier}
}

// List returns all of the owner's expenses, most recent first.
func (s *ExpenseService) List(ctx context.Context, ownerID string) ([]models.Expense, error) {
	expenses, err := s.expenses.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, &StorageError{Op: "list expenses", Err: err}
	}
	return expenses, nil
}

// Create validates the input and stores a new expense for the owner.
func (s *ExpenseService) Create(ctx context.Context, ownerID string, input ExpenseInput) (*models.Expense, error) {
	rules := createExpenseRules{Amount: input.Amount, Category: input.Category, Date: input.Date}
	if err := check(rules, expenseMessage); err != nil {
		return nil, err
	}

	patch := toPatch(input)
	expense := &models.Expense{
		OwnerID:  ownerID,
		Amount:   *patch.Amount,
		Category: *patch.Category,
		Date:     *patch.Date,
	}
	if patch.Description != nil {
		expense.Description = *patch.Description
	}

	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, &StorageError{Op: "create expense", Err: err}
	}

	s.publish(ctx, notify.ExpenseCreated, *expense)
	return expense, nil
}

// Update applies the supplied fields to the owner's expense. Input is
// validated before the record is looked up.
func (s *ExpenseService) Update(ctx context.Context, ownerID, expenseID string, input ExpenseInput) (*models.Expense, error) {
	rules := updateExpenseRules{Amount: input.Amount, Category: input.Category, Date: input.Date}
	if err := check(rules, expenseMessage); err != nil {
		return nil, err
	}

	expense, err := s.expenses.Update(ctx, ownerID, expenseID, toPatch(input))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Message: msgExpenseNotFound}
	}
	if err != nil {
		return nil, &StorageError{Op: "update expense", Err: err}
	}

	s.publish(ctx, notify.ExpenseUpdated, *expense)
	return expense, nil
}

// Delete removes the owner's expense and returns its last state.
func (s *ExpenseService) Delete(ctx context.Context, ownerID, expenseID string) (*models.Expense, error) {
	expense, err := s.expenses.Delete(ctx, ownerID, expenseID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Message: msgExpenseNotFound}
	}
	if err != nil {
		return nil, &StorageError{Op: "delete expense", Err: err}
	}

	s.publish(ctx, notify.ExpenseDeleted, *expense)
	return expense, nil
}

// Summary recomputes the owner's spending analytics from the full list.
func (s *ExpenseService) Summary(ctx context.Context, ownerID string, now time.Time) (analytics.Summary, error) {
	expenses, err := s.List(ctx, ownerID)
	if err != nil {
		return analytics.Summary{}, err
	}
	return analytics.Summarize(expenses, now), nil
}

func (s *ExpenseService) publish(ctx context.Context, eventType notify.EventType, expense models.Expense) {
	if err := s.notifier.Notify(ctx, notify.NewExpenseEvent(eventType, expense)); err != nil {
		log.Error().Err(err).
			Str("event", string(eventType)).
			Str("expense_id", expense.ID).
			Msg("Failed to notify expense change")
	}
}

// toPatch converts already validated input into store values.
func toPatch(input ExpenseInput) repository.ExpensePatch {
	var patch repository.ExpensePatch
	if input.Amount != nil {
		amount := models.AmountFromFloat(*input.Amount)
		patch.Amount = &amount
	}
	if input.Category != nil {
		category := models.Category(*input.Category)
		patch.Category = &category
	}
	if input.Description != nil {
		description := *input.Description
		patch.Description = &description
	}
	if input.Date != nil {
		// Validated by the expensedate rule.
		date, _ := models.ParseDate(*input.Date)
		patch.Date = &date
	}
	return patch
}
