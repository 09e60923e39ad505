package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/expense-tracker-be/internal/database"
	"github.com/isdelr/expense-tracker-be/internal/models"
)

// ExpensePatch holds the fields of a partial update. Nil fields are left unchanged.
type ExpensePatch struct {
	Amount      *models.Amount
	Category    *models.Category
	Description *string
	Date        *models.Date
}

// ExpenseRepository defines the expense store operations. Every method
// that touches an existing record is scoped by owner.
type ExpenseRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Expense, error)
	Create(ctx context.Context, expense *models.Expense) error
	Update(ctx context.Context, ownerID, id string, patch ExpensePatch) (*models.Expense, error)
	Delete(ctx context.Context, ownerID, id string) (*models.Expense, error)
}

type expenseRepository struct {
	db  *database.DB
	now func() time.Time
}

// NewExpenseRepository creates a new expense repository.
func NewExpenseRepository(db *database.DB) ExpenseRepository {
	return &expenseRepository{db: db, now: time.Now}
}

const expenseColumns = "id, owner_id, amount_cents, category, description, spent_on, created_at, updated_at"

// ListByOwner returns every expense of the owner, most recent date first.
func (r *expenseRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Expense, error) {
	query := r.db.Rebind(`
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE owner_id = ?
		ORDER BY spent_on DESC, created_at DESC`)
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

// Create inserts a new expense, assigning its ID and timestamps.
func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := r.now().UTC()
	expense.CreatedAt = now
	expense.UpdatedAt = now

	query := r.db.Rebind(`
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		expense.ID,
		expense.OwnerID,
		int64(expense.Amount),
		string(expense.Category),
		expense.Description,
		expense.Date.String(),
		database.FormatTimestamp(expense.CreatedAt),
		database.FormatTimestamp(expense.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// Update applies patch to the owner's expense in a single statement and
// returns the updated row. ErrNotFound covers both a missing and a foreign record.
func (r *expenseRepository) Update(ctx context.Context, ownerID, id string, patch ExpensePatch) (*models.Expense, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{database.FormatTimestamp(r.now())}

	if patch.Amount != nil {
		sets = append(sets, "amount_cents = ?")
		args = append(args, int64(*patch.Amount))
	}
	if patch.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, string(*patch.Category))
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Date != nil {
		sets = append(sets, "spent_on = ?")
		args = append(args, patch.Date.String())
	}
	args = append(args, id, ownerID)

	query := r.db.Rebind(`
		UPDATE expenses
		SET ` + strings.Join(sets, ", ") + `
		WHERE id = ? AND owner_id = ?
		RETURNING ` + expenseColumns)
	expense, err := scanExpense(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	return &expense, nil
}

// Delete removes the owner's expense and returns its last state.
func (r *expenseRepository) Delete(ctx context.Context, ownerID, id string) (*models.Expense, error) {
	query := r.db.Rebind(`
		DELETE FROM expenses
		WHERE id = ? AND owner_id = ?
		RETURNING ` + expenseColumns)
	expense, err := scanExpense(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete expense: %w", err)
	}
	return &expense, nil
}

// scanExpense scans a single row into an Expense struct.
func scanExpense(scanner interface{ Scan(...interface{}) error }) (models.Expense, error) {
	var expense models.Expense
	var amountCents int64
	var category, spentOn, createdAt, updatedAt string
	err := scanner.Scan(
		&expense.ID,
		&expense.OwnerID,
		&amountCents,
		&category,
		&expense.Description,
		&spentOn,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return models.Expense{}, err
	}

	expense.Amount = models.Amount(amountCents)
	expense.Category = models.Category(category)
	if expense.Date, err = models.ParseDate(spentOn); err != nil {
		return models.Expense{}, fmt.Errorf("stored date %q: %w", spentOn, err)
	}
	if expense.CreatedAt, err = database.ParseTimestamp(createdAt); err != nil {
		return models.Expense{}, err
	}
	if expense.UpdatedAt, err = database.ParseTimestamp(updatedAt); err != nil {
		return models.Expense{}, err
	}
	return expense, nil
}
