package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/expense-tracker-be/internal/database"
	"github.com/isdelr/expense-tracker-be/internal/models"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique key.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines the credential store operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type userRepository struct {
	db  *database.DB
	now func() time.Time
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{db: db, now: time.Now}
}

const userColumns = "id, first_name, last_name, email, password_hash, created_at, updated_at"

// Create inserts a new user, assigning its ID and timestamps.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := r.now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := r.db.Rebind(`
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		database.FormatTimestamp(user.CreatedAt),
		database.FormatTimestamp(user.UpdatedAt),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail finds a user by email, including the password hash.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := r.db.Rebind("SELECT " + userColumns + " FROM users WHERE email = ?")
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// FindByID finds a user by ID.
func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := r.db.Rebind("SELECT " + userColumns + " FROM users WHERE id = ?")
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var createdAt, updatedAt string
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.CreatedAt, err = database.ParseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if user.UpdatedAt, err = database.ParseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}
