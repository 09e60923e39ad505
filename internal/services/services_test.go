package services

import (
	"context"
	"sync"
	"testing"

	"github.com/isdelr/expense-tracker-be/internal/database"
	"github.com/isdelr/expense-tracker-be/internal/notify"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(database.DriverSQLite, ":memory:")
	require.NoError(t, err, "failed to create test database")
	require.NoError(t, database.Migrate(db), "failed to migrate test database")
	t.Cleanup(func() { db.Close() })
	return db
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.ExpenseEvent
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, event notify.ExpenseEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func (n *recordingNotifier) Events() []notify.ExpenseEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.ExpenseEvent(nil), n.events...)
}

func ptr[T any](v T) *T { return &v }
