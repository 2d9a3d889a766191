package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
)

// TestDatabaseSetup holds the shared connection to the integration database.
type TestDatabaseSetup struct {
	DB *database.DB
}

var (
	setupOnce sync.Once
	shared    *TestDatabaseSetup
	setupErr  error
)

// NewTestDatabase connects to TEST_DATABASE_URL, applies migrations and clears the ledger tables.
// Tests are skipped when the variable is not set.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping PostgreSQL integration test")
	}

	setupOnce.Do(func() {
		if setupErr = database.MigrateUp(dsn); setupErr != nil {
			return
		}
		db, err := database.NewPostgreSQLDB(dsn)
		if err != nil {
			setupErr = fmt.Errorf("failed to connect to test database: %w", err)
			return
		}
		shared = &TestDatabaseSetup{DB: db}
		setupErr = shared.TruncateAllTables(context.Background())
	})
	if setupErr != nil {
		t.Fatalf("test database setup: %v", setupErr)
	}
	return shared
}

// TruncateAllTables deletes every row from the ledger tables.
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"outbox_events",
		"leave_requests",
		"leave_balances",
		"attendance_records",
		"employees",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}
