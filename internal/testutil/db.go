package testutil

import (
	"path/filepath"
	"testing"

	"github.com/groomdesk/groomdesk/internal/db"
)

// NewTestDB creates a temporary SQLite database with the scheduling schema
// migrated and foreign keys enforced (db.New appends _fk=1 to the DSN). The
// busy timeout keeps handler tests that mix direct seeding with transactional
// booking writes from tripping over transient table locks.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	database, err := db.New(dsn)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}
