// Package testdb provides helpers for database integration tests. Tests that
// use it are skipped unless STUDYKIT_TEST_DATABASE_URL (or DATABASE_URL)
// points at a PostgreSQL instance the tests may migrate. Under CI a missing
// URL fails the test instead.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/studykit/internal/ciutil"
	"github.com/phrazzld/studykit/internal/platform/logger"
	"github.com/phrazzld/studykit/internal/platform/postgres"
	"github.com/phrazzld/studykit/internal/redact"
	"github.com/stretchr/testify/require"
)

// EnvDatabaseURL names the preferred variable holding the integration database URL.
const EnvDatabaseURL = ciutil.EnvTestDatabaseURL

// TestTimeout bounds setup operations against the test database.
const TestTimeout = 10 * time.Second

// GetTestDatabaseURL returns the integration database URL, or "".
func GetTestDatabaseURL() string {
	url, _ := ciutil.TestDatabaseURL(nil)
	return url
}

// ShouldSkipDatabaseTest reports whether no integration database is configured.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}

// GetTestDBWithT opens and migrates the integration database, skipping the
// test when none is configured. The connection is closed on cleanup.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	log, _ := logger.NewTestLogger()
	dbURL, _ := ciutil.TestDatabaseURL(log)
	if dbURL == "" {
		if ciutil.IsCI() {
			t.Fatal(EnvDatabaseURL + " must be set in CI")
		}
		t.Skip(EnvDatabaseURL + " not set - skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, dbURL)
	require.NoError(t, err, "open %s", redact.URL(dbURL))
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, postgres.Migrate(ctx, db, log), "migrate test database")
	return db
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// can share one database without seeing each other's rows.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}
