package testing

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/reviewbench/internal/db"
	"github.com/vvka-141/reviewbench/internal/testinfra"
	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

// TestConnEnvVar names the variable holding an external test database.
const TestConnEnvVar = "REVIEWBENCH_TEST_CONN"

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		ctx := context.Background()
		container, err := testinfra.StartSimplePostgres(ctx)
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: REVIEWBENCH_TEST_CONN > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(TestConnEnvVar); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", TestConnEnvVar, err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// UniqueName returns prefix followed by a random suffix usable as an identifier.
func UniqueName(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// CreateTestDB creates a fresh database and registers its removal with t.Cleanup.
// Returns the connection config targeting the new database.
func CreateTestDB(t *testing.T, connString string) *reviewbench.ConnectionConfig {
	t.Helper()

	ctx := context.Background()
	dbName := UniqueName("rb_test")

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect for test DB creation: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		t.Fatalf("Failed to create test database %s: %v", dbName, err)
	}

	t.Cleanup(func() { CleanupTestDB(t, connString, dbName) })

	config, err := db.ParseConnectionString(connString)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}
	config.Database = dbName
	return config
}

// CleanupTestDB drops the test database. Safe to call more than once.
func CleanupTestDB(t *testing.T, connString, dbName string) {
	t.Helper()

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Logf("Warning: Failed to connect for cleanup: %v", err)
		return
	}
	defer pool.Close()

	dropQuery := fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", pgx.Identifier{dbName}.Sanitize())
	if _, err := pool.Exec(ctx, dropQuery); err != nil {
		t.Logf("Warning: Failed to drop database %s: %v", dbName, err)
	}
}

// AcquireTestConn opens a one-connection pool on config and acquires it.
// Both are released when the test completes.
func AcquireTestConn(t *testing.T, config *reviewbench.ConnectionConfig) *pgxpool.Conn {
	t.Helper()

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, db.BuildConnectionString(config))
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		t.Fatalf("Failed to acquire connection: %v", err)
	}

	t.Cleanup(func() {
		conn.Release()
		pool.Close()
	})
	return conn
}
