// Package testutil provides testing utilities for database integration tests.
//
// Environment Variables:
//
// Integration tests run only when a test database is configured:
//   - TEST_POSTGRES_DSN: PostgreSQL connection string
//   - TEST_MYSQL_DSN: MySQL connection string
//
// Tests calling SetupPostgresDB/SetupMySQLDB are skipped when the
// corresponding variable is unset.
//
// Database Setup:
//
//	db := testutil.SetupPostgresDB(t)
//	defer testutil.TeardownDB(t, db)
//	defer testutil.CleanupPostgresDB(t, db)
//
// Migration Path:
//
// Migrations are automatically discovered by walking up from the current
// working directory until a "migrations/{dbType}" directory is found.
package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

// SetupPostgresDB creates a new PostgreSQL database connection and runs migrations.
// The test is skipped when TEST_POSTGRES_DSN is unset.
func SetupPostgresDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set, skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err, "failed to connect to postgres")

	err = db.Ping()
	require.NoError(t, err, "failed to ping postgres database")

	runPostgresMigrations(t, db)
	CleanupPostgresDB(t, db)

	return db
}

// SetupMySQLDB creates a new MySQL database connection and runs migrations.
// The test is skipped when TEST_MYSQL_DSN is unset.
func SetupMySQLDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set, skipping mysql integration test")
	}

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err, "failed to connect to mysql")

	err = db.Ping()
	require.NoError(t, err, "failed to ping mysql database")

	runMySQLMigrations(t, db)
	CleanupMySQLDB(t, db)

	return db
}

// TeardownDB closes the database connection.
func TeardownDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if db != nil {
		err := db.Close()
		require.NoError(t, err, "failed to close database connection")
	}
}

// CleanupPostgresDB truncates all tables in the PostgreSQL database.
func CleanupPostgresDB(t *testing.T, db *sql.DB) {
	t.Helper()

	// Truncate tables in reverse order to respect foreign key constraints
	_, err := db.Exec(
		"TRUNCATE TABLE access_tokens, authorization_codes, oauth_clients, kms_keys, acl_rules RESTART IDENTITY CASCADE",
	)
	require.NoError(t, err, "failed to truncate postgres tables")
}

// CleanupMySQLDB truncates all tables in the MySQL database.
func CleanupMySQLDB(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.Exec("SET FOREIGN_KEY_CHECKS = 0")
	require.NoError(t, err, "failed to disable foreign key checks")

	for _, table := range []string{"access_tokens", "authorization_codes", "oauth_clients", "kms_keys", "acl_rules"} {
		_, err = db.Exec("TRUNCATE TABLE " + table)
		require.NoError(t, err, "failed to truncate "+table+" table")
	}

	_, err = db.Exec("SET FOREIGN_KEY_CHECKS = 1")
	require.NoError(t, err, "failed to enable foreign key checks")
}

// runPostgresMigrations applies all pending PostgreSQL migrations for the test database.
func runPostgresMigrations(t *testing.T, db *sql.DB) {
	t.Helper()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	require.NoError(t, err, "failed to create postgres driver")

	migrationsPath, err := getMigrationsPath("postgres")
	require.NoError(t, err, "failed to find postgres migrations path")

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	require.NoError(t, err, "failed to create migrate instance for postgres")

	// Note: We intentionally do NOT close the migrate instance here because we're using
	// WithInstance() with an existing database connection that we don't own. Closing the
	// migrate instance would close the underlying database connection, which is managed
	// by the caller. The file source driver will be garbage collected automatically.

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, fmt.Sprintf("failed to run postgres migrations from %s", migrationsPath))
	}
}

// runMySQLMigrations applies all pending MySQL migrations for the test database.
func runMySQLMigrations(t *testing.T, db *sql.DB) {
	t.Helper()

	driver, err := mysql.WithInstance(db, &mysql.Config{})
	require.NoError(t, err, "failed to create mysql driver")

	migrationsPath, err := getMigrationsPath("mysql")
	require.NoError(t, err, "failed to find mysql migrations path")

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"mysql",
		driver,
	)
	require.NoError(t, err, "failed to create migrate instance for mysql")

	// Note: We intentionally do NOT close the migrate instance here because we're using
	// WithInstance() with an existing database connection that we don't own. Closing the
	// migrate instance would close the underlying database connection, which is managed
	// by the caller. The file source driver will be garbage collected automatically.

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, fmt.Sprintf("failed to run mysql migrations from %s", migrationsPath))
	}
}

// getMigrationsPath resolves the absolute path to migration files for the specified database type.
// Walks up the directory tree from current working directory to find the migrations folder.
func getMigrationsPath(dbType string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, "migrations", dbType)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("migrations directory for %s not found", dbType)
		}
		dir = parent
	}
}
