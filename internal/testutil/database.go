package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"foodfacts/internal/infrastructure/mysql"
)

// SetupTestDB opens the integration database.
// Expects a MySQL instance on localhost:3306 with a 'foodfacts_test' schema.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/foodfacts_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.Ping()
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// SetupTestTables creates the tables the repositories need.
func SetupTestTables(t *testing.T, db *sql.DB) {
	if err := mysql.Migrate(db); err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}
}

// CleanupTestDB empties the test tables and closes db.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	if _, err := db.Exec("DELETE FROM ProductCache"); err != nil {
		t.Logf("failed to clean table ProductCache: %v", err)
	}

	db.Close()
}
