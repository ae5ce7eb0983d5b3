package mysql

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"foodfacts/internal/config"
)

func NewConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name,
	)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

const createProductCacheTable = `
	CREATE TABLE IF NOT EXISTS ProductCache (
		code VARCHAR(32) NOT NULL PRIMARY KEY,
		payload JSON NOT NULL,
		fetchedAt DATETIME(3) NOT NULL,
		INDEX idx_fetched (fetchedAt)
	)`

// Migrate creates the cache table when it does not exist yet.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(createProductCacheTable); err != nil {
		return fmt.Errorf("creating ProductCache table: %w", err)
	}
	return nil
}
