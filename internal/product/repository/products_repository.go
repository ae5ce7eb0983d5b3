package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"foodfacts/internal/domain"
	apperrors "foodfacts/internal/errors"
)

// MySQLRepository stores formatted products keyed by barcode.
type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func (r *MySQLRepository) FindByCode(ctx context.Context, code string) (*domain.CachedProduct, error) {
	query := `
		SELECT code, payload, fetchedAt
		FROM ProductCache
		WHERE code = ?`

	var (
		storedCode string
		payload    []byte
		fetchedAt  time.Time
	)
	err := r.db.QueryRowContext(ctx, query, code).Scan(&storedCode, &payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("cached product %s not found", code))
	}
	if err != nil {
		return nil, fmt.Errorf("querying cached product: %w", err)
	}

	var product domain.FormattedProduct
	if err := json.Unmarshal(payload, &product); err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("decoding cached product %s", storedCode), err)
	}

	return &domain.CachedProduct{
		Product:   &product,
		FetchedAt: fetchedAt,
	}, nil
}

func (r *MySQLRepository) Upsert(ctx context.Context, code string, product *domain.FormattedProduct, fetchedAt time.Time) error {
	payload, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("encoding product %s: %w", code, err)
	}

	query := `
		INSERT INTO ProductCache (code, payload, fetchedAt)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE payload = VALUES(payload), fetchedAt = VALUES(fetchedAt)`

	if _, err := r.db.ExecContext(ctx, query, code, payload, fetchedAt); err != nil {
		return fmt.Errorf("upserting cached product: %w", err)
	}

	return nil
}

// DeleteOlderThan evicts rows fetched before cutoff and reports how many went.
func (r *MySQLRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ProductCache WHERE fetchedAt < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting stale cached products: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}

	return n, nil
}
