// Package products keeps a local snapshot of the last product list fetched
// from the API so the catalogue can still be browsed while offline.
package products

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pricetool/priceopt/internal/client/models"
	"github.com/pricetool/priceopt/internal/dbx"
)

// Repository reads and replaces the snapshot.
type Repository interface {
	Replace(ctx context.Context, items []models.Product, savedAt time.Time) error
	All(ctx context.Context) ([]models.Product, error)
	SavedAt(ctx context.Context) (time.Time, error)
}

// SQLiteRepository implements Repository on a DBTX. Replace is not atomic by
// itself; use Store, which wraps it in a transaction.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Replace drops the current snapshot and inserts items, preserving order.
func (r *SQLiteRepository) Replace(ctx context.Context, items []models.Product, savedAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}

	stamp := savedAt.UTC().Format(time.RFC3339Nano)
	for i, p := range items {
		payload, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode product %d: %w", p.ID, err)
		}
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO products (product_id, position, payload, saved_at) VALUES (?, ?, ?, ?)`,
			p.ID, i, string(payload), stamp)
		if err != nil {
			return fmt.Errorf("insert product %d: %w", p.ID, err)
		}
	}
	return nil
}

// All returns the snapshot in the order it was saved.
func (r *SQLiteRepository) All(ctx context.Context) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT payload FROM products ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	result := []models.Product{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		var p models.Product
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return result, nil
}

// SavedAt returns when the snapshot was written, or the zero time when there
// is none.
func (r *SQLiteRepository) SavedAt(ctx context.Context) (time.Time, error) {
	var stamp string
	err := r.db.QueryRowContext(ctx, `SELECT saved_at FROM products LIMIT 1`).Scan(&stamp)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("select snapshot time: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse snapshot time: %w", err)
	}
	return t, nil
}

// Store replaces the snapshot atomically.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save replaces the snapshot with items inside one transaction.
func (s *Store) Save(ctx context.Context, items []models.Product, savedAt time.Time) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return NewSQLiteRepository(tx).Replace(ctx, items, savedAt)
	})
}

// Load returns the snapshot and when it was taken.
func (s *Store) Load(ctx context.Context) ([]models.Product, time.Time, error) {
	repo := NewSQLiteRepository(s.db)
	items, err := repo.All(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	at, err := repo.SavedAt(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	return items, at, nil
}
