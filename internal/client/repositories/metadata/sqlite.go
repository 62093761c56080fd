package metadata

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pricetool/priceopt/internal/dbx"
)

const (
	sqlSelectValue = `SELECT value FROM metadata WHERE key = ?`
	sqlSelectAll   = `SELECT key, value FROM metadata`
	sqlUpsert      = `INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	sqlDeleteKey = `DELETE FROM metadata WHERE key = ?`
	sqlDeleteAll = `DELETE FROM metadata`
)

// SQLiteRepository keeps the credential and the cached profile in the local
// database's metadata table. It accepts a transaction as well as the *sql.DB.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) fail(op, key string, err error) error {
	return &StoreError{Backend: "sqlite", Op: op, Key: key, Err: err}
}

func (r *SQLiteRepository) exec(ctx context.Context, op, key, query string, args ...any) error {
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return r.fail(op, key, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	switch err := r.db.QueryRowContext(ctx, sqlSelectValue, key).Scan(&value); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, r.fail("get", key, err)
	}
	return value, nil
}

// Set stores value under key. A nil value is stored as empty, the column
// being NOT NULL.
func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	return r.exec(ctx, "set", key, sqlUpsert, key, value)
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	return r.exec(ctx, "delete", key, sqlDeleteKey, key)
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	return r.exec(ctx, "clear", "", sqlDeleteAll)
}

func (r *SQLiteRepository) List(ctx context.Context) (map[string][]byte, error) {
	rows, err := r.db.QueryContext(ctx, sqlSelectAll)
	if err != nil {
		return nil, r.fail("list", "", err)
	}
	defer rows.Close()

	pairs := map[string][]byte{}
	for rows.Next() {
		var k string
		var v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return nil, r.fail("list", "", err)
		}
		pairs[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("list", "", err)
	}
	return pairs, nil
}
