package metadata

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricetool/priceopt/internal/client/localdb"
	"github.com/pricetool/priceopt/internal/dbx"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := localdb.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// repoContract runs the behaviour every backend must share.
func repoContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()

	t.Run("set then get", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Set(ctx, "token", []byte("abc")))

		v, err := r.Get(ctx, "token")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), v)
	})

	t.Run("missing key is nil nil", func(t *testing.T) {
		r := newRepo(t)
		v, err := r.Get(ctx, "absent")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("set overwrites", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Set(ctx, "user", []byte("old")))
		require.NoError(t, r.Set(ctx, "user", []byte("new")))

		v, err := r.Get(ctx, "user")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), v)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Set(ctx, "token", []byte{1}))
		require.NoError(t, r.Delete(ctx, "token"))
		require.NoError(t, r.Delete(ctx, "token"))

		v, err := r.Get(ctx, "token")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("list and clear", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Set(ctx, "token", []byte{0xAA}))
		require.NoError(t, r.Set(ctx, "user", []byte{0xBB, 0xCC}))

		m, err := r.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string][]byte{"token": {0xAA}, "user": {0xBB, 0xCC}}, m)

		require.NoError(t, r.Clear(ctx))
		m, err = r.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, m)
	})
}

func TestSQLiteRepository_Contract(t *testing.T) {
	repoContract(t, func(t *testing.T) Repository {
		return NewSQLiteRepository(setupDB(t))
	})
}

func TestSQLiteRepository_ErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, getErr := r.Get(ctx, "k")
	_, listErr := r.List(ctx)
	tests := []struct {
		err error
		op  string
		key string
	}{
		{getErr, "get", "k"},
		{r.Set(ctx, "k", []byte("v")), "set", "k"},
		{r.Delete(ctx, "k"), "delete", "k"},
		{r.Clear(ctx), "clear", ""},
		{listErr, "list", ""},
	}
	for _, tt := range tests {
		var serr *StoreError
		require.ErrorAs(t, tt.err, &serr, tt.op)
		assert.Equal(t, "sqlite", serr.Backend)
		assert.Equal(t, tt.op, serr.Op)
		assert.Equal(t, tt.key, serr.Key)
	}
	assert.ErrorContains(t, getErr, `sqlite store get "k"`)
	assert.ErrorContains(t, r.Clear(ctx), "sqlite store clear: ")
}

func TestSQLiteRepository_NilValueStoredAsEmpty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", nil))
	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSQLiteRepository_InsideTransaction(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := NewSQLiteRepository(tx)
		if err := r.Set(ctx, "token", []byte("t")); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	v, err := NewSQLiteRepository(db).Get(ctx, "token")
	require.NoError(t, err)
	assert.Nil(t, v)
}
