package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricetool/priceopt/internal/client/client"
	"github.com/pricetool/priceopt/internal/client/models"
	"github.com/pricetool/priceopt/internal/logging"
)

func items() []models.Product {
	return []models.Product{{ID: 1, Name: "Widget"}, {ID: 2, Name: "Gadget"}}
}

func TestProductService_ListRefreshesSnapshot(t *testing.T) {
	fc := &fakeClient{ListRet: items()}
	snap := &memSnapshot{}
	svc := NewProductService(fc, snap, logging.Nop())

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.False(t, got.Offline)
	assert.Len(t, got.Products, 2)
	assert.Equal(t, 1, snap.saves)
	assert.Equal(t, items(), snap.items)
}

func TestProductService_ListFallsBackWhenUnavailable(t *testing.T) {
	at := time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC)
	fc := &fakeClient{ListErr: fmt.Errorf("%w: dial tcp: refused", client.ErrUnavailable)}
	snap := &memSnapshot{items: items(), savedAt: at}
	svc := NewProductService(fc, snap, logging.Nop())

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Offline)
	assert.Equal(t, at, got.SavedAt)
	assert.Equal(t, items(), got.Products)
}

func TestProductService_ListErrors(t *testing.T) {
	unavailable := fmt.Errorf("%w: refused", client.ErrUnavailable)

	tests := []struct {
		name string
		err  error
		snap Snapshotter
	}{
		{name: "unauthorized is not masked", err: &client.APIError{Status: 401}, snap: &memSnapshot{items: items(), savedAt: time.Now()}},
		{name: "no snapshot store", err: unavailable, snap: nil},
		{name: "empty snapshot", err: unavailable, snap: &memSnapshot{}},
		{name: "snapshot load fails", err: unavailable, snap: &memSnapshot{loadErr: errors.New("disk"), savedAt: time.Now()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewProductService(&fakeClient{ListErr: tt.err}, tt.snap, logging.Nop())
			_, err := svc.List(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestProductService_SnapshotSaveFailureIsNotFatal(t *testing.T) {
	fc := &fakeClient{ListRet: items()}
	svc := NewProductService(fc, &memSnapshot{saveErr: errors.New("readonly")}, logging.Nop())

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, got.Products, 2)
}

func TestProductService_Mutations(t *testing.T) {
	p := &models.Product{ID: 5, Name: "Widget"}
	fc := &fakeClient{MutateRet: p, GetRet: p, OptRet: items()}
	svc := NewProductService(fc, nil, logging.Nop())
	ctx := context.Background()

	_, err := svc.Create(ctx, models.ProductInput{Name: "Widget"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, 5, models.ProductInput{Name: "Widget"})
	require.NoError(t, err)
	_, err = svc.Get(ctx, 5)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, 5))
	_, err = svc.Forecast(ctx)
	require.NoError(t, err)
	got, err := svc.Optimized(ctx, "Tools")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "Tools", fc.LastCategory)

	assert.Equal(t, []string{"create", "update", "get", "delete", "forecast", "optimized"}, fc.Calls)
}

func TestProductService_ErrorsAreWrapped(t *testing.T) {
	notFound := &client.APIError{Status: 404, Detail: "Product not found"}
	fc := &fakeClient{MutateErr: notFound, DeleteErr: notFound}
	svc := NewProductService(fc, nil, logging.Nop())

	err := svc.Delete(context.Background(), 7)
	require.ErrorIs(t, err, client.ErrNotFound)
	assert.Contains(t, err.Error(), "delete product 7")

	_, err = svc.Update(context.Background(), 7, models.ProductInput{})
	assert.ErrorIs(t, err, client.ErrNotFound)
}
