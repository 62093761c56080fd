package view

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/pricetool/priceopt/internal/client/models"
	"github.com/pricetool/priceopt/internal/client/services"
)

// ProductView drives the products page.
type ProductView struct {
	*listController
	svc        services.ProductService
	showDemand atomic.Bool
}

// NewProductView returns a products page controller. Call Load to populate it.
func NewProductView(svc services.ProductService, opts ...Option) *ProductView {
	o := buildOptions(opts)
	fetch := func(ctx context.Context) (fetchResult, error) {
		l, err := svc.List(ctx)
		if err != nil {
			return fetchResult{}, err
		}
		return fetchResult{products: l.Products, offline: l.Offline, savedAt: l.SavedAt}, nil
	}
	return &ProductView{
		listController: newListController(fetch, "Failed to load products", o),
		svc:            svc,
	}
}

// Create validates form and creates the product, then re-fetches. A
// validation error is returned without contacting the server.
func (v *ProductView) Create(ctx context.Context, form models.ProductForm) (*models.Product, error) {
	in, err := models.ParseProductForm(form)
	if err != nil {
		return nil, err
	}
	p, err := v.svc.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	v.refresh(ctx)
	return p, nil
}

// Update validates form and updates product id, then re-fetches.
func (v *ProductView) Update(ctx context.Context, id int64, form models.ProductForm) (*models.Product, error) {
	in, err := models.ParseProductForm(form)
	if err != nil {
		return nil, err
	}
	p, err := v.svc.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	v.refresh(ctx)
	return p, nil
}

// Delete asks confirm and, when it returns true, deletes product id and
// re-fetches. It reports whether the product was deleted.
func (v *ProductView) Delete(ctx context.Context, id int64, confirm func(models.Product) bool) (bool, error) {
	p, ok := v.Record(id)
	if !ok {
		p = models.Product{ID: id}
	}
	if confirm == nil || !confirm(p) {
		return false, nil
	}
	if err := v.svc.Delete(ctx, id); err != nil {
		return false, err
	}
	v.refresh(ctx)
	return true, nil
}

// refresh re-fetches after a mutation. The mutation already succeeded, so
// a failed fetch only shows up in Status.Err.
func (v *ProductView) refresh(ctx context.Context) {
	if err := v.Load(ctx); err != nil {
		v.log.Warn(ctx, "refresh after mutation failed", "error", err)
	}
}

// Forecast returns demand forecasts for the selected products, or for all
// products when nothing is selected.
func (v *ProductView) Forecast(ctx context.Context) ([]models.Product, error) {
	items, err := v.svc.Forecast(ctx)
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	selected := v.Selected()
	if len(selected) == 0 {
		return items, nil
	}
	return slices.DeleteFunc(items, func(p models.Product) bool {
		return !slices.Contains(selected, p.ID)
	}), nil
}

// ToggleDemand flips the demand forecast column and returns the new state.
func (v *ProductView) ToggleDemand() bool {
	for {
		old := v.showDemand.Load()
		if v.showDemand.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// ShowDemand reports whether the demand forecast column is shown.
func (v *ProductView) ShowDemand() bool {
	return v.showDemand.Load()
}
