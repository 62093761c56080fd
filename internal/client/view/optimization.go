package view

import (
	"context"

	"github.com/pricetool/priceopt/internal/client/services"
)

// OptimizationView drives the pricing optimization page. It is read-only;
// the category filter runs locally over the full optimized list.
type OptimizationView struct {
	*listController
}

func NewOptimizationView(svc services.ProductService, opts ...Option) *OptimizationView {
	o := buildOptions(opts)
	fetch := func(ctx context.Context) (fetchResult, error) {
		items, err := svc.Optimized(ctx, "")
		if err != nil {
			return fetchResult{}, err
		}
		return fetchResult{products: items}, nil
	}
	return &OptimizationView{
		listController: newListController(fetch, "Failed to load optimized prices", o),
	}
}
