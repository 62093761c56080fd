package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pricetool/priceopt/internal/client/client"
	"github.com/pricetool/priceopt/internal/client/models"
	"github.com/pricetool/priceopt/internal/logging"
)

// Snapshotter persists the last fetched catalogue. products.Store
// implements it.
type Snapshotter interface {
	Save(ctx context.Context, items []models.Product, savedAt time.Time) error
	Load(ctx context.Context) ([]models.Product, time.Time, error)
}

// Listing is the result of ProductService.List.
type Listing struct {
	Products []models.Product
	// Offline is set when the server was unreachable and Products come from
	// the local snapshot taken at SavedAt.
	Offline bool
	SavedAt time.Time
}

// ProductService wraps the product endpoints.
type ProductService interface {
	List(ctx context.Context) (Listing, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, in models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id int64, in models.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
	Forecast(ctx context.Context) ([]models.Product, error)
	Optimized(ctx context.Context, category string) ([]models.Product, error)
}

type productService struct {
	client   client.Client
	snapshot Snapshotter
	log      logging.Logger
	now      func() time.Time
}

// NewProductService constructs a ProductService. snapshot may be nil, which
// disables the offline fallback.
func NewProductService(c client.Client, snapshot Snapshotter, log logging.Logger) ProductService {
	return &productService{
		client:   c,
		snapshot: snapshot,
		log:      log.With("service", "products"),
		now:      time.Now,
	}
}

// List fetches the catalogue. A successful fetch refreshes the snapshot; when
// the server is unavailable a non-empty snapshot is returned instead.
func (s *productService) List(ctx context.Context) (Listing, error) {
	items, err := s.client.ListProducts(ctx, client.ProductFilter{})
	if err == nil {
		if s.snapshot != nil {
			if serr := s.snapshot.Save(ctx, items, s.now()); serr != nil {
				s.log.Warn(ctx, "snapshot save failed", "error", serr)
			}
		}
		return Listing{Products: items}, nil
	}

	if !errors.Is(err, client.ErrUnavailable) || s.snapshot == nil {
		return Listing{}, fmt.Errorf("list products: %w", err)
	}

	cached, savedAt, lerr := s.snapshot.Load(ctx)
	if lerr != nil || savedAt.IsZero() {
		if lerr != nil {
			s.log.Warn(ctx, "snapshot load failed", "error", lerr)
		}
		return Listing{}, fmt.Errorf("list products: %w", err)
	}
	s.log.Info(ctx, "serving products from snapshot", "count", len(cached), "saved_at", savedAt)
	return Listing{Products: cached, Offline: true, SavedAt: savedAt}, nil
}

func (s *productService) Get(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.client.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (s *productService) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	p, err := s.client.CreateProduct(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.log.Info(ctx, "product created", "product_id", p.ID)
	return p, nil
}

func (s *productService) Update(ctx context.Context, id int64, in models.ProductInput) (*models.Product, error) {
	p, err := s.client.UpdateProduct(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	s.log.Info(ctx, "product updated", "product_id", id)
	return p, nil
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	if err := s.client.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	s.log.Info(ctx, "product deleted", "product_id", id)
	return nil
}

func (s *productService) Forecast(ctx context.Context) ([]models.Product, error) {
	items, err := s.client.Forecast(ctx)
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	return items, nil
}

func (s *productService) Optimized(ctx context.Context, category string) ([]models.Product, error) {
	items, err := s.client.Optimized(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("optimized prices: %w", err)
	}
	return items, nil
}
