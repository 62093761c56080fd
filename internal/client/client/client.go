package client

import (
	"context"

	"github.com/pricetool/priceopt/internal/client/models"
)

// ProductFilter narrows GET /api/products on the server side. The terminal
// client filters locally and normally leaves it empty.
type ProductFilter struct {
	Search   string
	Category string
}

// Client is the Price Optimization API contract used by the services.
type Client interface {
	Close() error
	Ping(ctx context.Context) error

	Register(ctx context.Context, form models.RegisterForm) (*models.AuthResult, error)
	Login(ctx context.Context, form models.LoginForm) (*models.AuthResult, error)
	VerifyEmail(ctx context.Context, token string) (string, error)
	Me(ctx context.Context) (*models.User, error)

	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, in models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	Forecast(ctx context.Context) ([]models.Product, error)
	Optimized(ctx context.Context, category string) ([]models.Product, error)
}

// TokenSource supplies the bearer token for outgoing requests. An empty
// token sends the request unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}
