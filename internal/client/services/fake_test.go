package services

import (
	"context"
	"time"

	"github.com/pricetool/priceopt/internal/client/client"
	"github.com/pricetool/priceopt/internal/client/models"
)

// fakeClient implements client.Client for unit tests.
type fakeClient struct {
	AuthRes   *models.AuthResult
	AuthErr   error
	VerifyMsg string
	VerifyErr error
	MeRet     *models.User
	MeErr     error
	PingErr   error
	Closed    bool

	ListRet   []models.Product
	ListErr   error
	GetRet    *models.Product
	MutateRet *models.Product
	MutateErr error
	DeleteErr error
	ForeRet   []models.Product
	OptRet    []models.Product
	OptErr    error

	LastPassword []byte
	LastCategory string
	Calls        []string
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Close() error {
	f.Closed = true
	return nil
}

func (f *fakeClient) Ping(context.Context) error {
	f.Calls = append(f.Calls, "ping")
	return f.PingErr
}

func (f *fakeClient) Me(context.Context) (*models.User, error) {
	f.Calls = append(f.Calls, "me")
	return f.MeRet, f.MeErr
}

func (f *fakeClient) Register(_ context.Context, form models.RegisterForm) (*models.AuthResult, error) {
	f.Calls = append(f.Calls, "register")
	f.LastPassword = append([]byte(nil), form.Password...)
	return f.AuthRes, f.AuthErr
}

func (f *fakeClient) Login(_ context.Context, form models.LoginForm) (*models.AuthResult, error) {
	f.Calls = append(f.Calls, "login")
	f.LastPassword = append([]byte(nil), form.Password...)
	return f.AuthRes, f.AuthErr
}

func (f *fakeClient) VerifyEmail(_ context.Context, token string) (string, error) {
	f.Calls = append(f.Calls, "verify:"+token)
	return f.VerifyMsg, f.VerifyErr
}

func (f *fakeClient) ListProducts(context.Context, client.ProductFilter) ([]models.Product, error) {
	f.Calls = append(f.Calls, "list")
	return f.ListRet, f.ListErr
}

func (f *fakeClient) GetProduct(context.Context, int64) (*models.Product, error) {
	f.Calls = append(f.Calls, "get")
	return f.GetRet, f.MutateErr
}

func (f *fakeClient) CreateProduct(context.Context, models.ProductInput) (*models.Product, error) {
	f.Calls = append(f.Calls, "create")
	return f.MutateRet, f.MutateErr
}

func (f *fakeClient) UpdateProduct(context.Context, int64, models.ProductInput) (*models.Product, error) {
	f.Calls = append(f.Calls, "update")
	return f.MutateRet, f.MutateErr
}

func (f *fakeClient) DeleteProduct(context.Context, int64) error {
	f.Calls = append(f.Calls, "delete")
	return f.DeleteErr
}

func (f *fakeClient) Forecast(context.Context) ([]models.Product, error) {
	f.Calls = append(f.Calls, "forecast")
	return f.ForeRet, f.MutateErr
}

func (f *fakeClient) Optimized(_ context.Context, category string) ([]models.Product, error) {
	f.Calls = append(f.Calls, "optimized")
	f.LastCategory = category
	return f.OptRet, f.OptErr
}

// memSnapshot implements Snapshotter in memory.
type memSnapshot struct {
	items   []models.Product
	savedAt time.Time
	saveErr error
	loadErr error
	saves   int
}

func (m *memSnapshot) Save(_ context.Context, items []models.Product, at time.Time) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.items = append([]models.Product(nil), items...)
	m.savedAt = at
	return nil
}

func (m *memSnapshot) Load(context.Context) ([]models.Product, time.Time, error) {
	return m.items, m.savedAt, m.loadErr
}
