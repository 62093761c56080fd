package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/pricetool/priceopt/internal/client/config"
	"github.com/pricetool/priceopt/internal/client/models"
	"github.com/pricetool/priceopt/internal/client/services"
	"github.com/pricetool/priceopt/internal/client/session"
	"github.com/pricetool/priceopt/internal/common"
	"github.com/pricetool/priceopt/internal/logging"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = map[string][]byte{}
	return nil
}

func (m *memStore) token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.data[common.StoreKeyToken])
}

func tokenExpiring(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func loggedInStore(t *testing.T) *memStore {
	t.Helper()
	s := newMemStore()
	s.data[common.StoreKeyToken] = []byte(tokenExpiring(t, time.Now().Add(time.Hour)))
	return s
}

// fakeAuth implements services.AuthService. A successful Login or Register
// stores a fresh token in store, like the real service does.
type fakeAuth struct {
	mu    sync.Mutex
	store *memStore
	t     *testing.T

	user    *models.User
	authErr error
	pingErr error
	verify  string
	lastReg models.RegisterForm
	lastLog models.LoginForm
	calls   []string
}

var _ services.AuthService = (*fakeAuth)(nil)

func (f *fakeAuth) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAuth) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func (f *fakeAuth) profile() *models.User {
	if f.user != nil {
		return f.user
	}
	return &models.User{ID: 1, Username: "alice", Email: "alice@example.org", Role: "user"}
}

func (f *fakeAuth) Register(ctx context.Context, form models.RegisterForm) (*models.User, error) {
	f.record("register")
	f.lastReg = form
	f.lastReg.Password = append([]byte(nil), form.Password...)
	if f.authErr != nil {
		return nil, f.authErr
	}
	f.store.Set(ctx, common.StoreKeyToken, []byte(tokenExpiring(f.t, time.Now().Add(time.Hour))))
	return f.profile(), nil
}

func (f *fakeAuth) Login(ctx context.Context, form models.LoginForm) (*models.User, error) {
	f.record("login")
	f.lastLog = form
	f.lastLog.Password = append([]byte(nil), form.Password...)
	if f.authErr != nil {
		return nil, f.authErr
	}
	f.store.Set(ctx, common.StoreKeyToken, []byte(tokenExpiring(f.t, time.Now().Add(time.Hour))))
	return f.profile(), nil
}

func (f *fakeAuth) VerifyEmail(_ context.Context, token string) (string, error) {
	f.record("verify:" + token)
	return f.verify, f.authErr
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	f.record("logout")
	return f.store.Clear(ctx)
}

func (f *fakeAuth) CurrentUser(context.Context) (*models.User, error) {
	f.record("me")
	return f.profile(), nil
}

func (f *fakeAuth) setPingErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingErr = err
}

func (f *fakeAuth) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeAuth) Close(context.Context) error {
	f.record("close")
	return nil
}

// fakeProducts implements services.ProductService over an in-memory slice.
type fakeProducts struct {
	mu       sync.Mutex
	items    []models.Product
	listErr  error
	mutErr   error
	forecast []models.Product
	calls    []string
	lastIn   models.ProductInput
}

var _ services.ProductService = (*fakeProducts)(nil)

func (f *fakeProducts) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeProducts) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func (f *fakeProducts) List(context.Context) (services.Listing, error) {
	f.record("list")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return services.Listing{}, f.listErr
	}
	return services.Listing{Products: slices.Clone(f.items)}, nil
}

func (f *fakeProducts) Get(_ context.Context, id int64) (*models.Product, error) {
	f.record("get")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeProducts) Create(_ context.Context, in models.ProductInput) (*models.Product, error) {
	f.record("create")
	if f.mutErr != nil {
		return nil, f.mutErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastIn = in
	p := models.Product{ID: int64(100 + len(f.items)), Name: in.Name, Category: in.Category}
	f.items = append(f.items, p)
	return &p, nil
}

func (f *fakeProducts) Update(_ context.Context, id int64, in models.ProductInput) (*models.Product, error) {
	f.record("update")
	if f.mutErr != nil {
		return nil, f.mutErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastIn = in
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Name = in.Name
			f.items[i].Category = in.Category
			p := f.items[i]
			return &p, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeProducts) Delete(_ context.Context, id int64) error {
	f.record("delete")
	if f.mutErr != nil {
		return f.mutErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = slices.DeleteFunc(f.items, func(p models.Product) bool { return p.ID == id })
	return nil
}

func (f *fakeProducts) Forecast(context.Context) ([]models.Product, error) {
	f.record("forecast")
	return slices.Clone(f.forecast), nil
}

func (f *fakeProducts) Optimized(context.Context, string) ([]models.Product, error) {
	f.record("optimized")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Clone(f.items)
	for i := range out {
		d := out[i].SellingPrice * 1.1
		out[i].OptimizedPrice = &d
	}
	return out, nil
}

func catalogue() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Widget", Category: "Tools", CostPrice: 2, SellingPrice: 5, StockAvailable: 10, UnitsSold: 3},
		{ID: 2, Name: "Gadget", Category: "Tools", CostPrice: 4, SellingPrice: 9.5, StockAvailable: 7, UnitsSold: 1},
		{ID: 3, Name: "Gizmo", Category: "Toys", CostPrice: 1, SellingPrice: 3, StockAvailable: 0, UnitsSold: 12},
	}
}

// newTestApp builds an App over fakes with synchronous search commits and
// captured output. Prompts are stubbed with stubAnswers and stubPasswords.
func newTestApp(t *testing.T, store *memStore, ps *fakeProducts) (*App, *fakeAuth, *bytes.Buffer) {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SearchDebounce = 0

	auth := &fakeAuth{store: store, t: t}
	a := newApp(cfg, auth, ps, session.NewGuard(session.New(store)), logging.Nop())

	var out bytes.Buffer
	a.out = &out
	a.reader = bufio.NewReader(strings.NewReader(""))
	t.Cleanup(func() {
		a.products.Close()
		a.optimization.Close()
	})
	return a, auth, &out
}

// stubAnswers feeds answers to the text prompts in order. Running out of
// answers yields io.EOF.
func stubAnswers(t *testing.T, answers ...string) {
	t.Helper()
	next := func() (string, error) {
		if len(answers) == 0 {
			return "", io.EOF
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
	origST, origML := getSimpleText, getMultiline
	getSimpleText = func(*bufio.Reader, string, io.Writer) (string, error) { return next() }
	getMultiline = func(*bufio.Reader, string, io.Writer) (string, error) { return next() }
	t.Cleanup(func() {
		getSimpleText = origST
		getMultiline = origML
	})
}

// stubPasswords feeds passwords to the password prompts in order.
func stubPasswords(t *testing.T, passwords ...string) {
	t.Helper()
	orig := getPassword
	getPassword = func(io.Writer, string) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		p := passwords[0]
		passwords = passwords[1:]
		return []byte(p), nil
	}
	t.Cleanup(func() { getPassword = orig })
}

func stubConfirm(t *testing.T, answer bool) *[]string {
	t.Helper()
	var prompts []string
	orig := getConfirm
	getConfirm = func(_ *bufio.Reader, prompt string, _ io.Writer) bool {
		prompts = append(prompts, prompt)
		return answer
	}
	t.Cleanup(func() { getConfirm = orig })
	return &prompts
}
