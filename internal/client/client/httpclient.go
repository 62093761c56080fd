package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pricetool/priceopt/internal/client/models"
	"github.com/pricetool/priceopt/internal/logging"
)

// HTTPClient talks to the API over HTTP/JSON.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
}

type options struct {
	timeout   time.Duration
	base      http.RoundTripper
	rateLimit rate.Limit
	rateBurst int
	log       logging.Logger
	newID     func() string
}

// Option configures an HTTPClient.
type Option func(*options)

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRateLimit throttles outbound requests to perSecond with the given
// burst. A non-positive perSecond disables throttling.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(o *options) {
		if perSecond <= 0 {
			o.rateLimit = rate.Inf
			return
		}
		o.rateLimit = rate.Limit(perSecond)
		if burst < 1 {
			burst = 1
		}
		o.rateBurst = burst
	}
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// NewHTTPClient returns a client for the API rooted at baseURL. tokens may be
// nil for anonymous use.
func NewHTTPClient(baseURL string, tokens TokenSource, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse base url: %q is not absolute", baseURL)
	}

	o := options{
		base:      http.DefaultTransport,
		rateLimit: rate.Inf,
		log:       logging.Nop(),
		newID:     newRequestID,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var limiter *rate.Limiter
	if o.rateLimit != rate.Inf {
		limiter = rate.NewLimiter(o.rateLimit, o.rateBurst)
	}

	return &HTTPClient{
		baseURL: u,
		http: &http.Client{
			Timeout: o.timeout,
			Transport: &authTransport{
				base:    o.base,
				tokens:  tokens,
				limiter: limiter,
				log:     o.log,
				newID:   o.newID,
			},
		},
	}, nil
}

func (c *HTTPClient) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends a JSON request and decodes a JSON response into out (when non-nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		var te *tokenError
		switch {
		case errors.As(err, &te):
			return te
		case errors.Is(err, context.Canceled):
			return err
		default:
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Ping checks that the API root answers.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/", nil, nil, nil)
}

type credentialsPayload struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *HTTPClient) Register(ctx context.Context, form models.RegisterForm) (*models.AuthResult, error) {
	var out models.AuthResult
	in := credentialsPayload{Username: form.Username, Email: form.Email, Password: string(form.Password)}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Login(ctx context.Context, form models.LoginForm) (*models.AuthResult, error) {
	var out models.AuthResult
	in := credentialsPayload{Email: form.Email, Password: string(form.Password)}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyEmail redeems a verification token and returns the server's message.
func (c *HTTPClient) VerifyEmail(ctx context.Context, token string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	q := url.Values{"token": {token}}
	if err := c.do(ctx, http.MethodGet, "/api/auth/verify-email", q, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) listProducts(ctx context.Context, path string, q url.Values) ([]models.Product, error) {
	out := []models.Product{}
	if err := c.do(ctx, http.MethodGet, path, q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	return c.listProducts(ctx, "/api/products", q)
}

func productPath(id int64) string {
	return "/api/products/" + strconv.FormatInt(id, 10)
}

func (c *HTTPClient) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodGet, productPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodPost, "/api/products", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateProduct(ctx context.Context, id int64, in models.ProductInput) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodPut, productPath(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, productPath(id), nil, nil, nil)
}

// Forecast returns every product with demand_forecast filled in.
func (c *HTTPClient) Forecast(ctx context.Context) ([]models.Product, error) {
	return c.listProducts(ctx, "/api/products/forecast", nil)
}

// Optimized returns products with optimized_price, optionally restricted to
// one category server-side.
func (c *HTTPClient) Optimized(ctx context.Context, category string) ([]models.Product, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	return c.listProducts(ctx, "/api/products/optimized", q)
}
