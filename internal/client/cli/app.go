package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pricetool/priceopt/internal/client/client"
	"github.com/pricetool/priceopt/internal/client/config"
	"github.com/pricetool/priceopt/internal/client/localdb"
	"github.com/pricetool/priceopt/internal/client/models"
	"github.com/pricetool/priceopt/internal/client/repositories/metadata"
	"github.com/pricetool/priceopt/internal/client/repositories/products"
	"github.com/pricetool/priceopt/internal/client/services"
	"github.com/pricetool/priceopt/internal/client/session"
	"github.com/pricetool/priceopt/internal/client/view"
	"github.com/pricetool/priceopt/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Page is the list page the page commands act on.
type Page string

const (
	PageProducts     Page = "products"
	PageOptimization Page = "optimization"
)

// listPage is the part of a page controller the REPL drives.
type listPage interface {
	Load(ctx context.Context) error
	Visible() []models.Product
	SetSearch(raw string)
	FlushSearch() bool
	SetCategory(category string)
	Categories() []string
	Toggle(id int64) bool
	ToggleAll()
	IsSelected(id int64) bool
	AllVisibleSelected() bool
	Status() view.Status
	Close()
}

type App struct {
	config         *config.Config
	authService    services.AuthService
	productService services.ProductService
	guard          *session.Guard
	log            logging.Logger

	products     *view.ProductView
	optimization *view.OptimizationView

	mu       sync.Mutex
	page     Page
	userName string
	Mode     Mode

	// searchPending is set by the search command and cleared when the
	// debounced text commits and the page has been re-rendered.
	searchPending atomic.Bool

	reader  *bufio.Reader
	out     io.Writer
	closers []io.Closer
}

// NewApp opens the local database and the credential store selected by c,
// and wires the API client, services and page controllers.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := localdb.Open(ctx, c.DBPath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	store, storeCloser, err := openStore(ctx, c, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	sess := session.New(store)
	apiClient, err := client.NewHTTPClient(c.ServerURL, sess,
		client.WithTimeout(c.RequestTimeout),
		client.WithRateLimit(c.RateLimit, c.RateBurst),
		client.WithLogger(logger),
	)
	if err != nil {
		db.Close()
		if storeCloser != nil {
			storeCloser.Close()
		}
		return nil, err
	}

	as := services.NewAuthService(apiClient, sess, logger)
	ps := services.NewProductService(apiClient, products.NewStore(db), logger)

	app := newApp(c, as, ps, session.NewGuard(sess), logger)
	app.closers = append(app.closers, db)
	if storeCloser != nil {
		app.closers = append(app.closers, storeCloser)
	}
	return app, nil
}

// openStore returns the credential store for the configured backend and,
// for redis, the connection to close on exit.
func openStore(ctx context.Context, c *config.Config, db *sql.DB) (metadata.Repository, io.Closer, error) {
	if c.StoreBackend != config.StoreRedis {
		return metadata.NewSQLiteRepository(db), nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", c.RedisAddr, err)
	}
	return metadata.NewRedisRepository(rdb, c.RedisPrefix), rdb, nil
}

func newApp(c *config.Config, as services.AuthService, ps services.ProductService, guard *session.Guard, logger logging.Logger) *App {
	a := &App{
		config:         c,
		authService:    as,
		productService: ps,
		guard:          guard,
		log:            logger,
		page:           PageProducts,
		reader:         bufio.NewReader(os.Stdin),
		out:            os.Stdout,
	}
	opts := []view.Option{
		view.WithQuiet(c.SearchDebounce),
		view.WithLogger(logger),
		view.WithOnChange(a.pageChanged),
	}
	a.products = view.NewProductView(ps, opts...)
	a.optimization = view.NewOptimizationView(ps, opts...)
	return a
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

func (a *App) setUser(name string) {
	a.mu.Lock()
	a.userName = name
	a.mu.Unlock()
}

func (a *App) setPage(p Page) {
	a.mu.Lock()
	a.page = p
	a.mu.Unlock()
}

func (a *App) currentPage() Page {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.page
}

// current returns the controller of the active page.
func (a *App) current() listPage {
	if a.currentPage() == PageOptimization {
		return a.optimization
	}
	return a.products
}

// getStatus renders the prompt suffix: active page, user and mode.
func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return fmt.Sprintf("[%s] %s", a.page, s)
}

// Run starts the REPL and blocks until the user exits, then releases the
// page controllers, the API client and the local stores.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close(ctx)
	a.Root(ctx)
}

func (a *App) close(ctx context.Context) {
	a.products.Close()
	a.optimization.Close()
	if err := a.authService.Close(ctx); err != nil {
		a.log.Warn(ctx, "close api client", "error", err)
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Warn(ctx, "close store", "error", err)
		}
	}
}

// Root prints the banner, restores a stored session, starts the online
// status watcher and runs the REPL on the app's input.
func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to the Price Optimization Tool CLI (type 'help' for commands)")

	a.restoreSession(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

// restoreSession picks up a credential left by a previous run.
func (a *App) restoreSession(ctx context.Context) {
	d, err := a.guard.Check(ctx)
	if err != nil {
		a.log.Warn(ctx, "session check failed", "error", err)
	}
	if d != session.Allow {
		printlnFn("Please login or register.")
		return
	}
	u, err := a.authService.CurrentUser(ctx)
	if err != nil || u == nil {
		a.log.Warn(ctx, "cached profile unavailable", "error", err)
		return
	}
	a.setUser(u.Username)
	log.Printf("Resumed session for %s", u.Username)
}

// StartOnlineStatusWatcher pings the server every interval and flips Mode
// between online and offline until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	timeout := a.config.RequestTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, timeout)
			err := a.authService.Ping(pctx)
			cancel()

			if err != nil {
				if a.mode() == ModeOnline {
					a.setMode(ModeOffline)
				}
			} else {
				if a.mode() != ModeOnline {
					a.setMode(ModeOnline)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
