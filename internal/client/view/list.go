package view

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/pricetool/priceopt/internal/client/client"
	"github.com/pricetool/priceopt/internal/client/models"
	"github.com/pricetool/priceopt/internal/client/query"
	"github.com/pricetool/priceopt/internal/client/search"
	"github.com/pricetool/priceopt/internal/client/selection"
	"github.com/pricetool/priceopt/internal/logging"
)

// ErrStale is returned by Load when a newer fetch started before this one
// finished; its result was discarded.
var ErrStale = errors.New("stale response discarded")

// fetchResult is what a page's fetch function returns.
type fetchResult struct {
	products []models.Product
	offline  bool
	savedAt  time.Time
}

type fetchFunc func(ctx context.Context) (fetchResult, error)

// Status is a point-in-time copy of a controller's bookkeeping.
type Status struct {
	Loading   bool
	Err       string
	Offline   bool
	SavedAt   time.Time
	Total     int
	Raw       string
	Committed string
	Category  string
	Selected  int
}

type options struct {
	quiet    time.Duration
	clock    query.Clock
	onChange func()
	log      logging.Logger
}

// Option configures a page controller.
type Option func(*options)

// WithQuiet sets the search debounce period.
func WithQuiet(d time.Duration) Option {
	return func(o *options) { o.quiet = d }
}

// WithClock replaces the clock driving the search debounce.
func WithClock(c query.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithOnChange registers a callback run whenever the visible rows may have
// changed: after a fetch, a committed search or a category change. It may
// run on the debounce timer's goroutine.
func WithOnChange(f func()) Option {
	return func(o *options) { o.onChange = f }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{quiet: query.DefaultQuiet, log: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// listController is the state shared by every list page.
type listController struct {
	mu       sync.Mutex
	fetch    fetchFunc
	fallback string
	log      logging.Logger
	onChange func()

	records  []models.Product
	index    *search.Index
	query    *query.Buffer
	category string
	sel      selection.Set
	loading  bool
	errMsg   string
	offline  bool
	savedAt  time.Time
	seq      uint64
}

func newListController(fetch fetchFunc, fallback string, o options) *listController {
	c := &listController{
		fetch:    fetch,
		fallback: fallback,
		log:      o.log,
		onChange: o.onChange,
		index:    search.Build(nil),
	}
	var qopts []query.Option
	if o.clock != nil {
		qopts = append(qopts, query.WithClock(o.clock))
	}
	c.query = query.NewBuffer(o.quiet, c.committed, qopts...)
	return c
}

func (c *listController) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}

// Load fetches the records. Success replaces the collection and rebuilds
// the index; failure keeps the previous records and sets Status.Err.
func (c *listController) Load(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.loading = true
	c.mu.Unlock()

	res, err := c.fetch(ctx)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.log.Debug(ctx, "discarding stale response", "seq", seq)
		return ErrStale
	}
	c.loading = false
	if err != nil {
		c.errMsg = client.Message(err, c.fallback)
		c.mu.Unlock()
		c.notify()
		return err
	}

	c.records = res.products
	c.index = search.Build(res.products)
	c.offline = res.offline
	c.savedAt = res.savedAt
	c.errMsg = ""
	c.retainLocked()
	c.mu.Unlock()

	c.notify()
	return nil
}

// committed is the query buffer's commit callback.
func (c *listController) committed(string) {
	c.mu.Lock()
	c.retainLocked()
	c.mu.Unlock()
	c.notify()
}

func (c *listController) visibleLocked() []models.Product {
	return search.Pipeline(c.index, c.query.Committed(), c.category)
}

func (c *listController) retainLocked() {
	c.sel.Retain(models.ProductIDs(c.visibleLocked()))
}

// Visible returns the rows to display: fuzzy match on the committed search
// text, then the category filter.
func (c *listController) Visible() []models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visibleLocked()
}

// Records returns every loaded record.
func (c *listController) Records() []models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.records)
}

// Record looks up a loaded record by id.
func (c *listController) Record(id int64) (models.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.records {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// Categories lists the categories present in the full collection.
func (c *listController) Categories() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return search.Categories(c.records)
}

// SetSearch feeds the debounced search box.
func (c *listController) SetSearch(raw string) {
	c.query.SetRaw(raw)
}

// FlushSearch commits the pending search text immediately.
func (c *listController) FlushSearch() bool {
	return c.query.Flush()
}

// SetCategory sets the exact category filter; "" shows all.
func (c *listController) SetCategory(category string) {
	c.mu.Lock()
	c.category = category
	c.retainLocked()
	c.mu.Unlock()
	c.notify()
}

// Toggle flips the selection of a visible record. It reports false when id
// is not currently visible.
func (c *listController) Toggle(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !slices.Contains(models.ProductIDs(c.visibleLocked()), id) {
		return false
	}
	c.sel.Toggle(id)
	return true
}

// ToggleAll selects every visible record, or clears the selection when all
// of them are already selected.
func (c *listController) ToggleAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.ToggleAll(models.ProductIDs(c.visibleLocked()))
}

// IsSelected reports whether id is selected.
func (c *listController) IsSelected(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.Contains(id)
}

// Selected returns the selected ids.
func (c *listController) Selected() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.IDs()
}

// AllVisibleSelected reports whether at least one row is visible and every
// visible row is selected.
func (c *listController) AllVisibleSelected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := models.ProductIDs(c.visibleLocked())
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !c.sel.Contains(id) {
			return false
		}
	}
	return true
}

// Status returns the controller's bookkeeping.
func (c *listController) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Loading:   c.loading,
		Err:       c.errMsg,
		Offline:   c.offline,
		SavedAt:   c.savedAt,
		Total:     len(c.records),
		Raw:       c.query.Raw(),
		Committed: c.query.Committed(),
		Category:  c.category,
		Selected:  c.sel.Len(),
	}
}

// Close disposes the search debounce; no commit fires afterwards.
func (c *listController) Close() {
	c.query.Close()
}
