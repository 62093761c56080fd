package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pricetool/priceopt/internal/client/client"
	"github.com/pricetool/priceopt/internal/client/models"
	"github.com/pricetool/priceopt/internal/client/view"
)

// Products switches to the products page, fetches it and prints it.
func (a *App) Products(ctx context.Context) error {
	a.setPage(PageProducts)
	return a.guarded(ctx, a.load)
}

// Optimization switches to the pricing optimization page, fetches it and
// prints it.
func (a *App) Optimization(ctx context.Context) error {
	a.setPage(PageOptimization)
	return a.guarded(ctx, a.load)
}

// Refresh re-fetches the active page.
func (a *App) Refresh(ctx context.Context) error {
	return a.guarded(ctx, a.load)
}

// load fetches the active page. A failed fetch is shown in the page status,
// so only an unauthorized response is returned, for guarded to act on.
func (a *App) load(ctx context.Context) error {
	err := a.current().Load(ctx)
	if err != nil && !errors.Is(err, view.ErrStale) {
		a.noteUnavailable(err)
		a.log.Debug(ctx, "page load failed", "page", a.currentPage(), "error", err)
	}
	if errors.Is(err, client.ErrUnauthorized) {
		return err
	}
	a.renderPage()
	return nil
}

// Show prints the active page without re-fetching.
func (a *App) Show(ctx context.Context) error {
	return a.guarded(ctx, func(context.Context) error {
		a.renderPage()
		return nil
	})
}

// Search feeds text to the page's debounced search. The table is printed
// again once the text commits; "search!" commits it at once.
func (a *App) Search(ctx context.Context, text string) error {
	return a.guarded(ctx, func(context.Context) error {
		a.searchPending.Store(true)
		a.current().SetSearch(text)
		if a.config.SearchDebounce > 0 {
			fmt.Fprintf(a.out, "Searching for %q in %s (search! to apply now)\n", text, a.config.SearchDebounce)
		}
		return nil
	})
}

// FlushSearch commits the pending search text immediately and prints the
// page.
func (a *App) FlushSearch(ctx context.Context) error {
	return a.guarded(ctx, func(context.Context) error {
		a.searchPending.Store(false)
		a.current().FlushSearch()
		a.renderPage()
		return nil
	})
}

// pageChanged is the page controllers' change callback. It prints the page
// when a search typed with the search command commits. It may run on the
// debounce timer's goroutine.
func (a *App) pageChanged() {
	if !a.searchPending.Load() {
		return
	}
	st := a.current().Status()
	if st.Raw != st.Committed {
		return
	}
	if a.searchPending.CompareAndSwap(true, false) {
		a.renderPage()
	}
}

// Category sets the exact category filter. With no name the filter is
// cleared and the available categories are listed.
func (a *App) Category(ctx context.Context, name string) error {
	return a.guarded(ctx, func(context.Context) error {
		p := a.current()
		if name == "" {
			cats := p.Categories()
			if len(cats) == 0 {
				fmt.Fprintln(a.out, "Categories: none")
			} else {
				fmt.Fprintln(a.out, "Categories: "+strings.Join(cats, ", "))
			}
		}
		p.SetCategory(name)
		a.renderPage()
		return nil
	})
}

// Select toggles the selection of a visible row.
func (a *App) Select(ctx context.Context, arg string) error {
	id, err := models.ParseProductID(arg)
	if err != nil {
		return err
	}
	return a.guarded(ctx, func(context.Context) error {
		p := a.current()
		if !p.Toggle(id) {
			return fmt.Errorf("product %d is not in the current view", id)
		}
		if p.IsSelected(id) {
			fmt.Fprintf(a.out, "Selected product %d\n", id)
		} else {
			fmt.Fprintf(a.out, "Deselected product %d\n", id)
		}
		return nil
	})
}

// SelectAll selects every visible row, or clears the selection when all of
// them are selected already.
func (a *App) SelectAll(ctx context.Context) error {
	return a.guarded(ctx, func(context.Context) error {
		a.current().ToggleAll()
		a.renderPage()
		return nil
	})
}

// Add prompts for a new product and creates it.
func (a *App) Add(ctx context.Context) error {
	return a.guarded(ctx, func(ctx context.Context) error {
		form, err := GetProductForm(a.reader, a.out, models.ProductForm{})
		if err != nil {
			return err
		}
		p, err := a.products.Create(ctx, form)
		if err != nil {
			a.noteUnavailable(err)
			return failed("Create failed", err)
		}
		fmt.Fprintf(a.out, "Created product %d (%s)\n", p.ID, p.Name)
		a.setPage(PageProducts)
		a.renderPage()
		return nil
	})
}

// Edit prompts for new values of an existing product, showing the current
// ones, and saves them.
func (a *App) Edit(ctx context.Context, arg string) error {
	id, err := models.ParseProductID(arg)
	if err != nil {
		return err
	}
	return a.guarded(ctx, func(ctx context.Context) error {
		current, ok := a.products.Record(id)
		if !ok {
			p, err := a.productService.Get(ctx, id)
			if err != nil {
				a.noteUnavailable(err)
				return failed("Failed to load product", err)
			}
			current = *p
		}

		form, err := GetProductForm(a.reader, a.out, models.FormFromProduct(current))
		if err != nil {
			return err
		}
		p, err := a.products.Update(ctx, id, form)
		if err != nil {
			a.noteUnavailable(err)
			return failed("Update failed", err)
		}
		fmt.Fprintf(a.out, "Updated product %d (%s)\n", p.ID, p.Name)
		a.setPage(PageProducts)
		a.renderPage()
		return nil
	})
}

// Delete removes a product after a y/N confirmation.
func (a *App) Delete(ctx context.Context, arg string) error {
	id, err := models.ParseProductID(arg)
	if err != nil {
		return err
	}
	return a.guarded(ctx, func(ctx context.Context) error {
		deleted, err := a.products.Delete(ctx, id, a.confirmDelete)
		if err != nil {
			a.noteUnavailable(err)
			return failed("Delete failed", err)
		}
		if !deleted {
			fmt.Fprintln(a.out, "Cancelled.")
			return nil
		}
		fmt.Fprintf(a.out, "Deleted product %d\n", id)
		a.setPage(PageProducts)
		a.renderPage()
		return nil
	})
}

func (a *App) confirmDelete(p models.Product) bool {
	name := p.Name
	if name == "" {
		name = "#" + p.Key()
	}
	return getConfirm(a.reader, fmt.Sprintf("Are you sure you want to delete %q?", name), a.out)
}

// Forecast prints the demand forecast for the selected products, or for all
// of them when nothing is selected.
func (a *App) Forecast(ctx context.Context) error {
	return a.guarded(ctx, func(ctx context.Context) error {
		items, err := a.products.Forecast(ctx)
		if err != nil {
			a.noteUnavailable(err)
			return failed("Failed to load demand forecast", err)
		}
		fmt.Fprintln(a.out, titleStyle.Render("Demand Forecast"))
		return renderTable(a.out, forecastColumns(), items, nil)
	})
}

// Demand toggles the demand forecast column of the products table.
func (a *App) Demand(ctx context.Context) error {
	return a.guarded(ctx, func(context.Context) error {
		if a.products.ToggleDemand() {
			fmt.Fprintln(a.out, "Demand forecast column shown.")
		} else {
			fmt.Fprintln(a.out, "Demand forecast column hidden.")
		}
		if a.currentPage() == PageProducts {
			a.renderPage()
		}
		return nil
	})
}

// renderPage prints the active page: title, table and status.
func (a *App) renderPage() {
	switch a.currentPage() {
	case PageOptimization:
		a.renderList("Pricing Optimization", a.optimization, optimizationColumns())
	default:
		a.renderList("Products", a.products, productColumns(a.products.ShowDemand()))
	}
}

func (a *App) renderList(title string, p listPage, cols []column) {
	rows := p.Visible()
	st := p.Status()

	fmt.Fprintln(a.out, titleStyle.Render(title))
	boxes := &checkboxes{all: p.AllVisibleSelected(), selected: p.IsSelected}
	if err := renderTable(a.out, cols, rows, boxes); err != nil {
		a.log.Warn(context.Background(), "render table", "error", err)
	}
	renderStatus(a.out, st, len(rows))
}
