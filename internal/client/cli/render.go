package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pricetool/priceopt/internal/client/client"
	"github.com/pricetool/priceopt/internal/client/models"
	"github.com/pricetool/priceopt/internal/client/view"
	"github.com/pricetool/priceopt/internal/common"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	noticeStyle = lipgloss.NewStyle().Faint(true)
)

const descriptionWidth = 40

// column is one table column: a title and how to print a product's cell.
type column struct {
	title string
	value func(models.Product) string
}

var (
	colID       = column{"ID", func(p models.Product) string { return p.Key() }}
	colName     = column{"Name", func(p models.Product) string { return p.Name }}
	colCategory = column{"Category", func(p models.Product) string { return p.Category }}
	colCost     = column{"Cost", func(p models.Product) string { return p.CostPrice.String() }}
	colSelling  = column{"Price", func(p models.Product) string { return p.SellingPrice.String() }}
	colStock    = column{"Stock", func(p models.Product) string { return strconv.FormatInt(p.StockAvailable, 10) }}
	colSold     = column{"Sold", func(p models.Product) string { return strconv.FormatInt(p.UnitsSold, 10) }}
	colRating   = column{"Rating", func(p models.Product) string { return models.FormatOptional(p.CustomerRating) }}
	colDemand   = column{"Demand", func(p models.Product) string { return models.FormatOptional(p.DemandForecast) }}
	colOptimal  = column{"Optimized", func(p models.Product) string { return models.FormatOptional(p.OptimizedPrice) }}
	colDesc     = column{"Description", func(p models.Product) string {
		return common.Truncate(p.Description, descriptionWidth)
	}}
)

func productColumns(showDemand bool) []column {
	cols := []column{colID, colName, colCategory, colCost, colSelling, colStock, colSold, colRating}
	if showDemand {
		cols = append(cols, colDemand)
	}
	return append(cols, colDesc)
}

func optimizationColumns() []column {
	return []column{colID, colName, colCategory, colDesc, colCost, colSelling, colOptimal}
}

func forecastColumns() []column {
	return []column{colID, colName, colCategory, colSelling, colStock, colSold, colDemand}
}

// checkboxes adds a leading selection column. The header box is checked
// when every visible row is selected.
type checkboxes struct {
	all      bool
	selected func(id int64) bool
}

func box(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

// renderTable writes rows as an aligned table with an emphasised header.
// boxes may be nil.
func renderTable(w io.Writer, cols []column, rows []models.Product, boxes *checkboxes) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	cells := make([]string, 0, len(cols)+1)
	if boxes != nil {
		cells = append(cells, box(boxes.all))
	}
	for _, c := range cols {
		cells = append(cells, c.title)
	}
	fmt.Fprintln(tw, strings.Join(cells, "\t"))

	for _, p := range rows {
		cells = cells[:0]
		if boxes != nil {
			cells = append(cells, box(boxes.selected(p.ID)))
		}
		for _, c := range cols {
			cells = append(cells, sanitize(c.value(p)))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	lines[0] = headerStyle.Render(lines[0])
	if _, err := fmt.Fprintln(w, strings.Join(lines, "\n")); err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, noticeStyle.Render("No products found."))
		return err
	}
	return nil
}

// sanitize keeps tabs and newlines in user text from breaking the table.
func sanitize(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", "").Replace(s)
}

// statusLine summarises what the table shows.
func statusLine(st view.Status, shown int) string {
	parts := []string{fmt.Sprintf("%d of %d shown", shown, st.Total)}
	if st.Committed != "" {
		parts = append(parts, fmt.Sprintf("search %q", st.Committed))
	}
	if st.Raw != st.Committed {
		parts = append(parts, fmt.Sprintf("pending %q", st.Raw))
	}
	if st.Category != "" {
		parts = append(parts, "category "+st.Category)
	}
	if st.Selected > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", st.Selected))
	}
	return strings.Join(parts, " | ")
}

// renderStatus writes the summary line, the offline notice and the page
// error, if any.
func renderStatus(w io.Writer, st view.Status, shown int) {
	fmt.Fprintln(w, noticeStyle.Render(statusLine(st, shown)))
	if st.Offline {
		msg := "Server unavailable, showing saved products"
		if !st.SavedAt.IsZero() {
			msg += " from " + st.SavedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintln(w, noticeStyle.Render(msg))
	}
	if st.Err != "" {
		fmt.Fprintln(w, errorStyle.Render(st.Err))
	}
}

// commandError tags a failed server call with the message shown when the
// server sent no detail of its own.
type commandError struct {
	msg string
	err error
}

func (e *commandError) Error() string { return e.msg + ": " + e.err.Error() }

func (e *commandError) Unwrap() error { return e.err }

func failed(msg string, err error) error {
	return &commandError{msg: msg, err: err}
}

// renderError formats a command failure for the terminal. Server detail wins;
// a failed server call without one shows its generic message rather than the
// transport error.
func renderError(err error) string {
	fallback := err.Error()
	var ce *commandError
	switch {
	case errors.As(err, &ce):
		fallback = ce.msg
	case errors.Is(err, client.ErrUnavailable):
		fallback = "Server unavailable, please try again later"
	}
	return errorStyle.Render("Error: " + client.Message(err, fallback))
}
