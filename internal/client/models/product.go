// Package models defines the typed records exchanged with the Price
// Optimization API and the form types the terminal client validates before
// issuing mutations.
package models

import (
	"strconv"
	"time"
)

// Product is a catalogue record. Forecast and optimization endpoints return
// the same shape with DemandForecast and OptimizedPrice filled in.
type Product struct {
	ID             int64      `json:"product_id"`
	Name           string     `json:"name"`
	Category       string     `json:"category"`
	Description    string     `json:"description"`
	CostPrice      Decimal    `json:"cost_price"`
	SellingPrice   Decimal    `json:"selling_price"`
	StockAvailable int64      `json:"stock_available"`
	UnitsSold      int64      `json:"units_sold"`
	CustomerRating *Decimal   `json:"customer_rating,omitempty"`
	DemandForecast *Decimal   `json:"demand_forecast,omitempty"`
	OptimizedPrice *Decimal   `json:"optimized_price,omitempty"`
	CreatedBy      *int64     `json:"created_by,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// Key returns the identifier as a string, for prompts and selection output.
func (p Product) Key() string {
	return strconv.FormatInt(p.ID, 10)
}

// ProductIDs returns the identifiers of items in order.
func ProductIDs(items []Product) []int64 {
	ids := make([]int64, len(items))
	for i, p := range items {
		ids[i] = p.ID
	}
	return ids
}

// ParseProductID parses an identifier typed by the user.
func ParseProductID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewValidationError(FieldError{Field: "id", Message: "product id must be a positive integer"})
	}
	return id, nil
}
