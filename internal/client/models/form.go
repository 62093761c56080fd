package models

import (
	"strconv"
	"strings"
)

// ProductForm is raw, unparsed input for the add/edit flow. Every field is
// text; ParseProductForm turns it into a ProductInput.
type ProductForm struct {
	Name           string
	Category       string
	CostPrice      string
	SellingPrice   string
	Description    string
	StockAvailable string
	UnitsSold      string
	CustomerRating string
}

// ProductInput is the validated create/update payload.
type ProductInput struct {
	Name           string   `json:"name" validate:"required,max=255"`
	Category       string   `json:"category" validate:"max=100"`
	CostPrice      Decimal  `json:"cost_price" validate:"gte=0"`
	SellingPrice   Decimal  `json:"selling_price" validate:"gte=0"`
	Description    string   `json:"description"`
	StockAvailable int64    `json:"stock_available" validate:"gte=0"`
	UnitsSold      int64    `json:"units_sold" validate:"gte=0"`
	CustomerRating *Decimal `json:"customer_rating" validate:"omitempty,gte=1,lte=5"`
}

// FormFromProduct pre-fills a form for editing p.
func FormFromProduct(p Product) ProductForm {
	f := ProductForm{
		Name:           p.Name,
		Category:       p.Category,
		CostPrice:      p.CostPrice.String(),
		SellingPrice:   p.SellingPrice.String(),
		Description:    p.Description,
		StockAvailable: strconv.FormatInt(p.StockAvailable, 10),
		UnitsSold:      strconv.FormatInt(p.UnitsSold, 10),
	}
	if p.CustomerRating != nil {
		f.CustomerRating = p.CustomerRating.String()
	}
	return f
}

// ParseProductForm parses and validates f. Prices are required decimals,
// stock and units sold default to zero when blank, the rating is optional.
// Any failure is returned as a *ValidationError listing every bad field.
func ParseProductForm(f ProductForm) (ProductInput, error) {
	var errs []FieldError

	in := ProductInput{
		Name:        strings.TrimSpace(f.Name),
		Category:    strings.TrimSpace(f.Category),
		Description: strings.TrimSpace(f.Description),
	}

	parsePrice := func(field, raw string) Decimal {
		if strings.TrimSpace(raw) == "" {
			errs = append(errs, FieldError{Field: field, Message: field + " is required"})
			return 0
		}
		d, err := ParseDecimal(raw)
		if err != nil {
			errs = append(errs, FieldError{Field: field, Message: field + " must be a number"})
		}
		return d
	}
	parseCount := func(field, raw string) int64 {
		raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
		if raw == "" {
			return 0
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs = append(errs, FieldError{Field: field, Message: field + " must be a whole number"})
		}
		return n
	}

	in.CostPrice = parsePrice("cost_price", f.CostPrice)
	in.SellingPrice = parsePrice("selling_price", f.SellingPrice)
	in.StockAvailable = parseCount("stock_available", f.StockAvailable)
	in.UnitsSold = parseCount("units_sold", f.UnitsSold)

	if raw := strings.TrimSpace(f.CustomerRating); raw != "" {
		r, err := ParseDecimal(raw)
		if err != nil {
			errs = append(errs, FieldError{Field: "customer_rating", Message: "customer_rating must be a number"})
		} else {
			in.CustomerRating = &r
		}
	}

	if len(errs) > 0 {
		return ProductInput{}, NewValidationError(errs...)
	}
	if err := validateStruct(in); err != nil {
		return ProductInput{}, err
	}
	return in, nil
}
