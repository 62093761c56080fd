package search

import "github.com/pricetool/priceopt/internal/client/models"

// ApplyCategory keeps the items whose category equals category exactly. An
// empty category keeps everything.
func ApplyCategory(items []models.Product, category string) []models.Product {
	if category == "" {
		return items
	}
	out := make([]models.Product, 0, len(items))
	for _, p := range items {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Pipeline computes the visible records: fuzzy match (or identity for an
// empty query) first, then the category filter.
func Pipeline(ix *Index, committed, category string) []models.Product {
	if ix == nil {
		return []models.Product{}
	}
	return ApplyCategory(ix.Query(committed), category)
}

// Categories lists the distinct non-empty categories of records in the order
// they first appear.
func Categories(records []models.Product) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range records {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
