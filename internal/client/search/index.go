// Package search implements the product filter pipeline: a fuzzy index over
// name, category and description, followed by an exact category filter.
package search

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/pricetool/priceopt/internal/client/models"
)

// Threshold is the largest score a record may have and still match.
// Scores run from 0 (exact) to 1 (anything).
const Threshold = 0.4

const (
	fieldName = iota
	fieldCategory
	fieldDescription
	numFields
)

// Index is an immutable fuzzy index. It keeps its own copy of the records,
// so later changes to the caller's slice never leak into queries; build a
// new Index whenever the collection changes.
type Index struct {
	records []models.Product
	fields  [][numFields]string
}

// Match is a query hit with its score.
type Match struct {
	Product models.Product
	Score   float64
}

// Build indexes records.
func Build(records []models.Product) *Index {
	ix := &Index{
		records: append([]models.Product(nil), records...),
		fields:  make([][numFields]string, len(records)),
	}
	for i, p := range ix.records {
		ix.fields[i] = [numFields]string{
			strings.ToLower(p.Name),
			strings.ToLower(p.Category),
			strings.ToLower(p.Description),
		}
	}
	return ix
}

// Len returns the number of indexed records.
func (ix *Index) Len() int { return len(ix.records) }

// Records returns a copy of the indexed records in original order.
func (ix *Index) Records() []models.Product {
	return append([]models.Product(nil), ix.records...)
}

// fieldSource exposes one field of every record to fuzzy.FindFrom.
type fieldSource struct {
	ix    *Index
	field int
}

func (s fieldSource) String(i int) string { return s.ix.fields[i][s.field] }
func (s fieldSource) Len() int            { return len(s.ix.fields) }

// Search scores every record against text and returns those within
// Threshold, best first; equal scores keep original order. An empty text
// returns nil; use Query for the identity behaviour.
func (ix *Index) Search(text string) []Match {
	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" || len(ix.records) == 0 {
		return nil
	}

	scores := make([]float64, len(ix.records))
	for i := range scores {
		scores[i] = 1
	}

	for f := 0; f < numFields; f++ {
		for _, m := range fuzzy.FindFrom(q, fieldSource{ix: ix, field: f}) {
			if s := subsequenceScore(q, ix.fields[m.Index][f], m.MatchedIndexes); s < scores[m.Index] {
				scores[m.Index] = s
			}
		}
	}

	qgrams := bigrams(q)
	for i, fields := range ix.fields {
		for _, field := range fields {
			if scores[i] == 0 {
				break
			}
			if s := substringScore(q, field); s < scores[i] {
				scores[i] = s
				continue
			}
			if s := typoScore(q, qgrams, field); s < scores[i] {
				scores[i] = s
			}
		}
	}

	var out []Match
	for i, s := range scores {
		if s <= Threshold {
			out = append(out, Match{Product: ix.records[i], Score: s})
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score < out[b].Score })
	return out
}

// Query returns the records matching text, best first. An empty or
// whitespace-only text returns every record in original order.
func (ix *Index) Query(text string) []models.Product {
	if strings.TrimSpace(text) == "" {
		return ix.Records()
	}
	matches := ix.Search(text)
	out := make([]models.Product, len(matches))
	for i, m := range matches {
		out[i] = m.Product
	}
	return out
}
