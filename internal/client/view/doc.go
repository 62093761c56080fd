// Package view holds the page controllers behind the terminal client. Each
// controller owns its records, a fuzzy index rebuilt on every successful
// fetch, the debounced search text, a category filter and the selection.
//
// Only the most recently started fetch may replace the records. A response
// that arrives after a newer fetch has begun is dropped and Load returns
// ErrStale. A failed fetch keeps whatever was shown before and records a
// user-facing error message.
package view
