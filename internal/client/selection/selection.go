// Package selection tracks which products the user has ticked on a page.
package selection

import "slices"

// Set is an ordered set of product ids. The zero value is empty and ready
// to use. It is not safe for concurrent use.
type Set struct {
	ids []int64
}

// Contains reports whether id is selected.
func (s *Set) Contains(id int64) bool {
	return slices.Contains(s.ids, id)
}

// Toggle adds id when absent and removes it when present.
func (s *Set) Toggle(id int64) {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return
	}
	s.ids = append(s.ids, id)
}

// ToggleAll selects exactly the visible ids, or clears the selection when
// every visible id is already selected. With nothing visible it leaves the
// selection as it is.
func (s *Set) ToggleAll(visible []int64) {
	if len(visible) == 0 {
		return
	}
	all := true
	for _, id := range visible {
		if !s.Contains(id) {
			all = false
			break
		}
	}
	if all {
		s.ids = nil
		return
	}
	s.ids = slices.Clone(visible)
}

// Retain drops every selected id that is not in visible.
func (s *Set) Retain(visible []int64) {
	s.ids = slices.DeleteFunc(s.ids, func(id int64) bool {
		return !slices.Contains(visible, id)
	})
}

// Clear empties the set.
func (s *Set) Clear() { s.ids = nil }

// Len returns the number of selected ids.
func (s *Set) Len() int { return len(s.ids) }

// IDs returns the selected ids in selection order.
func (s *Set) IDs() []int64 { return slices.Clone(s.ids) }
