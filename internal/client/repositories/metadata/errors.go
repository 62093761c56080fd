package metadata

import "fmt"

// StoreError reports a failed credential store operation. Key is empty for
// operations over the whole store.
type StoreError struct {
	Backend string
	Op      string
	Key     string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s store %s: %v", e.Backend, e.Op, e.Err)
	}
	return fmt.Sprintf("%s store %s %q: %v", e.Backend, e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
