// Package pagination validates the 1-indexed page parameters shared by the
// list operations.
package pagination

import "fmt"

// InvalidError indicates a page or limit below 1. It is a client input error,
// not an infrastructure failure.
type InvalidError struct {
	Page  int
	Limit int
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid page %d or limit %d: both must be at least 1", e.Page, e.Limit)
}

// Offset validates page and limit and converts them to a row offset.
func Offset(page, limit int) (int, error) {
	if page < 1 || limit < 1 {
		return 0, &InvalidError{Page: page, Limit: limit}
	}
	return (page - 1) * limit, nil
}
