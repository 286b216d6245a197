package service

import (
	"strconv"
	"strings"

	"github.com/and161185/registrar/internal/errs"
)

// ParseSelection turns submitted course identifiers into ids. Entries that are not
// positive integers are returned as invalid instead of failing the whole selection.
// A nil or empty selection yields no ids.
func ParseSelection(selected []string) (ids []int64, invalid []*errs.SelectionError) {
	for _, raw := range selected {
		v := strings.TrimSpace(raw)
		id, err := strconv.ParseInt(v, 10, 64)
		switch {
		case err != nil:
			invalid = append(invalid, &errs.SelectionError{Value: raw, Reason: "not a course id"})
		case id <= 0:
			invalid = append(invalid, &errs.SelectionError{Value: raw, Reason: "course id must be positive"})
		default:
			ids = append(ids, id)
		}
	}
	return ids, invalid
}
