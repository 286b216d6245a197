package paging

import (
	"context"
	"fmt"
	"slices"

	"github.com/and161185/registrar/internal/errs"
)

// SliceSource is an in-memory Source. The filter and ordering are applied once, at construction.
type SliceSource[T any] struct {
	items []T
}

// FromSlice builds a Source over items. keep may be nil (no filter); cmp may be nil
// (keep input order). Sorting is stable, so equal keys keep their input order.
func FromSlice[T any](items []T, keep func(T) bool, cmp func(a, b T) int) *SliceSource[T] {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep == nil || keep(it) {
			out = append(out, it)
		}
	}
	if cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return &SliceSource[T]{items: out}
}

// Count implements Source.
func (s *SliceSource[T]) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(s.items), nil
}

// Fetch implements Source.
func (s *SliceSource[T]) Fetch(ctx context.Context, offset, limit int) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: offset %d limit %d", errs.ErrValidation, offset, limit)
	}
	if offset >= len(s.items) {
		return []T{}, nil
	}
	end := min(offset+limit, len(s.items))
	return slices.Clone(s.items[offset:end]), nil
}
