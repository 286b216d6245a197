// Package paging serves bounded pages of a filtered, sorted collection.
package paging

import (
	"context"
	"fmt"

	"github.com/and161185/registrar/internal/errs"
)

// Source is a filtered and sorted collection. Filter and sort are fixed by whoever
// builds the source; paging only counts and slices it.
type Source[T any] interface {
	// Count returns the size of the filtered, unpaginated collection.
	Count(ctx context.Context) (int, error)
	// Fetch returns at most limit items starting at offset, in source order.
	Fetch(ctx context.Context, offset, limit int) ([]T, error)
}

// Page is one slice of a Source plus the metadata needed to render a pager.
type Page[T any] struct {
	Items      []T
	PageIndex  int
	PageSize   int
	TotalCount int
	TotalPages int
}

// HasPrevious reports whether a page precedes this one.
func (p *Page[T]) HasPrevious() bool { return p.PageIndex > 1 }

// HasNext reports whether items exist beyond this page.
func (p *Page[T]) HasNext() bool { return p.PageIndex < p.TotalPages }

// Create counts src and materializes page pageIndex of size pageSize.
// pageIndex below 1 is treated as 1. Errors from src are returned unchanged.
func Create[T any](ctx context.Context, src Source[T], pageIndex, pageSize int) (*Page[T], error) {
	if pageSize < 1 {
		return nil, fmt.Errorf("%w: page size %d", errs.ErrValidation, pageSize)
	}
	if pageIndex < 1 {
		pageIndex = 1
	}

	total, err := src.Count(ctx)
	if err != nil {
		return nil, err
	}

	p := &Page[T]{
		Items:      []T{},
		PageIndex:  pageIndex,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: total / pageSize,
	}
	if total%pageSize != 0 {
		p.TotalPages++
	}

	// Compared before multiplying so huge indices cannot overflow the offset.
	if pageIndex > p.TotalPages {
		return p, nil
	}
	items, err := src.Fetch(ctx, (pageIndex-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	if len(items) > pageSize {
		items = items[:pageSize]
	}
	if items != nil {
		p.Items = items
	}
	return p, nil
}
