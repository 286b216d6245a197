// Package guard wraps writes to versioned entities with a concurrency token check.
//
// A guarded write loads the entity, applies the caller's mutation and saves it with the
// token the caller originally read. The store rejects the save when the stored token has
// moved on; the guard reports that as a DataConflict and never merges or retries.
package guard

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/and161185/registrar/internal/errs"
	"github.com/and161185/registrar/internal/metrics"
	"github.com/and161185/registrar/internal/model"
)

// Store is the storage boundary a guarded write needs.
type Store[T any] interface {
	// Get loads the entity or returns errs.ErrNotFound.
	Get(ctx context.Context, id int64) (*T, error)
	// Save writes entity if the stored token equals expected, regenerates the token and
	// stores it in entity. A mismatch yields *errs.ConflictError and writes nothing.
	Save(ctx context.Context, entity *T, expected model.Token) error
	// Delete removes the entity under the same token rule.
	Delete(ctx context.Context, id int64, expected model.Token) error
}

// Guard serializes nothing; it detects stale writes.
type Guard[T any] struct {
	entity string
	store  Store[T]
	log    *zap.Logger
	m      *metrics.Metrics
}

// New constructs a guard for one entity kind. log and m may be nil.
func New[T any](entity string, store Store[T], log *zap.Logger, m *metrics.Metrics) *Guard[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard[T]{entity: entity, store: store, log: log, m: m}
}

// Update loads id, applies mutate and saves the result against expected.
// Errors returned by mutate abort the write and are returned unchanged.
func (g *Guard[T]) Update(ctx context.Context, id int64, expected model.Token, mutate func(*T) error) (*T, error) {
	cur, err := g.store.Get(ctx, id)
	if err != nil {
		return nil, g.classify("load", id, err)
	}
	if err := mutate(cur); err != nil {
		return nil, err
	}
	if err := g.store.Save(ctx, cur, expected); err != nil {
		return nil, g.classify("save", id, err)
	}
	g.m.GuardedWrite(g.entity, metrics.OutcomeCommitted)
	return cur, nil
}

// Delete removes id if its stored token still equals expected.
func (g *Guard[T]) Delete(ctx context.Context, id int64, expected model.Token) error {
	if err := g.store.Delete(ctx, id, expected); err != nil {
		return g.classify("delete", id, err)
	}
	g.m.GuardedWrite(g.entity, metrics.OutcomeCommitted)
	return nil
}

func (g *Guard[T]) classify(op string, id int64, err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return err
	case errors.Is(err, errs.ErrDataConflict):
		g.m.GuardedWrite(g.entity, metrics.OutcomeConflict)
		g.log.Warn("concurrency conflict",
			zap.String("entity", g.entity),
			zap.Int64("id", id),
			zap.String("op", op),
			zap.Error(err),
		)
		return err
	default:
		g.m.GuardedWrite(g.entity, metrics.OutcomeFailed)
		g.log.Error("guarded write failed",
			zap.String("entity", g.entity),
			zap.Int64("id", id),
			zap.String("op", op),
			zap.Error(err),
		)
		return errs.Storage(op+" "+g.entity, err)
	}
}
