package guard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/and161185/registrar/internal/errs"
	"github.com/and161185/registrar/internal/metrics"
	"github.com/and161185/registrar/internal/model"
)

// memStore mimics the storage contract: tokens are regenerated on every successful write.
type memStore struct {
	mu      sync.Mutex
	rows    map[int64]model.Department
	getErr  error
	saveErr error
	saves   int
}

var _ Store[model.Department] = (*memStore)(nil)

func newMemStore(t *testing.T, ds ...model.Department) *memStore {
	t.Helper()
	s := &memStore{rows: map[int64]model.Department{}}
	for _, d := range ds {
		tok, err := model.NewToken()
		require.NoError(t, err)
		d.ConcurrencyToken = tok
		s.rows[d.ID] = d
	}
	return s
}

func (s *memStore) Get(_ context.Context, id int64) (*model.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	d, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("department %d: %w", id, errs.ErrNotFound)
	}
	d.ConcurrencyToken = append(model.Token(nil), d.ConcurrencyToken...)
	return &d, nil
}

func (s *memStore) Save(_ context.Context, d *model.Department, expected model.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	cur, ok := s.rows[d.ID]
	if !ok {
		return &errs.ConflictError{Entity: "department", ID: d.ID, Expected: expected, Deleted: true}
	}
	if !cur.ConcurrencyToken.Equal(expected) {
		return &errs.ConflictError{Entity: "department", ID: d.ID, Expected: expected, Current: cur.ConcurrencyToken}
	}
	tok, err := model.NewToken()
	if err != nil {
		return err
	}
	d.ConcurrencyToken = tok
	s.rows[d.ID] = *d
	s.saves++
	return nil
}

func (s *memStore) Delete(_ context.Context, id int64, expected model.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rows[id]
	if !ok {
		return fmt.Errorf("department %d: %w", id, errs.ErrNotFound)
	}
	if !cur.ConcurrencyToken.Equal(expected) {
		return &errs.ConflictError{Entity: "department", ID: id, Expected: expected, Current: cur.ConcurrencyToken}
	}
	delete(s.rows, id)
	return nil
}

func newGuard(store Store[model.Department]) (*Guard[model.Department], *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return New("department", store, zap.New(core), metrics.New(prometheus.NewRegistry())), logs
}

func TestGuard_StaleWriterLoses(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t, model.Department{ID: 1, Name: "English", Budget: 35000000})
	g, logs := newGuard(store)

	a, err := store.Get(ctx, 1)
	require.NoError(t, err)
	b, err := store.Get(ctx, 1)
	require.NoError(t, err)
	t0 := a.ConcurrencyToken
	require.True(t, t0.Equal(b.ConcurrencyToken))

	saved, err := g.Update(ctx, 1, a.ConcurrencyToken, func(d *model.Department) error {
		d.Budget = 0
		return nil
	})
	require.NoError(t, err)
	require.False(t, saved.ConcurrencyToken.Equal(t0), "token must change on write")

	_, err = g.Update(ctx, 1, b.ConcurrencyToken, func(d *model.Department) error {
		d.Name = "Writer B"
		return nil
	})
	require.ErrorIs(t, err, errs.ErrDataConflict)
	require.NotErrorIs(t, err, errs.ErrStorage)

	var ce *errs.ConflictError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, []byte(saved.ConcurrencyToken), ce.Current)

	stored, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "English", stored.Name)
	require.Equal(t, model.Money(0), stored.Budget)
	require.Equal(t, 1, store.saves)

	require.Equal(t, 1, logs.FilterMessage("concurrency conflict").Len())
}

func TestGuard_RetryWithFreshTokenSucceeds(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t, model.Department{ID: 1, Name: "Mathematics"})
	g, _ := newGuard(store)
	stale := store.rows[1].ConcurrencyToken

	_, err := g.Update(ctx, 1, stale, func(*model.Department) error { return nil })
	require.NoError(t, err)

	_, err = g.Update(ctx, 1, stale, func(*model.Department) error { return nil })
	var ce *errs.ConflictError
	require.True(t, errors.As(err, &ce))

	_, err = g.Update(ctx, 1, ce.Current, func(d *model.Department) error {
		d.Name = "Applied Mathematics"
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "Applied Mathematics", store.rows[1].Name)
}

func TestGuard_MutateErrorAbortsWithoutWrite(t *testing.T) {
	store := newMemStore(t, model.Department{ID: 1, Name: "Economics"})
	g, _ := newGuard(store)
	boom := errors.New("rejected by caller")

	_, err := g.Update(context.Background(), 1, store.rows[1].ConcurrencyToken, func(d *model.Department) error {
		d.Name = "changed"
		return boom
	})
	require.Same(t, boom, err)
	require.Zero(t, store.saves)
	require.Equal(t, "Economics", store.rows[1].Name)
}

func TestGuard_NotFoundPassesThrough(t *testing.T) {
	g, _ := newGuard(newMemStore(t))
	_, err := g.Update(context.Background(), 42, nil, func(*model.Department) error { return nil })
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NotErrorIs(t, err, errs.ErrStorage)
}

func TestGuard_StorageFailuresAreDistinct(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("connection refused")

	store := newMemStore(t, model.Department{ID: 1})
	store.getErr = cause
	g, logs := newGuard(store)
	_, err := g.Update(ctx, 1, nil, func(*model.Department) error { return nil })
	require.ErrorIs(t, err, errs.ErrStorage)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, errs.ErrDataConflict)
	require.Equal(t, 1, logs.FilterMessage("guarded write failed").Len())

	store = newMemStore(t, model.Department{ID: 1})
	store.saveErr = context.Canceled
	g, _ = newGuard(store)
	_, err = g.Update(ctx, 1, store.rows[1].ConcurrencyToken, func(*model.Department) error { return nil })
	require.ErrorIs(t, err, errs.ErrStorage)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGuard_Delete(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t, model.Department{ID: 1}, model.Department{ID: 2})
	g, _ := newGuard(store)

	stale := store.rows[1].ConcurrencyToken
	_, err := g.Update(ctx, 1, stale, func(*model.Department) error { return nil })
	require.NoError(t, err)
	require.ErrorIs(t, g.Delete(ctx, 1, stale), errs.ErrDataConflict)
	require.Contains(t, store.rows, int64(1))

	require.NoError(t, g.Delete(ctx, 2, store.rows[2].ConcurrencyToken))
	require.NotContains(t, store.rows, int64(2))
	require.ErrorIs(t, g.Delete(ctx, 2, nil), errs.ErrNotFound)
}

func TestGuard_SaveAfterConcurrentDelete(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t, model.Department{ID: 1})
	g, _ := newGuard(store)
	tok := store.rows[1].ConcurrencyToken

	_, err := g.Update(ctx, 1, tok, func(*model.Department) error {
		delete(store.rows, 1) // another writer removes the row between load and save
		return nil
	})
	var ce *errs.ConflictError
	require.True(t, errors.As(err, &ce))
	require.True(t, ce.Deleted)
}
