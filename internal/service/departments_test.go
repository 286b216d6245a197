package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/and161185/registrar/internal/errs"
	"github.com/and161185/registrar/internal/model"
)

func newDepartmentFixture(t *testing.T) (*DepartmentServiceImpl, *fakeDepartmentRepo, *observer.ObservedLogs) {
	t.Helper()
	repo := &fakeDepartmentRepo{rows: map[int64]model.Department{}}
	core, logs := observer.New(zapcore.InfoLevel)
	return NewDepartmentService(repo, zap.New(core), nil), repo, logs
}

func TestDepartmentService_CreateGetList(t *testing.T) {
	svc, _, _ := newDepartmentFixture(t)
	ctx := context.Background()
	start := time.Date(2007, 9, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, model.DepartmentPatch{Name: ptr("English")})
	require.ErrorIs(t, err, errs.ErrValidation)
	_, err = svc.Create(ctx, model.DepartmentPatch{Name: ptr("IT"), StartDate: &start})
	require.ErrorIs(t, err, errs.ErrValidation)

	d, err := svc.Create(ctx, model.DepartmentPatch{Name: ptr("English"), Budget: ptr(model.Money(35000000)), StartDate: &start})
	require.NoError(t, err)
	require.Len(t, d.ConcurrencyToken, model.TokenSize)

	_, err = svc.Create(ctx, model.DepartmentPatch{Name: ptr("Economics"), StartDate: &start})
	require.NoError(t, err)

	got, err := svc.Get(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, model.Money(35000000), got.Budget)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "Economics", all[0].Name)
}

func TestDepartmentService_TwoEditors(t *testing.T) {
	svc, repo, logs := newDepartmentFixture(t)
	ctx := context.Background()
	start := time.Date(2007, 9, 1, 0, 0, 0, 0, time.UTC)
	d, err := svc.Create(ctx, model.DepartmentPatch{Name: ptr("English"), Budget: ptr(model.Money(35000000)), StartDate: &start})
	require.NoError(t, err)

	a, err := svc.Get(ctx, d.ID)
	require.NoError(t, err)
	b, err := svc.Get(ctx, d.ID)
	require.NoError(t, err)

	saved, err := svc.Update(ctx, d.ID, a.ConcurrencyToken, model.DepartmentPatch{Budget: ptr(model.Money(0))})
	require.NoError(t, err)
	require.False(t, saved.ConcurrencyToken.Equal(a.ConcurrencyToken))

	_, err = svc.Update(ctx, d.ID, b.ConcurrencyToken, model.DepartmentPatch{Name: ptr("Writer B")})
	require.ErrorIs(t, err, errs.ErrDataConflict)
	var ce *errs.ConflictError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, []byte(saved.ConcurrencyToken), ce.Current)
	require.Equal(t, 1, logs.FilterMessage("concurrency conflict").Len())

	stored := repo.rows[d.ID]
	require.Equal(t, "English", stored.Name)
	require.Equal(t, model.Money(0), stored.Budget)

	// the rejected editor retries with the token it was shown
	_, err = svc.Update(ctx, d.ID, ce.Current, model.DepartmentPatch{Name: ptr("Writer B")})
	require.NoError(t, err)
	require.Equal(t, "Writer B", repo.rows[d.ID].Name)
}

func TestDepartmentService_UpdateValidation(t *testing.T) {
	svc, repo, _ := newDepartmentFixture(t)
	ctx := context.Background()
	start := time.Date(2007, 9, 1, 0, 0, 0, 0, time.UTC)
	d, err := svc.Create(ctx, model.DepartmentPatch{Name: ptr("English"), StartDate: &start})
	require.NoError(t, err)
	tok := d.ConcurrencyToken

	_, err = svc.Update(ctx, d.ID, nil, model.DepartmentPatch{})
	require.ErrorIs(t, err, errs.ErrValidation)
	_, err = svc.Update(ctx, d.ID, tok, model.DepartmentPatch{Budget: ptr(model.Money(-1))})
	require.ErrorIs(t, err, errs.ErrValidation)
	require.True(t, repo.rows[d.ID].ConcurrencyToken.Equal(tok), "rejected input writes nothing")

	_, err = svc.Update(ctx, 99, tok, model.DepartmentPatch{})
	require.ErrorIs(t, err, errs.ErrNotFound)

	admin := int64(3)
	saved, err := svc.Update(ctx, d.ID, tok, model.DepartmentPatch{AdministratorID: &admin})
	require.NoError(t, err)
	require.Equal(t, admin, *saved.AdministratorID)

	saved, err = svc.Update(ctx, d.ID, saved.ConcurrencyToken, model.DepartmentPatch{ClearAdministrator: true})
	require.NoError(t, err)
	require.Nil(t, saved.AdministratorID)
}

func TestDepartmentService_Delete(t *testing.T) {
	svc, repo, _ := newDepartmentFixture(t)
	ctx := context.Background()
	start := time.Date(2007, 9, 1, 0, 0, 0, 0, time.UTC)
	d, err := svc.Create(ctx, model.DepartmentPatch{Name: ptr("Mathematics"), StartDate: &start})
	require.NoError(t, err)
	stale := d.ConcurrencyToken

	_, err = svc.Update(ctx, d.ID, stale, model.DepartmentPatch{Name: ptr("Applied Mathematics")})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, d.ID, stale), errs.ErrDataConflict)
	require.Contains(t, repo.rows, d.ID)

	require.NoError(t, svc.Delete(ctx, d.ID, repo.rows[d.ID].ConcurrencyToken))
	require.ErrorIs(t, svc.Delete(ctx, d.ID, stale), errs.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, d.ID, model.Token("short")), errs.ErrValidation)
}
