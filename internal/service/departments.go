package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/registrar/internal/errs"
	"github.com/and161185/registrar/internal/guard"
	"github.com/and161185/registrar/internal/metrics"
	"github.com/and161185/registrar/internal/model"
	"github.com/and161185/registrar/internal/repository"
)

// DepartmentService defines operations over versioned departments.
type DepartmentService interface {
	// Get returns a department with its current concurrency token.
	Get(ctx context.Context, id int64) (*model.Department, error)
	// List returns all departments.
	List(ctx context.Context) ([]model.Department, error)
	// Create inserts a department.
	Create(ctx context.Context, patch model.DepartmentPatch) (*model.Department, error)
	// Update applies patch if the department still carries the expected token.
	Update(ctx context.Context, id int64, expected model.Token, patch model.DepartmentPatch) (*model.Department, error)
	// Delete removes the department if it still carries the expected token.
	Delete(ctx context.Context, id int64, expected model.Token) error
}

// DepartmentServiceImpl implements DepartmentService; every edit goes through the concurrency guard.
type DepartmentServiceImpl struct {
	repo  repository.DepartmentRepository
	guard *guard.Guard[model.Department]
}

// NewDepartmentService constructs DepartmentService. log and m may be nil.
func NewDepartmentService(repo repository.DepartmentRepository, log *zap.Logger, m *metrics.Metrics) *DepartmentServiceImpl {
	return &DepartmentServiceImpl{
		repo:  repo,
		guard: guard.New[model.Department]("department", repo, log, m),
	}
}

// Get returns a department with its current concurrency token.
func (s *DepartmentServiceImpl) Get(ctx context.Context, id int64) (*model.Department, error) {
	return s.repo.Get(ctx, id)
}

// List returns all departments ordered by name.
func (s *DepartmentServiceImpl) List(ctx context.Context) ([]model.Department, error) {
	return s.repo.List(ctx)
}

// Create validates patch and inserts a department. Name and start date are required.
func (s *DepartmentServiceImpl) Create(ctx context.Context, patch model.DepartmentPatch) (*model.Department, error) {
	if patch.Name == nil || patch.StartDate == nil {
		return nil, fmt.Errorf("%w: name and start date are required", errs.ErrValidation)
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	d := &model.Department{}
	patch.ApplyTo(d)
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Update applies patch through the concurrency guard. A stale expected token
// yields an error matching errs.ErrDataConflict carrying the stored token.
func (s *DepartmentServiceImpl) Update(
	ctx context.Context, id int64, expected model.Token, patch model.DepartmentPatch,
) (*model.Department, error) {
	if err := checkToken(expected); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.guard.Update(ctx, id, expected, func(d *model.Department) error {
		patch.ApplyTo(d)
		return nil
	})
}

// Delete removes the department through the concurrency guard.
func (s *DepartmentServiceImpl) Delete(ctx context.Context, id int64, expected model.Token) error {
	if err := checkToken(expected); err != nil {
		return err
	}
	return s.guard.Delete(ctx, id, expected)
}

func checkToken(t model.Token) error {
	if len(t) != model.TokenSize {
		return fmt.Errorf("%w: concurrency token must be %d bytes", errs.ErrValidation, model.TokenSize)
	}
	return nil
}
