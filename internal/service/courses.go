package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/and161185/registrar/internal/errs"
	"github.com/and161185/registrar/internal/model"
	"github.com/and161185/registrar/internal/repository"
)

// CourseService defines operations over the course catalog.
type CourseService interface {
	// List returns every course with its department.
	List(ctx context.Context) ([]model.Course, error)
	// Create inserts a course under its caller-assigned ID.
	Create(ctx context.Context, c *model.Course) error
}

// CourseServiceImpl implements CourseService over a CourseRepository.
type CourseServiceImpl struct {
	repo repository.CourseRepository
}

// NewCourseService constructs CourseService.
func NewCourseService(repo repository.CourseRepository) *CourseServiceImpl {
	return &CourseServiceImpl{repo: repo}
}

// List returns every course with its department.
func (s *CourseServiceImpl) List(ctx context.Context) ([]model.Course, error) {
	return s.repo.List(ctx)
}

// Create validates and inserts a course.
// Rules: positive id and department, title of 3..50 characters, credits 0..5.
func (s *CourseServiceImpl) Create(ctx context.Context, c *model.Course) error {
	c.Title = strings.TrimSpace(c.Title)
	switch n := utf8.RuneCountInString(c.Title); {
	case c.ID <= 0:
		return fmt.Errorf("%w: course id must be positive", errs.ErrValidation)
	case n < 3 || n > 50:
		return fmt.Errorf("%w: title must be 3..50 characters", errs.ErrValidation)
	case c.Credits < 0 || c.Credits > 5:
		return fmt.Errorf("%w: credits must be 0..5", errs.ErrValidation)
	case c.DepartmentID <= 0:
		return fmt.Errorf("%w: department is required", errs.ErrValidation)
	}
	return s.repo.Create(ctx, c)
}
