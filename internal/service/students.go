package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/and161185/registrar/internal/errs"
	"github.com/and161185/registrar/internal/metrics"
	"github.com/and161185/registrar/internal/model"
	"github.com/and161185/registrar/internal/paging"
	"github.com/and161185/registrar/internal/repository"
)

// StudentPage is one page of the student list plus the state a caller carries to the next request.
type StudentPage struct {
	*paging.Page[model.Student]
	SortOrder     model.StudentSort
	CurrentFilter string
	NameSort      model.StudentSort // sort key to offer on the name column
	DateSort      model.StudentSort // sort key to offer on the date column
}

// StudentService defines the student list and its aggregates.
type StudentService interface {
	// List returns the requested page of the filtered, sorted student list.
	List(ctx context.Context, req paging.Request) (*StudentPage, error)
	// Create inserts a student.
	Create(ctx context.Context, st *model.Student) error
	// EnrollmentDateGroups counts students per enrollment date.
	EnrollmentDateGroups(ctx context.Context) ([]model.EnrollmentDateGroup, error)
}

// StudentServiceImpl implements StudentService with a fixed page size.
type StudentServiceImpl struct {
	repo     repository.StudentRepository
	pageSize int
	log      *zap.Logger
	m        *metrics.Metrics
}

// NewStudentService constructs StudentService serving pages of pageSize students.
func NewStudentService(repo repository.StudentRepository, pageSize int, log *zap.Logger, m *metrics.Metrics) *StudentServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &StudentServiceImpl{repo: repo, pageSize: pageSize, log: log, m: m}
}

// List resolves filter and page index from req and materializes one page.
// A newly submitted filter restarts at page 1.
func (s *StudentServiceImpl) List(ctx context.Context, req paging.Request) (*StudentPage, error) {
	sort := model.ParseStudentSort(req.SortOrder)
	filter, pageIndex := req.Resolve()
	filter = strings.TrimSpace(filter)

	page, err := paging.Create(ctx, s.repo.Query(filter, sort), pageIndex, s.pageSize)
	if err != nil {
		return nil, err
	}
	s.m.PageServed("student")
	s.log.Debug("student page served",
		zap.String("filter", filter),
		zap.String("sort", string(sort)),
		zap.Int("page", page.PageIndex),
		zap.Int("total", page.TotalCount),
	)

	nameSort, dateSort := model.NextSorts(sort)
	return &StudentPage{
		Page:          page,
		SortOrder:     sort,
		CurrentFilter: filter,
		NameSort:      nameSort,
		DateSort:      dateSort,
	}, nil
}

// Create validates and inserts a student.
func (s *StudentServiceImpl) Create(ctx context.Context, st *model.Student) error {
	st.LastName = strings.TrimSpace(st.LastName)
	st.FirstMidName = strings.TrimSpace(st.FirstMidName)
	for field, v := range map[string]string{"last name": st.LastName, "first name": st.FirstMidName} {
		if n := utf8.RuneCountInString(v); n == 0 || n > 50 {
			return fmt.Errorf("%w: %s must be 1..50 characters", errs.ErrValidation, field)
		}
	}
	if st.EnrollmentDate.IsZero() {
		return fmt.Errorf("%w: enrollment date is required", errs.ErrValidation)
	}
	return s.repo.Create(ctx, st)
}

// EnrollmentDateGroups counts students per enrollment date.
func (s *StudentServiceImpl) EnrollmentDateGroups(ctx context.Context) ([]model.EnrollmentDateGroup, error) {
	return s.repo.EnrollmentDateGroups(ctx)
}
