// Package service contains application services over the registrar repositories.
package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/and161185/registrar/internal/errs"
	"github.com/and161185/registrar/internal/metrics"
	"github.com/and161185/registrar/internal/model"
	"github.com/and161185/registrar/internal/reconcile"
	"github.com/and161185/registrar/internal/repository"
)

// AssignmentReport describes how a submitted course selection changed an instructor.
type AssignmentReport struct {
	Added   []int64
	Removed []int64
	Invalid []*errs.SelectionError
}

// InstructorService defines operations over instructors and their course assignments.
type InstructorService interface {
	// Get returns an instructor with office and courses.
	Get(ctx context.Context, id int64) (*model.Instructor, error)
	// Create inserts a new instructor assigned to the selected courses.
	Create(ctx context.Context, patch model.InstructorPatch, selected []string) (*model.Instructor, AssignmentReport, error)
	// Update applies patch and replaces the course assignments with the selection.
	Update(ctx context.Context, id int64, patch model.InstructorPatch, selected []string) (*model.Instructor, AssignmentReport, error)
}

// InstructorServiceImpl implements InstructorService and reconciles course assignments.
type InstructorServiceImpl struct {
	instructors repository.InstructorRepository
	courses     repository.CourseRepository
	log         *zap.Logger
	m           *metrics.Metrics
}

// NewInstructorService constructs InstructorService. log and m may be nil.
func NewInstructorService(
	instructors repository.InstructorRepository, courses repository.CourseRepository,
	log *zap.Logger, m *metrics.Metrics,
) *InstructorServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &InstructorServiceImpl{instructors: instructors, courses: courses, log: log, m: m}
}

// Get returns an instructor with office and courses.
func (s *InstructorServiceImpl) Get(ctx context.Context, id int64) (*model.Instructor, error) {
	return s.instructors.Get(ctx, id)
}

// Create validates the patch, resolves the selection and inserts the instructor.
func (s *InstructorServiceImpl) Create(
	ctx context.Context, patch model.InstructorPatch, selected []string,
) (*model.Instructor, AssignmentReport, error) {
	if err := patch.ValidateNew(); err != nil {
		return nil, AssignmentReport{}, err
	}
	in := &model.Instructor{}
	patch.ApplyTo(in)
	normalizeOffice(in)

	rep, err := s.assign(ctx, in, selected)
	if err != nil {
		return nil, AssignmentReport{}, err
	}
	if err := s.instructors.Create(ctx, in); err != nil {
		return nil, AssignmentReport{}, err
	}
	s.record(in.ID, rep)
	return in, rep, nil
}

// Update loads the instructor, applies patch, reconciles the course set against the
// selection and saves the graph. Invalid selection entries are skipped and reported;
// a nil selection removes every assignment.
func (s *InstructorServiceImpl) Update(
	ctx context.Context, id int64, patch model.InstructorPatch, selected []string,
) (*model.Instructor, AssignmentReport, error) {
	if err := patch.Validate(); err != nil {
		return nil, AssignmentReport{}, err
	}
	in, err := s.instructors.Get(ctx, id)
	if err != nil {
		return nil, AssignmentReport{}, err
	}
	patch.ApplyTo(in)
	normalizeOffice(in)

	rep, err := s.assign(ctx, in, selected)
	if err != nil {
		return nil, AssignmentReport{}, err
	}
	if err := s.instructors.Save(ctx, in); err != nil {
		return nil, AssignmentReport{}, err
	}
	s.record(in.ID, rep)
	return in, rep, nil
}

// assign reconciles in.Courses with the selection. Only ids not already assigned are
// looked up in the catalog.
func (s *InstructorServiceImpl) assign(ctx context.Context, in *model.Instructor, selected []string) (AssignmentReport, error) {
	ids, invalid := ParseSelection(selected)

	assigned := make(map[int64]struct{}, len(in.Courses))
	for _, c := range in.Courses {
		assigned[c.ID] = struct{}{}
	}
	var lookup []int64
	for _, id := range ids {
		if _, ok := assigned[id]; !ok {
			lookup = append(lookup, id)
		}
	}
	found, err := s.courses.GetByIDs(ctx, lookup)
	if err != nil {
		return AssignmentReport{}, err
	}
	catalog := make(map[int64]model.Course, len(found))
	for _, c := range found {
		catalog[c.ID] = c
	}

	courses, res := reconcile.Apply(in.Courses, ids,
		func(c model.Course) int64 { return c.ID },
		func(id int64) (model.Course, bool) {
			c, ok := catalog[id]
			return c, ok
		},
	)
	in.Courses = courses
	for _, id := range res.Unknown {
		invalid = append(invalid, &errs.SelectionError{Value: strconv.FormatInt(id, 10), Reason: "no such course"})
	}
	return AssignmentReport{Added: res.Added, Removed: res.Removed, Invalid: invalid}, nil
}

func (s *InstructorServiceImpl) record(instructorID int64, rep AssignmentReport) {
	for _, se := range rep.Invalid {
		s.log.Warn("skipped course selection",
			zap.Int64("instructor_id", instructorID),
			zap.String("value", se.Value),
			zap.String("reason", se.Reason),
		)
	}
	s.m.InvalidSelections(len(rep.Invalid))
	s.m.Reconciled(len(rep.Added), len(rep.Removed))
	s.log.Debug("course assignments reconciled",
		zap.Int64("instructor_id", instructorID),
		zap.Int64s("added", rep.Added),
		zap.Int64s("removed", rep.Removed),
	)
}

// normalizeOffice drops an office assignment without a location so no empty row is stored.
func normalizeOffice(in *model.Instructor) {
	if in.Office.IsBlank() {
		in.Office = nil
	}
}
