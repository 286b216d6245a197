package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/and161185/registrar/internal/errs"
	"github.com/and161185/registrar/internal/model"
	"github.com/and161185/registrar/internal/paging"
	"github.com/and161185/registrar/internal/repository"
)

type fakeInstructorRepo struct {
	rows    map[int64]model.Instructor
	nextID  int64
	saveErr error
	saves   int
}

var _ repository.InstructorRepository = (*fakeInstructorRepo)(nil)

func (f *fakeInstructorRepo) Get(_ context.Context, id int64) (*model.Instructor, error) {
	in, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("instructor %d: %w", id, errs.ErrNotFound)
	}
	in.Courses = slices.Clone(in.Courses)
	if in.Office != nil {
		o := *in.Office
		in.Office = &o
	}
	return &in, nil
}

func (f *fakeInstructorRepo) Create(_ context.Context, in *model.Instructor) error {
	f.nextID++
	in.ID = f.nextID
	f.rows[in.ID] = *in
	return nil
}

func (f *fakeInstructorRepo) Save(_ context.Context, in *model.Instructor) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.rows[in.ID]; !ok {
		return fmt.Errorf("instructor %d: %w", in.ID, errs.ErrNotFound)
	}
	f.saves++
	f.rows[in.ID] = *in
	return nil
}

type fakeCourseRepo struct {
	catalog map[int64]model.Course
	lookups [][]int64
	err     error
}

var _ repository.CourseRepository = (*fakeCourseRepo)(nil)

func newCatalog(ids ...int64) *fakeCourseRepo {
	f := &fakeCourseRepo{catalog: map[int64]model.Course{}}
	for _, id := range ids {
		f.catalog[id] = model.Course{ID: id, Title: fmt.Sprintf("Course %d", id), Credits: 3, DepartmentID: 1}
	}
	return f
}

func (f *fakeCourseRepo) List(context.Context) ([]model.Course, error) {
	out := make([]model.Course, 0, len(f.catalog))
	for _, c := range f.catalog {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b model.Course) int { return int(a.ID - b.ID) })
	return out, f.err
}

func (f *fakeCourseRepo) GetByIDs(_ context.Context, ids []int64) ([]model.Course, error) {
	f.lookups = append(f.lookups, slices.Clone(ids))
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Course
	for _, id := range ids {
		if c, ok := f.catalog[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) Create(_ context.Context, c *model.Course) error {
	if _, ok := f.catalog[c.ID]; ok {
		return fmt.Errorf("%w: course %d already exists", errs.ErrValidation, c.ID)
	}
	f.catalog[c.ID] = *c
	return nil
}

type fakeDepartmentRepo struct {
	rows   map[int64]model.Department
	nextID int64
}

var _ repository.DepartmentRepository = (*fakeDepartmentRepo)(nil)

func (f *fakeDepartmentRepo) Get(_ context.Context, id int64) (*model.Department, error) {
	d, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("department %d: %w", id, errs.ErrNotFound)
	}
	return &d, nil
}

func (f *fakeDepartmentRepo) List(context.Context) ([]model.Department, error) {
	var out []model.Department
	for _, d := range f.rows {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b model.Department) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (f *fakeDepartmentRepo) Create(_ context.Context, d *model.Department) error {
	tok, err := model.NewToken()
	if err != nil {
		return err
	}
	f.nextID++
	d.ID, d.ConcurrencyToken = f.nextID, tok
	f.rows[d.ID] = *d
	return nil
}

func (f *fakeDepartmentRepo) Save(_ context.Context, d *model.Department, expected model.Token) error {
	cur, ok := f.rows[d.ID]
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
	f.rows[d.ID] = *d
	return nil
}

func (f *fakeDepartmentRepo) Delete(_ context.Context, id int64, expected model.Token) error {
	cur, ok := f.rows[id]
	if !ok {
		return fmt.Errorf("department %d: %w", id, errs.ErrNotFound)
	}
	if !cur.ConcurrencyToken.Equal(expected) {
		return &errs.ConflictError{Entity: "department", ID: id, Expected: expected, Current: cur.ConcurrencyToken}
	}
	delete(f.rows, id)
	return nil
}

type fakeStudentRepo struct {
	students  []model.Student
	lastQuery struct {
		filter string
		sort   model.StudentSort
	}
	groups []model.EnrollmentDateGroup
}

var _ repository.StudentRepository = (*fakeStudentRepo)(nil)

func (f *fakeStudentRepo) Query(filter string, sort model.StudentSort) paging.Source[model.Student] {
	f.lastQuery.filter, f.lastQuery.sort = filter, sort
	keep := func(s model.Student) bool {
		q := strings.ToLower(filter)
		return strings.Contains(strings.ToLower(s.LastName), q) || strings.Contains(strings.ToLower(s.FirstMidName), q)
	}
	cmp := func(a, b model.Student) int { return strings.Compare(a.LastName, b.LastName) }
	if sort == model.SortNameDesc {
		cmp = func(a, b model.Student) int { return strings.Compare(b.LastName, a.LastName) }
	}
	return paging.FromSlice(f.students, keep, cmp)
}

func (f *fakeStudentRepo) Create(_ context.Context, s *model.Student) error {
	s.ID = int64(len(f.students) + 1)
	f.students = append(f.students, *s)
	return nil
}

func (f *fakeStudentRepo) EnrollmentDateGroups(context.Context) ([]model.EnrollmentDateGroup, error) {
	return f.groups, nil
}
