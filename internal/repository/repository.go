// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/registrar/internal/model"
	"github.com/and161185/registrar/internal/paging"
)

// InstructorRepository loads and persists instructors together with their
// office assignment and course association set.
type InstructorRepository interface {
	// Get loads an instructor with office and courses eagerly loaded.
	Get(ctx context.Context, id int64) (*model.Instructor, error)
	// Create inserts the instructor graph and sets in.ID.
	Create(ctx context.Context, in *model.Instructor) error
	// Save persists the instructor graph in one transaction. A nil Office deletes the
	// office row; the course association set is brought to exactly in.Courses.
	Save(ctx context.Context, in *model.Instructor) error
}

// CourseRepository provides access to the course catalog.
type CourseRepository interface {
	// List returns every course with its department name, ordered by ID.
	List(ctx context.Context) ([]model.Course, error)
	// GetByIDs returns the courses among ids that exist; missing ids are simply absent.
	GetByIDs(ctx context.Context, ids []int64) ([]model.Course, error)
	// Create inserts a course with a caller-assigned ID.
	Create(ctx context.Context, c *model.Course) error
}

// DepartmentRepository provides versioned access to departments.
// It satisfies guard.Store[model.Department].
type DepartmentRepository interface {
	// Get loads a department including its current concurrency token.
	Get(ctx context.Context, id int64) (*model.Department, error)
	// List returns all departments ordered by name.
	List(ctx context.Context) ([]model.Department, error)
	// Create inserts a department, sets d.ID and a fresh token.
	Create(ctx context.Context, d *model.Department) error
	// Save writes d if the stored token equals expected and stores the new token in d.
	Save(ctx context.Context, d *model.Department, expected model.Token) error
	// Delete removes the department if the stored token equals expected.
	Delete(ctx context.Context, id int64, expected model.Token) error
}

// StudentRepository serves the student list and its aggregates.
type StudentRepository interface {
	// Query returns a source over students whose last or first name contains
	// filter (case-insensitive; empty matches all), ordered by sort.
	Query(filter string, sort model.StudentSort) paging.Source[model.Student]
	// Create inserts a student and sets s.ID.
	Create(ctx context.Context, s *model.Student) error
	// EnrollmentDateGroups counts students per enrollment date, oldest first.
	EnrollmentDateGroups(ctx context.Context) ([]model.EnrollmentDateGroup, error)
}

// Set bundles the repositories of one backend.
type Set struct {
	Instructors InstructorRepository
	Courses     CourseRepository
	Departments DepartmentRepository
	Students    StudentRepository
}
