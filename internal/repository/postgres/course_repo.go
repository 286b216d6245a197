package postgres

import (
	"context"
	"fmt"

	"github.com/and161185/registrar/internal/errs"
	"github.com/and161185/registrar/internal/model"
)

// CourseRepo implements CourseRepository using PostgreSQL.
type CourseRepo struct{ db *DB }

// NewCourseRepo constructs a course repository.
func NewCourseRepo(db *DB) *CourseRepo { return &CourseRepo{db: db} }

// List returns every course with its department name.
func (r *CourseRepo) List(ctx context.Context) ([]model.Course, error) {
	const q = `
SELECT c.id, c.title, c.credits, c.department_id, d.name
FROM courses c
JOIN departments d ON d.id = c.department_id
ORDER BY c.id`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, errs.Storage("list courses", err)
	}
	defer rows.Close()

	var out []model.Course
	for rows.Next() {
		var (
			c    model.Course
			dept string
		)
		if err := rows.Scan(&c.ID, &c.Title, &c.Credits, &c.DepartmentID, &dept); err != nil {
			return nil, errs.Storage("list courses", err)
		}
		c.Department = &model.Department{ID: c.DepartmentID, Name: dept}
		out = append(out, c)
	}
	return out, errs.Storage("list courses", rows.Err())
}

// GetByIDs returns the existing courses among ids.
func (r *CourseRepo) GetByIDs(ctx context.Context, ids []int64) ([]model.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const q = `
SELECT id, title, credits, department_id
FROM courses
WHERE id = ANY($1)
ORDER BY id`
	rows, err := r.db.Pool.Query(ctx, q, ids)
	if err != nil {
		return nil, errs.Storage("get courses", err)
	}
	defer rows.Close()

	var out []model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Credits, &c.DepartmentID); err != nil {
			return nil, errs.Storage("get courses", err)
		}
		out = append(out, c)
	}
	return out, errs.Storage("get courses", rows.Err())
}

// Create inserts a course under its caller-assigned ID.
func (r *CourseRepo) Create(ctx context.Context, c *model.Course) error {
	const q = `
INSERT INTO courses (id, title, credits, department_id)
VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, c.ID, c.Title, c.Credits, c.DepartmentID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: course %d already exists", errs.ErrValidation, c.ID)
	}
	return errs.Storage("create course", err)
}
