package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/registrar/internal/errs"
	"github.com/and161185/registrar/internal/model"
	"github.com/and161185/registrar/internal/paging"
	"github.com/and161185/registrar/internal/repository"
)

// StudentRepo implements StudentRepository using PostgreSQL.
type StudentRepo struct{ db *DB }

// NewStudentRepo constructs a student repository.
func NewStudentRepo(db *DB) *StudentRepo { return &StudentRepo{db: db} }

// Query returns a paging source over the filtered, sorted student list.
func (r *StudentRepo) Query(filter string, sort model.StudentSort) paging.Source[model.Student] {
	return &studentSource{db: r.db, filter: filter, sort: sort}
}

// Create inserts a student.
func (r *StudentRepo) Create(ctx context.Context, s *model.Student) error {
	const q = `
INSERT INTO students (last_name, first_mid_name, enrollment_date)
VALUES ($1, $2, $3)
RETURNING id`
	if err := r.db.Pool.QueryRow(ctx, q, s.LastName, s.FirstMidName, s.EnrollmentDate).Scan(&s.ID); err != nil {
		return errs.Storage("create student", err)
	}
	return nil
}

// EnrollmentDateGroups counts students per enrollment date.
func (r *StudentRepo) EnrollmentDateGroups(ctx context.Context) ([]model.EnrollmentDateGroup, error) {
	const q = `
SELECT enrollment_date, COUNT(*)
FROM students
GROUP BY enrollment_date
ORDER BY enrollment_date`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, errs.Storage("enrollment stats", err)
	}
	defer rows.Close()

	var out []model.EnrollmentDateGroup
	for rows.Next() {
		var (
			g     model.EnrollmentDateGroup
			count int64
		)
		if err := rows.Scan(&g.EnrollmentDate, &count); err != nil {
			return nil, errs.Storage("enrollment stats", err)
		}
		g.StudentCount = int(count)
		out = append(out, g)
	}
	return out, errs.Storage("enrollment stats", rows.Err())
}

type studentSource struct {
	db     *DB
	filter string
	sort   model.StudentSort
}

func (s *studentSource) where() (string, []any) {
	if s.filter == "" {
		return "", nil
	}
	return `
WHERE last_name ILIKE $1 OR first_mid_name ILIKE $1`, []any{repository.ContainsPattern(s.filter)}
}

func (s *studentSource) Count(ctx context.Context) (int, error) {
	where, args := s.where()
	var n int64
	if err := s.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM students`+where, args...).Scan(&n); err != nil {
		return 0, errs.Storage("count students", err)
	}
	return int(n), nil
}

func (s *studentSource) Fetch(ctx context.Context, offset, limit int) ([]model.Student, error) {
	where, args := s.where()
	q := `
SELECT id, last_name, first_mid_name, enrollment_date
FROM students` + where + `
ORDER BY ` + studentOrder(s.sort) +
		fmt.Sprintf(`
LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, errs.Storage("fetch students", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Student, error) {
		var st model.Student
		err := row.Scan(&st.ID, &st.LastName, &st.FirstMidName, &st.EnrollmentDate)
		return st, err
	})
	if err != nil {
		return nil, errs.Storage("fetch students", err)
	}
	return out, nil
}

// studentOrder maps a sort key onto a fixed ORDER BY clause. The id tiebreak keeps
// paging stable across equal names or dates.
func studentOrder(sort model.StudentSort) string {
	switch sort {
	case model.SortNameDesc:
		return "last_name DESC, id"
	case model.SortDateAsc:
		return "enrollment_date, id"
	case model.SortDateDesc:
		return "enrollment_date DESC, id"
	default:
		return "last_name, id"
	}
}
