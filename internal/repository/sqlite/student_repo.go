package sqlite

import (
	"context"

	"github.com/and161185/registrar/internal/errs"
	"github.com/and161185/registrar/internal/model"
	"github.com/and161185/registrar/internal/paging"
	"github.com/and161185/registrar/internal/repository"
)

// StudentRepo implements StudentRepository using SQLite.
type StudentRepo struct{ db *DB }

// NewStudentRepo constructs a student repository.
func NewStudentRepo(db *DB) *StudentRepo { return &StudentRepo{db: db} }

// Query returns a paging source over the filtered, sorted student list.
// SQLite LIKE is case-insensitive for ASCII letters only.
func (r *StudentRepo) Query(filter string, sort model.StudentSort) paging.Source[model.Student] {
	return &studentSource{db: r.db, filter: filter, sort: sort}
}

// Create inserts a student.
func (r *StudentRepo) Create(ctx context.Context, s *model.Student) error {
	const q = `
INSERT INTO students (last_name, first_mid_name, enrollment_date)
VALUES (?, ?, ?)
RETURNING id`
	if err := r.db.sql.QueryRowContext(ctx, q, s.LastName, s.FirstMidName, formatDate(s.EnrollmentDate)).Scan(&s.ID); err != nil {
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
	rows, err := r.db.sql.QueryContext(ctx, q)
	if err != nil {
		return nil, errs.Storage("enrollment stats", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.EnrollmentDateGroup
	for rows.Next() {
		var (
			date  string
			count int
		)
		if err := rows.Scan(&date, &count); err != nil {
			return nil, errs.Storage("enrollment stats", err)
		}
		d, err := parseDate(date)
		if err != nil {
			return nil, errs.Storage("enrollment stats", err)
		}
		out = append(out, model.EnrollmentDateGroup{EnrollmentDate: d, StudentCount: count})
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
	p := repository.ContainsPattern(s.filter)
	return `
WHERE last_name LIKE ? ESCAPE '\' OR first_mid_name LIKE ? ESCAPE '\'`, []any{p, p}
}

func (s *studentSource) Count(ctx context.Context) (int, error) {
	where, args := s.where()
	var n int
	if err := s.db.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`+where, args...).Scan(&n); err != nil {
		return 0, errs.Storage("count students", err)
	}
	return n, nil
}

func (s *studentSource) Fetch(ctx context.Context, offset, limit int) ([]model.Student, error) {
	where, args := s.where()
	q := `
SELECT id, last_name, first_mid_name, enrollment_date
FROM students` + where + `
ORDER BY ` + studentOrder(s.sort) + `
LIMIT ? OFFSET ?`
	rows, err := s.db.sql.QueryContext(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, errs.Storage("fetch students", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.Student, 0, limit)
	for rows.Next() {
		var (
			st       model.Student
			enrolled string
		)
		if err := rows.Scan(&st.ID, &st.LastName, &st.FirstMidName, &enrolled); err != nil {
			return nil, errs.Storage("fetch students", err)
		}
		if st.EnrollmentDate, err = parseDate(enrolled); err != nil {
			return nil, errs.Storage("fetch students", err)
		}
		out = append(out, st)
	}
	return out, errs.Storage("fetch students", rows.Err())
}

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
