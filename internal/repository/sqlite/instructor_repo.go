package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/and161185/registrar/internal/errs"
	"github.com/and161185/registrar/internal/model"
	"github.com/and161185/registrar/internal/reconcile"
)

// InstructorRepo implements InstructorRepository using SQLite.
type InstructorRepo struct{ db *DB }

// NewInstructorRepo constructs an instructor repository.
func NewInstructorRepo(db *DB) *InstructorRepo { return &InstructorRepo{db: db} }

// Get loads an instructor with office assignment and assigned courses.
func (r *InstructorRepo) Get(ctx context.Context, id int64) (*model.Instructor, error) {
	const q = `
SELECT i.id, i.last_name, i.first_mid_name, i.hire_date, o.location
FROM instructors i
LEFT JOIN office_assignments o ON o.instructor_id = i.id
WHERE i.id = ?`
	var (
		in       model.Instructor
		hired    string
		location sql.NullString
	)
	err := r.db.sql.QueryRowContext(ctx, q, id).Scan(&in.ID, &in.LastName, &in.FirstMidName, &hired, &location)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("instructor %d: %w", id, errs.ErrNotFound)
		}
		return nil, errs.Storage("get instructor", err)
	}
	if in.HireDate, err = parseDate(hired); err != nil {
		return nil, errs.Storage("get instructor", err)
	}
	if location.Valid {
		in.Office = &model.OfficeAssignment{InstructorID: in.ID, Location: location.String}
	}

	const cq = `
SELECT c.id, c.title, c.credits, c.department_id
FROM course_assignments ca
JOIN courses c ON c.id = ca.course_id
WHERE ca.instructor_id = ?
ORDER BY c.id`
	rows, err := r.db.sql.QueryContext(ctx, cq, id)
	if err != nil {
		return nil, errs.Storage("get instructor courses", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Credits, &c.DepartmentID); err != nil {
			return nil, errs.Storage("get instructor courses", err)
		}
		in.Courses = append(in.Courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("get instructor courses", err)
	}
	return &in, nil
}

// Create inserts the instructor, its office when not blank and its course assignments.
func (r *InstructorRepo) Create(ctx context.Context, in *model.Instructor) error {
	const ins = `
INSERT INTO instructors (last_name, first_mid_name, hire_date)
VALUES (?, ?, ?)
RETURNING id`
	var id int64
	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, ins, in.LastName, in.FirstMidName, formatDate(in.HireDate)).Scan(&id); err != nil {
			return err
		}
		if err := saveOffice(ctx, tx, id, in.Office); err != nil {
			return err
		}
		add, _ := reconcile.Diff(nil, in.CourseIDs())
		return assignCourses(ctx, tx, id, add)
	})
	if err != nil {
		return errs.Storage("create instructor", err)
	}
	in.ID = id
	if in.Office != nil {
		in.Office.InstructorID = id
	}
	return nil
}

// Save writes the scalar fields, the office assignment and the course association
// set of in inside one transaction. Only the association differences are written.
func (r *InstructorRepo) Save(ctx context.Context, in *model.Instructor) error {
	const upd = `
UPDATE instructors
SET last_name = ?, first_mid_name = ?, hire_date = ?
WHERE id = ?`

	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, upd, in.LastName, in.FirstMidName, formatDate(in.HireDate), in.ID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("instructor %d: %w", in.ID, errs.ErrNotFound)
		}
		if err := saveOffice(ctx, tx, in.ID, in.Office); err != nil {
			return err
		}

		current, err := assignedCourseIDs(ctx, tx, in.ID)
		if err != nil {
			return err
		}
		add, remove := reconcile.Diff(current, in.CourseIDs())
		if len(remove) > 0 {
			q := `DELETE FROM course_assignments WHERE instructor_id = ? AND course_id IN (` + placeholders(len(remove)) + `)`
			if _, err := tx.ExecContext(ctx, q, append([]any{in.ID}, int64Args(remove)...)...); err != nil {
				return err
			}
		}
		return assignCourses(ctx, tx, in.ID, add)
	})
	return errs.Storage("save instructor", err)
}

func assignedCourseIDs(ctx context.Context, tx *sql.Tx, instructorID int64) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT course_id FROM course_assignments WHERE instructor_id = ?`, instructorID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// saveOffice upserts the office row, or deletes it when office carries no location.
func saveOffice(ctx context.Context, tx *sql.Tx, instructorID int64, office *model.OfficeAssignment) error {
	if office.IsBlank() {
		_, err := tx.ExecContext(ctx, `DELETE FROM office_assignments WHERE instructor_id = ?`, instructorID)
		return err
	}
	const q = `
INSERT INTO office_assignments (instructor_id, location)
VALUES (?, ?)
ON CONFLICT (instructor_id) DO UPDATE SET location = excluded.location`
	_, err := tx.ExecContext(ctx, q, instructorID, strings.TrimSpace(office.Location))
	return err
}

func assignCourses(ctx context.Context, tx *sql.Tx, instructorID int64, courseIDs []int64) error {
	if len(courseIDs) == 0 {
		return nil
	}
	values := strings.TrimSuffix(strings.Repeat("(?, ?), ", len(courseIDs)), ", ")
	args := make([]any, 0, 2*len(courseIDs))
	for _, id := range courseIDs {
		args = append(args, instructorID, id)
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO course_assignments (instructor_id, course_id) VALUES `+values, args...)
	return err
}
