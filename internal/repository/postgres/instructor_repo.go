package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/and161185/registrar/internal/errs"
	"github.com/and161185/registrar/internal/model"
	"github.com/and161185/registrar/internal/reconcile"
)

// InstructorRepo implements InstructorRepository using PostgreSQL.
type InstructorRepo struct{ db *DB }

// NewInstructorRepo constructs an instructor repository.
func NewInstructorRepo(db *DB) *InstructorRepo { return &InstructorRepo{db: db} }

// Get loads an instructor with office assignment and assigned courses.
func (r *InstructorRepo) Get(ctx context.Context, id int64) (*model.Instructor, error) {
	const q = `
SELECT i.id, i.last_name, i.first_mid_name, i.hire_date, o.location
FROM instructors i
LEFT JOIN office_assignments o ON o.instructor_id = i.id
WHERE i.id=$1`
	var (
		in       model.Instructor
		location pgtype.Text
	)
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(&in.ID, &in.LastName, &in.FirstMidName, &in.HireDate, &location)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("instructor %d: %w", id, errs.ErrNotFound)
		}
		return nil, errs.Storage("get instructor", err)
	}
	if location.Valid {
		in.Office = &model.OfficeAssignment{InstructorID: in.ID, Location: location.String}
	}

	const cq = `
SELECT c.id, c.title, c.credits, c.department_id
FROM course_assignments ca
JOIN courses c ON c.id = ca.course_id
WHERE ca.instructor_id=$1
ORDER BY c.id`
	rows, err := r.db.Pool.Query(ctx, cq, id)
	if err != nil {
		return nil, errs.Storage("get instructor courses", err)
	}
	defer rows.Close()
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
VALUES ($1, $2, $3)
RETURNING id`
	var id int64
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, ins, in.LastName, in.FirstMidName, in.HireDate).Scan(&id); err != nil {
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
SET last_name=$2, first_mid_name=$3, hire_date=$4
WHERE id=$1`
	const cur = `SELECT course_id FROM course_assignments WHERE instructor_id=$1`
	const del = `DELETE FROM course_assignments WHERE instructor_id=$1 AND course_id = ANY($2)`

	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, upd, in.ID, in.LastName, in.FirstMidName, in.HireDate)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("instructor %d: %w", in.ID, errs.ErrNotFound)
		}
		if err := saveOffice(ctx, tx, in.ID, in.Office); err != nil {
			return err
		}

		rows, err := tx.Query(ctx, cur, in.ID)
		if err != nil {
			return err
		}
		current, err := pgx.CollectRows(rows, pgx.RowTo[int64])
		if err != nil {
			return err
		}
		add, remove := reconcile.Diff(current, in.CourseIDs())
		if len(remove) > 0 {
			if _, err := tx.Exec(ctx, del, in.ID, remove); err != nil {
				return err
			}
		}
		return assignCourses(ctx, tx, in.ID, add)
	})
	return errs.Storage("save instructor", err)
}

// saveOffice upserts the office row, or deletes it when office carries no location.
func saveOffice(ctx context.Context, tx pgx.Tx, instructorID int64, office *model.OfficeAssignment) error {
	if office.IsBlank() {
		_, err := tx.Exec(ctx, `DELETE FROM office_assignments WHERE instructor_id=$1`, instructorID)
		return err
	}
	const q = `
INSERT INTO office_assignments (instructor_id, location)
VALUES ($1, $2)
ON CONFLICT (instructor_id) DO UPDATE SET location = EXCLUDED.location`
	_, err := tx.Exec(ctx, q, instructorID, strings.TrimSpace(office.Location))
	return err
}

func assignCourses(ctx context.Context, tx pgx.Tx, instructorID int64, courseIDs []int64) error {
	if len(courseIDs) == 0 {
		return nil
	}
	const q = `
INSERT INTO course_assignments (instructor_id, course_id)
SELECT $1, unnest($2::bigint[])`
	_, err := tx.Exec(ctx, q, instructorID, courseIDs)
	return err
}
