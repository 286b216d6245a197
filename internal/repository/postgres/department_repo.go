package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/and161185/registrar/internal/errs"
	"github.com/and161185/registrar/internal/model"
)

// DepartmentRepo implements DepartmentRepository using PostgreSQL.
type DepartmentRepo struct{ db *DB }

// NewDepartmentRepo constructs a department repository.
func NewDepartmentRepo(db *DB) *DepartmentRepo { return &DepartmentRepo{db: db} }

const departmentCols = `
SELECT d.id, d.name, d.budget_cents, d.start_date, d.instructor_id,
       COALESCE(i.last_name || ', ' || i.first_mid_name, ''), d.concurrency_token
FROM departments d
LEFT JOIN instructors i ON i.id = d.instructor_id`

func scanDepartment(row pgx.Row) (*model.Department, error) {
	var (
		d      model.Department
		budget int64
		start  time.Time
		admin  pgtype.Int8
		token  []byte
	)
	if err := row.Scan(&d.ID, &d.Name, &budget, &start, &admin, &d.AdministratorName, &token); err != nil {
		return nil, err
	}
	d.Budget = model.Money(budget)
	d.StartDate = start
	if admin.Valid {
		id := admin.Int64
		d.AdministratorID = &id
	}
	d.ConcurrencyToken = model.Token(token)
	return &d, nil
}

// Get returns a department with its administrator name and concurrency token.
func (r *DepartmentRepo) Get(ctx context.Context, id int64) (*model.Department, error) {
	d, err := scanDepartment(r.db.Pool.QueryRow(ctx, departmentCols+`
WHERE d.id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("department %d: %w", id, errs.ErrNotFound)
		}
		return nil, errs.Storage("get department", err)
	}
	return d, nil
}

// List returns all departments ordered by name.
func (r *DepartmentRepo) List(ctx context.Context) ([]model.Department, error) {
	rows, err := r.db.Pool.Query(ctx, departmentCols+`
ORDER BY d.name, d.id`)
	if err != nil {
		return nil, errs.Storage("list departments", err)
	}
	defer rows.Close()

	var out []model.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, errs.Storage("list departments", err)
		}
		out = append(out, *d)
	}
	return out, errs.Storage("list departments", rows.Err())
}

// Create inserts a department with a fresh concurrency token.
func (r *DepartmentRepo) Create(ctx context.Context, d *model.Department) error {
	tok, err := model.NewToken()
	if err != nil {
		return err
	}
	const q = `
INSERT INTO departments (name, budget_cents, start_date, instructor_id, concurrency_token)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	var id int64
	if err := r.db.Pool.QueryRow(ctx, q, d.Name, int64(d.Budget), d.StartDate, d.AdministratorID, []byte(tok)).Scan(&id); err != nil {
		return departmentWriteErr("create department", d, err)
	}
	d.ID = id
	d.ConcurrencyToken = tok
	return nil
}

const lockDepartmentToken = `SELECT concurrency_token FROM departments WHERE id=$1 FOR UPDATE`

// Save updates d when the stored token still equals expected and rotates the token.
// A row deleted since the caller read it is reported as a conflict with Deleted set.
func (r *DepartmentRepo) Save(ctx context.Context, d *model.Department, expected model.Token) error {
	tok, err := model.NewToken()
	if err != nil {
		return err
	}
	const upd = `
UPDATE departments
SET name=$2, budget_cents=$3, start_date=$4, instructor_id=$5, concurrency_token=$6
WHERE id=$1`

	err = r.db.inTx(ctx, func(tx pgx.Tx) error {
		var cur []byte
		if err := tx.QueryRow(ctx, lockDepartmentToken, d.ID).Scan(&cur); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &errs.ConflictError{Entity: "department", ID: d.ID, Expected: expected, Deleted: true}
			}
			return err
		}
		if !expected.Equal(cur) {
			return &errs.ConflictError{Entity: "department", ID: d.ID, Expected: expected, Current: cur}
		}
		_, err := tx.Exec(ctx, upd, d.ID, d.Name, int64(d.Budget), d.StartDate, d.AdministratorID, []byte(tok))
		return err
	})
	if err != nil {
		return departmentWriteErr("save department", d, err)
	}
	d.ConcurrencyToken = tok
	return nil
}

// Delete removes a department when the stored token still equals expected.
// Its courses and their assignments go with it.
func (r *DepartmentRepo) Delete(ctx context.Context, id int64, expected model.Token) error {
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		var cur []byte
		if err := tx.QueryRow(ctx, lockDepartmentToken, id).Scan(&cur); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("department %d: %w", id, errs.ErrNotFound)
			}
			return err
		}
		if !expected.Equal(cur) {
			return &errs.ConflictError{Entity: "department", ID: id, Expected: expected, Current: cur}
		}
		_, err := tx.Exec(ctx, `DELETE FROM departments WHERE id=$1`, id)
		return err
	})
	return errs.Storage("delete department", err)
}

// departmentWriteErr reports a missing administrator as NotFound.
func departmentWriteErr(op string, d *model.Department, err error) error {
	if d.AdministratorID != nil && isForeignKeyViolation(err) {
		return fmt.Errorf("administrator %d: %w", *d.AdministratorID, errs.ErrNotFound)
	}
	return errs.Storage(op, err)
}
