package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/and161185/registrar/internal/errs"
	"github.com/and161185/registrar/internal/model"
)

// DepartmentRepo implements DepartmentRepository using SQLite.
type DepartmentRepo struct{ db *DB }

// NewDepartmentRepo constructs a department repository.
func NewDepartmentRepo(db *DB) *DepartmentRepo { return &DepartmentRepo{db: db} }

const departmentCols = `
SELECT d.id, d.name, d.budget_cents, d.start_date, d.instructor_id,
       COALESCE(i.last_name || ', ' || i.first_mid_name, ''), d.concurrency_token
FROM departments d
LEFT JOIN instructors i ON i.id = d.instructor_id`

type scanner interface{ Scan(dest ...any) error }

func scanDepartment(row scanner) (*model.Department, error) {
	var (
		d      model.Department
		budget int64
		start  string
		admin  sql.NullInt64
		token  []byte
	)
	if err := row.Scan(&d.ID, &d.Name, &budget, &start, &admin, &d.AdministratorName, &token); err != nil {
		return nil, err
	}
	startDate, err := parseDate(start)
	if err != nil {
		return nil, err
	}
	d.Budget = model.Money(budget)
	d.StartDate = startDate
	if admin.Valid {
		id := admin.Int64
		d.AdministratorID = &id
	}
	d.ConcurrencyToken = model.Token(token)
	return &d, nil
}

// Get returns a department with its administrator name and concurrency token.
func (r *DepartmentRepo) Get(ctx context.Context, id int64) (*model.Department, error) {
	d, err := scanDepartment(r.db.sql.QueryRowContext(ctx, departmentCols+`
WHERE d.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("department %d: %w", id, errs.ErrNotFound)
		}
		return nil, errs.Storage("get department", err)
	}
	return d, nil
}

// List returns all departments ordered by name.
func (r *DepartmentRepo) List(ctx context.Context) ([]model.Department, error) {
	rows, err := r.db.sql.QueryContext(ctx, departmentCols+`
ORDER BY d.name, d.id`)
	if err != nil {
		return nil, errs.Storage("list departments", err)
	}
	defer func() { _ = rows.Close() }()

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
VALUES (?, ?, ?, ?, ?)
RETURNING id`
	var id int64
	err = r.db.sql.QueryRowContext(ctx, q,
		d.Name, int64(d.Budget), formatDate(d.StartDate), nullID(d.AdministratorID), []byte(tok),
	).Scan(&id)
	if err != nil {
		return departmentWriteErr("create department", d, err)
	}
	d.ID = id
	d.ConcurrencyToken = tok
	return nil
}

// Save updates d when the stored token still equals expected and rotates the token.
// The write itself carries the token check; a miss is classified by re-reading the row.
func (r *DepartmentRepo) Save(ctx context.Context, d *model.Department, expected model.Token) error {
	tok, err := model.NewToken()
	if err != nil {
		return err
	}
	const upd = `
UPDATE departments
SET name = ?, budget_cents = ?, start_date = ?, instructor_id = ?, concurrency_token = ?
WHERE id = ? AND concurrency_token = ?`

	err = r.db.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, upd,
			d.Name, int64(d.Budget), formatDate(d.StartDate), nullID(d.AdministratorID), []byte(tok),
			d.ID, []byte(expected),
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 1 {
			return nil
		}
		cur, err := currentToken(ctx, tx, d.ID)
		if errors.Is(err, sql.ErrNoRows) {
			return &errs.ConflictError{Entity: "department", ID: d.ID, Expected: expected, Deleted: true}
		}
		if err != nil {
			return err
		}
		return &errs.ConflictError{Entity: "department", ID: d.ID, Expected: expected, Current: cur}
	})
	if err != nil {
		return departmentWriteErr("save department", d, err)
	}
	d.ConcurrencyToken = tok
	return nil
}

// Delete removes a department when the stored token still equals expected.
func (r *DepartmentRepo) Delete(ctx context.Context, id int64, expected model.Token) error {
	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM departments WHERE id = ? AND concurrency_token = ?`, id, []byte(expected))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 1 {
			return nil
		}
		cur, err := currentToken(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("department %d: %w", id, errs.ErrNotFound)
		}
		if err != nil {
			return err
		}
		return &errs.ConflictError{Entity: "department", ID: id, Expected: expected, Current: cur}
	})
	return errs.Storage("delete department", err)
}

func currentToken(ctx context.Context, tx *sql.Tx, id int64) ([]byte, error) {
	var cur []byte
	err := tx.QueryRowContext(ctx, `SELECT concurrency_token FROM departments WHERE id = ?`, id).Scan(&cur)
	return cur, err
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

// departmentWriteErr reports a missing administrator as NotFound.
func departmentWriteErr(op string, d *model.Department, err error) error {
	if d.AdministratorID != nil && isForeignKeyViolation(err) {
		return fmt.Errorf("administrator %d: %w", *d.AdministratorID, errs.ErrNotFound)
	}
	return errs.Storage(op, err)
}
