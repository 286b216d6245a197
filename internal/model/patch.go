package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/and161185/registrar/internal/errs"
)

const maxNameLen = 50

// InstructorPatch lists the instructor fields a caller may change. Nil fields are left untouched.
type InstructorPatch struct {
	LastName       *string
	FirstMidName   *string
	HireDate       *time.Time
	OfficeLocation *string // blank removes the office assignment
}

// Validate checks the patch before it touches any entity.
func (p InstructorPatch) Validate() error {
	if err := checkName("last name", p.LastName, 1); err != nil {
		return err
	}
	if err := checkName("first name", p.FirstMidName, 1); err != nil {
		return err
	}
	if p.HireDate != nil && p.HireDate.IsZero() {
		return fmt.Errorf("%w: empty hire date", errs.ErrValidation)
	}
	if p.OfficeLocation != nil && utf8.RuneCountInString(strings.TrimSpace(*p.OfficeLocation)) > maxNameLen {
		return fmt.Errorf("%w: office location longer than %d", errs.ErrValidation, maxNameLen)
	}
	return nil
}

// ValidateNew additionally requires the fields a new instructor cannot lack.
func (p InstructorPatch) ValidateNew() error {
	if p.LastName == nil || p.FirstMidName == nil || p.HireDate == nil {
		return fmt.Errorf("%w: last name, first name and hire date are required", errs.ErrValidation)
	}
	return p.Validate()
}

// ApplyTo copies the set fields onto in. The office location is trimmed;
// a blank location leaves an empty assignment that the caller normalizes away.
func (p InstructorPatch) ApplyTo(in *Instructor) {
	if p.LastName != nil {
		in.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.FirstMidName != nil {
		in.FirstMidName = strings.TrimSpace(*p.FirstMidName)
	}
	if p.HireDate != nil {
		in.HireDate = *p.HireDate
	}
	if p.OfficeLocation != nil {
		if in.Office == nil {
			in.Office = &OfficeAssignment{InstructorID: in.ID}
		}
		in.Office.Location = strings.TrimSpace(*p.OfficeLocation)
	}
}

// DepartmentPatch lists the department fields a caller may change.
type DepartmentPatch struct {
	Name               *string
	Budget             *Money
	StartDate          *time.Time
	AdministratorID    *int64
	ClearAdministrator bool
}

// Validate checks the patch before it touches any entity.
func (p DepartmentPatch) Validate() error {
	if err := checkName("department name", p.Name, 3); err != nil {
		return err
	}
	if p.Budget != nil && *p.Budget < 0 {
		return fmt.Errorf("%w: negative budget", errs.ErrValidation)
	}
	if p.StartDate != nil && p.StartDate.IsZero() {
		return fmt.Errorf("%w: empty start date", errs.ErrValidation)
	}
	if p.AdministratorID != nil && p.ClearAdministrator {
		return fmt.Errorf("%w: administrator both set and cleared", errs.ErrValidation)
	}
	if p.AdministratorID != nil && *p.AdministratorID <= 0 {
		return fmt.Errorf("%w: bad administrator id", errs.ErrValidation)
	}
	return nil
}

// ApplyTo copies the set fields onto d.
func (p DepartmentPatch) ApplyTo(d *Department) {
	if p.Name != nil {
		d.Name = strings.TrimSpace(*p.Name)
	}
	if p.Budget != nil {
		d.Budget = *p.Budget
	}
	if p.StartDate != nil {
		d.StartDate = *p.StartDate
	}
	switch {
	case p.ClearAdministrator:
		d.AdministratorID, d.AdministratorName = nil, ""
	case p.AdministratorID != nil:
		id := *p.AdministratorID
		d.AdministratorID, d.AdministratorName = &id, ""
	}
}

func checkName(field string, v *string, minLen int) error {
	if v == nil {
		return nil
	}
	n := utf8.RuneCountInString(strings.TrimSpace(*v))
	if n < minLen || n > maxNameLen {
		return fmt.Errorf("%w: %s must be %d..%d characters", errs.ErrValidation, field, minLen, maxNameLen)
	}
	return nil
}
