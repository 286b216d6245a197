// Package model defines domain entities used by services and repositories.
package model

import (
	"strings"
	"time"
)

// Instructor owns an association set of courses and an optional office assignment.
type Instructor struct {
	ID           int64
	LastName     string
	FirstMidName string
	HireDate     time.Time
	Office       *OfficeAssignment // nil means no office row
	Courses      []Course          // association set, order irrelevant
}

// FullName returns "Last, FirstMid".
func (i Instructor) FullName() string { return i.LastName + ", " + i.FirstMidName }

// CourseIDs projects the association set onto course identifiers.
func (i Instructor) CourseIDs() []int64 {
	ids := make([]int64, 0, len(i.Courses))
	for _, c := range i.Courses {
		ids = append(ids, c.ID)
	}
	return ids
}

// OfficeAssignment is the optional one-to-one sub-entity of an Instructor.
type OfficeAssignment struct {
	InstructorID int64
	Location     string
}

// IsBlank reports whether the assignment carries no meaningful location.
func (o *OfficeAssignment) IsBlank() bool {
	return o == nil || strings.TrimSpace(o.Location) == ""
}

// Course is referenced, never owned, by instructors. IDs are assigned by the caller.
type Course struct {
	ID           int64
	Title        string
	Credits      int
	DepartmentID int64
	Department   *Department // populated by list queries only
}

// Department is a versioned entity guarded by ConcurrencyToken.
type Department struct {
	ID                int64
	Name              string
	Budget            Money
	StartDate         time.Time
	AdministratorID   *int64
	AdministratorName string // read-only projection of the administrator
	ConcurrencyToken  Token
}

// Student is the paged collection element.
type Student struct {
	ID             int64
	LastName       string
	FirstMidName   string
	EnrollmentDate time.Time
}

// EnrollmentDateGroup counts students per enrollment date.
type EnrollmentDateGroup struct {
	EnrollmentDate time.Time
	StudentCount   int
}
