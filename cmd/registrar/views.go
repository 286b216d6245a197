package main

import (
	"time"

	"github.com/and161185/registrar/internal/model"
	"github.com/and161185/registrar/internal/service"
)

type studentView struct {
	ID             int64  `json:"id"`
	LastName       string `json:"last_name"`
	FirstMidName   string `json:"first_mid_name"`
	EnrollmentDate string `json:"enrollment_date"`
}

type studentPageView struct {
	Students      []studentView `json:"students"`
	PageIndex     int           `json:"page_index"`
	TotalPages    int           `json:"total_pages"`
	TotalCount    int           `json:"total_count"`
	HasPrevious   bool          `json:"has_previous"`
	HasNext       bool          `json:"has_next"`
	SortOrder     string        `json:"sort_order"`
	CurrentFilter string        `json:"current_filter"`
	NameSort      string        `json:"name_sort"`
	DateSort      string        `json:"date_sort"`
}

func newStudentPageView(p *service.StudentPage) studentPageView {
	v := studentPageView{
		Students:      make([]studentView, 0, len(p.Items)),
		PageIndex:     p.PageIndex,
		TotalPages:    p.TotalPages,
		TotalCount:    p.TotalCount,
		HasPrevious:   p.HasPrevious(),
		HasNext:       p.HasNext(),
		SortOrder:     string(p.SortOrder),
		CurrentFilter: p.CurrentFilter,
		NameSort:      string(p.NameSort),
		DateSort:      string(p.DateSort),
	}
	for _, s := range p.Items {
		v.Students = append(v.Students, studentView{
			ID:             s.ID,
			LastName:       s.LastName,
			FirstMidName:   s.FirstMidName,
			EnrollmentDate: s.EnrollmentDate.Format(time.DateOnly),
		})
	}
	return v
}

type enrollmentGroupView struct {
	EnrollmentDate string `json:"enrollment_date"`
	StudentCount   int    `json:"student_count"`
}

type courseView struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Credits    int    `json:"credits"`
	Department string `json:"department,omitempty"`
}

func newCourseView(c model.Course) courseView {
	v := courseView{ID: c.ID, Title: c.Title, Credits: c.Credits}
	if c.Department != nil {
		v.Department = c.Department.Name
	}
	return v
}

type selectionView struct {
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

type assignmentView struct {
	Added   []int64         `json:"added"`
	Removed []int64         `json:"removed"`
	Invalid []selectionView `json:"invalid,omitempty"`
}

type instructorView struct {
	ID           int64           `json:"id"`
	LastName     string          `json:"last_name"`
	FirstMidName string          `json:"first_mid_name"`
	HireDate     string          `json:"hire_date"`
	Office       string          `json:"office,omitempty"`
	Courses      []courseView    `json:"courses"`
	Assignment   *assignmentView `json:"assignment,omitempty"`
}

func newInstructorView(in *model.Instructor, rep *service.AssignmentReport) instructorView {
	v := instructorView{
		ID:           in.ID,
		LastName:     in.LastName,
		FirstMidName: in.FirstMidName,
		HireDate:     in.HireDate.Format(time.DateOnly),
		Courses:      make([]courseView, 0, len(in.Courses)),
	}
	if !in.Office.IsBlank() {
		v.Office = in.Office.Location
	}
	for _, c := range in.Courses {
		v.Courses = append(v.Courses, newCourseView(c))
	}
	if rep != nil {
		av := &assignmentView{Added: rep.Added, Removed: rep.Removed}
		for _, se := range rep.Invalid {
			av.Invalid = append(av.Invalid, selectionView{Value: se.Value, Reason: se.Reason})
		}
		v.Assignment = av
	}
	return v
}

type departmentView struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Budget          string `json:"budget"`
	StartDate       string `json:"start_date"`
	AdministratorID *int64 `json:"administrator_id,omitempty"`
	Administrator   string `json:"administrator,omitempty"`
	Token           string `json:"concurrency_token"`
}

func newDepartmentView(d *model.Department) departmentView {
	return departmentView{
		ID:              d.ID,
		Name:            d.Name,
		Budget:          d.Budget.String(),
		StartDate:       d.StartDate.Format(time.DateOnly),
		AdministratorID: d.AdministratorID,
		Administrator:   d.AdministratorName,
		Token:           d.ConcurrencyToken.String(),
	}
}
