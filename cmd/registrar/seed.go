package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/and161185/registrar/internal/model"
)

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

type seedInstructor struct {
	last, first string
	hired       time.Time
	office      string
}

type seedDepartment struct {
	name   string
	budget model.Money
	admin  string // instructor last name
}

type seedCourse struct {
	id      int64
	title   string
	credits int
	dept    string
}

var (
	seedStudents = []model.Student{
		{LastName: "Alexander", FirstMidName: "Carson", EnrollmentDate: date(2005, 9, 1)},
		{LastName: "Alonso", FirstMidName: "Meredith", EnrollmentDate: date(2002, 9, 1)},
		{LastName: "Anand", FirstMidName: "Arturo", EnrollmentDate: date(2003, 9, 1)},
		{LastName: "Barzdukas", FirstMidName: "Gytis", EnrollmentDate: date(2002, 9, 1)},
		{LastName: "Li", FirstMidName: "Yan", EnrollmentDate: date(2002, 9, 1)},
		{LastName: "Justice", FirstMidName: "Peggy", EnrollmentDate: date(2001, 9, 1)},
		{LastName: "Norman", FirstMidName: "Laura", EnrollmentDate: date(2003, 9, 1)},
		{LastName: "Olivetto", FirstMidName: "Nino", EnrollmentDate: date(2005, 9, 1)},
	}

	seedInstructors = []seedInstructor{
		{last: "Abercrombie", first: "Kim", hired: date(1995, 3, 11)},
		{last: "Fakhouri", first: "Fadi", hired: date(2002, 7, 6), office: "Smith 17"},
		{last: "Harui", first: "Roger", hired: date(1998, 7, 1), office: "Gowan 27"},
		{last: "Kapoor", first: "Candace", hired: date(2001, 1, 15), office: "Thompson 304"},
		{last: "Zheng", first: "Roger", hired: date(2004, 2, 12)},
	}

	seedDepartments = []seedDepartment{
		{name: "English", budget: 35000000, admin: "Abercrombie"},
		{name: "Mathematics", budget: 10000000, admin: "Fakhouri"},
		{name: "Engineering", budget: 35000000, admin: "Harui"},
		{name: "Economics", budget: 10000000, admin: "Kapoor"},
	}

	seedCourses = []seedCourse{
		{1050, "Chemistry", 3, "Engineering"},
		{4022, "Microeconomics", 3, "Economics"},
		{4041, "Macroeconomics", 3, "Economics"},
		{1045, "Calculus", 4, "Mathematics"},
		{3141, "Trigonometry", 4, "Mathematics"},
		{2021, "Composition", 3, "English"},
		{2042, "Literature", 4, "English"},
	}

	// instructor last name -> course ids
	seedAssignments = map[string][]int64{
		"Abercrombie": {2021, 2042},
		"Fakhouri":    {1045},
		"Harui":       {1050, 3141},
		"Kapoor":      {1050},
		"Zheng":       {4022, 4041},
	}
)

type seedResult struct {
	Seeded      bool `json:"seeded"`
	Students    int  `json:"students,omitempty"`
	Instructors int  `json:"instructors,omitempty"`
	Departments int  `json:"departments,omitempty"`
	Courses     int  `json:"courses,omitempty"`
}

// seed loads the sample school. It does nothing when departments already exist.
func seed(ctx context.Context, a *app) (seedResult, error) {
	existing, err := a.departments.List(ctx)
	if err != nil {
		return seedResult{}, err
	}
	if len(existing) > 0 {
		return seedResult{}, nil
	}

	for i := range seedStudents {
		st := seedStudents[i]
		if err := a.students.Create(ctx, &st); err != nil {
			return seedResult{}, fmt.Errorf("student %s: %w", st.LastName, err)
		}
	}

	instructorIDs := make(map[string]int64, len(seedInstructors))
	for _, si := range seedInstructors {
		p := model.InstructorPatch{LastName: &si.last, FirstMidName: &si.first, HireDate: &si.hired}
		if si.office != "" {
			p.OfficeLocation = &si.office
		}
		in, _, err := a.instructors.Create(ctx, p, nil)
		if err != nil {
			return seedResult{}, fmt.Errorf("instructor %s: %w", si.last, err)
		}
		instructorIDs[si.last] = in.ID
	}

	start := date(2007, 9, 1)
	departmentIDs := make(map[string]int64, len(seedDepartments))
	for _, sd := range seedDepartments {
		admin := instructorIDs[sd.admin]
		d, err := a.departments.Create(ctx, model.DepartmentPatch{
			Name: &sd.name, Budget: &sd.budget, StartDate: &start, AdministratorID: &admin,
		})
		if err != nil {
			return seedResult{}, fmt.Errorf("department %s: %w", sd.name, err)
		}
		departmentIDs[sd.name] = d.ID
	}

	for _, sc := range seedCourses {
		c := &model.Course{ID: sc.id, Title: sc.title, Credits: sc.credits, DepartmentID: departmentIDs[sc.dept]}
		if err := a.courses.Create(ctx, c); err != nil {
			return seedResult{}, fmt.Errorf("course %d: %w", sc.id, err)
		}
	}

	for last, courseIDs := range seedAssignments {
		selected := make([]string, 0, len(courseIDs))
		for _, id := range courseIDs {
			selected = append(selected, strconv.FormatInt(id, 10))
		}
		if _, _, err := a.instructors.Update(ctx, instructorIDs[last], model.InstructorPatch{}, selected); err != nil {
			return seedResult{}, fmt.Errorf("assign %s: %w", last, err)
		}
	}

	return seedResult{
		Seeded:      true,
		Students:    len(seedStudents),
		Instructors: len(seedInstructors),
		Departments: len(seedDepartments),
		Courses:     len(seedCourses),
	}, nil
}

func cmdSeed(ctx context.Context, a *app, args []string) error {
	if err := parseFlags(newFlagSet(a, "seed"), args); err != nil {
		return err
	}
	res, err := seed(ctx, a)
	if err != nil {
		return err
	}
	return printJSON(a.stdout, res)
}
