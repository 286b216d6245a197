package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/and161185/registrar/internal/model"
	"github.com/and161185/registrar/internal/paging"
)

var errUsage = errors.New("usage")

type command func(ctx context.Context, a *app, args []string) error

var commands map[string]command

func init() {
	commands = map[string]command{
		"seed":              cmdSeed,
		"students":          cmdStudents,
		"stats":             cmdStats,
		"courses":           cmdCourses,
		"instructor":        cmdInstructor,
		"create-instructor": cmdCreateInstructor,
		"edit-instructor":   cmdEditInstructor,
		"departments":       cmdDepartments,
		"department":        cmdDepartment,
		"edit-department":   cmdEditDepartment,
		"delete-department": cmdDeleteDepartment,
	}
}

func newFlagSet(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

// isSet reports whether name was given on the command line.
func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: want YYYY-MM-DD", errUsage, s)
	}
	return d, nil
}

// splitList turns "1, 2,3" into its entries. An empty string yields nil.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func requireID(fs *flag.FlagSet, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s: -id is required", errUsage, fs.Name())
	}
	return nil
}

func cmdStudents(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "students")
	sortOrder := fs.String("sort", "", "name_desc, Date or date_desc")
	search := fs.String("search", "", "new filter, restarts at page 1")
	filter := fs.String("filter", "", "filter the previous page was shown with")
	page := fs.Int("page", 1, "page index")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	req := paging.Request{SortOrder: *sortOrder, CurrentFilter: *filter, PageIndex: page}
	if isSet(fs, "search") {
		req.SearchString = search
	}
	p, err := a.students.List(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(a.stdout, newStudentPageView(p))
}

func cmdStats(ctx context.Context, a *app, args []string) error {
	if err := parseFlags(newFlagSet(a, "stats"), args); err != nil {
		return err
	}
	groups, err := a.students.EnrollmentDateGroups(ctx)
	if err != nil {
		return err
	}
	out := make([]enrollmentGroupView, 0, len(groups))
	for _, g := range groups {
		out = append(out, enrollmentGroupView{EnrollmentDate: g.EnrollmentDate.Format(time.DateOnly), StudentCount: g.StudentCount})
	}
	return printJSON(a.stdout, out)
}

func cmdCourses(ctx context.Context, a *app, args []string) error {
	if err := parseFlags(newFlagSet(a, "courses"), args); err != nil {
		return err
	}
	cs, err := a.courses.List(ctx)
	if err != nil {
		return err
	}
	out := make([]courseView, 0, len(cs))
	for _, c := range cs {
		out = append(out, newCourseView(c))
	}
	return printJSON(a.stdout, out)
}

func cmdInstructor(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "instructor")
	id := fs.Int64("id", 0, "instructor id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireID(fs, *id); err != nil {
		return err
	}
	in, err := a.instructors.Get(ctx, *id)
	if err != nil {
		return err
	}
	return printJSON(a.stdout, newInstructorView(in, nil))
}

// instructorFlags registers the editable instructor fields on fs.
type instructorFlags struct {
	fs      *flag.FlagSet
	last    *string
	first   *string
	hired   *string
	office  *string
	courses *string
}

func newInstructorFlags(fs *flag.FlagSet) *instructorFlags {
	return &instructorFlags{
		fs:      fs,
		last:    fs.String("last", "", "last name"),
		first:   fs.String("first", "", "first and middle name"),
		hired:   fs.String("hired", "", "hire date YYYY-MM-DD"),
		office:  fs.String("office", "", "office location, empty removes the office"),
		courses: fs.String("courses", "", "comma separated course ids, empty clears"),
	}
}

// patch builds an InstructorPatch holding only the flags given on the command line.
func (f *instructorFlags) patch() (model.InstructorPatch, error) {
	var p model.InstructorPatch
	if isSet(f.fs, "last") {
		p.LastName = f.last
	}
	if isSet(f.fs, "first") {
		p.FirstMidName = f.first
	}
	if isSet(f.fs, "hired") {
		d, err := parseDate(*f.hired)
		if err != nil {
			return p, err
		}
		p.HireDate = &d
	}
	if isSet(f.fs, "office") {
		p.OfficeLocation = f.office
	}
	return p, nil
}

func cmdCreateInstructor(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "create-instructor")
	f := newInstructorFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	p, err := f.patch()
	if err != nil {
		return err
	}
	in, rep, err := a.instructors.Create(ctx, p, splitList(*f.courses))
	if err != nil {
		return err
	}
	return printJSON(a.stdout, newInstructorView(in, &rep))
}

func cmdEditInstructor(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "edit-instructor")
	id := fs.Int64("id", 0, "instructor id")
	f := newInstructorFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireID(fs, *id); err != nil {
		return err
	}
	p, err := f.patch()
	if err != nil {
		return err
	}

	var selected []string
	if isSet(fs, "courses") {
		selected = splitList(*f.courses)
	} else {
		// Without -courses the current assignments are resubmitted unchanged.
		cur, err := a.instructors.Get(ctx, *id)
		if err != nil {
			return err
		}
		for _, cid := range cur.CourseIDs() {
			selected = append(selected, fmt.Sprint(cid))
		}
	}

	in, rep, err := a.instructors.Update(ctx, *id, p, selected)
	if err != nil {
		return err
	}
	return printJSON(a.stdout, newInstructorView(in, &rep))
}

func cmdDepartments(ctx context.Context, a *app, args []string) error {
	if err := parseFlags(newFlagSet(a, "departments"), args); err != nil {
		return err
	}
	ds, err := a.departments.List(ctx)
	if err != nil {
		return err
	}
	out := make([]departmentView, 0, len(ds))
	for i := range ds {
		out = append(out, newDepartmentView(&ds[i]))
	}
	return printJSON(a.stdout, out)
}

func cmdDepartment(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "department")
	id := fs.Int64("id", 0, "department id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireID(fs, *id); err != nil {
		return err
	}
	d, err := a.departments.Get(ctx, *id)
	if err != nil {
		return err
	}
	return printJSON(a.stdout, newDepartmentView(d))
}

func parseTokenFlag(fs *flag.FlagSet, s string) (model.Token, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: %s: -token is required", errUsage, fs.Name())
	}
	tok, err := model.ParseToken(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return tok, nil
}

func cmdEditDepartment(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "edit-department")
	id := fs.Int64("id", 0, "department id")
	token := fs.String("token", "", "concurrency token as read, hex")
	name := fs.String("name", "", "department name")
	budget := fs.String("budget", "", "budget, e.g. 350000.00")
	start := fs.String("start", "", "start date YYYY-MM-DD")
	admin := fs.Int64("admin", 0, "administrator instructor id")
	noAdmin := fs.Bool("no-admin", false, "remove the administrator")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireID(fs, *id); err != nil {
		return err
	}
	tok, err := parseTokenFlag(fs, *token)
	if err != nil {
		return err
	}

	p := model.DepartmentPatch{ClearAdministrator: *noAdmin}
	if isSet(fs, "name") {
		p.Name = name
	}
	if isSet(fs, "budget") {
		m, err := model.ParseMoney(*budget)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		p.Budget = &m
	}
	if isSet(fs, "start") {
		d, err := parseDate(*start)
		if err != nil {
			return err
		}
		p.StartDate = &d
	}
	if isSet(fs, "admin") {
		p.AdministratorID = admin
	}

	d, err := a.departments.Update(ctx, *id, tok, p)
	if err != nil {
		return err
	}
	return printJSON(a.stdout, newDepartmentView(d))
}

func cmdDeleteDepartment(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "delete-department")
	id := fs.Int64("id", 0, "department id")
	token := fs.String("token", "", "concurrency token as read, hex")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireID(fs, *id); err != nil {
		return err
	}
	tok, err := parseTokenFlag(fs, *token)
	if err != nil {
		return err
	}
	if err := a.departments.Delete(ctx, *id, tok); err != nil {
		return err
	}
	return printJSON(a.stdout, map[string]any{"deleted": *id})
}
