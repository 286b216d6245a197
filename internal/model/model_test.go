package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/registrar/internal/errs"
)

func ptr[T any](v T) *T { return &v }

func TestToken_NewParseEqual(t *testing.T) {
	a, err := NewToken()
	require.NoError(t, err)
	require.Len(t, a, TokenSize)

	b, err := NewToken()
	require.NoError(t, err)
	require.False(t, a.Equal(b))

	back, err := ParseToken(a.String())
	require.NoError(t, err)
	require.True(t, a.Equal(back))

	_, err = ParseToken("zz")
	require.Error(t, err)
	_, err = ParseToken("0102")
	require.Error(t, err)
}

func TestMoney(t *testing.T) {
	cases := []struct {
		in   string
		want Money
	}{
		{"350000", 35000000},
		{"12.5", 1250},
		{"12.05", 1205},
		{"0.99", 99},
		{"-3.10", -310},
		{" 7 ", 700},
	}
	for _, c := range cases {
		got, err := ParseMoney(c.in)
		require.NoError(t, err, c.in)
		require.Equal(t, c.want, got, c.in)
	}
	for _, bad := range []string{"", "1.234", "abc", "1.", ".5", "--1", "1.-5"} {
		_, err := ParseMoney(bad)
		require.Error(t, err, bad)
	}
	require.Equal(t, "350000.00", Money(35000000).String())
	require.Equal(t, "-0.05", Money(-5).String())
}

func TestStudentSort(t *testing.T) {
	require.Equal(t, SortNameAsc, ParseStudentSort(""))
	require.Equal(t, SortNameAsc, ParseStudentSort("bogus"))
	require.Equal(t, SortDateDesc, ParseStudentSort("date_desc"))

	name, date := NextSorts(SortNameAsc)
	require.Equal(t, SortNameDesc, name)
	require.Equal(t, SortDateAsc, date)

	name, date = NextSorts(SortNameDesc)
	require.Equal(t, SortNameAsc, name)
	require.Equal(t, SortDateAsc, date)

	_, date = NextSorts(SortDateAsc)
	require.Equal(t, SortDateDesc, date)
}

func TestInstructor_CourseIDsAndOffice(t *testing.T) {
	in := &Instructor{LastName: "Abercrombie", FirstMidName: "Kim", Courses: []Course{{ID: 1050}, {ID: 4022}}}
	require.Equal(t, []int64{1050, 4022}, in.CourseIDs())
	require.Equal(t, "Abercrombie, Kim", in.FullName())

	var none *OfficeAssignment
	require.True(t, none.IsBlank())
	require.True(t, (&OfficeAssignment{Location: "  \t"}).IsBlank())
	require.False(t, (&OfficeAssignment{Location: "Smith 17"}).IsBlank())
}

func TestInstructorPatch(t *testing.T) {
	require.NoError(t, InstructorPatch{}.Validate())
	require.ErrorIs(t, InstructorPatch{LastName: ptr("  ")}.Validate(), errs.ErrValidation)
	require.ErrorIs(t, InstructorPatch{HireDate: &time.Time{}}.Validate(), errs.ErrValidation)
	long := "x"
	for len(long) <= 50 {
		long += "x"
	}
	require.ErrorIs(t, InstructorPatch{OfficeLocation: &long}.Validate(), errs.ErrValidation)
	require.ErrorIs(t, InstructorPatch{LastName: ptr("Fakhouri")}.ValidateNew(), errs.ErrValidation)

	hire := time.Date(2002, 7, 6, 0, 0, 0, 0, time.UTC)
	in := &Instructor{ID: 3, LastName: "Old"}
	InstructorPatch{LastName: ptr(" Fakhouri "), HireDate: &hire, OfficeLocation: ptr(" Gowan 27 ")}.ApplyTo(in)
	require.Equal(t, "Fakhouri", in.LastName)
	require.Equal(t, hire, in.HireDate)
	require.Equal(t, &OfficeAssignment{InstructorID: 3, Location: "Gowan 27"}, in.Office)

	InstructorPatch{OfficeLocation: ptr("   ")}.ApplyTo(in)
	require.True(t, in.Office.IsBlank())
}

func TestDepartmentPatch(t *testing.T) {
	require.ErrorIs(t, DepartmentPatch{Name: ptr("ab")}.Validate(), errs.ErrValidation)
	require.ErrorIs(t, DepartmentPatch{Budget: ptr(Money(-1))}.Validate(), errs.ErrValidation)
	require.ErrorIs(t, DepartmentPatch{AdministratorID: ptr(int64(1)), ClearAdministrator: true}.Validate(), errs.ErrValidation)
	require.ErrorIs(t, DepartmentPatch{AdministratorID: ptr(int64(0))}.Validate(), errs.ErrValidation)
	require.NoError(t, DepartmentPatch{Name: ptr("English"), Budget: ptr(Money(0))}.Validate())

	d := &Department{Name: "Old", AdministratorID: ptr(int64(9)), AdministratorName: "Kapoor"}
	DepartmentPatch{Name: ptr("Economics"), Budget: ptr(Money(10000000)), AdministratorID: ptr(int64(4))}.ApplyTo(d)
	require.Equal(t, "Economics", d.Name)
	require.Equal(t, Money(10000000), d.Budget)
	require.Equal(t, int64(4), *d.AdministratorID)
	require.Empty(t, d.AdministratorName)

	DepartmentPatch{ClearAdministrator: true}.ApplyTo(d)
	require.Nil(t, d.AdministratorID)
}
