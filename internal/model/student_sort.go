package model

// StudentSort selects the ordering of the student list.
type StudentSort string

// Recognized sort keys. The zero value sorts by last name ascending.
const (
	SortNameAsc  StudentSort = ""
	SortNameDesc StudentSort = "name_desc"
	SortDateAsc  StudentSort = "Date"
	SortDateDesc StudentSort = "date_desc"
)

// ParseStudentSort maps a caller-supplied key onto a StudentSort; unknown keys fall back to SortNameAsc.
func ParseStudentSort(s string) StudentSort {
	switch StudentSort(s) {
	case SortNameDesc, SortDateAsc, SortDateDesc:
		return StudentSort(s)
	default:
		return SortNameAsc
	}
}

// NextSorts returns the keys a caller should offer for the name and date columns
// given the current sort: clicking an active column flips its direction.
func NextSorts(current StudentSort) (name, date StudentSort) {
	name = SortNameDesc
	if current == SortNameDesc {
		name = SortNameAsc
	}
	date = SortDateAsc
	if current == SortDateAsc {
		date = SortDateDesc
	}
	return name, date
}
