package models

import "time"

// FilterMode selects one of the two independent query modes.
type FilterMode string

const (
	FilterModeSingle FilterMode = "single"
	FilterModeRange  FilterMode = "range"
)

// Valid returns true when the mode is supported.
func (m FilterMode) Valid() bool {
	return m == FilterModeSingle || m == FilterModeRange
}

// FilterField names a settable FilterContext field.
type FilterField string

const (
	FilterFieldDepartment FilterField = "department"
	FilterFieldBatch      FilterField = "batch"
	FilterFieldSemester   FilterField = "semester"
	FilterFieldDate       FilterField = "date"
	FilterFieldFromDate   FilterField = "fromDate"
	FilterFieldToDate     FilterField = "toDate"
)

// FilterOptions are the option sets derived from the selected course's roster:
// de-duplicated, order-preserving distinct values.
type FilterOptions struct {
	Batches     []string `json:"batches"`
	Departments []string `json:"departments"`
	Semesters   []string `json:"semesters"`
}

// FilterContext holds the current query constraints for one mode. Department,
// batch and semester must belong to the option sets derived from the selected
// course; changing the course clears them.
type FilterContext struct {
	CourseID   string     `json:"course_id"`
	CourseName string     `json:"course_name"`
	Department string     `json:"department,omitempty"`
	Batch      string     `json:"batch,omitempty"`
	Semester   string     `json:"semester,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
	FromDate   *time.Time `json:"from_date,omitempty"`
	ToDate     *time.Time `json:"to_date,omitempty"`

	Options FilterOptions `json:"options"`

	// Generation increments on every mutation; responses computed against an
	// older generation are stale and must be discarded.
	Generation uint64 `json:"generation"`
}

// Complete reports whether the context carries every field the given mode
// needs before a query may be issued.
func (f *FilterContext) Complete(mode FilterMode) bool {
	if f.CourseID == "" {
		return false
	}
	if mode == FilterModeSingle {
		return f.Date != nil
	}
	return f.FromDate != nil && f.ToDate != nil
}
