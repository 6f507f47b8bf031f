package models

import (
	"strings"
	"time"
)

// Session identifies the sub-day teaching slot an attendance record belongs to.
type Session string

const (
	SessionForenoon  Session = "FN"
	SessionAfternoon Session = "AN"
)

// NormalizeSession maps raw session values onto the canonical upper-case form,
// so "fn" and "FN" land in the same partition.
func NormalizeSession(raw string) Session {
	return Session(strings.ToUpper(strings.TrimSpace(raw)))
}

// Valid returns true when the session is a supported value.
func (s Session) Valid() bool {
	switch s {
	case SessionForenoon, SessionAfternoon:
		return true
	default:
		return false
	}
}

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "PRESENT"
	AttendanceStatusAbsent  AttendanceStatus = "ABSENT"
)

// Valid returns true when the status is a supported value.
func (st AttendanceStatus) Valid() bool {
	switch st {
	case AttendanceStatusPresent, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// AttendanceRecord is a single raw per-session attendance event. Records are
// immutable once created; corrections happen through a re-submission flow
// outside this service.
type AttendanceRecord struct {
	ID          string           `db:"id" json:"id"`
	Date        time.Time        `db:"date" json:"date"`
	CourseID    string           `db:"course_id" json:"course_id"`
	CourseName  string           `db:"course_name" json:"course_name"`
	FacultyID   string           `db:"faculty_id" json:"faculty_id"`
	Session     Session          `db:"session" json:"session"`
	StudentID   string           `db:"student_id" json:"student_id"`
	StudentName string           `db:"student_name" json:"student_name"`
	Department  string           `db:"department" json:"department"`
	Batch       string           `db:"batch" json:"batch"`
	Semester    string           `db:"semester" json:"semester"`
	Status      AttendanceStatus `db:"status" json:"status"`
}

// SessionBreakdown holds one session's slice of a single-day report.
type SessionBreakdown struct {
	Session Session            `json:"session"`
	Total   int                `json:"total"`
	Present int                `json:"present"`
	Absent  int                `json:"absent"`
	Records []AttendanceRecord `json:"records"`
}

// DayReport partitions one day's records by session. FN and AN are reported
// independently; no merging occurs across sessions.
type DayReport struct {
	Sessions []SessionBreakdown `json:"sessions"`
}

// SessionAttendanceSummary is a pre-aggregated range-mode input row: one per
// student per session type per course over the queried range. Produced by the
// record store; read-only here.
type SessionAttendanceSummary struct {
	Session      Session `db:"session" json:"session"`
	StudentID    string  `db:"student_id" json:"student_id"`
	CourseID     string  `db:"course_id" json:"course_id"`
	CourseName   string  `db:"course_name" json:"course_name"`
	StudentName  string  `db:"student_name" json:"student_name"`
	Department   string  `db:"department" json:"department"`
	Batch        string  `db:"batch" json:"batch"`
	Semester     string  `db:"semester" json:"semester"`
	PresentCount int     `db:"present_count" json:"present_count"`
	TotalDays    int     `db:"total_days" json:"total_days"`
	Percentage   float64 `db:"-" json:"percentage"`
}

// ConsolidatedRangeAttendance is the session-independent rollup for one
// student across the queried range.
type ConsolidatedRangeAttendance struct {
	StudentID      string  `json:"student_id"`
	StudentName    string  `json:"student_name"`
	Department     string  `json:"department"`
	Batch          string  `json:"batch"`
	Semester       string  `json:"semester"`
	CourseName     string  `json:"course_name"`
	TotalConducted int     `json:"total_conducted"`
	TotalAttended  int     `json:"total_attended"`
	Percentage     float64 `json:"percentage"`
}
