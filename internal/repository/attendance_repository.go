package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/techmkce/attendance-engine-api/internal/models"
)

// AttendanceRepository reads raw attendance events and per-session range
// summaries from the record store. It never writes; attendance entry happens
// in a separate submission flow.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Day returns the raw records for one faculty, course and date.
func (r *AttendanceRepository) Day(ctx context.Context, facultyID, courseID string, date time.Time) ([]models.AttendanceRecord, error) {
	query := `SELECT ar.id, ar.date, ar.course_id, c.name AS course_name, ar.faculty_id, ar.session,
        ar.student_id, s.full_name AS student_name, s.department, s.batch, s.semester, ar.status
FROM attendance_records ar
JOIN students s ON s.id = ar.student_id
JOIN courses c ON c.id = ar.course_id
WHERE ar.faculty_id = $1 AND ar.course_id = $2 AND ar.date = $3
ORDER BY ar.session, s.full_name`
	rows := []models.AttendanceRecord{}
	if err := r.db.SelectContext(ctx, &rows, query, facultyID, courseID, date); err != nil {
		return nil, fmt.Errorf("day attendance: %w", err)
	}
	return rows, nil
}

// Range returns one summary row per student per session type over the queried
// range. Percentage is derived after the scan so zero-conducted rows never
// divide by zero.
func (r *AttendanceRepository) Range(ctx context.Context, facultyID, courseID string, from, to time.Time) ([]models.SessionAttendanceSummary, error) {
	query := `SELECT ar.session, ar.student_id, ar.course_id, c.name AS course_name,
        s.full_name AS student_name, s.department, s.batch, s.semester,
        COUNT(*) FILTER (WHERE ar.status = 'PRESENT') AS present_count,
        COUNT(*) AS total_days
FROM attendance_records ar
JOIN students s ON s.id = ar.student_id
JOIN courses c ON c.id = ar.course_id
WHERE ar.faculty_id = $1 AND ar.course_id = $2 AND ar.date BETWEEN $3 AND $4
GROUP BY ar.session, ar.student_id, ar.course_id, c.name, s.full_name, s.department, s.batch, s.semester
ORDER BY s.full_name, ar.session`
	rows := []models.SessionAttendanceSummary{}
	if err := r.db.SelectContext(ctx, &rows, query, facultyID, courseID, from, to); err != nil {
		return nil, fmt.Errorf("range attendance: %w", err)
	}
	for i := range rows {
		if rows[i].TotalDays > 0 {
			rows[i].Percentage = float64(rows[i].PresentCount) / float64(rows[i].TotalDays) * 100
		}
	}
	return rows, nil
}
