package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/techmkce/attendance-engine-api/internal/models"
)

// RosterRepository resolves faculty course assignments and per-course rosters.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository constructs the repository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// Courses lists the courses the faculty member may query. An unknown faculty
// id yields an empty list, not an error.
func (r *RosterRepository) Courses(ctx context.Context, facultyID string) ([]models.Course, error) {
	query := `SELECT DISTINCT c.id AS course_id, c.name AS course_name
FROM courses c
JOIN faculty_courses fc ON fc.course_id = c.id
WHERE fc.faculty_id = $1
ORDER BY c.name`
	rows := []models.Course{}
	if err := r.db.SelectContext(ctx, &rows, query, facultyID); err != nil {
		return nil, fmt.Errorf("list faculty courses: %w", err)
	}
	return rows, nil
}

// Roster lists the students assigned to the faculty for a course. Overlapping
// assignment records can surface the same student more than once, so rows are
// de-duplicated by student id while preserving first-appearance order.
func (r *RosterRepository) Roster(ctx context.Context, facultyID, courseID string) ([]models.StudentDetails, error) {
	query := `SELECT s.id AS student_id, s.full_name AS name, s.department, s.batch, s.semester
FROM students s
JOIN course_students cs ON cs.student_id = s.id
JOIN faculty_courses fc ON fc.course_id = cs.course_id
WHERE fc.faculty_id = $1 AND cs.course_id = $2
ORDER BY s.id`
	rows := []models.StudentDetails{}
	if err := r.db.SelectContext(ctx, &rows, query, facultyID, courseID); err != nil {
		return nil, fmt.Errorf("list course roster: %w", err)
	}

	seen := make(map[string]struct{}, len(rows))
	roster := make([]models.StudentDetails, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.StudentID]; ok {
			continue
		}
		seen[row.StudentID] = struct{}{}
		roster = append(roster, row)
	}
	return roster, nil
}
