package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techmkce/attendance-engine-api/internal/models"
)

func newAttendanceMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAttendanceRepositoryDay(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "date", "course_id", "course_name", "faculty_id", "session", "student_id", "student_name", "department", "batch", "semester", "status"}).
		AddRow("a1", date, "c1", "Data Structures", "f1", "FN", "s1", "Anita", "CSE", "2023", "4", "PRESENT").
		AddRow("a2", date, "c1", "Data Structures", "f1", "AN", "s1", "Anita", "CSE", "2023", "4", "ABSENT")
	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance_records ar")).
		WithArgs("f1", "c1", date).
		WillReturnRows(rows)

	records, err := repo.Day(context.Background(), "f1", "c1", date)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.SessionForenoon, records[0].Session)
	assert.Equal(t, models.AttendanceStatusAbsent, records[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryDayEmpty(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance_records ar")).
		WithArgs("f1", "c1", date).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "course_id", "course_name", "faculty_id", "session", "student_id", "student_name", "department", "batch", "semester", "status"}))

	records, err := repo.Day(context.Background(), "f1", "c1", date)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryRangeComputesPercentage(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"session", "student_id", "course_id", "course_name", "student_name", "department", "batch", "semester", "present_count", "total_days"}).
		AddRow("FN", "s1", "c1", "Data Structures", "Anita", "CSE", "2023", "4", 8, 10).
		AddRow("AN", "s1", "c1", "Data Structures", "Anita", "CSE", "2023", "4", 0, 0)
	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) FILTER (WHERE ar.status = 'PRESENT') AS present_count")).
		WithArgs("f1", "c1", from, to).
		WillReturnRows(rows)

	summaries, err := repo.Range(context.Background(), "f1", "c1", from, to)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.InDelta(t, 80.0, summaries[0].Percentage, 0.0001)
	assert.Zero(t, summaries[1].Percentage)
	assert.NoError(t, mock.ExpectationsWereMet())
}
