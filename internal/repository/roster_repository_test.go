package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRosterMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRosterRepositoryCourses(t *testing.T) {
	db, mock, cleanup := newRosterMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	rows := sqlmock.NewRows([]string{"course_id", "course_name"}).
		AddRow("c1", "Data Structures").
		AddRow("c2", "Operating Systems")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT c.id AS course_id, c.name AS course_name")).
		WithArgs("f1").
		WillReturnRows(rows)

	courses, err := repo.Courses(context.Background(), "f1")
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Data Structures", courses[0].CourseName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepositoryCoursesUnknownFacultyEmpty(t *testing.T) {
	db, mock, cleanup := newRosterMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT c.id AS course_id, c.name AS course_name")).
		WithArgs("f-unknown").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "course_name"}))

	courses, err := repo.Courses(context.Background(), "f-unknown")
	require.NoError(t, err)
	assert.Empty(t, courses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepositoryRosterDeduplicates(t *testing.T) {
	db, mock, cleanup := newRosterMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "name", "department", "batch", "semester"}).
		AddRow("s1", "Anita", "CSE", "2023", "4").
		AddRow("s1", "Anita", "CSE", "2023", "4").
		AddRow("s2", "Bala", "ECE", "2023", "4")
	mock.ExpectQuery(regexp.QuoteMeta("JOIN course_students cs ON cs.student_id = s.id")).
		WithArgs("f1", "c1").
		WillReturnRows(rows)

	roster, err := repo.Roster(context.Background(), "f1", "c1")
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "s1", roster[0].StudentID)
	assert.Equal(t, "s2", roster[1].StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
