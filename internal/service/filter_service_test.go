package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/techmkce/attendance-engine-api/internal/models"
	appErrors "github.com/techmkce/attendance-engine-api/pkg/errors"
)

type rosterStub struct {
	courses []models.Course
	roster  []models.StudentDetails
	err     error
}

func (r rosterStub) ResolveCourses(ctx context.Context, facultyID string) ([]models.Course, error) {
	return r.courses, r.err
}

func (r rosterStub) ResolveRoster(ctx context.Context, facultyID, courseID string) ([]models.StudentDetails, error) {
	return r.roster, r.err
}

func newFilterServiceForTest() *FilterService {
	svc := NewFilterService(rosterStub{
		courses: []models.Course{{CourseID: "c1", CourseName: "Data Structures"}},
		roster: []models.StudentDetails{
			{StudentID: "s1", Name: "Anita", Department: "CSE", Batch: "2023", Semester: "4"},
			{StudentID: "s2", Name: "Bala", Department: "ECE", Batch: "2023", Semester: "4"},
			{StudentID: "s3", Name: "Chitra", Department: "CSE", Batch: "2024", Semester: "2"},
		},
	}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestFilterServiceSelectCourseDerivesOptions(t *testing.T) {
	svc := newFilterServiceForTest()

	fc, err := svc.SelectCourse(context.Background(), "f1", models.FilterModeSingle, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Data Structures", fc.CourseName)
	assert.Equal(t, []string{"CSE", "ECE"}, fc.Options.Departments)
	assert.Equal(t, []string{"2023", "2024"}, fc.Options.Batches)
	assert.Equal(t, []string{"4", "2"}, fc.Options.Semesters)
}

func TestFilterServiceSelectCourseRejectsUnassigned(t *testing.T) {
	svc := newFilterServiceForTest()

	_, err := svc.SelectCourse(context.Background(), "f1", models.FilterModeSingle, "c-other")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestFilterServiceSelectCourseClearsNarrowerFilters(t *testing.T) {
	svc := newFilterServiceForTest()

	_, err := svc.SelectCourse(context.Background(), "f1", models.FilterModeSingle, "c1")
	require.NoError(t, err)
	_, err = svc.SelectFilter("f1", models.FilterModeSingle, models.FilterFieldDepartment, "CSE")
	require.NoError(t, err)

	fc, err := svc.SelectCourse(context.Background(), "f1", models.FilterModeSingle, "c1")
	require.NoError(t, err)
	assert.Empty(t, fc.Department)
	assert.Empty(t, fc.Batch)
	assert.Empty(t, fc.Semester)
}

func TestFilterServiceFilterBeforeCourseRejected(t *testing.T) {
	svc := newFilterServiceForTest()

	_, err := svc.SelectFilter("f1", models.FilterModeSingle, models.FilterFieldDepartment, "CSE")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestFilterServiceRejectsValueOutsideOptions(t *testing.T) {
	svc := newFilterServiceForTest()

	_, err := svc.SelectCourse(context.Background(), "f1", models.FilterModeSingle, "c1")
	require.NoError(t, err)

	_, err = svc.SelectFilter("f1", models.FilterModeSingle, models.FilterFieldDepartment, "MECH")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestFilterServiceModesAreIsolated(t *testing.T) {
	svc := newFilterServiceForTest()

	_, err := svc.SelectCourse(context.Background(), "f1", models.FilterModeSingle, "c1")
	require.NoError(t, err)

	fc, err := svc.Snapshot("f1", models.FilterModeRange)
	require.NoError(t, err)
	assert.Empty(t, fc.CourseID)
}

func TestFilterServiceDateFieldsPerMode(t *testing.T) {
	svc := newFilterServiceForTest()

	_, err := svc.SelectCourse(context.Background(), "f1", models.FilterModeSingle, "c1")
	require.NoError(t, err)
	_, err = svc.SelectCourse(context.Background(), "f1", models.FilterModeRange, "c1")
	require.NoError(t, err)

	_, err = svc.SelectFilter("f1", models.FilterModeSingle, models.FilterFieldFromDate, "2026-03-01")
	require.Error(t, err)

	_, err = svc.SelectFilter("f1", models.FilterModeRange, models.FilterFieldDate, "2026-03-01")
	require.Error(t, err)

	fc, err := svc.SelectFilter("f1", models.FilterModeSingle, models.FilterFieldDate, "2026-03-01")
	require.NoError(t, err)
	assert.True(t, fc.Complete(models.FilterModeSingle))
}

func TestFilterServiceRejectsFutureDate(t *testing.T) {
	svc := newFilterServiceForTest()

	_, err := svc.SelectCourse(context.Background(), "f1", models.FilterModeSingle, "c1")
	require.NoError(t, err)

	_, err = svc.SelectFilter("f1", models.FilterModeSingle, models.FilterFieldDate, "2026-03-11")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestFilterServiceRangeOrdering(t *testing.T) {
	svc := newFilterServiceForTest()

	_, err := svc.SelectCourse(context.Background(), "f1", models.FilterModeRange, "c1")
	require.NoError(t, err)

	_, err = svc.SelectFilter("f1", models.FilterModeRange, models.FilterFieldFromDate, "2026-03-05")
	require.NoError(t, err)

	_, err = svc.SelectFilter("f1", models.FilterModeRange, models.FilterFieldToDate, "2026-03-01")
	require.Error(t, err)

	fc, err := svc.SelectFilter("f1", models.FilterModeRange, models.FilterFieldToDate, "2026-03-09")
	require.NoError(t, err)
	assert.True(t, fc.Complete(models.FilterModeRange))
}

func TestFilterServiceResetClearsEverything(t *testing.T) {
	svc := newFilterServiceForTest()

	_, err := svc.SelectCourse(context.Background(), "f1", models.FilterModeSingle, "c1")
	require.NoError(t, err)
	before := svc.Generation("f1", models.FilterModeSingle)

	fc, err := svc.Reset("f1", models.FilterModeSingle)
	require.NoError(t, err)
	assert.Empty(t, fc.CourseID)
	assert.Empty(t, fc.Options.Departments)
	assert.Greater(t, fc.Generation, before)
}

func TestFilterServiceMutationsBumpGenerationAndNotify(t *testing.T) {
	svc := newFilterServiceForTest()
	changes := svc.Subscribe()

	fc, err := svc.SelectCourse(context.Background(), "f1", models.FilterModeSingle, "c1")
	require.NoError(t, err)

	select {
	case change := <-changes:
		assert.Equal(t, "f1", change.FacultyID)
		assert.Equal(t, models.FilterModeSingle, change.Mode)
		assert.Equal(t, fc.Generation, change.Generation)
	default:
		t.Fatal("expected a filter change event")
	}
}
