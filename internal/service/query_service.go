package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/techmkce/attendance-engine-api/internal/models"
	appErrors "github.com/techmkce/attendance-engine-api/pkg/errors"
)

type attendanceRepository interface {
	Day(ctx context.Context, facultyID, courseID string, date time.Time) ([]models.AttendanceRecord, error)
	Range(ctx context.Context, facultyID, courseID string, from, to time.Time) ([]models.SessionAttendanceSummary, error)
}

type queryObserver interface {
	ObserveQuery(mode string, duration time.Duration)
}

// AttendanceQueryService retrieves attendance rows for a completed filter
// selection and runs them through the consolidation engine. Empty results are
// returned as empty collections, never as errors.
type AttendanceQueryService struct {
	repo      attendanceRepository
	validator *validator.Validate
	metrics   queryObserver
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceQueryService constructs the query service.
func NewAttendanceQueryService(repo attendanceRepository, validate *validator.Validate, metrics queryObserver, logger *zap.Logger) *AttendanceQueryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceQueryService{repo: repo, validator: validate, metrics: metrics, logger: logger, now: time.Now}
}

// DayQueryRequest scopes a single-day query.
type DayQueryRequest struct {
	FacultyID  string `json:"faculty_id" validate:"required"`
	CourseID   string `json:"course_id" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Department string `json:"department"`
	Batch      string `json:"batch"`
	Semester   string `json:"semester"`
}

// RangeQueryRequest scopes a multi-day query.
type RangeQueryRequest struct {
	FacultyID  string `json:"faculty_id" validate:"required"`
	CourseID   string `json:"course_id" validate:"required"`
	FromDate   string `json:"from_date" validate:"required"`
	ToDate     string `json:"to_date" validate:"required"`
	Department string `json:"department"`
	Batch      string `json:"batch"`
	Semester   string `json:"semester"`
}

// QueryDay retrieves one day's records and partitions them by session.
func (s *AttendanceQueryService) QueryDay(ctx context.Context, req DayQueryRequest) (*models.DayReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "courseId and date are required")
	}
	date, err := s.parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	start := s.now()
	records, err := s.repo.Day(ctx, req.FacultyID, req.CourseID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "attendance store unreachable")
	}
	s.observe("day", s.now().Sub(start))

	records = filterRecords(records, req.Department, req.Batch, req.Semester)
	return &models.DayReport{Sessions: PartitionBySession(records)}, nil
}

// QueryRange retrieves per-session summaries for the range and consolidates
// them into one rollup per student.
func (s *AttendanceQueryService) QueryRange(ctx context.Context, req RangeQueryRequest) ([]models.ConsolidatedRangeAttendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "courseId, fromDate and toDate are required")
	}
	from, err := s.parseDate(req.FromDate)
	if err != nil {
		return nil, err
	}
	to, err := s.parseDate(req.ToDate)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "toDate must not be before fromDate")
	}

	start := s.now()
	summaries, err := s.repo.Range(ctx, req.FacultyID, req.CourseID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "attendance store unreachable")
	}
	s.observe("range", s.now().Sub(start))

	summaries = filterSummaries(summaries, req.Department, req.Batch, req.Semester)
	return Consolidate(summaries), nil
}

func (s *AttendanceQueryService) observe(mode string, duration time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveQuery(mode, duration)
	}
}

func (s *AttendanceQueryService) parseDate(value string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	if date.After(today) {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "future dates are not queryable")
	}
	return date, nil
}

func filterRecords(records []models.AttendanceRecord, department, batch, semester string) []models.AttendanceRecord {
	if department == "" && batch == "" && semester == "" {
		return records
	}
	filtered := make([]models.AttendanceRecord, 0, len(records))
	for _, record := range records {
		if department != "" && record.Department != department {
			continue
		}
		if batch != "" && record.Batch != batch {
			continue
		}
		if semester != "" && record.Semester != semester {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}

func filterSummaries(summaries []models.SessionAttendanceSummary, department, batch, semester string) []models.SessionAttendanceSummary {
	if department == "" && batch == "" && semester == "" {
		return summaries
	}
	filtered := make([]models.SessionAttendanceSummary, 0, len(summaries))
	for _, summary := range summaries {
		if department != "" && summary.Department != department {
			continue
		}
		if batch != "" && summary.Batch != batch {
			continue
		}
		if semester != "" && summary.Semester != semester {
			continue
		}
		filtered = append(filtered, summary)
	}
	return filtered
}
