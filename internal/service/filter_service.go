package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/techmkce/attendance-engine-api/internal/models"
	appErrors "github.com/techmkce/attendance-engine-api/pkg/errors"
)

type rosterResolver interface {
	ResolveCourses(ctx context.Context, facultyID string) ([]models.Course, error)
	ResolveRoster(ctx context.Context, facultyID, courseID string) ([]models.StudentDetails, error)
}

// FilterChange is emitted on every FilterContext mutation so observers can
// re-issue queries when the relevant fields are complete.
type FilterChange struct {
	FacultyID  string
	Mode       models.FilterMode
	Generation uint64
}

// FilterService owns the per-faculty filter state machines. Each faculty holds
// two fully isolated FilterContexts, one per query mode; mutating one mode
// never touches the other.
type FilterService struct {
	mu       sync.Mutex
	sessions map[string]map[models.FilterMode]*models.FilterContext
	subs     []chan FilterChange

	roster rosterResolver
	logger *zap.Logger
	now    func() time.Time
}

// NewFilterService constructs the service.
func NewFilterService(roster rosterResolver, logger *zap.Logger) *FilterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilterService{
		sessions: make(map[string]map[models.FilterMode]*models.FilterContext),
		roster:   roster,
		logger:   logger,
		now:      time.Now,
	}
}

// Subscribe registers a change observer. The channel is buffered; events are
// dropped rather than blocking a mutation when the observer lags.
func (s *FilterService) Subscribe() <-chan FilterChange {
	ch := make(chan FilterChange, 16)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// SelectCourse sets the course for one mode, derives the option sets from the
// course roster and clears any previously chosen department, batch or
// semester: they are no longer guaranteed valid against the new option sets.
func (s *FilterService) SelectCourse(ctx context.Context, facultyID string, mode models.FilterMode, courseID string) (*models.FilterContext, error) {
	if !mode.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown filter mode")
	}
	if facultyID == "" || courseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "facultyId and courseId required")
	}

	courses, err := s.roster.ResolveCourses(ctx, facultyID)
	if err != nil {
		return nil, err
	}
	courseName := ""
	for _, course := range courses {
		if course.CourseID == courseID {
			courseName = course.CourseName
			break
		}
	}
	if courseName == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not assigned to faculty")
	}

	roster, err := s.roster.ResolveRoster(ctx, facultyID, courseID)
	if err != nil {
		return nil, err
	}
	options := deriveOptions(roster)

	s.mu.Lock()
	defer s.mu.Unlock()
	fc := s.context(facultyID, mode)
	fc.CourseID = courseID
	fc.CourseName = courseName
	fc.Department = ""
	fc.Batch = ""
	fc.Semester = ""
	fc.Options = options
	fc.Generation++
	snapshot := *fc
	s.notify(FilterChange{FacultyID: facultyID, Mode: mode, Generation: fc.Generation})
	return &snapshot, nil
}

// SelectFilter sets one of department/batch/semester/date fields without
// touching the course or the option sets. Rejected until a course is selected
// and whenever the value is absent from the derived option set for its field.
func (s *FilterService) SelectFilter(facultyID string, mode models.FilterMode, field models.FilterField, value string) (*models.FilterContext, error) {
	if !mode.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown filter mode")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fc := s.context(facultyID, mode)
	if fc.CourseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "select a course first")
	}

	switch field {
	case models.FilterFieldDepartment:
		if !contains(fc.Options.Departments, value) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "department not in course roster")
		}
		fc.Department = value
	case models.FilterFieldBatch:
		if !contains(fc.Options.Batches, value) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "batch not in course roster")
		}
		fc.Batch = value
	case models.FilterFieldSemester:
		if !contains(fc.Options.Semesters, value) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "semester not in course roster")
		}
		fc.Semester = value
	case models.FilterFieldDate:
		if mode != models.FilterModeSingle {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date applies to single-day mode only")
		}
		date, err := s.parseDate(value)
		if err != nil {
			return nil, err
		}
		fc.Date = &date
	case models.FilterFieldFromDate:
		if mode != models.FilterModeRange {
			return nil, appErrors.Clone(appErrors.ErrValidation, "fromDate applies to range mode only")
		}
		date, err := s.parseDate(value)
		if err != nil {
			return nil, err
		}
		if fc.ToDate != nil && date.After(*fc.ToDate) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "fromDate must not be after toDate")
		}
		fc.FromDate = &date
	case models.FilterFieldToDate:
		if mode != models.FilterModeRange {
			return nil, appErrors.Clone(appErrors.ErrValidation, "toDate applies to range mode only")
		}
		date, err := s.parseDate(value)
		if err != nil {
			return nil, err
		}
		if fc.FromDate != nil && date.Before(*fc.FromDate) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "toDate must not be before fromDate")
		}
		fc.ToDate = &date
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown filter field")
	}

	fc.Generation++
	snapshot := *fc
	s.notify(FilterChange{FacultyID: facultyID, Mode: mode, Generation: fc.Generation})
	return &snapshot, nil
}

// Reset clears the entire FilterContext for one mode.
func (s *FilterService) Reset(facultyID string, mode models.FilterMode) (*models.FilterContext, error) {
	if !mode.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown filter mode")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fc := s.context(facultyID, mode)
	generation := fc.Generation + 1
	*fc = models.FilterContext{Generation: generation}
	snapshot := *fc
	s.notify(FilterChange{FacultyID: facultyID, Mode: mode, Generation: generation})
	return &snapshot, nil
}

// Snapshot returns a copy of the current FilterContext for one mode.
func (s *FilterService) Snapshot(facultyID string, mode models.FilterMode) (models.FilterContext, error) {
	if !mode.Valid() {
		return models.FilterContext{}, appErrors.Clone(appErrors.ErrValidation, "unknown filter mode")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.context(facultyID, mode), nil
}

// Generation returns the current generation counter for one mode.
func (s *FilterService) Generation(facultyID string, mode models.FilterMode) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.context(facultyID, mode).Generation
}

func (s *FilterService) context(facultyID string, mode models.FilterMode) *models.FilterContext {
	modes, ok := s.sessions[facultyID]
	if !ok {
		modes = make(map[models.FilterMode]*models.FilterContext, 2)
		s.sessions[facultyID] = modes
	}
	fc, ok := modes[mode]
	if !ok {
		fc = &models.FilterContext{}
		modes[mode] = fc
	}
	return fc
}

func (s *FilterService) notify(change FilterChange) {
	for _, ch := range s.subs {
		select {
		case ch <- change:
		default:
			s.logger.Warn("filter change dropped, observer lagging",
				zap.String("faculty_id", change.FacultyID), zap.String("mode", string(change.Mode)))
		}
	}
}

func (s *FilterService) parseDate(value string) (time.Time, error) {
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

// deriveOptions builds the de-duplicated, order-preserving distinct values of
// batch/department/semester across the roster.
func deriveOptions(roster []models.StudentDetails) models.FilterOptions {
	options := models.FilterOptions{}
	seenBatch := map[string]struct{}{}
	seenDept := map[string]struct{}{}
	seenSem := map[string]struct{}{}
	for _, student := range roster {
		if _, ok := seenBatch[student.Batch]; !ok && student.Batch != "" {
			seenBatch[student.Batch] = struct{}{}
			options.Batches = append(options.Batches, student.Batch)
		}
		if _, ok := seenDept[student.Department]; !ok && student.Department != "" {
			seenDept[student.Department] = struct{}{}
			options.Departments = append(options.Departments, student.Department)
		}
		if _, ok := seenSem[student.Semester]; !ok && student.Semester != "" {
			seenSem[student.Semester] = struct{}{}
			options.Semesters = append(options.Semesters, student.Semester)
		}
	}
	return options
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
