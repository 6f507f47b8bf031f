package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/techmkce/attendance-engine-api/internal/models"
	appErrors "github.com/techmkce/attendance-engine-api/pkg/errors"
)

type rosterRepository interface {
	Courses(ctx context.Context, facultyID string) ([]models.Course, error)
	Roster(ctx context.Context, facultyID, courseID string) ([]models.StudentDetails, error)
}

type rosterCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type rosterCacheObserver interface {
	RosterCacheHit()
	RosterCacheMiss()
}

// RosterService resolves faculty course assignments and rosters, fronted by an
// explicit cache keyed by (facultyId, courseId) with caller-controlled
// invalidation.
type RosterService struct {
	repo    rosterRepository
	cache   rosterCache
	metrics rosterCacheObserver
	ttl     time.Duration
	logger  *zap.Logger
}

// NewRosterService constructs the service. A nil cache disables caching and a
// nil metrics observer disables cache instrumentation.
func NewRosterService(repo rosterRepository, cache rosterCache, metrics rosterCacheObserver, ttl time.Duration, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RosterService{repo: repo, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

// ResolveCourses lists the faculty's queryable courses. Unknown faculty ids
// resolve to an empty list.
func (s *RosterService) ResolveCourses(ctx context.Context, facultyID string) ([]models.Course, error) {
	if facultyID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "facultyId required")
	}
	courses, err := s.repo.Courses(ctx, facultyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to resolve courses")
	}
	return courses, nil
}

// ResolveRoster returns the students assigned to the faculty for a course,
// de-duplicated by student id.
func (s *RosterService) ResolveRoster(ctx context.Context, facultyID, courseID string) ([]models.StudentDetails, error) {
	if facultyID == "" || courseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "facultyId and courseId required")
	}

	key := rosterCacheKey(facultyID, courseID)
	if s.cache != nil {
		var cached []models.StudentDetails
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			if s.metrics != nil {
				s.metrics.RosterCacheHit()
			}
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("roster cache read failed", zap.String("key", key), zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.RosterCacheMiss()
		}
	}

	roster, err := s.repo.Roster(ctx, facultyID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to resolve roster")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, roster, s.ttl); err != nil {
			s.logger.Warn("roster cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return roster, nil
}

// InvalidateFaculty drops every cached roster for the faculty. Called when the
// course list is refreshed.
func (s *RosterService) InvalidateFaculty(ctx context.Context, facultyID string) error {
	if s.cache == nil {
		return nil
	}
	if facultyID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "facultyId required")
	}
	pattern := fmt.Sprintf("roster:%s:*", facultyID)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to invalidate roster cache")
	}
	return nil
}

func rosterCacheKey(facultyID, courseID string) string {
	return fmt.Sprintf("roster:%s:%s", facultyID, courseID)
}
