package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/techmkce/attendance-engine-api/internal/models"
	appErrors "github.com/techmkce/attendance-engine-api/pkg/errors"
)

type rosterRepoStub struct {
	courses []models.Course
	roster  []models.StudentDetails
	err     error
	calls   int
}

func (r *rosterRepoStub) Courses(ctx context.Context, facultyID string) ([]models.Course, error) {
	return r.courses, r.err
}

func (r *rosterRepoStub) Roster(ctx context.Context, facultyID, courseID string) ([]models.StudentDetails, error) {
	r.calls++
	return r.roster, r.err
}

type cacheStub struct {
	entries map[string][]byte
	deleted []string
	getErr  error
}

func newCacheStub() *cacheStub {
	return &cacheStub{entries: make(map[string][]byte)}
}

func (c *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	if c.getErr != nil {
		return c.getErr
	}
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	c.deleted = append(c.deleted, pattern)
	c.entries = make(map[string][]byte)
	return nil
}

func TestRosterServiceResolveCourses(t *testing.T) {
	repo := &rosterRepoStub{courses: []models.Course{{CourseID: "c1", CourseName: "Data Structures"}}}
	svc := NewRosterService(repo, nil, nil, time.Minute, zap.NewNop())

	courses, err := svc.ResolveCourses(context.Background(), "f1")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Data Structures", courses[0].CourseName)
}

func TestRosterServiceUnknownFacultyResolvesEmpty(t *testing.T) {
	svc := NewRosterService(&rosterRepoStub{}, nil, nil, time.Minute, zap.NewNop())

	courses, err := svc.ResolveCourses(context.Background(), "f-unknown")
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestRosterServiceResolveRosterCaches(t *testing.T) {
	repo := &rosterRepoStub{roster: []models.StudentDetails{{StudentID: "s1", Name: "Anita"}}}
	cache := newCacheStub()
	svc := NewRosterService(repo, cache, nil, time.Minute, zap.NewNop())

	first, err := svc.ResolveRoster(context.Background(), "f1", "c1")
	require.NoError(t, err)
	second, err := svc.ResolveRoster(context.Background(), "f1", "c1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.calls)
}

func TestRosterServiceWrappedCacheMissIsQuiet(t *testing.T) {
	repo := &rosterRepoStub{roster: []models.StudentDetails{{StudentID: "s1"}}}
	cache := newCacheStub()
	cache.getErr = fmt.Errorf("decode roster: %w", appErrors.ErrCacheMiss)
	core, logs := observer.New(zap.WarnLevel)
	svc := NewRosterService(repo, cache, nil, time.Minute, zap.New(core))

	_, err := svc.ResolveRoster(context.Background(), "f1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)
	assert.Zero(t, logs.Len())
}

func TestRosterServiceCacheReadFailureWarnsAndFallsBack(t *testing.T) {
	repo := &rosterRepoStub{roster: []models.StudentDetails{{StudentID: "s1"}}}
	cache := newCacheStub()
	cache.getErr = errors.New("connection refused")
	core, logs := observer.New(zap.WarnLevel)
	svc := NewRosterService(repo, cache, nil, time.Minute, zap.New(core))

	_, err := svc.ResolveRoster(context.Background(), "f1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, 1, logs.Len())
}

func TestRosterServiceInvalidateFaculty(t *testing.T) {
	repo := &rosterRepoStub{roster: []models.StudentDetails{{StudentID: "s1"}}}
	cache := newCacheStub()
	svc := NewRosterService(repo, cache, nil, time.Minute, zap.NewNop())

	_, err := svc.ResolveRoster(context.Background(), "f1", "c1")
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateFaculty(context.Background(), "f1"))
	require.Len(t, cache.deleted, 1)
	assert.Equal(t, "roster:f1:*", cache.deleted[0])

	_, err = svc.ResolveRoster(context.Background(), "f1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestRosterServiceStoreFailure(t *testing.T) {
	repo := &rosterRepoStub{err: assert.AnError}
	svc := NewRosterService(repo, nil, nil, time.Minute, zap.NewNop())

	_, err := svc.ResolveRoster(context.Background(), "f1", "c1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnavailable.Code, appErrors.FromError(err).Code)
}
