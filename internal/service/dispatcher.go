package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/techmkce/attendance-engine-api/internal/models"
	appErrors "github.com/techmkce/attendance-engine-api/pkg/errors"
)

type filterSource interface {
	Snapshot(facultyID string, mode models.FilterMode) (models.FilterContext, error)
	Generation(facultyID string, mode models.FilterMode) uint64
	Subscribe() <-chan FilterChange
}

type queryRunner interface {
	QueryDay(ctx context.Context, req DayQueryRequest) (*models.DayReport, error)
	QueryRange(ctx context.Context, req RangeQueryRequest) ([]models.ConsolidatedRangeAttendance, error)
}

type staleObserver interface {
	StaleDiscard()
}

// QueryOutcome is the last successfully applied result for one faculty/mode.
type QueryOutcome struct {
	Key        string                               `json:"key"`
	FacultyID  string                               `json:"faculty_id"`
	Mode       models.FilterMode                    `json:"mode"`
	Generation uint64                               `json:"generation"`
	NoRecords  bool                                 `json:"no_records"`
	Day        *models.DayReport                    `json:"day,omitempty"`
	Range      []models.ConsolidatedRangeAttendance `json:"range,omitempty"`
	ResolvedAt time.Time                            `json:"resolved_at"`
}

// QueryDispatcher observes filter changes and re-issues the appropriate query
// whenever a mode's required fields are complete and the query key actually
// changed. Responses are applied last-request-wins: a response computed
// against an older filter generation is discarded, and a failed request leaves
// the previous successful outcome in place.
type QueryDispatcher struct {
	filters filterSource
	queries queryRunner
	metrics staleObserver
	logger  *zap.Logger

	mu       sync.Mutex
	outcomes map[string]*QueryOutcome

	stop   context.CancelFunc
	doneWg sync.WaitGroup
}

// NewQueryDispatcher constructs the dispatcher. A nil metrics observer
// disables stale-discard instrumentation.
func NewQueryDispatcher(filters filterSource, queries queryRunner, metrics staleObserver, logger *zap.Logger) *QueryDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryDispatcher{
		filters:  filters,
		queries:  queries,
		metrics:  metrics,
		logger:   logger,
		outcomes: make(map[string]*QueryOutcome),
	}
}

// Start consumes filter change events and keeps outcomes fresh. Incomplete
// filter states are skipped silently; they are "not ready", not failures.
func (d *QueryDispatcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	d.stop = cancel
	changes := d.filters.Subscribe()
	d.doneWg.Add(1)
	go func() {
		defer d.doneWg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case change := <-changes:
				if _, err := d.Run(ctx, change.FacultyID, change.Mode); err != nil {
					if appErrors.FromError(err).Code == appErrors.ErrNotReady.Code {
						continue
					}
					d.logger.Warn("reactive query failed",
						zap.String("faculty_id", change.FacultyID),
						zap.String("mode", string(change.Mode)),
						zap.Error(err))
				}
			}
		}
	}()
}

// Stop halts the reactive loop.
func (d *QueryDispatcher) Stop() {
	if d.stop != nil {
		d.stop()
	}
	d.doneWg.Wait()
}

// Run issues the query described by the current filter state for one mode.
// Identical consecutive keys are served from the last outcome without
// re-querying.
func (d *QueryDispatcher) Run(ctx context.Context, facultyID string, mode models.FilterMode) (*QueryOutcome, error) {
	snapshot, err := d.filters.Snapshot(facultyID, mode)
	if err != nil {
		return nil, err
	}
	if !snapshot.Complete(mode) {
		return nil, appErrors.Clone(appErrors.ErrNotReady, "required filters incomplete")
	}

	key := queryKey(facultyID, mode, snapshot)
	slot := slotKey(facultyID, mode)

	d.mu.Lock()
	if prev, ok := d.outcomes[slot]; ok && prev.Key == key {
		d.mu.Unlock()
		return prev, nil
	}
	d.mu.Unlock()

	generation := snapshot.Generation
	outcome := &QueryOutcome{Key: key, FacultyID: facultyID, Mode: mode, Generation: generation}
	switch mode {
	case models.FilterModeSingle:
		day, err := d.queries.QueryDay(ctx, DayQueryRequest{
			FacultyID:  facultyID,
			CourseID:   snapshot.CourseID,
			Date:       snapshot.Date.Format("2006-01-02"),
			Department: snapshot.Department,
			Batch:      snapshot.Batch,
			Semester:   snapshot.Semester,
		})
		if err != nil {
			return d.latestOr(slot, err)
		}
		outcome.Day = day
		outcome.NoRecords = dayEmpty(day)
	case models.FilterModeRange:
		rows, err := d.queries.QueryRange(ctx, RangeQueryRequest{
			FacultyID:  facultyID,
			CourseID:   snapshot.CourseID,
			FromDate:   snapshot.FromDate.Format("2006-01-02"),
			ToDate:     snapshot.ToDate.Format("2006-01-02"),
			Department: snapshot.Department,
			Batch:      snapshot.Batch,
			Semester:   snapshot.Semester,
		})
		if err != nil {
			return d.latestOr(slot, err)
		}
		outcome.Range = rows
		outcome.NoRecords = len(rows) == 0
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown filter mode")
	}

	outcome.ResolvedAt = time.Now().UTC()
	return d.apply(slot, outcome)
}

// apply stores an outcome unless the response is stale. The generation check
// and the store share one critical section, and the store is monotonic: an
// outcome computed against an older filter generation never overwrites one
// already applied for a newer generation, regardless of arrival order.
func (d *QueryDispatcher) apply(slot string, outcome *QueryOutcome) (*QueryOutcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	current := d.filters.Generation(outcome.FacultyID, outcome.Mode)
	prev := d.outcomes[slot]
	if current != outcome.Generation || (prev != nil && prev.Generation > outcome.Generation) {
		if d.metrics != nil {
			d.metrics.StaleDiscard()
		}
		d.logger.Debug("stale response discarded",
			zap.String("faculty_id", outcome.FacultyID),
			zap.String("mode", string(outcome.Mode)),
			zap.Uint64("issued", outcome.Generation),
			zap.Uint64("current", current))
		return prev, nil
	}

	d.outcomes[slot] = outcome
	return outcome, nil
}

// Latest returns the last applied outcome for one faculty/mode, if any.
func (d *QueryDispatcher) Latest(facultyID string, mode models.FilterMode) (*QueryOutcome, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	outcome, ok := d.outcomes[slotKey(facultyID, mode)]
	return outcome, ok
}

// latestOr surfaces the transport error while leaving the previous outcome
// untouched, so callers keep rendering the last successful result.
func (d *QueryDispatcher) latestOr(slot string, err error) (*QueryOutcome, error) {
	d.mu.Lock()
	prev := d.outcomes[slot]
	d.mu.Unlock()
	return prev, err
}

func dayEmpty(report *models.DayReport) bool {
	if report == nil {
		return true
	}
	for _, breakdown := range report.Sessions {
		if breakdown.Total > 0 {
			return false
		}
	}
	return true
}

func slotKey(facultyID string, mode models.FilterMode) string {
	return facultyID + "|" + string(mode)
}

func queryKey(facultyID string, mode models.FilterMode, fc models.FilterContext) string {
	switch mode {
	case models.FilterModeSingle:
		return fmt.Sprintf("%s|single|%s|%s|%s|%s|%s", facultyID, fc.CourseID, fc.Date.Format("2006-01-02"), fc.Department, fc.Batch, fc.Semester)
	default:
		return fmt.Sprintf("%s|range|%s|%s|%s|%s|%s|%s", facultyID, fc.CourseID, fc.FromDate.Format("2006-01-02"), fc.ToDate.Format("2006-01-02"), fc.Department, fc.Batch, fc.Semester)
	}
}
