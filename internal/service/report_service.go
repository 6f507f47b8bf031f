package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/techmkce/attendance-engine-api/internal/models"
	appErrors "github.com/techmkce/attendance-engine-api/pkg/errors"
	"github.com/techmkce/attendance-engine-api/pkg/export"
	"github.com/techmkce/attendance-engine-api/pkg/jobs"
	"github.com/techmkce/attendance-engine-api/pkg/storage"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ReportConfig tunes report rendering and export behaviour.
type ReportConfig struct {
	APIPrefix            string
	ResultTTL            time.Duration
	MinAcceptablePercent float64
	WorkerConcurrency    int
	WorkerRetries        int
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ReportService formats day breakdowns and consolidated range rollups into
// tabular datasets and exportable documents. Rendering is pure; the file-save
// is a separate boundary so a failed save never corrupts report state.
type ReportService struct {
	storage fileStorage
	signer  *storage.SignedURLSigner
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
	cfg     ReportConfig

	queue   *jobs.Queue
	jobsMu  sync.Mutex
	jobsMap map[string]*models.ReportJob
}

type exportJobPayload struct {
	job    *models.ReportJob
	day    *models.DayReport
	ranged []models.ConsolidatedRangeAttendance
	meta   models.ReportMeta
}

// NewReportService constructs a ReportService.
func NewReportService(store fileStorage, signer *storage.SignedURLSigner, cfg ReportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.MinAcceptablePercent <= 0 {
		cfg.MinAcceptablePercent = 75
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	s := &ReportService{
		storage: store,
		signer:  signer,
		csv:     csv,
		pdf:     pdf,
		logger:  logger,
		cfg:     cfg,
		jobsMap: make(map[string]*models.ReportJob),
	}
	s.queue = jobs.NewQueue("report-exports", s.handleExportJob, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the export worker pool.
func (s *ReportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the export workers.
func (s *ReportService) Stop() {
	s.queue.Stop()
}

// BuildDayDataset turns a partitioned day report into a tabular dataset with a
// per-session summary footer.
func (s *ReportService) BuildDayDataset(report *models.DayReport, meta models.ReportMeta) export.Dataset {
	headers := []string{"Session", "Student ID", "Name", "Department", "Batch", "Semester", "Status"}
	rows := make([]map[string]string, 0)
	footer := make([]string, 0, len(report.Sessions))
	for _, breakdown := range report.Sessions {
		for _, record := range breakdown.Records {
			rows = append(rows, map[string]string{
				"Session":    string(breakdown.Session),
				"Student ID": record.StudentID,
				"Name":       record.StudentName,
				"Department": record.Department,
				"Batch":      record.Batch,
				"Semester":   record.Semester,
				"Status":     string(record.Status),
			})
		}
		footer = append(footer, fmt.Sprintf("%s - Total: %d  Present: %d  Absent: %d",
			breakdown.Session, breakdown.Total, breakdown.Present, breakdown.Absent))
	}
	return export.Dataset{
		Title:   "Attendance Report",
		Meta:    metaLines(meta),
		Headers: headers,
		Rows:    rows,
		Footer:  footer,
	}
}

// BuildRangeDataset turns consolidated rollups into a tabular dataset. Rows
// are sorted by student name for display; percentages are formatted to one
// decimal place and banded at the configured threshold.
func (s *ReportService) BuildRangeDataset(consolidated []models.ConsolidatedRangeAttendance, meta models.ReportMeta) export.Dataset {
	sorted := make([]models.ConsolidatedRangeAttendance, len(consolidated))
	copy(sorted, consolidated)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StudentName < sorted[j].StudentName })

	headers := []string{"Student ID", "Name", "Department", "Batch", "Semester", "Conducted", "Attended", "Percentage"}
	rows := make([]map[string]string, 0, len(sorted))
	totalConducted := 0
	totalAttended := 0
	for _, entry := range sorted {
		rows = append(rows, map[string]string{
			"Student ID": entry.StudentID,
			"Name":       entry.StudentName,
			"Department": entry.Department,
			"Batch":      entry.Batch,
			"Semester":   entry.Semester,
			"Conducted":  fmt.Sprintf("%d", entry.TotalConducted),
			"Attended":   fmt.Sprintf("%d", entry.TotalAttended),
			"Percentage": fmt.Sprintf("%.1f", entry.Percentage),
		})
		totalConducted += entry.TotalConducted
		totalAttended += entry.TotalAttended
	}
	return export.Dataset{
		Title:   "Consolidated Attendance Report",
		Meta:    metaLines(meta),
		Headers: headers,
		Rows:    rows,
		Footer: []string{
			fmt.Sprintf("Students: %d  Conducted: %d  Attended: %d", len(sorted), totalConducted, totalAttended),
		},
		BandColumn:    "Percentage",
		BandThreshold: s.cfg.MinAcceptablePercent,
	}
}

// ExportDay renders a day report document. Pure: no file side effects.
func (s *ReportService) ExportDay(report *models.DayReport, meta models.ReportMeta, format models.ReportFormat) ([]byte, error) {
	if report == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day report required")
	}
	return s.render(s.BuildDayDataset(report, meta), format)
}

// ExportRange renders a consolidated range document. Pure: no file side effects.
func (s *ReportService) ExportRange(consolidated []models.ConsolidatedRangeAttendance, meta models.ReportMeta, format models.ReportFormat) ([]byte, error) {
	return s.render(s.BuildRangeDataset(consolidated, meta), format)
}

// Store saves a rendered document and returns a signed download reference.
func (s *ReportService) Store(reportID string, format models.ReportFormat, payload []byte) (*ExportResult, error) {
	filename := fmt.Sprintf("%s.%s", reportID, format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report document")
	}
	token, expiresAt, err := s.signer.Generate(reportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/reports/download?token=%s", s.cfg.APIPrefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// Open validates a download token and opens the referenced document.
func (s *ReportService) Open(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "report document not found")
	}
	return file, relPath, nil
}

// EnqueueDay queues asynchronous generation of a day report document.
func (s *ReportService) EnqueueDay(report *models.DayReport, meta models.ReportMeta, format models.ReportFormat) (*models.ReportJob, error) {
	if report == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day report required")
	}
	return s.enqueue(models.FilterModeSingle, format, &exportJobPayload{day: report, meta: meta})
}

// EnqueueRange queues asynchronous generation of a range report document.
func (s *ReportService) EnqueueRange(consolidated []models.ConsolidatedRangeAttendance, meta models.ReportMeta, format models.ReportFormat) (*models.ReportJob, error) {
	return s.enqueue(models.FilterModeRange, format, &exportJobPayload{ranged: consolidated, meta: meta})
}

// Job returns the current state of an export job.
func (s *ReportService) Job(id string) (*models.ReportJob, error) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	job, ok := s.jobsMap[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	snapshot := *job
	return &snapshot, nil
}

// Cleanup removes stored documents older than the configured TTL.
func (s *ReportService) Cleanup() {
	deleted, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("report cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("expired report documents removed", zap.Int("count", len(deleted)))
	}
}

func (s *ReportService) enqueue(mode models.FilterMode, format models.ReportFormat, payload *exportJobPayload) (*models.ReportJob, error) {
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}
	job := &models.ReportJob{
		ID:        uuid.NewString(),
		Mode:      mode,
		Format:    format,
		Status:    models.ReportJobPending,
		CreatedAt: time.Now().UTC(),
	}
	payload.job = job
	s.jobsMu.Lock()
	s.jobsMap[job.ID] = job
	s.jobsMu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "report_export", Payload: payload}); err != nil {
		s.jobsMu.Lock()
		job.Status = models.ReportJobFailed
		job.Error = err.Error()
		s.jobsMu.Unlock()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export")
	}
	snapshot := *job
	return &snapshot, nil
}

func (s *ReportService) handleExportJob(_ context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(*exportJobPayload)
	if !ok {
		return fmt.Errorf("unexpected export payload type %T", job.Payload)
	}

	var (
		data []byte
		err  error
	)
	if payload.job.Mode == models.FilterModeSingle {
		data, err = s.ExportDay(payload.day, payload.meta, payload.job.Format)
	} else {
		data, err = s.ExportRange(payload.ranged, payload.meta, payload.job.Format)
	}
	if err == nil {
		var result *ExportResult
		result, err = s.Store(payload.job.ID, payload.job.Format, data)
		if err == nil {
			s.jobsMu.Lock()
			payload.job.Status = models.ReportJobCompleted
			payload.job.Token = result.Token
			payload.job.URL = result.URL
			payload.job.ExpiresAt = result.ExpiresAt
			s.jobsMu.Unlock()
			return nil
		}
	}

	s.jobsMu.Lock()
	payload.job.Status = models.ReportJobFailed
	payload.job.Error = err.Error()
	s.jobsMu.Unlock()
	return err
}

func (s *ReportService) render(data export.Dataset, format models.ReportFormat) ([]byte, error) {
	switch format {
	case models.ReportFormatCSV:
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "csv render failed")
		}
		return payload, nil
	case models.ReportFormatPDF:
		payload, err := s.pdf.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pdf render failed")
		}
		return payload, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}
}

// metaLines renders only the header fields the active filter actually set.
func metaLines(meta models.ReportMeta) [][2]string {
	lines := make([][2]string, 0, 7)
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, [2]string{label, value})
		}
	}
	add("Course", meta.CourseName)
	add("Date", meta.Date)
	add("From", meta.FromDate)
	add("To", meta.ToDate)
	add("Department", meta.Department)
	add("Batch", meta.Batch)
	add("Semester", meta.Semester)
	return lines
}
