package service

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/techmkce/attendance-engine-api/internal/models"
	"github.com/techmkce/attendance-engine-api/pkg/export"
	"github.com/techmkce/attendance-engine-api/pkg/storage"
)

func newReportServiceForTest(t *testing.T) (*ReportService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	cfg := ReportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour, MinAcceptablePercent: 75}
	return NewReportService(store, signer, cfg, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter()), store
}

func sampleDayReport() *models.DayReport {
	return &models.DayReport{Sessions: []models.SessionBreakdown{
		{
			Session: models.SessionForenoon,
			Total:   2, Present: 1, Absent: 1,
			Records: []models.AttendanceRecord{
				{StudentID: "s1", StudentName: "Anita", Department: "CSE", Status: models.AttendanceStatusPresent},
				{StudentID: "s2", StudentName: "Bala", Department: "ECE", Status: models.AttendanceStatusAbsent},
			},
		},
		{Session: models.SessionAfternoon},
	}}
}

func sampleConsolidated() []models.ConsolidatedRangeAttendance {
	return []models.ConsolidatedRangeAttendance{
		{StudentID: "s2", StudentName: "Bala", TotalConducted: 20, TotalAttended: 12, Percentage: 60.0},
		{StudentID: "s1", StudentName: "Anita", TotalConducted: 20, TotalAttended: 17, Percentage: 85.0},
	}
}

func TestReportServiceDayCSV(t *testing.T) {
	svc, _ := newReportServiceForTest(t)
	meta := models.ReportMeta{CourseName: "Data Structures", Date: "2026-03-09"}

	payload, err := svc.ExportDay(sampleDayReport(), meta, models.ReportFormatCSV)
	require.NoError(t, err)

	content := string(payload)
	assert.Contains(t, content, "Course,Data Structures")
	assert.Contains(t, content, "Date,2026-03-09")
	assert.Contains(t, content, "Session,Student ID,Name,Department,Batch,Semester,Status")
	assert.Contains(t, content, "FN,s1,Anita,CSE")
	assert.Contains(t, content, "FN - Total: 2  Present: 1  Absent: 1")
	assert.Contains(t, content, "AN - Total: 0  Present: 0  Absent: 0")
}

func TestReportServiceMetaOmitsUnsetFields(t *testing.T) {
	svc, _ := newReportServiceForTest(t)

	payload, err := svc.ExportDay(sampleDayReport(), models.ReportMeta{Date: "2026-03-09"}, models.ReportFormatCSV)
	require.NoError(t, err)

	content := string(payload)
	assert.True(t, strings.HasPrefix(content, "Date,2026-03-09"))
	assert.NotContains(t, content, "Course,")
	assert.NotContains(t, content, "From,")
}

func TestReportServiceRangeDatasetSortedAndBanded(t *testing.T) {
	svc, _ := newReportServiceForTest(t)

	data := svc.BuildRangeDataset(sampleConsolidated(), models.ReportMeta{})
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "Anita", data.Rows[0]["Name"])
	assert.Equal(t, "Bala", data.Rows[1]["Name"])
	assert.Equal(t, "85.0", data.Rows[0]["Percentage"])
	assert.Equal(t, "Percentage", data.BandColumn)
	assert.InDelta(t, 75.0, data.BandThreshold, 0.0001)
	assert.Equal(t, []string{"Students: 2  Conducted: 40  Attended: 29"}, data.Footer)
}

func TestReportServicePDFIsReproducible(t *testing.T) {
	svc, _ := newReportServiceForTest(t)
	meta := models.ReportMeta{CourseName: "Data Structures", FromDate: "2026-03-01", ToDate: "2026-03-09"}

	first, err := svc.ExportRange(sampleConsolidated(), meta, models.ReportFormatPDF)
	require.NoError(t, err)
	second, err := svc.ExportRange(sampleConsolidated(), meta, models.ReportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestReportServiceStoreAndOpen(t *testing.T) {
	svc, store := newReportServiceForTest(t)

	payload, err := svc.ExportRange(sampleConsolidated(), models.ReportMeta{}, models.ReportFormatCSV)
	require.NoError(t, err)

	result, err := svc.Store("report-1", models.ReportFormatCSV, payload)
	require.NoError(t, err)
	assert.Contains(t, result.URL, "/api/v1/reports/download?token=")

	info, err := os.Stat(store.Path(result.RelativePath))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	file, relPath, err := svc.Open(result.Token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, result.RelativePath, relPath)
}

func TestReportServiceOpenRejectsTamperedToken(t *testing.T) {
	svc, _ := newReportServiceForTest(t)

	payload, err := svc.ExportRange(sampleConsolidated(), models.ReportMeta{}, models.ReportFormatCSV)
	require.NoError(t, err)
	result, err := svc.Store("report-2", models.ReportFormatCSV, payload)
	require.NoError(t, err)

	_, _, err = svc.Open(result.Token + "x")
	require.Error(t, err)
}

func TestReportServiceUnsupportedFormat(t *testing.T) {
	svc, _ := newReportServiceForTest(t)

	_, err := svc.ExportDay(sampleDayReport(), models.ReportMeta{}, models.ReportFormat("xlsx"))
	require.Error(t, err)
}
