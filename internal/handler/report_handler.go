package handler

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/techmkce/attendance-engine-api/internal/models"
	"github.com/techmkce/attendance-engine-api/internal/service"
	appErrors "github.com/techmkce/attendance-engine-api/pkg/errors"
	"github.com/techmkce/attendance-engine-api/pkg/response"
)

type reportService interface {
	ExportDay(report *models.DayReport, meta models.ReportMeta, format models.ReportFormat) ([]byte, error)
	ExportRange(consolidated []models.ConsolidatedRangeAttendance, meta models.ReportMeta, format models.ReportFormat) ([]byte, error)
	EnqueueDay(report *models.DayReport, meta models.ReportMeta, format models.ReportFormat) (*models.ReportJob, error)
	EnqueueRange(consolidated []models.ConsolidatedRangeAttendance, meta models.ReportMeta, format models.ReportFormat) (*models.ReportJob, error)
	Job(id string) (*models.ReportJob, error)
	Open(token string) (*os.File, string, error)
}

// ReportHandler exposes report export and download endpoints.
type ReportHandler struct {
	reports reportService
	queries attendanceQueryService
}

// NewReportHandler constructs the handler.
func NewReportHandler(reports reportService, queries attendanceQueryService) *ReportHandler {
	return &ReportHandler{reports: reports, queries: queries}
}

// ExportRequest describes a report export.
type ExportRequest struct {
	Mode       string `json:"mode" binding:"required"`
	Format     string `json:"format" binding:"required"`
	Async      bool   `json:"async"`
	FacultyID  string `json:"faculty_id" binding:"required"`
	CourseID   string `json:"course_id" binding:"required"`
	CourseName string `json:"course_name"`
	Date       string `json:"date"`
	FromDate   string `json:"from_date"`
	ToDate     string `json:"to_date"`
	Department string `json:"department"`
	Batch      string `json:"batch"`
	Semester   string `json:"semester"`
}

// Export godoc
// @Summary Export an attendance report document
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body ExportRequest true "Export request"
// @Success 200 {object} response.Envelope
// @Router /reports/export [post]
func (h *ReportHandler) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "mode, format, faculty_id and course_id are required"))
		return
	}
	format := models.ReportFormat(req.Format)
	if !format.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	meta := models.ReportMeta{
		CourseName: req.CourseName,
		Date:       req.Date,
		FromDate:   req.FromDate,
		ToDate:     req.ToDate,
		Department: req.Department,
		Batch:      req.Batch,
		Semester:   req.Semester,
	}

	switch models.FilterMode(req.Mode) {
	case models.FilterModeSingle:
		report, err := h.queries.QueryDay(c.Request.Context(), service.DayQueryRequest{
			FacultyID:  req.FacultyID,
			CourseID:   req.CourseID,
			Date:       req.Date,
			Department: req.Department,
			Batch:      req.Batch,
			Semester:   req.Semester,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		if req.Async {
			job, err := h.reports.EnqueueDay(report, meta, format)
			if err != nil {
				response.Error(c, err)
				return
			}
			response.JSON(c, http.StatusAccepted, job)
			return
		}
		payload, err := h.reports.ExportDay(report, meta, format)
		if err != nil {
			response.Error(c, err)
			return
		}
		h.serveDocument(c, payload, format, fmt.Sprintf("attendance-day-%s", req.Date))
	case models.FilterModeRange:
		consolidated, err := h.queries.QueryRange(c.Request.Context(), service.RangeQueryRequest{
			FacultyID:  req.FacultyID,
			CourseID:   req.CourseID,
			FromDate:   req.FromDate,
			ToDate:     req.ToDate,
			Department: req.Department,
			Batch:      req.Batch,
			Semester:   req.Semester,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		if req.Async {
			job, err := h.reports.EnqueueRange(consolidated, meta, format)
			if err != nil {
				response.Error(c, err)
				return
			}
			response.JSON(c, http.StatusAccepted, job)
			return
		}
		payload, err := h.reports.ExportRange(consolidated, meta, format)
		if err != nil {
			response.Error(c, err)
			return
		}
		h.serveDocument(c, payload, format, fmt.Sprintf("attendance-range-%s-%s", req.FromDate, req.ToDate))
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "mode must be single or range"))
	}
}

// JobStatus godoc
// @Summary Export job status
// @Tags Reports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /reports/jobs/{id} [get]
func (h *ReportHandler) JobStatus(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid job id"))
		return
	}
	job, err := h.reports.Job(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job)
}

// Download godoc
// @Summary Download a stored report document by signed token
// @Tags Reports
// @Param token query string true "Signed download token"
// @Success 200
// @Router /reports/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}
	file, relPath, err := h.reports.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat report document"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", relPath))
	c.DataFromReader(http.StatusOK, info.Size(), contentTypeFor(relPath), file, nil)
}

func (h *ReportHandler) serveDocument(c *gin.Context, payload []byte, format models.ReportFormat, name string) {
	filename := fmt.Sprintf("%s.%s", name, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentTypeFor(filename), payload)
}

func contentTypeFor(filename string) string {
	if len(filename) >= 4 && filename[len(filename)-4:] == ".pdf" {
		return "application/pdf"
	}
	return "text/csv"
}
