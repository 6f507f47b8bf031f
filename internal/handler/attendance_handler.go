package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techmkce/attendance-engine-api/internal/models"
	"github.com/techmkce/attendance-engine-api/internal/service"
	"github.com/techmkce/attendance-engine-api/pkg/response"
)

type attendanceQueryService interface {
	QueryDay(ctx context.Context, req service.DayQueryRequest) (*models.DayReport, error)
	QueryRange(ctx context.Context, req service.RangeQueryRequest) ([]models.ConsolidatedRangeAttendance, error)
}

// AttendanceHandler exposes the day and range attendance queries.
type AttendanceHandler struct {
	queries attendanceQueryService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(queries attendanceQueryService) *AttendanceHandler {
	return &AttendanceHandler{queries: queries}
}

// Day godoc
// @Summary Single-day attendance partitioned by session
// @Tags Attendance
// @Produce json
// @Param facultyId query string true "Faculty ID"
// @Param courseId query string true "Course ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param department query string false "Department filter"
// @Param batch query string false "Batch filter"
// @Param semester query string false "Semester filter"
// @Success 200 {object} response.Envelope
// @Router /attendance/day [get]
func (h *AttendanceHandler) Day(c *gin.Context) {
	req := service.DayQueryRequest{
		FacultyID:  c.Query("facultyId"),
		CourseID:   c.Query("courseId"),
		Date:       c.Query("date"),
		Department: c.Query("department"),
		Batch:      c.Query("batch"),
		Semester:   c.Query("semester"),
	}
	report, err := h.queries.QueryDay(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if dayReportEmpty(report) {
		response.NoRecords(c, report)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// Range godoc
// @Summary Consolidated attendance over a date range
// @Tags Attendance
// @Produce json
// @Param facultyId query string true "Faculty ID"
// @Param courseId query string true "Course ID"
// @Param fromDate query string true "Range start (YYYY-MM-DD)"
// @Param toDate query string true "Range end (YYYY-MM-DD)"
// @Param department query string false "Department filter"
// @Param batch query string false "Batch filter"
// @Param semester query string false "Semester filter"
// @Success 200 {object} response.Envelope
// @Router /attendance/range [get]
func (h *AttendanceHandler) Range(c *gin.Context) {
	req := service.RangeQueryRequest{
		FacultyID:  c.Query("facultyId"),
		CourseID:   c.Query("courseId"),
		FromDate:   c.Query("fromDate"),
		ToDate:     c.Query("toDate"),
		Department: c.Query("department"),
		Batch:      c.Query("batch"),
		Semester:   c.Query("semester"),
	}
	consolidated, err := h.queries.QueryRange(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(consolidated) == 0 {
		response.NoRecords(c, consolidated)
		return
	}
	response.JSON(c, http.StatusOK, consolidated)
}

func dayReportEmpty(report *models.DayReport) bool {
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
