package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techmkce/attendance-engine-api/internal/models"
	"github.com/techmkce/attendance-engine-api/internal/service"
	appErrors "github.com/techmkce/attendance-engine-api/pkg/errors"
	"github.com/techmkce/attendance-engine-api/pkg/response"
)

type filterService interface {
	SelectCourse(ctx context.Context, facultyID string, mode models.FilterMode, courseID string) (*models.FilterContext, error)
	SelectFilter(facultyID string, mode models.FilterMode, field models.FilterField, value string) (*models.FilterContext, error)
	Reset(facultyID string, mode models.FilterMode) (*models.FilterContext, error)
	Snapshot(facultyID string, mode models.FilterMode) (models.FilterContext, error)
}

type queryDispatcher interface {
	Run(ctx context.Context, facultyID string, mode models.FilterMode) (*service.QueryOutcome, error)
}

// FilterHandler exposes the per-mode filter state machine.
type FilterHandler struct {
	filters    filterService
	dispatcher queryDispatcher
}

// NewFilterHandler constructs the handler.
func NewFilterHandler(filters filterService, dispatcher queryDispatcher) *FilterHandler {
	return &FilterHandler{filters: filters, dispatcher: dispatcher}
}

// SelectCourseRequest carries a course selection.
type SelectCourseRequest struct {
	CourseID string `json:"course_id" binding:"required"`
}

// SelectFiltersRequest carries one or more field selections, applied in order.
type SelectFiltersRequest struct {
	Department *string `json:"department"`
	Batch      *string `json:"batch"`
	Semester   *string `json:"semester"`
	Date       *string `json:"date"`
	FromDate   *string `json:"from_date"`
	ToDate     *string `json:"to_date"`
}

// SelectCourse godoc
// @Summary Select the course for one filter mode
// @Tags Filters
// @Accept json
// @Produce json
// @Param facultyId path string true "Faculty ID"
// @Param mode path string true "Filter mode (single|range)"
// @Param payload body SelectCourseRequest true "Course selection"
// @Success 200 {object} response.Envelope
// @Router /filters/{facultyId}/{mode}/course [post]
func (h *FilterHandler) SelectCourse(c *gin.Context) {
	var req SelectCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course_id required"))
		return
	}
	fc, err := h.filters.SelectCourse(c.Request.Context(), c.Param("facultyId"), models.FilterMode(c.Param("mode")), req.CourseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fc)
}

// SelectFilters godoc
// @Summary Set department/batch/semester/date filters for one mode
// @Tags Filters
// @Accept json
// @Produce json
// @Param facultyId path string true "Faculty ID"
// @Param mode path string true "Filter mode (single|range)"
// @Param payload body SelectFiltersRequest true "Field selections"
// @Success 200 {object} response.Envelope
// @Router /filters/{facultyId}/{mode}/fields [post]
func (h *FilterHandler) SelectFilters(c *gin.Context) {
	var req SelectFiltersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	facultyID := c.Param("facultyId")
	mode := models.FilterMode(c.Param("mode"))

	fields := []struct {
		field models.FilterField
		value *string
	}{
		{models.FilterFieldDepartment, req.Department},
		{models.FilterFieldBatch, req.Batch},
		{models.FilterFieldSemester, req.Semester},
		{models.FilterFieldDate, req.Date},
		{models.FilterFieldFromDate, req.FromDate},
		{models.FilterFieldToDate, req.ToDate},
	}
	var fc *models.FilterContext
	applied := false
	for _, entry := range fields {
		if entry.value == nil {
			continue
		}
		updated, err := h.filters.SelectFilter(facultyID, mode, entry.field, *entry.value)
		if err != nil {
			response.Error(c, err)
			return
		}
		fc = updated
		applied = true
	}
	if !applied {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "no filter fields provided"))
		return
	}
	response.JSON(c, http.StatusOK, fc)
}

// Reset godoc
// @Summary Clear the FilterContext for one mode
// @Tags Filters
// @Produce json
// @Param facultyId path string true "Faculty ID"
// @Param mode path string true "Filter mode (single|range)"
// @Success 200 {object} response.Envelope
// @Router /filters/{facultyId}/{mode} [delete]
func (h *FilterHandler) Reset(c *gin.Context) {
	fc, err := h.filters.Reset(c.Param("facultyId"), models.FilterMode(c.Param("mode")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fc)
}

// Get godoc
// @Summary Current FilterContext and option sets for one mode
// @Tags Filters
// @Produce json
// @Param facultyId path string true "Faculty ID"
// @Param mode path string true "Filter mode (single|range)"
// @Success 200 {object} response.Envelope
// @Router /filters/{facultyId}/{mode} [get]
func (h *FilterHandler) Get(c *gin.Context) {
	fc, err := h.filters.Snapshot(c.Param("facultyId"), models.FilterMode(c.Param("mode")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fc)
}

// Report godoc
// @Summary Run the query described by the current filter state
// @Tags Filters
// @Produce json
// @Param facultyId path string true "Faculty ID"
// @Param mode path string true "Filter mode (single|range)"
// @Success 200 {object} response.Envelope
// @Router /filters/{facultyId}/{mode}/report [get]
func (h *FilterHandler) Report(c *gin.Context) {
	outcome, err := h.dispatcher.Run(c.Request.Context(), c.Param("facultyId"), models.FilterMode(c.Param("mode")))
	if err != nil {
		response.Error(c, err)
		return
	}
	if outcome == nil {
		response.NoRecords(c, nil)
		return
	}
	if outcome.NoRecords {
		response.NoRecords(c, outcome)
		return
	}
	response.JSON(c, http.StatusOK, outcome)
}
