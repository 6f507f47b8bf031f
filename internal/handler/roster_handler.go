package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techmkce/attendance-engine-api/internal/models"
	"github.com/techmkce/attendance-engine-api/pkg/response"
)

type rosterService interface {
	ResolveCourses(ctx context.Context, facultyID string) ([]models.Course, error)
	ResolveRoster(ctx context.Context, facultyID, courseID string) ([]models.StudentDetails, error)
	InvalidateFaculty(ctx context.Context, facultyID string) error
}

// RosterHandler exposes roster resolution endpoints.
type RosterHandler struct {
	roster rosterService
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(roster rosterService) *RosterHandler {
	return &RosterHandler{roster: roster}
}

// Courses godoc
// @Summary Courses assigned to a faculty member
// @Tags Roster
// @Produce json
// @Param facultyId path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Router /roster/{facultyId}/courses [get]
func (h *RosterHandler) Courses(c *gin.Context) {
	courses, err := h.roster.ResolveCourses(c.Request.Context(), c.Param("facultyId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// Roster godoc
// @Summary Students assigned to a faculty member for a course
// @Tags Roster
// @Produce json
// @Param facultyId path string true "Faculty ID"
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /roster/{facultyId}/courses/{courseId}/students [get]
func (h *RosterHandler) Roster(c *gin.Context) {
	roster, err := h.roster.ResolveRoster(c.Request.Context(), c.Param("facultyId"), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster)
}

// InvalidateCache godoc
// @Summary Drop cached rosters for a faculty member
// @Tags Roster
// @Param facultyId path string true "Faculty ID"
// @Success 204
// @Router /roster/{facultyId}/cache [delete]
func (h *RosterHandler) InvalidateCache(c *gin.Context) {
	if err := h.roster.InvalidateFaculty(c.Request.Context(), c.Param("facultyId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
