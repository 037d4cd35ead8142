package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/dto"
	"github.com/noah-isme/gradebook-api/internal/middleware"
	"github.com/noah-isme/gradebook-api/internal/models"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
	"github.com/noah-isme/gradebook-api/pkg/response"
)

type courseService interface {
	Current(ctx context.Context) (*models.Course, bool, error)
	Setup(ctx context.Context, req dto.SetupCourseRequest) (*dto.SetupCourseResponse, error)
	UpdateComponentGrade(ctx context.Context, componentID string, req dto.UpdateGradeRequest) (*dto.UpdateGradeResponse, error)
	ResetGrades(ctx context.Context) (*dto.ResetGradesResponse, error)
	Archive(ctx context.Context) (*dto.ArchiveCourseResponse, error)
	ListArchived(ctx context.Context) ([]models.ArchivedCourse, error)
	GetArchived(ctx context.Context, id string) (*models.Course, bool, error)
}

// CourseHandler exposes the course tree endpoints.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(service courseService) *CourseHandler {
	return &CourseHandler{service: service}
}

// Current godoc
// @Summary Aggregated current course
// @Tags Course
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /course/current [get]
func (h *CourseHandler) Current(c *gin.Context) {
	course, hit, err := h.service.Current(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, course, middleware.ExtractMeta(c))
}

// Setup godoc
// @Summary Create or replace the active course structure
// @Tags Course
// @Accept json
// @Produce json
// @Param payload body dto.SetupCourseRequest true "Full course tree"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /course/setup [post]
func (h *CourseHandler) Setup(c *gin.Context) {
	var req dto.SetupCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Setup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// UpdateComponentGrade godoc
// @Summary Set or clear one component grade
// @Tags Course
// @Accept json
// @Produce json
// @Param id path string true "Component ID"
// @Param payload body dto.UpdateGradeRequest true "Grade, null clears it"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /course/component/{id} [patch]
func (h *CourseHandler) UpdateComponentGrade(c *gin.Context) {
	var req dto.UpdateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.UpdateComponentGrade(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// ResetGrades godoc
// @Summary Clear every grade of the active course
// @Tags Course
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /course/reset-grades [post]
func (h *CourseHandler) ResetGrades(c *gin.Context) {
	result, err := h.service.ResetGrades(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Archive godoc
// @Summary Archive the active course
// @Tags Course
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /course/archive [post]
func (h *CourseHandler) Archive(c *gin.Context) {
	result, err := h.service.Archive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// ListArchived godoc
// @Summary Archived course summaries, oldest archive first
// @Tags Course
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /course/archived [get]
func (h *CourseHandler) ListArchived(c *gin.Context) {
	courses, err := h.service.ListArchived(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, map[string]interface{}{"total": len(courses)})
}

// GetArchived godoc
// @Summary Aggregated tree of one archived course
// @Tags Course
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /course/archived/{id} [get]
func (h *CourseHandler) GetArchived(c *gin.Context) {
	course, hit, err := h.service.GetArchived(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, course, middleware.ExtractMeta(c))
}
