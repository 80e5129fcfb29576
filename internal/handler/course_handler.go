package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/pkg/response"
)

type courseService interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error)
	Update(ctx context.Context, id string, req dto.UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id string) error
}

type moduleService interface {
	List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Module, error)
	Create(ctx context.Context, req dto.CreateModuleRequest) (*models.Module, error)
	Update(ctx context.Context, id string, req dto.UpdateModuleRequest) (*models.Module, error)
	Delete(ctx context.Context, id string) error
}

// CourseHandler exposes course and module endpoints.
type CourseHandler struct {
	courses courseService
	modules moduleService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses courseService, modules moduleService) *CourseHandler {
	return &CourseHandler{courses: courses, modules: modules}
}

// ListCourses godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by title or overview"
// @Param level query string false "beginner, intermediate or advanced"
// @Param category query string false "Comma separated categories"
// @Param isActive query bool false "Filter by active state"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param minRating query number false "Minimum rating"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	filter := models.CourseFilter{
		ListQuery: listQuery(c),
		Title:     strings.TrimSpace(c.Query("title")),
		Level:     models.CourseLevel(strings.ToLower(c.Query("level"))),
		AdminID:   c.Query("admin"),
		MinPrice:  floatQuery(c, "minPrice"),
		MaxPrice:  floatQuery(c, "maxPrice"),
		MinRating: floatQuery(c, "minRating"),
		IsActive:  boolQuery(c, "isActive"),
	}
	for _, category := range strings.Split(c.Query("category"), ",") {
		if category = strings.TrimSpace(category); category != "" {
			filter.Categories = append(filter.Categories, category)
		}
	}
	items, pagination, err := h.courses.List(c.Request.Context(), filter)
	page(c, items, pagination, err)
}

// GetCourse godoc
// @Summary Get course
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, course, "")
}

// CreateCourse godoc
// @Summary Create course
// @Description The image may be a URL or a base64 data URL, which is stored under /uploads/courses.
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course, "course created successfully")
}

// UpdateCourse godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param payload body dto.UpdateCourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [patch]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var req dto.UpdateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.courses.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, course, "course updated successfully")
}

// DeleteCourse godoc
// @Summary Delete course
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	if err := h.courses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, nil, "course deleted successfully")
}

// ListModules godoc
// @Summary List modules
// @Tags Modules
// @Produce json
// @Security BearerAuth
// @Param courseId query string false "Filter by course"
// @Success 200 {object} response.Envelope
// @Router /modules [get]
func (h *CourseHandler) ListModules(c *gin.Context) {
	filter := models.ModuleFilter{ListQuery: listQuery(c), CourseID: c.Query("courseId")}
	items, pagination, err := h.modules.List(c.Request.Context(), filter)
	page(c, items, pagination, err)
}

// GetModule godoc
// @Summary Get module
// @Tags Modules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Router /modules/{id} [get]
func (h *CourseHandler) GetModule(c *gin.Context) {
	module, err := h.modules.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, module, "")
}

// CreateModule godoc
// @Summary Create module
// @Tags Modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateModuleRequest true "Module payload"
// @Success 201 {object} response.Envelope
// @Router /modules [post]
func (h *CourseHandler) CreateModule(c *gin.Context) {
	var req dto.CreateModuleRequest
	if !bindJSON(c, &req) {
		return
	}
	module, err := h.modules.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, module, "module created successfully")
}

// UpdateModule godoc
// @Summary Update module
// @Tags Modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Param payload body dto.UpdateModuleRequest true "Module payload"
// @Success 200 {object} response.Envelope
// @Router /modules/{id} [put]
func (h *CourseHandler) UpdateModule(c *gin.Context) {
	var req dto.UpdateModuleRequest
	if !bindJSON(c, &req) {
		return
	}
	module, err := h.modules.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, module, "module updated successfully")
}

// DeleteModule godoc
// @Summary Delete module
// @Tags Modules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Router /modules/{id} [delete]
func (h *CourseHandler) DeleteModule(c *gin.Context) {
	if err := h.modules.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, nil, "module deleted successfully")
}
