package handlers

import (
	"net/http"

	"github.com/Vijayy-ai/EduTube/internal/models"
	"github.com/Vijayy-ai/EduTube/internal/observability"
	"github.com/Vijayy-ai/EduTube/internal/services"
	contextutils "github.com/Vijayy-ai/EduTube/internal/utils"

	"github.com/gin-gonic/gin"
)

// CourseHandler serves the course registry endpoints
type CourseHandler struct {
	courseService *services.CourseService
	logger        *observability.Logger
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courseService *services.CourseService, logger *observability.Logger) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		logger:        logger,
	}
}

// ListCourses handles GET /v1/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "ListCourses")
	defer span.End()

	courses, err := h.courseService.ListCourses(ctx)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// CreateCourse handles POST /v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "CreateCourse")
	defer span.End()

	var req models.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid request body",
			err.Error(),
			err,
		))
		return
	}

	if !contextutils.IsValidYouTubeID(req.YouTubeID) {
		HandleValidationError(c, "youtube_id", req.YouTubeID, "not a plausible video or playlist identifier")
		return
	}

	course, err := h.courseService.CreateCourse(ctx, &req)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}
