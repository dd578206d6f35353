package handlers

import (
	"net/http"
	"strconv"

	"github.com/Vijayy-ai/EduTube/internal/config"
	"github.com/Vijayy-ai/EduTube/internal/models"
	"github.com/Vijayy-ai/EduTube/internal/observability"
	"github.com/Vijayy-ai/EduTube/internal/services"
	contextutils "github.com/Vijayy-ai/EduTube/internal/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// QuizHandler serves quiz generation, retrieval, and attempt endpoints
type QuizHandler struct {
	quizService   *services.QuizService
	courseService *services.CourseService
	cfg           *config.Config
	logger        *observability.Logger
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizService *services.QuizService, courseService *services.CourseService, cfg *config.Config, logger *observability.Logger) *QuizHandler {
	return &QuizHandler{
		quizService:   quizService,
		courseService: courseService,
		cfg:           cfg,
		logger:        logger,
	}
}

// GenerateQuiz handles POST /v1/courses/:id/quiz/generate
func (h *QuizHandler) GenerateQuiz(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "GenerateQuiz")
	defer span.End()

	courseID, err := strconv.Atoi(c.Param("id"))
	if err != nil || courseID <= 0 {
		HandleValidationError(c, "course id", c.Param("id"), "must be a positive integer")
		return
	}

	var req models.GenerateQuizRequest
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

	span.SetAttributes(
		observability.AttributeCourseID(courseID),
		attribute.String("difficulty", req.Difficulty),
		attribute.Bool("force_new", req.ForceNew),
	)

	course, err := h.courseService.GetCourse(ctx, courseID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	quiz, err := h.quizService.GenerateQuiz(ctx, course, &req)
	if err != nil {
		h.logger.Error(ctx, "Quiz generation failed", err, map[string]interface{}{
			"course_id": courseID,
		})
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// GetQuiz handles GET /v1/courses/:id/quiz
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "GetQuiz")
	defer span.End()

	courseID, err := strconv.Atoi(c.Param("id"))
	if err != nil || courseID <= 0 {
		HandleValidationError(c, "course id", c.Param("id"), "must be a positive integer")
		return
	}

	span.SetAttributes(observability.AttributeCourseID(courseID))

	quiz, err := h.quizService.GetQuizByCourseID(ctx, courseID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// SubmitAttempt handles POST /v1/quizzes/:id/attempts
func (h *QuizHandler) SubmitAttempt(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "SubmitAttempt")
	defer span.End()

	quizID, err := strconv.Atoi(c.Param("id"))
	if err != nil || quizID <= 0 {
		HandleValidationError(c, "quiz id", c.Param("id"), "must be a positive integer")
		return
	}

	var req models.SubmitAttemptRequest
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

	span.SetAttributes(
		observability.AttributeQuizID(quizID),
		observability.AttributeUserID(req.UserID),
	)

	result, err := h.quizService.SubmitAttempt(ctx, quizID, &req)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
