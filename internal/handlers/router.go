package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/Vijayy-ai/EduTube/internal/config"
	"github.com/Vijayy-ai/EduTube/internal/middleware"
	"github.com/Vijayy-ai/EduTube/internal/observability"
	"github.com/Vijayy-ai/EduTube/internal/services"
	"github.com/Vijayy-ai/EduTube/internal/version"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with middleware and all API routes
func NewRouter(cfg *config.Config, db *sql.DB, logger *observability.Logger, quizService *services.QuizService, courseService *services.CourseService) *gin.Engine {
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(observability.GinMiddlewareWithErrorHandling(cfg.OpenTelemetry.ServiceName))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	router.Use(secure.New(secure.Config{
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: config.DefaultCSP,
	}))

	quizHandler := NewQuizHandler(quizService, courseService, cfg, logger)
	courseHandler := NewCourseHandler(courseService, logger)

	router.GET("/health", healthHandler(db))
	router.GET("/version", versionHandler())

	v1 := router.Group("/v1")
	{
		v1.GET("/courses", courseHandler.ListCourses)
		v1.POST("/courses", courseHandler.CreateCourse)
		v1.POST("/courses/:id/quiz/generate", quizHandler.GenerateQuiz)
		v1.GET("/courses/:id/quiz", quizHandler.GetQuiz)
		v1.POST("/quizzes/:id/attempts", quizHandler.SubmitAttempt)
	}

	return router
}

// healthHandler reports liveness and database reachability
func healthHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK

		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), config.DatabasePingTimeout)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{"status": status})
	}
}

// versionHandler exposes build-time version information
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    version.Version,
			"commit":     version.Commit,
			"build_time": version.BuildTime,
		})
	}
}
