package services

import (
	"context"
	"database/sql"

	"github.com/Vijayy-ai/EduTube/internal/models"
	"github.com/Vijayy-ai/EduTube/internal/observability"
	contextutils "github.com/Vijayy-ai/EduTube/internal/utils"
)

// CourseService manages the course registry
type CourseService struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewCourseService creates a new course service
func NewCourseService(db *sql.DB, logger *observability.Logger) *CourseService {
	return &CourseService{
		db:     db,
		logger: logger,
	}
}

// CreateCourse registers a new learning unit
func (s *CourseService) CreateCourse(ctx context.Context, req *models.CreateCourseRequest) (result0 *models.Course, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "CreateCourse")
	defer observability.FinishSpan(span, &err)

	course := &models.Course{
		YouTubeID:  req.YouTubeID,
		IsPlaylist: req.IsPlaylist,
		Title:      req.Title,
	}
	if req.Description != "" {
		course.Description = sql.NullString{String: req.Description, Valid: true}
	}

	query := `
		INSERT INTO courses (youtube_id, is_playlist, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err = s.db.QueryRowContext(ctx, query,
		course.YouTubeID, course.IsPlaylist, course.Title, course.Description,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to create course")
	}

	s.logger.Info(ctx, "Course created", map[string]interface{}{
		"course_id":  course.ID,
		"youtube_id": course.YouTubeID,
	})

	return course, nil
}

// GetCourse returns a course by ID
func (s *CourseService) GetCourse(ctx context.Context, id int) (result0 *models.Course, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "GetCourse",
		observability.AttributeCourseID(id),
	)
	defer observability.FinishSpan(span, &err)

	query := `
		SELECT id, youtube_id, is_playlist, title, description, created_at, updated_at
		FROM courses
		WHERE id = $1`

	var course models.Course
	err = s.db.QueryRowContext(ctx, query, id).Scan(
		&course.ID, &course.YouTubeID, &course.IsPlaylist,
		&course.Title, &course.Description, &course.CreatedAt, &course.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, contextutils.WrapErrorf(contextutils.ErrCourseNotFound, "course %d not found", id)
	}
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get course")
	}

	return &course, nil
}

// ListCourses returns all registered courses, newest first
func (s *CourseService) ListCourses(ctx context.Context) (result0 []models.Course, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "ListCourses")
	defer observability.FinishSpan(span, &err)

	query := `
		SELECT id, youtube_id, is_playlist, title, description, created_at, updated_at
		FROM courses
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to list courses")
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close rows", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	courses := []models.Course{}
	for rows.Next() {
		var course models.Course
		if err := rows.Scan(
			&course.ID, &course.YouTubeID, &course.IsPlaylist,
			&course.Title, &course.Description, &course.CreatedAt, &course.UpdatedAt,
		); err != nil {
			return nil, contextutils.WrapError(err, "failed to scan course row")
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, contextutils.WrapError(err, "failed to iterate course rows")
	}

	return courses, nil
}
