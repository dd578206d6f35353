package models

// GenerateQuizRequest is the body of POST /v1/courses/:id/quiz/generate
type GenerateQuizRequest struct {
	Difficulty    string `json:"difficulty" binding:"omitempty,oneof=all basic intermediate advanced"`
	QuestionCount int    `json:"question_count" binding:"omitempty,gt=0,lte=50"`
	ForceNew      bool   `json:"force_new"`
}

// SubmitAttemptRequest is the body of POST /v1/quizzes/:id/attempts
type SubmitAttemptRequest struct {
	UserID  int             `json:"user_id" binding:"required,gt=0"`
	Answers []AttemptAnswer `json:"answers" binding:"required,dive"`
}

// CreateCourseRequest is the body of POST /v1/courses
type CreateCourseRequest struct {
	YouTubeID   string `json:"youtube_id" binding:"required"`
	IsPlaylist  bool   `json:"is_playlist"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}
