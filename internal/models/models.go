// Package models defines data structures used throughout the EduTube backend.
package models

import (
	"database/sql"
	"time"
)

// Difficulty identifies a question difficulty tier
type Difficulty string

// Difficulty tiers, generated in this order
const (
	DifficultyBasic        Difficulty = "basic"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"

	// DifficultyAll requests generation across every tier
	DifficultyAll Difficulty = "all"
)

// DifficultyTiers is the fixed generation order for a mixed-difficulty quiz
var DifficultyTiers = []Difficulty{DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced}

// IsValid reports whether d names a single tier
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Course represents a learning unit backed by a YouTube video or playlist
type Course struct {
	ID          int            `json:"id" yaml:"id"`
	YouTubeID   string         `json:"youtube_id" yaml:"youtube_id"`
	IsPlaylist  bool           `json:"is_playlist" yaml:"is_playlist"`
	Title       string         `json:"title" yaml:"title"`
	Description sql.NullString `json:"description" yaml:"description"`
	CreatedAt   time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" yaml:"updated_at"`
}

// DescriptionText returns the course description or empty string
func (c *Course) DescriptionText() string {
	if c.Description.Valid {
		return c.Description.String
	}
	return ""
}

// Quiz represents a generated quiz for a course. A course has at most one quiz.
type Quiz struct {
	ID        int        `json:"id" yaml:"id"`
	CourseID  int        `json:"course_id" yaml:"course_id"`
	Title     string     `json:"title" yaml:"title"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" yaml:"updated_at"`
	Questions []Question `json:"questions,omitempty" yaml:"questions,omitempty"`
}

// Question represents a stored multiple-choice question
type Question struct {
	ID         int        `json:"id" yaml:"id"`
	QuizID     int        `json:"quiz_id" yaml:"quiz_id"`
	Text       string     `json:"text" yaml:"text"`
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`
	CreatedAt  time.Time  `json:"created_at" yaml:"created_at"`
	Options    []Option   `json:"options,omitempty" yaml:"options,omitempty"`
}

// Option represents an answer option. Correctness is write-only: it is never
// serialized to API clients.
type Option struct {
	ID         int    `json:"id" yaml:"id"`
	QuestionID int    `json:"question_id" yaml:"question_id"`
	Text       string `json:"text" yaml:"text"`
	IsCorrect  bool   `json:"-" yaml:"is_correct"`
}

// QuizAttempt represents a scored submission against a quiz
type QuizAttempt struct {
	ID        int             `json:"id" yaml:"id"`
	UserID    int             `json:"user_id" yaml:"user_id"`
	QuizID    int             `json:"quiz_id" yaml:"quiz_id"`
	Score     float64         `json:"score" yaml:"score"`
	Passed    bool            `json:"passed" yaml:"passed"`
	Answers   []AttemptAnswer `json:"answers" yaml:"answers"`
	CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
}

// AttemptAnswer is a single selected option for a question, stored as JSONB
type AttemptAnswer struct {
	QuestionID int `json:"question_id" yaml:"question_id"`
	OptionID   int `json:"option_id" yaml:"option_id"`
}

// AttemptResult is the scoring outcome returned to the caller
type AttemptResult struct {
	AttemptID      int     `json:"attempt_id,omitempty"`
	Score          float64 `json:"score"`
	Passed         bool    `json:"passed"`
	CorrectCount   int     `json:"correct_count"`
	TotalQuestions int     `json:"total_questions"`
}

// GeneratedQuestion is a parsed, not-yet-persisted question produced by the
// response parser. Options are positional (A-D); CorrectIndex is -1 when the
// model emitted no correct marker.
type GeneratedQuestion struct {
	Text         string
	Options      []string
	CorrectIndex int
	Difficulty   Difficulty
}

// HasCorrectOption reports whether the parser saw a (correct) marker
func (q *GeneratedQuestion) HasCorrectOption() bool {
	return q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options)
}

// CourseMetadata is the title/description pair fetched from YouTube,
// used to seed prompts when no transcript text is available.
type CourseMetadata struct {
	Title       string
	Description string
}
