package config

import "time"

// Timeout constants
const (
	// HTTP timeouts
	DefaultHTTPTimeout     = 60 * time.Second
	YouTubeRequestTimeout  = 15 * time.Second
	GenerationTimeout      = 2 * time.Minute
	ServerShutdownTimeout  = 30 * time.Second
	DatabasePingTimeout    = 5 * time.Second
	TestTimeout            = 100 * time.Millisecond
	GenerationTestTimeout  = 1 * time.Second

	// Database timeouts
	DatabaseConnMaxLifetime = 5 * time.Minute
)

// External endpoint defaults
const (
	DefaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"
	DefaultTimedTextURL   = "https://www.youtube.com/api/timedtext"
	DefaultGeminiBaseURL  = "https://generativelanguage.googleapis.com/v1beta"
)

// Pipeline defaults
const (
	// DefaultMaxPlaylistItems caps how many playlist videos contribute transcript text
	DefaultMaxPlaylistItems = 5

	// DefaultMaxTranscriptChars caps combined transcript length sent to the model
	DefaultMaxTranscriptChars = 10000

	DefaultQuestionCount       = 10
	DefaultMaxQuestionsPerTier = 5

	// DefaultPassingScore is the percentage threshold for a passing attempt
	DefaultPassingScore = 70

	// FallbackQuestionCount is the fixed size of a deterministic fallback quiz
	FallbackQuestionCount = 5

	// OptionsPerQuestion is the required option count for a stored question
	OptionsPerQuestion = 4
)

// Generation defaults
const (
	DefaultFallbackModel   = "gemini-1.5-pro"
	DefaultTemperature     = 0.7
	DefaultTopP            = 1.0
	DefaultTopK            = 32
	DefaultMaxOutputTokens = 8192
)

// Security configuration constants
const (
	// Content Security Policy
	DefaultCSP = "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; img-src 'self' data:; media-src 'self' blob: data:;"
)
