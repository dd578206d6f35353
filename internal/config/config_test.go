package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewConfig(t *testing.T) {
	t.Run("loads from file named by env var", func(t *testing.T) {
		path := writeConfigFile(t, `
server:
  port: "9090"
  debug: true
quiz:
  default_question_count: 7
  passing_score: 80
gemini:
  api_key: "from-file"
`)
		t.Setenv("EDUTUBE_CONFIG_FILE", path)

		cfg, err := NewConfig()
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Server.Port)
		assert.True(t, cfg.Server.Debug)
		assert.Equal(t, 7, cfg.Quiz.DefaultQuestionCount)
		assert.Equal(t, 80, cfg.Quiz.PassingScore)
		assert.Equal(t, "from-file", cfg.Gemini.APIKey)
	})

	t.Run("environment overrides file values", func(t *testing.T) {
		path := writeConfigFile(t, `
server:
  port: "9090"
gemini:
  api_key: "from-file"
`)
		t.Setenv("EDUTUBE_CONFIG_FILE", path)
		t.Setenv("SERVER_PORT", "7070")
		t.Setenv("GEMINI_API_KEY", "from-env")
		t.Setenv("QUIZ_MAX_QUESTIONS_PER_TIER", "3")
		t.Setenv("YOUTUBE_MAX_PLAYLIST_ITEMS", "2")

		cfg, err := NewConfig()
		require.NoError(t, err)
		assert.Equal(t, "7070", cfg.Server.Port)
		assert.Equal(t, "from-env", cfg.Gemini.APIKey)
		assert.Equal(t, 3, cfg.Quiz.MaxQuestionsPerTier)
		assert.Equal(t, 2, cfg.YouTube.MaxPlaylistItems)
	})

	t.Run("slice values split on comma", func(t *testing.T) {
		path := writeConfigFile(t, "server:\n  port: \"8080\"\n")
		t.Setenv("EDUTUBE_CONFIG_FILE", path)
		t.Setenv("GEMINI_PREFERRED_MODELS", "model-a,model-b")
		t.Setenv("SERVER_CORS_ORIGINS", "https://a.example,https://b.example")

		cfg, err := NewConfig()
		require.NoError(t, err)
		assert.Equal(t, []string{"model-a", "model-b"}, cfg.Gemini.PreferredModels)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		t.Setenv("EDUTUBE_CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

		_, err := NewConfig()
		assert.Error(t, err)
	})
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DefaultYouTubeBaseURL, cfg.YouTube.BaseURL)
	assert.Equal(t, DefaultTimedTextURL, cfg.YouTube.TimedTextURL)
	assert.Equal(t, DefaultMaxPlaylistItems, cfg.YouTube.MaxPlaylistItems)
	assert.Equal(t, DefaultGeminiBaseURL, cfg.Gemini.BaseURL)
	assert.NotEmpty(t, cfg.Gemini.PreferredModels)
	assert.Equal(t, DefaultFallbackModel, cfg.Gemini.FallbackModel)
	assert.Equal(t, DefaultTemperature, cfg.Gemini.Temperature)
	assert.Equal(t, DefaultTopP, cfg.Gemini.TopP)
	assert.Equal(t, DefaultTopK, cfg.Gemini.TopK)
	assert.Equal(t, DefaultMaxOutputTokens, cfg.Gemini.MaxOutputTokens)
	assert.Equal(t, DefaultQuestionCount, cfg.Quiz.DefaultQuestionCount)
	assert.Equal(t, DefaultMaxQuestionsPerTier, cfg.Quiz.MaxQuestionsPerTier)
	assert.Equal(t, DefaultMaxTranscriptChars, cfg.Quiz.MaxTranscriptChars)
	assert.Equal(t, DefaultPassingScore, cfg.Quiz.PassingScore)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{}
	cfg.Quiz.PassingScore = 90
	cfg.Gemini.FallbackModel = "custom-model"
	cfg.applyDefaults()

	assert.Equal(t, 90, cfg.Quiz.PassingScore)
	assert.Equal(t, "custom-model", cfg.Gemini.FallbackModel)
}
