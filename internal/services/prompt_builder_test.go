package services

import (
	"testing"

	"github.com/Vijayy-ai/EduTube/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptBuilder(t *testing.T) {
	builder, err := NewPromptBuilder()
	require.NoError(t, err)

	t.Run("prompt carries the output contract", func(t *testing.T) {
		prompt, err := builder.BuildQuizPrompt("Go Basics", "goroutines and channels", models.DifficultyBasic, 5)
		require.NoError(t, err)

		assert.Contains(t, prompt, "exactly 5 multiple-choice questions")
		assert.Contains(t, prompt, "basic difficulty")
		assert.Contains(t, prompt, "Go Basics")
		assert.Contains(t, prompt, "goroutines and channels")
		assert.Contains(t, prompt, "labeled A) B) C) D)")
		assert.Contains(t, prompt, "(correct)")
	})

	t.Run("difficulty descriptor varies per tier", func(t *testing.T) {
		basic, err := builder.BuildQuizPrompt("T", "text", models.DifficultyBasic, 3)
		require.NoError(t, err)
		advanced, err := builder.BuildQuizPrompt("T", "text", models.DifficultyAdvanced, 3)
		require.NoError(t, err)

		assert.Contains(t, basic, "recall")
		assert.Contains(t, advanced, "analysis")
		assert.NotEqual(t, basic, advanced)
	})

	t.Run("example output parses under the quiz parser", func(t *testing.T) {
		prompt, err := builder.BuildQuizPrompt("T", "text", models.DifficultyBasic, 1)
		require.NoError(t, err)

		// The embedded example must satisfy the parser's own grammar
		questions := ParseQuizResponse(prompt, models.DifficultyBasic)
		require.NotEmpty(t, questions)
		assert.Equal(t, "What color is the sky?", questions[0].Text)
		assert.Equal(t, 1, questions[0].CorrectIndex)
	})

	t.Run("non positive count is rejected", func(t *testing.T) {
		_, err := builder.BuildQuizPrompt("T", "text", models.DifficultyBasic, 0)
		assert.Error(t, err)
	})
}
