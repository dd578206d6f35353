package services

import (
	"testing"

	"github.com/Vijayy-ai/EduTube/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeLine(t *testing.T) {
	t.Run("question header", func(t *testing.T) {
		token := tokenizeLine("1. What color is the sky?")
		assert.Equal(t, tokenQuestion, token.kind)
		assert.Equal(t, "What color is the sky?", token.text)
	})

	t.Run("two digit question header", func(t *testing.T) {
		token := tokenizeLine("12. Second question")
		assert.Equal(t, tokenQuestion, token.kind)
		assert.Equal(t, "Second question", token.text)
	})

	t.Run("digit without early dot is noise", func(t *testing.T) {
		token := tokenizeLine("1000 meters is a kilometer.")
		assert.Equal(t, tokenNoise, token.kind)
	})

	t.Run("option with paren", func(t *testing.T) {
		token := tokenizeLine("A) Green")
		assert.Equal(t, tokenOption, token.kind)
		assert.Equal(t, "Green", token.text)
		assert.False(t, token.correct)
	})

	t.Run("option with dot separator", func(t *testing.T) {
		token := tokenizeLine("B. Blue")
		assert.Equal(t, tokenOption, token.kind)
		assert.Equal(t, "Blue", token.text)
	})

	t.Run("correct marker is stripped", func(t *testing.T) {
		token := tokenizeLine("B) Blue (correct)")
		assert.Equal(t, tokenOption, token.kind)
		assert.Equal(t, "Blue", token.text)
		assert.True(t, token.correct)
	})

	t.Run("marker is case insensitive", func(t *testing.T) {
		token := tokenizeLine("C) Red (CORRECT)")
		assert.True(t, token.correct)
		assert.Equal(t, "Red", token.text)
	})

	t.Run("repeated markers are all stripped", func(t *testing.T) {
		token := tokenizeLine("A) ans (correct) (CORRECT)")
		assert.True(t, token.correct)
		assert.Equal(t, "ans", token.text)
	})

	t.Run("marker mid text leaves no doubled space", func(t *testing.T) {
		token := tokenizeLine("B) the (correct) answer")
		assert.True(t, token.correct)
		assert.Equal(t, "the answer", token.text)
	})

	t.Run("lowercase label is noise", func(t *testing.T) {
		token := tokenizeLine("a) green")
		assert.Equal(t, tokenNoise, token.kind)
	})

	t.Run("label beyond D is noise", func(t *testing.T) {
		token := tokenizeLine("E) Extra")
		assert.Equal(t, tokenNoise, token.kind)
	})

	t.Run("empty line is noise", func(t *testing.T) {
		token := tokenizeLine("   ")
		assert.Equal(t, tokenNoise, token.kind)
	})
}

func TestParseQuizResponse(t *testing.T) {
	t.Run("single well formed question", func(t *testing.T) {
		raw := "1. What color is the sky?\n" +
			"A) Green\n" +
			"B) Blue (correct)\n" +
			"C) Red\n" +
			"D) Yellow\n"

		questions := ParseQuizResponse(raw, models.DifficultyBasic)
		require.Len(t, questions, 1)

		q := questions[0]
		assert.Equal(t, "What color is the sky?", q.Text)
		assert.Equal(t, []string{"Green", "Blue", "Red", "Yellow"}, q.Options)
		assert.Equal(t, 1, q.CorrectIndex)
		assert.Equal(t, models.DifficultyBasic, q.Difficulty)
	})

	t.Run("multiple questions with noise between", func(t *testing.T) {
		raw := "Here are your questions:\n" +
			"1. First?\n" +
			"A) a1 (correct)\n" +
			"B) b1\n" +
			"C) c1\n" +
			"D) d1\n" +
			"\n" +
			"Some commentary the model added.\n" +
			"2. Second?\n" +
			"A) a2\n" +
			"B) b2\n" +
			"C) c2 (correct)\n" +
			"D) d2\n"

		questions := ParseQuizResponse(raw, models.DifficultyAdvanced)
		require.Len(t, questions, 2)
		assert.Equal(t, "First?", questions[0].Text)
		assert.Equal(t, 0, questions[0].CorrectIndex)
		assert.Equal(t, "Second?", questions[1].Text)
		assert.Equal(t, 2, questions[1].CorrectIndex)
	})

	t.Run("no marker yields negative correct index", func(t *testing.T) {
		raw := "1. Unmarked?\nA) one\nB) two\nC) three\nD) four\n"

		questions := ParseQuizResponse(raw, models.DifficultyBasic)
		require.Len(t, questions, 1)
		assert.Equal(t, -1, questions[0].CorrectIndex)
		assert.False(t, questions[0].HasCorrectOption())
	})

	t.Run("extra options are kept for the assembler to reject", func(t *testing.T) {
		raw := "1. Overfull?\nA) one\nB) two (correct)\nC) three\nD) four\nD) five\n"

		questions := ParseQuizResponse(raw, models.DifficultyBasic)
		require.Len(t, questions, 1)
		// The parser does not enforce the four-option contract
		assert.Len(t, questions[0].Options, 5)
		assert.Error(t, validateGeneratedQuestion(&questions[0]))
	})

	t.Run("options before any header are dropped", func(t *testing.T) {
		raw := "A) stray\n1. Real?\nA) one (correct)\nB) two\nC) three\nD) four\n"

		questions := ParseQuizResponse(raw, models.DifficultyBasic)
		require.Len(t, questions, 1)
		assert.Equal(t, "one", questions[0].Options[0])
		assert.Equal(t, 0, questions[0].CorrectIndex)
	})

	t.Run("header without options is not emitted", func(t *testing.T) {
		raw := "1. Lonely question\n2. Followup?\nA) yes (correct)\nB) no\nC) maybe\nD) later\n"

		questions := ParseQuizResponse(raw, models.DifficultyBasic)
		require.Len(t, questions, 1)
		assert.Equal(t, "Followup?", questions[0].Text)
	})

	t.Run("last marker wins", func(t *testing.T) {
		raw := "1. Two markers?\nA) one (correct)\nB) two (correct)\nC) three\nD) four\n"

		questions := ParseQuizResponse(raw, models.DifficultyBasic)
		require.Len(t, questions, 1)
		assert.Equal(t, 1, questions[0].CorrectIndex)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, ParseQuizResponse("", models.DifficultyBasic))
	})
}
