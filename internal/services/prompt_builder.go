package services

import (
	"embed"
	"strings"
	"text/template"

	"github.com/Vijayy-ai/EduTube/internal/models"
	contextutils "github.com/Vijayy-ai/EduTube/internal/utils"
)

//go:embed templates/*.tmpl
var promptTemplatesFS embed.FS

// QuizPromptTemplate is the per-tier generation prompt
const QuizPromptTemplate = "quiz_prompt.tmpl"

// PromptData holds data for rendering the quiz generation prompt
type PromptData struct {
	Title                 string
	SourceText            string
	Difficulty            models.Difficulty
	DifficultyDescription string
	Count                 int
}

// difficultyDescriptions steer the model per tier
var difficultyDescriptions = map[models.Difficulty]string{
	models.DifficultyBasic:        "Basic questions test recall of facts stated directly in the content.",
	models.DifficultyIntermediate: "Intermediate questions test comprehension and application of the ideas in the content.",
	models.DifficultyAdvanced:     "Advanced questions test analysis and synthesis across the content.",
}

// PromptBuilder renders generation prompts from embedded templates
type PromptBuilder struct {
	templates *template.Template
}

// NewPromptBuilder parses the embedded prompt templates
func NewPromptBuilder() (*PromptBuilder, error) {
	tmpl, err := template.ParseFS(promptTemplatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to parse prompt templates")
	}
	return &PromptBuilder{templates: tmpl}, nil
}

// BuildQuizPrompt renders the generation prompt for one difficulty tier
func (b *PromptBuilder) BuildQuizPrompt(title, sourceText string, difficulty models.Difficulty, count int) (string, error) {
	if count <= 0 {
		return "", contextutils.WrapError(contextutils.ErrInvalidInput, "question count must be positive")
	}

	data := PromptData{
		Title:                 title,
		SourceText:            sourceText,
		Difficulty:            difficulty,
		DifficultyDescription: difficultyDescriptions[difficulty],
		Count:                 count,
	}

	var sb strings.Builder
	if err := b.templates.ExecuteTemplate(&sb, QuizPromptTemplate, data); err != nil {
		return "", contextutils.WrapError(err, "failed to render quiz prompt")
	}

	return sb.String(), nil
}
