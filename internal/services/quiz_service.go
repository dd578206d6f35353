package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Vijayy-ai/EduTube/internal/config"
	"github.com/Vijayy-ai/EduTube/internal/models"
	"github.com/Vijayy-ai/EduTube/internal/observability"
	contextutils "github.com/Vijayy-ai/EduTube/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// QuizService runs the transcript-to-quiz pipeline and owns quiz persistence
type QuizService struct {
	db                *sql.DB
	cfg               *config.Config
	logger            *observability.Logger
	aiService         AIServiceInterface
	transcriptService *TranscriptService
	promptBuilder     *PromptBuilder
}

// NewQuizService creates a new quiz service
func NewQuizService(db *sql.DB, cfg *config.Config, logger *observability.Logger, aiService AIServiceInterface, transcriptService *TranscriptService) (*QuizService, error) {
	promptBuilder, err := NewPromptBuilder()
	if err != nil {
		return nil, err
	}

	return &QuizService{
		db:                db,
		cfg:               cfg,
		logger:            logger,
		aiService:         aiService,
		transcriptService: transcriptService,
		promptBuilder:     promptBuilder,
	}, nil
}

// tierResult is the explicit outcome of one generation stage
type tierResult struct {
	tier      models.Difficulty
	questions []models.GeneratedQuestion
	skipped   bool
	skipErr   error
}

// GenerateQuiz produces (or returns) the quiz for a course.
//
// Without forceNew an existing quiz is returned untouched. With forceNew the
// old quiz and its attempts are deleted and a new quiz inserted inside a
// single transaction. Generation-path failures never surface to the caller:
// when nothing usable comes back from the provider the deterministic fallback
// quiz is stored instead.
func (s *QuizService) GenerateQuiz(ctx context.Context, course *models.Course, req *models.GenerateQuizRequest) (result0 *models.Quiz, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "GenerateQuiz",
		observability.AttributeCourseID(course.ID),
		observability.AttributeDifficulty(req.Difficulty),
		observability.AttributeQuestionCount(req.QuestionCount),
		attribute.Bool("force_new", req.ForceNew),
	)
	defer observability.FinishSpan(span, &err)

	difficulty := models.Difficulty(req.Difficulty)
	if req.Difficulty == "" {
		difficulty = models.DifficultyAll
	}
	count := req.QuestionCount
	if count <= 0 {
		count = s.cfg.Quiz.DefaultQuestionCount
	}

	existing, err := s.GetQuizByCourseID(ctx, course.ID)
	if err != nil && !contextutils.IsError(err, contextutils.ErrQuizNotFound) {
		return nil, err
	}
	if existing != nil && !req.ForceNew {
		span.SetAttributes(attribute.String("generation.result", "existing"))
		return existing, nil
	}

	questions := s.generateQuestions(ctx, course, difficulty, count)
	if len(questions) == 0 {
		// Generation produced nothing usable: store the deterministic fallback
		span.SetAttributes(attribute.String("generation.result", "fallback"))
		s.logger.Warn(ctx, "Generation produced no usable questions, using fallback quiz", map[string]interface{}{
			"course_id": course.ID,
		})
		questions = FallbackQuestions(course.Title)
	} else {
		span.SetAttributes(attribute.String("generation.result", "generated"))
	}

	span.SetAttributes(attribute.Int("questions.stored", len(questions)))

	quiz, err := s.replaceQuiz(ctx, course, questions, req.ForceNew && existing != nil)
	if err != nil {
		return nil, err
	}

	return quiz, nil
}

// generateQuestions runs the full generation path: source text, model
// resolution, and the ordered tier stages. All provider-side failures are
// absorbed; an empty result signals the caller to fall back.
func (s *QuizService) generateQuestions(ctx context.Context, course *models.Course, difficulty models.Difficulty, count int) []models.GeneratedQuestion {
	source, err := s.transcriptService.BuildSourceText(ctx, course)
	if err != nil {
		s.logger.Warn(ctx, "Failed to build source text", map[string]interface{}{
			"course_id": course.ID,
			"error":     err.Error(),
		})
		return nil
	}

	model, err := s.aiService.ResolveModel(ctx)
	if err != nil {
		if contextutils.IsGenerationRecoverable(err) {
			s.logger.Warn(ctx, "Model resolution failed", map[string]interface{}{
				"course_id": course.ID,
				"error":     err.Error(),
			})
			return nil
		}
		s.logger.Error(ctx, "Unexpected model resolution error", err, map[string]interface{}{
			"course_id": course.ID,
		})
		return nil
	}

	results := s.runTierStages(ctx, course, source, model, difficulty, count)

	var questions []models.GeneratedQuestion
	for _, result := range results {
		questions = append(questions, result.questions...)
	}
	return questions
}

// runTierStages walks the difficulty tiers in order, requesting up to the
// per-tier quota each time until the requested count is reached. Each stage
// reports an explicit outcome; recoverable failures skip the stage.
func (s *QuizService) runTierStages(ctx context.Context, course *models.Course, source *SourceText, model string, difficulty models.Difficulty, count int) []tierResult {
	tiers := models.DifficultyTiers
	if difficulty != models.DifficultyAll {
		tiers = []models.Difficulty{difficulty}
	}

	results := make([]tierResult, 0, len(tiers))
	remaining := count

	for _, tier := range tiers {
		if remaining <= 0 {
			break
		}
		// Honor caller cancellation between stages
		if ctx.Err() != nil {
			results = append(results, tierResult{tier: tier, skipped: true, skipErr: ctx.Err()})
			break
		}

		quota := s.cfg.Quiz.MaxQuestionsPerTier
		if remaining < quota {
			quota = remaining
		}

		result := s.runTierStage(ctx, course, source, model, tier, quota)
		results = append(results, result)
		remaining -= len(result.questions)
	}

	return results
}

// runTierStage generates, parses, and validates questions for one tier
func (s *QuizService) runTierStage(ctx context.Context, course *models.Course, source *SourceText, model string, tier models.Difficulty, quota int) (result tierResult) {
	ctx, span := observability.TraceQuizFunction(ctx, "runTierStage",
		observability.AttributeCourseID(course.ID),
		observability.AttributeDifficulty(string(tier)),
		attribute.Int("tier.quota", quota),
	)
	var spanErr error
	defer func() {
		spanErr = result.skipErr
		observability.FinishSpan(span, &spanErr)
	}()

	result.tier = tier

	prompt, err := s.promptBuilder.BuildQuizPrompt(course.Title, source.Text, tier, quota)
	if err != nil {
		result.skipped = true
		result.skipErr = err
		return result
	}

	raw, err := s.aiService.GenerateContent(ctx, model, prompt)
	if err != nil {
		if !contextutils.IsGenerationRecoverable(err) {
			s.logger.Error(ctx, "Unexpected generation error", err, map[string]interface{}{
				"course_id":  course.ID,
				"difficulty": string(tier),
			})
		} else {
			s.logger.Warn(ctx, "Tier generation failed, skipping tier", map[string]interface{}{
				"course_id":  course.ID,
				"difficulty": string(tier),
				"error":      err.Error(),
			})
		}
		result.skipped = true
		result.skipErr = err
		return result
	}

	parsed := ParseQuizResponse(raw, tier)
	kept := make([]models.GeneratedQuestion, 0, len(parsed))
	for i := range parsed {
		if err := validateGeneratedQuestion(&parsed[i]); err != nil {
			s.logger.Warn(ctx, "Dropping malformed question", map[string]interface{}{
				"course_id":  course.ID,
				"difficulty": string(tier),
				"question":   parsed[i].Text,
				"error":      err.Error(),
			})
			continue
		}
		kept = append(kept, parsed[i])
		if len(kept) >= quota {
			break
		}
	}

	span.SetAttributes(
		attribute.Int("tier.parsed", len(parsed)),
		attribute.Int("tier.kept", len(kept)),
	)

	result.questions = kept
	return result
}

// validateGeneratedQuestion enforces the structural contract for storage:
// exactly four options and a marked correct answer.
func validateGeneratedQuestion(q *models.GeneratedQuestion) error {
	if q.Text == "" {
		return contextutils.WrapError(contextutils.ErrMalformedQuestion, "empty question text")
	}
	if len(q.Options) != config.OptionsPerQuestion {
		return contextutils.WrapErrorf(contextutils.ErrMalformedQuestion, "expected %d options, got %d", config.OptionsPerQuestion, len(q.Options))
	}
	if !q.HasCorrectOption() {
		return contextutils.WrapError(contextutils.ErrMalformedQuestion, "no correct option marked")
	}
	for _, opt := range q.Options {
		if opt == "" {
			return contextutils.WrapError(contextutils.ErrMalformedQuestion, "empty option text")
		}
	}
	return nil
}

// FallbackQuestions builds the deterministic quiz used when generation fails.
// All questions are basic tier and derived from the course title only.
func FallbackQuestions(title string) []models.GeneratedQuestion {
	specs := []struct {
		text    string
		options []string
		correct int
	}{
		{
			text:    fmt.Sprintf("What is the main topic of the course %q?", title),
			options: []string{title, "Cooking techniques", "Ancient history", "Car maintenance"},
			correct: 0,
		},
		{
			text:    "What is the best way to reinforce what you learned in this course?",
			options: []string{"Skip the material", "Practice and review the key concepts", "Only read the title", "Avoid taking notes"},
			correct: 1,
		},
		{
			text:    fmt.Sprintf("The course %q is delivered through which medium?", title),
			options: []string{"Printed textbook", "Radio broadcast", "Video lessons", "Live seminar"},
			correct: 2,
		},
		{
			text:    "When reviewing course material, what should you focus on first?",
			options: []string{"Unrelated subjects", "The advertisements", "The comment section", "The main concepts covered"},
			correct: 3,
		},
		{
			text:    "Which habit most improves retention of new material?",
			options: []string{"Regular self-testing", "Watching passively", "Multitasking while studying", "Cramming once"},
			correct: 0,
		},
	}

	questions := make([]models.GeneratedQuestion, 0, len(specs))
	for _, spec := range specs {
		questions = append(questions, models.GeneratedQuestion{
			Text:         spec.text,
			Options:      spec.options,
			CorrectIndex: spec.correct,
			Difficulty:   models.DifficultyBasic,
		})
	}
	return questions
}

// replaceQuiz persists the generated questions. Deleting the old quiz (and
// its attempts) and inserting the new one happen in the same transaction, so
// readers never observe a course without a quiz mid-regeneration. The unique
// constraint on quizzes.course_id serializes concurrent regeneration.
func (s *QuizService) replaceQuiz(ctx context.Context, course *models.Course, questions []models.GeneratedQuestion, deleteExisting bool) (result0 *models.Quiz, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "replaceQuiz",
		observability.AttributeCourseID(course.ID),
		attribute.Bool("delete_existing", deleteExisting),
		observability.AttributeQuestionCount(len(questions)),
	)
	defer observability.FinishSpan(span, &err)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to begin transaction")
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				s.logger.Error(ctx, "Failed to rollback transaction", rbErr)
			}
		}
	}()

	if deleteExisting {
		// Attempts first, then the quiz; questions and options cascade
		if _, err = tx.ExecContext(ctx, `DELETE FROM quiz_attempts WHERE quiz_id IN (SELECT id FROM quizzes WHERE course_id = $1)`, course.ID); err != nil {
			return nil, contextutils.WrapError(err, "failed to delete quiz attempts")
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM quizzes WHERE course_id = $1`, course.ID); err != nil {
			return nil, contextutils.WrapError(err, "failed to delete existing quiz")
		}
	}

	quiz := &models.Quiz{
		CourseID: course.ID,
		Title:    course.Title + " Quiz",
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO quizzes (course_id, title, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		quiz.CourseID, quiz.Title,
	).Scan(&quiz.ID, &quiz.CreatedAt, &quiz.UpdatedAt)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to insert quiz")
	}

	for _, gq := range questions {
		question := models.Question{
			QuizID:     quiz.ID,
			Text:       gq.Text,
			Difficulty: gq.Difficulty,
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO questions (quiz_id, text, difficulty, created_at)
			VALUES ($1, $2, $3, NOW())
			RETURNING id, created_at`,
			question.QuizID, question.Text, question.Difficulty,
		).Scan(&question.ID, &question.CreatedAt)
		if err != nil {
			return nil, contextutils.WrapError(err, "failed to insert question")
		}

		for i, optText := range gq.Options {
			option := models.Option{
				QuestionID: question.ID,
				Text:       optText,
				IsCorrect:  i == gq.CorrectIndex,
			}
			err = tx.QueryRowContext(ctx, `
				INSERT INTO options (question_id, text, is_correct)
				VALUES ($1, $2, $3)
				RETURNING id`,
				option.QuestionID, option.Text, option.IsCorrect,
			).Scan(&option.ID)
			if err != nil {
				return nil, contextutils.WrapError(err, "failed to insert option")
			}
			question.Options = append(question.Options, option)
		}

		quiz.Questions = append(quiz.Questions, question)
	}

	if err = tx.Commit(); err != nil {
		return nil, contextutils.WrapError(err, "failed to commit quiz transaction")
	}
	committed = true

	s.logger.Info(ctx, "Quiz stored", map[string]interface{}{
		"quiz_id":        quiz.ID,
		"course_id":      course.ID,
		"question_count": len(quiz.Questions),
	})

	return quiz, nil
}

// GetQuizByCourseID loads a course's quiz with its questions and options
func (s *QuizService) GetQuizByCourseID(ctx context.Context, courseID int) (result0 *models.Quiz, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "GetQuizByCourseID",
		observability.AttributeCourseID(courseID),
	)
	defer observability.FinishSpan(span, &err)

	var quiz models.Quiz
	err = s.db.QueryRowContext(ctx, `
		SELECT id, course_id, title, created_at, updated_at
		FROM quizzes
		WHERE course_id = $1`,
		courseID,
	).Scan(&quiz.ID, &quiz.CourseID, &quiz.Title, &quiz.CreatedAt, &quiz.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, contextutils.WrapErrorf(contextutils.ErrQuizNotFound, "no quiz for course %d", courseID)
	}
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get quiz")
	}

	if err = s.loadQuestions(ctx, &quiz); err != nil {
		return nil, err
	}

	return &quiz, nil
}

// GetQuiz loads a quiz by ID with its questions and options
func (s *QuizService) GetQuiz(ctx context.Context, quizID int) (result0 *models.Quiz, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "GetQuiz",
		observability.AttributeQuizID(quizID),
	)
	defer observability.FinishSpan(span, &err)

	var quiz models.Quiz
	err = s.db.QueryRowContext(ctx, `
		SELECT id, course_id, title, created_at, updated_at
		FROM quizzes
		WHERE id = $1`,
		quizID,
	).Scan(&quiz.ID, &quiz.CourseID, &quiz.Title, &quiz.CreatedAt, &quiz.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, contextutils.WrapErrorf(contextutils.ErrQuizNotFound, "quiz %d not found", quizID)
	}
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get quiz")
	}

	if err = s.loadQuestions(ctx, &quiz); err != nil {
		return nil, err
	}

	return &quiz, nil
}

// loadQuestions attaches questions and options to a quiz
func (s *QuizService) loadQuestions(ctx context.Context, quiz *models.Quiz) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, quiz_id, text, difficulty, created_at
		FROM questions
		WHERE quiz_id = $1
		ORDER BY id`,
		quiz.ID,
	)
	if err != nil {
		return contextutils.WrapError(err, "failed to load questions")
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close rows", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &q.Difficulty, &q.CreatedAt); err != nil {
			return contextutils.WrapError(err, "failed to scan question row")
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return contextutils.WrapError(err, "failed to iterate question rows")
	}

	for i := range questions {
		optRows, err := s.db.QueryContext(ctx, `
			SELECT id, question_id, text, is_correct
			FROM options
			WHERE question_id = $1
			ORDER BY id`,
			questions[i].ID,
		)
		if err != nil {
			return contextutils.WrapError(err, "failed to load options")
		}
		for optRows.Next() {
			var opt models.Option
			if err := optRows.Scan(&opt.ID, &opt.QuestionID, &opt.Text, &opt.IsCorrect); err != nil {
				if closeErr := optRows.Close(); closeErr != nil {
					s.logger.Warn(ctx, "Failed to close rows", map[string]interface{}{"error": closeErr.Error()})
				}
				return contextutils.WrapError(err, "failed to scan option row")
			}
			questions[i].Options = append(questions[i].Options, opt)
		}
		iterErr := optRows.Err()
		if closeErr := optRows.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close rows", map[string]interface{}{"error": closeErr.Error()})
		}
		if iterErr != nil {
			return contextutils.WrapError(iterErr, "failed to iterate option rows")
		}
	}

	quiz.Questions = questions
	return nil
}

// EvaluateAttempt scores answers against a quiz's questions. Answers that
// reference an unknown question or an option not belonging to that question
// are skipped. The score is the percentage of questions answered correctly;
// a quiz with zero questions scores 0 and never passes.
func EvaluateAttempt(questions []models.Question, answers []models.AttemptAnswer, passingScore int) models.AttemptResult {
	total := len(questions)
	if total == 0 {
		return models.AttemptResult{Score: 0, Passed: false, CorrectCount: 0, TotalQuestions: 0}
	}

	correctByQuestion := make(map[int]int, total)
	for _, q := range questions {
		for _, opt := range q.Options {
			if opt.IsCorrect {
				correctByQuestion[q.ID] = opt.ID
				break
			}
		}
	}

	optionOwner := make(map[int]int)
	for _, q := range questions {
		for _, opt := range q.Options {
			optionOwner[opt.ID] = q.ID
		}
	}

	correct := 0
	for _, answer := range answers {
		ownerID, ok := optionOwner[answer.OptionID]
		if !ok || ownerID != answer.QuestionID {
			// Invalid pair, skipped
			continue
		}
		if correctID, ok := correctByQuestion[answer.QuestionID]; ok && correctID == answer.OptionID {
			correct++
		}
	}

	score := float64(correct) / float64(total) * 100
	return models.AttemptResult{
		Score:          score,
		Passed:         score >= float64(passingScore),
		CorrectCount:   correct,
		TotalQuestions: total,
	}
}

// SubmitAttempt scores and persists a quiz attempt
func (s *QuizService) SubmitAttempt(ctx context.Context, quizID int, req *models.SubmitAttemptRequest) (result0 *models.AttemptResult, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "SubmitAttempt",
		observability.AttributeQuizID(quizID),
		observability.AttributeUserID(req.UserID),
	)
	defer observability.FinishSpan(span, &err)

	quiz, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	result := EvaluateAttempt(quiz.Questions, req.Answers, s.cfg.Quiz.PassingScore)

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to marshal answers")
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO quiz_attempts (user_id, quiz_id, score, passed, answers, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id`,
		req.UserID, quizID, result.Score, result.Passed, answersJSON,
	).Scan(&result.AttemptID)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to insert quiz attempt")
	}

	span.SetAttributes(
		attribute.Float64("attempt.score", result.Score),
		attribute.Bool("attempt.passed", result.Passed),
	)

	s.logger.Info(ctx, "Quiz attempt recorded", map[string]interface{}{
		"quiz_id":  quizID,
		"user_id":  req.UserID,
		"score":    result.Score,
		"passed":   result.Passed,
		"answers":  len(req.Answers),
		"attempts": result.TotalQuestions,
	})

	return &result, nil
}
