package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Vijayy-ai/EduTube/internal/models"
	"github.com/Vijayy-ai/EduTube/internal/observability"
	"github.com/Vijayy-ai/EduTube/internal/services"
	contextutils "github.com/Vijayy-ai/EduTube/internal/utils"

	"github.com/spf13/cobra"
)

// QuizCommands returns the quiz command group
func QuizCommands(quizService *services.QuizService, courseService *services.CourseService, logger *observability.Logger) *cobra.Command {
	quizCmd := &cobra.Command{
		Use:   "quiz",
		Short: "Quiz operations",
	}

	var difficulty string
	var questionCount int
	var forceNew bool

	generateCmd := &cobra.Command{
		Use:   "generate <course-id>",
		Short: "Run the generation pipeline for a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			courseID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid course id %q: %w", args[0], err)
			}

			course, err := courseService.GetCourse(ctx, courseID)
			if err != nil {
				return err
			}

			req := &models.GenerateQuizRequest{
				Difficulty:    difficulty,
				QuestionCount: questionCount,
				ForceNew:      forceNew,
			}
			if err := contextutils.ValidateStruct(req); err != nil {
				return err
			}

			quiz, err := quizService.GenerateQuiz(ctx, course, req)
			if err != nil {
				logger.Error(ctx, "Quiz generation failed", err, map[string]interface{}{"course_id": courseID})
				return err
			}

			fmt.Printf("Quiz %d stored for course %d with %d questions.\n", quiz.ID, courseID, len(quiz.Questions))
			return nil
		},
	}
	generateCmd.Flags().StringVar(&difficulty, "difficulty", "all", "difficulty tier: all, basic, intermediate, advanced")
	generateCmd.Flags().IntVar(&questionCount, "count", 0, "number of questions (0 = default)")
	generateCmd.Flags().BoolVar(&forceNew, "force-new", false, "delete any existing quiz and attempts before generating")

	showCmd := &cobra.Command{
		Use:   "show <course-id>",
		Short: "Print a course's quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			courseID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid course id %q: %w", args[0], err)
			}

			quiz, err := quizService.GetQuizByCourseID(ctx, courseID)
			if err != nil {
				return err
			}

			fmt.Printf("Quiz %d: %s\n", quiz.ID, quiz.Title)
			for i, q := range quiz.Questions {
				fmt.Printf("%d. [%s] %s\n", i+1, q.Difficulty, q.Text)
				for j, opt := range q.Options {
					marker := " "
					if opt.IsCorrect {
						marker = "*"
					}
					fmt.Printf("   %c) %s %s\n", 'A'+j, opt.Text, marker)
				}
			}
			return nil
		},
	}

	quizCmd.AddCommand(generateCmd)
	quizCmd.AddCommand(showCmd)
	return quizCmd
}
