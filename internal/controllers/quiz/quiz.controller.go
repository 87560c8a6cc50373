package quizController

import (
	"context"
	"fmt"
	"math"
	"strings"

	"doacin/internal/logger"
	. "doacin/internal/models"
	"doacin/internal/repositories"
)

type QuizController struct {
	attemptRepo repositories.QuizAttemptRepository
	log         logger.Logger
}

func New(attemptRepo repositories.QuizAttemptRepository) *QuizController {
	return &QuizController{
		attemptRepo: attemptRepo,
		log:         logger.New("QuizController"),
	}
}

func (qc *QuizController) Questions() []QuizQuestion {
	out := make([]QuizQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, QuizQuestion{
			Question: q.text,
			Answers:  append([]string(nil), q.answers...),
		})
	}
	return out
}

// Submit scores one answer per question, in question order, and records
// the attempt.
func (qc *QuizController) Submit(ctx context.Context, userID string, req QuizAttemptRequest) (QuizResult, error) {
	log := qc.log.Function("Submit")

	if len(req.Answers) != len(questions) {
		return QuizResult{}, log.Err(
			"wrong number of answers",
			fmt.Errorf("%w: expected %d answers, got %d", ErrValidation, len(questions), len(req.Answers)),
			"userID", userID,
		)
	}

	result := Score(req.Answers)

	attempt := QuizAttempt{UserID: userID, Score: result.Score, Total: result.Total}
	if err := qc.attemptRepo.Create(ctx, &attempt); err != nil {
		return QuizResult{}, log.Err("failed to store quiz attempt", err, "userID", userID)
	}
	result.AttemptID = attempt.ID

	return result, nil
}

func (qc *QuizController) ListAttempts(ctx context.Context, userID string) ([]QuizAttempt, error) {
	attempts, err := qc.attemptRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, qc.log.Function("ListAttempts").Err("failed to list quiz attempts", err, "userID", userID)
	}
	return attempts, nil
}

// Score grades answers against the question set. Answers compare after
// trimming surrounding space; missing trailing answers count as wrong.
func Score(answers []string) QuizResult {
	result := QuizResult{
		Total:   len(questions),
		Results: make([]QuizAnswerResult, 0, len(questions)),
	}

	for i, q := range questions {
		var answer string
		if i < len(answers) {
			answer = strings.TrimSpace(answers[i])
		}

		correct := answer == q.correctAnswer
		if correct {
			result.Score++
		}

		result.Results = append(result.Results, QuizAnswerResult{
			Question:      q.text,
			Answer:        answer,
			Correct:       correct,
			CorrectAnswer: q.correctAnswer,
			Explanation:   q.explanation,
		})
	}

	result.Percentage = int(math.Round(float64(result.Score) / float64(result.Total) * 100))
	result.Feedback = Feedback(result.Percentage)
	return result
}

func Feedback(percentage int) QuizFeedback {
	switch {
	case percentage >= 80:
		return QuizFeedback{
			Title: "Excelente!",
			Text:  "Parabéns! Você conhece muito bem o assunto sobre doação de sangue.",
		}
	case percentage >= 50:
		return QuizFeedback{
			Title: "Bom trabalho!",
			Text:  "Você já sabe bastante, mas ainda há mais a aprender sobre esse gesto tão importante!",
		}
	default:
		return QuizFeedback{
			Title: "Continue aprendendo",
			Text:  "Boa tentativa! Aproveite para ler as explicações e aprender mais sobre doação de sangue.",
		}
	}
}
