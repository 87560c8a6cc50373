package repositories

import (
	"context"

	"doacin/internal/database"
	"doacin/internal/logger"
	. "doacin/internal/models"
	"doacin/internal/services"

	"gorm.io/gorm"
)

type QuizAttemptRepository interface {
	Create(ctx context.Context, attempt *QuizAttempt) error
	ListByUser(ctx context.Context, userID string) ([]QuizAttempt, error)
}

type quizAttemptRepository struct {
	db  database.DB
	log logger.Logger
}

func NewQuizAttempt(db database.DB) QuizAttemptRepository {
	return &quizAttemptRepository{
		db:  db,
		log: logger.New("quizAttemptRepository"),
	}
}

func (r *quizAttemptRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *quizAttemptRepository) Create(ctx context.Context, attempt *QuizAttempt) error {
	if err := r.getDB(ctx).Create(attempt).Error; err != nil {
		return r.log.Function("Create").Err("failed to create quiz attempt", err, "userID", attempt.UserID)
	}
	return nil
}

func (r *quizAttemptRepository) ListByUser(ctx context.Context, userID string) ([]QuizAttempt, error) {
	var attempts []QuizAttempt
	err := r.getDB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, r.log.Function("ListByUser").Err("failed to list quiz attempts", err, "userID", userID)
	}
	return attempts, nil
}
