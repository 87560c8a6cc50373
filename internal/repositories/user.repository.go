package repositories

import (
	"context"
	"errors"
	"strings"

	"doacin/internal/database"
	"doacin/internal/logger"
	. "doacin/internal/models"
	"doacin/internal/services"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ExistsByEmailOrNationalID(ctx context.Context, email, nationalID string) (bool, error)
	Update(ctx context.Context, user *User) error
	UpdateExternalCapibas(ctx context.Context, userID string, balance int) error
}

type userRepository struct {
	db  database.DB
	log logger.Logger
}

func New(db database.DB) UserRepository {
	return &userRepository{
		db:  db,
		log: logger.New("userRepository"),
	}
}

func (r *userRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *userRepository) Create(ctx context.Context, user *User) error {
	log := r.log.Function("Create")

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := r.getDB(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return log.Err("user already registered", ErrConflict, "email", user.Email)
		}
		return log.Err("failed to create user", err, "email", user.Email)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (User, error) {
	log := r.log.Function("GetByID")

	var user User
	if err := r.getDB(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, log.Err("user not found", ErrNotFound, "userID", id)
		}
		return User{}, log.Err("failed to get user by id", err, "userID", id)
	}

	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	log := r.log.Function("GetByEmail")

	email = strings.ToLower(strings.TrimSpace(email))

	var user User
	if err := r.getDB(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, log.Err("user not found", ErrNotFound, "email", email)
		}
		return User{}, log.Err("failed to get user by email", err, "email", email)
	}

	return user, nil
}

func (r *userRepository) ExistsByEmailOrNationalID(
	ctx context.Context,
	email, nationalID string,
) (bool, error) {
	log := r.log.Function("ExistsByEmailOrNationalID")

	var count int64
	err := r.getDB(ctx).
		Model(&User{}).
		Where("email = ? OR national_id = ?", strings.ToLower(strings.TrimSpace(email)), nationalID).
		Count(&count).Error
	if err != nil {
		return false, log.Err("failed to check existing user", err, "email", email)
	}

	return count > 0, nil
}

func (r *userRepository) Update(ctx context.Context, user *User) error {
	log := r.log.Function("Update")

	if err := r.getDB(ctx).Save(user).Error; err != nil {
		return log.Err("failed to update user", err, "userID", user.ID)
	}

	return nil
}

func (r *userRepository) UpdateExternalCapibas(ctx context.Context, userID string, balance int) error {
	log := r.log.Function("UpdateExternalCapibas")

	result := r.getDB(ctx).
		Model(&User{BaseUUIDModel: BaseUUIDModel{ID: userID}}).
		Update("external_capibas", balance)
	if result.Error != nil {
		return log.Err("failed to update external capibas", result.Error, "userID", userID)
	}
	if result.RowsAffected == 0 {
		return log.Err("user not found", ErrNotFound, "userID", userID)
	}

	return nil
}

// isUniqueViolation catches drivers that do not translate errors into
// gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
