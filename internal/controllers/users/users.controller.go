package userController

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"doacin/internal/conecta"
	"doacin/internal/eligibility"
	"doacin/internal/logger"
	. "doacin/internal/models"
	"doacin/internal/repositories"
	"doacin/internal/services"
	"doacin/internal/utils"
	"doacin/internal/websockets"
)

type BalanceReader interface {
	Self(ctx context.Context, accessToken string) (int, error)
}

type Notifier interface {
	Notify(userID, eventType string, data any)
}

type UserController struct {
	userRepo repositories.UserRepository
	conecta  BalanceReader
	cache    *services.CacheInvalidationService
	notifier Notifier
	log      logger.Logger
}

func New(
	userRepo repositories.UserRepository,
	conecta BalanceReader,
	cache *services.CacheInvalidationService,
	notifier Notifier,
) *UserController {
	return &UserController{
		userRepo: userRepo,
		conecta:  conecta,
		cache:    cache,
		notifier: notifier,
		log:      logger.New("UserController"),
	}
}

func (uc *UserController) GetProfile(ctx context.Context, userID string) (User, error) {
	log := uc.log.Function("GetProfile")

	if userID == "" {
		return User{}, log.Error("invalid user ID", "userID", userID)
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return User{}, log.Err("failed to get user", err, "userID", userID)
	}

	return user, nil
}

// UpdateProfile applies the non-nil fields of req. An empty string clears
// phone, birth date and blood type.
func (uc *UserController) UpdateProfile(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (User, error) {
	log := uc.log.Function("UpdateProfile")

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return User{}, log.Err("failed to get user", err, "userID", userID)
	}

	if err := applyProfile(&user, req); err != nil {
		return User{}, log.Err("invalid profile update", err, "userID", userID)
	}

	if err := uc.userRepo.Update(ctx, &user); err != nil {
		return User{}, log.Err("failed to update user", err, "userID", userID)
	}

	uc.cache.InvalidateDashboard(ctx, userID)
	return user, nil
}

func applyProfile(user *User, req UpdateProfileRequest) error {
	if req.Phone != nil {
		user.Phone = optionalString(*req.Phone)
	}

	if req.BirthDate != nil {
		if strings.TrimSpace(*req.BirthDate) == "" {
			user.BirthDate = nil
		} else {
			birth, ok := utils.ParseBirthDate(*req.BirthDate)
			if !ok {
				return fmt.Errorf("%w: birthDate must be DD/MM/YYYY or YYYY-MM-DD", ErrValidation)
			}
			user.BirthDate = &birth
		}
	}

	if req.BloodType != nil {
		bloodType := strings.ToUpper(strings.TrimSpace(*req.BloodType))
		switch {
		case bloodType == "":
			user.BloodType = nil
		case !ValidBloodType(bloodType):
			return fmt.Errorf("%w: bloodType must be one of A+, A-, B+, B-, AB+, AB-, O+, O-", ErrValidation)
		default:
			user.BloodType = &bloodType
		}
	}

	if req.Weight != nil {
		weight := req.Weight.Ptr()
		if *weight <= 0 {
			return fmt.Errorf("%w: weight must be positive", ErrValidation)
		}
		user.Weight = weight
	}

	if req.Sex != nil {
		sex := eligibility.ParseSex(*req.Sex)
		if !sex.Valid() {
			return fmt.Errorf("%w: sex must be M or F", ErrValidation)
		}
		user.Sex = sex
	}

	return nil
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// SyncCapibas copies the donor's Conecta balance into externalCapibas,
// reading it with the donor's own access token.
func (uc *UserController) SyncCapibas(ctx context.Context, userID, accessToken string) (int, error) {
	log := uc.log.Function("SyncCapibas")

	if strings.TrimSpace(accessToken) == "" {
		return 0, log.Err("access token is required", ErrValidation, "userID", userID)
	}

	balance, err := uc.conecta.Self(ctx, accessToken)
	if err != nil {
		if errors.Is(err, conecta.ErrNotConfigured) {
			return 0, log.Err("conecta integration disabled", fmt.Errorf("%w: %w", ErrUpstream, err), "userID", userID)
		}
		return 0, log.Err("failed to read conecta balance", fmt.Errorf("%w: %w", ErrUpstream, err), "userID", userID)
	}

	if err := uc.userRepo.UpdateExternalCapibas(ctx, userID, balance); err != nil {
		return 0, log.Err("failed to store external capibas", err, "userID", userID)
	}

	uc.cache.InvalidateDashboard(ctx, userID)
	uc.notifier.Notify(userID, websockets.EventCapibasSynced, map[string]int{"externalCapibas": balance})
	return balance, nil
}
