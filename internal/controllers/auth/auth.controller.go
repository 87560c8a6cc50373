package authController

import (
	"context"
	"errors"
	"strings"

	"doacin/internal/auth"
	"doacin/internal/logger"
	. "doacin/internal/models"
	"doacin/internal/repositories"
)

const minPasswordLength = 6

type AuthController struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenManager
	log      logger.Logger
}

func New(userRepo repositories.UserRepository, tokens *auth.TokenManager) *AuthController {
	return &AuthController{
		userRepo: userRepo,
		tokens:   tokens,
		log:      logger.New("AuthController"),
	}
}

func (ac *AuthController) Register(ctx context.Context, req RegisterRequest) (User, string, error) {
	log := ac.log.Function("Register")

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.NationalID = strings.TrimSpace(req.NationalID)

	if req.Name == "" || req.Email == "" || req.NationalID == "" || req.Password == "" {
		return User{}, "", log.Err("name, email, national id and password are required", ErrValidation)
	}
	if !strings.Contains(req.Email, "@") {
		return User{}, "", log.Err("invalid email", ErrValidation, "email", req.Email)
	}
	if len(req.Password) < minPasswordLength {
		return User{}, "", log.Err("password too short", ErrValidation)
	}

	exists, err := ac.userRepo.ExistsByEmailOrNationalID(ctx, req.Email, req.NationalID)
	if err != nil {
		return User{}, "", log.Err("failed to check existing user", err)
	}
	if exists {
		return User{}, "", log.Err("user already registered", ErrConflict, "email", req.Email)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return User{}, "", log.Err("failed to hash password", err)
	}

	user := User{
		Name:         req.Name,
		Email:        req.Email,
		NationalID:   req.NationalID,
		PasswordHash: hash,
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		user.Phone = &phone
	}

	if err := ac.userRepo.Create(ctx, &user); err != nil {
		return User{}, "", log.Err("failed to create user", err, "email", req.Email)
	}

	token, err := ac.tokens.Issue(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return User{}, "", log.Err("failed to issue token", err, "userID", user.ID)
	}

	log.Info("registered user", "userID", user.ID)
	return user, token, nil
}

// Login answers ErrUnauthorized for both unknown emails and wrong
// passwords.
func (ac *AuthController) Login(ctx context.Context, req LoginRequest) (User, string, error) {
	log := ac.log.Function("Login")

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return User{}, "", log.Err("email and password are required", ErrValidation)
	}

	user, err := ac.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, "", log.Err("invalid credentials", ErrUnauthorized)
		}
		return User{}, "", log.Err("failed to get user", err)
	}

	if err := auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		return User{}, "", log.Err("invalid credentials", ErrUnauthorized, "userID", user.ID)
	}

	token, err := ac.tokens.Issue(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return User{}, "", log.Err("failed to issue token", err, "userID", user.ID)
	}

	return user, token, nil
}

// Authenticate resolves a bearer token to its user.
func (ac *AuthController) Authenticate(ctx context.Context, token string) (User, error) {
	log := ac.log.Function("Authenticate")

	claims, err := ac.tokens.Verify(token)
	if err != nil {
		return User{}, log.Err("invalid or expired token", ErrUnauthorized)
	}

	user, err := ac.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, log.Err("token user no longer exists", ErrUnauthorized, "userID", claims.UserID)
		}
		return User{}, log.Err("failed to load token user", err, "userID", claims.UserID)
	}

	return user, nil
}
