package handlers

import (
	"errors"

	"doacin/internal/app"
	authController "doacin/internal/controllers/auth"
	"doacin/internal/logger"
	. "doacin/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Handler
	controller *authController.AuthController
}

func NewAuthHandler(app app.App, router fiber.Router) *AuthHandler {
	log := logger.New("handlers").File("auth_handler")
	return &AuthHandler{
		controller: app.AuthController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AuthHandler) Register() {
	auth := h.router.Group("/auth")
	auth.Post("/register", h.register)
	auth.Post("/login", h.login)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	log := h.log.Function("register")

	var request RegisterRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse register request", err)
		return h.badRequest(c, "failed to parse register request", err)
	}

	user, token, err := h.controller.Register(c.Context(), request)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"message": "already registered", "error": err.Error()})
		}
		return h.fail(c, "failed to register", err)
	}

	return c.Status(fiber.StatusCreated).
		JSON(fiber.Map{"message": "success", "user": user, "token": token})
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	log := h.log.Function("login")

	var request LoginRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse login request", err)
		return h.badRequest(c, "failed to parse login request", err)
	}

	user, token, err := h.controller.Login(c.Context(), request)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "invalid credentials"})
		}
		return h.fail(c, "failed to login", err)
	}

	return c.JSON(fiber.Map{"message": "success", "token": token, "user": user})
}
