package handlers

import (
	"doacin/internal/app"
	userController "doacin/internal/controllers/users"
	"doacin/internal/logger"
	. "doacin/internal/models"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	Handler
	controller *userController.UserController
}

func NewUserHandler(app app.App, router fiber.Router) *UserHandler {
	log := logger.New("handlers").File("user_handler")
	return &UserHandler{
		controller: app.UserController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *UserHandler) Register() {
	users := h.router.Group("/user", h.middleware.AuthRequired())
	users.Get("/me", h.getUser)
	users.Put("/me", h.updateProfile)
	users.Post("/me/capibas/sync", h.syncCapibas)
}

func (h *UserHandler) getUser(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		h.log.Function("getUser").ErMsg("No user found in locals")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to get user"})
	}

	return c.JSON(fiber.Map{"message": "success", "user": user})
}

func (h *UserHandler) updateProfile(c *fiber.Ctx) error {
	log := h.log.Function("updateProfile")
	user, _ := currentUser(c)

	var request UpdateProfileRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse profile request", err, "userID", user.ID)
		return h.badRequest(c, "failed to parse profile request", err)
	}

	updated, err := h.controller.UpdateProfile(c.Context(), user.ID, request)
	if err != nil {
		return h.fail(c, "failed to update profile", err)
	}

	return c.JSON(fiber.Map{"message": "success", "user": updated})
}

func (h *UserHandler) syncCapibas(c *fiber.Ctx) error {
	log := h.log.Function("syncCapibas")
	user, _ := currentUser(c)

	var request SyncCapibasRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse sync request", err, "userID", user.ID)
		return h.badRequest(c, "failed to parse sync request", err)
	}

	balance, err := h.controller.SyncCapibas(c.Context(), user.ID, request.AccessToken)
	if err != nil {
		return h.fail(c, "failed to sync capibas", err)
	}

	return c.JSON(fiber.Map{"message": "success", "externalCapibas": balance})
}
