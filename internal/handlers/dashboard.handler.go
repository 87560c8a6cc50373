package handlers

import (
	"doacin/internal/app"
	dashboardController "doacin/internal/controllers/dashboard"
	"doacin/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	Handler
	controller *dashboardController.DashboardController
}

func NewDashboardHandler(app app.App, router fiber.Router) *DashboardHandler {
	log := logger.New("handlers").File("dashboard_handler")
	return &DashboardHandler{
		controller: app.DashboardController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *DashboardHandler) Register() {
	h.router.Get("/dashboard", h.middleware.AuthRequired(), h.getDashboard)
}

func (h *DashboardHandler) getDashboard(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	dashboard, err := h.controller.GetDashboard(c.Context(), user.ID)
	if err != nil {
		return h.fail(c, "failed to get dashboard", err)
	}

	return c.JSON(fiber.Map{"message": "success", "dashboard": dashboard})
}
