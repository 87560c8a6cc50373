package handlers

import (
	"doacin/internal/app"
	donationController "doacin/internal/controllers/donations"
	"doacin/internal/logger"
	. "doacin/internal/models"

	"github.com/gofiber/fiber/v2"
)

type DonationHandler struct {
	Handler
	controller *donationController.DonationController
}

func NewDonationHandler(app app.App, router fiber.Router) *DonationHandler {
	log := logger.New("handlers").File("donation_handler")
	return &DonationHandler{
		controller: app.DonationController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *DonationHandler) Register() {
	donations := h.router.Group("/donations", h.middleware.AuthRequired())
	donations.Get("/", h.getDonations)
	donations.Post("/", h.createDonation)
	donations.Get("/stats", h.getStats)
	donations.Post("/confirm", h.confirmDonation)
	donations.Post("/:id/reject", h.middleware.AdminRequired(), h.rejectDonation)
}

func (h *DonationHandler) getDonations(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	donations, err := h.controller.List(c.Context(), user.ID)
	if err != nil {
		return h.fail(c, "failed to get donations", err)
	}

	return c.JSON(fiber.Map{"message": "success", "donations": donations})
}

func (h *DonationHandler) createDonation(c *fiber.Ctx) error {
	log := h.log.Function("createDonation")
	user, _ := currentUser(c)

	var request CreateDonationRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse donation request", err, "userID", user.ID)
		return h.badRequest(c, "failed to parse donation request", err)
	}

	donation, err := h.controller.Create(c.Context(), user.ID, request)
	if err != nil {
		return h.fail(c, "failed to create donation", err)
	}

	return c.Status(fiber.StatusCreated).
		JSON(fiber.Map{"message": "success", "donation": NewDonationHistoryItem(donation)})
}

func (h *DonationHandler) confirmDonation(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	donation, err := h.controller.Confirm(c.Context(), user)
	if err != nil {
		return h.fail(c, "failed to confirm donation", err)
	}

	return c.JSON(fiber.Map{"message": "success", "donation": NewDonationHistoryItem(donation)})
}

func (h *DonationHandler) rejectDonation(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return h.badRequest(c, "donation ID is required", nil)
	}

	donation, err := h.controller.Reject(c.Context(), id)
	if err != nil {
		return h.fail(c, "failed to reject donation", err)
	}

	return c.JSON(fiber.Map{"message": "success", "donation": NewDonationHistoryItem(donation)})
}

func (h *DonationHandler) getStats(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	stats, err := h.controller.Stats(c.Context(), user.ID)
	if err != nil {
		return h.fail(c, "failed to get donation stats", err)
	}

	return c.JSON(fiber.Map{"message": "success", "stats": stats})
}
