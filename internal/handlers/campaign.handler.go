package handlers

import (
	"doacin/internal/app"
	campaignController "doacin/internal/controllers/campaigns"
	"doacin/internal/logger"
	. "doacin/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CampaignHandler struct {
	Handler
	controller *campaignController.CampaignController
}

func NewCampaignHandler(app app.App, router fiber.Router) *CampaignHandler {
	log := logger.New("handlers").File("campaign_handler")
	return &CampaignHandler{
		controller: app.CampaignController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *CampaignHandler) Register() {
	campaigns := h.router.Group("/campaigns", h.middleware.AuthRequired())
	campaigns.Get("/locals", h.getLocals)
	campaigns.Post("/locals", h.middleware.AdminRequired(), h.createLocal)
}

func (h *CampaignHandler) getLocals(c *fiber.Ctx) error {
	locals, err := h.controller.ListLocals(c.Context(), c.Query("type"))
	if err != nil {
		return h.fail(c, "failed to get collection points", err)
	}

	return c.JSON(fiber.Map{"data": locals})
}

func (h *CampaignHandler) createLocal(c *fiber.Ctx) error {
	log := h.log.Function("createLocal")

	var request CreateCollectionPointRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse collection point request", err)
		return h.badRequest(c, "failed to parse collection point request", err)
	}

	local, err := h.controller.CreateLocal(c.Context(), request)
	if err != nil {
		return h.fail(c, "failed to create collection point", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": local})
}
