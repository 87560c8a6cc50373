package handlers

import (
	"doacin/internal/app"
	quizController "doacin/internal/controllers/quiz"
	"doacin/internal/logger"
	. "doacin/internal/models"

	"github.com/gofiber/fiber/v2"
)

type QuizHandler struct {
	Handler
	controller *quizController.QuizController
}

func NewQuizHandler(app app.App, router fiber.Router) *QuizHandler {
	log := logger.New("handlers").File("quiz_handler")
	return &QuizHandler{
		controller: app.QuizController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *QuizHandler) Register() {
	quiz := h.router.Group("/quiz", h.middleware.AuthRequired())
	quiz.Get("/", h.getQuestions)
	quiz.Post("/attempts", h.submitAttempt)
	quiz.Get("/attempts", h.getAttempts)
}

func (h *QuizHandler) getQuestions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "success", "questions": h.controller.Questions()})
}

func (h *QuizHandler) submitAttempt(c *fiber.Ctx) error {
	log := h.log.Function("submitAttempt")
	user, _ := currentUser(c)

	var request QuizAttemptRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse quiz attempt", err, "userID", user.ID)
		return h.badRequest(c, "failed to parse quiz attempt", err)
	}

	result, err := h.controller.Submit(c.Context(), user.ID, request)
	if err != nil {
		return h.fail(c, "failed to submit quiz", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "success", "result": result})
}

func (h *QuizHandler) getAttempts(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	attempts, err := h.controller.ListAttempts(c.Context(), user.ID)
	if err != nil {
		return h.fail(c, "failed to get quiz attempts", err)
	}

	return c.JSON(fiber.Map{"message": "success", "attempts": attempts})
}
