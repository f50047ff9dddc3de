package handlers

import (
	"formsentry/internal/app"
	"formsentry/internal/handlers/middleware"
	"formsentry/internal/logger"

	captureController "formsentry/internal/controllers/capture"

	"github.com/gofiber/fiber/v2"

	. "formsentry/internal/models"
)

// HooksHandler receives submission-complete webhooks from the engine-side
// shims and runs the capture pipeline.
type HooksHandler struct {
	Handler
	controller *captureController.CaptureController
}

func NewHooksHandler(app app.App, router fiber.Router) *HooksHandler {
	return &HooksHandler{
		controller: app.CaptureController,
		Handler: Handler{
			log:        logger.New("handlers").File("hooks_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *HooksHandler) Register() {
	h.router.Post("/hooks/:engine", h.middleware.TestContext(true), h.submission)
}

func (h *HooksHandler) submission(c *fiber.Ctx) error {
	log := h.log.Function("submission")

	formType, ok := ParseFormType(c.Params("engine"))
	if !ok {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"message": "unknown form engine"})
	}

	var raw RawSubmission
	if err := c.BodyParser(&raw); err != nil {
		log.Er("failed to parse submission payload", err, "engine", formType)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse submission payload"})
	}
	raw.FormType = formType

	if raw.FormID == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "formId is required"})
	}

	tc := middleware.GetTestContext(c)

	result, err := h.controller.HandleSubmission(c.UserContext(), tc, raw)
	if err != nil {
		log.Er("submission handling failed", err, "engine", formType, "formId", raw.FormID)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to process submission"})
	}

	return c.JSON(fiber.Map{"message": "success", "result": result})
}
