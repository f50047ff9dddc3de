package handlers

import (
	"formsentry/internal/app"
	"formsentry/internal/logger"
	"formsentry/internal/utils"

	formsController "formsentry/internal/controllers/forms"
	"formsentry/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

// ResultsHandler serves the token-guarded read side of the harness: form
// listings and captured results.
type ResultsHandler struct {
	Handler
	forms     *formsController.FormsController
	entryRepo repositories.EntryRepository
}

func NewResultsHandler(app app.App, router fiber.Router) *ResultsHandler {
	return &ResultsHandler{
		forms:     app.FormsController,
		entryRepo: app.EntryRepo,
		Handler: Handler{
			log:        logger.New("handlers").File("results_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ResultsHandler) Register() {
	h.router.Get("/forms", h.middleware.RequireToken(), h.listForms)

	results := h.router.Group("/results", h.middleware.RequireToken())
	results.Get("/", h.listResults)
	results.Get("/:uid", h.getResult)
	results.Get("/:uid/export", h.exportResult)
	results.Delete("/:uid", h.deleteResult)
}

func (h *ResultsHandler) listForms(c *fiber.Ctx) error {
	log := h.log.Function("listForms")

	listing, err := h.forms.List(c.UserContext())
	if err != nil {
		log.Er("failed to list forms", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to list forms"})
	}

	return c.JSON(fiber.Map{"message": "success", "listing": listing})
}

func (h *ResultsHandler) listResults(c *fiber.Ctx) error {
	log := h.log.Function("listResults")

	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)

	entries, err := h.entryRepo.List(c.UserContext(), offset, limit)
	if err != nil {
		log.Er("failed to list results", err, "offset", offset, "limit", limit)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to list results"})
	}

	return c.JSON(fiber.Map{"message": "success", "entries": entries})
}

func (h *ResultsHandler) getResult(c *fiber.Ctx) error {
	log := h.log.Function("getResult")
	uid := c.Params("uid")

	entry, fields, err := h.entryRepo.GetByUID(c.UserContext(), uid)
	if err != nil {
		log.Er("failed to load result", err, "uid", uid)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to load result"})
	}
	if entry == nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"message": "no capture for uid"})
	}

	return c.JSON(fiber.Map{"message": "success", "entry": entry, "fields": fields})
}

func (h *ResultsHandler) exportResult(c *fiber.Ctx) error {
	log := h.log.Function("exportResult")
	uid := c.Params("uid")

	entry, fields, err := h.entryRepo.GetByUID(c.UserContext(), uid)
	if err != nil {
		log.Er("failed to load result", err, "uid", uid)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to load result"})
	}
	if entry == nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"message": "no capture for uid"})
	}

	csvData, err := utils.BuildEntryCSV(entry, fields)
	if err != nil {
		log.Er("failed to build csv", err, "uid", uid)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to build export"})
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="capture-`+uid+`.csv"`)
	return c.Send(csvData)
}

func (h *ResultsHandler) deleteResult(c *fiber.Ctx) error {
	log := h.log.Function("deleteResult")
	uid := c.Params("uid")

	if err := h.entryRepo.DeleteByUID(c.UserContext(), uid); err != nil {
		log.Er("failed to delete result", err, "uid", uid)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to delete result"})
	}

	return c.JSON(fiber.Map{"message": "success"})
}
