package handlers

import (
	"formsentry/internal/app"
	"formsentry/internal/handlers/middleware"
	"formsentry/internal/logger"

	"github.com/gofiber/fiber/v2"
)

// PageHandler is the page-view entry point. A test-tagged view stores the
// correlation session and sets the scoped cookie; everything else passes
// through with an inactive context.
type PageHandler struct {
	Handler
}

func NewPageHandler(app app.App, router fiber.Router) *PageHandler {
	return &PageHandler{
		Handler: Handler{
			log:        logger.New("handlers").File("page_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *PageHandler) Register() {
	h.router.Get("/page", h.middleware.TestContext(false), h.pageView)
}

func (h *PageHandler) pageView(c *fiber.Ctx) error {
	tc := middleware.GetTestContext(c)

	return c.JSON(fiber.Map{
		"message": "success",
		"active":  tc.Active(),
		"context": tc,
	})
}
