package handlers

import (
	"formsentry/internal/app"
	"formsentry/internal/database"
	"formsentry/internal/logger"
	"formsentry/internal/repositories"

	"github.com/gofiber/fiber/v2"

	. "formsentry/internal/models"
)

// AdminHandler exposes the operator settings surface: durable suppression
// latches, per-form recipient overrides, and the cache flush escape hatch.
type AdminHandler struct {
	Handler
	settingsRepo repositories.SettingsRepository
	db           database.DB
}

type settingsRequest struct {
	DisableEmailReceipt *bool             `json:"disableEmailReceipt"`
	DisableWebhooks     *bool             `json:"disableWebhooks"`
	FormRecipients      map[string]string `json:"formRecipients"`
}

func NewAdminHandler(app app.App, router fiber.Router) *AdminHandler {
	return &AdminHandler{
		settingsRepo: app.SettingsRepo,
		db:           app.Database,
		Handler: Handler{
			log:        logger.New("handlers").File("admin_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AdminHandler) Register() {
	admin := h.router.Group("/admin", h.middleware.RequireAdminKey())
	admin.Post("/settings", h.updateSettings)
	admin.Post("/cache/flush", h.flushCaches)
}

// flushCaches drops every cached value so the next request re-reads the
// control plane and the canonical tables. For operators recovering from
// a control-plane address or key rotation.
func (h *AdminHandler) flushCaches(c *fiber.Ctx) error {
	log := h.log.Function("flushCaches")

	if err := h.db.FlushAllCaches(); err != nil {
		log.Er("failed to flush caches", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to flush caches"})
	}

	return c.JSON(fiber.Map{"message": "success"})
}

func (h *AdminHandler) updateSettings(c *fiber.Ctx) error {
	log := h.log.Function("updateSettings")
	ctx := c.UserContext()

	var req settingsRequest
	if err := c.BodyParser(&req); err != nil {
		log.Er("failed to parse settings request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse settings request"})
	}

	if req.DisableEmailReceipt != nil {
		if err := h.setFlag(c, SettingDisableEmailReceipt, *req.DisableEmailReceipt); err != nil {
			return err
		}
	}

	if req.DisableWebhooks != nil {
		if err := h.setFlag(c, SettingDisableWebhooks, *req.DisableWebhooks); err != nil {
			return err
		}
	}

	for targetKey, recipient := range req.FormRecipients {
		key := SettingFormRecipientPrefix + targetKey
		var err error
		if recipient == "" {
			err = h.settingsRepo.Delete(ctx, key)
		} else {
			err = h.settingsRepo.Set(ctx, key, recipient)
		}
		if err != nil {
			log.Er("failed to update form recipient", err, "targetKey", targetKey)
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"message": "failed to update settings"})
		}
	}

	return c.JSON(fiber.Map{"message": "success"})
}

func (h *AdminHandler) setFlag(c *fiber.Ctx, key string, enabled bool) error {
	value := "0"
	if enabled {
		value = "1"
	}

	if err := h.settingsRepo.Set(c.UserContext(), key, value); err != nil {
		h.log.Function("setFlag").Er("failed to update setting", err, "key", key)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to update settings"})
	}
	return nil
}
