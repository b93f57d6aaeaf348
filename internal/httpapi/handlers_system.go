package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/infinity-apps/workspace/internal/bus"
	"github.com/infinity-apps/workspace/internal/dashboard"
	"github.com/infinity-apps/workspace/internal/health"
	"github.com/infinity-apps/workspace/internal/prefs"
)

// Liveness handles GET /healthz.
func (h *Handlers) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"uptime": time.Since(h.startTime).String(),
	})
}

// Readiness handles GET /readyz. It runs the registered health checks and
// returns 503 when any dependency is down.
func (h *Handlers) Readiness(c *fiber.Ctx) error {
	results := h.checker.RunAll(c.Context())
	status := fiber.StatusOK
	for _, s := range results {
		if s == health.StatusDown {
			status = fiber.StatusServiceUnavailable
			break
		}
	}
	return c.Status(status).JSON(fiber.Map{"checks": results})
}

// GetLayout handles GET /api/v1/dashboard/layout.
func (h *Handlers) GetLayout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"slots": h.stores.Dashboard.Slots()})
}

// PutLayoutSlot handles PUT /api/v1/dashboard/layout/:id.
func (h *Handlers) PutLayoutSlot(c *fiber.Ctx) error {
	var slot dashboard.Slot
	if err := c.BodyParser(&slot); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}
	slot.ID = c.Params("id")
	return c.JSON(h.stores.Dashboard.SetSlot(slot))
}

// DeleteLayoutSlot handles DELETE /api/v1/dashboard/layout/:id.
func (h *Handlers) DeleteLayoutSlot(c *fiber.Ctx) error {
	if !h.stores.Dashboard.RemoveSlot(c.Params("id")) {
		return problemResponse(c, fiber.StatusNotFound,
			"slot_not_found", "Not Found",
			"No widget slot with id "+c.Params("id"))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetTheme handles GET /api/v1/theme.
func (h *Handlers) GetTheme(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"theme": h.stores.Prefs.Theme()})
}

// PutTheme handles PUT /api/v1/theme.
func (h *Handlers) PutTheme(c *fiber.Ctx) error {
	var body struct {
		Theme prefs.Theme `json:"theme"`
	}
	if err := c.BodyParser(&body); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}
	if !h.stores.Prefs.SetTheme(body.Theme) {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_theme", "Bad Request",
			"Unknown theme "+string(body.Theme))
	}
	return c.JSON(fiber.Map{"theme": body.Theme})
}

// OpenCalendar handles POST /api/v1/calendar/open. The signal is
// fire-and-forget: the request is accepted even when nobody is listening.
func (h *Handlers) OpenCalendar(c *fiber.Ctx) error {
	var req bus.OpenRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return problemResponse(c, fiber.StatusBadRequest,
				"invalid_body", "Bad Request",
				"Invalid request body: "+err.Error())
		}
	}
	h.signals.Publish(req)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"signal":      bus.SignalCalendarOpen,
		"subscribers": h.signals.Subscribers(),
	})
}
