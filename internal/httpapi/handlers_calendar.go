package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/infinity-apps/workspace/internal/calendar"
	"github.com/infinity-apps/workspace/internal/dateutil"
)

// ListItems handles GET /api/v1/calendar/items.
func (h *Handlers) ListItems(c *fiber.Ctx) error {
	snap := h.stores.Calendar.Snapshot()
	items := snap.Items
	if items == nil {
		items = []calendar.Item{}
	}
	return c.JSON(fiber.Map{"items": items, "revision": snap.Revision})
}

// CreateItem handles POST /api/v1/calendar/items.
func (h *Handlers) CreateItem(c *fiber.Ctx) error {
	var item calendar.Item
	if err := c.BodyParser(&item); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}

	if item.Date != "" {
		if _, err := dateutil.ParseDateKey(item.Date); err != nil {
			return problemResponse(c, fiber.StatusBadRequest,
				"invalid_date", "Bad Request",
				"date must be YYYY-MM-DD")
		}
	}

	created, err := h.stores.Calendar.AddItem(item)
	if err != nil {
		if errors.Is(err, calendar.ErrEmptyTitle) {
			return problemResponse(c, fiber.StatusBadRequest,
				"empty_title", "Bad Request",
				"Item title must not be empty")
		}
		if errors.Is(err, calendar.ErrInvalidType) {
			return problemResponse(c, fiber.StatusBadRequest,
				"invalid_type", "Bad Request",
				"Item type must be event or task")
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// PatchItem handles PATCH /api/v1/calendar/items/:id.
func (h *Handlers) PatchItem(c *fiber.Ctx) error {
	var patch calendar.ItemPatch
	if err := c.BodyParser(&patch); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}

	updated, ok := h.stores.Calendar.UpdateItem(c.Params("id"), patch)
	if !ok {
		return problemResponse(c, fiber.StatusNotFound,
			"item_not_found", "Not Found",
			"No calendar item with id "+c.Params("id"))
	}
	return c.JSON(updated)
}

// DeleteItem handles DELETE /api/v1/calendar/items/:id.
func (h *Handlers) DeleteItem(c *fiber.Ctx) error {
	if !h.stores.Calendar.DeleteItem(c.Params("id")) {
		return problemResponse(c, fiber.StatusNotFound,
			"item_not_found", "Not Found",
			"No calendar item with id "+c.Params("id"))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListTags handles GET /api/v1/calendar/tags.
func (h *Handlers) ListTags(c *fiber.Ctx) error {
	snap := h.stores.Calendar.Snapshot()
	tags := snap.Tags
	if tags == nil {
		tags = []calendar.Tag{}
	}
	return c.JSON(fiber.Map{"tags": tags})
}

// CreateTag handles POST /api/v1/calendar/tags.
func (h *Handlers) CreateTag(c *fiber.Ctx) error {
	var tag calendar.Tag
	if err := c.BodyParser(&tag); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(h.stores.Calendar.AddTag(tag))
}

// PatchTag handles PATCH /api/v1/calendar/tags/:id.
func (h *Handlers) PatchTag(c *fiber.Ctx) error {
	var patch calendar.TagPatch
	if err := c.BodyParser(&patch); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}

	updated, ok := h.stores.Calendar.UpdateTag(c.Params("id"), patch)
	if !ok {
		return problemResponse(c, fiber.StatusNotFound,
			"tag_not_found", "Not Found",
			"No tag with id "+c.Params("id"))
	}
	return c.JSON(updated)
}

// DeleteTag handles DELETE /api/v1/calendar/tags/:id.
func (h *Handlers) DeleteTag(c *fiber.Ctx) error {
	if !h.stores.Calendar.DeleteTag(c.Params("id")) {
		return problemResponse(c, fiber.StatusNotFound,
			"tag_not_found", "Not Found",
			"No tag with id "+c.Params("id"))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Agenda handles GET /api/v1/calendar/agenda?date=YYYY-MM-DD.
func (h *Handlers) Agenda(c *fiber.Ctx) error {
	dateKey := c.Query("date")
	if dateKey == "" {
		dateKey = dateutil.FormatDateKey(time.Now())
	} else if _, err := dateutil.ParseDateKey(dateKey); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_date", "Bad Request",
			"date must be YYYY-MM-DD")
	}

	h.metrics.RecordView("agenda")
	start := time.Now()
	items := calendar.DayAgenda(h.stores.Calendar.Snapshot(), dateKey)
	h.metrics.ObserveViewDuration("agenda", time.Since(start).Seconds())

	if items == nil {
		items = []calendar.Item{}
	}
	return c.JSON(fiber.Map{"date": dateKey, "items": items})
}

// Grid handles GET /api/v1/calendar/grid?month=YYYY-MM&cap=N.
func (h *Handlers) Grid(c *fiber.Ctx) error {
	ref := time.Now()
	if month := c.Query("month"); month != "" {
		parsed, err := dateutil.ParseDateKey(month + "-01")
		if err != nil {
			return problemResponse(c, fiber.StatusBadRequest,
				"invalid_month", "Bad Request",
				"month must be YYYY-MM")
		}
		ref = parsed
	}
	visibleCap := c.QueryInt("cap", h.gridVisibleCap)

	h.metrics.RecordView("grid")
	start := time.Now()
	cells := h.grids.Get(h.stores.Calendar.Snapshot(), ref, visibleCap)
	h.metrics.ObserveViewDuration("grid", time.Since(start).Seconds())

	return c.JSON(fiber.Map{"month": dateutil.FormatDateKey(ref)[:7], "cells": cells})
}

// PinnedItems handles GET /api/v1/calendar/pinned?limit=N.
func (h *Handlers) PinnedItems(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", h.pinnedLimit)

	h.metrics.RecordView("pinned")
	items := calendar.Pinned(h.stores.Calendar.Snapshot(), limit)
	if items == nil {
		items = []calendar.Item{}
	}
	return c.JSON(fiber.Map{"items": items})
}

// UpcomingItems handles GET /api/v1/calendar/upcoming?type=event|task.
func (h *Handlers) UpcomingItems(c *fiber.Ctx) error {
	filter := calendar.ItemType(c.Query("type"))
	if filter != "" && !filter.Valid() {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_type", "Bad Request",
			"type must be event or task")
	}

	h.metrics.RecordView("upcoming")
	items := calendar.Upcoming(h.stores.Calendar.Snapshot(), time.Now(), filter)
	if items == nil {
		items = []calendar.Item{}
	}
	return c.JSON(fiber.Map{"items": items})
}
