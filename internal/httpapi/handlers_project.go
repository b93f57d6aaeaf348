package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/infinity-apps/workspace/internal/project"
)

// projectSummary is the list representation of a project: full pages are
// omitted, and ids the client must not route on are flagged.
type projectSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Pages     int    `json:"pages"`
	CreatedAt int64  `json:"createdAt"`
	Usable    bool   `json:"usable"`
}

// ListProjects handles GET /api/v1/projects.
func (h *Handlers) ListProjects(c *fiber.Ctx) error {
	projects := h.stores.Projects.Projects()
	out := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectSummary{
			ID:        p.ID,
			Title:     p.Title,
			Pages:     len(p.Pages),
			CreatedAt: p.CreatedAt,
			Usable:    project.UsableID(p.ID, projects),
		})
	}
	return c.JSON(fiber.Map{"projects": out})
}

// GetProject handles GET /api/v1/projects/:id.
func (h *Handlers) GetProject(c *fiber.Ctx) error {
	p, ok := h.stores.Projects.Get(c.Params("id"))
	if !ok {
		return problemResponse(c, fiber.StatusNotFound,
			"project_not_found", "Not Found",
			"No project with id "+c.Params("id"))
	}
	return c.JSON(p)
}

// CreateProject handles POST /api/v1/projects.
func (h *Handlers) CreateProject(c *fiber.Ctx) error {
	var p project.Project
	if err := c.BodyParser(&p); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}
	if p.Title == "" {
		return problemResponse(c, fiber.StatusBadRequest,
			"empty_title", "Bad Request",
			"Project title must not be empty")
	}
	return c.Status(fiber.StatusCreated).JSON(h.stores.Projects.AddProject(p))
}

// PatchProject handles PATCH /api/v1/projects/:id.
func (h *Handlers) PatchProject(c *fiber.Ctx) error {
	var patch project.Patch
	if err := c.BodyParser(&patch); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}

	updated, ok := h.stores.Projects.UpdateProject(c.Params("id"), patch)
	if !ok {
		return problemResponse(c, fiber.StatusNotFound,
			"project_not_found", "Not Found",
			"No project with id "+c.Params("id"))
	}
	return c.JSON(updated)
}

// DeleteProject handles DELETE /api/v1/projects/:id.
func (h *Handlers) DeleteProject(c *fiber.Ctx) error {
	if !h.stores.Projects.DeleteProject(c.Params("id")) {
		return problemResponse(c, fiber.StatusNotFound,
			"project_not_found", "Not Found",
			"No project with id "+c.Params("id"))
	}
	return c.SendStatus(fiber.StatusNoContent)
}
