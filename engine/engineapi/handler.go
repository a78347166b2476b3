// Package engineapi expone las operaciones de administración de workflows
// del API de operador.
package engineapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pelangilabs/moltbot/engine"
	"github.com/pelangilabs/moltbot/engine/enginesrv"
	"github.com/pelangilabs/moltbot/pkg/kernel"
)

// WorkflowHandler maneja las peticiones HTTP de workflows
type WorkflowHandler struct {
	service *enginesrv.Service
}

func NewWorkflowHandler(service *enginesrv.Service) *WorkflowHandler {
	return &WorkflowHandler{service: service}
}

// ListWorkflows lista workflows con paginación
// GET /api/ops/workflows
func (h *WorkflowHandler) ListWorkflows(c *fiber.Ctx) error {
	req := engine.WorkflowListRequest{}
	req.Page = c.QueryInt("page", 1)
	req.PageSize = c.QueryInt("page_size", 20)
	req.Search = c.Query("search")

	if raw := c.Query("is_active"); raw != "" {
		isActive := raw == "true"
		req.IsActive = &isActive
	}
	if raw := c.Query("model"); raw != "" {
		model := engine.Model(raw)
		req.Model = &model
	}

	result, err := h.service.ListWorkflows(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// GetWorkflow obtiene un workflow por ID
// GET /api/ops/workflows/:id
func (h *WorkflowHandler) GetWorkflow(c *fiber.Ctx) error {
	id := kernel.NewWorkflowID(c.Params("id"))

	wf, err := h.service.GetWorkflow(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(wf)
}

// CreateWorkflow crea un workflow
// POST /api/ops/workflows
func (h *WorkflowHandler) CreateWorkflow(c *fiber.Ctx) error {
	var req engine.SaveWorkflowRequest
	if err := c.BodyParser(&req); err != nil {
		return engine.ErrDefinitionMalformed().WithDetail("reason", "invalid request body").WithCause(err)
	}

	wf, err := h.service.SaveWorkflow(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(wf)
}

// UpdateWorkflow actualiza un workflow existente
// PUT /api/ops/workflows/:id
func (h *WorkflowHandler) UpdateWorkflow(c *fiber.Ctx) error {
	var req engine.SaveWorkflowRequest
	if err := c.BodyParser(&req); err != nil {
		return engine.ErrDefinitionMalformed().WithDetail("reason", "invalid request body").WithCause(err)
	}
	req.ID = c.Params("id")

	wf, err := h.service.SaveWorkflow(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(wf)
}

// DeleteWorkflow elimina un workflow
// DELETE /api/ops/workflows/:id
func (h *WorkflowHandler) DeleteWorkflow(c *fiber.Ctx) error {
	id := kernel.NewWorkflowID(c.Params("id"))

	if err := h.service.DeleteWorkflow(c.Context(), id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"deleted": id.String()})
}
