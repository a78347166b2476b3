package engineapi

import (
	"github.com/gofiber/fiber/v2"
)

// WorkflowRoutes configura las rutas de administración de workflows
type WorkflowRoutes struct {
	handler *WorkflowHandler
	auth    fiber.Handler
}

func NewWorkflowRoutes(handler *WorkflowHandler, auth fiber.Handler) *WorkflowRoutes {
	return &WorkflowRoutes{
		handler: handler,
		auth:    auth,
	}
}

// Setup registra las rutas bajo /api/ops/workflows (protegidas por JWT)
func (wr *WorkflowRoutes) Setup(app *fiber.App) {
	workflows := app.Group("/api/ops/workflows", wr.auth)

	workflows.Get("/", wr.handler.ListWorkflows)
	workflows.Post("/", wr.handler.CreateWorkflow)
	workflows.Get("/:id", wr.handler.GetWorkflow)
	workflows.Put("/:id", wr.handler.UpdateWorkflow)
	workflows.Delete("/:id", wr.handler.DeleteWorkflow)
}
