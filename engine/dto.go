package engine

import (
	"github.com/Abraxas-365/craftable/storex"
)

// ============================================================================
// Execution DTOs
// ============================================================================

// ExecutionInput entrada de una invocación del motor. UserMessage es nil en
// la primera invocación de una conversación y en los saltos silenciosos.
type ExecutionInput struct {
	State       WorkflowState
	UserMessage *string
	Language    string
	Identity    Identity
}

// ExecutionResult salida de una invocación. NextState nil significa que la
// conversación terminó; el llamador descarta el estado persistido.
type ExecutionResult struct {
	Reply     string         `json:"reply"`
	NextState *WorkflowState `json:"next_state,omitempty"`
	HandOff   bool           `json:"hand_off"`
	Summary   string         `json:"summary,omitempty"`
	Fault     *FaultInfo     `json:"fault,omitempty"`
}

// FaultInfo reporta un evento degradado de la invocación (límite de bucle,
// salto irresoluble, acción fallida desviada a la arista de error). Es
// material de log para el llamador, nunca control de flujo. La primera falla
// de la invocación gana.
type FaultInfo struct {
	Kind     string `json:"kind"`
	Position string `json:"position"`
	Detail   string `json:"detail"`
}

// ActionResult resultado normalizado de una acción externa
type ActionResult struct {
	Message string         `json:"message,omitempty"`
	Outputs map[string]any `json:"outputs,omitempty"`
}

// ============================================================================
// List DTOs
// ============================================================================

// WorkflowListRequest request para listar workflows
type WorkflowListRequest struct {
	storex.PaginationOptions

	IsActive *bool  `json:"is_active,omitempty"`
	Model    *Model `json:"model,omitempty"`
	Search   string `json:"search,omitempty"`
}

// GetOffset retorna el offset SQL de la página pedida
func (wlr WorkflowListRequest) GetOffset() int {
	offset := (wlr.Page - 1) * wlr.PageSize
	if offset < 0 {
		return 0
	}
	return offset
}

// WorkflowListResponse lista paginada de workflows
type WorkflowListResponse = storex.Paginated[Workflow]

// ============================================================================
// Request DTOs
// ============================================================================

// SaveWorkflowRequest request para crear o actualizar un workflow
type SaveWorkflowRequest struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name" validate:"required,min=2"`
	Description string   `json:"description"`
	Trigger     []string `json:"trigger,omitempty"`
	Steps       []Step   `json:"steps,omitempty"`
	Nodes       []Node   `json:"nodes,omitempty"`
	StartNodeID string   `json:"start_node_id,omitempty"`
	IsActive    bool     `json:"is_active"`
}
