package engine

import (
	"context"

	"github.com/pelangilabs/moltbot/pkg/kernel"
)

// ============================================================================
// Repository Interfaces
// ============================================================================

// WorkflowRepository persistencia de definiciones de workflow
type WorkflowRepository interface {
	// CRUD básico
	Save(ctx context.Context, wf Workflow) error
	FindByID(ctx context.Context, id kernel.WorkflowID) (*Workflow, error)
	Delete(ctx context.Context, id kernel.WorkflowID) error
	ExistsByName(ctx context.Context, name string) (bool, error)

	// Búsquedas
	FindActive(ctx context.Context) ([]*Workflow, error)

	// List con paginación
	List(ctx context.Context, req WorkflowListRequest) (WorkflowListResponse, error)
}

// ============================================================================
// Collaborator Interfaces
// ============================================================================

// ActionInvoker realiza una llamada externa declarada por un ActionDescriptor.
// Los valores de los parámetros ya llegan resueltos contra el contexto de la
// conversación.
type ActionInvoker interface {
	Invoke(ctx context.Context, descriptor ActionDescriptor, resolvedContext map[string]any) (*ActionResult, error)
}

// Classifier clasifica el contexto de la conversación en una etiqueta
// categórica. Solo lo usan los pasos de evaluación del modelo plano.
type Classifier interface {
	Classify(ctx context.Context, prompt string, context string, latestInput string) (string, error)
}

// Transport envía un mensaje por el canal lateral (nodos send del grafo).
// La respuesta principal al huésped la envía el llamador, no el motor.
type Transport interface {
	Send(ctx context.Context, recipient string, content string) error
}

// Alerter recibe fallos estructurales de definiciones y otros eventos que
// requieren atención del operador
type Alerter interface {
	Alert(ctx context.Context, subject string, detail string)
}

// ============================================================================
// Executor Interfaces
// ============================================================================

// StepExecutor ejecuta una invocación sobre un modelo de ejecución concreto
// (plano o grafo)
type StepExecutor interface {
	Execute(ctx context.Context, wf *Workflow, input ExecutionInput) (*ExecutionResult, error)
}

// Engine es el punto de entrada: resuelve la definición y despacha al
// ejecutor del modelo correspondiente
type Engine interface {
	ExecuteStep(ctx context.Context, input ExecutionInput) (*ExecutionResult, error)
}
