// Package enginesrv es el punto de entrada del motor: resuelve la definición,
// despacha al ejecutor del modelo correspondiente y aplica la política de
// degradación para definiciones rotas. También expone las operaciones de
// administración de workflows del API de operador.
package enginesrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/craftable/logx"

	"github.com/pelangilabs/moltbot/engine"
	"github.com/pelangilabs/moltbot/pkg/kernel"
)

// DegradedReply es el texto fijo que ve el huésped cuando la definición no
// puede cargarse o está rota. Nunca se le muestra el error crudo.
const DegradedReply = "Sorry, something went wrong on our side. A member of our team will follow up with you shortly. 🙏"

type Service struct {
	workflows engine.WorkflowRepository
	flat      engine.StepExecutor
	graph     engine.StepExecutor
	alerter   engine.Alerter
}

var _ engine.Engine = (*Service)(nil)

func NewService(
	workflows engine.WorkflowRepository,
	flat engine.StepExecutor,
	graph engine.StepExecutor,
	alerter engine.Alerter,
) *Service {
	return &Service{
		workflows: workflows,
		flat:      flat,
		graph:     graph,
		alerter:   alerter,
	}
}

// ============================================================================
// Execution
// ============================================================================

// ExecuteStep avanza la conversación un paso lógico. Los errores
// estructurales de definición degradan a una disculpa fija con hand-off; el
// alertador recibe el detalle.
func (s *Service) ExecuteStep(ctx context.Context, input engine.ExecutionInput) (*engine.ExecutionResult, error) {
	wf, err := s.workflows.FindByID(ctx, input.State.WorkflowID)
	if err != nil {
		return s.degrade(ctx, input, "workflow definition not found", err), nil
	}

	if err := wf.Validate(); err != nil {
		return s.degrade(ctx, input, "workflow definition malformed", err), nil
	}

	switch wf.Model {
	case engine.ModelFlat:
		return s.flat.Execute(ctx, wf, input)
	case engine.ModelGraph:
		return s.graph.Execute(ctx, wf, input)
	default:
		// Validate fija la etiqueta; llegar acá es un bug de programación
		return s.degrade(ctx, input, "workflow model unresolved",
			engine.ErrDefinitionMalformed().WithDetail("workflow_id", input.State.WorkflowID.String())), nil
	}
}

// degrade construye la respuesta fija de disculpa y escala el detalle al
// alertador; la conversación se entrega porque no puede continuar sin una
// definición sana
func (s *Service) degrade(ctx context.Context, input engine.ExecutionInput, subject string, cause error) *engine.ExecutionResult {
	logx.Error("🚨 Engine degraded for workflow %s: %s: %v", input.State.WorkflowID.String(), subject, cause)

	if s.alerter != nil {
		s.alerter.Alert(ctx, subject, input.State.WorkflowID.String()+": "+cause.Error())
	}

	return &engine.ExecutionResult{
		Reply:   DegradedReply,
		HandOff: true,
		Fault:   engine.NewFault(engine.CodeDefinitionMalformed, input.State.WorkflowID.String(), cause.Error()),
	}
}

// ============================================================================
// Workflow Management
// ============================================================================

// SaveWorkflow crea o actualiza una definición; valida la estructura y fija
// la etiqueta de modelo antes de persistir
func (s *Service) SaveWorkflow(ctx context.Context, req engine.SaveWorkflowRequest) (*engine.Workflow, error) {
	wf := engine.Workflow{
		ID:          kernel.NewWorkflowID(req.ID),
		Name:        req.Name,
		Description: req.Description,
		Trigger:     req.Trigger,
		Steps:       req.Steps,
		Nodes:       req.Nodes,
		StartNodeID: req.StartNodeID,
		IsActive:    req.IsActive,
		UpdatedAt:   time.Now(),
	}

	if wf.ID.IsEmpty() {
		return nil, engine.ErrDefinitionMalformed().WithDetail("reason", "workflow id is required")
	}

	if err := wf.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.workflows.FindByID(ctx, wf.ID)
	if err == nil {
		wf.CreatedAt = existing.CreatedAt
	} else {
		wf.CreatedAt = wf.UpdatedAt

		taken, err := s.workflows.ExistsByName(ctx, wf.Name)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, engine.ErrWorkflowAlreadyExists().WithDetail("name", wf.Name)
		}
	}

	if err := s.workflows.Save(ctx, wf); err != nil {
		return nil, err
	}

	logx.Info("💾 Workflow saved: %s (%s model, active=%t)", wf.ID.String(), wf.Model, wf.IsActive)
	return &wf, nil
}

// GetWorkflow obtiene una definición por ID
func (s *Service) GetWorkflow(ctx context.Context, id kernel.WorkflowID) (*engine.Workflow, error) {
	return s.workflows.FindByID(ctx, id)
}

// DeleteWorkflow elimina una definición
func (s *Service) DeleteWorkflow(ctx context.Context, id kernel.WorkflowID) error {
	if _, err := s.workflows.FindByID(ctx, id); err != nil {
		return err
	}
	return s.workflows.Delete(ctx, id)
}

// ListWorkflows lista definiciones con paginación y filtros
func (s *Service) ListWorkflows(ctx context.Context, req engine.WorkflowListRequest) (engine.WorkflowListResponse, error) {
	return s.workflows.List(ctx, req)
}
