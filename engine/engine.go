package engine

import (
	"strings"
	"time"

	"github.com/pelangilabs/moltbot/pkg/kernel"
)

// ============================================================================
// Workflow Entity
// ============================================================================

// Model indica el modelo de ejecución de un workflow
type Model string

const (
	ModelFlat  Model = "flat"
	ModelGraph Model = "graph"
)

// Workflow representa un guion de conversación: una lista plana de pasos
// o un grafo dirigido de nodos, nunca ambos.
type Workflow struct {
	ID          kernel.WorkflowID `db:"id" json:"id"`
	Name        string            `db:"name" json:"name"`
	Description string            `db:"description" json:"description"`
	Model       Model             `db:"model" json:"model"`
	Trigger     []string          `db:"trigger" json:"trigger,omitempty"`
	Steps       []Step            `db:"steps" json:"steps,omitempty"`
	Nodes       []Node            `db:"nodes" json:"nodes,omitempty"`
	StartNodeID string            `db:"start_node_id" json:"start_node_id,omitempty"`
	IsActive    bool              `db:"is_active" json:"is_active"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// LocalizedText texto multilenguaje; siempre lleva al menos "en"
type LocalizedText map[string]string

// Resolve retorna el texto en el idioma pedido con fallback a inglés
func (t LocalizedText) Resolve(language string) string {
	if v, ok := t[language]; ok && v != "" {
		return v
	}
	return t["en"]
}

// Step paso de un workflow plano
type Step struct {
	ID           string                `json:"id"`
	Message      LocalizedText         `json:"message"`
	WaitForReply bool                  `json:"wait_for_reply"`
	Action       *ActionDescriptor     `json:"action,omitempty"`
	Evaluation   *EvaluationDescriptor `json:"evaluation,omitempty"`
}

// IsEvaluation indica si el paso es un paso silencioso de clasificación
func (s *Step) IsEvaluation() bool {
	return s.Evaluation != nil
}

// Node nodo de un workflow en grafo
type Node struct {
	ID     string         `json:"id"`
	Name   string         `json:"name,omitempty"`
	Type   NodeType       `json:"type"`
	Config map[string]any `json:"config"`
	Edges  NodeEdges      `json:"edges"`
}

// NodeEdges aristas salientes de un nodo; cuáles aplican depende del tipo
type NodeEdges struct {
	Next      string `json:"next,omitempty"`
	Error     string `json:"error,omitempty"`
	TrueNext  string `json:"true_next,omitempty"`
	FalseNext string `json:"false_next,omitempty"`
}

// NodeType tipo de nodo
type NodeType string

const (
	NodeTypeMessage   NodeType = "message"
	NodeTypeWaitReply NodeType = "wait_reply"
	NodeTypeSend      NodeType = "send"
	NodeTypeAPICall   NodeType = "api_call"
	NodeTypeCondition NodeType = "condition"
)

// ActionDescriptor describe una llamada externa con efectos secundarios.
// Los parámetros se resuelven con plantillas en el momento de ejecución.
type ActionDescriptor struct {
	Kind       ActionKind     `json:"kind"`
	Parameters map[string]any `json:"parameters"`
}

// ActionKind tipo de acción externa
type ActionKind string

const (
	ActionKindHTTP   ActionKind = "http"
	ActionKindNotify ActionKind = "notify"
)

// EvaluationDescriptor clasifica el contexto y salta a un paso nombrado.
// Solo lo usa el ejecutor plano.
type EvaluationDescriptor struct {
	ClassifierPrompt string            `json:"classifier_prompt"`
	OutcomeToStepID  map[string]string `json:"outcome_to_step_id"`
	DefaultStepID    string            `json:"default_step_id"`
}

// ============================================================================
// Workflow State
// ============================================================================

// WorkflowState es la única entidad mutable: el progreso serializable de una
// conversación. El llamador la persiste entre invocaciones; el motor nunca
// la guarda.
type WorkflowState struct {
	WorkflowID     kernel.WorkflowID `json:"workflow_id"`
	Model          Model             `json:"model"`
	StepIndex      int               `json:"step_index,omitempty"`
	NodeID         string            `json:"node_id,omitempty"`
	CollectedData  map[string]string `json:"collected_data"`
	DerivedOutputs map[string]any    `json:"derived_outputs"`
	StartedAt      time.Time         `json:"started_at"`
	LastUpdateAt   time.Time         `json:"last_update_at"`
}

// NewWorkflowState crea el estado inicial apuntando al primer paso o al nodo
// de arranque del grafo
func NewWorkflowState(wf *Workflow) WorkflowState {
	now := time.Now()
	state := WorkflowState{
		WorkflowID:     wf.ID,
		Model:          wf.Model,
		CollectedData:  make(map[string]string),
		DerivedOutputs: make(map[string]any),
		StartedAt:      now,
		LastUpdateAt:   now,
	}
	if wf.Model == ModelGraph {
		state.NodeID = wf.StartNodeID
	}
	return state
}

// RecordAnswer guarda la respuesta del huésped bajo la clave dada
func (s *WorkflowState) RecordAnswer(key, value string) {
	if s.CollectedData == nil {
		s.CollectedData = make(map[string]string)
	}
	s.CollectedData[key] = value
	s.LastUpdateAt = time.Now()
}

// SetOutput guarda una salida derivada de una acción o nodo
func (s *WorkflowState) SetOutput(key string, value any) {
	if s.DerivedOutputs == nil {
		s.DerivedOutputs = make(map[string]any)
	}
	s.DerivedOutputs[key] = value
	s.LastUpdateAt = time.Now()
}

// Touch actualiza la marca de tiempo de última actividad
func (s *WorkflowState) Touch() {
	s.LastUpdateAt = time.Now()
}

// Clone devuelve una copia profunda de los mapas del estado. El motor trabaja
// sobre la copia para que una invocación abandonada no deje el estado
// persistido a medio mutar.
func (s WorkflowState) Clone() WorkflowState {
	out := s
	out.CollectedData = make(map[string]string, len(s.CollectedData))
	for k, v := range s.CollectedData {
		out.CollectedData[k] = v
	}
	out.DerivedOutputs = make(map[string]any, len(s.DerivedOutputs))
	for k, v := range s.DerivedOutputs {
		out.DerivedOutputs[k] = v
	}
	return out
}

// Identity metadatos de la conversación visibles para las plantillas
type Identity struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Channel string `json:"channel"`
}

// ============================================================================
// Domain Methods - Workflow
// ============================================================================

// Validate comprueba la integridad estructural de la definición y fija la
// etiqueta de modelo. Una definición es exactamente un modelo; mezclar ambos
// es inválido.
func (w *Workflow) Validate() error {
	hasSteps := len(w.Steps) > 0
	hasNodes := len(w.Nodes) > 0

	switch {
	case hasSteps && hasNodes:
		return ErrDefinitionMalformed().
			WithDetail("workflow_id", w.ID.String()).
			WithDetail("reason", "definition declares both steps and nodes")
	case !hasSteps && !hasNodes:
		return ErrDefinitionMalformed().
			WithDetail("workflow_id", w.ID.String()).
			WithDetail("reason", "definition declares neither steps nor nodes")
	case hasSteps:
		w.Model = ModelFlat
		return w.validateSteps()
	default:
		w.Model = ModelGraph
		return w.validateGraph()
	}
}

func (w *Workflow) validateSteps() error {
	seen := make(map[string]bool, len(w.Steps))
	for i := range w.Steps {
		step := &w.Steps[i]
		if step.ID == "" {
			return ErrDefinitionMalformed().
				WithDetail("workflow_id", w.ID.String()).
				WithDetail("reason", "step has no id")
		}
		if seen[step.ID] {
			return ErrDefinitionMalformed().
				WithDetail("workflow_id", w.ID.String()).
				WithDetail("step_id", step.ID).
				WithDetail("reason", "duplicate step id")
		}
		seen[step.ID] = true
	}
	return nil
}

func (w *Workflow) validateGraph() error {
	if w.StartNodeID == "" {
		return ErrDefinitionMalformed().
			WithDetail("workflow_id", w.ID.String()).
			WithDetail("reason", "graph definition lacks start_node_id")
	}

	seen := make(map[string]bool, len(w.Nodes))
	for i := range w.Nodes {
		node := &w.Nodes[i]
		if node.ID == "" {
			return ErrDefinitionMalformed().
				WithDetail("workflow_id", w.ID.String()).
				WithDetail("reason", "node has no id")
		}
		if seen[node.ID] {
			return ErrDefinitionMalformed().
				WithDetail("workflow_id", w.ID.String()).
				WithDetail("node_id", node.ID).
				WithDetail("reason", "duplicate node id")
		}
		seen[node.ID] = true
	}

	if !seen[w.StartNodeID] {
		return ErrDefinitionMalformed().
			WithDetail("workflow_id", w.ID.String()).
			WithDetail("start_node_id", w.StartNodeID).
			WithDetail("reason", "start_node_id references non-existent node")
	}

	for i := range w.Nodes {
		node := &w.Nodes[i]
		for edge, target := range map[string]string{
			"next":       node.Edges.Next,
			"error":      node.Edges.Error,
			"true_next":  node.Edges.TrueNext,
			"false_next": node.Edges.FalseNext,
		} {
			if target != "" && !seen[target] {
				return ErrDefinitionMalformed().
					WithDetail("workflow_id", w.ID.String()).
					WithDetail("node_id", node.ID).
					WithDetail("edge", edge).
					WithDetail("reason", "edge references non-existent node")
			}
		}
	}

	return nil
}

// GetNodeByID obtiene un nodo por ID
func (w *Workflow) GetNodeByID(nodeID string) *Node {
	for i := range w.Nodes {
		if w.Nodes[i].ID == nodeID {
			return &w.Nodes[i]
		}
	}
	return nil
}

// GetStepIndex obtiene el índice de un paso por ID, -1 si no existe
func (w *Workflow) GetStepIndex(stepID string) int {
	for i := range w.Steps {
		if w.Steps[i].ID == stepID {
			return i
		}
	}
	return -1
}

// MatchesTrigger verifica si alguna palabra clave del trigger aparece en el
// texto entrante
func (w *Workflow) MatchesTrigger(text string) bool {
	if len(w.Trigger) == 0 {
		return false
	}
	lowered := strings.ToLower(text)
	for _, keyword := range w.Trigger {
		if keyword != "" && strings.Contains(lowered, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// Activate activa el workflow
func (w *Workflow) Activate() {
	w.IsActive = true
	w.UpdatedAt = time.Now()
}

// Deactivate desactiva el workflow
func (w *Workflow) Deactivate() {
	w.IsActive = false
	w.UpdatedAt = time.Now()
}
