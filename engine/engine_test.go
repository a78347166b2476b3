package engine

import (
	"testing"

	"github.com/Abraxas-365/craftable/storex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pelangilabs/moltbot/pkg/kernel"
)

func flatWorkflow(steps ...Step) *Workflow {
	return &Workflow{
		ID:    kernel.NewWorkflowID("wf-flat"),
		Name:  "flat",
		Steps: steps,
	}
}

func TestWorkflow_Validate_SetsFlatModel(t *testing.T) {
	wf := flatWorkflow(
		Step{ID: "greet", Message: LocalizedText{"en": "Hello"}},
		Step{ID: "ask", Message: LocalizedText{"en": "Name?"}, WaitForReply: true},
	)

	require.NoError(t, wf.Validate())
	assert.Equal(t, ModelFlat, wf.Model)
}

func TestWorkflow_Validate_SetsGraphModel(t *testing.T) {
	wf := &Workflow{
		ID:          kernel.NewWorkflowID("wf-graph"),
		StartNodeID: "start",
		Nodes: []Node{
			{ID: "start", Type: NodeTypeMessage, Edges: NodeEdges{Next: "end"}},
			{ID: "end", Type: NodeTypeMessage},
		},
	}

	require.NoError(t, wf.Validate())
	assert.Equal(t, ModelGraph, wf.Model)
}

func TestWorkflow_Validate_RejectsBothModels(t *testing.T) {
	wf := &Workflow{
		ID:          kernel.NewWorkflowID("wf-both"),
		Steps:       []Step{{ID: "a"}},
		Nodes:       []Node{{ID: "n"}},
		StartNodeID: "n",
	}

	assert.Error(t, wf.Validate())
}

func TestWorkflow_Validate_RejectsEmptyDefinition(t *testing.T) {
	wf := &Workflow{ID: kernel.NewWorkflowID("wf-empty")}

	assert.Error(t, wf.Validate())
}

func TestWorkflow_Validate_RejectsDuplicateStepIDs(t *testing.T) {
	wf := flatWorkflow(Step{ID: "a"}, Step{ID: "a"})

	assert.Error(t, wf.Validate())
}

func TestWorkflow_Validate_RejectsMissingStartNode(t *testing.T) {
	wf := &Workflow{
		ID:    kernel.NewWorkflowID("wf-nostart"),
		Nodes: []Node{{ID: "a", Type: NodeTypeMessage}},
	}

	assert.Error(t, wf.Validate())

	wf.StartNodeID = "ghost"
	assert.Error(t, wf.Validate())
}

func TestWorkflow_Validate_RejectsDanglingEdge(t *testing.T) {
	wf := &Workflow{
		ID:          kernel.NewWorkflowID("wf-dangling"),
		StartNodeID: "a",
		Nodes: []Node{
			{ID: "a", Type: NodeTypeMessage, Edges: NodeEdges{Next: "nowhere"}},
		},
	}

	assert.Error(t, wf.Validate())
}

func TestWorkflow_MatchesTrigger(t *testing.T) {
	wf := flatWorkflow(Step{ID: "a"})
	wf.Trigger = []string{"check in", "Booking"}

	assert.True(t, wf.MatchesTrigger("I want to CHECK IN please"))
	assert.True(t, wf.MatchesTrigger("booking enquiry"))
	assert.False(t, wf.MatchesTrigger("hello there"))
	assert.False(t, wf.MatchesTrigger(""))
}

func TestLocalizedText_Resolve(t *testing.T) {
	text := LocalizedText{"en": "Hello", "ms": "Helo"}

	assert.Equal(t, "Helo", text.Resolve("ms"))
	assert.Equal(t, "Hello", text.Resolve("en"))
	assert.Equal(t, "Hello", text.Resolve("fr"))
	assert.Equal(t, "Hello", text.Resolve(""))
}

func TestNewWorkflowState_PointsAtStart(t *testing.T) {
	flat := flatWorkflow(Step{ID: "a"})
	require.NoError(t, flat.Validate())
	state := NewWorkflowState(flat)
	assert.Equal(t, 0, state.StepIndex)
	assert.Empty(t, state.NodeID)

	graph := &Workflow{
		ID:          kernel.NewWorkflowID("wf-g"),
		StartNodeID: "start",
		Nodes:       []Node{{ID: "start", Type: NodeTypeMessage}},
	}
	require.NoError(t, graph.Validate())
	gstate := NewWorkflowState(graph)
	assert.Equal(t, "start", gstate.NodeID)
}

func TestWorkflowState_CloneIsDeep(t *testing.T) {
	state := WorkflowState{
		CollectedData:  map[string]string{"name": "Aiman"},
		DerivedOutputs: map[string]any{"x": 1},
	}

	clone := state.Clone()
	clone.RecordAnswer("name", "Siti")
	clone.SetOutput("x", 2)

	assert.Equal(t, "Aiman", state.CollectedData["name"])
	assert.Equal(t, 1, state.DerivedOutputs["x"])
}

func TestWorkflowListRequest_GetOffset(t *testing.T) {
	req := WorkflowListRequest{PaginationOptions: storex.PaginationOptions{Page: 3, PageSize: 20}}
	assert.Equal(t, 40, req.GetOffset())

	req = WorkflowListRequest{PaginationOptions: storex.PaginationOptions{Page: 1, PageSize: 20}}
	assert.Equal(t, 0, req.GetOffset())

	// page cero o sin inicializar nunca produce un offset negativo
	req = WorkflowListRequest{PaginationOptions: storex.PaginationOptions{PageSize: 20}}
	assert.Equal(t, 0, req.GetOffset())
}

func TestFaultKind_DerivesFromRegistryCode(t *testing.T) {
	assert.Equal(t, "loop_bound_exceeded", FaultKind(CodeLoopBoundExceeded))
	assert.Equal(t, "state_corrupted", FaultKind(CodeStateCorrupted))
	assert.Equal(t, "jump_unresolved", FaultKind(CodeJumpUnresolved))

	fault := NewFault(CodeActionFailed, "confirm", "pms returned 503")
	assert.Equal(t, "action_failed", fault.Kind)
	assert.Equal(t, "confirm", fault.Position)
	assert.Equal(t, "pms returned 503", fault.Detail)
}
