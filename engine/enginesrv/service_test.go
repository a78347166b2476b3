package enginesrv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pelangilabs/moltbot/engine"
	"github.com/pelangilabs/moltbot/pkg/kernel"
)

// ============================================================================
// Stubs
// ============================================================================

type stubRepo struct {
	workflows map[kernel.WorkflowID]*engine.Workflow
	saved     []engine.Workflow
}

func newStubRepo(workflows ...*engine.Workflow) *stubRepo {
	repo := &stubRepo{workflows: make(map[kernel.WorkflowID]*engine.Workflow)}
	for _, wf := range workflows {
		repo.workflows[wf.ID] = wf
	}
	return repo
}

func (r *stubRepo) Save(ctx context.Context, wf engine.Workflow) error {
	r.saved = append(r.saved, wf)
	r.workflows[wf.ID] = &wf
	return nil
}

func (r *stubRepo) FindByID(ctx context.Context, id kernel.WorkflowID) (*engine.Workflow, error) {
	wf, ok := r.workflows[id]
	if !ok {
		return nil, engine.ErrDefinitionNotFound().WithDetail("workflow_id", id.String())
	}
	copied := *wf
	return &copied, nil
}

func (r *stubRepo) Delete(ctx context.Context, id kernel.WorkflowID) error {
	delete(r.workflows, id)
	return nil
}

func (r *stubRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	for _, wf := range r.workflows {
		if wf.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubRepo) FindActive(ctx context.Context) ([]*engine.Workflow, error) {
	var active []*engine.Workflow
	for _, wf := range r.workflows {
		if wf.IsActive {
			active = append(active, wf)
		}
	}
	return active, nil
}

func (r *stubRepo) List(ctx context.Context, req engine.WorkflowListRequest) (engine.WorkflowListResponse, error) {
	return engine.WorkflowListResponse{}, nil
}

type stubExecutor struct {
	result *engine.ExecutionResult
	calls  int
}

func (s *stubExecutor) Execute(ctx context.Context, wf *engine.Workflow, input engine.ExecutionInput) (*engine.ExecutionResult, error) {
	s.calls++
	return s.result, nil
}

type stubAlerter struct {
	alerts []string
}

func (s *stubAlerter) Alert(ctx context.Context, subject, detail string) {
	s.alerts = append(s.alerts, subject)
}

// ============================================================================
// Tests
// ============================================================================

func flatWorkflow() *engine.Workflow {
	return &engine.Workflow{
		ID:   kernel.NewWorkflowID("survey"),
		Name: "Survey",
		Steps: []engine.Step{
			{ID: "hello", Message: engine.LocalizedText{"en": "Hello"}},
		},
	}
}

func graphWorkflow() *engine.Workflow {
	return &engine.Workflow{
		ID:          kernel.NewWorkflowID("welcome"),
		Name:        "Welcome",
		StartNodeID: "greet",
		Nodes: []engine.Node{
			{ID: "greet", Type: engine.NodeTypeMessage,
				Config: map[string]any{"text": map[string]any{"en": "Welcome"}}},
		},
	}
}

func TestService_ExecuteStep_DispatchesOnModel(t *testing.T) {
	flat := &stubExecutor{result: &engine.ExecutionResult{Reply: "flat"}}
	graph := &stubExecutor{result: &engine.ExecutionResult{Reply: "graph"}}
	service := NewService(newStubRepo(flatWorkflow(), graphWorkflow()), flat, graph, &stubAlerter{})

	result, err := service.ExecuteStep(context.Background(), engine.ExecutionInput{
		State: engine.WorkflowState{WorkflowID: kernel.NewWorkflowID("survey")},
	})
	require.NoError(t, err)
	assert.Equal(t, "flat", result.Reply)
	assert.Equal(t, 1, flat.calls)
	assert.Equal(t, 0, graph.calls)

	result, err = service.ExecuteStep(context.Background(), engine.ExecutionInput{
		State: engine.WorkflowState{WorkflowID: kernel.NewWorkflowID("welcome")},
	})
	require.NoError(t, err)
	assert.Equal(t, "graph", result.Reply)
	assert.Equal(t, 1, graph.calls)
}

func TestService_ExecuteStep_UnknownDefinitionDegrades(t *testing.T) {
	alerter := &stubAlerter{}
	service := NewService(newStubRepo(), &stubExecutor{}, &stubExecutor{}, alerter)

	result, err := service.ExecuteStep(context.Background(), engine.ExecutionInput{
		State: engine.WorkflowState{WorkflowID: kernel.NewWorkflowID("ghost")},
	})

	require.NoError(t, err)
	assert.Equal(t, DegradedReply, result.Reply)
	assert.True(t, result.HandOff)
	assert.Nil(t, result.NextState)
	require.Len(t, alerter.alerts, 1)
}

func TestService_ExecuteStep_MalformedDefinitionDegrades(t *testing.T) {
	broken := &engine.Workflow{
		ID:   kernel.NewWorkflowID("broken"),
		Name: "Broken",
		// ambos modelos a la vez: inválido
		Steps: []engine.Step{{ID: "a"}},
		Nodes: []engine.Node{{ID: "n"}},
	}
	alerter := &stubAlerter{}
	service := NewService(newStubRepo(broken), &stubExecutor{}, &stubExecutor{}, alerter)

	result, err := service.ExecuteStep(context.Background(), engine.ExecutionInput{
		State: engine.WorkflowState{WorkflowID: kernel.NewWorkflowID("broken")},
	})

	require.NoError(t, err)
	assert.Equal(t, DegradedReply, result.Reply)
	require.NotNil(t, result.Fault)
	assert.Equal(t, "definition_malformed", result.Fault.Kind)
	require.Len(t, alerter.alerts, 1)
}

func TestService_SaveWorkflow_RejectsDuplicateName(t *testing.T) {
	service := NewService(newStubRepo(flatWorkflow()), &stubExecutor{}, &stubExecutor{}, &stubAlerter{})

	_, err := service.SaveWorkflow(context.Background(), engine.SaveWorkflowRequest{
		ID:    "survey-2",
		Name:  "Survey",
		Steps: []engine.Step{{ID: "a", Message: engine.LocalizedText{"en": "hi"}}},
	})

	assert.Error(t, err)
}

func TestService_SaveWorkflow_SetsModelTag(t *testing.T) {
	repo := newStubRepo()
	service := NewService(repo, &stubExecutor{}, &stubExecutor{}, &stubAlerter{})

	wf, err := service.SaveWorkflow(context.Background(), engine.SaveWorkflowRequest{
		ID:    "feedback",
		Name:  "Feedback",
		Steps: []engine.Step{{ID: "ask", Message: engine.LocalizedText{"en": "Rate us"}}},
	})

	require.NoError(t, err)
	assert.Equal(t, engine.ModelFlat, wf.Model)
	require.Len(t, repo.saved, 1)
}
