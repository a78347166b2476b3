package stepexec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/craftable/ptrx"

	"github.com/pelangilabs/moltbot/engine"
	"github.com/pelangilabs/moltbot/pkg/kernel"
)

// ============================================================================
// Stubs
// ============================================================================

type stubInvoker struct {
	result *engine.ActionResult
	err    error
	calls  int
}

func (s *stubInvoker) Invoke(ctx context.Context, descriptor engine.ActionDescriptor, resolvedContext map[string]any) (*engine.ActionResult, error) {
	s.calls++
	return s.result, s.err
}

type stubClassifier struct {
	outcome string
	err     error
	calls   int
}

func (s *stubClassifier) Classify(ctx context.Context, prompt, context, latestInput string) (string, error) {
	s.calls++
	return s.outcome, s.err
}

func newExecutor(invoker *stubInvoker, classifier *stubClassifier) *Executor {
	if invoker == nil {
		invoker = &stubInvoker{}
	}
	if classifier == nil {
		classifier = &stubClassifier{}
	}
	return NewExecutor(invoker, classifier)
}

func surveyWorkflow() *engine.Workflow {
	wf := &engine.Workflow{
		ID:   kernel.NewWorkflowID("survey"),
		Name: "Feedback Survey",
		Steps: []engine.Step{
			{ID: "greeting", Message: engine.LocalizedText{"en": "Welcome! How was your stay?"}, WaitForReply: true},
			{ID: "rating", Message: engine.LocalizedText{"en": "Rate us 1-5"}, WaitForReply: true},
			{ID: "thanks", Message: engine.LocalizedText{"en": "Thanks {{rating}}!"}},
		},
	}
	if err := wf.Validate(); err != nil {
		panic(err)
	}
	return wf
}

// ============================================================================
// Tests
// ============================================================================

func TestExecutor_Execute_FirstInvocation(t *testing.T) {
	executor := newExecutor(nil, nil)
	wf := surveyWorkflow()

	result, err := executor.Execute(context.Background(), wf, engine.ExecutionInput{
		State:    engine.NewWorkflowState(wf),
		Language: "en",
	})

	require.NoError(t, err)
	assert.Equal(t, "Welcome! How was your stay?", result.Reply)
	require.NotNil(t, result.NextState)
	assert.Equal(t, 1, result.NextState.StepIndex)
	assert.False(t, result.HandOff)
}

func TestExecutor_Execute_Determinism(t *testing.T) {
	executor := newExecutor(nil, nil)
	wf := surveyWorkflow()

	input := engine.ExecutionInput{
		State:       engine.NewWorkflowState(wf),
		UserMessage: ptrx.String("hello"),
		Language:    "en",
	}

	first, err := executor.Execute(context.Background(), wf, input)
	require.NoError(t, err)
	second, err := executor.Execute(context.Background(), wf, input)
	require.NoError(t, err)

	assert.Equal(t, first.Reply, second.Reply)
	assert.Equal(t, first.NextState.StepIndex, second.NextState.StepIndex)
	assert.Equal(t, first.NextState.CollectedData, second.NextState.CollectedData)
}

func TestExecutor_Execute_RecordsReplyUnderPreviousStep(t *testing.T) {
	executor := newExecutor(nil, nil)
	wf := surveyWorkflow()

	state := engine.NewWorkflowState(wf)
	state.StepIndex = 1

	result, err := executor.Execute(context.Background(), wf, engine.ExecutionInput{
		State:       state,
		UserMessage: ptrx.String("it was great"),
		Language:    "en",
	})

	require.NoError(t, err)
	assert.Equal(t, "it was great", result.NextState.CollectedData["greeting"])
	assert.Equal(t, 2, result.NextState.StepIndex)
}

func TestExecutor_Execute_TemplateInMessage(t *testing.T) {
	executor := newExecutor(nil, nil)
	wf := surveyWorkflow()

	state := engine.NewWorkflowState(wf)
	state.StepIndex = 2

	result, err := executor.Execute(context.Background(), wf, engine.ExecutionInput{
		State:       state,
		UserMessage: ptrx.String("5"),
		Language:    "en",
	})

	require.NoError(t, err)
	assert.Equal(t, "Thanks 5!", result.Reply)
	// el último paso no espera respuesta: la conversación termina en la misma
	// invocación en vez de quedar suspendida detrás de un mensaje más
	assert.Nil(t, result.NextState)
	assert.True(t, result.HandOff)
	assert.Contains(t, result.Summary, "rating: 5")
}

func TestExecutor_Execute_AutoAdvancesThroughInfoSteps(t *testing.T) {
	executor := newExecutor(nil, nil)
	wf := &engine.Workflow{
		ID:   kernel.NewWorkflowID("arrival"),
		Name: "Arrival",
		Steps: []engine.Step{
			{ID: "welcome", Message: engine.LocalizedText{"en": "Welcome to Pelangi!"}},
			{ID: "house_rules", Message: engine.LocalizedText{"en": "Quiet hours start at 11pm."}},
			{ID: "ask_name", Message: engine.LocalizedText{"en": "What is your name?"}, WaitForReply: true},
			{ID: "done", Message: engine.LocalizedText{"en": "Thanks {{ask_name}}!"}},
		},
	}
	require.NoError(t, wf.Validate())

	// los pasos informativos se encadenan hasta el primer paso que espera
	result, err := executor.Execute(context.Background(), wf, engine.ExecutionInput{
		State:    engine.NewWorkflowState(wf),
		Language: "en",
	})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Pelangi!\nQuiet hours start at 11pm.\nWhat is your name?", result.Reply)
	require.NotNil(t, result.NextState)
	assert.Equal(t, 3, result.NextState.StepIndex)
	assert.Nil(t, result.Fault)

	// la siguiente respuesta pertenece al paso que preguntó, no a los
	// informativos que pasaron de largo
	followUp, err := executor.Execute(context.Background(), wf, engine.ExecutionInput{
		State:       *result.NextState,
		UserMessage: ptrx.String("Aiman"),
		Language:    "en",
	})
	require.NoError(t, err)
	assert.Equal(t, "Thanks Aiman!", followUp.Reply)
	assert.Contains(t, followUp.Summary, "ask_name: Aiman")
	assert.NotContains(t, followUp.Summary, "welcome:")
	assert.NotContains(t, followUp.Summary, "house_rules:")
}

func TestExecutor_Execute_Completion(t *testing.T) {
	executor := newExecutor(nil, nil)
	wf := surveyWorkflow()

	state := engine.NewWorkflowState(wf)
	state.StepIndex = 3
	state.RecordAnswer("rating", "5")

	result, err := executor.Execute(context.Background(), wf, engine.ExecutionInput{
		State:    state,
		Language: "en",
	})

	require.NoError(t, err)
	assert.Nil(t, result.NextState)
	assert.True(t, result.HandOff)
	assert.Equal(t, "Thanks 5!", result.Reply)
	assert.Contains(t, result.Summary, "rating: 5")
}

func TestExecutor_Execute_OutOfRangeHealing(t *testing.T) {
	executor := newExecutor(nil, nil)
	wf := surveyWorkflow()

	state := engine.NewWorkflowState(wf)
	state.StepIndex = -5

	result, err := executor.Execute(context.Background(), wf, engine.ExecutionInput{
		State:    state,
		Language: "en",
	})

	require.NoError(t, err)
	assert.Equal(t, "Welcome! How was your stay?", result.Reply)
	assert.Equal(t, 1, result.NextState.StepIndex)
	require.NotNil(t, result.Fault)
	assert.Equal(t, "state_corrupted", result.Fault.Kind)

	// beyond the step count clamps to terminal, never panics
	state.StepIndex = 99
	result, err = executor.Execute(context.Background(), wf, engine.ExecutionInput{
		State:    state,
		Language: "en",
	})
	require.NoError(t, err)
	assert.Nil(t, result.NextState)
	assert.True(t, result.HandOff)
	require.NotNil(t, result.Fault)
	assert.Equal(t, "state_corrupted", result.Fault.Kind)
}

func evaluationWorkflow() *engine.Workflow {
	wf := &engine.Workflow{
		ID:   kernel.NewWorkflowID("escalation"),
		Name: "Escalation",
		Steps: []engine.Step{
			{ID: "ask", Message: engine.LocalizedText{"en": "How can I help?"}, WaitForReply: true},
			{ID: "triage", Evaluation: &engine.EvaluationDescriptor{
				ClassifierPrompt: "Classify the request as complaint or question",
				OutcomeToStepID:  map[string]string{"complaint": "apology", "question": "answer"},
				DefaultStepID:    "answer",
			}},
			{ID: "answer", Message: engine.LocalizedText{"en": "Here is the info you asked for."}, WaitForReply: true},
			{ID: "apology", Message: engine.LocalizedText{"en": "Sorry to hear that, a staff member will contact you."}, WaitForReply: true},
		},
	}
	if err := wf.Validate(); err != nil {
		panic(err)
	}
	return wf
}

func TestExecutor_Execute_EvaluationJump(t *testing.T) {
	classifier := &stubClassifier{outcome: "complaint"}
	executor := newExecutor(nil, classifier)
	wf := evaluationWorkflow()

	state := engine.NewWorkflowState(wf)
	state.StepIndex = 1

	result, err := executor.Execute(context.Background(), wf, engine.ExecutionInput{
		State:       state,
		UserMessage: ptrx.String("the shower is broken"),
		Language:    "en",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, classifier.calls)
	assert.Equal(t, "Sorry to hear that, a staff member will contact you.", result.Reply)
	// jumped to "apology" (index 3), then advanced by one
	assert.Equal(t, 4, result.NextState.StepIndex)
}

func TestExecutor_Execute_EvaluationInvisibility(t *testing.T) {
	classifier := &stubClassifier{outcome: "question"}
	executor := newExecutor(nil, classifier)
	wf := evaluationWorkflow()

	state := engine.NewWorkflowState(wf)
	state.StepIndex = 1

	result, err := executor.Execute(context.Background(), wf, engine.ExecutionInput{
		State:       state,
		UserMessage: ptrx.String("what time is checkout?"),
		Language:    "en",
	})

	require.NoError(t, err)
	// the evaluation step never records collectedData under its own id, and
	// the jumped-to step does not re-consume the user message
	assert.NotContains(t, result.NextState.CollectedData, "triage")
	assert.NotContains(t, result.NextState.CollectedData, "answer")
	assert.Equal(t, "what time is checkout?", result.NextState.CollectedData["ask"])
}

func TestExecutor_Execute_ClassifierFailureFallsBackToDefault(t *testing.T) {
	classifier := &stubClassifier{err: assert.AnError}
	executor := newExecutor(nil, classifier)
	wf := evaluationWorkflow()

	state := engine.NewWorkflowState(wf)
	state.StepIndex = 1

	result, err := executor.Execute(context.Background(), wf, engine.ExecutionInput{
		State:       state,
		UserMessage: ptrx.String("hmm"),
		Language:    "en",
	})

	require.NoError(t, err)
	assert.Equal(t, "Here is the info you asked for.", result.Reply)
	require.NotNil(t, result.Fault)
	assert.Equal(t, "classification_failed", result.Fault.Kind)
}

func TestExecutor_Execute_UnresolvableJumpFallsThrough(t *testing.T) {
	wf := evaluationWorkflow()
	wf.Steps[1].Evaluation.OutcomeToStepID = map[string]string{"complaint": "missing"}
	wf.Steps[1].Evaluation.DefaultStepID = "missing"

	classifier := &stubClassifier{outcome: "complaint"}
	executor := newExecutor(nil, classifier)

	state := engine.NewWorkflowState(wf)
	state.StepIndex = 1

	result, err := executor.Execute(context.Background(), wf, engine.ExecutionInput{
		State:       state,
		UserMessage: ptrx.String("the wifi is down"),
		Language:    "en",
	})

	require.NoError(t, err)
	// the evaluation step degrades to a normal non-collecting step and the
	// invocation continues into the next step, which waits
	assert.Equal(t, "Here is the info you asked for.", result.Reply)
	assert.Equal(t, 3, result.NextState.StepIndex)
	require.NotNil(t, result.Fault)
	assert.Equal(t, "jump_unresolved", result.Fault.Kind)
}

func TestExecutor_Execute_EvaluationJumpBound(t *testing.T) {
	// two evaluation steps pointing at each other: a misconfigured cycle
	wf := &engine.Workflow{
		ID:   kernel.NewWorkflowID("cycle"),
		Name: "Cycle",
		Steps: []engine.Step{
			{ID: "a", Evaluation: &engine.EvaluationDescriptor{DefaultStepID: "b"}},
			{ID: "b", Evaluation: &engine.EvaluationDescriptor{DefaultStepID: "a"}},
		},
	}
	require.NoError(t, wf.Validate())

	executor := newExecutor(nil, &stubClassifier{outcome: "anything"})

	result, err := executor.Execute(context.Background(), wf, engine.ExecutionInput{
		State:    engine.NewWorkflowState(wf),
		Language: "en",
	})

	require.NoError(t, err)
	require.NotNil(t, result.Fault)
	assert.Equal(t, "loop_bound_exceeded", result.Fault.Kind)
	// ningún paso del ciclo espera respuesta: la invocación degradada corre
	// hasta el final del guion
	assert.Nil(t, result.NextState)
	assert.True(t, result.HandOff)
}

func TestExecutor_Execute_ActionReplacesMessage(t *testing.T) {
	invoker := &stubInvoker{result: &engine.ActionResult{Message: "Booking confirmed for C12"}}
	executor := newExecutor(invoker, nil)

	wf := &engine.Workflow{
		ID:   kernel.NewWorkflowID("booking"),
		Name: "Booking",
		Steps: []engine.Step{
			{ID: "confirm", Message: engine.LocalizedText{"en": "Confirming..."},
				Action: &engine.ActionDescriptor{Kind: engine.ActionKindHTTP, Parameters: map[string]any{"url": "http://pms/book"}}},
		},
	}
	require.NoError(t, wf.Validate())

	result, err := executor.Execute(context.Background(), wf, engine.ExecutionInput{
		State:    engine.NewWorkflowState(wf),
		Language: "en",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, invoker.calls)
	assert.Equal(t, "Booking confirmed for C12", result.Reply)
}

func TestExecutor_Execute_ActionFailureKeepsTemplatedMessage(t *testing.T) {
	invoker := &stubInvoker{err: assert.AnError}
	executor := newExecutor(invoker, nil)

	wf := &engine.Workflow{
		ID:   kernel.NewWorkflowID("booking"),
		Name: "Booking",
		Steps: []engine.Step{
			{ID: "confirm", Message: engine.LocalizedText{"en": "We will confirm shortly"},
				Action: &engine.ActionDescriptor{Kind: engine.ActionKindHTTP, Parameters: map[string]any{"url": "http://pms/book"}}},
		},
	}
	require.NoError(t, wf.Validate())

	result, err := executor.Execute(context.Background(), wf, engine.ExecutionInput{
		State:    engine.NewWorkflowState(wf),
		Language: "en",
	})

	require.NoError(t, err)
	assert.Equal(t, "We will confirm shortly", result.Reply)
	require.NotNil(t, result.Fault)
	assert.Equal(t, "action_failed", result.Fault.Kind)
	// la falla de acción no bloquea el cierre del guion
	assert.Nil(t, result.NextState)
	assert.True(t, result.HandOff)
}
