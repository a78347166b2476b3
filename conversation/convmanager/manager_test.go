package convmanager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pelangilabs/moltbot/conversation"
	"github.com/pelangilabs/moltbot/engine"
	"github.com/pelangilabs/moltbot/pkg/kernel"
)

// ============================================================================
// Stubs
// ============================================================================

type stubConvRepo struct {
	active map[string]*conversation.Conversation // channel:sender
	saved  []*conversation.Conversation
}

func newStubConvRepo() *stubConvRepo {
	return &stubConvRepo{active: make(map[string]*conversation.Conversation)}
}

func (r *stubConvRepo) Save(ctx context.Context, conv *conversation.Conversation) error {
	r.saved = append(r.saved, conv)
	if conv.IsActive() {
		r.active[conv.Channel+":"+conv.Sender] = conv
	} else {
		delete(r.active, conv.Channel+":"+conv.Sender)
	}
	return nil
}

func (r *stubConvRepo) FindByID(ctx context.Context, id kernel.ConversationID) (*conversation.Conversation, error) {
	for _, conv := range r.saved {
		if conv.ID == id {
			return conv, nil
		}
	}
	return nil, conversation.ErrConversationNotFound()
}

func (r *stubConvRepo) FindActiveByChannelAndSender(ctx context.Context, channel, sender string) (*conversation.Conversation, error) {
	if conv, ok := r.active[channel+":"+sender]; ok {
		return conv, nil
	}
	return nil, conversation.ErrConversationNotFound()
}

func (r *stubConvRepo) List(ctx context.Context, req conversation.ConversationListRequest) (conversation.ConversationListResponse, error) {
	return conversation.ConversationListResponse{}, nil
}

type stubWorkflowRepo struct {
	workflows map[kernel.WorkflowID]*engine.Workflow
}

func newStubWorkflowRepo(workflows ...*engine.Workflow) *stubWorkflowRepo {
	repo := &stubWorkflowRepo{workflows: make(map[kernel.WorkflowID]*engine.Workflow)}
	for _, wf := range workflows {
		repo.workflows[wf.ID] = wf
	}
	return repo
}

func (r *stubWorkflowRepo) Save(ctx context.Context, wf engine.Workflow) error {
	r.workflows[wf.ID] = &wf
	return nil
}

func (r *stubWorkflowRepo) FindByID(ctx context.Context, id kernel.WorkflowID) (*engine.Workflow, error) {
	if wf, ok := r.workflows[id]; ok {
		return wf, nil
	}
	return nil, engine.ErrDefinitionNotFound()
}

func (r *stubWorkflowRepo) Delete(ctx context.Context, id kernel.WorkflowID) error {
	delete(r.workflows, id)
	return nil
}

func (r *stubWorkflowRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	return false, nil
}

func (r *stubWorkflowRepo) FindActive(ctx context.Context) ([]*engine.Workflow, error) {
	var active []*engine.Workflow
	for _, wf := range r.workflows {
		if wf.IsActive {
			active = append(active, wf)
		}
	}
	return active, nil
}

func (r *stubWorkflowRepo) List(ctx context.Context, req engine.WorkflowListRequest) (engine.WorkflowListResponse, error) {
	return engine.WorkflowListResponse{}, nil
}

func triggerWorkflow(id string, triggers ...string) *engine.Workflow {
	wf := &engine.Workflow{
		ID:       kernel.NewWorkflowID(id),
		Name:     id,
		Trigger:  triggers,
		IsActive: true,
		Steps: []engine.Step{
			{ID: "greet", Message: engine.LocalizedText{"en": "Hello"}, WaitForReply: true},
		},
	}
	return wf
}

// ============================================================================
// Tests
// ============================================================================

func TestManager_GetOrCreate_MatchesTrigger(t *testing.T) {
	checkin := triggerWorkflow("wf-checkin", "check in")
	fallback := triggerWorkflow("wf-default")
	repo := newStubConvRepo()
	manager := NewManager(repo, newStubWorkflowRepo(checkin, fallback), kernel.NewWorkflowID("wf-default"))

	conv, created, err := manager.GetOrCreate(context.Background(), conversation.InboundMessage{
		Channel: "WHATSAPP",
		Sender:  "+60111",
		Text:    "I want to check in",
	})
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, conv.State)
	assert.Equal(t, kernel.NewWorkflowID("wf-checkin"), conv.State.WorkflowID)
	assert.Equal(t, conversation.StatusActive, conv.Status)
}

func TestManager_GetOrCreate_FallsBackToDefault(t *testing.T) {
	checkin := triggerWorkflow("wf-checkin", "check in")
	fallback := triggerWorkflow("wf-default")
	repo := newStubConvRepo()
	manager := NewManager(repo, newStubWorkflowRepo(checkin, fallback), kernel.NewWorkflowID("wf-default"))

	conv, created, err := manager.GetOrCreate(context.Background(), conversation.InboundMessage{
		Channel: "WHATSAPP",
		Sender:  "+60111",
		Text:    "random hello",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, kernel.NewWorkflowID("wf-default"), conv.State.WorkflowID)
}

func TestManager_GetOrCreate_NoMatchNoDefault(t *testing.T) {
	repo := newStubConvRepo()
	manager := NewManager(repo, newStubWorkflowRepo(), kernel.NewWorkflowID(""))

	_, _, err := manager.GetOrCreate(context.Background(), conversation.InboundMessage{
		Channel: "WHATSAPP",
		Sender:  "+60111",
		Text:    "hello",
	})
	assert.Error(t, err)
}

func TestManager_GetOrCreate_ReturnsExistingConversation(t *testing.T) {
	fallback := triggerWorkflow("wf-default")
	repo := newStubConvRepo()
	manager := NewManager(repo, newStubWorkflowRepo(fallback), kernel.NewWorkflowID("wf-default"))

	first, created, err := manager.GetOrCreate(context.Background(), conversation.InboundMessage{
		Channel: "WHATSAPP", Sender: "+60111", Text: "hi",
	})
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := manager.GetOrCreate(context.Background(), conversation.InboundMessage{
		Channel: "WHATSAPP", Sender: "+60111", Text: "Aiman",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestManager_Apply_PersistsNextState(t *testing.T) {
	fallback := triggerWorkflow("wf-default")
	repo := newStubConvRepo()
	manager := NewManager(repo, newStubWorkflowRepo(fallback), kernel.NewWorkflowID("wf-default"))

	conv, _, err := manager.GetOrCreate(context.Background(), conversation.InboundMessage{
		Channel: "WHATSAPP", Sender: "+60111", Text: "hi",
	})
	require.NoError(t, err)

	next := conv.State.Clone()
	next.StepIndex = 1
	err = manager.Apply(context.Background(), conv, &engine.ExecutionResult{
		Reply:     "ok",
		NextState: &next,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, conv.State.StepIndex)
	assert.Equal(t, conversation.StatusActive, conv.Status)
}

func TestManager_Apply_TerminalTransitions(t *testing.T) {
	fallback := triggerWorkflow("wf-default")

	// cierre normal → completed
	repo := newStubConvRepo()
	manager := NewManager(repo, newStubWorkflowRepo(fallback), kernel.NewWorkflowID("wf-default"))
	conv, _, err := manager.GetOrCreate(context.Background(), conversation.InboundMessage{
		Channel: "WHATSAPP", Sender: "+60111", Text: "hi",
	})
	require.NoError(t, err)

	require.NoError(t, manager.Apply(context.Background(), conv, &engine.ExecutionResult{Reply: "bye", HandOff: true}))
	assert.Equal(t, conversation.StatusCompleted, conv.Status)
	assert.Nil(t, conv.State)
	assert.NotNil(t, conv.CompletedAt)

	// falla estructural → handed_off
	conv2, _, err := manager.GetOrCreate(context.Background(), conversation.InboundMessage{
		Channel: "WHATSAPP", Sender: "+60222", Text: "hi",
	})
	require.NoError(t, err)

	require.NoError(t, manager.Apply(context.Background(), conv2, &engine.ExecutionResult{
		Reply:   "sorry",
		HandOff: true,
		Fault:   engine.NewFault(engine.CodeDefinitionMalformed, "wf-default", "steps renamed underneath the conversation"),
	}))
	assert.Equal(t, conversation.StatusHandedOff, conv2.Status)
}
