package summary

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pelangilabs/moltbot/engine"
	"github.com/pelangilabs/moltbot/pkg/kernel"
)

func graphWorkflow() *engine.Workflow {
	return &engine.Workflow{
		ID:    kernel.NewWorkflowID("checkin"),
		Name:  "Check-in Survey",
		Model: engine.ModelGraph,
		Nodes: []engine.Node{
			{ID: "ask_name", Name: "Guest name", Type: engine.NodeTypeWaitReply,
				Config: map[string]any{"store_as": "name"}},
			{ID: "ask_capsule", Name: "Capsule number", Type: engine.NodeTypeWaitReply,
				Config: map[string]any{"store_as": "capsule"}},
		},
	}
}

func TestBuilder_Build_DefinitionOrderWithLabels(t *testing.T) {
	builder := NewBuilder()
	started := time.Now().Add(-90 * time.Second)

	state := engine.WorkflowState{
		WorkflowID: kernel.NewWorkflowID("checkin"),
		Model:      engine.ModelGraph,
		CollectedData: map[string]string{
			"capsule": "C12",
			"name":    "Aiman",
			"extra":   "leftover",
		},
		StartedAt:    started,
		LastUpdateAt: started.Add(90 * time.Second),
	}

	summary := builder.Build(graphWorkflow(), state, engine.Identity{
		Name:    "Aiman",
		Phone:   "+60123456789",
		Channel: "WHATSAPP",
	})

	assert.Contains(t, summary, "Workflow: Check-in Survey")
	assert.Contains(t, summary, "Guest: Aiman")
	assert.Contains(t, summary, "Phone: +60123456789")
	assert.Contains(t, summary, "• Guest name: Aiman")
	assert.Contains(t, summary, "• Capsule number: C12")
	assert.Contains(t, summary, "• extra: leftover")
	assert.Contains(t, summary, "Duration: 1m 30s")

	// definition order: name before capsule, leftovers last
	nameIdx := strings.Index(summary, "Guest name")
	capsuleIdx := strings.Index(summary, "Capsule number")
	extraIdx := strings.Index(summary, "extra")
	assert.Less(t, nameIdx, capsuleIdx)
	assert.Less(t, capsuleIdx, extraIdx)
}

func TestBuilder_Build_NothingCollected(t *testing.T) {
	builder := NewBuilder()

	state := engine.WorkflowState{
		WorkflowID:    kernel.NewWorkflowID("checkin"),
		Model:         engine.ModelGraph,
		CollectedData: map[string]string{},
		StartedAt:     time.Now(),
		LastUpdateAt:  time.Now(),
	}

	summary := builder.Build(graphWorkflow(), state, engine.Identity{})

	assert.Contains(t, summary, "No data collected.")
	assert.NotContains(t, summary, "Collected:")
}

func TestBuilder_Build_FlatStepOrder(t *testing.T) {
	builder := NewBuilder()
	wf := &engine.Workflow{
		ID:    kernel.NewWorkflowID("survey"),
		Name:  "Feedback",
		Model: engine.ModelFlat,
		Steps: []engine.Step{
			{ID: "rating"},
			{ID: "comments"},
		},
	}

	state := engine.WorkflowState{
		WorkflowID: wf.ID,
		Model:      engine.ModelFlat,
		CollectedData: map[string]string{
			"comments": "great stay",
			"rating":   "5",
		},
		StartedAt:    time.Now().Add(-10 * time.Second),
		LastUpdateAt: time.Now(),
	}

	summary := builder.Build(wf, state, engine.Identity{})

	assert.Less(t, strings.Index(summary, "rating"), strings.Index(summary, "comments"))
}
