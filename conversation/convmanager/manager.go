// Package convmanager decide a qué workflow pertenece un mensaje entrante y
// aplica los resultados del motor sobre la conversación persistida.
package convmanager

import (
	"context"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/craftable/logx"

	"github.com/pelangilabs/moltbot/conversation"
	"github.com/pelangilabs/moltbot/engine"
	"github.com/pelangilabs/moltbot/pkg/kernel"
)

type Manager struct {
	conversations     conversation.ConversationRepository
	workflows         engine.WorkflowRepository
	defaultWorkflowID kernel.WorkflowID
}

func NewManager(
	conversations conversation.ConversationRepository,
	workflows engine.WorkflowRepository,
	defaultWorkflowID kernel.WorkflowID,
) *Manager {
	return &Manager{
		conversations:     conversations,
		workflows:         workflows,
		defaultWorkflowID: defaultWorkflowID,
	}
}

// GetOrCreate devuelve la conversación activa del sender en el canal, o crea
// una nueva eligiendo el workflow por trigger del primer mensaje (fallback al
// workflow por defecto). El segundo retorno indica si la conversación es
// nueva: el primer mensaje ya fue consumido como trigger y no debe entrar al
// motor como respuesta del huésped.
func (m *Manager) GetOrCreate(ctx context.Context, msg conversation.InboundMessage) (*conversation.Conversation, bool, error) {
	existing, err := m.conversations.FindActiveByChannelAndSender(ctx, msg.Channel, msg.Sender)
	if err == nil {
		return existing, false, nil
	}
	if !errx.IsType(err, errx.TypeNotFound) {
		return nil, false, err
	}

	wf, err := m.matchWorkflow(ctx, msg.Text)
	if err != nil {
		return nil, false, err
	}

	language := msg.Language
	if language == "" {
		language = "en"
	}

	conv := conversation.NewConversation(msg.Channel, msg.Sender, msg.SenderName, language)
	state := engine.NewWorkflowState(wf)
	conv.State = &state

	if err := m.conversations.Save(ctx, conv); err != nil {
		return nil, false, err
	}

	logx.Info("🆕 Conversation %s started on %s with workflow %s", conv.ID.String(), msg.Channel, wf.ID.String())
	return conv, true, nil
}

// matchWorkflow compara el primer mensaje contra los triggers de los
// workflows activos; sin coincidencia, usa el workflow por defecto
func (m *Manager) matchWorkflow(ctx context.Context, text string) (*engine.Workflow, error) {
	active, err := m.workflows.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	for _, wf := range active {
		if wf.MatchesTrigger(text) {
			if err := wf.Validate(); err != nil {
				logx.Error("⚠️ Trigger matched malformed workflow %s, skipping: %v", wf.ID.String(), err)
				continue
			}
			return wf, nil
		}
	}

	if m.defaultWorkflowID.IsEmpty() {
		return nil, engine.ErrDefinitionNotFound().WithDetail("reason", "no trigger matched and no default workflow configured")
	}

	wf, err := m.workflows.FindByID(ctx, m.defaultWorkflowID)
	if err != nil {
		return nil, err
	}
	if err := wf.Validate(); err != nil {
		return nil, err
	}
	return wf, nil
}

// Apply persiste el resultado de una invocación del motor sobre la
// conversación: estado siguiente, o cierre cuando el motor terminó
func (m *Manager) Apply(ctx context.Context, conv *conversation.Conversation, result *engine.ExecutionResult) error {
	if result.NextState != nil {
		conv.ApplyState(result.NextState)
		return m.conversations.Save(ctx, conv)
	}

	// terminal: una falla estructural entrega a un humano, un cierre normal
	// completa la conversación (el resumen viaja a staff en ambos casos)
	if result.Fault != nil {
		conv.HandOff()
	} else {
		conv.Complete()
	}

	return m.conversations.Save(ctx, conv)
}
