// Package msgprocessor ata el camino completo de un mensaje entrante:
// dedupe, rate limit, lock por conversación, invocación del motor, persistencia
// y respuesta por el canal. Es la capa que garantiza a lo sumo una invocación
// en vuelo por conversación.
package msgprocessor

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/craftable/logx"

	"github.com/pelangilabs/moltbot/conversation"
	"github.com/pelangilabs/moltbot/conversation/convmanager"
	"github.com/pelangilabs/moltbot/engine"
)

// Replier envía una respuesta por el canal de origen
type Replier interface {
	SendTo(ctx context.Context, channel, recipient, content string) error
}

// Config parámetros operativos del procesador
type Config struct {
	ExecutionTimeout time.Duration
	LockTTL          time.Duration
	StaffRecipients  []string
	StaffChannel     string
}

type Processor struct {
	manager     *convmanager.Manager
	engine      engine.Engine
	messages    conversation.MessageLog
	replier     Replier
	locker      conversation.Locker
	rateLimiter conversation.RateLimiter
	archiver    conversation.TranscriptArchiver
	config      Config
}

func NewProcessor(
	manager *convmanager.Manager,
	eng engine.Engine,
	messages conversation.MessageLog,
	replier Replier,
	locker conversation.Locker,
	rateLimiter conversation.RateLimiter,
	archiver conversation.TranscriptArchiver,
	config Config,
) *Processor {
	if config.ExecutionTimeout == 0 {
		config.ExecutionTimeout = 30 * time.Second
	}
	if config.LockTTL == 0 {
		config.LockTTL = 30 * time.Second
	}
	return &Processor{
		manager:     manager,
		engine:      eng,
		messages:    messages,
		replier:     replier,
		locker:      locker,
		rateLimiter: rateLimiter,
		archiver:    archiver,
		config:      config,
	}
}

// Process maneja un mensaje entrante de webhook con todas las guardas
func (p *Processor) Process(ctx context.Context, msg conversation.InboundMessage) (*conversation.ProcessResult, error) {
	// reintentos de webhook: el provider message id ya visto se descarta
	if msg.ProviderMessageID != "" {
		seen, err := p.messages.ExistsByProviderID(ctx, msg.ProviderMessageID)
		if err != nil {
			logx.Error("⚠️ Dedupe check failed for %s: %v", msg.ProviderMessageID, err)
		} else if seen {
			logx.Info("🔁 Duplicate message %s dropped", msg.ProviderMessageID)
			return nil, conversation.ErrDuplicateMessage().WithDetail("provider_message_id", msg.ProviderMessageID)
		}
	}

	allowed, err := p.rateLimiter.Allow(ctx, msg.Sender)
	if err != nil {
		logx.Error("⚠️ Rate limiter unavailable for %s: %v", msg.Sender, err)
		// limiter caído: el mensaje pasa, el tope protege gasto, no seguridad
	} else if !allowed {
		return nil, conversation.ErrRateLimited().WithDetail("sender", msg.Sender)
	}

	lockKey := fmt.Sprintf("conv:%s:%s", msg.Channel, msg.Sender)
	acquired, err := p.locker.Acquire(ctx, lockKey, p.config.LockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, conversation.ErrConversationBusy().WithDetail("sender", msg.Sender)
	}
	defer func() {
		if err := p.locker.Release(context.Background(), lockKey); err != nil {
			logx.Error("⚠️ Lock release failed for %s: %v", lockKey, err)
		}
	}()

	return p.process(ctx, msg)
}

// ProcessDirect maneja un mensaje del API de prueba: mismo camino central sin
// dedupe, rate limit ni lock (canal de consola, un solo operador)
func (p *Processor) ProcessDirect(ctx context.Context, msg conversation.InboundMessage) (*conversation.ProcessResult, error) {
	return p.process(ctx, msg)
}

func (p *Processor) process(ctx context.Context, msg conversation.InboundMessage) (*conversation.ProcessResult, error) {
	conv, created, err := p.manager.GetOrCreate(ctx, msg)
	if err != nil {
		return nil, err
	}

	if err := p.messages.Append(ctx, conversation.NewInboundRecord(conv.ID, msg.Text, msg.ProviderMessageID)); err != nil {
		logx.Error("⚠️ Inbound message log failed for %s: %v", conv.ID.String(), err)
	}

	if conv.State == nil {
		// conversación activa sin estado: inconsistencia, se entrega
		return nil, conversation.ErrConversationNotFound().
			WithDetail("conversation_id", conv.ID.String()).
			WithDetail("reason", "active conversation has no workflow state")
	}

	// el primer mensaje arranca el workflow, no responde a ningún paso
	var userMessage *string
	if !created {
		text := msg.Text
		userMessage = &text
	}

	result, err := p.executeWithTimeout(ctx, engine.ExecutionInput{
		State:       *conv.State,
		UserMessage: userMessage,
		Language:    conv.Language,
		Identity:    conv.Identity(),
	})
	if err != nil {
		return nil, err
	}

	if result.Fault != nil {
		logx.Error("⚠️ Degraded turn for %s at %s (%s): %s",
			conv.ID.String(), result.Fault.Position, result.Fault.Kind, result.Fault.Detail)
	}

	if err := p.manager.Apply(ctx, conv, result); err != nil {
		return nil, err
	}

	if result.Reply != "" {
		if err := p.messages.Append(ctx, conversation.NewOutboundRecord(conv.ID, result.Reply)); err != nil {
			logx.Error("⚠️ Outbound message log failed for %s: %v", conv.ID.String(), err)
		}
		if err := p.replier.SendTo(ctx, msg.Channel, msg.Sender, result.Reply); err != nil {
			logx.Error("❌ Reply delivery failed for %s: %v", conv.ID.String(), err)
		}
	}

	if result.NextState == nil {
		p.handOff(ctx, conv, result.Summary)
	}

	return &conversation.ProcessResult{
		ConversationID: conv.ID.String(),
		Reply:          result.Reply,
		HandOff:        result.HandOff,
		Completed:      result.NextState == nil,
	}, nil
}

// executeWithTimeout corre la invocación del motor acotada en tiempo; un
// timeout deja el estado previamente persistido como punto de reanudación
func (p *Processor) executeWithTimeout(ctx context.Context, input engine.ExecutionInput) (*engine.ExecutionResult, error) {
	execCtx, cancel := context.WithTimeout(ctx, p.config.ExecutionTimeout)
	defer cancel()

	type outcome struct {
		result *engine.ExecutionResult
		err    error
	}

	done := make(chan outcome, 1)
	go func() {
		result, err := p.engine.ExecuteStep(execCtx, input)
		done <- outcome{result: result, err: err}
	}()

	select {
	case <-execCtx.Done():
		return nil, conversation.ErrExecutionTimeout().
			WithDetail("workflow_id", input.State.WorkflowID.String())
	case out := <-done:
		return out.result, out.err
	}
}

// handOff entrega la transcripción: resumen a los destinatarios de staff y
// archivo en S3 cuando está habilitado
func (p *Processor) handOff(ctx context.Context, conv *conversation.Conversation, summary string) {
	if summary == "" {
		return
	}

	for _, recipient := range p.config.StaffRecipients {
		if err := p.replier.SendTo(ctx, p.config.StaffChannel, recipient, summary); err != nil {
			logx.Error("⚠️ Staff summary delivery to %s failed: %v", recipient, err)
		}
	}

	if p.archiver != nil {
		if err := p.archiver.Archive(ctx, conv, summary); err != nil {
			logx.Error("⚠️ Transcript archive failed for %s: %v", conv.ID.String(), err)
		}
	}
}
