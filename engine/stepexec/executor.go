// Package stepexec ejecuta workflows del modelo plano: una lista lineal de
// pasos con soporte de pasos de evaluación que clasifican contexto y saltan
// silenciosamente a un paso nombrado.
package stepexec

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Abraxas-365/craftable/logx"

	"github.com/pelangilabs/moltbot/engine"
	"github.com/pelangilabs/moltbot/engine/summary"
)

type Executor struct {
	invoker    engine.ActionInvoker
	classifier engine.Classifier
	resolver   *engine.TemplateResolver
	summaries  *summary.Builder
}

var _ engine.StepExecutor = (*Executor)(nil)

func NewExecutor(invoker engine.ActionInvoker, classifier engine.Classifier) *Executor {
	return &Executor{
		invoker:    invoker,
		classifier: classifier,
		resolver:   engine.NewTemplateResolver(),
		summaries:  summary.NewBuilder(),
	}
}

// Execute avanza la conversación hasta el próximo paso que espera respuesta,
// o hasta el final del guion. El estado de entrada nunca se muta; se trabaja
// sobre una copia.
func (e *Executor) Execute(ctx context.Context, wf *engine.Workflow, input engine.ExecutionInput) (*engine.ExecutionResult, error) {
	state := input.State.Clone()
	var fault *engine.FaultInfo

	return e.run(ctx, wf, state, input.UserMessage, input.Language, input.Identity, 0, fault)
}

// run es la re-entrada recursiva de los saltos silenciosos. jumps acota la
// recursión a len(steps) por invocación.
func (e *Executor) run(
	ctx context.Context,
	wf *engine.Workflow,
	state engine.WorkflowState,
	userMessage *string,
	language string,
	identity engine.Identity,
	jumps int,
	fault *engine.FaultInfo,
) (*engine.ExecutionResult, error) {
	// posición corrupta por ediciones de definición: se normaliza, no se
	// rechaza
	if state.StepIndex < 0 || state.StepIndex > len(wf.Steps) {
		healed := state.StepIndex
		if healed < 0 {
			healed = 0
		} else {
			healed = len(wf.Steps)
		}
		fault = firstFault(fault, engine.NewFault(engine.CodeStateCorrupted, wf.ID.String(),
			fmt.Sprintf("step index %d out of range, healed to %d", state.StepIndex, healed)))
		state.StepIndex = healed
	}

	// la respuesta entrante pertenece al paso anterior, salvo que ese paso
	// fuera de evaluación: los pasos silenciosos nunca recolectan
	if userMessage != nil && state.StepIndex > 0 {
		previous := &wf.Steps[state.StepIndex-1]
		if !previous.IsEvaluation() {
			state.RecordAnswer(previous.ID, *userMessage)
		}
	}

	templateCtx := engine.BuildTemplateContext(state, identity)

	// terminal: el mensaje saliente es el del último paso
	if state.StepIndex >= len(wf.Steps) {
		reply := ""
		if len(wf.Steps) > 0 {
			last := &wf.Steps[len(wf.Steps)-1]
			reply = e.resolver.Resolve(last.Message.Resolve(language), templateCtx)
		}
		return &engine.ExecutionResult{
			Reply:   reply,
			HandOff: true,
			Summary: e.summaries.Build(wf, state, identity),
			Fault:   fault,
		}, nil
	}

	step := &wf.Steps[state.StepIndex]

	if step.IsEvaluation() {
		if jumps >= len(wf.Steps) {
			fault = firstFault(fault, engine.NewFault(engine.CodeLoopBoundExceeded, step.ID,
				fmt.Sprintf("evaluation jump bound (%d) exceeded", len(wf.Steps))))
			logx.Error("⚠️ Evaluation jump bound exceeded at step %s (workflow %s)", step.ID, wf.ID.String())
		} else {
			target, evalFault := e.evaluate(ctx, wf, step, state, userMessage)
			fault = firstFault(fault, evalFault)
			if target >= 0 {
				// el paso de evaluación es invisible: el paso destino produce
				// la respuesta y no vuelve a consumir el mensaje del usuario
				state.StepIndex = target
				state.Touch()
				return e.run(ctx, wf, state, nil, language, identity, jumps+1, fault)
			}
			// destino irresoluble: el paso se trata como un paso normal no
			// recolector que avanza en uno
		}
	}

	reply := e.resolver.Resolve(step.Message.Resolve(language), templateCtx)

	if step.Action != nil {
		result, err := e.invoker.Invoke(ctx, *step.Action, templateCtx)
		if err != nil {
			// las fallas de acción nunca bloquean el avance de la conversación
			fault = firstFault(fault, engine.NewFault(engine.CodeActionFailed, step.ID, err.Error()))
			logx.Error("⚠️ Action failed at step %s: %v", step.ID, err)
		} else {
			if result.Message != "" {
				reply = result.Message
			}
			if len(result.Outputs) > 0 {
				logx.Info("📦 Action outputs at step %s: %v", step.ID, result.Outputs)
			}
		}
	}

	// el índice siempre avanza en uno
	state.StepIndex++
	state.Touch()

	// los pasos informativos no esperan respuesta: la invocación continúa
	// hasta un paso que espere o hasta el final del guion, concatenando los
	// mensajes producidos en el camino
	if !step.WaitForReply {
		if state.StepIndex >= len(wf.Steps) {
			return &engine.ExecutionResult{
				Reply:   reply,
				HandOff: true,
				Summary: e.summaries.Build(wf, state, identity),
				Fault:   fault,
			}, nil
		}
		next, err := e.run(ctx, wf, state, nil, language, identity, jumps, fault)
		if err != nil {
			return nil, err
		}
		next.Reply = joinReplies(reply, next.Reply)
		return next, nil
	}

	return &engine.ExecutionResult{
		Reply:     reply,
		NextState: &state,
		Fault:     fault,
	}, nil
}

// evaluate clasifica el contexto y resuelve el índice del paso destino.
// Retorna -1 cuando el destino no existe.
func (e *Executor) evaluate(
	ctx context.Context,
	wf *engine.Workflow,
	step *engine.Step,
	state engine.WorkflowState,
	userMessage *string,
) (int, *engine.FaultInfo) {
	var fault *engine.FaultInfo

	latestInput := ""
	if userMessage != nil {
		latestInput = *userMessage
	}

	contextJSON, _ := json.Marshal(state.CollectedData)

	outcome, err := e.classifier.Classify(ctx, step.Evaluation.ClassifierPrompt, string(contextJSON), latestInput)
	if err != nil {
		fault = engine.NewFault(engine.CodeClassificationFailed, step.ID, err.Error())
		logx.Error("⚠️ Classification failed at step %s: %v", step.ID, err)
		outcome = ""
	}

	targetID, ok := step.Evaluation.OutcomeToStepID[outcome]
	if !ok {
		targetID = step.Evaluation.DefaultStepID
	}

	index := wf.GetStepIndex(targetID)
	if index < 0 {
		if fault == nil {
			fault = engine.NewFault(engine.CodeJumpUnresolved, step.ID,
				fmt.Sprintf("jump target %q not found", targetID))
		}
		logx.Error("⚠️ Evaluation jump target %q not found (step %s)", targetID, step.ID)
	}

	return index, fault
}

// joinReplies concatena los mensajes de pasos consecutivos de una misma
// invocación, omitiendo los vacíos
func joinReplies(first, second string) string {
	if first == "" {
		return second
	}
	if second == "" {
		return first
	}
	return first + "\n" + second
}

// firstFault conserva la primera falla de la invocación
func firstFault(current, candidate *engine.FaultInfo) *engine.FaultInfo {
	if current != nil {
		return current
	}
	return candidate
}
