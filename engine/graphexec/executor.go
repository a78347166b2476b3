// Package graphexec ejecuta workflows del modelo en grafo: nodos tipados
// recorridos por aristas dirigidas, con suspensión en los nodos wait_reply y
// cota de visitas por invocación.
package graphexec

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Abraxas-365/craftable/logx"

	"github.com/pelangilabs/moltbot/engine"
	"github.com/pelangilabs/moltbot/engine/summary"
)

type Executor struct {
	invoker   engine.ActionInvoker
	transport engine.Transport
	resolver  *engine.TemplateResolver
	summaries *summary.Builder
}

var _ engine.StepExecutor = (*Executor)(nil)

func NewExecutor(invoker engine.ActionInvoker, transport engine.Transport) *Executor {
	return &Executor{
		invoker:   invoker,
		transport: transport,
		resolver:  engine.NewTemplateResolver(),
		summaries: summary.NewBuilder(),
	}
}

// Execute camina el grafo desde la posición actual hasta suspender en un
// wait_reply, llegar a un nodo sin arista saliente, o agotar la cota de
// visitas. El estado de entrada nunca se muta.
func (e *Executor) Execute(ctx context.Context, wf *engine.Workflow, input engine.ExecutionInput) (*engine.ExecutionResult, error) {
	state := input.State.Clone()
	var fault *engine.FaultInfo
	var buffer []string

	currentID := state.NodeID
	if currentID == "" {
		currentID = wf.StartNodeID
	}

	// llegada de reanudación: el mensaje entrante pertenece al wait_reply en
	// el que quedó suspendida la conversación
	if input.UserMessage != nil {
		if node := wf.GetNodeByID(currentID); node != nil && node.Type == engine.NodeTypeWaitReply {
			config, err := engine.ExtractWaitReplyConfig(node.Config)
			if err == nil {
				state.RecordAnswer(config.StoreAs, *input.UserMessage)
			} else {
				fault = firstFault(fault, engine.NewFault(engine.CodeDefinitionDegraded, node.ID, err.Error()))
			}
			currentID = node.Edges.Next
		}
	}

	maxVisits := 2 * len(wf.Nodes)
	visits := 0

	for currentID != "" {
		if visits >= maxVisits {
			fault = firstFault(fault, engine.NewFault(engine.CodeLoopBoundExceeded, currentID,
				fmt.Sprintf("node visit bound (%d) exceeded", maxVisits)))
			logx.Error("⚠️ Node visit bound exceeded at %s (workflow %s)", currentID, wf.ID.String())
			break
		}
		visits++

		node := wf.GetNodeByID(currentID)
		if node == nil {
			fault = firstFault(fault, engine.NewFault(engine.CodeNodeNotFound, currentID,
				"edge references a node missing from the definition"))
			break
		}

		templateCtx := engine.BuildTemplateContext(state, input.Identity)

		switch node.Type {
		case engine.NodeTypeMessage:
			config, err := engine.ExtractMessageConfig(node.Config)
			if err != nil {
				fault = firstFault(fault, degradedFault(node.ID, err))
				currentID = node.Edges.Next
				continue
			}
			buffer = append(buffer, e.resolver.Resolve(config.Text.Resolve(input.Language), templateCtx))
			currentID = node.Edges.Next

		case engine.NodeTypeWaitReply:
			config, err := engine.ExtractWaitReplyConfig(node.Config)
			if err == nil {
				if prompt := config.Prompt.Resolve(input.Language); prompt != "" {
					buffer = append(buffer, e.resolver.Resolve(prompt, templateCtx))
				}
			} else {
				fault = firstFault(fault, degradedFault(node.ID, err))
			}
			// suspensión: el estado queda apuntando a este mismo nodo y la
			// próxima invocación entra como llegada de reanudación
			state.NodeID = node.ID
			state.Touch()
			return &engine.ExecutionResult{
				Reply:     strings.Join(buffer, "\n"),
				NextState: &state,
				Fault:     fault,
			}, nil

		case engine.NodeTypeSend:
			currentID, fault = e.executeSend(ctx, node, &state, templateCtx, input.Language, fault)

		case engine.NodeTypeAPICall:
			currentID, fault = e.executeAPICall(ctx, node, &state, templateCtx, fault)

		case engine.NodeTypeCondition:
			config, err := engine.ExtractConditionConfig(node.Config)
			if err != nil {
				fault = firstFault(fault, degradedFault(node.ID, err))
				currentID = node.Edges.FalseNext
				continue
			}
			resolved := e.resolver.Resolve(config.Field, templateCtx)
			if evaluateCondition(resolved, config.Operator, config.Value) {
				currentID = node.Edges.TrueNext
			} else {
				currentID = node.Edges.FalseNext
			}

		default:
			// tipo desconocido: pasa de largo por la arista por defecto
			logx.Info("⏭️ Unknown node type %q at %s, passing through", node.Type, node.ID)
			currentID = node.Edges.Next
		}

		state.Touch()
	}

	// terminal: nodo sin arista saliente o cota agotada
	return &engine.ExecutionResult{
		Reply:   strings.Join(buffer, "\n"),
		HandOff: true,
		Summary: e.summaries.Build(wf, state, input.Identity),
		Fault:   fault,
	}, nil
}

// executeSend resuelve destinatario y contenido e invoca el transporte. Una
// falla de envío sigue la arista de error si existe, si no la por defecto.
func (e *Executor) executeSend(
	ctx context.Context,
	node *engine.Node,
	state *engine.WorkflowState,
	templateCtx map[string]any,
	language string,
	fault *engine.FaultInfo,
) (string, *engine.FaultInfo) {
	config, err := engine.ExtractSendConfig(node.Config)
	if err != nil {
		return node.Edges.Next, firstFault(fault, degradedFault(node.ID, err))
	}

	recipient := e.resolver.Resolve(config.Recipient, templateCtx)
	content := e.resolver.Resolve(config.Text.Resolve(language), templateCtx)

	if err := e.transport.Send(ctx, recipient, content); err != nil {
		logx.Error("⚠️ Send failed at node %s: %v", node.ID, err)
		fault = firstFault(fault, engine.NewFault(engine.CodeSendFailed, node.ID, err.Error()))
		if node.Edges.Error != "" {
			return node.Edges.Error, fault
		}
		return node.Edges.Next, fault
	}

	if config.RecordAs != "" {
		state.SetOutput(config.RecordAs, map[string]any{
			"sent":      true,
			"recipient": recipient,
		})
	}

	return node.Edges.Next, fault
}

// executeAPICall invoca el Action Invoker y mezcla los outputs en
// derivedOutputs bajo la clave plana y la clave con namespace del nodo.
func (e *Executor) executeAPICall(
	ctx context.Context,
	node *engine.Node,
	state *engine.WorkflowState,
	templateCtx map[string]any,
	fault *engine.FaultInfo,
) (string, *engine.FaultInfo) {
	config, err := engine.ExtractAPICallConfig(node.Config)
	if err != nil {
		return node.Edges.Next, firstFault(fault, degradedFault(node.ID, err))
	}

	result, err := e.invoker.Invoke(ctx, config.Descriptor(), templateCtx)
	if err != nil {
		logx.Error("⚠️ API call failed at node %s: %v", node.ID, err)
		state.SetOutput(node.ID+".error", err.Error())
		fault = firstFault(fault, engine.NewFault(engine.CodeActionFailed, node.ID, err.Error()))
		if node.Edges.Error != "" {
			return node.Edges.Error, fault
		}
		return node.Edges.Next, fault
	}

	for key, value := range result.Outputs {
		name := key
		if mapped, ok := config.OutputMappings[key]; ok {
			name = mapped
		}
		state.SetOutput(name, value)
		state.SetOutput(node.ID+"."+name, value)
	}

	return node.Edges.Next, fault
}

// evaluateCondition aplica el operador sobre el valor resuelto. Los
// operadores numéricos comparan como falso cuando el valor no parsea.
func evaluateCondition(resolved string, operator engine.ConditionOperator, literal string) bool {
	switch operator {
	case engine.OperatorGreaterThan, engine.OperatorLessThan:
		left, errL := strconv.ParseFloat(strings.TrimSpace(resolved), 64)
		right, errR := strconv.ParseFloat(strings.TrimSpace(literal), 64)
		if errL != nil || errR != nil {
			return false
		}
		if operator == engine.OperatorGreaterThan {
			return left > right
		}
		return left < right
	case engine.OperatorEqual:
		return resolved == literal
	case engine.OperatorNotEqual:
		return resolved != literal
	case engine.OperatorExists:
		return resolved != ""
	case engine.OperatorEmpty:
		return resolved == ""
	default:
		return false
	}
}

func degradedFault(nodeID string, err error) *engine.FaultInfo {
	return engine.NewFault(engine.CodeDefinitionDegraded, nodeID, err.Error())
}

// firstFault conserva la primera falla de la invocación
func firstFault(current, candidate *engine.FaultInfo) *engine.FaultInfo {
	if current != nil {
		return current
	}
	return candidate
}
