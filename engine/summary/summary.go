// Package summary renderiza la transcripción de una conversación terminada
// para la entrega a un operador humano.
package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/pelangilabs/moltbot/engine"
)

// Builder renders the collected data of a finished run as plain text
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build arma el resumen de entrega: identidad, datos recolectados en el orden
// de la definición (sobrantes al final) y duración transcurrida
func (b *Builder) Build(wf *engine.Workflow, state engine.WorkflowState, identity engine.Identity) string {
	var sb strings.Builder

	sb.WriteString("📋 Conversation Summary\n")
	sb.WriteString(fmt.Sprintf("Workflow: %s\n", wf.Name))

	if identity.Name != "" {
		sb.WriteString(fmt.Sprintf("Guest: %s\n", identity.Name))
	}
	if identity.Phone != "" {
		sb.WriteString(fmt.Sprintf("Phone: %s\n", identity.Phone))
	}
	if identity.Channel != "" {
		sb.WriteString(fmt.Sprintf("Channel: %s\n", identity.Channel))
	}

	sb.WriteString("\n")

	if len(state.CollectedData) == 0 {
		sb.WriteString("No data collected.\n")
	} else {
		sb.WriteString("Collected:\n")
		rendered := make(map[string]bool, len(state.CollectedData))

		// primero en orden de definición, con la etiqueta del paso/nodo
		for _, key := range definitionOrder(wf) {
			value, ok := state.CollectedData[key]
			if !ok {
				continue
			}
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", labelFor(wf, key), value))
			rendered[key] = true
		}

		// sobrantes que ningún paso/nodo actual explica (ediciones de definición)
		for key, value := range state.CollectedData {
			if rendered[key] {
				continue
			}
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", key, value))
		}
	}

	elapsed := state.LastUpdateAt.Sub(state.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	sb.WriteString(fmt.Sprintf("\nDuration: %s\n", formatDuration(elapsed)))

	return sb.String()
}

// definitionOrder lista las claves de recolección en el orden en que aparecen
// en la definición
func definitionOrder(wf *engine.Workflow) []string {
	if wf.Model == engine.ModelFlat {
		keys := make([]string, 0, len(wf.Steps))
		for i := range wf.Steps {
			keys = append(keys, wf.Steps[i].ID)
		}
		return keys
	}

	keys := make([]string, 0, len(wf.Nodes))
	for i := range wf.Nodes {
		node := &wf.Nodes[i]
		if node.Type != engine.NodeTypeWaitReply {
			continue
		}
		config, err := engine.ExtractWaitReplyConfig(node.Config)
		if err != nil {
			continue
		}
		keys = append(keys, config.StoreAs)
	}
	return keys
}

// labelFor busca una etiqueta humana para la clave: nombre del nodo que la
// guardó, o la clave misma
func labelFor(wf *engine.Workflow, key string) string {
	for i := range wf.Nodes {
		node := &wf.Nodes[i]
		if node.Type != engine.NodeTypeWaitReply {
			continue
		}
		config, err := engine.ExtractWaitReplyConfig(node.Config)
		if err != nil || config.StoreAs != key {
			continue
		}
		if node.Name != "" {
			return node.Name
		}
	}
	return key
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
