package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplateResolver_Resolve(t *testing.T) {
	resolver := NewTemplateResolver()
	context := map[string]any{
		"name": "Aiman",
		"booking": map[string]any{
			"capsule": "C12",
			"nights":  float64(3),
		},
	}

	assert.Equal(t, "Hi Aiman", resolver.Resolve("Hi {{name}}", context))
	assert.Equal(t, "Capsule C12 for 3 nights", resolver.Resolve("Capsule {{booking.capsule}} for {{booking.nights}} nights", context))
	assert.Equal(t, "Hi ", resolver.Resolve("Hi {{missing}}", context))
	assert.Equal(t, "Hi ", resolver.Resolve("Hi {{missing.deep.path}}", context))
	assert.Equal(t, "no placeholders", resolver.Resolve("no placeholders", context))
	assert.Equal(t, "Aiman", resolver.Resolve("{{ name }}", context))
}

func TestTemplateResolver_ResolveMap(t *testing.T) {
	resolver := NewTemplateResolver()
	context := map[string]any{"name": "Aiman"}

	out := resolver.ResolveMap(map[string]any{
		"greeting": "Hello {{name}}",
		"nested":   map[string]any{"inner": "{{name}}!"},
		"list":     []any{"{{name}}", float64(5)},
		"count":    float64(2),
	}, context)

	assert.Equal(t, "Hello Aiman", out["greeting"])
	assert.Equal(t, "Aiman!", out["nested"].(map[string]any)["inner"])
	assert.Equal(t, "Aiman", out["list"].([]any)[0])
	assert.Equal(t, float64(5), out["list"].([]any)[1])
	assert.Equal(t, float64(2), out["count"])
}

func TestBuildTemplateContext_Precedence(t *testing.T) {
	state := WorkflowState{
		CollectedData:  map[string]string{"name": "FromCollected", "room": "C4"},
		DerivedOutputs: map[string]any{"name": "FromDerived"},
	}
	identity := Identity{Name: "FromIdentity", Phone: "+60111", Channel: "WHATSAPP"}

	context := BuildTemplateContext(state, identity)

	// clave plana: derived > collected > identity
	assert.Equal(t, "FromDerived", context["name"])
	assert.Equal(t, "C4", context["room"])

	// los namespaces conservan cada capa
	resolver := NewTemplateResolver()
	assert.Equal(t, "FromIdentity", resolver.Resolve("{{identity.name}}", context))
	assert.Equal(t, "FromCollected", resolver.Resolve("{{collectedData.name}}", context))
	assert.Equal(t, "FromDerived", resolver.Resolve("{{derivedOutputs.name}}", context))
	assert.Equal(t, "+60111", resolver.Resolve("{{identity.phone}}", context))
}

func TestTemplateResolver_NamespacedOutputKeys(t *testing.T) {
	// los nodos api_call guardan sus outputs bajo la clave plana y bajo
	// "nodo.clave"; ambas formas deben resolverse desde una plantilla
	state := WorkflowState{
		CollectedData: map[string]string{},
		DerivedOutputs: map[string]any{
			"capsule":      "C12",
			"call.capsule": "C12",
		},
	}
	context := BuildTemplateContext(state, Identity{})
	resolver := NewTemplateResolver()

	assert.Equal(t, "C12", resolver.Resolve("{{capsule}}", context))
	assert.Equal(t, "C12", resolver.Resolve("{{call.capsule}}", context))
	assert.Equal(t, "C12", resolver.Resolve("{{derivedOutputs.call.capsule}}", context))
}

func TestTemplateResolver_NestedTraversalWinsOverLiteral(t *testing.T) {
	resolver := NewTemplateResolver()
	context := map[string]any{
		"booking":         map[string]any{"capsule": "C7"},
		"booking.capsule": "C99",
	}

	// el recorrido por segmentos tiene prioridad; la clave literal es el
	// fallback cuando el recorrido no llega a un valor
	assert.Equal(t, "C7", resolver.Resolve("{{booking.capsule}}", context))
	assert.Equal(t, "", resolver.Resolve("{{booking.missing}}", context))
}

func TestStringify_IntegralFloats(t *testing.T) {
	assert.Equal(t, "3", stringify(float64(3)))
	assert.Equal(t, "3.5", stringify(3.5))
	assert.Equal(t, "true", stringify(true))
	assert.Equal(t, "text", stringify("text"))
}
