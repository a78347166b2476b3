package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// TemplateResolver reemplaza referencias {{dotted.path}} contra un contexto
// en capas. Solo hace lookup de rutas con puntos; nunca evalúa expresiones y
// nunca falla por rutas ausentes.
type TemplateResolver struct {
	placeholderRegex *regexp.Regexp
}

// NewTemplateResolver crea un nuevo resolvedor de plantillas
func NewTemplateResolver() *TemplateResolver {
	return &TemplateResolver{
		placeholderRegex: regexp.MustCompile(`\{\{([^}]+)\}\}`),
	}
}

// Resolve sustituye cada {{ruta}} por el valor en el contexto, o por la
// cadena vacía si la ruta no existe
func (r *TemplateResolver) Resolve(s string, context map[string]any) string {
	return r.placeholderRegex.ReplaceAllStringFunc(s, func(match string) string {
		path := strings.TrimSpace(r.placeholderRegex.FindStringSubmatch(match)[1])
		value, found := getNestedValue(context, path)
		if !found || value == nil {
			return ""
		}
		return stringify(value)
	})
}

// ResolveMap sustituye plantillas en cada valor string del mapa,
// recursivamente en mapas y slices anidados
func (r *TemplateResolver) ResolveMap(data map[string]any, context map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for key, value := range data {
		out[key] = r.resolveValue(value, context)
	}
	return out
}

func (r *TemplateResolver) resolveValue(value any, context map[string]any) any {
	switch v := value.(type) {
	case string:
		return r.Resolve(v, context)
	case map[string]any:
		return r.ResolveMap(v, context)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = r.resolveValue(item, context)
		}
		return out
	default:
		return value
	}
}

// BuildTemplateContext arma el contexto en capas para la resolución de
// plantillas. Precedencia de mayor a menor: derivedOutputs, collectedData,
// identity. Los namespaces también quedan expuestos como rutas explícitas
// (collectedData.name, derivedOutputs.x, identity.phone).
func BuildTemplateContext(state WorkflowState, identity Identity) map[string]any {
	collected := make(map[string]any, len(state.CollectedData))
	for k, v := range state.CollectedData {
		collected[k] = v
	}

	derived := make(map[string]any, len(state.DerivedOutputs))
	for k, v := range state.DerivedOutputs {
		derived[k] = v
	}

	identityMap := map[string]any{
		"name":    identity.Name,
		"phone":   identity.Phone,
		"channel": identity.Channel,
	}

	context := make(map[string]any)

	// merged bare keys, lowest precedence first
	for k, v := range identityMap {
		context[k] = v
	}
	for k, v := range collected {
		context[k] = v
	}
	for k, v := range derived {
		context[k] = v
	}

	context["identity"] = identityMap
	context["collectedData"] = collected
	context["derivedOutputs"] = derived

	return context
}

// getNestedValue hace lookup de una ruta con puntos sobre mapas anidados.
// Cuando el recorrido por segmentos no llega a un valor, el resto de la ruta
// se intenta como clave literal en el nivel actual: los outputs con namespace
// de nodo se guardan bajo claves planas del tipo "nodo.clave".
func getNestedValue(data map[string]any, path string) (any, bool) {
	return lookupPath(data, strings.Split(path, "."))
}

func lookupPath(m map[string]any, parts []string) (any, bool) {
	if len(parts) == 0 {
		return nil, false
	}

	if value, ok := m[parts[0]]; ok {
		if len(parts) == 1 {
			return value, true
		}
		if sub, ok := value.(map[string]any); ok {
			if nested, found := lookupPath(sub, parts[1:]); found {
				return nested, true
			}
		}
	}

	if len(parts) > 1 {
		if value, ok := m[strings.Join(parts, ".")]; ok {
			return value, true
		}
	}

	return nil, false
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		// sin decimales espurios para enteros que llegan por JSON
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
