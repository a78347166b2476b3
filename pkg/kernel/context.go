package kernel

// ============================================================================
// Context Types - Tipos para context.Context
// ============================================================================

// OperatorContext es el contexto del operador autenticado que se inyecta en cada request
type OperatorContext struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

// IsValid verifica si el OperatorContext es válido
func (o *OperatorContext) IsValid() bool {
	return o.Username != ""
}

// ============================================================================
// Context Keys - Claves para context.Context
// ============================================================================

type ContextKey string

const (
	// OperatorContextKey es la clave para almacenar OperatorContext en context.Context
	OperatorContextKey ContextKey = "operator_context"

	// RequestIDKey es la clave para almacenar el ID de la petición
	RequestIDKey ContextKey = "request_id"
)
