package engine

import (
	"net/http"
	"strings"

	"github.com/Abraxas-365/craftable/errx"
)

var ErrRegistry = errx.NewRegistry("ENGINE")

var (
	// Definition errors
	CodeDefinitionNotFound  = ErrRegistry.Register("DEFINITION_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Workflow definition not found")
	CodeDefinitionMalformed = ErrRegistry.Register("DEFINITION_MALFORMED", errx.TypeValidation, http.StatusBadRequest, "Workflow definition is malformed")
	CodeWorkflowExists      = ErrRegistry.Register("WORKFLOW_ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "Workflow already exists")

	// Execution faults: degradan la invocación sin bloquearla; los ejecutores
	// los reportan como FaultInfo con el Kind derivado del código
	CodeActionFailed         = ErrRegistry.Register("ACTION_FAILED", errx.TypeExternal, http.StatusBadGateway, "External action failed")
	CodeClassificationFailed = ErrRegistry.Register("CLASSIFICATION_FAILED", errx.TypeExternal, http.StatusBadGateway, "Classification failed")
	CodeLoopBoundExceeded    = ErrRegistry.Register("LOOP_BOUND_EXCEEDED", errx.TypeInternal, http.StatusInternalServerError, "Execution loop bound exceeded")
	CodeStateCorrupted       = ErrRegistry.Register("STATE_CORRUPTED", errx.TypeInternal, http.StatusInternalServerError, "Workflow state position out of range")
	CodeJumpUnresolved       = ErrRegistry.Register("JUMP_UNRESOLVED", errx.TypeValidation, http.StatusBadRequest, "Evaluation jump target not found")
	CodeDefinitionDegraded   = ErrRegistry.Register("DEFINITION_DEGRADED", errx.TypeValidation, http.StatusBadRequest, "Node configuration could not be extracted")
	CodeNodeNotFound         = ErrRegistry.Register("NODE_NOT_FOUND", errx.TypeValidation, http.StatusBadRequest, "Edge references a missing node")
	CodeSendFailed           = ErrRegistry.Register("SEND_FAILED", errx.TypeExternal, http.StatusBadGateway, "Side-channel send failed")
)

// Error constructor functions
func ErrDefinitionNotFound() *errx.Error {
	return ErrRegistry.New(CodeDefinitionNotFound)
}

func ErrDefinitionMalformed() *errx.Error {
	return ErrRegistry.New(CodeDefinitionMalformed)
}

func ErrWorkflowAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeWorkflowExists)
}

// NewFault construye un FaultInfo con el Kind derivado del código registrado
func NewFault(code errx.Code, position, detail string) *FaultInfo {
	return &FaultInfo{
		Kind:     FaultKind(code),
		Position: position,
		Detail:   detail,
	}
}

// FaultKind traduce un código del registro a la etiqueta corta de falla
func FaultKind(code errx.Code) string {
	return strings.ToLower(strings.TrimPrefix(string(code), "ENGINE_"))
}
