package actioninvoker

import (
	"net/http"

	"github.com/Abraxas-365/craftable/errx"
)

var ErrRegistry = errx.NewRegistry("ACTION")

var (
	CodeUnknownKind       = ErrRegistry.Register("UNKNOWN_KIND", errx.TypeValidation, http.StatusBadRequest, "Unknown action kind")
	CodeInvalidParameters = ErrRegistry.Register("INVALID_PARAMETERS", errx.TypeValidation, http.StatusBadRequest, "Invalid action parameters")
	CodeRequestFailed     = ErrRegistry.Register("REQUEST_FAILED", errx.TypeExternal, http.StatusBadGateway, "Action request failed")
	CodeBadStatus         = ErrRegistry.Register("BAD_STATUS", errx.TypeExternal, http.StatusBadGateway, "Action returned a non-success status")
	CodeSendFailed        = ErrRegistry.Register("SEND_FAILED", errx.TypeExternal, http.StatusBadGateway, "Notify send failed")
)

func ErrUnknownKind() *errx.Error {
	return ErrRegistry.New(CodeUnknownKind)
}

func ErrInvalidParameters() *errx.Error {
	return ErrRegistry.New(CodeInvalidParameters)
}

func ErrRequestFailed() *errx.Error {
	return ErrRegistry.New(CodeRequestFailed)
}

func ErrBadStatus() *errx.Error {
	return ErrRegistry.New(CodeBadStatus)
}

func ErrSendFailed() *errx.Error {
	return ErrRegistry.New(CodeSendFailed)
}
