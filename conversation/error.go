package conversation

import (
	"net/http"

	"github.com/Abraxas-365/craftable/errx"
)

var ErrRegistry = errx.NewRegistry("CONV")

var (
	CodeConversationNotFound = ErrRegistry.Register("CONVERSATION_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Conversation not found")
	CodeDuplicateMessage     = ErrRegistry.Register("DUPLICATE_MESSAGE", errx.TypeConflict, http.StatusConflict, "Message already processed")
	CodeRateLimited          = ErrRegistry.Register("RATE_LIMITED", errx.TypeBusiness, http.StatusTooManyRequests, "Sender is rate limited")
	CodeConversationBusy     = ErrRegistry.Register("CONVERSATION_BUSY", errx.TypeConflict, http.StatusConflict, "Conversation is already being processed")
	CodeExecutionTimeout     = ErrRegistry.Register("EXECUTION_TIMEOUT", errx.TypeExternal, http.StatusGatewayTimeout, "Engine execution timed out")
	CodeArchiveFailed        = ErrRegistry.Register("ARCHIVE_FAILED", errx.TypeExternal, http.StatusBadGateway, "Transcript archive failed")
)

func ErrConversationNotFound() *errx.Error {
	return ErrRegistry.New(CodeConversationNotFound)
}

func ErrDuplicateMessage() *errx.Error {
	return ErrRegistry.New(CodeDuplicateMessage)
}

func ErrRateLimited() *errx.Error {
	return ErrRegistry.New(CodeRateLimited)
}

func ErrConversationBusy() *errx.Error {
	return ErrRegistry.New(CodeConversationBusy)
}

func ErrExecutionTimeout() *errx.Error {
	return ErrRegistry.New(CodeExecutionTimeout)
}

func ErrArchiveFailed() *errx.Error {
	return ErrRegistry.New(CodeArchiveFailed)
}
