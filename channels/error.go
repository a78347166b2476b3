package channels

import (
	"net/http"

	"github.com/Abraxas-365/craftable/errx"
)

var ErrRegistry = errx.NewRegistry("CHANNEL")

var (
	CodeUnknownChannel          = ErrRegistry.Register("UNKNOWN_CHANNEL", errx.TypeNotFound, http.StatusNotFound, "Unknown channel type")
	CodeSendFailed              = ErrRegistry.Register("SEND_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to send message")
	CodeInvalidWebhookSignature = ErrRegistry.Register("INVALID_WEBHOOK_SIGNATURE", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid webhook signature")
	CodeProviderAPIError        = ErrRegistry.Register("PROVIDER_API_ERROR", errx.TypeExternal, http.StatusBadGateway, "Provider API error")
)

func ErrUnknownChannel() *errx.Error {
	return ErrRegistry.New(CodeUnknownChannel)
}

func ErrSendFailed() *errx.Error {
	return ErrRegistry.New(CodeSendFailed)
}

func ErrInvalidWebhookSignature() *errx.Error {
	return ErrRegistry.New(CodeInvalidWebhookSignature)
}

func ErrProviderAPIError() *errx.Error {
	return ErrRegistry.New(CodeProviderAPIError)
}
