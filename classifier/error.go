package classifier

import (
	"net/http"

	"github.com/Abraxas-365/craftable/errx"
)

var ErrRegistry = errx.NewRegistry("CLASSIFIER")

var (
	CodeClassificationFailed = ErrRegistry.Register("CLASSIFICATION_FAILED", errx.TypeExternal, http.StatusBadGateway, "Classification failed")
	CodeEmptyPrompt          = ErrRegistry.Register("EMPTY_PROMPT", errx.TypeValidation, http.StatusBadRequest, "Classification prompt is empty")
)

func ErrClassificationFailed() *errx.Error {
	return ErrRegistry.New(CodeClassificationFailed)
}

func ErrEmptyPrompt() *errx.Error {
	return ErrRegistry.New(CodeEmptyPrompt)
}
