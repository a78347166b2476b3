package report

import (
	"net/http"

	"github.com/Abraxas-365/craftable/errx"
)

var ErrRegistry = errx.NewRegistry("REPORT")

var (
	CodePMSUnavailable  = ErrRegistry.Register("PMS_UNAVAILABLE", errx.TypeExternal, http.StatusBadGateway, "PMS API unavailable")
	CodeDeliveryFailed  = ErrRegistry.Register("DELIVERY_FAILED", errx.TypeExternal, http.StatusBadGateway, "Report delivery failed")
	CodeInvalidSchedule = ErrRegistry.Register("INVALID_SCHEDULE", errx.TypeValidation, http.StatusBadRequest, "Invalid report schedule")
)

func ErrPMSUnavailable() *errx.Error {
	return ErrRegistry.New(CodePMSUnavailable)
}

func ErrDeliveryFailed() *errx.Error {
	return ErrRegistry.New(CodeDeliveryFailed)
}

func ErrInvalidSchedule() *errx.Error {
	return ErrRegistry.New(CodeInvalidSchedule)
}
