// Package reportapi expone la ejecución manual del reporte diario.
package reportapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pelangilabs/moltbot/report/reportsrv"
)

// ReportHandler maneja las peticiones HTTP del reporte
type ReportHandler struct {
	service *reportsrv.Service
}

func NewReportHandler(service *reportsrv.Service) *ReportHandler {
	return &ReportHandler{service: service}
}

// RunDailyReport dispara el reporte diario fuera de horario
// POST /api/ops/reports/daily/run
func (h *ReportHandler) RunDailyReport(c *fiber.Ctx) error {
	text, err := h.service.RunDaily(c.Context())
	if err != nil {
		// El texto se devuelve igualmente para que el operador lo vea
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"report": text,
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"report": text,
	})
}
