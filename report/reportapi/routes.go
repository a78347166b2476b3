package reportapi

import "github.com/gofiber/fiber/v2"

// ReportRoutes registra las rutas del reporte
type ReportRoutes struct {
	handler *ReportHandler
	auth    fiber.Handler
}

func NewReportRoutes(handler *ReportHandler, auth fiber.Handler) *ReportRoutes {
	return &ReportRoutes{handler: handler, auth: auth}
}

func (rr *ReportRoutes) Setup(app *fiber.App) {
	group := app.Group("/api/ops/reports", rr.auth)

	group.Post("/daily/run", rr.handler.RunDailyReport)
}
