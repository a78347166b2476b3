// Package reportsrv orquesta la generación y entrega del reporte diario.
package reportsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/craftable/logx"

	"github.com/pelangilabs/moltbot/pkg/config"
	"github.com/pelangilabs/moltbot/report"
)

// Service genera el reporte y lo entrega a los destinatarios configurados
type Service struct {
	builder   *report.Builder
	deliverer report.Deliverer
	channel   string
	cfg       config.ReportConfig
	location  *time.Location
}

func NewService(
	builder *report.Builder,
	deliverer report.Deliverer,
	channel string,
	cfg config.ReportConfig,
) *Service {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logx.Error("⚠️ Invalid report timezone %q, falling back to UTC", cfg.Timezone)
		location = time.UTC
	}

	return &Service{
		builder:   builder,
		deliverer: deliverer,
		channel:   channel,
		cfg:       cfg,
		location:  location,
	}
}

// Location devuelve la zona horaria del reporte
func (s *Service) Location() *time.Location {
	return s.location
}

// RunDaily genera el reporte y lo envía a cada destinatario.
// Devuelve el texto renderizado aunque falle alguna entrega.
func (s *Service) RunDaily(ctx context.Context) (string, error) {
	logx.Info("📋 Generating daily operations report")

	text := s.builder.Build(ctx, s.location)

	var deliveryErr error
	delivered := 0
	for _, recipient := range s.cfg.Recipients {
		if err := s.deliverer.SendTo(ctx, s.channel, recipient, text); err != nil {
			logx.Error("❌ Report delivery to %s failed: %v", recipient, err)
			deliveryErr = report.ErrDeliveryFailed().WithCause(err).WithDetail("recipient", recipient)
			continue
		}
		delivered++
	}

	logx.Info("✅ Daily report delivered to %d/%d recipient(s)", delivered, len(s.cfg.Recipients))
	return text, deliveryErr
}
