// Package scheduler dispara el reporte diario según la expresión cron configurada.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pelangilabs/moltbot/report"
	"github.com/pelangilabs/moltbot/report/reportsrv"
)

// ReportScheduler ejecuta el reporte diario en los instantes que marca el cron
type ReportScheduler struct {
	service    *reportsrv.Service
	cronParser cron.Parser
	expression string
	stopChan   chan struct{}
	running    bool
}

func NewReportScheduler(service *reportsrv.Service, cronExpression string) (*ReportScheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	if _, err := parser.Parse(cronExpression); err != nil {
		return nil, report.ErrInvalidSchedule().
			WithCause(err).
			WithDetail("cron_expression", cronExpression)
	}

	return &ReportScheduler{
		service:    service,
		cronParser: parser,
		expression: cronExpression,
		stopChan:   make(chan struct{}),
	}, nil
}

// Start bloquea revisando cada minuto si toca generar el reporte
func (s *ReportScheduler) Start(ctx context.Context) {
	if s.running {
		log.Println("⚠️  Report scheduler already running")
		return
	}
	s.running = true

	schedule, _ := s.cronParser.Parse(s.expression)
	location := s.service.Location()

	nextRun := schedule.Next(time.Now().In(location))
	log.Printf("⏰ Report scheduler started - next run: %s", nextRun.Format(time.RFC3339))

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️  Report scheduler stopped (context done)")
			return
		case <-s.stopChan:
			log.Println("⏹️  Report scheduler stopped")
			return
		case <-ticker.C:
			now := time.Now().In(location)
			if now.Before(nextRun) {
				continue
			}

			nextRun = schedule.Next(now)
			log.Printf("▶️  Running scheduled daily report - next run: %s", nextRun.Format(time.RFC3339))

			go func() {
				runCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				defer cancel()

				if _, err := s.service.RunDaily(runCtx); err != nil {
					log.Printf("❌ Scheduled report run failed: %v", err)
				}
			}()
		}
	}
}

// Stop detiene el scheduler
func (s *ReportScheduler) Stop() {
	if !s.running {
		return
	}
	close(s.stopChan)
	s.running = false
}
