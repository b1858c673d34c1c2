// Package scheduler runs the periodic "schedules up to date" pass. All
// generation stays demand-triggered; the cron entry only covers equipment
// nobody edited around the year rollover, including the October extension
// into the next year.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/services"
)

type Service struct {
	orchestrator *services.ScheduleOrchestrator
	cron         *cron.Cron
	spec         string
	logger       *zap.Logger
}

func New(orchestrator *services.ScheduleOrchestrator, spec string, logger *zap.Logger) *Service {
	return &Service{
		orchestrator: orchestrator,
		cron:         cron.New(),
		spec:         spec,
		logger:       logger,
	}
}

// Start registers the daily pass and launches the cron loop. It also runs
// the pass once immediately so a long-stopped instance catches up on boot.
func (s *Service) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()
		if err := s.orchestrator.EnsureAllUpToDate(runCtx); err != nil {
			s.logger.Error("pasada de generación de cronogramas falló", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	if err := s.orchestrator.EnsureAllUpToDate(ctx); err != nil {
		s.logger.Error("pasada inicial de cronogramas falló", zap.Error(err))
	}

	s.cron.Start()
	return nil
}

func (s *Service) Stop() {
	<-s.cron.Stop().Done()
}
