package processor

import (
	"context"
	"time"

	"vidasmart/inventory-worker/internal/app/worker/service"
	"vidasmart/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronScheduler запускает ежедневный снимок остатков
type CronScheduler struct {
	cron        *cron.Cron
	snapshotSvc service.SnapshotServiceInterface
}

func NewCronScheduler(snapshotSvc service.SnapshotServiceInterface, location *time.Location) *CronScheduler {
	if location == nil {
		location = time.UTC
	}
	cronLogger := logger.Logger()
	printf := cron.PrintfLogger(&cronLogger)

	c := cron.New(
		cron.WithLocation(location),
		cron.WithLogger(printf),
		// долгий снимок не должен накладываться на следующий запуск
		cron.WithChain(cron.Recover(printf), cron.SkipIfStillRunning(printf)),
	)

	return &CronScheduler{
		cron:        c,
		snapshotSvc: snapshotSvc,
	}
}

// Start регистрирует задачу; при runOnStart снимок делается сразу, не дожидаясь расписания
func (s *CronScheduler) Start(ctx context.Context, schedule string, runOnStart bool) error {
	logger.Info().Str("schedule", schedule).Msg("Starting cron scheduler")

	if _, err := s.cron.AddFunc(schedule, func() { s.runSnapshot(ctx) }); err != nil {
		return err
	}

	s.cron.Start()

	if runOnStart {
		logger.Info().Msg("Performing initial stock snapshot")
		s.runSnapshot(ctx)
	}

	return nil
}

func (s *CronScheduler) runSnapshot(ctx context.Context) {
	if _, err := s.snapshotSvc.TakeSnapshot(ctx); err != nil {
		logger.Error().Err(err).Msg("Stock snapshot failed")
		return
	}
	logger.Info().Msg("Stock snapshot completed")
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
