package worker

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// StockSweeper re-checks inventory levels. Satisfied by inventory.Service.
type StockSweeper interface {
	CheckStockLevels(ctx context.Context) (int, error)
}

// Scheduler owns the background jobs that run alongside the HTTP server.
type Scheduler struct {
	cron   *gocron.Scheduler
	logger zerolog.Logger
}

func NewScheduler(logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   gocron.NewScheduler(time.UTC),
		logger: logger,
	}
}

// ScheduleStockSweep runs the low-stock sweep on a fixed interval.
func (s *Scheduler) ScheduleStockSweep(sweeper StockSweeper, every time.Duration) error {
	_, err := s.cron.Every(every).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		notified, err := sweeper.CheckStockLevels(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("stock sweep failed")
			return
		}
		if notified > 0 {
			s.logger.Info().Int("notified", notified).Msg("stock sweep flagged low items")
		}
	})
	return err
}

// Start launches the jobs without blocking.
func (s *Scheduler) Start() {
	s.cron.StartAsync()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
