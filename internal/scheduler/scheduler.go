// Package scheduler runs the periodic maintenance jobs of the gateway.
package scheduler

import (
	"log/slog"

	"goduck/internal/db"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	db     db.Service
	c      *cron.Cron
	logger *slog.Logger
}

func NewScheduler(dbService db.Service, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     dbService,
		c:      cron.New(),
		logger: logger.With("component", "scheduler"),
	}
}

// Start schedules the daily usage-count reset and starts the cron loop.
func (s *Scheduler) Start() {
	_, err := s.c.AddFunc("@daily", func() {
		s.logger.Info("Running daily job: resetting all API key usage counts")
		if err := s.db.ResetAllAPIKeyUsage(); err != nil {
			s.logger.Error("Error resetting API key usage", "error", err)
		}
	})
	if err != nil {
		// "@daily" is a fixed cron expression; AddFunc cannot fail on it.
		s.logger.Error("Error scheduling daily job", "error", err)
		return
	}
	s.c.Start()
}

func (s *Scheduler) Stop() {
	s.c.Stop()
}
