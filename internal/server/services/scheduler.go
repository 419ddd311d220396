package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rabetweb/internal/logging"
	"github.com/robfig/cron/v3"
)

// DependencyScheduler refreshes the dependency report on a cron schedule.
type DependencyScheduler struct {
	cron   *cron.Cron
	svc    *DependencyService
	logger logging.Logger
}

// NewDependencyScheduler refreshes svc on the cron schedule.
func NewDependencyScheduler(svc *DependencyService, schedule string, logger logging.Logger) (*DependencyScheduler, error) {
	s := &DependencyScheduler{
		cron:   cron.New(),
		svc:    svc,
		logger: logger.With("module", "scheduler"),
	}

	if _, err := s.cron.AddFunc(schedule, s.refresh); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *DependencyScheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.svc.Refresh(ctx); err != nil {
		s.logger.Warn(ctx, "scheduled dependency refresh failed", "error", err)
	}
}

// Start begins running scheduled refreshes.
func (s *DependencyScheduler) Start() {
	s.cron.Start()
	s.logger.Info(context.Background(), "dependency scheduler started")
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *DependencyScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info(context.Background(), "dependency scheduler stopped")
}
