// Package scheduler drives the sync reconciliation engine on a fixed
// cadence, independent of request traffic.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/pacpoom/interface-vdc/internal/common"
	"github.com/pacpoom/interface-vdc/internal/logging"
	"github.com/pacpoom/interface-vdc/internal/server/services"
)

// SyncRunner is the slice of the sync engine the scheduler needs.
type SyncRunner interface {
	SyncPending(ctx context.Context, actor string) (*services.SyncSummary, error)
}

// Scheduler fires SyncPending with the AUTO actor every interval. Overlap
// protection lives in the sync engine itself; a tick that finds a cycle
// still running is skipped with a warning.
type Scheduler struct {
	interval time.Duration
	runner   SyncRunner
	logger   logging.Logger
}

func New(interval time.Duration, runner SyncRunner, logger logging.Logger) *Scheduler {
	return &Scheduler{
		interval: interval,
		runner:   runner,
		logger:   logger.With("module", "scheduler"),
	}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info(ctx, "starting sync scheduler", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "stopping sync scheduler")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	summary, err := s.runner.SyncPending(ctx, services.ActorAuto)
	if err != nil {
		if errors.Is(err, common.ErrSyncInProgress) {
			s.logger.Warn(ctx, "previous sync cycle still running, tick skipped")
			return
		}
		s.logger.Error(ctx, "scheduled sync cycle failed", "error", err)
		return
	}

	s.logger.Info(ctx, "scheduled sync cycle finished",
		"found", summary.FoundCount, "success", summary.SuccessCount, "errors", summary.ErrorCount)
}
