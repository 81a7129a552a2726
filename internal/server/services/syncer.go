package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pacpoom/interface-vdc/internal/common"
	"github.com/pacpoom/interface-vdc/internal/logging"
	"github.com/pacpoom/interface-vdc/internal/server/audit"
	"github.com/pacpoom/interface-vdc/internal/server/metrics"
	"github.com/pacpoom/interface-vdc/internal/server/platform"
	"github.com/pacpoom/interface-vdc/internal/server/repositories/repomanager"
)

// ActorAuto marks sync cycles triggered by the scheduler rather than an
// authenticated caller.
const ActorAuto = "AUTO"

// SyncSummary reports one reconciliation cycle. ErrorCount covers both
// rejected and network-failed items.
type SyncSummary struct {
	CycleID       string            `json:"cycle_id"`
	FoundCount    int               `json:"found_count"`
	SuccessCount  int               `json:"success_count"`
	RejectedCount int               `json:"rejected_count"`
	NetworkErrors int               `json:"network_error_count"`
	ErrorCount    int               `json:"error_count"`
	Items         []platform.Result `json:"items"`
}

// SyncService selects vehicles with api_flg=0, pushes each to the external
// platform, and marks the selected batch as synced.
//
// The whole selected batch is flagged synced regardless of per-item
// outcome; rejected and network-failed items are not retried by a later
// cycle unless re-flagged externally. The bulk update is scoped to the
// selected row IDs so vehicles appearing after selection stay pending.
//
// A mutex serializes cycles: scheduler ticks and on-demand calls share one
// code path, and an overlapping trigger fails fast with ErrSyncInProgress
// instead of double-submitting the same batch.
type SyncService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	pusher      platform.Pusher
	audit       audit.Recorder
	logger      logging.Logger

	mu sync.Mutex
}

func NewSyncService(db *sql.DB, m repomanager.RepositoryManager, pusher platform.Pusher, rec audit.Recorder, logger logging.Logger) *SyncService {
	return &SyncService{
		db:          db,
		repomanager: m,
		pusher:      pusher,
		audit:       rec,
		logger:      logger.With("module", "syncer"),
	}
}

// SyncPending runs one reconciliation cycle on behalf of actor. An empty
// pending set is a success with zero processed and no network calls.
func (s *SyncService) SyncPending(ctx context.Context, actor string) (*SyncSummary, error) {
	if !s.mu.TryLock() {
		return nil, common.ErrSyncInProgress
	}
	defer s.mu.Unlock()

	trigger := "manual"
	if actor == ActorAuto {
		trigger = "auto"
	}

	start := time.Now()
	summary := &SyncSummary{CycleID: uuid.NewString()}
	log := s.logger.With("cycle_id", summary.CycleID)

	selected, err := s.repomanager.Vehicles(s.db).SelectPendingSync(ctx)
	if err != nil {
		s.audit.Record(ctx, audit.LevelError, SourceSync, "pending selection failed",
			map[string]string{"cycle_id": summary.CycleID, "error": err.Error()}, actor)
		return nil, err
	}

	summary.FoundCount = len(selected)
	if len(selected) == 0 {
		log.Info(ctx, "no vehicles pending sync")
		metrics.SyncCyclesTotal.WithLabelValues(trigger).Inc()
		metrics.SyncCycleDuration.Observe(time.Since(start).Seconds())
		return summary, nil
	}

	ids := make([]int64, 0, len(selected))
	for _, v := range selected {
		ids = append(ids, v.ID)

		res := s.pusher.Push(ctx, v)
		summary.Items = append(summary.Items, res)
		metrics.SyncItemsTotal.WithLabelValues(string(res.Outcome)).Inc()

		switch res.Outcome {
		case platform.OutcomeSuccess:
			summary.SuccessCount++
			s.audit.Record(ctx, audit.LevelInfo, SourceSync, "vehicle exported",
				map[string]string{"cycle_id": summary.CycleID, "vin": res.VIN}, actor)
		case platform.OutcomeRejected:
			summary.RejectedCount++
			s.audit.Record(ctx, audit.LevelWarn, SourceSync, "vehicle rejected by platform",
				map[string]string{"cycle_id": summary.CycleID, "vin": res.VIN, "detail": res.Message}, actor)
		case platform.OutcomeNetworkError:
			summary.NetworkErrors++
			s.audit.Record(ctx, audit.LevelError, SourceSync, "platform unreachable for vehicle",
				map[string]string{"cycle_id": summary.CycleID, "vin": res.VIN, "detail": res.Message}, actor)
		}
	}
	summary.ErrorCount = summary.RejectedCount + summary.NetworkErrors

	if err := s.repomanager.Vehicles(s.db).MarkSynced(ctx, ids); err != nil {
		s.audit.Record(ctx, audit.LevelError, SourceSync, "batch flag update failed",
			map[string]string{"cycle_id": summary.CycleID, "error": err.Error()}, actor)
		return nil, err
	}

	s.audit.Record(ctx, audit.LevelInfo, SourceSync, "sync cycle completed", summary, actor)
	log.Info(ctx, "sync cycle completed",
		"found", summary.FoundCount, "success", summary.SuccessCount,
		"rejected", summary.RejectedCount, "network_errors", summary.NetworkErrors)

	metrics.SyncCyclesTotal.WithLabelValues(trigger).Inc()
	metrics.SyncCycleDuration.Observe(time.Since(start).Seconds())
	return summary, nil
}
