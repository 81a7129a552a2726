// Package services contains the server-side business logic: the vehicle
// lifecycle state machine, the sync reconciliation engine, and login.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/looplab/fsm"

	"github.com/pacpoom/interface-vdc/internal/common"
	"github.com/pacpoom/interface-vdc/internal/dbx"
	"github.com/pacpoom/interface-vdc/internal/logging"
	"github.com/pacpoom/interface-vdc/internal/server/audit"
	"github.com/pacpoom/interface-vdc/internal/server/metrics"
	"github.com/pacpoom/interface-vdc/internal/server/models"
	"github.com/pacpoom/interface-vdc/internal/server/repositories/repomanager"
)

// TransitionResult is the caller-visible outcome of a lifecycle transition.
// The numeric values are the API contract and must not change.
type TransitionResult int

const (
	// ResultNotFound means the VIN does not exist.
	ResultNotFound TransitionResult = 0
	// ResultSuccess means the transition was applied.
	ResultSuccess TransitionResult = 1
	// ResultConflict means the transition was already applied; state unchanged.
	ResultConflict TransitionResult = 2
	// ResultBlocked means delivery was attempted before receipt; state unchanged.
	ResultBlocked TransitionResult = 3
)

// Lifecycle states, derived from the milestone flags (never stored).
const (
	StateAwaitingReceipt = "AWAITING_RECEIPT"
	StateReceived        = "RECEIVED"
	StateDelivered       = "DELIVERED"
)

// Lifecycle events.
const (
	EventReceive = "receive"
	EventDeliver = "deliver"
)

// Audit source tags.
const (
	SourceReceiving = "RECEIVING"
	SourceDelivery  = "DELIVERY"
	SourceSync      = "SYNC"
	SourceAuth      = "AUTH"
)

// newLifecycleFSM builds the transition graph positioned at the given
// state. DELIVERED is terminal; no event ever moves a vehicle backwards.
func newLifecycleFSM(state string) *fsm.FSM {
	return fsm.NewFSM(
		state,
		fsm.Events{
			{Name: EventReceive, Src: []string{StateAwaitingReceipt}, Dst: StateReceived},
			{Name: EventDeliver, Src: []string{StateReceived}, Dst: StateDelivered},
		},
		fsm.Callbacks{},
	)
}

// vehicleState derives the lifecycle state from the stored flags. The
// combination delivered=1, received=0 is outside the legal domain and
// yields "".
func vehicleState(v *models.Vehicle) string {
	switch {
	case v.DeliveredFlag == 1 && v.ReceivedFlag == 1:
		return StateDelivered
	case v.ReceivedFlag == 1:
		return StateReceived
	case v.ReceivedFlag == 0 && v.DeliveredFlag == 0:
		return StateAwaitingReceipt
	default:
		return ""
	}
}

// LifecycleService validates and applies the receive and deliver
// transitions. Each transition runs in one transaction with the gaoff row
// locked, so concurrent transitions on the same VIN are linearized and the
// precondition checks observe a consistent snapshot.
type LifecycleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	audit       audit.Recorder
	logger      logging.Logger
}

func NewLifecycleService(db *sql.DB, m repomanager.RepositoryManager, rec audit.Recorder, logger logging.Logger) *LifecycleService {
	return &LifecycleService{
		db:          db,
		repomanager: m,
		audit:       rec,
		logger:      logger.With("module", "lifecycle"),
	}
}

// Status returns the vehicle for the given VIN, or common.ErrNotFound.
func (s *LifecycleService) Status(ctx context.Context, vin string) (*models.Vehicle, error) {
	return s.repomanager.Vehicles(s.db).GetByVIN(ctx, vin)
}

// Receive applies the PDI-in milestone. Derived records (label, inbound
// interface row) are written after the transaction commits, best-effort:
// their failure is audited but never rolls back the milestone.
func (s *LifecycleService) Receive(ctx context.Context, vin string, receivedAt time.Time, actor string) (TransitionResult, error) {
	var result TransitionResult
	var vehicle *models.Vehicle

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Vehicles(tx)

		v, err := repo.GetByVINForUpdate(ctx, vin)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				result = ResultNotFound
				return nil
			}
			return err
		}

		state := vehicleState(v)
		if state == "" {
			return fmt.Errorf("illegal flag combination for vin %s: %w", vin, common.ErrInternal)
		}

		machine := newLifecycleFSM(state)
		if err := machine.Event(ctx, EventReceive); err != nil {
			// already received (or delivered); the milestone stands as-is
			result = ResultConflict
			return nil
		}

		if err := repo.MarkReceived(ctx, vin, receivedAt); err != nil {
			// the lock was held, so an empty update is a logic error
			return fmt.Errorf("receive update failed for vin %s: %w: %w", vin, err, common.ErrInternal)
		}

		result = ResultSuccess
		vehicle = v
		return nil
	})

	if err != nil {
		metrics.TransitionsTotal.WithLabelValues("receive", "error").Inc()
		s.audit.Record(ctx, audit.LevelError, SourceReceiving, "receive transition failed",
			map[string]string{"vin": vin, "error": err.Error()}, actor)
		return 0, err
	}

	switch result {
	case ResultNotFound:
		metrics.TransitionsTotal.WithLabelValues("receive", "not_found").Inc()
		s.audit.Record(ctx, audit.LevelWarn, SourceReceiving, "vin not found",
			map[string]string{"vin": vin}, actor)
	case ResultConflict:
		metrics.TransitionsTotal.WithLabelValues("receive", "conflict").Inc()
		s.audit.Record(ctx, audit.LevelWarn, SourceReceiving, "vehicle already received",
			map[string]string{"vin": vin}, actor)
	case ResultSuccess:
		metrics.TransitionsTotal.WithLabelValues("receive", "success").Inc()
		s.audit.Record(ctx, audit.LevelInfo, SourceReceiving, "vehicle received",
			map[string]string{"vin": vin}, actor)
		s.writeDerivedRecords(ctx, vehicle, receivedAt, actor)
	}

	return result, nil
}

// Deliver applies the delivery milestone. Precedence of the checks follows
// the contract: already-delivered wins over not-yet-received.
func (s *LifecycleService) Deliver(ctx context.Context, vin string, deliveredAt time.Time, actor string) (TransitionResult, error) {
	var result TransitionResult

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Vehicles(tx)

		v, err := repo.GetByVINForUpdate(ctx, vin)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				result = ResultNotFound
				return nil
			}
			return err
		}

		if v.DeliveredFlag == 1 {
			result = ResultConflict
			return nil
		}
		if v.ReceivedFlag == 0 {
			result = ResultBlocked
			return nil
		}

		machine := newLifecycleFSM(vehicleState(v))
		if err := machine.Event(ctx, EventDeliver); err != nil {
			return fmt.Errorf("illegal delivery for vin %s: %w: %w", vin, err, common.ErrInternal)
		}

		if err := repo.MarkDelivered(ctx, vin, deliveredAt); err != nil {
			return fmt.Errorf("delivery update failed for vin %s: %w: %w", vin, err, common.ErrInternal)
		}

		result = ResultSuccess
		return nil
	})

	if err != nil {
		metrics.TransitionsTotal.WithLabelValues("deliver", "error").Inc()
		s.audit.Record(ctx, audit.LevelError, SourceDelivery, "deliver transition failed",
			map[string]string{"vin": vin, "error": err.Error()}, actor)
		return 0, err
	}

	switch result {
	case ResultNotFound:
		metrics.TransitionsTotal.WithLabelValues("deliver", "not_found").Inc()
		s.audit.Record(ctx, audit.LevelWarn, SourceDelivery, "vin not found",
			map[string]string{"vin": vin}, actor)
	case ResultConflict:
		metrics.TransitionsTotal.WithLabelValues("deliver", "conflict").Inc()
		s.audit.Record(ctx, audit.LevelWarn, SourceDelivery, "vehicle already delivered",
			map[string]string{"vin": vin}, actor)
	case ResultBlocked:
		metrics.TransitionsTotal.WithLabelValues("deliver", "blocked").Inc()
		s.audit.Record(ctx, audit.LevelWarn, SourceDelivery, "vehicle waiting for receive",
			map[string]string{"vin": vin}, actor)
	case ResultSuccess:
		metrics.TransitionsTotal.WithLabelValues("deliver", "success").Inc()
		s.audit.Record(ctx, audit.LevelInfo, SourceDelivery, "vehicle delivered",
			map[string]string{"vin": vin}, actor)
		s.resetOutboundFlag(ctx, vin, actor)
	}

	return result, nil
}

// writeDerivedRecords resolves model/color from the catalog and writes the
// label and inbound-interface rows. The two inserts are attempted
// independently; the uniqueness constraints on vin_number back up the
// once-per-transition guarantee enforced above.
func (s *LifecycleService) writeDerivedRecords(ctx context.Context, v *models.Vehicle, receivedAt time.Time, actor string) {
	entry, err := s.repomanager.Catalog(s.db).GetByVehicleCode(ctx, v.VehicleCode)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.audit.Record(ctx, audit.LevelWarn, SourceReceiving, "unmatched vehicle code, derived records skipped",
				map[string]string{"vin": v.VIN, "vc_code": v.VehicleCode}, actor)
			return
		}
		s.audit.Record(ctx, audit.LevelError, SourceReceiving, "catalog lookup failed",
			map[string]string{"vin": v.VIN, "vc_code": v.VehicleCode, "error": err.Error()}, actor)
		return
	}

	label := &models.Label{
		VIN:          v.VIN,
		VehicleCode:  v.VehicleCode,
		ModelName:    entry.ModelName,
		ColorName:    entry.ColorName,
		Location:     "-",
		PrintFlag:    0,
		ReceivedTime: receivedAt,
	}
	if _, err := s.repomanager.Labels(s.db).Create(ctx, label); err != nil {
		s.audit.Record(ctx, audit.LevelError, SourceReceiving, "label record insert failed",
			map[string]string{"vin": v.VIN, "error": err.Error()}, actor)
	}

	rec := &models.InboundInterface{VehicleID: v.ID, VIN: v.VIN}
	if _, err := s.repomanager.Interfaces(s.db).CreateInbound(ctx, rec); err != nil {
		s.audit.Record(ctx, audit.LevelError, SourceReceiving, "interface record insert failed",
			map[string]string{"vin": v.VIN, "error": err.Error()}, actor)
	}
}

// resetOutboundFlag clears the pgi_interface ready flag so the downstream
// system re-processes the vehicle. Best-effort.
func (s *LifecycleService) resetOutboundFlag(ctx context.Context, vin string, actor string) {
	err := s.repomanager.Interfaces(s.db).ResetOutboundReady(ctx, vin)
	if err == nil {
		return
	}
	if errors.Is(err, common.ErrNotFound) {
		s.audit.Record(ctx, audit.LevelWarn, SourceDelivery, "no outbound interface row to reset",
			map[string]string{"vin": vin}, actor)
		return
	}
	s.audit.Record(ctx, audit.LevelError, SourceDelivery, "outbound flag reset failed",
		map[string]string{"vin": vin, "error": err.Error()}, actor)
}
