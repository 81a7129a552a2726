// Package vehicles persists gaoff rows, the single source of truth for
// each vehicle's milestone flags and timestamps.
package vehicles

import (
	"context"
	"time"

	"github.com/pacpoom/interface-vdc/internal/server/models"
)

type Repository interface {
	// GetByVIN returns the vehicle or common.ErrNotFound.
	GetByVIN(ctx context.Context, vin string) (*models.Vehicle, error)

	// GetByVINForUpdate locks the row for the duration of the surrounding
	// transaction, so concurrent transitions on the same VIN are serialized.
	GetByVINForUpdate(ctx context.Context, vin string) (*models.Vehicle, error)

	// MarkReceived sets pdiin_flg=1 and pdiin_time. The update predicate
	// requires pdiin_flg=0, so a repeated call changes nothing.
	MarkReceived(ctx context.Context, vin string, receivedAt time.Time) error

	// MarkDelivered sets delivery_flg=1 and delivery_time. The update
	// predicate requires delivery_flg=0.
	MarkDelivered(ctx context.Context, vin string, deliveredAt time.Time) error

	// SelectPendingSync returns every vehicle with api_flg=0.
	SelectPendingSync(ctx context.Context) ([]*models.Vehicle, error)

	// MarkSynced sets api_flg=1 for exactly the given row IDs.
	MarkSynced(ctx context.Context, ids []int64) error
}
