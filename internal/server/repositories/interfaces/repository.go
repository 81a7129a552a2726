// Package interfaces persists the records exchanged with downstream
// systems: vc_interface rows written on receive (consumed by the printing
// process) and the pgi_interface ready flag reset on delivery.
package interfaces

import (
	"context"

	"github.com/pacpoom/interface-vdc/internal/server/models"
)

type Repository interface {
	// CreateInbound inserts a vc_interface row. Unique on vin_number.
	CreateInbound(ctx context.Context, rec *models.InboundInterface) (*models.InboundInterface, error)

	// ResetOutboundReady sets ready_flg=0 on the pgi_interface row for
	// the VIN, signalling the downstream system to re-process. Missing
	// rows yield common.ErrNotFound.
	ResetOutboundReady(ctx context.Context, vin string) error
}
