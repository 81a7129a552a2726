// Package catalog reads the vc_master vehicle-code catalog. The catalog is
// maintained by another system; this service only joins against it.
package catalog

import (
	"context"

	"github.com/pacpoom/interface-vdc/internal/server/models"
)

type Repository interface {
	// GetByVehicleCode resolves a vehicle code to model/color, or
	// common.ErrNotFound for an unmatched code.
	GetByVehicleCode(ctx context.Context, vehicleCode string) (*models.CatalogEntry, error)
}
