// Package labels persists vc_label rows derived from receive transitions.
package labels

import (
	"context"

	"github.com/pacpoom/interface-vdc/internal/server/models"
)

type Repository interface {
	// Create inserts a label row. The vin_number uniqueness constraint is
	// the defense-in-depth guard against a duplicated derived write.
	Create(ctx context.Context, label *models.Label) (*models.Label, error)
}
