// Package auditlog appends api_logs rows. The table is append-only; rows
// are never updated or deleted by this service.
package auditlog

import (
	"context"

	"github.com/pacpoom/interface-vdc/internal/server/models"
)

type Repository interface {
	Append(ctx context.Context, entry *models.LogEntry) error
}
