// Package users reads api_user rows for login. User administration happens
// outside this service (see cmd/hashgen for seeding hashes).
package users

import (
	"context"

	"github.com/pacpoom/interface-vdc/internal/server/models"
)

type Repository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
