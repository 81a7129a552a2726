package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pacpoom/interface-vdc/internal/common"
	"github.com/pacpoom/interface-vdc/internal/dbx"
	"github.com/pacpoom/interface-vdc/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByVehicleCode(ctx context.Context, vehicleCode string) (*models.CatalogEntry, error) {
	query :=
		`SELECT vc_code, model_name, color_name FROM vc_master
		 WHERE vc_code = $1
		 `

	entry := &models.CatalogEntry{}
	err := r.db.QueryRowContext(ctx, query, vehicleCode).
		Scan(&entry.VehicleCode, &entry.ModelName, &entry.ColorName)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entry, nil
}
