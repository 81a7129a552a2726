package labels

import (
	"context"
	"fmt"

	"github.com/pacpoom/interface-vdc/internal/dbx"
	"github.com/pacpoom/interface-vdc/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, label *models.Label) (*models.Label, error) {
	query :=
		`INSERT INTO vc_label (vin_number, vc_code, model_name, color_name, location, print_flg, pdiin_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		label.VIN, label.VehicleCode, label.ModelName, label.ColorName,
		label.Location, label.PrintFlag, label.ReceivedTime).Scan(&label.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return label, nil
}
