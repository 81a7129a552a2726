package interfaces

import (
	"context"
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

func (r *PostgresRepository) CreateInbound(ctx context.Context, rec *models.InboundInterface) (*models.InboundInterface, error) {
	query :=
		`INSERT INTO vc_interface (gaoff_id, vin_number, interface_flg, print_flg)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		rec.VehicleID, rec.VIN, rec.InterfaceFlag, rec.PrintFlag).Scan(&rec.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

func (r *PostgresRepository) ResetOutboundReady(ctx context.Context, vin string) error {
	query := `UPDATE pgi_interface SET ready_flg = 0 WHERE vin_number = $1`

	res, err := r.db.ExecContext(ctx, query, vin)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
