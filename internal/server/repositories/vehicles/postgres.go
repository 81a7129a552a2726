package vehicles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

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

const vehicleColumns = `id, vin_number, vc_code, engine_code, ga_off_time, pdiin_flg, pdiin_time, delivery_flg, delivery_time, api_flg`

func scanVehicle(row interface{ Scan(dest ...any) error }) (*models.Vehicle, error) {
	v := &models.Vehicle{}
	var pdiinTime, deliveryTime sql.NullTime

	err := row.Scan(&v.ID, &v.VIN, &v.VehicleCode, &v.EngineCode, &v.GaOffTime,
		&v.ReceivedFlag, &pdiinTime, &v.DeliveredFlag, &deliveryTime, &v.SyncFlag)
	if err != nil {
		return nil, err
	}

	if pdiinTime.Valid {
		v.ReceivedTime = &pdiinTime.Time
	}
	if deliveryTime.Valid {
		v.DeliveredTime = &deliveryTime.Time
	}
	return v, nil
}

func (r *PostgresRepository) GetByVIN(ctx context.Context, vin string) (*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM gaoff WHERE vin_number = $1`

	v, err := scanVehicle(r.db.QueryRowContext(ctx, query, vin))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) GetByVINForUpdate(ctx context.Context, vin string) (*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM gaoff WHERE vin_number = $1 FOR UPDATE`

	v, err := scanVehicle(r.db.QueryRowContext(ctx, query, vin))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) MarkReceived(ctx context.Context, vin string, receivedAt time.Time) error {
	query :=
		`UPDATE gaoff SET pdiin_flg = 1, pdiin_time = $2
		 WHERE vin_number = $1 AND pdiin_flg = 0
		 `

	res, err := r.db.ExecContext(ctx, query, vin, receivedAt)
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

func (r *PostgresRepository) MarkDelivered(ctx context.Context, vin string, deliveredAt time.Time) error {
	query :=
		`UPDATE gaoff SET delivery_flg = 1, delivery_time = $2
		 WHERE vin_number = $1 AND delivery_flg = 0
		 `

	res, err := r.db.ExecContext(ctx, query, vin, deliveredAt)
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

func (r *PostgresRepository) SelectPendingSync(ctx context.Context) ([]*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM gaoff WHERE api_flg = 0 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) MarkSynced(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	// The update is scoped to the exact selected ID set, never a blanket
	// api_flg predicate: rows created after selection must stay pending.
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `UPDATE gaoff SET api_flg = 1 WHERE id IN (` + strings.Join(placeholders, ", ") + `)`

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
