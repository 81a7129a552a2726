package auditlog

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

func (r *PostgresRepository) Append(ctx context.Context, entry *models.LogEntry) error {
	query :=
		`INSERT INTO api_logs (log_level, source, message, details, actor)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	_, err := r.db.ExecContext(ctx, query,
		entry.Level, entry.Source, entry.Message, entry.Details, entry.Actor)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
