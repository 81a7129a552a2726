// Package audit implements the append-only business audit log. Recording
// is fire-and-forget: a failed insert falls back to the process logger and
// is never surfaced to the caller: logging must not fail a business
// operation.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pacpoom/interface-vdc/internal/logging"
	"github.com/pacpoom/interface-vdc/internal/server/models"
	"github.com/pacpoom/interface-vdc/internal/server/repositories/repomanager"
)

// Levels of an audit entry.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// ActorSystem marks entries produced without an authenticated caller.
const ActorSystem = "SYSTEM"

// Recorder is the side-channel sink interface the business services log
// through.
type Recorder interface {
	Record(ctx context.Context, level, source, message string, details any, actor string)
}

// Sink persists audit entries to the api_logs table.
type Sink struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewSink(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *Sink {
	return &Sink{db: db, repomanager: m, logger: logger.With("module", "audit")}
}

// Record appends one entry. Details may be a string (stored verbatim) or
// any JSON-marshalable value. The entry is written even when the caller's
// context is already cancelled; on insert failure the entry goes to the
// process logger instead.
func (s *Sink) Record(ctx context.Context, level, source, message string, details any, actor string) {
	entry := &models.LogEntry{
		Level:   level,
		Source:  source,
		Message: message,
		Details: renderDetails(details),
		Actor:   actor,
	}

	repo := s.repomanager.AuditLogs(s.db)
	if err := repo.Append(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Error(ctx, "audit log append failed",
			"error", err, "level", level, "source", source, "message", message, "actor", actor)
	}
}

func renderDetails(details any) string {
	switch v := details.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
