package audit

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pacpoom/interface-vdc/internal/dbx"
	"github.com/pacpoom/interface-vdc/internal/logging"
	"github.com/pacpoom/interface-vdc/internal/server/models"
	"github.com/pacpoom/interface-vdc/internal/server/repositories/auditlog"
	"github.com/pacpoom/interface-vdc/internal/server/repositories/catalog"
	"github.com/pacpoom/interface-vdc/internal/server/repositories/interfaces"
	"github.com/pacpoom/interface-vdc/internal/server/repositories/labels"
	"github.com/pacpoom/interface-vdc/internal/server/repositories/users"
	"github.com/pacpoom/interface-vdc/internal/server/repositories/vehicles"
)

type fakeAuditRepo struct {
	entries []*models.LogEntry
	err     error
}

func (f *fakeAuditRepo) Append(ctx context.Context, entry *models.LogEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

type fakeRepoManager struct {
	audit *fakeAuditRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Vehicles(db dbx.DBTX) vehicles.Repository       { return nil }
func (m *fakeRepoManager) Labels(db dbx.DBTX) labels.Repository           { return nil }
func (m *fakeRepoManager) Interfaces(db dbx.DBTX) interfaces.Repository   { return nil }
func (m *fakeRepoManager) Catalog(db dbx.DBTX) catalog.Repository         { return nil }
func (m *fakeRepoManager) AuditLogs(db dbx.DBTX) auditlog.Repository      { return m.audit }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository             { return nil }

func newSinkWithObserver(repo *fakeAuditRepo) (*Sink, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	logger := logging.NewZapLogger(zap.New(core))
	return NewSink(nil, &fakeRepoManager{audit: repo}, logger), logs
}

func TestRecord_PersistsEntry(t *testing.T) {
	repo := &fakeAuditRepo{}
	sink, _ := newSinkWithObserver(repo)

	sink.Record(context.Background(), LevelInfo, "RECEIVING", "vehicle received",
		map[string]string{"vin": "VIN0001"}, "operator1")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	e := repo.entries[0]
	if e.Level != LevelInfo || e.Source != "RECEIVING" || e.Actor != "operator1" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.Details != `{"vin":"VIN0001"}` {
		t.Fatalf("unexpected details: %q", e.Details)
	}
}

func TestRecord_StringDetailsVerbatim(t *testing.T) {
	repo := &fakeAuditRepo{}
	sink, _ := newSinkWithObserver(repo)

	sink.Record(context.Background(), LevelWarn, "SYNC", "catalog miss", "vc_code=VC99", ActorSystem)

	if repo.entries[0].Details != "vc_code=VC99" {
		t.Fatalf("unexpected details: %q", repo.entries[0].Details)
	}
}

func TestRecord_FailureFallsBackToProcessLog(t *testing.T) {
	repo := &fakeAuditRepo{err: errors.New("db down")}
	sink, logs := newSinkWithObserver(repo)

	// must not panic and must not surface the error
	sink.Record(context.Background(), LevelError, "SYNC", "push failed", nil, ActorSystem)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected fallback log entry, got %d", len(entries))
	}
	if entries[0].Level != zap.ErrorLevel {
		t.Fatalf("unexpected level: %v", entries[0].Level)
	}
}

func TestRecord_SurvivesCancelledContext(t *testing.T) {
	repo := &fakeAuditRepo{}
	sink, _ := newSinkWithObserver(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink.Record(ctx, LevelInfo, "DELIVERY", "vehicle delivered", nil, "operator1")

	if len(repo.entries) != 1 {
		t.Fatalf("expected entry despite cancelled context, got %d", len(repo.entries))
	}
}
