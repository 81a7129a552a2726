package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"

	"github.com/pacpoom/interface-vdc/internal/common"
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

// fakeVehicleRepo keeps vehicles in memory and mirrors the guarded-update
// semantics of the SQL repository: MarkReceived and MarkDelivered change
// nothing unless the corresponding flag is still 0.
type fakeVehicleRepo struct {
	mu      sync.Mutex
	byVIN   map[string]*models.Vehicle
	pending []*models.Vehicle

	markSyncedCalls [][]int64
	selectErr       error
	markSyncedErr   error
	markReceivedErr error
	markDeliverErr  error
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{byVIN: map[string]*models.Vehicle{}}
}

func (f *fakeVehicleRepo) add(v *models.Vehicle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byVIN[v.VIN] = v
}

func (f *fakeVehicleRepo) get(vin string) *models.Vehicle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byVIN[vin]
}

func (f *fakeVehicleRepo) GetByVIN(ctx context.Context, vin string) (*models.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byVIN[vin]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVehicleRepo) GetByVINForUpdate(ctx context.Context, vin string) (*models.Vehicle, error) {
	return f.GetByVIN(ctx, vin)
}

func (f *fakeVehicleRepo) MarkReceived(ctx context.Context, vin string, receivedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markReceivedErr != nil {
		return f.markReceivedErr
	}
	v, ok := f.byVIN[vin]
	if !ok || v.ReceivedFlag != 0 {
		return common.ErrNotFound
	}
	v.ReceivedFlag = 1
	t := receivedAt
	v.ReceivedTime = &t
	return nil
}

func (f *fakeVehicleRepo) MarkDelivered(ctx context.Context, vin string, deliveredAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markDeliverErr != nil {
		return f.markDeliverErr
	}
	v, ok := f.byVIN[vin]
	if !ok || v.DeliveredFlag != 0 {
		return common.ErrNotFound
	}
	v.DeliveredFlag = 1
	t := deliveredAt
	v.DeliveredTime = &t
	return nil
}

func (f *fakeVehicleRepo) SelectPendingSync(ctx context.Context) ([]*models.Vehicle, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	return f.pending, nil
}

func (f *fakeVehicleRepo) MarkSynced(ctx context.Context, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markSyncedCalls = append(f.markSyncedCalls, ids)
	return f.markSyncedErr
}

type fakeLabelRepo struct {
	created   []*models.Label
	createErr error
}

func (f *fakeLabelRepo) Create(ctx context.Context, label *models.Label) (*models.Label, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, label)
	return label, nil
}

type fakeInterfaceRepo struct {
	created   []*models.InboundInterface
	resetVINs []string
	createErr error
	resetErr  error
}

func (f *fakeInterfaceRepo) CreateInbound(ctx context.Context, rec *models.InboundInterface) (*models.InboundInterface, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, rec)
	return rec, nil
}

func (f *fakeInterfaceRepo) ResetOutboundReady(ctx context.Context, vin string) error {
	if f.resetErr != nil {
		return f.resetErr
	}
	f.resetVINs = append(f.resetVINs, vin)
	return nil
}

type fakeCatalogRepo struct {
	entries map[string]*models.CatalogEntry
}

func (f *fakeCatalogRepo) GetByVehicleCode(ctx context.Context, vehicleCode string) (*models.CatalogEntry, error) {
	e, ok := f.entries[vehicleCode]
	if !ok {
		return nil, common.ErrNotFound
	}
	return e, nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

type fakeAuditlogRepo struct{}

func (f *fakeAuditlogRepo) Append(ctx context.Context, entry *models.LogEntry) error { return nil }

type fakeRepoManager struct {
	vehicles   *fakeVehicleRepo
	labels     *fakeLabelRepo
	interfaces *fakeInterfaceRepo
	catalog    *fakeCatalogRepo
	users      *fakeUserRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		vehicles:   newFakeVehicleRepo(),
		labels:     &fakeLabelRepo{},
		interfaces: &fakeInterfaceRepo{},
		catalog:    &fakeCatalogRepo{entries: map[string]*models.CatalogEntry{}},
		users:      &fakeUserRepo{users: map[string]*models.User{}},
	}
}

func (f *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (f *fakeRepoManager) Vehicles(db dbx.DBTX) vehicles.Repository            { return f.vehicles }
func (f *fakeRepoManager) Labels(db dbx.DBTX) labels.Repository                { return f.labels }
func (f *fakeRepoManager) Interfaces(db dbx.DBTX) interfaces.Repository        { return f.interfaces }
func (f *fakeRepoManager) Catalog(db dbx.DBTX) catalog.Repository              { return f.catalog }
func (f *fakeRepoManager) AuditLogs(db dbx.DBTX) auditlog.Repository           { return &fakeAuditlogRepo{} }
func (f *fakeRepoManager) Users(db dbx.DBTX) users.Repository                  { return f.users }

type recordedEntry struct {
	Level   string
	Source  string
	Message string
	Details any
	Actor   string
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []recordedEntry
}

func (r *fakeRecorder) Record(ctx context.Context, level, source, message string, details any, actor string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, recordedEntry{level, source, message, details, actor})
}

func (r *fakeRecorder) has(level, message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Level == level && e.Message == message {
			return true
		}
	}
	return false
}

// newMockDB returns a *sql.DB whose Begin/Commit/Rollback always succeed,
// in any order. The fakes hold the state; the mock only carries the
// transaction protocol.
func newMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 64; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testLogger() logging.Logger {
	return logging.NewZapLogger(zap.NewNop())
}
