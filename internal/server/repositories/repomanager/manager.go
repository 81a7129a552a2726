// Package repomanager bundles the repository factories behind one
// interface, so services can obtain repositories bound to either the pool
// or a transaction handle.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/pacpoom/interface-vdc/internal/dbx"
	"github.com/pacpoom/interface-vdc/internal/server/repositories/auditlog"
	"github.com/pacpoom/interface-vdc/internal/server/repositories/catalog"
	"github.com/pacpoom/interface-vdc/internal/server/repositories/interfaces"
	"github.com/pacpoom/interface-vdc/internal/server/repositories/labels"
	"github.com/pacpoom/interface-vdc/internal/server/repositories/users"
	"github.com/pacpoom/interface-vdc/internal/server/repositories/vehicles"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Vehicles(db dbx.DBTX) vehicles.Repository
	Labels(db dbx.DBTX) labels.Repository
	Interfaces(db dbx.DBTX) interfaces.Repository
	Catalog(db dbx.DBTX) catalog.Repository
	AuditLogs(db dbx.DBTX) auditlog.Repository
	Users(db dbx.DBTX) users.Repository
}
