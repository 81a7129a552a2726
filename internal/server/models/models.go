// Package models defines the persisted entities of the vehicle data center.
package models

import "time"

// Vehicle is one row of the gaoff table: a vehicle handed off from
// production, tracked through receipt (PDI-in) and delivery, and exported
// once to the external logistics platform.
//
// Flags are 0/1 integers to match the column domain. DeliveredFlag = 1
// implies ReceivedFlag = 1; no flag is ever decreased.
type Vehicle struct {
	ID            int64
	VIN           string
	VehicleCode   string
	EngineCode    string
	GaOffTime     time.Time
	ReceivedFlag  int
	ReceivedTime  *time.Time
	DeliveredFlag int
	DeliveredTime *time.Time
	SyncFlag      int
}

// CatalogEntry is a row of the vc_master vehicle-code catalog, resolving a
// vehicle code to its model and color. Read-only in this service.
type CatalogEntry struct {
	VehicleCode string
	ModelName   string
	ColorName   string
}

// Label is a vc_label row: the printable label derived from a receive
// transition. Created at most once per VIN.
type Label struct {
	ID           int64
	VIN          string
	VehicleCode  string
	ModelName    string
	ColorName    string
	Location     string
	PrintFlag    int
	ReceivedTime time.Time
}

// InboundInterface is a vc_interface row, consumed by the downstream
// printing process. References the gaoff row it was derived from.
type InboundInterface struct {
	ID            int64
	VehicleID     int64
	VIN           string
	InterfaceFlag int
	PrintFlag     int
}

// LogEntry is an api_logs row. Append-only, immutable once written.
type LogEntry struct {
	ID        int64
	Level     string
	Source    string
	Message   string
	Details   string
	Actor     string
	CreatedAt time.Time
}

// User is an api_user row. APIKeyStatus gates login: only 1 may obtain
// a token.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	APIKeyStatus int
}

// Principal is the authenticated identity attached to every request after
// token verification. The business services trust it as-is.
type Principal struct {
	UserID   int64
	Username string
	Role     string
}
