package audit

import "time"

// ActionType enum
type ActionType string

const (
	ActionCreate  ActionType = "create"
	ActionUpdate  ActionType = "update"
	ActionDelete  ActionType = "delete"
	ActionApprove ActionType = "approve"
	ActionReject  ActionType = "reject"
	ActionPay     ActionType = "pay"
	ActionExport  ActionType = "export"
)

// Module enum. Payroll writes under "finance"; other modules of the platform
// share the same table.
type Module string

const (
	ModuleFinance  Module = "finance"
	ModulePackages Module = "packages"
	ModuleCouriers Module = "couriers"
	ModuleSystem   Module = "system"
)

// Entry is one write-once compliance log line. Entries are never updated or
// deleted.
type Entry struct {
	ID                string
	UserID            string
	UserName          string
	ActionType        ActionType
	Module            Module
	TargetID          *string
	TargetName        *string
	ActionDescription string
	OldValue          *string
	NewValue          *string
	ActionTime        time.Time
	CreatedAt         time.Time
}
