package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// PackageStatus enum. Only the terminal delivered state makes a package
// eligible for payroll settlement.
type PackageStatus string

const (
	PackageStatusPending   PackageStatus = "pending"
	PackageStatusPickedUp  PackageStatus = "picked_up"
	PackageStatusInTransit PackageStatus = "in_transit"
	PackageStatusDelivered PackageStatus = "delivered"
	PackageStatusCancelled PackageStatus = "cancelled"
)

// CourierUnassigned is the placeholder courier value for packages that have
// not been assigned yet. Such packages never enter settlement.
const CourierUnassigned = "unassigned"

// DeliveryRecord is one completed (or in-flight) delivery as seen by payroll.
// The package-tracking subsystem owns these rows; payroll only reads them and
// flips is_settled after a successful salary payment.
type DeliveryRecord struct {
	ID               string
	CourierID        string
	CourierName      string
	Status           PackageStatus
	DeliveryDistance decimal.Decimal // delivery-leg kilometers, pickup travel excluded
	DeliveredAt      *time.Time
	IsSettled        bool
	SettledAt        *time.Time
	CreatedAt        time.Time
}
