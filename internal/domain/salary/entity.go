package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalaryStatus enum
type SalaryStatus string

const (
	StatusPending  SalaryStatus = "pending"
	StatusApproved SalaryStatus = "approved"
	StatusPaid     SalaryStatus = "paid"
	StatusRejected SalaryStatus = "rejected"
)

func (s SalaryStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusPaid, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether the workflow permits moving from s to next.
// pending -> approved -> paid, pending -> rejected. paid and rejected are
// terminal.
func (s SalaryStatus) CanTransitionTo(next SalaryStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusApproved || next == StatusRejected
	case StatusApproved:
		return next == StatusPaid
	}
	return false
}

// SettlementPeriod enum
type SettlementPeriod string

const (
	PeriodWeekly  SettlementPeriod = "weekly"
	PeriodMonthly SettlementPeriod = "monthly"
)

// CompensationPolicy is the versioned rule set the settlement engine applies.
// Publishing a new version never mutates prior versions, so historical
// settlements stay reproducible after a rate change.
type CompensationPolicy struct {
	ID               string
	BaseSalary       decimal.Decimal // flat MMK per settlement period
	RatePerKm        decimal.Decimal // MMK per delivery-leg kilometer
	BonusPerDelivery decimal.Decimal // MMK per completed delivery
	EffectiveFrom    time.Time
	CreatedBy        string
	CreatedAt        time.Time
}

// SalaryRecord is one courier's settlement for one period.
type SalaryRecord struct {
	ID               string
	CourierID        string
	CourierName      string
	SettlementPeriod SettlementPeriod
	PeriodStartDate  time.Time
	PeriodEndDate    time.Time

	// Pay components
	BaseSalary       decimal.Decimal
	KmFee            decimal.Decimal
	DeliveryBonus    decimal.Decimal
	PerformanceBonus decimal.Decimal
	OvertimePay      decimal.Decimal
	TipAmount        decimal.Decimal
	DeductionAmount  decimal.Decimal

	// Delivery statistics
	TotalDeliveries  int
	TotalKm          decimal.Decimal
	OnTimeDeliveries int
	LateDeliveries   int

	GrossSalary decimal.Decimal
	NetSalary   decimal.Decimal

	Status SalaryStatus

	// Traceability: the packages aggregated into this record. Required for
	// settlement marking and audit.
	RelatedPackageIDs []string

	ApprovedBy *string
	ApprovedAt *time.Time

	PaymentMethod    *string
	PaymentReference *string
	PaymentDate      *time.Time

	Notes      *string
	AdminNotes *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Recalculate restores the gross/net invariant after any component change:
// gross = base + km fee + delivery bonus + performance bonus + overtime + tip,
// net = gross - deduction.
func (r *SalaryRecord) Recalculate() {
	r.GrossSalary = r.BaseSalary.
		Add(r.KmFee).
		Add(r.DeliveryBonus).
		Add(r.PerformanceBonus).
		Add(r.OvertimePay).
		Add(r.TipAmount)
	r.NetSalary = r.GrossSalary.Sub(r.DeductionAmount)
}

// PaymentDetails is the metadata recorded when a salary is paid out.
type PaymentDetails struct {
	Method    string
	Reference *string
	Date      time.Time
}
