package ledger

import (
	"context"
	"time"
)

// Repository is the read side of the delivery ledger plus the single write
// this subsystem performs: marking packages settled after payment.
type Repository interface {
	// ListDeliveredUnsettled returns delivered, courier-assigned packages in
	// the given period that are neither settled nor claimed by an existing
	// non-rejected salary record. The claim filter is what makes settlement
	// re-runs idempotent before payment.
	ListDeliveredUnsettled(ctx context.Context, periodStart, periodEnd time.Time) ([]DeliveryRecord, error)

	// ListByIDs returns the itemized delivery lines backing a salary record.
	ListByIDs(ctx context.Context, ids []string) ([]DeliveryRecord, error)

	// LockForSettlement takes row locks on the given packages for the duration
	// of the current transaction. Overlapping settlement runs serialize on
	// these locks before re-checking the claim filter.
	LockForSettlement(ctx context.Context, ids []string) error

	// MarkSettled flips is_settled for the given packages and returns how many
	// rows changed. Called inside the payment transaction.
	MarkSettled(ctx context.Context, ids []string) (int64, error)
}
