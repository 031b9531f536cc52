package salary

import (
	"context"
	"time"
)

// Repository defines data access for salary records. Status-changing methods
// carry the expected starting state in their WHERE clause so an illegal
// transition surfaces as ErrInvalidStateTransition, never as a silent update.
type Repository interface {
	CreateRecord(ctx context.Context, record SalaryRecord) (SalaryRecord, error)
	GetRecordByID(ctx context.Context, id string) (SalaryRecord, error)

	// PackagesClaimed reports whether any of the given packages is already
	// referenced by a non-rejected salary record. Settlement re-checks this
	// inside the creation transaction, after locking the package rows, so two
	// overlapping runs cannot both claim the same delivery.
	PackagesClaimed(ctx context.Context, packageIDs []string) (bool, error)
	ListRecords(ctx context.Context, filter SalaryFilter) ([]SalaryRecord, int64, error)

	// ReviseDraft patches editable fields of a pending record and recomputes
	// gross/net from the patched values. Non-pending records return
	// ErrRecordLocked. Callers run it inside a transaction.
	ReviseDraft(ctx context.Context, req ReviseDraftRequest) error

	// ApproveRecord moves pending -> approved and stamps the approver.
	ApproveRecord(ctx context.Context, id string, approverID, approverName string) (SalaryRecord, error)

	// MarkPaid moves approved -> paid and stores payment metadata. Runs inside
	// the payment transaction together with ledger settlement marking.
	MarkPaid(ctx context.Context, id string, payment PaymentDetails) (SalaryRecord, error)

	// RejectRecord moves pending -> rejected. Underlying deliveries stay
	// eligible for a future settlement run.
	RejectRecord(ctx context.Context, id string, reason string) (SalaryRecord, error)

	Summary(ctx context.Context, periodStart, periodEnd time.Time) (SalarySummaryResponse, error)
}

// PolicyRepository stores compensation policy versions, append-only.
type PolicyRepository interface {
	GetActive(ctx context.Context) (CompensationPolicy, error)
	Create(ctx context.Context, policy CompensationPolicy) (CompensationPolicy, error)
}
