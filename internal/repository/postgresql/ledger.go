package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/ml-express/courier-backend-go/internal/domain/ledger"
	"github.com/ml-express/courier-backend-go/internal/pkg/database"
)

type ledgerRepository struct {
	db *database.DB
}

func NewLedgerRepository(db *database.DB) ledger.Repository {
	return &ledgerRepository{db: db}
}

const packageColumns = `
	p.id, p.courier_id, p.courier_name, p.status, COALESCE(p.delivery_distance, 0),
	p.delivered_at, p.is_settled, p.settled_at, p.created_at`

func (r *ledgerRepository) ListDeliveredUnsettled(ctx context.Context, periodStart, periodEnd time.Time) ([]ledger.DeliveryRecord, error) {
	q := GetQuerier(ctx, r.db)

	// The NOT EXISTS clause excludes packages already claimed by a
	// non-rejected salary record, which keeps settlement re-runs idempotent
	// and blocks double claiming across overlapping periods.
	query := `
		SELECT` + packageColumns + `
		FROM packages p
		WHERE p.status = $1
		  AND p.courier_id IS NOT NULL
		  AND p.courier_id NOT IN ('', $2)
		  AND p.is_settled = false
		  AND p.delivered_at >= $3
		  AND p.delivered_at < $4::date + 1
		  AND NOT EXISTS (
			SELECT 1 FROM courier_salaries s
			WHERE s.status <> 'rejected'
			  AND p.id = ANY(s.related_package_ids)
		  )
		ORDER BY p.courier_id, p.delivered_at
	`

	rows, err := q.Query(ctx, query, ledger.PackageStatusDelivered, ledger.CourierUnassigned, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsettled deliveries: %w", err)
	}
	defer rows.Close()

	var records []ledger.DeliveryRecord
	for rows.Next() {
		var rec ledger.DeliveryRecord
		if err := rows.Scan(
			&rec.ID, &rec.CourierID, &rec.CourierName, &rec.Status, &rec.DeliveryDistance,
			&rec.DeliveredAt, &rec.IsSettled, &rec.SettledAt, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan delivery record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func (r *ledgerRepository) ListByIDs(ctx context.Context, ids []string) ([]ledger.DeliveryRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT` + packageColumns + `
		FROM packages p
		WHERE p.id = ANY($1)
		ORDER BY p.delivered_at
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages by ids: %w", err)
	}
	defer rows.Close()

	var records []ledger.DeliveryRecord
	for rows.Next() {
		var rec ledger.DeliveryRecord
		if err := rows.Scan(
			&rec.ID, &rec.CourierID, &rec.CourierName, &rec.Status, &rec.DeliveryDistance,
			&rec.DeliveredAt, &rec.IsSettled, &rec.SettledAt, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan delivery record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func (r *ledgerRepository) LockForSettlement(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	// Locks are taken in id order so two runs claiming overlapping sets of
	// packages cannot deadlock each other.
	query := `
		SELECT id FROM packages
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to lock packages for settlement: %w", err)
	}
	rows.Close()

	return rows.Err()
}

func (r *ledgerRepository) MarkSettled(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE packages
		SET is_settled = true, settled_at = NOW()
		WHERE id = ANY($1) AND is_settled = false
	`

	tag, err := q.Exec(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to mark packages settled: %w", err)
	}

	return tag.RowsAffected(), nil
}
