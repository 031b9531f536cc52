package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ml-express/courier-backend-go/internal/domain/salary"
	"github.com/ml-express/courier-backend-go/internal/pkg/database"
)

type salaryRepository struct {
	db *database.DB
}

func NewSalaryRepository(db *database.DB) salary.Repository {
	return &salaryRepository{db: db}
}

const salaryColumns = `
	id, courier_id, courier_name, settlement_period, period_start_date, period_end_date,
	base_salary, km_fee, delivery_bonus, performance_bonus, overtime_pay, tip_amount,
	deduction_amount, total_deliveries, total_km, on_time_deliveries, late_deliveries,
	gross_salary, net_salary, status, related_package_ids,
	approved_by, approved_at, payment_method, payment_reference, payment_date,
	notes, admin_notes, created_at, updated_at`

func scanSalaryRecord(row pgx.Row) (salary.SalaryRecord, error) {
	var rec salary.SalaryRecord
	err := row.Scan(
		&rec.ID, &rec.CourierID, &rec.CourierName, &rec.SettlementPeriod, &rec.PeriodStartDate, &rec.PeriodEndDate,
		&rec.BaseSalary, &rec.KmFee, &rec.DeliveryBonus, &rec.PerformanceBonus, &rec.OvertimePay, &rec.TipAmount,
		&rec.DeductionAmount, &rec.TotalDeliveries, &rec.TotalKm, &rec.OnTimeDeliveries, &rec.LateDeliveries,
		&rec.GrossSalary, &rec.NetSalary, &rec.Status, &rec.RelatedPackageIDs,
		&rec.ApprovedBy, &rec.ApprovedAt, &rec.PaymentMethod, &rec.PaymentReference, &rec.PaymentDate,
		&rec.Notes, &rec.AdminNotes, &rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

func (r *salaryRepository) CreateRecord(ctx context.Context, record salary.SalaryRecord) (salary.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO courier_salaries (
			courier_id, courier_name, settlement_period, period_start_date, period_end_date,
			base_salary, km_fee, delivery_bonus, performance_bonus, overtime_pay, tip_amount,
			deduction_amount, total_deliveries, total_km, on_time_deliveries, late_deliveries,
			gross_salary, net_salary, status, related_package_ids, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING` + salaryColumns

	rec, err := scanSalaryRecord(q.QueryRow(ctx, query,
		record.CourierID, record.CourierName, record.SettlementPeriod, record.PeriodStartDate, record.PeriodEndDate,
		record.BaseSalary, record.KmFee, record.DeliveryBonus, record.PerformanceBonus, record.OvertimePay, record.TipAmount,
		record.DeductionAmount, record.TotalDeliveries, record.TotalKm, record.OnTimeDeliveries, record.LateDeliveries,
		record.GrossSalary, record.NetSalary, record.Status, record.RelatedPackageIDs, record.Notes,
	))
	if err != nil {
		return salary.SalaryRecord{}, fmt.Errorf("failed to create salary record: %w", err)
	}

	return rec, nil
}

func (r *salaryRepository) GetRecordByID(ctx context.Context, id string) (salary.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + salaryColumns + ` FROM courier_salaries WHERE id = $1`

	rec, err := scanSalaryRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return salary.SalaryRecord{}, salary.ErrSalaryRecordNotFound
		}
		return salary.SalaryRecord{}, fmt.Errorf("failed to get salary record: %w", err)
	}

	return rec, nil
}

func (r *salaryRepository) PackagesClaimed(ctx context.Context, packageIDs []string) (bool, error) {
	if len(packageIDs) == 0 {
		return false, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM courier_salaries
			WHERE status <> 'rejected'
			  AND related_package_ids && $1
		)
	`

	var claimed bool
	if err := q.QueryRow(ctx, query, packageIDs).Scan(&claimed); err != nil {
		return false, fmt.Errorf("failed to check package claims: %w", err)
	}

	return claimed, nil
}

func (r *salaryRepository) ListRecords(ctx context.Context, filter salary.SalaryFilter) ([]salary.SalaryRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := ` FROM courier_salaries WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.CourierID != nil {
		baseQuery += fmt.Sprintf(" AND courier_id = $%d", argIdx)
		args = append(args, *filter.CourierID)
		argIdx++
	}
	if filter.PeriodStart != nil {
		baseQuery += fmt.Sprintf(" AND period_start_date >= $%d", argIdx)
		args = append(args, *filter.PeriodStart)
		argIdx++
	}
	if filter.PeriodEnd != nil {
		baseQuery += fmt.Sprintf(" AND period_end_date <= $%d", argIdx)
		args = append(args, *filter.PeriodEnd)
		argIdx++
	}

	var totalCount int64
	countQuery := "SELECT COUNT(*)" + baseQuery
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count salary records: %w", err)
	}

	sortColumn := "period_end_date"
	if filter.SortBy != "" {
		allowedColumns := map[string]string{
			"created_at":   "created_at",
			"period":       "period_end_date",
			"courier_name": "courier_name",
			"net_salary":   "net_salary",
			"status":       "status",
		}
		if col, ok := allowedColumns[filter.SortBy]; ok {
			sortColumn = col
		}
	}
	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(
		"SELECT"+salaryColumns+"%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		baseQuery, sortColumn, sortOrder, argIdx, argIdx+1,
	)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list salary records: %w", err)
	}
	defer rows.Close()

	var records []salary.SalaryRecord
	for rows.Next() {
		rec, err := scanSalaryRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan salary record: %w", err)
		}
		records = append(records, rec)
	}

	return records, totalCount, nil
}

// ReviseDraft reads the current row, applies the patch in memory, restores the
// gross/net invariant via Recalculate, and writes all affected columns back
// with bound values. Recomputing in SQL against the patched columns would read
// the OLD row values (UPDATE SET expressions evaluate against the pre-update
// row), so the recompute happens on the patched record instead. Callers run
// this inside a transaction; the row lock makes the read-modify-write atomic.
func (r *salaryRepository) ReviseDraft(ctx context.Context, req salary.ReviseDraftRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + salaryColumns + ` FROM courier_salaries WHERE id = $1 FOR UPDATE`
	rec, err := scanSalaryRecord(q.QueryRow(ctx, query, req.ID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return salary.ErrSalaryRecordNotFound
		}
		return fmt.Errorf("failed to load salary record for revision: %w", err)
	}
	if rec.Status != salary.StatusPending {
		return salary.ErrRecordLocked
	}

	if req.BaseSalary != nil {
		rec.BaseSalary = *req.BaseSalary
	}
	if req.PerformanceBonus != nil {
		rec.PerformanceBonus = *req.PerformanceBonus
	}
	if req.OvertimePay != nil {
		rec.OvertimePay = *req.OvertimePay
	}
	if req.TipAmount != nil {
		rec.TipAmount = *req.TipAmount
	}
	if req.DeductionAmount != nil {
		rec.DeductionAmount = *req.DeductionAmount
	}
	if req.Notes != nil {
		rec.Notes = req.Notes
	}
	if req.AdminNotes != nil {
		rec.AdminNotes = req.AdminNotes
	}
	rec.Recalculate()

	updateQuery := `
		UPDATE courier_salaries
		SET base_salary = $2, performance_bonus = $3, overtime_pay = $4, tip_amount = $5,
			deduction_amount = $6, notes = $7, admin_notes = $8,
			gross_salary = $9, net_salary = $10, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING id
	`

	var updatedID string
	err = q.QueryRow(ctx, updateQuery, req.ID,
		rec.BaseSalary, rec.PerformanceBonus, rec.OvertimePay, rec.TipAmount,
		rec.DeductionAmount, rec.Notes, rec.AdminNotes,
		rec.GrossSalary, rec.NetSalary,
	).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return salary.ErrRecordLocked
		}
		return fmt.Errorf("failed to revise salary record: %w", err)
	}

	return nil
}

func (r *salaryRepository) ApproveRecord(ctx context.Context, id string, approverID, approverName string) (salary.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE courier_salaries
		SET status = 'approved', approved_by = $2, approved_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING` + salaryColumns

	approvedBy := approverName
	if approvedBy == "" {
		approvedBy = approverID
	}

	rec, err := scanSalaryRecord(q.QueryRow(ctx, query, id, approvedBy))
	if err != nil {
		if err == pgx.ErrNoRows {
			return salary.SalaryRecord{}, r.transitionFailure(ctx, id, salary.StatusApproved)
		}
		return salary.SalaryRecord{}, fmt.Errorf("failed to approve salary record: %w", err)
	}

	return rec, nil
}

func (r *salaryRepository) MarkPaid(ctx context.Context, id string, payment salary.PaymentDetails) (salary.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE courier_salaries
		SET status = 'paid', payment_method = $2, payment_reference = $3, payment_date = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'approved'
		RETURNING` + salaryColumns

	rec, err := scanSalaryRecord(q.QueryRow(ctx, query, id, payment.Method, payment.Reference, payment.Date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return salary.SalaryRecord{}, r.transitionFailure(ctx, id, salary.StatusPaid)
		}
		return salary.SalaryRecord{}, fmt.Errorf("failed to mark salary record paid: %w", err)
	}

	return rec, nil
}

func (r *salaryRepository) RejectRecord(ctx context.Context, id string, reason string) (salary.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE courier_salaries
		SET status = 'rejected', admin_notes = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING` + salaryColumns

	rec, err := scanSalaryRecord(q.QueryRow(ctx, query, id, reason))
	if err != nil {
		if err == pgx.ErrNoRows {
			return salary.SalaryRecord{}, r.transitionFailure(ctx, id, salary.StatusRejected)
		}
		return salary.SalaryRecord{}, fmt.Errorf("failed to reject salary record: %w", err)
	}

	return rec, nil
}

// transitionFailure distinguishes a missing record from one in the wrong
// starting state after a guarded UPDATE matched no rows.
func (r *salaryRepository) transitionFailure(ctx context.Context, id string, next salary.SalaryStatus) error {
	q := GetQuerier(ctx, r.db)

	var status string
	err := q.QueryRow(ctx, `SELECT status FROM courier_salaries WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return salary.ErrSalaryRecordNotFound
		}
		return fmt.Errorf("failed to check salary record status: %w", err)
	}
	if salary.SalaryStatus(status).CanTransitionTo(next) {
		// The state machine allows the move but the guarded UPDATE lost to
		// a concurrent transition on the same row.
		return fmt.Errorf("record %s changed concurrently: %w", id, salary.ErrInvalidStateTransition)
	}
	return salary.ErrInvalidStateTransition
}

func (r *salaryRepository) Summary(ctx context.Context, periodStart, periodEnd time.Time) (salary.SalarySummaryResponse, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) as total_records,
			COALESCE(SUM(base_salary), 0) as total_base_salary,
			COALESCE(SUM(km_fee), 0) as total_km_fee,
			COALESCE(SUM(delivery_bonus), 0) as total_delivery_bonus,
			COALESCE(SUM(deduction_amount), 0) as total_deductions,
			COALESCE(SUM(gross_salary), 0) as total_gross_salary,
			COALESCE(SUM(net_salary), 0) as total_net_salary,
			COALESCE(SUM(total_deliveries), 0) as total_deliveries,
			COALESCE(SUM(total_km), 0) as total_km,
			COUNT(*) FILTER (WHERE status = 'pending') as pending_count,
			COUNT(*) FILTER (WHERE status = 'approved') as approved_count,
			COUNT(*) FILTER (WHERE status = 'paid') as paid_count,
			COUNT(*) FILTER (WHERE status = 'rejected') as rejected_count
		FROM courier_salaries
		WHERE period_start_date >= $1 AND period_end_date <= $2
	`

	var summary salary.SalarySummaryResponse
	err := q.QueryRow(ctx, query, periodStart, periodEnd).Scan(
		&summary.TotalRecords, &summary.TotalBaseSalary, &summary.TotalKmFee,
		&summary.TotalDeliveryBonus, &summary.TotalDeductions,
		&summary.TotalGrossSalary, &summary.TotalNetSalary,
		&summary.TotalDeliveries, &summary.TotalKm,
		&summary.PendingCount, &summary.ApprovedCount, &summary.PaidCount, &summary.RejectedCount,
	)
	if err != nil {
		return salary.SalarySummaryResponse{}, fmt.Errorf("failed to get salary summary: %w", err)
	}

	summary.PeriodStartDate = periodStart.Format("2006-01-02")
	summary.PeriodEndDate = periodEnd.Format("2006-01-02")

	return summary, nil
}
