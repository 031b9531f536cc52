package salary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/ml-express/courier-backend-go/internal/config"
	"github.com/ml-express/courier-backend-go/internal/domain/audit"
	"github.com/ml-express/courier-backend-go/internal/domain/ledger"
	"github.com/ml-express/courier-backend-go/internal/domain/salary"
	"github.com/ml-express/courier-backend-go/internal/pkg/database"
	"github.com/ml-express/courier-backend-go/internal/pkg/push"
	"github.com/ml-express/courier-backend-go/internal/pkg/validator"
	"github.com/ml-express/courier-backend-go/internal/repository/postgresql"
)

type SalaryServiceImpl struct {
	db         *database.DB
	salaryRepo salary.Repository
	policyRepo salary.PolicyRepository
	ledgerRepo ledger.Repository
	auditRepo  audit.Repository
	pusher     push.Client
	defaults   config.PayrollConfig
	logger     *slog.Logger

	// runTx wraps fn in a database transaction carried on the context.
	runTx func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewSalaryService(
	db *database.DB,
	salaryRepo salary.Repository,
	policyRepo salary.PolicyRepository,
	ledgerRepo ledger.Repository,
	auditRepo audit.Repository,
	pusher push.Client,
	defaults config.PayrollConfig,
	logger *slog.Logger,
) salary.Service {
	return &SalaryServiceImpl{
		db:         db,
		salaryRepo: salaryRepo,
		policyRepo: policyRepo,
		ledgerRepo: ledgerRepo,
		auditRepo:  auditRepo,
		pusher:     pusher,
		defaults:   defaults,
		logger:     logger,
		runTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return postgresql.WithTransaction(ctx, db, fn)
		},
	}
}

// Helper to get the acting admin's identity from JWT context
func actorFromContext(ctx context.Context) (userID, userName string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", "", fmt.Errorf("user_id claim is missing or invalid")
	}

	userName, _ = claims["user_name"].(string)
	if userName == "" {
		userName = userID
	}

	return userID, userName, nil
}

// recordAudit appends a compliance log entry. Audit failures never roll back
// the financial operation that produced them; they are logged and dropped.
func (s *SalaryServiceImpl) recordAudit(ctx context.Context, entry audit.Entry) {
	entry.Module = audit.ModuleFinance
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.logger.Error("audit append failed",
			slog.String("action", string(entry.ActionType)),
			slog.Any("target_id", entry.TargetID),
			slog.String("error", err.Error()),
		)
	}
}

// notifyCourier sends a best-effort push. Failures are swallowed and logged.
func (s *SalaryServiceImpl) notifyCourier(ctx context.Context, courierID, title, body string) {
	if err := s.pusher.SendCourierNotification(ctx, courierID, title, body); err != nil {
		s.logger.Warn("courier notification failed",
			slog.String("courier_id", courierID),
			slog.String("error", err.Error()),
		)
	}
}

// ========== RECORD STORE ==========

func (s *SalaryServiceImpl) GetRecord(ctx context.Context, id string) (salary.SalaryRecordResponse, error) {
	record, err := s.salaryRepo.GetRecordByID(ctx, id)
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}

	return mapToRecordResponse(record), nil
}

func (s *SalaryServiceImpl) ListRecords(ctx context.Context, filter salary.SalaryFilter) (salary.ListSalaryResponse, error) {
	records, totalCount, err := s.salaryRepo.ListRecords(ctx, filter)
	if err != nil {
		return salary.ListSalaryResponse{}, err
	}

	return salary.ListSalaryResponse{
		Data:       mapToRecordResponses(records),
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *SalaryServiceImpl) ReviseDraft(ctx context.Context, req salary.ReviseDraftRequest) (salary.SalaryRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.SalaryRecordResponse{}, err
	}

	userID, userName, err := actorFromContext(ctx)
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}

	// One transaction around read, patch, and re-read: the repository locks
	// the row so concurrent revisions serialize instead of losing updates.
	var before, after salary.SalaryRecord
	err = s.runTx(ctx, func(txCtx context.Context) error {
		before, err = s.salaryRepo.GetRecordByID(txCtx, req.ID)
		if err != nil {
			return err
		}
		if err := s.salaryRepo.ReviseDraft(txCtx, req); err != nil {
			return err
		}
		after, err = s.salaryRepo.GetRecordByID(txCtx, req.ID)
		return err
	})
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}

	oldNet := before.NetSalary.String()
	newNet := after.NetSalary.String()
	s.recordAudit(ctx, audit.Entry{
		UserID:            userID,
		UserName:          userName,
		ActionType:        audit.ActionUpdate,
		TargetID:          &after.ID,
		TargetName:        &after.CourierName,
		ActionDescription: fmt.Sprintf("Revised draft salary for %s (%s ~ %s)", after.CourierName, after.PeriodStartDate.Format("2006-01-02"), after.PeriodEndDate.Format("2006-01-02")),
		OldValue:          &oldNet,
		NewValue:          &newNet,
	})

	return mapToRecordResponse(after), nil
}

func (s *SalaryServiceImpl) GetDetailLines(ctx context.Context, id string) ([]salary.DetailLineResponse, error) {
	record, err := s.salaryRepo.GetRecordByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lines, err := s.ledgerRepo.ListByIDs(ctx, record.RelatedPackageIDs)
	if err != nil {
		return nil, err
	}

	result := make([]salary.DetailLineResponse, 0, len(lines))
	for _, line := range lines {
		var deliveredAt *string
		if line.DeliveredAt != nil {
			str := line.DeliveredAt.Format(time.RFC3339)
			deliveredAt = &str
		}
		result = append(result, salary.DetailLineResponse{
			PackageID:        line.ID,
			CourierID:        line.CourierID,
			DeliveryDistance: line.DeliveryDistance,
			DeliveredAt:      deliveredAt,
			IsSettled:        line.IsSettled,
		})
	}

	return result, nil
}

func (s *SalaryServiceImpl) GetSummary(ctx context.Context, periodStart, periodEnd string) (salary.SalarySummaryResponse, error) {
	var errs validator.ValidationErrors
	start, startOK := validator.IsValidDate(periodStart)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "period_start_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	end, endOK := validator.IsValidDate(periodEnd)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "period_end_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "period_end_date", Message: "must not be before period_start_date"})
	}
	if len(errs) > 0 {
		return salary.SalarySummaryResponse{}, errs
	}

	return s.salaryRepo.Summary(ctx, start, end)
}

// ========== HELPERS ==========

func mapToRecordResponse(r salary.SalaryRecord) salary.SalaryRecordResponse {
	formatTime := func(t *time.Time, layout string) *string {
		if t == nil {
			return nil
		}
		str := t.Format(layout)
		return &str
	}

	return salary.SalaryRecordResponse{
		ID:               r.ID,
		CourierID:        r.CourierID,
		CourierName:      r.CourierName,
		SettlementPeriod: string(r.SettlementPeriod),
		PeriodStartDate:  r.PeriodStartDate.Format("2006-01-02"),
		PeriodEndDate:    r.PeriodEndDate.Format("2006-01-02"),

		BaseSalary:       r.BaseSalary,
		KmFee:            r.KmFee,
		DeliveryBonus:    r.DeliveryBonus,
		PerformanceBonus: r.PerformanceBonus,
		OvertimePay:      r.OvertimePay,
		TipAmount:        r.TipAmount,
		DeductionAmount:  r.DeductionAmount,

		TotalDeliveries:  r.TotalDeliveries,
		TotalKm:          r.TotalKm,
		OnTimeDeliveries: r.OnTimeDeliveries,
		LateDeliveries:   r.LateDeliveries,

		GrossSalary: r.GrossSalary,
		NetSalary:   r.NetSalary,

		Status: string(r.Status),

		RelatedPackageIDs: r.RelatedPackageIDs,

		ApprovedBy: r.ApprovedBy,
		ApprovedAt: formatTime(r.ApprovedAt, time.RFC3339),

		PaymentMethod:    r.PaymentMethod,
		PaymentReference: r.PaymentReference,
		PaymentDate:      formatTime(r.PaymentDate, "2006-01-02"),

		Notes:      r.Notes,
		AdminNotes: r.AdminNotes,

		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
	}
}

func mapToRecordResponses(records []salary.SalaryRecord) []salary.SalaryRecordResponse {
	result := make([]salary.SalaryRecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, mapToRecordResponse(r))
	}
	return result
}
