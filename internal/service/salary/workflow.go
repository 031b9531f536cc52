package salary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ml-express/courier-backend-go/internal/domain/audit"
	"github.com/ml-express/courier-backend-go/internal/domain/salary"
)

// Approve moves a pending record to approved and stamps the approver from the
// JWT claims. Approving a record that is not pending returns
// ErrInvalidStateTransition.
func (s *SalaryServiceImpl) Approve(ctx context.Context, id string) (salary.SalaryRecordResponse, error) {
	userID, userName, err := actorFromContext(ctx)
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}

	record, err := s.salaryRepo.ApproveRecord(ctx, id, userID, userName)
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}

	oldStatus := string(salary.StatusPending)
	newStatus := string(record.Status)
	s.recordAudit(ctx, audit.Entry{
		UserID:     userID,
		UserName:   userName,
		ActionType: audit.ActionApprove,
		TargetID:   &record.ID,
		TargetName: &record.CourierName,
		ActionDescription: fmt.Sprintf("Approved salary of %s MMK for %s (%s ~ %s)",
			record.NetSalary.StringFixed(0), record.CourierName,
			record.PeriodStartDate.Format("2006-01-02"), record.PeriodEndDate.Format("2006-01-02")),
		OldValue: &oldStatus,
		NewValue: &newStatus,
	})
	s.notifyCourier(ctx, record.CourierID, "Salary Approved",
		fmt.Sprintf("Your salary of %s MMK has been approved.", record.NetSalary.StringFixed(0)))

	return mapToRecordResponse(record), nil
}

func (s *SalaryServiceImpl) BatchApprove(ctx context.Context, req salary.BatchApproveRequest) (salary.BatchResult, error) {
	if err := req.Validate(); err != nil {
		return salary.BatchResult{}, err
	}

	var result salary.BatchResult
	for _, id := range req.IDs {
		if _, err := s.Approve(ctx, id); err != nil {
			result.Failed = append(result.Failed, salary.BatchItemFailure{ID: id, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
		result.SuccessCount++
	}

	return result, nil
}

// Pay moves an approved record to paid and marks every related package as
// settled. Both writes share one transaction so a courier can never be paid
// while their deliveries stay claimable by a later settlement run.
func (s *SalaryServiceImpl) Pay(ctx context.Context, id string, req salary.PayRequest) (salary.SalaryRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.SalaryRecordResponse{}, err
	}

	userID, userName, err := actorFromContext(ctx)
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}

	var record salary.SalaryRecord
	err = s.runTx(ctx, func(txCtx context.Context) error {
		record, err = s.salaryRepo.MarkPaid(txCtx, id, req.Details())
		if err != nil {
			return err
		}

		marked, err := s.ledgerRepo.MarkSettled(txCtx, record.RelatedPackageIDs)
		if err != nil {
			return err
		}
		if marked != int64(len(record.RelatedPackageIDs)) {
			s.logger.Warn("some related packages were already settled",
				slog.String("salary_id", record.ID),
				slog.Int64("marked", marked),
				slog.Int("expected", len(record.RelatedPackageIDs)),
			)
		}
		return nil
	})
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}

	oldStatus := string(salary.StatusApproved)
	newStatus := string(record.Status)
	s.recordAudit(ctx, audit.Entry{
		UserID:     userID,
		UserName:   userName,
		ActionType: audit.ActionPay,
		TargetID:   &record.ID,
		TargetName: &record.CourierName,
		ActionDescription: fmt.Sprintf("Paid salary of %s MMK for %s via %s, %d packages settled",
			record.NetSalary.StringFixed(0), record.CourierName, req.PaymentMethod, len(record.RelatedPackageIDs)),
		OldValue: &oldStatus,
		NewValue: &newStatus,
	})
	s.notifyCourier(ctx, record.CourierID, "Salary Paid",
		fmt.Sprintf("Your salary of %s MMK has been paid via %s.", record.NetSalary.StringFixed(0), req.PaymentMethod))

	return mapToRecordResponse(record), nil
}

func (s *SalaryServiceImpl) BatchPay(ctx context.Context, req salary.BatchPayRequest) (salary.BatchResult, error) {
	if err := req.Validate(); err != nil {
		return salary.BatchResult{}, err
	}

	// Each record gets its own transaction: one failure must not undo the
	// payments that already committed.
	var result salary.BatchResult
	for _, id := range req.IDs {
		if _, err := s.Pay(ctx, id, req.Payment); err != nil {
			result.Failed = append(result.Failed, salary.BatchItemFailure{ID: id, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
		result.SuccessCount++
	}

	return result, nil
}

// Reject moves a pending record to rejected. The underlying deliveries are
// released for a future settlement run; nothing on the ledger changes here.
func (s *SalaryServiceImpl) Reject(ctx context.Context, req salary.RejectRequest) (salary.SalaryRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.SalaryRecordResponse{}, err
	}

	userID, userName, err := actorFromContext(ctx)
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}

	record, err := s.salaryRepo.RejectRecord(ctx, req.ID, req.Reason)
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}

	oldStatus := string(salary.StatusPending)
	newStatus := string(record.Status)
	s.recordAudit(ctx, audit.Entry{
		UserID:            userID,
		UserName:          userName,
		ActionType:        audit.ActionReject,
		TargetID:          &record.ID,
		TargetName:        &record.CourierName,
		ActionDescription: fmt.Sprintf("Rejected salary for %s: %s", record.CourierName, req.Reason),
		OldValue:          &oldStatus,
		NewValue:          &newStatus,
	})

	return mapToRecordResponse(record), nil
}
