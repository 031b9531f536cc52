package salary

import (
	"context"

	"github.com/xuri/excelize/v2"
)

// Service defines the payroll business operations: period settlement,
// the approval/payment workflow, and record access.
type Service interface {
	// Settlement engine
	GenerateSettlement(ctx context.Context, req GenerateSettlementRequest) (GenerateSettlementResponse, error)

	// Workflow
	Approve(ctx context.Context, id string) (SalaryRecordResponse, error)
	BatchApprove(ctx context.Context, req BatchApproveRequest) (BatchResult, error)
	Pay(ctx context.Context, id string, req PayRequest) (SalaryRecordResponse, error)
	BatchPay(ctx context.Context, req BatchPayRequest) (BatchResult, error)
	Reject(ctx context.Context, req RejectRequest) (SalaryRecordResponse, error)

	// Record store
	GetRecord(ctx context.Context, id string) (SalaryRecordResponse, error)
	ListRecords(ctx context.Context, filter SalaryFilter) (ListSalaryResponse, error)
	ReviseDraft(ctx context.Context, req ReviseDraftRequest) (SalaryRecordResponse, error)
	GetDetailLines(ctx context.Context, id string) ([]DetailLineResponse, error)
	GetSummary(ctx context.Context, periodStart, periodEnd string) (SalarySummaryResponse, error)
	ExportRecords(ctx context.Context, filter SalaryFilter) (*excelize.File, error)

	// Policy
	GetPolicy(ctx context.Context) (PolicyResponse, error)
	UpdatePolicy(ctx context.Context, req UpdatePolicyRequest) (PolicyResponse, error)
}
