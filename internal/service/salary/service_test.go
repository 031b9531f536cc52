package salary

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/ml-express/courier-backend-go/internal/config"
	"github.com/ml-express/courier-backend-go/internal/domain/audit"
	"github.com/ml-express/courier-backend-go/internal/domain/ledger"
	"github.com/ml-express/courier-backend-go/internal/domain/salary"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== FAKES =====

type fakeSalaryRepo struct {
	records map[string]salary.SalaryRecord
	seq     int
}

func newFakeSalaryRepo() *fakeSalaryRepo {
	return &fakeSalaryRepo{records: make(map[string]salary.SalaryRecord)}
}

func (f *fakeSalaryRepo) CreateRecord(_ context.Context, record salary.SalaryRecord) (salary.SalaryRecord, error) {
	f.seq++
	record.ID = fmt.Sprintf("sal-%d", f.seq)
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	f.records[record.ID] = record
	return record, nil
}

func (f *fakeSalaryRepo) GetRecordByID(_ context.Context, id string) (salary.SalaryRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return salary.SalaryRecord{}, salary.ErrSalaryRecordNotFound
	}
	return record, nil
}

func (f *fakeSalaryRepo) PackagesClaimed(_ context.Context, packageIDs []string) (bool, error) {
	for _, record := range f.records {
		if record.Status == salary.StatusRejected {
			continue
		}
		for _, claimed := range record.RelatedPackageIDs {
			for _, id := range packageIDs {
				if id == claimed {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

func (f *fakeSalaryRepo) ListRecords(_ context.Context, filter salary.SalaryFilter) ([]salary.SalaryRecord, int64, error) {
	var matched []salary.SalaryRecord
	for _, record := range f.records {
		if filter.Status != nil && record.Status != *filter.Status {
			continue
		}
		if filter.CourierID != nil && record.CourierID != *filter.CourierID {
			continue
		}
		matched = append(matched, record)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	if filter.Limit <= 0 {
		return matched, total, nil
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * filter.Limit
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (f *fakeSalaryRepo) ReviseDraft(_ context.Context, req salary.ReviseDraftRequest) error {
	record, ok := f.records[req.ID]
	if !ok {
		return salary.ErrSalaryRecordNotFound
	}
	if record.Status != salary.StatusPending {
		return salary.ErrRecordLocked
	}
	if req.BaseSalary != nil {
		record.BaseSalary = *req.BaseSalary
	}
	if req.PerformanceBonus != nil {
		record.PerformanceBonus = *req.PerformanceBonus
	}
	if req.OvertimePay != nil {
		record.OvertimePay = *req.OvertimePay
	}
	if req.TipAmount != nil {
		record.TipAmount = *req.TipAmount
	}
	if req.DeductionAmount != nil {
		record.DeductionAmount = *req.DeductionAmount
	}
	if req.Notes != nil {
		record.Notes = req.Notes
	}
	if req.AdminNotes != nil {
		record.AdminNotes = req.AdminNotes
	}
	record.Recalculate()
	record.UpdatedAt = time.Now()
	f.records[req.ID] = record
	return nil
}

func (f *fakeSalaryRepo) ApproveRecord(_ context.Context, id, approverID, approverName string) (salary.SalaryRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return salary.SalaryRecord{}, salary.ErrSalaryRecordNotFound
	}
	if !record.Status.CanTransitionTo(salary.StatusApproved) {
		return salary.SalaryRecord{}, salary.ErrInvalidStateTransition
	}
	approvedBy := approverName
	if approvedBy == "" {
		approvedBy = approverID
	}
	now := time.Now()
	record.Status = salary.StatusApproved
	record.ApprovedBy = &approvedBy
	record.ApprovedAt = &now
	record.UpdatedAt = now
	f.records[id] = record
	return record, nil
}

func (f *fakeSalaryRepo) MarkPaid(_ context.Context, id string, payment salary.PaymentDetails) (salary.SalaryRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return salary.SalaryRecord{}, salary.ErrSalaryRecordNotFound
	}
	if !record.Status.CanTransitionTo(salary.StatusPaid) {
		return salary.SalaryRecord{}, salary.ErrInvalidStateTransition
	}
	record.Status = salary.StatusPaid
	record.PaymentMethod = &payment.Method
	record.PaymentReference = payment.Reference
	record.PaymentDate = &payment.Date
	record.UpdatedAt = time.Now()
	f.records[id] = record
	return record, nil
}

func (f *fakeSalaryRepo) RejectRecord(_ context.Context, id, reason string) (salary.SalaryRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return salary.SalaryRecord{}, salary.ErrSalaryRecordNotFound
	}
	if !record.Status.CanTransitionTo(salary.StatusRejected) {
		return salary.SalaryRecord{}, salary.ErrInvalidStateTransition
	}
	record.Status = salary.StatusRejected
	record.AdminNotes = &reason
	record.UpdatedAt = time.Now()
	f.records[id] = record
	return record, nil
}

func (f *fakeSalaryRepo) Summary(_ context.Context, periodStart, periodEnd time.Time) (salary.SalarySummaryResponse, error) {
	resp := salary.SalarySummaryResponse{
		PeriodStartDate:    periodStart.Format("2006-01-02"),
		PeriodEndDate:      periodEnd.Format("2006-01-02"),
		TotalBaseSalary:    decimal.Zero,
		TotalKmFee:         decimal.Zero,
		TotalDeliveryBonus: decimal.Zero,
		TotalDeductions:    decimal.Zero,
		TotalGrossSalary:   decimal.Zero,
		TotalNetSalary:     decimal.Zero,
		TotalKm:            decimal.Zero,
	}
	for _, record := range f.records {
		resp.TotalRecords++
		resp.TotalNetSalary = resp.TotalNetSalary.Add(record.NetSalary)
	}
	return resp, nil
}

type fakeLedgerRepo struct {
	packages map[string]ledger.DeliveryRecord
	salaries *fakeSalaryRepo

	// staleClaims makes ListDeliveredUnsettled return packages even when a
	// record already claims them, imitating a read that ran before another
	// settlement pass committed.
	staleClaims bool
}

func newFakeLedgerRepo(salaries *fakeSalaryRepo) *fakeLedgerRepo {
	return &fakeLedgerRepo{packages: make(map[string]ledger.DeliveryRecord), salaries: salaries}
}

func (f *fakeLedgerRepo) claimed(packageID string) bool {
	for _, record := range f.salaries.records {
		if record.Status == salary.StatusRejected {
			continue
		}
		for _, id := range record.RelatedPackageIDs {
			if id == packageID {
				return true
			}
		}
	}
	return false
}

func (f *fakeLedgerRepo) ListDeliveredUnsettled(_ context.Context, periodStart, periodEnd time.Time) ([]ledger.DeliveryRecord, error) {
	var result []ledger.DeliveryRecord
	for _, p := range f.packages {
		if p.Status != ledger.PackageStatusDelivered || p.IsSettled || p.DeliveredAt == nil {
			continue
		}
		if p.CourierID == "" || p.CourierID == ledger.CourierUnassigned {
			continue
		}
		if p.DeliveredAt.Before(periodStart) || !p.DeliveredAt.Before(periodEnd.AddDate(0, 0, 1)) {
			continue
		}
		if !f.staleClaims && f.claimed(p.ID) {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func (f *fakeLedgerRepo) ListByIDs(_ context.Context, ids []string) ([]ledger.DeliveryRecord, error) {
	var result []ledger.DeliveryRecord
	for _, id := range ids {
		if p, ok := f.packages[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakeLedgerRepo) LockForSettlement(_ context.Context, _ []string) error {
	return nil
}

func (f *fakeLedgerRepo) MarkSettled(_ context.Context, ids []string) (int64, error) {
	var marked int64
	now := time.Now()
	for _, id := range ids {
		p, ok := f.packages[id]
		if !ok || p.IsSettled {
			continue
		}
		p.IsSettled = true
		p.SettledAt = &now
		f.packages[id] = p
		marked++
	}
	return marked, nil
}

type fakePolicyRepo struct {
	policies []salary.CompensationPolicy
}

func (f *fakePolicyRepo) GetActive(_ context.Context) (salary.CompensationPolicy, error) {
	if len(f.policies) == 0 {
		return salary.CompensationPolicy{}, salary.ErrPolicyNotFound
	}
	return f.policies[len(f.policies)-1], nil
}

func (f *fakePolicyRepo) Create(_ context.Context, policy salary.CompensationPolicy) (salary.CompensationPolicy, error) {
	policy.ID = fmt.Sprintf("pol-%d", len(f.policies)+1)
	policy.CreatedAt = time.Now()
	f.policies = append(f.policies, policy)
	return policy, nil
}

type fakeAuditRepo struct {
	entries []audit.Entry
}

func (f *fakeAuditRepo) Append(_ context.Context, entry audit.Entry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditRepo) List(_ context.Context, _ audit.Filter) ([]audit.Entry, error) {
	return f.entries, nil
}

func (f *fakeAuditRepo) byAction(t *testing.T, action audit.ActionType) audit.Entry {
	t.Helper()
	for _, e := range f.entries {
		if e.ActionType == action {
			return e
		}
	}
	t.Fatalf("no audit entry with action %s", action)
	return audit.Entry{}
}

func (f *fakeAuditRepo) actions() []audit.ActionType {
	var result []audit.ActionType
	for _, e := range f.entries {
		result = append(result, e.ActionType)
	}
	return result
}

type fakePushClient struct {
	sent []string
}

func (f *fakePushClient) SendCourierNotification(_ context.Context, courierID, title, _ string) error {
	f.sent = append(f.sent, courierID+":"+title)
	return nil
}

// ===== HARNESS =====

type testEnv struct {
	svc        *SalaryServiceImpl
	salaryRepo *fakeSalaryRepo
	ledgerRepo *fakeLedgerRepo
	policyRepo *fakePolicyRepo
	auditRepo  *fakeAuditRepo
	pusher     *fakePushClient
}

func newTestEnv() *testEnv {
	salaryRepo := newFakeSalaryRepo()
	ledgerRepo := newFakeLedgerRepo(salaryRepo)
	policyRepo := &fakePolicyRepo{}
	auditRepo := &fakeAuditRepo{}
	pusher := &fakePushClient{}

	svc := &SalaryServiceImpl{
		salaryRepo: salaryRepo,
		policyRepo: policyRepo,
		ledgerRepo: ledgerRepo,
		auditRepo:  auditRepo,
		pusher:     pusher,
		defaults: config.PayrollConfig{
			DefaultBaseSalary:       decimal.NewFromInt(200000),
			DefaultRatePerKm:        decimal.NewFromInt(500),
			DefaultBonusPerDelivery: decimal.NewFromInt(1000),
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		runTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	}

	return &testEnv{
		svc:        svc,
		salaryRepo: salaryRepo,
		ledgerRepo: ledgerRepo,
		policyRepo: policyRepo,
		auditRepo:  auditRepo,
		pusher:     pusher,
	}
}

func adminContext(t *testing.T) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret-key"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"user_id":   "admin-1",
		"user_name": "Finance Admin",
		"is_admin":  true,
		"type":      "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func (e *testEnv) addDelivery(id, courierID, courierName string, distance string, deliveredAt time.Time) {
	e.ledgerRepo.packages[id] = ledger.DeliveryRecord{
		ID:               id,
		CourierID:        courierID,
		CourierName:      courierName,
		Status:           ledger.PackageStatusDelivered,
		DeliveryDistance: decimal.RequireFromString(distance),
		DeliveredAt:      &deliveredAt,
	}
}

func augustRequest() salary.GenerateSettlementRequest {
	return salary.GenerateSettlementRequest{
		PeriodStartDate: "2026-08-01",
		PeriodEndDate:   "2026-08-31",
	}
}

var midAugust = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

// ===== SETTLEMENT =====

func TestGenerateSettlement_AggregatesPerCourier(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)

	env.addDelivery("pkg-1", "courier-a", "Aung Kyaw", "2.0", midAugust)
	env.addDelivery("pkg-2", "courier-a", "Aung Kyaw", "3.5", midAugust)
	env.addDelivery("pkg-3", "courier-a", "Aung Kyaw", "1.0", midAugust)
	env.addDelivery("pkg-4", "courier-b", "Su Myat", "10.0", midAugust)

	resp, err := env.svc.GenerateSettlement(ctx, augustRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, resp.CreatedCount)
	assert.Empty(t, resp.Failed)
	require.Len(t, resp.Records, 2)

	// Records come back ordered by courier ID.
	recordA := resp.Records[0]
	assert.Equal(t, "courier-a", recordA.CourierID)
	assert.Equal(t, 3, recordA.TotalDeliveries)
	assert.True(t, recordA.TotalKm.Equal(decimal.RequireFromString("6.5")), "total km: %s", recordA.TotalKm)
	assert.True(t, recordA.KmFee.Equal(decimal.NewFromInt(3250)), "km fee: %s", recordA.KmFee)
	assert.True(t, recordA.DeliveryBonus.Equal(decimal.NewFromInt(3000)), "bonus: %s", recordA.DeliveryBonus)
	assert.True(t, recordA.GrossSalary.Equal(decimal.NewFromInt(206250)), "gross: %s", recordA.GrossSalary)
	assert.True(t, recordA.NetSalary.Equal(decimal.NewFromInt(206250)), "net: %s", recordA.NetSalary)
	assert.Equal(t, string(salary.StatusPending), recordA.Status)
	assert.Equal(t, string(salary.PeriodMonthly), recordA.SettlementPeriod)
	assert.Len(t, recordA.RelatedPackageIDs, 3)
}

func TestGenerateSettlement_RerunCreatesNothing(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)

	env.addDelivery("pkg-1", "courier-a", "Aung Kyaw", "5.0", midAugust)

	first, err := env.svc.GenerateSettlement(ctx, augustRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, first.CreatedCount)

	second, err := env.svc.GenerateSettlement(ctx, augustRequest())
	require.NoError(t, err)
	assert.Equal(t, 0, second.CreatedCount)
	assert.Empty(t, second.Records)
}

func TestGenerateSettlement_StaleReadCannotDoubleClaim(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)

	env.addDelivery("pkg-1", "courier-a", "Aung Kyaw", "5.0", midAugust)

	first, err := env.svc.GenerateSettlement(ctx, augustRequest())
	require.NoError(t, err)
	require.Equal(t, 1, first.CreatedCount)

	// A second run whose eligibility read predates the first run's commit
	// still sees pkg-1 as unclaimed. The claim re-check inside the creation
	// transaction has to catch it.
	env.ledgerRepo.staleClaims = true
	second, err := env.svc.GenerateSettlement(ctx, augustRequest())
	require.NoError(t, err)

	assert.Equal(t, 0, second.CreatedCount)
	require.Len(t, second.Failed, 1)
	assert.Equal(t, "courier-a", second.Failed[0].CourierID)
	assert.Contains(t, second.Failed[0].Reason, "already claimed")

	// pkg-1 is claimed by exactly one non-rejected record.
	var claims int
	for _, record := range env.salaryRepo.records {
		if record.Status == salary.StatusRejected {
			continue
		}
		for _, id := range record.RelatedPackageIDs {
			if id == "pkg-1" {
				claims++
			}
		}
	}
	assert.Equal(t, 1, claims)
}

func TestGenerateSettlement_RejectionReleasesDeliveries(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)

	env.addDelivery("pkg-1", "courier-a", "Aung Kyaw", "5.0", midAugust)

	first, err := env.svc.GenerateSettlement(ctx, augustRequest())
	require.NoError(t, err)
	require.Equal(t, 1, first.CreatedCount)

	_, err = env.svc.Reject(ctx, salary.RejectRequest{ID: first.Records[0].ID, Reason: "distance data disputed"})
	require.NoError(t, err)

	second, err := env.svc.GenerateSettlement(ctx, augustRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, second.CreatedCount)
}

func TestGenerateSettlement_IgnoresOutOfPeriodAndSettled(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)

	env.addDelivery("pkg-1", "courier-a", "Aung Kyaw", "5.0", midAugust)
	env.addDelivery("pkg-2", "courier-a", "Aung Kyaw", "5.0", time.Date(2026, 7, 20, 10, 0, 0, 0, time.UTC))
	env.addDelivery("pkg-3", "courier-a", "Aung Kyaw", "5.0", midAugust)
	p := env.ledgerRepo.packages["pkg-3"]
	p.IsSettled = true
	env.ledgerRepo.packages["pkg-3"] = p

	resp, err := env.svc.GenerateSettlement(ctx, augustRequest())
	require.NoError(t, err)
	require.Equal(t, 1, resp.CreatedCount)
	assert.Equal(t, []string{"pkg-1"}, resp.Records[0].RelatedPackageIDs)
}

func TestGenerateSettlement_UsesPublishedPolicy(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)

	_, err := env.svc.UpdatePolicy(ctx, salary.UpdatePolicyRequest{
		BaseSalary:       decimal.NewFromInt(300000),
		RatePerKm:        decimal.NewFromInt(600),
		BonusPerDelivery: decimal.NewFromInt(2000),
	})
	require.NoError(t, err)

	env.addDelivery("pkg-1", "courier-a", "Aung Kyaw", "10.0", midAugust)

	resp, err := env.svc.GenerateSettlement(ctx, augustRequest())
	require.NoError(t, err)
	require.Equal(t, 1, resp.CreatedCount)
	// 300000 + 10*600 + 1*2000
	assert.True(t, resp.Records[0].GrossSalary.Equal(decimal.NewFromInt(308000)), "gross: %s", resp.Records[0].GrossSalary)
}

func TestGenerateSettlement_InvalidPeriodFails(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)

	_, err := env.svc.GenerateSettlement(ctx, salary.GenerateSettlementRequest{
		PeriodStartDate: "2026-08-31",
		PeriodEndDate:   "2026-08-01",
	})
	assert.Error(t, err)
}

func TestGenerateSettlement_RequiresClaims(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.GenerateSettlement(context.Background(), augustRequest())
	assert.Error(t, err)
}

// ===== WORKFLOW =====

func generateOne(t *testing.T, env *testEnv, ctx context.Context) salary.SalaryRecordResponse {
	t.Helper()
	env.addDelivery("pkg-1", "courier-a", "Aung Kyaw", "6.5", midAugust)
	env.addDelivery("pkg-2", "courier-a", "Aung Kyaw", "2.5", midAugust)
	resp, err := env.svc.GenerateSettlement(ctx, augustRequest())
	require.NoError(t, err)
	require.Equal(t, 1, resp.CreatedCount)
	return resp.Records[0]
}

func TestApprove_StampsApprover(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)
	record := generateOne(t, env, ctx)

	approved, err := env.svc.Approve(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, string(salary.StatusApproved), approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "Finance Admin", *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)
	assert.Contains(t, env.auditRepo.actions(), audit.ActionApprove)
	assert.Len(t, env.pusher.sent, 1)
}

func TestApprove_TwiceFails(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)
	record := generateOne(t, env, ctx)

	approved, err := env.svc.Approve(ctx, record.ID)
	require.NoError(t, err)

	_, err = env.svc.Approve(ctx, record.ID)
	assert.ErrorIs(t, err, salary.ErrInvalidStateTransition)

	// First approval is untouched.
	current, err := env.svc.GetRecord(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, approved.ApprovedBy, current.ApprovedBy)
	assert.Equal(t, approved.ApprovedAt, current.ApprovedAt)
}

func TestApprove_UnknownRecord(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)

	_, err := env.svc.Approve(ctx, "missing")
	assert.ErrorIs(t, err, salary.ErrSalaryRecordNotFound)
}

func TestPay_MarksPackagesSettled(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)
	record := generateOne(t, env, ctx)

	_, err := env.svc.Approve(ctx, record.ID)
	require.NoError(t, err)

	reference := "TXN-20260829-001"
	paid, err := env.svc.Pay(ctx, record.ID, salary.PayRequest{
		PaymentMethod:    "bank_transfer",
		PaymentReference: &reference,
		PaymentDate:      "2026-08-29",
	})
	require.NoError(t, err)

	assert.Equal(t, string(salary.StatusPaid), paid.Status)
	require.NotNil(t, paid.PaymentMethod)
	assert.Equal(t, "bank_transfer", *paid.PaymentMethod)
	require.NotNil(t, paid.PaymentReference)
	assert.Equal(t, reference, *paid.PaymentReference)

	for _, id := range record.RelatedPackageIDs {
		assert.True(t, env.ledgerRepo.packages[id].IsSettled, "package %s not settled", id)
	}
	assert.Contains(t, env.auditRepo.actions(), audit.ActionPay)
}

func TestPay_PendingRecordFails(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)
	record := generateOne(t, env, ctx)

	_, err := env.svc.Pay(ctx, record.ID, salary.PayRequest{
		PaymentMethod: "cash",
		PaymentDate:   "2026-08-29",
	})
	assert.ErrorIs(t, err, salary.ErrInvalidStateTransition)

	// No ledger mutation happened.
	for _, id := range record.RelatedPackageIDs {
		assert.False(t, env.ledgerRepo.packages[id].IsSettled)
	}
}

func TestBatchApprove_PartialFailure(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)

	env.addDelivery("pkg-1", "courier-a", "Aung Kyaw", "5.0", midAugust)
	env.addDelivery("pkg-2", "courier-b", "Su Myat", "4.0", midAugust)
	resp, err := env.svc.GenerateSettlement(ctx, augustRequest())
	require.NoError(t, err)
	require.Equal(t, 2, resp.CreatedCount)

	ids := []string{resp.Records[0].ID, "missing", resp.Records[1].ID}
	result, err := env.svc.BatchApprove(ctx, salary.BatchApproveRequest{IDs: ids})
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessCount)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "missing", result.Failed[0].ID)
}

func TestBatchPay_CommittedPaymentsSurviveFailures(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)

	env.addDelivery("pkg-1", "courier-a", "Aung Kyaw", "5.0", midAugust)
	env.addDelivery("pkg-2", "courier-b", "Su Myat", "4.0", midAugust)
	resp, err := env.svc.GenerateSettlement(ctx, augustRequest())
	require.NoError(t, err)
	require.Equal(t, 2, resp.CreatedCount)

	// Only the first record is approved; the second stays pending.
	_, err = env.svc.Approve(ctx, resp.Records[0].ID)
	require.NoError(t, err)

	result, err := env.svc.BatchPay(ctx, salary.BatchPayRequest{
		IDs:     []string{resp.Records[0].ID, resp.Records[1].ID},
		Payment: salary.PayRequest{PaymentMethod: "cash", PaymentDate: "2026-08-29"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, resp.Records[1].ID, result.Failed[0].ID)

	paid, err := env.svc.GetRecord(ctx, resp.Records[0].ID)
	require.NoError(t, err)
	assert.Equal(t, string(salary.StatusPaid), paid.Status)
}

func TestReject_RequiresReason(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)
	record := generateOne(t, env, ctx)

	_, err := env.svc.Reject(ctx, salary.RejectRequest{ID: record.ID})
	assert.Error(t, err)

	rejected, err := env.svc.Reject(ctx, salary.RejectRequest{ID: record.ID, Reason: "wrong distances"})
	require.NoError(t, err)
	assert.Equal(t, string(salary.StatusRejected), rejected.Status)
	require.NotNil(t, rejected.AdminNotes)
	assert.Equal(t, "wrong distances", *rejected.AdminNotes)
}

// ===== RECORD STORE =====

func TestReviseDraft_RecomputesTotals(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)
	record := generateOne(t, env, ctx)

	bonus := decimal.NewFromInt(10000)
	deduction := decimal.NewFromInt(2500)
	revised, err := env.svc.ReviseDraft(ctx, salary.ReviseDraftRequest{
		ID:               record.ID,
		PerformanceBonus: &bonus,
		DeductionAmount:  &deduction,
	})
	require.NoError(t, err)

	wantGross := record.GrossSalary.Add(bonus)
	assert.True(t, revised.GrossSalary.Equal(wantGross), "gross: %s", revised.GrossSalary)
	assert.True(t, revised.NetSalary.Equal(wantGross.Sub(deduction)), "net: %s", revised.NetSalary)
	assert.Equal(t, string(salary.StatusPending), revised.Status)

	// A later revision of a different field recomputes against the values
	// stored by the first one; the earlier bonus stays in the totals.
	overtime := decimal.NewFromInt(5000)
	again, err := env.svc.ReviseDraft(ctx, salary.ReviseDraftRequest{
		ID:          record.ID,
		OvertimePay: &overtime,
	})
	require.NoError(t, err)
	assert.True(t, again.GrossSalary.Equal(wantGross.Add(overtime)), "gross: %s", again.GrossSalary)
	assert.True(t, again.NetSalary.Equal(wantGross.Add(overtime).Sub(deduction)), "net: %s", again.NetSalary)
}

func TestReviseDraft_PatchedFieldsDriveTotals(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)
	record := generateOne(t, env, ctx)

	// Patch every editable amount at once; the recompute must use the new
	// values, not the ones the record held before the update.
	base := decimal.NewFromInt(250000)
	bonus := decimal.NewFromInt(15000)
	overtime := decimal.NewFromInt(8000)
	tips := decimal.NewFromInt(3000)
	deduction := decimal.NewFromInt(6000)
	revised, err := env.svc.ReviseDraft(ctx, salary.ReviseDraftRequest{
		ID:               record.ID,
		BaseSalary:       &base,
		PerformanceBonus: &bonus,
		OvertimePay:      &overtime,
		TipAmount:        &tips,
		DeductionAmount:  &deduction,
	})
	require.NoError(t, err)

	wantGross := base.Add(record.KmFee).Add(record.DeliveryBonus).Add(bonus).Add(overtime).Add(tips)
	assert.True(t, revised.GrossSalary.Equal(wantGross), "gross: %s", revised.GrossSalary)
	assert.True(t, revised.NetSalary.Equal(wantGross.Sub(deduction)), "net: %s", revised.NetSalary)
}

func TestReviseDraft_LockedAfterApproval(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)
	record := generateOne(t, env, ctx)

	_, err := env.svc.Approve(ctx, record.ID)
	require.NoError(t, err)

	bonus := decimal.NewFromInt(10000)
	_, err = env.svc.ReviseDraft(ctx, salary.ReviseDraftRequest{ID: record.ID, PerformanceBonus: &bonus})
	assert.ErrorIs(t, err, salary.ErrRecordLocked)
}

func TestGetDetailLines_ReturnsClaimedPackages(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)
	record := generateOne(t, env, ctx)

	lines, err := env.svc.GetDetailLines(ctx, record.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, "courier-a", line.CourierID)
	}
}

// ===== POLICY =====

func TestGetPolicy_FallsBackToDefaults(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)

	policy, err := env.svc.GetPolicy(ctx)
	require.NoError(t, err)
	assert.True(t, policy.BaseSalary.Equal(decimal.NewFromInt(200000)))
	assert.True(t, policy.RatePerKm.Equal(decimal.NewFromInt(500)))
	assert.True(t, policy.BonusPerDelivery.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "system", policy.CreatedBy)
}

func TestUpdatePolicy_AppendsVersion(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)

	updated, err := env.svc.UpdatePolicy(ctx, salary.UpdatePolicyRequest{
		BaseSalary:       decimal.NewFromInt(250000),
		RatePerKm:        decimal.NewFromInt(550),
		BonusPerDelivery: decimal.NewFromInt(1200),
	})
	require.NoError(t, err)
	assert.Equal(t, "Finance Admin", updated.CreatedBy)
	assert.Len(t, env.policyRepo.policies, 1)

	_, err = env.svc.UpdatePolicy(ctx, salary.UpdatePolicyRequest{
		BaseSalary: decimal.NewFromInt(-1),
	})
	assert.Error(t, err)
	assert.Len(t, env.policyRepo.policies, 1)
}

// ===== AUDIT TRAIL =====

func TestWorkflow_WritesAuditTrail(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)
	record := generateOne(t, env, ctx)

	_, err := env.svc.Approve(ctx, record.ID)
	require.NoError(t, err)
	_, err = env.svc.Pay(ctx, record.ID, salary.PayRequest{PaymentMethod: "cash", PaymentDate: "2026-08-29"})
	require.NoError(t, err)

	actions := env.auditRepo.actions()
	assert.Contains(t, actions, audit.ActionCreate)
	assert.Contains(t, actions, audit.ActionApprove)
	assert.Contains(t, actions, audit.ActionPay)
	for _, entry := range env.auditRepo.entries {
		assert.Equal(t, audit.ModuleFinance, entry.Module)
		assert.Equal(t, "admin-1", entry.UserID)
	}

	// Transition entries carry the status change, not just a description.
	approveEntry := env.auditRepo.byAction(t, audit.ActionApprove)
	require.NotNil(t, approveEntry.OldValue)
	require.NotNil(t, approveEntry.NewValue)
	assert.Equal(t, string(salary.StatusPending), *approveEntry.OldValue)
	assert.Equal(t, string(salary.StatusApproved), *approveEntry.NewValue)

	payEntry := env.auditRepo.byAction(t, audit.ActionPay)
	require.NotNil(t, payEntry.OldValue)
	require.NotNil(t, payEntry.NewValue)
	assert.Equal(t, string(salary.StatusApproved), *payEntry.OldValue)
	assert.Equal(t, string(salary.StatusPaid), *payEntry.NewValue)
}

func TestReject_AuditsStatusChange(t *testing.T) {
	env := newTestEnv()
	ctx := adminContext(t)
	record := generateOne(t, env, ctx)

	_, err := env.svc.Reject(ctx, salary.RejectRequest{ID: record.ID, Reason: "distance data disputed"})
	require.NoError(t, err)

	entry := env.auditRepo.byAction(t, audit.ActionReject)
	require.NotNil(t, entry.OldValue)
	require.NotNil(t, entry.NewValue)
	assert.Equal(t, string(salary.StatusPending), *entry.OldValue)
	assert.Equal(t, string(salary.StatusRejected), *entry.NewValue)
}
