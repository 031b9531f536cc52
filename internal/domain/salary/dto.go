package salary

import (
	"time"

	"github.com/ml-express/courier-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== SETTLEMENT DTOs ==========

type GenerateSettlementRequest struct {
	PeriodStartDate  string `json:"period_start_date"`
	PeriodEndDate    string `json:"period_end_date"`
	SettlementPeriod string `json:"settlement_period,omitempty"` // "weekly" or "monthly", default monthly
}

func (r *GenerateSettlementRequest) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(r.PeriodStartDate)
	if r.PeriodStartDate == "" {
		errs = append(errs, validator.ValidationError{Field: "period_start_date", Message: "is required"})
	} else if !startOK {
		errs = append(errs, validator.ValidationError{Field: "period_start_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}

	end, endOK := validator.IsValidDate(r.PeriodEndDate)
	if r.PeriodEndDate == "" {
		errs = append(errs, validator.ValidationError{Field: "period_end_date", Message: "is required"})
	} else if !endOK {
		errs = append(errs, validator.ValidationError{Field: "period_end_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}

	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "period_end_date", Message: "must not be before period_start_date"})
	}

	if r.SettlementPeriod != "" && !validator.IsInSlice(r.SettlementPeriod, []string{string(PeriodWeekly), string(PeriodMonthly)}) {
		errs = append(errs, validator.ValidationError{Field: "settlement_period", Message: "must be 'weekly' or 'monthly'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Period returns the parsed inclusive date range. Call Validate first.
func (r *GenerateSettlementRequest) Period() (time.Time, time.Time) {
	start, _ := validator.IsValidDate(r.PeriodStartDate)
	end, _ := validator.IsValidDate(r.PeriodEndDate)
	return start, end
}

type SettlementFailure struct {
	CourierID string `json:"courier_id"`
	Reason    string `json:"reason"`
}

type GenerateSettlementResponse struct {
	CreatedCount int                    `json:"created_count"`
	Records      []SalaryRecordResponse `json:"records"`
	Failed       []SettlementFailure    `json:"failed,omitempty"`
}

// ========== RECORD DTOs ==========

// ReviseDraftRequest patches the manually-set components of a pending record.
// Status never changes through this path; the workflow operations are the only
// status mutators.
type ReviseDraftRequest struct {
	ID               string           `json:"-"`
	BaseSalary       *decimal.Decimal `json:"base_salary,omitempty"`
	PerformanceBonus *decimal.Decimal `json:"performance_bonus,omitempty"`
	OvertimePay      *decimal.Decimal `json:"overtime_pay,omitempty"`
	TipAmount        *decimal.Decimal `json:"tip_amount,omitempty"`
	DeductionAmount  *decimal.Decimal `json:"deduction_amount,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
	AdminNotes       *string          `json:"admin_notes,omitempty"`
}

func (r *ReviseDraftRequest) Validate() error {
	var errs validator.ValidationErrors

	check := func(field string, v *decimal.Decimal) {
		if v != nil && v.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}
	check("base_salary", r.BaseSalary)
	check("performance_bonus", r.PerformanceBonus)
	check("overtime_pay", r.OvertimePay)
	check("tip_amount", r.TipAmount)
	check("deduction_amount", r.DeductionAmount)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayRequest struct {
	PaymentMethod    string  `json:"payment_method"`
	PaymentReference *string `json:"payment_reference,omitempty"`
	PaymentDate      string  `json:"payment_date"`
}

func (r *PayRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PaymentMethod) {
		errs = append(errs, validator.ValidationError{Field: "payment_method", Message: "is required"})
	}
	if r.PaymentDate == "" {
		errs = append(errs, validator.ValidationError{Field: "payment_date", Message: "is required"})
	} else if _, ok := validator.IsValidDate(r.PaymentDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "payment_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Details returns the parsed payment metadata. Call Validate first.
func (r *PayRequest) Details() PaymentDetails {
	date, _ := validator.IsValidDate(r.PaymentDate)
	return PaymentDetails{
		Method:    r.PaymentMethod,
		Reference: r.PaymentReference,
		Date:      date,
	}
}

type RejectRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *RejectRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== BATCH DTOs ==========

type BatchApproveRequest struct {
	IDs []string `json:"ids"`
}

func (r *BatchApproveRequest) Validate() error {
	if len(r.IDs) == 0 {
		return validator.ValidationErrors{{Field: "ids", Message: "at least one record is required"}}
	}
	return nil
}

type BatchPayRequest struct {
	IDs     []string   `json:"ids"`
	Payment PayRequest `json:"payment"`
}

func (r *BatchPayRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.IDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "ids", Message: "at least one record is required"})
	}
	if err := r.Payment.Validate(); err != nil {
		if vErrs, ok := err.(validator.ValidationErrors); ok {
			errs = append(errs, vErrs...)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BatchItemFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BatchResult reports per-item outcomes. A batch never aborts on the first
// failure; callers get the full success/failure split.
type BatchResult struct {
	SuccessCount int                `json:"success_count"`
	Succeeded    []string           `json:"succeeded"`
	Failed       []BatchItemFailure `json:"failed,omitempty"`
}

// ========== RESPONSE DTOs ==========

type SalaryRecordResponse struct {
	ID               string `json:"id"`
	CourierID        string `json:"courier_id"`
	CourierName      string `json:"courier_name"`
	SettlementPeriod string `json:"settlement_period"`
	PeriodStartDate  string `json:"period_start_date"`
	PeriodEndDate    string `json:"period_end_date"`

	BaseSalary       decimal.Decimal `json:"base_salary"`
	KmFee            decimal.Decimal `json:"km_fee"`
	DeliveryBonus    decimal.Decimal `json:"delivery_bonus"`
	PerformanceBonus decimal.Decimal `json:"performance_bonus"`
	OvertimePay      decimal.Decimal `json:"overtime_pay"`
	TipAmount        decimal.Decimal `json:"tip_amount"`
	DeductionAmount  decimal.Decimal `json:"deduction_amount"`

	TotalDeliveries  int             `json:"total_deliveries"`
	TotalKm          decimal.Decimal `json:"total_km"`
	OnTimeDeliveries int             `json:"on_time_deliveries"`
	LateDeliveries   int             `json:"late_deliveries"`

	GrossSalary decimal.Decimal `json:"gross_salary"`
	NetSalary   decimal.Decimal `json:"net_salary"`

	Status string `json:"status"`

	RelatedPackageIDs []string `json:"related_package_ids,omitempty"`

	ApprovedBy *string `json:"approved_by,omitempty"`
	ApprovedAt *string `json:"approved_at,omitempty"`

	PaymentMethod    *string `json:"payment_method,omitempty"`
	PaymentReference *string `json:"payment_reference,omitempty"`
	PaymentDate      *string `json:"payment_date,omitempty"`

	Notes      *string `json:"notes,omitempty"`
	AdminNotes *string `json:"admin_notes,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type SalaryFilter struct {
	Status      *SalaryStatus
	CourierID   *string
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	Page        int
	Limit       int
	SortBy      string
	SortOrder   string
}

type ListSalaryResponse struct {
	Data       []SalaryRecordResponse `json:"data"`
	TotalCount int64                  `json:"total_count"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
}

type DetailLineResponse struct {
	PackageID        string          `json:"package_id"`
	CourierID        string          `json:"courier_id"`
	DeliveryDistance decimal.Decimal `json:"delivery_distance"`
	DeliveredAt      *string         `json:"delivered_at,omitempty"`
	IsSettled        bool            `json:"is_settled"`
}

type SalarySummaryResponse struct {
	PeriodStartDate    string          `json:"period_start_date"`
	PeriodEndDate      string          `json:"period_end_date"`
	TotalRecords       int             `json:"total_records"`
	TotalBaseSalary    decimal.Decimal `json:"total_base_salary"`
	TotalKmFee         decimal.Decimal `json:"total_km_fee"`
	TotalDeliveryBonus decimal.Decimal `json:"total_delivery_bonus"`
	TotalDeductions    decimal.Decimal `json:"total_deductions"`
	TotalGrossSalary   decimal.Decimal `json:"total_gross_salary"`
	TotalNetSalary     decimal.Decimal `json:"total_net_salary"`
	TotalDeliveries    int             `json:"total_deliveries"`
	TotalKm            decimal.Decimal `json:"total_km"`
	PendingCount       int             `json:"pending_count"`
	ApprovedCount      int             `json:"approved_count"`
	PaidCount          int             `json:"paid_count"`
	RejectedCount      int             `json:"rejected_count"`
}

// ========== POLICY DTOs ==========

type UpdatePolicyRequest struct {
	BaseSalary       decimal.Decimal `json:"base_salary"`
	RatePerKm        decimal.Decimal `json:"rate_per_km"`
	BonusPerDelivery decimal.Decimal `json:"bonus_per_delivery"`
}

func (r *UpdatePolicyRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.BaseSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "base_salary", Message: "must be non-negative"})
	}
	if r.RatePerKm.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "rate_per_km", Message: "must be non-negative"})
	}
	if r.BonusPerDelivery.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "bonus_per_delivery", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PolicyResponse struct {
	ID               string          `json:"id"`
	BaseSalary       decimal.Decimal `json:"base_salary"`
	RatePerKm        decimal.Decimal `json:"rate_per_km"`
	BonusPerDelivery decimal.Decimal `json:"bonus_per_delivery"`
	EffectiveFrom    string          `json:"effective_from"`
	CreatedBy        string          `json:"created_by"`
}
