package salary

import (
	"testing"

	"github.com/ml-express/courier-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSettlementRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		req       GenerateSettlementRequest
		wantErr   bool
		wantField string
	}{
		{
			name: "valid monthly period",
			req: GenerateSettlementRequest{
				PeriodStartDate:  "2026-08-01",
				PeriodEndDate:    "2026-08-31",
				SettlementPeriod: "monthly",
			},
		},
		{
			name: "settlement period defaults when omitted",
			req: GenerateSettlementRequest{
				PeriodStartDate: "2026-08-01",
				PeriodEndDate:   "2026-08-07",
			},
		},
		{
			name:      "missing start date",
			req:       GenerateSettlementRequest{PeriodEndDate: "2026-08-31"},
			wantErr:   true,
			wantField: "period_start_date",
		},
		{
			name: "malformed date",
			req: GenerateSettlementRequest{
				PeriodStartDate: "08/01/2026",
				PeriodEndDate:   "2026-08-31",
			},
			wantErr:   true,
			wantField: "period_start_date",
		},
		{
			name: "end before start",
			req: GenerateSettlementRequest{
				PeriodStartDate: "2026-08-31",
				PeriodEndDate:   "2026-08-01",
			},
			wantErr:   true,
			wantField: "period_end_date",
		},
		{
			name: "unknown settlement period",
			req: GenerateSettlementRequest{
				PeriodStartDate:  "2026-08-01",
				PeriodEndDate:    "2026-08-31",
				SettlementPeriod: "quarterly",
			},
			wantErr:   true,
			wantField: "settlement_period",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var vErrs validator.ValidationErrors
			require.ErrorAs(t, err, &vErrs)
			assert.Contains(t, vErrs.ToMap(), tt.wantField)
		})
	}
}

func TestPayRequest_Validate(t *testing.T) {
	valid := PayRequest{PaymentMethod: "bank_transfer", PaymentDate: "2026-08-29"}
	assert.NoError(t, valid.Validate())

	missing := PayRequest{PaymentDate: "2026-08-29"}
	assert.Error(t, missing.Validate())

	badDate := PayRequest{PaymentMethod: "cash", PaymentDate: "yesterday"}
	assert.Error(t, badDate.Validate())
}

func TestReviseDraftRequest_Validate(t *testing.T) {
	bonus := decimal.NewFromInt(5000)
	valid := ReviseDraftRequest{PerformanceBonus: &bonus}
	assert.NoError(t, valid.Validate())

	negative := decimal.NewFromInt(-1)
	invalid := ReviseDraftRequest{DeductionAmount: &negative}
	err := invalid.Validate()
	require.Error(t, err)
	var vErrs validator.ValidationErrors
	require.ErrorAs(t, err, &vErrs)
	assert.Contains(t, vErrs.ToMap(), "deduction_amount")
}

func TestBatchPayRequest_Validate(t *testing.T) {
	valid := BatchPayRequest{
		IDs:     []string{"a", "b"},
		Payment: PayRequest{PaymentMethod: "cash", PaymentDate: "2026-08-29"},
	}
	assert.NoError(t, valid.Validate())

	empty := BatchPayRequest{Payment: PayRequest{PaymentMethod: "cash", PaymentDate: "2026-08-29"}}
	assert.Error(t, empty.Validate())

	// Payment errors surface alongside the ids error.
	both := BatchPayRequest{}
	err := both.Validate()
	require.Error(t, err)
	var vErrs validator.ValidationErrors
	require.ErrorAs(t, err, &vErrs)
	assert.Contains(t, vErrs.ToMap(), "ids")
	assert.Contains(t, vErrs.ToMap(), "payment_method")
}
