package salary

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTestPolicy() CompensationPolicy {
	return CompensationPolicy{
		BaseSalary:       decimal.NewFromInt(200000),
		RatePerKm:        decimal.NewFromInt(500),
		BonusPerDelivery: decimal.NewFromInt(1000),
	}
}

func TestComputeCompensation(t *testing.T) {
	tests := []struct {
		name            string
		totalDeliveries int
		totalKm         decimal.Decimal
		policy          CompensationPolicy
		wantKmFee       string
		wantBonus       string
		wantGross       string
	}{
		{
			name:            "three deliveries over 6.5 km",
			totalDeliveries: 3,
			totalKm:         decimal.RequireFromString("6.5"),
			policy:          defaultTestPolicy(),
			wantKmFee:       "3250",
			wantBonus:       "3000",
			wantGross:       "206250",
		},
		{
			name:            "zero deliveries pays base only",
			totalDeliveries: 0,
			totalKm:         decimal.Zero,
			policy:          defaultTestPolicy(),
			wantKmFee:       "0",
			wantBonus:       "0",
			wantGross:       "200000",
		},
		{
			name:            "fractional distance stays exact",
			totalDeliveries: 1,
			totalKm:         decimal.RequireFromString("0.1"),
			policy:          defaultTestPolicy(),
			wantKmFee:       "50",
			wantBonus:       "1000",
			wantGross:       "201050",
		},
		{
			name:            "zero-rate policy",
			totalDeliveries: 10,
			totalKm:         decimal.NewFromInt(100),
			policy: CompensationPolicy{
				BaseSalary:       decimal.Zero,
				RatePerKm:        decimal.Zero,
				BonusPerDelivery: decimal.Zero,
			},
			wantKmFee: "0",
			wantBonus: "0",
			wantGross: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeCompensation(tt.totalDeliveries, tt.totalKm, tt.policy)
			require.NoError(t, err)
			assert.True(t, got.KmFee.Equal(decimal.RequireFromString(tt.wantKmFee)), "km fee: got %s", got.KmFee)
			assert.True(t, got.DeliveryBonus.Equal(decimal.RequireFromString(tt.wantBonus)), "delivery bonus: got %s", got.DeliveryBonus)
			assert.True(t, got.GrossSalary.Equal(decimal.RequireFromString(tt.wantGross)), "gross: got %s", got.GrossSalary)
		})
	}
}

func TestComputeCompensation_RejectsNegativeInputs(t *testing.T) {
	_, err := ComputeCompensation(-1, decimal.Zero, defaultTestPolicy())
	assert.Error(t, err)

	_, err = ComputeCompensation(1, decimal.NewFromInt(-5), defaultTestPolicy())
	assert.Error(t, err)
}

func TestSalaryStatus_CanTransitionTo(t *testing.T) {
	allowed := map[SalaryStatus][]SalaryStatus{
		StatusPending:  {StatusApproved, StatusRejected},
		StatusApproved: {StatusPaid},
		StatusPaid:     {},
		StatusRejected: {},
	}
	all := []SalaryStatus{StatusPending, StatusApproved, StatusPaid, StatusRejected}

	for from, targets := range allowed {
		for _, to := range all {
			want := false
			for _, target := range targets {
				if to == target {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestSalaryRecord_Recalculate(t *testing.T) {
	record := SalaryRecord{
		BaseSalary:       decimal.NewFromInt(200000),
		KmFee:            decimal.NewFromInt(3250),
		DeliveryBonus:    decimal.NewFromInt(3000),
		PerformanceBonus: decimal.NewFromInt(10000),
		OvertimePay:      decimal.NewFromInt(5000),
		TipAmount:        decimal.NewFromInt(1500),
		DeductionAmount:  decimal.NewFromInt(2000),
	}

	record.Recalculate()

	assert.True(t, record.GrossSalary.Equal(decimal.NewFromInt(222750)), "gross: got %s", record.GrossSalary)
	assert.True(t, record.NetSalary.Equal(decimal.NewFromInt(220750)), "net: got %s", record.NetSalary)
}
