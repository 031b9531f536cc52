package salary

import (
	"github.com/ml-express/courier-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// PayComponents is the output of one compensation computation.
type PayComponents struct {
	KmFee         decimal.Decimal
	DeliveryBonus decimal.Decimal
	GrossSalary   decimal.Decimal
}

// ComputeCompensation maps a courier's aggregated delivery statistics for a
// period to gross pay under the given policy. Pure: no I/O, deterministic,
// exact decimal arithmetic. Distance covers the delivery leg only; pickup
// travel is not compensated.
func ComputeCompensation(totalDeliveries int, totalKm decimal.Decimal, policy CompensationPolicy) (PayComponents, error) {
	var errs validator.ValidationErrors

	if totalDeliveries < 0 {
		errs = append(errs, validator.ValidationError{Field: "total_deliveries", Message: "must be non-negative"})
	}
	if totalKm.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "total_km", Message: "must be non-negative"})
	}
	if len(errs) > 0 {
		return PayComponents{}, errs
	}

	kmFee := totalKm.Mul(policy.RatePerKm)
	deliveryBonus := decimal.NewFromInt(int64(totalDeliveries)).Mul(policy.BonusPerDelivery)

	return PayComponents{
		KmFee:         kmFee,
		DeliveryBonus: deliveryBonus,
		GrossSalary:   policy.BaseSalary.Add(kmFee).Add(deliveryBonus),
	}, nil
}
