package salary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ml-express/courier-backend-go/internal/domain/audit"
	"github.com/ml-express/courier-backend-go/internal/domain/salary"
)

// activePolicy returns the policy version in force. When nothing has ever been
// published, the configured environment defaults act as policy version zero.
func (s *SalaryServiceImpl) activePolicy(ctx context.Context) (salary.CompensationPolicy, error) {
	policy, err := s.policyRepo.GetActive(ctx)
	if err != nil {
		if errors.Is(err, salary.ErrPolicyNotFound) {
			return salary.CompensationPolicy{
				BaseSalary:       s.defaults.DefaultBaseSalary,
				RatePerKm:        s.defaults.DefaultRatePerKm,
				BonusPerDelivery: s.defaults.DefaultBonusPerDelivery,
				CreatedBy:        "system",
			}, nil
		}
		return salary.CompensationPolicy{}, err
	}
	return policy, nil
}

func (s *SalaryServiceImpl) GetPolicy(ctx context.Context) (salary.PolicyResponse, error) {
	policy, err := s.activePolicy(ctx)
	if err != nil {
		return salary.PolicyResponse{}, err
	}
	return mapToPolicyResponse(policy), nil
}

// UpdatePolicy publishes a new policy version effective immediately. Records
// created under older versions are untouched; only future settlement runs
// pick up the new rates.
func (s *SalaryServiceImpl) UpdatePolicy(ctx context.Context, req salary.UpdatePolicyRequest) (salary.PolicyResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.PolicyResponse{}, err
	}

	userID, userName, err := actorFromContext(ctx)
	if err != nil {
		return salary.PolicyResponse{}, err
	}

	previous, err := s.activePolicy(ctx)
	if err != nil {
		return salary.PolicyResponse{}, err
	}

	created, err := s.policyRepo.Create(ctx, salary.CompensationPolicy{
		BaseSalary:       req.BaseSalary,
		RatePerKm:        req.RatePerKm,
		BonusPerDelivery: req.BonusPerDelivery,
		EffectiveFrom:    time.Now(),
		CreatedBy:        userName,
	})
	if err != nil {
		return salary.PolicyResponse{}, err
	}

	oldValue := fmt.Sprintf("base=%s rate_per_km=%s bonus_per_delivery=%s",
		previous.BaseSalary.String(), previous.RatePerKm.String(), previous.BonusPerDelivery.String())
	newValue := fmt.Sprintf("base=%s rate_per_km=%s bonus_per_delivery=%s",
		created.BaseSalary.String(), created.RatePerKm.String(), created.BonusPerDelivery.String())
	s.recordAudit(ctx, audit.Entry{
		UserID:            userID,
		UserName:          userName,
		ActionType:        audit.ActionUpdate,
		TargetID:          &created.ID,
		ActionDescription: "Published new compensation policy",
		OldValue:          &oldValue,
		NewValue:          &newValue,
	})

	return mapToPolicyResponse(created), nil
}

func mapToPolicyResponse(p salary.CompensationPolicy) salary.PolicyResponse {
	effectiveFrom := ""
	if !p.EffectiveFrom.IsZero() {
		effectiveFrom = p.EffectiveFrom.Format(time.RFC3339)
	}
	return salary.PolicyResponse{
		ID:               p.ID,
		BaseSalary:       p.BaseSalary,
		RatePerKm:        p.RatePerKm,
		BonusPerDelivery: p.BonusPerDelivery,
		EffectiveFrom:    effectiveFrom,
		CreatedBy:        p.CreatedBy,
	}
}
