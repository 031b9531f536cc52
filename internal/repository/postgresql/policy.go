package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ml-express/courier-backend-go/internal/domain/salary"
	"github.com/ml-express/courier-backend-go/internal/pkg/database"
)

type policyRepository struct {
	db *database.DB
}

func NewPolicyRepository(db *database.DB) salary.PolicyRepository {
	return &policyRepository{db: db}
}

func (r *policyRepository) GetActive(ctx context.Context) (salary.CompensationPolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, base_salary, rate_per_km, bonus_per_delivery, effective_from, created_by, created_at
		FROM compensation_policies
		WHERE effective_from <= NOW()
		ORDER BY effective_from DESC, created_at DESC
		LIMIT 1
	`

	var p salary.CompensationPolicy
	err := q.QueryRow(ctx, query).Scan(
		&p.ID, &p.BaseSalary, &p.RatePerKm, &p.BonusPerDelivery, &p.EffectiveFrom, &p.CreatedBy, &p.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return salary.CompensationPolicy{}, salary.ErrPolicyNotFound
		}
		return salary.CompensationPolicy{}, fmt.Errorf("failed to get active compensation policy: %w", err)
	}

	return p, nil
}

func (r *policyRepository) Create(ctx context.Context, policy salary.CompensationPolicy) (salary.CompensationPolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO compensation_policies (base_salary, rate_per_km, bonus_per_delivery, effective_from, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, base_salary, rate_per_km, bonus_per_delivery, effective_from, created_by, created_at
	`

	var p salary.CompensationPolicy
	err := q.QueryRow(ctx, query,
		policy.BaseSalary, policy.RatePerKm, policy.BonusPerDelivery, policy.EffectiveFrom, policy.CreatedBy,
	).Scan(
		&p.ID, &p.BaseSalary, &p.RatePerKm, &p.BonusPerDelivery, &p.EffectiveFrom, &p.CreatedBy, &p.CreatedAt,
	)
	if err != nil {
		return salary.CompensationPolicy{}, fmt.Errorf("failed to create compensation policy: %w", err)
	}

	return p, nil
}
