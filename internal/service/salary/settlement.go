package salary

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ml-express/courier-backend-go/internal/domain/audit"
	"github.com/ml-express/courier-backend-go/internal/domain/ledger"
	"github.com/ml-express/courier-backend-go/internal/domain/salary"
	"github.com/shopspring/decimal"
)

// courierGroup is the per-courier aggregation of a settlement run.
type courierGroup struct {
	courierID   string
	courierName string
	totalKm     decimal.Decimal
	packageIDs  []string
}

// GenerateSettlement aggregates every eligible delivery in the period into one
// pending salary record per courier. Eligibility excludes deliveries already
// claimed by a non-rejected record, so running the same period twice creates
// nothing new. One courier's failure never aborts the rest of the run.
func (s *SalaryServiceImpl) GenerateSettlement(ctx context.Context, req salary.GenerateSettlementRequest) (salary.GenerateSettlementResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.GenerateSettlementResponse{}, err
	}

	userID, userName, err := actorFromContext(ctx)
	if err != nil {
		return salary.GenerateSettlementResponse{}, err
	}

	settlementPeriod := salary.SettlementPeriod(req.SettlementPeriod)
	if settlementPeriod == "" {
		settlementPeriod = salary.PeriodMonthly
	}

	policy, err := s.activePolicy(ctx)
	if err != nil {
		return salary.GenerateSettlementResponse{}, err
	}

	periodStart, periodEnd := req.Period()
	deliveries, err := s.ledgerRepo.ListDeliveredUnsettled(ctx, periodStart, periodEnd)
	if err != nil {
		return salary.GenerateSettlementResponse{}, err
	}

	groups := groupByCourier(deliveries)

	resp := salary.GenerateSettlementResponse{
		Records: make([]salary.SalaryRecordResponse, 0, len(groups)),
	}

	for _, group := range groups {
		comp, err := salary.ComputeCompensation(len(group.packageIDs), group.totalKm, policy)
		if err != nil {
			s.logger.Warn("skipping courier in settlement run",
				slog.String("courier_id", group.courierID),
				slog.String("error", err.Error()),
			)
			resp.Failed = append(resp.Failed, salary.SettlementFailure{
				CourierID: group.courierID,
				Reason:    err.Error(),
			})
			continue
		}

		record := salary.SalaryRecord{
			CourierID:        group.courierID,
			CourierName:      group.courierName,
			SettlementPeriod: settlementPeriod,
			PeriodStartDate:  periodStart,
			PeriodEndDate:    periodEnd,

			BaseSalary:    policy.BaseSalary,
			KmFee:         comp.KmFee,
			DeliveryBonus: comp.DeliveryBonus,

			TotalDeliveries:  len(group.packageIDs),
			TotalKm:          group.totalKm,
			OnTimeDeliveries: len(group.packageIDs),

			GrossSalary: comp.GrossSalary,
			NetSalary:   comp.GrossSalary,

			Status: salary.StatusPending,

			RelatedPackageIDs: group.packageIDs,
		}

		// The eligibility read above ran outside this transaction, so a
		// concurrent run may have claimed the same deliveries in the
		// meantime. Locking the package rows and re-checking the claim here
		// makes creation atomic without giving up per-courier isolation.
		var created salary.SalaryRecord
		err = s.runTx(ctx, func(txCtx context.Context) error {
			if err := s.ledgerRepo.LockForSettlement(txCtx, group.packageIDs); err != nil {
				return err
			}
			claimed, err := s.salaryRepo.PackagesClaimed(txCtx, group.packageIDs)
			if err != nil {
				return err
			}
			if claimed {
				return salary.ErrPackagesAlreadyClaimed
			}
			created, err = s.salaryRepo.CreateRecord(txCtx, record)
			return err
		})
		if err != nil {
			s.logger.Error("failed to create salary record",
				slog.String("courier_id", group.courierID),
				slog.String("error", err.Error()),
			)
			resp.Failed = append(resp.Failed, salary.SettlementFailure{
				CourierID: group.courierID,
				Reason:    err.Error(),
			})
			continue
		}

		resp.Records = append(resp.Records, mapToRecordResponse(created))
		resp.CreatedCount++

		newNet := created.NetSalary.String()
		s.recordAudit(ctx, audit.Entry{
			UserID:     userID,
			UserName:   userName,
			ActionType: audit.ActionCreate,
			TargetID:   &created.ID,
			TargetName: &created.CourierName,
			ActionDescription: fmt.Sprintf("Generated %s salary for %s: %d deliveries, %s km (%s ~ %s)",
				settlementPeriod, created.CourierName, created.TotalDeliveries, created.TotalKm.String(),
				req.PeriodStartDate, req.PeriodEndDate),
			NewValue: &newNet,
		})
	}

	s.logger.Info("settlement run finished",
		slog.String("period_start", req.PeriodStartDate),
		slog.String("period_end", req.PeriodEndDate),
		slog.Int("created", resp.CreatedCount),
		slog.Int("failed", len(resp.Failed)),
	)

	return resp, nil
}

// groupByCourier folds delivery lines into per-courier totals, ordered by
// courier ID so a settlement run produces records deterministically.
func groupByCourier(deliveries []ledger.DeliveryRecord) []courierGroup {
	byID := make(map[string]*courierGroup)
	for _, d := range deliveries {
		group, ok := byID[d.CourierID]
		if !ok {
			group = &courierGroup{
				courierID:   d.CourierID,
				courierName: d.CourierName,
				totalKm:     decimal.Zero,
			}
			byID[d.CourierID] = group
		}
		group.totalKm = group.totalKm.Add(d.DeliveryDistance)
		group.packageIDs = append(group.packageIDs, d.ID)
		if group.courierName == "" {
			group.courierName = d.CourierName
		}
	}

	groups := make([]courierGroup, 0, len(byID))
	for _, group := range byID {
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].courierID < groups[j].courierID
	})

	return groups
}
