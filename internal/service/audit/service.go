package audit

import (
	"context"
	"time"

	"github.com/ml-express/courier-backend-go/internal/domain/audit"
)

type AuditServiceImpl struct {
	auditRepo audit.Repository
}

func NewAuditService(auditRepo audit.Repository) audit.Service {
	return &AuditServiceImpl{auditRepo: auditRepo}
}

func (s *AuditServiceImpl) List(ctx context.Context, filter audit.Filter) ([]audit.EntryResponse, error) {
	entries, err := s.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := make([]audit.EntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, audit.EntryResponse{
			ID:                e.ID,
			UserID:            e.UserID,
			UserName:          e.UserName,
			ActionType:        string(e.ActionType),
			Module:            string(e.Module),
			TargetID:          e.TargetID,
			TargetName:        e.TargetName,
			ActionDescription: e.ActionDescription,
			OldValue:          e.OldValue,
			NewValue:          e.NewValue,
			ActionTime:        e.ActionTime.Format(time.RFC3339),
		})
	}

	return result, nil
}
