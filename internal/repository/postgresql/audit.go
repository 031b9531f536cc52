package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ml-express/courier-backend-go/internal/domain/audit"
	"github.com/ml-express/courier-backend-go/internal/pkg/database"
)

type auditRepository struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.Repository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, entry audit.Entry) error {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query := `
		INSERT INTO audit_logs (
			id, user_id, user_name, action_type, module, target_id, target_name,
			action_description, old_value, new_value, action_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`

	_, err := q.Exec(ctx, query,
		entry.ID, entry.UserID, entry.UserName, entry.ActionType, entry.Module,
		entry.TargetID, entry.TargetName, entry.ActionDescription, entry.OldValue, entry.NewValue,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}

func (r *auditRepository) List(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, user_name, action_type, module, target_id, target_name,
			   action_description, old_value, new_value, action_time, created_at
		FROM audit_logs
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	if filter.UserID != nil {
		query += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}
	if filter.TargetID != nil {
		query += fmt.Sprintf(" AND target_id = $%d", argIdx)
		args = append(args, *filter.TargetID)
		argIdx++
	}
	if filter.Module != nil {
		query += fmt.Sprintf(" AND module = $%d", argIdx)
		args = append(args, *filter.Module)
		argIdx++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	query += fmt.Sprintf(" ORDER BY action_time DESC LIMIT $%d", argIdx)
	args = append(args, limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.UserName, &e.ActionType, &e.Module, &e.TargetID, &e.TargetName,
			&e.ActionDescription, &e.OldValue, &e.NewValue, &e.ActionTime, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}
