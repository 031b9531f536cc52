package audit

import "context"

type EntryResponse struct {
	ID                string  `json:"id"`
	UserID            string  `json:"user_id"`
	UserName          string  `json:"user_name"`
	ActionType        string  `json:"action_type"`
	Module            string  `json:"module"`
	TargetID          *string `json:"target_id,omitempty"`
	TargetName        *string `json:"target_name,omitempty"`
	ActionDescription string  `json:"action_description"`
	OldValue          *string `json:"old_value,omitempty"`
	NewValue          *string `json:"new_value,omitempty"`
	ActionTime        string  `json:"action_time"`
}

type Service interface {
	List(ctx context.Context, filter Filter) ([]EntryResponse, error)
}
