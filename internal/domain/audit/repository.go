package audit

import "context"

type Filter struct {
	UserID   *string
	TargetID *string
	Module   *Module
	Limit    int
}

type Repository interface {
	// Append inserts one entry. Callers treat failures as best-effort: log and
	// continue, never roll back the financial operation that produced it.
	Append(ctx context.Context, entry Entry) error

	List(ctx context.Context, filter Filter) ([]Entry, error)
}
