package salary

import "errors"

var (
	ErrSalaryRecordNotFound   = errors.New("salary record not found")
	ErrInvalidStateTransition = errors.New("invalid salary status transition")
	ErrRecordLocked           = errors.New("salary record is no longer editable")
	ErrPackagesAlreadyClaimed = errors.New("packages already claimed by another salary record")
	ErrPolicyNotFound         = errors.New("compensation policy not found")
	ErrInvalidPeriod          = errors.New("invalid settlement period")
)
