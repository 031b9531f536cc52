package response

import (
	"errors"
	"net/http"

	"github.com/ml-express/courier-backend-go/internal/domain/auth"
	"github.com/ml-express/courier-backend-go/internal/domain/ledger"
	"github.com/ml-express/courier-backend-go/internal/domain/salary"
	"github.com/ml-express/courier-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Salary domain errors
	case errors.Is(err, salary.ErrSalaryRecordNotFound):
		NotFound(w, "Salary record not found")
	case errors.Is(err, salary.ErrPolicyNotFound):
		NotFound(w, "Compensation policy not found")
	case errors.Is(err, salary.ErrInvalidStateTransition):
		Conflict(w, "Record status does not permit this operation")
	case errors.Is(err, salary.ErrRecordLocked):
		Conflict(w, "Record is locked; only pending records can be revised")
	case errors.Is(err, salary.ErrPackagesAlreadyClaimed):
		Conflict(w, "Packages are already claimed by another salary record")
	case errors.Is(err, salary.ErrInvalidPeriod):
		BadRequest(w, "Invalid settlement period", nil)

	// Ledger domain errors
	case errors.Is(err, ledger.ErrPackageNotFound):
		NotFound(w, "Package not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
