package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/ml-express/courier-backend-go/internal/domain/auth"
	"github.com/ml-express/courier-backend-go/internal/handler/http/response"
)

// AdminOnly gates the finance surface. Every payroll operation is admin-only;
// couriers interact with their salaries through the mobile app, not this API.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		admin, ok := claims["is_admin"].(bool)
		if !admin || !ok {
			response.HandleError(w, auth.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
