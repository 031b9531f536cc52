package http

import (
	"net/http"
	"strconv"

	"github.com/ml-express/courier-backend-go/internal/domain/audit"
	"github.com/ml-express/courier-backend-go/internal/handler/http/response"
)

type AuditHandler interface {
	ListEntries(w http.ResponseWriter, r *http.Request)
}

type auditHandlerImpl struct {
	auditService audit.Service
}

func NewAuditHandler(auditService audit.Service) AuditHandler {
	return &auditHandlerImpl{auditService: auditService}
}

func (h *auditHandlerImpl) ListEntries(w http.ResponseWriter, r *http.Request) {
	var filter audit.Filter

	if userID := r.URL.Query().Get("user_id"); userID != "" {
		filter.UserID = &userID
	}
	if targetID := r.URL.Query().Get("target_id"); targetID != "" {
		filter.TargetID = &targetID
	}
	if moduleStr := r.URL.Query().Get("module"); moduleStr != "" {
		module := audit.Module(moduleStr)
		filter.Module = &module
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}

	result, err := h.auditService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
