package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ml-express/courier-backend-go/internal/domain/salary"
	"github.com/ml-express/courier-backend-go/internal/handler/http/response"
	"github.com/ml-express/courier-backend-go/internal/pkg/validator"
)

type SalaryHandler interface {
	// Settlement
	GenerateSettlement(w http.ResponseWriter, r *http.Request)

	// Records
	ListRecords(w http.ResponseWriter, r *http.Request)
	GetRecord(w http.ResponseWriter, r *http.Request)
	ReviseDraft(w http.ResponseWriter, r *http.Request)
	GetDetailLines(w http.ResponseWriter, r *http.Request)
	GetSummary(w http.ResponseWriter, r *http.Request)
	ExportRecords(w http.ResponseWriter, r *http.Request)

	// Workflow
	Approve(w http.ResponseWriter, r *http.Request)
	BatchApprove(w http.ResponseWriter, r *http.Request)
	Pay(w http.ResponseWriter, r *http.Request)
	BatchPay(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)

	// Policy
	GetPolicy(w http.ResponseWriter, r *http.Request)
	UpdatePolicy(w http.ResponseWriter, r *http.Request)
}

type salaryHandlerImpl struct {
	salaryService salary.Service
}

func NewSalaryHandler(salaryService salary.Service) SalaryHandler {
	return &salaryHandlerImpl{salaryService: salaryService}
}

// ========== SETTLEMENT ==========

func (h *salaryHandlerImpl) GenerateSettlement(w http.ResponseWriter, r *http.Request) {
	var req salary.GenerateSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.salaryService.GenerateSettlement(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Settlement run completed", result)
}

// ========== RECORDS ==========

func (h *salaryHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSalaryFilter(r)
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	result, err := h.salaryService.ListRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := 0
	if result.Limit > 0 {
		totalPages = int((result.TotalCount + int64(result.Limit) - 1) / int64(result.Limit))
	}
	response.SuccessWithMeta(w, result.Data, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages,
	})
}

func (h *salaryHandlerImpl) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Record ID is required", nil)
		return
	}

	result, err := h.salaryService.GetRecord(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *salaryHandlerImpl) ReviseDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Record ID is required", nil)
		return
	}

	var req salary.ReviseDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.salaryService.ReviseDraft(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *salaryHandlerImpl) GetDetailLines(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Record ID is required", nil)
		return
	}

	result, err := h.salaryService.GetDetailLines(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *salaryHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	periodStart := r.URL.Query().Get("period_start_date")
	periodEnd := r.URL.Query().Get("period_end_date")

	if periodStart == "" || periodEnd == "" {
		response.BadRequest(w, "period_start_date and period_end_date are required", nil)
		return
	}

	result, err := h.salaryService.GetSummary(r.Context(), periodStart, periodEnd)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *salaryHandlerImpl) ExportRecords(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSalaryFilter(r)
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	f, err := h.salaryService.ExportRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("courier_salaries_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(w); err != nil {
		// Headers are already out; nothing useful can be sent to the client.
		return
	}
}

// ========== WORKFLOW ==========

func (h *salaryHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Record ID is required", nil)
		return
	}

	result, err := h.salaryService.Approve(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary approved", result)
}

func (h *salaryHandlerImpl) BatchApprove(w http.ResponseWriter, r *http.Request) {
	var req salary.BatchApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.salaryService.BatchApprove(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *salaryHandlerImpl) Pay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Record ID is required", nil)
		return
	}

	var req salary.PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.salaryService.Pay(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary paid", result)
}

func (h *salaryHandlerImpl) BatchPay(w http.ResponseWriter, r *http.Request) {
	var req salary.BatchPayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.salaryService.BatchPay(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *salaryHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Record ID is required", nil)
		return
	}

	var req salary.RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.salaryService.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary rejected", result)
}

// ========== POLICY ==========

func (h *salaryHandlerImpl) GetPolicy(w http.ResponseWriter, r *http.Request) {
	result, err := h.salaryService.GetPolicy(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *salaryHandlerImpl) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var req salary.UpdatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.salaryService.UpdatePolicy(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Compensation policy updated", result)
}

// ========== HELPERS ==========

func parseSalaryFilter(r *http.Request) (salary.SalaryFilter, error) {
	filter := salary.SalaryFilter{
		Page:      1,
		Limit:     20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	// "all" disables the status filter, matching what the dashboard sends.
	if statusStr := r.URL.Query().Get("status"); statusStr != "" && statusStr != "all" {
		status := salary.SalaryStatus(statusStr)
		if !status.Valid() {
			return salary.SalaryFilter{}, fmt.Errorf("invalid status '%s'", statusStr)
		}
		filter.Status = &status
	}
	if courierID := r.URL.Query().Get("courier_id"); courierID != "" {
		filter.CourierID = &courierID
	}
	if startStr := r.URL.Query().Get("period_start_date"); startStr != "" {
		start, ok := validator.IsValidDate(startStr)
		if !ok {
			return salary.SalaryFilter{}, fmt.Errorf("invalid period_start_date '%s'", startStr)
		}
		filter.PeriodStart = &start
	}
	if endStr := r.URL.Query().Get("period_end_date"); endStr != "" {
		end, ok := validator.IsValidDate(endStr)
		if !ok {
			return salary.SalaryFilter{}, fmt.Errorf("invalid period_end_date '%s'", endStr)
		}
		filter.PeriodEnd = &end
	}
	if sortBy := r.URL.Query().Get("sort_by"); sortBy != "" {
		filter.SortBy = sortBy
	}
	if sortOrder := r.URL.Query().Get("sort_order"); sortOrder != "" {
		filter.SortOrder = sortOrder
	}

	return filter, nil
}
