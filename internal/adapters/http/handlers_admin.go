package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mladenvic/promoaffiliate/internal/application"
	"github.com/mladenvic/promoaffiliate/internal/contracts"
	"github.com/mladenvic/promoaffiliate/internal/domain"
)

func (h *Handler) listAllCommissions(w http.ResponseWriter, r *http.Request) {
	in, err := parseCommissionListInput(r)
	if err != nil {
		writeValidationError(r.Context(), w, "list_all_commissions", err)
		return
	}
	res, err := h.service.ListAllCommissions(r.Context(), actorFromContext(r.Context()), in)
	if err != nil {
		writeMappedError(r.Context(), w, "list_all_commissions", err)
		return
	}
	writeSuccess(w, http.StatusOK, commissionPageResponse(res))
}

func (h *Handler) reviewCommission(w http.ResponseWriter, r *http.Request) {
	var req contracts.ReviewCommissionRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "review_commission", err)
		return
	}
	res, err := h.service.ReviewCommission(r.Context(), actorFromContext(r.Context()), application.ReviewCommissionInput{
		CommissionID: chi.URLParam(r, "commissionID"),
		Status:       req.Status,
		Notes:        req.Notes,
	})
	if err != nil {
		writeMappedError(r.Context(), w, "review_commission", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) bulkApproveCommissions(w http.ResponseWriter, r *http.Request) {
	var req contracts.BulkApproveRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "bulk_approve_commissions", err)
		return
	}
	res, err := h.service.BulkApproveCommissions(r.Context(), actorFromContext(r.Context()), application.BulkApproveInput{
		CommissionIDs: req.CommissionIDs,
		Notes:         req.Notes,
	})
	if err != nil {
		writeMappedError(r.Context(), w, "bulk_approve_commissions", err)
		return
	}
	writeSuccess(w, http.StatusOK, contracts.BulkApproveResponse{
		ProcessedCount: res.ProcessedCount,
		ApprovedCount:  res.ApprovedCount,
	})
}

func (h *Handler) getCommissionStatistics(w http.ResponseWriter, r *http.Request) {
	rng, err := parseDateRange(r)
	if err != nil {
		writeValidationError(r.Context(), w, "get_commission_statistics", err)
		return
	}
	res, err := h.service.GetCommissionStatistics(r.Context(), actorFromContext(r.Context()), rng)
	if err != nil {
		writeMappedError(r.Context(), w, "get_commission_statistics", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeValidationError(r.Context(), w, "list_applications", err)
		return
	}
	res, err := h.service.ListApplications(r.Context(), actorFromContext(r.Context()), application.ListApplicationsInput{
		PageInput: page,
		Status:    r.URL.Query().Get("status"),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "list_applications", err)
		return
	}
	writeSuccess(w, http.StatusOK, contracts.PageResponse[domain.AffiliateApplication]{
		Items:      res.Items,
		Pagination: pageInfo(res.Page, res.Limit, res.HasMore),
	})
}

func (h *Handler) reviewApplication(w http.ResponseWriter, r *http.Request) {
	var req contracts.ReviewApplicationRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "review_application", err)
		return
	}
	res, err := h.service.ReviewApplication(r.Context(), actorFromContext(r.Context()), application.ReviewApplicationInput{
		ApplicationID: chi.URLParam(r, "applicationID"),
		Status:        req.Status,
		Notes:         req.Notes,
	})
	if err != nil {
		writeMappedError(r.Context(), w, "review_application", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}
