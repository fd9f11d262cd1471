package http

import (
	"net/http"

	"github.com/mladenvic/promoaffiliate/internal/application"
	"github.com/mladenvic/promoaffiliate/internal/contracts"
)

func (h *Handler) generateReferralLink(w http.ResponseWriter, r *http.Request) {
	var req contracts.GenerateReferralLinkRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "generate_referral_link", err)
		return
	}
	res, err := h.service.GenerateReferralLink(r.Context(), actorFromContext(r.Context()), application.GenerateReferralLinkInput{
		ProductID:        req.ProductID,
		CampaignName:     req.CampaignName,
		CustomParameters: req.CustomParameters,
	})
	if err != nil {
		writeMappedError(r.Context(), w, "generate_referral_link", err)
		return
	}
	writeSuccess(w, http.StatusCreated, contracts.ReferralLinkResponse{
		ReferralLink: res.Link,
		ReferralURL:  res.ReferralURL,
	})
}

func (h *Handler) listReferralLinks(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeValidationError(r.Context(), w, "list_referral_links", err)
		return
	}
	active, err := parseOptionalBool(r.URL.Query().Get("isActive"), "isActive")
	if err != nil {
		writeValidationError(r.Context(), w, "list_referral_links", err)
		return
	}
	res, err := h.service.ListReferralLinks(r.Context(), actorFromContext(r.Context()), application.ListReferralLinksInput{
		PageInput: page,
		ProductID: r.URL.Query().Get("productId"),
		IsActive:  active,
	})
	if err != nil {
		writeMappedError(r.Context(), w, "list_referral_links", err)
		return
	}
	items := make([]contracts.ReferralLinkResponse, 0, len(res.Items))
	for _, item := range res.Items {
		items = append(items, contracts.ReferralLinkResponse{
			ReferralLink: item.Link,
			ReferralURL:  h.service.ReferralURL(item.Link.ReferralCode),
			Product:      item.Product,
		})
	}
	writeSuccess(w, http.StatusOK, contracts.PageResponse[contracts.ReferralLinkResponse]{
		Items:      items,
		Pagination: pageInfo(res.Page, res.Limit, res.HasMore),
	})
}

func (h *Handler) listAffiliateCommissions(w http.ResponseWriter, r *http.Request) {
	in, err := parseCommissionListInput(r)
	if err != nil {
		writeValidationError(r.Context(), w, "list_affiliate_commissions", err)
		return
	}
	res, err := h.service.ListAffiliateCommissions(r.Context(), actorFromContext(r.Context()), in)
	if err != nil {
		writeMappedError(r.Context(), w, "list_affiliate_commissions", err)
		return
	}
	writeSuccess(w, http.StatusOK, commissionPageResponse(res))
}

func (h *Handler) getCommissionSummary(w http.ResponseWriter, r *http.Request) {
	rng, err := parseDateRange(r)
	if err != nil {
		writeValidationError(r.Context(), w, "get_commission_summary", err)
		return
	}
	res, err := h.service.GetCommissionSummary(r.Context(), actorFromContext(r.Context()), rng)
	if err != nil {
		writeMappedError(r.Context(), w, "get_commission_summary", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) getReferralAnalytics(w http.ResponseWriter, r *http.Request) {
	rng, err := parseDateRange(r)
	if err != nil {
		writeValidationError(r.Context(), w, "get_referral_analytics", err)
		return
	}
	q := r.URL.Query()
	res, err := h.service.GetReferralAnalytics(r.Context(), actorFromContext(r.Context()), application.ReferralAnalyticsInput{
		DateRangeInput: rng,
		ProductID:      q.Get("productId"),
		ReferralLinkID: q.Get("referralLinkId"),
		GroupBy:        q.Get("groupBy"),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "get_referral_analytics", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) applyForAffiliate(w http.ResponseWriter, r *http.Request) {
	var req contracts.ApplyRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "apply_for_affiliate", err)
		return
	}
	res, err := h.service.ApplyForAffiliate(r.Context(), actorFromContext(r.Context()), application.ApplyInput{
		BusinessName:        req.BusinessName,
		Website:             req.Website,
		PromotionalChannels: req.PromotionalChannels,
		AudienceSize:        req.AudienceSize,
		ReasonForApplying:   req.ReasonForApplying,
	})
	if err != nil {
		writeMappedError(r.Context(), w, "apply_for_affiliate", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) getAffiliateProfile(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.GetAffiliateProfile(r.Context(), actorFromContext(r.Context()))
	if err != nil {
		writeMappedError(r.Context(), w, "get_affiliate_profile", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func parseCommissionListInput(r *http.Request) (application.ListCommissionsInput, error) {
	page, err := parsePage(r)
	if err != nil {
		return application.ListCommissionsInput{}, err
	}
	rng, err := parseDateRange(r)
	if err != nil {
		return application.ListCommissionsInput{}, err
	}
	q := r.URL.Query()
	return application.ListCommissionsInput{
		PageInput:   page,
		AffiliateID: q.Get("affiliateId"),
		ProductID:   q.Get("productId"),
		Status:      q.Get("status"),
		From:        rng.From,
		To:          rng.To,
	}, nil
}

func commissionPageResponse(res application.CommissionPage) contracts.PageResponse[contracts.CommissionResponse] {
	items := make([]contracts.CommissionResponse, 0, len(res.Items))
	for _, item := range res.Items {
		items = append(items, contracts.CommissionResponse{
			Commission: item.Commission,
			Product:    item.Product,
			Referral:   item.Referral,
			Affiliate:  item.Affiliate,
		})
	}
	return contracts.PageResponse[contracts.CommissionResponse]{
		Items:      items,
		Pagination: pageInfo(res.Page, res.Limit, res.HasMore),
	}
}
