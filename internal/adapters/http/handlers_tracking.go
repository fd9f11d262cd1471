package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mladenvic/promoaffiliate/internal/application"
	"github.com/mladenvic/promoaffiliate/internal/contracts"
)

const (
	sessionCookieName = "affiliate_session"
	sessionCookieTTL  = 30 * 24 * time.Hour
)

func (h *Handler) trackClick(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.TrackClick(r.Context(), application.TrackClickInput{
		ReferralCode: chi.URLParam(r, "code"),
		ClientIP:     readIP(r),
		UserAgent:    r.UserAgent(),
		ReferrerURL:  r.Referer(),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "track_click", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    res.SessionID,
		Path:     "/",
		MaxAge:   int(sessionCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, res.RedirectURL, http.StatusFound)
}

func (h *Handler) trackConversion(w http.ResponseWriter, r *http.Request) {
	var req contracts.ConversionWebhookRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "track_conversion", err)
		return
	}
	res, err := h.service.TrackConversion(r.Context(), application.TrackConversionInput{
		ReferralID: req.ReferralID,
		OrderID:    req.OrderID,
		OrderValue: req.OrderValue,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		writeMappedError(r.Context(), w, "track_conversion", err)
		return
	}
	writeSuccess(w, http.StatusCreated, contracts.ConversionResponse{
		CommissionID:     res.CommissionID,
		CommissionAmount: res.CommissionAmount,
	})
}
