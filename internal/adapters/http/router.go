package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/mladenvic/promoaffiliate/internal/application"
	"github.com/mladenvic/promoaffiliate/internal/ports"
)

// WebhookAuthenticator checks the signature on an inbound webhook body.
type WebhookAuthenticator interface {
	Verify(signatureHeader string, body []byte) error
}

type Handler struct {
	service  *application.Service
	verifier ports.IdentityVerifier
	webhooks WebhookAuthenticator
}

func NewHandler(service *application.Service, verifier ports.IdentityVerifier, webhooks WebhookAuthenticator) *Handler {
	return &Handler{service: service, verifier: verifier, webhooks: webhooks}
}

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)
	r.Get("/swagger/doc.json", handler.swaggerSpec)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Public redirect target of every referral URL.
	r.Get("/track/{code}", handler.trackClick)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/track/{code}", handler.trackClick)
		r.With(handler.webhookSignatureMiddleware).Post("/webhooks/conversions", handler.trackConversion)

		r.Group(func(r chi.Router) {
			r.Use(handler.optionalAuthMiddleware)
			r.Get("/products", handler.listProducts)
			r.Get("/products/{productID}", handler.getProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)

			r.Post("/affiliate/applications", handler.applyForAffiliate)
			r.Get("/affiliate/profile", handler.getAffiliateProfile)
			r.Post("/affiliate/referral-links", handler.generateReferralLink)
			r.Get("/affiliate/referral-links", handler.listReferralLinks)
			r.Get("/affiliate/commissions", handler.listAffiliateCommissions)
			r.Get("/affiliate/commissions/summary", handler.getCommissionSummary)
			r.Get("/affiliate/analytics", handler.getReferralAnalytics)

			r.Get("/admin/commissions", handler.listAllCommissions)
			r.Get("/admin/commissions/statistics", handler.getCommissionStatistics)
			r.Post("/admin/commissions/bulk-approve", handler.bulkApproveCommissions)
			r.Post("/admin/commissions/{commissionID}/review", handler.reviewCommission)
			r.Post("/admin/products", handler.createProduct)
			r.Put("/admin/products/{productID}", handler.updateProduct)
			r.Delete("/admin/products/{productID}", handler.deleteProduct)
			r.Get("/admin/applications", handler.listApplications)
			r.Post("/admin/applications/{applicationID}/review", handler.reviewApplication)
		})
	})

	return r
}
