package contracts

import (
	"github.com/shopspring/decimal"

	"github.com/mladenvic/promoaffiliate/internal/domain"
)

type GenerateReferralLinkRequest struct {
	ProductID        string            `json:"product_id"`
	CampaignName     string            `json:"campaign_name,omitempty"`
	CustomParameters map[string]string `json:"custom_parameters,omitempty"`
}

type ReferralLinkResponse struct {
	domain.ReferralLink
	ReferralURL string          `json:"referral_url"`
	Product     *domain.Product `json:"product,omitempty"`
}

// ConversionWebhookRequest is the order system's callback body.
type ConversionWebhookRequest struct {
	ReferralID string          `json:"referral_id"`
	OrderID    string          `json:"order_id"`
	OrderValue decimal.Decimal `json:"order_value"`
	CustomerID string          `json:"customer_id,omitempty"`
}

type ConversionResponse struct {
	CommissionID     string          `json:"commission_id"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
}

type CommissionResponse struct {
	domain.Commission
	Product   *domain.Product          `json:"product,omitempty"`
	Referral  *domain.Referral         `json:"referral,omitempty"`
	Affiliate *domain.AffiliateProfile `json:"affiliate,omitempty"`
}

type ReviewCommissionRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

type BulkApproveRequest struct {
	CommissionIDs []string `json:"commission_ids"`
	Notes         string   `json:"notes,omitempty"`
}

type BulkApproveResponse struct {
	ProcessedCount int `json:"processed_count"`
	ApprovedCount  int `json:"approved_count"`
}

type ProductRequest struct {
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Category       string          `json:"category,omitempty"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	CommissionType string          `json:"commission_type"`
	ExternalURL    string          `json:"external_url"`
	IsActive       *bool           `json:"is_active,omitempty"`
}

type ApplyRequest struct {
	BusinessName        string   `json:"business_name"`
	Website             string   `json:"website,omitempty"`
	PromotionalChannels []string `json:"promotional_channels,omitempty"`
	AudienceSize        string   `json:"audience_size,omitempty"`
	ReasonForApplying   string   `json:"reason_for_applying"`
}

type ReviewApplicationRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

type PageInfo struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"has_more"`
}

type PageResponse[T any] struct {
	Items      []T      `json:"items"`
	Pagination PageInfo `json:"pagination"`
}
