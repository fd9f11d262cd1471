package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CommissionType string

const (
	CommissionTypePercentage CommissionType = "percentage"
	CommissionTypeFlat       CommissionType = "flat"
)

func (t CommissionType) Valid() bool {
	return t == CommissionTypePercentage || t == CommissionTypeFlat
}

type ReferralStatus string

const (
	ReferralStatusClicked   ReferralStatus = "clicked"
	ReferralStatusConverted ReferralStatus = "converted"
)

type CommissionStatus string

const (
	CommissionStatusPending  CommissionStatus = "pending"
	CommissionStatusApproved CommissionStatus = "approved"
	CommissionStatusRejected CommissionStatus = "rejected"
	CommissionStatusPaid     CommissionStatus = "paid"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

type Product struct {
	ProductID      string          `json:"product_id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Category       string          `json:"category"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	CommissionType CommissionType  `json:"commission_type"`
	ExternalURL    string          `json:"external_url"`
	IsActive       bool            `json:"is_active"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type ReferralLink struct {
	LinkID           string            `json:"link_id"`
	AffiliateID      string            `json:"affiliate_id"`
	ProductID        string            `json:"product_id"`
	ReferralCode     string            `json:"referral_code"`
	CampaignName     string            `json:"campaign_name"`
	CustomParameters map[string]string `json:"custom_parameters"`
	ClickCount       int64             `json:"click_count"`
	ConversionCount  int64             `json:"conversion_count"`
	TotalEarnings    decimal.Decimal   `json:"total_earnings"`
	IsActive         bool              `json:"is_active"`
	CreatedAt        time.Time         `json:"created_at"`
	LastUsedAt       *time.Time        `json:"last_used_at,omitempty"`
}

// Referral is one click event. It converts at most once.
type Referral struct {
	ReferralID       string          `json:"referral_id"`
	AffiliateID      string          `json:"affiliate_id"`
	ProductID        string          `json:"product_id"`
	ReferralLinkID   string          `json:"referral_link_id,omitempty"`
	ReferralCode     string          `json:"referral_code"`
	CustomerID       string          `json:"customer_id,omitempty"`
	Status           ReferralStatus  `json:"status"`
	SessionID        string          `json:"session_id"`
	IPHash           string          `json:"ip_hash"`
	UserAgentHash    string          `json:"user_agent_hash"`
	ReferrerURL      string          `json:"referrer_url"`
	ClickedAt        time.Time       `json:"clicked_at"`
	ConvertedAt      *time.Time      `json:"converted_at,omitempty"`
	OrderID          string          `json:"order_id,omitempty"`
	OrderValue       decimal.Decimal `json:"order_value"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
}

type Commission struct {
	CommissionID     string           `json:"commission_id"`
	AffiliateID      string           `json:"affiliate_id"`
	ReferralID       string           `json:"referral_id"`
	ProductID        string           `json:"product_id"`
	OrderID          string           `json:"order_id"`
	OrderValue       decimal.Decimal  `json:"order_value"`
	CommissionAmount decimal.Decimal  `json:"commission_amount"`
	CommissionRate   decimal.Decimal  `json:"commission_rate"`
	CommissionType   CommissionType   `json:"commission_type"`
	Status           CommissionStatus `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	ReviewedAt       *time.Time       `json:"reviewed_at,omitempty"`
	ReviewedBy       string           `json:"reviewed_by,omitempty"`
	ReviewNotes      string           `json:"review_notes,omitempty"`
}

// AffiliateProfile is keyed by the identity provider's user id.
type AffiliateProfile struct {
	UserID           string          `json:"user_id"`
	Email            string          `json:"email"`
	BusinessName     string          `json:"business_name"`
	Website          string          `json:"website"`
	CommissionRate   decimal.Decimal `json:"commission_rate"`
	PayoutThreshold  decimal.Decimal `json:"payout_threshold"`
	TotalEarnings    decimal.Decimal `json:"total_earnings"`
	ApprovedEarnings decimal.Decimal `json:"approved_earnings"`
	TotalReferrals   int64           `json:"total_referrals"`
	TotalConversions int64           `json:"total_conversions"`
	IsActive         bool            `json:"is_active"`
	ApprovedAt       time.Time       `json:"approved_at"`
	ApprovedBy       string          `json:"approved_by"`
}

type AffiliateApplication struct {
	ApplicationID       string            `json:"application_id"`
	UserID              string            `json:"user_id"`
	Email               string            `json:"email"`
	BusinessName        string            `json:"business_name"`
	Website             string            `json:"website"`
	PromotionalChannels []string          `json:"promotional_channels"`
	AudienceSize        string            `json:"audience_size"`
	ReasonForApplying   string            `json:"reason_for_applying"`
	Status              ApplicationStatus `json:"status"`
	AppliedAt           time.Time         `json:"applied_at"`
	ReviewedAt          *time.Time        `json:"reviewed_at,omitempty"`
	ReviewedBy          string            `json:"reviewed_by,omitempty"`
	ReviewNotes         string            `json:"review_notes,omitempty"`
}
