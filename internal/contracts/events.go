package contracts

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	EventClass       string          `json:"event_class,omitempty"`
	OccurredAt       time.Time       `json:"occurred_at"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    string          `json:"schema_version"`
	Data             json.RawMessage `json:"data"`
}

type ReferralLinkCreatedPayload struct {
	AffiliateID  string `json:"affiliate_id"`
	LinkID       string `json:"link_id"`
	ProductID    string `json:"product_id"`
	ReferralCode string `json:"referral_code"`
	CreatedAt    string `json:"created_at"`
}

type ReferralClickedPayload struct {
	AffiliateID string `json:"affiliate_id"`
	ReferralID  string `json:"referral_id"`
	LinkID      string `json:"link_id"`
	ProductID   string `json:"product_id"`
	SessionID   string `json:"session_id"`
	IPHash      string `json:"ip_hash"`
	ReferrerURL string `json:"referrer_url,omitempty"`
	ClickedAt   string `json:"clicked_at"`
}

type ConversionRecordedPayload struct {
	AffiliateID      string          `json:"affiliate_id"`
	ReferralID       string          `json:"referral_id"`
	CommissionID     string          `json:"commission_id"`
	ProductID        string          `json:"product_id"`
	OrderID          string          `json:"order_id"`
	OrderValue       decimal.Decimal `json:"order_value"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	ConvertedAt      string          `json:"converted_at"`
}

type CommissionReviewedPayload struct {
	AffiliateID      string          `json:"affiliate_id"`
	CommissionID     string          `json:"commission_id"`
	Status           string          `json:"status"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	ReviewedBy       string          `json:"reviewed_by"`
	ReviewedAt       string          `json:"reviewed_at"`
}

type ApplicationReviewedPayload struct {
	AffiliateID   string `json:"affiliate_id"`
	ApplicationID string `json:"application_id"`
	Status        string `json:"status"`
	ReviewedBy    string `json:"reviewed_by"`
	ReviewedAt    string `json:"reviewed_at"`
}

// OrderCompletedPayload is published by the order system when checkout
// finishes for a visitor carrying a referral.
type OrderCompletedPayload struct {
	ReferralID string          `json:"referral_id"`
	OrderID    string          `json:"order_id"`
	OrderValue decimal.Decimal `json:"order_value"`
	CustomerID string          `json:"customer_id,omitempty"`
}
