package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type productModel struct {
	ProductID      string          `gorm:"column:product_id;primaryKey"`
	Title          string          `gorm:"column:title"`
	Description    string          `gorm:"column:description"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	Category       string          `gorm:"column:category"`
	CommissionRate decimal.Decimal `gorm:"column:commission_rate;type:numeric(12,4)"`
	CommissionType string          `gorm:"column:commission_type"`
	ExternalURL    string          `gorm:"column:external_url"`
	IsActive       bool            `gorm:"column:is_active"`
	CreatedBy      string          `gorm:"column:created_by"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
}

func (productModel) TableName() string { return "affiliate_products" }

type referralLinkModel struct {
	LinkID           string          `gorm:"column:link_id;primaryKey"`
	AffiliateID      string          `gorm:"column:affiliate_id"`
	ProductID        string          `gorm:"column:product_id"`
	ReferralCode     string          `gorm:"column:referral_code"`
	CampaignName     string          `gorm:"column:campaign_name"`
	CustomParameters jsonMap         `gorm:"column:custom_parameters;type:jsonb"`
	ClickCount       int64           `gorm:"column:click_count"`
	ConversionCount  int64           `gorm:"column:conversion_count"`
	TotalEarnings    decimal.Decimal `gorm:"column:total_earnings;type:numeric(14,2)"`
	IsActive         bool            `gorm:"column:is_active"`
	CreatedAt        time.Time       `gorm:"column:created_at"`
	LastUsedAt       *time.Time      `gorm:"column:last_used_at"`
}

func (referralLinkModel) TableName() string { return "affiliate_referral_links" }

type referralModel struct {
	ReferralID       string          `gorm:"column:referral_id;primaryKey"`
	AffiliateID      string          `gorm:"column:affiliate_id"`
	ProductID        string          `gorm:"column:product_id"`
	ReferralLinkID   string          `gorm:"column:referral_link_id"`
	ReferralCode     string          `gorm:"column:referral_code"`
	CustomerID       string          `gorm:"column:customer_id"`
	Status           string          `gorm:"column:status"`
	SessionID        string          `gorm:"column:session_id"`
	IPHash           string          `gorm:"column:ip_hash"`
	UserAgentHash    string          `gorm:"column:user_agent_hash"`
	ReferrerURL      string          `gorm:"column:referrer_url"`
	ClickedAt        time.Time       `gorm:"column:clicked_at"`
	ConvertedAt      *time.Time      `gorm:"column:converted_at"`
	OrderID          string          `gorm:"column:order_id"`
	OrderValue       decimal.Decimal `gorm:"column:order_value;type:numeric(14,2)"`
	CommissionAmount decimal.Decimal `gorm:"column:commission_amount;type:numeric(14,2)"`
}

func (referralModel) TableName() string { return "affiliate_referrals" }

type commissionModel struct {
	CommissionID     string          `gorm:"column:commission_id;primaryKey"`
	AffiliateID      string          `gorm:"column:affiliate_id"`
	ReferralID       string          `gorm:"column:referral_id"`
	ProductID        string          `gorm:"column:product_id"`
	OrderID          string          `gorm:"column:order_id"`
	OrderValue       decimal.Decimal `gorm:"column:order_value;type:numeric(14,2)"`
	CommissionAmount decimal.Decimal `gorm:"column:commission_amount;type:numeric(14,2)"`
	CommissionRate   decimal.Decimal `gorm:"column:commission_rate;type:numeric(12,4)"`
	CommissionType   string          `gorm:"column:commission_type"`
	Status           string          `gorm:"column:status"`
	CreatedAt        time.Time       `gorm:"column:created_at"`
	ReviewedAt       *time.Time      `gorm:"column:reviewed_at"`
	ReviewedBy       string          `gorm:"column:reviewed_by"`
	ReviewNotes      string          `gorm:"column:review_notes"`
}

func (commissionModel) TableName() string { return "affiliate_commissions" }

type affiliateProfileModel struct {
	UserID           string          `gorm:"column:user_id;primaryKey"`
	Email            string          `gorm:"column:email"`
	BusinessName     string          `gorm:"column:business_name"`
	Website          string          `gorm:"column:website"`
	CommissionRate   decimal.Decimal `gorm:"column:commission_rate;type:numeric(12,4)"`
	PayoutThreshold  decimal.Decimal `gorm:"column:payout_threshold;type:numeric(12,2)"`
	TotalEarnings    decimal.Decimal `gorm:"column:total_earnings;type:numeric(14,2)"`
	ApprovedEarnings decimal.Decimal `gorm:"column:approved_earnings;type:numeric(14,2)"`
	TotalReferrals   int64           `gorm:"column:total_referrals"`
	TotalConversions int64           `gorm:"column:total_conversions"`
	IsActive         bool            `gorm:"column:is_active"`
	ApprovedAt       time.Time       `gorm:"column:approved_at"`
	ApprovedBy       string          `gorm:"column:approved_by"`
}

func (affiliateProfileModel) TableName() string { return "affiliate_profiles" }

type applicationModel struct {
	ApplicationID       string     `gorm:"column:application_id;primaryKey"`
	UserID              string     `gorm:"column:user_id"`
	Email               string     `gorm:"column:email"`
	BusinessName        string     `gorm:"column:business_name"`
	Website             string     `gorm:"column:website"`
	PromotionalChannels jsonList   `gorm:"column:promotional_channels;type:jsonb"`
	AudienceSize        string     `gorm:"column:audience_size"`
	ReasonForApplying   string     `gorm:"column:reason_for_applying"`
	Status              string     `gorm:"column:status"`
	AppliedAt           time.Time  `gorm:"column:applied_at"`
	ReviewedAt          *time.Time `gorm:"column:reviewed_at"`
	ReviewedBy          string     `gorm:"column:reviewed_by"`
	ReviewNotes         string     `gorm:"column:review_notes"`
}

func (applicationModel) TableName() string { return "affiliate_applications" }

type outboxModel struct {
	RecordID     string     `gorm:"column:record_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	EventClass   string     `gorm:"column:event_class"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      string     `gorm:"column:payload;type:jsonb"`
	RetryCount   int        `gorm:"column:retry_count"`
	LastError    *string    `gorm:"column:last_error"`
	LastErrorAt  *time.Time `gorm:"column:last_error_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "affiliate_outbox" }

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	EventType   string    `gorm:"column:event_type"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (eventDedupModel) TableName() string { return "affiliate_event_dedup" }

// jsonMap and jsonList map JSONB columns to Go values.
type jsonMap map[string]string

func (m jsonMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]string(m))
	return string(b), err
}

func (m *jsonMap) Scan(src any) error {
	raw, err := jsonBytes(src)
	if err != nil || raw == nil {
		return err
	}
	return json.Unmarshal(raw, m)
}

type jsonList []string

func (l jsonList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	return string(b), err
}

func (l *jsonList) Scan(src any) error {
	raw, err := jsonBytes(src)
	if err != nil || raw == nil {
		return err
	}
	return json.Unmarshal(raw, l)
}

func jsonBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported jsonb source %T", src)
	}
}
