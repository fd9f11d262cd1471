package ports

import (
	"context"
	"time"

	"github.com/mladenvic/promoaffiliate/internal/domain"
)

// Page is offset pagination. Results may drift under concurrent writes.
type Page struct {
	Limit  int
	Offset int
}

type ProductFilter struct {
	Category string
	IsActive *bool
}

type ReferralLinkFilter struct {
	AffiliateID string
	ProductID   string
	IsActive    *bool
}

type ReferralFilter struct {
	AffiliateID    string
	ProductID      string
	ReferralLinkID string
	From           *time.Time
	To             *time.Time
}

type CommissionFilter struct {
	AffiliateID string
	ProductID   string
	Status      domain.CommissionStatus
	From        *time.Time
	To          *time.Time
}

type ApplicationFilter struct {
	Status domain.ApplicationStatus
}

type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) error
	GetByID(ctx context.Context, productID string) (domain.Product, error)
	GetByIDs(ctx context.Context, productIDs []string) (map[string]domain.Product, error)
	List(ctx context.Context, filter ProductFilter, page Page) ([]domain.Product, error)
	Update(ctx context.Context, product domain.Product) error
	Delete(ctx context.Context, productID string) error
}

type ReferralLinkRepository interface {
	// Create returns domain.ErrConflict when the referral code is taken.
	Create(ctx context.Context, link domain.ReferralLink) error
	GetActiveByCode(ctx context.Context, code string) (domain.ReferralLink, error)
	List(ctx context.Context, filter ReferralLinkFilter, page Page) ([]domain.ReferralLink, error)
}

// ConversionRecord carries the order figures on Commission; the referral
// copies OrderID, OrderValue and CommissionAmount from it.
type ConversionRecord struct {
	ReferralID string
	CustomerID string
	Commission domain.Commission
	At         time.Time
}

type ReferralRepository interface {
	GetByID(ctx context.Context, referralID string) (domain.Referral, error)
	GetByIDs(ctx context.Context, referralIDs []string) (map[string]domain.Referral, error)
	List(ctx context.Context, filter ReferralFilter) ([]domain.Referral, error)
	// RecordClick stores the referral and bumps the link click counter and
	// the affiliate referral counter with atomic increments.
	RecordClick(ctx context.Context, referral domain.Referral) error
	// RecordConversion moves a clicked referral to converted, inserts the
	// pending commission and credits the affiliate and link counters in one
	// transaction. A referral that is not in clicked state yields
	// domain.ErrConflict.
	RecordConversion(ctx context.Context, rec ConversionRecord) (domain.Referral, error)
}

type ReviewParams struct {
	CommissionID string
	Status       domain.CommissionStatus
	ReviewedBy   string
	Notes        string
	At           time.Time
}

type ApproveBatchParams struct {
	CommissionIDs []string
	ReviewedBy    string
	Notes         string
	At            time.Time
}

type CommissionRepository interface {
	GetByID(ctx context.Context, commissionID string) (domain.Commission, error)
	List(ctx context.Context, filter CommissionFilter, page Page) ([]domain.Commission, error)
	ListAll(ctx context.Context, filter CommissionFilter) ([]domain.Commission, error)
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.Commission, error)
	// Review applies a decision to a pending commission and, for approvals,
	// credits approved earnings in the same transaction. A commission that is
	// no longer pending yields domain.ErrConflict.
	Review(ctx context.Context, params ReviewParams) (domain.Commission, error)
	// ApproveBatch approves the still-pending subset of ids and credits each
	// affiliate once with the summed amount, all in one transaction. It
	// returns the commissions that actually transitioned.
	ApproveBatch(ctx context.Context, params ApproveBatchParams) ([]domain.Commission, error)
}

type AffiliateRepository interface {
	Create(ctx context.Context, profile domain.AffiliateProfile) error
	GetByUserID(ctx context.Context, userID string) (domain.AffiliateProfile, error)
	GetByUserIDs(ctx context.Context, userIDs []string) (map[string]domain.AffiliateProfile, error)
}

type ApplicationRepository interface {
	Create(ctx context.Context, app domain.AffiliateApplication) error
	GetByID(ctx context.Context, applicationID string) (domain.AffiliateApplication, error)
	GetPendingByUserID(ctx context.Context, userID string) (domain.AffiliateApplication, error)
	List(ctx context.Context, filter ApplicationFilter, page Page) ([]domain.AffiliateApplication, error)
	// Review decides a pending application; approval creates the affiliate
	// profile in the same transaction.
	Review(ctx context.Context, app domain.AffiliateApplication, profile *domain.AffiliateProfile) error
}

type OutboxRecord struct {
	RecordID     string
	EventType    string
	EventClass   string
	PartitionKey string
	Payload      []byte
	RetryCount   int
	CreatedAt    time.Time
	PublishedAt  *time.Time
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, record OutboxRecord) error
	FetchUnpublished(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, recordID string, at time.Time) error
	MarkFailed(ctx context.Context, recordID string, errMsg string, at time.Time) error
}

type EventDedupRepository interface {
	IsDuplicate(ctx context.Context, eventID string, now time.Time) (bool, error)
	MarkProcessed(ctx context.Context, eventID, eventType string, expiresAt time.Time) error
}
