package application

import (
	"log/slog"
	"time"

	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
	"github.com/shopspring/decimal"
)

type Config struct {
	ServiceName          string
	PublicBaseURL        string
	ReferralCodeBytes    int
	CodeIssueAttempts    int
	AutoApproveAfter     time.Duration
	AutoApproveBatchSize int
	SweepLockTTL         time.Duration
	ProductCacheTTL      time.Duration
	DefaultPageSize      int
	AdminPageSize        int
	MaxPageSize          int
	EventDedupTTL        time.Duration

	DefaultAffiliateCommissionRate decimal.Decimal
	DefaultPayoutThreshold         decimal.Decimal
}

// Actor is the verified caller. Role flags come from identity provider claims.
type Actor struct {
	SubjectID string
	Email     string
	Admin     bool
	Affiliate bool
	RequestID string
}

type PageInput struct {
	Page  int
	Limit int
}

type GenerateReferralLinkInput struct {
	ProductID        string
	CampaignName     string
	CustomParameters map[string]string
}

type GeneratedReferralLink struct {
	Link        domain.ReferralLink
	ReferralURL string
}

type ListReferralLinksInput struct {
	PageInput
	ProductID string
	IsActive  *bool
}

type ReferralLinkView struct {
	Link    domain.ReferralLink
	Product *domain.Product
}

type ReferralLinkPage struct {
	Items   []ReferralLinkView
	Page    int
	Limit   int
	HasMore bool
}

type TrackClickInput struct {
	ReferralCode string
	ClientIP     string
	UserAgent    string
	ReferrerURL  string
}

type TrackClickResult struct {
	RedirectURL string
	SessionID   string
	ReferralID  string
	AffiliateID string
}

type TrackConversionInput struct {
	ReferralID string
	OrderID    string
	OrderValue decimal.Decimal
	CustomerID string
}

type TrackConversionResult struct {
	CommissionID     string
	CommissionAmount decimal.Decimal
}

type ListCommissionsInput struct {
	PageInput
	AffiliateID string
	ProductID   string
	Status      string
	From        *time.Time
	To          *time.Time
}

type CommissionView struct {
	Commission domain.Commission
	Product    *domain.Product
	Referral   *domain.Referral
	Affiliate  *domain.AffiliateProfile
}

type CommissionPage struct {
	Items   []CommissionView
	Page    int
	Limit   int
	HasMore bool
}

type ReviewCommissionInput struct {
	CommissionID string
	Status       string
	Notes        string
}

type BulkApproveInput struct {
	CommissionIDs []string
	Notes         string
}

type BulkApproveResult struct {
	// ProcessedCount echoes the number of requested ids.
	ProcessedCount int
	ApprovedCount  int
}

type AutoApproveResult struct {
	Approved int
	Batches  int
	Skipped  bool
}

type DateRangeInput struct {
	From *time.Time
	To   *time.Time
}

type ReferralAnalyticsInput struct {
	DateRangeInput
	ProductID      string
	ReferralLinkID string
	GroupBy        string
}

type ProductInput struct {
	Title          string
	Description    string
	Price          decimal.Decimal
	Category       string
	CommissionRate decimal.Decimal
	CommissionType string
	ExternalURL    string
	IsActive       *bool
}

type ListProductsInput struct {
	PageInput
	Category string
	IsActive *bool
}

type ProductPage struct {
	Items   []domain.Product
	Page    int
	Limit   int
	HasMore bool
}

type ApplyInput struct {
	BusinessName        string
	Website             string
	PromotionalChannels []string
	AudienceSize        string
	ReasonForApplying   string
}

type ListApplicationsInput struct {
	PageInput
	Status string
}

type ReviewApplicationInput struct {
	ApplicationID string
	Status        string
	Notes         string
}

type ApplicationPage struct {
	Items   []domain.AffiliateApplication
	Page    int
	Limit   int
	HasMore bool
}

type Service struct {
	cfg    Config
	logger *slog.Logger

	products     ports.ProductRepository
	links        ports.ReferralLinkRepository
	referrals    ports.ReferralRepository
	commissions  ports.CommissionRepository
	affiliates   ports.AffiliateRepository
	applications ports.ApplicationRepository
	outbox       ports.OutboxRepository
	eventDedup   ports.EventDedupRepository

	cache  ports.Cache
	locker ports.Locker

	nowFn  func() time.Time
	codeFn func() (string, error)
}

type Dependencies struct {
	Config Config
	Logger *slog.Logger

	Products     ports.ProductRepository
	Links        ports.ReferralLinkRepository
	Referrals    ports.ReferralRepository
	Commissions  ports.CommissionRepository
	Affiliates   ports.AffiliateRepository
	Applications ports.ApplicationRepository
	Outbox       ports.OutboxRepository
	EventDedup   ports.EventDedupRepository

	Cache  ports.Cache
	Locker ports.Locker
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "promo-affiliate-service"
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:8080"
	}
	if cfg.ReferralCodeBytes <= 0 {
		cfg.ReferralCodeBytes = 8
	}
	if cfg.CodeIssueAttempts <= 0 {
		cfg.CodeIssueAttempts = 5
	}
	if cfg.AutoApproveAfter <= 0 {
		cfg.AutoApproveAfter = 7 * 24 * time.Hour
	}
	if cfg.AutoApproveBatchSize <= 0 {
		cfg.AutoApproveBatchSize = 200
	}
	if cfg.SweepLockTTL <= 0 {
		cfg.SweepLockTTL = 10 * time.Minute
	}
	if cfg.ProductCacheTTL <= 0 {
		cfg.ProductCacheTTL = 5 * time.Minute
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.AdminPageSize <= 0 {
		cfg.AdminPageSize = 50
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.EventDedupTTL <= 0 {
		cfg.EventDedupTTL = 7 * 24 * time.Hour
	}
	if !cfg.DefaultAffiliateCommissionRate.IsPositive() {
		cfg.DefaultAffiliateCommissionRate = decimal.RequireFromString("0.05")
	}
	if !cfg.DefaultPayoutThreshold.IsPositive() {
		cfg.DefaultPayoutThreshold = decimal.NewFromInt(50)
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	codeBytes := cfg.ReferralCodeBytes
	return &Service{
		cfg:          cfg,
		logger:       logger.With("module", "application", "layer", "service"),
		products:     deps.Products,
		links:        deps.Links,
		referrals:    deps.Referrals,
		commissions:  deps.Commissions,
		affiliates:   deps.Affiliates,
		applications: deps.Applications,
		outbox:       deps.Outbox,
		eventDedup:   deps.EventDedup,
		cache:        deps.Cache,
		locker:       deps.Locker,
		nowFn:        func() time.Time { return time.Now().UTC() },
		codeFn:       func() (string, error) { return GenerateCode(codeBytes) },
	}
}
