package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mladenvic/promoaffiliate/internal/adapters/cache"
	"github.com/mladenvic/promoaffiliate/internal/adapters/memory"
	"github.com/mladenvic/promoaffiliate/internal/domain"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	repos memory.Repositories
	cache *cache.MemoryCache
	now   time.Time
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		repos: memory.NewRepositories(),
		cache: cache.NewMemoryCache(),
		now:   testNow,
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "https://aff.example.com"
	}
	f.svc = NewService(Dependencies{
		Config:       cfg,
		Products:     f.repos.Products,
		Links:        f.repos.Links,
		Referrals:    f.repos.Referrals,
		Commissions:  f.repos.Commissions,
		Affiliates:   f.repos.Affiliates,
		Applications: f.repos.Applications,
		Outbox:       f.repos.Outbox,
		EventDedup:   f.repos.EventDedup,
		Cache:        f.cache,
		Locker:       f.cache,
	})
	f.svc.nowFn = func() time.Time { return f.now }
	return f
}

func affiliateActor(id string) Actor {
	return Actor{SubjectID: id, Email: id + "@example.com", Affiliate: true}
}

func adminActor() Actor {
	return Actor{SubjectID: "admin-1", Admin: true}
}

func (f *fixture) seedProduct(t *testing.T, id string, kind domain.CommissionType, rate string) domain.Product {
	t.Helper()
	p := domain.Product{
		ProductID:      id,
		Title:          "Product " + id,
		Price:          decimal.NewFromInt(100),
		Category:       "courses",
		CommissionRate: decimal.RequireFromString(rate),
		CommissionType: kind,
		ExternalURL:    "https://shop.example.com/p/" + id + "?lang=en",
		IsActive:       true,
		CreatedAt:      f.now,
		UpdatedAt:      f.now,
	}
	if err := f.repos.Products.Create(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func (f *fixture) seedAffiliate(t *testing.T, id string) {
	t.Helper()
	if err := f.repos.Affiliates.Create(context.Background(), domain.AffiliateProfile{
		UserID:           id,
		Email:            id + "@example.com",
		CommissionRate:   decimal.RequireFromString("0.05"),
		PayoutThreshold:  decimal.NewFromInt(50),
		TotalEarnings:    decimal.Zero,
		ApprovedEarnings: decimal.Zero,
		IsActive:         true,
		ApprovedAt:       f.now,
	}); err != nil {
		t.Fatalf("seed affiliate: %v", err)
	}
}

func (f *fixture) affiliate(t *testing.T, id string) domain.AffiliateProfile {
	t.Helper()
	p, err := f.repos.Affiliates.GetByUserID(context.Background(), id)
	if err != nil {
		t.Fatalf("load affiliate %s: %v", id, err)
	}
	return p
}

func (f *fixture) commission(t *testing.T, id string) domain.Commission {
	t.Helper()
	c, err := f.repos.Commissions.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load commission %s: %v", id, err)
	}
	return c
}

// convert drives link -> click -> conversion and returns the commission id.
func (f *fixture) convert(t *testing.T, affiliateID, productID, orderValue string) string {
	t.Helper()
	ctx := context.Background()
	link, err := f.svc.GenerateReferralLink(ctx, affiliateActor(affiliateID), GenerateReferralLinkInput{ProductID: productID})
	if err != nil {
		t.Fatalf("generate link: %v", err)
	}
	click, err := f.svc.TrackClick(ctx, TrackClickInput{ReferralCode: link.Link.ReferralCode, ClientIP: "203.0.113.9", UserAgent: "ua"})
	if err != nil {
		t.Fatalf("track click: %v", err)
	}
	res, err := f.svc.TrackConversion(ctx, TrackConversionInput{
		ReferralID: click.ReferralID,
		OrderID:    "order-" + click.ReferralID,
		OrderValue: decimal.RequireFromString(orderValue),
	})
	if err != nil {
		t.Fatalf("track conversion: %v", err)
	}
	return res.CommissionID
}

func equalDecimal(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s: expected %s, got %s", what, want, got)
	}
}
