package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
)

// openTestStore connects to POSTGRES_TEST_URL and applies the migrations.
// Rows are keyed by a per-test suffix, so runs share one database.
func openTestStore(t *testing.T) Repositories {
	t.Helper()
	url := os.Getenv("POSTGRES_TEST_URL")
	if url == "" {
		t.Skip("POSTGRES_TEST_URL not set")
	}
	ctx := context.Background()
	db, err := Connect(ctx, url, 8)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRepositories(db)
}

func TestStoreReferralLifecycle(t *testing.T) {
	repos := openTestStore(t)
	ctx := context.Background()
	suffix := uuid.NewString()[:8]
	now := time.Now().UTC().Truncate(time.Microsecond)
	affiliateID := "aff-" + suffix

	if err := repos.Products.Create(ctx, domain.Product{
		ProductID:      "prod-" + suffix,
		Title:          "Course",
		Price:          decimal.NewFromInt(200),
		CommissionRate: decimal.NewFromInt(10),
		CommissionType: domain.CommissionTypePercentage,
		ExternalURL:    "https://shop.example.com/course",
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}); err != nil {
		t.Fatalf("create product: %v", err)
	}
	if err := repos.Affiliates.Create(ctx, domain.AffiliateProfile{
		UserID:          affiliateID,
		CommissionRate:  decimal.RequireFromString("0.05"),
		PayoutThreshold: decimal.NewFromInt(50),
		IsActive:        true,
		ApprovedAt:      now,
	}); err != nil {
		t.Fatalf("create affiliate: %v", err)
	}
	link := domain.ReferralLink{
		LinkID:           "link-" + suffix,
		AffiliateID:      affiliateID,
		ProductID:        "prod-" + suffix,
		ReferralCode:     "code" + suffix,
		CustomParameters: map[string]string{"utm_source": "news"},
		IsActive:         true,
		CreatedAt:        now,
	}
	if err := repos.Links.Create(ctx, link); err != nil {
		t.Fatalf("create link: %v", err)
	}
	dup := link
	dup.LinkID = "link2-" + suffix
	if err := repos.Links.Create(ctx, dup); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for a reused code, got %v", err)
	}

	const clicks = 10
	referralIDs := make([]string, clicks)
	var wg sync.WaitGroup
	errs := make(chan error, clicks)
	for i := 0; i < clicks; i++ {
		referralIDs[i] = uuid.NewString()
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			errs <- repos.Referrals.RecordClick(ctx, domain.Referral{
				ReferralID:     id,
				AffiliateID:    affiliateID,
				ProductID:      link.ProductID,
				ReferralLinkID: link.LinkID,
				ReferralCode:   link.ReferralCode,
				Status:         domain.ReferralStatusClicked,
				SessionID:      uuid.NewString(),
				ClickedAt:      now,
			})
		}(referralIDs[i])
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("record click: %v", err)
		}
	}
	stored, err := repos.Links.GetActiveByCode(ctx, link.ReferralCode)
	if err != nil {
		t.Fatalf("load link: %v", err)
	}
	if stored.ClickCount != clicks || stored.CustomParameters["utm_source"] != "news" {
		t.Fatalf("expected %d clicks and custom params, got %+v", clicks, stored)
	}

	convert := func(referralID, orderID string, amount int64) (string, error) {
		commissionID := uuid.NewString()
		_, err := repos.Referrals.RecordConversion(ctx, ports.ConversionRecord{
			ReferralID: referralID,
			Commission: domain.Commission{
				CommissionID:     commissionID,
				AffiliateID:      affiliateID,
				ReferralID:       referralID,
				ProductID:        link.ProductID,
				OrderID:          orderID,
				OrderValue:       decimal.NewFromInt(amount * 10),
				CommissionAmount: decimal.NewFromInt(amount),
				CommissionRate:   decimal.NewFromInt(10),
				CommissionType:   domain.CommissionTypePercentage,
				Status:           domain.CommissionStatusPending,
				CreatedAt:        now,
			},
			At: now,
		})
		return commissionID, err
	}
	first, err := convert(referralIDs[0], "order-a-"+suffix, 20)
	if err != nil {
		t.Fatalf("first conversion: %v", err)
	}
	if _, err := convert(referralIDs[0], "order-b-"+suffix, 20); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict converting twice, got %v", err)
	}
	second, err := convert(referralIDs[1], "order-c-"+suffix, 7)
	if err != nil {
		t.Fatalf("second conversion: %v", err)
	}
	third, err := convert(referralIDs[2], "order-d-"+suffix, 3)
	if err != nil {
		t.Fatalf("third conversion: %v", err)
	}

	if _, err := repos.Commissions.Review(ctx, ports.ReviewParams{CommissionID: first, Status: domain.CommissionStatusApproved, ReviewedBy: "admin", At: now}); err != nil {
		t.Fatalf("review: %v", err)
	}
	if _, err := repos.Commissions.Review(ctx, ports.ReviewParams{CommissionID: first, Status: domain.CommissionStatusApproved, ReviewedBy: "admin", At: now}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on a second review, got %v", err)
	}

	approved, err := repos.Commissions.ApproveBatch(ctx, ports.ApproveBatchParams{
		CommissionIDs: []string{first, second, third, "missing-" + suffix},
		ReviewedBy:    domain.AutoApproveReviewer,
		At:            now,
	})
	if err != nil {
		t.Fatalf("approve batch: %v", err)
	}
	if len(approved) != 2 {
		t.Fatalf("expected only the two pending commissions to transition, got %d", len(approved))
	}

	profile, err := repos.Affiliates.GetByUserID(ctx, affiliateID)
	if err != nil {
		t.Fatalf("load affiliate: %v", err)
	}
	if profile.TotalReferrals != clicks || profile.TotalConversions != 3 {
		t.Fatalf("unexpected counters %+v", profile)
	}
	if !profile.TotalEarnings.Equal(decimal.NewFromInt(30)) || !profile.ApprovedEarnings.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected 30 total and approved, got %s / %s", profile.TotalEarnings, profile.ApprovedEarnings)
	}
}
