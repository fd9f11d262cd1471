package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mladenvic/promoaffiliate/internal/domain"
)

func TestAnalyticsEmptyHistory(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	ctx := context.Background()

	traffic, err := f.svc.GetReferralAnalytics(ctx, affiliateActor("aff-1"), ReferralAnalyticsInput{})
	if err != nil {
		t.Fatalf("referral analytics: %v", err)
	}
	if traffic.TotalClicks != 0 || !traffic.ConversionRate.IsZero() || !traffic.AverageOrderValue.IsZero() {
		t.Fatalf("expected zeroed analytics, got %+v", traffic)
	}
	if traffic.ByDate == nil || len(traffic.ByDate) != 0 {
		t.Fatalf("expected empty, non-nil buckets, got %+v", traffic.ByDate)
	}

	summary, err := f.svc.GetCommissionSummary(ctx, affiliateActor("aff-1"), DateRangeInput{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalCount != 0 || !summary.AverageCommission.IsZero() || len(summary.ByStatus) != 4 {
		t.Fatalf("expected empty summary with all statuses, got %+v", summary)
	}
}

func TestReferralAnalyticsFolds(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	f.seedProduct(t, "prod-1", domain.CommissionTypePercentage, "10")
	f.seedAffiliate(t, "aff-1")
	ctx := context.Background()

	f.convert(t, "aff-1", "prod-1", "100")
	f.convert(t, "aff-1", "prod-1", "300")
	gen, err := f.svc.GenerateReferralLink(ctx, affiliateActor("aff-1"), GenerateReferralLinkInput{ProductID: "prod-1"})
	if err != nil {
		t.Fatalf("generate link: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := f.svc.TrackClick(ctx, TrackClickInput{ReferralCode: gen.Link.ReferralCode}); err != nil {
			t.Fatalf("click: %v", err)
		}
	}

	res, err := f.svc.GetReferralAnalytics(ctx, affiliateActor("aff-1"), ReferralAnalyticsInput{GroupBy: "month"})
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if res.TotalClicks != 4 || res.TotalConversions != 2 {
		t.Fatalf("expected 4 clicks and 2 conversions, got %+v", res)
	}
	equalDecimal(t, "earnings", res.TotalEarnings, "40")
	equalDecimal(t, "conversion rate", res.ConversionRate, "50")
	equalDecimal(t, "average", res.AverageOrderValue, "20")
	if b := res.ByDate["2026-03"]; b.Clicks != 4 || b.Conversions != 2 {
		t.Fatalf("unexpected month bucket %+v", res.ByDate)
	}
	if b := res.ByReferralLink[gen.Link.LinkID]; b.Clicks != 2 || b.Conversions != 0 {
		t.Fatalf("unexpected link bucket %+v", b)
	}

	other, err := f.svc.GetReferralAnalytics(ctx, affiliateActor("aff-2"), ReferralAnalyticsInput{})
	if err != nil {
		t.Fatalf("other affiliate analytics: %v", err)
	}
	if other.TotalClicks != 0 {
		t.Fatalf("analytics leaked across affiliates: %+v", other)
	}
}

func TestAnalyticsRangeAndValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	f.seedProduct(t, "prod-1", domain.CommissionTypeFlat, "5")
	f.seedAffiliate(t, "aff-1")
	ctx := context.Background()
	start := f.now

	f.now = start.AddDate(0, -2, 0)
	f.convert(t, "aff-1", "prod-1", "10")
	f.now = start
	f.convert(t, "aff-1", "prod-1", "10")

	from := start.AddDate(0, 0, -7)
	summary, err := f.svc.GetCommissionSummary(ctx, affiliateActor("aff-1"), DateRangeInput{From: &from})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalCount != 1 {
		t.Fatalf("expected range to keep one commission, got %d", summary.TotalCount)
	}
	if b := summary.ByStatus[domain.CommissionStatusPending]; b.Count != 1 {
		t.Fatalf("unexpected status buckets %+v", summary.ByStatus)
	}

	stats, err := f.svc.GetCommissionStatistics(ctx, adminActor(), DateRangeInput{})
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.TotalCount != 2 || stats.ByAffiliate["aff-1"].Count != 2 || len(stats.ByPeriod) != 2 {
		t.Fatalf("unexpected statistics %+v", stats)
	}

	to := from.Add(-time.Hour)
	if _, err := f.svc.GetCommissionSummary(ctx, affiliateActor("aff-1"), DateRangeInput{From: &from, To: &to}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected inverted range rejected, got %v", err)
	}
	if _, err := f.svc.GetReferralAnalytics(ctx, affiliateActor("aff-1"), ReferralAnalyticsInput{GroupBy: "year"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected unknown groupBy rejected, got %v", err)
	}
	if _, err := f.svc.GetCommissionStatistics(ctx, affiliateActor("aff-1"), DateRangeInput{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected statistics forbidden for affiliates, got %v", err)
	}
}
