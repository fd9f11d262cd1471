package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mladenvic/promoaffiliate/internal/domain"
)

func TestGenerateReferralLink(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	f.seedProduct(t, "prod-1", domain.CommissionTypePercentage, "10")
	ctx := context.Background()

	res, err := f.svc.GenerateReferralLink(ctx, affiliateActor("aff-1"), GenerateReferralLinkInput{
		ProductID:        " prod-1 ",
		CampaignName:     "spring",
		CustomParameters: map[string]string{"utm_source": "blog"},
	})
	if err != nil {
		t.Fatalf("generate link: %v", err)
	}
	link := res.Link
	if link.AffiliateID != "aff-1" || link.ProductID != "prod-1" || !link.IsActive {
		t.Fatalf("unexpected link %+v", link)
	}
	if link.ClickCount != 0 || link.ConversionCount != 0 || !link.TotalEarnings.IsZero() {
		t.Fatalf("expected zero counters, got %+v", link)
	}
	if len(link.ReferralCode) != 16 {
		t.Fatalf("expected 16 char code, got %q", link.ReferralCode)
	}
	if res.ReferralURL != "https://aff.example.com/track/"+link.ReferralCode {
		t.Fatalf("unexpected referral url %q", res.ReferralURL)
	}
	if got := f.repos.Outbox.Pending(domain.EventReferralLinkCreated); len(got) != 1 || got[0].PartitionKey != "aff-1" {
		t.Fatalf("expected one link created event keyed by affiliate, got %+v", got)
	}
}

func TestGenerateReferralLinkRejections(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	f.seedProduct(t, "prod-1", domain.CommissionTypePercentage, "10")
	inactive := f.seedProduct(t, "prod-off", domain.CommissionTypeFlat, "5")
	inactive.IsActive = false
	if err := f.repos.Products.Update(context.Background(), inactive); err != nil {
		t.Fatalf("deactivate product: %v", err)
	}

	tests := []struct {
		name  string
		actor Actor
		in    GenerateReferralLinkInput
		want  error
	}{
		{name: "anonymous", actor: Actor{}, in: GenerateReferralLinkInput{ProductID: "prod-1"}, want: domain.ErrUnauthorized},
		{name: "not an affiliate", actor: Actor{SubjectID: "user-1"}, in: GenerateReferralLinkInput{ProductID: "prod-1"}, want: domain.ErrForbidden},
		{name: "missing product id", actor: affiliateActor("aff-1"), in: GenerateReferralLinkInput{}, want: domain.ErrInvalidInput},
		{name: "unknown product", actor: affiliateActor("aff-1"), in: GenerateReferralLinkInput{ProductID: "nope"}, want: domain.ErrNotFound},
		{name: "inactive product", actor: affiliateActor("aff-1"), in: GenerateReferralLinkInput{ProductID: "prod-off"}, want: domain.ErrNotFound},
		{
			name:  "reserved parameter",
			actor: affiliateActor("aff-1"),
			in:    GenerateReferralLinkInput{ProductID: "prod-1", CustomParameters: map[string]string{"Ref": "x"}},
			want:  domain.ErrInvalidInput,
		},
	}
	for _, tc := range tests {
		if _, err := f.svc.GenerateReferralLink(context.Background(), tc.actor, tc.in); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestGenerateReferralLinkRetriesOnCodeCollision(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{CodeIssueAttempts: 3})
	f.seedProduct(t, "prod-1", domain.CommissionTypePercentage, "10")
	ctx := context.Background()
	if err := f.repos.Links.Create(ctx, domain.ReferralLink{
		LinkID:        "existing",
		AffiliateID:   "aff-2",
		ProductID:     "prod-1",
		ReferralCode:  "taken",
		TotalEarnings: decimal.Zero,
		IsActive:      true,
		CreatedAt:     f.now,
	}); err != nil {
		t.Fatalf("seed link: %v", err)
	}

	codes := []string{"taken", "taken", "fresh"}
	calls := 0
	f.svc.codeFn = func() (string, error) {
		code := codes[calls]
		calls++
		return code, nil
	}
	res, err := f.svc.GenerateReferralLink(ctx, affiliateActor("aff-1"), GenerateReferralLinkInput{ProductID: "prod-1"})
	if err != nil {
		t.Fatalf("generate link: %v", err)
	}
	if res.Link.ReferralCode != "fresh" || calls != 3 {
		t.Fatalf("expected third code after two collisions, got %q after %d calls", res.Link.ReferralCode, calls)
	}

	f.svc.codeFn = func() (string, error) { return "taken", nil }
	if _, err := f.svc.GenerateReferralLink(ctx, affiliateActor("aff-1"), GenerateReferralLinkInput{ProductID: "prod-1"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict once attempts are exhausted, got %v", err)
	}
}

func TestListReferralLinksScopesToCaller(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	f.seedProduct(t, "prod-1", domain.CommissionTypePercentage, "10")
	f.seedProduct(t, "prod-2", domain.CommissionTypeFlat, "3")
	ctx := context.Background()

	for i, productID := range []string{"prod-1", "prod-2", "prod-1"} {
		f.now = f.now.Add(time.Minute)
		if _, err := f.svc.GenerateReferralLink(ctx, affiliateActor("aff-1"), GenerateReferralLinkInput{ProductID: productID}); err != nil {
			t.Fatalf("generate link %d: %v", i, err)
		}
	}
	if _, err := f.svc.GenerateReferralLink(ctx, affiliateActor("aff-2"), GenerateReferralLinkInput{ProductID: "prod-1"}); err != nil {
		t.Fatalf("generate other affiliate link: %v", err)
	}

	page, err := f.svc.ListReferralLinks(ctx, affiliateActor("aff-1"), ListReferralLinksInput{PageInput: PageInput{Limit: 2}})
	if err != nil {
		t.Fatalf("list links: %v", err)
	}
	if len(page.Items) != 2 || !page.HasMore || page.Page != 1 || page.Limit != 2 {
		t.Fatalf("unexpected first page %+v", page)
	}
	if page.Items[0].Link.CreatedAt.Before(page.Items[1].Link.CreatedAt) {
		t.Fatalf("expected newest first")
	}
	for _, item := range page.Items {
		if item.Link.AffiliateID != "aff-1" {
			t.Fatalf("listed another affiliate's link: %+v", item.Link)
		}
		if item.Product == nil || item.Product.ProductID != item.Link.ProductID {
			t.Fatalf("expected product enrichment, got %+v", item.Product)
		}
	}

	filtered, err := f.svc.ListReferralLinks(ctx, affiliateActor("aff-1"), ListReferralLinksInput{ProductID: "prod-2"})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered.Items) != 1 || filtered.HasMore {
		t.Fatalf("expected one prod-2 link, got %+v", filtered)
	}
}
