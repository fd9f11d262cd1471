package application

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mladenvic/promoaffiliate/internal/domain"
)

func TestTrackConversionComputesCommission(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		kind       domain.CommissionType
		rate       string
		orderValue string
		want       string
	}{
		{name: "percentage", kind: domain.CommissionTypePercentage, rate: "10", orderValue: "250.00", want: "25.00"},
		{name: "percentage rounds to cents", kind: domain.CommissionTypePercentage, rate: "12.5", orderValue: "99.99", want: "12.50"},
		{name: "flat ignores order value", kind: domain.CommissionTypeFlat, rate: "7.5", orderValue: "1000", want: "7.50"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, Config{})
			f.seedProduct(t, "prod-1", tc.kind, tc.rate)
			f.seedAffiliate(t, "aff-1")

			id := f.convert(t, "aff-1", "prod-1", tc.orderValue)
			c := f.commission(t, id)
			equalDecimal(t, "commission amount", c.CommissionAmount, tc.want)
			if c.Status != domain.CommissionStatusPending || c.CommissionType != tc.kind {
				t.Fatalf("unexpected commission %+v", c)
			}

			aff := f.affiliate(t, "aff-1")
			equalDecimal(t, "total earnings", aff.TotalEarnings, tc.want)
			equalDecimal(t, "approved earnings", aff.ApprovedEarnings, "0")
			if aff.TotalConversions != 1 {
				t.Fatalf("expected one conversion, got %d", aff.TotalConversions)
			}

			ref, err := f.repos.Referrals.GetByID(context.Background(), c.ReferralID)
			if err != nil {
				t.Fatalf("load referral: %v", err)
			}
			if ref.Status != domain.ReferralStatusConverted || ref.ConvertedAt == nil || ref.OrderID != c.OrderID {
				t.Fatalf("referral not converted: %+v", ref)
			}
			link, _ := f.repos.Links.Get(ref.ReferralLinkID)
			if link.ConversionCount != 1 {
				t.Fatalf("expected link conversion count 1, got %d", link.ConversionCount)
			}
			equalDecimal(t, "link earnings", link.TotalEarnings, tc.want)
		})
	}
}

func TestTrackConversionIsAtMostOncePerReferral(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	f.seedProduct(t, "prod-1", domain.CommissionTypePercentage, "10")
	f.seedAffiliate(t, "aff-1")
	ctx := context.Background()

	id := f.convert(t, "aff-1", "prod-1", "100")
	referralID := f.commission(t, id).ReferralID

	_, err := f.svc.TrackConversion(ctx, TrackConversionInput{
		ReferralID: referralID,
		OrderID:    "order-2",
		OrderValue: decimal.NewFromInt(500),
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on second conversion, got %v", err)
	}
	aff := f.affiliate(t, "aff-1")
	equalDecimal(t, "total earnings", aff.TotalEarnings, "10")
	if aff.TotalConversions != 1 {
		t.Fatalf("expected conversions to stay at 1, got %d", aff.TotalConversions)
	}
	if got := f.repos.Outbox.Pending(domain.EventConversionRecorded); len(got) != 1 {
		t.Fatalf("expected a single conversion event, got %d", len(got))
	}
}

func TestTrackConversionValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	tests := []struct {
		name string
		in   TrackConversionInput
		want error
	}{
		{name: "missing referral", in: TrackConversionInput{OrderID: "o", OrderValue: decimal.NewFromInt(1)}, want: domain.ErrInvalidInput},
		{name: "missing order", in: TrackConversionInput{ReferralID: "r", OrderValue: decimal.NewFromInt(1)}, want: domain.ErrInvalidInput},
		{name: "zero value", in: TrackConversionInput{ReferralID: "r", OrderID: "o"}, want: domain.ErrInvalidInput},
		{name: "negative value", in: TrackConversionInput{ReferralID: "r", OrderID: "o", OrderValue: decimal.NewFromInt(-5)}, want: domain.ErrInvalidInput},
		{name: "unknown referral", in: TrackConversionInput{ReferralID: "r", OrderID: "o", OrderValue: decimal.NewFromInt(5)}, want: domain.ErrNotFound},
	}
	for _, tc := range tests {
		if _, err := f.svc.TrackConversion(context.Background(), tc.in); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}
