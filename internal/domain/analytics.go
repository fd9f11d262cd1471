package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

func ParseGranularity(raw string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(raw))) {
	case "", GranularityDay:
		return GranularityDay, nil
	case GranularityWeek:
		return GranularityWeek, nil
	case GranularityMonth:
		return GranularityMonth, nil
	default:
		return "", fmt.Errorf("%w: groupBy must be day, week or month", ErrInvalidInput)
	}
}

// BucketKey maps t to its UTC bucket label. Weeks start on Sunday and are
// keyed by that Sunday's date.
func BucketKey(t time.Time, g Granularity) string {
	t = t.UTC()
	switch g {
	case GranularityMonth:
		return t.Format("2006-01")
	case GranularityWeek:
		start := t.AddDate(0, 0, -int(t.Weekday()))
		return start.Format("2006-01-02")
	default:
		return t.Format("2006-01-02")
	}
}

type TrafficBucket struct {
	Clicks      int64           `json:"clicks"`
	Conversions int64           `json:"conversions"`
	Earnings    decimal.Decimal `json:"earnings"`
}

type ReferralAnalytics struct {
	TotalClicks       int64                    `json:"total_clicks"`
	TotalConversions  int64                    `json:"total_conversions"`
	TotalEarnings     decimal.Decimal          `json:"total_earnings"`
	ConversionRate    decimal.Decimal          `json:"conversion_rate"`
	AverageOrderValue decimal.Decimal          `json:"average_order_value"`
	ByDate            map[string]TrafficBucket `json:"by_date"`
	ByProduct         map[string]TrafficBucket `json:"by_product"`
	ByReferralLink    map[string]TrafficBucket `json:"by_referral_link"`
}

// FoldReferrals aggregates click records. Every referral counts as a click;
// converted ones also count a conversion and their commission as earnings.
// AverageOrderValue is earnings per conversion.
func FoldReferrals(rows []Referral, g Granularity) ReferralAnalytics {
	out := ReferralAnalytics{
		ByDate:         map[string]TrafficBucket{},
		ByProduct:      map[string]TrafficBucket{},
		ByReferralLink: map[string]TrafficBucket{},
	}
	for _, row := range rows {
		converted := row.Status == ReferralStatusConverted
		earned := decimal.Zero
		if converted {
			earned = row.CommissionAmount
			out.TotalConversions++
			out.TotalEarnings = out.TotalEarnings.Add(earned)
		}
		out.TotalClicks++

		addTraffic(out.ByDate, BucketKey(row.ClickedAt, g), converted, earned)
		addTraffic(out.ByProduct, row.ProductID, converted, earned)
		if row.ReferralLinkID != "" {
			addTraffic(out.ByReferralLink, row.ReferralLinkID, converted, earned)
		}
	}
	if out.TotalClicks > 0 {
		out.ConversionRate = decimal.NewFromInt(out.TotalConversions).
			Div(decimal.NewFromInt(out.TotalClicks)).Mul(hundred).Round(2)
	}
	if out.TotalConversions > 0 {
		out.AverageOrderValue = out.TotalEarnings.Div(decimal.NewFromInt(out.TotalConversions)).Round(2)
	}
	return out
}

func addTraffic(m map[string]TrafficBucket, key string, converted bool, earned decimal.Decimal) {
	b := m[key]
	b.Clicks++
	if converted {
		b.Conversions++
		b.Earnings = b.Earnings.Add(earned)
	}
	m[key] = b
}

type AmountBucket struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// CommissionAggregate is the fold used by both the affiliate summary and the
// admin statistics views.
type CommissionAggregate struct {
	TotalCount        int64                             `json:"total_count"`
	TotalAmount       decimal.Decimal                   `json:"total_amount"`
	AverageCommission decimal.Decimal                   `json:"average_commission"`
	ByStatus          map[CommissionStatus]AmountBucket `json:"by_status"`
	ByPeriod          map[string]AmountBucket           `json:"by_period"`
	ByProduct         map[string]AmountBucket           `json:"by_product"`
	ByAffiliate       map[string]AmountBucket           `json:"by_affiliate"`
}

func FoldCommissions(rows []Commission, g Granularity) CommissionAggregate {
	out := CommissionAggregate{
		ByStatus: map[CommissionStatus]AmountBucket{
			CommissionStatusPending:  {},
			CommissionStatusApproved: {},
			CommissionStatusRejected: {},
			CommissionStatusPaid:     {},
		},
		ByPeriod:    map[string]AmountBucket{},
		ByProduct:   map[string]AmountBucket{},
		ByAffiliate: map[string]AmountBucket{},
	}
	for _, row := range rows {
		out.TotalCount++
		out.TotalAmount = out.TotalAmount.Add(row.CommissionAmount)
		addAmount(out.ByStatus, row.Status, row.CommissionAmount)
		addAmount(out.ByPeriod, BucketKey(row.CreatedAt, g), row.CommissionAmount)
		addAmount(out.ByProduct, row.ProductID, row.CommissionAmount)
		addAmount(out.ByAffiliate, row.AffiliateID, row.CommissionAmount)
	}
	if out.TotalCount > 0 {
		out.AverageCommission = out.TotalAmount.Div(decimal.NewFromInt(out.TotalCount)).Round(2)
	}
	return out
}

func addAmount[K comparable](m map[K]AmountBucket, key K, amount decimal.Decimal) {
	b := m[key]
	b.Count++
	b.Amount = b.Amount.Add(amount)
	m[key] = b
}
