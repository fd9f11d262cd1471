package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	AutoApproveReviewer = "system"
	AutoApproveNotes    = "Auto-approved after review period"
)

var hundred = decimal.NewFromInt(100)

// CalculateCommission returns the payout for one order. Percentage rates are
// expressed in whole percent (10 means 10%). Amounts are rounded to cents.
func CalculateCommission(kind CommissionType, rate, orderValue decimal.Decimal) (decimal.Decimal, error) {
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative commission rate", ErrInvalidInput)
	}
	switch kind {
	case CommissionTypePercentage:
		return orderValue.Mul(rate).Div(hundred).Round(2), nil
	case CommissionTypeFlat:
		return rate.Round(2), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown commission type %q", ErrInvalidInput, kind)
	}
}

// CanTransition reports whether the commission state machine allows from -> to.
// rejected and paid are terminal.
func CanTransition(from, to CommissionStatus) bool {
	switch from {
	case CommissionStatusPending:
		return to == CommissionStatusApproved || to == CommissionStatusRejected
	case CommissionStatusApproved:
		return to == CommissionStatusPaid
	default:
		return false
	}
}

// IsReviewOutcome reports whether status is an accepted admin review decision.
func IsReviewOutcome(status CommissionStatus) bool {
	return status == CommissionStatusApproved || status == CommissionStatusRejected
}

// CreditsByAffiliate sums commission amounts per affiliate so each affiliate
// ledger is touched once per batch.
func CreditsByAffiliate(rows []Commission) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.AffiliateID] = out[row.AffiliateID].Add(row.CommissionAmount)
	}
	return out
}
