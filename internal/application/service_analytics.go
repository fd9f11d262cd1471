package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
)

// GetCommissionSummary folds the caller's commissions by status, month and product.
func (s *Service) GetCommissionSummary(ctx context.Context, actor Actor, in DateRangeInput) (domain.CommissionAggregate, error) {
	if err := requireAffiliate(actor); err != nil {
		return domain.CommissionAggregate{}, err
	}
	if err := validateRange(in); err != nil {
		return domain.CommissionAggregate{}, err
	}
	rows, err := s.commissions.ListAll(ctx, ports.CommissionFilter{AffiliateID: actor.SubjectID, From: in.From, To: in.To})
	if err != nil {
		return domain.CommissionAggregate{}, err
	}
	return domain.FoldCommissions(rows, domain.GranularityMonth), nil
}

// GetCommissionStatistics folds all commissions by status, day, affiliate and product.
func (s *Service) GetCommissionStatistics(ctx context.Context, actor Actor, in DateRangeInput) (domain.CommissionAggregate, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.CommissionAggregate{}, err
	}
	if err := validateRange(in); err != nil {
		return domain.CommissionAggregate{}, err
	}
	rows, err := s.commissions.ListAll(ctx, ports.CommissionFilter{From: in.From, To: in.To})
	if err != nil {
		return domain.CommissionAggregate{}, err
	}
	return domain.FoldCommissions(rows, domain.GranularityDay), nil
}

func (s *Service) GetReferralAnalytics(ctx context.Context, actor Actor, in ReferralAnalyticsInput) (domain.ReferralAnalytics, error) {
	if err := requireAffiliate(actor); err != nil {
		return domain.ReferralAnalytics{}, err
	}
	if err := validateRange(in.DateRangeInput); err != nil {
		return domain.ReferralAnalytics{}, err
	}
	granularity, err := domain.ParseGranularity(in.GroupBy)
	if err != nil {
		return domain.ReferralAnalytics{}, err
	}
	rows, err := s.referrals.List(ctx, ports.ReferralFilter{
		AffiliateID:    actor.SubjectID,
		ProductID:      strings.TrimSpace(in.ProductID),
		ReferralLinkID: strings.TrimSpace(in.ReferralLinkID),
		From:           in.From,
		To:             in.To,
	})
	if err != nil {
		return domain.ReferralAnalytics{}, err
	}
	return domain.FoldReferrals(rows, granularity), nil
}

func validateRange(in DateRangeInput) error {
	if in.From != nil && in.To != nil && in.To.Before(*in.From) {
		return fmt.Errorf("%w: endDate is before startDate", domain.ErrInvalidInput)
	}
	return nil
}
