package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mladenvic/promoaffiliate/internal/contracts"
	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
)

// TrackConversion attributes a completed order to a prior click and opens a
// pending commission for the affiliate. The caller is the order system,
// authenticated at the edge.
func (s *Service) TrackConversion(ctx context.Context, in TrackConversionInput) (TrackConversionResult, error) {
	in.ReferralID = strings.TrimSpace(in.ReferralID)
	in.OrderID = strings.TrimSpace(in.OrderID)
	in.CustomerID = strings.TrimSpace(in.CustomerID)
	if in.ReferralID == "" || in.OrderID == "" {
		return TrackConversionResult{}, fmt.Errorf("%w: referralId and orderId are required", domain.ErrInvalidInput)
	}
	if !in.OrderValue.IsPositive() {
		return TrackConversionResult{}, fmt.Errorf("%w: orderValue must be positive", domain.ErrInvalidInput)
	}

	referral, err := s.referrals.GetByID(ctx, in.ReferralID)
	if err != nil {
		return TrackConversionResult{}, err
	}
	if referral.Status != domain.ReferralStatusClicked {
		return TrackConversionResult{}, fmt.Errorf("%w: referral already converted", domain.ErrConflict)
	}
	product, err := s.products.GetByID(ctx, referral.ProductID)
	if err != nil {
		return TrackConversionResult{}, err
	}
	if _, err := s.affiliates.GetByUserID(ctx, referral.AffiliateID); err != nil {
		return TrackConversionResult{}, err
	}
	amount, err := domain.CalculateCommission(product.CommissionType, product.CommissionRate, in.OrderValue)
	if err != nil {
		return TrackConversionResult{}, err
	}

	now := s.nowFn()
	commission := domain.Commission{
		CommissionID:     uuid.NewString(),
		AffiliateID:      referral.AffiliateID,
		ReferralID:       referral.ReferralID,
		ProductID:        referral.ProductID,
		OrderID:          in.OrderID,
		OrderValue:       in.OrderValue,
		CommissionAmount: amount,
		CommissionRate:   product.CommissionRate,
		CommissionType:   product.CommissionType,
		Status:           domain.CommissionStatusPending,
		CreatedAt:        now,
	}
	if _, err := s.referrals.RecordConversion(ctx, ports.ConversionRecord{
		ReferralID: referral.ReferralID,
		CustomerID: in.CustomerID,
		Commission: commission,
		At:         now,
	}); err != nil {
		return TrackConversionResult{}, err
	}

	s.emit(ctx, domain.EventConversionRecorded, "", contracts.ConversionRecordedPayload{
		AffiliateID:      commission.AffiliateID,
		ReferralID:       commission.ReferralID,
		CommissionID:     commission.CommissionID,
		ProductID:        commission.ProductID,
		OrderID:          commission.OrderID,
		OrderValue:       commission.OrderValue,
		CommissionAmount: commission.CommissionAmount,
		ConvertedAt:      formatTime(now),
	}, commission.AffiliateID, now)
	s.logger.InfoContext(ctx, "conversion recorded",
		"operation", "track_conversion",
		"outcome", "success",
		"referral_id", commission.ReferralID,
		"commission_id", commission.CommissionID,
		"affiliate_id", commission.AffiliateID,
	)
	return TrackConversionResult{CommissionID: commission.CommissionID, CommissionAmount: amount}, nil
}
