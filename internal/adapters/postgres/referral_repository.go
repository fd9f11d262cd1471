package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
)

type referralRepository struct {
	db *gorm.DB
}

func (r *referralRepository) GetByID(ctx context.Context, referralID string) (domain.Referral, error) {
	var rec referralModel
	if err := r.db.WithContext(ctx).Where("referral_id = ?", referralID).Take(&rec).Error; err != nil {
		return domain.Referral{}, translate(err)
	}
	return toDomainReferral(rec), nil
}

func (r *referralRepository) GetByIDs(ctx context.Context, referralIDs []string) (map[string]domain.Referral, error) {
	out := make(map[string]domain.Referral, len(referralIDs))
	if len(referralIDs) == 0 {
		return out, nil
	}
	var rows []referralModel
	if err := r.db.WithContext(ctx).Where("referral_id IN ?", referralIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ReferralID] = toDomainReferral(row)
	}
	return out, nil
}

func (r *referralRepository) List(ctx context.Context, filter ports.ReferralFilter) ([]domain.Referral, error) {
	q := r.db.WithContext(ctx).Model(&referralModel{})
	if filter.AffiliateID != "" {
		q = q.Where("affiliate_id = ?", filter.AffiliateID)
	}
	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.ReferralLinkID != "" {
		q = q.Where("referral_link_id = ?", filter.ReferralLinkID)
	}
	if filter.From != nil {
		q = q.Where("clicked_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("clicked_at <= ?", *filter.To)
	}
	var rows []referralModel
	if err := q.Order("clicked_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Referral, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainReferral(row))
	}
	return out, nil
}

func (r *referralRepository) RecordClick(ctx context.Context, referral domain.Referral) error {
	rec := fromDomainReferral(referral)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return translate(err)
		}
		if referral.ReferralLinkID != "" {
			if err := tx.Model(&referralLinkModel{}).Where("link_id = ?", referral.ReferralLinkID).Updates(map[string]any{
				"click_count":  gorm.Expr("click_count + 1"),
				"last_used_at": referral.ClickedAt,
			}).Error; err != nil {
				return err
			}
		}
		return tx.Model(&affiliateProfileModel{}).Where("user_id = ?", referral.AffiliateID).
			Update("total_referrals", gorm.Expr("total_referrals + 1")).Error
	})
}

func (r *referralRepository) RecordConversion(ctx context.Context, conv ports.ConversionRecord) (domain.Referral, error) {
	var out domain.Referral
	c := conv.Commission
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec referralModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("referral_id = ?", conv.ReferralID).
			Take(&rec).Error; err != nil {
			return translate(err)
		}
		if rec.Status != string(domain.ReferralStatusClicked) {
			return fmt.Errorf("%w: referral already converted", domain.ErrConflict)
		}
		updates := map[string]any{
			"status":            string(domain.ReferralStatusConverted),
			"converted_at":      conv.At,
			"order_id":          c.OrderID,
			"order_value":       c.OrderValue,
			"commission_amount": c.CommissionAmount,
		}
		if conv.CustomerID != "" {
			updates["customer_id"] = conv.CustomerID
		}
		if err := tx.Model(&referralModel{}).Where("referral_id = ?", rec.ReferralID).Updates(updates).Error; err != nil {
			return err
		}
		commission := fromDomainCommission(c)
		if err := tx.Create(&commission).Error; err != nil {
			return translate(err)
		}
		if err := tx.Model(&affiliateProfileModel{}).Where("user_id = ?", c.AffiliateID).Updates(map[string]any{
			"total_earnings":    gorm.Expr("total_earnings + ?", c.CommissionAmount),
			"total_conversions": gorm.Expr("total_conversions + 1"),
		}).Error; err != nil {
			return err
		}
		if rec.ReferralLinkID != "" {
			if err := tx.Model(&referralLinkModel{}).Where("link_id = ?", rec.ReferralLinkID).Updates(map[string]any{
				"conversion_count": gorm.Expr("conversion_count + 1"),
				"total_earnings":   gorm.Expr("total_earnings + ?", c.CommissionAmount),
			}).Error; err != nil {
				return err
			}
		}

		out = toDomainReferral(rec)
		at := conv.At
		out.Status = domain.ReferralStatusConverted
		out.ConvertedAt = &at
		out.OrderID = c.OrderID
		out.OrderValue = c.OrderValue
		out.CommissionAmount = c.CommissionAmount
		if conv.CustomerID != "" {
			out.CustomerID = conv.CustomerID
		}
		return nil
	})
	if err != nil {
		return domain.Referral{}, err
	}
	return out, nil
}

var _ ports.ReferralRepository = (*referralRepository)(nil)
