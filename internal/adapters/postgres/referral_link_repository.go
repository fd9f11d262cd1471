package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
)

type referralLinkRepository struct {
	db *gorm.DB
}

// Create relies on the unique index on referral_code; a taken code comes back
// as domain.ErrConflict so the caller can draw a new one.
func (r *referralLinkRepository) Create(ctx context.Context, link domain.ReferralLink) error {
	rec := fromDomainReferralLink(link)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: referral code taken", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *referralLinkRepository) GetActiveByCode(ctx context.Context, code string) (domain.ReferralLink, error) {
	var rec referralLinkModel
	err := r.db.WithContext(ctx).
		Where("referral_code = ? AND is_active = ?", code, true).
		Take(&rec).Error
	if err != nil {
		return domain.ReferralLink{}, translate(err)
	}
	return toDomainReferralLink(rec), nil
}

func (r *referralLinkRepository) List(ctx context.Context, filter ports.ReferralLinkFilter, page ports.Page) ([]domain.ReferralLink, error) {
	q := r.db.WithContext(ctx).Model(&referralLinkModel{})
	if filter.AffiliateID != "" {
		q = q.Where("affiliate_id = ?", filter.AffiliateID)
	}
	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	var rows []referralLinkModel
	if err := applyPage(q.Order("created_at desc"), page).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ReferralLink, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainReferralLink(row))
	}
	return out, nil
}

var _ ports.ReferralLinkRepository = (*referralLinkRepository)(nil)
