package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
)

type commissionRepository struct {
	db *gorm.DB
}

func (r *commissionRepository) GetByID(ctx context.Context, commissionID string) (domain.Commission, error) {
	var rec commissionModel
	if err := r.db.WithContext(ctx).Where("commission_id = ?", commissionID).Take(&rec).Error; err != nil {
		return domain.Commission{}, translate(err)
	}
	return toDomainCommission(rec), nil
}

func (r *commissionRepository) filtered(ctx context.Context, filter ports.CommissionFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&commissionModel{})
	if filter.AffiliateID != "" {
		q = q.Where("affiliate_id = ?", filter.AffiliateID)
	}
	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}
	return q
}

func (r *commissionRepository) List(ctx context.Context, filter ports.CommissionFilter, page ports.Page) ([]domain.Commission, error) {
	var rows []commissionModel
	if err := applyPage(r.filtered(ctx, filter).Order("created_at desc"), page).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainCommissions(rows), nil
}

func (r *commissionRepository) ListAll(ctx context.Context, filter ports.CommissionFilter) ([]domain.Commission, error) {
	var rows []commissionModel
	if err := r.filtered(ctx, filter).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainCommissions(rows), nil
}

func (r *commissionRepository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.Commission, error) {
	var rows []commissionModel
	q := r.db.WithContext(ctx).
		Where("status = ? AND created_at <= ?", string(domain.CommissionStatusPending), cutoff).
		Order("created_at asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainCommissions(rows), nil
}

func (r *commissionRepository) Review(ctx context.Context, params ports.ReviewParams) (domain.Commission, error) {
	var out domain.Commission
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec commissionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("commission_id = ?", params.CommissionID).
			Take(&rec).Error; err != nil {
			return translate(err)
		}
		if !domain.CanTransition(domain.CommissionStatus(rec.Status), params.Status) {
			return fmt.Errorf("%w: commission is %s", domain.ErrConflict, rec.Status)
		}
		if err := tx.Model(&commissionModel{}).Where("commission_id = ?", rec.CommissionID).Updates(map[string]any{
			"status":       string(params.Status),
			"reviewed_at":  params.At,
			"reviewed_by":  params.ReviewedBy,
			"review_notes": params.Notes,
		}).Error; err != nil {
			return err
		}
		if params.Status == domain.CommissionStatusApproved {
			if err := creditApproved(tx, rec.AffiliateID, rec.CommissionAmount); err != nil {
				return err
			}
		}
		at := params.At
		rec.Status = string(params.Status)
		rec.ReviewedAt = &at
		rec.ReviewedBy = params.ReviewedBy
		rec.ReviewNotes = params.Notes
		out = toDomainCommission(rec)
		return nil
	})
	if err != nil {
		return domain.Commission{}, err
	}
	return out, nil
}

// ApproveBatch locks the requested rows that are still pending, flips them
// and credits each affiliate once with the sum of its approved amounts.
func (r *commissionRepository) ApproveBatch(ctx context.Context, params ports.ApproveBatchParams) ([]domain.Commission, error) {
	if len(params.CommissionIDs) == 0 {
		return nil, nil
	}
	var approved []domain.Commission
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []commissionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("commission_id IN ? AND status = ?", params.CommissionIDs, string(domain.CommissionStatusPending)).
			Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		ids := make([]string, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.CommissionID)
		}
		if err := tx.Model(&commissionModel{}).
			Where("commission_id IN ? AND status = ?", ids, string(domain.CommissionStatusPending)).
			Updates(map[string]any{
				"status":       string(domain.CommissionStatusApproved),
				"reviewed_at":  params.At,
				"reviewed_by":  params.ReviewedBy,
				"review_notes": params.Notes,
			}).Error; err != nil {
			return err
		}
		at := params.At
		approved = make([]domain.Commission, 0, len(rows))
		for _, row := range rows {
			c := toDomainCommission(row)
			c.Status = domain.CommissionStatusApproved
			c.ReviewedAt = &at
			c.ReviewedBy = params.ReviewedBy
			c.ReviewNotes = params.Notes
			approved = append(approved, c)
		}
		for affiliateID, amount := range domain.CreditsByAffiliate(approved) {
			if err := creditApproved(tx, affiliateID, amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

func creditApproved(tx *gorm.DB, affiliateID string, amount decimal.Decimal) error {
	return tx.Model(&affiliateProfileModel{}).Where("user_id = ?", affiliateID).
		Update("approved_earnings", gorm.Expr("approved_earnings + ?", amount)).Error
}

func toDomainCommissions(rows []commissionModel) []domain.Commission {
	out := make([]domain.Commission, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainCommission(row))
	}
	return out
}

var _ ports.CommissionRepository = (*commissionRepository)(nil)
