package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
)

type affiliateRepository struct {
	db *gorm.DB
}

func (r *affiliateRepository) Create(ctx context.Context, profile domain.AffiliateProfile) error {
	rec := fromDomainAffiliate(profile)
	return translate(r.db.WithContext(ctx).Create(&rec).Error)
}

func (r *affiliateRepository) GetByUserID(ctx context.Context, userID string) (domain.AffiliateProfile, error) {
	var rec affiliateProfileModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&rec).Error; err != nil {
		return domain.AffiliateProfile{}, translate(err)
	}
	return toDomainAffiliate(rec), nil
}

func (r *affiliateRepository) GetByUserIDs(ctx context.Context, userIDs []string) (map[string]domain.AffiliateProfile, error) {
	out := make(map[string]domain.AffiliateProfile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []affiliateProfileModel
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UserID] = toDomainAffiliate(row)
	}
	return out, nil
}

type applicationRepository struct {
	db *gorm.DB
}

// Create leans on the partial unique index over pending applications.
func (r *applicationRepository) Create(ctx context.Context, app domain.AffiliateApplication) error {
	rec := fromDomainApplication(app)
	return translate(r.db.WithContext(ctx).Create(&rec).Error)
}

func (r *applicationRepository) GetByID(ctx context.Context, applicationID string) (domain.AffiliateApplication, error) {
	var rec applicationModel
	if err := r.db.WithContext(ctx).Where("application_id = ?", applicationID).Take(&rec).Error; err != nil {
		return domain.AffiliateApplication{}, translate(err)
	}
	return toDomainApplication(rec), nil
}

func (r *applicationRepository) GetPendingByUserID(ctx context.Context, userID string) (domain.AffiliateApplication, error) {
	var rec applicationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, string(domain.ApplicationStatusPending)).
		Take(&rec).Error
	if err != nil {
		return domain.AffiliateApplication{}, translate(err)
	}
	return toDomainApplication(rec), nil
}

func (r *applicationRepository) List(ctx context.Context, filter ports.ApplicationFilter, page ports.Page) ([]domain.AffiliateApplication, error) {
	q := r.db.WithContext(ctx).Model(&applicationModel{})
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	var rows []applicationModel
	if err := applyPage(q.Order("applied_at desc"), page).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.AffiliateApplication, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainApplication(row))
	}
	return out, nil
}

// Review updates a pending application and, on approval, inserts the
// affiliate profile in the same transaction.
func (r *applicationRepository) Review(ctx context.Context, app domain.AffiliateApplication, profile *domain.AffiliateProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&applicationModel{}).
			Where("application_id = ? AND status = ?", app.ApplicationID, string(domain.ApplicationStatusPending)).
			Updates(map[string]any{
				"status":       string(app.Status),
				"reviewed_at":  app.ReviewedAt,
				"reviewed_by":  app.ReviewedBy,
				"review_notes": app.ReviewNotes,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrConflict
		}
		if profile == nil {
			return nil
		}
		rec := fromDomainAffiliate(*profile)
		return translate(tx.Create(&rec).Error)
	})
}

var (
	_ ports.AffiliateRepository   = (*affiliateRepository)(nil)
	_ ports.ApplicationRepository = (*applicationRepository)(nil)
)
