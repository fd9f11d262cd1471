package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
)

type productRepository struct {
	db *gorm.DB
}

func (r *productRepository) Create(ctx context.Context, product domain.Product) error {
	rec := fromDomainProduct(product)
	return translate(r.db.WithContext(ctx).Create(&rec).Error)
}

func (r *productRepository) GetByID(ctx context.Context, productID string) (domain.Product, error) {
	var rec productModel
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Take(&rec).Error; err != nil {
		return domain.Product{}, translate(err)
	}
	return toDomainProduct(rec), nil
}

func (r *productRepository) GetByIDs(ctx context.Context, productIDs []string) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var rows []productModel
	if err := r.db.WithContext(ctx).Where("product_id IN ?", productIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ProductID] = toDomainProduct(row)
	}
	return out, nil
}

func (r *productRepository) List(ctx context.Context, filter ports.ProductFilter, page ports.Page) ([]domain.Product, error) {
	q := r.db.WithContext(ctx).Model(&productModel{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	var rows []productModel
	if err := applyPage(q.Order("created_at desc"), page).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainProduct(row))
	}
	return out, nil
}

func (r *productRepository) Update(ctx context.Context, product domain.Product) error {
	rec := fromDomainProduct(product)
	res := r.db.WithContext(ctx).Model(&productModel{}).Where("product_id = ?", product.ProductID).Updates(map[string]any{
		"title":           rec.Title,
		"description":     rec.Description,
		"price":           rec.Price,
		"category":        rec.Category,
		"commission_rate": rec.CommissionRate,
		"commission_type": rec.CommissionType,
		"external_url":    rec.ExternalURL,
		"is_active":       rec.IsActive,
		"updated_at":      rec.UpdatedAt,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, productID string) error {
	res := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&productModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ ports.ProductRepository = (*productRepository)(nil)
