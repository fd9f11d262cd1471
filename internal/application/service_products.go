package application

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
)

func productCacheKey(productID string) string {
	return "affiliate:product:" + productID
}

// productByID reads through the cache. Cache failures fall back to the store.
func (s *Service) productByID(ctx context.Context, productID string) (domain.Product, error) {
	if s.cache != nil {
		raw, ok, err := s.cache.Get(ctx, productCacheKey(productID))
		if err != nil {
			s.logFailure(ctx, "product_cache_get", err, "product_id", productID)
		} else if ok {
			var cached domain.Product
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		}
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if s.cache != nil {
		if raw, err := json.Marshal(product); err == nil {
			if err := s.cache.Set(ctx, productCacheKey(productID), string(raw), s.cfg.ProductCacheTTL); err != nil {
				s.logFailure(ctx, "product_cache_set", err, "product_id", productID)
			}
		}
	}
	return product, nil
}

func (s *Service) invalidateProduct(ctx context.Context, productID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, productCacheKey(productID)); err != nil {
		s.logFailure(ctx, "product_cache_delete", err, "product_id", productID)
	}
}

func (s *Service) productsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	ids = uniqueNonEmpty(ids)
	if len(ids) == 0 {
		return map[string]domain.Product{}, nil
	}
	return s.products.GetByIDs(ctx, ids)
}

func (s *Service) CreateProduct(ctx context.Context, actor Actor, in ProductInput) (domain.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.Product{}, err
	}
	if err := validateProductInput(in); err != nil {
		return domain.Product{}, err
	}
	now := s.nowFn()
	product := domain.Product{
		ProductID:      uuid.NewString(),
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		Price:          in.Price,
		Category:       strings.TrimSpace(in.Category),
		CommissionRate: in.CommissionRate,
		CommissionType: domain.CommissionType(in.CommissionType),
		ExternalURL:    strings.TrimSpace(in.ExternalURL),
		IsActive:       in.IsActive == nil || *in.IsActive,
		CreatedBy:      actor.SubjectID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, actor Actor, productID string) (domain.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, domain.ErrInvalidInput
	}
	product, err := s.productByID(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if !product.IsActive && !actor.Admin {
		return domain.Product{}, domain.ErrNotFound
	}
	return product, nil
}

// ListProducts shows the active catalog; admins may list inactive products.
func (s *Service) ListProducts(ctx context.Context, actor Actor, in ListProductsInput) (ProductPage, error) {
	page, pageNo, limit, err := s.resolvePage(in.PageInput, s.cfg.DefaultPageSize)
	if err != nil {
		return ProductPage{}, err
	}
	filter := ports.ProductFilter{Category: strings.TrimSpace(in.Category), IsActive: in.IsActive}
	if !actor.Admin {
		active := true
		filter.IsActive = &active
	}
	rows, err := s.products.List(ctx, filter, page)
	if err != nil {
		return ProductPage{}, err
	}
	return ProductPage{Items: rows, Page: pageNo, Limit: limit, HasMore: len(rows) == limit}, nil
}

// UpdateProduct replaces the editable fields. Last write wins.
func (s *Service) UpdateProduct(ctx context.Context, actor Actor, productID string, in ProductInput) (domain.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.Product{}, err
	}
	if err := validateProductInput(in); err != nil {
		return domain.Product{}, err
	}
	product, err := s.products.GetByID(ctx, strings.TrimSpace(productID))
	if err != nil {
		return domain.Product{}, err
	}
	product.Title = strings.TrimSpace(in.Title)
	product.Description = strings.TrimSpace(in.Description)
	product.Price = in.Price
	product.Category = strings.TrimSpace(in.Category)
	product.CommissionRate = in.CommissionRate
	product.CommissionType = domain.CommissionType(in.CommissionType)
	product.ExternalURL = strings.TrimSpace(in.ExternalURL)
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	product.UpdatedAt = s.nowFn()
	if err := s.products.Update(ctx, product); err != nil {
		return domain.Product{}, err
	}
	s.invalidateProduct(ctx, product.ProductID)
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, actor Actor, productID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.ErrInvalidInput
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return err
	}
	s.invalidateProduct(ctx, productID)
	return nil
}

func validateProductInput(in ProductInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	if !domain.CommissionType(in.CommissionType).Valid() {
		return fmt.Errorf("%w: commission type must be percentage or flat", domain.ErrInvalidInput)
	}
	if in.CommissionRate.IsNegative() {
		return fmt.Errorf("%w: commission rate must not be negative", domain.ErrInvalidInput)
	}
	u, err := url.Parse(strings.TrimSpace(in.ExternalURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: external url must be an absolute http(s) url", domain.ErrInvalidInput)
	}
	return nil
}
