package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
	"github.com/shopspring/decimal"
)

type ProductRepository struct{ s *Store }

func (r *ProductRepository) Create(_ context.Context, product domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[product.ProductID]; ok {
		return domain.ErrConflict
	}
	r.s.products[product.ProductID] = product
	return nil
}

func (r *ProductRepository) GetByID(_ context.Context, productID string) (domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (r *ProductRepository) GetByIDs(_ context.Context, productIDs []string) (map[string]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]domain.Product, len(productIDs))
	for _, id := range productIDs {
		if p, ok := r.s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *ProductRepository) List(_ context.Context, filter ports.ProductFilter, page ports.Page) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := make([]domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.IsActive != nil && p.IsActive != *filter.IsActive {
			continue
		}
		rows = append(rows, p)
	}
	newestFirst(rows, func(p domain.Product) time.Time { return p.CreatedAt })
	return paginate(rows, page), nil
}

func (r *ProductRepository) Update(_ context.Context, product domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[product.ProductID]; !ok {
		return domain.ErrNotFound
	}
	r.s.products[product.ProductID] = product
	return nil
}

func (r *ProductRepository) Delete(_ context.Context, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[productID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.products, productID)
	return nil
}

type ReferralLinkRepository struct{ s *Store }

func (r *ReferralLinkRepository) Create(_ context.Context, link domain.ReferralLink) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.linkByCode[link.ReferralCode]; taken {
		return fmt.Errorf("%w: referral code taken", domain.ErrConflict)
	}
	link.CustomParameters = copyParams(link.CustomParameters)
	r.s.links[link.LinkID] = link
	r.s.linkByCode[link.ReferralCode] = link.LinkID
	return nil
}

func (r *ReferralLinkRepository) GetActiveByCode(_ context.Context, code string) (domain.ReferralLink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.linkByCode[code]
	if !ok {
		return domain.ReferralLink{}, domain.ErrNotFound
	}
	link := r.s.links[id]
	if !link.IsActive {
		return domain.ReferralLink{}, domain.ErrNotFound
	}
	link.CustomParameters = copyParams(link.CustomParameters)
	return link, nil
}

func (r *ReferralLinkRepository) List(_ context.Context, filter ports.ReferralLinkFilter, page ports.Page) ([]domain.ReferralLink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := make([]domain.ReferralLink, 0)
	for _, l := range r.s.links {
		if filter.AffiliateID != "" && l.AffiliateID != filter.AffiliateID {
			continue
		}
		if filter.ProductID != "" && l.ProductID != filter.ProductID {
			continue
		}
		if filter.IsActive != nil && l.IsActive != *filter.IsActive {
			continue
		}
		l.CustomParameters = copyParams(l.CustomParameters)
		rows = append(rows, l)
	}
	newestFirst(rows, func(l domain.ReferralLink) time.Time { return l.CreatedAt })
	return paginate(rows, page), nil
}

// Get returns a link by id without the active check.
func (r *ReferralLinkRepository) Get(linkID string) (domain.ReferralLink, bool) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.links[linkID]
	return l, ok
}

type ReferralRepository struct{ s *Store }

func (r *ReferralRepository) GetByID(_ context.Context, referralID string) (domain.Referral, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ref, ok := r.s.referrals[referralID]
	if !ok {
		return domain.Referral{}, domain.ErrNotFound
	}
	return ref, nil
}

func (r *ReferralRepository) GetByIDs(_ context.Context, referralIDs []string) (map[string]domain.Referral, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]domain.Referral, len(referralIDs))
	for _, id := range referralIDs {
		if ref, ok := r.s.referrals[id]; ok {
			out[id] = ref
		}
	}
	return out, nil
}

func (r *ReferralRepository) List(_ context.Context, filter ports.ReferralFilter) ([]domain.Referral, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := make([]domain.Referral, 0)
	for _, ref := range r.s.referrals {
		if filter.AffiliateID != "" && ref.AffiliateID != filter.AffiliateID {
			continue
		}
		if filter.ProductID != "" && ref.ProductID != filter.ProductID {
			continue
		}
		if filter.ReferralLinkID != "" && ref.ReferralLinkID != filter.ReferralLinkID {
			continue
		}
		if !inRange(ref.ClickedAt, filter.From, filter.To) {
			continue
		}
		rows = append(rows, ref)
	}
	newestFirst(rows, func(ref domain.Referral) time.Time { return ref.ClickedAt })
	return rows, nil
}

func (r *ReferralRepository) RecordClick(_ context.Context, referral domain.Referral) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.referrals[referral.ReferralID] = referral
	if link, ok := r.s.links[referral.ReferralLinkID]; ok {
		link.ClickCount++
		at := referral.ClickedAt
		link.LastUsedAt = &at
		r.s.links[link.LinkID] = link
	}
	if aff, ok := r.s.affiliates[referral.AffiliateID]; ok {
		aff.TotalReferrals++
		r.s.affiliates[aff.UserID] = aff
	}
	return nil
}

func (r *ReferralRepository) RecordConversion(_ context.Context, rec ports.ConversionRecord) (domain.Referral, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ref, ok := r.s.referrals[rec.ReferralID]
	if !ok {
		return domain.Referral{}, domain.ErrNotFound
	}
	if ref.Status != domain.ReferralStatusClicked {
		return domain.Referral{}, fmt.Errorf("%w: referral already converted", domain.ErrConflict)
	}
	c := rec.Commission
	at := rec.At
	ref.Status = domain.ReferralStatusConverted
	ref.ConvertedAt = &at
	ref.OrderID = c.OrderID
	ref.OrderValue = c.OrderValue
	ref.CommissionAmount = c.CommissionAmount
	if rec.CustomerID != "" {
		ref.CustomerID = rec.CustomerID
	}
	r.s.referrals[ref.ReferralID] = ref
	r.s.commissions[c.CommissionID] = c

	if aff, ok := r.s.affiliates[c.AffiliateID]; ok {
		aff.TotalEarnings = aff.TotalEarnings.Add(c.CommissionAmount)
		aff.TotalConversions++
		r.s.affiliates[aff.UserID] = aff
	}
	if link, ok := r.s.links[ref.ReferralLinkID]; ok {
		link.ConversionCount++
		link.TotalEarnings = link.TotalEarnings.Add(c.CommissionAmount)
		r.s.links[link.LinkID] = link
	}
	return ref, nil
}

// Count returns the number of stored referrals.
func (r *ReferralRepository) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.referrals)
}

type CommissionRepository struct{ s *Store }

func (r *CommissionRepository) GetByID(_ context.Context, commissionID string) (domain.Commission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.commissions[commissionID]
	if !ok {
		return domain.Commission{}, domain.ErrNotFound
	}
	return c, nil
}

func (r *CommissionRepository) filtered(filter ports.CommissionFilter) []domain.Commission {
	rows := make([]domain.Commission, 0)
	for _, c := range r.s.commissions {
		if filter.AffiliateID != "" && c.AffiliateID != filter.AffiliateID {
			continue
		}
		if filter.ProductID != "" && c.ProductID != filter.ProductID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if !inRange(c.CreatedAt, filter.From, filter.To) {
			continue
		}
		rows = append(rows, c)
	}
	newestFirst(rows, func(c domain.Commission) time.Time { return c.CreatedAt })
	return rows
}

func (r *CommissionRepository) List(_ context.Context, filter ports.CommissionFilter, page ports.Page) ([]domain.Commission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return paginate(r.filtered(filter), page), nil
}

func (r *CommissionRepository) ListAll(_ context.Context, filter ports.CommissionFilter) ([]domain.Commission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filtered(filter), nil
}

func (r *CommissionRepository) ListPendingCreatedBefore(_ context.Context, cutoff time.Time, limit int) ([]domain.Commission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := r.filtered(ports.CommissionFilter{Status: domain.CommissionStatusPending, To: &cutoff})
	// oldest first so a bounded sweep drains the backlog in order
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return paginate(rows, ports.Page{Limit: limit}), nil
}

func (r *CommissionRepository) Review(_ context.Context, params ports.ReviewParams) (domain.Commission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.commissions[params.CommissionID]
	if !ok {
		return domain.Commission{}, domain.ErrNotFound
	}
	if !domain.CanTransition(c.Status, params.Status) {
		return domain.Commission{}, fmt.Errorf("%w: commission is %s", domain.ErrConflict, c.Status)
	}
	at := params.At
	c.Status = params.Status
	c.ReviewedAt = &at
	c.ReviewedBy = params.ReviewedBy
	c.ReviewNotes = params.Notes
	r.s.commissions[c.CommissionID] = c
	if c.Status == domain.CommissionStatusApproved {
		r.creditApproved(c.AffiliateID, domain.CreditsByAffiliate([]domain.Commission{c})[c.AffiliateID])
	}
	return c, nil
}

func (r *CommissionRepository) ApproveBatch(_ context.Context, params ports.ApproveBatchParams) ([]domain.Commission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	at := params.At
	approved := make([]domain.Commission, 0, len(params.CommissionIDs))
	for _, id := range params.CommissionIDs {
		c, ok := r.s.commissions[id]
		if !ok || c.Status != domain.CommissionStatusPending {
			continue
		}
		c.Status = domain.CommissionStatusApproved
		c.ReviewedAt = &at
		c.ReviewedBy = params.ReviewedBy
		c.ReviewNotes = params.Notes
		r.s.commissions[id] = c
		approved = append(approved, c)
	}
	for affiliateID, amount := range domain.CreditsByAffiliate(approved) {
		r.creditApproved(affiliateID, amount)
	}
	return approved, nil
}

func (r *CommissionRepository) creditApproved(affiliateID string, amount decimal.Decimal) {
	aff, ok := r.s.affiliates[affiliateID]
	if !ok {
		return
	}
	aff.ApprovedEarnings = aff.ApprovedEarnings.Add(amount)
	r.s.affiliates[affiliateID] = aff
}
