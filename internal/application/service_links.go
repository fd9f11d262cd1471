package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mladenvic/promoaffiliate/internal/contracts"
	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
	"github.com/shopspring/decimal"
)

// Query keys the redirect sets for attribution. Custom parameters may not use them.
var reservedRedirectParams = map[string]struct{}{
	"ref":       {},
	"affiliate": {},
	"session":   {},
}

func (s *Service) GenerateReferralLink(ctx context.Context, actor Actor, in GenerateReferralLinkInput) (GeneratedReferralLink, error) {
	if err := requireAffiliate(actor); err != nil {
		return GeneratedReferralLink{}, err
	}
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.CampaignName = strings.TrimSpace(in.CampaignName)
	if in.ProductID == "" {
		return GeneratedReferralLink{}, fmt.Errorf("%w: productId is required", domain.ErrInvalidInput)
	}
	params := make(map[string]string, len(in.CustomParameters))
	for k, v := range in.CustomParameters {
		k = strings.TrimSpace(k)
		if k == "" {
			return GeneratedReferralLink{}, fmt.Errorf("%w: custom parameter name is empty", domain.ErrInvalidInput)
		}
		if _, reserved := reservedRedirectParams[strings.ToLower(k)]; reserved {
			return GeneratedReferralLink{}, fmt.Errorf("%w: custom parameter %q is reserved", domain.ErrInvalidInput, k)
		}
		params[k] = v
	}

	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return GeneratedReferralLink{}, err
	}
	if !product.IsActive {
		return GeneratedReferralLink{}, fmt.Errorf("%w: product is inactive", domain.ErrNotFound)
	}

	now := s.nowFn()
	link := domain.ReferralLink{
		LinkID:           uuid.NewString(),
		AffiliateID:      actor.SubjectID,
		ProductID:        product.ProductID,
		CampaignName:     in.CampaignName,
		CustomParameters: params,
		TotalEarnings:    decimal.Zero,
		IsActive:         true,
		CreatedAt:        now,
	}
	for attempt := 1; ; attempt++ {
		code, err := s.codeFn()
		if err != nil {
			return GeneratedReferralLink{}, fmt.Errorf("generate referral code: %w", err)
		}
		link.ReferralCode = code
		err = s.links.Create(ctx, link)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConflict) || attempt >= s.cfg.CodeIssueAttempts {
			return GeneratedReferralLink{}, err
		}
		s.logger.WarnContext(ctx, "referral code collision, regenerating",
			"operation", "generate_referral_link",
			"outcome", "retry",
			"attempt", attempt,
		)
	}

	s.emit(ctx, domain.EventReferralLinkCreated, actor.RequestID, contracts.ReferralLinkCreatedPayload{
		AffiliateID:  link.AffiliateID,
		LinkID:       link.LinkID,
		ProductID:    link.ProductID,
		ReferralCode: link.ReferralCode,
		CreatedAt:    formatTime(now),
	}, link.AffiliateID, now)
	return GeneratedReferralLink{Link: link, ReferralURL: s.ReferralURL(link.ReferralCode)}, nil
}

// ReferralURL is the public tracking URL for a code.
func (s *Service) ReferralURL(code string) string {
	return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/track/" + code
}

func (s *Service) ListReferralLinks(ctx context.Context, actor Actor, in ListReferralLinksInput) (ReferralLinkPage, error) {
	if err := requireAffiliate(actor); err != nil {
		return ReferralLinkPage{}, err
	}
	page, pageNo, limit, err := s.resolvePage(in.PageInput, s.cfg.DefaultPageSize)
	if err != nil {
		return ReferralLinkPage{}, err
	}
	rows, err := s.links.List(ctx, ports.ReferralLinkFilter{
		AffiliateID: actor.SubjectID,
		ProductID:   strings.TrimSpace(in.ProductID),
		IsActive:    in.IsActive,
	}, page)
	if err != nil {
		return ReferralLinkPage{}, err
	}

	productIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		productIDs = append(productIDs, row.ProductID)
	}
	products, err := s.productsByIDs(ctx, productIDs)
	if err != nil {
		return ReferralLinkPage{}, err
	}
	items := make([]ReferralLinkView, 0, len(rows))
	for _, row := range rows {
		view := ReferralLinkView{Link: row}
		if p, ok := products[row.ProductID]; ok {
			view.Product = &p
		}
		items = append(items, view)
	}
	return ReferralLinkPage{Items: items, Page: pageNo, Limit: limit, HasMore: len(rows) == limit}, nil
}
