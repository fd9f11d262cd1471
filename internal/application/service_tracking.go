package application

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/mladenvic/promoaffiliate/internal/contracts"
	"github.com/mladenvic/promoaffiliate/internal/domain"
)

// TrackClick records one visit through a referral code and returns where to
// send the visitor. Lookups happen before any write, so an unknown code or a
// missing product leaves the store untouched.
func (s *Service) TrackClick(ctx context.Context, in TrackClickInput) (TrackClickResult, error) {
	code := strings.TrimSpace(in.ReferralCode)
	if code == "" {
		return TrackClickResult{}, fmt.Errorf("%w: referral code is required", domain.ErrInvalidInput)
	}
	link, err := s.links.GetActiveByCode(ctx, code)
	if err != nil {
		return TrackClickResult{}, err
	}
	product, err := s.productByID(ctx, link.ProductID)
	if err != nil {
		return TrackClickResult{}, err
	}

	now := s.nowFn()
	referral := domain.Referral{
		ReferralID:     uuid.NewString(),
		AffiliateID:    link.AffiliateID,
		ProductID:      link.ProductID,
		ReferralLinkID: link.LinkID,
		ReferralCode:   link.ReferralCode,
		Status:         domain.ReferralStatusClicked,
		SessionID:      GenerateSessionID(),
		IPHash:         sha256Hex(in.ClientIP),
		UserAgentHash:  sha256Hex(in.UserAgent),
		ReferrerURL:    strings.TrimSpace(in.ReferrerURL),
		ClickedAt:      now,
	}
	redirect, err := buildRedirectURL(product.ExternalURL, referral, link.CustomParameters)
	if err != nil {
		return TrackClickResult{}, err
	}
	if err := s.referrals.RecordClick(ctx, referral); err != nil {
		return TrackClickResult{}, err
	}

	s.emit(ctx, domain.EventReferralClicked, "", contracts.ReferralClickedPayload{
		AffiliateID: referral.AffiliateID,
		ReferralID:  referral.ReferralID,
		LinkID:      referral.ReferralLinkID,
		ProductID:   referral.ProductID,
		SessionID:   referral.SessionID,
		IPHash:      referral.IPHash,
		ReferrerURL: referral.ReferrerURL,
		ClickedAt:   formatTime(now),
	}, referral.AffiliateID, now)

	return TrackClickResult{
		RedirectURL: redirect,
		SessionID:   referral.SessionID,
		ReferralID:  referral.ReferralID,
		AffiliateID: referral.AffiliateID,
	}, nil
}

func buildRedirectURL(base string, referral domain.Referral, custom map[string]string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("product external url %q is not absolute", base)
	}
	q := u.Query()
	q.Set("ref", referral.ReferralID)
	q.Set("affiliate", referral.AffiliateID)
	q.Set("session", referral.SessionID)
	for k, v := range custom {
		if _, reserved := reservedRedirectParams[strings.ToLower(k)]; reserved {
			continue
		}
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
