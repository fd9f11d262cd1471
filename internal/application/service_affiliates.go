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

func (s *Service) ApplyForAffiliate(ctx context.Context, actor Actor, in ApplyInput) (domain.AffiliateApplication, error) {
	if err := requireAuthenticated(actor); err != nil {
		return domain.AffiliateApplication{}, err
	}
	if strings.TrimSpace(in.BusinessName) == "" || strings.TrimSpace(in.ReasonForApplying) == "" {
		return domain.AffiliateApplication{}, fmt.Errorf("%w: businessName and reasonForApplying are required", domain.ErrInvalidInput)
	}
	if _, err := s.affiliates.GetByUserID(ctx, actor.SubjectID); err == nil {
		return domain.AffiliateApplication{}, fmt.Errorf("%w: already an affiliate", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.AffiliateApplication{}, err
	}
	if _, err := s.applications.GetPendingByUserID(ctx, actor.SubjectID); err == nil {
		return domain.AffiliateApplication{}, fmt.Errorf("%w: application already pending", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.AffiliateApplication{}, err
	}

	app := domain.AffiliateApplication{
		ApplicationID:       uuid.NewString(),
		UserID:              actor.SubjectID,
		Email:               actor.Email,
		BusinessName:        strings.TrimSpace(in.BusinessName),
		Website:             strings.TrimSpace(in.Website),
		PromotionalChannels: uniqueNonEmpty(in.PromotionalChannels),
		AudienceSize:        strings.TrimSpace(in.AudienceSize),
		ReasonForApplying:   strings.TrimSpace(in.ReasonForApplying),
		Status:              domain.ApplicationStatusPending,
		AppliedAt:           s.nowFn(),
	}
	if err := s.applications.Create(ctx, app); err != nil {
		return domain.AffiliateApplication{}, err
	}
	return app, nil
}

func (s *Service) ListApplications(ctx context.Context, actor Actor, in ListApplicationsInput) (ApplicationPage, error) {
	if err := requireAdmin(actor); err != nil {
		return ApplicationPage{}, err
	}
	page, pageNo, limit, err := s.resolvePage(in.PageInput, s.cfg.AdminPageSize)
	if err != nil {
		return ApplicationPage{}, err
	}
	status := domain.ApplicationStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	switch status {
	case "", domain.ApplicationStatusPending, domain.ApplicationStatusApproved, domain.ApplicationStatusRejected:
	default:
		return ApplicationPage{}, fmt.Errorf("%w: unknown application status %q", domain.ErrInvalidInput, in.Status)
	}
	rows, err := s.applications.List(ctx, ports.ApplicationFilter{Status: status}, page)
	if err != nil {
		return ApplicationPage{}, err
	}
	return ApplicationPage{Items: rows, Page: pageNo, Limit: limit, HasMore: len(rows) == limit}, nil
}

// ReviewApplication decides a pending application. Approval creates the
// affiliate profile; granting the affiliate claim is left to the identity
// provider, which consumes affiliate.application.reviewed.
func (s *Service) ReviewApplication(ctx context.Context, actor Actor, in ReviewApplicationInput) (domain.AffiliateApplication, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.AffiliateApplication{}, err
	}
	status := domain.ApplicationStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if status != domain.ApplicationStatusApproved && status != domain.ApplicationStatusRejected {
		return domain.AffiliateApplication{}, fmt.Errorf("%w: status must be approved or rejected", domain.ErrInvalidInput)
	}
	app, err := s.applications.GetByID(ctx, strings.TrimSpace(in.ApplicationID))
	if err != nil {
		return domain.AffiliateApplication{}, err
	}
	if app.Status != domain.ApplicationStatusPending {
		return domain.AffiliateApplication{}, fmt.Errorf("%w: application is %s", domain.ErrConflict, app.Status)
	}

	now := s.nowFn()
	app.Status = status
	app.ReviewedAt = &now
	app.ReviewedBy = actor.SubjectID
	app.ReviewNotes = strings.TrimSpace(in.Notes)
	var profile *domain.AffiliateProfile
	if status == domain.ApplicationStatusApproved {
		profile = &domain.AffiliateProfile{
			UserID:           app.UserID,
			Email:            app.Email,
			BusinessName:     app.BusinessName,
			Website:          app.Website,
			CommissionRate:   s.cfg.DefaultAffiliateCommissionRate,
			PayoutThreshold:  s.cfg.DefaultPayoutThreshold,
			TotalEarnings:    decimal.Zero,
			ApprovedEarnings: decimal.Zero,
			IsActive:         true,
			ApprovedAt:       now,
			ApprovedBy:       actor.SubjectID,
		}
	}
	if err := s.applications.Review(ctx, app, profile); err != nil {
		return domain.AffiliateApplication{}, err
	}

	s.emit(ctx, domain.EventApplicationReviewed, actor.RequestID, contracts.ApplicationReviewedPayload{
		AffiliateID:   app.UserID,
		ApplicationID: app.ApplicationID,
		Status:        string(app.Status),
		ReviewedBy:    app.ReviewedBy,
		ReviewedAt:    formatTime(now),
	}, app.UserID, now)
	return app, nil
}

func (s *Service) GetAffiliateProfile(ctx context.Context, actor Actor) (domain.AffiliateProfile, error) {
	if err := requireAffiliate(actor); err != nil {
		return domain.AffiliateProfile{}, err
	}
	return s.affiliates.GetByUserID(ctx, actor.SubjectID)
}

// Ready reports whether the backing store answers.
func (s *Service) Ready(ctx context.Context) error {
	_, err := s.products.List(ctx, ports.ProductFilter{}, ports.Page{Limit: 1})
	return err
}
