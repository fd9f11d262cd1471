package memory

import (
	"context"
	"time"

	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
)

type AffiliateRepository struct{ s *Store }

func (r *AffiliateRepository) Create(_ context.Context, profile domain.AffiliateProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.affiliates[profile.UserID]; ok {
		return domain.ErrConflict
	}
	r.s.affiliates[profile.UserID] = profile
	return nil
}

func (r *AffiliateRepository) GetByUserID(_ context.Context, userID string) (domain.AffiliateProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.affiliates[userID]
	if !ok {
		return domain.AffiliateProfile{}, domain.ErrNotFound
	}
	return p, nil
}

func (r *AffiliateRepository) GetByUserIDs(_ context.Context, userIDs []string) (map[string]domain.AffiliateProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]domain.AffiliateProfile, len(userIDs))
	for _, id := range userIDs {
		if p, ok := r.s.affiliates[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type ApplicationRepository struct{ s *Store }

func (r *ApplicationRepository) Create(_ context.Context, app domain.AffiliateApplication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.applications[app.ApplicationID]; ok {
		return domain.ErrConflict
	}
	for _, existing := range r.s.applications {
		if existing.UserID == app.UserID && existing.Status == domain.ApplicationStatusPending {
			return domain.ErrConflict
		}
	}
	app.PromotionalChannels = append([]string(nil), app.PromotionalChannels...)
	r.s.applications[app.ApplicationID] = app
	return nil
}

func (r *ApplicationRepository) GetByID(_ context.Context, applicationID string) (domain.AffiliateApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	app, ok := r.s.applications[applicationID]
	if !ok {
		return domain.AffiliateApplication{}, domain.ErrNotFound
	}
	return app, nil
}

func (r *ApplicationRepository) GetPendingByUserID(_ context.Context, userID string) (domain.AffiliateApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, app := range r.s.applications {
		if app.UserID == userID && app.Status == domain.ApplicationStatusPending {
			return app, nil
		}
	}
	return domain.AffiliateApplication{}, domain.ErrNotFound
}

func (r *ApplicationRepository) List(_ context.Context, filter ports.ApplicationFilter, page ports.Page) ([]domain.AffiliateApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := make([]domain.AffiliateApplication, 0)
	for _, app := range r.s.applications {
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		rows = append(rows, app)
	}
	newestFirst(rows, func(a domain.AffiliateApplication) time.Time { return a.AppliedAt })
	return paginate(rows, page), nil
}

func (r *ApplicationRepository) Review(_ context.Context, app domain.AffiliateApplication, profile *domain.AffiliateProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.applications[app.ApplicationID]
	if !ok {
		return domain.ErrNotFound
	}
	if current.Status != domain.ApplicationStatusPending {
		return domain.ErrConflict
	}
	if profile != nil {
		if _, exists := r.s.affiliates[profile.UserID]; exists {
			return domain.ErrConflict
		}
		r.s.affiliates[profile.UserID] = *profile
	}
	r.s.applications[app.ApplicationID] = app
	return nil
}
