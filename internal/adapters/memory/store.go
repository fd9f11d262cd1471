package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
)

// Store keeps every collection behind one mutex, so each repository call is
// atomic with respect to all others. Multi-record operations get transaction
// semantics for free.
type Store struct {
	mu sync.Mutex

	products     map[string]domain.Product
	links        map[string]domain.ReferralLink
	linkByCode   map[string]string
	referrals    map[string]domain.Referral
	commissions  map[string]domain.Commission
	affiliates   map[string]domain.AffiliateProfile
	applications map[string]domain.AffiliateApplication
	outbox       map[string]ports.OutboxRecord
	dedup        map[string]time.Time
}

type Repositories struct {
	Store        *Store
	Products     *ProductRepository
	Links        *ReferralLinkRepository
	Referrals    *ReferralRepository
	Commissions  *CommissionRepository
	Affiliates   *AffiliateRepository
	Applications *ApplicationRepository
	Outbox       *OutboxRepository
	EventDedup   *EventDedupRepository
}

func NewRepositories() Repositories {
	s := &Store{
		products:     map[string]domain.Product{},
		links:        map[string]domain.ReferralLink{},
		linkByCode:   map[string]string{},
		referrals:    map[string]domain.Referral{},
		commissions:  map[string]domain.Commission{},
		affiliates:   map[string]domain.AffiliateProfile{},
		applications: map[string]domain.AffiliateApplication{},
		outbox:       map[string]ports.OutboxRecord{},
		dedup:        map[string]time.Time{},
	}
	return Repositories{
		Store:        s,
		Products:     &ProductRepository{s: s},
		Links:        &ReferralLinkRepository{s: s},
		Referrals:    &ReferralRepository{s: s},
		Commissions:  &CommissionRepository{s: s},
		Affiliates:   &AffiliateRepository{s: s},
		Applications: &ApplicationRepository{s: s},
		Outbox:       &OutboxRepository{s: s},
		EventDedup:   &EventDedupRepository{s: s},
	}
}

func paginate[T any](rows []T, page ports.Page) []T {
	if page.Offset < 0 || page.Offset >= len(rows) {
		return []T{}
	}
	end := len(rows)
	if page.Limit > 0 && page.Limit < end-page.Offset {
		end = page.Offset + page.Limit
	}
	return rows[page.Offset:end]
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func newestFirst[T any](rows []T, at func(T) time.Time) {
	sort.SliceStable(rows, func(i, j int) bool { return at(rows[i]).After(at(rows[j])) })
}

func copyParams(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
