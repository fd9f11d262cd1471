package memory

import (
	"context"
	"sort"
	"time"

	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
)

type OutboxRepository struct{ s *Store }

func (r *OutboxRepository) Enqueue(_ context.Context, record ports.OutboxRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.outbox[record.RecordID] = record
	return nil
}

func (r *OutboxRepository) FetchUnpublished(_ context.Context, limit int) ([]ports.OutboxRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := make([]ports.OutboxRecord, 0)
	for _, rec := range r.s.outbox {
		if rec.PublishedAt == nil {
			rows = append(rows, rec)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })
	return paginate(rows, ports.Page{Limit: limit}), nil
}

func (r *OutboxRepository) MarkPublished(_ context.Context, recordID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.outbox[recordID]
	if !ok {
		return domain.ErrNotFound
	}
	rec.PublishedAt = &at
	r.s.outbox[recordID] = rec
	return nil
}

func (r *OutboxRepository) MarkFailed(_ context.Context, recordID string, _ string, _ time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.outbox[recordID]
	if !ok {
		return domain.ErrNotFound
	}
	rec.RetryCount++
	r.s.outbox[recordID] = rec
	return nil
}

// Pending returns unpublished records of the given event type.
func (r *OutboxRepository) Pending(eventType string) []ports.OutboxRecord {
	rows, _ := r.FetchUnpublished(context.Background(), 0)
	out := rows[:0]
	for _, rec := range rows {
		if eventType == "" || rec.EventType == eventType {
			out = append(out, rec)
		}
	}
	return out
}

type EventDedupRepository struct{ s *Store }

func (r *EventDedupRepository) IsDuplicate(_ context.Context, eventID string, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	expiresAt, ok := r.s.dedup[eventID]
	if !ok {
		return false, nil
	}
	if now.After(expiresAt) {
		delete(r.s.dedup, eventID)
		return false, nil
	}
	return true, nil
}

func (r *EventDedupRepository) MarkProcessed(_ context.Context, eventID, _ string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.dedup[eventID] = expiresAt
	return nil
}

var (
	_ ports.ProductRepository      = (*ProductRepository)(nil)
	_ ports.ReferralLinkRepository = (*ReferralLinkRepository)(nil)
	_ ports.ReferralRepository     = (*ReferralRepository)(nil)
	_ ports.CommissionRepository   = (*CommissionRepository)(nil)
	_ ports.AffiliateRepository    = (*AffiliateRepository)(nil)
	_ ports.ApplicationRepository  = (*ApplicationRepository)(nil)
	_ ports.OutboxRepository       = (*OutboxRepository)(nil)
	_ ports.EventDedupRepository   = (*EventDedupRepository)(nil)
)
