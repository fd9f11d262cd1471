package postgres

import "gorm.io/gorm"

type Repositories struct {
	Products     *productRepository
	Links        *referralLinkRepository
	Referrals    *referralRepository
	Commissions  *commissionRepository
	Affiliates   *affiliateRepository
	Applications *applicationRepository
	Outbox       *outboxRepository
	EventDedup   *eventDedupRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Products:     &productRepository{db: db},
		Links:        &referralLinkRepository{db: db},
		Referrals:    &referralRepository{db: db},
		Commissions:  &commissionRepository{db: db},
		Affiliates:   &affiliateRepository{db: db},
		Applications: &applicationRepository{db: db},
		Outbox:       &outboxRepository{db: db},
		EventDedup:   &eventDedupRepository{db: db},
	}
}
