package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mladenvic/promoaffiliate/internal/contracts"
	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
)

const autoApproveLockKey = "affiliate:lock:auto-approve"

func (s *Service) ListAffiliateCommissions(ctx context.Context, actor Actor, in ListCommissionsInput) (CommissionPage, error) {
	if err := requireAffiliate(actor); err != nil {
		return CommissionPage{}, err
	}
	in.AffiliateID = actor.SubjectID
	return s.listCommissions(ctx, in, s.cfg.DefaultPageSize, false)
}

func (s *Service) ListAllCommissions(ctx context.Context, actor Actor, in ListCommissionsInput) (CommissionPage, error) {
	if err := requireAdmin(actor); err != nil {
		return CommissionPage{}, err
	}
	return s.listCommissions(ctx, in, s.cfg.AdminPageSize, true)
}

func (s *Service) listCommissions(ctx context.Context, in ListCommissionsInput, defaultLimit int, withAffiliate bool) (CommissionPage, error) {
	page, pageNo, limit, err := s.resolvePage(in.PageInput, defaultLimit)
	if err != nil {
		return CommissionPage{}, err
	}
	status, err := parseCommissionStatusFilter(in.Status)
	if err != nil {
		return CommissionPage{}, err
	}
	rows, err := s.commissions.List(ctx, ports.CommissionFilter{
		AffiliateID: strings.TrimSpace(in.AffiliateID),
		ProductID:   strings.TrimSpace(in.ProductID),
		Status:      status,
		From:        in.From,
		To:          in.To,
	}, page)
	if err != nil {
		return CommissionPage{}, err
	}

	productIDs := make([]string, 0, len(rows))
	referralIDs := make([]string, 0, len(rows))
	affiliateIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		productIDs = append(productIDs, row.ProductID)
		referralIDs = append(referralIDs, row.ReferralID)
		affiliateIDs = append(affiliateIDs, row.AffiliateID)
	}
	products, err := s.productsByIDs(ctx, productIDs)
	if err != nil {
		return CommissionPage{}, err
	}
	referrals := map[string]domain.Referral{}
	if ids := uniqueNonEmpty(referralIDs); len(ids) > 0 {
		if referrals, err = s.referrals.GetByIDs(ctx, ids); err != nil {
			return CommissionPage{}, err
		}
	}
	affiliates := map[string]domain.AffiliateProfile{}
	if ids := uniqueNonEmpty(affiliateIDs); withAffiliate && len(ids) > 0 {
		if affiliates, err = s.affiliates.GetByUserIDs(ctx, ids); err != nil {
			return CommissionPage{}, err
		}
	}

	items := make([]CommissionView, 0, len(rows))
	for _, row := range rows {
		view := CommissionView{Commission: row}
		if p, ok := products[row.ProductID]; ok {
			view.Product = &p
		}
		if r, ok := referrals[row.ReferralID]; ok {
			view.Referral = &r
		}
		if a, ok := affiliates[row.AffiliateID]; ok {
			view.Affiliate = &a
		}
		items = append(items, view)
	}
	return CommissionPage{Items: items, Page: pageNo, Limit: limit, HasMore: len(rows) == limit}, nil
}

// ReviewCommission records an admin decision on a pending commission.
// Approval credits the affiliate's approved earnings in the same transaction.
func (s *Service) ReviewCommission(ctx context.Context, actor Actor, in ReviewCommissionInput) (domain.Commission, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.Commission{}, err
	}
	in.CommissionID = strings.TrimSpace(in.CommissionID)
	status := domain.CommissionStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if in.CommissionID == "" {
		return domain.Commission{}, fmt.Errorf("%w: commissionId is required", domain.ErrInvalidInput)
	}
	if !domain.IsReviewOutcome(status) {
		return domain.Commission{}, fmt.Errorf("%w: status must be approved or rejected", domain.ErrInvalidInput)
	}
	current, err := s.commissions.GetByID(ctx, in.CommissionID)
	if err != nil {
		return domain.Commission{}, err
	}
	if !domain.CanTransition(current.Status, status) {
		return domain.Commission{}, fmt.Errorf("%w: commission is %s", domain.ErrConflict, current.Status)
	}

	now := s.nowFn()
	updated, err := s.commissions.Review(ctx, ports.ReviewParams{
		CommissionID: in.CommissionID,
		Status:       status,
		ReviewedBy:   actor.SubjectID,
		Notes:        strings.TrimSpace(in.Notes),
		At:           now,
	})
	if err != nil {
		return domain.Commission{}, err
	}
	s.emitReviewed(ctx, actor.RequestID, updated, now)
	return updated, nil
}

// BulkApproveCommissions approves the still-pending subset of ids in one
// batch. Ids that are missing or already decided are skipped silently.
func (s *Service) BulkApproveCommissions(ctx context.Context, actor Actor, in BulkApproveInput) (BulkApproveResult, error) {
	if err := requireAdmin(actor); err != nil {
		return BulkApproveResult{}, err
	}
	if len(in.CommissionIDs) == 0 {
		return BulkApproveResult{}, fmt.Errorf("%w: commissionIds must not be empty", domain.ErrInvalidInput)
	}
	ids := uniqueNonEmpty(in.CommissionIDs)
	if len(ids) == 0 {
		return BulkApproveResult{}, fmt.Errorf("%w: commissionIds must not be empty", domain.ErrInvalidInput)
	}
	now := s.nowFn()
	approved, err := s.commissions.ApproveBatch(ctx, ports.ApproveBatchParams{
		CommissionIDs: ids,
		ReviewedBy:    actor.SubjectID,
		Notes:         strings.TrimSpace(in.Notes),
		At:            now,
	})
	if err != nil {
		return BulkApproveResult{}, err
	}
	for _, row := range approved {
		s.emitReviewed(ctx, actor.RequestID, row, now)
	}
	return BulkApproveResult{ProcessedCount: len(in.CommissionIDs), ApprovedCount: len(approved)}, nil
}

// AutoApproveCommissions approves pending commissions older than the review
// period in bounded batches. Each batch only touches rows that are still
// pending, so a rerun after a partial failure cannot credit twice.
func (s *Service) AutoApproveCommissions(ctx context.Context) (AutoApproveResult, error) {
	if s.locker != nil {
		owner := uuid.NewString()
		ok, err := s.locker.TryLock(ctx, autoApproveLockKey, owner, s.cfg.SweepLockTTL)
		if err != nil {
			return AutoApproveResult{}, fmt.Errorf("acquire sweep lock: %w", err)
		}
		if !ok {
			return AutoApproveResult{Skipped: true}, nil
		}
		defer func() {
			if err := s.locker.Unlock(context.WithoutCancel(ctx), autoApproveLockKey, owner); err != nil {
				s.logFailure(ctx, "release_sweep_lock", err)
			}
		}()
	}

	now := s.nowFn()
	cutoff := now.Add(-s.cfg.AutoApproveAfter)
	var res AutoApproveResult
	for {
		due, err := s.commissions.ListPendingCreatedBefore(ctx, cutoff, s.cfg.AutoApproveBatchSize)
		if err != nil {
			return res, err
		}
		if len(due) == 0 {
			break
		}
		ids := make([]string, 0, len(due))
		for _, row := range due {
			ids = append(ids, row.CommissionID)
		}
		approved, err := s.commissions.ApproveBatch(ctx, ports.ApproveBatchParams{
			CommissionIDs: ids,
			ReviewedBy:    domain.AutoApproveReviewer,
			Notes:         domain.AutoApproveNotes,
			At:            now,
		})
		if err != nil {
			return res, err
		}
		res.Batches++
		res.Approved += len(approved)
		for _, row := range approved {
			s.emitReviewed(ctx, "", row, now)
		}
		if len(due) < s.cfg.AutoApproveBatchSize || len(approved) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
	}
	s.logger.InfoContext(ctx, "auto approval sweep finished",
		"operation", "auto_approve_commissions",
		"outcome", "success",
		"approved", res.Approved,
		"batches", res.Batches,
		"cutoff", formatTime(cutoff),
	)
	return res, nil
}

func (s *Service) emitReviewed(ctx context.Context, traceID string, row domain.Commission, now time.Time) {
	s.emit(ctx, domain.EventCommissionReviewed, traceID, contracts.CommissionReviewedPayload{
		AffiliateID:      row.AffiliateID,
		CommissionID:     row.CommissionID,
		Status:           string(row.Status),
		CommissionAmount: row.CommissionAmount,
		ReviewedBy:       row.ReviewedBy,
		ReviewedAt:       formatTime(now),
	}, row.AffiliateID, now)
}

func parseCommissionStatusFilter(raw string) (domain.CommissionStatus, error) {
	status := domain.CommissionStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case "", domain.CommissionStatusPending, domain.CommissionStatusApproved, domain.CommissionStatusRejected, domain.CommissionStatusPaid:
		return status, nil
	default:
		return "", fmt.Errorf("%w: unknown commission status %q", domain.ErrInvalidInput, raw)
	}
}
