package application

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
)

func requireAuthenticated(actor Actor) error {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.ErrUnauthorized
	}
	return nil
}

func requireAffiliate(actor Actor) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}
	if !actor.Affiliate {
		return fmt.Errorf("%w: affiliate access required", domain.ErrForbidden)
	}
	return nil
}

func requireAdmin(actor Actor) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}
	if !actor.Admin {
		return fmt.Errorf("%w: admin access required", domain.ErrForbidden)
	}
	return nil
}

// resolvePage turns 1-based page/limit input into an offset window.
func (s *Service) resolvePage(in PageInput, defaultLimit int) (ports.Page, int, int, error) {
	page := in.Page
	if page == 0 {
		page = 1
	}
	limit := in.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if page < 1 || limit < 1 {
		return ports.Page{}, 0, 0, fmt.Errorf("%w: page and limit must be positive", domain.ErrInvalidInput)
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	if page-1 > math.MaxInt32/limit {
		return ports.Page{}, 0, 0, fmt.Errorf("%w: page %d is out of range", domain.ErrInvalidInput, page)
	}
	return ports.Page{Limit: limit, Offset: (page - 1) * limit}, page, limit, nil
}

func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (s *Service) logFailure(ctx context.Context, operation string, err error, attrs ...any) {
	fields := append([]any{
		"operation", operation,
		"outcome", "failure",
		"error", err,
	}, attrs...)
	s.logger.WarnContext(ctx, "operation failed", fields...)
}
