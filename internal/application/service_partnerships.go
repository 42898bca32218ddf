package application

import (
	"context"
	"fmt"

	"github.com/viralforge/order-gateway/internal/domain"
	"github.com/viralforge/order-gateway/internal/ports"
	"github.com/viralforge/order-gateway/internal/tenant"
)

// resolvePartnership looks up a partner record by partnership id. Unlike
// resolveProcessFlow, only a non-empty result served by the primary path is
// cached: empty lookups and fallback-derived results are re-attempted on the
// next request.
func (s *Service) resolvePartnership(ctx context.Context, handle ports.TenantHandle, partnershipID string) (domain.Partnership, error) {
	cacheKey := fmt.Sprintf("%s-Partnership-%s", s.cfg.TenantID, partnershipID)
	if partnership, ok, err := s.partnerships.Get(ctx, cacheKey); err != nil {
		s.logger.WarnContext(ctx, "partnership cache read failed",
			"module", "application.service",
			"layer", "core",
			"operation", "resolve_partnership",
			"outcome", "failure",
			"cache_key", cacheKey,
			"error", err,
		)
	} else if ok {
		s.logger.InfoContext(ctx, "partnership served from cache",
			"module", "application.service",
			"layer", "core",
			"operation", "resolve_partnership",
			"outcome", "success",
			"cache_key", cacheKey,
		)
		return partnership, nil
	}

	partnership, route, err := tenant.ExecuteWithFallback(ctx, s.tenants, s.cfg.TenantID, handle, s.classify,
		func(ctx context.Context, h ports.TenantHandle) (domain.Partnership, error) {
			return firstPartnership(ctx, h, partnershipID)
		})
	if err != nil {
		return domain.Partnership{}, err
	}

	if route == ports.RoutePrimary && !partnership.IsZero() {
		if err := s.partnerships.Put(ctx, cacheKey, partnership, s.cfg.FlowCacheTTL); err != nil {
			s.logger.WarnContext(ctx, "partnership cache write failed",
				"module", "application.service",
				"layer", "core",
				"operation", "resolve_partnership",
				"outcome", "failure",
				"cache_key", cacheKey,
				"error", err,
			)
		}
	}
	return partnership, nil
}

func firstPartnership(ctx context.Context, h ports.TenantHandle, partnershipID string) (domain.Partnership, error) {
	partnerships, err := h.Store.PartnershipsByID(ctx, partnershipID)
	if err != nil {
		return domain.Partnership{}, err
	}
	if len(partnerships) == 0 {
		return domain.Partnership{}, nil
	}
	return partnerships[0], nil
}
