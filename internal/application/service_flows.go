package application

import (
	"context"
	"fmt"

	"github.com/viralforge/order-gateway/internal/domain"
	"github.com/viralforge/order-gateway/internal/ports"
	"github.com/viralforge/order-gateway/internal/tenant"
)

// resolveProcessFlow looks up a flow by name through the cache-aside path.
// A cache hit is served without re-validation against the store. Empty
// lookups are cached too, so a persistently missing flow does not hammer the
// store on every request.
func (s *Service) resolveProcessFlow(ctx context.Context, handle ports.TenantHandle, flowName string) (domain.ProcessFlow, error) {
	cacheKey := fmt.Sprintf("%s-ProcessFlow-%s", s.cfg.TenantID, flowName)
	if flow, ok, err := s.flows.Get(ctx, cacheKey); err != nil {
		s.logger.WarnContext(ctx, "process flow cache read failed",
			"module", "application.service",
			"layer", "core",
			"operation", "resolve_process_flow",
			"outcome", "failure",
			"cache_key", cacheKey,
			"error", err,
		)
	} else if ok {
		s.logger.InfoContext(ctx, "process flow served from cache",
			"module", "application.service",
			"layer", "core",
			"operation", "resolve_process_flow",
			"outcome", "success",
			"cache_key", cacheKey,
		)
		return flow, nil
	}

	flow, _, err := tenant.ExecuteWithFallback(ctx, s.tenants, s.cfg.TenantID, handle, s.classify,
		func(ctx context.Context, h ports.TenantHandle) (domain.ProcessFlow, error) {
			return firstProcessFlow(ctx, h, flowName)
		})
	if err != nil {
		return domain.ProcessFlow{}, err
	}

	if err := s.flows.Put(ctx, cacheKey, flow, s.cfg.FlowCacheTTL); err != nil {
		s.logger.WarnContext(ctx, "process flow cache write failed",
			"module", "application.service",
			"layer", "core",
			"operation", "resolve_process_flow",
			"outcome", "failure",
			"cache_key", cacheKey,
			"error", err,
		)
	}
	return flow, nil
}

func firstProcessFlow(ctx context.Context, h ports.TenantHandle, name string) (domain.ProcessFlow, error) {
	flows, err := h.Store.ProcessFlowsByName(ctx, name)
	if err != nil {
		return domain.ProcessFlow{}, err
	}
	if len(flows) == 0 {
		return domain.ProcessFlow{}, nil
	}
	// Flow names are unique per tenant by configuration contract; the first
	// match wins when that contract is violated.
	return flows[0], nil
}
