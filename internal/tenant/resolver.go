package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/viralforge/order-gateway/internal/domain"
	"github.com/viralforge/order-gateway/internal/ports"
)

// Resolver caches tenant handles per route with a TTL so repeated requests do
// not hit the tenant directory on every document. Handles are immutable, so
// serving a cached handle to concurrent requests is safe.
type Resolver struct {
	directory ports.TenantDirectory
	handles   ports.ConfigCache[ports.TenantHandle]
	ttl       time.Duration
	logger    *slog.Logger
}

func NewResolver(directory ports.TenantDirectory, handles ports.ConfigCache[ports.TenantHandle], ttl time.Duration, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		directory: directory,
		handles:   handles,
		ttl:       ttl,
		logger:    logger,
	}
}

// Primary resolves the tenant's own handle.
func (r *Resolver) Primary(ctx context.Context, tenantID string) (ports.TenantHandle, error) {
	return r.resolve(ctx, tenantID, ports.RoutePrimary)
}

// Fallback resolves the handle pointed at the shared/common store.
func (r *Resolver) Fallback(ctx context.Context, tenantID string) (ports.TenantHandle, error) {
	return r.resolve(ctx, tenantID, ports.RouteFallback)
}

func (r *Resolver) resolve(ctx context.Context, tenantID string, route ports.TenantRoute) (ports.TenantHandle, error) {
	key := tenantID + ":" + string(route)
	if handle, ok, err := r.handles.Get(ctx, key); err != nil {
		r.logger.WarnContext(ctx, "tenant handle cache read failed",
			"module", "tenant.resolver",
			"layer", "core",
			"operation", "resolve_handle",
			"outcome", "failure",
			"tenant_id", tenantID,
			"route", string(route),
			"error", err,
		)
	} else if ok {
		r.logger.DebugContext(ctx, "tenant handle served from cache",
			"module", "tenant.resolver",
			"layer", "core",
			"operation", "resolve_handle",
			"outcome", "success",
			"tenant_id", tenantID,
			"route", string(route),
		)
		return handle, nil
	}

	handle, err := r.directory.Resolve(ctx, tenantID, route)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ports.TenantHandle{}, fmt.Errorf("%w: tenant %q has no directory record", domain.ErrTenantNotConfigured, tenantID)
		}
		return ports.TenantHandle{}, fmt.Errorf("resolve tenant %q: %w", tenantID, err)
	}
	_ = r.handles.Put(ctx, key, handle, r.ttl)
	return handle, nil
}
