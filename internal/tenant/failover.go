package tenant

import (
	"context"
	"fmt"

	"github.com/viralforge/order-gateway/internal/domain"
	"github.com/viralforge/order-gateway/internal/ports"
)

// Op is a store operation executed against a tenant handle. The same
// operation runs against the primary handle first and, on a connectivity
// failure, once more against the fallback handle.
type Op[T any] func(ctx context.Context, handle ports.TenantHandle) (T, error)

// ExecuteWithFallback runs op against the primary handle. When op fails and
// the classifier reports a connectivity failure, the fallback handle is
// resolved and op runs against it exactly once; its result or failure is
// final. Any other failure propagates unchanged without a retry. The returned
// route tells the caller which path produced the result; some callers cache
// only primary-path results.
func ExecuteWithFallback[T any](
	ctx context.Context,
	resolver *Resolver,
	tenantID string,
	primary ports.TenantHandle,
	classify func(error) domain.Failure,
	op Op[T],
) (T, ports.TenantRoute, error) {
	var zero T

	result, err := op(ctx, primary)
	if err == nil {
		return result, ports.RoutePrimary, nil
	}

	if failure := classify(err); failure.Kind != domain.FailureConnectivity {
		return zero, ports.RoutePrimary, err
	}

	fallback, fbErr := resolver.Fallback(ctx, tenantID)
	if fbErr != nil {
		return zero, ports.RouteFallback, fmt.Errorf("resolve fallback tenant handle: %w", fbErr)
	}
	result, err = op(ctx, fallback)
	if err != nil {
		return zero, ports.RouteFallback, err
	}
	return result, ports.RouteFallback, nil
}
