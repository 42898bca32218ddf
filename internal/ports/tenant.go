package ports

import "context"

// TenantRoute selects which resolution path the directory uses.
type TenantRoute string

const (
	// RoutePrimary resolves against the tenant's own store.
	RoutePrimary TenantRoute = "primary"
	// RouteFallback serves configuration from the shared lookup store, used
	// when the tenant's primary store is unreachable.
	RouteFallback TenantRoute = "fallback"
)

// TenantHandle bundles the per-tenant collaborators needed to process one
// request. A handle is immutable once constructed and is shared read-only by
// every resolver operating on behalf of that tenant within a request.
type TenantHandle struct {
	Store           DocumentStore
	Blob            BlobStore
	TopicConnection string
}

// TenantDirectory resolves a tenant identifier into a live handle.
// Resolve returns domain.ErrNotFound when the tenant has no record; callers
// treat that as a fatal configuration error.
type TenantDirectory interface {
	Resolve(ctx context.Context, tenantID string, route TenantRoute) (TenantHandle, error)
}
