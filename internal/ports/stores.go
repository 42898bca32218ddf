package ports

import (
	"context"

	"github.com/viralforge/order-gateway/internal/domain"
)

// DocumentStore is the opaque queryable store holding tenant configuration
// and staged transactions. Query methods return every match; callers decide
// how to treat empty or ambiguous results. Connectivity failures surface as a
// domain.BatchError wrapping domain.ErrStoreUnavailable so the fallback
// policy can classify them.
type DocumentStore interface {
	ProcessFlowsByName(ctx context.Context, name string) ([]domain.ProcessFlow, error)
	PartnershipsByID(ctx context.Context, partnershipID string) ([]domain.Partnership, error)
	InsertStaging(ctx context.Context, stage domain.StagingTransaction) (string, error)
}

// BlobStore archives raw payloads and returns an opaque addressable location.
type BlobStore interface {
	Upload(ctx context.Context, content []byte, path, container string) (string, error)
}
