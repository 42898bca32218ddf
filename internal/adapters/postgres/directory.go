package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/viralforge/order-gateway/internal/domain"
	"github.com/viralforge/order-gateway/internal/ports"
)

// BlobFactory builds the blob store for a tenant from the directory row's
// blob root. Injected so the directory stays agnostic of the blob backend.
type BlobFactory func(blobRoot string) (ports.BlobStore, error)

// Directory resolves tenant handles from the shared store's tenants table.
// The fallback route always serves the shared store itself; the primary
// route opens the tenant's own database, with opened pools reused across
// requests.
type Directory struct {
	common      *gorm.DB
	blobFactory BlobFactory

	mu    sync.Mutex
	pools map[string]*gorm.DB
}

func NewDirectory(common *gorm.DB, blobFactory BlobFactory) *Directory {
	return &Directory{
		common:      common,
		blobFactory: blobFactory,
		pools:       make(map[string]*gorm.DB),
	}
}

func (d *Directory) Resolve(ctx context.Context, tenantID string, route ports.TenantRoute) (ports.TenantHandle, error) {
	var row tenantRow
	if err := d.common.WithContext(ctx).Where("tenant_id = ?", tenantID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.TenantHandle{}, fmt.Errorf("tenant %s: %w", tenantID, domain.ErrNotFound)
		}
		return ports.TenantHandle{}, fmt.Errorf("resolve tenant %s: %w", tenantID, err)
	}

	blob, err := d.blobFactory(row.BlobRoot)
	if err != nil {
		return ports.TenantHandle{}, fmt.Errorf("tenant %s blob store: %w", tenantID, err)
	}

	handle := ports.TenantHandle{
		Blob:            blob,
		TopicConnection: row.TopicConnection,
	}

	if route == ports.RouteFallback {
		handle.Store = NewStore(d.common)
		return handle, nil
	}

	db, err := d.tenantDB(ctx, row.StoreURL)
	if err != nil {
		return ports.TenantHandle{}, fmt.Errorf("tenant %s store: %w", tenantID, err)
	}
	handle.Store = NewStore(db)
	return handle, nil
}

func (d *Directory) tenantDB(ctx context.Context, storeURL string) (*gorm.DB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if db, ok := d.pools[storeURL]; ok {
		return db, nil
	}
	db, err := Connect(ctx, storeURL, 0)
	if err != nil {
		return nil, err
	}
	d.pools[storeURL] = db
	return db, nil
}

// Close releases every tenant pool the directory opened. The shared pool is
// owned by the caller and left open.
func (d *Directory) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var errs []error
	for url, db := range d.pools {
		sqlDB, err := db.DB()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close tenant pool %s: %w", url, err))
		}
	}
	d.pools = make(map[string]*gorm.DB)
	return errors.Join(errs...)
}
