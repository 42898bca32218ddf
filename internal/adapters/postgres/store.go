package postgres

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/viralforge/order-gateway/internal/domain"
)

// Store is the Postgres-backed document store for one tenant.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ProcessFlowsByName(ctx context.Context, flowName string) ([]domain.ProcessFlow, error) {
	var rows []processFlowRow
	if err := s.db.WithContext(ctx).Where("flow_name = ?", flowName).Find(&rows).Error; err != nil {
		return nil, wrapStoreErr("query process flows", err)
	}
	flows := make([]domain.ProcessFlow, 0, len(rows))
	for _, row := range rows {
		var flow domain.ProcessFlow
		if err := json.Unmarshal([]byte(row.Document), &flow); err != nil {
			return nil, fmt.Errorf("decode process flow %s: %w", row.ID, err)
		}
		flows = append(flows, flow)
	}
	return flows, nil
}

func (s *Store) PartnershipsByID(ctx context.Context, partnershipID string) ([]domain.Partnership, error) {
	var rows []partnershipRow
	if err := s.db.WithContext(ctx).Where("partnership_id = ?", partnershipID).Find(&rows).Error; err != nil {
		return nil, wrapStoreErr("query partnerships", err)
	}
	partnerships := make([]domain.Partnership, 0, len(rows))
	for _, row := range rows {
		var partnership domain.Partnership
		if err := json.Unmarshal([]byte(row.Document), &partnership); err != nil {
			return nil, fmt.Errorf("decode partnership %s: %w", row.ID, err)
		}
		partnerships = append(partnerships, partnership)
	}
	return partnerships, nil
}

func (s *Store) InsertStaging(ctx context.Context, stage domain.StagingTransaction) (string, error) {
	document, err := json.Marshal(stage)
	if err != nil {
		return "", fmt.Errorf("encode staging transaction: %w", err)
	}
	row := stagingRow{
		ID:            uuid.NewString(),
		TransactionID: stage.TransactionID,
		State:         stage.State,
		Document:      string(document),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", wrapStoreErr("insert staging transaction", err)
	}
	return row.ID, nil
}

// wrapStoreErr folds a store failure into the batch shape the fallback
// classifier inspects. Connectivity-class causes carry ErrStoreUnavailable
// so one retry against the shared store is permitted; everything else
// surfaces as-is.
func wrapStoreErr(operation string, err error) error {
	wrapped := fmt.Errorf("%s: %w", operation, err)
	if isConnectivityErr(err) {
		return &domain.BatchError{Errs: []error{fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, wrapped)}}
	}
	return &domain.BatchError{Errs: []error{wrapped}}
}

func isConnectivityErr(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, gorm.ErrInvalidDB) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
