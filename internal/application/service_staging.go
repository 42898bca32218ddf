package application

import (
	"context"
	"fmt"
	"time"

	"github.com/viralforge/order-gateway/internal/domain"
	"github.com/viralforge/order-gateway/internal/ports"
	"github.com/viralforge/order-gateway/internal/tenant"
)

// buildStagingTransaction assembles a new staging record with its single
// entry step. Pure construction: no I/O, all identifiers come from the
// injected generator. The record is never persisted before this entry step
// exists.
func buildStagingTransaction(params APIParams, ids ports.IDGenerator, now time.Time) domain.StagingTransaction {
	controlNumber := ids.ControlNumber()
	return domain.StagingTransaction{
		TransactionID:      ids.TransactionID(),
		BatchID:            ids.TransactionID(),
		TransactionSetID:   params.TransactionSetID,
		TransactionSetCode: params.TransactionSetCode,
		TransactionName:    params.TransactionName,
		TransactionType:    params.TransactionType,
		Direction:          domain.DirectionInbound,
		PartnershipID:      params.PartnershipID,
		PartnershipCode:    params.PartnershipCode,
		CompanyID:          params.CompanyID,
		CompanyCode:        params.CompanyCode,
		CustomerID:         params.CustomerID,
		CustomerCode:       params.CustomerCode,
		Status:             domain.StatusActive,
		State:              domain.StateCandidate,
		OverallStatus:      domain.OverallNotStarted,
		CreatedAt:          now,
		CreatedAtEpoch:     now.Unix(),
		ISAControlNumber:   controlNumber,
		GS06:               controlNumber,
		StepCount:          params.TotalSteps,
		HasBlobPaths:       true,
		Steps: []domain.Step{{
			Name:      params.TransactionStep,
			Order:     1,
			StartedAt: now,
			IsLast:    false,
		}},
	}
}

// finalizeStaging advances the record to its publishable state and persists
// it. State moves Candidate to Pass, every payload-location field points at
// the archived artifact, and the entry step is closed in the same pass, so
// a partially finalized record never reaches the store. The write goes
// through the fallback policy.
//
// Calling this twice on the same record is not supported.
func (s *Service) finalizeStaging(ctx context.Context, handle ports.TenantHandle, stage *domain.StagingTransaction, params APIParams, location string) (string, error) {
	stage.State = domain.StatePass
	stage.OverallStatus = domain.OverallInProgress
	stage.InboundDataLocation = location
	stage.OriginalDocumentLocation = location
	stage.StandardDocumentLocation = location
	stage.DataLocation = location

	step := stage.StepByName(params.TransactionStep)
	if step == nil {
		return "", fmt.Errorf("%w: %q", domain.ErrStepNotFound, params.TransactionStep)
	}
	endedAt := s.nowFn()
	step.EndedAt = &endedAt
	step.Status = domain.StepStatusCompleted
	step.FileURL = location

	persistedID, _, err := tenant.ExecuteWithFallback(ctx, s.tenants, s.cfg.TenantID, handle, s.classify,
		func(ctx context.Context, h ports.TenantHandle) (string, error) {
			return h.Store.InsertStaging(ctx, *stage)
		})
	if err != nil {
		return "", fmt.Errorf("persist staging transaction: %w", err)
	}
	return persistedID, nil
}
