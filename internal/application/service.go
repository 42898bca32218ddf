package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/viralforge/order-gateway/internal/domain"
	"github.com/viralforge/order-gateway/internal/ports"
	"github.com/viralforge/order-gateway/internal/tenant"
	"github.com/viralforge/order-gateway/internal/xmlpath"
)

// Service orchestrates the inbound receive path: resolve configuration,
// stage the transaction, archive the payload, finalize, publish.
type Service struct {
	cfg          Config
	tenants      *tenant.Resolver
	flows        ports.ConfigCache[domain.ProcessFlow]
	partnerships ports.ConfigCache[domain.Partnership]
	publisher    ports.TopicPublisher
	ids          ports.IDGenerator
	classify     func(error) domain.Failure
	extract      func(document []byte, expr string) string
	logger       *slog.Logger
	nowFn        func() time.Time
}

type Dependencies struct {
	Config       Config
	Tenants      *tenant.Resolver
	Flows        ports.ConfigCache[domain.ProcessFlow]
	Partnerships ports.ConfigCache[domain.Partnership]
	Publisher    ports.TopicPublisher
	IDs          ports.IDGenerator
	Logger       *slog.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:          deps.Config,
		tenants:      deps.Tenants,
		flows:        deps.Flows,
		partnerships: deps.Partnerships,
		publisher:    deps.Publisher,
		ids:          deps.IDs,
		classify:     domain.ClassifyStoreFailure,
		extract:      xmlpath.Extract,
		logger:       logger,
		nowFn:        func() time.Time { return time.Now().UTC() },
	}
}

// ReceiveOrder ingests one inbound XML order. The sequence runs to completion
// within the caller's context; there is no internal concurrency. A crash
// between the staging write and the publish is an accepted gap reconciled by
// downstream consumers.
func (s *Service) ReceiveOrder(ctx context.Context, payload []byte) (ReceiveResult, error) {
	if strings.TrimSpace(s.cfg.TenantID) == "" {
		return ReceiveResult{}, fmt.Errorf("%w: tenant id is not set", domain.ErrTenantNotConfigured)
	}

	handle, err := s.tenants.Primary(ctx, s.cfg.TenantID)
	if err != nil {
		return ReceiveResult{}, err
	}

	processName := s.extract(payload, s.cfg.ProcessNamePath)
	if processName == "" {
		return ReceiveResult{}, fmt.Errorf("%w: no value at %q", domain.ErrRoutingKeyRequired, s.cfg.ProcessNamePath)
	}

	flow, err := s.resolveProcessFlow(ctx, handle, processName)
	if err != nil {
		return ReceiveResult{}, err
	}
	step, ok := flow.EntryStep()
	if !ok {
		return ReceiveResult{}, fmt.Errorf("%w: flow %q has no entry step", domain.ErrFlowNotConfigured, processName)
	}

	partnership, err := s.resolvePartnership(ctx, handle, step.PartnershipID)
	if err != nil {
		return ReceiveResult{}, err
	}

	params := buildAPIParams(step, partnership)
	stage := buildStagingTransaction(params, s.ids, s.nowFn())

	archivePath := fmt.Sprintf("%s/%s/%s.txt", params.PartnershipCode, stage.TransactionID, params.TransactionStep)
	location, err := handle.Blob.Upload(ctx, payload, archivePath, s.cfg.ArchiveContainer)
	if err != nil {
		return ReceiveResult{}, fmt.Errorf("archive payload: %w", err)
	}
	s.logger.InfoContext(ctx, "payload archived",
		"module", "application.service",
		"layer", "core",
		"operation", "receive_order",
		"transaction_id", stage.TransactionID,
		"location", location,
	)

	if params.KeyIdentifier != "" {
		if override := s.extract(payload, params.KeyIdentifier); override != "" {
			stage.ISAControlNumber = override
		}
	}

	persistedID, err := s.finalizeStaging(ctx, handle, &stage, params, location)
	if err != nil {
		return ReceiveResult{}, err
	}
	stage.ID = persistedID

	raw, err := json.Marshal(stage)
	if err != nil {
		return ReceiveResult{}, fmt.Errorf("encode staging record: %w", err)
	}
	if err := s.publisher.Publish(ctx, handle.TopicConnection, params.TargetTopic, raw); err != nil {
		return ReceiveResult{}, fmt.Errorf("publish to topic %q: %w", params.TargetTopic, err)
	}
	s.logger.InfoContext(ctx, "order staged and published",
		"module", "application.service",
		"layer", "core",
		"operation", "receive_order",
		"outcome", "success",
		"transaction_id", stage.TransactionID,
		"process_name", processName,
		"topic", params.TargetTopic,
	)

	return ReceiveResult{
		TransactionID: stage.TransactionID,
		BatchID:       stage.BatchID,
		PersistedID:   persistedID,
		Topic:         params.TargetTopic,
		Location:      location,
	}, nil
}
