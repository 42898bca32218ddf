package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/viralforge/order-gateway/internal/adapters/cache"
	"github.com/viralforge/order-gateway/internal/application"
	"github.com/viralforge/order-gateway/internal/domain"
	"github.com/viralforge/order-gateway/internal/ports"
	"github.com/viralforge/order-gateway/internal/tenant"
)

const orderDocument = `<?xml version="1.0" encoding="UTF-8"?>
<Order>
  <Header>
    <ProcessName>InboundOrder850</ProcessName>
    <OrderId>PO-445</OrderId>
  </Header>
</Order>`

const blankOrderDocument = `<?xml version="1.0" encoding="UTF-8"?>
<Order>
  <Header>
    <OrderId>PO-445</OrderId>
  </Header>
</Order>`

type fakeStore struct {
	mu             sync.Mutex
	flows          map[string][]domain.ProcessFlow
	partnerships   map[string][]domain.Partnership
	flowErr        error
	partnershipErr error
	insertErr      error

	flowCalls        int
	partnershipCalls int
	insertCalls      int
	inserted         []domain.StagingTransaction
}

func (s *fakeStore) ProcessFlowsByName(_ context.Context, flowName string) ([]domain.ProcessFlow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flowCalls++
	if s.flowErr != nil {
		return nil, s.flowErr
	}
	return s.flows[flowName], nil
}

func (s *fakeStore) PartnershipsByID(_ context.Context, partnershipID string) ([]domain.Partnership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partnershipCalls++
	if s.partnershipErr != nil {
		return nil, s.partnershipErr
	}
	return s.partnerships[partnershipID], nil
}

func (s *fakeStore) InsertStaging(_ context.Context, stage domain.StagingTransaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	if s.insertErr != nil {
		return "", s.insertErr
	}
	s.inserted = append(s.inserted, stage)
	return fmt.Sprintf("doc-%d", s.insertCalls), nil
}

func (s *fakeStore) counts() (flows, partnerships, inserts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flowCalls, s.partnershipCalls, s.insertCalls
}

func (s *fakeStore) lastInserted(t *testing.T) domain.StagingTransaction {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.inserted) == 0 {
		t.Fatalf("no staging transaction was inserted")
	}
	return s.inserted[len(s.inserted)-1]
}

type fakeBlob struct {
	mu      sync.Mutex
	uploads []string
	err     error
}

func (b *fakeBlob) Upload(_ context.Context, _ []byte, path, container string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return "", b.err
	}
	location := "mem://" + container + "/" + path
	b.uploads = append(b.uploads, location)
	return location, nil
}

type fakePublisher struct {
	mu         sync.Mutex
	connection string
	topic      string
	payload    []byte
	calls      int
	err        error
}

func (p *fakePublisher) Publish(_ context.Context, connection, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return p.err
	}
	p.connection = connection
	p.topic = topic
	p.payload = append([]byte(nil), payload...)
	return nil
}

type fakeIDs struct {
	mu  sync.Mutex
	seq int
}

func (g *fakeIDs) TransactionID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("txn-%04d", g.seq)
}

func (g *fakeIDs) ControlNumber() string { return "123456789" }

type fakeDirectory struct {
	primary  ports.TenantHandle
	fallback ports.TenantHandle
	known    string
}

func (d *fakeDirectory) Resolve(_ context.Context, tenantID string, route ports.TenantRoute) (ports.TenantHandle, error) {
	if tenantID != d.known {
		return ports.TenantHandle{}, fmt.Errorf("tenant %s: %w", tenantID, domain.ErrNotFound)
	}
	if route == ports.RouteFallback {
		return d.fallback, nil
	}
	return d.primary, nil
}

type fixture struct {
	service   *application.Service
	primary   *fakeStore
	fallback  *fakeStore
	blob      *fakeBlob
	publisher *fakePublisher
}

func configuredFlow(settings map[string]string) []domain.ProcessFlow {
	return []domain.ProcessFlow{{
		Name: "InboundOrder850",
		Steps: []domain.FunctionStep{{
			StepOrder:       1,
			TransactionStep: "ReceiveOrder",
			TransactionName: "Inbound 850",
			TransactionType: "850",
			PartnershipID:   "p-100",
			TotalSteps:      3,
			Settings:        settings,
		}},
	}}
}

func configuredPartnership() []domain.Partnership {
	return []domain.Partnership{{
		PartnershipID:      "p-100",
		PartnershipCode:    "ACME",
		CompanyID:          "c-1",
		CompanyCode:        "VF",
		CustomerID:         "cust-9",
		CustomerCode:       "ACME-RETAIL",
		TransactionSetID:   "ts-850",
		TransactionSetCode: "850",
	}}
}

func newFixture(tenantID string) *fixture {
	primary := &fakeStore{
		flows:        map[string][]domain.ProcessFlow{"InboundOrder850": configuredFlow(map[string]string{"TargetTopic": "orders-inbound"})},
		partnerships: map[string][]domain.Partnership{"p-100": configuredPartnership()},
	}
	fallback := &fakeStore{
		flows:        map[string][]domain.ProcessFlow{"InboundOrder850": configuredFlow(map[string]string{"TargetTopic": "orders-inbound"})},
		partnerships: map[string][]domain.Partnership{"p-100": configuredPartnership()},
	}
	blob := &fakeBlob{}
	publisher := &fakePublisher{}

	directory := &fakeDirectory{
		known:    "tenant-1",
		primary:  ports.TenantHandle{Store: primary, Blob: blob, TopicConnection: "broker:9092"},
		fallback: ports.TenantHandle{Store: fallback, Blob: blob, TopicConnection: "broker:9092"},
	}
	resolver := tenant.NewResolver(directory, cache.NewMemory[ports.TenantHandle](), time.Hour, nil)

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			TenantID:         tenantID,
			CacheTTL:         time.Hour,
			FlowCacheTTL:     time.Hour,
			ArchiveContainer: "archive",
			ProcessNamePath:  "//ProcessName",
		},
		Tenants:      resolver,
		Flows:        cache.NewMemory[domain.ProcessFlow](),
		Partnerships: cache.NewMemory[domain.Partnership](),
		Publisher:    publisher,
		IDs:          &fakeIDs{},
	})

	return &fixture{
		service:   svc,
		primary:   primary,
		fallback:  fallback,
		blob:      blob,
		publisher: publisher,
	}
}

func connectivityFailure() error {
	return &domain.BatchError{Errs: []error{fmt.Errorf("%w: dial tcp refused", domain.ErrStoreUnavailable)}}
}

func TestReceiveOrderHappyPath(t *testing.T) {
	t.Parallel()

	f := newFixture("tenant-1")
	result, err := f.service.ReceiveOrder(context.Background(), []byte(orderDocument))
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if result.TransactionID == "" || result.PersistedID == "" {
		t.Fatalf("expected identifiers in the result, got %+v", result)
	}
	if result.Topic != "orders-inbound" {
		t.Fatalf("expected topic from the step settings, got %q", result.Topic)
	}

	stage := f.primary.lastInserted(t)
	if stage.State != domain.StatePass {
		t.Fatalf("expected Pass state at persist time, got %q", stage.State)
	}
	if stage.Status != domain.StatusActive || stage.OverallStatus != domain.OverallInProgress {
		t.Fatalf("unexpected status fields: %q / %q", stage.Status, stage.OverallStatus)
	}
	if stage.Direction != domain.DirectionInbound {
		t.Fatalf("expected inbound direction, got %q", stage.Direction)
	}
	if stage.ISAControlNumber != "123456789" || stage.GS06 != "123456789" {
		t.Fatalf("control number must mirror into gs06, got %q / %q", stage.ISAControlNumber, stage.GS06)
	}
	if stage.TransactionID == stage.BatchID {
		t.Fatalf("transaction and batch ids must be distinct")
	}
	if stage.StepCount != 3 || !stage.HasBlobPaths {
		t.Fatalf("unexpected step metadata: count=%d has_blob_paths=%v", stage.StepCount, stage.HasBlobPaths)
	}

	wantLocation := "mem://archive/ACME/" + stage.TransactionID + "/ReceiveOrder.txt"
	for _, loc := range []string{stage.InboundDataLocation, stage.OriginalDocumentLocation, stage.StandardDocumentLocation, stage.DataLocation} {
		if loc != wantLocation {
			t.Fatalf("expected every location to point at %q, got %q", wantLocation, loc)
		}
	}

	if len(stage.Steps) != 1 {
		t.Fatalf("expected exactly one step, got %d", len(stage.Steps))
	}
	step := stage.Steps[0]
	if step.Name != "ReceiveOrder" || step.Order != 1 {
		t.Fatalf("unexpected entry step: %+v", step)
	}
	if step.EndedAt == nil || step.Status != domain.StepStatusCompleted || step.FileURL != wantLocation {
		t.Fatalf("entry step must be closed at persist time: %+v", step)
	}
	if step.EndedAt.Before(step.StartedAt) {
		t.Fatalf("step end %v precedes start %v", step.EndedAt, step.StartedAt)
	}

	if f.publisher.calls != 1 || f.publisher.topic != "orders-inbound" || f.publisher.connection != "broker:9092" {
		t.Fatalf("unexpected publish: calls=%d topic=%q connection=%q", f.publisher.calls, f.publisher.topic, f.publisher.connection)
	}
	var published domain.StagingTransaction
	if err := json.Unmarshal(f.publisher.payload, &published); err != nil {
		t.Fatalf("published payload is not a staging record: %v", err)
	}
	if published.TransactionID != stage.TransactionID || published.ID != result.PersistedID {
		t.Fatalf("published record diverges from the persisted one")
	}
}

func TestReceiveOrderTenantUnset(t *testing.T) {
	t.Parallel()

	f := newFixture("")
	_, err := f.service.ReceiveOrder(context.Background(), []byte(orderDocument))
	if !errors.Is(err, domain.ErrTenantNotConfigured) {
		t.Fatalf("expected ErrTenantNotConfigured, got %v", err)
	}
	if flows, _, _ := f.primary.counts(); flows != 0 {
		t.Fatalf("no store call expected when the tenant is unset")
	}
}

func TestReceiveOrderUnknownTenant(t *testing.T) {
	t.Parallel()

	f := newFixture("tenant-unknown")
	_, err := f.service.ReceiveOrder(context.Background(), []byte(orderDocument))
	if !errors.Is(err, domain.ErrTenantNotConfigured) {
		t.Fatalf("expected ErrTenantNotConfigured for a missing directory record, got %v", err)
	}
}

func TestReceiveOrderMissingRoutingKey(t *testing.T) {
	t.Parallel()

	f := newFixture("tenant-1")
	_, err := f.service.ReceiveOrder(context.Background(), []byte(blankOrderDocument))
	if !errors.Is(err, domain.ErrRoutingKeyRequired) {
		t.Fatalf("expected ErrRoutingKeyRequired, got %v", err)
	}
	if flows, _, _ := f.primary.counts(); flows != 0 {
		t.Fatalf("no flow lookup expected without a routing key")
	}
}

func TestReceiveOrderFlowWithoutEntryStep(t *testing.T) {
	t.Parallel()

	f := newFixture("tenant-1")
	f.primary.flows["InboundOrder850"] = nil

	_, err := f.service.ReceiveOrder(context.Background(), []byte(orderDocument))
	if !errors.Is(err, domain.ErrFlowNotConfigured) {
		t.Fatalf("expected ErrFlowNotConfigured, got %v", err)
	}

	// The empty lookup is cached, so a repeat does not hit the store again.
	_, err = f.service.ReceiveOrder(context.Background(), []byte(orderDocument))
	if !errors.Is(err, domain.ErrFlowNotConfigured) {
		t.Fatalf("expected ErrFlowNotConfigured on repeat, got %v", err)
	}
	if flows, _, _ := f.primary.counts(); flows != 1 {
		t.Fatalf("expected the empty flow result to be cached, got %d lookups", flows)
	}
}

func TestReceiveOrderCachesFlowAndPartnership(t *testing.T) {
	t.Parallel()

	f := newFixture("tenant-1")
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := f.service.ReceiveOrder(ctx, []byte(orderDocument)); err != nil {
			t.Fatalf("receive %d failed: %v", i, err)
		}
	}
	flows, partnerships, inserts := f.primary.counts()
	if flows != 1 || partnerships != 1 {
		t.Fatalf("expected cached configuration after the first request, got flows=%d partnerships=%d", flows, partnerships)
	}
	if inserts != 3 {
		t.Fatalf("every request must persist its own record, got %d inserts", inserts)
	}
}

func TestReceiveOrderFallsBackOnPrimaryOutage(t *testing.T) {
	t.Parallel()

	f := newFixture("tenant-1")
	f.primary.flowErr = connectivityFailure()
	f.primary.partnershipErr = connectivityFailure()
	f.primary.insertErr = connectivityFailure()

	result, err := f.service.ReceiveOrder(context.Background(), []byte(orderDocument))
	if err != nil {
		t.Fatalf("receive should survive a primary outage: %v", err)
	}
	if result.TransactionID == "" {
		t.Fatalf("expected a staged transaction via the fallback store")
	}
	if _, _, inserts := f.fallback.counts(); inserts != 1 {
		t.Fatalf("expected the staging write on the fallback store, got %d", inserts)
	}
}

func TestReceiveOrderFallbackPartnershipIsNotCached(t *testing.T) {
	t.Parallel()

	f := newFixture("tenant-1")
	f.primary.partnershipErr = connectivityFailure()

	ctx := context.Background()
	if _, err := f.service.ReceiveOrder(ctx, []byte(orderDocument)); err != nil {
		t.Fatalf("first receive failed: %v", err)
	}
	if _, err := f.service.ReceiveOrder(ctx, []byte(orderDocument)); err != nil {
		t.Fatalf("second receive failed: %v", err)
	}

	// Fallback-served partnerships stay uncached, so each request attempts
	// the primary again and falls back again.
	if _, partnerships, _ := f.fallback.counts(); partnerships != 2 {
		t.Fatalf("expected a fallback partnership lookup per request, got %d", partnerships)
	}
	if _, partnerships, _ := f.primary.counts(); partnerships != 2 {
		t.Fatalf("expected the primary to be reattempted per request, got %d", partnerships)
	}
}

func TestReceiveOrderDoesNotFallBackOnOtherFailures(t *testing.T) {
	t.Parallel()

	f := newFixture("tenant-1")
	f.primary.flowErr = &domain.BatchError{Errs: []error{errors.New("malformed document in store")}}

	_, err := f.service.ReceiveOrder(context.Background(), []byte(orderDocument))
	if err == nil {
		t.Fatalf("expected the store failure to surface")
	}
	if flows, _, _ := f.fallback.counts(); flows != 0 {
		t.Fatalf("non-connectivity failure must not reach the fallback store, got %d lookups", flows)
	}
}

func TestReceiveOrderControlNumberOverride(t *testing.T) {
	t.Parallel()

	f := newFixture("tenant-1")
	f.primary.flows["InboundOrder850"] = configuredFlow(map[string]string{
		"TargetTopic":   "orders-inbound",
		"KeyIdentifier": "//OrderId",
	})

	if _, err := f.service.ReceiveOrder(context.Background(), []byte(orderDocument)); err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	stage := f.primary.lastInserted(t)
	if stage.ISAControlNumber != "PO-445" {
		t.Fatalf("expected the document value to override the control number, got %q", stage.ISAControlNumber)
	}
	if stage.GS06 != "123456789" {
		t.Fatalf("gs06 keeps the generated control number, got %q", stage.GS06)
	}
}

func TestReceiveOrderOverridePathWithoutMatchKeepsGenerated(t *testing.T) {
	t.Parallel()

	f := newFixture("tenant-1")
	f.primary.flows["InboundOrder850"] = configuredFlow(map[string]string{
		"TargetTopic":   "orders-inbound",
		"KeyIdentifier": "//NoSuchElement",
	})

	if _, err := f.service.ReceiveOrder(context.Background(), []byte(orderDocument)); err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	stage := f.primary.lastInserted(t)
	if stage.ISAControlNumber != "123456789" {
		t.Fatalf("unmatched override path must keep the generated number, got %q", stage.ISAControlNumber)
	}
}

func TestReceiveOrderArchiveFailureAborts(t *testing.T) {
	t.Parallel()

	f := newFixture("tenant-1")
	f.blob.err = errors.New("disk full")

	_, err := f.service.ReceiveOrder(context.Background(), []byte(orderDocument))
	if err == nil {
		t.Fatalf("expected the archive failure to surface")
	}
	if _, _, inserts := f.primary.counts(); inserts != 0 {
		t.Fatalf("nothing may be persisted when archiving fails, got %d inserts", inserts)
	}
	if f.publisher.calls != 0 {
		t.Fatalf("nothing may be published when archiving fails")
	}
}

func TestReceiveOrderPublishFailureSurfacesAfterPersist(t *testing.T) {
	t.Parallel()

	f := newFixture("tenant-1")
	f.publisher.err = errors.New("broker unreachable")

	_, err := f.service.ReceiveOrder(context.Background(), []byte(orderDocument))
	if err == nil || !strings.Contains(err.Error(), "publish") {
		t.Fatalf("expected a publish failure, got %v", err)
	}
	if _, _, inserts := f.primary.counts(); inserts != 1 {
		t.Fatalf("the staging record persists before the publish attempt, got %d inserts", inserts)
	}
}
