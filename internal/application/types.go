package application

import (
	"time"

	"github.com/viralforge/order-gateway/internal/domain"
)

// Config carries the request-processing tunables, resolved once at startup
// and passed in by value; components never read ambient environment state.
type Config struct {
	TenantID string

	// CacheTTL applies to tenant handles; FlowCacheTTL applies to resolved
	// process flows and partnerships.
	CacheTTL     time.Duration
	FlowCacheTTL time.Duration

	// ArchiveContainer names the blob container for archived payloads.
	ArchiveContainer string

	// ProcessNamePath is the XML path expression selecting the routing key.
	ProcessNamePath string
}

// Step settings understood by the receive path. KeyIdentifier optionally
// points at a document value that overrides the generated control number;
// TargetTopic names the downstream topic for the finalized record.
const (
	settingKeyIdentifier = "KeyIdentifier"
	settingTargetTopic   = "TargetTopic"
)

// APIParams is the per-request parameter set assembled from the resolved flow
// entry step and its partnership.
type APIParams struct {
	TransactionStep    string
	TransactionName    string
	TransactionType    string
	TotalSteps         int
	PartnershipID      string
	PartnershipCode    string
	CompanyID          string
	CompanyCode        string
	CustomerID         string
	CustomerCode       string
	TransactionSetID   string
	TransactionSetCode string
	KeyIdentifier      string
	TargetTopic        string
}

func buildAPIParams(step domain.FunctionStep, partnership domain.Partnership) APIParams {
	return APIParams{
		TransactionStep:    step.TransactionStep,
		TransactionName:    step.TransactionName,
		TransactionType:    step.TransactionType,
		TotalSteps:         step.TotalSteps,
		PartnershipID:      partnership.PartnershipID,
		PartnershipCode:    partnership.PartnershipCode,
		CompanyID:          partnership.CompanyID,
		CompanyCode:        partnership.CompanyCode,
		CustomerID:         partnership.CustomerID,
		CustomerCode:       partnership.CustomerCode,
		TransactionSetID:   partnership.TransactionSetID,
		TransactionSetCode: partnership.TransactionSetCode,
		KeyIdentifier:      step.Setting(settingKeyIdentifier, ""),
		TargetTopic:        step.Setting(settingTargetTopic, ""),
	}
}

// ReceiveResult reports the outcome of one ingested order.
type ReceiveResult struct {
	TransactionID string
	BatchID       string
	PersistedID   string
	Topic         string
	Location      string
}
