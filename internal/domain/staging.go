package domain

import "time"

const (
	StatusActive = "Active"

	StateCandidate = "Candidate"
	StatePass      = "Pass"
	StateFail      = "Fail"

	OverallNotStarted = "NotStarted"
	OverallInProgress = "InProgress"
	OverallCompleted  = "Completed"
	OverallFailed     = "Failed"

	DirectionInbound = "Inbound"

	StepStatusCompleted = "Completed"
)

// Step tracks one pipeline stage of a staging transaction. EndedAt, Status
// and FileURL are populated together when the stage closes.
type Step struct {
	Name      string     `json:"step_name"`
	Order     int        `json:"step_order"`
	StartedAt time.Time  `json:"start_date"`
	EndedAt   *time.Time `json:"end_date,omitempty"`
	Status    string     `json:"status,omitempty"`
	FileURL   string     `json:"file_url,omitempty"`
	IsLast    bool       `json:"last_step"`
}

// StagingTransaction is the tracked record representing one inbound
// document's progress through a multi-step pipeline. It is created in the
// Candidate state with exactly one open entry step, and moves to Pass with
// all payload locations set when finalized for publishing.
type StagingTransaction struct {
	ID                       string    `json:"id,omitempty"`
	TransactionID            string    `json:"transaction_id"`
	BatchID                  string    `json:"batch_id"`
	TransactionSetID         string    `json:"transaction_set_id"`
	TransactionSetCode       string    `json:"transaction_set_code"`
	TransactionName          string    `json:"transaction_name"`
	TransactionType          string    `json:"transaction_type"`
	Direction                string    `json:"direction"`
	PartnershipID            string    `json:"partnership_id"`
	PartnershipCode          string    `json:"partnership_code"`
	CompanyID                string    `json:"company_id"`
	CompanyCode              string    `json:"company_code"`
	CustomerID               string    `json:"customer_id"`
	CustomerCode             string    `json:"customer_code"`
	Status                   string    `json:"status"`
	State                    string    `json:"state"`
	OverallStatus            string    `json:"overall_status"`
	CreatedAt                time.Time `json:"created_date"`
	CreatedAtEpoch           int64     `json:"created_date_epoch"`
	ISAControlNumber         string    `json:"isa_control_number"`
	GS06                     string    `json:"gs06"`
	Steps                    []Step    `json:"steps_details"`
	InboundDataLocation      string    `json:"inbound_data,omitempty"`
	OriginalDocumentLocation string    `json:"original_document,omitempty"`
	StandardDocumentLocation string    `json:"standard_document,omitempty"`
	DataLocation             string    `json:"data,omitempty"`
	StepCount                int       `json:"step_count"`
	HasBlobPaths             bool      `json:"has_blob_paths"`
}

// StepByName returns a pointer into the step slice so the finalizer can close
// the step in place, or nil when no step carries that name.
func (t *StagingTransaction) StepByName(name string) *Step {
	for i := range t.Steps {
		if t.Steps[i].Name == name {
			return &t.Steps[i]
		}
	}
	return nil
}
