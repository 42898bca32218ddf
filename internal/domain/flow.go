package domain

// ProcessFlow is a named, ordered pipeline definition configured per tenant.
type ProcessFlow struct {
	Name  string         `json:"name"`
	Steps []FunctionStep `json:"steps"`
}

// FunctionStep is one configured stage of a process flow. Step orders are
// unique and contiguous starting at 1; the step with order 1 is the entry
// point consumed by the receive path.
type FunctionStep struct {
	StepOrder       int               `json:"step_order"`
	TransactionStep string            `json:"transaction_step"`
	TransactionName string            `json:"transaction_name"`
	TransactionType string            `json:"transaction_type"`
	PartnershipID   string            `json:"partnership_id"`
	TotalSteps      int               `json:"total_steps"`
	Settings        map[string]string `json:"settings,omitempty"`
}

func (f ProcessFlow) IsZero() bool {
	return f.Name == "" && len(f.Steps) == 0
}

// EntryStep returns the step with order 1, if the flow has one.
func (f ProcessFlow) EntryStep() (FunctionStep, bool) {
	for _, step := range f.Steps {
		if step.StepOrder == 1 {
			return step, true
		}
	}
	return FunctionStep{}, false
}

// Setting returns a step setting value, or fallback when absent or empty.
func (s FunctionStep) Setting(key, fallback string) string {
	if v, ok := s.Settings[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Partnership is immutable reference data linking a trading partner to the
// company, customer and transaction set it exchanges documents under.
type Partnership struct {
	PartnershipID      string `json:"partnership_id"`
	PartnershipCode    string `json:"partnership_code"`
	CompanyID          string `json:"company_id"`
	CompanyCode        string `json:"company_code"`
	CustomerID         string `json:"customer_id"`
	CustomerCode       string `json:"customer_code"`
	TransactionSetID   string `json:"transaction_set_id"`
	TransactionSetCode string `json:"transaction_set_code"`
}

func (p Partnership) IsZero() bool { return p == (Partnership{}) }
