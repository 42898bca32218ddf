package ports

// IDGenerator supplies transaction identifiers and interchange control
// numbers for new staging records.
type IDGenerator interface {
	TransactionID() string
	ControlNumber() string
}
