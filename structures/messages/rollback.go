package messages

const (
	// RollbackMessageSignature is the signature byte for the ROLLBACK message (Bolt v3+)
	RollbackMessageSignature = 0x13
)

// RollbackMessage Represents a ROLLBACK message
type RollbackMessage struct{}

// NewRollbackMessage Gets a new RollbackMessage struct
func NewRollbackMessage() RollbackMessage {
	return RollbackMessage{}
}

// Signature gets the signature byte for the struct
func (r RollbackMessage) Signature() int {
	return RollbackMessageSignature
}

// AllFields gets the fields to encode for the struct
func (r RollbackMessage) AllFields() []interface{} {
	return []interface{}{}
}
