package messages

const (
	// RunMessageSignature is the signature byte for the RUN message
	RunMessageSignature = 0x10
)

// RunMessage Represents a RUN message. Bolt v1 encodes two fields, v3 and
// later append a metadata map; the field count is fixed by the protocol
// version that built the message.
type RunMessage struct {
	statement  string
	parameters map[string]interface{}
	meta       map[string]interface{}
	withMeta   bool
}

// NewRunMessage Gets a new RunMessage struct in the two-field v1 layout
func NewRunMessage(statement string, parameters map[string]interface{}) RunMessage {
	if parameters == nil {
		parameters = map[string]interface{}{}
	}
	return RunMessage{
		statement:  statement,
		parameters: parameters,
	}
}

// NewRunMessageWithMetadata Gets a new RunMessage struct in the three-field
// v3+ layout
func NewRunMessageWithMetadata(statement string, parameters map[string]interface{}, meta map[string]interface{}) RunMessage {
	if parameters == nil {
		parameters = map[string]interface{}{}
	}
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return RunMessage{
		statement:  statement,
		parameters: parameters,
		meta:       meta,
		withMeta:   true,
	}
}

// Signature gets the signature byte for the struct
func (r RunMessage) Signature() int {
	return RunMessageSignature
}

// AllFields gets the fields to encode for the struct
func (r RunMessage) AllFields() []interface{} {
	if r.withMeta {
		return []interface{}{r.statement, r.parameters, r.meta}
	}
	return []interface{}{r.statement, r.parameters}
}
