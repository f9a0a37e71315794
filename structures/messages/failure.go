package messages

const (
	// FailureMessageSignature is the signature byte for the FAILURE message
	FailureMessageSignature = 0x7F
)

// FailureMessage Represents a FAILURE message
type FailureMessage struct {
	Metadata map[string]interface{}
}

// NewFailureMessage Gets a new FailureMessage struct
func NewFailureMessage(metadata map[string]interface{}) FailureMessage {
	return FailureMessage{
		Metadata: metadata,
	}
}

// Signature gets the signature byte for the struct
func (f FailureMessage) Signature() int {
	return FailureMessageSignature
}

// AllFields gets the fields to encode for the struct
func (f FailureMessage) AllFields() []interface{} {
	return []interface{}{f.Metadata}
}

// Code gets the server error code from the failure metadata
func (f FailureMessage) Code() string {
	code, _ := f.Metadata["code"].(string)
	return code
}

// Message gets the server error message from the failure metadata
func (f FailureMessage) Message() string {
	message, _ := f.Metadata["message"].(string)
	return message
}
