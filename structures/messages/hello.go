package messages

const (
	// HelloMessageSignature is the signature byte for the HELLO message
	// (Bolt v3+, replaces INIT and shares its signature)
	HelloMessageSignature = 0x01
)

// HelloMessage Represents a HELLO message
type HelloMessage struct {
	extra map[string]interface{}
}

// NewHelloMessage Gets a new HelloMessage struct. The extra map carries
// user_agent and, before v5.1, the auth token fields.
func NewHelloMessage(extra map[string]interface{}) HelloMessage {
	return HelloMessage{
		extra: extra,
	}
}

// Signature gets the signature byte for the struct
func (h HelloMessage) Signature() int {
	return HelloMessageSignature
}

// AllFields gets the fields to encode for the struct
func (h HelloMessage) AllFields() []interface{} {
	return []interface{}{h.extra}
}
