package messages

const (
	// GoodbyeMessageSignature is the signature byte for the GOODBYE message (Bolt v3+)
	GoodbyeMessageSignature = 0x02
)

// GoodbyeMessage Represents a GOODBYE message
type GoodbyeMessage struct{}

// NewGoodbyeMessage Gets a new GoodbyeMessage struct
func NewGoodbyeMessage() GoodbyeMessage {
	return GoodbyeMessage{}
}

// Signature gets the signature byte for the struct
func (g GoodbyeMessage) Signature() int {
	return GoodbyeMessageSignature
}

// AllFields gets the fields to encode for the struct
func (g GoodbyeMessage) AllFields() []interface{} {
	return []interface{}{}
}
