package messages

const (
	// BeginMessageSignature is the signature byte for the BEGIN message (Bolt v3+)
	BeginMessageSignature = 0x11
)

// BeginMessage Represents a BEGIN message
type BeginMessage struct {
	meta map[string]interface{}
}

// NewBeginMessage Gets a new BeginMessage struct. The meta map carries
// bookmarks, tx_timeout, tx_metadata, mode and db.
func NewBeginMessage(meta map[string]interface{}) BeginMessage {
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return BeginMessage{
		meta: meta,
	}
}

// Signature gets the signature byte for the struct
func (b BeginMessage) Signature() int {
	return BeginMessageSignature
}

// AllFields gets the fields to encode for the struct
func (b BeginMessage) AllFields() []interface{} {
	return []interface{}{b.meta}
}
