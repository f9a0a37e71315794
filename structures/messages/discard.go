package messages

const (
	// DiscardMessageSignature is the signature byte for the DISCARD / DISCARD_ALL message
	DiscardMessageSignature = 0x2F
)

// DiscardMessage Represents a DISCARD message. The zero-field form is the
// v1 DISCARD_ALL, the one-field form is the v4+ DISCARD carrying {n}.
type DiscardMessage struct {
	extra    map[string]interface{}
	hasExtra bool
}

// NewDiscardAllMessage Gets a new DiscardMessage struct in the v1 DISCARD_ALL layout
func NewDiscardAllMessage() DiscardMessage {
	return DiscardMessage{}
}

// NewDiscardNMessage Gets a new DiscardMessage struct discarding up to n
// records, -1 for all
func NewDiscardNMessage(n int64) DiscardMessage {
	return DiscardMessage{
		extra:    map[string]interface{}{"n": n},
		hasExtra: true,
	}
}

// NewDiscardNQidMessage Gets a new DiscardMessage struct discarding from the
// statement identified by qid instead of the server's most recent one
func NewDiscardNQidMessage(n, qid int64) DiscardMessage {
	return DiscardMessage{
		extra:    map[string]interface{}{"n": n, "qid": qid},
		hasExtra: true,
	}
}

// Signature gets the signature byte for the struct
func (d DiscardMessage) Signature() int {
	return DiscardMessageSignature
}

// AllFields gets the fields to encode for the struct
func (d DiscardMessage) AllFields() []interface{} {
	if d.hasExtra {
		return []interface{}{d.extra}
	}
	return []interface{}{}
}
