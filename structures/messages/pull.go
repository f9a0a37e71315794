package messages

const (
	// PullMessageSignature is the signature byte for the PULL / PULL_ALL message
	PullMessageSignature = 0x3F
)

// PullMessage Represents a PULL message. The zero-field form is the v1
// PULL_ALL, the one-field form is the v4+ PULL carrying {n: -1|limit}.
type PullMessage struct {
	extra    map[string]interface{}
	hasExtra bool
}

// NewPullAllMessage Gets a new PullMessage struct in the v1 PULL_ALL layout
func NewPullAllMessage() PullMessage {
	return PullMessage{}
}

// NewPullNMessage Gets a new PullMessage struct requesting up to n records,
// -1 for all
func NewPullNMessage(n int64) PullMessage {
	return PullMessage{
		extra:    map[string]interface{}{"n": n},
		hasExtra: true,
	}
}

// NewPullNQidMessage Gets a new PullMessage struct resuming the statement
// identified by qid instead of the server's most recent one
func NewPullNQidMessage(n, qid int64) PullMessage {
	return PullMessage{
		extra:    map[string]interface{}{"n": n, "qid": qid},
		hasExtra: true,
	}
}

// Signature gets the signature byte for the struct
func (p PullMessage) Signature() int {
	return PullMessageSignature
}

// AllFields gets the fields to encode for the struct
func (p PullMessage) AllFields() []interface{} {
	if p.hasExtra {
		return []interface{}{p.extra}
	}
	return []interface{}{}
}
