package messages

const (
	// CommitMessageSignature is the signature byte for the COMMIT message (Bolt v3+)
	CommitMessageSignature = 0x12
)

// CommitMessage Represents a COMMIT message
type CommitMessage struct{}

// NewCommitMessage Gets a new CommitMessage struct
func NewCommitMessage() CommitMessage {
	return CommitMessage{}
}

// Signature gets the signature byte for the struct
func (c CommitMessage) Signature() int {
	return CommitMessageSignature
}

// AllFields gets the fields to encode for the struct
func (c CommitMessage) AllFields() []interface{} {
	return []interface{}{}
}
