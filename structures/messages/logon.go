package messages

const (
	// LogonMessageSignature is the signature byte for the LOGON message (Bolt v5.1+)
	LogonMessageSignature = 0x6A
)

// LogonMessage Represents a LOGON message
type LogonMessage struct {
	auth map[string]interface{}
}

// NewLogonMessage Gets a new LogonMessage struct
func NewLogonMessage(auth map[string]interface{}) LogonMessage {
	return LogonMessage{
		auth: auth,
	}
}

// Signature gets the signature byte for the struct
func (l LogonMessage) Signature() int {
	return LogonMessageSignature
}

// AllFields gets the fields to encode for the struct
func (l LogonMessage) AllFields() []interface{} {
	return []interface{}{l.auth}
}
