package bolt

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/graphshift/go-bolt/encoding"
	"github.com/graphshift/go-bolt/errors"
	"github.com/graphshift/go-bolt/log"
	"github.com/graphshift/go-bolt/structures"
	"github.com/graphshift/go-bolt/structures/messages"
)

// Version identifies a negotiated Bolt protocol version
type Version struct {
	Major int
	Minor int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast reports whether the version is major.minor or newer
func (v Version) AtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

var (
	magicPreamble = []byte{0x60, 0x60, 0xB0, 0x17}

	// Newest first, the server picks the first one it supports. Version 2
	// is wire-identical to 1 and intentionally not proposed.
	proposedVersions = []Version{{5, 1}, {4, 4}, {3, 0}, {1, 0}}
)

// handshake writes the magic preamble and the four version proposals, then
// reads the server's selection. A zero response or a version outside the
// proposal set is a NegotiationError.
func handshake(rw io.ReadWriter) (Version, error) {
	out := make([]byte, 0, 20)
	out = append(out, magicPreamble...)
	for _, v := range proposedVersions {
		out = append(out, 0x00, 0x00, byte(v.Minor), byte(v.Major))
	}
	if _, err := rw.Write(out); err != nil {
		return Version{}, errors.Wrap(err, "An error occurred writing the handshake")
	}

	resp := make([]byte, 4)
	if _, err := io.ReadFull(rw, resp); err != nil {
		return Version{}, errors.Wrap(err, "An error occurred reading the handshake response")
	}
	if binary.BigEndian.Uint32(resp) == 0 {
		return Version{}, errors.NewNegotiationError("server supports none of the proposed versions")
	}

	agreed := Version{Major: int(resp[3]), Minor: int(resp[2])}
	for _, v := range proposedVersions {
		if v == agreed {
			log.Infof("Negotiated Bolt protocol version %d.%d", agreed.Major, agreed.Minor)
			return agreed, nil
		}
	}
	return Version{}, errors.NewNegotiationError("server answered with unproposed version %d.%d", agreed.Major, agreed.Minor)
}

// capabilities is the feature table of a negotiated version. Feature gates
// consult it before any bytes are written.
type capabilities struct {
	TxConfig      bool // tx_timeout / tx_metadata on BEGIN and RUN (v3+)
	ExplicitTx    bool // BEGIN/COMMIT/ROLLBACK messages (v3+)
	Goodbye       bool // GOODBYE on close (v3+)
	PullN         bool // PULL{n} / DISCARD{n} (v4+)
	MultiDatabase bool // db field in tx metadata (v4+)
	Reauth        bool // LOGON/LOGOFF (v5.1+)
}

// protocol is the per-version strategy selected at connect time. Newer
// versions embed their predecessor and override only the deltas.
type protocol interface {
	version() Version
	caps() capabilities
	// authPlan builds the message sequence that authenticates a fresh
	// connection; each message expects one SUCCESS.
	authPlan(userAgent string, auth map[string]interface{}) []structures.Structure
	beginPlan(meta map[string]interface{}) []structures.Structure
	commitPlan() []structures.Structure
	rollbackPlan() []structures.Structure
	runMessage(statement string, params map[string]interface{}, meta map[string]interface{}) structures.Structure
	// pullMessage and discardMessage take the statement's qid so a paused
	// stream can be resumed when it is no longer the server's most recent
	// one; -1 means the most recent statement.
	pullMessage(n, qid int64) structures.Structure
	discardMessage(n, qid int64) structures.Structure
	// resetPlan acknowledges a failure and returns the server to READY
	resetPlan() []structures.Structure
	// goodbyeMessage returns nil when the version has no GOODBYE
	goodbyeMessage() structures.Structure
	hydrator() encoding.HydrateFunc
}

// protocolForVersion selects the strategy for a negotiated version
func protocolForVersion(v Version) (protocol, error) {
	switch {
	case v.Major == 1:
		return &protocolV1{ver: v}, nil
	case v.Major == 3:
		return &protocolV3{protocolV1{ver: v}}, nil
	case v.Major == 4:
		return &protocolV4{protocolV3{protocolV1{ver: v}}}, nil
	case v.Major == 5:
		return &protocolV5{protocolV4{protocolV3{protocolV1{ver: v}}}}, nil
	default:
		return nil, errors.NewNegotiationError("no protocol implementation for version %d.%d", v.Major, v.Minor)
	}
}

// protocolV1 is the original Bolt protocol: INIT auth, two-field RUN,
// PULL_ALL/DISCARD_ALL, failures acknowledged with ACK_FAILURE and explicit
// transactions driven by RUN "BEGIN"/"COMMIT"/"ROLLBACK".
type protocolV1 struct {
	ver Version
}

func (p *protocolV1) version() Version {
	return p.ver
}

func (p *protocolV1) caps() capabilities {
	return capabilities{}
}

func (p *protocolV1) authPlan(userAgent string, auth map[string]interface{}) []structures.Structure {
	return []structures.Structure{messages.NewInitMessage(userAgent, auth)}
}

func (p *protocolV1) beginPlan(meta map[string]interface{}) []structures.Structure {
	return []structures.Structure{
		messages.NewRunMessage("BEGIN", nil),
		messages.NewPullAllMessage(),
	}
}

func (p *protocolV1) commitPlan() []structures.Structure {
	return []structures.Structure{
		messages.NewRunMessage("COMMIT", nil),
		messages.NewPullAllMessage(),
	}
}

func (p *protocolV1) rollbackPlan() []structures.Structure {
	return []structures.Structure{
		messages.NewRunMessage("ROLLBACK", nil),
		messages.NewPullAllMessage(),
	}
}

func (p *protocolV1) runMessage(statement string, params map[string]interface{}, meta map[string]interface{}) structures.Structure {
	return messages.NewRunMessage(statement, params)
}

func (p *protocolV1) pullMessage(n, qid int64) structures.Structure {
	return messages.NewPullAllMessage()
}

func (p *protocolV1) discardMessage(n, qid int64) structures.Structure {
	return messages.NewDiscardAllMessage()
}

func (p *protocolV1) resetPlan() []structures.Structure {
	return []structures.Structure{messages.NewAckFailureMessage()}
}

func (p *protocolV1) goodbyeMessage() structures.Structure {
	return nil
}

func (p *protocolV1) hydrator() encoding.HydrateFunc {
	return encoding.HydrateDefault
}

// protocolV3 introduces HELLO, GOODBYE, RESET-based recovery, explicit
// transaction messages and transaction configuration.
type protocolV3 struct {
	protocolV1
}

func (p *protocolV3) caps() capabilities {
	return capabilities{
		TxConfig:   true,
		ExplicitTx: true,
		Goodbye:    true,
	}
}

func (p *protocolV3) authPlan(userAgent string, auth map[string]interface{}) []structures.Structure {
	extra := map[string]interface{}{"user_agent": userAgent}
	for k, v := range auth {
		extra[k] = v
	}
	return []structures.Structure{messages.NewHelloMessage(extra)}
}

func (p *protocolV3) beginPlan(meta map[string]interface{}) []structures.Structure {
	return []structures.Structure{messages.NewBeginMessage(meta)}
}

func (p *protocolV3) commitPlan() []structures.Structure {
	return []structures.Structure{messages.NewCommitMessage()}
}

func (p *protocolV3) rollbackPlan() []structures.Structure {
	return []structures.Structure{messages.NewRollbackMessage()}
}

func (p *protocolV3) runMessage(statement string, params map[string]interface{}, meta map[string]interface{}) structures.Structure {
	return messages.NewRunMessageWithMetadata(statement, params, meta)
}

func (p *protocolV3) resetPlan() []structures.Structure {
	return []structures.Structure{messages.NewResetMessage()}
}

func (p *protocolV3) goodbyeMessage() structures.Structure {
	return messages.NewGoodbyeMessage()
}

// protocolV4 introduces reactive PULL{n}/DISCARD{n} and multi-database
// selection.
type protocolV4 struct {
	protocolV3
}

func (p *protocolV4) caps() capabilities {
	c := p.protocolV3.caps()
	c.PullN = true
	c.MultiDatabase = true
	return c
}

func (p *protocolV4) pullMessage(n, qid int64) structures.Structure {
	if qid > -1 {
		return messages.NewPullNQidMessage(n, qid)
	}
	return messages.NewPullNMessage(n)
}

func (p *protocolV4) discardMessage(n, qid int64) structures.Structure {
	if qid > -1 {
		return messages.NewDiscardNQidMessage(n, qid)
	}
	return messages.NewDiscardNMessage(n)
}

// protocolV5 introduces LOGON/LOGOFF re-authentication; HELLO no longer
// carries the auth token.
type protocolV5 struct {
	protocolV4
}

func (p *protocolV5) caps() capabilities {
	c := p.protocolV4.caps()
	c.Reauth = true
	return c
}

func (p *protocolV5) authPlan(userAgent string, auth map[string]interface{}) []structures.Structure {
	extra := map[string]interface{}{"user_agent": userAgent}
	return []structures.Structure{
		messages.NewHelloMessage(extra),
		messages.NewLogonMessage(auth),
	}
}
