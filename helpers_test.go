package bolt

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/graphshift/go-bolt/encoding"
	"github.com/graphshift/go-bolt/structures"
	"github.com/graphshift/go-bolt/structures/messages"
)

// scriptedNetConn is a net.Conn whose reads are served from a preloaded
// script of server responses and whose writes are captured for inspection
type scriptedNetConn struct {
	in     bytes.Buffer
	out    bytes.Buffer
	closed bool
}

func (c *scriptedNetConn) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c *scriptedNetConn) Write(p []byte) (int, error) { return c.out.Write(p) }

func (c *scriptedNetConn) Close() error {
	c.closed = true
	return nil
}

func (c *scriptedNetConn) LocalAddr() net.Addr              { return &net.TCPAddr{} }
func (c *scriptedNetConn) RemoteAddr() net.Addr             { return &net.TCPAddr{} }
func (c *scriptedNetConn) SetDeadline(time.Time) error      { return nil }
func (c *scriptedNetConn) SetReadDeadline(time.Time) error  { return nil }
func (c *scriptedNetConn) SetWriteDeadline(time.Time) error { return nil }

// script appends encoded server responses to the connection's read side.
// Pipelining means the full response sequence can be preloaded up front.
func (c *scriptedNetConn) script(t *testing.T, responses ...structures.Structure) {
	t.Helper()
	for _, response := range responses {
		data, err := encoding.Marshal(response)
		require.NoError(t, err)
		c.in.Write(data)
	}
}

func serverSuccess(meta map[string]interface{}) messages.SuccessMessage {
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return messages.NewSuccessMessage(meta)
}

func serverRecord(values ...interface{}) messages.RecordMessage {
	return messages.NewRecordMessage(values)
}

func serverFailure(code, message string) messages.FailureMessage {
	return messages.NewFailureMessage(map[string]interface{}{
		"code":    code,
		"message": message,
	})
}

func serverIgnored() messages.IgnoredMessage {
	return messages.NewIgnoredMessage(map[string]interface{}{})
}

// newTestConn builds an authenticated-looking connection over a scripted
// transport, skipping the handshake and auth exchange
func newTestConn(t *testing.T, version Version, fetchSize int64) (*boltConn, *scriptedNetConn) {
	t.Helper()
	proto, err := protocolForVersion(version)
	require.NoError(t, err)

	sc := &scriptedNetConn{}
	c := &boltConn{
		conn:      sc,
		proto:     proto,
		chunkSize: encoding.MaxChunkSize,
		fetchSize: fetchSize,
		state:     connStateReady,
		lastQid:   -1,
	}
	c.pl = newPipeline(c, c.chunkSize, proto.hydrator())
	c.pl.onFatal = func(error) {
		c.state = connStateClosed
		c.conn.Close()
	}
	return c, sc
}
