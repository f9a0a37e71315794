package encoding

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/graphshift/go-bolt/errors"
)

// Dechunker reassembles complete messages from the chunked stream. The
// underlying reader may deliver partial chunks or several messages per
// read; io.ReadFull absorbs the former and reading exactly header+payload
// leaves the latter in place for the next call.
type Dechunker struct {
	r      io.Reader
	header [2]byte
}

// NewDechunker Creates a new Dechunker over the stream
func NewDechunker(r io.Reader) *Dechunker {
	return &Dechunker{r: r}
}

// ReadMessage consumes chunks until the zero-length terminator and returns
// the reassembled message bytes. Zero-length chunks before any payload are
// keepalive noops and are skipped.
func (d *Dechunker) ReadMessage() ([]byte, error) {
	var out bytes.Buffer
	for {
		if _, err := io.ReadFull(d.r, d.header[:]); err != nil {
			return nil, errors.NewFramingError(err, "reading chunk header")
		}
		chunkLen := binary.BigEndian.Uint16(d.header[:])
		if chunkLen == 0 {
			if out.Len() == 0 {
				// Keepalive noop between messages
				continue
			}
			return out.Bytes(), nil
		}
		if _, err := io.CopyN(&out, d.r, int64(chunkLen)); err != nil {
			return nil, errors.NewFramingError(err, "reading chunk payload of %d bytes", chunkLen)
		}
	}
}
