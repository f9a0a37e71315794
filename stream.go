package bolt

import (
	"io"

	"github.com/graphshift/go-bolt/errors"
)

// Record is one row of a result stream
type Record struct {
	Keys   []string
	Values []interface{}
}

// Get returns the value for the named field and whether the field exists
func (r *Record) Get(key string) (interface{}, bool) {
	for i, k := range r.Keys {
		if k == key {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Stream is the client-side handle of one statement execution. Records are
// buffered as responses arrive off the connection, so several streams may
// be open at once and consumed in any order; reading one stream buffers
// records belonging to the others.
//
// On protocol 4+ records are pulled in batches and the next batch is only
// requested when the caller reads past the buffered ones. Older versions
// pull the whole stream up front.
type Stream struct {
	c       *boltConn
	keys    []string
	buf     []Record
	runMeta map[string]interface{}
	sum     *Summary
	err     error

	// qid identifies the statement server-side inside an explicit
	// transaction on protocol 4+, -1 when the server assigned none
	qid int64

	runDone    bool
	pulling    bool // a PULL or DISCARD response sequence is outstanding
	hasMore    bool // server paused the stream after the last batch
	done       bool
	discarding bool

	// onFailure lets the owning connection or transaction transition its
	// state when a statement fails server-side
	onFailure func(err error)
}

func (s *Stream) runObserver() Observer {
	return Observer{
		OnCompleted: func(metadata map[string]interface{}) {
			s.runDone = true
			s.runMeta = metadata
			if qid, ok := metadata["qid"].(int64); ok {
				s.qid = qid
				s.c.lastQid = qid
			}
			if fields, ok := metadata["fields"].([]interface{}); ok {
				keys := make([]string, 0, len(fields))
				for _, f := range fields {
					if name, ok := f.(string); ok {
						keys = append(keys, name)
					}
				}
				s.keys = keys
			}
		},
		OnError: s.fail,
	}
}

func (s *Stream) pullObserver() Observer {
	return Observer{
		OnNext: func(values []interface{}) {
			if s.discarding {
				return
			}
			s.buf = append(s.buf, Record{Keys: s.keys, Values: values})
		},
		OnCompleted: func(metadata map[string]interface{}) {
			s.pulling = false
			if more, ok := metadata["has_more"].(bool); ok && more {
				s.hasMore = true
				return
			}
			s.hasMore = false
			s.done = true
			s.sum = newSummary(s.runMeta, metadata)
			s.c.streamClosed(s, s.sum)
		},
		OnError: func(err error) {
			s.pulling = false
			s.fail(err)
		},
	}
}

// fail records the first terminal error. The same value is returned from
// every subsequent read and from Consume.
func (s *Stream) fail(err error) {
	s.runDone = true
	s.done = true
	if s.err == nil {
		s.err = err
		s.c.streamClosed(s, nil)
		if s.onFailure != nil {
			s.onFailure(err)
		}
	}
}

// requestMore asks the server for up to n more records, or for the stream's
// remainder to be thrown away when the caller is discarding. The statement's
// qid goes along whenever the stream is not the server's most recent one,
// otherwise the resumed records would belong to a different statement.
func (s *Stream) requestMore(n int64) error {
	qid := int64(-1)
	if s.qid > -1 && s.qid != s.c.lastQid {
		qid = s.qid
	}
	var msg = s.c.proto.pullMessage(n, qid)
	if s.discarding {
		msg = s.c.proto.discardMessage(-1, qid)
	}
	if err := s.c.pl.write(msg, s.pullObserver(), true); err != nil {
		return err
	}
	s.pulling = true
	return nil
}

// advance processes responses until this stream has a buffered record or
// reaches its end. Responses belonging to other streams are routed to them
// along the way.
func (s *Stream) advance() error {
	for len(s.buf) == 0 && !s.done {
		if s.hasMore && !s.pulling {
			if err := s.requestMore(s.c.fetchSize); err != nil {
				return err
			}
		}
		if err := s.c.pl.receive(); err != nil {
			return err
		}
	}
	return s.err
}

// buffer drives the stream to its end, pulling any server-side remainder in
// one batch and keeping every record readable. Afterwards the server holds
// nothing for this stream.
func (s *Stream) buffer() error {
	for !s.done {
		if s.hasMore && !s.pulling {
			if err := s.requestMore(-1); err != nil {
				return err
			}
		}
		if err := s.c.pl.receive(); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns the field names of the stream's records, blocking until the
// statement's acknowledgment arrives if necessary
func (s *Stream) Keys() ([]string, error) {
	for !s.runDone {
		if err := s.c.pl.receive(); err != nil {
			return nil, err
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.keys, nil
}

// Next returns the next record, or io.EOF once the stream is exhausted
func (s *Stream) Next() (*Record, error) {
	if err := s.advance(); err != nil {
		return nil, err
	}
	if len(s.buf) > 0 {
		rec := s.buf[0]
		s.buf = s.buf[1:]
		return &rec, nil
	}
	return nil, io.EOF
}

// All exhausts the stream and returns every remaining record with the
// completion summary
func (s *Stream) All() ([]Record, *Summary, error) {
	var records []Record
	for {
		rec, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		records = append(records, *rec)
	}
	return records, s.sum, nil
}

// Consume throws away the rest of the stream and returns the completion
// summary. Buffered records are dropped and remaining server-side records
// are discarded rather than transferred.
func (s *Stream) Consume() (*Summary, error) {
	s.discarding = true
	s.buf = nil
	for !s.done {
		if s.hasMore && !s.pulling {
			if err := s.requestMore(-1); err != nil {
				return nil, err
			}
		}
		if err := s.c.pl.receive(); err != nil {
			return nil, err
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.sum, nil
}

// Summary returns the completion summary, or an error when the stream has
// not ended yet
func (s *Stream) Summary() (*Summary, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.sum == nil {
		return nil, errors.NewDomainStateError("summary is not available until the stream has been fully consumed")
	}
	return s.sum, nil
}

// Err returns the terminal error of the stream, if any
func (s *Stream) Err() error {
	return s.err
}
