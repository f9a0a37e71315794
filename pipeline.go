package bolt

import (
	"bytes"
	"io"
	"sync"

	"github.com/graphshift/go-bolt/encoding"
	"github.com/graphshift/go-bolt/errors"
	"github.com/graphshift/go-bolt/log"
	"github.com/graphshift/go-bolt/structures"
	"github.com/graphshift/go-bolt/structures/messages"
)

// Observer receives the responses for exactly one in-flight request.
// OnNext fires zero or more times for RECORD responses; exactly one of
// OnCompleted or OnError fires afterwards, never both, never neither.
// Nil callbacks are skipped.
type Observer struct {
	OnNext      func(values []interface{})
	OnCompleted func(metadata map[string]interface{})
	OnError     func(err error)
}

func (o Observer) next(values []interface{}) {
	if o.OnNext != nil {
		o.OnNext(values)
	}
}

func (o Observer) completed(metadata map[string]interface{}) {
	if o.OnCompleted != nil {
		o.OnCompleted(metadata)
	}
}

func (o Observer) fail(err error) {
	if o.OnError != nil {
		o.OnError(err)
	}
}

// pipeline matches pipelined requests to responses in strict FIFO order.
// Requests are buffered and flushed in batches; responses are dispatched
// one at a time to the head observer. The mutex serializes the write and
// dispatch paths; observer callbacks run while it is held and must not
// call back into the pipeline.
type pipeline struct {
	mu        sync.Mutex
	rw        io.ReadWriter
	out       bytes.Buffer
	dec       *encoding.Decoder
	chunkSize uint16
	queue     []Observer
	fatal     error
	serverErr error // last FAILURE, the cause attached to IGNORED responses
	onFatal   func(error)
}

func newPipeline(rw io.ReadWriter, chunkSize uint16, hydrate encoding.HydrateFunc) *pipeline {
	dec := encoding.NewDecoder(rw)
	if hydrate != nil {
		dec.SetHydrator(hydrate)
	}
	return &pipeline{
		rw:        rw,
		dec:       dec,
		chunkSize: chunkSize,
	}
}

// pending returns the number of observers still awaiting a terminal response
func (p *pipeline) pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// write encodes and buffers one request and enqueues its observer. The
// bytes reach the server on flush; correctness depends only on transmission
// happening before a response is awaited, not on flush timing.
func (p *pipeline) write(msg structures.Structure, obs Observer, flush bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fatal != nil {
		return p.fatal
	}
	if err := encoding.NewEncoder(&p.out, p.chunkSize).Encode(msg); err != nil {
		err = errors.Wrap(err, "An error occurred encoding request %#x", msg.Signature())
		p.fail(err)
		return err
	}
	p.queue = append(p.queue, obs)
	log.Tracef("Queued request %#x, %d pending", msg.Signature(), len(p.queue))
	if flush {
		return p.flushOut()
	}
	return nil
}

// flush transmits all buffered request bytes
func (p *pipeline) flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushOut()
}

func (p *pipeline) flushOut() error {
	if p.fatal != nil {
		return p.fatal
	}
	if p.out.Len() == 0 {
		return nil
	}
	if _, err := p.rw.Write(p.out.Bytes()); err != nil {
		err = errors.Wrap(err, "An error occurred writing requests to the connection")
		p.fail(err)
		return err
	}
	p.out.Reset()
	return nil
}

// receive reads one response message and dispatches it to the head
// observer. RECORD responses keep the observer at the head; terminal
// responses dequeue it.
func (p *pipeline) receive() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fatal != nil {
		return p.fatal
	}
	if len(p.queue) == 0 {
		err := errors.NewProtocolViolationError("received a response with no request pending")
		p.fail(err)
		return err
	}
	if err := p.flushOut(); err != nil {
		return err
	}

	msg, err := p.dec.Decode()
	if err != nil {
		p.fail(err)
		return err
	}

	head := p.queue[0]
	switch resp := msg.(type) {
	case messages.RecordMessage:
		head.next(resp.Fields)
	case messages.SuccessMessage:
		p.dequeue()
		head.completed(resp.Metadata)
	case messages.FailureMessage:
		serverErr := errors.NewServerError(resp.Code(), resp.Message())
		log.Infof("Got failure message: %s", serverErr)
		p.serverErr = serverErr
		p.dequeue()
		head.fail(serverErr)
	case messages.IgnoredMessage:
		p.dequeue()
		head.fail(errors.NewIgnoredError(p.serverErr))
	default:
		err := errors.NewProtocolViolationError("unexpected response type %T", msg)
		p.fail(err)
		return err
	}
	return nil
}

// receiveAll dispatches responses until no observer is pending. Server
// failures are delivered through observers, only connection-fatal errors
// are returned.
func (p *pipeline) receiveAll() error {
	for p.pending() > 0 {
		if err := p.receive(); err != nil {
			return err
		}
	}
	return nil
}

func (p *pipeline) dequeue() {
	p.queue[0] = Observer{}
	p.queue = p.queue[1:]
}

// acknowledged clears the failure carried into IGNORED responses, called
// once a reset round-trip completes
func (p *pipeline) acknowledged() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.serverErr = nil
}

// dead returns the fatal error that killed the pipeline, nil while healthy
func (p *pipeline) dead() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fatal
}

// fail marks the pipeline dead and delivers err to every queued observer
// in FIFO order. No further writes or receives are accepted.
func (p *pipeline) fail(err error) {
	if p.fatal != nil {
		return
	}
	p.fatal = err
	queued := p.queue
	p.queue = nil
	for _, obs := range queued {
		obs.fail(err)
	}
	if p.onFatal != nil {
		p.onFatal(err)
	}
}
