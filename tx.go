package bolt

import (
	"github.com/graphshift/go-bolt/errors"
)

// Tx is an explicit transaction on a connection. At most one is open per
// connection. Statements may be pipelined, their streams consumed in any
// order; a failed statement poisons the transaction and only Rollback is
// accepted afterwards.
type Tx interface {
	Run(statement string, params map[string]interface{}) (*Stream, error)
	// Commit makes the transaction's effects durable and advances the
	// connection's bookmark
	Commit() error
	Rollback() error
}

type txState int

const (
	txActive txState = iota
	txFailed // a statement failed, pending rollback
	txCommitted
	txRolledBack
)

type boltTx struct {
	conn  *boltConn
	state txState
}

func (t *boltTx) checkState(verb string) error {
	switch t.state {
	case txCommitted:
		return errors.NewDomainStateError("cannot %s this transaction, because it has already been committed", verb)
	case txRolledBack:
		return errors.NewDomainStateError("cannot %s this transaction, because it has already been rolled back", verb)
	}
	return nil
}

func (t *boltTx) Run(statement string, params map[string]interface{}) (*Stream, error) {
	if err := t.checkState("run a statement on"); err != nil {
		return nil, err
	}
	if t.state == txFailed {
		return nil, errors.NewDomainStateError("cannot run a statement on this transaction, because of an error in a previous statement")
	}
	return t.conn.run(statement, params, nil, func(err error) {
		if _, ok := err.(*errors.ServerError); ok {
			t.state = txFailed
			t.conn.state = connStateFailed
		}
	})
}

func (t *boltTx) Commit() error {
	if err := t.checkState("commit"); err != nil {
		return err
	}
	if t.state == txFailed {
		return errors.NewDomainStateError("Cannot commit this transaction, because of an error in a previous statement")
	}

	// Streams left unread are buffered to their end first, resuming paused
	// ones, so the server is out of its streaming state and the COMMIT
	// acknowledgment is the next terminal response
	if err := t.conn.bufferOpenStreams(); err != nil {
		return err
	}
	if t.state == txFailed {
		return errors.NewDomainStateError("Cannot commit this transaction, because of an error in a previous statement")
	}

	err := t.conn.runPlanWith(t.conn.proto.commitPlan(), t.bookmarkObserver())
	if err != nil {
		// The server aborts a transaction whose commit failed
		t.state = txRolledBack
		t.conn.tx = nil
		if _, ok := err.(*errors.ServerError); ok {
			t.conn.state = connStateFailed
		}
		return err
	}
	t.state = txCommitted
	t.conn.tx = nil
	return nil
}

// bookmarkObserver captures the bookmark minted by a successful commit
func (t *boltTx) bookmarkObserver() func(map[string]interface{}) {
	return func(metadata map[string]interface{}) {
		if bookmark, ok := metadata["bookmark"].(string); ok && bookmark != "" {
			t.conn.bookmark = bookmark
		}
	}
}

func (t *boltTx) Rollback() error {
	if err := t.checkState("rollback"); err != nil {
		return err
	}

	if t.state == txFailed {
		return t.rollbackFailed()
	}

	if err := t.conn.bufferOpenStreams(); err != nil {
		return err
	}
	if t.state == txFailed {
		return t.rollbackFailed()
	}

	if err := t.conn.runPlanWith(t.conn.proto.rollbackPlan(), nil); err != nil {
		t.state = txRolledBack
		t.conn.tx = nil
		if _, ok := err.(*errors.ServerError); ok {
			t.conn.state = connStateFailed
		}
		return err
	}
	t.state = txRolledBack
	t.conn.tx = nil
	return nil
}

// rollbackFailed rolls back a poisoned transaction. The rollback still goes
// on the wire; the server ignores it because it is in a failed state, then
// the reset that follows acknowledges the failure and aborts the
// transaction. The ignored response is expected and not an error here.
func (t *boltTx) rollbackFailed() error {
	c := t.conn

	var rollbackErr error
	for _, msg := range c.proto.rollbackPlan() {
		obs := Observer{
			OnError: func(err error) {
				if _, ignored := err.(*errors.IgnoredError); ignored {
					return
				}
				if rollbackErr == nil {
					rollbackErr = err
				}
			},
		}
		if err := c.pl.write(msg, obs, false); err != nil {
			return err
		}
	}

	var resetErr error
	for i, msg := range c.proto.resetPlan() {
		obs := Observer{
			OnError: func(err error) {
				if resetErr == nil {
					resetErr = err
				}
			},
		}
		last := i == len(c.proto.resetPlan())-1
		if err := c.pl.write(msg, obs, last); err != nil {
			return err
		}
	}

	if err := c.pl.receiveAll(); err != nil {
		return err
	}
	if rollbackErr != nil {
		return rollbackErr
	}
	if resetErr != nil {
		c.state = connStateClosed
		c.conn.Close()
		return resetErr
	}

	c.pl.acknowledged()
	c.abandonStreams()
	t.state = txRolledBack
	c.tx = nil
	c.state = connStateReady
	return nil
}
