package bolt

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphshift/go-bolt/errors"
)

func beginTestTx(t *testing.T, c *boltConn) Tx {
	t.Helper()
	tx, err := c.Begin(TxConfig{})
	require.NoError(t, err)
	return tx
}

func TestTxCommitLifecycle(t *testing.T) {
	c, sc := newTestConn(t, Version{Major: 3}, -1)
	sc.script(t,
		serverSuccess(nil), // BEGIN
		serverSuccess(map[string]interface{}{"fields": []interface{}{"x"}}),
		serverRecord(int64(7)),
		serverSuccess(nil),
		serverSuccess(map[string]interface{}{"bookmark": "bm:42"}), // COMMIT
	)

	tx := beginTestTx(t, c)

	stream, err := tx.Run("CREATE (n {x: 7}) RETURN n.x AS x", nil)
	require.NoError(t, err)
	records, _, err := stream.All()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []interface{}{int64(7)}, records[0].Values)

	require.NoError(t, tx.Commit())
	assert.Equal(t, "bm:42", c.Bookmark(), "commit must advance the connection bookmark")
	assert.Nil(t, c.tx)

	// Every operation on a committed transaction is a domain error
	var stateErr *errors.DomainStateError
	_, err = tx.Run("RETURN 1", nil)
	require.ErrorAs(t, err, &stateErr)
	assert.Contains(t, stateErr.Message, "already been committed")

	err = tx.Commit()
	require.ErrorAs(t, err, &stateErr)
	assert.Contains(t, stateErr.Message, "already been committed")

	err = tx.Rollback()
	require.ErrorAs(t, err, &stateErr)
	assert.Contains(t, stateErr.Message, "already been committed")
}

func TestTxRollbackLifecycle(t *testing.T) {
	c, sc := newTestConn(t, Version{Major: 3}, -1)
	sc.script(t,
		serverSuccess(nil), // BEGIN
		serverSuccess(nil), // ROLLBACK
	)

	tx := beginTestTx(t, c)
	require.NoError(t, tx.Rollback())
	assert.Nil(t, c.tx)
	assert.Empty(t, c.Bookmark(), "rollback mints no bookmark")

	var stateErr *errors.DomainStateError
	_, err := tx.Run("RETURN 1", nil)
	require.ErrorAs(t, err, &stateErr)
	assert.Contains(t, stateErr.Message, "already been rolled back")

	err = tx.Commit()
	require.ErrorAs(t, err, &stateErr)
	assert.Contains(t, stateErr.Message, "already been rolled back")
}

func TestTxCommitDrainsUnreadStreams(t *testing.T) {
	c, sc := newTestConn(t, Version{Major: 3}, -1)
	sc.script(t,
		serverSuccess(nil), // BEGIN
		serverSuccess(map[string]interface{}{"fields": []interface{}{"x"}}),
		serverRecord(int64(1)),
		serverSuccess(nil),
		serverSuccess(map[string]interface{}{"bookmark": "bm:9"}), // COMMIT
	)

	tx := beginTestTx(t, c)
	stream, err := tx.Run("RETURN 1 AS x", nil)
	require.NoError(t, err)

	// Commit without reading the stream first
	require.NoError(t, tx.Commit())
	assert.Equal(t, "bm:9", c.Bookmark())

	// The stream was drained into its buffer and is still readable
	rec, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(1)}, rec.Values)
}

func TestTxFailedStatementPoisonsTransaction(t *testing.T) {
	c, sc := newTestConn(t, Version{Major: 3}, -1)
	sc.script(t,
		serverSuccess(nil), // BEGIN
		serverFailure("Neo.ClientError.Statement.SyntaxError", "bad"),
		serverIgnored(), // PULL
	)

	tx := beginTestTx(t, c)
	stream, err := tx.Run("BAD QUERY", nil)
	require.NoError(t, err)

	_, err = stream.Next()
	var serverErr *errors.ServerError
	require.ErrorAs(t, err, &serverErr)

	// Runs on a poisoned transaction fail client-side
	written := sc.out.Len()
	_, err = tx.Run("RETURN 1", nil)
	var stateErr *errors.DomainStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Contains(t, stateErr.Message, "because of an error in a previous statement")
	assert.Equal(t, written, sc.out.Len(), "poisoned-transaction errors must not touch the wire")

	// So does commit
	err = tx.Commit()
	require.ErrorAs(t, err, &stateErr)
	assert.Contains(t, stateErr.Message, "Cannot commit this transaction, because of an error")
	assert.Equal(t, written, sc.out.Len())
}

func TestTxRollbackAfterFailureRecoversConnection(t *testing.T) {
	c, sc := newTestConn(t, Version{Major: 3}, -1)
	sc.script(t,
		serverSuccess(nil), // BEGIN
		serverFailure("Neo.ClientError.Statement.SyntaxError", "bad"),
		serverIgnored(), // PULL
		serverIgnored(), // ROLLBACK, ignored while the server is failed
		serverSuccess(nil), // RESET
	)

	tx := beginTestTx(t, c)
	stream, err := tx.Run("BAD QUERY", nil)
	require.NoError(t, err)

	_, err = stream.Next()
	var serverErr *errors.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, connStateFailed, c.state)

	require.NoError(t, tx.Rollback())
	assert.Equal(t, connStateReady, c.state)
	assert.Nil(t, c.tx)

	var stateErr *errors.DomainStateError
	err = tx.Rollback()
	require.ErrorAs(t, err, &stateErr)
	assert.Contains(t, stateErr.Message, "already been rolled back")
}

func TestTxFailureDiscoveredWhileDrainingCommit(t *testing.T) {
	c, sc := newTestConn(t, Version{Major: 3}, -1)
	sc.script(t,
		serverSuccess(nil), // BEGIN
		serverFailure("Neo.ClientError.Statement.SyntaxError", "bad"),
		serverIgnored(), // PULL
	)

	tx := beginTestTx(t, c)
	_, err := tx.Run("BAD QUERY", nil)
	require.NoError(t, err)

	// The failure is still in flight when commit is called; draining the
	// pipeline must surface it as a poisoned transaction, not send COMMIT
	err = tx.Commit()
	var stateErr *errors.DomainStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Contains(t, stateErr.Message, "Cannot commit this transaction, because of an error")
}

func TestBookmarksAdvanceAcrossCommittedTransactions(t *testing.T) {
	c, sc := newTestConn(t, Version{Major: 3}, -1)
	sc.script(t,
		serverSuccess(nil), // BEGIN
		serverSuccess(map[string]interface{}{"bookmark": "bm:1"}), // COMMIT
		serverSuccess(nil), // BEGIN
		serverSuccess(map[string]interface{}{"bookmark": "bm:2"}), // COMMIT
	)

	first := beginTestTx(t, c)
	require.NoError(t, first.Commit())
	afterFirst := c.Bookmark()
	require.Equal(t, "bm:1", afterFirst)

	second, err := c.Begin(TxConfig{Bookmarks: []string{afterFirst}})
	require.NoError(t, err)
	require.NoError(t, second.Commit())

	assert.NotEqual(t, afterFirst, c.Bookmark(), "a later transaction never reuses an earlier bookmark")
	assert.Equal(t, "bm:2", c.Bookmark())
}

func TestTxRollbackDiscardsEffects(t *testing.T) {
	c, sc := newTestConn(t, Version{Major: 3}, -1)
	sc.script(t,
		serverSuccess(nil), // BEGIN
		serverSuccess(map[string]interface{}{"fields": []interface{}{"n"}}),
		serverRecord(int64(42)),
		serverSuccess(nil),
		serverSuccess(nil), // ROLLBACK
		// Auto-commit count query observing none of the rolled-back writes
		serverSuccess(map[string]interface{}{"fields": []interface{}{"count"}}),
		serverRecord(int64(0)),
		serverSuccess(nil),
	)

	tx := beginTestTx(t, c)
	stream, err := tx.Run("CREATE (n {id: 42}) RETURN n.id AS n", nil)
	require.NoError(t, err)
	records, _, err := stream.All()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(42), records[0].Values[0])

	require.NoError(t, tx.Rollback())

	countStream, err := c.Run("MATCH (n {id: 42}) RETURN count(n) AS count", nil, TxConfig{})
	require.NoError(t, err)
	rec, err := countStream.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.Values[0])
	_, err = countStream.Consume()
	require.NoError(t, err)
}

func TestTxCommitBuffersStreamPausedMidBatch(t *testing.T) {
	c, sc := newTestConn(t, Version{Major: 4, Minor: 4}, 2)
	sc.script(t,
		serverSuccess(nil), // BEGIN
		serverSuccess(map[string]interface{}{"fields": []interface{}{"x"}, "qid": int64(0)}),
		serverRecord(int64(1)),
		serverRecord(int64(2)),
		serverSuccess(map[string]interface{}{"has_more": true}),
		// Response to the PULL{n: -1} issued while draining for commit
		serverRecord(int64(3)),
		serverSuccess(nil),
		serverSuccess(map[string]interface{}{"bookmark": "bm:p"}), // COMMIT
	)

	tx := beginTestTx(t, c)
	stream, err := tx.Run("UNWIND range(1, 100) AS x RETURN x", nil)
	require.NoError(t, err)

	rec, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(1)}, rec.Values)

	// The server paused the stream after the first batch; commit must pull
	// the remainder before COMMIT goes on the wire
	require.NoError(t, tx.Commit())
	assert.Equal(t, "bm:p", c.Bookmark())
	assert.Equal(t, connStateReady, c.state)

	commit := []byte{0x00, 0x02, 0xB0, 0x12, 0x00, 0x00}
	out := sc.out.Bytes()
	assert.Equal(t, commit, out[len(out)-len(commit):], "COMMIT must be the last request written")

	// The remainder was buffered during the drain, reading it stays local
	written := sc.out.Len()
	for _, want := range []int64{2, 3} {
		rec, err := stream.Next()
		require.NoError(t, err)
		assert.Equal(t, []interface{}{want}, rec.Values)
	}
	_, err = stream.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, written, sc.out.Len(), "reading a buffered stream must not touch the wire")
}

func TestTxResumesPausedStreamWithItsStatementId(t *testing.T) {
	c, sc := newTestConn(t, Version{Major: 4, Minor: 4}, 2)
	sc.script(t,
		serverSuccess(nil), // BEGIN
		serverSuccess(map[string]interface{}{"fields": []interface{}{"a"}, "qid": int64(0)}),
		serverRecord(int64(1)),
		serverRecord(int64(2)),
		serverSuccess(map[string]interface{}{"has_more": true}),
		serverSuccess(map[string]interface{}{"fields": []interface{}{"b"}, "qid": int64(1)}),
		serverRecord(int64(10)),
		serverSuccess(nil),
		// Response to PULL{n: 2, qid: 0} resuming the first statement
		serverRecord(int64(3)),
		serverSuccess(nil),
		serverSuccess(map[string]interface{}{"bookmark": "bm:q"}), // COMMIT
	)

	tx := beginTestTx(t, c)
	streamA, err := tx.Run("UNWIND range(1, 100) AS a RETURN a", nil)
	require.NoError(t, err)
	streamB, err := tx.Run("RETURN 10 AS b", nil)
	require.NoError(t, err)

	recB, err := streamB.Next()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(10)}, recB.Values)

	// The first statement is no longer the server's most recent one, so
	// resuming it must name its qid or the records would belong to the
	// second statement
	var values []interface{}
	for i := 0; i < 3; i++ {
		rec, err := streamA.Next()
		require.NoError(t, err)
		values = append(values, rec.Values[0])
	}
	assert.Equal(t, []interface{}{int64(1), int64(2), int64(3)}, values)
	assert.Contains(t, string(sc.out.Bytes()), "\x83qid", "the resumed pull must carry the statement's qid")

	require.NoError(t, tx.Commit())
	assert.Equal(t, "bm:q", c.Bookmark())
}

func TestTxPipelinesMultipleStatements(t *testing.T) {
	c, sc := newTestConn(t, Version{Major: 4, Minor: 4}, -1)
	sc.script(t,
		serverSuccess(nil), // BEGIN
		serverSuccess(map[string]interface{}{"fields": []interface{}{"a"}}),
		serverRecord(int64(1)),
		serverSuccess(nil),
		serverSuccess(map[string]interface{}{"fields": []interface{}{"b"}}),
		serverRecord(int64(2)),
		serverSuccess(nil),
		serverSuccess(map[string]interface{}{"bookmark": "bm:7"}), // COMMIT
	)

	tx := beginTestTx(t, c)
	streamA, err := tx.Run("RETURN 1 AS a", nil)
	require.NoError(t, err)
	streamB, err := tx.Run("RETURN 2 AS b", nil)
	require.NoError(t, err)

	recB, err := streamB.Next()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(2)}, recB.Values)

	recA, err := streamA.Next()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(1)}, recA.Values)

	require.NoError(t, tx.Commit())
	assert.Equal(t, "bm:7", c.Bookmark())
}
