package encoding

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphshift/go-bolt/errors"
	"github.com/graphshift/go-bolt/structures/graph"
	"github.com/graphshift/go-bolt/structures/messages"
)

func roundTrip(t *testing.T, in interface{}) interface{} {
	t.Helper()
	data, err := Marshal(in)
	require.NoError(t, err)
	out, err := Unmarshal(data)
	require.NoError(t, err)
	return out
}

func TestDecodeRoundTripsValues(t *testing.T) {
	in := map[string]interface{}{
		"nil":    nil,
		"bool":   true,
		"int":    int64(42),
		"big":    int64(1 << 40),
		"neg":    int64(-200),
		"float":  6.28,
		"string": "hello bolt",
		"bytes":  []byte{0xDE, 0xAD},
		"list":   []interface{}{int64(1), "two", 3.0},
		"nested": map[string]interface{}{"inner": []interface{}{nil, false}},
	}
	assert.Equal(t, in, roundTrip(t, in))
}

func TestDecodeNormalizesIntsToInt64(t *testing.T) {
	data, err := Marshal(int8(7))
	require.NoError(t, err)
	out, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, int64(7), out)

	data, err = Marshal(uint16(40000))
	require.NoError(t, err)
	out, err = Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, int64(40000), out)
}

func TestDecodeStringSlice(t *testing.T) {
	out := roundTrip(t, []string{"a", "b"})
	assert.Equal(t, []interface{}{"a", "b"}, out)
}

func TestDecodeHydratesResponseMessages(t *testing.T) {
	success := roundTrip(t, messages.NewSuccessMessage(map[string]interface{}{
		"fields": []interface{}{"n"},
	}))
	require.IsType(t, messages.SuccessMessage{}, success)
	assert.Equal(t, []interface{}{"n"}, success.(messages.SuccessMessage).Metadata["fields"])

	record := roundTrip(t, messages.NewRecordMessage([]interface{}{int64(1), "x"}))
	require.IsType(t, messages.RecordMessage{}, record)
	assert.Equal(t, []interface{}{int64(1), "x"}, record.(messages.RecordMessage).Fields)

	failure := roundTrip(t, messages.NewFailureMessage(map[string]interface{}{
		"code":    "Neo.ClientError.Statement.SyntaxError",
		"message": "bad query",
	}))
	require.IsType(t, messages.FailureMessage{}, failure)
	assert.Equal(t, "Neo.ClientError.Statement.SyntaxError", failure.(messages.FailureMessage).Code())
	assert.Equal(t, "bad query", failure.(messages.FailureMessage).Message())

	ignored := roundTrip(t, messages.NewIgnoredMessage(map[string]interface{}{}))
	assert.IsType(t, messages.IgnoredMessage{}, ignored)
}

func TestDecodeHydratesGraphEntities(t *testing.T) {
	node := graph.Node{
		NodeIdentity: 17,
		Labels:       []string{"Person"},
		Properties:   map[string]interface{}{"name": "alice"},
	}
	assert.Equal(t, node, roundTrip(t, node))

	rel := graph.Relationship{
		RelIdentity:       3,
		StartNodeIdentity: 17,
		EndNodeIdentity:   18,
		Type:              "KNOWS",
		Properties:        map[string]interface{}{},
	}
	assert.Equal(t, rel, roundTrip(t, rel))

	path := graph.Path{
		Nodes: []graph.Node{node},
		Relationships: []graph.UnboundRelationship{{
			RelIdentity: 3,
			Type:        "KNOWS",
			Properties:  map[string]interface{}{},
		}},
		Sequence: []int{1, 1},
	}
	assert.Equal(t, path, roundTrip(t, path))
}

func TestDecodeRejectsUnknownSignature(t *testing.T) {
	data, err := Marshal(messages.NewLogonMessage(map[string]interface{}{}))
	require.NoError(t, err)

	_, err = Unmarshal(data)
	var decodeErr *errors.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Contains(t, decodeErr.Message, "signature")
}

func TestDecodeRejectsWrongFieldCount(t *testing.T) {
	// A RECORD signature with two fields instead of one
	data := chunked(0xB2, byte(messages.RecordMessageSignature), 0x90, 0x90)

	_, err := Unmarshal(data)
	var decodeErr *errors.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	// Two values in one message
	data := chunked(0x01, 0x02)

	_, err := Unmarshal(data)
	var decodeErr *errors.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Contains(t, decodeErr.Message, "trailing")
}

func TestDecodeRejectsTruncatedString(t *testing.T) {
	// Tiny string of length 3 with only one byte present
	data := chunked(0x83, 'a')

	_, err := Unmarshal(data)
	var decodeErr *errors.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestSetHydratorGatesSignatures(t *testing.T) {
	data, err := Marshal(messages.NewSuccessMessage(map[string]interface{}{}))
	require.NoError(t, err)

	dec := NewDecoder(bytes.NewReader(data))
	dec.SetHydrator(func(signature int, fields []interface{}) (interface{}, error) {
		return nil, errors.NewDecodeError("rejected %#x", signature)
	})
	_, err = dec.Decode()
	var decodeErr *errors.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}
