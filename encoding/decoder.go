package encoding

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/graphshift/go-bolt/errors"
	"github.com/graphshift/go-bolt/structures/graph"
	"github.com/graphshift/go-bolt/structures/messages"
)

// HydrateFunc turns a decoded structure signature and its fields into a
// concrete value. Unrecognized signatures must return a DecodeError; the
// active protocol version supplies the table.
type HydrateFunc func(signature int, fields []interface{}) (interface{}, error)

// Decoder decodes messages from the bolt protocol stream. Integers of all
// wire size classes decode to int64, so decode(encode(x)) round-trips.
//
// Maps and slices are a special case, where only map[string]interface{}
// and []interface{} are produced.
type Decoder struct {
	dech    *Dechunker
	hydrate HydrateFunc
}

// NewDecoder Creates a new Decoder object
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		dech:    NewDechunker(r),
		hydrate: HydrateDefault,
	}
}

// SetHydrator replaces the structure hydration table, used by protocol
// versions to gate which signatures they accept
func (d *Decoder) SetHydrator(h HydrateFunc) {
	d.hydrate = h
}

// Unmarshal decodes one complete chunked message from its wire bytes.
func Unmarshal(data []byte) (interface{}, error) {
	return NewDecoder(bytes.NewReader(data)).Decode()
}

// Decode reads the next complete message from the stream and decodes it
// to an object
func (d *Decoder) Decode() (interface{}, error) {
	data, err := d.dech.ReadMessage()
	if err != nil {
		return nil, err
	}

	buffer := bytes.NewBuffer(data)
	val, err := d.decode(buffer)
	if err != nil {
		return nil, err
	}
	if buffer.Len() > 0 {
		return nil, errors.NewDecodeError("%d trailing bytes after message", buffer.Len())
	}
	return val, nil
}

func (d *Decoder) decode(buffer *bytes.Buffer) (interface{}, error) {
	marker, err := buffer.ReadByte()
	if err != nil {
		return nil, errors.NewDecodeError("unexpected end of message reading marker")
	}

	switch {

	// NIL
	case marker == NilMarker:
		return nil, nil

	// BOOL
	case marker == TrueMarker:
		return true, nil
	case marker == FalseMarker:
		return false, nil

	// INT
	case marker < 0x80 || marker >= 0xF0:
		// TINY_INT, the marker is the value
		return int64(int8(marker)), nil
	case marker == Int8Marker:
		var out int8
		if err := binary.Read(buffer, binary.BigEndian, &out); err != nil {
			return nil, errors.NewDecodeError("truncated INT_8")
		}
		return int64(out), nil
	case marker == Int16Marker:
		var out int16
		if err := binary.Read(buffer, binary.BigEndian, &out); err != nil {
			return nil, errors.NewDecodeError("truncated INT_16")
		}
		return int64(out), nil
	case marker == Int32Marker:
		var out int32
		if err := binary.Read(buffer, binary.BigEndian, &out); err != nil {
			return nil, errors.NewDecodeError("truncated INT_32")
		}
		return int64(out), nil
	case marker == Int64Marker:
		var out int64
		if err := binary.Read(buffer, binary.BigEndian, &out); err != nil {
			return nil, errors.NewDecodeError("truncated INT_64")
		}
		return out, nil

	// FLOAT
	case marker == FloatMarker:
		var out float64
		if err := binary.Read(buffer, binary.BigEndian, &out); err != nil {
			return nil, errors.NewDecodeError("truncated FLOAT")
		}
		return out, nil

	// STRING
	case marker >= TinyStringMarker && marker <= TinyStringMarker+0x0F:
		return d.decodeString(buffer, int(marker)-TinyStringMarker)
	case marker == String8Marker:
		size, err := d.readSize(buffer, 1)
		if err != nil {
			return nil, err
		}
		return d.decodeString(buffer, size)
	case marker == String16Marker:
		size, err := d.readSize(buffer, 2)
		if err != nil {
			return nil, err
		}
		return d.decodeString(buffer, size)
	case marker == String32Marker:
		size, err := d.readSize(buffer, 4)
		if err != nil {
			return nil, err
		}
		return d.decodeString(buffer, size)

	// BYTE ARRAY
	case marker == Bytes8Marker:
		size, err := d.readSize(buffer, 1)
		if err != nil {
			return nil, err
		}
		return d.decodeBytes(buffer, size)
	case marker == Bytes16Marker:
		size, err := d.readSize(buffer, 2)
		if err != nil {
			return nil, err
		}
		return d.decodeBytes(buffer, size)
	case marker == Bytes32Marker:
		size, err := d.readSize(buffer, 4)
		if err != nil {
			return nil, err
		}
		return d.decodeBytes(buffer, size)

	// SLICE
	case marker >= TinySliceMarker && marker <= TinySliceMarker+0x0F:
		return d.decodeSlice(buffer, int(marker)-TinySliceMarker)
	case marker == Slice8Marker:
		size, err := d.readSize(buffer, 1)
		if err != nil {
			return nil, err
		}
		return d.decodeSlice(buffer, size)
	case marker == Slice16Marker:
		size, err := d.readSize(buffer, 2)
		if err != nil {
			return nil, err
		}
		return d.decodeSlice(buffer, size)
	case marker == Slice32Marker:
		size, err := d.readSize(buffer, 4)
		if err != nil {
			return nil, err
		}
		return d.decodeSlice(buffer, size)

	// MAP
	case marker >= TinyMapMarker && marker <= TinyMapMarker+0x0F:
		return d.decodeMap(buffer, int(marker)-TinyMapMarker)
	case marker == Map8Marker:
		size, err := d.readSize(buffer, 1)
		if err != nil {
			return nil, err
		}
		return d.decodeMap(buffer, size)
	case marker == Map16Marker:
		size, err := d.readSize(buffer, 2)
		if err != nil {
			return nil, err
		}
		return d.decodeMap(buffer, size)
	case marker == Map32Marker:
		size, err := d.readSize(buffer, 4)
		if err != nil {
			return nil, err
		}
		return d.decodeMap(buffer, size)

	// STRUCTURES
	case marker >= TinyStructMarker && marker <= TinyStructMarker+0x0F:
		return d.decodeStruct(buffer, int(marker)-TinyStructMarker)
	case marker == Struct8Marker:
		size, err := d.readSize(buffer, 1)
		if err != nil {
			return nil, err
		}
		return d.decodeStruct(buffer, size)
	case marker == Struct16Marker:
		size, err := d.readSize(buffer, 2)
		if err != nil {
			return nil, err
		}
		return d.decodeStruct(buffer, size)

	default:
		return nil, errors.NewDecodeError("unrecognized marker byte: %x", marker)
	}
}

func (d *Decoder) readSize(buffer *bytes.Buffer, width int) (int, error) {
	raw := buffer.Next(width)
	if len(raw) < width {
		return 0, errors.NewDecodeError("truncated size field")
	}
	switch width {
	case 1:
		return int(raw[0]), nil
	case 2:
		return int(binary.BigEndian.Uint16(raw)), nil
	default:
		size := binary.BigEndian.Uint32(raw)
		if size > math.MaxInt32 {
			return 0, errors.NewDecodeError("size field out of range: %d", size)
		}
		return int(size), nil
	}
}

func (d *Decoder) decodeString(buffer *bytes.Buffer, size int) (string, error) {
	if size == 0 {
		return "", nil
	}
	raw := buffer.Next(size)
	if len(raw) < size {
		return "", errors.NewDecodeError("string truncated: want %d bytes, have %d", size, len(raw))
	}
	return string(raw), nil
}

func (d *Decoder) decodeBytes(buffer *bytes.Buffer, size int) ([]byte, error) {
	raw := buffer.Next(size)
	if len(raw) < size {
		return nil, errors.NewDecodeError("byte array truncated: want %d bytes, have %d", size, len(raw))
	}
	out := make([]byte, size)
	copy(out, raw)
	return out, nil
}

func (d *Decoder) decodeSlice(buffer *bytes.Buffer, size int) ([]interface{}, error) {
	slice := make([]interface{}, size)
	for i := 0; i < size; i++ {
		item, err := d.decode(buffer)
		if err != nil {
			return nil, err
		}
		slice[i] = item
	}
	return slice, nil
}

func (d *Decoder) decodeMap(buffer *bytes.Buffer, size int) (map[string]interface{}, error) {
	mapp := make(map[string]interface{}, size)
	for i := 0; i < size; i++ {
		keyInt, err := d.decode(buffer)
		if err != nil {
			return nil, err
		}
		val, err := d.decode(buffer)
		if err != nil {
			return nil, err
		}

		key, ok := keyInt.(string)
		if !ok {
			return nil, errors.NewDecodeError("unexpected map key type: %T with value %+v", keyInt, keyInt)
		}
		mapp[key] = val
	}
	return mapp, nil
}

func (d *Decoder) decodeStruct(buffer *bytes.Buffer, size int) (interface{}, error) {
	signature, err := buffer.ReadByte()
	if err != nil {
		return nil, errors.NewDecodeError("unexpected end of message reading structure signature")
	}

	fields := make([]interface{}, size)
	for i := 0; i < size; i++ {
		field, err := d.decode(buffer)
		if err != nil {
			return nil, err
		}
		fields[i] = field
	}

	return d.hydrate(int(signature), fields)
}

// HydrateDefault hydrates the response and graph entity structures shared
// by all supported protocol versions.
func HydrateDefault(signature int, fields []interface{}) (interface{}, error) {
	switch signature {
	case graph.NodeSignature:
		return hydrateNode(fields)
	case graph.RelationshipSignature:
		return hydrateRelationship(fields)
	case graph.UnboundRelationshipSignature:
		return hydrateUnboundRelationship(fields)
	case graph.PathSignature:
		return hydratePath(fields)
	case messages.RecordMessageSignature:
		return hydrateRecordMessage(fields)
	case messages.SuccessMessageSignature:
		return hydrateSuccessMessage(fields)
	case messages.FailureMessageSignature:
		return hydrateFailureMessage(fields)
	case messages.IgnoredMessageSignature:
		return hydrateIgnoredMessage(fields)
	default:
		return nil, errors.NewDecodeError("unrecognized structure signature: %#x", signature)
	}
}

func hydrateNode(fields []interface{}) (graph.Node, error) {
	if len(fields) != 3 {
		return graph.Node{}, errors.NewDecodeError("node structure has %d fields, want 3", len(fields))
	}
	identity, err := fieldInt(fields[0], "node identity")
	if err != nil {
		return graph.Node{}, err
	}
	labels, err := fieldStringSlice(fields[1], "node labels")
	if err != nil {
		return graph.Node{}, err
	}
	properties, err := fieldMap(fields[2], "node properties")
	if err != nil {
		return graph.Node{}, err
	}
	return graph.Node{
		NodeIdentity: identity,
		Labels:       labels,
		Properties:   properties,
	}, nil
}

func hydrateRelationship(fields []interface{}) (graph.Relationship, error) {
	if len(fields) != 5 {
		return graph.Relationship{}, errors.NewDecodeError("relationship structure has %d fields, want 5", len(fields))
	}
	identity, err := fieldInt(fields[0], "relationship identity")
	if err != nil {
		return graph.Relationship{}, err
	}
	start, err := fieldInt(fields[1], "relationship start node")
	if err != nil {
		return graph.Relationship{}, err
	}
	end, err := fieldInt(fields[2], "relationship end node")
	if err != nil {
		return graph.Relationship{}, err
	}
	relType, err := fieldString(fields[3], "relationship type")
	if err != nil {
		return graph.Relationship{}, err
	}
	properties, err := fieldMap(fields[4], "relationship properties")
	if err != nil {
		return graph.Relationship{}, err
	}
	return graph.Relationship{
		RelIdentity:       identity,
		StartNodeIdentity: start,
		EndNodeIdentity:   end,
		Type:              relType,
		Properties:        properties,
	}, nil
}

func hydrateUnboundRelationship(fields []interface{}) (graph.UnboundRelationship, error) {
	if len(fields) != 3 {
		return graph.UnboundRelationship{}, errors.NewDecodeError("unbound relationship structure has %d fields, want 3", len(fields))
	}
	identity, err := fieldInt(fields[0], "relationship identity")
	if err != nil {
		return graph.UnboundRelationship{}, err
	}
	relType, err := fieldString(fields[1], "relationship type")
	if err != nil {
		return graph.UnboundRelationship{}, err
	}
	properties, err := fieldMap(fields[2], "relationship properties")
	if err != nil {
		return graph.UnboundRelationship{}, err
	}
	return graph.UnboundRelationship{
		RelIdentity: identity,
		Type:        relType,
		Properties:  properties,
	}, nil
}

func hydratePath(fields []interface{}) (graph.Path, error) {
	if len(fields) != 3 {
		return graph.Path{}, errors.NewDecodeError("path structure has %d fields, want 3", len(fields))
	}
	nodesRaw, err := fieldSlice(fields[0], "path nodes")
	if err != nil {
		return graph.Path{}, err
	}
	nodes, err := sliceInterfaceToNode(nodesRaw)
	if err != nil {
		return graph.Path{}, err
	}
	relsRaw, err := fieldSlice(fields[1], "path relationships")
	if err != nil {
		return graph.Path{}, err
	}
	rels, err := sliceInterfaceToUnboundRelationship(relsRaw)
	if err != nil {
		return graph.Path{}, err
	}
	seqRaw, err := fieldSlice(fields[2], "path sequence")
	if err != nil {
		return graph.Path{}, err
	}
	seq, err := sliceInterfaceToInt(seqRaw)
	if err != nil {
		return graph.Path{}, err
	}
	return graph.Path{
		Nodes:         nodes,
		Relationships: rels,
		Sequence:      seq,
	}, nil
}

func hydrateRecordMessage(fields []interface{}) (messages.RecordMessage, error) {
	if len(fields) != 1 {
		return messages.RecordMessage{}, errors.NewDecodeError("RECORD has %d fields, want 1", len(fields))
	}
	values, err := fieldSlice(fields[0], "record values")
	if err != nil {
		return messages.RecordMessage{}, err
	}
	return messages.NewRecordMessage(values), nil
}

func hydrateSuccessMessage(fields []interface{}) (messages.SuccessMessage, error) {
	if len(fields) != 1 {
		return messages.SuccessMessage{}, errors.NewDecodeError("SUCCESS has %d fields, want 1", len(fields))
	}
	metadata, err := fieldMap(fields[0], "success metadata")
	if err != nil {
		return messages.SuccessMessage{}, err
	}
	return messages.NewSuccessMessage(metadata), nil
}

func hydrateFailureMessage(fields []interface{}) (messages.FailureMessage, error) {
	if len(fields) != 1 {
		return messages.FailureMessage{}, errors.NewDecodeError("FAILURE has %d fields, want 1", len(fields))
	}
	metadata, err := fieldMap(fields[0], "failure metadata")
	if err != nil {
		return messages.FailureMessage{}, err
	}
	return messages.NewFailureMessage(metadata), nil
}

func hydrateIgnoredMessage(fields []interface{}) (messages.IgnoredMessage, error) {
	// v1 sends a metadata map, v3+ sends no fields
	switch len(fields) {
	case 0:
		return messages.NewIgnoredMessage(map[string]interface{}{}), nil
	case 1:
		metadata, err := fieldMap(fields[0], "ignored metadata")
		if err != nil {
			return messages.IgnoredMessage{}, err
		}
		return messages.NewIgnoredMessage(metadata), nil
	default:
		return messages.IgnoredMessage{}, errors.NewDecodeError("IGNORED has %d fields, want 0 or 1", len(fields))
	}
}
