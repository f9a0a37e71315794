package encoding

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunked wraps a payload in a single max-size chunk plus the message
// terminator, the framing Marshal produces for small values
func chunked(payload ...byte) []byte {
	out := []byte{byte(len(payload) >> 8), byte(len(payload))}
	out = append(out, payload...)
	return append(out, 0x00, 0x00)
}

func TestEncodeIntSizeClasses(t *testing.T) {
	cases := []struct {
		name string
		in   int64
		out  []byte
	}{
		{"tiny zero", 0, []byte{0x00}},
		{"tiny positive", 42, []byte{0x2A}},
		{"tiny max", 127, []byte{0x7F}},
		{"tiny negative", -16, []byte{0xF0}},
		{"int8 low", -17, []byte{Int8Marker, 0xEF}},
		{"int8 min", -128, []byte{Int8Marker, 0x80}},
		{"int16 high", 128, []byte{Int16Marker, 0x00, 0x80}},
		{"int16 max", 32767, []byte{Int16Marker, 0x7F, 0xFF}},
		{"int16 low", -129, []byte{Int16Marker, 0xFF, 0x7F}},
		{"int32 high", 32768, []byte{Int32Marker, 0x00, 0x00, 0x80, 0x00}},
		{"int32 low", -32769, []byte{Int32Marker, 0xFF, 0xFF, 0x7F, 0xFF}},
		{"int64 high", 2147483648, []byte{Int64Marker, 0x00, 0x00, 0x00, 0x00, 0x80, 0x00, 0x00, 0x00}},
		{"int64 low", -2147483649, []byte{Int64Marker, 0xFF, 0xFF, 0xFF, 0xFF, 0x7F, 0xFF, 0xFF, 0xFF}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			data, err := Marshal(c.in)
			require.NoError(t, err)
			assert.Equal(t, chunked(c.out...), data)
		})
	}
}

func TestEncodeBasicValues(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		out  []byte
	}{
		{"nil", nil, []byte{NilMarker}},
		{"true", true, []byte{TrueMarker}},
		{"false", false, []byte{FalseMarker}},
		{"float", 1.0, []byte{FloatMarker, 0x3F, 0xF0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"empty string", "", []byte{TinyStringMarker}},
		{"tiny string", "abc", []byte{0x83, 'a', 'b', 'c'}},
		{"bytes", []byte{0x01, 0x02}, []byte{Bytes8Marker, 0x02, 0x01, 0x02}},
		{"empty list", []interface{}{}, []byte{TinySliceMarker}},
		{"tiny list", []interface{}{int64(1), int64(2)}, []byte{0x92, 0x01, 0x02}},
		{"tiny map", map[string]interface{}{"a": int64(1)}, []byte{0xA1, 0x81, 'a', 0x01}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			data, err := Marshal(c.in)
			require.NoError(t, err)
			assert.Equal(t, chunked(c.out...), data)
		})
	}
}

func TestEncodeString8(t *testing.T) {
	in := strings.Repeat("x", 16)
	data, err := Marshal(in)
	require.NoError(t, err)

	expected := append([]byte{String8Marker, 0x10}, []byte(in)...)
	assert.Equal(t, chunked(expected...), data)
}

func TestEncodeString16(t *testing.T) {
	in := strings.Repeat("x", 300)
	data, err := Marshal(in)
	require.NoError(t, err)

	expected := append([]byte{String16Marker, 0x01, 0x2C}, []byte(in)...)
	assert.Equal(t, chunked(expected...), data)
}

func TestEncodeRejectsUnsupportedType(t *testing.T) {
	_, err := Marshal(struct{ X int }{1})
	assert.Error(t, err)
}

func TestEncodeRejectsHugeUint64(t *testing.T) {
	_, err := Marshal(uint64(math.MaxUint64))
	assert.Error(t, err)
}

func TestEncodeDecodeIntRoundTripProperty(t *testing.T) {
	roundTrips := func(x int64) bool {
		data, err := Marshal(x)
		if err != nil {
			return false
		}
		out, err := Unmarshal(data)
		return err == nil && out == x
	}
	if err := quick.Check(roundTrips, nil); err != nil {
		t.Fatal(err)
	}
}

func TestEncodeDecodeStringRoundTripProperty(t *testing.T) {
	roundTrips := func(s string) bool {
		data, err := Marshal(s)
		if err != nil {
			return false
		}
		out, err := Unmarshal(data)
		return err == nil && out == s
	}
	if err := quick.Check(roundTrips, nil); err != nil {
		t.Fatal(err)
	}
}

func TestEncoderSplitsLargeMessagesIntoChunks(t *testing.T) {
	in := strings.Repeat("y", 25)

	var out bytes.Buffer
	require.NoError(t, NewEncoder(&out, 10).Encode(in))

	// 27 encoded bytes split at a 10 byte chunk size: 10 + 10 + 7
	data := out.Bytes()
	assert.Equal(t, []byte{0x00, 0x0A}, data[:2])
	assert.Equal(t, []byte{0x00, 0x0A}, data[12:14])
	assert.Equal(t, []byte{0x00, 0x07}, data[24:26])
	assert.Equal(t, []byte{0x00, 0x00}, data[len(data)-2:])

	val, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, in, val)
}
