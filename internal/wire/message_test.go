package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaintRoundTrip(t *testing.T) {
	msg := NewPaint(0.25, 0.75, 200, 30, 30, 255, 6)
	data, err := msg.Encode()
	require.NoError(t, err)

	got, err := DecodeMessage(data)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestChunkRoundTripKeepsChecksum(t *testing.T) {
	msg := NewChunk([]byte{1, 2, 3}, 0, 2, []byte{0xde, 0xad})
	data, err := msg.Encode()
	require.NoError(t, err)

	got, err := DecodeMessage(data)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad}, got.Chunk.Sum)
	assert.Equal(t, 0, got.Chunk.Index)
	assert.Equal(t, 2, got.Chunk.Total)
}

func TestEncodeOmitsUnusedPayloads(t *testing.T) {
	data, err := NewClear().Encode()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "paint")
	assert.NotContains(t, string(data), "chunk")
}

func TestValidateRejectsBadMessages(t *testing.T) {
	cases := map[string]Message{
		"unknown type":       {Type: "scribble"},
		"paint without body": {Type: TypePaint},
		"clear without body": {Type: TypeClear},
		"chunk without body": {Type: TypeChunk},
		"negative radius":    {Type: TypePaint, Paint: &Paint{Radius: -1}},
		"oversized radius":   {Type: TypePaint, Paint: &Paint{Radius: MaxRadius + 1}},
		"negative index":     {Type: TypeChunk, Chunk: &Chunk{Index: -1, Total: 2}},
		"index beyond total": {Type: TypeChunk, Chunk: &Chunk{Index: 2, Total: 2}},
		"non-positive total": {Type: TypeChunk, Chunk: &Chunk{Index: 0, Total: 0}},
	}
	for name, msg := range cases {
		assert.Error(t, msg.Validate(), name)
	}
}

// A paint with a huge radius must die at validation: the stamp loop
// costs radius squared, so accepting one would let a single message
// stall the receiver.
func TestValidateBoundsPaintRadius(t *testing.T) {
	assert.NoError(t, NewPaint(0.5, 0.5, 1, 2, 3, 255, MaxRadius).Validate())

	data, err := NewPaint(0.5, 0.5, 1, 2, 3, 255, 1_000_000_000).Encode()
	require.NoError(t, err)
	_, err = DecodeMessage(data)
	assert.Error(t, err)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodeMessage([]byte("{not json"))
	assert.Error(t, err)
}
