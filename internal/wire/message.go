// Package wire defines the messages exchanged between a graffiti wall
// host and its clients. Every message is a tagged envelope carrying
// exactly one typed payload, encoded as JSON on the wire.
package wire

import (
	"encoding/json"
	"fmt"
)

// Type tags a Message with the payload it carries.
type Type string

const (
	// TypePaint is a single brush application.
	TypePaint Type = "paint"
	// TypeClear wipes the whole canvas back to its base color.
	TypeClear Type = "clear"
	// TypeChunk is one slice of a full-canvas snapshot transfer.
	TypeChunk Type = "chunk"
)

// MaxRadius bounds the brush radius a paint message may carry. Stamping
// costs grow with the square of the radius and the receiver applies it
// while holding its state lock, so an unbounded radius would let one
// message stall a node. A stamp this size already blankets the default
// 1028-pixel wall; whole-surface changes go through clear instead.
const MaxRadius = 512

// Paint carries one brush stamp. Coordinates are normalized to [0,1]
// on both axes; the receiver maps them onto its own pixel grid.
type Paint struct {
	U      float64 `json:"u"`
	V      float64 `json:"v"`
	R      uint8   `json:"r"`
	G      uint8   `json:"g"`
	B      uint8   `json:"b"`
	A      uint8   `json:"a"`
	Radius int     `json:"radius"`
}

// Clear has no fields today; the struct keeps the envelope uniform and
// leaves room for a scoped clear later.
type Clear struct{}

// Chunk is one ordered slice of an encoded canvas snapshot. Index runs
// 0..Total-1 and Sum is the SHA-256 of the fully reassembled stream,
// repeated on every slice so a receiver can validate no matter which
// slice completes the session.
type Chunk struct {
	Payload []byte `json:"payload"`
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Sum     []byte `json:"sum,omitempty"`
}

// Message is the envelope for everything that crosses the network.
// Exactly one payload pointer matching Type must be set.
type Message struct {
	Type  Type   `json:"type"`
	Paint *Paint `json:"paint,omitempty"`
	Clear *Clear `json:"clear,omitempty"`
	Chunk *Chunk `json:"chunk,omitempty"`
}

// NewPaint builds a paint message.
func NewPaint(u, v float64, r, g, b, a uint8, radius int) Message {
	return Message{Type: TypePaint, Paint: &Paint{U: u, V: v, R: r, G: g, B: b, A: a, Radius: radius}}
}

// NewClear builds a clear message.
func NewClear() Message {
	return Message{Type: TypeClear, Clear: &Clear{}}
}

// NewChunk builds one snapshot slice message.
func NewChunk(payload []byte, index, total int, sum []byte) Message {
	return Message{Type: TypeChunk, Chunk: &Chunk{Payload: payload, Index: index, Total: total, Sum: sum}}
}

// Validate reports whether the envelope is well formed: a known type
// tag with its matching payload present.
func (m Message) Validate() error {
	switch m.Type {
	case TypePaint:
		if m.Paint == nil {
			return fmt.Errorf("paint message without paint payload")
		}
		if m.Paint.Radius < 0 || m.Paint.Radius > MaxRadius {
			return fmt.Errorf("paint radius %d out of range [0, %d]", m.Paint.Radius, MaxRadius)
		}
	case TypeClear:
		if m.Clear == nil {
			return fmt.Errorf("clear message without clear payload")
		}
	case TypeChunk:
		if m.Chunk == nil {
			return fmt.Errorf("chunk message without chunk payload")
		}
		if m.Chunk.Total < 1 || m.Chunk.Index < 0 || m.Chunk.Index >= m.Chunk.Total {
			return fmt.Errorf("chunk index %d out of range for total %d", m.Chunk.Index, m.Chunk.Total)
		}
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	return nil
}

// Encode serializes the message for the wire.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// DecodeMessage parses a wire message and validates its shape.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("could not decode message: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}
