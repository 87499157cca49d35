// Package chunk splits a byte stream into ordered fixed-size slices and
// reassembles them on the far side. It exists because the transport has
// a per-message payload budget that a full canvas snapshot exceeds.
//
// Delivery is assumed in order with no gaps; nothing here reorders or
// retries. A SHA-256 over the whole stream rides along so the receiver
// can at least detect a corrupted session instead of decoding garbage.
package chunk

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
)

// DefaultSize is the slice payload size in bytes. It keeps each message
// comfortably under the transport's frame budget once JSON and base64
// framing are added on top.
const DefaultSize = 16300

// MaxSize is the largest usable slice payload. The transport caps a
// frame at 64KB; base64 expands the payload 4/3 and the JSON envelope
// adds a little more, so anything above this gets the connection killed
// by the receiver's read limit instead of delivered.
const MaxSize = 48000

// ErrChecksumMismatch reports that a reassembled stream did not hash to
// the sum the sender advertised. The session is discarded; there is no
// retry.
var ErrChecksumMismatch = errors.New("reassembled stream failed checksum")

// Split cuts data into ceil(len(data)/size) ordered slices. The last
// slice may be short. Empty data yields no slices. A non-positive size
// falls back to DefaultSize.
func Split(data []byte, size int) [][]byte {
	if size <= 0 {
		size = DefaultSize
	}
	if len(data) == 0 {
		return nil
	}
	chunks := make([][]byte, 0, (len(data)+size-1)/size)
	for off := 0; off < len(data); off += size {
		end := off + size
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, data[off:end])
	}
	return chunks
}

// Checksum returns the SHA-256 of the whole stream, carried on every
// slice so the completing slice can validate regardless of which one it
// is.
func Checksum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// Assembler accumulates one transfer session at a time. Slice index 0
// opens a session, discarding any half-finished predecessor; the final
// index closes it. A session that never sees its final slice sits
// half-filled forever; there is no timeout.
type Assembler struct {
	buf      bytes.Buffer
	total    int
	received int
	active   bool
}

// Add feeds one slice. When the final slice arrives it returns the
// reassembled stream with done=true and resets for the next session.
// A non-empty sum is verified against the reassembled bytes; mismatch
// returns ErrChecksumMismatch and discards the session.
func (a *Assembler) Add(payload []byte, index, total int, sum []byte) (data []byte, done bool, err error) {
	if total < 1 {
		return nil, false, fmt.Errorf("chunk total %d out of range", total)
	}
	if index < 0 || index >= total {
		return nil, false, fmt.Errorf("chunk index %d out of range for total %d", index, total)
	}
	if index == 0 {
		a.buf.Reset()
		a.total = total
		a.received = 0
		a.active = true
	} else if !a.active {
		return nil, false, fmt.Errorf("chunk %d/%d arrived without an open session", index+1, total)
	}
	a.buf.Write(payload)
	a.received++

	if index != total-1 {
		return nil, false, nil
	}

	data = make([]byte, a.buf.Len())
	copy(data, a.buf.Bytes())
	a.reset()

	if len(sum) > 0 && !bytes.Equal(Checksum(data), sum) {
		return nil, false, ErrChecksumMismatch
	}
	return data, true, nil
}

// Pending reports whether a session is open and how many slices of it
// have arrived.
func (a *Assembler) Pending() (received, total int, open bool) {
	return a.received, a.total, a.active
}

func (a *Assembler) reset() {
	a.buf.Reset()
	a.total = 0
	a.received = 0
	a.active = false
}
