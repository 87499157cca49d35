// Package state holds the shared graffiti wall: one paintable canvas
// plus the synchronization rules that keep it consistent between an
// authority and its replicas.
//
// The protocol is a one-hop star. The authority applies every
// operation and rebroadcasts it to all replicas except the one it came
// from; a replica applies its own operations immediately and forwards
// them to the authority, never to anyone else. There is no
// acknowledgment and no retry: a lost paint stays lost until the next
// full-canvas resync, which is acceptable for cosmetic paint.
package state

import (
	"image"
	"image/color"
	"log"
	"sync"

	"GraffitiWall/internal/canvas"
	"GraffitiWall/internal/chunk"
	"GraffitiWall/internal/wire"
)

// Options sizes a wall and its snapshot transfers.
type Options struct {
	Width  int
	Height int
	// Base is the fill color of a fresh or cleared canvas.
	Base color.NRGBA
	// ChunkSize is the snapshot slice size for late-join transfers;
	// zero means chunk.DefaultSize.
	ChunkSize int
}

// Wall is one shared paintable surface. All methods are safe for
// concurrent use; a single mutex serializes canvas access the way the
// original single update loop did.
type Wall struct {
	mu          sync.Mutex
	opts        Options
	buf         *canvas.Buffer
	net         NetworkContext // nil when standalone
	asm         chunk.Assembler
	initialized bool
	disabled    bool
}

// NewWall creates a wall. The canvas itself is allocated lazily by the
// first activation signal or use. A nil NetworkContext means the wall
// runs standalone.
func NewWall(opts Options, netctx NetworkContext) *Wall {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = chunk.DefaultSize
	}
	// Oversized slices would exceed the transport frame limit and kill
	// the receiving connection mid-resync.
	if opts.ChunkSize > chunk.MaxSize {
		opts.ChunkSize = chunk.MaxSize
	}
	return &Wall{opts: opts, net: netctx}
}

// Role reports how this wall propagates operations.
func (w *Wall) Role() Role {
	if w.net == nil {
		return RoleStandalone
	}
	return w.net.Role()
}

// Activate is the generic "object is running" signal. A standalone wall
// initializes right away; a networked one waits for NetworkReady (or
// first use) so both orderings of the two signals behave the same.
func (w *Wall) Activate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Role() == RoleStandalone {
		w.ensureInitialized()
	}
}

// NetworkReady is the role-aware "network presence established" signal.
func (w *Wall) NetworkReady() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ensureInitialized()
}

// IsCanvasInitialized reports whether the canvas has been allocated.
func (w *Wall) IsCanvasInitialized() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.initialized && !w.disabled
}

// ensureInitialized allocates the canvas exactly once no matter how
// many triggers fire or in which order. Callers hold w.mu.
func (w *Wall) ensureInitialized() {
	if w.initialized {
		return
	}
	w.initialized = true
	buf, err := canvas.New(w.opts.Width, w.opts.Height, w.opts.Base)
	if err != nil {
		// Painting is best-effort: a wall that cannot allocate its
		// canvas turns itself off instead of taking the session down.
		log.Printf("[WALL] disabling painting, canvas allocation failed: %v", err)
		w.disabled = true
		return
	}
	w.buf = buf
	log.Printf("[WALL] canvas %dx%d ready (role: %s)", w.opts.Width, w.opts.Height, w.Role())
}

// Paint stamps one brush application at the normalized uv coordinate
// and propagates it according to the wall's role. The local canvas is
// always updated first, so the painter sees the stroke before any
// network round trip completes.
func (w *Wall) Paint(u, v float64, c color.NRGBA, radius int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ensureInitialized()
	if w.disabled || radius < 0 {
		return
	}
	// Clamp here so local input stays cheap and the outgoing message
	// passes the same bound every receiver enforces.
	if radius > wire.MaxRadius {
		radius = wire.MaxRadius
	}
	w.buf.StampBrush(u, v, c, radius)
	w.buf.Apply()

	switch w.Role() {
	case RoleAuthority:
		w.net.Broadcast(wire.NewPaint(u, v, c.R, c.G, c.B, c.A, radius), "")
	case RoleReplica:
		if err := w.net.SendTo(AuthorityID, wire.NewPaint(u, v, c.R, c.G, c.B, c.A, radius)); err != nil {
			log.Printf("[WALL] could not forward paint to authority: %v", err)
		}
	}
}

// ClearCanvas wipes the canvas back to its base color, with the same
// role dispatch as Paint. The authority broadcasts the clear to every
// replica including the one that asked for it; clear is idempotent, so
// the redundant echo is harmless.
func (w *Wall) ClearCanvas() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ensureInitialized()
	if w.disabled {
		return
	}
	w.buf.Clear(w.opts.Base)
	w.buf.Apply()
	log.Printf("[WALL] canvas cleared")

	switch w.Role() {
	case RoleAuthority:
		w.net.Broadcast(wire.NewClear(), "")
	case RoleReplica:
		if err := w.net.SendTo(AuthorityID, wire.NewClear()); err != nil {
			log.Printf("[WALL] could not forward clear to authority: %v", err)
		}
	}
}

// HandleIncoming applies one message from the network. The transport
// calls it from its read loops; sender is the transport-assigned ID of
// the peer the message came from.
func (w *Wall) HandleIncoming(sender string, msg wire.Message) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ensureInitialized()
	if w.disabled {
		return
	}
	if err := msg.Validate(); err != nil {
		log.Printf("[WALL] dropping malformed message from %s: %v", sender, err)
		return
	}

	switch msg.Type {
	case wire.TypePaint:
		p := msg.Paint
		w.buf.StampBrush(p.U, p.V, color.NRGBA{R: p.R, G: p.G, B: p.B, A: p.A}, p.Radius)
		w.buf.Apply()
		if w.Role() == RoleAuthority {
			// Fan out to everyone except the originating sender; the
			// sender already painted locally and must not echo.
			w.net.Broadcast(msg, sender)
		}
	case wire.TypeClear:
		w.buf.Clear(w.opts.Base)
		w.buf.Apply()
		log.Printf("[WALL] canvas cleared by %s", sender)
		if w.Role() == RoleAuthority {
			w.net.Broadcast(msg, "")
		}
	case wire.TypeChunk:
		w.handleChunk(sender, msg.Chunk)
	}
}

// handleChunk feeds one snapshot slice into the transfer session.
// Callers hold w.mu.
func (w *Wall) handleChunk(sender string, c *wire.Chunk) {
	if w.Role() == RoleAuthority {
		log.Printf("[WALL] ignoring snapshot chunk from %s: authority owns the canonical canvas", sender)
		return
	}
	data, done, err := w.asm.Add(c.Payload, c.Index, c.Total, c.Sum)
	if err != nil {
		log.Printf("[WALL] discarding snapshot transfer: %v", err)
		return
	}
	if !done {
		return
	}
	if err := w.buf.Decode(data); err != nil {
		log.Printf("[WALL] could not load canvas snapshot: %v", err)
		return
	}
	log.Printf("[WALL] canvas resynced from snapshot (%d bytes in %d chunks)", len(data), c.Total)
}

// PeerJoined ships the full current canvas to one newly connected
// replica as an ordered chunk stream. Only the authority sends
// snapshots. Encoding the whole canvas is a one-shot cost per joiner,
// not a per-stroke one.
func (w *Wall) PeerJoined(peerID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Role() != RoleAuthority {
		return
	}
	w.ensureInitialized()
	if w.disabled {
		return
	}
	data, err := w.buf.Encode()
	if err != nil {
		log.Printf("[WALL] could not encode canvas for %s: %v", peerID, err)
		return
	}
	chunks := chunk.Split(data, w.opts.ChunkSize)
	if len(chunks) == 0 {
		return
	}
	sum := chunk.Checksum(data)
	for i, payload := range chunks {
		if err := w.net.SendTo(peerID, wire.NewChunk(payload, i, len(chunks), sum)); err != nil {
			log.Printf("[WALL] snapshot transfer to %s aborted at chunk %d/%d: %v", peerID, i+1, len(chunks), err)
			return
		}
	}
	log.Printf("[WALL] sent full canvas to %s (%d bytes in %d chunks)", peerID, len(data), len(chunks))
}

// Texture returns the live applied canvas image, or nil when painting
// is disabled. The pixels behind the handle change as paints apply;
// callers that need a stable view should use Snapshot.
func (w *Wall) Texture() *image.NRGBA {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ensureInitialized()
	if w.disabled {
		return nil
	}
	return w.buf.Image()
}

// Snapshot returns an independent copy of the applied canvas, safe to
// hand to export code while painting continues.
func (w *Wall) Snapshot() *image.NRGBA {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ensureInitialized()
	if w.disabled {
		return nil
	}
	src := w.buf.Image()
	out := image.NewNRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out
}

// PreviewAt returns a copy of the canvas with the brush cursor blended
// over it. The persisted canvas is never touched.
func (w *Wall) PreviewAt(u, v float64, c color.NRGBA, radius int) *image.NRGBA {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ensureInitialized()
	if w.disabled || radius < 0 {
		return nil
	}
	if radius > wire.MaxRadius {
		radius = wire.MaxRadius
	}
	return w.buf.Preview(u, v, c, radius)
}
