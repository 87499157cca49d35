// Package net carries wall messages between the host and its clients
// over websockets, and lets clients find a host on the local network
// via mDNS.
package net

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"GraffitiWall/internal/state"
	"GraffitiWall/internal/wire"
)

// maxMessageBytes bounds a single websocket frame. Snapshot chunks are
// sized to fit under it with JSON and base64 framing included.
const maxMessageBytes = 64 * 1024

// sendQueueLen is the per-peer outbound buffer. A full queue drops the
// message: the protocol is lossy by design and a slow reader must not
// stall everyone else. It must hold a full default-wall snapshot, a
// worst-case ~4.3MB PNG split into 265 default-size chunks, so a
// late-join resync never aborts just because the queue ran out before
// the writer drained it.
const sendQueueLen = 512

// writeWait bounds a single frame write so a wedged peer fails its
// writer goroutine instead of pinning it until the OS gives up.
const writeWait = 10 * time.Second

// Handler consumes one inbound message from an identified peer.
type Handler func(peerID string, msg wire.Message)

// Hub is the authority-side transport: it accepts websocket clients,
// tracks them by generated ID, and fans messages out. Hub implements
// [state.NetworkContext].
type Hub struct {
	mu       sync.RWMutex
	peers    map[string]*peer
	handler  Handler
	onJoin   func(peerID string)
	upgrader websocket.Upgrader
}

type peer struct {
	id   string
	conn *websocket.Conn
	send chan wire.Message
}

// NewHub creates an empty hub. Wire OnMessage and OnJoin before
// serving.
func NewHub() *Hub {
	return &Hub{peers: make(map[string]*peer)}
}

// OnMessage sets the sink for inbound messages.
func (h *Hub) OnMessage(fn Handler) { h.handler = fn }

// OnJoin sets the callback fired once a new peer is registered and can
// already receive sends. The wall uses it to start the full-canvas
// transfer for late joiners.
func (h *Hub) OnJoin(fn func(peerID string)) { h.onJoin = fn }

// Role reports the hub's side of the protocol.
func (h *Hub) Role() state.Role { return state.RoleAuthority }

// ListenAndServe blocks serving websocket upgrades on addr under /ws.
func (h *Hub) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	return http.ListenAndServe(addr, mux)
}

// ServeHTTP upgrades one client connection and runs its read loop
// until the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[HUB] upgrade failed: %v", err)
		return
	}
	conn.SetReadLimit(maxMessageBytes)

	p := &peer{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan wire.Message, sendQueueLen),
	}
	h.add(p)
	go p.writeLoop()
	if h.onJoin != nil {
		h.onJoin(p.id)
	}

	for {
		var msg wire.Message
		if err := conn.ReadJSON(&msg); err != nil {
			log.Printf("[HUB] peer %s disconnected: %v", p.id, err)
			break
		}
		if err := msg.Validate(); err != nil {
			log.Printf("[HUB] dropping malformed message from %s: %v", p.id, err)
			continue
		}
		if h.handler != nil {
			h.handler(p.id, msg)
		}
	}
	h.remove(p)
}

func (h *Hub) add(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[p.id] = p
	log.Printf("[HUB] peer %s connected from %s", p.id, p.conn.RemoteAddr())
}

func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.peers[p.id]; !ok {
		return
	}
	delete(h.peers, p.id)
	close(p.send)
	log.Printf("[HUB] peer %s removed", p.id)
}

// Broadcast queues msg for every connected peer except excludePeer. A
// peer whose queue is full loses the message; it will catch up on the
// next full resync.
func (h *Hub) Broadcast(msg wire.Message, excludePeer string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, p := range h.peers {
		if id == excludePeer {
			continue
		}
		select {
		case p.send <- msg:
		default:
			log.Printf("[HUB] peer %s send queue full, dropping %s", id, msg.Type)
		}
	}
}

// SendTo queues msg for one peer.
func (h *Hub) SendTo(peerID string, msg wire.Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, ok := h.peers[peerID]
	if !ok {
		return fmt.Errorf("no connected peer %s", peerID)
	}
	select {
	case p.send <- msg:
		return nil
	default:
		return fmt.Errorf("peer %s send queue full", peerID)
	}
}

// PeerIDs lists the currently connected peers.
func (h *Hub) PeerIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.peers))
	for id := range h.peers {
		ids = append(ids, id)
	}
	return ids
}

// writeLoop is the single writer for one connection; gorilla allows at
// most one concurrent writer per conn.
func (p *peer) writeLoop() {
	for msg := range p.send {
		p.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := p.conn.WriteJSON(msg); err != nil {
			log.Printf("[HUB] write to peer %s failed: %v", p.id, err)
			break
		}
	}
	p.conn.Close()
}
