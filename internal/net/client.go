package net

import (
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"GraffitiWall/internal/state"
	"GraffitiWall/internal/wire"
)

// Client is the replica-side transport: one websocket connection to
// the host. Client implements [state.NetworkContext].
type Client struct {
	conn     *websocket.Conn
	send     chan wire.Message
	handler  Handler
	done     chan struct{}
	stopOnce sync.Once
}

// Dial connects to a host at host:port. The returned client is idle
// until Listen runs its read loop.
func Dial(addr string) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not reach host at %s: %w", addr, err)
	}
	conn.SetReadLimit(maxMessageBytes)
	c := &Client{
		conn: conn,
		send: make(chan wire.Message, sendQueueLen),
		done: make(chan struct{}),
	}
	go c.writeLoop()
	return c, nil
}

// OnMessage sets the sink for messages arriving from the host. Set it
// before Listen.
func (c *Client) OnMessage(fn Handler) { c.handler = fn }

// Role reports the client's side of the protocol.
func (c *Client) Role() state.Role { return state.RoleReplica }

// Listen blocks reading messages from the host until the connection
// drops, then returns the read error.
func (c *Client) Listen() error {
	defer c.stop()
	for {
		var msg wire.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("disconnected from host: %w", err)
		}
		if err := msg.Validate(); err != nil {
			log.Printf("[CLIENT] dropping malformed message from host: %v", err)
			continue
		}
		if c.handler != nil {
			c.handler(state.AuthorityID, msg)
		}
	}
}

// SendTo queues msg for the host, the only peer a replica can address.
func (c *Client) SendTo(peerID string, msg wire.Message) error {
	if peerID != state.AuthorityID {
		return fmt.Errorf("replica can only send to %s, not %s", state.AuthorityID, peerID)
	}
	// Checked on its own: a combined select would pick randomly between
	// a closed done and a free queue slot.
	select {
	case <-c.done:
		return fmt.Errorf("connection to host is closed")
	default:
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return fmt.Errorf("send queue to host full")
	}
}

// Broadcast is a no-op on a replica: fan-out belongs to the authority.
func (c *Client) Broadcast(msg wire.Message, excludePeer string) {
	log.Printf("[CLIENT] ignoring broadcast of %s: replicas do not fan out", msg.Type)
}

// PeerIDs lists the one peer a replica knows.
func (c *Client) PeerIDs() []string { return []string{state.AuthorityID} }

// Close shuts the client down: the writer goroutine stops whether or
// not Listen ever ran, and a running Listen returns shortly after.
func (c *Client) Close() error {
	c.stop()
	return c.conn.Close()
}

// stop releases everything waiting on done exactly once; Listen's exit
// and Close both funnel through it.
func (c *Client) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("[CLIENT] write to host failed: %v", err)
				return
			}
		}
	}
}
