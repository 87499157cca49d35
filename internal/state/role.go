package state

import "GraffitiWall/internal/wire"

// Role determines how a wall propagates paint operations.
type Role int

const (
	// RoleStandalone runs with no network at all; operations apply
	// locally and nowhere else.
	RoleStandalone Role = iota
	// RoleAuthority owns the canonical canvas and fans operations out
	// to every connected replica.
	RoleAuthority
	// RoleReplica mirrors the authority: it applies operations locally
	// for immediate feedback and forwards them one hop to the
	// authority for rebroadcast.
	RoleReplica
)

func (r Role) String() string {
	switch r {
	case RoleAuthority:
		return "authority"
	case RoleReplica:
		return "replica"
	default:
		return "standalone"
	}
}

// AuthorityID is the peer ID the authority answers to. Replicas address
// their forwards to it; everything else gets a generated ID.
const AuthorityID = "host"

// NetworkContext is the capability a wall needs from its transport. It
// is injected at construction so the wall never reaches for a global
// connection registry.
type NetworkContext interface {
	// Role reports which side of the protocol this node plays.
	Role() Role
	// Broadcast delivers msg to every connected peer except
	// excludePeer; an empty excludePeer means everyone.
	Broadcast(msg wire.Message, excludePeer string)
	// SendTo delivers msg to one specific peer.
	SendTo(peerID string, msg wire.Message) error
	// PeerIDs lists the currently connected peers.
	PeerIDs() []string
}
