package server

import (
	"github.com/mirrorcast/mirrorcast/server/identifiers"
	"github.com/mirrorcast/mirrorcast/server/message"
)

// ClientWriter is the send side of a signaling connection, as seen by a room.
// Rooms hold non-owning references; the connection is closed elsewhere on
// network events.
type ClientWriter interface {
	ID() identifiers.ClientID
	Write(msg message.Message) error
}

// Adapter is a room's member set.
type Adapter interface {
	Add(client ClientWriter)
	Remove(clientID identifiers.ClientID)
	// Broadcast sends msg to every member except the sender. Delivery is
	// best-effort per member; send failures are skipped.
	Broadcast(from identifiers.ClientID, msg message.Message)
	// Emit sends a message to a specific member.
	Emit(clientID identifiers.ClientID, msg message.Message) error
	Clients() []identifiers.ClientID
	Size() int
	Close() error
}
