package server

import (
	"sync"

	"github.com/juju/errors"
	"github.com/mirrorcast/mirrorcast/server/identifiers"
	"github.com/mirrorcast/mirrorcast/server/logger"
	"github.com/mirrorcast/mirrorcast/server/message"
)

// MemoryAdapter holds the member set of a single room in memory.
type MemoryAdapter struct {
	log logger.Logger

	clientsMu sync.RWMutex
	clients   map[identifiers.ClientID]ClientWriter
	room      identifiers.RoomID
}

func NewMemoryAdapter(log logger.Logger, room identifiers.RoomID) *MemoryAdapter {
	return &MemoryAdapter{
		log: log.WithNamespaceAppended("adapter").WithCtx(logger.Ctx{
			"room_id": room,
		}),
		clients: map[identifiers.ClientID]ClientWriter{},
		room:    room,
	}
}

var _ Adapter = &MemoryAdapter{}

// Add a client to the room.
func (m *MemoryAdapter) Add(client ClientWriter) {
	m.clientsMu.Lock()
	m.clients[client.ID()] = client
	m.clientsMu.Unlock()
}

// Remove a client from the room. Removing an absent client is a no-op.
func (m *MemoryAdapter) Remove(clientID identifiers.ClientID) {
	m.clientsMu.Lock()
	delete(m.clients, clientID)
	m.clientsMu.Unlock()
}

// Broadcast sends msg to every member of the room except the sender. A
// member whose transport cannot accept the message is skipped; the relay has
// no reliable-delivery contract.
func (m *MemoryAdapter) Broadcast(from identifiers.ClientID, msg message.Message) {
	m.clientsMu.RLock()
	defer m.clientsMu.RUnlock()

	for clientID, client := range m.clients {
		if clientID == from {
			continue
		}

		if err := client.Write(msg); err != nil {
			prometheusRelayForwardErrTotal.Inc()

			m.log.Debug("Skip unsendable member", logger.Ctx{
				"client_id": clientID,
				"error":     err,
			})

			continue
		}

		prometheusRelayForwardTotal.Inc()
	}
}

// Emit sends a message to a specific member.
func (m *MemoryAdapter) Emit(clientID identifiers.ClientID, msg message.Message) error {
	m.clientsMu.RLock()
	client, ok := m.clients[clientID]
	m.clientsMu.RUnlock()

	if !ok {
		return errors.Errorf("client not found: %s", clientID)
	}

	return errors.Annotate(client.Write(msg), "emit")
}

func (m *MemoryAdapter) Clients() []identifiers.ClientID {
	m.clientsMu.RLock()
	defer m.clientsMu.RUnlock()

	clientIDs := make([]identifiers.ClientID, 0, len(m.clients))

	for clientID := range m.clients {
		clientIDs = append(clientIDs, clientID)
	}

	return clientIDs
}

func (m *MemoryAdapter) Size() int {
	m.clientsMu.RLock()
	defer m.clientsMu.RUnlock()

	return len(m.clients)
}

func (m *MemoryAdapter) Room() identifiers.RoomID {
	return m.room
}

func (m *MemoryAdapter) Close() error {
	return nil
}
