package server

import (
	"sync"

	"github.com/mirrorcast/mirrorcast/server/identifiers"
	"github.com/mirrorcast/mirrorcast/server/logger"
)

// AdapterFactory creates the member set for a new room.
type AdapterFactory func(room identifiers.RoomID) Adapter

// RoomManager owns the registry of active rooms. A room is created on first
// join and removed as soon as its last member leaves, so the registry never
// accumulates empty rooms.
type RoomManager struct {
	log logger.Logger

	roomsMu    sync.RWMutex
	rooms      map[identifiers.RoomID]Adapter
	newAdapter AdapterFactory
}

func NewRoomManager(log logger.Logger, newAdapter AdapterFactory) *RoomManager {
	return &RoomManager{
		log:        log.WithNamespaceAppended("rooms"),
		rooms:      map[identifiers.RoomID]Adapter{},
		newAdapter: newAdapter,
	}
}

// Join adds the client to the room's member set, creating the room when it
// does not exist yet. The returned adapter is used for broadcasting until
// the client leaves.
func (r *RoomManager) Join(room identifiers.RoomID, client ClientWriter) Adapter {
	r.roomsMu.Lock()
	defer r.roomsMu.Unlock()

	adapter, ok := r.rooms[room]
	if !ok {
		adapter = r.newAdapter(room)
		r.rooms[room] = adapter

		r.log.Info("Room created", logger.Ctx{
			"room_id": room,
		})
	}

	// Membership is added while the registry lock is held so the room cannot
	// be removed by a concurrent leave between creation and add.
	adapter.Add(client)

	return adapter
}

// Leave removes the client from the room and destroys the room when it
// becomes empty. Leaving a room the client is not in, or a room that does
// not exist, is a no-op, which makes disconnect cleanup idempotent.
func (r *RoomManager) Leave(room identifiers.RoomID, clientID identifiers.ClientID) {
	r.roomsMu.Lock()
	defer r.roomsMu.Unlock()

	adapter, ok := r.rooms[room]
	if !ok {
		return
	}

	adapter.Remove(clientID)

	if adapter.Size() == 0 {
		delete(r.rooms, room)

		if err := adapter.Close(); err != nil {
			r.log.Error("Close room adapter", err, logger.Ctx{
				"room_id": room,
			})
		}

		r.log.Info("Room removed", logger.Ctx{
			"room_id": room,
		})
	}
}

// Size returns the number of members currently in the room. The second
// return value is false when the room does not exist.
func (r *RoomManager) Size(room identifiers.RoomID) (int, bool) {
	r.roomsMu.RLock()
	defer r.roomsMu.RUnlock()

	adapter, ok := r.rooms[room]
	if !ok {
		return 0, false
	}

	return adapter.Size(), true
}

// NumRooms returns the number of rooms currently in the registry.
func (r *RoomManager) NumRooms() int {
	r.roomsMu.RLock()
	defer r.roomsMu.RUnlock()

	return len(r.rooms)
}
