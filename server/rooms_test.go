package server_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/mirrorcast/mirrorcast/server"
	"github.com/mirrorcast/mirrorcast/server/identifiers"
	"github.com/mirrorcast/mirrorcast/server/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestRoomManager() *server.RoomManager {
	log := test.NewLogger()

	return server.NewRoomManager(log, func(room identifiers.RoomID) server.Adapter {
		return server.NewMemoryAdapter(log, room)
	})
}

func TestRoomManager_JoinCreatesRoom(t *testing.T) {
	defer goleak.VerifyNone(t)

	rooms := newTestRoomManager()

	adapter := rooms.Join(room, newMockClientWriter("client1"))
	require.NotNil(t, adapter)

	size, ok := rooms.Size(room)
	assert.True(t, ok)
	assert.Equal(t, 1, size)
	assert.Equal(t, 1, rooms.NumRooms())
}

func TestRoomManager_SameRoomSharedAdapter(t *testing.T) {
	defer goleak.VerifyNone(t)

	rooms := newTestRoomManager()

	adapter1 := rooms.Join(room, newMockClientWriter("client1"))
	adapter2 := rooms.Join(room, newMockClientWriter("client2"))

	assert.True(t, adapter1 == adapter2, "adapters should be the same")

	size, ok := rooms.Size(room)
	assert.True(t, ok)
	assert.Equal(t, 2, size)
	assert.Equal(t, 1, rooms.NumRooms())
}

func TestRoomManager_EmptyRoomRemoved(t *testing.T) {
	defer goleak.VerifyNone(t)

	rooms := newTestRoomManager()

	rooms.Join(room, newMockClientWriter("client1"))
	rooms.Join(room, newMockClientWriter("client2"))

	rooms.Leave(room, "client1")

	size, ok := rooms.Size(room)
	assert.True(t, ok, "room must survive while a member remains")
	assert.Equal(t, 1, size)

	rooms.Leave(room, "client2")

	_, ok = rooms.Size(room)
	assert.False(t, ok, "empty room must be removed")
	assert.Equal(t, 0, rooms.NumRooms())

	// A new join after removal gets a fresh adapter.
	adapter := rooms.Join(room, newMockClientWriter("client3"))
	require.NotNil(t, adapter)
	assert.Equal(t, 1, rooms.NumRooms())
}

func TestRoomManager_LeaveIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	rooms := newTestRoomManager()

	rooms.Join(room, newMockClientWriter("client1"))

	rooms.Leave(room, "client1")
	rooms.Leave(room, "client1")
	rooms.Leave("no-such-room", "client1")

	assert.Equal(t, 0, rooms.NumRooms())
}

func TestRoomManager_ConcurrentChurn(t *testing.T) {
	defer goleak.VerifyNone(t)

	rooms := newTestRoomManager()

	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		i := i

		wg.Add(1)

		go func() {
			defer wg.Done()

			clientID := identifiers.ClientID(fmt.Sprintf("client%d", i))

			for j := 0; j < 50; j++ {
				rooms.Join(room, newMockClientWriter(clientID))
				rooms.Leave(room, clientID)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 0, rooms.NumRooms(), "all rooms must be cleaned up after churn")
}
