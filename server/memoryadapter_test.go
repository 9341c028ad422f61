package server_test

import (
	"sync"
	"testing"

	"github.com/juju/errors"
	"github.com/mirrorcast/mirrorcast/server"
	"github.com/mirrorcast/mirrorcast/server/identifiers"
	"github.com/mirrorcast/mirrorcast/server/message"
	"github.com/mirrorcast/mirrorcast/server/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const room = identifiers.RoomID("room1")

type mockClientWriter struct {
	id identifiers.ClientID

	mu       sync.Mutex
	messages []message.Message
	err      error
}

func newMockClientWriter(id identifiers.ClientID) *mockClientWriter {
	return &mockClientWriter{id: id}
}

func (w *mockClientWriter) ID() identifiers.ClientID {
	return w.id
}

func (w *mockClientWriter) Write(msg message.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return w.err
	}

	w.messages = append(w.messages, msg)

	return nil
}

func (w *mockClientWriter) Messages() []message.Message {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]message.Message(nil), w.messages...)
}

func TestMemoryAdapter_AddRemove(t *testing.T) {
	defer goleak.VerifyNone(t)

	adapter := server.NewMemoryAdapter(test.NewLogger(), room)

	client := newMockClientWriter("client1")
	adapter.Add(client)

	assert.Equal(t, []identifiers.ClientID{"client1"}, adapter.Clients())
	assert.Equal(t, 1, adapter.Size())

	adapter.Remove("client1")

	assert.Empty(t, adapter.Clients())
	assert.Equal(t, 0, adapter.Size())
}

func TestMemoryAdapter_BroadcastExcludesSender(t *testing.T) {
	defer goleak.VerifyNone(t)

	adapter := server.NewMemoryAdapter(test.NewLogger(), room)

	sender := newMockClientWriter("sender")
	peer1 := newMockClientWriter("peer1")
	peer2 := newMockClientWriter("peer2")

	adapter.Add(sender)
	adapter.Add(peer1)
	adapter.Add(peer2)

	msg := message.NewOffer("v=0 offer")
	adapter.Broadcast(sender.ID(), msg)

	assert.Empty(t, sender.Messages(), "sender must not receive its own message")
	require.Len(t, peer1.Messages(), 1)
	require.Len(t, peer2.Messages(), 1)
	assert.Equal(t, msg, peer1.Messages()[0])
	assert.Equal(t, msg, peer2.Messages()[0])
}

func TestMemoryAdapter_BroadcastSkipsUnsendableMember(t *testing.T) {
	defer goleak.VerifyNone(t)

	adapter := server.NewMemoryAdapter(test.NewLogger(), room)

	sender := newMockClientWriter("sender")
	broken := newMockClientWriter("broken")
	broken.err = errors.New("gone")
	healthy := newMockClientWriter("healthy")

	adapter.Add(sender)
	adapter.Add(broken)
	adapter.Add(healthy)

	adapter.Broadcast(sender.ID(), message.NewAnswer("v=0 answer"))

	// The failing member does not prevent delivery to the rest.
	require.Len(t, healthy.Messages(), 1)
}

func TestMemoryAdapter_EmitMissingClient(t *testing.T) {
	defer goleak.VerifyNone(t)

	adapter := server.NewMemoryAdapter(test.NewLogger(), room)

	err := adapter.Emit("nobody", message.NewJoined(room))
	assert.Error(t, err)
}
