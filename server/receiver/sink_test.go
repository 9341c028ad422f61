package receiver

import (
	"sync"
	"testing"
	"time"

	"github.com/mirrorcast/mirrorcast/server/test"
	"github.com/pion/rtcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRTCPWriter struct {
	mu      sync.Mutex
	packets []rtcp.Packet
	got     chan struct{}
}

func newFakeRTCPWriter() *fakeRTCPWriter {
	return &fakeRTCPWriter{
		got: make(chan struct{}, 16),
	}
}

func (f *fakeRTCPWriter) WriteRTCP(pkts []rtcp.Packet) error {
	f.mu.Lock()
	f.packets = append(f.packets, pkts...)
	f.mu.Unlock()

	select {
	case f.got <- struct{}{}:
	default:
	}

	return nil
}

func (f *fakeRTCPWriter) Packets() []rtcp.Packet {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]rtcp.Packet(nil), f.packets...)
}

func TestTrackSink_KeyframeLoopSendsPLI(t *testing.T) {
	writer := newFakeRTCPWriter()
	done := make(chan struct{})

	sink := newTrackSink(trackSinkParams{
		Log:        test.NewLogger(),
		RTCPWriter: writer,
		Done:       done,
	})
	sink.pliInterval = time.Millisecond

	loopDone := make(chan struct{})

	go func() {
		defer close(loopDone)

		sink.keyframeLoop(sink.log, 1234)
	}()

	select {
	case <-writer.got:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for PLI")
	}

	close(done)
	<-loopDone

	packets := writer.Packets()
	require.NotEmpty(t, packets)

	pli, ok := packets[0].(*rtcp.PictureLossIndication)
	require.True(t, ok, "expected a PictureLossIndication")
	assert.Equal(t, uint32(1234), pli.MediaSSRC)
}
