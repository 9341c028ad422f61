package receiver

import (
	"testing"

	"github.com/mirrorcast/mirrorcast/server/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWSURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"http://localhost:8787/ws", "ws://localhost:8787/ws", false},
		{"https://relay.example.com/ws", "wss://relay.example.com/ws", false},
		{"ws://localhost:8787/ws", "ws://localhost:8787/ws", false},
		{"wss://relay.example.com/ws", "wss://relay.example.com/ws", false},
		{"ftp://nope", "", true},
	}

	for _, tc := range tests {
		got, err := parseWSURL(tc.in)

		if tc.wantErr {
			require.Error(t, err, "url: %s", tc.in)

			continue
		}

		require.NoError(t, err, "url: %s", tc.in)
		assert.Equal(t, tc.want, got, "url: %s", tc.in)
	}
}

func TestNew_RequiresRoomID(t *testing.T) {
	_, err := New(Params{
		Log: test.NewLogger(),
		URL: "ws://localhost:8787/ws",
	})
	require.Error(t, err)
}
