package message_test

import (
	"encoding/json"
	"testing"

	"github.com/mirrorcast/mirrorcast/server/message"
	"github.com/mirrorcast/mirrorcast/server/multierr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_joinFlatFraming(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(message.NewJoin("r1", "viewer"))
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"join","roomId":"r1","role":"viewer"}`, string(b))

	var m message.Message

	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, message.TypeJoin, m.Type)
	require.NotNil(t, m.Payload.Join)
	assert.Equal(t, "r1", m.Payload.Join.RoomID.String())
}

func TestJSON_iceCandidateForwardedVerbatim(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"candidate":"candidate:1 1 udp 2122260223 192.0.2.1 54400 typ host","sdpMid":"0","sdpMLineIndex":0}`)

	b, err := json.Marshal(message.NewICE(raw))
	require.NoError(t, err)

	var m message.Message

	require.NoError(t, json.Unmarshal(b, &m))
	require.NotNil(t, m.Payload.ICE)
	assert.JSONEq(t, string(raw), string(m.Payload.ICE.Candidate))
}

func TestJSON_offerAnswerSDP(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(message.NewOffer("v=0 offer"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"offer","sdp":"v=0 offer"}`, string(b))

	var m message.Message

	require.NoError(t, json.Unmarshal([]byte(`{"type":"answer","sdp":"v=0 answer"}`), &m))
	require.NotNil(t, m.Payload.Answer)
	assert.Equal(t, "v=0 answer", m.Payload.Answer.SDP)
}

func TestJSON_errorReason(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(message.NewError(message.ErrorJoinFirst))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","reason":"join_first"}`, string(b))
}

func TestJSON_unknownType(t *testing.T) {
	t.Parallel()

	var m message.Message

	err := json.Unmarshal([]byte(`{"type":"subscribe"}`), &m)
	require.Error(t, err)
	assert.True(t, multierr.Is(err, message.ErrUnknownMessageType))
}

func TestJSON_marshalUnknownType(t *testing.T) {
	t.Parallel()

	_, err := json.Marshal(message.Message{Type: "bogus"})
	require.Error(t, err)
}
