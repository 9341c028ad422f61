package message

import (
	"encoding/json"

	"github.com/mirrorcast/mirrorcast/server/identifiers"
)

// Message is the signaling wire contract: a tagged union over the message
// types exchanged between a mirroring peer and the relay. The relay never
// inspects offer/answer/ice contents, it only routes them.
type Message struct {
	Type    Type
	Payload Payload
}

// Payload should only have a single field set, depending on the type of the
// message.
type Payload struct {
	// Join is sent by a client to enter a room.
	Join *Join

	// Joined is the relay's acknowledgment, sent only to the joining client.
	Joined *Joined

	// Offer and Answer carry opaque session descriptions between peers.
	Offer  *SessionDescription
	Answer *SessionDescription

	// ICE carries an opaque candidate object between peers.
	ICE *ICE

	// Error is sent by the relay to the offending client only.
	Error *Error
}

type Type string

const (
	TypeJoin   Type = "join"
	TypeJoined Type = "joined"
	TypeOffer  Type = "offer"
	TypeAnswer Type = "answer"
	TypeICE    Type = "ice"
	TypeError  Type = "error"
)

type Join struct {
	RoomID identifiers.RoomID `json:"roomId"`
	// Role is advisory (e.g. "broadcaster" or "viewer") and is ignored by the
	// relay.
	Role string `json:"role,omitempty"`
}

type Joined struct {
	RoomID identifiers.RoomID `json:"roomId"`
}

type SessionDescription struct {
	SDP string `json:"sdp"`
}

// ICE wraps a candidate object. The candidate is kept as raw JSON so the
// relay can forward it without interpreting it.
type ICE struct {
	Candidate json.RawMessage `json:"candidate"`
}

type ErrorReason string

const (
	ErrorInvalidJSON   ErrorReason = "invalid_json"
	ErrorMissingRoomID ErrorReason = "missing_room_id"
	ErrorJoinFirst     ErrorReason = "join_first"
	ErrorUnknownType   ErrorReason = "unknown_type"
)

type Error struct {
	Reason ErrorReason `json:"reason"`
}

func NewJoin(roomID identifiers.RoomID, role string) Message {
	return Message{
		Type: TypeJoin,
		Payload: Payload{
			Join: &Join{RoomID: roomID, Role: role},
		},
	}
}

func NewJoined(roomID identifiers.RoomID) Message {
	return Message{
		Type: TypeJoined,
		Payload: Payload{
			Joined: &Joined{RoomID: roomID},
		},
	}
}

func NewOffer(sdp string) Message {
	return Message{
		Type: TypeOffer,
		Payload: Payload{
			Offer: &SessionDescription{SDP: sdp},
		},
	}
}

func NewAnswer(sdp string) Message {
	return Message{
		Type: TypeAnswer,
		Payload: Payload{
			Answer: &SessionDescription{SDP: sdp},
		},
	}
}

func NewICE(candidate json.RawMessage) Message {
	return Message{
		Type: TypeICE,
		Payload: Payload{
			ICE: &ICE{Candidate: candidate},
		},
	}
}

func NewError(reason ErrorReason) Message {
	return Message{
		Type: TypeError,
		Payload: Payload{
			Error: &Error{Reason: reason},
		},
	}
}
