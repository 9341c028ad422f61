package message

import (
	"encoding/json"

	"github.com/juju/errors"
	"github.com/mirrorcast/mirrorcast/server/identifiers"
)

var ErrUnknownMessageType = errors.New("unknown message type")

// wire is the flat JSON framing: one object per transport frame, with the
// type tag and the payload fields at the top level.
type wire struct {
	Type      Type               `json:"type"`
	RoomID    identifiers.RoomID `json:"roomId,omitempty"`
	Role      string             `json:"role,omitempty"`
	SDP       string             `json:"sdp,omitempty"`
	Candidate json.RawMessage    `json:"candidate,omitempty"`
	Reason    ErrorReason        `json:"reason,omitempty"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	w := wire{Type: m.Type}

	switch m.Type {
	case TypeJoin:
		w.RoomID = m.Payload.Join.RoomID
		w.Role = m.Payload.Join.Role
	case TypeJoined:
		w.RoomID = m.Payload.Joined.RoomID
	case TypeOffer:
		w.SDP = m.Payload.Offer.SDP
	case TypeAnswer:
		w.SDP = m.Payload.Answer.SDP
	case TypeICE:
		w.Candidate = m.Payload.ICE.Candidate
	case TypeError:
		w.Reason = m.Payload.Error.Reason
	default:
		return nil, errors.Annotatef(ErrUnknownMessageType, "marshal message: %+v", m)
	}

	b, err := json.Marshal(w)

	return b, errors.Annotatef(err, "marshal message: %+v", m)
}

func (m *Message) UnmarshalJSON(b []byte) error {
	var w wire

	if err := json.Unmarshal(b, &w); err != nil {
		return errors.Trace(err)
	}

	m.Type = w.Type
	m.Payload = Payload{}

	switch w.Type {
	case TypeJoin:
		m.Payload.Join = &Join{RoomID: w.RoomID, Role: w.Role}
	case TypeJoined:
		m.Payload.Joined = &Joined{RoomID: w.RoomID}
	case TypeOffer:
		m.Payload.Offer = &SessionDescription{SDP: w.SDP}
	case TypeAnswer:
		m.Payload.Answer = &SessionDescription{SDP: w.SDP}
	case TypeICE:
		m.Payload.ICE = &ICE{Candidate: w.Candidate}
	case TypeError:
		m.Payload.Error = &Error{Reason: w.Reason}
	default:
		return errors.Annotatef(ErrUnknownMessageType, "type: %q", w.Type)
	}

	return nil
}
