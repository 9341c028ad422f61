package receiver

// State describes where a receiving session is in its lifecycle. It moves
// forward through the signaling phase and then follows the peer connection
// state.
type State int

const (
	StateNew State = iota
	// StateJoining is set after the join message was sent, before the relay
	// acknowledged it.
	StateJoining
	// StateJoined means the relay acknowledged the join and the session is
	// waiting for an offer.
	StateJoined
	// StateNegotiating is set once an offer was received and an answer sent.
	StateNegotiating
	StateConnected
	StateDisconnected
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateJoining:
		return "joining"
	case StateJoined:
		return "joined"
	case StateNegotiating:
		return "negotiating"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
