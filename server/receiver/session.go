package receiver

import (
	"encoding/json"
	"sync"

	"github.com/juju/errors"
	"github.com/mirrorcast/mirrorcast/server/identifiers"
	"github.com/mirrorcast/mirrorcast/server/logger"
	"github.com/mirrorcast/mirrorcast/server/message"
	"github.com/pion/webrtc/v3"
)

// peerConnection is the subset of webrtc.PeerConnection the session drives.
type peerConnection interface {
	SetRemoteDescription(webrtc.SessionDescription) error
	AddICECandidate(webrtc.ICECandidateInit) error
	CreateAnswer(*webrtc.AnswerOptions) (webrtc.SessionDescription, error)
	SetLocalDescription(webrtc.SessionDescription) error
	Close() error
}

// messageWriter sends signaling messages to the relay.
type messageWriter interface {
	Write(message.Message) error
}

// Session is a single negotiation with a broadcasting peer through the
// relay. It acts as the answerer: it waits for an offer, replies with an
// answer, and exchanges ICE candidates.
//
// Messages are handled sequentially by the owning loop, so handleOffer and
// handleICE never run concurrently and the pending candidate queue needs no
// lock.
type Session struct {
	log    logger.Logger
	roomID identifiers.RoomID
	role   string
	pc     peerConnection
	writer messageWriter

	// pending holds remote candidates that arrived before the offer. They are
	// applied in arrival order right after the remote description is set.
	pending       []webrtc.ICECandidateInit
	remoteDescSet bool

	stateMu       sync.Mutex
	state         State
	onStateChange func(State)

	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

type SessionParams struct {
	Log            logger.Logger
	RoomID         identifiers.RoomID
	Role           string
	PeerConnection peerConnection
	Writer         messageWriter

	// OnStateChange, when set, is called on every state transition. It is
	// called from the message loop or from peer connection callbacks, so it
	// must not block.
	OnStateChange func(State)
}

func NewSession(params SessionParams) *Session {
	return &Session{
		log:           params.Log.WithNamespaceAppended("session"),
		roomID:        params.RoomID,
		role:          params.Role,
		pc:            params.PeerConnection,
		writer:        params.Writer,
		state:         StateNew,
		onStateChange: params.OnStateChange,
		done:          make(chan struct{}),
	}
}

// Join sends the join message for the configured room.
func (s *Session) Join() error {
	if err := s.writer.Write(message.NewJoin(s.roomID, s.role)); err != nil {
		return errors.Annotate(err, "send join")
	}

	s.setState(StateJoining)

	return nil
}

// HandleMessage processes one message from the relay. The caller must invoke
// it from a single goroutine.
func (s *Session) HandleMessage(msg message.Message) error {
	switch msg.Type {
	case message.TypeJoined:
		s.log.Info("Joined room", logger.Ctx{
			"room_id": s.roomID,
		})
		s.setState(StateJoined)

		return nil
	case message.TypeOffer:
		if msg.Payload.Offer == nil {
			return errors.Errorf("offer message without sdp")
		}

		return errors.Annotate(s.handleOffer(msg.Payload.Offer.SDP), "handle offer")
	case message.TypeICE:
		if msg.Payload.ICE == nil {
			return errors.Errorf("ice message without candidate")
		}

		return errors.Annotate(s.handleICE(msg.Payload.ICE.Candidate), "handle ice")
	case message.TypeAnswer:
		// Another viewer's answer relayed to us. Not ours to act on.
		s.log.Debug("Ignoring answer from another room member", nil)

		return nil
	case message.TypeError:
		reason := message.ErrorReason("")
		if msg.Payload.Error != nil {
			reason = msg.Payload.Error.Reason
		}

		s.log.Error("Relay error", errors.Errorf("reason: %s", reason), nil)

		return nil
	default:
		s.log.Warn("Ignoring unexpected message", logger.Ctx{
			"type": msg.Type,
		})

		return nil
	}
}

func (s *Session) handleOffer(sdp string) error {
	s.log.Info("Remote offer", nil)
	s.log.Trace("Remote offer sdp", logger.Ctx{
		"sdp": sdp,
	})

	err := s.pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer,
		SDP:  sdp,
	})
	if err != nil {
		return errors.Annotate(err, "set remote description")
	}

	s.remoteDescSet = true
	s.flushPending()

	answer, err := s.pc.CreateAnswer(nil)
	if err != nil {
		return errors.Annotate(err, "create answer")
	}

	if err := s.pc.SetLocalDescription(answer); err != nil {
		return errors.Annotate(err, "set local description")
	}

	if err := s.writer.Write(message.NewAnswer(answer.SDP)); err != nil {
		return errors.Annotate(err, "send answer")
	}

	s.setState(StateNegotiating)

	return nil
}

// flushPending applies queued candidates in arrival order. A candidate that
// fails to apply is logged and skipped so the rest of the queue still goes
// through. The queue is cleared either way.
func (s *Session) flushPending() {
	for _, candidate := range s.pending {
		if err := s.pc.AddICECandidate(candidate); err != nil {
			s.log.Error("Add queued ICE candidate", errors.Trace(err), nil)
		}
	}

	s.pending = nil
}

func (s *Session) handleICE(raw json.RawMessage) error {
	var candidate webrtc.ICECandidateInit

	if err := json.Unmarshal(raw, &candidate); err != nil {
		// A malformed candidate is dropped, the session stays up.
		s.log.Error("Decode ICE candidate", errors.Trace(err), nil)

		return nil
	}

	if !s.remoteDescSet {
		s.log.Debug("Queueing ICE candidate until offer arrives", logger.Ctx{
			"pending": len(s.pending) + 1,
		})
		s.pending = append(s.pending, candidate)

		return nil
	}

	return errors.Annotate(s.pc.AddICECandidate(candidate), "add ice candidate")
}

// SendCandidate sends a local ICE candidate to the broadcaster. It is meant
// to be wired into OnICECandidate.
func (s *Session) SendCandidate(candidate *webrtc.ICECandidate) {
	if candidate == nil {
		// End of candidates.
		return
	}

	raw, err := json.Marshal(candidate.ToJSON())
	if err != nil {
		s.log.Error("Encode ICE candidate", errors.Trace(err), nil)

		return
	}

	if err := s.writer.Write(message.NewICE(raw)); err != nil {
		s.log.Error("Send ICE candidate", errors.Trace(err), nil)
	}
}

// HandleConnectionStateChange follows the peer connection state once
// negotiation is done. It is meant to be wired into OnConnectionStateChange.
func (s *Session) HandleConnectionStateChange(connectionState webrtc.PeerConnectionState) {
	s.log.Info("Peer connection state changed", logger.Ctx{
		"connection_state": connectionState,
	})

	switch connectionState {
	case webrtc.PeerConnectionStateConnected:
		s.setState(StateConnected)
	case webrtc.PeerConnectionStateDisconnected:
		s.setState(StateDisconnected)
	case webrtc.PeerConnectionStateFailed:
		s.setState(StateFailed)
		_ = s.Close()
	case webrtc.PeerConnectionStateClosed:
		_ = s.Close()
	}
}

func (s *Session) setState(state State) {
	s.stateMu.Lock()

	if s.state == StateClosed || s.state == state {
		s.stateMu.Unlock()

		return
	}

	s.state = state
	onStateChange := s.onStateChange
	s.stateMu.Unlock()

	s.log.Debug("State changed", logger.Ctx{
		"state": state,
	})

	if onStateChange != nil {
		onStateChange(state)
	}
}

// State returns the current session state.
func (s *Session) State() State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	return s.state
}

// Done is closed when the session has been closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close tears the session down. It is idempotent.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.stateMu.Lock()
		s.state = StateClosed
		onStateChange := s.onStateChange
		s.stateMu.Unlock()

		if onStateChange != nil {
			onStateChange(StateClosed)
		}

		s.closeErr = errors.Annotate(s.pc.Close(), "close peer connection")

		close(s.done)
	})

	return errors.Trace(s.closeErr)
}
