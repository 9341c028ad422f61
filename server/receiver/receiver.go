package receiver

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/juju/errors"
	"github.com/mirrorcast/mirrorcast/server"
	"github.com/mirrorcast/mirrorcast/server/identifiers"
	"github.com/mirrorcast/mirrorcast/server/logger"
	"github.com/mirrorcast/mirrorcast/server/multierr"
	"github.com/pion/webrtc/v3"
	"nhooyr.io/websocket"
)

// RoleViewer is the advisory role sent when joining a room.
const RoleViewer = "viewer"

type Params struct {
	Log logger.Logger

	// API, when nil, is built with NewAPI.
	API *webrtc.API

	ICEServers []server.ICEServer

	// URL is the relay's websocket endpoint, http(s):// or ws(s)://.
	URL    string
	RoomID identifiers.RoomID

	// Insecure disables TLS certificate validation when dialing.
	Insecure bool

	// IVFPath, when set, records incoming VP8 video to an IVF file.
	IVFPath string

	OnStateChange func(State)
}

// Receiver joins a room as a viewer and negotiates a receive-only peer
// connection with the broadcasting peer. At most one session is active:
// starting a new one tears the previous one down first.
type Receiver struct {
	params Params
	log    logger.Logger
	api    *webrtc.API
	wsURL  string

	mu      sync.Mutex
	session *Session
}

func New(params Params) (*Receiver, error) {
	log := params.Log.WithNamespaceAppended("receiver")

	api := params.API

	if api == nil {
		var err error

		api, err = NewAPI(log)
		if err != nil {
			return nil, errors.Annotate(err, "new api")
		}
	}

	wsURL, err := parseWSURL(params.URL)
	if err != nil {
		return nil, errors.Trace(err)
	}

	if params.RoomID == "" {
		return nil, errors.Errorf("room id must not be empty")
	}

	return &Receiver{
		params: params,
		log:    log,
		api:    api,
		wsURL:  wsURL,
	}, nil
}

func parseWSURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Annotatef(err, "parse url: %s", rawURL)
	}

	switch u.Scheme {
	case "ws", "wss":
	case "http", "https":
		u.Scheme = "ws" + strings.TrimPrefix(u.Scheme, "http")
	default:
		return "", errors.Errorf("only http(s):// or ws(s):// supported, but got: %s", rawURL)
	}

	return u.String(), nil
}

// Start dials the relay, joins the room and begins handling signaling
// messages in the background. Any previously started session is closed
// first. The returned session can be observed via State and Done.
func (r *Receiver) Start(ctx context.Context) (*Session, error) {
	if err := r.Stop(); err != nil {
		r.log.Error("Close previous session", errors.Trace(err), nil)
	}

	ws, _, err := websocket.Dial(ctx, r.wsURL, &websocket.DialOptions{
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: r.params.Insecure,
				},
			},
		},
	})
	if err != nil {
		return nil, errors.Annotatef(err, "dial WS: %s", r.wsURL)
	}

	wsClient := server.NewClient(ws)

	log := r.log.WithCtx(logger.Ctx{
		"client_id": wsClient.ID(),
		"room_id":   r.params.RoomID,
	})

	pc, err := r.api.NewPeerConnection(webrtc.Configuration{
		ICEServers: webrtcICEServers(r.params.ICEServers),
	})
	if err != nil {
		ws.Close(websocket.StatusInternalError, "")

		return nil, errors.Annotate(err, "new peer connection")
	}

	// Receive-only: we never send media back to the broadcaster.
	_, err = pc.AddTransceiverFromKind(
		webrtc.RTPCodecTypeVideo,
		webrtc.RtpTransceiverInit{
			Direction: webrtc.RTPTransceiverDirectionRecvonly,
		},
	)
	if err != nil {
		pc.Close()
		ws.Close(websocket.StatusInternalError, "")

		return nil, errors.Annotate(err, "add video transceiver")
	}

	session := NewSession(SessionParams{
		Log:            log,
		RoomID:         r.params.RoomID,
		Role:           RoleViewer,
		PeerConnection: pc,
		Writer:         wsClient,
		OnStateChange:  r.params.OnStateChange,
	})

	sink := newTrackSink(trackSinkParams{
		Log:        log,
		RTCPWriter: pc,
		IVFPath:    r.params.IVFPath,
		Done:       session.Done(),
	})

	pc.OnICECandidate(session.SendCandidate)
	pc.OnConnectionStateChange(session.HandleConnectionStateChange)
	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		sink.HandleTrack(track)
	})

	if err := session.Join(); err != nil {
		session.Close()
		ws.Close(websocket.StatusInternalError, "")

		return nil, errors.Annotate(err, "join room")
	}

	r.mu.Lock()
	r.session = session
	r.mu.Unlock()

	go func() {
		// Unblock the read loop once the session goes away.
		select {
		case <-session.Done():
		case <-ctx.Done():
		}

		ws.Close(websocket.StatusNormalClosure, "")
	}()

	go func() {
		defer session.Close()

		for clientMessage := range wsClient.Subscribe(ctx) {
			if clientMessage.Err != nil {
				// Relay frames are trusted, but a decode failure must not end
				// the session.
				log.Error("Decode message", errors.Trace(clientMessage.Err), nil)

				continue
			}

			if err := session.HandleMessage(clientMessage.Message); err != nil {
				log.Error("Handle message", errors.Trace(err), nil)
			}
		}

		if err := wsClient.Err(); err != nil && !multierr.Is(err, context.Canceled) {
			status := websocket.CloseStatus(errors.Cause(err))
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				log.Error("Websocket closed", errors.Trace(err), nil)
			}
		}

		sink.Wait()
	}()

	return session, nil
}

// Session returns the active session, nil when none was started.
func (r *Receiver) Session() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.session
}

// Stop closes the active session, if any. It is safe to call multiple
// times.
func (r *Receiver) Stop() error {
	r.mu.Lock()
	session := r.session
	r.session = nil
	r.mu.Unlock()

	if session == nil {
		return nil
	}

	return errors.Trace(session.Close())
}
