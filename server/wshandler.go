package server

import (
	"context"
	"net/http"
	"time"

	"github.com/juju/errors"
	"github.com/mirrorcast/mirrorcast/server/logger"
	"github.com/mirrorcast/mirrorcast/server/multierr"
	"nhooyr.io/websocket"
)

const pingInterval = 25 * time.Second

// WSS accepts websocket connections and pumps their messages to a
// per-connection handler. Room membership is not decided here; connections
// join rooms by sending a join message, which the handler interprets.
type WSS struct {
	log logger.Logger
}

func NewWSS(log logger.Logger) *WSS {
	return &WSS{
		log: log.WithNamespaceAppended("wss"),
	}
}

// ConnEvent is one message received on a connection.
type ConnEvent struct {
	Client  *Client
	Message ClientMessage
}

// CleanupEvent fires exactly once when the connection is gone, regardless of
// how it ended.
type CleanupEvent struct {
	Client *Client
}

// HandleConn accepts the websocket, generates a client ID, and invokes
// handleMessage for every received frame in arrival order. cleanup runs
// after the read loop ends for any reason.
func (wss *WSS) HandleConn(
	w http.ResponseWriter,
	r *http.Request,
	handleMessage func(ConnEvent),
	cleanup func(CleanupEvent),
) {
	var err error

	start := time.Now()

	prometheusWSConnTotal.Inc()
	prometheusWSConnActive.Inc()

	defer func() {
		prometheusWSConnActive.Dec()

		if err != nil {
			prometheusWSConnErrTotal.Inc()
		}

		prometheusWSConnDuration.Observe(time.Since(start).Seconds())
	}()

	var c *websocket.Conn

	c, err = websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		wss.log.Error("Accept websocket connection", errors.Trace(err), nil)

		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := NewClient(c)

	log := wss.log.WithCtx(logger.Ctx{
		"client_id": client.ID(),
	})

	log.Info("New websocket connection", nil)

	defer func() {
		log.Info("Closing websocket connection", nil)
		c.Close(websocket.StatusInternalError, "")
	}()

	if cleanup != nil {
		defer cleanup(CleanupEvent{
			Client: client,
		})
	}

	// Transport-level keepalive. Ping waits for the pong, so it gets its own
	// timeout per attempt.
	NewPinger(ctx, pingInterval, func() {
		pingCtx, pingCancel := context.WithTimeout(ctx, pingInterval)
		defer pingCancel()

		if pingErr := c.Ping(pingCtx); pingErr != nil {
			log.Debug("Keepalive ping", logger.Ctx{
				"error": pingErr,
			})
		}
	})

	for msg := range client.Subscribe(ctx) {
		handleMessage(ConnEvent{
			Client:  client,
			Message: msg,
		})
	}

	err = client.Err()

	if multierr.Is(err, context.Canceled) {
		err = nil

		return
	}

	if websocket.CloseStatus(errors.Cause(err)) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(errors.Cause(err)) == websocket.StatusGoingAway {
		err = nil

		return
	}

	if err != nil {
		log.Info("Subscription ended", logger.Ctx{
			"error": err,
		})
	}
}
