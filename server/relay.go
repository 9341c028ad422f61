package server

import (
	"net/http"

	"github.com/juju/errors"
	"github.com/mirrorcast/mirrorcast/server/identifiers"
	"github.com/mirrorcast/mirrorcast/server/logger"
	"github.com/mirrorcast/mirrorcast/server/message"
	"github.com/mirrorcast/mirrorcast/server/multierr"
)

// conn is the relay's view of one signaling connection: the transport plus
// at most one room membership. The adapter is non-nil exactly when room is
// set. Messages for one connection are handled sequentially, so conn needs
// no locking of its own.
type conn struct {
	client  *Client
	room    identifiers.RoomID
	adapter Adapter
}

// Relay routes signaling messages between members of the same room. It
// never inspects offer/answer/ice payloads and never closes a connection
// over a protocol error; a misbehaving client only ever hears about its own
// mistakes.
type Relay struct {
	log   logger.Logger
	wss   *WSS
	rooms *RoomManager
}

func NewRelay(log logger.Logger, wss *WSS, rooms *RoomManager) *Relay {
	return &Relay{
		log:   log.WithNamespaceAppended("relay"),
		wss:   wss,
		rooms: rooms,
	}
}

// Handler returns the websocket endpoint handler.
func (relay *Relay) Handler() http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		c := &conn{}

		relay.wss.HandleConn(w, r,
			func(event ConnEvent) {
				c.client = event.Client
				relay.handleMessage(c, event.Message)
			},
			func(event CleanupEvent) {
				c.client = event.Client
				relay.handleDisconnect(c)
			},
		)
	}

	return http.HandlerFunc(fn)
}

func (relay *Relay) handleMessage(c *conn, clientMessage ClientMessage) {
	log := relay.log.WithCtx(logger.Ctx{
		"client_id": c.client.ID(),
	})

	if err := clientMessage.Err; err != nil {
		reason := message.ErrorInvalidJSON

		if multierr.Is(err, message.ErrUnknownMessageType) {
			reason = message.ErrorUnknownType
		}

		log.Debug("Undecodable frame", logger.Ctx{
			"error": err,
		})
		relay.sendError(log, c, reason)

		return
	}

	msg := clientMessage.Message

	switch msg.Type {
	case message.TypeJoin:
		relay.handleJoin(log, c, *msg.Payload.Join)
	case message.TypeOffer, message.TypeAnswer, message.TypeICE:
		relay.handleForward(log, c, msg)
	default:
		// joined and error are relay-to-client only.
		relay.sendError(log, c, message.ErrorUnknownType)
	}
}

func (relay *Relay) handleJoin(log logger.Logger, c *conn, join message.Join) {
	if join.RoomID == "" {
		relay.sendError(log, c, message.ErrorMissingRoomID)

		return
	}

	// A connection belongs to at most one room. Re-joining moves it.
	if c.adapter != nil {
		relay.rooms.Leave(c.room, c.client.ID())
		c.room = ""
		c.adapter = nil
	}

	c.adapter = relay.rooms.Join(join.RoomID, c.client)
	c.room = join.RoomID

	prometheusRelayJoinTotal.Inc()

	log.Info("Joined room", logger.Ctx{
		"room_id": join.RoomID,
		"role":    join.Role,
	})

	if err := c.client.Write(message.NewJoined(join.RoomID)); err != nil {
		log.Error("Send joined ack", errors.Trace(err), nil)
	}
}

func (relay *Relay) handleForward(log logger.Logger, c *conn, msg message.Message) {
	if c.adapter == nil {
		relay.sendError(log, c, message.ErrorJoinFirst)

		return
	}

	log.Debug("Forward message", logger.Ctx{
		"type":    msg.Type,
		"room_id": c.room,
	})

	c.adapter.Broadcast(c.client.ID(), msg)
}

func (relay *Relay) handleDisconnect(c *conn) {
	if c.adapter == nil {
		return
	}

	relay.rooms.Leave(c.room, c.client.ID())
	c.room = ""
	c.adapter = nil

	relay.log.Info("Left room on disconnect", logger.Ctx{
		"client_id": c.client.ID(),
	})
}

func (relay *Relay) sendError(log logger.Logger, c *conn, reason message.ErrorReason) {
	prometheusRelayProtocolErrTotal.Inc()

	if err := c.client.Write(message.NewError(reason)); err != nil {
		log.Error("Send protocol error", errors.Trace(err), logger.Ctx{
			"reason": reason,
		})
	}
}
