package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/mirrorcast/mirrorcast/server/identifiers"
	"github.com/mirrorcast/mirrorcast/server/message"
	"github.com/mirrorcast/mirrorcast/server/uuid"
	"github.com/oxtoacart/bpool"
	"nhooyr.io/websocket"
)

type WSWriter interface {
	Write(ctx context.Context, typ websocket.MessageType, msg []byte) error
}

type WSReader interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
}

type WSReadWriter interface {
	WSReader
	WSWriter
}

// serializeBufPool is shared by all clients for encoding outgoing frames.
var serializeBufPool = bpool.NewBufferPool(64)

const defaultWriteTimeout = 5 * time.Second

// ClientMessage is one received frame. Err is set when the frame could not
// be decoded as a signaling message; the connection remains usable and the
// next frame will still be delivered.
type ClientMessage struct {
	Message message.Message
	Err     error
}

// Client is an abstraction for reading from and writing to a websocket using
// the signaling message contract.
type Client struct {
	id   identifiers.ClientID
	conn WSReadWriter

	errMu sync.RWMutex
	err   error
}

// NewClient creates a new websocket client with a generated ID.
func NewClient(conn WSReadWriter) *Client {
	return NewClientWithID(conn, "")
}

func NewClientWithID(conn WSReadWriter, id identifiers.ClientID) *Client {
	if id == "" {
		id = identifiers.ClientID(uuid.New())
	}

	return &Client{
		id:   id,
		conn: conn,
	}
}

func (c *Client) ID() identifiers.ClientID {
	return c.id
}

// WriteTimeout writes a message to the websocket, giving up after timeout.
func (c *Client) WriteTimeout(ctx context.Context, timeout time.Duration, msg message.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	buf := serializeBufPool.Get()
	defer serializeBufPool.Put(buf)

	if err := json.NewEncoder(buf).Encode(msg); err != nil {
		return errors.Annotate(err, "serialize message")
	}

	return errors.Annotate(
		c.conn.Write(ctx, websocket.MessageText, buf.Bytes()),
		"write message",
	)
}

// Write writes a message to the websocket with the default timeout. A slow
// or stalled peer fails its own write, it never blocks the caller beyond the
// timeout.
func (c *Client) Write(msg message.Message) error {
	err := c.WriteTimeout(context.Background(), defaultWriteTimeout, msg)

	return errors.Annotate(err, "client write")
}

func (c *Client) read(ctx context.Context) (ClientMessage, error) {
	typ, data, err := c.conn.Read(ctx)
	if err != nil {
		return ClientMessage{}, errors.Annotate(err, "read frame")
	}

	if typ != websocket.MessageText {
		return ClientMessage{
			Err: errors.Errorf("expected text frame, got: %d", typ),
		}, nil
	}

	var msg message.Message

	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{Err: errors.Trace(err)}, nil
	}

	return ClientMessage{Message: msg}, nil
}

// Err returns the error that ended the subscription, if any.
func (c *Client) Err() error {
	c.errMu.RLock()
	defer c.errMu.RUnlock()

	return c.err
}

// Subscribe reads frames from the websocket until a transport error occurs
// or ctx is done, then closes the returned channel. The terminating error is
// available via Err.
func (c *Client) Subscribe(ctx context.Context) <-chan ClientMessage {
	msgChan := make(chan ClientMessage)

	go func() {
		for {
			msg, err := c.read(ctx)
			if err != nil {
				c.errMu.Lock()
				close(msgChan)
				c.err = err
				c.errMu.Unlock()

				return
			}

			msgChan <- msg
		}
	}()

	return msgChan
}
