package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// ErrNotConnected is returned after Close.
var ErrNotConnected = errors.New("not connected")

const closeTimeout = time.Second

// Client is a bridge client, used by tools and tests.
//
// Do and ReadPush take turns on the connection; Close never waits for them
// and interrupts a pending read.
type Client struct {
	conn *websocket.Conn

	mu  sync.Mutex // serializes Do and ReadPush
	seq int64

	connected atomic.Bool

	pushMu sync.Mutex
	onPush func(Response)
}

// Dial connects to a bridge server at url (ws://host:port/path).
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", url, err)
	}
	c := &Client{conn: conn}
	c.connected.Store(true)
	return c, nil
}

// OnPush registers a handler for messages the server sends on its own.
// The handler runs after Do returns and may call back into the client.
func (c *Client) OnPush(f func(Response)) {
	c.pushMu.Lock()
	defer c.pushMu.Unlock()
	c.onPush = f
}

func (c *Client) pushHandler() func(Response) {
	c.pushMu.Lock()
	defer c.pushMu.Unlock()
	return c.onPush
}

// IsConnected returns connection status.
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// Do sends a request and waits for its response. Pushed messages read
// meanwhile go to the OnPush handler.
func (c *Client) Do(req Request) (Response, error) {
	var pushed []Response
	resp, err := c.roundTrip(req, &pushed)

	if f := c.pushHandler(); f != nil {
		for _, p := range pushed {
			f(p)
		}
	}
	return resp, err
}

func (c *Client) roundTrip(req Request, pushed *[]Response) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.IsConnected() {
		return Response{}, ErrNotConnected
	}
	c.seq++
	req.Seq = c.seq

	if err := c.conn.WriteJSON(req); err != nil {
		return Response{}, fmt.Errorf("sending %s: %w", req.Op, err)
	}

	for {
		var resp Response
		if err := c.conn.ReadJSON(&resp); err != nil {
			return Response{}, fmt.Errorf("reading %s reply: %w", req.Op, err)
		}
		if resp.Seq == req.Seq {
			return resp, nil
		}
		if resp.Seq == 0 {
			*pushed = append(*pushed, resp)
		}
	}
}

// ReadPush blocks until the server pushes a message or the client is
// closed.
func (c *Client) ReadPush() (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.IsConnected() {
		return Response{}, ErrNotConnected
	}
	for {
		var resp Response
		if err := c.conn.ReadJSON(&resp); err != nil {
			if !c.IsConnected() {
				return Response{}, ErrNotConnected
			}
			return Response{}, err
		}
		if resp.Seq == 0 {
			return resp, nil
		}
	}
}

// Close sends a close frame and closes the connection. A failed close frame
// is reported together with the close error.
func (c *Client) Close() error {
	if !c.connected.CompareAndSwap(true, false) {
		return nil
	}

	var frameErr error
	if err := c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(closeTimeout)); err != nil {
		frameErr = fmt.Errorf("sending close frame: %w", err)
	}

	return errors.Join(frameErr, c.conn.Close())
}
