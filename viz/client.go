package viz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"ccsched/viz/fastview"
)

const (
	maxMessageSize = 8192
	pubResolution  = 100 * time.Millisecond
	pingResolution = 200 * time.Millisecond
	pongWait       = pingResolution * 4
	readDeadline   = time.Second
	writeDeadline  = time.Second
)

// ErrPongDeadlineExceeded is returned from a client's Sync loop once its
// peer has missed enough pings to be considered gone.
var ErrPongDeadlineExceeded = errors.New("viz: client disconnected, pong deadline exceeded")

// ErrSockCongestion indicates too many waiters queued on one socket
// operation, serialized reads/writes included.
var ErrSockCongestion = errors.New("viz: socket operation failed due to congestion")

// client publishes one browser connection's element-update stream over its
// websocket, while concurrently checking liveness via ping/pong and
// draining any messages the browser sends (none expected today, but reads
// must run so the pong handler fires).
type client struct {
	updates <-chan []fastview.EleUpdate
	sock    *websock
}

func newClient(updates <-chan []fastview.EleUpdate, ws *websocket.Conn) *client {
	ws.SetReadLimit(maxMessageSize)
	return &client{updates: updates, sock: newWebsock(ws)}
}

// sync runs the read, ping, and publish loops concurrently and returns once
// any of them fails or ctx is cancelled.
func (c *client) sync(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error { return c.readMessages(groupCtx) })
	group.Go(func() error { return c.pingPong(groupCtx) })
	group.Go(func() error { return c.publish(groupCtx) })

	return group.Wait()
}

func (c *client) pingPong(ctx context.Context) error {
	pong := make(chan struct{})
	defer close(pong)
	c.sock.conn.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		case <-ctx.Done():
		}
		return nil
	})

	ticker := time.NewTicker(pingResolution)
	defer ticker.Stop()

	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			if err := c.ping(ctx); err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

func (c *client) ping(ctx context.Context) error {
	return c.sock.write(ctx, func(ws *websocket.Conn) error {
		return ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
	})
}

// readMessages keeps the websocket's read pump running so control frames
// (pong included) are processed; the browser sends no application messages.
func (c *client) readMessages(ctx context.Context) error {
	for {
		err := c.sock.read(ctx, func(ws *websocket.Conn) error {
			_, _, readErr := ws.ReadMessage()
			return readErr
		})
		if err != nil {
			return err
		}
	}
}

func (c *client) publish(ctx context.Context) error {
	lastSync := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case updates, ok := <-c.updates:
			if !ok {
				return nil
			}
			if time.Since(lastSync) < pubResolution {
				continue
			}
			lastSync = time.Now()

			err := c.sock.write(ctx, func(ws *websocket.Conn) error {
				if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					return fmt.Errorf("viz: set write deadline: %w", err)
				}
				return ws.WriteJSON(updates)
			})
			if err != nil {
				return err
			}
		}
	}
}

// websock serializes the one-reader/one-writer-at-a-time constraint a
// websocket.Conn imposes when read and write loops run on separate
// goroutines, via buffered channels standing in for mutexes.
type websock struct {
	readSem  chan struct{}
	writeSem chan struct{}
	conn     *websocket.Conn
}

func newWebsock(ws *websocket.Conn) *websock {
	return &websock{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		conn:     ws,
	}
}

func (s *websock) read(ctx context.Context, fn func(*websocket.Conn) error) error {
	select {
	case <-ctx.Done():
		return nil
	case s.readSem <- struct{}{}:
		defer func() { <-s.readSem }()
		return fn(s.conn)
	case <-time.After(readDeadline):
		return ErrSockCongestion
	}
}

func (s *websock) write(ctx context.Context, fn func(*websocket.Conn) error) error {
	select {
	case <-ctx.Done():
		return nil
	case s.writeSem <- struct{}{}:
		defer func() { <-s.writeSem }()
		return fn(s.conn)
	case <-time.After(writeDeadline):
		return ErrSockCongestion
	}
}
