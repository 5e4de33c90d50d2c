package backend

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	frameBuffer  = 64
	closeTimeout = time.Second
)

// Frame is one inbound message of the live stats channel. A frame with Err
// set is the last one before the channel closes.
type Frame struct {
	Data []byte
	Err  error
}

// Stream is an open live stats subscription.
type Stream interface {
	// Frames delivers frames in arrival order to a single consumer.
	Frames() <-chan Frame
	// Close ends the subscription. It is safe to call more than once.
	Close() error
}

type wsStream struct {
	conn      *websocket.Conn
	frames    chan Frame
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Subscribe opens the live stats channel.
func (c *Client) Subscribe(ctx context.Context) (Stream, error) {
	header := http.Header{}
	header.Set(SessionHeader, c.sessionID)
	conn, res, err := c.dialer.DialContext(ctx, c.StatsSocketURL(), header)
	if res != nil && res.Body != nil {
		if cerr := res.Body.Close(); cerr != nil {
			// Best-effort handshake body close.
			_ = cerr
		}
	}
	if err != nil {
		if res != nil {
			return nil, fmt.Errorf("failed to open stats stream: status %d: %w", res.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to open stats stream: %w", err)
	}
	s := &wsStream{
		conn:   conn,
		frames: make(chan Frame, frameBuffer),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func (s *wsStream) Frames() <-chan Frame {
	return s.frames
}

func (s *wsStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if werr := s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeTimeout)); werr != nil {
			// Peer may already be gone.
			_ = werr
		}
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

func (s *wsStream) readLoop() {
	defer close(s.frames)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.closed() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			s.emit(Frame{Err: fmt.Errorf("stats stream: %w", err)})
			return
		}
		if !s.emit(Frame{Data: data}) {
			return
		}
	}
}

// emit blocks until the consumer takes the frame or the stream is closed.
func (s *wsStream) emit(f Frame) bool {
	select {
	case s.frames <- f:
		return true
	case <-s.done:
		return false
	}
}

func (s *wsStream) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
