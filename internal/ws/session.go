package ws

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Session is one live player channel. The hub owns sessions after Register;
// nothing else holds the underlying connection.
type Session interface {
	// Send queues an envelope for delivery. It never blocks: a session whose
	// buffer is full is reported as dead via the returned error.
	Send(env Envelope) error
	// Close tears down the channel
	Close() error
}

// wsSession wraps a gorilla websocket connection with a buffered outbound
// queue drained by a single writer goroutine, so concurrent senders never
// touch the conn directly.
type wsSession struct {
	conn         *websocket.Conn
	send         chan Envelope
	writeTimeout time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

func newWSSession(conn *websocket.Conn, bufferSize int, writeTimeout time.Duration) *wsSession {
	return &wsSession{
		conn:         conn,
		send:         make(chan Envelope, bufferSize),
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
	}
}

// Send queues an envelope for the writer goroutine
func (s *wsSession) Send(env Envelope) error {
	select {
	case <-s.done:
		return fmt.Errorf("session closed")
	default:
	}

	select {
	case s.send <- env:
		return nil
	default:
		return fmt.Errorf("session send buffer full")
	}
}

// Close tears down the channel and stops the writer goroutine
func (s *wsSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.conn.Close()
	})
	return err
}

// writePump drains the send queue onto the connection. Runs as the only
// writer for this session; returns on the first write failure or on Close.
func (s *wsSession) writePump() {
	for {
		select {
		case <-s.done:
			return
		case env := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := s.conn.WriteJSON(env); err != nil {
				_ = s.Close()
				return
			}
		}
	}
}
