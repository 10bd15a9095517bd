package session

import (
	"crypto/tls"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/okvist/tlstalk/internal/logging"
	"go.uber.org/zap"
)

// Session is an established, authenticated, encrypted byte stream bound to
// exactly one peer. It is created by an Acceptor and destroyed by Shutdown.
type Session struct {
	conn *tls.Conn
	id   string
	peer net.Addr

	mu     sync.Mutex
	closed bool
}

func newSession(conn *tls.Conn) *Session {
	s := &Session{
		conn: conn,
		id:   uuid.NewString(),
		peer: conn.RemoteAddr(),
	}
	logging.Info("Session established",
		zap.String("session_id", s.id),
		zap.String("remote_addr", s.peer.String()),
	)
	return s
}

// ID returns the session's unique identifier, carried through log fields.
func (s *Session) ID() string {
	return s.id
}

// Peer returns the remote address of the connected peer.
func (s *Session) Peer() net.Addr {
	return s.peer
}

// Read reads from the encrypted stream. io.EOF passes through untouched so
// framing code can detect the peer's half-close.
func (s *Session) Read(p []byte) (int, error) {
	return s.conn.Read(p)
}

// Write writes to the encrypted stream.
func (s *Session) Write(p []byte) (int, error) {
	return s.conn.Write(p)
}

// Shutdown performs the TLS closure handshake (close_notify) before
// releasing the underlying socket, giving the peer a chance to acknowledge
// instead of seeing a reset.
//
// Shutdown is best-effort and idempotent: failures are logged and
// swallowed, and calling it on an already-closed session is a no-op.
func (s *Session) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.conn.CloseWrite(); err != nil {
		logging.Warn("close_notify failed",
			zap.String("session_id", s.id),
			zap.Error(err),
		)
	}
	if err := s.conn.Close(); err != nil {
		logging.Warn("Error closing session transport",
			zap.String("session_id", s.id),
			zap.Error(err),
		)
	}

	logging.LogConnection(s.peer.String(), "session_closed")
	return nil
}
