package session

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"syscall"

	"github.com/okvist/tlstalk/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Acceptor owns the listening socket. It accepts exactly one inbound
// connection and upgrades it to a TLS session; this tool conducts a single
// one-shot session per process run.
type Acceptor struct {
	listener net.Listener
	tlsConf  *tls.Config

	mu     sync.Mutex
	closed bool
}

// Listen binds host:port over IPv4 with address reuse enabled, so a
// restarted process can rebind immediately. The Go runtime supplies the
// kernel's listen backlog; it is not configurable through the net package.
func Listen(host string, port int, tlsConf *tls.Config) (*Acceptor, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	listener, err := lc.Listen(context.Background(), "tcp4", addr)
	if err != nil {
		return nil, newError(KindStream, "listen", err)
	}

	logging.Info("Listening for a connection",
		zap.String("addr", listener.Addr().String()),
		zap.Any("tls_info", GetTLSInfo(tlsConf)),
	)

	return &Acceptor{listener: listener, tlsConf: tlsConf}, nil
}

// Addr returns the bound listening address.
func (a *Acceptor) Addr() net.Addr {
	return a.listener.Addr()
}

// AcceptOne blocks until one inbound connection arrives, then performs the
// TLS handshake and wraps the encrypted stream in a Session. The raw
// connection is closed on handshake failure.
func (a *Acceptor) AcceptOne() (*Session, error) {
	raw, err := a.listener.Accept()
	if err != nil {
		return nil, newError(KindStream, "accept", err)
	}

	remoteAddr := raw.RemoteAddr().String()
	logging.LogConnection(remoteAddr, "connection_accepted")

	tlsConn := tls.Server(raw, a.tlsConf)
	if err := tlsConn.Handshake(); err != nil {
		_ = raw.Close()
		return nil, newError(KindHandshake, "handshake", err)
	}

	state := tlsConn.ConnectionState()
	logging.LogTLSHandshake(remoteAddr, state.Version, state.CipherSuite, state.ServerName)

	return newSession(tlsConn), nil
}

// Close releases the listening socket. Safe to call more than once.
func (a *Acceptor) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true

	if err := a.listener.Close(); err != nil {
		logging.Error("Error closing listener", zap.Error(err))
		return err
	}
	return nil
}
