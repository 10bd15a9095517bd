package exchange

import (
	"fmt"
	"io"

	"github.com/okvist/tlstalk/internal/logging"
	"github.com/okvist/tlstalk/internal/wire"
	"go.uber.org/zap"
)

// State identifies where the exchange loop is in its lifecycle.
type State int

const (
	StateStart State = iota
	StateSending
	StateAwaiting
	StateTerminating
	StateClosed
)

// String returns a human-readable state name
func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateSending:
		return "sending"
	case StateAwaiting:
		return "awaiting_response"
	case StateTerminating:
		return "terminating"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Conn is the stream the loop drives. *session.Session satisfies it; tests
// substitute an in-memory fake.
type Conn interface {
	io.ReadWriter
	// Shutdown performs the orderly close. Idempotent, best-effort.
	Shutdown() error
}

// Outbound is one message produced by a Provider, together with the
// termination decision attached to it.
type Outbound struct {
	// Data is the payload to transmit. Ignored when CloseNow is set.
	Data []byte
	// CloseAfterReply terminates the session once this round's reply has
	// been received.
	CloseAfterReply bool
	// CloseNow terminates the session without sending anything.
	CloseNow bool
}

// Provider supplies the next outbound message for a given step. Abstracting
// the message source keeps the loop testable without a terminal.
type Provider interface {
	Next(step int) (*Outbound, error)
}

// ReplyFunc observes each complete reply as it arrives.
type ReplyFunc func(step int, msg *wire.Message)

// Options tune a Loop. The zero value is usable.
type Options struct {
	// MaxChunk caps single reads from the stream; 0 means the wire default.
	MaxChunk int
	// OnReply, when set, is invoked for every received message.
	OnReply ReplyFunc
	// OnPeerClosed, when set, is invoked if the peer disconnects while a
	// reply is awaited.
	OnPeerClosed func()
	// Peer names the remote end in log fields.
	Peer string
}

// Loop is the exchange state machine. It owns the session for its lifetime
// and always releases it, whatever path Run exits through.
type Loop struct {
	conn     Conn
	reader   *wire.Reader
	provider Provider
	opts     Options

	state State
	step  int
}

// New creates a Loop over conn fed by provider.
func New(conn Conn, provider Provider, opts Options) *Loop {
	return &Loop{
		conn:     conn,
		reader:   wire.NewReaderSize(conn, opts.MaxChunk),
		provider: provider,
		opts:     opts,
		state:    StateStart,
	}
}

// State returns the loop's current state.
func (l *Loop) State() State {
	return l.state
}

// Steps returns how many complete request/response round-trips have
// occurred.
func (l *Loop) Steps() int {
	return l.step
}

// Run drives the conversation until a termination condition, then performs
// the session shutdown. Shutdown runs on every exit path, normal or not;
// a returned error has already been through cleanup.
func (l *Loop) Run() error {
	defer func() {
		l.state = StateTerminating
		_ = l.conn.Shutdown()
		l.state = StateClosed
	}()

	for {
		l.state = StateSending

		ob, err := l.provider.Next(l.step)
		if err != nil {
			if err == io.EOF {
				// Message source exhausted: same as an explicit
				// termination command
				return nil
			}
			return fmt.Errorf("message provider: %w", err)
		}
		if ob.CloseNow {
			logging.Info("Termination requested before send",
				zap.Int("step", l.step),
			)
			return nil
		}

		if err := wire.WriteAll(l.conn, ob.Data); err != nil {
			return err
		}
		logging.LogMessage(l.opts.Peer, "sent", ob.Data)

		l.state = StateAwaiting
		msg, err := l.reader.ReadMessage()
		if err != nil {
			if err == wire.ErrEndOfStream {
				logging.Info("Peer closed the connection",
					zap.String("remote_addr", l.opts.Peer),
					zap.Int("step", l.step),
				)
				if l.opts.OnPeerClosed != nil {
					l.opts.OnPeerClosed()
				}
				return nil
			}
			return err
		}
		logging.LogMessage(l.opts.Peer, "received", msg.Raw())

		if l.opts.OnReply != nil {
			l.opts.OnReply(l.step, msg)
		}
		l.step++

		if ob.CloseAfterReply {
			logging.Info("Termination condition reached",
				zap.Int("round_trips", l.step),
			)
			return nil
		}
	}
}
