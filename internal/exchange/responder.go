package exchange

import (
	"strings"

	"github.com/okvist/tlstalk/internal/logging"
	"github.com/okvist/tlstalk/internal/wire"
	"go.uber.org/zap"
)

// PageContent is the demo body served to every request.
var PageContent = []byte("Hello, HTTPS world!\n")

// Responder answers framed requests on one session with a fixed page. It is
// the serving counterpart of the Loop: read a request, reply, repeat until
// the peer asks to close or the stream ends.
type Responder struct {
	conn   Conn
	reader *wire.Reader
	opts   Options

	// Body is the response payload; defaults to PageContent.
	Body []byte
	// ContentType labels the response body; defaults to text/plain.
	ContentType string

	served int
}

// NewResponder creates a Responder over conn.
func NewResponder(conn Conn, opts Options) *Responder {
	return &Responder{
		conn:        conn,
		reader:      wire.NewReaderSize(conn, opts.MaxChunk),
		opts:        opts,
		Body:        PageContent,
		ContentType: "text/plain",
	}
}

// Served returns how many requests have been answered.
func (r *Responder) Served() int {
	return r.served
}

// Serve answers requests until the peer sends Connection: close or closes
// the stream. The session shutdown runs on every exit path.
func (r *Responder) Serve() error {
	defer func() {
		_ = r.conn.Shutdown()
	}()

	for {
		msg, err := r.reader.ReadMessage()
		if err != nil {
			if err == wire.ErrEndOfStream {
				logging.Info("Peer closed the connection",
					zap.String("remote_addr", r.opts.Peer),
					zap.Int("served", r.served),
				)
				return nil
			}
			return err
		}
		logging.LogMessage(r.opts.Peer, "received", msg.Raw())

		resp := wire.BuildResponse("200 OK", r.ContentType, r.Body)
		if err := wire.WriteAll(r.conn, resp); err != nil {
			return err
		}
		r.served++
		logging.LogMessage(r.opts.Peer, "sent", resp)

		if v, ok := msg.HeaderValue("Connection"); ok && strings.EqualFold(v, "close") {
			logging.Info("Peer requested close",
				zap.String("remote_addr", r.opts.Peer),
				zap.Int("served", r.served),
			)
			return nil
		}
	}
}
