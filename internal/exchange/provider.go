package exchange

import (
	"io"
	"strings"

	"github.com/okvist/tlstalk/internal/wire"
)

// Termination commands recognized by the CommandProvider, case-insensitive.
const (
	// CommandShutdown terminates the session immediately, without sending.
	CommandShutdown = "shutdown"
	// CommandExit is sent to the peer verbatim; the session terminates
	// after the peer's reply.
	CommandExit = "exit"
)

// DefaultRounds is how many demo round-trips a RequestProvider performs.
const DefaultRounds = 2

const demoUserAgent = "tlstalk/1.0"

// LineFunc supplies the next operator line. io.EOF means the source is
// exhausted.
type LineFunc func() (string, error)

// CommandProvider turns operator input lines into outbound messages. Lines
// are forwarded verbatim except for the termination commands.
type CommandProvider struct {
	next LineFunc
}

// NewCommandProvider creates a provider reading lines from next.
func NewCommandProvider(next LineFunc) *CommandProvider {
	return &CommandProvider{next: next}
}

// Next implements Provider.
func (p *CommandProvider) Next(step int) (*Outbound, error) {
	line, err := p.next()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case CommandShutdown:
		return &Outbound{CloseNow: true}, nil
	case CommandExit:
		return &Outbound{Data: []byte(line), CloseAfterReply: true}, nil
	}
	return &Outbound{Data: []byte(line)}, nil
}

// RequestProvider produces the fixed demo request for a bounded number of
// rounds. The final round carries a Connection: close header and terminates
// the session after its reply.
type RequestProvider struct {
	// Host fills the request's Host header.
	Host string
	// Rounds bounds the number of round-trips; non-positive values mean
	// DefaultRounds.
	Rounds int
}

// NewRequestProvider creates a demo driver for the given host.
func NewRequestProvider(host string, rounds int) *RequestProvider {
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	return &RequestProvider{Host: host, Rounds: rounds}
}

// Next implements Provider.
func (p *RequestProvider) Next(step int) (*Outbound, error) {
	rounds := p.Rounds
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	last := step >= rounds-1

	headers := []wire.HeaderField{
		{Name: "Host", Value: p.Host},
		{Name: "User-Agent", Value: demoUserAgent},
		{Name: "Accept", Value: "*/*"},
	}
	if last {
		headers = append(headers, wire.HeaderField{Name: "Connection", Value: "close"})
	}

	req := wire.Request{
		Method:  "GET",
		Path:    "/",
		Headers: headers,
		Body:    []byte("A"),
	}
	return &Outbound{Data: req.Encode(), CloseAfterReply: last}, nil
}
