package wire

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// DefaultMaxChunk is how many bytes a single read from the stream may
// return at most.
const DefaultMaxChunk = 4096

// ErrEndOfStream reports that the peer closed the connection before a
// complete message boundary was seen. Partial header bytes, if any, are
// discarded rather than surfaced as a half-parsed message.
var ErrEndOfStream = errors.New("wire: end of stream")

// Reader assembles logical messages from a byte stream, one at a time.
// Bytes read past the end of a message are retained for the next call.
type Reader struct {
	src      io.Reader
	maxChunk int
	buf      []byte
	eof      bool
}

// NewReader returns a Reader with the default chunk size.
func NewReader(src io.Reader) *Reader {
	return NewReaderSize(src, DefaultMaxChunk)
}

// NewReaderSize returns a Reader that reads at most maxChunk bytes from the
// stream per read call. Non-positive values fall back to DefaultMaxChunk.
func NewReaderSize(src io.Reader, maxChunk int) *Reader {
	if maxChunk <= 0 {
		maxChunk = DefaultMaxChunk
	}
	return &Reader{src: src, maxChunk: maxChunk}
}

// Buffered reports how many unconsumed bytes the Reader currently holds.
func (r *Reader) Buffered() int {
	return len(r.buf)
}

// fill performs one chunked read from the stream, appending whatever
// arrives to the receive buffer. A clean end of stream sets r.eof; any data
// delivered alongside it is kept.
func (r *Reader) fill() error {
	if r.eof {
		return nil
	}
	chunk := make([]byte, r.maxChunk)
	n, err := r.src.Read(chunk)
	if n > 0 {
		r.buf = append(r.buf, chunk[:n]...)
	}
	if err != nil {
		if err == io.EOF {
			r.eof = true
			return nil
		}
		return fmt.Errorf("wire: read: %w", err)
	}
	return nil
}

// ReadMessage reads from the stream until one complete message has been
// assembled.
//
// With a Content-Length header the message is the header block plus exactly
// that many body bytes. Without one, the message is only complete at stream
// close and spans everything received. ErrEndOfStream is returned when the
// peer closes before the header terminator arrives.
func (r *Reader) ReadMessage() (*Message, error) {
	terminator := []byte(headerTerminator)

	// Accumulate until the blank line marking the header/body boundary
	var boundary int
	for {
		if i := bytes.Index(r.buf, terminator); i >= 0 {
			boundary = i
			break
		}
		if r.eof {
			return nil, ErrEndOfStream
		}
		if err := r.fill(); err != nil {
			return nil, err
		}
	}

	header := append([]byte(nil), r.buf[:boundary]...)
	bodyStart := boundary + len(terminator)

	length, declared := scanContentLength(header)
	if !declared {
		// No declared length: the stream close is the only frame
		// boundary, so this is the final message of the session.
		for !r.eof {
			if err := r.fill(); err != nil {
				return nil, err
			}
		}
		body := append([]byte(nil), r.buf[bodyStart:]...)
		r.buf = nil
		return &Message{Header: header, Body: body}, nil
	}

	for len(r.buf)-bodyStart < length {
		if r.eof {
			// Truncated body at end of stream: best effort, return
			// whatever accumulated rather than failing hard
			body := append([]byte(nil), r.buf[bodyStart:]...)
			r.buf = nil
			return &Message{Header: header, Body: body}, nil
		}
		if err := r.fill(); err != nil {
			return nil, err
		}
	}

	body := append([]byte(nil), r.buf[bodyStart:bodyStart+length]...)
	// Bytes past the declared length belong to the next message
	r.buf = append([]byte(nil), r.buf[bodyStart+length:]...)
	return &Message{Header: header, Body: body}, nil
}

// WriteAll writes data to w in full, retrying short writes until every byte
// has been transmitted.
func WriteAll(w io.Writer, data []byte) error {
	for len(data) > 0 {
		n, err := w.Write(data)
		if err != nil {
			return fmt.Errorf("wire: write: %w", err)
		}
		data = data[n:]
	}
	return nil
}
