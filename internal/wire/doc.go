// Package wire implements the framed text message format exchanged over a
// tlstalk session.
//
// Messages are HTTP-style: a CRLF-delimited header block terminated by a
// blank line, followed by a body whose size is declared by a Content-Length
// header.
//
// # Wire Format
//
//	<method> <path> HTTP/1.1\r\n
//	Header-Name: value\r\n
//	...
//	\r\n
//	<body bytes, length = Content-Length if present>
//
// # Framing Rules
//
// The Reader assembles one logical message at a time from a byte stream:
//   - Bytes are accumulated in chunks until the header terminator
//     (\r\n\r\n) is seen.
//   - When a Content-Length header is present, reading continues until
//     exactly that many body bytes have arrived. Surplus bytes belong to
//     the next message and stay buffered.
//   - When Content-Length is absent, the message is only complete when the
//     peer half-closes the stream. Such a message is necessarily the final
//     one of the session; nothing after it can be framed.
//   - A zero-length read before the header terminator yields ErrEndOfStream,
//     never a partially parsed Message.
//
// Content-Length is located by a case-insensitive pattern search over the
// header block rather than strict header parsing, mirroring how lenient
// peers scan for it.
//
// # Usage Example
//
//	r := wire.NewReader(conn)
//	msg, err := r.ReadMessage()
//	if err == wire.ErrEndOfStream {
//	    // peer closed the connection
//	}
//	fmt.Println(msg.Text())
//
// # Error Handling
//
// Framing anomalies degrade gracefully: a body truncated by stream close is
// returned as-is, and malformed text decodes best-effort. Only transport
// read errors surface as errors.
//
// # Thread Safety
//
// A Reader owns its buffered state and must not be shared between
// goroutines. Message values are immutable after construction.
package wire
