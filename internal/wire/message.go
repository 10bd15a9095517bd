package wire

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// headerTerminator separates the header block from the body.
const headerTerminator = "\r\n\r\n"

// contentLengthPattern locates a Content-Length declaration anywhere in the
// header block. A pattern search is deliberately more lenient than strict
// header parsing: it tolerates unusual casing and stray whitespace.
var contentLengthPattern = regexp.MustCompile(`(?i)content-length:\s*(\d+)`)

// Message is one logical unit of communication: an optional header block and
// a body sized by a declared Content-Length.
type Message struct {
	// Header holds the raw header block bytes, without the terminator.
	Header []byte
	// Body holds the body bytes. Exactly Content-Length bytes when the
	// header declares one; otherwise everything up to stream close.
	Body []byte
}

// Raw returns the full wire representation of the message.
func (m *Message) Raw() []byte {
	raw := make([]byte, 0, len(m.Header)+len(headerTerminator)+len(m.Body))
	raw = append(raw, m.Header...)
	raw = append(raw, headerTerminator...)
	raw = append(raw, m.Body...)
	return raw
}

// HeaderLines returns the individual lines of the header block.
func (m *Message) HeaderLines() []string {
	if len(m.Header) == 0 {
		return nil
	}
	return strings.Split(string(m.Header), "\r\n")
}

// StartLine returns the first header line (the request or status line),
// or "" when the message has no header block.
func (m *Message) StartLine() string {
	lines := m.HeaderLines()
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

// HeaderValue looks up a header field by name, case-insensitively.
// The second return value reports whether the field was present.
func (m *Message) HeaderValue(name string) (string, bool) {
	for _, line := range m.HeaderLines() {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), name) {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}

// ContentLength extracts the declared body length from the header block.
// The second return value reports whether a declaration was found.
func (m *Message) ContentLength() (int, bool) {
	return scanContentLength(m.Header)
}

// Text renders the whole message as text, replacing invalid byte sequences.
// Decoding is best-effort: malformed encoding never fails.
func (m *Message) Text() string {
	return strings.ToValidUTF8(string(m.Raw()), "�")
}

// BodyText renders only the body, with the same best-effort decoding.
func (m *Message) BodyText() string {
	return strings.ToValidUTF8(string(m.Body), "�")
}

// scanContentLength searches header bytes for a Content-Length declaration.
func scanContentLength(header []byte) (int, bool) {
	match := contentLengthPattern.FindSubmatch(header)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(string(match[1]))
	if err != nil {
		// Digits too large for an int; treat as undeclared
		return 0, false
	}
	return n, true
}

// HeaderField is one name/value pair of an outbound message. Fields are kept
// as an ordered slice so encoded output is reproducible byte for byte.
type HeaderField struct {
	Name  string
	Value string
}

// Request describes an outbound request message to be framed onto the wire.
type Request struct {
	Method  string
	Path    string
	Headers []HeaderField
	Body    []byte
}

// Encode renders the request in wire format. A Content-Length field is
// appended automatically unless the caller already supplied one.
func (r *Request) Encode() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s HTTP/1.1\r\n", r.Method, r.Path)

	hasLength := false
	for _, h := range r.Headers {
		fmt.Fprintf(&b, "%s: %s\r\n", h.Name, h.Value)
		if strings.EqualFold(h.Name, "Content-Length") {
			hasLength = true
		}
	}
	if !hasLength {
		fmt.Fprintf(&b, "Content-Length: %d\r\n", len(r.Body))
	}
	b.WriteString("\r\n")
	b.Write(r.Body)
	return []byte(b.String())
}

// BuildResponse renders a response message with a status line, Content-Type
// and Content-Length headers, and the given body.
func BuildResponse(status string, contentType string, body []byte) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/1.1 %s\r\n", status)
	fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	fmt.Fprintf(&b, "Content-Length: %d\r\n", len(body))
	b.WriteString("\r\n")
	b.Write(body)
	return []byte(b.String())
}
