package wire

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// segmentReader returns its data in the exact segments given, then io.EOF.
// It lets tests pin chunk boundaries to arbitrary byte positions.
type segmentReader struct {
	segments [][]byte
}

func (r *segmentReader) Read(p []byte) (int, error) {
	for len(r.segments) > 0 && len(r.segments[0]) == 0 {
		r.segments = r.segments[1:]
	}
	if len(r.segments) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.segments[0])
	r.segments[0] = r.segments[0][n:]
	return n, nil
}

func segs(parts ...string) *segmentReader {
	r := &segmentReader{}
	for _, p := range parts {
		r.segments = append(r.segments, []byte(p))
	}
	return r
}

func TestReadMessage(t *testing.T) {
	tests := []struct {
		name    string
		src     io.Reader
		wantErr error
		verify  func(t *testing.T, msg *Message)
	}{
		{
			name: "single read, declared length",
			src:  segs("GET / HTTP/1.1\r\nHost: x\r\nContent-Length: 1\r\n\r\nA"),
			verify: func(t *testing.T, msg *Message) {
				if got := msg.StartLine(); got != "GET / HTTP/1.1" {
					t.Errorf("start line = %q", got)
				}
				if !bytes.Equal(msg.Body, []byte("A")) {
					t.Errorf("body = %q, want 'A'", msg.Body)
				}
			},
		},
		{
			name: "chunk boundary before header terminator",
			src:  segs("GET / HTTP/1.1\r\nContent-Length: 5", "\r\n\r\nhello"),
			verify: func(t *testing.T, msg *Message) {
				if !bytes.Equal(msg.Body, []byte("hello")) {
					t.Errorf("body = %q, want 'hello'", msg.Body)
				}
			},
		},
		{
			name: "chunk boundary inside header terminator",
			src:  segs("GET / HTTP/1.1\r\nContent-Length: 5\r\n", "\r", "\nhello"),
			verify: func(t *testing.T, msg *Message) {
				if !bytes.Equal(msg.Body, []byte("hello")) {
					t.Errorf("body = %q, want 'hello'", msg.Body)
				}
			},
		},
		{
			name: "chunk boundary after header terminator",
			src:  segs("GET / HTTP/1.1\r\nContent-Length: 5\r\n\r\n", "hello"),
			verify: func(t *testing.T, msg *Message) {
				if !bytes.Equal(msg.Body, []byte("hello")) {
					t.Errorf("body = %q, want 'hello'", msg.Body)
				}
			},
		},
		{
			name: "chunk boundary inside body",
			src:  segs("GET / HTTP/1.1\r\nContent-Length: 10\r\n\r\nhel", "lo wo", "rld"),
			verify: func(t *testing.T, msg *Message) {
				if !bytes.Equal(msg.Body, []byte("hello worl")) {
					t.Errorf("body = %q, want 'hello worl'", msg.Body)
				}
			},
		},
		{
			name: "zero-length body is a complete message",
			src:  segs("GET / HTTP/1.1\r\nContent-Length: 0\r\n\r\n"),
			verify: func(t *testing.T, msg *Message) {
				if len(msg.Body) != 0 {
					t.Errorf("body length = %d, want 0", len(msg.Body))
				}
				if got := msg.StartLine(); got != "GET / HTTP/1.1" {
					t.Errorf("start line = %q", got)
				}
			},
		},
		{
			name: "content-length header is matched case-insensitively",
			src:  segs("GET / HTTP/1.1\r\ncOnTeNt-LeNgTh: 3\r\n\r\nabcdef"),
			verify: func(t *testing.T, msg *Message) {
				if !bytes.Equal(msg.Body, []byte("abc")) {
					t.Errorf("body = %q, want 'abc'", msg.Body)
				}
			},
		},
		{
			name: "no content-length reads until stream close",
			src:  segs("HTTP/1.1 200 OK\r\nServer: x\r\n\r\nfirst", " second", " third"),
			verify: func(t *testing.T, msg *Message) {
				if !bytes.Equal(msg.Body, []byte("first second third")) {
					t.Errorf("body = %q", msg.Body)
				}
			},
		},
		{
			name:    "partial headers then close yields end of stream",
			src:     segs("GET / HTTP/1.1\r\nHost: x\r\n"),
			wantErr: ErrEndOfStream,
		},
		{
			name:    "empty stream yields end of stream",
			src:     segs(),
			wantErr: ErrEndOfStream,
		},
		{
			name: "body truncated at close returns what accumulated",
			src:  segs("GET / HTTP/1.1\r\nContent-Length: 100\r\n\r\nshort"),
			verify: func(t *testing.T, msg *Message) {
				if !bytes.Equal(msg.Body, []byte("short")) {
					t.Errorf("body = %q, want 'short'", msg.Body)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.src)
			msg, err := r.ReadMessage()

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadMessage() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadMessage() error = %v", err)
			}
			if tt.verify != nil {
				tt.verify(t, msg)
			}
		})
	}
}

func TestReadMessage_SurplusRetained(t *testing.T) {
	first := "GET /a HTTP/1.1\r\nContent-Length: 1\r\n\r\nA"
	second := "GET /b HTTP/1.1\r\nContent-Length: 2\r\n\r\nBB"

	// Deliver both messages with a chunk boundary in the middle of the
	// second one's headers
	all := first + second
	r := NewReader(segs(all[:len(first)+10], all[len(first)+10:]))

	msg1, err := r.ReadMessage()
	if err != nil {
		t.Fatalf("first ReadMessage() error = %v", err)
	}
	if got := msg1.StartLine(); got != "GET /a HTTP/1.1" {
		t.Errorf("first start line = %q", got)
	}
	if !bytes.Equal(msg1.Body, []byte("A")) {
		t.Errorf("first body = %q", msg1.Body)
	}

	msg2, err := r.ReadMessage()
	if err != nil {
		t.Fatalf("second ReadMessage() error = %v", err)
	}
	if got := msg2.StartLine(); got != "GET /b HTTP/1.1" {
		t.Errorf("second start line = %q", got)
	}
	if !bytes.Equal(msg2.Body, []byte("BB")) {
		t.Errorf("second body = %q", msg2.Body)
	}

	if _, err := r.ReadMessage(); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("third ReadMessage() error = %v, want ErrEndOfStream", err)
	}
}

func TestReadMessage_SmallChunks(t *testing.T) {
	// Force one-byte reads so every boundary falls between chunks
	data := "GET / HTTP/1.1\r\nHost: x\r\nContent-Length: 20\r\n\r\nHello, HTTPS world!\n"
	r := NewReaderSize(strings.NewReader(data), 1)

	msg, err := r.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if !bytes.Equal(msg.Body, []byte("Hello, HTTPS world!\n")) {
		t.Errorf("body = %q", msg.Body)
	}
	if length, ok := msg.ContentLength(); !ok || length != 20 {
		t.Errorf("ContentLength() = %d, %v; want 20, true", length, ok)
	}
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestReadMessage_StreamError(t *testing.T) {
	r := NewReader(failingReader{})
	_, err := r.ReadMessage()
	if err == nil {
		t.Fatal("ReadMessage() expected error on broken stream")
	}
	if errors.Is(err, ErrEndOfStream) {
		t.Error("stream error must not be reported as end of stream")
	}
}

func TestWriteAll(t *testing.T) {
	var buf bytes.Buffer
	data := []byte("GET / HTTP/1.1\r\n\r\n")
	if err := WriteAll(&buf, data); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if !bytes.Equal(buf.Bytes(), data) {
		t.Errorf("written = %q, want %q", buf.Bytes(), data)
	}
}

func BenchmarkReadMessage(b *testing.B) {
	data := []byte("GET / HTTP/1.1\r\nHost: x\r\nContent-Length: 20\r\n\r\nHello, HTTPS world!\n")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := NewReader(bytes.NewReader(data))
		if _, err := r.ReadMessage(); err != nil {
			b.Fatal(err)
		}
	}
}
