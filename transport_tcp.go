package bancho

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/pkg/errors"
)

// TCPTransport implements Transport as one persistent socket, matching
// §4.4: no per-cycle batching on write, a blocking 7-byte-header read per
// Cycle call, gzip (not zlib) payload decompression.
type TCPTransport struct {
	addr   string
	dialer net.Dialer

	mu   sync.Mutex
	conn net.Conn
	r    *bufio.Reader
}

// NewTCPTransport targets host:port directly (§6: "an explicit (ip, port)
// for TCP login").
func NewTCPTransport(host string, port int) *TCPTransport {
	return &TCPTransport{addr: fmt.Sprintf("%s:%d", host, port)}
}

func (t *TCPTransport) dial(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		return nil
	}
	conn, err := t.dialer.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return err
	}
	t.conn = conn
	t.r = bufio.NewReader(conn)
	return nil
}

func (t *TCPTransport) Login(ctx context.Context, req LoginRequest) (string, []byte, error) {
	if err := t.dial(ctx); err != nil {
		return "", nil, newTransportError(err, "dial")
	}

	body := fmt.Sprintf("%s\n%s\n%s\n", req.Username, req.PasswordMD5, req.Fingerprint)
	if err := t.write([]byte(body)); err != nil {
		return "", nil, newTransportError(err, "write login payload")
	}

	data, err := t.readAvailable()
	if err != nil {
		return "", nil, newTransportError(err, "read login response")
	}
	// The TCP variant has no header carrying a token out of band, so the
	// returned token here is always empty; Session.Login leaves its token
	// unset and relies on the LoginReply frame in the returned bytes.
	return "", data, nil
}

// Cycle writes outbound directly (if non-empty) then performs one blocking
// read, matching "the runtime loop consists of a blocking read followed by
// task execution; there is no pacing delay" (§4.4).
func (t *TCPTransport) Cycle(ctx context.Context, outbound []byte) ([]byte, error) {
	if len(outbound) > 0 {
		if err := t.write(outbound); err != nil {
			return nil, newTransportError(err, "write outbound")
		}
	}
	return t.readAvailable()
}

func (t *TCPTransport) write(data []byte) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return errors.New("not connected")
	}
	_, err := conn.Write(data)
	return err
}

// readAvailable blocks for exactly one frame (per §4.4's "blocking read"),
// then drains whatever else is already buffered without blocking, so a
// burst of packets sent together decodes in one Cycle call.
func (t *TCPTransport) readAvailable() ([]byte, error) {
	t.mu.Lock()
	r := t.r
	t.mu.Unlock()
	if r == nil {
		return nil, errors.New("not connected")
	}

	var buf []byte
	header := make([]byte, 7)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	buf = append(buf, header...)
	length := le32(header[3:7])
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	buf = append(buf, payload...)

	for r.Buffered() >= 7 {
		peeked, err := r.Peek(7)
		if err != nil {
			break
		}
		frameLen := 7 + int(le32(peeked[3:7]))
		if r.Buffered() < frameLen {
			break
		}
		frame := make([]byte, frameLen)
		if _, err := io.ReadFull(r, frame); err != nil {
			break
		}
		buf = append(buf, frame...)
	}
	return buf, nil
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func (t *TCPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.r = nil
	return err
}
