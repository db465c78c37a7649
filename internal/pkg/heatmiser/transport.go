package heatmiser

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultPort is the TCP port the thermostats listen on.
	DefaultPort = 8068

	// DefaultTimeout bounds every socket operation.
	DefaultTimeout = 5 * time.Second
)

// Transport owns a single TCP connection to one thermostat. The device only
// tolerates a couple of concurrent connections (its mobile app takes one), so
// callers close after every exchange instead of holding the socket open.
type Transport struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
	logger  *zap.Logger
}

func NewTransport(host string, port int, timeout time.Duration) *Transport {
	if port <= 0 {
		port = DefaultPort
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Transport{
		addr:    net.JoinHostPort(host, strconv.Itoa(port)),
		timeout: timeout,
		logger:  zap.L(),
	}
}

// Open establishes the connection if there is none. Calling it on an open
// transport is a no-op.
func (t *Transport) Open(ctx context.Context) error {
	if t.conn != nil {
		return nil
	}
	dialer := net.Dialer{Timeout: t.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return &TransportError{Addr: t.addr, Op: "connect", Err: err}
	}
	t.logger.Debug("connected", zap.String("addr", t.addr))
	t.conn = conn
	return nil
}

// Close releases the connection. Safe to call when already closed.
func (t *Transport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	if err != nil {
		return &TransportError{Addr: t.addr, Op: "close", Err: err}
	}
	return nil
}

func (t *Transport) send(frame []byte) error {
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.timeout)); err != nil {
		return &TransportError{Addr: t.addr, Op: "set write deadline", Err: err}
	}
	if _, err := t.conn.Write(frame); err != nil {
		return &TransportError{Addr: t.addr, Op: "write", Err: err}
	}
	return nil
}

// receive reads exactly one reply frame: the 3-byte header first, then the
// remainder the declared length calls for. Length sanity is checked here so a
// corrupt header cannot demand an absurd read; full validation including the
// checksum happens in parseReply.
func (t *Transport) receive() ([]byte, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(t.timeout)); err != nil {
		return nil, &TransportError{Addr: t.addr, Op: "set read deadline", Err: err}
	}
	header := make([]byte, replyHeaderLen)
	if _, err := io.ReadFull(t.conn, header); err != nil {
		if err == io.EOF {
			return nil, &ProtocolError{Reason: "empty reply"}
		}
		return nil, &TransportError{Addr: t.addr, Op: "read header", Err: err}
	}
	declared := int(binary.LittleEndian.Uint16(header[1:3]))
	if declared < replyHeaderLen+crcLen || declared > maxFrameLen {
		return nil, &ProtocolError{Reason: "implausible reply length", Got: declared, Raw: header}
	}
	frame := make([]byte, declared)
	copy(frame, header)
	if _, err := io.ReadFull(t.conn, frame[replyHeaderLen:]); err != nil {
		return nil, &TransportError{Addr: t.addr, Op: "read body", Err: err}
	}
	return frame, nil
}

// RoundTrip opens the connection, sends one command frame and reads one reply
// frame, closing the connection before returning.
func (t *Transport) RoundTrip(ctx context.Context, frame []byte) ([]byte, error) {
	if err := t.Open(ctx); err != nil {
		return nil, err
	}
	defer t.Close()

	if err := t.send(frame); err != nil {
		return nil, err
	}
	return t.receive()
}
