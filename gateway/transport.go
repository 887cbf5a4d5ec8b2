package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// frameKind tags a frame received from the transport.
type frameKind int

const (
	frameText frameKind = iota
	frameBinary
	frameClose
)

// frame is a single message read off the websocket, per spec.md §4.1.
type frame struct {
	kind        frameKind
	data        []byte
	closeCode   int
	closeReason string
}

// errTransportClosed wraps a transport-level read/write failure that isn't
// a clean close frame. Its code field is optional; receiveFrame leaves it
// zero, since it reports a websocket.CloseError as a frameClose instead.
type errTransportClosed struct {
	code int
	err  error
}

func (e *errTransportClosed) Error() string {
	if e.code != 0 {
		return fmt.Sprintf("transport closed (code %d): %v", e.code, e.err)
	}
	return fmt.Sprintf("transport closed: %v", e.err)
}

func (e *errTransportClosed) Unwrap() error { return e.err }

// transport owns one websocket connection for the lifetime of one gateway
// connection attempt. Writes are serialized with a mutex so the heart
// goroutine and the reader's payload sends never interleave frame bytes
// (spec.md §4.1, testable property 8).
type transport struct {
	conn *websocket.Conn

	writeMu sync.Mutex
}

// dialGateway opens a websocket connection to url with the fixed gateway
// query parameters (v=10, encoding=json, and compress=zlib-stream when
// zlibStream is true).
func dialGateway(ctx context.Context, gatewayURL string, zlibStream bool) (*transport, error) {
	u, err := addGatewayParams(gatewayURL, zlibStream)
	if err != nil {
		return nil, fmt.Errorf("could not build gateway url: %w", err)
	}

	dialer := websocket.Dialer{}
	conn, _, err := dialer.DialContext(ctx, u, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("could not connect to websocket: %w", err)
	}

	return &transport{conn: conn}, nil
}

func addGatewayParams(gatewayURL string, zlibStream bool) (string, error) {
	u, err := url.Parse(gatewayURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("v", "10")
	q.Set("encoding", "json")
	if zlibStream {
		q.Set("compress", "zlib-stream")
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (t *transport) sendText(data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := t.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("could not write frame: %w", err)
	}
	return nil
}

func (t *transport) receiveFrame() (frame, error) {
	kind, data, err := t.conn.ReadMessage()
	if err != nil {
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) {
			return frame{
				kind:        frameClose,
				closeCode:   closeErr.Code,
				closeReason: closeErr.Text,
			}, nil
		}
		return frame{}, &errTransportClosed{err: err}
	}

	switch kind {
	case websocket.TextMessage:
		return frame{kind: frameText, data: data}, nil
	case websocket.BinaryMessage:
		return frame{kind: frameBinary, data: data}, nil
	default:
		// Control frames (ping/pong) are handled internally by gorilla and
		// never reach ReadMessage, so anything else is unexpected.
		return frame{}, &ClientError{Message: fmt.Sprintf("unexpected frame kind %d", kind)}
	}
}

func (t *transport) close(code int, reason string) error {
	t.writeMu.Lock()
	msg := websocket.FormatCloseMessage(code, reason)
	_ = t.conn.WriteMessage(websocket.CloseMessage, msg)
	t.writeMu.Unlock()

	return t.conn.Close()
}
