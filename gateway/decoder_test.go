package gateway

import (
	"bytes"
	"compress/zlib"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// zlibStreamCompress compresses messages on a single continuous zlib
// stream (as Discord does across a whole connection), flushing after each
// one, and returns both the full byte stream and each message's end offset
// within it so callers can fragment within a message without ever
// splitting the sync-flush marker across two logical messages.
func zlibStreamCompress(t *testing.T, messages [][]byte) (data []byte, boundaries []int) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	for _, m := range messages {
		_, err := w.Write(m)
		require.NoError(t, err)
		require.NoError(t, w.Flush())
		boundaries = append(boundaries, buf.Len())
	}
	require.NoError(t, w.Close())
	return buf.Bytes(), boundaries
}

// TestZlibStreamDecoderSurvivesArbitraryFraming feeds the same compressed
// byte stream split into differently sized binary frames (but always with
// a frame boundary at each message's sync-flush point, as the real
// transport guarantees) and asserts the decoded payload sequence is
// identical regardless of how finely each message is fragmented, matching
// the zlib-stream transport's framing invariant.
func TestZlibStreamDecoderSurvivesArbitraryFraming(t *testing.T) {
	messages := [][]byte{
		[]byte(`{"op":0,"t":"READY","s":1,"d":{}}`),
		[]byte(`{"op":0,"t":"MESSAGE_CREATE","s":2,"d":{}}`),
		[]byte(`{"op":11}`),
	}
	compressed, boundaries := zlibStreamCompress(t, messages)

	for _, chunkSize := range []int{len(compressed), 7, 1} {
		t.Run("", func(t *testing.T) {
			frames := splitPerMessage(compressed, boundaries, chunkSize)
			tr := newFakeBinaryTransport(t, frames)
			dec := newZlibStreamDecoder()
			defer dec.close()

			for i, want := range messages {
				p, err := dec.decode(tr)
				require.NoError(t, err, "message %d", i)
				assert.JSONEq(t, string(want), string(mustMarshalPayload(t, p)))
			}
		})
	}
}

// splitPerMessage fragments data into frames of at most chunkSize bytes,
// never letting a frame span two entries of boundaries.
func splitPerMessage(data []byte, boundaries []int, chunkSize int) [][]byte {
	var frames [][]byte
	start := 0
	for _, end := range boundaries {
		frames = append(frames, splitIntoFrames(data[start:end], chunkSize)...)
		start = end
	}
	return frames
}

func splitIntoFrames(data []byte, chunkSize int) [][]byte {
	if chunkSize <= 0 {
		chunkSize = len(data)
	}
	var frames [][]byte
	for len(data) > 0 {
		n := chunkSize
		if n > len(data) {
			n = len(data)
		}
		frames = append(frames, data[:n])
		data = data[n:]
	}
	return frames
}

func mustMarshalPayload(t *testing.T, p Payload) []byte {
	data, err := marshalJSON(p)
	require.NoError(t, err)
	return data
}

// newFakeBinaryTransport starts an in-process websocket server that writes
// each element of frames as its own binary message, then returns a real
// client-side transport connected to it.
func newFakeBinaryTransport(t *testing.T, frames [][]byte) *transport {
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		for _, f := range frames {
			_ = conn.WriteMessage(websocket.BinaryMessage, f)
		}
	}))
	t.Cleanup(ts.Close)

	wsURL := "ws" + ts.URL[len("http"):]
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &transport{conn: conn}
}
