package gateway

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"fmt"
	"io"
)

// zlibSyncFlush is the 4-byte trailer marking the end of a logical
// zlib-stream message, per spec.md §4.2.
var zlibSyncFlush = []byte{0x00, 0x00, 0xFF, 0xFF}

// decoder turns received frames into complete gateway Payloads,
// regardless of transport compression or fragmentation (C2).
type decoder interface {
	// decode consumes frames from the transport until one complete
	// payload can be produced.
	decode(t *transport) (Payload, error)
}

// plainDecoder implements the uncompressed encoding: one Text frame is
// one payload, and a Binary frame is a protocol error.
type plainDecoder struct{}

func (plainDecoder) decode(t *transport) (Payload, error) {
	f, err := t.receiveFrame()
	if err != nil {
		return Payload{}, err
	}
	if f.kind == frameClose {
		return Payload{}, &errCloseFrame{code: f.closeCode, reason: f.closeReason}
	}
	if f.kind == frameBinary {
		return Payload{}, &ClientError{Message: "received unexpected binary frame in plain-text mode"}
	}

	var p Payload
	if err := json.Unmarshal(f.data, &p); err != nil {
		return Payload{}, &ClientError{Message: fmt.Sprintf("could not decode payload: %v", err)}
	}
	return p, nil
}

// errCloseFrame signals that the transport yielded a close frame instead
// of a payload; the connection loop translates this into a Closing
// transition classified by code.
type errCloseFrame struct {
	code   int
	reason string
}

func (e *errCloseFrame) Error() string {
	return fmt.Sprintf("received close frame: %d %s", e.code, e.reason)
}

// zlibStreamDecoder implements transport-layer zlib-stream compression: a
// single zlib.Reader persists for the life of the connection, fed by
// accumulating Binary frames until one ends with the sync-flush trailer.
//
// A sync-flush boundary is not a stream EOF, so decoding a message can't be
// a plain io.ReadAll over the zlib.Reader: once it has drained the bytes
// buffered for the current message, reading the next block header finds
// the buffer empty and fails with io.ErrUnexpectedEOF, and compress/flate
// then returns that same error from every later Read. readMessage therefore
// stops as soon as the buffered input has been consumed and never issues
// that extra Read, mirroring Python's zlib.decompressobj().decompress(buffer),
// which returns whatever it can produce from the bytes handed to it without
// requiring the stream to end.
//
// Grounded on microsoft-cord/websocket.go's inflate() for the persistent
// reader shape, and on the original client's ZLibStream.recv for the
// buffer-then-flush framing this decoder mirrors.
type zlibStreamDecoder struct {
	buf     *bytes.Buffer
	zreader io.Reader
	zcloser io.Closer
}

func newZlibStreamDecoder() *zlibStreamDecoder {
	return &zlibStreamDecoder{buf: new(bytes.Buffer)}
}

func (d *zlibStreamDecoder) decode(t *transport) (Payload, error) {
	for {
		f, err := t.receiveFrame()
		if err != nil {
			return Payload{}, err
		}
		if f.kind == frameClose {
			return Payload{}, &errCloseFrame{code: f.closeCode, reason: f.closeReason}
		}
		if f.kind == frameText {
			return Payload{}, &ClientError{Message: "received unexpected text frame in zlib-stream mode"}
		}

		d.buf.Write(f.data)
		if !bytes.HasSuffix(d.buf.Bytes(), zlibSyncFlush) {
			// Message boundary not yet reached; keep buffering frames.
			continue
		}

		if d.zreader == nil {
			zr, err := zlib.NewReader(d.buf)
			if err != nil {
				return Payload{}, &ClientError{Message: fmt.Sprintf("could not open zlib stream: %v", err)}
			}
			d.zreader, d.zcloser = zr, zr
		}

		out, err := d.readMessage()
		if err != nil {
			return Payload{}, &ClientError{Message: fmt.Sprintf("could not decompress payload: %v", err)}
		}
		d.buf.Reset()

		var p Payload
		if err := json.Unmarshal(out, &p); err != nil {
			return Payload{}, &ClientError{Message: fmt.Sprintf("could not decode payload: %v", err)}
		}
		return p, nil
	}
}

// readMessage reads from d.zreader until every byte buffered for the
// current message has been consumed, and no further. Each Read uses a
// buffer larger than flate's 32 KiB window, so a Read that returns has
// handed over all output pending in the decompressor. The underlying
// zlib.Reader is never recreated, so its history window carries across
// messages.
func (d *zlibStreamDecoder) readMessage() ([]byte, error) {
	var out bytes.Buffer
	chunk := make([]byte, 64*1024)
	for d.buf.Len() > 0 {
		n, err := d.zreader.Read(chunk)
		out.Write(chunk[:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			return out.Bytes(), err
		}
	}
	return out.Bytes(), nil
}

func (d *zlibStreamDecoder) close() {
	if d.zcloser != nil {
		_ = d.zcloser.Close()
	}
}
