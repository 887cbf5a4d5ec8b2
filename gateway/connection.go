package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ivanmoreno/gogateway/gateway/opcode"
)

// connectOnce drives a single WebSocket connection end to end: Connecting
// -> AwaitingHello -> Authenticating -> Operating -> Closing -> Closed,
// per spec.md §4.5 (C5). It owns the transport and decompression context
// for the lifetime of the call and releases both on every exit path.
func (c *Client) connectOnce(ctx context.Context, gatewayURL string, resume bool) (outcomeKind, error) {
	t, err := dialGateway(ctx, gatewayURL, c.cfg.ZlibStream)
	if err != nil {
		if ctx.Err() != nil {
			return outcomeShutdown, nil
		}
		return outcomeResumeRetry, fmt.Errorf("could not open connection: %w", err)
	}
	c.transport.Store(t)
	defer c.transport.Store(nil)

	var dec decoder
	if c.cfg.ZlibStream {
		zdec := newZlibStreamDecoder()
		defer zdec.close()
		dec = zdec
	} else {
		dec = plainDecoder{}
	}

	p, err := dec.decode(t)
	if err != nil {
		return c.closeAndClassify(ctx, t, err)
	}
	if p.Op != opcode.Hello {
		_ = t.close(1002, "expected hello")
		return outcomeResumeRetry, &ClientError{
			Message: fmt.Sprintf("expected hello opcode, got %d", p.Op),
		}
	}

	var hello helloData
	if err := json.Unmarshal(p.D, &hello); err != nil {
		_ = t.close(1002, "malformed hello")
		return outcomeResumeRetry, &ClientError{Message: "could not decode hello payload: " + err.Error()}
	}
	c.log.Debugf("received hello, heartbeat interval %dms", hello.HeartbeatInterval)

	h := newHeart(c.sess, t, hello.HeartbeatInterval)

	if resume {
		sessionID, _, _ := c.sess.snapshot()
		var seq int64
		if seqPtr := c.sess.sequence(); seqPtr != nil {
			seq = *seqPtr
		}
		payload, err := c.cfg.buildResume(sessionID, seq)
		if err != nil {
			return c.closeAndClassify(ctx, t, err)
		}
		if err := c.sendPayload(t, payload); err != nil {
			return c.closeAndClassify(ctx, t, err)
		}
		c.log.Debugf("sent resume payload (session %s, seq %d)", sessionID, seq)
	} else {
		c.sess.resetForFreshConnect()
		payload, err := c.cfg.buildIdentify(c.currentPresence())
		if err != nil {
			return c.closeAndClassify(ctx, t, err)
		}
		if err := c.sendPayload(t, payload); err != nil {
			return c.closeAndClassify(ctx, t, err)
		}
		c.log.Debugf("sent identify payload")
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		// Forcing the read deadline is how cooperative cancellation
		// aborts an in-flight receive (spec.md §5's "in-flight receives
		// are aborted at the next yield"): gorilla's ReadMessage has no
		// context parameter, so closing or deadlining the conn is the
		// only way to unblock it.
		<-connCtx.Done()
		_ = t.conn.SetReadDeadline(time.Now())
	}()

	var readerErr, heartErr error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		readerErr = c.readerLoop(connCtx, t, dec, h)
		cancel()
	}()
	go func() {
		defer wg.Done()
		heartErr = h.run(connCtx)
		cancel()
	}()
	wg.Wait()

	if ctx.Err() != nil {
		_ = t.close(1000, "client shutdown")
		return outcomeShutdown, nil
	}

	return c.closeAndClassify(ctx, t, joinNonNil(readerErr, heartErr))
}

// closeAndClassify closes the transport with the close code appropriate
// for err's outcome and returns that outcome for the reconnect controller.
func (c *Client) closeAndClassify(ctx context.Context, t *transport, err error) (outcomeKind, error) {
	if err == nil {
		if ctx.Err() != nil {
			_ = t.close(1000, "client shutdown")
			return outcomeShutdown, nil
		}
		_ = t.close(4000, "reconnecting")
		return outcomeResumeRetry, nil
	}

	kind, classified := classifyOutcome(err, c.cfg.Intents)
	switch kind {
	case outcomeFatal:
		_ = t.close(1000, "fatal error")
	case outcomeFreshInvalidate:
		_ = t.close(1000, "session invalidated")
	default:
		_ = t.close(4000, "reconnecting")
	}
	return kind, classified
}

func (c *Client) sendPayload(t *transport, p Payload) error {
	data, err := marshalJSON(p)
	if err != nil {
		return err
	}
	return t.sendText(data)
}

// readerLoop is the Operating state: it owns the decoder and classifies
// every inbound opcode, updating Session, the heart, and the dispatcher
// as appropriate, until a terminal condition is reached.
func (c *Client) readerLoop(ctx context.Context, t *transport, dec decoder, h *heart) error {
	for {
		p, err := dec.decode(t)
		if err != nil {
			return err
		}

		switch p.Op {
		case opcode.Dispatch:
			var seq int64
			if p.S != nil {
				seq = *p.S
				c.sess.setSequence(seq)
			}

			switch p.T {
			case "READY":
				var rd readyData
				if err := json.Unmarshal(p.D, &rd); err != nil {
					return &ClientError{Message: "could not decode ready payload: " + err.Error()}
				}
				c.sess.markReady(rd.SessionID, rd.ResumeGatewayURL)
				c.resetBackoff()
				c.log.Infof("session ready (id %s)", rd.SessionID)
			case "RESUMED":
				c.resetBackoff()
				c.log.Infof("session resumed")
			}

			c.dispatcher.dispatch(Event{Name: p.T, Data: p.D, Seq: seq})

		case opcode.Heartbeat:
			c.log.Debugf("server requested an immediate heartbeat")
			h.beatSoon()

		case opcode.HeartbeatACK:
			h.acknowledge()

		case opcode.Reconnect:
			c.log.Infof("gateway requested a reconnect")
			return &GatewayReconnect{}

		case opcode.InvalidSession:
			var resumable bool
			if err := json.Unmarshal(p.D, &resumable); err != nil {
				return &ClientError{Message: "could not decode invalid session payload: " + err.Error()}
			}
			c.log.Infof("session invalidated (resumable: %v)", resumable)
			return &SessionInvalidated{Resumable: resumable}

		default:
			c.log.Debugf("received unhandled opcode %d", p.Op)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}
