package gateway

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/ivanmoreno/gogateway/gateway/opcode"
)

// heart runs the heartbeat task (C3) for one connection: it sends opcode 1
// at the interval given by Hello, tracks whether an ack has arrived since
// the last send, and reports HeartbeatLostError if one hasn't.
//
// Grounded on the teacher's startHeartbeat/sendHeartbeat/acknowledgeHeartbeat
// (the atomic ack flag), generalized to run as its own task coordinated
// with the reader via channels instead of a bare context-cancel loop, and
// to support on-demand sends per spec.md §4.3.
type heart struct {
	sess      *session
	transport *transport

	intervalMs int64
	rng        *rand.Rand

	acked atomic.Bool

	beatNow chan struct{}
}

func newHeart(sess *session, t *transport, intervalMs int64) *heart {
	h := &heart{
		sess:       sess,
		transport:  t,
		intervalMs: intervalMs,
		// An instance-local source, never the shared global rand, so the
		// jitter draw never perturbs a host program's own RNG usage.
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		beatNow: make(chan struct{}, 1),
	}
	h.acked.Store(true)
	return h
}

// beatSoon requests an immediate heartbeat send, as the reader does when
// the server sends opcode 1. It does not itself clear the pending-ack
// state from the prior scheduled send.
func (h *heart) beatSoon() {
	select {
	case h.beatNow <- struct{}{}:
	default:
	}
}

// acknowledge records that an ack has arrived. A single ack satisfies any
// outstanding send, per spec.md §9's resolution of the on-demand-heartbeat
// open question.
func (h *heart) acknowledge() {
	h.acked.Store(true)
}

// run drives the heartbeat loop until ctx is cancelled or a send fails to
// have been acked in time, in which case it returns HeartbeatLostError.
func (h *heart) run(ctx context.Context) error {
	interval := time.Duration(h.intervalMs) * time.Millisecond

	jitter := h.rng.Float64()
	if err := h.sleep(ctx, time.Duration(jitter*float64(interval))); err != nil {
		return err
	}

	for {
		if !h.acked.Load() {
			return &HeartbeatLostError{}
		}

		if err := h.send(); err != nil {
			return err
		}
		h.acked.Store(false)

		if err := h.sleep(ctx, interval); err != nil {
			return err
		}
	}
}

func (h *heart) send() error {
	seq := h.sess.sequence()
	payload, err := marshalPayload(opcode.Heartbeat, seq)
	if err != nil {
		return err
	}
	data, err := marshalJSON(payload)
	if err != nil {
		return err
	}
	return h.transport.sendText(data)
}

// sleep waits for d, waking early (and resetting its own window) if
// beatSoon is called, or returning ctx.Err() if ctx is cancelled first.
func (h *heart) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	case <-h.beatNow:
		if err := h.send(); err != nil {
			return err
		}
		h.acked.Store(false)
		return h.sleep(ctx, d)
	}
}
