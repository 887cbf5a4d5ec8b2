package gateway

import (
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// newReconnectBackoff builds the exponential backoff used for
// transient/resume reconnects (spec.md §4.6): base 1s, doubling, capped at
// 60s, with cenkalti/backoff's own randomization supplying the jitter.
//
// Grounded on microsoft-cord/websocket.go's WsOptions.fillDefaults, which
// wires the predecessor github.com/cenk/backoff into the same role with
// the same InitialInterval/MaxInterval/RandomizationFactor knobs.
func newReconnectBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.MaxInterval = 60 * time.Second
	b.MaxElapsedTime = 0 // unbounded: spec.md's "retryable" has no attempt cap
	b.RandomizationFactor = 0.5
	b.Reset()
	return b
}

// sessionInvalidatedDelay draws a uniform 1-5s delay, per Discord's
// guidance for reconnecting after a non-resumable Invalid Session
// (spec.md §4.6).
func sessionInvalidatedDelay(rng *rand.Rand) time.Duration {
	return time.Second + time.Duration(rng.Float64()*4*float64(time.Second))
}
