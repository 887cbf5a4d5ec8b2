package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ivanmoreno/gogateway/gateway/intent"
	"github.com/ivanmoreno/gogateway/gateway/opcode"
)

// DiscordAPI is the base URL used to resolve a gateway URL when Config
// doesn't supply one directly.
const DiscordAPI = "https://discord.com/api/v10"

// Client is a single gateway connection's reconnect-aware driver (C6). One
// Client corresponds to one shard; running several shards means running
// several Clients.
//
// Grounded on the teacher's Client (src/client/client.go), generalized from
// a single ConnectToGateway call into a reconnect controller that owns its
// own Session, heart, and dispatcher across however many connection
// attempts it takes.
type Client struct {
	cfg Config
	log *Logger

	httpClient *http.Client

	sess       *session
	dispatcher *dispatcher

	rng *rand.Rand

	backoffMu sync.Mutex
	backoff   *backoff.ExponentialBackOff

	presenceMu sync.RWMutex
	presence   any

	transport atomic.Pointer[transport]

	shutdownMu sync.Mutex
	shutdownFn context.CancelFunc
}

// NewClient builds a Client from cfg. log may be nil, in which case a
// silent logger is used.
func NewClient(cfg Config, log *Logger) *Client {
	if log == nil {
		log = NewLogger(LevelSilent)
	}
	return &Client{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		sess:       newSession(),
		dispatcher: newDispatcher(log),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		backoff:    newReconnectBackoff(),
		presence:   cfg.Presence,
	}
}

// On registers fn as the handler for dispatch events. Registering a new
// handler replaces any previously registered one.
func (c *Client) On(fn DispatchFunc) {
	c.dispatcher.setHandler(fn)
}

// Run drives the reconnect controller (C6): it connects, and on any
// retryable outcome reconnects (resuming or fresh as appropriate) until ctx
// is cancelled or a fatal outcome occurs. It returns nil on a clean
// shutdown, or the fatal error otherwise.
//
// When reconnect is false the controller is disabled: the first terminal
// outcome from the first connection attempt is returned immediately,
// including ones that would otherwise just trigger a retry, such as
// GatewayReconnect, SessionInvalidated, and HeartbeatLostError. Grounded on
// the original client's run(*, reconnect: bool = True), whose
// `except* (GatewayInterrupt, HeartbeatLostError): if not reconnect: raise`
// re-raises those interrupts unchanged when reconnect is disabled.
func (c *Client) Run(ctx context.Context, reconnect bool) error {
	runCtx, cancel := context.WithCancel(ctx)
	c.shutdownMu.Lock()
	c.shutdownFn = cancel
	c.shutdownMu.Unlock()
	defer func() {
		c.shutdownMu.Lock()
		c.shutdownFn = nil
		c.shutdownMu.Unlock()
		cancel()
		c.dispatcher.close()
	}()

	gatewayURL := c.cfg.GatewayURL
	if gatewayURL == "" {
		url, err := c.fetchGatewayURL(runCtx)
		if err != nil {
			return err
		}
		gatewayURL = url
	}

	for {
		resume := c.sess.canResume()
		connectURL := gatewayURL
		if resume {
			if _, resumeURL, _ := c.sess.snapshot(); resumeURL != "" {
				connectURL = resumeURL
			}
		}

		c.log.Infof("connecting (resume: %v)", resume)
		kind, err := c.connectOnce(runCtx, connectURL, resume)

		if !reconnect && kind != outcomeShutdown {
			if kind == outcomeFreshInvalidate {
				c.sess.invalidate()
			}
			return surfaceTerminalError(err)
		}

		switch kind {
		case outcomeShutdown:
			return nil

		case outcomeFatal:
			c.log.Errorf("fatal gateway error, giving up: %v", err)
			return err

		case outcomeFreshInvalidate:
			c.log.Warnf("session invalidated, reconnecting fresh: %v", err)
			c.sess.invalidate()
			c.resetBackoff()
			if !c.sleepCtx(runCtx, sessionInvalidatedDelay(c.rng)) {
				return nil
			}

		case outcomeResumeRetry:
			if err != nil {
				c.log.Warnf("connection lost, retrying: %v", err)
			}
			if !c.sleepCtx(runCtx, c.nextBackoff()) {
				return nil
			}
		}
	}
}

// surfaceTerminalError shapes the error a reconnect=false caller sees: a
// single classified error is returned unchanged, but a CompositeError
// (reader and heart failing at once) is reduced to the one interrupt or
// close error inside it, via firstGatewayInterrupt/firstConnectionClosed,
// rather than handing back an aggregate the caller has no reason to
// unwrap itself.
func surfaceTerminalError(err error) error {
	if err == nil {
		return nil
	}
	var composite *CompositeError
	if !errors.As(err, &composite) {
		return err
	}
	if gi, ok := firstGatewayInterrupt(composite); ok {
		return gi
	}
	if cc, ok := firstConnectionClosed(composite); ok {
		return cc
	}
	return err
}

// Close initiates a graceful shutdown of a running Run call. It is safe to
// call from any goroutine, including a handler registered with On.
func (c *Client) Close() {
	c.shutdownMu.Lock()
	fn := c.shutdownFn
	c.shutdownMu.Unlock()
	if fn != nil {
		fn()
	}
}

// SetPresence pushes presence to the gateway immediately via a Presence
// Update (op 3) payload if a connection is currently live. When persistent
// is true it also replaces the presence sent on future Identify payloads
// (Resume payloads carry no presence); otherwise it affects only the
// current connection. This
// supplements the distilled surface with the original client's
// set_presence behavior.
func (c *Client) SetPresence(ctx context.Context, presence any, persistent bool) error {
	if persistent {
		c.presenceMu.Lock()
		c.presence = presence
		c.presenceMu.Unlock()
	}

	t := c.transport.Load()
	if t == nil {
		return nil
	}
	payload, err := marshalPayload(opcode.PresenceUpdate, presence)
	if err != nil {
		return err
	}
	return c.sendPayload(t, payload)
}

func (c *Client) currentPresence() any {
	c.presenceMu.RLock()
	defer c.presenceMu.RUnlock()
	return c.presence
}

func (c *Client) resetBackoff() {
	c.backoffMu.Lock()
	defer c.backoffMu.Unlock()
	c.backoff.Reset()
}

func (c *Client) nextBackoff() time.Duration {
	c.backoffMu.Lock()
	defer c.backoffMu.Unlock()
	d := c.backoff.NextBackOff()
	if d == backoff.Stop {
		// MaxElapsedTime is 0 (unbounded), so this should never trigger;
		// fall back to the cap rather than busy-loop if it ever does.
		d = c.backoff.MaxInterval
	}
	return d
}

// sleepCtx waits for d or ctx cancellation, reporting which happened.
func (c *Client) sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// fetchGatewayURL resolves the gateway WSS URL via the Get Gateway Bot
// endpoint, grounded on the teacher's NewBot.
func (c *Client) fetchGatewayURL(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, DiscordAPI+"/gateway/bot", nil)
	if err != nil {
		return "", fmt.Errorf("could not create gateway request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.Token)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("could not reach discord api: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("could not read gateway response: %w", err)
	}

	if res.StatusCode == http.StatusUnauthorized {
		return "", &AuthenticationFailedError{ConnectionClosedError{Code: 4004, Reason: "unauthorized"}}
	}
	if res.StatusCode != http.StatusOK {
		return "", &ClientError{Message: fmt.Sprintf("unexpected gateway response status: %d", res.StatusCode)}
	}

	var decoded gatewayBotResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("could not decode gateway response: %w", err)
	}
	if decoded.URL == "" {
		return "", &ClientError{Message: "gateway response did not include a url"}
	}
	return decoded.URL, nil
}

// RequiredIntents reports the privileged subset of the configured intents,
// for callers that want to surface a helpful message before even
// connecting.
func (c *Client) RequiredIntents() intent.Type {
	return intent.Privileged(c.cfg.Intents)
}
