package gateway

import (
	"errors"
	"fmt"

	"github.com/ivanmoreno/gogateway/gateway/intent"
)

// ClientError is the base type for errors raised by this package that
// don't already have a more specific type.
type ClientError struct {
	Message string
}

func (e *ClientError) Error() string { return e.Message }

// ConnectionClosedError reports a gateway close outside of the recoverable
// taxonomy below; the caller and reconnect controller decide whether to
// retry based on its Code.
type ConnectionClosedError struct {
	Code   int
	Reason string
}

func (e *ConnectionClosedError) Error() string {
	return fmt.Sprintf("connection closed: %d %s", e.Code, e.Reason)
}

// AuthenticationFailedError means Discord rejected the bot token (close
// code 4004). Always fatal.
type AuthenticationFailedError struct {
	ConnectionClosedError
}

func (e *AuthenticationFailedError) Error() string {
	return "discord rejected the provided token: is it correct?"
}

// PrivilegedIntentsError means the client requested privileged intents
// that have not been enabled in the developer portal (close codes
// 4013/4014). Always fatal.
type PrivilegedIntentsError struct {
	ConnectionClosedError
	RequiredIntents intent.Type
}

func (e *PrivilegedIntentsError) Error() string {
	return fmt.Sprintf(
		"discord rejected the requested intents (%d); enable them in the developer portal",
		e.RequiredIntents,
	)
}

// GatewayInterrupt is implemented by the three recoverable interrupt kinds
// below. It exists so the reconnect controller, when disabled, can surface
// any of them to the caller under a single type via errors.As.
type GatewayInterrupt interface {
	error
	gatewayInterrupt()
}

// GatewayReconnect means the gateway sent opcode 7, asking the client to
// close and resume immediately.
type GatewayReconnect struct{}

func (*GatewayReconnect) Error() string  { return "gateway requested a reconnect" }
func (*GatewayReconnect) gatewayInterrupt() {}

// SessionInvalidated means the gateway sent opcode 9.
type SessionInvalidated struct {
	Resumable bool
}

func (e *SessionInvalidated) Error() string {
	if e.Resumable {
		return "session invalidated (resumable)"
	}
	return "session invalidated (not resumable)"
}
func (*SessionInvalidated) gatewayInterrupt() {}

// HeartbeatLostError means no heartbeat ack arrived before the next
// scheduled heartbeat send.
type HeartbeatLostError struct{}

func (*HeartbeatLostError) Error() string  { return "heartbeat ack was not received in time" }
func (*HeartbeatLostError) gatewayInterrupt() {}

// CompositeError aggregates multiple simultaneous failures (e.g. the
// reader and heart goroutines both failing) so neither is silently
// discarded. It implements Unwrap() []error for use with errors.Is/As.
type CompositeError struct {
	Errors []error
}

func (e *CompositeError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d errors occurred:", len(e.Errors))
	for _, err := range e.Errors {
		msg += "\n\t- " + err.Error()
	}
	return msg
}

func (e *CompositeError) Unwrap() []error { return e.Errors }

// joinNonNil builds a CompositeError from the non-nil errors in errs,
// returning nil if none are non-nil and the single error unwrapped if
// only one is.
func joinNonNil(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		return &CompositeError{Errors: nonNil}
	}
}

// firstConnectionClosed extracts the first *ConnectionClosedError-shaped
// error (including its subtypes) from err, unwrapping CompositeError and
// standard wrap chains as needed.
func firstConnectionClosed(err error) (*ConnectionClosedError, bool) {
	var authErr *AuthenticationFailedError
	if errors.As(err, &authErr) {
		return &authErr.ConnectionClosedError, true
	}
	var intentsErr *PrivilegedIntentsError
	if errors.As(err, &intentsErr) {
		return &intentsErr.ConnectionClosedError, true
	}
	var closedErr *ConnectionClosedError
	if errors.As(err, &closedErr) {
		return closedErr, true
	}
	return nil, false
}

// firstGatewayInterrupt extracts the first GatewayInterrupt from err.
func firstGatewayInterrupt(err error) (GatewayInterrupt, bool) {
	var composite *CompositeError
	if errors.As(err, &composite) {
		for _, e := range composite.Errors {
			if gi, ok := firstGatewayInterrupt(e); ok {
				return gi, true
			}
		}
		return nil, false
	}
	var gi GatewayInterrupt
	if errors.As(err, &gi) {
		return gi, true
	}
	return nil, false
}
