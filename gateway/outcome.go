package gateway

import (
	"errors"

	"github.com/ivanmoreno/gogateway/gateway/intent"
)

// outcomeKind is what the reconnect controller (C6) does with a
// connection's terminal error, per spec.md §4.6.
type outcomeKind int

const (
	// outcomeShutdown means the caller's context was cancelled; no error
	// is surfaced and no retry happens.
	outcomeShutdown outcomeKind = iota
	// outcomeResumeRetry covers everything spec.md groups as "transient
	// or resume": Reconnect, HeartbeatLost, a resumable Invalid Session,
	// and any close code not otherwise classified.
	outcomeResumeRetry
	// outcomeFreshInvalidate covers a non-resumable Invalid Session and
	// the session-invalidating close codes (4007/4008/4009).
	outcomeFreshInvalidate
	// outcomeFatal covers the fatal close codes; never retried.
	outcomeFatal
)

// classifyOutcome inspects a connection's terminal error (possibly a
// CompositeError aggregating a reader and heart failure) and decides how
// the reconnect controller should react, enriching close-code errors into
// their specific typed form along the way.
func classifyOutcome(err error, intents intent.Type) (outcomeKind, error) {
	var composite *CompositeError
	if errors.As(err, &composite) {
		return classifyComposite(composite, intents)
	}
	return classifySingle(err, intents)
}

// classifyComposite inspects every constituent error and returns the most
// severe outcome observed, per spec.md §9 ("the controller inspects all
// constituents to decide retry vs fatal").
func classifyComposite(composite *CompositeError, intents intent.Type) (outcomeKind, error) {
	best := outcomeResumeRetry
	var bestErr error = composite

	for _, sub := range composite.Errors {
		kind, classified := classifyOutcome(sub, intents)
		if kind > best || bestErr == composite {
			best = kind
			bestErr = classified
		}
		if kind == outcomeFatal {
			return outcomeFatal, classified
		}
	}
	return best, bestErr
}

func classifySingle(err error, intents intent.Type) (outcomeKind, error) {
	var reconnectErr *GatewayReconnect
	if errors.As(err, &reconnectErr) {
		return outcomeResumeRetry, err
	}

	var hbLost *HeartbeatLostError
	if errors.As(err, &hbLost) {
		return outcomeResumeRetry, err
	}

	var invalidated *SessionInvalidated
	if errors.As(err, &invalidated) {
		if invalidated.Resumable {
			return outcomeResumeRetry, err
		}
		return outcomeFreshInvalidate, err
	}

	var closeFrame *errCloseFrame
	if errors.As(err, &closeFrame) {
		return classifyCloseCodeErr(closeFrame.code, closeFrame.reason, intents)
	}

	var transportClosed *errTransportClosed
	if errors.As(err, &transportClosed) {
		if transportClosed.code != 0 {
			return classifyCloseCodeErr(transportClosed.code, "", intents)
		}
		return outcomeResumeRetry, &ConnectionClosedError{Reason: err.Error()}
	}

	// Anything else (malformed payloads, protocol violations) is treated
	// as transient: retry and let the next connection re-establish state.
	return outcomeResumeRetry, err
}

func classifyCloseCodeErr(code int, reason string, intents intent.Type) (outcomeKind, error) {
	if reason == "" {
		reason = closeCodeReason(code)
	}
	base := ConnectionClosedError{Code: code, Reason: reason}

	switch classifyCloseCode(code) {
	case closeFatal:
		switch code {
		case 4004:
			return outcomeFatal, &AuthenticationFailedError{base}
		case 4013, 4014:
			return outcomeFatal, &PrivilegedIntentsError{base, intent.Privileged(intents)}
		default:
			return outcomeFatal, &base
		}
	case closeSessionInvalidating:
		return outcomeFreshInvalidate, &base
	default:
		return outcomeResumeRetry, &base
	}
}
