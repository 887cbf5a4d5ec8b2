package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ivanmoreno/gogateway/gateway/intent"
)

func TestClassifyOutcomeReconnectIsResumeRetry(t *testing.T) {
	kind, err := classifyOutcome(&GatewayReconnect{}, intent.None())
	assert.Equal(t, outcomeResumeRetry, kind)
	assert.Error(t, err)
}

func TestClassifyOutcomeHeartbeatLostIsResumeRetry(t *testing.T) {
	kind, _ := classifyOutcome(&HeartbeatLostError{}, intent.None())
	assert.Equal(t, outcomeResumeRetry, kind)
}

func TestClassifyOutcomeResumableInvalidSessionIsResumeRetry(t *testing.T) {
	kind, _ := classifyOutcome(&SessionInvalidated{Resumable: true}, intent.None())
	assert.Equal(t, outcomeResumeRetry, kind)
}

func TestClassifyOutcomeNonResumableInvalidSessionIsFreshInvalidate(t *testing.T) {
	kind, _ := classifyOutcome(&SessionInvalidated{Resumable: false}, intent.None())
	assert.Equal(t, outcomeFreshInvalidate, kind)
}

func TestClassifyOutcomeSessionInvalidatingCloseCodesAreFreshInvalidate(t *testing.T) {
	for _, code := range []int{4007, 4008, 4009} {
		kind, _ := classifyOutcome(&errCloseFrame{code: code}, intent.None())
		assert.Equal(t, outcomeFreshInvalidate, kind, "code %d", code)
	}
}

func TestClassifyOutcomeFatalCloseCodesAreFatalWithSpecificTypes(t *testing.T) {
	kind, err := classifyOutcome(&errCloseFrame{code: 4004}, intent.None())
	assert.Equal(t, outcomeFatal, kind)
	assert.IsType(t, &AuthenticationFailedError{}, err)

	kind, err = classifyOutcome(&errCloseFrame{code: 4014}, intent.Standard()|intent.GuildMembers)
	assert.Equal(t, outcomeFatal, kind)
	privilegedErr, ok := err.(*PrivilegedIntentsError)
	assert.True(t, ok)
	assert.True(t, intent.Has(privilegedErr.RequiredIntents, intent.GuildMembers))
}

func TestClassifyOutcomeUnknownCloseCodeIsResumeRetry(t *testing.T) {
	kind, _ := classifyOutcome(&errCloseFrame{code: 1006}, intent.None())
	assert.Equal(t, outcomeResumeRetry, kind)
}

func TestClassifyCompositeEscalatesToMostSevere(t *testing.T) {
	composite := &CompositeError{Errors: []error{
		&HeartbeatLostError{},
		&errCloseFrame{code: 4004},
	}}
	kind, err := classifyOutcome(composite, intent.None())
	assert.Equal(t, outcomeFatal, kind)
	assert.IsType(t, &AuthenticationFailedError{}, err)
}

func TestClassifyCompositeAllResumeRetryStaysResumeRetry(t *testing.T) {
	composite := &CompositeError{Errors: []error{
		&HeartbeatLostError{},
		&GatewayReconnect{},
	}}
	kind, _ := classifyOutcome(composite, intent.None())
	assert.Equal(t, outcomeResumeRetry, kind)
}
