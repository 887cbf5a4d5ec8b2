package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyCloseCodeFatal(t *testing.T) {
	for _, code := range []int{4004, 4010, 4011, 4012, 4013, 4014} {
		assert.Equal(t, closeFatal, classifyCloseCode(code), "code %d", code)
	}
}

func TestClassifyCloseCodeSessionInvalidating(t *testing.T) {
	for _, code := range []int{4007, 4008, 4009} {
		assert.Equal(t, closeSessionInvalidating, classifyCloseCode(code), "code %d", code)
	}
}

func TestClassifyCloseCodeTransientDefault(t *testing.T) {
	for _, code := range []int{1000, 1001, 4000, 4001, 4002, 4003, 4005, 4999} {
		assert.Equal(t, closeTransient, classifyCloseCode(code), "code %d", code)
	}
}

func TestCloseCodeReasonFallsBackToUnknown(t *testing.T) {
	assert.Equal(t, "Unknown Error", closeCodeReason(4000))
	assert.Equal(t, "Unknown", closeCodeReason(9999))
}
