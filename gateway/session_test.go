package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceIsMonotonic(t *testing.T) {
	s := newSession()
	s.setSequence(5)
	s.setSequence(3) // lower sequence must not regress the stored value
	s.setSequence(7)

	seq := s.sequence()
	assert.NotNil(t, seq)
	assert.Equal(t, int64(7), *seq)
}

func TestCanResumeRequiresReadyAndSequence(t *testing.T) {
	s := newSession()
	assert.False(t, s.canResume())

	s.markReady("sess-1", "wss://resume.example")
	assert.False(t, s.canResume(), "no sequence observed yet")

	s.setSequence(1)
	assert.True(t, s.canResume())
}

func TestInvalidateClearsIdentityAndForcesFresh(t *testing.T) {
	s := newSession()
	s.markReady("sess-1", "wss://resume.example")
	s.setSequence(42)

	s.invalidate()

	id, resumeURL, mode := s.snapshot()
	assert.Equal(t, "", id)
	assert.Equal(t, "", resumeURL)
	assert.Equal(t, modeFresh, mode)
	assert.Nil(t, s.sequence())
	assert.False(t, s.canResume())
}

func TestResetForFreshConnectKeepsIdentity(t *testing.T) {
	s := newSession()
	s.markReady("sess-1", "wss://resume.example")
	s.setSequence(42)

	s.resetForFreshConnect()

	id, _, _ := s.snapshot()
	assert.Equal(t, "sess-1", id)
	assert.Nil(t, s.sequence())
}
