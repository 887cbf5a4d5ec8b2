package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanmoreno/gogateway/gateway/intent"
	"github.com/ivanmoreno/gogateway/gateway/opcode"
)

func TestBuildIdentifyShapesPayload(t *testing.T) {
	cfg := Config{
		Token:   "Bot abc123",
		Intents: intent.Standard(),
	}
	p, err := cfg.buildIdentify(nil)
	require.NoError(t, err)
	assert.Equal(t, opcode.Identify, p.Op)

	var d identifyPayload
	require.NoError(t, json.Unmarshal(p.D, &d))
	assert.Equal(t, "Bot abc123", d.Token)
	assert.Equal(t, int64(intent.Standard()), d.Intents)
	assert.Equal(t, "linux", d.Properties.OS)
	assert.Nil(t, d.Shard)
}

func TestBuildIdentifyIncludesShardWhenSet(t *testing.T) {
	cfg := Config{Token: "Bot abc123", Shard: &Shard{ID: 2, Count: 8}}
	p, err := cfg.buildIdentify(nil)
	require.NoError(t, err)

	var d identifyPayload
	require.NoError(t, json.Unmarshal(p.D, &d))
	require.NotNil(t, d.Shard)
	assert.Equal(t, [2]int{2, 8}, *d.Shard)
}

func TestBuildIdentifyCarriesPresence(t *testing.T) {
	cfg := Config{Token: "Bot abc123"}
	p, err := cfg.buildIdentify(map[string]string{"status": "idle"})
	require.NoError(t, err)

	var d identifyPayload
	require.NoError(t, json.Unmarshal(p.D, &d))
	assert.Equal(t, map[string]any{"status": "idle"}, d.Presence)
}

func TestBuildResumeShapesPayload(t *testing.T) {
	cfg := Config{Token: "Bot abc123"}
	p, err := cfg.buildResume("sess-1", 42)
	require.NoError(t, err)
	assert.Equal(t, opcode.Resume, p.Op)

	var d resumePayload
	require.NoError(t, json.Unmarshal(p.D, &d))
	assert.Equal(t, "Bot abc123", d.Token)
	assert.Equal(t, "sess-1", d.SessionID)
	assert.Equal(t, int64(42), d.Seq)
}
