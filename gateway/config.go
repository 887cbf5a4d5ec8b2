package gateway

import (
	"github.com/ivanmoreno/gogateway/gateway/intent"
	"github.com/ivanmoreno/gogateway/gateway/opcode"
)

// Shard identifies which shard a connection belongs to, per Discord's
// sharding formula: shard_id = (guild_id >> 22) % num_shards.
type Shard struct {
	ID    int
	Count int
}

// Properties are the identification properties sent on Identify.
type Properties struct {
	OS      string
	Browser string
	Device  string
}

func defaultProperties() Properties {
	return Properties{OS: "linux", Browser: "gogateway", Device: "gogateway"}
}

// Config is the immutable configuration for a Client, corresponding to
// spec.md's "Connection configuration".
type Config struct {
	// Token is sent verbatim on Identify/Resume; it must already carry the
	// "Bot " (or "Bearer ") authentication scheme prefix.
	Token string

	// Intents is the bitmask of gateway intents to request.
	Intents intent.Type

	// GatewayURL overrides the fetched gateway URL. If empty, it is
	// fetched from the Get Gateway Bot endpoint on first connect.
	GatewayURL string

	// ZlibStream enables transport-layer zlib-stream compression.
	ZlibStream bool

	// LargeThreshold is the offline-member threshold sent on Identify.
	// Must be within [50, 250]; zero means "use Discord's default".
	LargeThreshold int

	// Presence is the optional initial presence sent on Identify.
	Presence any

	// Properties overrides the default identification properties.
	Properties Properties

	// Shard optionally scopes this connection to one shard.
	Shard *Shard
}

func (c Config) properties() Properties {
	p := c.Properties
	if p == (Properties{}) {
		return defaultProperties()
	}
	return p
}

func (c Config) buildIdentify(presence any) (Payload, error) {
	props := c.properties()
	d := identifyPayload{
		Token:   c.Token,
		Intents: int64(c.Intents),
		Properties: identifyProperties{
			OS:      props.OS,
			Browser: props.Browser,
			Device:  props.Device,
		},
		LargeThreshold: c.LargeThreshold,
		Presence:       presence,
	}
	if c.Shard != nil {
		d.Shard = &[2]int{c.Shard.ID, c.Shard.Count}
	}
	return marshalPayload(opcode.Identify, d)
}

func (c Config) buildResume(sessionID string, seq int64) (Payload, error) {
	d := resumePayload{
		Token:     c.Token,
		SessionID: sessionID,
		Seq:       seq,
	}
	return marshalPayload(opcode.Resume, d)
}
