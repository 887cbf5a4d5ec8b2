package gateway

import (
	"encoding/json"

	"github.com/ivanmoreno/gogateway/gateway/opcode"
)

// Payload is the envelope for every message exchanged with the gateway.
// See https://discord.com/developers/docs/topics/gateway-events#payload-structure.
type Payload struct {
	Op opcode.Type     `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	S  *int64          `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

// Event is what's handed to the user's dispatch callback for each Dispatch
// (op 0) payload received on the wire.
type Event struct {
	Name string
	Data json.RawMessage
	Seq  int64
}

type helloData struct {
	HeartbeatInterval int64 `json:"heartbeat_interval"`
}

type readyData struct {
	SessionID        string `json:"session_id"`
	ResumeGatewayURL string `json:"resume_gateway_url"`
}

type identifyProperties struct {
	OS      string `json:"$os"`
	Browser string `json:"$browser"`
	Device  string `json:"$device"`
}

type identifyPayload struct {
	Token          string             `json:"token"`
	Intents        int64              `json:"intents"`
	Properties     identifyProperties `json:"properties"`
	Compress       bool               `json:"compress,omitempty"`
	LargeThreshold int                `json:"large_threshold,omitempty"`
	Shard          *[2]int            `json:"shard,omitempty"`
	Presence       any                `json:"presence,omitempty"`
}

type resumePayload struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
}

type gatewayBotResponse struct {
	URL string `json:"url"`
}

func marshalPayload(op opcode.Type, d any) (Payload, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Op: op, D: raw}, nil
}

func marshalJSON(p Payload) ([]byte, error) {
	return json.Marshal(p)
}
