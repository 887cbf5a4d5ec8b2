package gateway

// closeKind classifies a gateway close code per spec: transient closures
// may be retried on the same session, session-invalidating closures must
// re-identify fresh, and fatal closures must be surfaced and not retried.
type closeKind int

const (
	closeTransient closeKind = iota
	closeSessionInvalidating
	closeFatal
)

// closeCodeNames mirrors Discord's documented close codes. See
// https://discord.com/developers/docs/topics/opcodes-and-status-codes#gateway-gateway-close-event-codes.
var closeCodeNames = map[int]string{
	4000: "Unknown Error",
	4001: "Unknown Opcode",
	4002: "Decode Error",
	4003: "Not Authenticated",
	4004: "Authentication Failed",
	4005: "Already Authenticated",
	4007: "Invalid Seq",
	4008: "Rate Limited",
	4009: "Session Timed Out",
	4010: "Invalid Shard",
	4011: "Sharding Required",
	4012: "Invalid API Version",
	4013: "Invalid Intents",
	4014: "Disallowed Intents",
}

var fatalCloseCodes = map[int]bool{
	4004: true,
	4010: true,
	4011: true,
	4012: true,
	4013: true,
	4014: true,
}

var sessionInvalidatingCloseCodes = map[int]bool{
	4007: true,
	4008: true,
	4009: true,
}

func classifyCloseCode(code int) closeKind {
	if fatalCloseCodes[code] {
		return closeFatal
	}
	if sessionInvalidatingCloseCodes[code] {
		return closeSessionInvalidating
	}
	// Unknown codes are treated as transient; see spec open questions.
	return closeTransient
}

func closeCodeReason(code int) string {
	if name, ok := closeCodeNames[code]; ok {
		return name
	}
	return "Unknown"
}
