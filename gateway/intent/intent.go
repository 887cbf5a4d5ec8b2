// Package intent defines the gateway intent bitflags used when identifying
// with Discord, and the well-known OR'd groupings of them.
package intent

// Type is a bitmask of gateway intents.
type Type int64

const (
	Guilds                      Type = 1 << 0
	GuildMembers                Type = 1 << 1
	GuildModeration             Type = 1 << 2
	GuildExpressions            Type = 1 << 3
	GuildIntegrations           Type = 1 << 4
	GuildWebhooks               Type = 1 << 5
	GuildInvites                Type = 1 << 6
	GuildVoiceStates            Type = 1 << 7
	GuildPresences              Type = 1 << 8
	GuildMessages               Type = 1 << 9
	GuildMessageReactions       Type = 1 << 10
	GuildMessageTyping          Type = 1 << 11
	DirectMessages              Type = 1 << 12
	DirectMessageReactions      Type = 1 << 13
	DirectMessageTyping         Type = 1 << 14
	MessageContent              Type = 1 << 15
	GuildScheduledEvents        Type = 1 << 16
	AutoModerationConfiguration Type = 1 << 20
	AutoModerationExecution     Type = 1 << 21
	GuildMessagePolls           Type = 1 << 24
	DirectMessagePolls          Type = 1 << 25
)

// privileged is the subset of intents Discord requires to be explicitly
// enabled in the developer portal before the gateway will grant them.
const privileged = GuildPresences | GuildMembers | MessageContent

const standard = Guilds |
	GuildModeration |
	GuildExpressions |
	GuildIntegrations |
	GuildWebhooks |
	GuildInvites |
	GuildVoiceStates |
	GuildMessages |
	GuildMessageReactions |
	GuildMessageTyping |
	DirectMessages |
	DirectMessageReactions |
	DirectMessageTyping |
	GuildScheduledEvents |
	AutoModerationConfiguration |
	AutoModerationExecution |
	GuildMessagePolls |
	DirectMessagePolls

// None returns an empty intent set.
func None() Type { return 0 }

// Standard returns every non-privileged intent.
func Standard() Type { return standard }

// All returns every intent, privileged or not.
func All() Type { return standard | privileged }

// Privileged returns the subset of t that requires portal opt-in.
func Privileged(t Type) Type { return t & privileged }

// Has reports whether t includes every bit in want.
func Has(t, want Type) bool { return t&want == want }
