package models

import "time"

// FilterModule names one content filter check.
type FilterModule string

const (
	FilterCaps        FilterModule = "caps"
	FilterSpam        FilterModule = "spam"
	FilterSpoilers    FilterModule = "spoilers"
	FilterRegex       FilterModule = "regex"
	FilterMassMention FilterModule = "massmention"
	FilterMusicFiles  FilterModule = "musicfiles"
	FilterEmoji       FilterModule = "emoji"
	FilterInvites     FilterModule = "invites"
	FilterLinks       FilterModule = "links"
	FilterCustomWords FilterModule = "customWords"
)

// FilterModules lists every module in evaluation order.
func FilterModules() []FilterModule {
	return []FilterModule{
		FilterCaps,
		FilterSpam,
		FilterSpoilers,
		FilterRegex,
		FilterMassMention,
		FilterMusicFiles,
		FilterEmoji,
		FilterInvites,
		FilterLinks,
		FilterCustomWords,
	}
}

// FilterConfig is the per-guild content filter document. Zero thresholds
// fall back to the engine defaults.
type FilterConfig struct {
	GuildID        string         `bson:"guildId" json:"guildId"`
	Enabled        bool           `bson:"enabled" json:"enabled"`
	Modules        []FilterModule `bson:"modules" json:"modules"`
	CapsPercent    int            `bson:"capsPercent,omitempty" json:"capsPercent,omitempty"`
	SpamCount      int            `bson:"spamCount,omitempty" json:"spamCount,omitempty"`
	SpamWindowSecs int            `bson:"spamWindowSeconds,omitempty" json:"spamWindowSeconds,omitempty"`
	MentionLimit   int            `bson:"mentionLimit,omitempty" json:"mentionLimit,omitempty"`
	EmojiLimit     int            `bson:"emojiLimit,omitempty" json:"emojiLimit,omitempty"`
	Patterns       []string       `bson:"patterns,omitempty" json:"patterns,omitempty"`
	CustomWords    []string       `bson:"customWords,omitempty" json:"customWords,omitempty"`
	AllowedDomains []string       `bson:"allowedDomains,omitempty" json:"allowedDomains,omitempty"`
	TimeoutAfter   int            `bson:"timeoutAfter,omitempty" json:"timeoutAfter,omitempty"`
	ExemptRoleIDs  []string       `bson:"exemptRoleIds,omitempty" json:"exemptRoleIds,omitempty"`
	UpdatedAt      time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// FilterOffense counts filter violations of a member.
type FilterOffense struct {
	GuildID   string    `bson:"guildId" json:"guildId"`
	UserID    string    `bson:"userId" json:"userId"`
	Count     int       `bson:"count" json:"count"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
