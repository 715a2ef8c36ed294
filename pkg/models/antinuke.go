package models

import (
	"fmt"
	"slices"
	"time"
)

// ActionKind is a monitored administrative action type.
type ActionKind string

const (
	ActionChannelCreate ActionKind = "channelCreate"
	ActionChannelDelete ActionKind = "channelDelete"
	ActionRoleCreate    ActionKind = "roleCreate"
	ActionRoleDelete    ActionKind = "roleDelete"
	ActionRoleUpdate    ActionKind = "roleUpdate"
	ActionMemberKick    ActionKind = "memberKick"
	ActionMemberBan     ActionKind = "memberBan"
	ActionWebhookCreate ActionKind = "webhookCreate"
	ActionWebhookDelete ActionKind = "webhookDelete"
	ActionEmojiDelete   ActionKind = "emojiDelete"
	ActionGuildUpdate   ActionKind = "guildUpdate"
)

var actionKinds = []ActionKind{
	ActionChannelCreate,
	ActionChannelDelete,
	ActionRoleCreate,
	ActionRoleDelete,
	ActionRoleUpdate,
	ActionMemberKick,
	ActionMemberBan,
	ActionWebhookCreate,
	ActionWebhookDelete,
	ActionEmojiDelete,
	ActionGuildUpdate,
}

var actionLabels = map[ActionKind]string{
	ActionChannelCreate: "creación de canales",
	ActionChannelDelete: "eliminación de canales",
	ActionRoleCreate:    "creación de roles",
	ActionRoleDelete:    "eliminación de roles",
	ActionRoleUpdate:    "edición de roles",
	ActionMemberKick:    "expulsiones",
	ActionMemberBan:     "baneos",
	ActionWebhookCreate: "creación de webhooks",
	ActionWebhookDelete: "eliminación de webhooks",
	ActionEmojiDelete:   "eliminación de emojis",
	ActionGuildUpdate:   "edición del servidor",
}

// AllActionKinds returns every monitored kind in a stable order.
func AllActionKinds() []ActionKind {
	return slices.Clone(actionKinds)
}

// ParseActionKind validates a raw kind name.
func ParseActionKind(s string) (ActionKind, error) {
	k := ActionKind(s)
	if _, ok := actionLabels[k]; !ok {
		return "", fmt.Errorf("unknown action kind %q", s)
	}
	return k, nil
}

// Label is the human readable name used in logs and embeds.
func (k ActionKind) Label() string {
	if l, ok := actionLabels[k]; ok {
		return l
	}
	return string(k)
}

// PunishmentKind is the response applied to an actor that breached a limit.
type PunishmentKind string

const (
	PunishmentNone            PunishmentKind = "none"
	PunishmentKick            PunishmentKind = "kick"
	PunishmentBan             PunishmentKind = "ban"
	PunishmentStrip           PunishmentKind = "strip_permissions"
	PunishmentConfine         PunishmentKind = "confine"
	PunishmentConfineAndStrip PunishmentKind = "confine_and_strip"
)

// PunishmentKinds lists every punishment in menu order.
func PunishmentKinds() []PunishmentKind {
	return []PunishmentKind{
		PunishmentNone,
		PunishmentKick,
		PunishmentBan,
		PunishmentStrip,
		PunishmentConfine,
		PunishmentConfineAndStrip,
	}
}

// ParsePunishmentKind validates a raw punishment name.
func ParsePunishmentKind(s string) (PunishmentKind, error) {
	p := PunishmentKind(s)
	if slices.Contains(PunishmentKinds(), p) {
		return p, nil
	}
	return "", fmt.Errorf("unknown punishment %q", s)
}

// LimitConfig is the threshold for one action kind.
type LimitConfig struct {
	Enabled bool `bson:"enabled" json:"enabled"`
	Max     uint `bson:"max" json:"max"`
}

// PunishmentConfig describes what happens on breach.
type PunishmentConfig struct {
	Type                       PunishmentKind `bson:"type" json:"type"`
	StripDangerousPerms        bool           `bson:"stripDangerousPerms" json:"stripDangerousPerms"`
	ConfinementDurationSeconds uint           `bson:"confinementDurationSeconds" json:"confinementDurationSeconds"`
	ConfinementRoleID          string         `bson:"confinementRoleId,omitempty" json:"confinementRoleId,omitempty"`
	NotifyUser                 bool           `bson:"notifyUser" json:"notifyUser"`
	ResetCounterOnPunish       bool           `bson:"resetCounterOnPunish" json:"resetCounterOnPunish"`
}

// ConfinementDuration is the configured confinement as a time.Duration.
func (p PunishmentConfig) ConfinementDuration() time.Duration {
	return time.Duration(p.ConfinementDurationSeconds) * time.Second
}

// WhitelistConfig lists actors exempt from counting.
type WhitelistConfig struct {
	UserIDs     []string `bson:"userIds" json:"userIds"`
	BypassOwner bool     `bson:"bypassOwner" json:"bypassOwner"`
	BypassBots  bool     `bson:"bypassBots" json:"bypassBots"`
}

// LoggingConfig controls the guild log channel output.
type LoggingConfig struct {
	Enabled        bool   `bson:"enabled" json:"enabled"`
	ChannelID      string `bson:"channelId,omitempty" json:"channelId,omitempty"`
	LogActions     bool   `bson:"logActions" json:"logActions"`
	LogPunishments bool   `bson:"logPunishments" json:"logPunishments"`
}

// GuildPolicy is the AntiNuke configuration of one guild.
type GuildPolicy struct {
	GuildID      string                     `bson:"guildId" json:"guildId"`
	Enabled      bool                       `bson:"enabled" json:"enabled"`
	Limits       map[ActionKind]LimitConfig `bson:"limits" json:"limits"`
	Punishment   PunishmentConfig           `bson:"punishment" json:"punishment"`
	Whitelist    WhitelistConfig            `bson:"whitelist" json:"whitelist"`
	AdminUserIDs []string                   `bson:"adminUserIds" json:"adminUserIds"`
	Logging      LoggingConfig              `bson:"logging" json:"logging"`
	CreatedAt    time.Time                  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time                  `bson:"updatedAt" json:"updatedAt"`
}

// DefaultLimit is the out-of-the-box threshold for a kind.
func DefaultLimit(kind ActionKind) LimitConfig {
	switch kind {
	case ActionChannelCreate, ActionRoleCreate, ActionRoleUpdate, ActionEmojiDelete:
		return LimitConfig{Enabled: true, Max: 5}
	default:
		return LimitConfig{Enabled: true, Max: 3}
	}
}

// DefaultGuildPolicy is the policy created on first access. Protection
// starts disabled until an admin turns it on.
func DefaultGuildPolicy(guildID string) *GuildPolicy {
	now := time.Now()
	p := &GuildPolicy{
		GuildID: guildID,
		Enabled: false,
		Limits:  make(map[ActionKind]LimitConfig, len(actionKinds)),
		Punishment: PunishmentConfig{
			Type:                       PunishmentBan,
			StripDangerousPerms:        true,
			ConfinementDurationSeconds: 3600,
			NotifyUser:                 true,
		},
		Whitelist: WhitelistConfig{
			UserIDs:     []string{},
			BypassOwner: true,
		},
		AdminUserIDs: []string{},
		Logging: LoggingConfig{
			Enabled:        true,
			LogPunishments: true,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, k := range actionKinds {
		p.Limits[k] = DefaultLimit(k)
	}
	return p
}

// Normalize fills limit entries missing from older documents and replaces
// a zero threshold, which would breach on every action, with the default.
func (p *GuildPolicy) Normalize() {
	if p.Limits == nil {
		p.Limits = make(map[ActionKind]LimitConfig, len(actionKinds))
	}
	for _, k := range actionKinds {
		l, ok := p.Limits[k]
		switch {
		case !ok:
			p.Limits[k] = DefaultLimit(k)
		case l.Max == 0:
			l.Max = DefaultLimit(k).Max
			p.Limits[k] = l
		}
	}
	if p.Whitelist.UserIDs == nil {
		p.Whitelist.UserIDs = []string{}
	}
	if p.AdminUserIDs == nil {
		p.AdminUserIDs = []string{}
	}
	if p.Punishment.Type == "" {
		p.Punishment.Type = PunishmentNone
	}
}

// Limit returns the limit of kind, falling back to the default.
func (p *GuildPolicy) Limit(kind ActionKind) LimitConfig {
	if l, ok := p.Limits[kind]; ok {
		return l
	}
	return DefaultLimit(kind)
}

// IsWhitelisted reports explicit whitelist membership only.
func (p *GuildPolicy) IsWhitelisted(userID string) bool {
	return slices.Contains(p.Whitelist.UserIDs, userID)
}

// IsAdmin reports explicit admin membership only. Ownership is checked by callers.
func (p *GuildPolicy) IsAdmin(userID string) bool {
	return slices.Contains(p.AdminUserIDs, userID)
}

// Clone returns a deep copy so cached policies are never mutated in place.
func (p *GuildPolicy) Clone() *GuildPolicy {
	if p == nil {
		return nil
	}
	c := *p
	c.Limits = make(map[ActionKind]LimitConfig, len(p.Limits))
	for k, v := range p.Limits {
		c.Limits[k] = v
	}
	c.Whitelist.UserIDs = slices.Clone(p.Whitelist.UserIDs)
	c.AdminUserIDs = slices.Clone(p.AdminUserIDs)
	return &c
}
