package models

import "time"

// EntryType separates raw monitored actions from punishment outcomes.
type EntryType string

const (
	EntryAction     EntryType = "action"
	EntryPunishment EntryType = "punishment"
)

// TargetType is what a monitored action touched.
type TargetType string

const (
	TargetChannel TargetType = "channel"
	TargetRole    TargetType = "role"
	TargetMember  TargetType = "member"
	TargetWebhook TargetType = "webhook"
	TargetEmoji   TargetType = "emoji"
	TargetGuild   TargetType = "guild"
)

// TargetTypeOf maps an action kind to the kind of object it affects.
func TargetTypeOf(kind ActionKind) TargetType {
	switch kind {
	case ActionChannelCreate, ActionChannelDelete:
		return TargetChannel
	case ActionRoleCreate, ActionRoleDelete, ActionRoleUpdate:
		return TargetRole
	case ActionMemberKick, ActionMemberBan:
		return TargetMember
	case ActionWebhookCreate, ActionWebhookDelete:
		return TargetWebhook
	case ActionEmojiDelete:
		return TargetEmoji
	default:
		return TargetGuild
	}
}

// Executor identifies who performed the action.
type Executor struct {
	ID          string `bson:"id" json:"id"`
	DisplayName string `bson:"displayName" json:"displayName"`
}

// ViolationLogEntry is an immutable record of a monitored action or of a
// punishment outcome.
type ViolationLogEntry struct {
	GuildID           string                 `bson:"guildId" json:"guildId"`
	ActorID           string                 `bson:"actorId" json:"actorId"`
	Type              EntryType              `bson:"type" json:"type"`
	ActionKind        ActionKind             `bson:"actionKind" json:"actionKind"`
	TargetType        TargetType             `bson:"targetType,omitempty" json:"targetType,omitempty"`
	TargetID          string                 `bson:"targetId,omitempty" json:"targetId,omitempty"`
	TargetName        string                 `bson:"targetName,omitempty" json:"targetName,omitempty"`
	Executor          Executor               `bson:"executor" json:"executor"`
	Details           map[string]interface{} `bson:"details,omitempty" json:"details,omitempty"`
	Violated          bool                   `bson:"violated" json:"violated"`
	Count             uint                   `bson:"count,omitempty" json:"count,omitempty"`
	Limit             uint                   `bson:"limit,omitempty" json:"limit,omitempty"`
	PunishmentApplied PunishmentKind         `bson:"punishmentApplied,omitempty" json:"punishmentApplied,omitempty"`
	Success           bool                   `bson:"success" json:"success"`
	Reason            string                 `bson:"reason,omitempty" json:"reason,omitempty"`
	IncidentID        string                 `bson:"incidentId,omitempty" json:"incidentId,omitempty"`
	Timestamp         time.Time              `bson:"timestamp" json:"timestamp"`
}

// ViolationQuery filters the violation log. Zero fields match everything.
type ViolationQuery struct {
	GuildID    string
	ActorID    string
	ActionKind ActionKind
	Type       EntryType
	Since      time.Time
	Until      time.Time
	Limit      int
}
