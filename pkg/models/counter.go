package models

import "time"

// ActionCounter counts how many times an actor performed one kind of action.
// The count only goes down through an explicit reset.
type ActionCounter struct {
	GuildID      string     `bson:"guildId" json:"guildId"`
	ActorID      string     `bson:"actorId" json:"actorId"`
	ActionKind   ActionKind `bson:"actionKind" json:"actionKind"`
	Count        uint       `bson:"count" json:"count"`
	LastActionAt time.Time  `bson:"lastActionAt" json:"lastActionAt"`
	ResetAt      *time.Time `bson:"resetAt,omitempty" json:"resetAt,omitempty"`
}
