package models

import "time"

// Confinement is a temporary restriction applied by the punisher. RoleID is
// empty when the platform timeout was used instead of a jail role.
type Confinement struct {
	GuildID   string    `bson:"guildId" json:"guildId"`
	UserID    string    `bson:"userId" json:"userId"`
	RoleID    string    `bson:"roleId,omitempty" json:"roleId,omitempty"`
	Reason    string    `bson:"reason" json:"reason"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
}

// Expired reports whether the confinement should be lifted at now.
func (c Confinement) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
