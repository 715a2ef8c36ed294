package models

import "time"

// FakePermissionGrant is the set of bot-scoped permissions given to a role.
// A grant with no permissions is deleted instead of stored empty.
type FakePermissionGrant struct {
	GuildID     string    `bson:"guildId" json:"guildId"`
	RoleID      string    `bson:"roleId" json:"roleId"`
	Permissions []string  `bson:"permissions" json:"permissions"`
	GrantedBy   string    `bson:"grantedBy" json:"grantedBy"`
	GrantedAt   time.Time `bson:"grantedAt" json:"grantedAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// StaffRoleSet lists the roles treated as staff in a guild.
type StaffRoleSet struct {
	GuildID   string    `bson:"guildId" json:"guildId"`
	RoleIDs   []string  `bson:"roleIds" json:"roleIds"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
