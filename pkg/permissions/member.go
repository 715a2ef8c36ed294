package permissions

import "github.com/bwmarrin/discordgo"

// Member is the guild member snapshot every check works on.
type Member struct {
	ID          string
	Username    string
	Bot         bool
	RoleIDs     []string
	Permissions int64
	HighestRank int
	IsOwner     bool
}

// IsNativeAdmin is true for the guild owner and for Administrator holders.
func (m Member) IsNativeAdmin() bool {
	return m.IsOwner || m.Permissions&discordgo.PermissionAdministrator != 0
}

// HasNative reports whether the member natively holds every bit of flag.
func (m Member) HasNative(flag int64) bool {
	return m.IsNativeAdmin() || m.Permissions&flag == flag
}

// Outranks reports whether m sits strictly above other in the role hierarchy.
func (m Member) Outranks(other Member) bool {
	return m.HighestRank > other.HighestRank
}
