package discord

import (
	"github.com/PancyStudios/PancyGuardGo/pkg/antinuke"
	"github.com/PancyStudios/PancyGuardGo/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

// MemberFromGuild builds the permission snapshot of m. Base permissions are
// the @everyone role plus every role the member holds. Interaction members
// also carry resolved channel permissions, which are merged in.
func MemberFromGuild(guild *discordgo.Guild, m *discordgo.Member) permissions.Member {
	out := permissions.Member{}
	if m == nil {
		return out
	}
	if m.User != nil {
		out.ID = m.User.ID
		out.Username = m.User.Username
		out.Bot = m.User.Bot
	}
	out.RoleIDs = append([]string(nil), m.Roles...)
	out.Permissions = m.Permissions

	if guild == nil {
		return out
	}
	out.IsOwner = guild.OwnerID != "" && guild.OwnerID == out.ID

	held := make(map[string]struct{}, len(m.Roles))
	for _, id := range m.Roles {
		held[id] = struct{}{}
	}
	for _, role := range guild.Roles {
		if role.ID == guild.ID {
			out.Permissions |= role.Permissions
			continue
		}
		if _, ok := held[role.ID]; !ok {
			continue
		}
		out.Permissions |= role.Permissions
		if role.Position > out.HighestRank {
			out.HighestRank = role.Position
		}
	}
	return out
}

// memberRoles returns the roles of m in guild, @everyone excluded.
func memberRoles(guild *discordgo.Guild, m *discordgo.Member) []antinuke.Role {
	if guild == nil || m == nil {
		return nil
	}
	held := make(map[string]struct{}, len(m.Roles))
	for _, id := range m.Roles {
		held[id] = struct{}{}
	}
	roles := make([]antinuke.Role, 0, len(m.Roles))
	for _, role := range guild.Roles {
		if role.ID == guild.ID {
			continue
		}
		if _, ok := held[role.ID]; !ok {
			continue
		}
		roles = append(roles, antinuke.Role{
			ID:          role.ID,
			Name:        role.Name,
			Permissions: role.Permissions,
			Position:    role.Position,
			Managed:     role.Managed,
		})
	}
	return roles
}
