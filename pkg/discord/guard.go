package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/antinuke"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/PancyStudios/PancyGuardGo/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

// MaxTimeout is the longest native timeout Discord accepts.
const MaxTimeout = 28 * 24 * time.Hour

// Guard performs member lookups and moderation calls through a session.
type Guard struct {
	session *discordgo.Session
	now     func() time.Time
}

var (
	_ antinuke.Membership    = (*Guard)(nil)
	_ antinuke.OwnerResolver = (*Guard)(nil)
)

// NewGuard creates a Guard on session.
func NewGuard(session *discordgo.Session) *Guard {
	return &Guard{session: session, now: time.Now}
}

// isNotFound reports whether err is a REST 404 or an unknown member error.
func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMember {
		return true
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

func (g *Guard) guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	if guild, err := g.session.State.Guild(guildID); err == nil && len(guild.Roles) > 0 {
		return guild, nil
	}
	return g.session.Guild(guildID, discordgo.WithContext(ctx))
}

func (g *Guard) member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if m, err := g.session.State.Member(guildID, userID); err == nil {
		return m, nil
	}
	m, err := g.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return nil, antinuke.ErrMemberNotFound
		}
		return nil, err
	}
	return m, nil
}

// GuildOwner returns the owner id of a guild.
func (g *Guard) GuildOwner(ctx context.Context, guildID string) (string, error) {
	guild, err := g.guild(ctx, guildID)
	if err != nil {
		return "", fmt.Errorf("fetch guild %s: %w", guildID, err)
	}
	return guild.OwnerID, nil
}

// FetchMember returns the permission snapshot of a member.
func (g *Guard) FetchMember(ctx context.Context, guildID, userID string) (permissions.Member, error) {
	guild, err := g.guild(ctx, guildID)
	if err != nil {
		return permissions.Member{}, fmt.Errorf("fetch guild %s: %w", guildID, err)
	}
	m, err := g.member(ctx, guildID, userID)
	if err != nil {
		return permissions.Member{}, err
	}
	return MemberFromGuild(guild, m), nil
}

// MemberRoles lists the roles a member holds.
func (g *Guard) MemberRoles(ctx context.Context, guildID, userID string) ([]antinuke.Role, error) {
	guild, err := g.guild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("fetch guild %s: %w", guildID, err)
	}
	m, err := g.member(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	return memberRoles(guild, m), nil
}

// BotHighestRoleRank is the position of the bot's highest role.
func (g *Guard) BotHighestRoleRank(ctx context.Context, guildID string) (int, error) {
	if g.session.State == nil || g.session.State.User == nil {
		return 0, errors.New("session has no bot user")
	}
	m, err := g.FetchMember(ctx, guildID, g.session.State.User.ID)
	if err != nil {
		return 0, err
	}
	return m.HighestRank, nil
}

// Kick removes a member from the guild.
func (g *Guard) Kick(ctx context.Context, guildID, userID, reason string) error {
	return g.session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
}

// Ban bans a member and purges purgeDays of their messages.
func (g *Guard) Ban(ctx context.Context, guildID, userID, reason string, purgeDays int) error {
	return g.session.GuildBanCreateWithReason(guildID, userID, reason, purgeDays, discordgo.WithContext(ctx))
}

// RemoveRole takes roleID away from a member.
func (g *Guard) RemoveRole(ctx context.Context, guildID, userID, roleID, reason string) error {
	return g.session.GuildMemberRoleRemove(guildID, userID, roleID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

// Confine isolates a member until until. With a role it adds the role,
// without one it applies a native timeout.
func (g *Guard) Confine(ctx context.Context, guildID, userID, roleID string, until time.Time, reason string) error {
	if roleID != "" {
		return g.session.GuildMemberRoleAdd(guildID, userID, roleID,
			discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	}
	deadline := clampTimeout(g.now(), until)
	return g.session.GuildMemberTimeout(guildID, userID, &deadline,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

// Release lifts an expired confinement. A member who already left counts as
// released.
func (g *Guard) Release(ctx context.Context, c models.Confinement) error {
	var err error
	if c.RoleID != "" {
		err = g.session.GuildMemberRoleRemove(c.GuildID, c.UserID, c.RoleID,
			discordgo.WithContext(ctx), discordgo.WithAuditLogReason("AntiNuke: aislamiento expirado"))
	} else {
		err = g.session.GuildMemberTimeout(c.GuildID, c.UserID, nil, discordgo.WithContext(ctx))
	}
	if err != nil && isNotFound(err) {
		logger.Debug(fmt.Sprintf("El miembro %s ya no está en %s, aislamiento descartado", c.UserID, c.GuildID), "Guard")
		return nil
	}
	return err
}

// Timeout mutes a member for d, clamped to MaxTimeout.
func (g *Guard) Timeout(ctx context.Context, guildID, userID string, d time.Duration, reason string) error {
	now := g.now()
	deadline := clampTimeout(now, now.Add(d))
	return g.session.GuildMemberTimeout(guildID, userID, &deadline,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

func clampTimeout(now, until time.Time) time.Time {
	if limit := now.Add(MaxTimeout); until.After(limit) {
		return limit
	}
	return until
}

// DeleteMessage removes a message from a channel.
func (g *Guard) DeleteMessage(ctx context.Context, channelID, messageID, reason string) error {
	return g.session.ChannelMessageDelete(channelID, messageID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}
