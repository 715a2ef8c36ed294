// Package mod provides the /mod moderation commands. Each one is authorized
// through the fake permission model before touching the target.
package mod

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/permissions"
)

// Authorizer decides whether an actor may act on a target.
type Authorizer interface {
	CanActOn(ctx context.Context, guildID string, actor, target permissions.Member, name string) (permissions.Decision, error)
}

// Moderator performs the moderation actions.
type Moderator interface {
	FetchMember(ctx context.Context, guildID, userID string) (permissions.Member, error)
	BotHighestRoleRank(ctx context.Context, guildID string) (int, error)
	Kick(ctx context.Context, guildID, userID, reason string) error
	Ban(ctx context.Context, guildID, userID, reason string, purgeDays int) error
	Timeout(ctx context.Context, guildID, userID string, d time.Duration, reason string) error
}

var (
	_ Authorizer = (*permissions.Resolver)(nil)
	_ Moderator  = (*discord.Guard)(nil)
)

type commands struct {
	auth  Authorizer
	guard Moderator
}

// RegisterModCommands registers all moderation commands as /mod subcommands
func RegisterModCommands(client *discord.ExtendedClient, auth Authorizer, guard Moderator) {
	c := &commands{auth: auth, guard: guard}

	modGroup := client.CommandHandler.BuildCommandGroup(
		"mod",
		"Comandos de moderación",
		c.createBanCommand(),
		c.createKickCommand(),
		c.createMuteCommand(),
	)

	client.CommandHandler.AddGlobalCommand(modGroup)
}
