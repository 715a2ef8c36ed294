// Package antinuke provides the /antinuke command group. Every write goes
// through the engine, which enforces the owner and admin rules.
package antinuke

import (
	"context"

	"github.com/PancyStudios/PancyGuardGo/pkg/antinuke"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// Service is the part of the engine the commands drive.
type Service interface {
	Policy(ctx context.Context, guildID string) (*models.GuildPolicy, error)
	IsAdmin(ctx context.Context, req antinuke.Requester) (bool, error)
	SetEnabled(ctx context.Context, req antinuke.Requester, enabled bool) (*models.GuildPolicy, error)
	SetLimit(ctx context.Context, req antinuke.Requester, kind models.ActionKind, enabled bool, threshold uint) (*models.GuildPolicy, error)
	SetPunishment(ctx context.Context, req antinuke.Requester, cfg models.PunishmentConfig) (*models.GuildPolicy, error)
	SetLogging(ctx context.Context, req antinuke.Requester, cfg models.LoggingConfig) (*models.GuildPolicy, error)
	SetBypass(ctx context.Context, req antinuke.Requester, owner, bots bool) (*models.GuildPolicy, error)
	WhitelistAdd(ctx context.Context, req antinuke.Requester, userID string) (*models.GuildPolicy, error)
	WhitelistRemove(ctx context.Context, req antinuke.Requester, userID string) (*models.GuildPolicy, error)
	AddAdmin(ctx context.Context, req antinuke.Requester, userID string) (*models.GuildPolicy, error)
	RemoveAdmin(ctx context.Context, req antinuke.Requester, userID string) (*models.GuildPolicy, error)
	Reset(ctx context.Context, guildID, actorID string, kind *models.ActionKind) (int64, error)
	Counters(ctx context.Context, guildID, actorID string) ([]models.ActionCounter, error)
	History(ctx context.Context, q models.ViolationQuery) ([]models.ViolationLogEntry, error)
}

var _ Service = (*antinuke.Engine)(nil)

type commands struct {
	engine Service
}

// RegisterAntiNukeCommands registers /antinuke and its subcommand groups.
func RegisterAntiNukeCommands(client *discord.ExtendedClient, engine Service) {
	c := &commands{engine: engine}
	ch := client.CommandHandler

	group := ch.BuildCommandGroup(
		"antinuke",
		"Configura la protección AntiNuke del servidor",
		c.createStatusCommand(),
		c.createEnableCommand(),
		c.createDisableCommand(),
		c.createLimitCommand(),
		c.createPunishmentCommand(),
		c.createBypassCommand(),
		c.createLoggingCommand(),
		c.createResetCommand(),
		c.createHistoryCommand(),
	)

	group.Options = append(group.Options,
		ch.BuildSubcommandGroup("antinuke", "whitelist", "Gestiona la lista blanca",
			c.createWhitelistAddCommand(),
			c.createWhitelistRemoveCommand(),
			c.createWhitelistListCommand(),
		),
		ch.BuildSubcommandGroup("antinuke", "admin", "Gestiona los administradores del AntiNuke",
			c.createAdminAddCommand(),
			c.createAdminRemoveCommand(),
			c.createAdminListCommand(),
		),
	)

	ch.AddGlobalCommand(group)
}
