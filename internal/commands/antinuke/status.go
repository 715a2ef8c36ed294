package antinuke

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 25
)

func (c *commands) createStatusCommand() *discord.Command {
	return newCommand("status", "Muestra la configuración del AntiNuke", c.statusHandler)
}

func (c *commands) statusHandler(ctx *discord.CommandContext) error {
	if _, err := c.adminRequester(ctx); err != nil {
		return replyError(ctx, err)
	}
	policy, err := c.engine.Policy(ctx.Context(), ctx.Interaction.GuildID)
	if err != nil {
		return replyError(ctx, err)
	}
	return ctx.ReplyEphemeralEmbed(statusEmbed(policy))
}

func (c *commands) createResetCommand() *discord.Command {
	return newCommand("reset", "Reinicia los contadores de un usuario", c.resetHandler).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario cuyos contadores se reinician",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "accion",
			Description: "Solo esta acción (vacío reinicia todas)",
			Required:    false,
			Choices:     kindChoices(),
		},
	)
}

func (c *commands) resetHandler(ctx *discord.CommandContext) error {
	req, err := c.adminRequester(ctx)
	if err != nil {
		return replyError(ctx, err)
	}

	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}
	kind, err := optionalKind(ctx.GetStringOption("accion"))
	if err != nil {
		return ctx.ReplyEphemeral("❌ Acción desconocida.")
	}

	n, err := c.engine.Reset(ctx.Context(), req.GuildID, user.ID, kind)
	if err != nil {
		return replyError(ctx, err)
	}
	if n == 0 {
		return ctx.ReplyEphemeral(fmt.Sprintf("ℹ️ **%s** no tiene contadores que reiniciar.", user.Username))
	}

	scope := "todas las acciones"
	if kind != nil {
		scope = kind.Label()
	}
	return ctx.ReplyEmbed(successEmbed(fmt.Sprintf("Contadores de **%s** reiniciados para %s (%d).", user.Username, scope, n)))
}

func (c *commands) createHistoryCommand() *discord.Command {
	return newCommand("history", "Muestra el historial de acciones y castigos", c.historyHandler).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Filtrar por ejecutor",
			Required:    false,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "accion",
			Description: "Filtrar por acción",
			Required:    false,
			Choices:     kindChoices(),
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "horas",
			Description: "Solo las últimas N horas",
			Required:    false,
			MinValue:    floatPtr(1),
			MaxValue:    24 * 90,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "cantidad",
			Description: "Número de registros (máximo 25)",
			Required:    false,
			MinValue:    floatPtr(1),
			MaxValue:    maxHistoryLimit,
		},
	)
}

func (c *commands) historyHandler(ctx *discord.CommandContext) error {
	req, err := c.adminRequester(ctx)
	if err != nil {
		return replyError(ctx, err)
	}

	kind, err := optionalKind(ctx.GetStringOption("accion"))
	if err != nil {
		return ctx.ReplyEphemeral("❌ Acción desconocida.")
	}

	actorID := ""
	if u := ctx.GetUserOption("usuario"); u != nil {
		actorID = u.ID
	}
	q := historyQuery(req.GuildID, actorID, kind, ctx.GetIntOption("horas"), ctx.GetIntOption("cantidad"), time.Now())

	entries, err := c.engine.History(ctx.Context(), q)
	if err != nil {
		return replyError(ctx, err)
	}

	embed := historyEmbed(entries)
	if actorID != "" {
		counters, err := c.engine.Counters(ctx.Context(), req.GuildID, actorID)
		if err != nil {
			return replyError(ctx, err)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Contadores actuales",
			Value: countersText(counters),
		})
	}
	return ctx.ReplyEphemeralEmbed(embed)
}

// historyQuery builds the log query of /antinuke history.
func historyQuery(guildID, actorID string, kind *models.ActionKind, hours, limit int64, now time.Time) models.ViolationQuery {
	q := models.ViolationQuery{
		GuildID: guildID,
		ActorID: actorID,
		Limit:   defaultHistoryLimit,
	}
	if kind != nil {
		q.ActionKind = *kind
	}
	if hours > 0 {
		q.Since = now.Add(-time.Duration(hours) * time.Hour)
	}
	if limit > 0 {
		q.Limit = int(min(limit, maxHistoryLimit))
	}
	return q
}
