package antinuke

import (
	"errors"
	"fmt"

	"github.com/PancyStudios/PancyGuardGo/pkg/antinuke"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord/access"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

func newCommand(name, description string, run discord.CommandRunFunc) *discord.Command {
	return discord.NewCommand(name, description, "antinuke", run).
		WithRequirement(access.RequirementGuild).
		RequiresDatabase()
}

// requester identifies the member running the command. The owner comes from
// state and falls back to REST; the engine resolves it again for owner-only
// changes.
func requester(ctx *discord.CommandContext) antinuke.Requester {
	req := antinuke.Requester{GuildID: ctx.Interaction.GuildID}
	if u := ctx.User(); u != nil {
		req.UserID = u.ID
	}
	guild := ctx.Guild()
	if guild == nil && req.GuildID != "" {
		guild, _ = ctx.Session.Guild(req.GuildID)
	}
	if guild != nil {
		req.OwnerID = guild.OwnerID
	}
	return req
}

// adminRequester is requester plus the admin check for read-only subcommands.
func (c *commands) adminRequester(ctx *discord.CommandContext) (antinuke.Requester, error) {
	req := requester(ctx)
	ok, err := c.engine.IsAdmin(ctx.Context(), req)
	if err == nil && !ok {
		err = antinuke.ErrNotAdmin
	}
	return req, err
}

var userErrors = []error{
	antinuke.ErrOwnerOnly,
	antinuke.ErrNotAdmin,
	antinuke.ErrInvalidLimit,
	antinuke.ErrAlreadyWhitelisted,
	antinuke.ErrNotWhitelisted,
	antinuke.ErrAlreadyAdmin,
	antinuke.ErrNotAnAdmin,
}

func isUserError(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// errorMessage turns an engine error into the text shown to the member.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, antinuke.ErrOwnerOnly):
		return "Solo el dueño del servidor puede gestionar los administradores del AntiNuke."
	case errors.Is(err, antinuke.ErrNotAdmin):
		return "Necesitas ser administrador del AntiNuke para usar este comando."
	case errors.Is(err, antinuke.ErrInvalidLimit):
		return "El límite debe ser al menos 1."
	case errors.Is(err, antinuke.ErrAlreadyWhitelisted):
		return "Ese usuario ya está en la lista blanca."
	case errors.Is(err, antinuke.ErrNotWhitelisted):
		return "Ese usuario no está en la lista blanca."
	case errors.Is(err, antinuke.ErrAlreadyAdmin):
		return "Ese usuario ya es administrador del AntiNuke."
	case errors.Is(err, antinuke.ErrNotAnAdmin):
		return "Ese usuario no es administrador del AntiNuke."
	default:
		return "Ocurrió un error al procesar la configuración. Inténtalo de nuevo más tarde."
	}
}

func replyError(ctx *discord.CommandContext, err error) error {
	if !isUserError(err) {
		logger.Error(fmt.Sprintf("Error en /antinuke (guild %s): %v", ctx.Interaction.GuildID, err), "AntiNuke")
	}
	return ctx.ReplyEphemeral("❌ " + errorMessage(err))
}

// replyUpdated answers a policy write.
func replyUpdated(ctx *discord.CommandContext, err error, message string) error {
	if err != nil {
		return replyError(ctx, err)
	}
	return ctx.ReplyEmbed(successEmbed(message))
}

func kindChoices() []*discordgo.ApplicationCommandOptionChoice {
	kinds := models.AllActionKinds()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(kinds))
	for _, k := range kinds {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  k.Label(),
			Value: string(k),
		})
	}
	return choices
}

func punishmentChoices() []*discordgo.ApplicationCommandOptionChoice {
	kinds := models.PunishmentKinds()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(kinds))
	for _, p := range kinds {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  discord.PunishmentLabel(p),
			Value: string(p),
		})
	}
	return choices
}

// optionalKind reads the "accion" option. Empty means every kind.
func optionalKind(raw string) (*models.ActionKind, error) {
	if raw == "" {
		return nil, nil
	}
	k, err := models.ParseActionKind(raw)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func floatPtr(v float64) *float64 {
	return &v
}
