package mod

import (
	"context"
	"errors"
	"fmt"

	"github.com/PancyStudios/PancyGuardGo/pkg/antinuke"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord/access"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

const defaultReason = "Sin razón especificada"

func newCommand(name, description string, run discord.CommandRunFunc) *discord.Command {
	return discord.NewCommand(name, description, "mod", run).
		WithRequirement(access.RequirementGuild).
		RequiresDatabase()
}

// authorize checks that actor may use capability on targetID. It returns a
// denial message for the member, or "" when the action may proceed. When
// allowAbsent is set a user who is not in the guild can still be targeted.
func (c *commands) authorize(ctx context.Context, guildID string, actor permissions.Member, targetID, capability string, allowAbsent bool) (string, error) {
	present := true
	target, err := c.guard.FetchMember(ctx, guildID, targetID)
	switch {
	case errors.Is(err, antinuke.ErrMemberNotFound):
		if !allowAbsent {
			return "El usuario no está en el servidor.", nil
		}
		present = false
		target = permissions.Member{ID: targetID}
	case err != nil:
		return "", err
	}

	if target.IsOwner {
		return "No puedes actuar sobre el dueño del servidor.", nil
	}

	d, err := c.auth.CanActOn(ctx, guildID, actor, target, capability)
	if err != nil {
		return "", err
	}
	if !d.Allowed {
		return d.Reason.Message(), nil
	}

	if present {
		rank, err := c.guard.BotHighestRoleRank(ctx, guildID)
		if err != nil {
			return "", err
		}
		if target.HighestRank >= rank {
			return "Mi rol más alto no está por encima del usuario.", nil
		}
	}
	return "", nil
}

// auditReason is the reason stored in the audit log.
func auditReason(actor *discordgo.User, reason string) string {
	if actor == nil {
		return reason
	}
	return fmt.Sprintf("%s | por %s", reason, actor.Username)
}

func reasonOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "razon",
		Description: description,
		Required:    false,
		MaxLength:   400,
	}
}

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "usuario",
		Description: description,
		Required:    true,
	}
}

// run authorizes the command and then executes act.
func (c *commands) run(ctx *discord.CommandContext, capability string, allowAbsent bool, act func(user *discordgo.User, reason string) error) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}

	reason := ctx.GetStringOption("razon")
	if reason == "" {
		reason = defaultReason
	}

	denial, err := c.authorize(ctx.Context(), ctx.Interaction.GuildID, ctx.Actor(), user.ID, capability, allowAbsent)
	if err != nil {
		logger.Error(fmt.Sprintf("Error verificando %s sobre %s: %v", capability, user.ID, err), "Mod")
		return ctx.ReplyEphemeral("❌ No se pudieron verificar los permisos. Inténtalo de nuevo.")
	}
	if denial != "" {
		return ctx.ReplyEphemeral("🚫 " + denial)
	}

	return act(user, reason)
}
