package mod

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// maxMuteMinutes is the 28 day platform ceiling.
const maxMuteMinutes = 40320

func (c *commands) createBanCommand() *discord.Command {
	return newCommand("ban", "Banea a un usuario del servidor", c.banHandler).WithOptions(
		userOption("Usuario a banear"),
		reasonOption("Razón del ban"),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "dias",
			Description: "Días de mensajes a eliminar (0-7)",
			Required:    false,
			MinValue:    func() *float64 { v := 0.0; return &v }(),
			MaxValue:    7,
		},
	)
}

func (c *commands) banHandler(ctx *discord.CommandContext) error {
	return c.run(ctx, "BanMembers", true, func(user *discordgo.User, reason string) error {
		days := int(ctx.GetIntOption("dias"))
		if err := c.guard.Ban(ctx.Context(), ctx.Interaction.GuildID, user.ID, auditReason(ctx.User(), reason), days); err != nil {
			return ctx.ReplyEphemeral(fmt.Sprintf("❌ Error al banear: %v", err))
		}
		return ctx.Reply(fmt.Sprintf("🔨 **%s** ha sido baneado.\n**Razón:** %s", user.Username, reason))
	})
}

func (c *commands) createKickCommand() *discord.Command {
	return newCommand("kick", "Expulsa a un usuario del servidor", c.kickHandler).WithOptions(
		userOption("Usuario a expulsar"),
		reasonOption("Razón de la expulsión"),
	)
}

func (c *commands) kickHandler(ctx *discord.CommandContext) error {
	return c.run(ctx, "KickMembers", false, func(user *discordgo.User, reason string) error {
		if err := c.guard.Kick(ctx.Context(), ctx.Interaction.GuildID, user.ID, auditReason(ctx.User(), reason)); err != nil {
			return ctx.ReplyEphemeral(fmt.Sprintf("❌ Error al expulsar: %v", err))
		}
		return ctx.Reply(fmt.Sprintf("👢 **%s** ha sido expulsado.\n**Razón:** %s", user.Username, reason))
	})
}

func (c *commands) createMuteCommand() *discord.Command {
	return newCommand("mute", "Silencia a un usuario temporalmente", c.muteHandler).WithOptions(
		userOption("Usuario a silenciar"),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "duracion",
			Description: "Duración en minutos",
			Required:    true,
			MinValue:    func() *float64 { v := 1.0; return &v }(),
			MaxValue:    maxMuteMinutes,
		},
		reasonOption("Razón del silencio"),
	)
}

func (c *commands) muteHandler(ctx *discord.CommandContext) error {
	minutes := ctx.GetIntOption("duracion")
	if minutes < 1 {
		return ctx.ReplyEphemeral("❌ La duración debe ser al menos 1 minuto.")
	}

	return c.run(ctx, "ModerateMembers", false, func(user *discordgo.User, reason string) error {
		d := time.Duration(minutes) * time.Minute
		if err := c.guard.Timeout(ctx.Context(), ctx.Interaction.GuildID, user.ID, d, auditReason(ctx.User(), reason)); err != nil {
			return ctx.ReplyEphemeral(fmt.Sprintf("❌ Error al silenciar: %v", err))
		}
		return ctx.Reply(fmt.Sprintf("🔇 **%s** ha sido silenciado por %d minutos.\n**Razón:** %s",
			user.Username,
			minutes,
			reason,
		))
	})
}
