package antinuke

import (
	"fmt"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "usuario",
		Description: description,
		Required:    true,
	}
}

func (c *commands) createWhitelistAddCommand() *discord.Command {
	return newCommand("add", "Exime a un usuario del AntiNuke", c.whitelistAddHandler).
		WithOptions(userOption("Usuario a eximir"))
}

func (c *commands) whitelistAddHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}
	_, err := c.engine.WhitelistAdd(ctx.Context(), requester(ctx), user.ID)
	return replyUpdated(ctx, err, fmt.Sprintf("**%s** fue añadido a la lista blanca.", user.Username))
}

func (c *commands) createWhitelistRemoveCommand() *discord.Command {
	return newCommand("remove", "Quita a un usuario de la lista blanca", c.whitelistRemoveHandler).
		WithOptions(userOption("Usuario a quitar"))
}

func (c *commands) whitelistRemoveHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}
	_, err := c.engine.WhitelistRemove(ctx.Context(), requester(ctx), user.ID)
	return replyUpdated(ctx, err, fmt.Sprintf("**%s** fue quitado de la lista blanca.", user.Username))
}

func (c *commands) createWhitelistListCommand() *discord.Command {
	return newCommand("list", "Muestra la lista blanca", c.whitelistListHandler)
}

func (c *commands) whitelistListHandler(ctx *discord.CommandContext) error {
	if _, err := c.adminRequester(ctx); err != nil {
		return replyError(ctx, err)
	}
	policy, err := c.engine.Policy(ctx.Context(), ctx.Interaction.GuildID)
	if err != nil {
		return replyError(ctx, err)
	}
	return ctx.ReplyEphemeralEmbed(listEmbed("📃 Lista blanca", policy.Whitelist.UserIDs))
}

func (c *commands) createAdminAddCommand() *discord.Command {
	return newCommand("add", "Nombra un administrador del AntiNuke (solo el dueño)", c.adminAddHandler).
		WithOptions(userOption("Nuevo administrador"))
}

func (c *commands) adminAddHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}
	if user.Bot {
		return ctx.ReplyEphemeral("❌ Un bot no puede administrar el AntiNuke.")
	}
	_, err := c.engine.AddAdmin(ctx.Context(), requester(ctx), user.ID)
	return replyUpdated(ctx, err, fmt.Sprintf("**%s** ahora es administrador del AntiNuke.", user.Username))
}

func (c *commands) createAdminRemoveCommand() *discord.Command {
	return newCommand("remove", "Retira a un administrador del AntiNuke (solo el dueño)", c.adminRemoveHandler).
		WithOptions(userOption("Administrador a retirar"))
}

func (c *commands) adminRemoveHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}
	_, err := c.engine.RemoveAdmin(ctx.Context(), requester(ctx), user.ID)
	return replyUpdated(ctx, err, fmt.Sprintf("**%s** ya no es administrador del AntiNuke.", user.Username))
}

func (c *commands) createAdminListCommand() *discord.Command {
	return newCommand("list", "Muestra los administradores del AntiNuke", c.adminListHandler)
}

func (c *commands) adminListHandler(ctx *discord.CommandContext) error {
	req, err := c.adminRequester(ctx)
	if err != nil {
		return replyError(ctx, err)
	}
	policy, err := c.engine.Policy(ctx.Context(), req.GuildID)
	if err != nil {
		return replyError(ctx, err)
	}

	embed := listEmbed("👮 Administradores del AntiNuke", policy.AdminUserIDs)
	if req.OwnerID != "" {
		embed.Fields = []*discordgo.MessageEmbedField{{Name: "Dueño", Value: "<@" + req.OwnerID + ">"}}
	}
	return ctx.ReplyEphemeralEmbed(embed)
}
