package perms

import (
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func (c *commands) createStaffAddCommand() *discord.Command {
	return newCommand("add", "Marca un rol como staff", "staff", c.staffAddHandler).
		WithOptions(roleOption("Rol de staff"))
}

func (c *commands) staffAddHandler(ctx *discord.CommandContext) error {
	role := ctx.GetRoleOption("rol")
	if ok, err := checkManage(ctx, role); !ok {
		return err
	}
	if err := c.staff.Add(ctx.Context(), ctx.Interaction.GuildID, role.ID); err != nil {
		return replyError(ctx, err)
	}
	return ctx.Reply(fmt.Sprintf("✅ El rol <@&%s> ahora es de staff.", role.ID))
}

func (c *commands) createStaffRemoveCommand() *discord.Command {
	return newCommand("remove", "Quita un rol del staff", "staff", c.staffRemoveHandler).
		WithOptions(roleOption("Rol a quitar"))
}

func (c *commands) staffRemoveHandler(ctx *discord.CommandContext) error {
	role := ctx.GetRoleOption("rol")
	if ok, err := checkManage(ctx, role); !ok {
		return err
	}
	if err := c.staff.Remove(ctx.Context(), ctx.Interaction.GuildID, role.ID); err != nil {
		return replyError(ctx, err)
	}
	return ctx.Reply(fmt.Sprintf("✅ El rol <@&%s> ya no es de staff.", role.ID))
}

func (c *commands) createStaffListCommand() *discord.Command {
	return newCommand("list", "Muestra los roles de staff", "staff", c.staffListHandler)
}

func (c *commands) staffListHandler(ctx *discord.CommandContext) error {
	roles, err := c.staff.Roles(ctx.Context(), ctx.Interaction.GuildID)
	if err != nil {
		return replyError(ctx, err)
	}
	return ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{
		Title:       "👥 Roles de staff",
		Description: roleMentions(roles),
		Color:       0x5865F2,
	})
}

func roleMentions(ids []string) string {
	if len(ids) == 0 {
		return "No hay roles de staff configurados."
	}
	mentions := make([]string, 0, len(ids))
	for _, id := range ids {
		mentions = append(mentions, "<@&"+id+">")
	}
	return strings.Join(mentions, ", ")
}
