package perms

import (
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

func permissionOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         "permiso",
		Description:  "Nombre del permiso, por ejemplo BanMembers",
		Required:     true,
		Autocomplete: true,
	}
}

func (c *commands) createGrantCommand() *discord.Command {
	return newCommand("grant", "Otorga un permiso falso a un rol", "fakeperm", c.grantHandler).
		WithOptions(roleOption("Rol que recibe el permiso"), permissionOption()).
		WithAutoComplete(permissionAutocomplete)
}

func (c *commands) grantHandler(ctx *discord.CommandContext) error {
	role := ctx.GetRoleOption("rol")
	if ok, err := checkManage(ctx, role); !ok {
		return err
	}

	name, err := c.grants.Grant(ctx.Context(), ctx.Interaction.GuildID, role.ID, ctx.GetStringOption("permiso"), ctx.User().ID)
	if err != nil {
		return replyError(ctx, err)
	}
	return ctx.Reply(fmt.Sprintf("✅ El rol <@&%s> ahora tiene el permiso falso `%s`.", role.ID, name))
}

func (c *commands) createRevokeCommand() *discord.Command {
	return newCommand("revoke", "Retira un permiso falso de un rol", "fakeperm", c.revokeHandler).
		WithOptions(roleOption("Rol al que se le retira el permiso"), permissionOption()).
		WithAutoComplete(permissionAutocomplete)
}

func (c *commands) revokeHandler(ctx *discord.CommandContext) error {
	role := ctx.GetRoleOption("rol")
	if ok, err := checkManage(ctx, role); !ok {
		return err
	}

	name, err := c.grants.Revoke(ctx.Context(), ctx.Interaction.GuildID, role.ID, ctx.GetStringOption("permiso"))
	if err != nil {
		return replyError(ctx, err)
	}
	return ctx.Reply(fmt.Sprintf("✅ Se retiró el permiso falso `%s` del rol <@&%s>.", name, role.ID))
}

func (c *commands) createRevokeAllCommand() *discord.Command {
	return newCommand("revokeall", "Retira todos los permisos falsos de un rol", "fakeperm", c.revokeAllHandler).
		WithOptions(roleOption("Rol a limpiar"))
}

func (c *commands) revokeAllHandler(ctx *discord.CommandContext) error {
	role := ctx.GetRoleOption("rol")
	if ok, err := checkManage(ctx, role); !ok {
		return err
	}

	existed, err := c.grants.RevokeAll(ctx.Context(), ctx.Interaction.GuildID, role.ID)
	if err != nil {
		return replyError(ctx, err)
	}
	if !existed {
		return ctx.ReplyEphemeral(fmt.Sprintf("ℹ️ El rol <@&%s> no tenía permisos falsos.", role.ID))
	}
	return ctx.Reply(fmt.Sprintf("✅ Se retiraron todos los permisos falsos del rol <@&%s>.", role.ID))
}

func (c *commands) createListCommand() *discord.Command {
	return newCommand("list", "Muestra los permisos falsos del servidor o de un rol", "fakeperm", c.listHandler).
		WithOptions(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "rol",
			Description: "Solo este rol",
			Required:    false,
		})
}

func (c *commands) listHandler(ctx *discord.CommandContext) error {
	guildID := ctx.Interaction.GuildID

	if ctx.GetOption("rol") != nil {
		role := ctx.GetRoleOption("rol")
		if role == nil {
			return ctx.ReplyEphemeral("❌ No se encontró el rol.")
		}
		names, err := c.grants.RolePermissions(ctx.Context(), guildID, role.ID)
		if err != nil {
			return replyError(ctx, err)
		}
		return ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{
			Title:       "🔑 Permisos falsos",
			Description: fmt.Sprintf("<@&%s>: %s", role.ID, codeList(names)),
			Color:       0x5865F2,
		})
	}

	grants, err := c.grants.List(ctx.Context(), guildID)
	if err != nil {
		return replyError(ctx, err)
	}
	return ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{
		Title:       "🔑 Permisos falsos",
		Description: grantsText(grants),
		Color:       0x5865F2,
	})
}

// grantsText renders one line per role.
func grantsText(grants []models.FakePermissionGrant) string {
	if len(grants) == 0 {
		return "Ningún rol tiene permisos falsos."
	}
	lines := make([]string, 0, len(grants))
	for _, g := range grants {
		lines = append(lines, fmt.Sprintf("<@&%s>: %s", g.RoleID, codeList(g.Permissions)))
	}
	return strings.Join(lines, "\n")
}
