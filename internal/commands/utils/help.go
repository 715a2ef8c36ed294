package utils

import (
	"strings"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func createHelpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"Muestra información de ayuda",
		"utils",
		helpHandler,
	)
}

type helpSection struct {
	title    string
	commands []string
}

var helpSections = []helpSection{
	{"🛡️ AntiNuke", []string{
		"`/antinuke status` - Configuración actual",
		"`/antinuke enable` · `/antinuke disable` - Activa o desactiva la protección",
		"`/antinuke limit <acción> <máximo>` - Cambia un límite",
		"`/antinuke punishment <tipo>` - Configura el castigo",
		"`/antinuke logging <activo> [canal]` - Canal de registro",
		"`/antinuke bypass <dueño> <bots>` - Excepciones",
		"`/antinuke whitelist add|remove|list` - Lista blanca",
		"`/antinuke admin add|remove|list` - Administradores (solo el dueño)",
		"`/antinuke reset <usuario> [acción]` - Reinicia contadores",
		"`/antinuke history [usuario] [acción]` - Historial",
	}},
	{"🔑 Permisos", []string{
		"`/fakeperm grant|revoke <rol> <permiso>` - Permisos falsos",
		"`/fakeperm revokeall <rol>` · `/fakeperm list [rol]`",
		"`/staff add|remove <rol>` · `/staff list` - Roles de staff",
	}},
	{"🔨 Moderación", []string{
		"`/mod ban <usuario> [razón] [días]` - Banea a un usuario",
		"`/mod kick <usuario> [razón]` - Expulsa a un usuario",
		"`/mod mute <usuario> <duración> [razón]` - Silencia a un usuario",
	}},
	{"🧰 Utilidad", []string{
		"`/utils ping` · `/utils status` · `/utils stats` · `/utils help`",
	}},
}

func helpEmbed() *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(helpSections))
	for _, s := range helpSections {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  s.title,
			Value: strings.Join(s.commands, "\n"),
		})
	}
	return &discordgo.MessageEmbed{
		Title:       "📖 Ayuda de PancyGuard",
		Description: "Protección AntiNuke y permisos falsos para tu servidor.",
		Color:       0x5865F2,
		Fields:      fields,
	}
}

func helpHandler(ctx *discord.CommandContext) error {
	return ctx.ReplyEphemeralEmbed(helpEmbed())
}
