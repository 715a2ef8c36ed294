package antinuke

import (
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const (
	colorInfo    = 0x5865F2
	colorSuccess = 0x2ECC71
	colorDanger  = 0xE74C3C
)

const footer = "PancyGuard AntiNuke"

func successEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: "✅ " + message,
		Color:       colorSuccess,
	}
}

func onOff(v bool) string {
	if v {
		return "✅"
	}
	return "❌"
}

func mentionList(ids []string) string {
	if len(ids) == 0 {
		return "Nadie"
	}
	mentions := make([]string, 0, len(ids))
	for _, id := range ids {
		mentions = append(mentions, "<@"+id+">")
	}
	return strings.Join(mentions, ", ")
}

// limitsText renders one line per action kind in the fixed order.
func limitsText(p *models.GuildPolicy) string {
	var b strings.Builder
	for _, k := range models.AllActionKinds() {
		l := p.Limit(k)
		fmt.Fprintf(&b, "%s `%s` %s: **%d**\n", onOff(l.Enabled), k, k.Label(), l.Max)
	}
	return strings.TrimRight(b.String(), "\n")
}

func punishmentText(p models.PunishmentConfig) string {
	lines := []string{"**" + discord.PunishmentLabel(p.Type) + "**"}
	switch p.Type {
	case models.PunishmentConfine, models.PunishmentConfineAndStrip:
		role := "timeout nativo"
		if p.ConfinementRoleID != "" {
			role = "<@&" + p.ConfinementRoleID + ">"
		}
		lines = append(lines, fmt.Sprintf("Aislamiento: %s durante %s", role, p.ConfinementDuration()))
	}
	lines = append(lines,
		fmt.Sprintf("Retirar permisos peligrosos: %s", onOff(p.StripDangerousPerms)),
		fmt.Sprintf("Avisar por DM: %s", onOff(p.NotifyUser)),
		fmt.Sprintf("Reiniciar contador al castigar: %s", onOff(p.ResetCounterOnPunish)),
	)
	return strings.Join(lines, "\n")
}

func loggingText(l models.LoggingConfig) string {
	channel := "sin canal"
	if l.ChannelID != "" {
		channel = "<#" + l.ChannelID + ">"
	}
	return fmt.Sprintf("%s %s\nAcciones: %s · Castigos: %s",
		onOff(l.Enabled), channel, onOff(l.LogActions), onOff(l.LogPunishments))
}

func statusEmbed(p *models.GuildPolicy) *discordgo.MessageEmbed {
	state := "🔴 Desactivado"
	color := colorDanger
	if p.Enabled {
		state = "🟢 Activado"
		color = colorSuccess
	}

	return &discordgo.MessageEmbed{
		Title: "🛡️ Estado del AntiNuke",
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Estado", Value: state, Inline: true},
			{Name: "Lista blanca", Value: fmt.Sprintf("%d usuarios", len(p.Whitelist.UserIDs)), Inline: true},
			{Name: "Administradores", Value: fmt.Sprintf("%d usuarios", len(p.AdminUserIDs)), Inline: true},
			{Name: "Límites", Value: limitsText(p)},
			{Name: "Castigo", Value: punishmentText(p.Punishment)},
			{Name: "Registro", Value: loggingText(p.Logging), Inline: true},
			{Name: "Excepciones", Value: fmt.Sprintf("Dueño: %s · Bots: %s", onOff(p.Whitelist.BypassOwner), onOff(p.Whitelist.BypassBots)), Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: footer},
		Timestamp: p.UpdatedAt.Format(time.RFC3339),
	}
}

func listEmbed(title string, ids []string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: mentionList(ids),
		Color:       colorInfo,
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
	}
}

// historyLine renders one log entry on a single line.
func historyLine(e models.ViolationLogEntry) string {
	icon := "•"
	switch {
	case e.Type == models.EntryPunishment && e.Success:
		icon = "⚖️"
	case e.Type == models.EntryPunishment:
		icon = "⚠️"
	case e.Violated:
		icon = "🚨"
	}

	line := fmt.Sprintf("%s <t:%d:R> <@%s> %s", icon, e.Timestamp.Unix(), e.ActorID, e.ActionKind.Label())
	if e.Type == models.EntryPunishment {
		line += " → " + discord.PunishmentLabel(e.PunishmentApplied)
		if e.Reason != "" {
			line += " (" + e.Reason + ")"
		}
	} else if e.Limit > 0 {
		line += fmt.Sprintf(" (%d/%d)", e.Count, e.Limit)
	}
	return line
}

func historyEmbed(entries []models.ViolationLogEntry) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:  "📜 Historial del AntiNuke",
		Color:  colorInfo,
		Footer: &discordgo.MessageEmbedFooter{Text: footer},
	}
	if len(entries) == 0 {
		embed.Description = "No hay registros para esos filtros."
		return embed
	}

	lines := make([]string, 0, len(entries))
	size := 0
	for _, e := range entries {
		line := historyLine(e)
		if size+len(line)+1 > 4000 {
			break
		}
		size += len(line) + 1
		lines = append(lines, line)
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}

func countersText(counters []models.ActionCounter) string {
	if len(counters) == 0 {
		return "Sin acciones registradas."
	}
	lines := make([]string, 0, len(counters))
	for _, c := range counters {
		lines = append(lines, fmt.Sprintf("`%s` %s: **%d**", c.ActionKind, c.ActionKind.Label(), c.Count))
	}
	return strings.Join(lines, "\n")
}
