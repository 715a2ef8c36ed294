package events

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/metrics"
	"github.com/bwmarrin/discordgo"
)

// RegisterGuildEvents registers all guild-related event handlers. Joins and
// leaves are also reported to webhookURL when it is set.
func RegisterGuildEvents(client *discord.ExtendedClient, monitor *Monitor, rec *metrics.Recorder, webhookURL string) {
	hookID, hookToken, hookOK := parseWebhookURL(webhookURL)
	if webhookURL != "" && !hookOK {
		logger.Warn("URL del webhook de servidores inválida, no se reportarán altas ni bajas", "Guild")
	}

	client.EventHandler.OnGuildCreate(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		monitor.SeedEmojis(g.ID, g.Emojis)
		rec.SetGuilds(client.GuildCount())
		if onGuildCreate(s, g) && hookOK {
			reportGuild(s, hookID, hookToken, guildReportEmbed(g.Guild, true))
		}
	})
	client.EventHandler.OnGuildDelete(func(s *discordgo.Session, g *discordgo.GuildDelete) {
		if g.Unavailable {
			return
		}
		monitor.ForgetGuild(g.ID)
		rec.SetGuilds(client.GuildCount())
		logger.Info(fmt.Sprintf("➖ Bot removido del servidor ID: %s", g.ID), "Guild")
		if hookOK {
			guild := g.BeforeDelete
			if guild == nil {
				guild = &discordgo.Guild{ID: g.ID}
			}
			reportGuild(s, hookID, hookToken, guildReportEmbed(guild, false))
		}
	})
}

// parseWebhookURL extracts the id and token of a Discord webhook URL.
func parseWebhookURL(raw string) (id, token string, ok bool) {
	if raw == "" {
		return "", "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], true
		}
	}
	return "", "", false
}

func guildReportEmbed(g *discordgo.Guild, joined bool) *discordgo.MessageEmbed {
	title, color := "➕ Nuevo servidor", 0x2ECC71
	if !joined {
		title, color = "➖ Servidor abandonado", 0xE74C3C
	}
	name := g.Name
	if name == "" {
		name = "Desconocido"
	}
	return &discordgo.MessageEmbed{
		Title: title,
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Nombre", Value: name, Inline: true},
			{Name: "ID", Value: g.ID, Inline: true},
			{Name: "Miembros", Value: fmt.Sprintf("%d", g.MemberCount), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func reportGuild(s *discordgo.Session, id, token string, embed *discordgo.MessageEmbed) {
	_, err := s.WebhookExecute(id, token, false, &discordgo.WebhookParams{
		Username: "PancyGuard Servidores",
		Embeds:   []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		logger.Warn(fmt.Sprintf("No se pudo reportar el servidor %s: %v", embed.Fields[1].Value, err), "Guild")
	}
}

// welcomeEmbed is sent to the system channel of a guild the bot just joined.
func welcomeEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "¡Gracias por agregarme! 🛡️",
		Description: "Hola, soy **PancyGuard**. La protección AntiNuke empieza desactivada.",
		Color:       0x00ff00,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "🚨 AntiNuke",
				Value:  "Actívalo con `/antinuke enable`",
				Inline: true,
			},
			{
				Name:   "🔑 Permisos falsos",
				Value:  "Gestiona con `/fakeperm`",
				Inline: true,
			},
			{
				Name:   "❓ Ayuda",
				Value:  "Usa `/utils help`",
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Solo el dueño del servidor puede designar administradores AntiNuke.",
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// onGuildCreate is called when the bot joins a server. It reports whether
// the event was a fresh join.
func onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) bool {
	// GuildCreate also fires for every guild on connect
	if g.JoinedAt.Before(time.Now().Add(-10 * time.Second)) {
		return false
	}

	logger.Info(fmt.Sprintf("➕ Bot agregado a servidor: %s (ID: %s)", g.Name, g.ID), "Guild")
	logger.Debug(fmt.Sprintf("   Miembros: %d | Roles: %d", g.MemberCount, len(g.Roles)), "Guild")

	if g.SystemChannelID == "" {
		return true
	}
	if _, err := s.ChannelMessageSendEmbed(g.SystemChannelID, welcomeEmbed()); err != nil {
		logger.Error(fmt.Sprintf("Error enviando mensaje de bienvenida: %v", err), "Guild")
	}
	return true
}
