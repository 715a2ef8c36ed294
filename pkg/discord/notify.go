package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/antinuke"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const (
	colorWarning = 0xF1C40F
	colorDanger  = 0xE74C3C
	colorFailed  = 0x95A5A6
)

// Notifier sends anti-nuke notifications as embeds.
type Notifier struct {
	session *discordgo.Session
}

var _ antinuke.Notifier = (*Notifier)(nil)

// NewNotifier creates a Notifier on session.
func NewNotifier(session *discordgo.Session) *Notifier {
	return &Notifier{session: session}
}

// LogToChannel posts n to a guild channel.
func (n *Notifier) LogToChannel(ctx context.Context, channelID string, note antinuke.Notification) error {
	_, err := n.session.ChannelMessageSendEmbed(channelID, NotificationEmbed(note), discordgo.WithContext(ctx))
	return err
}

// DirectMessage sends n to a user. Closed DMs surface as an error.
func (n *Notifier) DirectMessage(ctx context.Context, userID string, note antinuke.Notification) error {
	channel, err := n.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	_, err = n.session.ChannelMessageSendEmbed(channel.ID, NotificationEmbed(note), discordgo.WithContext(ctx))
	return err
}

// NotificationEmbed renders a notification.
func NotificationEmbed(n antinuke.Notification) *discordgo.MessageEmbed {
	ts := n.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	embed := &discordgo.MessageEmbed{
		Timestamp: ts.Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: "PancyGuard AntiNuke"},
	}
	if n.IncidentID != "" {
		embed.Footer.Text += " • " + n.IncidentID
	}

	switch n.Kind {
	case antinuke.NotifyAction:
		embed.Title = "⚠️ Acción monitoreada"
		embed.Color = colorWarning
		embed.Description = fmt.Sprintf("<@%s> realizó una acción de **%s**.", n.ActorID, n.Action.Label())
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Progreso", Value: fmt.Sprintf("%d/%d", n.Count, n.Limit), Inline: true},
		}

	case antinuke.NotifyDirect:
		embed.Title = "🛡️ Has sido sancionado"
		embed.Color = colorDanger
		guild := n.GuildName
		if guild == "" {
			guild = n.GuildID
		}
		embed.Description = fmt.Sprintf("El sistema AntiNuke de **%s** te aplicó **%s** por exceso de %s (%d/%d).",
			guild, PunishmentLabel(n.Punishment), n.Action.Label(), n.Count, n.Limit)
		if n.ConfinedUntil != nil {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name: "Hasta", Value: fmt.Sprintf("<t:%d:R>", n.ConfinedUntil.Unix()),
			})
		}

	default:
		embed.Title = "🚨 Límite AntiNuke superado"
		embed.Color = colorDanger
		if !n.Success {
			embed.Color = colorFailed
		}
		embed.Description = fmt.Sprintf("<@%s> superó el límite de **%s**.", n.ActorID, n.Action.Label())
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Conteo", Value: fmt.Sprintf("%d/%d", n.Count, n.Limit), Inline: true},
			{Name: "Castigo", Value: PunishmentLabel(n.Punishment), Inline: true},
			{Name: "Estado", Value: statusLabel(n.Status, n.Success), Inline: true},
		}
		if n.Reason != "" {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Detalle", Value: n.Reason})
		}
		if len(n.RemovedRoles) > 0 {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name: "Roles removidos", Value: strings.Join(n.RemovedRoles, ", "),
			})
		}
		if len(n.StrippedPermissions) > 0 {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name: "Permisos retirados", Value: "`" + strings.Join(n.StrippedPermissions, "`, `") + "`",
			})
		}
		if n.ConfinedUntil != nil {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name: "Aislado hasta", Value: fmt.Sprintf("<t:%d:F>", n.ConfinedUntil.Unix()),
			})
		}
	}
	return embed
}

// PunishmentLabel is the Spanish name of a punishment.
func PunishmentLabel(p models.PunishmentKind) string {
	switch p {
	case models.PunishmentKick:
		return "Expulsión"
	case models.PunishmentBan:
		return "Baneo"
	case models.PunishmentStrip:
		return "Retiro de permisos"
	case models.PunishmentConfine:
		return "Aislamiento"
	case models.PunishmentConfineAndStrip:
		return "Aislamiento y retiro de permisos"
	default:
		return "Ninguno"
	}
}

func statusLabel(s antinuke.PunishmentStatus, success bool) string {
	switch s {
	case antinuke.StatusApplied:
		if success {
			return "✅ Aplicado"
		}
		return "❌ Fallido"
	case antinuke.StatusActorGone:
		return "👻 Ya no está en el servidor"
	case antinuke.StatusInsufficientHierarchy:
		return "⛔ Jerarquía insuficiente"
	case antinuke.StatusNotConfigured:
		return "➖ Sin castigo configurado"
	default:
		return "❌ Fallido"
	}
}
