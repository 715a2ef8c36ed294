package antinuke

import (
	"fmt"

	"github.com/PancyStudios/PancyGuardGo/pkg/antinuke"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// maxConfinementMinutes matches the platform timeout ceiling of 28 days.
const maxConfinementMinutes = 40320

func (c *commands) createEnableCommand() *discord.Command {
	return newCommand("enable", "Activa la protección AntiNuke", c.enableHandler)
}

func (c *commands) enableHandler(ctx *discord.CommandContext) error {
	_, err := c.engine.SetEnabled(ctx.Context(), requester(ctx), true)
	return replyUpdated(ctx, err, "AntiNuke **activado**. Las acciones administrativas ahora se vigilan.")
}

func (c *commands) createDisableCommand() *discord.Command {
	return newCommand("disable", "Desactiva la protección AntiNuke", c.disableHandler)
}

func (c *commands) disableHandler(ctx *discord.CommandContext) error {
	_, err := c.engine.SetEnabled(ctx.Context(), requester(ctx), false)
	return replyUpdated(ctx, err, "AntiNuke **desactivado**.")
}

func (c *commands) createLimitCommand() *discord.Command {
	return newCommand("limit", "Cambia el límite de una acción", c.limitHandler).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "accion",
			Description: "Acción vigilada",
			Required:    true,
			Choices:     kindChoices(),
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "maximo",
			Description: "Cantidad de acciones que dispara el castigo",
			Required:    true,
			MinValue:    floatPtr(1),
			MaxValue:    100,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "activo",
			Description: "Vigilar esta acción (por defecto sí)",
			Required:    false,
		},
	)
}

func (c *commands) limitHandler(ctx *discord.CommandContext) error {
	kind, err := models.ParseActionKind(ctx.GetStringOption("accion"))
	if err != nil {
		return ctx.ReplyEphemeral("❌ Acción desconocida.")
	}

	max := ctx.GetIntOption("maximo")
	if max < 1 {
		return replyError(ctx, antinuke.ErrInvalidLimit)
	}

	enabled := true
	if opt := ctx.GetOption("activo"); opt != nil {
		enabled = opt.BoolValue()
	}

	_, err = c.engine.SetLimit(ctx.Context(), requester(ctx), kind, enabled, uint(max))
	return replyUpdated(ctx, err, fmt.Sprintf("Límite de **%s** fijado en **%d** (%s).", kind.Label(), max, onOff(enabled)))
}

func (c *commands) createPunishmentCommand() *discord.Command {
	return newCommand("punishment", "Configura el castigo al superar un límite", c.punishmentHandler).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "tipo",
			Description: "Castigo a aplicar",
			Required:    true,
			Choices:     punishmentChoices(),
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "rol",
			Description: "Rol de aislamiento (vacío usa el timeout nativo)",
			Required:    false,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "minutos",
			Description: "Duración del aislamiento en minutos",
			Required:    false,
			MinValue:    floatPtr(1),
			MaxValue:    maxConfinementMinutes,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "quitar_permisos",
			Description: "Retirar roles con permisos peligrosos",
			Required:    false,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "avisar",
			Description: "Avisar al usuario por mensaje directo",
			Required:    false,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "reiniciar",
			Description: "Reiniciar el contador después de castigar",
			Required:    false,
		},
	)
}

func (c *commands) punishmentHandler(ctx *discord.CommandContext) error {
	kind, err := models.ParsePunishmentKind(ctx.GetStringOption("tipo"))
	if err != nil {
		return ctx.ReplyEphemeral("❌ Castigo desconocido.")
	}

	policy, err := c.engine.Policy(ctx.Context(), ctx.Interaction.GuildID)
	if err != nil {
		return replyError(ctx, err)
	}

	cfg := mergePunishment(policy.Punishment, kind, punishmentOptions{
		roleID:  optionalRoleID(ctx, "rol"),
		minutes: ctx.GetIntOption("minutos"),
		strip:   optionalBool(ctx, "quitar_permisos"),
		notify:  optionalBool(ctx, "avisar"),
		reset:   optionalBool(ctx, "reiniciar"),
	})

	_, err = c.engine.SetPunishment(ctx.Context(), requester(ctx), cfg)
	if err != nil {
		return replyError(ctx, err)
	}
	return ctx.ReplyEmbed(&discordgo.MessageEmbed{
		Title:       "⚖️ Castigo actualizado",
		Description: punishmentText(cfg),
		Color:       colorSuccess,
	})
}

type punishmentOptions struct {
	roleID  *string
	minutes int64
	strip   *bool
	notify  *bool
	reset   *bool
}

// mergePunishment applies the given options over the current configuration.
// Options left out keep their current value.
func mergePunishment(current models.PunishmentConfig, kind models.PunishmentKind, o punishmentOptions) models.PunishmentConfig {
	cfg := current
	cfg.Type = kind
	if o.roleID != nil {
		cfg.ConfinementRoleID = *o.roleID
	}
	if o.minutes > 0 {
		cfg.ConfinementDurationSeconds = uint(o.minutes) * 60
	}
	if o.strip != nil {
		cfg.StripDangerousPerms = *o.strip
	}
	if o.notify != nil {
		cfg.NotifyUser = *o.notify
	}
	if o.reset != nil {
		cfg.ResetCounterOnPunish = *o.reset
	}
	return cfg
}

func (c *commands) createBypassCommand() *discord.Command {
	return newCommand("bypass", "Define si el dueño y los bots quedan exentos", c.bypassHandler).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "dueno",
			Description: "El dueño del servidor queda exento",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "bots",
			Description: "Los bots quedan exentos",
			Required:    true,
		},
	)
}

func (c *commands) bypassHandler(ctx *discord.CommandContext) error {
	owner := ctx.GetBoolOption("dueno")
	bots := ctx.GetBoolOption("bots")
	_, err := c.engine.SetBypass(ctx.Context(), requester(ctx), owner, bots)
	return replyUpdated(ctx, err, fmt.Sprintf("Excepciones actualizadas. Dueño: %s · Bots: %s", onOff(owner), onOff(bots)))
}

func (c *commands) createLoggingCommand() *discord.Command {
	return newCommand("logging", "Configura el canal de registro", c.loggingHandler).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "activo",
			Description: "Enviar registros al canal",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         "canal",
			Description:  "Canal de registro",
			Required:     false,
			ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "acciones",
			Description: "Registrar cada acción vigilada",
			Required:    false,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "castigos",
			Description: "Registrar los castigos",
			Required:    false,
		},
	)
}

func (c *commands) loggingHandler(ctx *discord.CommandContext) error {
	policy, err := c.engine.Policy(ctx.Context(), ctx.Interaction.GuildID)
	if err != nil {
		return replyError(ctx, err)
	}

	cfg := policy.Logging
	cfg.Enabled = ctx.GetBoolOption("activo")
	if opt := ctx.GetOption("canal"); opt != nil {
		if id, ok := opt.Value.(string); ok {
			cfg.ChannelID = id
		}
	}
	if v := optionalBool(ctx, "acciones"); v != nil {
		cfg.LogActions = *v
	}
	if v := optionalBool(ctx, "castigos"); v != nil {
		cfg.LogPunishments = *v
	}
	if cfg.Enabled && cfg.ChannelID == "" {
		return ctx.ReplyEphemeral("❌ Indica un canal para activar el registro.")
	}

	_, err = c.engine.SetLogging(ctx.Context(), requester(ctx), cfg)
	return replyUpdated(ctx, err, "Registro actualizado.\n"+loggingText(cfg))
}

func optionalBool(ctx *discord.CommandContext, name string) *bool {
	opt := ctx.GetOption(name)
	if opt == nil {
		return nil
	}
	v := opt.BoolValue()
	return &v
}

func optionalRoleID(ctx *discord.CommandContext, name string) *string {
	opt := ctx.GetOption(name)
	if opt == nil {
		return nil
	}
	id, _ := opt.Value.(string)
	return &id
}
