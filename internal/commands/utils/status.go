package utils

import (
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyGuardGo/pkg/database"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
)

// createStatusCommand creates the /utils status subcommand
func createStatusCommand(deps Deps) *discord.Command {
	return discord.NewCommand(
		"status",
		"Muestra el estado del bot",
		"utils",
		func(ctx *discord.CommandContext) error {
			return statusHandler(ctx, deps)
		},
	)
}

type statusReport struct {
	Database  string
	Broker    string
	Guilds    int
	Protected int64
	Queued    int
}

func statusHandler(ctx *discord.CommandContext, deps Deps) error {
	db := database.Get()
	dbStatus, _ := db.GetStatus(ctx.Context())

	report := statusReport{
		Database:  dbStatus,
		Broker:    "⚪ | Deshabilitado",
		Guilds:    ctx.Client.GuildCount(),
		Protected: -1,
	}
	if db != nil {
		report.Queued = db.QueueLength()
	}
	if deps.Broker != nil {
		report.Broker = "🔴 | Desconectado"
		if deps.Broker.IsConnected() {
			report.Broker = "🟢 | Conectado"
		}
	}
	if deps.Policies != nil {
		n, err := deps.Policies.CountEnabled(ctx.Context())
		if err != nil {
			logger.Warn(fmt.Sprintf("No se pudo contar los servidores protegidos: %v", err), "Utils")
		} else {
			report.Protected = n
		}
	}

	return ctx.Reply(report.String())
}

func (r statusReport) String() string {
	var b strings.Builder
	b.WriteString("📊 **Estado del Bot**\n")
	b.WriteString("• Bot: 🟢 Online\n")
	fmt.Fprintf(&b, "• Base de datos: %s\n", r.Database)
	if r.Queued > 0 {
		fmt.Fprintf(&b, "• Escrituras pendientes: %d\n", r.Queued)
	}
	fmt.Fprintf(&b, "• MQTT: %s\n", r.Broker)
	fmt.Fprintf(&b, "• Servidores: %d", r.Guilds)
	if r.Protected >= 0 {
		fmt.Fprintf(&b, "\n• Servidores con AntiNuke activo: %d", r.Protected)
	}
	return b.String()
}
