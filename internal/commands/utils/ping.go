package utils

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/database"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
)

func createPingCommand() *discord.Command {
	return discord.NewCommand(
		"ping",
		"Comprueba la latencia del bot y de la base de datos",
		"utils",
		pingHandler,
	)
}

func pingHandler(ctx *discord.CommandContext) error {
	gateway := ctx.Session.HeartbeatLatency()
	db, err := database.Get().Ping(ctx.Context())
	return ctx.Reply(pingText(gateway, db, err))
}

func pingText(gateway, db time.Duration, dbErr error) string {
	dbText := fmt.Sprintf("%dms", db.Milliseconds())
	if dbErr != nil {
		dbText = "sin conexión"
	}
	return fmt.Sprintf("🏓 Pong!\n• Gateway: %dms\n• Base de datos: %s", gateway.Milliseconds(), dbText)
}
