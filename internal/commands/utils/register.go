// Package utils provides the /utils command group.
package utils

import (
	"context"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
)

// EnabledCounter counts guilds with protection turned on.
type EnabledCounter interface {
	CountEnabled(ctx context.Context) (int64, error)
}

// Broker reports the state of the event bus connection.
type Broker interface {
	IsConnected() bool
}

// Deps are the services /utils status reads. Any of them may be nil.
type Deps struct {
	Policies EnabledCounter
	Broker   Broker
}

// RegisterUtilsCommands registers all utility commands as /utils subcommands
func RegisterUtilsCommands(client *discord.ExtendedClient, deps Deps) {
	utilsGroup := client.CommandHandler.BuildCommandGroup(
		"utils",
		"Comandos de utilidad",
		createPingCommand(),
		createStatusCommand(deps),
		createHelpCommand(),
		createStatsCommand(),
	)

	client.CommandHandler.AddGlobalCommand(utilsGroup)
}
