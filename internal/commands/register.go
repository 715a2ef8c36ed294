// Package commands wires every slash command group into the client.
// Each group lives in its own subpackage.
package commands

import (
	"github.com/PancyStudios/PancyGuardGo/internal/commands/antinuke"
	"github.com/PancyStudios/PancyGuardGo/internal/commands/mod"
	"github.com/PancyStudios/PancyGuardGo/internal/commands/perms"
	"github.com/PancyStudios/PancyGuardGo/internal/commands/utils"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
)

// Deps are the services the command groups drive.
type Deps struct {
	AntiNuke antinuke.Service
	Grants   perms.Grants
	Staff    perms.Staff
	Auth     mod.Authorizer
	Guard    mod.Moderator
	Status   utils.Deps
}

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient, deps Deps) {
	// /antinuke
	antinuke.RegisterAntiNukeCommands(client, deps.AntiNuke)

	// /fakeperm and /staff
	perms.RegisterPermissionCommands(client, deps.Grants, deps.Staff)

	// /mod ban, /mod kick, /mod mute
	mod.RegisterModCommands(client, deps.Auth, deps.Guard)

	// /utils
	utils.RegisterUtilsCommands(client, deps.Status)
}
