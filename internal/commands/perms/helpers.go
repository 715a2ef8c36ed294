package perms

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord/access"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

// maxChoices is the platform limit of autocomplete results.
const maxChoices = 25

func newCommand(name, description, category string, run discord.CommandRunFunc) *discord.Command {
	return discord.NewCommand(name, description, category, run).
		WithRequirement(access.RequirementGuild).
		RequiresDatabase()
}

func roleOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionRole,
		Name:        "rol",
		Description: description,
		Required:    true,
	}
}

// manageDenial reports why actor may not manage role, or "" when it may.
// Fake grants never allow managing the permission model itself.
func manageDenial(actor permissions.Member, role *discordgo.Role, guildID string) string {
	if !actor.IsNativeAdmin() {
		return "Solo los administradores del servidor pueden gestionar permisos."
	}
	if role == nil {
		return "Debes especificar un rol."
	}
	if role.ID == guildID {
		return "No puedes usar el rol @everyone."
	}
	if role.Managed {
		return "No puedes usar un rol gestionado por una integración."
	}
	if !actor.IsOwner && role.Position >= actor.HighestRank {
		return "Ese rol es igual o superior a tu rol más alto."
	}
	return ""
}

// matchPermissions returns the permission names containing query, for
// autocomplete.
func matchPermissions(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	matches := make([]string, 0, maxChoices)
	for _, name := range permissions.AllNames() {
		if query == "" || strings.Contains(strings.ToLower(name), query) {
			matches = append(matches, name)
			if len(matches) == maxChoices {
				break
			}
		}
	}
	return matches
}

func permissionAutocomplete(ctx *discord.CommandContext) {
	names := matchPermissions(ctx.GetStringOption("permiso"))
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(names))
	for _, n := range names {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: n, Value: n})
	}
	err := ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		logger.Debug(fmt.Sprintf("Error en autocompletado de permisos: %v", err), "Perms")
	}
}

// errorMessage turns a permission model error into the text shown to the member.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, permissions.ErrUnknownPermission):
		return "Ese permiso no existe. Usa el autocompletado para elegir uno."
	case errors.Is(err, permissions.ErrAlreadyGranted):
		return "El rol ya tiene ese permiso."
	case errors.Is(err, permissions.ErrNotGranted):
		return "El rol no tiene ese permiso."
	case errors.Is(err, permissions.ErrStaffRoleExists):
		return "Ese rol ya es de staff."
	case errors.Is(err, permissions.ErrStaffRoleMissing):
		return "Ese rol no es de staff."
	default:
		return "Ocurrió un error al guardar los cambios. Inténtalo de nuevo más tarde."
	}
}

func isUserError(err error) bool {
	return errors.Is(err, permissions.ErrUnknownPermission) ||
		errors.Is(err, permissions.ErrAlreadyGranted) ||
		errors.Is(err, permissions.ErrNotGranted) ||
		errors.Is(err, permissions.ErrStaffRoleExists) ||
		errors.Is(err, permissions.ErrStaffRoleMissing)
}

func replyError(ctx *discord.CommandContext, err error) error {
	if !isUserError(err) {
		logger.Error(fmt.Sprintf("Error gestionando permisos (guild %s): %v", ctx.Interaction.GuildID, err), "Perms")
	}
	return ctx.ReplyEphemeral("❌ " + errorMessage(err))
}

func codeList(names []string) string {
	if len(names) == 0 {
		return "ninguno"
	}
	quoted := make([]string, 0, len(names))
	for _, n := range names {
		quoted = append(quoted, "`"+n+"`")
	}
	return strings.Join(quoted, ", ")
}

// checkManage replies with the denial and returns false when the actor may
// not manage the role.
func checkManage(ctx *discord.CommandContext, role *discordgo.Role) (bool, error) {
	if msg := manageDenial(ctx.Actor(), role, ctx.Interaction.GuildID); msg != "" {
		return false, ctx.ReplyEphemeral("🚫 " + msg)
	}
	return true, nil
}
