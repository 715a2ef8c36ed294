// Package perms provides /fakeperm and /staff. Both groups manage the
// bot-scoped permission model and are limited to native administrators.
package perms

import (
	"context"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/PancyStudios/PancyGuardGo/pkg/permissions"
)

// Grants manages fake permission grants.
type Grants interface {
	Grant(ctx context.Context, guildID, roleID, name, grantedBy string) (string, error)
	Revoke(ctx context.Context, guildID, roleID, name string) (string, error)
	RevokeAll(ctx context.Context, guildID, roleID string) (bool, error)
	RolePermissions(ctx context.Context, guildID, roleID string) ([]string, error)
	List(ctx context.Context, guildID string) ([]models.FakePermissionGrant, error)
}

// Staff manages the staff role set.
type Staff interface {
	Add(ctx context.Context, guildID, roleID string) error
	Remove(ctx context.Context, guildID, roleID string) error
	Roles(ctx context.Context, guildID string) ([]string, error)
}

var (
	_ Grants = (*permissions.GrantManager)(nil)
	_ Staff  = (*permissions.StaffManager)(nil)
)

type commands struct {
	grants Grants
	staff  Staff
}

// RegisterPermissionCommands registers /fakeperm and /staff.
func RegisterPermissionCommands(client *discord.ExtendedClient, grants Grants, staff Staff) {
	c := &commands{grants: grants, staff: staff}
	ch := client.CommandHandler

	ch.AddGlobalCommand(ch.BuildCommandGroup(
		"fakeperm",
		"Gestiona los permisos falsos de los roles",
		c.createGrantCommand(),
		c.createRevokeCommand(),
		c.createRevokeAllCommand(),
		c.createListCommand(),
	))

	ch.AddGlobalCommand(ch.BuildCommandGroup(
		"staff",
		"Gestiona los roles de staff",
		c.createStaffAddCommand(),
		c.createStaffRemoveCommand(),
		c.createStaffListCommand(),
	))
}
