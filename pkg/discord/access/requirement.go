// Package access decides whether a member may run a command.
package access

import (
	"context"

	"github.com/PancyStudios/PancyGuardGo/pkg/permissions"
)

// Requirement defines what a command needs from the member running it.
type Requirement struct {
	GuildOnly  bool
	Permission string
	StaffOnly  bool
}

// IsNone returns true if no requirement is set.
func (r Requirement) IsNone() bool {
	return !r.GuildOnly && r.Permission == "" && !r.StaffOnly
}

// Predefined requirement helpers.
var (
	RequirementNone  = Requirement{}
	RequirementGuild = Requirement{GuildOnly: true}
	RequirementStaff = Requirement{GuildOnly: true, StaffOnly: true}
)

// Permission builds a guild-only requirement on one capability.
func Permission(name string) Requirement {
	return Requirement{GuildOnly: true, Permission: name}
}

// Checker is the subset of the resolver a check needs.
type Checker interface {
	CanUse(ctx context.Context, guildID string, m permissions.Member, name string) (bool, error)
	IsStaffEquivalent(ctx context.Context, guildID string, m permissions.Member) (bool, error)
}

// Check verifies req for member m. The returned message is shown to the
// user when the check fails.
func Check(ctx context.Context, checker Checker, req Requirement, guildID string, m permissions.Member) (bool, string) {
	if req.IsNone() {
		return true, ""
	}

	if guildID == "" {
		return false, "Este comando solo puede usarse en un servidor."
	}

	if req.Permission != "" {
		ok, err := checker.CanUse(ctx, guildID, m, req.Permission)
		if err != nil {
			return false, "Error al verificar tus permisos."
		}
		if !ok {
			return false, "Necesitas el permiso `" + req.Permission + "` para usar este comando."
		}
	}

	if req.StaffOnly {
		ok, err := checker.IsStaffEquivalent(ctx, guildID, m)
		if err != nil {
			return false, "Error al verificar tus permisos."
		}
		if !ok {
			return false, "Este comando solo puede usarlo el staff del servidor."
		}
	}

	return true, ""
}
