package perms

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/PancyStudios/PancyGuardGo/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

func TestManageDenial(t *testing.T) {
	admin := permissions.Member{ID: "a", Permissions: discordgo.PermissionAdministrator, HighestRank: 10}
	owner := permissions.Member{ID: "o", IsOwner: true, HighestRank: 1}
	mod := permissions.Member{ID: "m", Permissions: discordgo.PermissionBanMembers, HighestRank: 20}

	tests := []struct {
		name    string
		actor   permissions.Member
		role    *discordgo.Role
		allowed bool
	}{
		{"admin below role", admin, &discordgo.Role{ID: "r", Position: 5}, true},
		{"admin at role", admin, &discordgo.Role{ID: "r", Position: 10}, false},
		{"owner ignores hierarchy", owner, &discordgo.Role{ID: "r", Position: 50}, true},
		{"non admin", mod, &discordgo.Role{ID: "r", Position: 1}, false},
		{"missing role", admin, nil, false},
		{"everyone", admin, &discordgo.Role{ID: "g1"}, false},
		{"managed", admin, &discordgo.Role{ID: "r", Managed: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := manageDenial(tt.actor, tt.role, "g1")
			if (got == "") != tt.allowed {
				t.Errorf("manageDenial() = %q, want allowed %v", got, tt.allowed)
			}
		})
	}
}

func TestMatchPermissions(t *testing.T) {
	all := matchPermissions("")
	if len(all) != maxChoices {
		t.Errorf("len(matchPermissions(\"\")) = %d, want %d", len(all), maxChoices)
	}

	got := matchPermissions("  BAN ")
	if len(got) != 1 || got[0] != "BanMembers" {
		t.Errorf("matchPermissions(ban) = %v, want [BanMembers]", got)
	}

	for _, n := range matchPermissions("manage") {
		if !strings.Contains(strings.ToLower(n), "manage") {
			t.Errorf("matchPermissions(manage) returned %q", n)
		}
	}

	if got := matchPermissions("nothing-like-this"); len(got) != 0 {
		t.Errorf("matchPermissions(nothing) = %v, want empty", got)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
		user bool
	}{
		{fmt.Errorf("%w: Foo", permissions.ErrUnknownPermission), "Ese permiso no existe. Usa el autocompletado para elegir uno.", true},
		{permissions.ErrAlreadyGranted, "El rol ya tiene ese permiso.", true},
		{permissions.ErrNotGranted, "El rol no tiene ese permiso.", true},
		{permissions.ErrStaffRoleExists, "Ese rol ya es de staff.", true},
		{permissions.ErrStaffRoleMissing, "Ese rol no es de staff.", true},
		{errors.New("mongo down"), "Ocurrió un error al guardar los cambios. Inténtalo de nuevo más tarde.", false},
	}

	for _, tt := range tests {
		if got := errorMessage(tt.err); got != tt.want {
			t.Errorf("errorMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
		if got := isUserError(tt.err); got != tt.user {
			t.Errorf("isUserError(%v) = %v, want %v", tt.err, got, tt.user)
		}
	}
}

func TestGrantsText(t *testing.T) {
	if got := grantsText(nil); got != "Ningún rol tiene permisos falsos." {
		t.Errorf("grantsText(nil) = %q", got)
	}

	got := grantsText([]models.FakePermissionGrant{
		{RoleID: "1", Permissions: []string{"BanMembers", "KickMembers"}},
		{RoleID: "2", Permissions: []string{"ManageMessages"}},
	})
	want := "<@&1>: `BanMembers`, `KickMembers`\n<@&2>: `ManageMessages`"
	if got != want {
		t.Errorf("grantsText() = %q, want %q", got, want)
	}
}

func TestRoleMentions(t *testing.T) {
	if got := roleMentions(nil); got != "No hay roles de staff configurados." {
		t.Errorf("roleMentions(nil) = %q", got)
	}
	if got := roleMentions([]string{"1", "2"}); got != "<@&1>, <@&2>" {
		t.Errorf("roleMentions() = %q", got)
	}
}
