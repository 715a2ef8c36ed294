package access

import (
	"context"
	"errors"
	"testing"

	"github.com/PancyStudios/PancyGuardGo/pkg/permissions"
)

type fakeChecker struct {
	perms map[string]bool
	staff bool
	err   error
}

func (f fakeChecker) CanUse(ctx context.Context, guildID string, m permissions.Member, name string) (bool, error) {
	return f.perms[name], f.err
}

func (f fakeChecker) IsStaffEquivalent(ctx context.Context, guildID string, m permissions.Member) (bool, error) {
	return f.staff, f.err
}

func TestCheck(t *testing.T) {
	member := permissions.Member{ID: "1"}
	tests := []struct {
		name    string
		checker fakeChecker
		req     Requirement
		guildID string
		want    bool
	}{
		{"none outside guild", fakeChecker{}, RequirementNone, "", true},
		{"guild only in DM", fakeChecker{}, RequirementGuild, "", false},
		{"guild only in guild", fakeChecker{}, RequirementGuild, "g", true},
		{"permission held", fakeChecker{perms: map[string]bool{"BanMembers": true}}, Permission("BanMembers"), "g", true},
		{"permission missing", fakeChecker{}, Permission("BanMembers"), "g", false},
		{"staff", fakeChecker{staff: true}, RequirementStaff, "g", true},
		{"not staff", fakeChecker{}, RequirementStaff, "g", false},
		{"resolver error", fakeChecker{staff: true, err: errors.New("db down")}, RequirementStaff, "g", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := Check(context.Background(), tt.checker, tt.req, tt.guildID, member)
			if got != tt.want {
				t.Errorf("Check() = %v, want %v", got, tt.want)
			}
			if !got && msg == "" {
				t.Error("Check() returned no message on denial")
			}
		})
	}
}

func TestRequirementIsNone(t *testing.T) {
	if !RequirementNone.IsNone() {
		t.Error("RequirementNone.IsNone() = false, want true")
	}
	if Permission("ManageGuild").IsNone() {
		t.Error("Permission().IsNone() = true, want false")
	}
}
