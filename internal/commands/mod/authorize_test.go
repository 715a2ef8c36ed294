package mod

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/antinuke"
	"github.com/PancyStudios/PancyGuardGo/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

type fakeAuth struct {
	decision permissions.Decision
	err      error
	calls    int
}

func (f *fakeAuth) CanActOn(ctx context.Context, guildID string, actor, target permissions.Member, name string) (permissions.Decision, error) {
	f.calls++
	return f.decision, f.err
}

type fakeGuard struct {
	members map[string]permissions.Member
	botRank int
	rankErr error
}

func (f *fakeGuard) FetchMember(ctx context.Context, guildID, userID string) (permissions.Member, error) {
	m, ok := f.members[userID]
	if !ok {
		return permissions.Member{}, antinuke.ErrMemberNotFound
	}
	return m, nil
}

func (f *fakeGuard) BotHighestRoleRank(ctx context.Context, guildID string) (int, error) {
	return f.botRank, f.rankErr
}

func (f *fakeGuard) Kick(ctx context.Context, guildID, userID, reason string) error { return nil }

func (f *fakeGuard) Ban(ctx context.Context, guildID, userID, reason string, purgeDays int) error {
	return nil
}

func (f *fakeGuard) Timeout(ctx context.Context, guildID, userID string, d time.Duration, reason string) error {
	return nil
}

func TestAuthorize(t *testing.T) {
	actor := permissions.Member{ID: "actor", HighestRank: 10}
	allowed := permissions.Decision{Allowed: true, Reason: permissions.ReasonAllowed}
	members := map[string]permissions.Member{
		"low":   {ID: "low", HighestRank: 2},
		"high":  {ID: "high", HighestRank: 8},
		"owner": {ID: "owner", IsOwner: true},
	}

	tests := []struct {
		name        string
		target      string
		allowAbsent bool
		decision    permissions.Decision
		botRank     int
		want        string
		wantCalls   int
	}{
		{"allowed", "low", false, allowed, 5, "", 1},
		{"absent without ban", "ghost", false, allowed, 5, "El usuario no está en el servidor.", 0},
		{"absent ban skips bot rank", "ghost", true, allowed, 0, "", 1},
		{"owner", "owner", false, allowed, 5, "No puedes actuar sobre el dueño del servidor.", 0},
		{"hierarchy", "low", false, permissions.Decision{Reason: permissions.ReasonHierarchy}, 5, permissions.ReasonHierarchy.Message(), 1},
		{"protected", "low", false, permissions.Decision{Reason: permissions.ReasonTargetProtected}, 5, permissions.ReasonTargetProtected.Message(), 1},
		{"bot below target", "high", false, allowed, 8, "Mi rol más alto no está por encima del usuario.", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuth{decision: tt.decision}
			c := &commands{auth: auth, guard: &fakeGuard{members: members, botRank: tt.botRank}}

			got, err := c.authorize(context.Background(), "g1", actor, tt.target, "BanMembers", tt.allowAbsent)
			if err != nil {
				t.Fatalf("authorize() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("authorize() = %q, want %q", got, tt.want)
			}
			if auth.calls != tt.wantCalls {
				t.Errorf("CanActOn calls = %d, want %d", auth.calls, tt.wantCalls)
			}
		})
	}
}

func TestAuthorizeErrors(t *testing.T) {
	actor := permissions.Member{ID: "actor", HighestRank: 10}
	members := map[string]permissions.Member{"low": {ID: "low", HighestRank: 1}}
	boom := errors.New("boom")

	c := &commands{auth: &fakeAuth{err: boom}, guard: &fakeGuard{members: members, botRank: 5}}
	if _, err := c.authorize(context.Background(), "g1", actor, "low", "KickMembers", false); !errors.Is(err, boom) {
		t.Errorf("authorize() error = %v, want %v", err, boom)
	}

	allowed := permissions.Decision{Allowed: true}
	c = &commands{auth: &fakeAuth{decision: allowed}, guard: &fakeGuard{members: members, rankErr: boom}}
	if _, err := c.authorize(context.Background(), "g1", actor, "low", "KickMembers", false); !errors.Is(err, boom) {
		t.Errorf("authorize() error = %v, want %v", err, boom)
	}
}

func TestAuditReason(t *testing.T) {
	if got := auditReason(nil, "spam"); got != "spam" {
		t.Errorf("auditReason(nil) = %q, want %q", got, "spam")
	}
	if got := auditReason(&discordgo.User{Username: "mod"}, "spam"); got != "spam | por mod" {
		t.Errorf("auditReason() = %q, want %q", got, "spam | por mod")
	}
}
