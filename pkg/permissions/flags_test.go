package permissions

import (
	"slices"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestFlagNameRoundTrip(t *testing.T) {
	for _, name := range AllNames() {
		flag, ok := Flag(name)
		if !ok {
			t.Errorf("Flag(%q) missing", name)
			continue
		}
		if got, _ := Name(flag); got != name {
			t.Errorf("Name(Flag(%q)) = %v", name, got)
		}
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"banmembers", "BanMembers", true},
		{"  ADMINISTRATOR ", "Administrator", true},
		{"ManageEmojisAndStickers", "ManageEmojisAndStickers", true},
		{"ban", "", false},
	}
	for _, tt := range tests {
		got, ok := Canonical(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Canonical(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNamesFor(t *testing.T) {
	got := NamesFor(discordgo.PermissionKickMembers | discordgo.PermissionBanMembers | discordgo.PermissionManageRoles)
	want := []string{"KickMembers", "BanMembers", "ManageRoles"}
	if !slices.Equal(got, want) {
		t.Errorf("NamesFor() = %v, want %v", got, want)
	}
	if len(NamesFor(0)) != 0 {
		t.Error("NamesFor(0) should be empty")
	}
}

func TestIsDangerous(t *testing.T) {
	tests := []struct {
		bits int64
		want bool
	}{
		{discordgo.PermissionSendMessages | discordgo.PermissionViewChannel | discordgo.PermissionAddReactions, false},
		{discordgo.PermissionSendMessages | discordgo.PermissionManageWebhooks, true},
		{discordgo.PermissionCreateInstantInvite, true},
		{discordgo.PermissionModerateMembers, false},
		{0, false},
	}
	for _, tt := range tests {
		if got := IsDangerous(tt.bits); got != tt.want {
			t.Errorf("IsDangerous(%v) = %v, want %v", NamesFor(tt.bits), got, tt.want)
		}
	}
}

func TestFlagUsesDiscordBits(t *testing.T) {
	tests := []struct {
		name string
		want int64
	}{
		{"Administrator", discordgo.PermissionAdministrator},
		{"BanMembers", discordgo.PermissionBanMembers},
		{"ManageGuild", discordgo.PermissionManageServer},
		{"ViewAuditLog", discordgo.PermissionViewAuditLogs},
		{"MuteMembers", discordgo.PermissionVoiceMuteMembers},
		{"ManageEmojisAndStickers", discordgo.PermissionManageEmojis},
		{"UseApplicationCommands", discordgo.PermissionUseSlashCommands},
		{"ModerateMembers", discordgo.PermissionModerateMembers},
	}
	for _, tt := range tests {
		if got, ok := Flag(tt.name); !ok || got != tt.want {
			t.Errorf("Flag(%q) = %b, %v, want %b, true", tt.name, got, ok, tt.want)
		}
	}

	if n := len(AllNames()); n != len(flagsByName) {
		t.Errorf("len(AllNames()) = %d, want %d distinct bits", n, len(flagsByName))
	}
	if Dangerous&discordgo.PermissionAdministrator == 0 {
		t.Error("Dangerous does not include Administrator")
	}
}
