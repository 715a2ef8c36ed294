package events

import (
	"context"
	"testing"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/PancyStudios/PancyGuardGo/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

func filterConfig(modules ...models.FilterModule) *models.FilterConfig {
	return &models.FilterConfig{
		GuildID:      "g1",
		Enabled:      true,
		Modules:      modules,
		TimeoutAfter: 2,
		UpdatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func message(id, authorID, content string, at time.Time) IncomingMessage {
	return IncomingMessage{
		GuildID:   "g1",
		ChannelID: "c1",
		MessageID: id,
		Author:    permissions.Member{ID: authorID},
		Content:   content,
		At:        at,
	}
}

func TestContentFilterEscalates(t *testing.T) {
	store := &fakeFilterStore{cfg: filterConfig(models.FilterInvites)}
	mod := &fakeModerator{}
	f := NewContentFilter(store, fakeChecker{}, mod, nil)
	now := time.Now()

	out, err := f.Process(context.Background(), message("m1", "u1", "entra a discord.gg/abc", now))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if !out.Deleted || out.Offenses != 1 || out.TimedOut {
		t.Errorf("first offense = %+v, want deleted, 1 offense, no timeout", out)
	}

	out, err = f.Process(context.Background(), message("m2", "u1", "discord.gg/abc", now.Add(time.Second)))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if !out.TimedOut || out.Offenses != 2 {
		t.Errorf("second offense = %+v, want timeout at 2 offenses", out)
	}
	if len(mod.deleted) != 2 || len(mod.timeouts) != 1 {
		t.Errorf("deleted = %v, timeouts = %v", mod.deleted, mod.timeouts)
	}
	if store.offenses["u1"] != 0 {
		t.Errorf("offenses after timeout = %d, want 0", store.offenses["u1"])
	}
}

func TestContentFilterSkips(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *models.FilterConfig
		author  permissions.Member
		checker fakeChecker
	}{
		{"no config", nil, permissions.Member{ID: "u1"}, fakeChecker{}},
		{"disabled", &models.FilterConfig{GuildID: "g1", Modules: []models.FilterModule{models.FilterInvites}}, permissions.Member{ID: "u1"}, fakeChecker{}},
		{"native moderator", filterConfig(models.FilterInvites), permissions.Member{ID: "u1", Permissions: discordgo.PermissionManageMessages}, fakeChecker{}},
		{"fake moderator", filterConfig(models.FilterInvites), permissions.Member{ID: "u1"}, fakeChecker{perms: map[string]bool{"u1": true}}},
		{"staff", filterConfig(models.FilterInvites), permissions.Member{ID: "u1"}, fakeChecker{staff: map[string]bool{"u1": true}}},
		{"bot", filterConfig(models.FilterInvites), permissions.Member{ID: "u1", Bot: true}, fakeChecker{}},
		{"exempt role", func() *models.FilterConfig {
			c := filterConfig(models.FilterInvites)
			c.ExemptRoleIDs = []string{"vip"}
			return c
		}(), permissions.Member{ID: "u1", RoleIDs: []string{"vip"}}, fakeChecker{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := &fakeModerator{}
			f := NewContentFilter(&fakeFilterStore{cfg: tt.cfg}, tt.checker, mod, nil)
			msg := message("m1", "u1", "discord.gg/abc", time.Now())
			msg.Author = tt.author

			out, err := f.Process(context.Background(), msg)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if len(out.Violations) != 0 || len(mod.deleted) != 0 {
				t.Errorf("outcome = %+v, want untouched", out)
			}
		})
	}
}

func TestContentFilterSpamWindow(t *testing.T) {
	cfg := filterConfig(models.FilterSpam)
	cfg.SpamCount = 3
	cfg.TimeoutAfter = 10
	store := &fakeFilterStore{cfg: cfg}
	mod := &fakeModerator{}
	f := NewContentFilter(store, fakeChecker{}, mod, nil)
	start := time.Now()

	for i, want := range []bool{false, false, true} {
		out, err := f.Process(context.Background(), message("m", "u1", "compra ya", start.Add(time.Duration(i)*time.Second)))
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if got := len(out.Violations) > 0; got != want {
			t.Errorf("message %d flagged = %v, want %v", i+1, got, want)
		}
	}

	out, _ := f.Process(context.Background(), message("m", "u2", "compra ya", start.Add(3*time.Second)))
	if len(out.Violations) != 0 {
		t.Error("another author's messages must not count")
	}

	out, _ = f.Process(context.Background(), message("m", "u1", "compra ya", start.Add(time.Minute)))
	if len(out.Violations) != 0 {
		t.Error("messages outside the window must not count")
	}
}

func TestContentFilterTimeoutFailureKeepsOffenses(t *testing.T) {
	cfg := filterConfig(models.FilterInvites)
	cfg.TimeoutAfter = 1
	store := &fakeFilterStore{cfg: cfg}
	f := NewContentFilter(store, fakeChecker{}, &fakeModerator{failMute: true}, nil)

	out, err := f.Process(context.Background(), message("m1", "u1", "discord.gg/x", time.Now()))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if out.TimedOut {
		t.Error("TimedOut = true, want false")
	}
	if store.offenses["u1"] != 1 {
		t.Errorf("offenses = %d, want 1", store.offenses["u1"])
	}
}

func TestIncomingFrom(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:              "m1",
		GuildID:         "g1",
		ChannelID:       "c1",
		Content:         "hola",
		Author:          &discordgo.User{ID: "u1", Username: "pancy"},
		Member:          &discordgo.Member{Roles: []string{"r1"}},
		Mentions:        []*discordgo.User{{ID: "a"}, {ID: "b"}},
		MentionRoles:    []string{"r2"},
		MentionEveryone: true,
		Attachments:     []*discordgo.MessageAttachment{{Filename: "song.mp3"}},
		Timestamp:       ts,
	}}

	in := incomingFrom(nil, m)
	if in.Author.ID != "u1" || in.Author.Username != "pancy" {
		t.Errorf("Author = %+v", in.Author)
	}
	if len(in.Author.RoleIDs) != 1 {
		t.Errorf("RoleIDs = %v, want [r1]", in.Author.RoleIDs)
	}
	if in.MentionCount != 4 {
		t.Errorf("MentionCount = %v, want %v", in.MentionCount, 4)
	}
	if len(in.Attachments) != 1 || in.Attachments[0] != "song.mp3" {
		t.Errorf("Attachments = %v", in.Attachments)
	}
	if !in.At.Equal(ts) {
		t.Errorf("At = %v, want %v", in.At, ts)
	}
}
