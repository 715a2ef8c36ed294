package events

import (
	"context"
	"testing"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

func newTestMonitor(now time.Time, entries ...*discordgo.AuditLogEntry) (*Monitor, *fakeEngine) {
	audit := NewAttributor(&fakeAudit{entries: entries}, 5*time.Second)
	audit.now = func() time.Time { return now }
	engine := &fakeEngine{}
	m := NewMonitor(engine, audit, fakeDirectory{botID: "bot", bots: map[string]bool{"otherbot": true}})
	m.now = func() time.Time { return now }
	return m, engine
}

func TestMonitorObserve(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	id := snowflakeAt(now.Add(-time.Second), 1)
	m, engine := newTestMonitor(now, auditEntry(id, "nuker", "c1", discordgo.AuditLogActionChannelDelete))

	ok := m.observe(context.Background(), "g1", models.ActionChannelDelete, target{"c1", "general"}, nil)
	if !ok {
		t.Fatal("observe() = false, want true")
	}
	if len(engine.events) != 1 {
		t.Fatalf("engine got %d events, want 1", len(engine.events))
	}
	ev := engine.events[0]
	if ev.ActorID != "nuker" || ev.Kind != models.ActionChannelDelete || ev.TargetName != "general" {
		t.Errorf("event = %+v", ev)
	}
	if ev.OwnerID != "owner" || ev.GuildName != "Guild g1" {
		t.Errorf("guild info = %v/%v, want owner/Guild g1", ev.OwnerID, ev.GuildName)
	}
}

func TestMonitorCountsEachAuditEntryOnce(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	id := snowflakeAt(now.Add(-time.Second), 1)
	m, engine := newTestMonitor(now, auditEntry(id, "hooker", "w1", discordgo.AuditLogActionWebhookCreate))

	m.observe(context.Background(), "g1", models.ActionWebhookCreate, target{}, nil)
	m.observe(context.Background(), "g1", models.ActionWebhookCreate, target{}, nil)

	if len(engine.events) != 1 {
		t.Errorf("engine got %d events, want 1", len(engine.events))
	}
}

func TestMonitorSkips(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	id := snowflakeAt(now.Add(-time.Second), 1)

	tests := []struct {
		name  string
		entry *discordgo.AuditLogEntry
		kind  models.ActionKind
	}{
		{"own actions", auditEntry(id, "bot", "u1", discordgo.AuditLogActionMemberBanAdd), models.ActionMemberBan},
		{"no audit entry", nil, models.ActionMemberKick},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entries []*discordgo.AuditLogEntry
			if tt.entry != nil {
				entries = append(entries, tt.entry)
			}
			m, engine := newTestMonitor(now, entries...)
			m.observe(context.Background(), "g1", tt.kind, target{ID: "u1"}, nil)
			if len(engine.events) != 0 {
				t.Errorf("engine got %d events, want 0", len(engine.events))
			}
		})
	}
}

func TestMonitorFlagsBotActors(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	id := snowflakeAt(now.Add(-time.Second), 1)
	m, engine := newTestMonitor(now, auditEntry(id, "otherbot", "r1", discordgo.AuditLogActionRoleCreate))

	m.observe(context.Background(), "g1", models.ActionRoleCreate, target{ID: "r1"}, nil)
	if len(engine.events) != 1 || !engine.events[0].ActorIsBot {
		t.Errorf("events = %+v, want one bot-flagged event", engine.events)
	}
}

func TestEmojiDiff(t *testing.T) {
	m, _ := newTestMonitor(time.Now())

	if removed := m.emojiDiff("g1", []*discordgo.Emoji{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}}); len(removed) != 0 {
		t.Errorf("first snapshot removed = %v, want none", removed)
	}

	removed := m.emojiDiff("g1", []*discordgo.Emoji{{ID: "2", Name: "b"}})
	if len(removed) != 1 || removed[0].ID != "1" || removed[0].Name != "a" {
		t.Errorf("removed = %v, want [1 a]", removed)
	}

	m.ForgetGuild("g1")
	if removed := m.emojiDiff("g1", nil); len(removed) != 0 {
		t.Errorf("after forget removed = %v, want none", removed)
	}
}

func TestRecordAuditIgnoresUnmonitoredActions(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m, _ := newTestMonitor(now)

	entry := auditEntry(snowflakeAt(now, 1), "actor", "m1", discordgo.AuditLogActionMessageDelete)
	m.RecordAudit(nil, &discordgo.GuildAuditLogEntryCreate{AuditLogEntry: entry, GuildID: "g1"})
	if m.audit.cache.Len() != 0 {
		t.Errorf("cache size = %d, want 0", m.audit.cache.Len())
	}

	entry = auditEntry(snowflakeAt(now, 2), "actor", "c1", discordgo.AuditLogActionChannelCreate)
	m.RecordAudit(nil, &discordgo.GuildAuditLogEntryCreate{AuditLogEntry: entry, GuildID: "g1"})
	if m.audit.cache.Len() != 1 {
		t.Errorf("cache size = %d, want 1", m.audit.cache.Len())
	}
}
