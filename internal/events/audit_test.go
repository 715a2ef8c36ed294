package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

func TestAttributorResolve(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	fresh := snowflakeAt(now.Add(-2*time.Second), 1)
	stale := snowflakeAt(now.Add(-30*time.Second), 2)

	tests := []struct {
		name     string
		entries  []*discordgo.AuditLogEntry
		action   discordgo.AuditLogAction
		targetID string
		wantOK   bool
		wantUser string
	}{
		{
			name:     "fresh matching entry",
			entries:  []*discordgo.AuditLogEntry{auditEntry(fresh, "actor", "c1", discordgo.AuditLogActionChannelDelete)},
			action:   discordgo.AuditLogActionChannelDelete,
			targetID: "c1",
			wantOK:   true,
			wantUser: "actor",
		},
		{
			name:     "stale entry is ignored",
			entries:  []*discordgo.AuditLogEntry{auditEntry(stale, "actor", "u1", discordgo.AuditLogActionMemberKick)},
			action:   discordgo.AuditLogActionMemberKick,
			targetID: "u1",
		},
		{
			name:     "other target is ignored",
			entries:  []*discordgo.AuditLogEntry{auditEntry(fresh, "actor", "c2", discordgo.AuditLogActionChannelDelete)},
			action:   discordgo.AuditLogActionChannelDelete,
			targetID: "c1",
		},
		{
			name:     "empty target takes the latest",
			entries:  []*discordgo.AuditLogEntry{auditEntry(fresh, "hooker", "w9", discordgo.AuditLogActionWebhookCreate)},
			action:   discordgo.AuditLogActionWebhookCreate,
			wantOK:   true,
			wantUser: "hooker",
		},
		{
			name:     "voluntary leave has no kick entry",
			action:   discordgo.AuditLogActionMemberKick,
			targetID: "u1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAttributor(&fakeAudit{entries: tt.entries}, 5*time.Second)
			a.now = func() time.Time { return now }

			got, ok, err := a.Resolve(context.Background(), "g1", tt.action, tt.targetID)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("Resolve() ok = %v, want %v", ok, tt.wantOK)
			}
			if got.ActorID != tt.wantUser {
				t.Errorf("ActorID = %v, want %v", got.ActorID, tt.wantUser)
			}
		})
	}
}

func TestAttributorUsesRecordedEntries(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeAudit{}
	a := NewAttributor(source, 5*time.Second)
	a.now = func() time.Time { return now }

	a.Record("g1", auditEntry(snowflakeAt(now.Add(-time.Second), 7), "actor", "r1", discordgo.AuditLogActionRoleDelete))

	got, ok, err := a.Resolve(context.Background(), "g1", discordgo.AuditLogActionRoleDelete, "r1")
	if err != nil || !ok {
		t.Fatalf("Resolve() = %v, %v, want hit", ok, err)
	}
	if got.ActorID != "actor" {
		t.Errorf("ActorID = %v, want %v", got.ActorID, "actor")
	}
	if source.calls != 0 {
		t.Errorf("audit log fetched %d times, want 0", source.calls)
	}
}

func TestAttributorPropagatesErrors(t *testing.T) {
	a := NewAttributor(&fakeAudit{err: errors.New("missing access")}, time.Second)
	if _, _, err := a.Resolve(context.Background(), "g1", discordgo.AuditLogActionGuildUpdate, "g1"); err == nil {
		t.Error("Resolve() error = nil, want error")
	}
}

func TestAuditActionsCoverEveryKind(t *testing.T) {
	for _, kind := range models.AllActionKinds() {
		action, ok := auditActions[kind]
		if !ok {
			t.Errorf("no audit action for %s", kind)
			continue
		}
		if back, _ := kindForAudit(action); back != kind {
			t.Errorf("kindForAudit(%d) = %v, want %v", action, back, kind)
		}
	}
}
