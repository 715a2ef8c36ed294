package events

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/antinuke"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/PancyStudios/PancyGuardGo/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

const discordEpochMs = 1420070400000

// snowflakeAt builds an id whose embedded timestamp is t.
func snowflakeAt(t time.Time, seq int64) string {
	return strconv.FormatInt((t.UnixMilli()-discordEpochMs)<<22|seq, 10)
}

type fakeAudit struct {
	entries []*discordgo.AuditLogEntry
	calls   int
	err     error
}

func (f *fakeAudit) GuildAuditLog(guildID, userID, beforeID string, actionType, limit int, options ...discordgo.RequestOption) (*discordgo.GuildAuditLog, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []*discordgo.AuditLogEntry
	for _, e := range f.entries {
		if e.ActionType != nil && int(*e.ActionType) == actionType {
			out = append(out, e)
		}
	}
	return &discordgo.GuildAuditLog{AuditLogEntries: out}, nil
}

func auditEntry(id, actor, targetID string, action discordgo.AuditLogAction) *discordgo.AuditLogEntry {
	a := action
	return &discordgo.AuditLogEntry{ID: id, UserID: actor, TargetID: targetID, ActionType: &a}
}

type fakeEngine struct {
	mu     sync.Mutex
	events []antinuke.Event
	err    error
}

func (f *fakeEngine) Handle(ctx context.Context, ev antinuke.Event) (antinuke.Result, *antinuke.PunishmentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return antinuke.Result{Outcome: antinuke.OutcomeBelowThreshold, Count: 1, Max: 3}, nil, f.err
}

type fakeDirectory struct {
	botID string
	bots  map[string]bool
}

func (d fakeDirectory) GuildInfo(guildID string) (string, string) {
	return "Guild " + guildID, "owner"
}

func (d fakeDirectory) UserInfo(guildID, userID string) (string, bool) {
	return "user-" + userID, d.bots[userID]
}

func (d fakeDirectory) BotID() string {
	return d.botID
}

type fakeFilterStore struct {
	cfg      *models.FilterConfig
	offenses map[string]int
	cleared  []string
}

func (f *fakeFilterStore) Config(ctx context.Context, guildID string) (*models.FilterConfig, error) {
	return f.cfg, nil
}

func (f *fakeFilterStore) AddOffense(ctx context.Context, guildID, userID string) (int, error) {
	if f.offenses == nil {
		f.offenses = make(map[string]int)
	}
	f.offenses[userID]++
	return f.offenses[userID], nil
}

func (f *fakeFilterStore) ClearOffenses(ctx context.Context, guildID, userID string) error {
	f.offenses[userID] = 0
	f.cleared = append(f.cleared, userID)
	return nil
}

type fakeModerator struct {
	deleted  []string
	timeouts []string
	failMute bool
}

func (f *fakeModerator) DeleteMessage(ctx context.Context, channelID, messageID, reason string) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeModerator) Timeout(ctx context.Context, guildID, userID string, d time.Duration, reason string) error {
	if f.failMute {
		return context.DeadlineExceeded
	}
	f.timeouts = append(f.timeouts, userID)
	return nil
}

type fakeChecker struct {
	staff map[string]bool
	perms map[string]bool
}

func (f fakeChecker) CanUse(ctx context.Context, guildID string, m permissions.Member, name string) (bool, error) {
	return m.HasNative(discordgo.PermissionManageMessages) || f.perms[m.ID], nil
}

func (f fakeChecker) IsStaffEquivalent(ctx context.Context, guildID string, m permissions.Member) (bool, error) {
	return f.staff[m.ID], nil
}
