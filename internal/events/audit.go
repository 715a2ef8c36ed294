package events

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	auditCacheSize  = 4096
	auditFetchLimit = 5
)

// auditActions maps monitored kinds to the audit log entry that attributes them.
var auditActions = map[models.ActionKind]discordgo.AuditLogAction{
	models.ActionChannelCreate: discordgo.AuditLogActionChannelCreate,
	models.ActionChannelDelete: discordgo.AuditLogActionChannelDelete,
	models.ActionRoleCreate:    discordgo.AuditLogActionRoleCreate,
	models.ActionRoleDelete:    discordgo.AuditLogActionRoleDelete,
	models.ActionRoleUpdate:    discordgo.AuditLogActionRoleUpdate,
	models.ActionMemberKick:    discordgo.AuditLogActionMemberKick,
	models.ActionMemberBan:     discordgo.AuditLogActionMemberBanAdd,
	models.ActionWebhookCreate: discordgo.AuditLogActionWebhookCreate,
	models.ActionWebhookDelete: discordgo.AuditLogActionWebhookDelete,
	models.ActionEmojiDelete:   discordgo.AuditLogActionEmojiDelete,
	models.ActionGuildUpdate:   discordgo.AuditLogActionGuildUpdate,
}

// kindForAudit is the reverse of auditActions.
func kindForAudit(action discordgo.AuditLogAction) (models.ActionKind, bool) {
	for kind, a := range auditActions {
		if a == action {
			return kind, true
		}
	}
	return "", false
}

// auditSource is the audit log endpoint, satisfied by *discordgo.Session.
type auditSource interface {
	GuildAuditLog(guildID, userID, beforeID string, actionType, limit int, options ...discordgo.RequestOption) (*discordgo.GuildAuditLog, error)
}

// Attribution names who performed an audited action.
type Attribution struct {
	EntryID string
	ActorID string
	At      time.Time
}

// Attributor finds the actor behind a gateway event. Entries pushed by the
// gateway are cached; otherwise the audit log is fetched. Only entries
// younger than the window count.
type Attributor struct {
	source auditSource
	window time.Duration
	cache  *expirable.LRU[string, Attribution]
	now    func() time.Time
}

// NewAttributor creates an Attributor over source.
func NewAttributor(source auditSource, window time.Duration) *Attributor {
	if window <= 0 {
		window = 5 * time.Second
	}
	return &Attributor{
		source: source,
		window: window,
		cache:  expirable.NewLRU[string, Attribution](auditCacheSize, nil, window*2),
		now:    time.Now,
	}
}

func auditKey(guildID string, action discordgo.AuditLogAction, targetID string) string {
	return fmt.Sprintf("%s:%d:%s", guildID, action, targetID)
}

// Record stores an entry delivered by the gateway.
func (a *Attributor) Record(guildID string, entry *discordgo.AuditLogEntry) {
	if entry == nil || entry.ActionType == nil || entry.UserID == "" {
		return
	}
	at, err := discordgo.SnowflakeTimestamp(entry.ID)
	if err != nil {
		at = a.now()
	}
	a.cache.Add(auditKey(guildID, *entry.ActionType, entry.TargetID), Attribution{
		EntryID: entry.ID,
		ActorID: entry.UserID,
		At:      at,
	})
}

// Resolve returns the actor of action on targetID. An empty targetID
// accepts the most recent entry of that action.
func (a *Attributor) Resolve(ctx context.Context, guildID string, action discordgo.AuditLogAction, targetID string) (Attribution, bool, error) {
	if targetID != "" {
		if hit, ok := a.cache.Get(auditKey(guildID, action, targetID)); ok && a.fresh(hit.At) {
			return hit, true, nil
		}
	}

	log, err := a.source.GuildAuditLog(guildID, "", "", int(action), auditFetchLimit, discordgo.WithContext(ctx))
	if err != nil {
		return Attribution{}, false, err
	}
	if log == nil {
		return Attribution{}, false, nil
	}
	for _, entry := range log.AuditLogEntries {
		if entry == nil || entry.UserID == "" {
			continue
		}
		if targetID != "" && entry.TargetID != targetID {
			continue
		}
		at, err := discordgo.SnowflakeTimestamp(entry.ID)
		if err != nil || !a.fresh(at) {
			continue
		}
		hit := Attribution{EntryID: entry.ID, ActorID: entry.UserID, At: at}
		a.cache.Add(auditKey(guildID, action, entry.TargetID), hit)
		return hit, true, nil
	}
	return Attribution{}, false, nil
}

func (a *Attributor) fresh(at time.Time) bool {
	return a.now().Sub(at) <= a.window
}
