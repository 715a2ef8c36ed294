package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/antinuke"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const eventTimeout = 20 * time.Second

// Handler is the anti-nuke entry point, satisfied by *antinuke.Engine.
type Handler interface {
	Handle(ctx context.Context, ev antinuke.Event) (antinuke.Result, *antinuke.PunishmentResult, error)
}

// directory answers guild and user lookups from the session cache.
type directory interface {
	GuildInfo(guildID string) (name, ownerID string)
	UserInfo(guildID, userID string) (name string, bot bool)
	BotID() string
}

// Monitor turns gateway events into anti-nuke events. It attributes each
// one through the audit log and hands it to the engine.
type Monitor struct {
	engine  Handler
	audit   *Attributor
	dir     directory
	seen    *expirable.LRU[string, struct{}]
	emojiMu sync.Mutex
	emojis  map[string]map[string]string
	now     func() time.Time
}

// NewMonitor creates a Monitor.
func NewMonitor(engine Handler, audit *Attributor, dir directory) *Monitor {
	return &Monitor{
		engine: engine,
		audit:  audit,
		dir:    dir,
		seen:   expirable.NewLRU[string, struct{}](auditCacheSize, nil, 10*time.Minute),
		emojis: make(map[string]map[string]string),
		now:    time.Now,
	}
}

// target is the object an action touched.
type target struct {
	ID   string
	Name string
}

// observe attributes one action and evaluates it. It reports whether an
// event reached the engine.
func (m *Monitor) observe(ctx context.Context, guildID string, kind models.ActionKind, t target, meta map[string]interface{}) bool {
	action, ok := auditActions[kind]
	if !ok || guildID == "" {
		return false
	}

	attr, found, err := m.audit.Resolve(ctx, guildID, action, t.ID)
	if err != nil {
		logger.Warn(fmt.Sprintf("No se pudo leer el registro de auditoría de %s (%s): %v", guildID, kind, err), "AntiNuke")
		return false
	}
	if !found {
		logger.Debug(fmt.Sprintf("Sin entrada de auditoría reciente para %s en %s (objetivo %s)", kind, guildID, t.ID), "AntiNuke")
		return false
	}
	if m.seen.Contains(attr.EntryID) {
		return false
	}
	m.seen.Add(attr.EntryID, struct{}{})

	if attr.ActorID == m.dir.BotID() {
		return false
	}

	guildName, ownerID := m.dir.GuildInfo(guildID)
	actorName, actorBot := m.dir.UserInfo(guildID, attr.ActorID)
	ev := antinuke.Event{
		GuildID:    guildID,
		GuildName:  guildName,
		OwnerID:    ownerID,
		ActorID:    attr.ActorID,
		ActorName:  actorName,
		ActorIsBot: actorBot,
		Kind:       kind,
		TargetID:   t.ID,
		TargetName: t.Name,
		Metadata:   meta,
		At:         attr.At,
	}
	if ev.At.IsZero() {
		ev.At = m.now()
	}

	res, pr, err := m.engine.Handle(ctx, ev)
	switch {
	case errors.Is(err, antinuke.ErrPersistence):
		logger.Critical(fmt.Sprintf("Evaluación de %s por %s en %s no contabilizada: %v", kind, attr.ActorID, guildID, err), "AntiNuke")
	case err != nil:
		logger.Error(fmt.Sprintf("Error evaluando %s en %s: %v", kind, guildID, err), "AntiNuke")
	case pr != nil:
		logger.Warn(fmt.Sprintf("%s superó el límite de %s en %s (%d/%d), castigo %s: %s",
			attr.ActorID, kind.Label(), guildID, res.Count, res.Max, pr.Action, pr.Status), "AntiNuke")
	}
	return true
}

func (m *Monitor) run(guildID string, kind models.ActionKind, t target, meta map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()
	m.observe(ctx, guildID, kind, t, meta)
}

// RecordAudit feeds gateway audit log entries into the attribution cache.
func (m *Monitor) RecordAudit(s *discordgo.Session, e *discordgo.GuildAuditLogEntryCreate) {
	if e == nil || e.AuditLogEntry == nil || e.ActionType == nil {
		return
	}
	if _, monitored := kindForAudit(*e.ActionType); !monitored {
		return
	}
	m.audit.Record(e.GuildID, e.AuditLogEntry)
}

func (m *Monitor) onChannelCreate(s *discordgo.Session, e *discordgo.ChannelCreate) {
	if e.Channel == nil || e.Channel.GuildID == "" {
		return
	}
	m.run(e.Channel.GuildID, models.ActionChannelCreate, target{e.Channel.ID, e.Channel.Name},
		map[string]interface{}{"channelType": int(e.Channel.Type)})
}

func (m *Monitor) onChannelDelete(s *discordgo.Session, e *discordgo.ChannelDelete) {
	if e.Channel == nil || e.Channel.GuildID == "" {
		return
	}
	m.run(e.Channel.GuildID, models.ActionChannelDelete, target{e.Channel.ID, e.Channel.Name},
		map[string]interface{}{"channelType": int(e.Channel.Type)})
}

func (m *Monitor) onRoleCreate(s *discordgo.Session, e *discordgo.GuildRoleCreate) {
	if e.GuildRole == nil || e.Role == nil {
		return
	}
	m.run(e.GuildID, models.ActionRoleCreate, target{e.Role.ID, e.Role.Name},
		map[string]interface{}{"permissions": e.Role.Permissions})
}

func (m *Monitor) onRoleDelete(s *discordgo.Session, e *discordgo.GuildRoleDelete) {
	if e.RoleID == "" {
		return
	}
	m.run(e.GuildID, models.ActionRoleDelete, target{ID: e.RoleID}, nil)
}

func (m *Monitor) onRoleUpdate(s *discordgo.Session, e *discordgo.GuildRoleUpdate) {
	if e.GuildRole == nil || e.Role == nil {
		return
	}
	m.run(e.GuildID, models.ActionRoleUpdate, target{e.Role.ID, e.Role.Name},
		map[string]interface{}{"permissions": e.Role.Permissions})
}

func (m *Monitor) onBanAdd(s *discordgo.Session, e *discordgo.GuildBanAdd) {
	if e.User == nil {
		return
	}
	m.run(e.GuildID, models.ActionMemberBan, target{e.User.ID, e.User.Username}, nil)
}

// onMemberRemove only counts removals the audit log attributes to a kick
// within the window. Anything else is a voluntary leave.
func (m *Monitor) onMemberRemove(s *discordgo.Session, e *discordgo.GuildMemberRemove) {
	if e.Member == nil || e.User == nil {
		return
	}
	m.run(e.GuildID, models.ActionMemberKick, target{e.User.ID, e.User.Username}, nil)
}

// onWebhooksUpdate only says a channel's webhooks changed, so the most
// recent create or delete entry is used.
func (m *Monitor) onWebhooksUpdate(s *discordgo.Session, e *discordgo.WebhooksUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()
	meta := map[string]interface{}{"channelId": e.ChannelID}
	if m.observe(ctx, e.GuildID, models.ActionWebhookCreate, target{}, meta) {
		return
	}
	m.observe(ctx, e.GuildID, models.ActionWebhookDelete, target{}, meta)
}

// SeedEmojis stores the emoji list of a guild so later updates can be
// diffed.
func (m *Monitor) SeedEmojis(guildID string, emojis []*discordgo.Emoji) {
	m.emojiDiff(guildID, emojis)
}

// emojiDiff replaces the snapshot and returns the emojis that disappeared.
func (m *Monitor) emojiDiff(guildID string, emojis []*discordgo.Emoji) []target {
	next := make(map[string]string, len(emojis))
	for _, e := range emojis {
		if e != nil {
			next[e.ID] = e.Name
		}
	}

	m.emojiMu.Lock()
	prev, known := m.emojis[guildID]
	m.emojis[guildID] = next
	m.emojiMu.Unlock()

	if !known {
		return nil
	}
	var removed []target
	for id, name := range prev {
		if _, ok := next[id]; !ok {
			removed = append(removed, target{id, name})
		}
	}
	return removed
}

// ForgetGuild drops the emoji snapshot of a guild the bot left.
func (m *Monitor) ForgetGuild(guildID string) {
	m.emojiMu.Lock()
	delete(m.emojis, guildID)
	m.emojiMu.Unlock()
}

func (m *Monitor) onEmojisUpdate(s *discordgo.Session, e *discordgo.GuildEmojisUpdate) {
	for _, t := range m.emojiDiff(e.GuildID, e.Emojis) {
		m.run(e.GuildID, models.ActionEmojiDelete, t, nil)
	}
}

func (m *Monitor) onGuildUpdate(s *discordgo.Session, e *discordgo.GuildUpdate) {
	if e.Guild == nil || e.Guild.ID == "" {
		return
	}
	m.run(e.Guild.ID, models.ActionGuildUpdate, target{e.Guild.ID, e.Guild.Name}, nil)
}

// sessionDirectory reads names and owners from the session state, falling
// back to REST.
type sessionDirectory struct {
	s *discordgo.Session
}

func (d sessionDirectory) GuildInfo(guildID string) (string, string) {
	if g, err := d.s.State.Guild(guildID); err == nil {
		return g.Name, g.OwnerID
	}
	if g, err := d.s.Guild(guildID); err == nil {
		return g.Name, g.OwnerID
	}
	return "", ""
}

func (d sessionDirectory) UserInfo(guildID, userID string) (string, bool) {
	if m, err := d.s.State.Member(guildID, userID); err == nil && m.User != nil {
		return m.User.Username, m.User.Bot
	}
	if u, err := d.s.User(userID); err == nil {
		return u.Username, u.Bot
	}
	return "", false
}

func (d sessionDirectory) BotID() string {
	if d.s.State == nil || d.s.State.User == nil {
		return ""
	}
	return d.s.State.User.ID
}
