package events

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord/access"
	"github.com/PancyStudios/PancyGuardGo/pkg/filter"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/metrics"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/PancyStudios/PancyGuardGo/pkg/permissions"
	"github.com/bwmarrin/discordgo"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// FilterTimeout is how long a repeat offender is muted.
	FilterTimeout = 10 * time.Minute
	// DefaultTimeoutAfter is the offense count that triggers the mute.
	DefaultTimeoutAfter = 3

	recentPerAuthor = 20
	recentCacheSize = 10000
	settingsTTL     = time.Minute
)

// FilterStore reads filter configs and counts offenses.
type FilterStore interface {
	Config(ctx context.Context, guildID string) (*models.FilterConfig, error)
	AddOffense(ctx context.Context, guildID, userID string) (int, error)
	ClearOffenses(ctx context.Context, guildID, userID string) error
}

// Moderator deletes messages and times members out.
type Moderator interface {
	DeleteMessage(ctx context.Context, channelID, messageID, reason string) error
	Timeout(ctx context.Context, guildID, userID string, d time.Duration, reason string) error
}

// IncomingMessage is a guild message reduced to what the filter needs.
type IncomingMessage struct {
	GuildID      string
	ChannelID    string
	MessageID    string
	Author       permissions.Member
	Content      string
	Attachments  []string
	MentionCount int
	At           time.Time
}

// FilterOutcome reports what the consumer did with one message.
type FilterOutcome struct {
	Violations []filter.Violation
	Deleted    bool
	Offenses   int
	TimedOut   bool
}

type cachedSettings struct {
	updatedAt time.Time
	settings  filter.Settings
}

// ContentFilter applies the guild's filter config to incoming messages.
type ContentFilter struct {
	store    FilterStore
	checker  access.Checker
	mod      Moderator
	metrics  *metrics.Recorder
	mu       sync.Mutex
	recent   *expirable.LRU[string, []filter.RecentMessage]
	settings *expirable.LRU[string, cachedSettings]
}

// NewContentFilter creates a ContentFilter. rec may be nil.
func NewContentFilter(store FilterStore, checker access.Checker, mod Moderator, rec *metrics.Recorder) *ContentFilter {
	return &ContentFilter{
		store:    store,
		checker:  checker,
		mod:      mod,
		metrics:  rec,
		recent:   expirable.NewLRU[string, []filter.RecentMessage](recentCacheSize, nil, 5*time.Minute),
		settings: expirable.NewLRU[string, cachedSettings](1000, nil, settingsTTL),
	}
}

func (f *ContentFilter) settingsFor(cfg *models.FilterConfig) filter.Settings {
	if hit, ok := f.settings.Get(cfg.GuildID); ok && hit.updatedAt.Equal(cfg.UpdatedAt) {
		return hit.settings
	}
	s, err := filter.SettingsFrom(*cfg)
	if err != nil {
		logger.Warn(fmt.Sprintf("Configuración de filtro de %s con patrones inválidos: %v", cfg.GuildID, err), "Filter")
	}
	f.settings.Add(cfg.GuildID, cachedSettings{updatedAt: cfg.UpdatedAt, settings: s})
	return s
}

// exempt is true for moderators and members holding an exempt role.
func (f *ContentFilter) exempt(ctx context.Context, cfg *models.FilterConfig, msg IncomingMessage) bool {
	for _, id := range msg.Author.RoleIDs {
		if slices.Contains(cfg.ExemptRoleIDs, id) {
			return true
		}
	}
	if f.checker == nil {
		return msg.Author.HasNative(discordgo.PermissionManageMessages)
	}
	if ok, err := f.checker.CanUse(ctx, msg.GuildID, msg.Author, "ManageMessages"); err == nil && ok {
		return true
	}
	ok, err := f.checker.IsStaffEquivalent(ctx, msg.GuildID, msg.Author)
	return err == nil && ok
}

// remember appends msg to the author's window and returns the earlier
// messages still inside it.
func (f *ContentFilter) remember(msg IncomingMessage, window time.Duration) []filter.RecentMessage {
	key := msg.GuildID + ":" + msg.Author.ID

	f.mu.Lock()
	defer f.mu.Unlock()

	prev, _ := f.recent.Get(key)
	kept := make([]filter.RecentMessage, 0, len(prev)+1)
	for _, r := range prev {
		if msg.At.Sub(r.At) <= window {
			kept = append(kept, r)
		}
	}
	earlier := slices.Clone(kept)

	kept = append(kept, filter.RecentMessage{Content: msg.Content, At: msg.At})
	if len(kept) > recentPerAuthor {
		kept = kept[len(kept)-recentPerAuthor:]
	}
	f.recent.Add(key, kept)
	return earlier
}

// Process evaluates msg and enforces the result.
func (f *ContentFilter) Process(ctx context.Context, msg IncomingMessage) (FilterOutcome, error) {
	var out FilterOutcome
	if msg.Author.Bot || msg.GuildID == "" {
		return out, nil
	}

	cfg, err := f.store.Config(ctx, msg.GuildID)
	if err != nil {
		return out, fmt.Errorf("load filter config: %w", err)
	}
	if cfg == nil || !cfg.Enabled || f.exempt(ctx, cfg, msg) {
		return out, nil
	}

	settings := f.settingsFor(cfg)
	recent := f.remember(msg, settings.SpamWindow)

	out.Violations = filter.Evaluate(settings, filter.Message{
		Content:      msg.Content,
		Attachments:  msg.Attachments,
		MentionCount: msg.MentionCount,
		AuthorID:     msg.Author.ID,
		Recent:       recent,
		At:           msg.At,
	})
	if len(out.Violations) == 0 {
		return out, nil
	}

	reasons := make([]string, 0, len(out.Violations))
	for _, v := range out.Violations {
		f.metrics.ObserveFilterViolation(v.Type)
		reasons = append(reasons, fmt.Sprintf("%s (%s)", v.Type, v.Reason))
	}
	reason := "Filtro: " + strings.Join(reasons, ", ")

	if err := f.mod.DeleteMessage(ctx, msg.ChannelID, msg.MessageID, reason); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo eliminar el mensaje %s: %v", msg.MessageID, err), "Filter")
	} else {
		out.Deleted = true
	}

	out.Offenses, err = f.store.AddOffense(ctx, msg.GuildID, msg.Author.ID)
	if err != nil {
		return out, fmt.Errorf("count offense: %w", err)
	}

	threshold := cfg.TimeoutAfter
	if threshold <= 0 {
		threshold = DefaultTimeoutAfter
	}
	if out.Offenses < threshold {
		return out, nil
	}

	if err := f.mod.Timeout(ctx, msg.GuildID, msg.Author.ID, FilterTimeout, reason); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo silenciar a %s en %s: %v", msg.Author.ID, msg.GuildID, err), "Filter")
		return out, nil
	}
	out.TimedOut = true
	if err := f.store.ClearOffenses(ctx, msg.GuildID, msg.Author.ID); err != nil {
		logger.Warn(fmt.Sprintf("No se pudieron reiniciar las infracciones de %s: %v", msg.Author.ID, err), "Filter")
	}
	logger.Info(fmt.Sprintf("%s silenciado %s en %s tras %d infracciones", msg.Author.ID, FilterTimeout, msg.GuildID, out.Offenses), "Filter")
	return out, nil
}

// incomingFrom converts a gateway message. The author snapshot uses the
// guild from the session state when available.
func incomingFrom(s *discordgo.Session, m *discordgo.MessageCreate) IncomingMessage {
	member := m.Member
	if member != nil && member.User == nil {
		copied := *member
		copied.User = m.Author
		member = &copied
	}
	var guild *discordgo.Guild
	if s != nil && s.State != nil {
		guild, _ = s.State.Guild(m.GuildID)
	}
	author := discord.MemberFromGuild(guild, member)
	if member == nil && m.Author != nil {
		author = permissions.Member{ID: m.Author.ID, Username: m.Author.Username, Bot: m.Author.Bot}
	}

	attachments := make([]string, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, a.Filename)
	}
	mentions := len(m.Mentions) + len(m.MentionRoles)
	if m.MentionEveryone {
		mentions++
	}

	at := m.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	return IncomingMessage{
		GuildID:      m.GuildID,
		ChannelID:    m.ChannelID,
		MessageID:    m.ID,
		Author:       author,
		Content:      m.Content,
		Attachments:  attachments,
		MentionCount: mentions,
		At:           at,
	}
}

func (f *ContentFilter) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	out, err := f.Process(ctx, incomingFrom(s, m))
	if err != nil {
		logger.Error(fmt.Sprintf("Error en el filtro de contenido de %s: %v", m.GuildID, err), "Filter")
		return
	}
	if len(out.Violations) > 0 {
		logger.Debug(fmt.Sprintf("Mensaje de %s filtrado en %s: %d infracciones", m.Author.ID, m.GuildID, len(out.Violations)), "Filter")
	}
}
