// Package filter classifies chat messages against the content filter
// modules a guild enabled. It only reports violations. Deleting messages
// and punishing authors is up to the caller.
package filter

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// Settings are the thresholds of one guild.
type Settings struct {
	Modules        map[models.FilterModule]bool
	CapsPercent    int
	CapsMinLetters int
	SpamCount      int
	SpamWindow     time.Duration
	SpoilerPairs   int
	MentionLimit   int
	EmojiLimit     int
	Patterns       []*regexp.Regexp
	CustomWords    []string
	AllowedDomains []string
}

// DefaultSettings enables every module with the stock thresholds.
func DefaultSettings() Settings {
	s := Settings{
		Modules:        make(map[models.FilterModule]bool),
		CapsPercent:    70,
		CapsMinLetters: 8,
		SpamCount:      5,
		SpamWindow:     10 * time.Second,
		SpoilerPairs:   5,
		MentionLimit:   5,
		EmojiLimit:     10,
	}
	for _, m := range models.FilterModules() {
		s.Modules[m] = true
	}
	return s
}

// SettingsFrom builds settings from a stored guild config. Invalid patterns
// are skipped and reported in the returned error; the settings stay usable.
func SettingsFrom(cfg models.FilterConfig) (Settings, error) {
	s := DefaultSettings()
	s.Modules = make(map[models.FilterModule]bool, len(cfg.Modules))
	for _, m := range cfg.Modules {
		s.Modules[m] = true
	}

	if cfg.CapsPercent > 0 {
		s.CapsPercent = cfg.CapsPercent
	}
	if cfg.SpamCount > 0 {
		s.SpamCount = cfg.SpamCount
	}
	if cfg.SpamWindowSecs > 0 {
		s.SpamWindow = time.Duration(cfg.SpamWindowSecs) * time.Second
	}
	if cfg.MentionLimit > 0 {
		s.MentionLimit = cfg.MentionLimit
	}
	if cfg.EmojiLimit > 0 {
		s.EmojiLimit = cfg.EmojiLimit
	}
	s.CustomWords = cfg.CustomWords
	s.AllowedDomains = cfg.AllowedDomains

	var errs []error
	for _, raw := range cfg.Patterns {
		re, err := regexp.Compile(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("pattern %q: %w", raw, err))
			continue
		}
		s.Patterns = append(s.Patterns, re)
	}
	return s, errors.Join(errs...)
}

// RecentMessage is an earlier message of the same author.
type RecentMessage struct {
	Content string
	At      time.Time
}

// Message is the message under evaluation.
type Message struct {
	Content      string
	Attachments  []string
	MentionCount int
	AuthorID     string
	Recent       []RecentMessage
	At           time.Time
}

// Violation is one failed check.
type Violation struct {
	Type   models.FilterModule
	Reason string
}

type check func(s Settings, m Message) (string, bool)

var checks = map[models.FilterModule]check{
	models.FilterCaps:        checkCaps,
	models.FilterSpam:        checkSpam,
	models.FilterSpoilers:    checkSpoilers,
	models.FilterRegex:       checkRegex,
	models.FilterMassMention: checkMentions,
	models.FilterMusicFiles:  checkMusicFiles,
	models.FilterEmoji:       checkEmoji,
	models.FilterInvites:     checkInvites,
	models.FilterLinks:       checkLinks,
	models.FilterCustomWords: checkCustomWords,
}

// Evaluate runs every enabled module. Checks are independent, so several
// violations can come back for one message, always in module order.
func Evaluate(s Settings, m Message) []Violation {
	var out []Violation
	for _, module := range models.FilterModules() {
		if !s.Modules[module] {
			continue
		}
		if reason, hit := checks[module](s, m); hit {
			out = append(out, Violation{Type: module, Reason: reason})
		}
	}
	return out
}

func checkCaps(s Settings, m Message) (string, bool) {
	var letters, upper int
	for _, r := range m.Content {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if letters < s.CapsMinLetters || letters == 0 {
		return "", false
	}
	pct := upper * 100 / letters
	if pct < s.CapsPercent {
		return "", false
	}
	return fmt.Sprintf("%d%% de mayúsculas", pct), true
}

func normalizeForSpam(content string) string {
	return strings.ToLower(strings.Join(strings.Fields(content), " "))
}

func checkSpam(s Settings, m Message) (string, bool) {
	current := normalizeForSpam(m.Content)
	if current == "" && len(m.Attachments) == 0 {
		return "", false
	}
	count := 1
	for _, r := range m.Recent {
		if !m.At.IsZero() && m.At.Sub(r.At) > s.SpamWindow {
			continue
		}
		if normalizeForSpam(r.Content) == current {
			count++
		}
	}
	if count < s.SpamCount {
		return "", false
	}
	return fmt.Sprintf("%d mensajes repetidos en %s", count, s.SpamWindow), true
}

func checkSpoilers(s Settings, m Message) (string, bool) {
	pairs := strings.Count(m.Content, "||") / 2
	if pairs < s.SpoilerPairs {
		return "", false
	}
	return fmt.Sprintf("%d spoilers", pairs), true
}

func checkRegex(s Settings, m Message) (string, bool) {
	for _, re := range s.Patterns {
		if re.MatchString(m.Content) {
			return fmt.Sprintf("coincide con el patrón %s", re.String()), true
		}
	}
	return "", false
}

func checkMentions(s Settings, m Message) (string, bool) {
	if m.MentionCount < s.MentionLimit {
		return "", false
	}
	return fmt.Sprintf("%d menciones", m.MentionCount), true
}

var mediaExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".ogg": true, ".flac": true, ".m4a": true,
	".aac": true, ".wma": true, ".opus": true, ".mp4": true, ".mov": true,
	".avi": true, ".mkv": true, ".webm": true, ".flv": true, ".wmv": true,
}

func checkMusicFiles(_ Settings, m Message) (string, bool) {
	for _, name := range m.Attachments {
		if ext := strings.ToLower(path.Ext(name)); mediaExtensions[ext] {
			return fmt.Sprintf("archivo multimedia %s", name), true
		}
	}
	return "", false
}

func checkEmoji(s Settings, m Message) (string, bool) {
	n := CountEmojis(m.Content)
	if n < s.EmojiLimit {
		return "", false
	}
	return fmt.Sprintf("%d emojis", n), true
}

var inviteRegex = regexp.MustCompile(`(?i)(?:discord\.gg|discord(?:app)?\.com/invite|dsc\.gg)/[a-z0-9-]+`)

func checkInvites(_ Settings, m Message) (string, bool) {
	if inv := inviteRegex.FindString(m.Content); inv != "" {
		return fmt.Sprintf("invitación %s", inv), true
	}
	return "", false
}

func checkLinks(s Settings, m Message) (string, bool) {
	for _, raw := range ExtractURLs(m.Content) {
		if !DomainAllowed(raw, s.AllowedDomains) {
			return fmt.Sprintf("enlace %s", raw), true
		}
	}
	return "", false
}

func checkCustomWords(s Settings, m Message) (string, bool) {
	content := strings.ToLower(m.Content)
	for _, w := range s.CustomWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" && strings.Contains(content, w) {
			return fmt.Sprintf("palabra prohibida %q", w), true
		}
	}
	return "", false
}
