package antinuke

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/PancyStudios/PancyGuardGo/pkg/permissions"
)

var errDown = errors.New("store down")

type memPolicies struct {
	mu       sync.Mutex
	policies map[string]*models.GuildPolicy
	fail     bool
}

func newMemPolicies() *memPolicies {
	return &memPolicies{policies: make(map[string]*models.GuildPolicy)}
}

func (m *memPolicies) GetOrCreatePolicy(_ context.Context, guildID string) (*models.GuildPolicy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errDown
	}
	p, ok := m.policies[guildID]
	if !ok {
		p = models.DefaultGuildPolicy(guildID)
		m.policies[guildID] = p
	}
	return p.Clone(), nil
}

func (m *memPolicies) SavePolicy(_ context.Context, p *models.GuildPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[p.GuildID] = p.Clone()
	return nil
}

// set stores a policy built from the defaults by fn.
func (m *memPolicies) set(guildID string, fn func(p *models.GuildPolicy)) {
	p := models.DefaultGuildPolicy(guildID)
	fn(p)
	m.SavePolicy(context.Background(), p)
}

type counterKey struct {
	guild, actor string
	kind         models.ActionKind
}

type memCounters struct {
	mu       sync.Mutex
	counters map[counterKey]*models.ActionCounter
	fail     bool
}

func newMemCounters() *memCounters {
	return &memCounters{counters: make(map[counterKey]*models.ActionCounter)}
}

func (m *memCounters) Increment(_ context.Context, guildID, actorID string, kind models.ActionKind, at time.Time) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return 0, errDown
	}
	k := counterKey{guildID, actorID, kind}
	c, ok := m.counters[k]
	if !ok {
		c = &models.ActionCounter{GuildID: guildID, ActorID: actorID, ActionKind: kind}
		m.counters[k] = c
	}
	c.Count++
	c.LastActionAt = at
	return c.Count, nil
}

func (m *memCounters) ResetCounters(_ context.Context, guildID, actorID string, kind *models.ActionKind) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	now := time.Now()
	for k, c := range m.counters {
		if k.guild != guildID || k.actor != actorID || (kind != nil && k.kind != *kind) {
			continue
		}
		c.Count = 0
		c.ResetAt = &now
		n++
	}
	return n, nil
}

func (m *memCounters) Counters(_ context.Context, guildID, actorID string) ([]models.ActionCounter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ActionCounter
	for k, c := range m.counters {
		if k.guild == guildID && k.actor == actorID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memCounters) count(guildID, actorID string, kind models.ActionKind) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.counters[counterKey{guildID, actorID, kind}]; ok {
		return c.Count
	}
	return 0
}

type memLog struct {
	mu      sync.Mutex
	entries []models.ViolationLogEntry
	fail    bool
}

func (m *memLog) Append(_ context.Context, e models.ViolationLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errDown
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memLog) Query(_ context.Context, q models.ViolationQuery) ([]models.ViolationLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ViolationLogEntry
	for _, e := range m.entries {
		if (q.GuildID == "" || e.GuildID == q.GuildID) &&
			(q.ActorID == "" || e.ActorID == q.ActorID) &&
			(q.ActionKind == "" || e.ActionKind == q.ActionKind) &&
			(q.Type == "" || e.Type == q.Type) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memLog) byType(t models.EntryType) []models.ViolationLogEntry {
	out, _ := m.Query(context.Background(), models.ViolationQuery{Type: t})
	return out
}

type memConfinements struct {
	mu    sync.Mutex
	saved []models.Confinement
}

func (m *memConfinements) SaveConfinement(_ context.Context, c models.Confinement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, c)
	return nil
}

type call struct {
	op     string
	userID string
	roleID string
	reason string
	purge  int
}

type fakeMembership struct {
	mu         sync.Mutex
	members    map[string]permissions.Member
	roles      map[string][]Role
	botRank    int
	failOps    map[string]error
	failRoleID map[string]error
	calls      []call
}

func newFakeMembership() *fakeMembership {
	return &fakeMembership{
		members:    make(map[string]permissions.Member),
		roles:      make(map[string][]Role),
		botRank:    100,
		failOps:    make(map[string]error),
		failRoleID: make(map[string]error),
	}
}

func (f *fakeMembership) FetchMember(_ context.Context, _, userID string) (permissions.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[userID]
	if !ok {
		return permissions.Member{}, ErrMemberNotFound
	}
	return m, nil
}

func (f *fakeMembership) MemberRoles(_ context.Context, _, userID string) ([]Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOps["roles"]; err != nil {
		return nil, err
	}
	return f.roles[userID], nil
}

func (f *fakeMembership) BotHighestRoleRank(context.Context, string) (int, error) {
	return f.botRank, nil
}

func (f *fakeMembership) record(c call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOps[c.op]; err != nil {
		return err
	}
	if err := f.failRoleID[c.roleID]; c.roleID != "" && err != nil {
		return err
	}
	f.calls = append(f.calls, c)
	return nil
}

func (f *fakeMembership) Kick(_ context.Context, _, userID, reason string) error {
	return f.record(call{op: "kick", userID: userID, reason: reason})
}

func (f *fakeMembership) Ban(_ context.Context, _, userID, reason string, purgeDays int) error {
	return f.record(call{op: "ban", userID: userID, reason: reason, purge: purgeDays})
}

func (f *fakeMembership) RemoveRole(_ context.Context, _, userID, roleID, reason string) error {
	return f.record(call{op: "removeRole", userID: userID, roleID: roleID, reason: reason})
}

func (f *fakeMembership) Confine(_ context.Context, _, userID, roleID string, _ time.Time, reason string) error {
	return f.record(call{op: "confine", userID: userID, roleID: roleID, reason: reason})
}

func (f *fakeMembership) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		out = append(out, c.op)
	}
	return out
}

type fakeNotifier struct {
	mu       sync.Mutex
	channel  []Notification
	direct   []Notification
	failDM   bool
	failChan bool
}

func (f *fakeNotifier) LogToChannel(_ context.Context, _ string, n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failChan {
		return errDown
	}
	f.channel = append(f.channel, n)
	return nil
}

func (f *fakeNotifier) DirectMessage(_ context.Context, _ string, n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDM {
		return errors.New("cannot send messages to this user")
	}
	f.direct = append(f.direct, n)
	return nil
}

type recObserver struct {
	mu          sync.Mutex
	evaluations []Outcome
	punishments []PunishmentResult
	errors      int
}

func (r *recObserver) ObserveEvaluation(_ Event, res Result, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.errors++
		return
	}
	r.evaluations = append(r.evaluations, res.Outcome)
}

func (r *recObserver) ObservePunishment(_ Event, res PunishmentResult, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.punishments = append(r.punishments, res)
}
