// Package antinuke counts destructive administrative actions per actor and
// punishes actors that reach the configured limit.
//
// Counters never decay. An actor that breached a limit keeps breaching on
// every further action of that kind until an admin resets the counter, or
// until the guild opts into resetCounterOnPunish.
package antinuke

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/google/uuid"
)

// Engine evaluates monitored actions against the guild policy.
type Engine struct {
	policies  PolicyStore
	counters  CounterStore
	log       ViolationLog
	punisher  *Punisher
	notifier  Notifier
	owners    OwnerResolver
	observers []Observer
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithObservers registers observers for evaluations and punishments.
func WithObservers(obs ...Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, obs...) }
}

// WithNotifier sets the sink used for progress lines when logActions is on.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithOwners makes admin checks use the platform's guild owner instead of
// the owner id carried by the Requester.
func WithOwners(r OwnerResolver) Option {
	return func(e *Engine) { e.owners = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine. punisher may be nil when only evaluation is needed.
func NewEngine(policies PolicyStore, counters CounterStore, log ViolationLog, punisher *Punisher, opts ...Option) *Engine {
	e := &Engine{
		policies: policies,
		counters: counters,
		log:      log,
		punisher: punisher,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsWhitelisted applies the whitelist rules of policy to the event actor.
func IsWhitelisted(policy *models.GuildPolicy, ev Event) bool {
	switch {
	case policy.Whitelist.BypassOwner && ev.OwnerID != "" && ev.ActorID == ev.OwnerID:
		return true
	case policy.Whitelist.BypassBots && ev.ActorIsBot:
		return true
	default:
		return policy.IsWhitelisted(ev.ActorID)
	}
}

// Evaluate counts ev and compares the new count with the configured limit.
// Disabled and whitelisted events return OutcomeSkipped without touching
// storage. Store failures return an error wrapping ErrPersistence.
func (e *Engine) Evaluate(ctx context.Context, ev Event) (Result, error) {
	policy, err := e.policies.GetOrCreatePolicy(ctx, ev.GuildID)
	if err != nil {
		return Result{}, fmt.Errorf("%w: load policy: %v", ErrPersistence, err)
	}

	limit := policy.Limit(ev.Kind)
	res := Result{Policy: policy, Max: limit.Max}

	if !policy.Enabled {
		res.SkipReason = SkipDisabled
		return res, nil
	}
	if !limit.Enabled {
		res.SkipReason = SkipKindDisabled
		return res, nil
	}
	if IsWhitelisted(policy, ev) {
		res.SkipReason = SkipWhitelisted
		return res, nil
	}

	at := ev.At
	if at.IsZero() {
		at = e.now()
	}

	// The counter is the authoritative gate, so it is written before the log.
	count, err := e.counters.Increment(ctx, ev.GuildID, ev.ActorID, ev.Kind, at)
	if err != nil {
		return Result{}, fmt.Errorf("%w: increment counter: %v", ErrPersistence, err)
	}
	res.Count = count
	res.Outcome = OutcomeBelowThreshold
	if count >= limit.Max {
		res.Outcome = OutcomeBreached
		res.IncidentID = uuid.NewString()
	}

	entry := models.ViolationLogEntry{
		GuildID:    ev.GuildID,
		ActorID:    ev.ActorID,
		Type:       models.EntryAction,
		ActionKind: ev.Kind,
		TargetType: models.TargetTypeOf(ev.Kind),
		TargetID:   ev.TargetID,
		TargetName: ev.TargetName,
		Executor:   models.Executor{ID: ev.ActorID, DisplayName: ev.ActorName},
		Details:    ev.Metadata,
		Violated:   res.Breached(),
		Count:      count,
		Limit:      limit.Max,
		IncidentID: res.IncidentID,
		Timestamp:  at,
	}
	if err := e.log.Append(ctx, entry); err != nil {
		return Result{}, fmt.Errorf("%w: append action log: %v", ErrPersistence, err)
	}

	return res, nil
}

// Handle evaluates ev and, on breach, runs the punisher in the calling
// goroutine. The returned punishment result is nil unless a breach happened.
func (e *Engine) Handle(ctx context.Context, ev Event) (Result, *PunishmentResult, error) {
	res, err := e.Evaluate(ctx, ev)
	for _, o := range e.observers {
		o.ObserveEvaluation(ev, res, err)
	}
	if err != nil {
		logger.Error(fmt.Sprintf("Error evaluando %s de %s en %s: %v", ev.Kind, ev.ActorID, ev.GuildID, err), "AntiNuke")
		return res, nil, err
	}

	switch res.Outcome {
	case OutcomeSkipped:
		logger.Debug(fmt.Sprintf("%s de %s omitido (%s)", ev.Kind, ev.ActorID, res.SkipReason), "AntiNuke")
		return res, nil, nil
	case OutcomeBelowThreshold:
		e.logProgress(ctx, ev, res)
		return res, nil, nil
	}

	logger.Warn(fmt.Sprintf("Límite de %s superado por %s en %s (%d/%d)", ev.Kind.Label(), ev.ActorID, ev.GuildID, res.Count, res.Max), "AntiNuke")
	if e.punisher == nil {
		return res, nil, nil
	}

	start := e.now()
	pr := e.punisher.Execute(ctx, Guild{ID: ev.GuildID, Name: ev.GuildName}, ev.ActorID, res.Policy, ev.Kind, PunishContext{
		TriggerAction: ev.Kind,
		Count:         res.Count,
		Limit:         res.Max,
		IncidentID:    res.IncidentID,
		Extra:         ev.Metadata,
	})
	for _, o := range e.observers {
		o.ObservePunishment(ev, pr, e.now().Sub(start))
	}

	if pr.Success && res.Policy.Punishment.ResetCounterOnPunish {
		kind := ev.Kind
		if _, err := e.counters.ResetCounters(ctx, ev.GuildID, ev.ActorID, &kind); err != nil {
			logger.Error(fmt.Sprintf("No se pudo reiniciar el contador de %s tras el castigo: %v", ev.ActorID, err), "AntiNuke")
		}
	}

	return res, &pr, nil
}

func (e *Engine) logProgress(ctx context.Context, ev Event, res Result) {
	logging := res.Policy.Logging
	if e.notifier == nil || !logging.Enabled || !logging.LogActions || logging.ChannelID == "" {
		return
	}
	err := e.notifier.LogToChannel(ctx, logging.ChannelID, Notification{
		Kind:      NotifyAction,
		GuildID:   ev.GuildID,
		GuildName: ev.GuildName,
		ActorID:   ev.ActorID,
		Action:    ev.Kind,
		Count:     res.Count,
		Limit:     res.Max,
		Timestamp: e.now(),
	})
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudo enviar el registro al canal %s: %v", logging.ChannelID, err), "AntiNuke")
	}
}

// Reset zeroes the counters of an actor, only kind when it is not nil.
// It returns how many counters were affected.
func (e *Engine) Reset(ctx context.Context, guildID, actorID string, kind *models.ActionKind) (int64, error) {
	n, err := e.counters.ResetCounters(ctx, guildID, actorID, kind)
	if err != nil {
		return 0, fmt.Errorf("%w: reset counters: %v", ErrPersistence, err)
	}
	return n, nil
}

// Counters returns the current counters of an actor.
func (e *Engine) Counters(ctx context.Context, guildID, actorID string) ([]models.ActionCounter, error) {
	return e.counters.Counters(ctx, guildID, actorID)
}

// History reads the violation log.
func (e *Engine) History(ctx context.Context, q models.ViolationQuery) ([]models.ViolationLogEntry, error) {
	return e.log.Query(ctx, q)
}

// Policy returns the guild policy, creating it on first access.
func (e *Engine) Policy(ctx context.Context, guildID string) (*models.GuildPolicy, error) {
	return e.policies.GetOrCreatePolicy(ctx, guildID)
}
