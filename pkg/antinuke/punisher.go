package antinuke

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/PancyStudios/PancyGuardGo/pkg/permissions"
)

// BanPurgeDays is how much message history a ban removes.
const BanPurgeDays = 1

const defaultConfinement = time.Hour

// PunishmentStatus classifies a punishment outcome.
type PunishmentStatus string

const (
	StatusApplied               PunishmentStatus = "applied"
	StatusActorGone             PunishmentStatus = "actor_gone"
	StatusInsufficientHierarchy PunishmentStatus = "insufficient_hierarchy"
	StatusNotConfigured         PunishmentStatus = "not_configured"
	StatusFailed                PunishmentStatus = "failed"
)

const (
	reasonNotConfigured = "not configured"
	reasonNoDangerous   = "no dangerous roles found"
	reasonActorGone     = "actor is no longer a member"
	reasonHierarchy     = "actor's highest role is not below the bot's highest role"
)

// Guild identifies the guild a punishment runs in.
type Guild struct {
	ID   string
	Name string
}

// PunishContext describes the breach being punished.
type PunishContext struct {
	TriggerAction models.ActionKind
	Count         uint
	Limit         uint
	IncidentID    string
	Extra         map[string]interface{}
}

// Reason is the audit log reason attached to platform calls.
func (c PunishContext) Reason() string {
	return fmt.Sprintf("AntiNuke: Excessive %s (%d/%d)", c.TriggerAction, c.Count, c.Limit)
}

// PunishmentResult reports what the punisher did.
type PunishmentResult struct {
	Success             bool
	Action              models.PunishmentKind
	Status              PunishmentStatus
	Reason              string
	RemovedRoles        []string
	StrippedPermissions []string
	ConfinedUntil       *time.Time
}

// Punisher applies the configured punishment to an actor.
type Punisher struct {
	members      Membership
	log          ViolationLog
	notifier     Notifier
	confinements ConfinementStore
	now          func() time.Time
}

// NewPunisher creates a Punisher. notifier and confinements may be nil.
func NewPunisher(members Membership, log ViolationLog, notifier Notifier, confinements ConfinementStore) *Punisher {
	return &Punisher{
		members:      members,
		log:          log,
		notifier:     notifier,
		confinements: confinements,
		now:          time.Now,
	}
}

// Execute punishes violatorID according to policy. It never returns an
// error: platform failures end up in the result. After dispatch the outcome
// is logged, announced in the log channel and, when it succeeded, sent to
// the violator by DM. A failing later step never undoes an earlier one.
func (p *Punisher) Execute(ctx context.Context, guild Guild, violatorID string, policy *models.GuildPolicy, kind models.ActionKind, pc PunishContext) PunishmentResult {
	if pc.TriggerAction == "" {
		pc.TriggerAction = kind
	}
	res := p.dispatch(ctx, guild, violatorID, policy, pc)

	level := logger.Success
	if !res.Success {
		level = logger.Warn
	}
	level(fmt.Sprintf("Castigo %s a %s en %s: %s (%s)", res.Action, violatorID, guild.ID, res.Status, res.Reason), "Punisher")

	p.record(ctx, guild, violatorID, kind, pc, res)
	p.announce(ctx, guild, violatorID, policy, pc, res)
	return res
}

func (p *Punisher) dispatch(ctx context.Context, guild Guild, violatorID string, policy *models.GuildPolicy, pc PunishContext) PunishmentResult {
	action := policy.Punishment.Type
	if action == "" || action == models.PunishmentNone {
		return PunishmentResult{Action: models.PunishmentNone, Status: StatusNotConfigured, Reason: reasonNotConfigured}
	}

	member, err := p.members.FetchMember(ctx, guild.ID, violatorID)
	if errors.Is(err, ErrMemberNotFound) {
		return PunishmentResult{Action: action, Status: StatusActorGone, Reason: reasonActorGone}
	}
	if err != nil {
		return failed(action, err)
	}

	botRank, err := p.members.BotHighestRoleRank(ctx, guild.ID)
	if err != nil {
		return failed(action, err)
	}
	if member.IsOwner || member.HighestRank >= botRank {
		return PunishmentResult{Action: action, Status: StatusInsufficientHierarchy, Reason: reasonHierarchy}
	}

	reason := pc.Reason()
	switch action {
	case models.PunishmentKick:
		if err := p.members.Kick(ctx, guild.ID, violatorID, reason); err != nil {
			return failed(action, err)
		}
		return applied(action, "member kicked")

	case models.PunishmentBan:
		if err := p.members.Ban(ctx, guild.ID, violatorID, reason, BanPurgeDays); err != nil {
			return failed(action, err)
		}
		return applied(action, "member banned")

	case models.PunishmentStrip:
		return p.strip(ctx, guild, violatorID, reason)

	case models.PunishmentConfine:
		res := p.confine(ctx, guild, violatorID, policy.Punishment, reason)
		if !res.Success || !policy.Punishment.StripDangerousPerms {
			return res
		}
		return combine(action, res, p.strip(ctx, guild, violatorID, reason))

	case models.PunishmentConfineAndStrip:
		confined := p.confine(ctx, guild, violatorID, policy.Punishment, reason)
		return combine(action, confined, p.strip(ctx, guild, violatorID, reason))
	}

	return PunishmentResult{Action: action, Status: StatusNotConfigured, Reason: reasonNotConfigured}
}

func applied(action models.PunishmentKind, reason string) PunishmentResult {
	return PunishmentResult{Success: true, Action: action, Status: StatusApplied, Reason: reason}
}

func failed(action models.PunishmentKind, err error) PunishmentResult {
	return PunishmentResult{Action: action, Status: StatusFailed, Reason: err.Error()}
}

// strip removes every non-everyone role carrying a dangerous permission.
func (p *Punisher) strip(ctx context.Context, guild Guild, userID, reason string) PunishmentResult {
	action := models.PunishmentStrip
	roles, err := p.members.MemberRoles(ctx, guild.ID, userID)
	if err != nil {
		return failed(action, err)
	}

	var (
		removed  []string
		kept     []string
		stripped int64
		errs     []string
	)
	for _, role := range roles {
		if role.ID == guild.ID || !permissions.IsDangerous(role.Permissions) {
			continue
		}
		// Integration roles cannot be removed from a member.
		if role.Managed {
			kept = append(kept, role.Name)
			continue
		}
		if err := p.members.RemoveRole(ctx, guild.ID, userID, role.ID, reason); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", role.Name, err))
			continue
		}
		removed = append(removed, role.Name)
		stripped |= role.Permissions & permissions.Dangerous
	}

	res := PunishmentResult{
		Action:              action,
		RemovedRoles:        removed,
		StrippedPermissions: permissions.NamesFor(stripped),
	}
	switch {
	case len(errs) > 0:
		res.Status = StatusFailed
		res.Reason = fmt.Sprintf("failed to remove %d role(s): %s", len(errs), strings.Join(errs, "; "))
	case len(removed) == 0:
		res.Success = true
		res.Status = StatusApplied
		res.Reason = reasonNoDangerous
	default:
		res.Success = true
		res.Status = StatusApplied
		res.Reason = fmt.Sprintf("removed %d dangerous role(s)", len(removed))
	}
	if len(kept) > 0 {
		res.Reason += fmt.Sprintf("; managed role(s) kept: %s", strings.Join(kept, ", "))
	}
	return res
}

func (p *Punisher) confine(ctx context.Context, guild Guild, userID string, cfg models.PunishmentConfig, reason string) PunishmentResult {
	action := models.PunishmentConfine
	duration := cfg.ConfinementDuration()
	if duration <= 0 {
		duration = defaultConfinement
	}
	now := p.now()
	until := now.Add(duration)

	if err := p.members.Confine(ctx, guild.ID, userID, cfg.ConfinementRoleID, until, reason); err != nil {
		return failed(action, err)
	}

	res := applied(action, fmt.Sprintf("confined until %s", until.UTC().Format(time.RFC3339)))
	res.ConfinedUntil = &until

	if p.confinements != nil {
		err := p.confinements.SaveConfinement(ctx, models.Confinement{
			GuildID:   guild.ID,
			UserID:    userID,
			RoleID:    cfg.ConfinementRoleID,
			Reason:    reason,
			CreatedAt: now,
			ExpiresAt: until,
		})
		if err != nil {
			logger.Error(fmt.Sprintf("No se pudo registrar el aislamiento de %s: %v", userID, err), "Punisher")
			res.Reason += " (expiry not recorded)"
		}
	}
	return res
}

// combine merges confine and strip results. Both must succeed.
func combine(action models.PunishmentKind, confined, stripped PunishmentResult) PunishmentResult {
	res := PunishmentResult{
		Success:             confined.Success && stripped.Success,
		Action:              action,
		Reason:              confined.Reason + "; " + stripped.Reason,
		RemovedRoles:        stripped.RemovedRoles,
		StrippedPermissions: stripped.StrippedPermissions,
		ConfinedUntil:       confined.ConfinedUntil,
		Status:              StatusApplied,
	}
	if !res.Success {
		res.Status = StatusFailed
	}
	return res
}

func (p *Punisher) record(ctx context.Context, guild Guild, violatorID string, kind models.ActionKind, pc PunishContext, res PunishmentResult) {
	details := map[string]interface{}{"status": string(res.Status)}
	if len(res.RemovedRoles) > 0 {
		details["removedRoles"] = res.RemovedRoles
	}
	if len(res.StrippedPermissions) > 0 {
		details["strippedPermissions"] = res.StrippedPermissions
	}
	if res.ConfinedUntil != nil {
		details["confinedUntil"] = *res.ConfinedUntil
	}
	for k, v := range pc.Extra {
		if _, taken := details[k]; !taken {
			details[k] = v
		}
	}

	appliedKind := res.Action
	if !res.Success {
		appliedKind = models.PunishmentNone
	}
	err := p.log.Append(ctx, models.ViolationLogEntry{
		GuildID:           guild.ID,
		ActorID:           violatorID,
		Type:              models.EntryPunishment,
		ActionKind:        kind,
		TargetType:        models.TargetMember,
		TargetID:          violatorID,
		Executor:          models.Executor{ID: "antinuke", DisplayName: "AntiNuke"},
		Details:           details,
		Violated:          true,
		Count:             pc.Count,
		Limit:             pc.Limit,
		PunishmentApplied: appliedKind,
		Success:           res.Success,
		Reason:            res.Reason,
		IncidentID:        pc.IncidentID,
		Timestamp:         p.now(),
	})
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudo registrar el castigo de %s: %v", violatorID, err), "Punisher")
	}
}

func (p *Punisher) announce(ctx context.Context, guild Guild, violatorID string, policy *models.GuildPolicy, pc PunishContext, res PunishmentResult) {
	if p.notifier == nil {
		return
	}
	n := Notification{
		Kind:                NotifyPunishment,
		GuildID:             guild.ID,
		GuildName:           guild.Name,
		ActorID:             violatorID,
		Action:              pc.TriggerAction,
		Count:               pc.Count,
		Limit:               pc.Limit,
		Punishment:          res.Action,
		Status:              res.Status,
		Success:             res.Success,
		Reason:              res.Reason,
		RemovedRoles:        res.RemovedRoles,
		StrippedPermissions: res.StrippedPermissions,
		ConfinedUntil:       res.ConfinedUntil,
		IncidentID:          pc.IncidentID,
		Timestamp:           p.now(),
	}

	logging := policy.Logging
	if logging.Enabled && logging.LogPunishments && logging.ChannelID != "" {
		if err := p.notifier.LogToChannel(ctx, logging.ChannelID, n); err != nil {
			logger.Error(fmt.Sprintf("No se pudo notificar el castigo en el canal %s: %v", logging.ChannelID, err), "Punisher")
		}
	}

	if policy.Punishment.NotifyUser && res.Success {
		n.Kind = NotifyDirect
		if err := p.notifier.DirectMessage(ctx, violatorID, n); err != nil {
			logger.Debug(fmt.Sprintf("No se pudo enviar DM a %s: %v", violatorID, err), "Punisher")
		}
	}
}
