package antinuke

import (
	"context"
	"fmt"
	"slices"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// Requester is who is asking for a policy change.
type Requester struct {
	GuildID string
	OwnerID string
	UserID  string
}

// IsOwner reports whether the requester owns the guild.
func (r Requester) IsOwner() bool {
	return r.OwnerID != "" && r.UserID == r.OwnerID
}

// IsAntiNukeAdmin is true for the guild owner and for listed admins.
func IsAntiNukeAdmin(policy *models.GuildPolicy, ownerID, userID string) bool {
	if ownerID != "" && userID == ownerID {
		return true
	}
	return policy != nil && policy.IsAdmin(userID)
}

// verifyOwner replaces req.OwnerID with the owner the resolver reports.
func (e *Engine) verifyOwner(ctx context.Context, req Requester) (Requester, error) {
	if e.owners == nil {
		return req, nil
	}
	owner, err := e.owners.GuildOwner(ctx, req.GuildID)
	if err != nil {
		return req, fmt.Errorf("resolve guild owner: %w", err)
	}
	req.OwnerID = owner
	return req, nil
}

// IsAdmin loads the policy and checks admin rights of the requester.
func (e *Engine) IsAdmin(ctx context.Context, req Requester) (bool, error) {
	req, err := e.verifyOwner(ctx, req)
	if err != nil {
		return false, err
	}
	if req.IsOwner() {
		return true, nil
	}
	policy, err := e.policies.GetOrCreatePolicy(ctx, req.GuildID)
	if err != nil {
		return false, err
	}
	return IsAntiNukeAdmin(policy, req.OwnerID, req.UserID), nil
}

// update applies mutate to a copy of the current policy and saves it.
func (e *Engine) update(ctx context.Context, req Requester, ownerOnly bool, mutate func(*models.GuildPolicy) error) (*models.GuildPolicy, error) {
	req, err := e.verifyOwner(ctx, req)
	if err != nil {
		return nil, err
	}
	if ownerOnly && !req.IsOwner() {
		return nil, ErrOwnerOnly
	}

	current, err := e.policies.GetOrCreatePolicy(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}
	if !ownerOnly && !IsAntiNukeAdmin(current, req.OwnerID, req.UserID) {
		return nil, ErrNotAdmin
	}

	policy := current.Clone()
	if err := mutate(policy); err != nil {
		return nil, err
	}
	policy.UpdatedAt = e.now()
	if err := e.policies.SavePolicy(ctx, policy); err != nil {
		return nil, fmt.Errorf("save policy: %w", err)
	}
	return policy, nil
}

// AddAdmin lists userID as an antinuke admin. Owner only.
func (e *Engine) AddAdmin(ctx context.Context, req Requester, userID string) (*models.GuildPolicy, error) {
	return e.update(ctx, req, true, func(p *models.GuildPolicy) error {
		if p.IsAdmin(userID) {
			return ErrAlreadyAdmin
		}
		p.AdminUserIDs = append(p.AdminUserIDs, userID)
		return nil
	})
}

// RemoveAdmin unlists userID. Owner only.
func (e *Engine) RemoveAdmin(ctx context.Context, req Requester, userID string) (*models.GuildPolicy, error) {
	return e.update(ctx, req, true, func(p *models.GuildPolicy) error {
		if !p.IsAdmin(userID) {
			return ErrNotAnAdmin
		}
		p.AdminUserIDs = slices.DeleteFunc(p.AdminUserIDs, func(id string) bool { return id == userID })
		return nil
	})
}

// SetEnabled turns protection on or off.
func (e *Engine) SetEnabled(ctx context.Context, req Requester, enabled bool) (*models.GuildPolicy, error) {
	return e.update(ctx, req, false, func(p *models.GuildPolicy) error {
		p.Enabled = enabled
		return nil
	})
}

// SetLimit changes the threshold of one kind.
func (e *Engine) SetLimit(ctx context.Context, req Requester, kind models.ActionKind, enabled bool, threshold uint) (*models.GuildPolicy, error) {
	if threshold < 1 {
		return nil, ErrInvalidLimit
	}
	if _, err := models.ParseActionKind(string(kind)); err != nil {
		return nil, err
	}
	return e.update(ctx, req, false, func(p *models.GuildPolicy) error {
		p.Limits[kind] = models.LimitConfig{Enabled: enabled, Max: threshold}
		return nil
	})
}

// SetPunishment replaces the punishment configuration.
func (e *Engine) SetPunishment(ctx context.Context, req Requester, cfg models.PunishmentConfig) (*models.GuildPolicy, error) {
	if _, err := models.ParsePunishmentKind(string(cfg.Type)); err != nil {
		return nil, err
	}
	return e.update(ctx, req, false, func(p *models.GuildPolicy) error {
		p.Punishment = cfg
		return nil
	})
}

// SetLogging replaces the logging configuration.
func (e *Engine) SetLogging(ctx context.Context, req Requester, cfg models.LoggingConfig) (*models.GuildPolicy, error) {
	return e.update(ctx, req, false, func(p *models.GuildPolicy) error {
		p.Logging = cfg
		return nil
	})
}

// SetBypass toggles the owner and bot bypass flags.
func (e *Engine) SetBypass(ctx context.Context, req Requester, owner, bots bool) (*models.GuildPolicy, error) {
	return e.update(ctx, req, false, func(p *models.GuildPolicy) error {
		p.Whitelist.BypassOwner = owner
		p.Whitelist.BypassBots = bots
		return nil
	})
}

// WhitelistAdd exempts userID from counting.
func (e *Engine) WhitelistAdd(ctx context.Context, req Requester, userID string) (*models.GuildPolicy, error) {
	return e.update(ctx, req, false, func(p *models.GuildPolicy) error {
		if p.IsWhitelisted(userID) {
			return ErrAlreadyWhitelisted
		}
		p.Whitelist.UserIDs = append(p.Whitelist.UserIDs, userID)
		return nil
	})
}

// WhitelistRemove removes the exemption of userID.
func (e *Engine) WhitelistRemove(ctx context.Context, req Requester, userID string) (*models.GuildPolicy, error) {
	return e.update(ctx, req, false, func(p *models.GuildPolicy) error {
		if !p.IsWhitelisted(userID) {
			return ErrNotWhitelisted
		}
		p.Whitelist.UserIDs = slices.DeleteFunc(p.Whitelist.UserIDs, func(id string) bool { return id == userID })
		return nil
	})
}
