package permissions

import (
	"context"
	"fmt"
	"slices"
)

// Source says where a capability came from.
type Source int

const (
	SourceNone Source = iota
	SourceNative
	SourceGranted
)

func (s Source) String() string {
	switch s {
	case SourceNative:
		return "native"
	case SourceGranted:
		return "granted"
	default:
		return "none"
	}
}

// Capability is the result of HasCapability.
type Capability struct {
	Granted bool
	Source  Source
}

// Reason explains a CanActOn decision. The command layer shows a different
// message for each one.
type Reason string

const (
	ReasonAllowed         Reason = "allowed"
	ReasonSelfAction      Reason = "self_action"
	ReasonNoPermission    Reason = "no_permission"
	ReasonTargetProtected Reason = "target_not_reachable"
	ReasonHierarchy       Reason = "hierarchy"
)

// Message is the user facing text of a reason.
func (r Reason) Message() string {
	switch r {
	case ReasonAllowed:
		return "Acción permitida."
	case ReasonSelfAction:
		return "No puedes realizar esta acción sobre ti mismo."
	case ReasonNoPermission:
		return "No tienes permisos para realizar esta acción."
	case ReasonTargetProtected:
		return "No puedes actuar sobre un administrador o miembro del staff con permisos falsos."
	case ReasonHierarchy:
		return "El usuario tiene un rol igual o superior al tuyo."
	default:
		return string(r)
	}
}

// Decision is the result of CanActOn.
type Decision struct {
	Allowed bool
	Reason  Reason
	Source  Source
}

// GrantReader is the read side of the fake permission table.
type GrantReader interface {
	GrantsForRoles(ctx context.Context, guildID string, roleIDs []string) ([]string, error)
}

// StaffReader is the read side of the staff role set.
type StaffReader interface {
	StaffRoles(ctx context.Context, guildID string) ([]string, error)
}

// Resolver answers capability and action eligibility questions.
type Resolver struct {
	grants GrantReader
	staff  StaffReader
}

// NewResolver builds a resolver over the grant and staff stores.
func NewResolver(grants GrantReader, staff StaffReader) *Resolver {
	return &Resolver{grants: grants, staff: staff}
}

// HasCapability checks native permissions first and, when allowFake is set,
// the union of fake grants across the member's roles. A fake Administrator
// grant implies every capability.
func (r *Resolver) HasCapability(ctx context.Context, guildID string, m Member, name string, allowFake bool) (Capability, error) {
	flag, ok := Flag(name)
	if !ok {
		return Capability{}, fmt.Errorf("%w: %s", ErrUnknownPermission, name)
	}
	if m.HasNative(flag) {
		return Capability{Granted: true, Source: SourceNative}, nil
	}
	if !allowFake || r.grants == nil || len(m.RoleIDs) == 0 {
		return Capability{Source: SourceNone}, nil
	}

	granted, err := r.grants.GrantsForRoles(ctx, guildID, m.RoleIDs)
	if err != nil {
		return Capability{Source: SourceNone}, fmt.Errorf("resolve fake permissions: %w", err)
	}
	if slices.Contains(granted, name) || slices.Contains(granted, NameAdministrator) {
		return Capability{Granted: true, Source: SourceGranted}, nil
	}
	return Capability{Source: SourceNone}, nil
}

// CanUse is the command gate: native or fake capability is enough.
func (r *Resolver) CanUse(ctx context.Context, guildID string, m Member, name string) (bool, error) {
	c, err := r.HasCapability(ctx, guildID, m, name, true)
	return c.Granted, err
}

// IsStaffEquivalent is true for native administrators and staff role holders.
func (r *Resolver) IsStaffEquivalent(ctx context.Context, guildID string, m Member) (bool, error) {
	if m.IsNativeAdmin() {
		return true, nil
	}
	if r.staff == nil || len(m.RoleIDs) == 0 {
		return false, nil
	}
	roles, err := r.staff.StaffRoles(ctx, guildID)
	if err != nil {
		return false, fmt.Errorf("resolve staff roles: %w", err)
	}
	for _, id := range m.RoleIDs {
		if slices.Contains(roles, id) {
			return true, nil
		}
	}
	return false, nil
}

// CanActOn decides whether actor may use capability name against target.
// Fake permission holders can never touch staff and must outrank the
// target. Anyone who is not a native administrator must outrank the target.
func (r *Resolver) CanActOn(ctx context.Context, guildID string, actor, target Member, name string) (Decision, error) {
	if actor.ID == target.ID {
		return Decision{Reason: ReasonSelfAction}, nil
	}

	c, err := r.HasCapability(ctx, guildID, actor, name, true)
	if err != nil {
		return Decision{Reason: ReasonNoPermission}, err
	}
	if !c.Granted {
		return Decision{Reason: ReasonNoPermission}, nil
	}

	if c.Source == SourceGranted {
		protected, err := r.IsStaffEquivalent(ctx, guildID, target)
		if err != nil {
			return Decision{Reason: ReasonTargetProtected, Source: c.Source}, err
		}
		if protected {
			return Decision{Reason: ReasonTargetProtected, Source: c.Source}, nil
		}
		if !actor.Outranks(target) {
			return Decision{Reason: ReasonHierarchy, Source: c.Source}, nil
		}
	}

	if !actor.IsNativeAdmin() && !actor.Outranks(target) {
		return Decision{Reason: ReasonHierarchy, Source: c.Source}, nil
	}

	return Decision{Allowed: true, Reason: ReasonAllowed, Source: c.Source}, nil
}
