package permissions

import (
	"context"
	"slices"
)

// StaffStore persists the staff role set. RemoveStaffRole returns how many
// roles remain.
type StaffStore interface {
	StaffReader
	AddStaffRole(ctx context.Context, guildID, roleID string) error
	RemoveStaffRole(ctx context.Context, guildID, roleID string) (int, error)
	DeleteStaff(ctx context.Context, guildID string) error
}

// StaffManager maintains the staff role set of each guild.
type StaffManager struct {
	store StaffStore
}

// NewStaffManager creates a StaffManager.
func NewStaffManager(store StaffStore) *StaffManager {
	return &StaffManager{store: store}
}

// Add marks a role as staff.
func (s *StaffManager) Add(ctx context.Context, guildID, roleID string) error {
	roles, err := s.store.StaffRoles(ctx, guildID)
	if err != nil {
		return err
	}
	if slices.Contains(roles, roleID) {
		return ErrStaffRoleExists
	}
	return s.store.AddStaffRole(ctx, guildID, roleID)
}

// Remove unmarks a role. Removing the last one deletes the guild's staff config.
func (s *StaffManager) Remove(ctx context.Context, guildID, roleID string) error {
	roles, err := s.store.StaffRoles(ctx, guildID)
	if err != nil {
		return err
	}
	if !slices.Contains(roles, roleID) {
		return ErrStaffRoleMissing
	}

	remaining, err := s.store.RemoveStaffRole(ctx, guildID, roleID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		return s.store.DeleteStaff(ctx, guildID)
	}
	return nil
}

// Roles lists the staff roles of a guild.
func (s *StaffManager) Roles(ctx context.Context, guildID string) ([]string, error) {
	return s.store.StaffRoles(ctx, guildID)
}
