package permissions

import (
	"context"
	"fmt"
	"slices"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// GrantStore persists fake permission grants. AddPermission must be an
// atomic set insert that reports whether name was new; RemovePermission returns how many permissions remain on the role.
type GrantStore interface {
	GrantReader
	Grant(ctx context.Context, guildID, roleID string) (*models.FakePermissionGrant, error)
	ListGrants(ctx context.Context, guildID string) ([]models.FakePermissionGrant, error)
	AddPermission(ctx context.Context, guildID, roleID, name, grantedBy string) (bool, error)
	RemovePermission(ctx context.Context, guildID, roleID, name string) (int, error)
	DeleteGrant(ctx context.Context, guildID, roleID string) (bool, error)
}

// GrantManager applies the grant lifecycle rules on top of a GrantStore.
type GrantManager struct {
	store GrantStore
}

// NewGrantManager creates a GrantManager.
func NewGrantManager(store GrantStore) *GrantManager {
	return &GrantManager{store: store}
}

// Grant adds name to the role. Granting twice fails with ErrAlreadyGranted.
func (g *GrantManager) Grant(ctx context.Context, guildID, roleID, name, grantedBy string) (string, error) {
	canonical, ok := Canonical(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownPermission, name)
	}

	current, err := g.store.Grant(ctx, guildID, roleID)
	if err != nil {
		return "", err
	}
	if current != nil && slices.Contains(current.Permissions, canonical) {
		return canonical, ErrAlreadyGranted
	}

	added, err := g.store.AddPermission(ctx, guildID, roleID, canonical, grantedBy)
	if err != nil {
		return "", err
	}
	if !added {
		return canonical, ErrAlreadyGranted
	}
	return canonical, nil
}

// Revoke removes name from the role and deletes the record once it is empty.
func (g *GrantManager) Revoke(ctx context.Context, guildID, roleID, name string) (string, error) {
	canonical, ok := Canonical(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownPermission, name)
	}

	current, err := g.store.Grant(ctx, guildID, roleID)
	if err != nil {
		return "", err
	}
	if current == nil || !slices.Contains(current.Permissions, canonical) {
		return canonical, ErrNotGranted
	}

	remaining, err := g.store.RemovePermission(ctx, guildID, roleID, canonical)
	if err != nil {
		return "", err
	}
	if remaining == 0 {
		if _, err := g.store.DeleteGrant(ctx, guildID, roleID); err != nil {
			return "", err
		}
	}
	return canonical, nil
}

// RevokeAll drops the whole record and reports whether one existed.
func (g *GrantManager) RevokeAll(ctx context.Context, guildID, roleID string) (bool, error) {
	return g.store.DeleteGrant(ctx, guildID, roleID)
}

// RolePermissions returns the fake permissions of a role, empty when none.
func (g *GrantManager) RolePermissions(ctx context.Context, guildID, roleID string) ([]string, error) {
	current, err := g.store.Grant(ctx, guildID, roleID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return []string{}, nil
	}
	return slices.Clone(current.Permissions), nil
}

// List returns every grant in the guild.
func (g *GrantManager) List(ctx context.Context, guildID string) ([]models.FakePermissionGrant, error) {
	return g.store.ListGrants(ctx, guildID)
}
