package permissions

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// memStore is an in-memory GrantStore and StaffStore for tests.
type memStore struct {
	mu      sync.Mutex
	grants  map[string]*models.FakePermissionGrant
	staff   map[string][]string
	failAll bool
}

var errStoreDown = errors.New("store down")

func newMemStore() *memStore {
	return &memStore{
		grants: make(map[string]*models.FakePermissionGrant),
		staff:  make(map[string][]string),
	}
}

func grantKey(guildID, roleID string) string { return guildID + "/" + roleID }

func (s *memStore) Grant(_ context.Context, guildID, roleID string) (*models.FakePermissionGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return nil, errStoreDown
	}
	g, ok := s.grants[grantKey(guildID, roleID)]
	if !ok {
		return nil, nil
	}
	c := *g
	c.Permissions = slices.Clone(g.Permissions)
	return &c, nil
}

func (s *memStore) GrantsForRoles(_ context.Context, guildID string, roleIDs []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return nil, errStoreDown
	}
	var out []string
	for _, r := range roleIDs {
		if g, ok := s.grants[grantKey(guildID, r)]; ok {
			out = append(out, g.Permissions...)
		}
	}
	return out, nil
}

func (s *memStore) ListGrants(_ context.Context, guildID string) ([]models.FakePermissionGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FakePermissionGrant
	for _, g := range s.grants {
		if g.GuildID == guildID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (s *memStore) AddPermission(_ context.Context, guildID, roleID, name, grantedBy string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return false, errStoreDown
	}
	k := grantKey(guildID, roleID)
	g, ok := s.grants[k]
	if !ok {
		g = &models.FakePermissionGrant{GuildID: guildID, RoleID: roleID, GrantedBy: grantedBy, GrantedAt: time.Now()}
		s.grants[k] = g
	}
	if slices.Contains(g.Permissions, name) {
		return false, nil
	}
	g.Permissions = append(g.Permissions, name)
	g.UpdatedAt = time.Now()
	return true, nil
}

func (s *memStore) RemovePermission(_ context.Context, guildID, roleID, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.grants[grantKey(guildID, roleID)]
	if !ok {
		return 0, nil
	}
	g.Permissions = slices.DeleteFunc(g.Permissions, func(p string) bool { return p == name })
	return len(g.Permissions), nil
}

func (s *memStore) DeleteGrant(_ context.Context, guildID, roleID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := grantKey(guildID, roleID)
	_, ok := s.grants[k]
	delete(s.grants, k)
	return ok, nil
}

func (s *memStore) StaffRoles(_ context.Context, guildID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return nil, errStoreDown
	}
	return slices.Clone(s.staff[guildID]), nil
}

func (s *memStore) AddStaffRole(_ context.Context, guildID, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.staff[guildID], roleID) {
		s.staff[guildID] = append(s.staff[guildID], roleID)
	}
	return nil
}

func (s *memStore) RemoveStaffRole(_ context.Context, guildID, roleID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff[guildID] = slices.DeleteFunc(s.staff[guildID], func(r string) bool { return r == roleID })
	return len(s.staff[guildID]), nil
}

func (s *memStore) DeleteStaff(_ context.Context, guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.staff, guildID)
	return nil
}

func (s *memStore) hasStaffRecord(guildID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.staff[guildID]
	return ok
}
