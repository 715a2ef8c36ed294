package database

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GrantStore persists fake permission grants, one document per role.
type GrantStore struct {
	dm *DataManager[models.FakePermissionGrant]
}

// NewGrantStore creates a GrantStore.
func NewGrantStore(db *Database) *GrantStore {
	return &GrantStore{dm: NewDataManager[models.FakePermissionGrant](ColFakePermissions, db)}
}

func grantQuery(guildID, roleID string) bson.M {
	return bson.M{"guildId": guildID, "roleId": roleID}
}

// Grant returns the grant of a role, nil when none.
func (s *GrantStore) Grant(ctx context.Context, guildID, roleID string) (*models.FakePermissionGrant, error) {
	return s.dm.Get(ctx, grantQuery(guildID, roleID))
}

// ListGrants returns every grant of a guild.
func (s *GrantStore) ListGrants(ctx context.Context, guildID string) ([]models.FakePermissionGrant, error) {
	return s.dm.GetAll(ctx, bson.M{"guildId": guildID},
		options.Find().SetSort(bson.D{{Key: "roleId", Value: 1}}))
}

// GrantsForRoles returns the union of the permissions granted to roleIDs.
func (s *GrantStore) GrantsForRoles(ctx context.Context, guildID string, roleIDs []string) ([]string, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	grants, err := s.dm.GetAll(ctx, bson.M{"guildId": guildID, "roleId": bson.M{"$in": roleIDs}})
	if err != nil {
		return nil, err
	}
	return unionPermissions(grants), nil
}

func unionPermissions(grants []models.FakePermissionGrant) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, g := range grants {
		for _, p := range g.Permissions {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// addPermissionQuery matches the grant only while it lacks name, so a role
// that already holds name is never touched.
func addPermissionQuery(guildID, roleID, name string) bson.M {
	q := grantQuery(guildID, roleID)
	q["permissions"] = bson.M{"$ne": name}
	return q
}

// AddPermission inserts name into the role's set, creating the grant if
// needed, and reports whether name was actually added.
func (s *GrantStore) AddPermission(ctx context.Context, guildID, roleID, name, grantedBy string) (bool, error) {
	now := time.Now()
	s.dm.Invalidate(grantQuery(guildID, roleID))
	return s.dm.UpdateOne(ctx, addPermissionQuery(guildID, roleID, name), bson.M{
		"$addToSet":    bson.M{"permissions": name},
		"$set":         bson.M{"grantedBy": grantedBy, "updatedAt": now},
		"$setOnInsert": bson.M{"grantedAt": now},
	}, true)
}

// RemovePermission pulls name from the set and returns how many remain.
func (s *GrantStore) RemovePermission(ctx context.Context, guildID, roleID, name string) (int, error) {
	g, err := s.dm.Update(ctx, grantQuery(guildID, roleID), bson.M{
		"$pull": bson.M{"permissions": name},
		"$set":  bson.M{"updatedAt": time.Now()},
	}, false)
	if err != nil || g == nil {
		return 0, err
	}
	return len(g.Permissions), nil
}

// DeleteGrant removes the grant and reports whether it existed.
func (s *GrantStore) DeleteGrant(ctx context.Context, guildID, roleID string) (bool, error) {
	return s.dm.Delete(ctx, grantQuery(guildID, roleID))
}

// StaffStore persists the staff role set of each guild.
type StaffStore struct {
	dm *DataManager[models.StaffRoleSet]
}

// NewStaffStore creates a StaffStore.
func NewStaffStore(db *Database) *StaffStore {
	return &StaffStore{dm: NewDataManager[models.StaffRoleSet](ColStaffRoles, db)}
}

func staffQuery(guildID string) bson.M {
	return bson.M{"guildId": guildID}
}

// StaffRoles returns the staff roles of a guild.
func (s *StaffStore) StaffRoles(ctx context.Context, guildID string) ([]string, error) {
	set, err := s.dm.Get(ctx, staffQuery(guildID))
	if err != nil || set == nil {
		return nil, err
	}
	return append([]string(nil), set.RoleIDs...), nil
}

// AddStaffRole inserts a role into the set.
func (s *StaffStore) AddStaffRole(ctx context.Context, guildID, roleID string) error {
	_, err := s.dm.Update(ctx, staffQuery(guildID), bson.M{
		"$addToSet": bson.M{"roleIds": roleID},
		"$set":      bson.M{"updatedAt": time.Now()},
	}, true)
	return err
}

// RemoveStaffRole pulls a role and returns how many remain.
func (s *StaffStore) RemoveStaffRole(ctx context.Context, guildID, roleID string) (int, error) {
	set, err := s.dm.Update(ctx, staffQuery(guildID), bson.M{
		"$pull": bson.M{"roleIds": roleID},
		"$set":  bson.M{"updatedAt": time.Now()},
	}, false)
	if err != nil || set == nil {
		return 0, err
	}
	return len(set.RoleIDs), nil
}

// DeleteStaff removes the whole staff config of a guild.
func (s *StaffStore) DeleteStaff(ctx context.Context, guildID string) error {
	_, err := s.dm.Delete(ctx, staffQuery(guildID))
	return err
}
