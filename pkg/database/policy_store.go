package database

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

// PolicyStore persists guild policies. The first read of a guild stores the
// default policy.
type PolicyStore struct {
	dm *DataManager[models.GuildPolicy]
}

// NewPolicyStore creates a PolicyStore with a read cache of the given ttl.
func NewPolicyStore(db *Database, ttl time.Duration) *PolicyStore {
	opts := DefaultDataManagerOptions()
	opts.CacheTTL = ttl
	return &PolicyStore{dm: NewDataManager[models.GuildPolicy](ColPolicies, db, opts)}
}

func policyQuery(guildID string) bson.M {
	return bson.M{"guildId": guildID}
}

// GetOrCreatePolicy returns a private copy of the guild policy.
func (s *PolicyStore) GetOrCreatePolicy(ctx context.Context, guildID string) (*models.GuildPolicy, error) {
	p, err := s.dm.GetOrInsert(ctx, policyQuery(guildID), models.DefaultGuildPolicy(guildID))
	if err != nil {
		return nil, err
	}
	out := p.Clone()
	out.Normalize()
	return out, nil
}

// SavePolicy replaces the stored policy.
func (s *PolicyStore) SavePolicy(ctx context.Context, policy *models.GuildPolicy) error {
	policy.UpdatedAt = time.Now()
	if policy.CreatedAt.IsZero() {
		policy.CreatedAt = policy.UpdatedAt
	}
	_, err := s.dm.Set(ctx, policyQuery(policy.GuildID), policy)
	return err
}

// CountEnabled returns how many guilds have the engine enabled.
func (s *PolicyStore) CountEnabled(ctx context.Context) (int64, error) {
	return s.dm.Count(ctx, bson.M{"enabled": true})
}
