package database

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

// FilterStore persists content filter configs and per-member offenses.
type FilterStore struct {
	configs  *DataManager[models.FilterConfig]
	offenses *DataManager[models.FilterOffense]
}

// NewFilterStore creates a FilterStore. Configs are cached for ttl.
func NewFilterStore(db *Database, ttl time.Duration) *FilterStore {
	opts := DefaultDataManagerOptions()
	opts.CacheTTL = ttl
	return &FilterStore{
		configs:  NewDataManager[models.FilterConfig](ColFilterConfigs, db, opts),
		offenses: NewDataManager[models.FilterOffense](ColFilterOffenses, db, DataManagerOptions{}),
	}
}

// Config returns the filter config of a guild, nil when never configured.
func (s *FilterStore) Config(ctx context.Context, guildID string) (*models.FilterConfig, error) {
	return s.configs.Get(ctx, bson.M{"guildId": guildID})
}

// SaveConfig replaces the filter config of a guild.
func (s *FilterStore) SaveConfig(ctx context.Context, cfg models.FilterConfig) error {
	cfg.UpdatedAt = time.Now()
	_, err := s.configs.Set(ctx, bson.M{"guildId": cfg.GuildID}, cfg)
	return err
}

// AddOffense increments the offense count of a member and returns it.
func (s *FilterStore) AddOffense(ctx context.Context, guildID, userID string) (int, error) {
	o, err := s.offenses.Update(ctx, bson.M{"guildId": guildID, "userId": userID}, bson.M{
		"$inc": bson.M{"count": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}, true)
	if err != nil {
		return 0, err
	}
	return o.Count, nil
}

// ClearOffenses resets a member after a timeout. Delayed while offline.
func (s *FilterStore) ClearOffenses(ctx context.Context, guildID, userID string) error {
	return s.offenses.UpdateOrQueue(ctx, bson.M{"guildId": guildID, "userId": userID}, bson.M{
		"$set": bson.M{"count": 0, "updatedAt": time.Now()},
	})
}
