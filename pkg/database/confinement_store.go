package database

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConfinementStore tracks active confinements until they are lifted.
type ConfinementStore struct {
	dm *DataManager[models.Confinement]
}

// NewConfinementStore creates a ConfinementStore.
func NewConfinementStore(db *Database) *ConfinementStore {
	return &ConfinementStore{dm: NewDataManager[models.Confinement](ColConfinements, db, DataManagerOptions{})}
}

func confinementQuery(guildID, userID string) bson.M {
	return bson.M{"guildId": guildID, "userId": userID}
}

// SaveConfinement stores c, replacing an earlier confinement of the member.
func (s *ConfinementStore) SaveConfinement(ctx context.Context, c models.Confinement) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := s.dm.Set(ctx, confinementQuery(c.GuildID, c.UserID), c)
	return err
}

// ExpiredConfinements returns confinements due at now, oldest first.
func (s *ConfinementStore) ExpiredConfinements(ctx context.Context, now time.Time, limit int) ([]models.Confinement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "expiresAt", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.dm.GetAll(ctx, bson.M{"expiresAt": bson.M{"$lte": now}}, opts)
}

// DeleteConfinement forgets a lifted confinement.
func (s *ConfinementStore) DeleteConfinement(ctx context.Context, guildID, userID string) error {
	_, err := s.dm.Delete(ctx, confinementQuery(guildID, userID))
	return err
}
