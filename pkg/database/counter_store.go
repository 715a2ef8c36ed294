package database

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CounterStore keeps action counters in MongoDB. Each increment is a single
// atomic upsert on the unique (guild, actor, kind) key.
type CounterStore struct {
	dm *DataManager[models.ActionCounter]
}

// NewCounterStore creates a CounterStore. Counters are never cached.
func NewCounterStore(db *Database) *CounterStore {
	return &CounterStore{dm: NewDataManager[models.ActionCounter](ColCounters, db, DataManagerOptions{})}
}

func counterQuery(guildID, actorID string, kind *models.ActionKind) bson.M {
	q := bson.M{"guildId": guildID, "actorId": actorID}
	if kind != nil {
		q["actionKind"] = *kind
	}
	return q
}

// Increment adds one to the counter and returns the new value.
func (s *CounterStore) Increment(ctx context.Context, guildID, actorID string, kind models.ActionKind, at time.Time) (uint, error) {
	c, err := s.dm.Update(ctx, counterQuery(guildID, actorID, &kind), bson.M{
		"$inc": bson.M{"count": 1},
		"$set": bson.M{"lastActionAt": at},
	}, true)
	if err != nil {
		return 0, err
	}
	return c.Count, nil
}

// ResetCounters zeroes the counters of an actor, one kind or all of them.
func (s *CounterStore) ResetCounters(ctx context.Context, guildID, actorID string, kind *models.ActionKind) (int64, error) {
	return s.dm.UpdateMany(ctx, counterQuery(guildID, actorID, kind), bson.M{
		"$set": bson.M{"count": 0, "resetAt": time.Now()},
	})
}

// Counters lists the counters of an actor.
func (s *CounterStore) Counters(ctx context.Context, guildID, actorID string) ([]models.ActionCounter, error) {
	return s.dm.GetAll(ctx, counterQuery(guildID, actorID, nil),
		options.Find().SetSort(bson.D{{Key: "actionKind", Value: 1}}))
}

// Prune deletes zeroed counters untouched since before.
func (s *CounterStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	return s.dm.DeleteMany(ctx, bson.M{"count": 0, "lastActionAt": bson.M{"$lt": before}})
}
