package database

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultHistoryLimit caps queries that do not set a limit.
const DefaultHistoryLimit = 50

// ViolationStore is the append-only violation log.
type ViolationStore struct {
	dm *DataManager[models.ViolationLogEntry]
}

// NewViolationStore creates a ViolationStore.
func NewViolationStore(db *Database) *ViolationStore {
	return &ViolationStore{dm: NewDataManager[models.ViolationLogEntry](ColViolations, db, DataManagerOptions{})}
}

// Append stores one entry.
func (s *ViolationStore) Append(ctx context.Context, entry models.ViolationLogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	return s.dm.Insert(ctx, &entry)
}

func violationFilter(q models.ViolationQuery) bson.M {
	filter := bson.M{}
	if q.GuildID != "" {
		filter["guildId"] = q.GuildID
	}
	if q.ActorID != "" {
		filter["actorId"] = q.ActorID
	}
	if q.ActionKind != "" {
		filter["actionKind"] = q.ActionKind
	}
	if q.Type != "" {
		filter["type"] = q.Type
	}
	ts := bson.M{}
	if !q.Since.IsZero() {
		ts["$gte"] = q.Since
	}
	if !q.Until.IsZero() {
		ts["$lt"] = q.Until
	}
	if len(ts) > 0 {
		filter["timestamp"] = ts
	}
	return filter
}

// Query returns matching entries, newest first.
func (s *ViolationStore) Query(ctx context.Context, q models.ViolationQuery) ([]models.ViolationLogEntry, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	return s.dm.GetAll(ctx, violationFilter(q), opts)
}

// Count returns how many entries match.
func (s *ViolationStore) Count(ctx context.Context, q models.ViolationQuery) (int64, error) {
	return s.dm.Count(ctx, violationFilter(q))
}

// Prune deletes entries older than before.
func (s *ViolationStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	return s.dm.DeleteMany(ctx, violationFilter(models.ViolationQuery{Until: before}))
}
