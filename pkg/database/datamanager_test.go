package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

func TestGenerateCacheKeyDeterministic(t *testing.T) {
	dm := NewDataManager[models.GuildPolicy](ColPolicies, nil)

	a := dm.generateCacheKey(bson.M{"guildId": "1", "actorId": "2", "actionKind": "ban"})
	for i := 0; i < 20; i++ {
		b := dm.generateCacheKey(bson.M{"actionKind": "ban", "guildId": "1", "actorId": "2"})
		if a != b {
			t.Fatalf("generateCacheKey() = %v, want %v", b, a)
		}
	}

	want := "antinuke_policies:{actionKind=ban,actorId=2,guildId=1}"
	if a != want {
		t.Errorf("generateCacheKey() = %v, want %v", a, want)
	}
}

func TestDataManagerCacheWithoutDatabase(t *testing.T) {
	dm := NewDataManager[models.StaffRoleSet](ColStaffRoles, nil)
	ctx := context.Background()
	query := bson.M{"guildId": "g1"}

	if _, err := dm.Get(ctx, query); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Get() error = %v, want %v", err, ErrNotConnected)
	}

	dm.remember(query, &models.StaffRoleSet{GuildID: "g1", RoleIDs: []string{"r1"}})
	got, err := dm.Get(ctx, query)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil || len(got.RoleIDs) != 1 {
		t.Fatalf("Get() = %+v, want cached set", got)
	}
	if dm.CacheSize() != 1 {
		t.Errorf("CacheSize() = %d, want 1", dm.CacheSize())
	}

	dm.Invalidate(query)
	if _, err := dm.Get(ctx, query); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Get() after Invalidate error = %v, want %v", err, ErrNotConnected)
	}
}

func TestDataManagerCacheExpires(t *testing.T) {
	dm := NewDataManager[models.FilterConfig](ColFilterConfigs, nil, DataManagerOptions{
		MaxCacheSize: 10,
		CacheTTL:     20 * time.Millisecond,
	})
	query := bson.M{"guildId": "g1"}
	dm.remember(query, &models.FilterConfig{GuildID: "g1"})

	time.Sleep(60 * time.Millisecond)
	if _, ok := dm.cached(query); ok {
		t.Error("cached() = true after ttl, want false")
	}
}

func TestDataManagerNoCache(t *testing.T) {
	dm := NewDataManager[models.ActionCounter](ColCounters, nil, DataManagerOptions{})
	dm.remember(bson.M{"a": 1}, &models.ActionCounter{})
	if dm.CacheSize() != 0 {
		t.Errorf("CacheSize() = %d, want 0", dm.CacheSize())
	}
	dm.ClearCache()
	dm.Invalidate(bson.M{"a": 1})
}

func TestUpdateOrQueueOffline(t *testing.T) {
	db := NewDatabase()
	dm := NewDataManager[models.FilterOffense](ColFilterOffenses, db, DataManagerOptions{})

	err := dm.UpdateOrQueue(context.Background(), bson.M{"guildId": "g"}, bson.M{"$set": bson.M{"count": 0}})
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("UpdateOrQueue() error = %v, want %v", err, ErrNotConnected)
	}
	if got := db.QueueLength(); got != 1 {
		t.Errorf("QueueLength() = %d, want 1", got)
	}
	if ops := db.drainQueue(); len(ops) != 1 || ops[0].Kind != OpUpdate || ops[0].CollectionName != ColFilterOffenses {
		t.Errorf("drainQueue() = %+v, want one update for %s", ops, ColFilterOffenses)
	}
}

func TestDatabaseOffline(t *testing.T) {
	db := NewDatabase()
	if db.Connected() {
		t.Error("Connected() = true, want false")
	}
	if _, err := db.Ping(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Ping() error = %v, want %v", err, ErrNotConnected)
	}
	if _, ok := db.GetStatus(context.Background()); ok {
		t.Error("GetStatus() ok = true, want false")
	}
	if db.GetCollection(ColPolicies) != nil {
		t.Error("GetCollection() != nil while never connected")
	}
	if err := db.Disconnect(); err != nil {
		t.Errorf("Disconnect() error = %v", err)
	}

	var nilDB *Database
	if nilDB.Connected() {
		t.Error("nil Connected() = true, want false")
	}
}
