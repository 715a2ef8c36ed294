package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/singleflight"
)

// DataManagerOptions configures the read cache of a DataManager. A zero
// MaxCacheSize disables caching.
type DataManagerOptions struct {
	MaxCacheSize int
	CacheTTL     time.Duration
}

// DefaultDataManagerOptions returns the default cache settings.
func DefaultDataManagerOptions() DataManagerOptions {
	return DataManagerOptions{
		MaxCacheSize: 1000,
		CacheTTL:     15 * time.Second,
	}
}

// DataManager gives typed, cached access to one collection. Single document
// reads are cached per query and concurrent misses share one round trip.
type DataManager[T any] struct {
	name    string
	db      *Database
	cache   *expirable.LRU[string, *T]
	group   singleflight.Group
	options DataManagerOptions
}

// NewDataManager creates a DataManager for a collection.
func NewDataManager[T any](collectionName string, db *Database, opts ...DataManagerOptions) *DataManager[T] {
	dmOptions := DefaultDataManagerOptions()
	if len(opts) > 0 {
		dmOptions = opts[0]
	}

	dm := &DataManager[T]{
		name:    collectionName,
		db:      db,
		options: dmOptions,
	}
	if dmOptions.MaxCacheSize > 0 {
		dm.cache = expirable.NewLRU[string, *T](dmOptions.MaxCacheSize, nil, dmOptions.CacheTTL)
	}
	return dm
}

// Name returns the collection name.
func (dm *DataManager[T]) Name() string {
	return dm.name
}

func (dm *DataManager[T]) collection() (*mongo.Collection, error) {
	if !dm.db.Connected() {
		return nil, ErrNotConnected
	}
	col := dm.db.GetCollection(dm.name)
	if col == nil {
		return nil, ErrNotConnected
	}
	return col, nil
}

// generateCacheKey builds a deterministic key from a query, independent of
// map iteration order.
func (dm *DataManager[T]) generateCacheKey(query bson.M) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, query[k]))
	}
	return fmt.Sprintf("%s:{%s}", dm.name, strings.Join(parts, ","))
}

func (dm *DataManager[T]) cached(query bson.M) (*T, bool) {
	if dm.cache == nil {
		return nil, false
	}
	return dm.cache.Get(dm.generateCacheKey(query))
}

func (dm *DataManager[T]) remember(query bson.M, value *T) {
	if dm.cache == nil || value == nil {
		return
	}
	dm.cache.Add(dm.generateCacheKey(query), value)
}

// Invalidate drops the cached document of a query.
func (dm *DataManager[T]) Invalidate(query bson.M) {
	if dm.cache == nil {
		return
	}
	dm.cache.Remove(dm.generateCacheKey(query))
}

// ClearCache drops every cached document.
func (dm *DataManager[T]) ClearCache() {
	if dm.cache != nil {
		dm.cache.Purge()
	}
}

// CacheSize returns the number of cached documents.
func (dm *DataManager[T]) CacheSize() int {
	if dm.cache == nil {
		return 0
	}
	return dm.cache.Len()
}

// Get returns one document, nil when none matches. Cached values are shared
// between callers and must not be mutated.
func (dm *DataManager[T]) Get(ctx context.Context, query bson.M) (*T, error) {
	if v, ok := dm.cached(query); ok {
		return v, nil
	}

	key := dm.generateCacheKey(query)
	v, err, _ := dm.group.Do(key, func() (interface{}, error) {
		col, err := dm.collection()
		if err != nil {
			return nil, err
		}
		var result T
		if err := col.FindOne(ctx, query).Decode(&result); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return (*T)(nil), nil
			}
			logger.Warn(fmt.Sprintf("Fallo al leer de la DB (%s): %v", dm.name, err), "DataManager")
			return nil, err
		}
		dm.remember(query, &result)
		return &result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

// GetOrInsert returns the document of query, inserting defaults first when
// it does not exist yet. Concurrent first reads create a single document.
func (dm *DataManager[T]) GetOrInsert(ctx context.Context, query bson.M, defaults interface{}) (*T, error) {
	if v, ok := dm.cached(query); ok {
		return v, nil
	}

	key := dm.generateCacheKey(query)
	v, err, _ := dm.group.Do(key, func() (interface{}, error) {
		return dm.findOneAndUpdate(ctx, query, bson.M{"$setOnInsert": defaults}, true)
	})
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

// Update applies update to the document of query and returns the result.
// With upsert false a missing document yields nil.
func (dm *DataManager[T]) Update(ctx context.Context, query, update bson.M, upsert bool) (*T, error) {
	dm.Invalidate(query)
	return dm.findOneAndUpdate(ctx, query, update, upsert)
}

// Set replaces the stored fields of the document of query with data.
func (dm *DataManager[T]) Set(ctx context.Context, query bson.M, data interface{}) (*T, error) {
	return dm.Update(ctx, query, bson.M{"$set": data}, true)
}

func (dm *DataManager[T]) findOneAndUpdate(ctx context.Context, query, update bson.M, upsert bool) (*T, error) {
	col, err := dm.collection()
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(upsert).
		SetReturnDocument(options.After)

	var result T
	err = col.FindOneAndUpdate(ctx, query, update, opts).Decode(&result)
	if upsert && mongo.IsDuplicateKeyError(err) {
		// Lost a concurrent upsert race on the unique key; the document exists now.
		err = col.FindOneAndUpdate(ctx, query, update, opts).Decode(&result)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	dm.remember(query, &result)
	return &result, nil
}

// UpdateOne applies update to the document of query and reports whether a
// document was modified or inserted. An upsert that collides with an existing
// document on a unique key changed nothing. Callers invalidate the cache.
func (dm *DataManager[T]) UpdateOne(ctx context.Context, query, update bson.M, upsert bool) (bool, error) {
	col, err := dm.collection()
	if err != nil {
		return false, err
	}
	res, err := col.UpdateOne(ctx, query, update, options.Update().SetUpsert(upsert))
	if err != nil {
		if upsert && mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return res.ModifiedCount+res.UpsertedCount > 0, nil
}

// GetAll returns every document matching query.
func (dm *DataManager[T]) GetAll(ctx context.Context, query bson.M, opts ...*options.FindOptions) ([]T, error) {
	col, err := dm.collection()
	if err != nil {
		return nil, err
	}

	cursor, err := col.Find(ctx, query, opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	results := make([]T, 0)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Insert stores a new document.
func (dm *DataManager[T]) Insert(ctx context.Context, doc *T) error {
	col, err := dm.collection()
	if err != nil {
		return err
	}
	_, err = col.InsertOne(ctx, doc)
	return err
}

// UpdateMany applies update to every matching document and returns how many
// matched.
func (dm *DataManager[T]) UpdateMany(ctx context.Context, query, update bson.M) (int64, error) {
	col, err := dm.collection()
	if err != nil {
		return 0, err
	}
	dm.ClearCache()
	res, err := col.UpdateMany(ctx, query, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// Delete removes the document of query and reports whether one existed.
func (dm *DataManager[T]) Delete(ctx context.Context, query bson.M) (bool, error) {
	dm.Invalidate(query)

	col, err := dm.collection()
	if err != nil {
		return false, err
	}
	res, err := col.DeleteOne(ctx, query)
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// DeleteMany removes every matching document and returns the count.
func (dm *DataManager[T]) DeleteMany(ctx context.Context, query bson.M) (int64, error) {
	col, err := dm.collection()
	if err != nil {
		return 0, err
	}
	dm.ClearCache()
	res, err := col.DeleteMany(ctx, query)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns the number of matching documents.
func (dm *DataManager[T]) Count(ctx context.Context, query bson.M) (int64, error) {
	col, err := dm.collection()
	if err != nil {
		return 0, err
	}
	return col.CountDocuments(ctx, query)
}

// UpdateOrQueue applies an upsert, queueing it for later when the database
// is offline. Only for writes that may be delayed without harm.
func (dm *DataManager[T]) UpdateOrQueue(ctx context.Context, query, update bson.M) error {
	dm.Invalidate(query)

	col, err := dm.collection()
	if err == nil {
		_, err = col.UpdateOne(ctx, query, update, options.Update().SetUpsert(true))
		if err == nil {
			return nil
		}
		logger.Error(fmt.Sprintf("Error escribiendo en '%s'. Encolando por seguridad: %v", dm.name, err), "DataManager")
	} else {
		logger.Warn(fmt.Sprintf("DB offline. Encolando escritura para '%s'", dm.name), "DataManager")
	}

	if dm.db != nil {
		dm.db.AddToWriteQueue(QueuedOperation{
			CollectionName: dm.name,
			Filter:         query,
			Kind:           OpUpdate,
			Update:         update,
		})
	}
	return err
}

// PrimeCache logs the cache settings. Caches fill on demand.
func (dm *DataManager[T]) PrimeCache() {
	logger.System(fmt.Sprintf("Caché para '%s' preparada (tamaño máx: %d, ttl: %s). Se llenará bajo demanda.", dm.name, dm.options.MaxCacheSize, dm.options.CacheTTL), "DataManager")
}
