// Package database provides the MongoDB connection, the cached DataManager
// and the stores behind the anti-abuse engine.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	ColPolicies        = "antinuke_policies"
	ColCounters        = "antinuke_counters"
	ColViolations      = "antinuke_violations"
	ColFakePermissions = "fake_permissions"
	ColStaffRoles      = "staff_roles"
	ColConfinements    = "confinements"
	ColFilterConfigs   = "filter_configs"
	ColFilterOffenses  = "filter_offenses"
)

// ErrNotConnected is returned when an operation needs the database while it
// is offline.
var ErrNotConnected = errors.New("database not connected")

// OpKind is the type of a queued write.
type OpKind string

const (
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// QueuedOperation is a best-effort write kept while the database is offline.
type QueuedOperation struct {
	CollectionName string
	Filter         bson.M
	Kind           OpKind
	Update         bson.M
}

// Database manages the MongoDB connection.
type Database struct {
	client          *mongo.Client
	db              *mongo.Database
	connected       bool
	url             string
	name            string
	writeQueue      []QueuedOperation
	reconnectTicker *time.Ticker
	stopReconnect   chan struct{}
	stopOnce        sync.Once
	mu              sync.RWMutex
	queueMu         sync.Mutex
	collections     map[string]*mongo.Collection
}

var (
	database *Database
	dbOnce   sync.Once
)

// Init initializes the global database instance.
func Init(mongoURL, dbName string) (*Database, error) {
	var err error
	dbOnce.Do(func() {
		database = NewDatabase()
		err = database.Connect(mongoURL, dbName)
	})
	return database, err
}

// Get returns the global database instance.
func Get() *Database {
	return database
}

// NewDatabase creates a disconnected Database.
func NewDatabase() *Database {
	return &Database{
		writeQueue:    make([]QueuedOperation, 0),
		stopReconnect: make(chan struct{}),
		collections:   make(map[string]*mongo.Collection),
	}
}

// Connect establishes the connection. On failure a background loop keeps
// retrying every 15 seconds.
func (d *Database) Connect(mongoURL, dbName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return nil
	}
	d.url, d.name = mongoURL, dbName

	logger.System("Intentando conectar a la base de datos...", "DB")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(mongoURL).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err == nil {
		err = client.Ping(ctx, readpref.Primary())
	}
	if err != nil {
		logger.Critical(fmt.Sprintf("Fallo al conectar con la base de datos: %v", err), "DB")
		d.startReconnect()
		return err
	}

	d.client = client
	d.db = client.Database(dbName)
	d.collections = make(map[string]*mongo.Collection)
	d.connected = true

	logger.Success("Conectado exitosamente a la base de datos.", "DB")

	if d.reconnectTicker != nil {
		d.reconnectTicker.Stop()
		d.reconnectTicker = nil
	}

	go d.syncOfflineWrites()

	return nil
}

// MarkDisconnected switches to offline mode after a failed operation.
func (d *Database) MarkDisconnected() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.connected {
		return
	}
	d.connected = false
	logger.Warn("Se perdió la conexión con la base de datos. Activando modo offline.", "DB")
	d.startReconnect()
}

// startReconnect must be called with mu held.
func (d *Database) startReconnect() {
	if d.reconnectTicker != nil || d.url == "" {
		return
	}
	ticker := time.NewTicker(15 * time.Second)
	d.reconnectTicker = ticker
	url, name := d.url, d.name

	go func() {
		for {
			select {
			case <-ticker.C:
				logger.Info("Intentando reconectar a la base de datos...", "DB")
				if err := d.Connect(url, name); err == nil {
					return
				}
			case <-d.stopReconnect:
				return
			}
		}
	}()
}

// Disconnect closes the connection and stops reconnection attempts.
func (d *Database) Disconnect() error {
	d.stopOnce.Do(func() { close(d.stopReconnect) })

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.reconnectTicker != nil {
		d.reconnectTicker.Stop()
		d.reconnectTicker = nil
	}

	if d.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.client.Disconnect(ctx); err != nil {
		return err
	}
	d.connected = false
	logger.Warn("La base de datos ha sido desconectada", "DB")
	return nil
}

// Connected reports whether the database is usable.
func (d *Database) Connected() bool {
	if d == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// Ping measures the database response time.
func (d *Database) Ping(ctx context.Context) (time.Duration, error) {
	if d == nil {
		return 0, ErrNotConnected
	}
	d.mu.RLock()
	client, connected := d.client, d.connected
	d.mu.RUnlock()

	if !connected || client == nil {
		return 0, ErrNotConnected
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := client.Ping(ctx, readpref.Primary())
	return time.Since(start), err
}

// GetStatus returns a display string for the connection state.
func (d *Database) GetStatus(ctx context.Context) (string, bool) {
	if _, err := d.Ping(ctx); err != nil {
		return "🔴 | Desconectado", false
	}
	return "🟢 | En linea", true
}

// GetCollection returns a collection handle, nil while never connected.
func (d *Database) GetCollection(name string) *mongo.Collection {
	if d == nil {
		return nil
	}
	d.mu.RLock()
	if col, exists := d.collections[name]; exists {
		d.mu.RUnlock()
		return col
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}

	col := d.db.Collection(name)
	d.collections[name] = col
	return col
}

// EnsureIndexes creates the unique keys the stores rely on for atomic
// upserts, plus the lookup indexes of the violation log.
func (d *Database) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	specs := map[string][]mongo.IndexModel{
		ColPolicies: {
			{Keys: bson.D{{Key: "guildId", Value: 1}}, Options: unique},
		},
		ColCounters: {
			{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "actorId", Value: 1}, {Key: "actionKind", Value: 1}}, Options: unique},
		},
		ColViolations: {
			{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "actorId", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		ColFakePermissions: {
			{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "roleId", Value: 1}}, Options: unique},
		},
		ColStaffRoles: {
			{Keys: bson.D{{Key: "guildId", Value: 1}}, Options: unique},
		},
		ColConfinements: {
			{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "userId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}},
		},
		ColFilterConfigs: {
			{Keys: bson.D{{Key: "guildId", Value: 1}}, Options: unique},
		},
		ColFilterOffenses: {
			{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "userId", Value: 1}}, Options: unique},
		},
	}

	for name, models := range specs {
		col := d.GetCollection(name)
		if col == nil {
			return ErrNotConnected
		}
		if _, err := col.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("indexes for %s: %w", name, err)
		}
	}
	logger.System(fmt.Sprintf("Índices verificados en %d colecciones", len(specs)), "DB")
	return nil
}

// AddToWriteQueue keeps a write for the next successful reconnection.
func (d *Database) AddToWriteQueue(op QueuedOperation) {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	d.writeQueue = append(d.writeQueue, op)
}

// QueueLength returns the number of pending offline writes.
func (d *Database) QueueLength() int {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	return len(d.writeQueue)
}

func (d *Database) drainQueue() []QueuedOperation {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	ops := d.writeQueue
	d.writeQueue = make([]QueuedOperation, 0)
	return ops
}

// syncOfflineWrites replays queued operations. Failed ones are queued again.
func (d *Database) syncOfflineWrites() {
	operations := d.drainQueue()
	if len(operations) == 0 {
		return
	}

	logger.System(fmt.Sprintf("Sincronizando %d operaciones pendientes con la DB...", len(operations)), "DB-Sync")

	failedOps := make([]QueuedOperation, 0)
	for _, op := range operations {
		col := d.GetCollection(op.CollectionName)
		if col == nil {
			failedOps = append(failedOps, op)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		var err error
		switch op.Kind {
		case OpUpdate:
			_, err = col.UpdateOne(ctx, op.Filter, op.Update, options.Update().SetUpsert(true))
		case OpDelete:
			_, err = col.DeleteOne(ctx, op.Filter)
		}
		cancel()

		if err != nil {
			logger.Error(fmt.Sprintf("Error al sincronizar operación para '%s'. La operación se volverá a encolar.", op.CollectionName), "DB-Sync")
			failedOps = append(failedOps, op)
		}
	}

	if len(failedOps) > 0 {
		d.queueMu.Lock()
		d.writeQueue = append(d.writeQueue, failedOps...)
		d.queueMu.Unlock()
		logger.Warn(fmt.Sprintf("%d operaciones no pudieron sincronizarse y se reintentarán.", len(failedOps)), "DB-Sync")
		return
	}
	logger.Success("Sincronización completada exitosamente.", "DB-Sync")
}

// Client returns the underlying MongoDB client.
func (d *Database) Client() *mongo.Client {
	return d.client
}

// DB returns the underlying MongoDB database.
func (d *Database) DB() *mongo.Database {
	return d.db
}
