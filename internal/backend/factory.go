package backend

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"pocketbook/internal/amqp"
	"pocketbook/internal/cache"
	"pocketbook/internal/config"
	"pocketbook/internal/events"
	"pocketbook/internal/log"
	"pocketbook/internal/storage"
	"pocketbook/internal/store"
	"pocketbook/internal/tracker"
	"pocketbook/internal/view"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	now    func() time.Time
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.Nop()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		now:    time.Now,
	}
}

var _ Factory = (*DefaultFactory)(nil)

// CreateBackend opens the durable slot, loads the collection and wires the
// tracker with its view cache and notifiers.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	kv, err := f.openKV(config)
	if err != nil {
		return nil, err
	}
	if config.StorageSecret != "" {
		sealed, err := storage.NewSealed(kv, config.StorageSecret)
		if err != nil {
			kv.Close()
			return nil, fmt.Errorf("failed to initialize sealed storage: %w", err)
		}
		kv = sealed
	}

	st := store.New(kv,
		store.WithKey(config.StorageKey),
		store.WithIDGenerator(f.idGenerator(config.IDScheme)),
		store.WithLogger(f.logger))

	broadcaster := events.NewBroadcaster()
	notifiers := events.Multi{broadcaster}

	// AMQP is optional; a broker that is down must not keep the tracker from starting.
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without publishing", log.FieldError, err.Error())
			amqpClient = nil
		} else {
			notifiers = append(notifiers, amqpClient)
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	size := config.ViewCacheSize
	if size < 1 {
		size = 24
	}
	views := cache.NewLRU[view.View](size, config.ViewCacheTTL)

	tr := tracker.New(st,
		tracker.WithNotifier(notifiers),
		tracker.WithViewCache(views),
		tracker.WithLogger(f.logger),
		tracker.WithClock(f.now))
	tr.Load(ctx)

	f.logger.Info("Initialized backend",
		"type", config.Type.String(),
		log.FieldStorageKey, st.Key(),
		"sealed", config.StorageSecret != "",
		"amqp_enabled", amqpClient != nil,
		log.FieldCount, len(tr.All()))

	return &BackendResult{
		Tracker: tr,
		Events:  broadcaster,
		Views:   views,
		Cleanup: func() error {
			if amqpClient != nil {
				if err := amqpClient.Close(); err != nil {
					f.logger.Warn("Failed to close AMQP client", log.FieldError, err.Error())
				}
			}
			return kv.Close()
		},
	}, nil
}

func (f *DefaultFactory) openKV(config Config) (storage.KV, error) {
	switch config.Type {
	case SQLiteBackend:
		kv, err := storage.NewSQLite(config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite storage: %w", err)
		}
		f.logger.Info("Opened SQLite storage", "db_path", config.SQLiteDBPath)
		return kv, nil
	case MemoryBackend:
		if config.DataDirectory == "" {
			return storage.NewMemory(), nil
		}
		key := config.StorageKey
		if key == "" {
			key = store.DefaultKey
		}
		seed := filepath.Join(config.DataDirectory, key+".json")
		f.logger.Info("Using memory storage", "seed_file", seed)
		return storage.NewMemoryFromFile(seed, key), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) idGenerator(scheme string) store.IDGenerator {
	if scheme == config.IDSchemeUUID {
		return store.UUIDs{}
	}
	return store.NewTimestampIDs(f.now)
}
