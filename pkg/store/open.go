package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/valuechain/pkg/errors"
	"github.com/matzehuels/valuechain/pkg/observability"
)

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	// Backend is one of memory, file, redis or mongo. Empty means file.
	Backend string
	// Dir is the file backend's directory.
	Dir string
	// TTL expires documents in backends that support it (redis).
	TTL   time.Duration
	Redis RedisConfig
	Mongo MongoConfig
}

// Open returns the backend described by cfg, instrumented with the store
// hooks. Unknown backends fail with ErrCodeUnsupported.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		st  Store
		err error
	)
	backend := cfg.Backend
	switch backend {
	case BackendMemory:
		st = NewMemoryStore()
	case "", BackendFile:
		backend = BackendFile
		st, err = NewFileStore(cfg.Dir)
	case BackendRedis:
		rc := cfg.Redis
		if rc.TTL == 0 {
			rc.TTL = cfg.TTL
		}
		st, err = NewRedisStore(ctx, rc)
	case BackendMongo:
		st, err = NewMongoStore(ctx, cfg.Mongo)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown store backend %q (want memory, file, redis or mongo)", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(st, backend), nil
}

// Instrument wraps st so that loads and saves are reported to
// observability.Store() under the given backend name. Ids are validated
// before they reach the backend.
func Instrument(st Store, backend string) Store {
	return &instrumented{Store: st, backend: backend}
}

type instrumented struct {
	Store
	backend string
}

func (s *instrumented) Load(ctx context.Context, id string) (*Snapshot, error) {
	if err := errors.ValidateDocumentID(id); err != nil {
		return nil, err
	}
	start := time.Now()
	snap, err := s.Store.Load(ctx, id)
	observability.Store().OnLoad(ctx, s.backend, id, time.Since(start), err)
	return snap, err
}

func (s *instrumented) Save(ctx context.Context, snap *Snapshot) error {
	if err := errors.ValidateDocumentID(snap.ID); err != nil {
		return err
	}
	size := 0
	if b, err := json.Marshal(snap); err == nil {
		size = len(b)
	}
	start := time.Now()
	err := s.Store.Save(ctx, snap)
	observability.Store().OnSave(ctx, s.backend, snap.ID, size, time.Since(start), err)
	return err
}

func (s *instrumented) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateDocumentID(id); err != nil {
		return err
	}
	return s.Store.Delete(ctx, id)
}
