// Package sqlite implements store.RunStore on SQLite via GORM, using the
// pure-Go glebarez driver so the module stays cgo-free. Run state is stored
// as a JSON document per run; descriptors get their own table so status polls
// never deserialize conversations.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/localmind-ai/localmind/core"
	"github.com/localmind-ai/localmind/store"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config configures the SQLite store.
type Config struct {
	// Path is the database file location. Ignored when InMemory is set.
	Path string `mapstructure:"path"`
	// InMemory uses a shared in-memory database, mainly for tests.
	InMemory bool `mapstructure:"in_memory"`
	// EnableWAL switches the journal to write-ahead logging.
	EnableWAL bool `mapstructure:"enable_wal"`
	// BusyTimeout bounds waits on a locked database file.
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
	// Logger overrides GORM's SQL logger.
	Logger logger.Interface `mapstructure:"-"`
}

// Store is the SQLite-backed RunStore.
type Store struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

var _ store.RunStore = (*Store)(nil)

// Open connects, applies pragmas and migrates the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	dsn, err := dsnFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{}
	if cfg.Logger != nil {
		gormCfg.Logger = cfg.Logger
	}
	db, err := gorm.Open(sqlite.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	s := &Store{db: db, sqlDB: sqlDB}

	if cfg.EnableWAL {
		if err := s.db.WithContext(ctx).Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("enable wal: %w", err)
		}
	}
	if err := s.db.WithContext(ctx).AutoMigrate(&runRecord{}, &descriptorRecord{}); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := s.sqlDB.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveRun implements store.RunStore.
func (s *Store) SaveRun(ctx context.Context, runID string, state core.RunState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode run state: %w", err)
	}
	rec := runRecord{RunID: runID, State: string(payload), UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Save(&rec).Error
}

// LoadRun implements store.RunStore.
func (s *Store) LoadRun(ctx context.Context, runID string) (core.RunState, error) {
	var rec runRecord
	if err := s.db.WithContext(ctx).First(&rec, "run_id = ?", runID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.RunState{}, store.ErrNotFound
		}
		return core.RunState{}, err
	}
	var state core.RunState
	if err := json.Unmarshal([]byte(rec.State), &state); err != nil {
		return core.RunState{}, fmt.Errorf("decode run state: %w", err)
	}
	return state, nil
}

// AppendMessage implements store.RunStore. The read-modify-write runs in a
// transaction so concurrent appends to the same run serialize.
func (s *Store) AppendMessage(ctx context.Context, runID string, msg core.Message) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec runRecord
		if err := tx.First(&rec, "run_id = ?", runID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrNotFound
			}
			return err
		}
		var state core.RunState
		if err := json.Unmarshal([]byte(rec.State), &state); err != nil {
			return fmt.Errorf("decode run state: %w", err)
		}
		state.Append(msg)
		payload, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("encode run state: %w", err)
		}
		rec.State = string(payload)
		rec.UpdatedAt = time.Now().UTC()
		return tx.Save(&rec).Error
	})
}

// PutDescriptor implements store.RunStore.
func (s *Store) PutDescriptor(ctx context.Context, d core.RunDescriptor) error {
	rec := descriptorFromCore(d)
	return s.db.WithContext(ctx).Save(&rec).Error
}

// GetDescriptor implements store.RunStore.
func (s *Store) GetDescriptor(ctx context.Context, runID string) (core.RunDescriptor, error) {
	var rec descriptorRecord
	if err := s.db.WithContext(ctx).First(&rec, "run_id = ?", runID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.RunDescriptor{}, store.ErrNotFound
		}
		return core.RunDescriptor{}, err
	}
	return rec.toCore(), nil
}

func dsnFromConfig(cfg Config) (string, error) {
	timeoutMS := int(cfg.BusyTimeout / time.Millisecond)
	if cfg.InMemory {
		return fmt.Sprintf("file:localmind?mode=memory&cache=shared&_busy_timeout=%d", timeoutMS), nil
	}
	if cfg.Path == "" {
		return "", errors.New("sqlite path is required when in_memory is false")
	}
	return fmt.Sprintf("file:%s?_busy_timeout=%d", cfg.Path, timeoutMS), nil
}
