package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"braingraph/application/ports"
)

var preferencesKey = []byte("prefs:v1")

// ErrStoreClosed is returned by a closed BadgerStore
var ErrStoreClosed = errors.New("preference store is closed")

// BadgerOptions configures a BadgerStore
type BadgerOptions struct {
	Dir      string
	InMemory bool
}

// BadgerStore keeps preferences in an embedded badger database
type BadgerStore struct {
	db     *badger.DB
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// OpenBadgerStore opens (or creates) the database described by opts
func OpenBadgerStore(opts BadgerOptions, logger *zap.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	badgerOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		badgerOpts = badgerOpts.WithDir("").WithValueDir("").WithInMemory(true)
	}
	// a handful of small values; keep the footprint small
	badgerOpts = badgerOpts.
		WithLogger(nil).
		WithMemTableSize(1 << 20).
		WithValueLogFileSize(1 << 20).
		WithNumMemtables(1).
		WithBlockCacheSize(1 << 20).
		WithIndexCacheSize(1 << 20)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open preference store: %w", err)
	}
	logger.Info("preference store opened",
		zap.String("dir", opts.Dir),
		zap.Bool("in_memory", opts.InMemory),
	)
	return &BadgerStore{db: db, logger: logger}, nil
}

// Load returns the saved preferences, or zero preferences when none exist
func (s *BadgerStore) Load(ctx context.Context) (ports.Preferences, error) {
	var prefs ports.Preferences

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return prefs, ErrStoreClosed
	}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(preferencesKey)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &prefs)
		})
	})
	if err != nil {
		return ports.Preferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}
	if err := validate(prefs); err != nil {
		return ports.Preferences{}, err
	}
	return prefs, nil
}

// Save replaces the stored preferences
func (s *BadgerStore) Save(ctx context.Context, prefs ports.Preferences) error {
	if err := validate(prefs); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(preferencesKey, data)
	}); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	s.logger.Debug("preferences saved", zap.String("preset", prefs.Preset))
	return nil
}

// Close releases the database
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

var _ ports.PreferenceStore = (*BadgerStore)(nil)
