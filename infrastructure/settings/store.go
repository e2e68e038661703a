// Package settings persists the small set of user preferences the graph
// surface remembers between sessions: last depth, layout preset and theme.
package settings

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"braingraph/application/ports"
	"braingraph/pkg/utils"
)

// Backend names accepted by NewStore
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendBadger = "badger"
)

// NewStore opens the preference store named by backend. The returned close
// function releases any underlying handle and is never nil.
func NewStore(backend, path string, logger *zap.Logger) (ports.PreferenceStore, func() error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	noop := func() error { return nil }

	switch backend {
	case "", BackendNone:
		return NoopStore{}, noop, nil
	case BackendFile:
		return NewFileStore(path, logger), noop, nil
	case BackendBadger:
		s, err := OpenBadgerStore(BadgerOptions{Dir: path}, logger)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown preferences backend %q", backend)
	}
}

// NoopStore remembers nothing
type NoopStore struct{}

// Load returns zero preferences
func (NoopStore) Load(ctx context.Context) (ports.Preferences, error) {
	return ports.Preferences{}, nil
}

// Save discards prefs
func (NoopStore) Save(ctx context.Context, prefs ports.Preferences) error { return nil }

func validate(prefs ports.Preferences) error {
	if err := utils.ValidateStruct(prefs); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}
	return nil
}
