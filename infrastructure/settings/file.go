package settings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"braingraph/application/ports"
)

// FileStore keeps preferences in a YAML file
type FileStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileStore creates a store backed by path. The file is created on the
// first Save.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

// Load reads the file. A missing file yields zero preferences.
func (s *FileStore) Load(ctx context.Context) (ports.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prefs ports.Preferences
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return prefs, fmt.Errorf("failed to read preferences: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return prefs, nil
	}
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return ports.Preferences{}, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if err := validate(prefs); err != nil {
		return ports.Preferences{}, err
	}
	return prefs, nil
}

// Save writes prefs atomically through a temp file in the same directory
func (s *FileStore) Save(ctx context.Context, prefs ports.Preferences) error {
	if err := validate(prefs); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".preferences-*")
	if err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}

	s.logger.Debug("preferences saved",
		zap.String("path", s.path),
		zap.Int("last_depth", prefs.LastDepth),
		zap.String("preset", prefs.Preset),
	)
	return nil
}

var _ ports.PreferenceStore = (*FileStore)(nil)
