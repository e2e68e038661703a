package ports

import (
	"context"
	"time"
)

// Preferences are the small user settings the engine remembers
type Preferences struct {
	LastDepth int    `json:"last_depth" yaml:"last_depth" validate:"gte=0,lte=3"`
	Preset    string `json:"preset" yaml:"preset"`
	Theme     string `json:"theme" yaml:"theme" validate:"omitempty,oneof=light dark system"`
}

// PreferenceStore persists Preferences
type PreferenceStore interface {
	Load(ctx context.Context) (Preferences, error)
	Save(ctx context.Context, prefs Preferences) error
}

// Cache stores query results for a bounded time
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
