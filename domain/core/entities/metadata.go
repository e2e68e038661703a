package entities

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"braingraph/pkg/utils"
)

// Well-known metadata keys emitted by the graph backend
const (
	MetaCommunityID = "communityId"
	MetaUsageCount  = "usage_count"
	MetaWidth       = "width"
	MetaHeight      = "height"
	MetaUpdatedAt   = "updated_at"
	MetaName        = "name"
)

// Metadata is a read-only view over a node's free-form metadata
type Metadata struct {
	values map[string]interface{}
}

// NewMetadata copies values so later writes by the caller are not observed
func NewMetadata(values map[string]interface{}) Metadata {
	if len(values) == 0 {
		return Metadata{}
	}
	copied := make(map[string]interface{}, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Metadata{values: copied}
}

// Get returns the raw value for key
func (m Metadata) Get(key string) (interface{}, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of keys
func (m Metadata) Len() int {
	return len(m.values)
}

// String returns key rendered as a string. Numbers are formatted without a
// trailing ".0" so 7 and 7.0 and "7" compare equal.
func (m Metadata) String(key string) (string, bool) {
	v, ok := m.values[key]
	if !ok || v == nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return formatNumber(val), true
	case float32:
		return formatNumber(float64(val)), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return fmt.Sprint(val), true
	}
}

// Float returns key as a number when it holds one
func (m Metadata) Float(key string) (float64, bool) {
	switch val := m.values[key].(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Int returns key truncated to an int
func (m Metadata) Int(key string) (int, bool) {
	f, ok := m.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Time parses key as a backend timestamp
func (m Metadata) Time(key string) (time.Time, bool) {
	s, ok := m.values[key].(string)
	if !ok {
		return time.Time{}, false
	}
	return utils.ParseTimestamp(s)
}

// CommunityID returns the normalised community assignment
func (m Metadata) CommunityID() (string, bool) {
	return m.String(MetaCommunityID)
}

// Map returns a copy of the underlying map
func (m Metadata) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
