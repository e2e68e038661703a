package layout

// Thresholds are the zoom levels at which detail changes
type Thresholds struct {
	High   float64
	Medium float64
}

// DefaultThresholds match the default domain configuration
var DefaultThresholds = Thresholds{High: 1.5, Medium: 0.6}

// Level is a coarse detail tier
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
)

func (l Level) String() string {
	switch l {
	case LevelHigh:
		return "high"
	case LevelMedium:
		return "medium"
	default:
		return "low"
	}
}

// LOD is the per-frame detail decision
type LOD struct {
	Level         Level
	ShowEdges     bool
	ShowHubLabels bool
	ShowAllLabels bool
	// MinNodeScale multiplies the configured minimum node radius
	MinNodeScale float64
}

// ComputeLOD derives detail settings from the live zoom. It is pure and cheap
// and is called every frame.
func ComputeLOD(zoom float64, t Thresholds) LOD {
	switch {
	case zoom >= t.High:
		return LOD{Level: LevelHigh, ShowEdges: true, ShowHubLabels: true, ShowAllLabels: true, MinNodeScale: 1}
	case zoom >= t.Medium:
		return LOD{Level: LevelMedium, ShowEdges: true, ShowHubLabels: true, MinNodeScale: 1}
	default:
		return LOD{Level: LevelLow, ShowHubLabels: true, MinNodeScale: 0.5}
	}
}
