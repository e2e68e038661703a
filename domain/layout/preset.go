package layout

import (
	"fmt"
	"sort"
	"strings"
)

// PresetName identifies a layout preset
type PresetName string

const (
	PresetTight    PresetName = "tight"
	PresetBalanced PresetName = "balanced"
	PresetSpread   PresetName = "spread"
	PresetCluster  PresetName = "cluster"

	DefaultPreset = PresetBalanced
)

// Physics are the per-tick parameters handed to the force integrator
type Physics struct {
	ChargeStrength float64 `json:"charge_strength" yaml:"charge_strength" toml:"charge_strength" validate:"lte=0"`
	LinkDistance   float64 `json:"link_distance" yaml:"link_distance" toml:"link_distance" validate:"gt=0"`
	LinkStrength   float64 `json:"link_strength" yaml:"link_strength" toml:"link_strength" validate:"gte=0,lte=2"`
	CenterStrength float64 `json:"center_strength" yaml:"center_strength" toml:"center_strength" validate:"gte=0,lte=1"`
	VelocityDecay  float64 `json:"velocity_decay" yaml:"velocity_decay" toml:"velocity_decay" validate:"gt=0,lt=1"`
	AlphaDecay     float64 `json:"alpha_decay" yaml:"alpha_decay" toml:"alpha_decay" validate:"gt=0,lt=1"`
	AlphaMin       float64 `json:"alpha_min" yaml:"alpha_min" toml:"alpha_min" validate:"gte=0,lt=1"`
}

// Display are the renderer-facing parameters of a preset
type Display struct {
	ShowLabels  bool    `json:"show_labels" yaml:"show_labels" toml:"show_labels"`
	NodeScale   float64 `json:"node_scale" yaml:"node_scale" toml:"node_scale" validate:"gt=0"`
	EdgeOpacity float64 `json:"edge_opacity" yaml:"edge_opacity" toml:"edge_opacity" validate:"gte=0,lte=1"`
	CurvedEdges bool    `json:"curved_edges" yaml:"curved_edges" toml:"curved_edges"`
}

// Preset is a named bundle of physics and display parameters
type Preset struct {
	Name    PresetName `json:"name" yaml:"name" toml:"name" validate:"required"`
	Label   string     `json:"label" yaml:"label" toml:"label"`
	Physics Physics    `json:"physics" yaml:"physics" toml:"physics"`
	Display Display    `json:"display" yaml:"display" toml:"display"`
}

var builtins = map[PresetName]Preset{
	PresetTight: {
		Name:  PresetTight,
		Label: "Tight",
		Physics: Physics{
			ChargeStrength: -60,
			LinkDistance:   30,
			LinkStrength:   1,
			CenterStrength: 0.1,
			VelocityDecay:  0.4,
			AlphaDecay:     0.03,
			AlphaMin:       0.001,
		},
		Display: Display{ShowLabels: false, NodeScale: 0.8, EdgeOpacity: 0.5, CurvedEdges: false},
	},
	PresetBalanced: {
		Name:  PresetBalanced,
		Label: "Balanced",
		Physics: Physics{
			ChargeStrength: -120,
			LinkDistance:   60,
			LinkStrength:   0.7,
			CenterStrength: 0.05,
			VelocityDecay:  0.35,
			AlphaDecay:     0.0228,
			AlphaMin:       0.001,
		},
		Display: Display{ShowLabels: true, NodeScale: 1, EdgeOpacity: 0.6, CurvedEdges: true},
	},
	PresetSpread: {
		Name:  PresetSpread,
		Label: "Spread",
		Physics: Physics{
			ChargeStrength: -250,
			LinkDistance:   110,
			LinkStrength:   0.4,
			CenterStrength: 0.03,
			VelocityDecay:  0.3,
			AlphaDecay:     0.02,
			AlphaMin:       0.001,
		},
		Display: Display{ShowLabels: true, NodeScale: 1.1, EdgeOpacity: 0.7, CurvedEdges: true},
	},
	PresetCluster: {
		Name:  PresetCluster,
		Label: "Cluster",
		Physics: Physics{
			ChargeStrength: -400,
			LinkDistance:   160,
			LinkStrength:   0.2,
			CenterStrength: 0.01,
			VelocityDecay:  0.25,
			AlphaDecay:     0.015,
			AlphaMin:       0.0005,
		},
		Display: Display{ShowLabels: false, NodeScale: 1.2, EdgeOpacity: 0.8, CurvedEdges: true},
	},
}

// Builtin returns a built-in preset
func Builtin(name PresetName) (Preset, bool) {
	p, ok := builtins[name]
	return p, ok
}

// Registry holds the built-in presets plus any loaded from configuration
type Registry struct {
	presets map[PresetName]Preset
}

// NewRegistry creates a registry seeded with the built-ins
func NewRegistry() *Registry {
	r := &Registry{presets: make(map[PresetName]Preset, len(builtins))}
	for name, p := range builtins {
		r.presets[name] = p
	}
	return r
}

// Get returns a preset by name, case-insensitively
func (r *Registry) Get(name string) (Preset, error) {
	p, ok := r.presets[PresetName(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return Preset{}, fmt.Errorf("unknown layout preset %q", name)
	}
	return p, nil
}

// Default returns the balanced preset
func (r *Registry) Default() Preset {
	return r.presets[DefaultPreset]
}

// Merge adds or replaces presets. Built-ins can be overridden but not removed.
func (r *Registry) Merge(presets ...Preset) *Registry {
	out := &Registry{presets: make(map[PresetName]Preset, len(r.presets)+len(presets))}
	for name, p := range r.presets {
		out.presets[name] = p
	}
	for _, p := range presets {
		p.Name = PresetName(strings.ToLower(string(p.Name)))
		out.presets[p.Name] = p
	}
	return out
}

// Names returns preset names sorted from tight to spread for built-ins,
// then custom presets alphabetically
func (r *Registry) Names() []PresetName {
	order := map[PresetName]int{PresetTight: 0, PresetBalanced: 1, PresetSpread: 2, PresetCluster: 3}
	names := make([]PresetName, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		oi, iBuiltin := order[names[i]]
		oj, jBuiltin := order[names[j]]
		switch {
		case iBuiltin && jBuiltin:
			return oi < oj
		case iBuiltin != jBuiltin:
			return iBuiltin
		default:
			return names[i] < names[j]
		}
	})
	return names
}
