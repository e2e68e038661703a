package ports

import (
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
	"braingraph/domain/interaction"
	"braingraph/domain/layout"
)

// Simulation is the force-directed integrator. It accepts per-tick physics
// parameters and reports node positions; pinned nodes never move.
type Simulation interface {
	interaction.LayoutPort

	// SetGraph replaces the simulated node and edge set. Known nodes keep their
	// positions; new ones are seeded near a positioned neighbor or the origin.
	SetGraph(nodes []entities.Node, edges []entities.Edge)

	// SetPhysics applies a preset's physics parameters
	SetPhysics(p layout.Physics)

	// Reheat resets alpha and discards accumulated velocity
	Reheat()

	// Tick advances one step and reports whether the simulation is still active
	Tick() bool

	// Alpha returns the current cooling parameter
	Alpha() float64

	// Positions returns a copy of every node position
	Positions() map[string]valueobjects.Point
}
