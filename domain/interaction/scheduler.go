package interaction

import (
	"time"

	"braingraph/domain/core/valueobjects"
)

// Timer is a cancellable scheduled callback
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the runtime timer heap
type RealScheduler struct{}

// AfterFunc implements Scheduler
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// LayoutPort is the slice of the physics integrator the machine drives
type LayoutPort interface {
	PositionOf(id valueobjects.NodeID) (valueobjects.Point, bool)
	Fix(id valueobjects.NodeID, p valueobjects.Point)
	Release(id valueobjects.NodeID)
}
