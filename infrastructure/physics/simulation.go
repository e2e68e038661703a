package physics

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"braingraph/application/ports"
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
	"braingraph/domain/layout"
)

const (
	initialRadius = 10.0
	minDistance2  = 1.0
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

type body struct {
	id    string
	pos   r2.Vec
	vel   r2.Vec
	fixed *r2.Vec
}

type link struct {
	source, target int
	bias           float64
	strength       float64
}

// Simulation is a force-directed layout: many-body repulsion, spring
// links and a centering pull, cooled by alpha. Pinned bodies never move.
type Simulation struct {
	mu sync.Mutex

	physics layout.Physics
	alpha   float64

	bodies []*body
	index  map[string]int
	links  []link

	// pins survive graph replacement
	pins map[string]r2.Vec
}

// NewSimulation creates a simulation with the given physics
func NewSimulation(p layout.Physics) *Simulation {
	return &Simulation{
		physics: p,
		alpha:   1,
		index:   make(map[string]int),
		pins:    make(map[string]r2.Vec),
	}
}

// SetGraph replaces the body and link set. Known bodies keep their state;
// new ones start at their given position, near a positioned neighbor, or on a
// phyllotaxis spiral around the origin.
func (s *Simulation) SetGraph(nodes []entities.Node, edges []entities.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := make(map[string]*body, len(s.bodies))
	for _, b := range s.bodies {
		prev[b.id] = b
	}

	s.bodies = make([]*body, 0, len(nodes))
	s.index = make(map[string]int, len(nodes))
	var fresh []int
	for _, n := range nodes {
		id := n.ID().String()
		if _, dup := s.index[id]; dup {
			continue
		}
		b, known := prev[id]
		if !known {
			b = &body{id: id}
			if p, ok := n.Position(); ok {
				b.pos = r2.Vec{X: p.X, Y: p.Y}
			} else {
				fresh = append(fresh, len(s.bodies))
			}
		}
		if p, ok := n.Fixed(); ok {
			v := r2.Vec{X: p.X, Y: p.Y}
			b.fixed = &v
		} else if pin, ok := s.pins[id]; ok {
			v := pin
			b.fixed = &v
		} else {
			b.fixed = nil
		}
		if b.fixed != nil {
			b.pos = *b.fixed
			b.vel = r2.Vec{}
		}
		s.index[id] = len(s.bodies)
		s.bodies = append(s.bodies, b)
	}

	s.links = s.links[:0]
	degree := make([]int, len(s.bodies))
	for _, e := range edges {
		si, ok1 := s.index[e.Source.String()]
		ti, ok2 := s.index[e.Target.String()]
		if !ok1 || !ok2 || si == ti {
			continue
		}
		degree[si]++
		degree[ti]++
		s.links = append(s.links, link{source: si, target: ti})
	}
	for i := range s.links {
		l := &s.links[i]
		ds, dt := float64(degree[l.source]), float64(degree[l.target])
		l.bias = ds / (ds + dt)
		l.strength = 1 / math.Min(ds, dt)
	}

	s.seed(fresh)
}

func (s *Simulation) seed(fresh []int) {
	neighbors := make(map[int][]int)
	for _, l := range s.links {
		neighbors[l.source] = append(neighbors[l.source], l.target)
		neighbors[l.target] = append(neighbors[l.target], l.source)
	}
	isFresh := make(map[int]bool, len(fresh))
	for _, i := range fresh {
		isFresh[i] = true
	}

	for k, i := range fresh {
		b := s.bodies[i]
		if b.fixed != nil {
			continue
		}
		radius := initialRadius * math.Sqrt(0.5+float64(k))
		angle := float64(k) * initialAngle
		offset := r2.Vec{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}

		anchor := r2.Vec{}
		for _, j := range neighbors[i] {
			if !isFresh[j] {
				anchor = s.bodies[j].pos
				offset = r2.Scale(0.5, offset)
				break
			}
		}
		b.pos = r2.Add(anchor, offset)
		b.vel = r2.Vec{}
	}
}

// SetPhysics applies a preset's parameters from the next tick on
func (s *Simulation) SetPhysics(p layout.Physics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.physics = p
}

// Reheat restarts cooling and discards accumulated velocity
func (s *Simulation) Reheat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alpha = 1
	for _, b := range s.bodies {
		b.vel = r2.Vec{}
	}
}

// Alpha returns the current cooling parameter
func (s *Simulation) Alpha() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha
}

// Tick advances one step. It reports false once alpha has fallen below
// AlphaMin and does nothing further until reheated.
func (s *Simulation) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alpha < s.physics.AlphaMin {
		return false
	}
	s.alpha += (0 - s.alpha) * s.physics.AlphaDecay

	s.applyLinks()
	s.applyCharge()
	s.applyCenter()
	s.integrate()

	return s.alpha >= s.physics.AlphaMin
}

func (s *Simulation) applyLinks() {
	for _, l := range s.links {
		src, dst := s.bodies[l.source], s.bodies[l.target]
		d := r2.Sub(r2.Add(dst.pos, dst.vel), r2.Add(src.pos, src.vel))
		dist := r2.Norm(d)
		if dist == 0 {
			d = jitter(l.source, l.target)
			dist = r2.Norm(d)
		}
		k := (dist - s.physics.LinkDistance) / dist * s.alpha * l.strength * s.physics.LinkStrength
		d = r2.Scale(k, d)
		dst.vel = r2.Sub(dst.vel, r2.Scale(l.bias, d))
		src.vel = r2.Add(src.vel, r2.Scale(1-l.bias, d))
	}
}

func (s *Simulation) applyCharge() {
	strength := s.physics.ChargeStrength * s.alpha
	for i, a := range s.bodies {
		for j, b := range s.bodies {
			if i == j {
				continue
			}
			d := r2.Sub(b.pos, a.pos)
			l2 := r2.Norm2(d)
			if l2 == 0 {
				d = jitter(i, j)
				l2 = r2.Norm2(d)
			}
			if l2 < minDistance2 {
				l2 = math.Sqrt(minDistance2 * l2)
			}
			a.vel = r2.Add(a.vel, r2.Scale(strength/l2, d))
		}
	}
}

func (s *Simulation) applyCenter() {
	k := s.physics.CenterStrength * s.alpha
	for _, b := range s.bodies {
		b.vel = r2.Sub(b.vel, r2.Scale(k, b.pos))
	}
}

func (s *Simulation) integrate() {
	keep := 1 - s.physics.VelocityDecay
	for _, b := range s.bodies {
		if b.fixed != nil {
			b.pos = *b.fixed
			b.vel = r2.Vec{}
			continue
		}
		b.vel = r2.Scale(keep, b.vel)
		b.pos = r2.Add(b.pos, b.vel)
	}
}

// PositionOf returns the simulated position of id
func (s *Simulation) PositionOf(id valueobjects.NodeID) (valueobjects.Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id.String()]
	if !ok {
		return valueobjects.Point{}, false
	}
	p := s.bodies[i].pos
	return valueobjects.Point{X: p.X, Y: p.Y}, true
}

// Fix pins id at p. The pin outlives graph replacement until Release.
func (s *Simulation) Fix(id valueobjects.NodeID, p valueobjects.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := r2.Vec{X: p.X, Y: p.Y}
	s.pins[id.String()] = v
	if i, ok := s.index[id.String()]; ok {
		fixed := v
		s.bodies[i].fixed = &fixed
		s.bodies[i].pos = v
		s.bodies[i].vel = r2.Vec{}
	}
}

// Release unpins id
func (s *Simulation) Release(id valueobjects.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pins, id.String())
	if i, ok := s.index[id.String()]; ok {
		s.bodies[i].fixed = nil
	}
}

// Positions returns a copy of every body position
func (s *Simulation) Positions() map[string]valueobjects.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]valueobjects.Point, len(s.bodies))
	for _, b := range s.bodies {
		out[b.id] = valueobjects.Point{X: b.pos.X, Y: b.pos.Y}
	}
	return out
}

// Bounds returns the bounding box of all bodies
func (s *Simulation) Bounds() (lo, hi valueobjects.Point, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bodies) == 0 {
		return lo, hi, false
	}
	lo = valueobjects.Point{X: math.Inf(1), Y: math.Inf(1)}
	hi = valueobjects.Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, b := range s.bodies {
		lo.X, lo.Y = math.Min(lo.X, b.pos.X), math.Min(lo.Y, b.pos.Y)
		hi.X, hi.Y = math.Max(hi.X, b.pos.X), math.Max(hi.Y, b.pos.Y)
	}
	return lo, hi, true
}

// IDs returns the simulated ids in sorted order
func (s *Simulation) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.bodies))
	for _, b := range s.bodies {
		ids = append(ids, b.id)
	}
	sort.Strings(ids)
	return ids
}

// jitter separates coincident bodies deterministically
func jitter(i, j int) r2.Vec {
	a := float64(i*31+j*17) * initialAngle
	return r2.Vec{X: 1e-3 * math.Cos(a), Y: 1e-3 * math.Sin(a)}
}

var _ ports.Simulation = (*Simulation)(nil)
