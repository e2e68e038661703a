// Package mocks provides in-memory implementations of the application ports for testing.
package mocks

import (
	"context"
	"image"
	"image/color"
	"strings"
	"sync"

	"braingraph/application/ports"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
)

// MockBackend is an in-memory GraphBackend. Fixtures are installed with the
// Set* methods; unknown lookups return empty results, as the real backend does.
type MockBackend struct {
	mu sync.RWMutex

	neighborhoods map[string]*aggregates.Graph
	mapData       *ports.MapData
	paths         map[string]*ports.PathData
	corpus        []entities.Node
	stats         *ports.GraphStats

	// For testing error scenarios
	shouldFailOn map[string]error
	calls        map[string]int
	gate         chan struct{}
}

// NewMockBackend creates a new mock backend instance
func NewMockBackend() *MockBackend {
	return &MockBackend{
		neighborhoods: make(map[string]*aggregates.Graph),
		paths:         make(map[string]*ports.PathData),
		shouldFailOn:  make(map[string]error),
		calls:         make(map[string]int),
	}
}

// SetNeighborhood installs the graph returned for nodeID
func (m *MockBackend) SetNeighborhood(nodeID string, g *aggregates.Graph) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.neighborhoods[nodeID] = g
}

// SetMap installs the clustered overview
func (m *MockBackend) SetMap(data *ports.MapData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mapData = data
}

// SetPath installs the path between from and to
func (m *MockBackend) SetPath(from, to string, data *ports.PathData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths[from+"|"+to] = data
}

// SetSearchCorpus installs the nodes searched by title
func (m *MockBackend) SetSearchCorpus(nodes []entities.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.corpus = nodes
}

// SetStats installs the stats payload
func (m *MockBackend) SetStats(stats *ports.GraphStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = stats
}

// SetError configures the mock to return an error for a specific method.
func (m *MockBackend) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn[method] = err
}

// ClearErrors removes all configured errors.
func (m *MockBackend) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn = make(map[string]error)
}

// Block makes every call wait until the returned release func runs or the
// caller's context ends
func (m *MockBackend) Block() (release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gate := make(chan struct{})
	m.gate = gate
	var once sync.Once
	return func() {
		once.Do(func() {
			close(gate)
			m.mu.Lock()
			if m.gate == gate {
				m.gate = nil
			}
			m.mu.Unlock()
		})
	}
}

// Calls reports how many times method was invoked
func (m *MockBackend) Calls(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[method]
}

func (m *MockBackend) enter(ctx context.Context, method string) error {
	m.mu.Lock()
	m.calls[method]++
	gate := m.gate
	err := m.shouldFailOn[method]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// LocalNeighborhood returns the installed neighborhood, filtered by layer and weight
func (m *MockBackend) LocalNeighborhood(ctx context.Context, nodeID string, depth int, layers []string, minWeight float64) (*aggregates.Graph, error) {
	if err := m.enter(ctx, "LocalNeighborhood"); err != nil {
		return nil, err
	}

	m.mu.RLock()
	g, ok := m.neighborhoods[nodeID]
	m.mu.RUnlock()
	if !ok {
		return aggregates.EmptyGraph(), nil
	}

	allowed := make(map[valueobjects.Layer]bool, len(layers))
	for _, l := range layers {
		allowed[valueobjects.Layer(l)] = true
	}
	nodes := make([]entities.Node, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		if len(allowed) == 0 || !n.Type().IsKnown() || allowed[n.Type().Layer()] {
			nodes = append(nodes, n)
		}
	}
	edges := make([]entities.Edge, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		if e.Weight >= minWeight {
			edges = append(edges, e)
		}
	}
	return aggregates.NewGraph(nodes, edges), nil
}

// Map returns the installed overview, or an empty one
func (m *MockBackend) Map(ctx context.Context, scope string) (*ports.MapData, error) {
	if err := m.enter(ctx, "Map"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.mapData == nil {
		return &ports.MapData{Graph: aggregates.EmptyGraph()}, nil
	}
	return m.mapData, nil
}

// Path returns the installed path, or an empty one when none exists
func (m *MockBackend) Path(ctx context.Context, from, to string, limit int) (*ports.PathData, error) {
	if err := m.enter(ctx, "Path"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.paths[from+"|"+to]; ok {
		return p, nil
	}
	return &ports.PathData{}, nil
}

// Search matches titles case-insensitively
func (m *MockBackend) Search(ctx context.Context, query string, limit int) ([]entities.Node, error) {
	if err := m.enter(ctx, "Search"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	q := strings.ToLower(query)
	out := []entities.Node{}
	for _, n := range m.corpus {
		if strings.Contains(strings.ToLower(n.Title()), q) {
			out = append(out, n)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// Stats returns the installed stats, or zero counts
func (m *MockBackend) Stats(ctx context.Context) (*ports.GraphStats, error) {
	if err := m.enter(ctx, "Stats"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.stats == nil {
		return &ports.GraphStats{NodeCounts: map[string]int{}, EdgeCounts: map[string]int{}}, nil
	}
	return m.stats, nil
}

// MockImageFetcher returns a solid square for every id
type MockImageFetcher struct {
	mu    sync.Mutex
	calls int
	err   error
}

// NewMockImageFetcher creates a new mock fetcher
func NewMockImageFetcher() *MockImageFetcher {
	return &MockImageFetcher{}
}

// SetError makes every fetch fail with err
func (f *MockImageFetcher) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Calls reports how many fetches ran
func (f *MockImageFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// FetchThumbnail implements ports.ImageFetcher
func (f *MockImageFetcher) FetchThumbnail(ctx context.Context, id valueobjects.NodeID) (image.Image, error) {
	f.mu.Lock()
	f.calls++
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: 80, G: 140, B: 200, A: 255})
		}
	}
	return img, nil
}

var (
	_ ports.GraphBackend = (*MockBackend)(nil)
	_ ports.ImageFetcher = (*MockImageFetcher)(nil)
)
