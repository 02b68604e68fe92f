// Package roads owns the road network: segment storage, connectivity,
// pathfinding and the durability/wear model.
package roads

import (
	"sort"

	"github.com/c74oyo/overland-logistics/internal/domain"
)

// Catalog resolves road types by id.
type Catalog interface {
	RoadType(id string) (domain.RoadType, bool)
}

// Blocker reports cells that cannot take a road (buildings, terrain).
type Blocker interface {
	Blocked(c domain.Cell) bool
}

// Graph holds every road segment keyed by cell.
//
// Graph is not safe for concurrent use; callers serialize mutation at the
// tick boundary.
type Graph struct {
	catalog     Catalog
	blocker     Blocker
	segments    map[domain.Cell]*domain.RoadSegment
	nextNetwork int
}

// NewGraph creates an empty graph. blocker may be nil.
func NewGraph(catalog Catalog, blocker Blocker) *Graph {
	return &Graph{
		catalog:     catalog,
		blocker:     blocker,
		segments:    make(map[domain.Cell]*domain.RoadSegment),
		nextNetwork: 1,
	}
}

// Len returns the number of segments.
func (g *Graph) Len() int {
	return len(g.segments)
}

// HasRoad reports whether c carries a road.
func (g *Graph) HasRoad(c domain.Cell) bool {
	_, ok := g.segments[c]
	return ok
}

// Segment returns a copy of the segment at c.
func (g *Graph) Segment(c domain.Cell) (domain.RoadSegment, bool) {
	s, ok := g.segments[c]
	if !ok {
		return domain.RoadSegment{}, false
	}
	return *s, true
}

// Segments returns copies of all segments ordered by X then Y.
func (g *Graph) Segments() []domain.RoadSegment {
	out := make([]domain.RoadSegment, 0, len(g.segments))
	for _, s := range g.segments {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cell.X != out[j].Cell.X {
			return out[i].Cell.X < out[j].Cell.X
		}
		return out[i].Cell.Y < out[j].Cell.Y
	})
	return out
}

// SameNetwork reports whether both cells carry roads of the same connected
// network.
func (g *Graph) SameNetwork(a, b domain.Cell) bool {
	sa, ok := g.segments[a]
	if !ok {
		return false
	}
	sb, ok := g.segments[b]
	if !ok {
		return false
	}
	return sa.NetworkID == sb.NetworkID
}

// canBuild checks the per-cell preconditions of Build.
func (g *Graph) canBuild(c domain.Cell) bool {
	if _, exists := g.segments[c]; exists {
		return false
	}
	if g.blocker != nil && g.blocker.Blocked(c) {
		return false
	}
	return true
}

// Build places a road of the given type at c and links it to every built
// 4-neighbour. It fails if the cell is occupied or blocked, or the type is
// unknown.
func (g *Graph) Build(c domain.Cell, roadTypeID string) bool {
	if _, ok := g.catalog.RoadType(roadTypeID); !ok {
		return false
	}
	if !g.canBuild(c) {
		return false
	}

	seg := &domain.RoadSegment{
		Cell:       c,
		RoadTypeID: roadTypeID,
		Durability: domain.MaxDurability,
	}
	g.segments[c] = seg

	var joined []int
	for _, d := range domain.Directions {
		n, ok := g.segments[c.Neighbor(d)]
		if !ok {
			continue
		}
		seg.Connections |= d
		n.Connections |= d.Opposite()
		joined = append(joined, n.NetworkID)
	}

	if len(joined) == 0 {
		seg.NetworkID = g.newNetworkID()
		return true
	}

	// Merge every touched network into the smallest id.
	keep := joined[0]
	for _, id := range joined[1:] {
		if id < keep {
			keep = id
		}
	}
	seg.NetworkID = keep
	merge := make(map[int]bool, len(joined))
	for _, id := range joined {
		if id != keep {
			merge[id] = true
		}
	}
	if len(merge) > 0 {
		for _, s := range g.segments {
			if merge[s.NetworkID] {
				s.NetworkID = keep
			}
		}
	}
	return true
}

// BuildPath builds every cell or none. All cells are validated before the
// first build; a later failure rolls back what this call built.
func (g *Graph) BuildPath(cells []domain.Cell, roadTypeID string) bool {
	if len(cells) == 0 {
		return false
	}
	if _, ok := g.catalog.RoadType(roadTypeID); !ok {
		return false
	}
	seen := make(map[domain.Cell]bool, len(cells))
	for _, c := range cells {
		if seen[c] || !g.canBuild(c) {
			return false
		}
		seen[c] = true
	}

	built := make([]domain.Cell, 0, len(cells))
	for _, c := range cells {
		if !g.Build(c, roadTypeID) {
			for i := len(built) - 1; i >= 0; i-- {
				g.Remove(built[i])
			}
			return false
		}
		built = append(built, c)
	}
	return true
}

// Remove unlinks the segment at c from its neighbours and deletes it.
// Networks split by the removal get fresh ids.
func (g *Graph) Remove(c domain.Cell) bool {
	seg, ok := g.segments[c]
	if !ok {
		return false
	}

	var neighbors []*domain.RoadSegment
	for _, d := range domain.Directions {
		n, ok := g.segments[c.Neighbor(d)]
		if !ok {
			continue
		}
		n.Connections &^= d.Opposite()
		neighbors = append(neighbors, n)
	}
	delete(g.segments, c)

	if len(neighbors) < 2 {
		return true
	}

	// The first component keeps the old id; every other one is relabeled.
	visited := make(map[domain.Cell]bool)
	first := true
	for _, n := range neighbors {
		if visited[n.Cell] {
			continue
		}
		id := seg.NetworkID
		if !first {
			id = g.newNetworkID()
		}
		first = false
		g.flood(n.Cell, visited, func(s *domain.RoadSegment) { s.NetworkID = id })
	}
	return true
}

// RemovePath removes every listed cell that carries a road and returns how
// many were removed.
func (g *Graph) RemovePath(cells []domain.Cell) int {
	n := 0
	for _, c := range cells {
		if g.Remove(c) {
			n++
		}
	}
	return n
}

// Upgrade swaps the segment's type for its configured successor.
func (g *Graph) Upgrade(c domain.Cell) bool {
	seg, ok := g.segments[c]
	if !ok {
		return false
	}
	rt, ok := g.catalog.RoadType(seg.RoadTypeID)
	if !ok || rt.UpgradeTo == "" {
		return false
	}
	if _, ok := g.catalog.RoadType(rt.UpgradeTo); !ok {
		return false
	}
	seg.RoadTypeID = rt.UpgradeTo
	return true
}

// Restore replaces the graph contents with the given segments. Connectivity
// and network ids are recomputed from adjacency.
func (g *Graph) Restore(segments []domain.RoadSegment) {
	g.segments = make(map[domain.Cell]*domain.RoadSegment, len(segments))
	g.nextNetwork = 1
	for _, s := range segments {
		cp := s
		cp.Connections = 0
		cp.NetworkID = 0
		g.segments[s.Cell] = &cp
	}
	for c, s := range g.segments {
		for _, d := range domain.Directions {
			if _, ok := g.segments[c.Neighbor(d)]; ok {
				s.Connections |= d
			}
		}
	}

	// Label components in a stable order so ids survive a save/load cycle.
	cells := make([]domain.Cell, 0, len(g.segments))
	for c := range g.segments {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].X != cells[j].X {
			return cells[i].X < cells[j].X
		}
		return cells[i].Y < cells[j].Y
	})
	visited := make(map[domain.Cell]bool, len(cells))
	for _, c := range cells {
		if visited[c] {
			continue
		}
		id := g.newNetworkID()
		g.flood(c, visited, func(s *domain.RoadSegment) { s.NetworkID = id })
	}
}

// flood visits every segment reachable from start through connection bits.
func (g *Graph) flood(start domain.Cell, visited map[domain.Cell]bool, fn func(*domain.RoadSegment)) {
	stack := []domain.Cell{start}
	visited[start] = true
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		seg := g.segments[c]
		fn(seg)
		for _, d := range domain.Directions {
			if !seg.Connections.Has(d) {
				continue
			}
			n := c.Neighbor(d)
			if visited[n] {
				continue
			}
			if _, ok := g.segments[n]; !ok {
				continue
			}
			visited[n] = true
			stack = append(stack, n)
		}
	}
}

func (g *Graph) newNetworkID() int {
	id := g.nextNetwork
	g.nextNetwork++
	return id
}
