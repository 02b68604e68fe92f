package roads

import (
	"container/heap"

	"github.com/c74oyo/overland-logistics/internal/domain"
)

// openItem is one frontier entry. seq records push order so equal f-scores
// expand the earliest entry first.
type openItem struct {
	cell domain.Cell
	f    float64
	g    float64
	seq  int
}

type openSet []openItem

func (o openSet) Len() int { return len(o) }

func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	return o[i].seq < o[j].seq
}

func (o openSet) Swap(i, j int) { o[i], o[j] = o[j], o[i] }

func (o *openSet) Push(x any) { *o = append(*o, x.(openItem)) }

func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	it := old[n-1]
	*o = old[:n-1]
	return it
}

// stepCost is the cost of entering seg: 1 / speed multiplier.
func (g *Graph) stepCost(seg *domain.RoadSegment) float64 {
	speed := 1.0
	if rt, ok := g.catalog.RoadType(seg.RoadTypeID); ok && rt.SpeedMultiplier > 0 {
		speed = rt.SpeedMultiplier
	}
	return 1 / speed
}

func (g *Graph) passableAt(c domain.Cell) (*domain.RoadSegment, bool) {
	seg, ok := g.segments[c]
	if !ok || !seg.Tier().Passable() {
		return nil, false
	}
	return seg, true
}

// FindPath runs A* over passable road cells from start to end, inclusive.
// It returns nil when either endpoint has no passable road or the cells are
// not connected.
func (g *Graph) FindPath(start, end domain.Cell) []domain.Cell {
	startSeg, ok := g.passableAt(start)
	if !ok {
		return nil
	}
	endSeg, ok := g.passableAt(end)
	if !ok {
		return nil
	}
	if start == end {
		return []domain.Cell{start}
	}
	if startSeg.NetworkID != endSeg.NetworkID {
		return nil
	}

	gScore := map[domain.Cell]float64{start: 0}
	cameFrom := make(map[domain.Cell]domain.Cell)
	closed := make(map[domain.Cell]bool)

	open := &openSet{}
	seq := 0
	heap.Push(open, openItem{cell: start, f: float64(start.Manhattan(end)), g: 0, seq: seq})

	for open.Len() > 0 {
		cur := heap.Pop(open).(openItem)
		if closed[cur.cell] || cur.g > gScore[cur.cell] {
			continue
		}
		if cur.cell == end {
			return reconstruct(cameFrom, start, end)
		}
		closed[cur.cell] = true

		seg := g.segments[cur.cell]
		for _, d := range domain.Directions {
			if !seg.Connections.Has(d) {
				continue
			}
			next := cur.cell.Neighbor(d)
			if closed[next] {
				continue
			}
			nseg, ok := g.passableAt(next)
			if !ok {
				continue
			}
			tentative := cur.g + g.stepCost(nseg)
			if old, seen := gScore[next]; seen && tentative >= old {
				continue
			}
			gScore[next] = tentative
			cameFrom[next] = cur.cell
			seq++
			heap.Push(open, openItem{
				cell: next,
				f:    tentative + float64(next.Manhattan(end)),
				g:    tentative,
				seq:  seq,
			})
		}
	}
	return nil
}

func reconstruct(cameFrom map[domain.Cell]domain.Cell, start, end domain.Cell) []domain.Cell {
	path := []domain.Cell{end}
	for c := end; c != start; {
		c = cameFrom[c]
		path = append(path, c)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// roadRing returns the passable road cells on the ring around area, corners
// included, that lie outside both footprints.
func (g *Graph) roadRing(area, other domain.Area) []domain.Cell {
	var out []domain.Cell
	for _, c := range area.Ring() {
		if other.Contains(c) {
			continue
		}
		if _, ok := g.passableAt(c); ok {
			out = append(out, c)
		}
	}
	return out
}

// FindPathBetweenAreas connects two footprints whose interiors carry no road.
// Every road cell in the ring around from is tried against every road cell in
// the ring around to; the path with the fewest cells wins, ties going to the
// first pair evaluated. Pairs on different networks are skipped.
func (g *Graph) FindPathBetweenAreas(from, to domain.Area) []domain.Cell {
	if !from.Valid() || !to.Valid() {
		return nil
	}
	starts := g.roadRing(from, to)
	ends := g.roadRing(to, from)

	var best []domain.Cell
	for _, s := range starts {
		for _, e := range ends {
			if !g.SameNetwork(s, e) {
				continue
			}
			p := g.FindPath(s, e)
			if p == nil {
				continue
			}
			if best == nil || len(p) < len(best) {
				best = p
			}
		}
	}
	return best
}
