package roads

import (
	"reflect"
	"testing"

	"github.com/c74oyo/overland-logistics/internal/domain"
)

func TestFindPath_StraightLine(t *testing.T) {
	g := newTestGraph(t)
	g.BuildPath(line(0, 4, 0), "dirt")

	p := g.FindPath(domain.Cell{X: 0, Y: 0}, domain.Cell{X: 4, Y: 0})
	if !reflect.DeepEqual(p, line(0, 4, 0)) {
		t.Errorf("path = %v, want %v", p, line(0, 4, 0))
	}
}

func TestFindPath_SameCell(t *testing.T) {
	g := newTestGraph(t)
	c := domain.Cell{X: 2, Y: 2}
	g.Build(c, "dirt")

	p := g.FindPath(c, c)
	if len(p) != 1 || p[0] != c {
		t.Errorf("path = %v, want [%v]", p, c)
	}
}

func TestFindPath_PrefersFasterRoad(t *testing.T) {
	tests := []struct {
		name    string
		north   string
		east    string
		wantVia domain.Cell
	}{
		{name: "highway north", north: "highway", east: "dirt", wantVia: domain.Cell{X: 0, Y: 1}},
		{name: "highway east", north: "dirt", east: "highway", wantVia: domain.Cell{X: 1, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGraph(t)
			g.Build(domain.Cell{X: 0, Y: 0}, "dirt")
			g.Build(domain.Cell{X: 0, Y: 1}, tt.north)
			g.Build(domain.Cell{X: 1, Y: 0}, tt.east)
			g.Build(domain.Cell{X: 1, Y: 1}, "dirt")

			p := g.FindPath(domain.Cell{X: 0, Y: 0}, domain.Cell{X: 1, Y: 1})
			if len(p) != 3 {
				t.Fatalf("path = %v, want 3 cells", p)
			}
			if p[1] != tt.wantVia {
				t.Errorf("path via %v, want %v", p[1], tt.wantVia)
			}
		})
	}
}

func TestFindPath_Deterministic(t *testing.T) {
	g := newTestGraph(t)
	for x := 0; x < 6; x++ {
		for y := 0; y < 6; y++ {
			g.Build(domain.Cell{X: x, Y: y}, "dirt")
		}
	}
	start := domain.Cell{X: 0, Y: 0}
	end := domain.Cell{X: 5, Y: 5}

	first := g.FindPath(start, end)
	if len(first) != 11 {
		t.Fatalf("path length = %d, want 11", len(first))
	}
	for i := 0; i < 20; i++ {
		if got := g.FindPath(start, end); !reflect.DeepEqual(got, first) {
			t.Fatalf("call %d returned %v, want %v", i, got, first)
		}
	}
	if !g.IsPathPassable(first) {
		t.Error("returned path is not contiguous and passable")
	}
}

func TestFindPath_NoRoute(t *testing.T) {
	g := newTestGraph(t)
	g.BuildPath(line(0, 2, 0), "dirt")
	g.BuildPath(line(5, 7, 0), "dirt")

	tests := []struct {
		name       string
		start, end domain.Cell
	}{
		{name: "start without road", start: domain.Cell{X: 0, Y: 9}, end: domain.Cell{X: 2, Y: 0}},
		{name: "end without road", start: domain.Cell{X: 0, Y: 0}, end: domain.Cell{X: 3, Y: 0}},
		{name: "disconnected", start: domain.Cell{X: 0, Y: 0}, end: domain.Cell{X: 7, Y: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if p := g.FindPath(tt.start, tt.end); p != nil {
				t.Errorf("path = %v, want nil", p)
			}
		})
	}
}

func TestFindPath_BrokenSegmentBlocks(t *testing.T) {
	g := newTestGraph(t)
	g.BuildPath(line(0, 4, 0), "dirt")
	mid := domain.Cell{X: 2, Y: 0}

	// dirt: threshold 100, decay 10 -> durability 0 at 1100 cargo.
	if g.ApplyWear([]domain.Cell{mid}, 1100) {
		t.Fatal("ApplyWear reported passable after breaking the segment")
	}
	if p := g.FindPath(domain.Cell{X: 0, Y: 0}, domain.Cell{X: 4, Y: 0}); p != nil {
		t.Errorf("path = %v, want nil through broken segment", p)
	}

	g.RepairFull(mid)
	if p := g.FindPath(domain.Cell{X: 0, Y: 0}, domain.Cell{X: 4, Y: 0}); len(p) != 5 {
		t.Errorf("path after repair = %v, want 5 cells", p)
	}
}

func TestFindPathBetweenAreas(t *testing.T) {
	g := newTestGraph(t)
	src := domain.Area{Anchor: domain.Cell{X: 0, Y: 0}, Width: 2, Height: 2}
	dst := domain.Area{Anchor: domain.Cell{X: 10, Y: 0}, Width: 2, Height: 2}

	// Long way round along y=3, short way along y=0.
	g.BuildPath(line(2, 9, 0), "dirt")
	g.BuildPath([]domain.Cell{{X: 0, Y: 2}, {X: 0, Y: 3}}, "dirt")
	g.BuildPath(line(1, 10, 3), "dirt")
	g.Build(domain.Cell{X: 10, Y: 2}, "dirt")

	p := g.FindPathBetweenAreas(src, dst)
	if !reflect.DeepEqual(p, line(2, 9, 0)) {
		t.Errorf("path = %v, want %v", p, line(2, 9, 0))
	}
}

func TestFindPathBetweenAreas_CornerContact(t *testing.T) {
	g := newTestGraph(t)
	// The road meets src only diagonally at (1,-1).
	g.BuildPath(line(1, 3, -1), "dirt")
	src := domain.Area{Anchor: domain.Cell{X: 0, Y: 0}, Width: 1, Height: 1}
	dst := domain.Area{Anchor: domain.Cell{X: 4, Y: -1}, Width: 1, Height: 1}

	p := g.FindPathBetweenAreas(src, dst)
	if !reflect.DeepEqual(p, line(1, 3, -1)) {
		t.Errorf("path = %v, want %v", p, line(1, 3, -1))
	}
}

func TestFindPathBetweenAreas_NoRingRoads(t *testing.T) {
	g := newTestGraph(t)
	g.BuildPath(line(20, 25, 20), "dirt")
	src := domain.Area{Anchor: domain.Cell{X: 0, Y: 0}, Width: 3, Height: 3}
	dst := domain.Area{Anchor: domain.Cell{X: 10, Y: 10}, Width: 2, Height: 2}

	if p := g.FindPathBetweenAreas(src, dst); p != nil {
		t.Errorf("path = %v, want nil", p)
	}
}

func TestFindPathBetweenAreas_MalformedFootprint(t *testing.T) {
	g := newTestGraph(t)
	g.BuildPath(line(0, 5, 0), "dirt")
	bad := domain.Area{Anchor: domain.Cell{X: 0, Y: 1}, Width: 0, Height: 2}
	ok := domain.Area{Anchor: domain.Cell{X: 3, Y: 1}, Width: 1, Height: 1}

	if p := g.FindPathBetweenAreas(bad, ok); p != nil {
		t.Errorf("path = %v, want nil for malformed footprint", p)
	}
}
