package nav

import "testing"

// gridLegal builds a LegalFunc from an ASCII maze where '#' blocks.
func gridLegal(rows []string) LegalFunc {
	open := func(p Point) bool {
		if p.Y < 0 || p.Y >= len(rows) {
			return false
		}
		if p.X < 0 || p.X >= len(rows[p.Y]) {
			return false
		}
		return rows[p.Y][p.X] != '#'
	}
	return func(from Point, d Dir) bool {
		return open(from.Add(d))
	}
}

func TestDirDeltaOpposite(t *testing.T) {
	tests := []struct {
		dir   Dir
		delta Point
		opp   Dir
	}{
		{Up, Point{0, -1}, Down},
		{Down, Point{0, 1}, Up},
		{Left, Point{-1, 0}, Right},
		{Right, Point{1, 0}, Left},
		{None, Point{0, 0}, None},
	}
	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			if got := tt.dir.Delta(); got != tt.delta {
				t.Errorf("Delta() = %v, want %v", got, tt.delta)
			}
			if got := tt.dir.Opposite(); got != tt.opp {
				t.Errorf("Opposite() = %v, want %v", got, tt.opp)
			}
		})
	}
}

func TestParseDirRoundTrip(t *testing.T) {
	for _, d := range []Dir{Up, Down, Left, Right} {
		if got := ParseDir(d.String()); got != d {
			t.Errorf("ParseDir(%q) = %v, want %v", d.String(), got, d)
		}
	}
	if got := ParseDir("sideways"); got != None {
		t.Errorf("ParseDir unknown = %v, want None", got)
	}
}

func TestManhattan(t *testing.T) {
	if got := Manhattan(Point{1, 2}, Point{4, -2}); got != 7 {
		t.Errorf("Manhattan = %d, want 7", got)
	}
	if got := Manhattan(Point{3, 3}, Point{3, 3}); got != 0 {
		t.Errorf("Manhattan same point = %d, want 0", got)
	}
}

func TestFirstStepStraightLine(t *testing.T) {
	legal := gridLegal([]string{
		"#####",
		"#   #",
		"#####",
	})
	goal := Point{3, 1}
	dir, ok := FirstStep(Point{1, 1}, legal, func(p Point) bool { return p == goal }, 16, Cardinal)
	if !ok {
		t.Fatal("expected target to be reachable")
	}
	if dir != Right {
		t.Errorf("first step = %v, want right", dir)
	}
}

func TestFirstStepAroundWall(t *testing.T) {
	// The direct horizontal corridor is blocked; the shortest path
	// detours through the lower row, so the first step must be down.
	legal := gridLegal([]string{
		"#####",
		"# # #",
		"#   #",
		"#####",
	})
	goal := Point{3, 1}
	dir, ok := FirstStep(Point{1, 1}, legal, func(p Point) bool { return p == goal }, 16, Cardinal)
	if !ok {
		t.Fatal("expected target to be reachable")
	}
	if dir != Down {
		t.Errorf("first step = %v, want down", dir)
	}
}

func TestFirstStepStartIsTarget(t *testing.T) {
	legal := gridLegal([]string{"   "})
	dir, ok := FirstStep(Point{1, 0}, legal, func(p Point) bool { return p == Point{1, 0} }, 8, Cardinal)
	if !ok || dir != None {
		t.Errorf("got (%v,%v), want (None,true)", dir, ok)
	}
}

func TestFirstStepDepthBound(t *testing.T) {
	legal := gridLegal([]string{
		"##########",
		"#        #",
		"##########",
	})
	goal := Point{8, 1}
	target := func(p Point) bool { return p == goal }

	if _, ok := FirstStep(Point{1, 1}, legal, target, 3, Cardinal); ok {
		t.Error("target 7 steps away must not be found with depth bound 3")
	}
	if _, ok := FirstStep(Point{1, 1}, legal, target, 7, Cardinal); !ok {
		t.Error("target 7 steps away must be found with depth bound 7")
	}
}

func TestFirstStepUnreachable(t *testing.T) {
	legal := gridLegal([]string{
		"#####",
		"# # #",
		"#####",
	})
	goal := Point{3, 1}
	if _, ok := FirstStep(Point{1, 1}, legal, func(p Point) bool { return p == goal }, 64, Cardinal); ok {
		t.Error("walled-off target must be unreachable")
	}
}

func TestFirstStepTieBreakOrder(t *testing.T) {
	// Two equally short paths exist (up-right vs right-up). The neighbor
	// order decides which first edge wins.
	legal := gridLegal([]string{
		"####",
		"#  #",
		"#  #",
		"####",
	})
	goal := Point{2, 1}
	target := func(p Point) bool { return p == goal }

	dir, ok := FirstStep(Point{1, 2}, legal, target, 8, [4]Dir{Up, Down, Left, Right})
	if !ok || dir != Up {
		t.Errorf("up-first order: got (%v,%v), want (up,true)", dir, ok)
	}
	dir, ok = FirstStep(Point{1, 2}, legal, target, 8, [4]Dir{Right, Left, Down, Up})
	if !ok || dir != Right {
		t.Errorf("right-first order: got (%v,%v), want (right,true)", dir, ok)
	}
}

func TestReachable(t *testing.T) {
	legal := gridLegal([]string{
		"#####",
		"#   #",
		"#####",
	})
	if !Reachable(Point{1, 1}, legal, func(p Point) bool { return p == Point{3, 1} }, 8) {
		t.Error("open corridor should be reachable")
	}
	if Reachable(Point{1, 1}, legal, func(p Point) bool { return p == Point{10, 10} }, 8) {
		t.Error("out-of-grid cell should not be reachable")
	}
}
