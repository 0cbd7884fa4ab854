package world

import (
	"os"
	"path/filepath"
	"testing"

	"sectorclash/internal/game/nav"
)

func TestBuiltinParses(t *testing.T) {
	l := Builtin()

	if l.Width != 23 || l.Height != 15 {
		t.Errorf("builtin size = %dx%d, want 23x15", l.Width, l.Height)
	}
	if len(l.Sectors) != 6 {
		t.Errorf("builtin sectors = %d, want 6", len(l.Sectors))
	}
	if len(l.Gates) != 2 {
		t.Errorf("builtin gates = %d, want 2", len(l.Gates))
	}
	if len(l.Pellets) != 4 {
		t.Errorf("builtin pellets = %d, want 4", len(l.Pellets))
	}
	if len(l.SpawnPoints) != 2 || len(l.AdversarySpawn) != 2 {
		t.Errorf("builtin spawns = %d/%d, want 2/2",
			len(l.SpawnPoints), len(l.AdversarySpawn))
	}
	if len(l.Dots) == 0 {
		t.Fatal("builtin has no pickups")
	}

	total := 0
	for _, s := range l.Sectors {
		if s.InitDots < 0 || s.InitDots > len(s.FloorCells) {
			t.Errorf("sector %d has %d dots with %d floor cells", s.ID, s.InitDots, len(s.FloorCells))
		}
		total += s.InitDots
	}
	if total != len(l.Dots) {
		t.Errorf("per-sector dot counts sum to %d, layout has %d", total, len(l.Dots))
	}
}

func TestBuiltinConnectivity(t *testing.T) {
	// Every pickup must be reachable from every participant spawn with
	// all gates closed; gates are shortcuts, not locks.
	l := Builtin()
	closedDoor := make(map[nav.Point]bool)
	for _, g := range l.Gates {
		for _, d := range g.Doors {
			closedDoor[d] = true
		}
	}
	legal := func(from nav.Point, d nav.Dir) bool {
		to := from.Add(d)
		return l.Open(to) && !closedDoor[to]
	}
	for _, spawn := range l.SpawnPoints {
		for _, dot := range l.Dots {
			dot := dot
			if !nav.Reachable(spawn, legal, func(p nav.Point) bool { return p == dot }, l.Width*l.Height) {
				t.Fatalf("pickup %v unreachable from spawn %v with gates closed", dot, spawn)
			}
		}
	}
}

func TestSectorAt(t *testing.T) {
	l := Builtin()
	tests := []struct {
		p    nav.Point
		want bool // expect a valid sector
	}{
		{nav.Point{X: 1, Y: 1}, true},
		{nav.Point{X: 21, Y: 13}, true},
		{nav.Point{X: -1, Y: 3}, false},
		{nav.Point{X: 50, Y: 3}, false},
	}
	for _, tt := range tests {
		id := l.SectorAt(tt.p)
		if tt.want && id < 0 {
			t.Errorf("SectorAt(%v) = %d, want a sector", tt.p, id)
		}
		if !tt.want && id >= 0 {
			t.Errorf("SectorAt(%v) = %d, want -1", tt.p, id)
		}
		if id >= 0 {
			s := l.Sectors[id]
			if tt.p.X < s.MinX || tt.p.X >= s.MaxX || tt.p.Y < s.MinY || tt.p.Y >= s.MaxY {
				t.Errorf("SectorAt(%v) = %d but point is outside its bounds", tt.p, id)
			}
		}
	}
}

func TestGatePairing(t *testing.T) {
	l := Builtin()
	for _, g := range l.Gates {
		if nav.Manhattan(g.Doors[0], g.Doors[1]) != 1 {
			t.Errorf("gate %d doors %v are not adjacent", g.ID, g.Doors)
		}
		for _, s := range g.Switches {
			if (s == nav.Point{}) {
				t.Errorf("gate %d has an unassigned switch", g.ID)
			}
			if !l.Open(s) {
				t.Errorf("gate %d switch %v is not walkable", g.ID, s)
			}
		}
		for _, d := range g.Doors {
			if got := l.DoorGate(d); got != g.ID {
				t.Errorf("DoorGate(%v) = %d, want %d", d, got, g.ID)
			}
		}
	}
	if l.DoorGate(nav.Point{X: 1, Y: 1}) != -1 {
		t.Error("DoorGate on plain floor should be -1")
	}
}

func TestParseRowsErrors(t *testing.T) {
	tests := []struct {
		name string
		rows []string
	}{
		{"empty", nil},
		{"ragged", []string{"####", "#.#"}},
		{"open border", []string{"####", "#..#", "#.##"}},
		{"unknown glyph", []string{"#####", "#.X.#", "#####"}},
		{"no spawns", []string{"#####", "#...#", "#####"}},
		{"lone door", []string{"#######", "#P.=..#", "#######"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRows(tt.name, tt.rows, 8); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestLoadYAML(t *testing.T) {
	doc := []byte(`name: mini
sector_size: 4
rows:
  - "#######"
  - "#P...A#"
  - "#.###.#"
  - "#.....#"
  - "#######"
`)
	path := filepath.Join(t.TempDir(), "mini.yaml")
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		t.Fatal(err)
	}
	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.Name != "mini" {
		t.Errorf("name = %q, want mini", l.Name)
	}
	if l.SectorSize != 4 {
		t.Errorf("sector size = %d, want 4", l.SectorSize)
	}
	if len(l.Dots) != 10 {
		t.Errorf("dots = %d, want 10", len(l.Dots))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestStringRoundTrip(t *testing.T) {
	l := Builtin()
	rendered := l.String()
	reparsed, err := ParseRows("rt", splitLines(rendered), l.SectorSize)
	if err != nil {
		t.Fatalf("reparse rendered layout: %v", err)
	}
	if len(reparsed.Dots) != len(l.Dots) || len(reparsed.Gates) != len(l.Gates) {
		t.Error("rendered layout does not round-trip")
	}
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}
