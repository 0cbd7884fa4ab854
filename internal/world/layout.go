// Package world holds the static map data the simulation core consumes:
// tile grid, sectors, gates, initial pickup placement and spawn pools.
// Layouts come from an ASCII tile legend, either compiled in (Builtin) or
// loaded from a YAML document produced by an external generator. The core
// treats a Layout as read-only; all mutable state (pickup presence, gate
// open flags, sector capture) lives in the engine.
package world

import (
	"github.com/pkg/errors"

	"sectorclash/internal/game/nav"
)

// Tile legend for layout rows.
const (
	TileWall      = '#'
	TileDot       = '.' // floor with an initial pickup
	TileFloor     = ' ' // floor without a pickup
	TilePellet    = 'o'
	TileSpawn     = 'P' // participant spawn
	TileAdversary = 'A' // adversary spawn
	TileDoor      = '=' // gate door cell
	TileSwitch    = 's' // gate switch cell
)

// Gate is a pair of door cells opened by simultaneously occupying a pair
// of switch cells.
type Gate struct {
	ID       int
	Doors    [2]nav.Point
	Switches [2]nav.Point
}

// Sector is a fixed square sub-region of the map. FloorCells are every
// walkable cell inside it; RegenCells are the cells eligible to receive a
// regenerated pickup (floor cells that are not doors or switches).
type Sector struct {
	ID         int
	MinX, MinY int
	MaxX, MaxY int // exclusive
	FloorCells []nav.Point
	RegenCells []nav.Point
	InitDots   int
}

// Layout is the immutable world description.
type Layout struct {
	Name       string
	Width      int
	Height     int
	SectorSize int

	walls   []bool // row-major, true = wall
	doorIdx map[nav.Point]int
	// sectorByCell maps raw sector-grid squares onto compacted sector
	// ids; squares with no floor are skipped entirely.
	sectorByCell map[int]int

	Sectors []Sector
	Gates   []Gate

	Dots    []nav.Point // initial pickup cells
	Pellets []nav.Point

	SpawnPoints    []nav.Point // participant spawn pool
	AdversarySpawn []nav.Point
}

// InBounds reports whether p lies on the grid.
func (l *Layout) InBounds(p nav.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < l.Width && p.Y < l.Height
}

// Open reports whether p is walkable terrain (doors count as open; gate
// state is the engine's concern).
func (l *Layout) Open(p nav.Point) bool {
	if !l.InBounds(p) {
		return false
	}
	return !l.walls[p.Y*l.Width+p.X]
}

// DoorGate returns the gate id owning a door cell, or -1.
func (l *Layout) DoorGate(p nav.Point) int {
	if id, ok := l.doorIdx[p]; ok {
		return id
	}
	return -1
}

// SectorAt returns the sector index containing p, or -1. Pure coordinate
// arithmetic; no lookup tables to keep in sync.
func (l *Layout) SectorAt(p nav.Point) int {
	if !l.InBounds(p) || l.SectorSize <= 0 {
		return -1
	}
	cols := (l.Width + l.SectorSize - 1) / l.SectorSize
	idx := (p.Y/l.SectorSize)*cols + p.X/l.SectorSize
	if id, ok := l.sectorByCell[idx]; ok {
		return id
	}
	return -1
}

// Centroid returns the arithmetic center of a sector's floor cells.
func (s *Sector) Centroid() nav.Point {
	if len(s.FloorCells) == 0 {
		return nav.Point{X: s.MinX, Y: s.MinY}
	}
	var sx, sy int
	for _, c := range s.FloorCells {
		sx += c.X
		sy += c.Y
	}
	n := len(s.FloorCells)
	return nav.Point{X: sx / n, Y: sy / n}
}

// ParseRows builds a Layout from ASCII rows. Rows must be uniform width
// with a fully walled border. Gates are derived from the glyphs: each
// vertically or horizontally adjacent pair of door cells forms one gate,
// and each switch cell attaches to the nearest gate's free switch slot.
func ParseRows(name string, rows []string, sectorSize int) (*Layout, error) {
	if len(rows) == 0 {
		return nil, errors.New("layout: no rows")
	}
	w := len(rows[0])
	h := len(rows)
	if sectorSize <= 0 {
		return nil, errors.Errorf("layout: invalid sector size %d", sectorSize)
	}

	l := &Layout{
		Name:         name,
		Width:        w,
		Height:       h,
		SectorSize:   sectorSize,
		walls:        make([]bool, w*h),
		doorIdx:      make(map[nav.Point]int),
		sectorByCell: make(map[int]int),
	}

	var doors, switches []nav.Point
	for y, row := range rows {
		if len(row) != w {
			return nil, errors.Errorf("layout: row %d has width %d, want %d", y, len(row), w)
		}
		for x := 0; x < w; x++ {
			p := nav.Point{X: x, Y: y}
			border := x == 0 || y == 0 || x == w-1 || y == h-1
			c := row[x]
			if border && c != TileWall {
				return nil, errors.Errorf("layout: border cell (%d,%d) is %q, want wall", x, y, c)
			}
			switch c {
			case TileWall:
				l.walls[y*w+x] = true
			case TileDot:
				l.Dots = append(l.Dots, p)
			case TileFloor:
			case TilePellet:
				l.Pellets = append(l.Pellets, p)
			case TileSpawn:
				l.SpawnPoints = append(l.SpawnPoints, p)
			case TileAdversary:
				l.AdversarySpawn = append(l.AdversarySpawn, p)
			case TileDoor:
				doors = append(doors, p)
			case TileSwitch:
				switches = append(switches, p)
			default:
				return nil, errors.Errorf("layout: unknown tile %q at (%d,%d)", c, x, y)
			}
		}
	}

	if err := l.pairGates(doors, switches); err != nil {
		return nil, err
	}
	l.buildSectors(rows)

	if len(l.SpawnPoints) == 0 {
		return nil, errors.New("layout: no participant spawn points")
	}
	return l, nil
}

func (l *Layout) pairGates(doors, switches []nav.Point) error {
	if len(doors)%2 != 0 {
		return errors.Errorf("layout: %d door cells, want an even count", len(doors))
	}
	used := make(map[nav.Point]bool)
	for _, d := range doors {
		if used[d] {
			continue
		}
		var mate nav.Point
		found := false
		for _, dir := range nav.Cardinal {
			n := d.Add(dir)
			for _, other := range doors {
				if other == n && !used[other] {
					mate, found = other, true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return errors.Errorf("layout: door cell (%d,%d) has no adjacent mate", d.X, d.Y)
		}
		id := len(l.Gates)
		used[d], used[mate] = true, true
		l.Gates = append(l.Gates, Gate{ID: id, Doors: [2]nav.Point{d, mate}})
		l.doorIdx[d] = id
		l.doorIdx[mate] = id
	}

	if len(switches) != 2*len(l.Gates) {
		return errors.Errorf("layout: %d switch cells for %d gates, want %d",
			len(switches), len(l.Gates), 2*len(l.Gates))
	}
	filled := make([]int, len(l.Gates))
	for _, s := range switches {
		best, bestDist := -1, 1<<30
		for gi := range l.Gates {
			if filled[gi] >= 2 {
				continue
			}
			mid := l.Gates[gi].Doors[0]
			d := nav.Manhattan(s, mid)
			if d < bestDist {
				best, bestDist = gi, d
			}
		}
		if best < 0 {
			return errors.New("layout: more switches than gate slots")
		}
		l.Gates[best].Switches[filled[best]] = s
		filled[best]++
	}
	for gi, n := range filled {
		if n != 2 {
			return errors.Errorf("layout: gate %d has %d switches, want 2", gi, n)
		}
	}
	return nil
}

func (l *Layout) buildSectors(rows []string) {
	cols := (l.Width + l.SectorSize - 1) / l.SectorSize
	srows := (l.Height + l.SectorSize - 1) / l.SectorSize
	for sy := 0; sy < srows; sy++ {
		for sx := 0; sx < cols; sx++ {
			sec := Sector{
				MinX: sx * l.SectorSize,
				MinY: sy * l.SectorSize,
				MaxX: min(l.Width, (sx+1)*l.SectorSize),
				MaxY: min(l.Height, (sy+1)*l.SectorSize),
			}
			for y := sec.MinY; y < sec.MaxY; y++ {
				for x := sec.MinX; x < sec.MaxX; x++ {
					p := nav.Point{X: x, Y: y}
					if !l.Open(p) {
						continue
					}
					sec.FloorCells = append(sec.FloorCells, p)
					c := rows[y][x]
					if c != TileDoor && c != TileSwitch {
						sec.RegenCells = append(sec.RegenCells, p)
					}
					if c == TileDot {
						sec.InitDots++
					}
				}
			}
			if len(sec.FloorCells) == 0 {
				continue
			}
			sec.ID = len(l.Sectors)
			l.sectorByCell[sy*cols+sx] = sec.ID
			l.Sectors = append(l.Sectors, sec)
		}
	}
}

// String renders the static layout back to ASCII, handy in test failures.
func (l *Layout) String() string {
	out := make([][]byte, l.Height)
	for y := range out {
		out[y] = make([]byte, l.Width)
		for x := range out[y] {
			if l.walls[y*l.Width+x] {
				out[y][x] = TileWall
			} else {
				out[y][x] = TileFloor
			}
		}
	}
	set := func(p nav.Point, c byte) { out[p.Y][p.X] = c }
	for _, p := range l.Dots {
		set(p, TileDot)
	}
	for _, p := range l.Pellets {
		set(p, TilePellet)
	}
	for _, g := range l.Gates {
		for _, d := range g.Doors {
			set(d, TileDoor)
		}
		for _, s := range g.Switches {
			set(s, TileSwitch)
		}
	}
	for _, p := range l.SpawnPoints {
		set(p, TileSpawn)
	}
	for _, p := range l.AdversarySpawn {
		set(p, TileAdversary)
	}
	s := ""
	for y := range out {
		s += string(out[y])
		if y < l.Height-1 {
			s += "\n"
		}
	}
	return s
}
