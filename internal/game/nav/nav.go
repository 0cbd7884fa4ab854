// Package nav provides the grid primitives and the shortest-direction
// search the simulation core is built on. Everything here is pure: no
// engine state, no globals, no randomness of its own. Callers supply the
// legality predicate, the target predicate and the neighbor tie-break
// order, which keeps the search unit-testable in isolation from AI policy.
package nav

// Point is an integer tile coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Dir is one of the four cardinal movement directions, or None.
type Dir uint8

const (
	None Dir = iota
	Up
	Down
	Left
	Right
)

// Cardinal is the canonical neighbor order used when a caller has no
// reason to shuffle.
var Cardinal = [4]Dir{Up, Down, Left, Right}

// Delta returns the coordinate offset for a direction.
func (d Dir) Delta() Point {
	switch d {
	case Up:
		return Point{X: 0, Y: -1}
	case Down:
		return Point{X: 0, Y: 1}
	case Left:
		return Point{X: -1, Y: 0}
	case Right:
		return Point{X: 1, Y: 0}
	}
	return Point{}
}

// Opposite returns the reversing direction.
func (d Dir) Opposite() Dir {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return None
}

func (d Dir) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "none"
}

// ParseDir maps a wire string onto a Dir. Unknown strings map to None.
func ParseDir(s string) Dir {
	switch s {
	case "up":
		return Up
	case "down":
		return Down
	case "left":
		return Left
	case "right":
		return Right
	}
	return None
}

// Add returns p offset by the direction's delta.
func (p Point) Add(d Dir) Point {
	off := d.Delta()
	return Point{X: p.X + off.X, Y: p.Y + off.Y}
}

// Manhattan returns the L1 distance between two points.
func Manhattan(a, b Point) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// LegalFunc reports whether a single step from a cell in a direction is
// allowed. It sees the edge, not just the destination, so gate doors that
// block specific edges can be expressed.
type LegalFunc func(from Point, d Dir) bool

// TargetFunc reports whether a cell satisfies the search goal.
type TargetFunc func(Point) bool

// FirstStep runs a breadth-first search from start over legal moves and
// returns only the first edge direction of a shortest path to a cell
// satisfying target. The full path is never materialized. The search
// visits at most maxDepth rings around the start; order decides ties
// between equally short paths.
//
// If start itself satisfies target, FirstStep returns (None, true).
// If no target is reachable within the depth bound it returns (None, false).
func FirstStep(start Point, legal LegalFunc, target TargetFunc, maxDepth int, order [4]Dir) (Dir, bool) {
	if target(start) {
		return None, true
	}
	if maxDepth <= 0 {
		return None, false
	}

	type node struct {
		pos   Point
		first Dir
		depth int
	}

	visited := map[Point]struct{}{start: {}}
	queue := make([]node, 0, 64)

	for _, d := range order {
		if d == None || !legal(start, d) {
			continue
		}
		next := start.Add(d)
		if _, seen := visited[next]; seen {
			continue
		}
		visited[next] = struct{}{}
		if target(next) {
			return d, true
		}
		queue = append(queue, node{pos: next, first: d, depth: 1})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		for _, d := range order {
			if d == None || !legal(cur.pos, d) {
				continue
			}
			next := cur.pos.Add(d)
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			if target(next) {
				return cur.first, true
			}
			queue = append(queue, node{pos: next, first: cur.first, depth: cur.depth + 1})
		}
	}
	return None, false
}

// Reachable reports whether any cell satisfying target can be reached
// from start within maxDepth steps.
func Reachable(start Point, legal LegalFunc, target TargetFunc, maxDepth int) bool {
	_, ok := FirstStep(start, legal, target, maxDepth, Cardinal)
	return ok
}
