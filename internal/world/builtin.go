package world

// builtinRows is the compiled-in default arena: 23x15 tiles, six 8x8
// sectors, two switch-operated gates, four power pellets. The layout is
// fully connected with every gate closed, so gates are shortcuts rather
// than hard locks.
var builtinRows = []string{
	"#######################",
	"#P#......o..#.#......A#",
	"#.###.##.##.#.#.#####.#",
	"#.#..s=.....#.......#.#",
	"#.#...=s#########.#.#.#",
	"#.....#...........#.#.#",
	"#.#.#.#############.#.#",
	"#o....#.....#.......#o#",
	"#.##.##.#.###.##.####.#",
	"#.......#....s=.......#",
	"#.##....###.#.=s###.#.#",
	"#.#...#.......#...#...#",
	"#.#.###.#.###.#####.#.#",
	"#A#.......#o........#P#",
	"#######################",
}

const builtinSectorSize = 8

// Builtin returns the default layout. It parses the embedded rows every
// call so callers can never share mutable slices.
func Builtin() *Layout {
	l, err := ParseRows("builtin", builtinRows, builtinSectorSize)
	if err != nil {
		// The embedded rows are covered by tests; a parse failure here
		// is a programmer error.
		panic(err)
	}
	return l
}
